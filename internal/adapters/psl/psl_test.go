package psl_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/seqpond/augpipe/internal/adapters/psl"
	. "github.com/smartystreets/goconvey/convey"
)

const pslLine = "580\t0\t0\t0\t0\t0\t1\t400\t+\tENST0001-1\t600\t0\t600\tchr1\t100000\t1000\t2000\t2\t300,300,\t0,300,\t1000,1700,"

const header = `psLayout version 3

match	mis- 	rep. 	N's	Q gap	Q gap	T gap	T gap	strand	Q        	Q   	Q    	Q  	T        	T   	T    	T  	block	blockSizes 	qStarts	 tStarts
     	match	match	   	count	bases	count	bases	      	name     	size	start	end	name     	size	start	end	count
---------------------------------------------------------------------------------------------------------------------------------------------------------------
`

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	path := t.TempDir() + "/test.psl"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead(t *testing.T) {
	Convey("Given a PSL line with a psLayout header", t, func() {
		Convey("When reading", func() {
			alns, err := psl.Read(context.Background(), strings.NewReader(header+pslLine+"\n"))

			Convey("Then the record should parse and the header skip", func() {
				So(err, ShouldBeNil)
				So(alns, ShouldHaveLength, 1)
				a := alns[0]
				So(a.QName, ShouldEqual, "ENST0001-1")
				So(a.TName, ShouldEqual, "chr1")
				So(a.Strand, ShouldEqual, "+")
				So(a.QSize, ShouldEqual, 600)
				So(a.TSize, ShouldEqual, 100000)
				So(a.BlockSizes, ShouldResemble, []int{300, 300})
				So(a.QStarts, ShouldResemble, []int{0, 300})
				So(a.TStarts, ShouldResemble, []int{1000, 1700})
			})

			Convey("And the parsed blocks should support coordinate mapping", func() {
				So(alns[0].TargetToQuery(1700), ShouldEqual, 300)
				So(alns[0].QueryToTarget(300), ShouldEqual, 1700)
			})
		})
	})

	Convey("Given keyed reading", t, func() {
		Convey("When keeping the full query name", func() {
			m, err := psl.ReadMap(context.Background(), writeTemp(t, pslLine+"\n"), false)
			So(err, ShouldBeNil)
			So(m, ShouldContainKey, "ENST0001-1")
		})

		Convey("When stripping the alignment suffix", func() {
			m, err := psl.ReadMap(context.Background(), writeTemp(t, pslLine+"\n"), true)
			So(err, ShouldBeNil)
			So(m, ShouldContainKey, "ENST0001")
		})
	})

	Convey("Given malformed input", t, func() {
		Convey("When the column count is wrong", func() {
			_, err := psl.Read(context.Background(), strings.NewReader("1\t2\t3\n"))
			So(err, ShouldNotBeNil)
		})

		Convey("When block lists disagree with the count", func() {
			bad := strings.Replace(pslLine, "\t2\t300,300,", "\t2\t300,", 1)
			_, err := psl.Read(context.Background(), strings.NewReader(bad+"\n"))
			So(err, ShouldNotBeNil)
		})
	})
}
