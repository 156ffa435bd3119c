package hints_test

import (
	"context"
	"strings"
	"testing"

	"github.com/seqpond/augpipe/internal/domain/hints"
	"github.com/seqpond/augpipe/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// bundle builds a two-exon transcript pair whose alignments mirror the
// exon structure, so splice junctions land at known transcript positions.
func bundle() model.EvidenceBundle {
	ref := &model.Transcript{
		Name: "ENST0001", Name2: "ENSG0001", Chrom: "ref1",
		Start: 5000, Stop: 6000, Strand: "+",
		ExonStarts: []int{5000, 5700},
		ExonEnds:   []int{5300, 6000},
	}
	refAln := &model.Alignment{
		QName: "ENST0001", TName: "ref1", Strand: "+",
		QSize: 600, TSize: 100000,
		BlockSizes: []int{300, 300},
		QStarts:    []int{0, 300},
		TStarts:    []int{5000, 5700},
	}
	tm := &model.Transcript{
		Name: "ENST0001-1", Name2: "ENSG0001", Chrom: "chr1",
		Start: 1000, Stop: 2000, Strand: "+",
		ExonStarts: []int{1000, 1700},
		ExonEnds:   []int{1300, 2000},
	}
	tmAln := &model.Alignment{
		QName: "ENST0001-1", TName: "chr1", Strand: "+",
		QSize: 600, TSize: 100000,
		BlockSizes: []int{300, 300},
		QStarts:    []int{0, 300},
		TStarts:    []int{1000, 1700},
	}
	return model.EvidenceBundle{TM: tm, Ref: ref, TMAln: tmAln, RefAln: refAln}
}

func features(hs []model.Hint) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.Feature)
	}
	return out
}

func TestIntronHints(t *testing.T) {
	Convey("Given a synthesizer and a corroborated bundle", t, func() {
		s := hints.NewSynthesizer()
		b := bundle()

		Convey("When the transMap junction matches the reference junction exactly", func() {
			hs := s.Synthesize(context.Background(), b)

			Convey("Then an intron hint should cover the transMap intron", func() {
				So(features(hs), ShouldContain, "intron")
				So(hs[0].Feature, ShouldEqual, "intron")
				So(hs[0].Start, ShouldEqual, 1300)
				So(hs[0].Stop, ShouldEqual, 1700)
				So(hs[0].Strand, ShouldEqual, "+")
				So(hs[0].Attributes, ShouldEqual, "grp=ENST0001-1;src=T;pri=2")
			})
		})

		Convey("When the junction drifts but stays within the wiggle tolerance", func() {
			b.TM.ExonStarts = []int{1000, 1703}
			b.TM.ExonEnds = []int{1303, 2000}
			b.TMAln.BlockSizes = []int{303, 297}
			b.TMAln.QStarts = []int{0, 303}
			b.TMAln.TStarts = []int{1000, 1703}

			hs := s.Synthesize(context.Background(), b)

			Convey("Then the intron hint should still be emitted", func() {
				So(features(hs), ShouldContain, "intron")
			})
		})

		Convey("When the junction drifts beyond the wiggle tolerance", func() {
			b.TM.ExonStarts = []int{1000, 1600}
			b.TM.ExonEnds = []int{1200, 2000}
			b.TMAln.BlockSizes = []int{200, 400}
			b.TMAln.QStarts = []int{0, 200}
			b.TMAln.TStarts = []int{1000, 1600}

			hs := s.Synthesize(context.Background(), b)

			Convey("Then no intron hint should be emitted", func() {
				So(features(hs), ShouldNotContain, "intron")
			})
		})

		Convey("When a wider wiggle is configured", func() {
			b.TM.ExonStarts = []int{1000, 1600}
			b.TM.ExonEnds = []int{1200, 2000}
			b.TMAln.BlockSizes = []int{200, 400}
			b.TMAln.QStarts = []int{0, 200}
			b.TMAln.TStarts = []int{1000, 1600}

			wide := hints.NewSynthesizer(hints.WithWiggle(150))
			hs := wide.Synthesize(context.Background(), b)

			Convey("Then the previously rejected intron should pass", func() {
				So(features(hs), ShouldContain, "intron")
			})
		})
	})
}

func TestCodingHints(t *testing.T) {
	Convey("Given a bundle with a coding region", t, func() {
		s := hints.NewSynthesizer()
		b := bundle()
		b.TM.ThickStart = 1100
		b.TM.ThickStop = 1900

		Convey("When both thick bounds were mapped over", func() {
			b.TM.CDSStartComplete = true
			b.TM.CDSStopComplete = true
			hs := s.Synthesize(context.Background(), b)

			Convey("Then start and stop hints should flank the thick region", func() {
				So(features(hs), ShouldContain, "start")
				So(features(hs), ShouldContain, "stop")
				for _, h := range hs {
					switch h.Feature {
					case "start":
						So(h.Start, ShouldEqual, 1100)
						So(h.Stop, ShouldEqual, 1103)
					case "stop":
						So(h.Start, ShouldEqual, 1897)
						So(h.Stop, ShouldEqual, 1900)
					}
				}
			})
		})

		Convey("When neither thick bound was mapped over", func() {
			hs := s.Synthesize(context.Background(), b)

			Convey("Then no coding-boundary hint should be emitted", func() {
				So(features(hs), ShouldNotContain, "start")
				So(features(hs), ShouldNotContain, "stop")
			})
		})

		Convey("When only the start was mapped over", func() {
			b.TM.CDSStartComplete = true
			hs := s.Synthesize(context.Background(), b)

			So(features(hs), ShouldContain, "start")
			So(features(hs), ShouldNotContain, "stop")
		})

		Convey("When the transcript is on the minus strand", func() {
			b.TM.Strand = "-"
			b.TM.CDSStartComplete = true
			b.TM.CDSStopComplete = true
			hs := s.Synthesize(context.Background(), b)

			Convey("Then the start codon should sit at the right edge", func() {
				for _, h := range hs {
					switch h.Feature {
					case "start":
						So(h.Start, ShouldEqual, 1897)
					case "stop":
						So(h.Start, ShouldEqual, 1100)
					}
				}
			})
		})
	})
}

func TestTranscriptionHints(t *testing.T) {
	Convey("Given a bundle whose ends map cleanly", t, func() {
		s := hints.NewSynthesizer()
		b := bundle()

		Convey("When synthesizing", func() {
			hs := s.Synthesize(context.Background(), b)

			Convey("Then tss and tts hints should mark the transcript ends", func() {
				So(features(hs), ShouldContain, "tss")
				So(features(hs), ShouldContain, "tts")
				for _, h := range hs {
					switch h.Feature {
					case "tss":
						So(h.Start, ShouldEqual, 1000)
					case "tts":
						So(h.Start, ShouldEqual, 1999)
					}
				}
			})
		})

		Convey("When the reference start was never aligned", func() {
			b.Ref.Start = 4990 // outside every reference alignment block
			hs := s.Synthesize(context.Background(), b)

			Convey("Then the tss hint should be withheld", func() {
				So(features(hs), ShouldNotContain, "tss")
				So(features(hs), ShouldContain, "tts")
			})
		})

		Convey("When the transcript is on the minus strand", func() {
			b.TM.Strand = "-"
			hs := s.Synthesize(context.Background(), b)

			Convey("Then the end features should swap", func() {
				for _, h := range hs {
					switch h.Feature {
					case "tts":
						So(h.Start, ShouldEqual, 1000)
					case "tss":
						So(h.Start, ShouldEqual, 1999)
					}
				}
			})
		})
	})
}

func TestRenderAndAggregate(t *testing.T) {
	Convey("Given a synthesized hint stream", t, func() {
		s := hints.NewSynthesizer()
		b := bundle()
		hs := s.Synthesize(context.Background(), b)

		Convey("When rendering", func() {
			text := hints.Render(hs)

			Convey("Then each hint should become one 1-based GFF line", func() {
				lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
				So(lines, ShouldHaveLength, len(hs))
				So(lines[0], ShouldStartWith, "chr1\tt2h\tintron\t1301\t1700\t")
			})
		})

		Convey("When aggregating with RNA-seq evidence", func() {
			structural := hints.Render(hs)
			evidence := "chr1\tb2h\texonpart\t1200\t1250\t0\t.\t.\tsrc=E;mult=7;\n"
			merged := hints.Aggregate(structural, evidence)

			Convey("Then structural hints should come first", func() {
				So(strings.HasPrefix(merged, structural), ShouldBeTrue)
				So(strings.HasSuffix(merged, evidence), ShouldBeTrue)
			})
		})

		Convey("When rendering an empty stream", func() {
			So(hints.Render(nil), ShouldEqual, "")
		})
	})
}
