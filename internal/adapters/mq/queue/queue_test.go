package queue_test

import (
	"context"
	"testing"

	"github.com/seqpond/augpipe/internal/adapters/mq/queue"
	"github.com/seqpond/augpipe/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func bundles(n int) []model.EvidenceBundle {
	out := make([]model.EvidenceBundle, n)
	for i := range out {
		out[i] = model.EvidenceBundle{TM: &model.Transcript{Name: "tx-" + string(rune('a'+i))}}
	}
	return out
}

func TestPartition(t *testing.T) {
	Convey("Given a bundle sequence", t, func() {
		bs := bundles(10)

		Convey("When partitioning into chunks of 4", func() {
			chunks := queue.Partition(bs, 4)

			Convey("Then chunk sizes and indices should be fixed and ordered", func() {
				So(chunks, ShouldHaveLength, 3)
				So(chunks[0].Index, ShouldEqual, 0)
				So(chunks[0].Bundles, ShouldHaveLength, 4)
				So(chunks[1].Bundles, ShouldHaveLength, 4)
				So(chunks[2].Bundles, ShouldHaveLength, 2)
			})

			Convey("Then concatenating chunks should reproduce the input exactly once each", func() {
				var names []string
				for _, c := range chunks {
					for _, b := range c.Bundles {
						names = append(names, b.TM.Name)
					}
				}
				So(names, ShouldHaveLength, len(bs))
				for i, b := range bs {
					So(names[i], ShouldEqual, b.TM.Name)
				}
			})
		})

		Convey("When the chunk size exceeds the input", func() {
			chunks := queue.Partition(bs, 100)
			So(chunks, ShouldHaveLength, 1)
			So(chunks[0].Bundles, ShouldHaveLength, 10)
		})

		Convey("When the input is empty", func() {
			So(queue.Partition(nil, 4), ShouldBeNil)
		})

		Convey("When the size is degenerate", func() {
			chunks := queue.Partition(bs, 0)
			So(chunks, ShouldHaveLength, 10)
		})
	})
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given an in-memory chunk queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))

		Convey("When enqueueing within capacity", func() {
			ok := q.Enqueue(context.Background(), queue.Chunk{Index: 0})

			Convey("Then the chunk should be accepted", func() {
				So(ok, ShouldBeTrue)
				So(q.Len(context.Background()), ShouldEqual, 1)
			})
		})

		Convey("When the queue is full", func() {
			for i := 0; i < 4; i++ {
				So(q.Enqueue(context.Background(), queue.Chunk{Index: i}), ShouldBeTrue)
			}

			Convey("Then further enqueues should be refused", func() {
				So(q.Enqueue(context.Background(), queue.Chunk{Index: 4}), ShouldBeFalse)
			})
		})

		Convey("When draining after close", func() {
			for i := 0; i < 3; i++ {
				q.Enqueue(context.Background(), queue.Chunk{Index: i})
			}
			So(q.Close(), ShouldBeNil)

			Convey("Then all chunks should arrive and the channel should end", func() {
				var got []int
				for c := range q.Dequeue(context.Background()) {
					got = append(got, c.Index)
				}
				So(got, ShouldResemble, []int{0, 1, 2})
			})

			Convey("Then enqueueing should be refused", func() {
				So(q.Enqueue(context.Background(), queue.Chunk{Index: 9}), ShouldBeFalse)
			})

			Convey("Then closing twice should be fine", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}
