package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/skillcat/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording submissions", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the submission is new", func() {
				seen := d.SeenAndRecord(ctx, "row-1")

				Convey("Then it should return false and record it", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the submission was already seen", func() {
				d.SeenAndRecord(ctx, "row-1")
				seen := d.SeenAndRecord(ctx, "row-1")

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the id is empty", func() {
				So(d.SeenAndRecord(ctx, ""), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, ""), ShouldBeTrue)
			})
		})

		Convey("When unrecording submissions", func() {
			d := dedupe.NewInMemoryDeduper()
			d.SeenAndRecord(ctx, "row-1")
			d.SeenAndRecord(ctx, "row-2")

			Convey("And the submission exists", func() {
				d.Unrecord(ctx, "row-1")

				Convey("Then it can be submitted again", func() {
					So(d.Size(), ShouldEqual, 1)
					So(d.SeenAndRecord(ctx, "row-1"), ShouldBeFalse)
					So(d.SeenAndRecord(ctx, "row-2"), ShouldBeTrue)
				})
			})

			Convey("And the submission doesn't exist", func() {
				d.Unrecord(ctx, "row-9")

				Convey("Then it should not affect the size", func() {
					So(d.Size(), ShouldEqual, 2)
				})
			})
		})

		Convey("When using bounded mode", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for _, id := range []string{"row-1", "row-2", "row-3"} {
				So(d.SeenAndRecord(ctx, id), ShouldBeFalse)
			}

			Convey("And one more submission arrives", func() {
				So(d.SeenAndRecord(ctx, "row-4"), ShouldBeFalse)

				Convey("Then the oldest id should be forgotten", func() {
					So(d.Size(), ShouldEqual, 3)
					So(d.SeenAndRecord(ctx, "row-3"), ShouldBeTrue)
					So(d.SeenAndRecord(ctx, "row-4"), ShouldBeTrue)
					So(d.SeenAndRecord(ctx, "row-1"), ShouldBeFalse)
				})
			})

			Convey("And the oldest id was unrecorded first", func() {
				d.Unrecord(ctx, "row-1")
				So(d.SeenAndRecord(ctx, "row-4"), ShouldBeFalse)

				Convey("Then nothing else should be evicted", func() {
					So(d.Size(), ShouldEqual, 3)
					So(d.SeenAndRecord(ctx, "row-2"), ShouldBeTrue)
					So(d.SeenAndRecord(ctx, "row-3"), ShouldBeTrue)
					So(d.SeenAndRecord(ctx, "row-4"), ShouldBeTrue)
				})
			})

			Convey("And the newest id was unrecorded", func() {
				d.Unrecord(ctx, "row-3")
				So(d.SeenAndRecord(ctx, "row-5"), ShouldBeFalse)

				Convey("Then its slot should be reused", func() {
					So(d.Size(), ShouldEqual, 3)
					So(d.SeenAndRecord(ctx, "row-1"), ShouldBeTrue)
				})
			})
		})

		Convey("When using unbounded mode", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			const n = 1000
			for i := 0; i < n; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("row-%d", i))
			}

			Convey("Then every id should be remembered", func() {
				So(d.Size(), ShouldEqual, int64(n))
				So(d.SeenAndRecord(ctx, "row-0"), ShouldBeTrue)
				d.Unrecord(ctx, "row-0")
				So(d.Size(), ShouldEqual, int64(n-1))
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper with concurrent access", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1000))
		const goroutines = 10
		const perGoroutine = 100

		Convey("When the same ids are submitted from many goroutines", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			fresh := 0
			for i := 0; i < goroutines; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < perGoroutine; j++ {
						if !d.SeenAndRecord(ctx, fmt.Sprintf("row-%d", j)) {
							mu.Lock()
							fresh++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then each id should be fresh exactly once", func() {
				So(fresh, ShouldEqual, perGoroutine)
				So(d.Size(), ShouldEqual, int64(perGoroutine))
			})
		})

		Convey("When ids are unrecorded concurrently", func() {
			for i := 0; i < 500; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("row-%d", i))
			}
			var wg sync.WaitGroup
			for g := 0; g < goroutines; g++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for j := 0; j < 50; j++ {
						d.Unrecord(ctx, fmt.Sprintf("row-%d", g*50+j))
					}
				}(g)
			}
			wg.Wait()

			Convey("Then the deduper should be empty", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})
}
