package render

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/logigrowth/internal/family"
	"github.com/san-kum/logigrowth/internal/growth"
	"github.com/san-kum/logigrowth/internal/logging"
)

type recorder struct {
	draws    []int // curve index per draw
	lens     []int // sample count per draw
	frames   [][]int
	current  []int
	failAt   int
	inFrame  bool
	frameIDs []int
}

func (r *recorder) Draw(c family.Curve) error {
	if r.failAt > 0 && len(r.draws)+1 == r.failAt {
		return errors.New("disk full")
	}
	r.draws = append(r.draws, c.Index)
	r.lens = append(r.lens, c.Len())
	if r.inFrame {
		r.current = append(r.current, c.Len())
	}
	return nil
}

type frameRecorder struct{ recorder }

func (r *frameRecorder) BeginFrame(i int) error {
	r.inFrame = true
	r.current = nil
	r.frameIDs = append(r.frameIDs, i)
	return nil
}

func (r *frameRecorder) EndFrame() error {
	r.inFrame = false
	r.frames = append(r.frames, r.current)
	return nil
}

func sweep(a float64, initial []float64, n int, tStop float64) *family.Family {
	ts, err := growth.Linspace(0, tStop, n)
	Expect(err).NotTo(HaveOccurred())
	f, err := family.Generate(growth.Params{K: 1, A: a}, initial, ts, family.SchemeRainbow)
	Expect(err).NotTo(HaveOccurred())
	return f
}

var _ = Describe("Scene", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = logging.IntoContext(context.Background(), logging.NewTestLogger())
	})

	It("draws each curve once on a static renderer", func() {
		fam := sweep(0.5, []float64{0.1, 0.5, 1.5}, 20, 15)
		r := &recorder{}

		stats, err := Scene(ctx, fam, r, DefaultSceneOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(r.draws).To(Equal([]int{0, 1, 2}))
		Expect(r.lens).To(Equal([]int{20, 20, 20}))
		Expect(stats.Frames).To(BeZero())
		Expect(stats.Draws).To(Equal(3))
	})

	It("animates creation curve by curve on a frame renderer", func() {
		fam := sweep(0.5, []float64{0.2, 1.8}, 10, 15)
		r := &frameRecorder{}
		opts := SceneOptions{FPS: 2, Intro: 1, RunTime: 1, Hold: 0.5}

		stats, err := Scene(ctx, fam, r, opts)
		Expect(err).NotTo(HaveOccurred())

		// 2 intro, 2 per curve, 1 hold
		Expect(stats.Frames).To(Equal(7))
		Expect(r.frameIDs).To(Equal([]int{0, 1, 2, 3, 4, 5, 6}))
		Expect(r.frames[0]).To(BeEmpty())
		Expect(r.frames[2]).To(Equal([]int{5}))
		Expect(r.frames[3]).To(Equal([]int{10}))
		Expect(r.frames[4]).To(Equal([]int{10, 5}))
		Expect(r.frames[5]).To(Equal([]int{10, 10}))
		Expect(r.frames[6]).To(Equal([]int{10, 10}))
	})

	It("rejects an empty family", func() {
		fam := sweep(0.5, nil, 10, 15)
		_, err := Scene(ctx, fam, &recorder{}, DefaultSceneOptions())
		Expect(err).To(MatchError(ErrEmptyFamily))
	})

	It("stops on a cancelled context", func() {
		fam := sweep(0.5, []float64{0.2}, 10, 15)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Scene(cctx, fam, &frameRecorder{}, DefaultSceneOptions())
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	It("reports the failing frame", func() {
		fam := sweep(0.5, []float64{0.2, 0.4}, 10, 15)
		r := &frameRecorder{}
		r.failAt = 3
		_, err := Scene(ctx, fam, r, SceneOptions{FPS: 1, RunTime: 2})

		var fe *FrameError
		Expect(errors.As(err, &fe)).To(BeTrue())
		Expect(fe.Frame).To(Equal(2))
		Expect(err).To(MatchError("disk full"))
	})
})

var _ = Describe("Frames", func() {
	ctx := context.Background()

	It("stops a static renderer on a cancelled context", func() {
		fam := sweep(0.1, []float64{0.3, 1.4}, 5, 1)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		r := &recorder{}

		stats, err := Frames(cctx, fam, r, DefaultFramesOptions())
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(r.draws).To(BeEmpty())
		Expect(stats.Draws).To(BeZero())
	})

	It("reveals one more sample per frame", func() {
		fam := sweep(0.1, []float64{0.3, 1.4}, 5, 1)
		r := &frameRecorder{}

		stats, err := Frames(ctx, fam, r, FramesOptions{Stride: 1, Loops: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Frames).To(Equal(5))
		Expect(stats.Restarts).To(BeZero())
		for i, f := range r.frames {
			Expect(f).To(Equal([]int{i + 1, i + 1}))
		}
	})

	It("honours the stride and loop count", func() {
		fam := sweep(0.1, []float64{0.3}, 10, 1)
		r := &frameRecorder{}

		stats, err := Frames(ctx, fam, r, FramesOptions{Stride: 3, Loops: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Frames).To(Equal(8))
		Expect(r.frames[3]).To(Equal([]int{10}))
		Expect(r.frames[4]).To(Equal([]int{1}))
	})

	It("restarts once every curve has reached capacity", func() {
		fam := sweep(5, []float64{0.5, 1.5}, 100, 100)
		r := &frameRecorder{}

		stats, err := Frames(ctx, fam, r, FramesOptions{Stride: 1, Loops: 2, Tolerance: 1e-6})
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Restarts).To(Equal(2))
		Expect(stats.Frames).To(BeNumerically("<", 200))
		Expect(r.frames[stats.Frames/2]).To(Equal([]int{1, 1}))
	})

	It("draws only the final frame on a static renderer", func() {
		fam := sweep(0.1, []float64{0.3, 1.4}, 7, 1)
		r := &recorder{}

		stats, err := Frames(ctx, fam, r, DefaultFramesOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Frames).To(BeZero())
		Expect(r.lens).To(Equal([]int{7, 7}))
	})
})

var _ = Describe("Layout", func() {
	It("projects the data window onto the pixel box", func() {
		l := DefaultLayout()
		x, y := l.Project(l.XMin, l.YMin, 100, 50)
		Expect(x).To(BeNumerically("~", 0, 1e-9))
		Expect(y).To(BeNumerically("~", 50, 1e-9))

		x, y = l.Project(l.XMax, l.YMax, 100, 50)
		Expect(x).To(BeNumerically("~", 100, 1e-9))
		Expect(y).To(BeNumerically("~", 0, 1e-9))
	})

	It("produces inclusive ticks", func() {
		Expect(Ticks(0, 1, 0.5)).To(Equal([]float64{0, 0.5, 1}))
		Expect(Ticks(0, 2.3, 0.2)).To(HaveLen(12))
		Expect(Ticks(0, 1, 0)).To(BeNil())
	})
})
