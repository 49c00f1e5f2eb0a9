package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/billiard/internal/physics"
	"github.com/san-kum/billiard/internal/sim"
)

var _ = Describe("Simulator", func() {
	var s *sim.Simulator

	newSim := func(discs ...physics.Disc) *sim.Simulator {
		tb, err := physics.NewTable(physics.DefaultParams(), discs)
		Expect(err).NotTo(HaveOccurred())
		return sim.New(tb)
	}

	Context("with a single disc sliding toward the right wall", func() {
		BeforeEach(func() {
			s = newSim(physics.NewDisc(700, 300, 400, 0, physics.White))
		})

		It("counts the wall hit and keeps the disc inside", func() {
			res, err := s.Run(context.Background(), sim.Config{Dt: 1.0 / 60, Duration: 1, HostDecay: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.WallHits).To(BeNumerically(">=", 1))

			d := res.Final[0]
			Expect(d.Pos.X).To(BeNumerically("<=", 780))
			Expect(d.Vel.X).To(BeNumerically("<", 0))
		})
	})

	Context("with every disc at rest", func() {
		BeforeEach(func() {
			s = newSim(
				physics.NewDisc(100, 100, 0, 0, physics.Red),
				physics.NewDisc(300, 300, 0, 0, physics.Blue),
			)
		})

		It("reports rest at time zero and stops immediately", func() {
			cfg := sim.DefaultConfig()
			cfg.StopAtRest = true

			res, err := s.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.RestTime).To(BeZero())
			Expect(res.StepsTaken).To(Equal(1))
			Expect(res.Contacts).To(BeZero())
		})
	})

	Context("ticking by hand", func() {
		BeforeEach(func() {
			s = newSim(physics.NewDisc(400, 300, 0, 50, physics.Green))
		})

		It("advances time and step count", func() {
			f := s.Tick(0.25, false)
			Expect(f.Step).To(Equal(1))
			Expect(f.Time).To(BeNumerically("~", 0.25, 1e-12))
			Expect(f.Dt).To(Equal(0.25))
			Expect(s.Steps()).To(Equal(1))
		})

		It("notifies observers with the step report", func() {
			var frames []sim.Frame
			s.AddObserver(sim.ObserverFunc(func(f sim.Frame) { frames = append(frames, f) }))

			s.Tick(0.1, true)
			s.Tick(0.1, true)
			Expect(frames).To(HaveLen(2))
			Expect(frames[1].Discs[0].Pos.Y).To(BeNumerically(">", frames[0].Discs[0].Pos.Y))
		})
	})
})
