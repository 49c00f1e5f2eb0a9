package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/billiard/internal/physics"
)

var _ = Describe("Table", func() {
	var (
		params physics.Params
		table  *physics.Table
	)

	BeforeEach(func() {
		params = physics.DefaultParams()
	})

	newTable := func(discs ...physics.Disc) *physics.Table {
		t, err := physics.NewTable(params, discs)
		Expect(err).NotTo(HaveOccurred())
		return t
	}

	Describe("a cue disc driven into a resting disc", func() {
		BeforeEach(func() {
			table = newTable(
				physics.NewDisc(400, 300, 0, -200, physics.White),
				physics.NewDisc(400, 285, 0, 0, physics.Red),
			)
		})

		It("hands the cue speed to the resting disc", func() {
			rep := table.Step(0)

			Expect(rep.Contacts).To(HaveLen(1))
			Expect(table.Disc(0).Speed()).To(BeNumerically("~", 0, 1e-9))
			Expect(table.Disc(1).Speed()).To(BeNumerically("~", 200, 1e-9))
		})

		It("leaves the pair exactly one radius apart", func() {
			table.Step(0)

			d := table.Disc(0).Pos.Sub(table.Disc(1).Pos).Len()
			Expect(d).To(BeNumerically("~", params.Radius, 1e-9))
		})
	})

	Describe("a single moving disc", func() {
		BeforeEach(func() {
			table = newTable(physics.NewDisc(100, 300, -600, 0, physics.White))
		})

		It("bounces off the left wall at half speed", func() {
			var hits []physics.WallHit
			for i := 0; i < 20 && len(hits) == 0; i++ {
				hits = table.Step(1.0 / 60).Walls
			}

			Expect(hits).To(HaveLen(1))
			Expect(hits[0].Side).To(Equal(physics.Left))
			Expect(table.Disc(0).Pos.X).To(Equal(params.Radius))
			Expect(table.Disc(0).Vel.X).To(BeNumerically("~", hits[0].Speed*params.WallRestitution, 1e-9))
		})

		It("eventually comes to rest under host double decay", func() {
			dt := 1.0 / 60
			for i := 0; i < 20000 && !table.AtRest(); i++ {
				table.Step(dt)
				table.Decay(dt)
			}

			Expect(table.AtRest()).To(BeTrue())
			Expect(table.Disc(0).Inside(params, 1e-9)).To(BeTrue())
		})
	})

	Describe("the reference four-disc layout", func() {
		BeforeEach(func() {
			table = newTable(
				physics.NewDisc(400, 193, 0, 0, physics.Red),
				physics.NewDisc(370, 150, 0, 0, physics.Blue),
				physics.NewDisc(400, 500, 0, -200, physics.White),
				physics.NewDisc(430, 150, 0, 0, physics.Black),
			)
		})

		It("stays finite for a minute of play", func() {
			dt := 1.0 / 60
			for i := 0; i < 3600; i++ {
				table.Step(dt)
				table.Decay(dt)
				Expect(table.Validate()).To(Succeed())
			}
		})

		It("knocks the red disc when the cue arrives", func() {
			dt := 1.0 / 60
			var first *physics.Contact
			for i := 0; i < 600 && first == nil; i++ {
				rep := table.Step(dt)
				table.Decay(dt)
				if len(rep.Contacts) > 0 {
					first = &rep.Contacts[0]
				}
			}

			Expect(first).NotTo(BeNil())
			Expect(first.I).To(Equal(0))
			Expect(first.J).To(Equal(2))
			Expect(math.Abs(first.Angle)).To(BeNumerically(">", 0))
		})
	})
})
