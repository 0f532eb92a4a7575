package actuator_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/geartrain/internal/actuator"
	"github.com/san-kum/geartrain/internal/dynamo"
	"github.com/san-kum/geartrain/internal/gears"
	"github.com/san-kum/geartrain/internal/materials"
	"github.com/san-kum/geartrain/internal/motors"
)

type stage struct {
	zp, xp, zg, xg, m, b, disp, angle float64
}

func pair(s stage) *gears.GearPair {
	steel := materials.MustGet(materials.Steel)
	gp, err := gears.NewGearPair(
		gears.NewSpurGear(s.zp, s.m, s.xp, s.b, steel),
		gears.NewSpurGear(s.zg, s.m, s.xg, s.b, steel),
		s.disp, s.angle,
	)
	Expect(err).NotTo(HaveOccurred())
	return gp
}

func build(motor string, stages ...stage) *actuator.Actuator {
	var comps []dynamo.Component
	if motor != "" {
		s, err := motors.Get(motor, 1, 1)
		Expect(err).NotTo(HaveOccurred())
		comps = append(comps, s)
	}
	for _, st := range stages {
		comps = append(comps, pair(st))
	}
	a, err := actuator.New(comps...)
	Expect(err).NotTo(HaveOccurred())
	return a
}

func linearTwoStages() *actuator.Actuator {
	return build("",
		stage{zp: 10, zg: 50, m: 0.5, b: 8},
		stage{zp: 13, zg: 78, m: 0.5, b: 12, disp: 10},
	)
}

func motoredTwoStages() *actuator.Actuator {
	return build("A",
		stage{zp: 10, zg: 50, m: 0.8, b: 8, disp: 10},
		stage{zp: 13, zg: 78, m: 0.5, b: 12, disp: 10, angle: -2.3},
	)
}

func goodMotoredTwoStages() *actuator.Actuator {
	return build("A",
		stage{zp: 17, xp: 0.15, zg: 60, xg: -0.15, m: 0.5, b: 8, disp: 10},
		stage{zp: 17, xp: 0.15, zg: 78, xg: -0.15, m: 0.5, b: 12, disp: 10, angle: -2.3},
	)
}

func brokenMotoredTwoStages() *actuator.Actuator {
	return build("A",
		stage{zp: 10, zg: 50, m: 0.8, b: 8, disp: 10},
		stage{zp: 13, zg: 80, m: 0.5, b: 12, disp: -3, angle: -2.3},
	)
}

func impossibleMotoredTwoStages() *actuator.Actuator {
	return build("B",
		stage{zp: 10, zg: 35, m: 0.8, b: 8, disp: 10},
		stage{zp: 25, zg: 80, m: 0.5, b: 12, disp: -30, angle: -2.3},
	)
}

var _ = Describe("Actuator", func() {
	Describe("construction", func() {
		It("rejects a motor after a gear pair", func() {
			s, err := motors.Get("A", 1, 1)
			Expect(err).NotTo(HaveOccurred())
			gp := pair(stage{zp: 10, zg: 50, m: 0.5, b: 8})

			_, err = actuator.New(gp, s)
			Expect(err).To(MatchError(actuator.ErrChainOrder))
		})

		It("rejects two motors", func() {
			s1, _ := motors.Get("A", 1, 1)
			s2, _ := motors.Get("B", 1, 1)
			_, err := actuator.New(s1, s2)
			Expect(err).To(MatchError(actuator.ErrChainOrder))
		})

		It("accepts a gear-only chain", func() {
			a := linearTwoStages()
			Expect(a.Components()).To(HaveLen(2))
			Expect(a.Ratio()).To(Equal(30.0))
			Expect(a.GearRatio()).To(Equal(30.0))
		})

		It("includes the motor step ratio in the total ratio only", func() {
			a := motoredTwoStages()
			Expect(a.Ratio()).To(Equal(150.0))
			Expect(a.GearRatio()).To(Equal(30.0))
		})

		It("sums component volumes", func() {
			a := motoredTwoStages()
			sum := 0.
			for _, c := range a.Components() {
				sum += c.Volume()
			}
			Expect(a.Volume()).To(BeNumerically("~", sum, 1e-12))
		})
	})

	Describe("geometry", func() {
		It("bounds a linear two stage train", func() {
			ext := linearTwoStages().Mesh().Extents()
			Expect(ext.X).To(BeNumerically("~", 2.5+15+91.0/4+78.0/4, 0.2))
			Expect(ext.Y).To(BeNumerically("~", 78.0/2, 0.2))
			Expect(ext.Z).To(BeNumerically("~", 20, 0.2))
		})

		It("stacks a negative displacement below the motor", func() {
			ext := impossibleMotoredTwoStages().Mesh().Extents()
			Expect(ext.Z).To(BeNumerically("~", 30+6.4+6, 0.001))
		})

		It("records the gear groups", func() {
			space := motoredTwoStages().Mesh()
			Expect(space.Solids).To(HaveLen(5))
			Expect(space.Groups).To(Equal([][]int{{0, 1}, {2, 3}, {4}}))
		})

		It("returns the same assembly on every call", func() {
			a := motoredTwoStages()
			Expect(a.Mesh()).To(BeIdenticalTo(a.Mesh()))
		})

		DescribeTable("single pair z bounds",
			func(disp, lo, hi, gearLo, gearHi float64) {
				a := build("", stage{zp: 25, zg: 80, m: 0.5, b: 10, disp: disp})
				space := a.Mesh()
				b := space.Bounds()
				Expect(b.Min.Z).To(BeNumerically("~", lo, 1e-8))
				Expect(b.Max.Z).To(BeNumerically("~", hi, 1e-8))

				p := space.Solids[0].Bounds()
				Expect(p.Min.Z).To(BeNumerically("~", lo, 1e-8))
				Expect(p.Max.Z).To(BeNumerically("~", hi, 1e-8))

				g := space.Solids[1].Bounds()
				Expect(g.Min.Z).To(BeNumerically("~", gearLo, 1e-8))
				Expect(g.Max.Z).To(BeNumerically("~", gearHi, 1e-8))
			},
			Entry("plus stretch", 10.0, gears.StretchMargin, 15.0, 10.0, 15.0),
			Entry("minus stretch", -10.0, -15.0, -gears.StretchMargin, -15.0, -10.0),
			Entry("small stretch", gears.StretchMargin/2, gears.StretchMargin/2, gears.StretchMargin/2+5, gears.StretchMargin/2, gears.StretchMargin/2+5),
			Entry("small minus stretch", -gears.StretchMargin/2, -gears.StretchMargin/2-5, -gears.StretchMargin/2, -gears.StretchMargin/2-5, -gears.StretchMargin/2),
		)
	})

	Describe("speed control", func() {
		It("matches input speeds to the total ratio", func() {
			conds := []dynamo.OperatingCondition{
				{Speed: 4. / 3., Torque: 0.24, V: 12, IMax: 0.3},
				{Speed: 8. / 3., Torque: 0.24, V: 12, IMax: 0.3},
			}
			control := linearTwoStages().MatchedSpeedControl(conds)
			Expect(control).To(HaveLen(2))
			Expect(control[0].Speed).To(Equal(40.0))
			Expect(control[0].Torque).To(Equal(0.0))
			Expect(control[1].Speed).To(Equal(80.0))
			Expect(control[1].Torque).To(Equal(0.0))
			Expect(control[1].V).To(Equal(12.0))
			Expect(control[1].IMax).To(Equal(0.3))
		})
	})

	Describe("speed and torque propagation", func() {
		var (
			a       *actuator.Actuator
			conds   []dynamo.OperatingCondition
			control []dynamo.OperatingCondition
		)

		BeforeEach(func() {
			a = motoredTwoStages()
			conds = []dynamo.OperatingCondition{{Speed: 4 * math.Pi / 30, Torque: 0.24, V: 12, IMax: 0.3}}
			control = a.MatchedSpeedControl(conds)
		})

		It("delivers the target speed with spare torque", func() {
			out, history, err := a.SpeedTorque(control, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(1))
			Expect(history).To(HaveLen(3))
			Expect(out[0].Speed).To(BeNumerically("~", 4*math.Pi/30, 1e-12))
			Expect(out[0].Torque).To(BeNumerically(">", 0.24))
		})

		It("scales torque down to the target", func() {
			out, history, err := a.SpeedTorque(control, conds)
			Expect(err).NotTo(HaveOccurred())

			diff, err := out[0].Sub(conds[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(math.Abs(diff.Speed)).To(BeNumerically("<=", 1e-8))
			Expect(math.Abs(diff.Torque)).To(BeNumerically("<=", 1e-8))

			last := a.Components()[2].SpeedTorque(history[2][0])
			Expect(last.Torque).To(BeNumerically("~", out[0].Torque, 1e-9))
		})

		It("rejects mismatched targets", func() {
			_, _, err := a.SpeedTorque(control, append(conds, conds[0]))
			Expect(err).To(MatchError(dynamo.ErrLengthMismatch))
		})

		It("clamps exhausted torque", func() {
			fast := []dynamo.OperatingCondition{{Speed: 1e6, V: 12, IMax: 0.3}}
			out, history, err := a.SpeedTorque(fast, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(history[1][0].Torque).To(Equal(actuator.MinTorque))
			Expect(out[0].Torque).To(BeNumerically(">", 0))
		})
	})

	Describe("gear constraints", func() {
		It("evaluates a well designed train", func() {
			a := goodMotoredTwoStages()
			conds := []dynamo.OperatingCondition{{Speed: 4 * math.Pi / 30, Torque: 0.24, V: 12, IMax: 0.3}}
			_, history, err := a.SpeedTorque(a.MatchedSpeedControl(conds), nil)
			Expect(err).NotTo(HaveOccurred())

			kinematic, resistance, err := a.GearConstraints(history)
			Expect(err).NotTo(HaveOccurred())
			Expect(kinematic).To(HaveLen(2))
			Expect(resistance).To(HaveLen(2))
			for g := range kinematic {
				Expect(kinematic[g][0]).To(Equal(0.0))
				Expect(kinematic[g][1]).To(BeNumerically(">=", 1.4))
				Expect(kinematic[g][2]).To(BeNumerically(">", -5))
				Expect(kinematic[g][3]).To(BeNumerically(">", -5))
				Expect(resistance[g]).To(HaveLen(1))
				for _, v := range resistance[g][0] {
					Expect(v).To(BeNumerically(">", 1))
				}
			}
		})

		It("is empty without gear pairs", func() {
			s, _ := motors.Get("C", 1, 1)
			a, err := actuator.New(s)
			Expect(err).NotTo(HaveOccurred())
			kinematic, resistance, err := a.GearConstraints(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(kinematic).NotTo(BeNil())
			Expect(kinematic).To(BeEmpty())
			Expect(resistance).To(BeEmpty())
		})
	})

	Describe("cost", func() {
		It("appends the housing cost", func() {
			a := motoredTwoStages()
			cost, err := a.Cost(false)
			Expect(err).NotTo(HaveOccurred())
			Expect(cost).To(HaveLen(3))

			sum := 0.
			for _, c := range cost {
				sum += c
			}
			Expect(sum).To(BeNumerically(">", 0))

			withHull, err := a.Cost(true)
			Expect(err).NotTo(HaveOccurred())
			Expect(withHull).To(HaveLen(4))
			Expect(withHull[:3]).To(Equal(cost))
			Expect(withHull[3]).To(BeNumerically(">", 0))
		})
	})

	Describe("internal collisions", func() {
		It("finds none in a valid train", func() {
			Expect(motoredTwoStages().InternalCollisions()).To(Equal(0.0))
		})

		It("detects a gear driven back into the previous stage", func() {
			Expect(brokenMotoredTwoStages().InternalCollisions()).To(BeNumerically(">", 0))
		})

		It("detects a stage pushed through the motor", func() {
			Expect(impossibleMotoredTwoStages().InternalCollisions()).To(BeNumerically(">", 0))
		})
	})
})

var _ = Describe("Curve", func() {
	It("falls off with speed", func() {
		points, err := motoredTwoStages().Curve(1, 12, 0.3, 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(points).To(HaveLen(20))
		Expect(points[0].Speed).To(Equal(0.0))
		Expect(points[19].Speed).To(BeNumerically("~", 1, 1e-12))
		Expect(points[0].Torque).To(BeNumerically(">", points[19].Torque))
		Expect(points[0].Power).To(Equal(0.0))
		Expect(points[5].Current).To(BeNumerically(">", 0))
	})

	It("samples at least both ends", func() {
		points, err := linearTwoStages().Curve(2, 12, 0.3, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(points).To(HaveLen(2))
		Expect(points[1].Current).To(Equal(0.0))
	})
})
