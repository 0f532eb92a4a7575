package gears

import (
	"math"

	"github.com/san-kum/geartrain/internal/materials"
	"github.com/san-kum/geartrain/internal/mesh"
)

// NominalPressureAngle is the 20 degree reference profile angle.
const NominalPressureAngle = math.Pi / 9

// SpurGear is a single external involute gear. Prime quantities depend on
// the working pressure angle and are only valid after UpdatePrime.
type SpurGear struct {
	Z        float64
	M        float64
	X        float64
	B        float64 // absolute width
	Stretch  float64
	Material *materials.Material

	Alpha      float64
	AlphaPrime float64

	ha, hf float64
	mPrime float64
}

// NewSpurGear builds a gear of Z teeth with module m, profile shift x and
// width bMult*m.
func NewSpurGear(z, m, x, bMult float64, material *materials.Material) *SpurGear {
	g := &SpurGear{
		Z:        z,
		M:        m,
		X:        x,
		B:        bMult * m,
		Material: material,
		Alpha:    NominalPressureAngle,
		ha:       m,
		hf:       1.25 * m,
	}
	g.UpdatePrime(g.Alpha)
	return g
}

// UpdatePrime sets the working pressure angle and the working module.
func (g *SpurGear) UpdatePrime(alphaPrime float64) {
	g.AlphaPrime = alphaPrime
	g.mPrime = g.M * math.Cos(g.Alpha) / math.Cos(alphaPrime)
}

func (g *SpurGear) Addendum() float64    { return g.ha }
func (g *SpurGear) Dedendum() float64    { return g.hf }
func (g *SpurGear) ModulePrime() float64 { return g.mPrime }
func (g *SpurGear) D() float64           { return g.M * g.Z }
func (g *SpurGear) DPrime() float64      { return g.mPrime * g.Z }
func (g *SpurGear) Db() float64          { return g.DPrime() * math.Cos(g.AlphaPrime) }
func (g *SpurGear) Da() float64          { return g.D() + 2*(g.ha+g.X*g.M) }
func (g *SpurGear) Df() float64          { return g.D() - 2*(g.hf-g.X*g.M) }
func (g *SpurGear) ToothHeight() float64 { return g.ha + g.hf }
func (g *SpurGear) Height() float64      { return g.B }

// CT is the distance from the pitch point to the base circle tangency.
func (g *SpurGear) CT() float64 { return 0.5 * g.Db() * math.Tan(g.AlphaPrime) }

// RhoA is the radius of curvature of the involute at the tip.
func (g *SpurGear) RhoA() float64 {
	da, db := g.Da(), g.Db()
	return 0.5 * math.Sqrt(da*da-db*db)
}

// G is the length of contact contributed by this gear's addendum.
func (g *SpurGear) G() float64 { return g.RhoA() - g.CT() }

// Volume in cubic metres of the full pitch cylinder including stretch.
func (g *SpurGear) Volume() float64 {
	d := g.D()
	return math.Pi * d * d / 4 * (g.B + g.Stretch) * 1e-9
}

func (g *SpurGear) Cost() float64 {
	return g.Volume() * g.Material.Rho * g.Material.Cost
}

// Load is the force acting on a tooth flank.
type Load struct {
	Ft, Fr, Fa, Fn float64
}

// Load returns the tooth forces for a torque on this gear.
func (g *SpurGear) Load(torque float64) Load {
	ft := 2 * torque / (g.DPrime() * 1e-3)
	return Load{
		Ft: ft,
		Fr: ft * math.Tan(g.AlphaPrime),
		Fa: 0,
		Fn: ft / math.Cos(g.AlphaPrime),
	}
}

// Solid returns the gear envelope placed at the given pose.
func (g *SpurGear) Solid(at mesh.Transform) *mesh.Solid {
	return mesh.NewCylinder(g.DPrime()/2-0.005, g.B+g.Stretch, at)
}
