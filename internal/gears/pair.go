package gears

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/geartrain/internal/dynamo"
	"github.com/san-kum/geartrain/internal/materials"
	"github.com/san-kum/geartrain/internal/mesh"
	"github.com/san-kum/geartrain/internal/roots"
)

// ErrInvalidGeometry indicates a gear pair whose working conditions cannot
// be solved.
var ErrInvalidGeometry = errors.New("gears: invalid gear pair geometry")

// StretchMargin is the axial clearance kept between stacked stages.
const StretchMargin = 0.001

const (
	loadFactor  = 1.25
	contactCorr = 0.85
	bendingCorr = 2 * 0.85
)

func involute(a float64) float64 { return math.Tan(a) - a }

// GearPair is a pinion driving a gear. All kinematic quantities are fixed at
// construction.
type GearPair struct {
	Pinion *SpurGear
	Gear   *SpurGear

	disp  float64
	angle float64

	AlphaPrime float64
	A0         float64 // reference center distance
	APrime     float64 // working center distance
	I          float64
	U          float64

	Interference    float64
	ContactRatio    float64
	SpecificSliding [2]float64
	volume, cost    float64
}

// NewGearPair meshes pinion with gear, displaced axially by disp from the
// previous stage and rotated by angle about the previous output axis. The
// pinion is stretched to bridge the displacement.
func NewGearPair(pinion, gear *SpurGear, disp, angle float64) (*GearPair, error) {
	if pinion.Z <= 0 || gear.Z <= 0 || pinion.M <= 0 || gear.M <= 0 {
		return nil, fmt.Errorf("teeth %g/%g module %g/%g: %w", pinion.Z, gear.Z, pinion.M, gear.M, ErrInvalidGeometry)
	}

	gp := &GearPair{
		Pinion: pinion,
		Gear:   gear,
		disp:   disp,
		angle:  angle,
		A0:     0.5 * (pinion.D() + gear.D()),
		I:      gear.Z / pinion.Z,
		U:      math.Max(gear.Z, pinion.Z) / math.Min(gear.Z, pinion.Z),
	}

	alpha := pinion.Alpha
	shift := 2 * (pinion.X + gear.X) / (pinion.Z + gear.Z) * math.Tan(alpha)
	f := func(aw float64) float64 {
		return involute(aw) - shift - involute(alpha)
	}
	ap, err := roots.Brent(f, 0.1, math.Pi/2, roots.Options{})
	if err != nil {
		return nil, fmt.Errorf("working pressure angle for %g/%g teeth: %w: %w", pinion.Z, gear.Z, ErrInvalidGeometry, err)
	}
	gp.AlphaPrime = ap
	pinion.Stretch = math.Max(0, math.Abs(disp)-StretchMargin)
	pinion.UpdatePrime(ap)
	gear.UpdatePrime(ap)
	gp.APrime = 0.5 * (pinion.DPrime() + gear.DPrime())

	gp.Interference = gp.interference()
	gp.ContactRatio = (gear.G() + pinion.G()) / (math.Pi * pinion.ModulePrime() * math.Cos(ap))
	gp.SpecificSliding = [2]float64{
		1 - gp.AT2()/gp.U/gp.AT1(),
		1 - gp.U*gp.ET1()/gp.ET2(),
	}
	gp.volume = pinion.Volume() + gear.Volume()
	gp.cost = pinion.Cost() + gear.Cost()
	return gp, nil
}

// MakeGearPair builds a steel pair sharing module m and width multiplier b.
func MakeGearPair(z1, x1, z2, x2, m, b, disp, angle float64) (*GearPair, error) {
	steel := materials.MustGet(materials.Steel)
	return NewGearPair(
		NewSpurGear(z1, m, x1, b, steel),
		NewSpurGear(z2, m, x2, b, steel),
		disp, angle,
	)
}

// Path of contact along the line of action.
func (gp *GearPair) T1T2() float64 { return gp.APrime * math.Sin(gp.AlphaPrime) }
func (gp *GearPair) ET1() float64  { return gp.Pinion.RhoA() }
func (gp *GearPair) AT2() float64  { return gp.Gear.RhoA() }
func (gp *GearPair) AT1() float64  { return gp.T1T2() - gp.AT2() }
func (gp *GearPair) ET2() float64  { return gp.T1T2() - gp.ET1() }

// interference is zero when the teeth clear, negative otherwise.
func (gp *GearPair) interference() float64 {
	dgf := gp.Gear.CT() - gp.Pinion.G()
	dga := gp.Pinion.CT() - gp.Gear.G()
	return clampInterference(math.Min(dgf, 0) + math.Min(dga, 0) + math.Min(gp.AT2(), 0))
}

// clampInterference zeroes round-off sized penetration depths.
func clampInterference(v float64) float64 {
	if v < 0 && v >= -1e-6 {
		return 0
	}
	return v
}

func (gp *GearPair) Kind() dynamo.Kind { return dynamo.KindGearPair }
func (gp *GearPair) Ratio() float64    { return gp.I }
func (gp *GearPair) Height() float64   { return gp.Pinion.Height() }
func (gp *GearPair) Disp() float64     { return gp.disp }
func (gp *GearPair) Angle() float64    { return gp.angle }
func (gp *GearPair) Volume() float64   { return gp.volume }
func (gp *GearPair) Cost() float64     { return gp.cost }

// SpeedTorque reduces speed and multiplies torque by the pair ratio.
func (gp *GearPair) SpeedTorque(op dynamo.OperatingCondition) dynamo.OperatingCondition {
	out := op
	out.Speed = op.Speed / gp.I
	out.Torque = op.Torque * gp.I
	return out
}

func (gp *GearPair) zEps() float64 { return math.Sqrt((4 - gp.ContactRatio) / 3) }

func (gp *GearPair) sigmaH0(ft float64) float64 {
	p, g := gp.Pinion, gp.Gear
	cosAt := math.Cos(p.Alpha)
	zH := math.Sqrt(2 / (cosAt * cosAt) / math.Tan(p.AlphaPrime))
	zE := math.Sqrt(1 / ((1-p.Material.Nu*p.Material.Nu)/p.Material.E +
		(1-g.Material.Nu*g.Material.Nu)/g.Material.E) / math.Pi)
	return zH * zE * gp.zEps() * math.Sqrt(ft/(p.D()*1e-3)/(p.B*1e-3)*(gp.U+1)/gp.U)
}

// singlePairFactor is the ISO 6336-2 single pair tooth contact factor seen
// from gear a while b is the mating gear.
func (gp *GearPair) singlePairFactor(a, b *SpurGear) float64 {
	ra := math.Sqrt(a.Da()*a.Da()/(a.Db()*a.Db())-1) - 2*math.Pi/a.Z
	rb := math.Sqrt(b.Da()*b.Da()/(b.Db()*b.Db())-1) - (gp.ContactRatio-1)*2*math.Pi/b.Z
	return contactFactor(math.Tan(gp.Pinion.AlphaPrime) / math.Sqrt(ra*rb))
}

// contactFactor falls back to 1 when the single pair factor is undefined or
// below unity.
func contactFactor(m float64) float64 {
	if math.IsNaN(m) || math.IsInf(m, 0) || m < 1 {
		return 1
	}
	return m
}

// SigmaH returns the nominal contact stress and the corrected stress at the
// pinion and gear single contact points. Speed does not enter the stress
// because dynamic factors are 1.
func (gp *GearPair) SigmaH(speed, torque float64) (float64, [2]float64) {
	ft := gp.Pinion.Load(torque).Ft
	s0 := gp.sigmaH0(ft)
	zb := gp.singlePairFactor(gp.Pinion, gp.Gear)
	zd := gp.singlePairFactor(gp.Gear, gp.Pinion)
	k := math.Sqrt(loadFactor)
	return s0, [2]float64{s0 * zb * k, s0 * zd * k}
}

// sigmaF0 is the nominal tooth root stress of gear for tangential load ft,
// ISO 6336-3 method B with the unshifted generating rack.
func (gp *GearPair) sigmaF0(ft float64, gear *SpurGear) (float64, error) {
	m, alpha := gear.M, gear.Alpha
	rhoFP := 0.38 * m
	e := math.Pi/4*m - gear.Dedendum()*math.Tan(alpha) - (1-math.Sin(alpha))*rhoFP/math.Cos(alpha)
	g := rhoFP/m - gear.Dedendum()/m + gear.X
	zn := gear.Z
	dn := m * zn
	dbn := dn * math.Cos(alpha)
	dan := dn + gear.Da() - gear.D()
	lead := math.Sqrt(dan*dan/4-dbn*dbn/4) - math.Pi*gear.D()*math.Cos(alpha)/gear.Z*(gp.ContactRatio-1)
	den := 2 * math.Sqrt(lead*lead+dbn*dbn/4)
	alphaEn := math.Acos(dbn / den)
	ge := (0.5*math.Pi+2*math.Tan(alpha)*gear.X)/zn + involute(alpha) - involute(alphaEn)
	alphaFen := alphaEn - ge

	const tau = math.Pi / 3
	h := 2/zn*(math.Pi/2-e/m) - tau

	f := func(t float64) float64 { return t - 2*g/zn*math.Tan(t) + h }
	df := func(t float64) float64 {
		c := math.Cos(t)
		return 1 - 2*g/zn/(c*c)
	}
	theta, err := roots.Newton(f, df, math.Pi/6, roots.Options{})
	if err != nil {
		return 0, fmt.Errorf("root fillet angle for %g teeth: %w", gear.Z, err)
	}

	ct := math.Cos(theta)
	sFn := zn*math.Sin(tau-theta) + math.Sqrt(3)*(g/ct-rhoFP/m)
	hFe := 0.5 * ((math.Cos(ge)-math.Sin(ge)*math.Tan(alphaFen))*den/m - zn*math.Cos(tau-theta) - (g/ct - rhoFP/m))
	rhoF := rhoFP/m + 2*g*g/(ct*(zn*ct*ct-2*g))

	yF := 6 * hFe * math.Cos(alphaFen) / (sFn * sFn * math.Cos(alpha))
	l := sFn / hFe
	qs := sFn / rhoF / 2
	yS := (1.2 + 0.13*l) * math.Pow(qs, 1/(1.21+2.3/l))
	const yDT = 1.
	return ft / (gear.B * m * 1e-6) * yF * yS * yDT, nil
}

// SigmaF returns nominal and corrected tooth root stresses for pinion and
// gear.
func (gp *GearPair) SigmaF(speed, torque float64) (nominal, corrected [2]float64, err error) {
	ft := gp.Pinion.Load(torque).Ft
	for i, g := range []*SpurGear{gp.Pinion, gp.Gear} {
		s, err := gp.sigmaF0(ft, g)
		if err != nil {
			return nominal, corrected, err
		}
		nominal[i] = s
		corrected[i] = s * loadFactor
	}
	return nominal, corrected, nil
}

// SecurityH is the flank safety factor of pinion and gear.
func (gp *GearPair) SecurityH(op dynamo.OperatingCondition) [2]float64 {
	_, sig := gp.SigmaH(op.Speed, op.Torque)
	return [2]float64{
		gp.Pinion.Material.SigmaHLim * contactCorr / sig[0],
		gp.Gear.Material.SigmaHLim * contactCorr / sig[1],
	}
}

// SecurityF is the tooth root safety factor of pinion and gear.
func (gp *GearPair) SecurityF(op dynamo.OperatingCondition) ([2]float64, error) {
	_, sig, err := gp.SigmaF(op.Speed, op.Torque)
	if err != nil {
		return [2]float64{}, err
	}
	return [2]float64{
		gp.Pinion.Material.SigmaFLim * bendingCorr / sig[0],
		gp.Gear.Material.SigmaFLim * bendingCorr / sig[1],
	}, nil
}

// Place positions the pinion past the previous stage and the gear at the
// working center distance. The pinion continues the current group and the
// gear opens a new one.
func (gp *GearPair) Place(at mesh.Transform) dynamo.Placement {
	sign := dynamo.Sign(gp.disp)
	var lift float64
	if math.Abs(gp.disp) < StretchMargin {
		lift = gp.disp + sign*gp.Height()/2
	} else {
		lift = sign * (gp.Height() + gp.Pinion.Stretch + 2*StretchMargin) / 2
	}
	at = at.Mul(mesh.Translation(0, 0, lift)).Mul(mesh.RotationZ(gp.angle))
	pinion := gp.Pinion.Solid(at)

	at = at.Mul(mesh.Translation(gp.APrime, 0, sign*gp.Pinion.Stretch/2))
	gear := gp.Gear.Solid(at)

	return dynamo.Placement{
		Pose:   at,
		Groups: [][]*mesh.Solid{{pinion}, {gear}},
	}
}

var _ dynamo.Component = (*GearPair)(nil)
