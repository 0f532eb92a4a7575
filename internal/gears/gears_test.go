package gears

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/geartrain/internal/dynamo"
	"github.com/san-kum/geartrain/internal/materials"
	"github.com/san-kum/geartrain/internal/mesh"
	"github.com/san-kum/geartrain/internal/roots"
)

func newPair(t *testing.T, zp, zg, m, b, disp float64) *GearPair {
	t.Helper()
	steel := materials.MustGet(materials.Steel)
	gp, err := NewGearPair(NewSpurGear(zp, m, 0, b, steel), NewSpurGear(zg, m, 0, b, steel), disp, 0)
	if err != nil {
		t.Fatalf("NewGearPair failed: %v", err)
	}
	return gp
}

func TestGearPair_Kinematics(t *testing.T) {
	gp := newPair(t, 25, 80, 1, 10, 0)

	if math.Abs(gp.Gear.AlphaPrime-math.Pi/9) > 1e-5 {
		t.Errorf("working angle = %v, want %v", gp.Gear.AlphaPrime, math.Pi/9)
	}
	if math.Abs(gp.ContactRatio-1.719) > 1e-3 {
		t.Errorf("contact ratio = %v, want 1.719", gp.ContactRatio)
	}
	if gp.Interference != 0 {
		t.Errorf("interference = %v, want 0", gp.Interference)
	}

	want := math.Pow(25e-3/2, 2)*math.Pi*10e-3 + math.Pow(80e-3/2, 2)*math.Pi*10e-3
	if math.Abs(gp.Volume()-want)/want > 1e-5 {
		t.Errorf("volume = %v, want %v", gp.Volume(), want)
	}

	if math.Abs(gp.SpecificSliding[0]+2.238193) > 1e-5 {
		t.Errorf("gs1 = %v, want -2.238193", gp.SpecificSliding[0])
	}
	if math.Abs(gp.SpecificSliding[1]+0.884045) > 1e-5 {
		t.Errorf("gs2 = %v, want -0.884045", gp.SpecificSliding[1])
	}

	if gp.Ratio() != 3.2 || gp.U != 3.2 {
		t.Errorf("ratio = %v, u = %v, want 3.2", gp.Ratio(), gp.U)
	}
	if gp.Kind() != dynamo.KindGearPair {
		t.Errorf("kind = %v", gp.Kind())
	}
}

func TestGearPair_Stresses(t *testing.T) {
	gp := newPair(t, 25, 80, 1, 10, 0)

	h0a, ha := gp.SigmaH(1000, 0.318)
	h0b, hb := gp.SigmaH(100, 0.318)
	if h0a != h0b || ha != hb {
		t.Error("contact stress depends on speed")
	}

	f0, f, err := gp.SigmaF(1000, 0.318)
	if err != nil {
		t.Fatalf("SigmaF failed: %v", err)
	}
	tests := []struct {
		name      string
		got, want float64
		tol       float64
	}{
		{"sigmaF0 pinion", f0[0], 7.16e6, 0.06},
		{"sigmaF0 gear", f0[1], 7.03e6, 0.06},
		{"sigmaH0", h0a, 150.9e6, 0.01},
		{"sigmaH pinion", ha[0], 177.62e6, 0.01},
		{"sigmaH gear", ha[1], 168.71e6, 0.01},
	}
	for _, tt := range tests {
		if rel := math.Abs(tt.got-tt.want) / tt.want; rel > tt.tol {
			t.Errorf("%s = %v, want %v (rel err %v)", tt.name, tt.got, tt.want, rel)
		}
	}
	if f0[0] <= f0[1] {
		t.Errorf("pinion root stress %v should exceed gear %v", f0[0], f0[1])
	}
	if f[0]/f0[0] != 1.25 {
		t.Errorf("load factor = %v, want 1.25", f[0]/f0[0])
	}

	op := dynamo.OperatingCondition{Speed: 1000, Torque: 0.318, V: 12, IMax: 0.3}
	sh := gp.SecurityH(op)
	if math.Abs(sh[0]-400e6*0.85/ha[0]) > 1e-9 {
		t.Errorf("SecurityH pinion = %v", sh[0])
	}
	sf, err := gp.SecurityF(op)
	if err != nil {
		t.Fatalf("SecurityF failed: %v", err)
	}
	if math.Abs(sf[1]-200e6*1.7/f[1]) > 1e-9 {
		t.Errorf("SecurityF gear = %v", sf[1])
	}
}

func TestGearPair_SpeedTorque(t *testing.T) {
	gp := newPair(t, 10, 50, 0.5, 8, 0)
	out := gp.SpeedTorque(dynamo.OperatingCondition{Speed: 10, Torque: 0.1, V: 12, IMax: 0.3})
	if out.Speed != 2 || math.Abs(out.Torque-0.5) > 1e-12 {
		t.Errorf("SpeedTorque = %+v", out)
	}
	if out.V != 12 || out.IMax != 0.3 {
		t.Errorf("supply changed: %+v", out)
	}
}

func TestMakeGearPair(t *testing.T) {
	gp, err := MakeGearPair(25, 0, 80, 0, 1, 10, 0, 0)
	if err != nil {
		t.Fatalf("MakeGearPair failed: %v", err)
	}
	if gp.Pinion.Z != 25 || gp.Gear.Z != 80 {
		t.Errorf("teeth = %v/%v", gp.Pinion.Z, gp.Gear.Z)
	}
	if gp.Pinion.M != 1 || gp.Gear.M != 1 {
		t.Errorf("module = %v/%v", gp.Pinion.M, gp.Gear.M)
	}
	if gp.Pinion.Material.Name != materials.Steel {
		t.Errorf("material = %s", gp.Pinion.Material.Name)
	}
}

func TestGearPair_Stretch(t *testing.T) {
	tests := []struct {
		disp, want float64
	}{
		{0, 0},
		{5, 5 - StretchMargin},
		{-10, 10 - StretchMargin},
		{StretchMargin / 2, 0},
	}
	for _, tt := range tests {
		gp := newPair(t, 25, 80, 0.5, 10, tt.disp)
		if math.Abs(gp.Pinion.Stretch-tt.want) > 1e-12 {
			t.Errorf("disp %v: stretch = %v, want %v", tt.disp, gp.Pinion.Stretch, tt.want)
		}
		if gp.Gear.Stretch != 0 {
			t.Errorf("disp %v: gear stretch = %v", tt.disp, gp.Gear.Stretch)
		}
	}
}

func TestGearPair_InvalidGeometry(t *testing.T) {
	_, err := MakeGearPair(10, -0.6, 10, -0.6, 1, 10, 0, 0)
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("expected ErrInvalidGeometry, got %v", err)
	}
	if !errors.Is(err, roots.ErrNoBracket) {
		t.Errorf("expected wrapped ErrNoBracket, got %v", err)
	}

	if _, err := MakeGearPair(0, 0, 80, 0, 1, 10, 0, 0); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("zero teeth: expected ErrInvalidGeometry, got %v", err)
	}
}

func TestGearPair_Place(t *testing.T) {
	tests := []struct {
		name           string
		disp           float64
		pinionZ, gearZ [2]float64
	}{
		{"plus stretch", 10, [2]float64{StretchMargin, 15}, [2]float64{10, 15}},
		{"minus stretch", -10, [2]float64{-15, -StretchMargin}, [2]float64{-15, -10}},
		{"small stretch", StretchMargin / 2, [2]float64{StretchMargin / 2, StretchMargin/2 + 5}, [2]float64{StretchMargin / 2, StretchMargin/2 + 5}},
		{"small minus stretch", -StretchMargin / 2, [2]float64{-StretchMargin/2 - 5, -StretchMargin / 2}, [2]float64{-StretchMargin/2 - 5, -StretchMargin / 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gp := newPair(t, 25, 80, 0.5, 10, tt.disp)
			pl := gp.Place(mesh.Identity())

			if len(pl.Groups) != 2 || len(pl.Groups[0]) != 1 || len(pl.Groups[1]) != 1 {
				t.Fatalf("groups = %v", pl.Groups)
			}
			check := func(label string, s *mesh.Solid, want [2]float64) {
				b := s.Bounds()
				if math.Abs(b.Min.Z-want[0]) > 1e-8 || math.Abs(b.Max.Z-want[1]) > 1e-8 {
					t.Errorf("%s z = [%v, %v], want %v", label, b.Min.Z, b.Max.Z, want)
				}
			}
			check("pinion", pl.Groups[0][0], tt.pinionZ)
			check("gear", pl.Groups[1][0], tt.gearZ)

			if got := pl.Pose.Origin().X; math.Abs(got-gp.APrime) > 1e-12 {
				t.Errorf("next pose x = %v, want %v", got, gp.APrime)
			}
		})
	}
}

func TestGearPair_PlaceRotation(t *testing.T) {
	steel := materials.MustGet(materials.Steel)
	gp, err := NewGearPair(NewSpurGear(25, 0.5, 0, 10, steel), NewSpurGear(80, 0.5, 0, 10, steel), 0, math.Pi/2)
	if err != nil {
		t.Fatal(err)
	}
	o := gp.Place(mesh.Identity()).Pose.Origin()
	if math.Abs(o.X) > 1e-9 || math.Abs(o.Y-gp.APrime) > 1e-9 {
		t.Errorf("rotated gear center = %+v, want (0, %v)", o, gp.APrime)
	}
}

func TestSpurGear_Load(t *testing.T) {
	g := NewSpurGear(25, 1, 0, 10, materials.MustGet(materials.Steel))
	l := g.Load(0.5)
	if math.Abs(l.Ft-40) > 1e-9 {
		t.Errorf("Ft = %v, want 40", l.Ft)
	}
	if l.Fa != 0 {
		t.Errorf("Fa = %v", l.Fa)
	}
	if math.Abs(l.Fn*math.Cos(g.AlphaPrime)-l.Ft) > 1e-9 {
		t.Errorf("Fn = %v inconsistent with Ft", l.Fn)
	}
	if g.Height() != 10 || g.ToothHeight() != 2.25 {
		t.Errorf("height = %v, tooth = %v", g.Height(), g.ToothHeight())
	}
}

func TestGearPair_SinglePairFallback(t *testing.T) {
	gp := newPair(t, 25, 80, 1, 7, 0)
	gp.ContactRatio = 1000
	if got := gp.singlePairFactor(gp.Pinion, gp.Gear); got != 1 {
		t.Errorf("negative radicand: factor = %v, want 1", got)
	}

	gp = newPair(t, 9, 30, 1, 7, 0)
	s0, s := gp.SigmaH(1000, 0.318)
	want := s0 * math.Sqrt(loadFactor)
	if math.Abs(s[1]-want) > 1e-12*want {
		t.Errorf("9/30 gear contact stress = %v, want %v", s[1], want)
	}
}

func TestContactFactor(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{math.NaN(), 1},
		{math.Inf(1), 1},
		{math.Inf(-1), 1},
		{0.7, 1},
		{1, 1},
		{1.3, 1.3},
	}
	for _, tt := range tests {
		if got := contactFactor(tt.in); got != tt.want {
			t.Errorf("contactFactor(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGearPair_InterferenceDepth(t *testing.T) {
	gp, err := MakeGearPair(9, -0.1, 80, -0.6, 0.5, 8, 0, 0)
	if err != nil {
		t.Fatalf("MakeGearPair failed: %v", err)
	}
	if gp.Interference > -0.5 {
		t.Errorf("interference = %v, want a penetration deeper than 0.5", gp.Interference)
	}
}

func TestClampInterference(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{-5e-7, 0},
		{-1e-6, 0},
		{-2e-6, -2e-6},
		{-0.3, -0.3},
	}
	for _, tt := range tests {
		if got := clampInterference(tt.in); got != tt.want {
			t.Errorf("clampInterference(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGearPair_FailedPairKeepsStretch(t *testing.T) {
	steel := materials.MustGet(materials.Steel)
	pinion := NewSpurGear(10, 1, -0.6, 10, steel)
	gear := NewSpurGear(10, 1, -0.6, 10, steel)
	if _, err := NewGearPair(pinion, gear, 5, 0); err == nil {
		t.Fatal("expected an error for the unsolvable pair")
	}
	if pinion.Stretch != 0 {
		t.Errorf("pinion stretch = %v after failed pair, want 0", pinion.Stretch)
	}
}
