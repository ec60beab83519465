// 9 Feb 2021

package geom_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	. "github.com/andrew-torda/suitebuild/geom"
)

// permuteXyz rotates x, y znd z for tests whose answers should not change
// when we move the axes around.
func permuteXyz(x Xyz) Xyz {
	x.X, x.Y, x.Z = x.Y, x.Z, x.X
	return x
}

// notApproxEqual returns true if x and y are not approximately equal.
func notApproxEqual(x, y float64) bool {
	diff := math.Abs(x - y)
	if math.IsNaN(diff) {
		return true
	}
	return diff > 0.00001
}

// torsDiffers is notApproxEqual for angles, where 0 and 360 are the same.
func torsDiffers(x, y float64) bool {
	return notApproxEqual(AngleDiff(x, y), 0)
}

var disttests = []struct {
	name   string
	x1, x2 Xyz
	res    float64
}{
	{"3.8 ", Xyz{X: 3.8}, Xyz{}, 3.8},
	{"onex", Xyz{}, Xyz{X: 1}, 1},
	{"333 ", Xyz{X: 3, Y: 3, Z: 3}, Xyz{X: 1}, math.Sqrt(22)},
	{"same", Xyz{X: 1, Y: 2, Z: 3}, Xyz{X: 1, Y: 2, Z: 3}, 0},
}

func TestDist(t *testing.T) {
	for _, test := range disttests {
		x1, x2 := test.x1, test.x2
		for i := 0; i < 3; i++ {
			d1, d2 := Dist(x1, x2), Dist(x2, x1)
			if d1 != d2 {
				t.Errorf("test %s not symmetric %f %f", test.name, d1, d2)
			}
			if notApproxEqual(d1, test.res) {
				t.Errorf("test %s got %f wanted %f", test.name, d1, test.res)
			}
			x1, x2 = permuteXyz(x1), permuteXyz(x2)
		}
	}
}

var angletests = []struct {
	x1, x2, x3 Xyz
	res        float64
}{
	{Xyz{X: +1}, Xyz{}, Xyz{X: 0.9999}, 0},
	{Xyz{Y: 1}, Xyz{}, Xyz{X: 1}, 90},
	{Xyz{X: -1}, Xyz{}, Xyz{X: 1}, 180},
	{Xyz{Y: 1}, Xyz{}, Xyz{X: 0.1}, 90},
	{Xyz{Y: 1}, Xyz{}, Xyz{X: 9.9}, 90},
	{Xyz{X: -1}, Xyz{}, Xyz{X: 1, Y: 1}, 135},
	{Xyz{X: -1}, Xyz{}, Xyz{X: 9.9, Y: 9.9}, 135},
}

func TestAngle(t *testing.T) {
	for _, test := range angletests {
		x1, x2, x3 := test.x1, test.x2, test.x3
		for i := 0; i < 3; i++ {
			if a, err := Angle(x1, x2, x3); err != nil {
				t.Errorf("%v error with %v %v %v", err, x1, x2, x3)
			} else if notApproxEqual(a, test.res) {
				t.Errorf("TestAngle got %f wanted %f, %v, %v, %v",
					a, test.res, x1, x2, x3)
			}
			x1, x2, x3 = permuteXyz(x1), permuteXyz(x2), permuteXyz(x3)
		}
	}
}

func TestAngleDegenerate(t *testing.T) {
	p := Xyz{X: 1, Y: 1, Z: 1}
	if _, err := Angle(p, p, Xyz{}); err != ErrDegenerate {
		t.Error("coincident points should give ErrDegenerate, got", err)
	}
	if _, err := Unit(Xyz{}); err != ErrDegenerate {
		t.Error("zero vector should not have a unit vector")
	}
}

var dhdrltests = []struct {
	x1, x2, x3, x4 Xyz
	res            float64
}{
	{Xyz{X: 0, Y: 1, Z: 0}, Xyz{X: 1, Y: 0, Z: 0}, Xyz{X: 2, Y: 0, Z: 0}, Xyz{X: 3, Y: 1, Z: 0}, 0},
	{Xyz{X: 0, Y: 1, Z: 0}, Xyz{X: 1, Y: 0, Z: 0}, Xyz{X: 2, Y: 0, Z: 0}, Xyz{X: 3, Y: 1, Z: 1e-9}, 0},
	{Xyz{X: 0, Y: 1, Z: 0}, Xyz{X: 1, Y: 0, Z: 0}, Xyz{X: 2, Y: 0, Z: 0}, Xyz{X: 3, Y: -1, Z: 0}, 180},
	{Xyz{X: 0, Y: 1, Z: 0}, Xyz{X: 1, Y: 0, Z: 0}, Xyz{X: 2, Y: 0, Z: 0}, Xyz{X: 3, Y: 0, Z: 1}, 90},
	{Xyz{X: 0, Y: 1, Z: 0}, Xyz{X: 1, Y: 0, Z: 0}, Xyz{X: 2, Y: 0, Z: 0}, Xyz{X: 3, Y: 0, Z: -1}, 270},
	{Xyz{X: 0, Y: 1, Z: 0}, Xyz{X: 1, Y: 0, Z: 0}, Xyz{X: 2, Y: 0, Z: 0}, Xyz{X: 3, Y: 1, Z: 1}, 45},
	{Xyz{X: 0, Y: 1, Z: 0}, Xyz{X: 1, Y: 0, Z: 0}, Xyz{X: 2, Y: 0, Z: 0}, Xyz{X: 3, Y: 1, Z: -1}, 315},
	{Xyz{X: 0, Y: 1, Z: 0}, Xyz{X: 1, Y: 0, Z: 0}, Xyz{X: 2, Y: 0, Z: 0}, Xyz{X: 3, Y: -1, Z: -1}, 225},
}

// mirror reflects through the xy plane, which flips the handedness.
func mirror(x Xyz) Xyz { x.Z = -x.Z; return x }

// TestTorsion checks values, then that a torsion does not change if we
// shift, stretch or reverse the points, and that mirroring gives 360 - t.
func TestTorsion(t *testing.T) {
	const emsg = "error with %v %v %v %v wanted: %.3g got: %.3g"
	shift := Xyz{X: 1.5, Y: -2, Z: 7}
	for _, test := range dhdrltests {
		x1, x2, x3, x4 := test.x1, test.x2, test.x3, test.x4
		for i := 0; i < 3; i++ {
			if a := Torsion(x1, x2, x3, x4); torsDiffers(a, test.res) {
				t.Errorf(emsg, x1, x2, x3, x4, test.res, a)
			}
			if a := Torsion(x4, x3, x2, x1); torsDiffers(a, test.res) {
				t.Errorf("reversed "+emsg, x4, x3, x2, x1, test.res, a)
			}
			s1, s2, s3, s4 := r3.Add(x1, shift), r3.Add(x2, shift), r3.Add(x3, shift), r3.Add(x4, shift)
			if a := Torsion(s1, s2, s3, s4); torsDiffers(a, test.res) {
				t.Errorf("shifted "+emsg, s1, s2, s3, s4, test.res, a)
			}
			x1, x2, x3, x4 = permuteXyz(x1), permuteXyz(x2), permuteXyz(x3), permuteXyz(x4)
		}
		m := Torsion(mirror(test.x1), mirror(test.x2), mirror(test.x3), mirror(test.x4))
		if torsDiffers(m, 360-test.res) {
			t.Errorf("mirror image gave %f wanted %f", m, 360-test.res)
		}
	}
}

func TestTorsionRange(t *testing.T) {
	a, b, c := Xyz{X: 0, Y: 1, Z: 0}, Xyz{X: 1, Y: 0, Z: 0}, Xyz{X: 2, Y: 0, Z: 0}
	for i := 0; i < 720; i += 7 {
		d, err := Place(a, b, c, 1.5, 110, float64(i)-360)
		if err != nil {
			t.Fatal(err)
		}
		tor := Torsion(a, b, c, d)
		if tor < 0 || tor >= 360 {
			t.Fatalf("torsion %f out of range", tor)
		}
	}
}

var difftests = []struct{ a, b, res float64 }{
	{10, 350, 20},
	{350, 10, -20},
	{180, 0, 180},
	{0, 180, 180},
	{720, 1, -1},
	{-5, 5, -10},
}

func TestAngleDiff(t *testing.T) {
	for _, test := range difftests {
		if d := AngleDiff(test.a, test.b); notApproxEqual(d, test.res) {
			t.Errorf("AngleDiff(%g, %g) got %g wanted %g", test.a, test.b, d, test.res)
		}
	}
}

// TestPlace builds an atom, then measures what we built.
func TestPlace(t *testing.T) {
	a, b, c := Xyz{X: 1.2, Y: 0.3, Z: -1}, Xyz{X: 0.1, Y: 1, Z: 0.2}, Xyz{X: 0.5, Y: 2.4, Z: 0.4}
	for _, tor := range []float64{0, 30, 90, 179, 181, 270, 355} {
		for _, ang := range []float64{90, 104, 120.9} {
			d, err := Place(a, b, c, 1.593, ang, tor)
			if err != nil {
				t.Fatal(err)
			}
			if notApproxEqual(Dist(c, d), 1.593) {
				t.Error("bond wrong", Dist(c, d))
			}
			if x, _ := Angle(b, c, d); notApproxEqual(x, ang) {
				t.Error("angle wrong", x, ang)
			}
			if x := Torsion(a, b, c, d); torsDiffers(x, tor) {
				t.Error("torsion wrong", x, tor)
			}
		}
	}
	if _, err := Place(Xyz{}, Xyz{X: 1}, Xyz{X: 2}, 1, 100, 100); err != ErrDegenerate {
		t.Error("collinear reference atoms should fail")
	}
}

// TestRotateTorsion rotates the last atom about the central bond.
// The torsion should go up by exactly the rotation angle.
func TestRotateTorsion(t *testing.T) {
	a, b, c, d := Xyz{X: 0, Y: 1, Z: 0}, Xyz{X: 1, Y: 0, Z: 0}, Xyz{X: 2, Y: 0, Z: 0}, Xyz{X: 3, Y: 1, Z: 0.5}
	t0 := Torsion(a, b, c, d)
	for _, delta := range []float64{-100, -3, 0, 17, 90, 250} {
		r, err := RotateAbout([]Xyz{d}, b, c, delta)
		if err != nil {
			t.Fatal(err)
		}
		if tor := Torsion(a, b, c, r[0]); torsDiffers(tor, t0+delta) {
			t.Errorf("rotating by %g got torsion %g wanted %g", delta, tor, t0+delta)
		}
		if notApproxEqual(Dist(c, r[0]), Dist(c, d)) {
			t.Error("rotation changed a distance")
		}
	}
}

func TestRotateRoundTrip(t *testing.T) {
	pts := []Xyz{{X: 1, Y: 2, Z: 3}, {X: -1, Y: 0.5, Z: 2}, {X: 0, Y: 0, Z: 0}}
	origin, axis := Xyz{X: 0.3, Y: -1}, Xyz{X: 1, Y: 1, Z: -2}
	there, err := Rotate(pts, origin, axis, 73)
	if err != nil {
		t.Fatal(err)
	}
	back, _ := Rotate(there, origin, axis, -73)
	for i := range pts {
		if Dist(pts[i], back[i]) > 1e-9 {
			t.Error("round trip moved point", i, pts[i], back[i])
		}
	}
	if _, err := Rotate(pts, origin, Xyz{}, 10); err != ErrDegenerate {
		t.Error("zero axis should be an error")
	}
}

func TestDistToLine(t *testing.T) {
	d, err := DistToLine(Xyz{X: 1, Y: 3}, Xyz{}, Xyz{X: 5})
	if err != nil || notApproxEqual(d, 3) {
		t.Error("DistToLine got", d, err)
	}
	if _, err := DistToLine(Xyz{}, Xyz{X: 1}, Xyz{X: 1}); err == nil {
		t.Error("line through one point should fail")
	}
}
