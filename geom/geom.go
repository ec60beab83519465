// Calculate some geometries, lengths, angles and dihedrals, and move
// points around.
// Angles going in and out are in degrees. Internally we use radians.
// Vector arithmetic (add, subtract, scale, dot, cross) is gonum's r3.
// We only add the things r3 does not have or where we want an error
// instead of a NaN.

package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/andrew-torda/suitebuild/pdb/cmmn"
)

type Xyz = cmmn.Xyz

const (
	toRad = math.Pi / 180
	toDeg = 180 / math.Pi
	tiny  = 1e-10 // below this, a vector has no direction
)

type Error string

func (e Error) Error() string { return string(e) }

// ErrDegenerate comes back when points coincide or are collinear and
// there is no well defined direction, axis or angle.
const ErrDegenerate = Error("degenerate geometry")

// Mag is the length of a vector.
func Mag(v Xyz) float64 { return r3.Norm(v) }

// Dist returns the distance between two points.
func Dist(a, b Xyz) float64 { return r3.Norm(r3.Sub(a, b)) }

// Unit returns v scaled to length one. r3.Unit would give us NaNs for
// a zero vector. We would rather know.
func Unit(v Xyz) (Xyz, error) {
	m := r3.Norm(v)
	if m < tiny {
		return Xyz{}, ErrDegenerate
	}
	return r3.Scale(1/m, v), nil
}

// Angle takes three points and returns the angle at b, between the
// rays to a and c, in degrees, 0 to 180.
func Angle(a, b, c Xyz) (float64, error) {
	u, err := Unit(r3.Sub(a, b))
	if err != nil {
		return 0, err
	}
	v, err := Unit(r3.Sub(c, b))
	if err != nil {
		return 0, err
	}
	cosa := r3.Dot(u, v)
	if cosa > 1 { // numerical noise
		cosa = 1
	} else if cosa < -1 {
		cosa = -1
	}
	return math.Acos(cosa) * toDeg, nil
}

// VecAngle is the angle between two vectors, in degrees.
func VecAngle(u, v Xyz) (float64, error) {
	return Angle(u, Xyz{}, v)
}

// Torsion takes four points and returns the dihedral about the p2-p3
// bond, from 0 to 360.
// b1, b2, b3 are the three bond vectors, then
//   atan2 (|b2| b1.(b2 x b3), (b1 x b2).(b2 x b3))
// If the points are collinear, atan2 gets two zeroes and we return 0.
func Torsion(p1, p2, p3, p4 Xyz) float64 {
	b1 := r3.Sub(p2, p1)
	b2 := r3.Sub(p3, p2)
	b3 := r3.Sub(p4, p3)
	n23 := r3.Cross(b2, b3)
	y := r3.Norm(b2) * r3.Dot(b1, n23)
	x := r3.Dot(r3.Cross(b1, b2), n23)
	t := math.Atan2(y, x) * toDeg
	if t < 0 {
		t += 360
	}
	return t
}

// AngleDiff returns a - b, wrapped into (-180, 180]. Use it for
// comparing torsions, where 359 and 1 are only 2 degrees apart.
func AngleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// DistToLine is the perpendicular distance from p to the line through
// c and n.
//   |(c-n) x (n-p)| / |c-n|
func DistToLine(p, c, n Xyz) (float64, error) {
	cn := r3.Sub(c, n)
	l := r3.Norm(cn)
	if l < tiny {
		return 0, ErrDegenerate
	}
	return r3.Norm(r3.Cross(cn, r3.Sub(n, p))) / l, nil
}
