// 9 Feb 2021
// Rotations about an arbitrary axis and placing atoms from internal
// coordinates.

package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Rotation is an axis-angle rotation, ready to be applied to many points.
// It is Rodrigues' formula
//   v' = v cos t + (k x v) sin t + k (k.v)(1 - cos t)
// with v measured from origin. A positive angle is counter-clockwise when
// you look down the axis towards origin, so rotating the last atom of a
// dihedral about the b->c axis by t increases the dihedral by t.
type Rotation struct {
	origin Xyz
	k      Xyz // unit axis
	cos    float64
	sin    float64
}

// NewRotation sets up a rotation by deg degrees about the axis through
// origin with direction axis. A zero length axis is an error, never a
// silent identity.
func NewRotation(origin, axis Xyz, deg float64) (Rotation, error) {
	k, err := Unit(axis)
	if err != nil {
		return Rotation{}, err
	}
	s, c := math.Sincos(deg * toRad)
	return Rotation{origin: origin, k: k, cos: c, sin: s}, nil
}

// Apply rotates one point.
func (r Rotation) Apply(p Xyz) Xyz {
	v := r3.Sub(p, r.origin)
	t := r3.Scale(r.cos, v)
	t = r3.Add(t, r3.Scale(r.sin, r3.Cross(r.k, v)))
	t = r3.Add(t, r3.Scale(r3.Dot(r.k, v)*(1-r.cos), r.k))
	return r3.Add(t, r.origin)
}

// Rotate rotates a slice of points about the axis through axisPoint
// along axisDir. The input is not changed.
func Rotate(points []Xyz, axisPoint, axisDir Xyz, deg float64) ([]Xyz, error) {
	rot, err := NewRotation(axisPoint, axisDir, deg)
	if err != nil {
		return nil, err
	}
	ret := make([]Xyz, len(points))
	for i, p := range points {
		ret[i] = rot.Apply(p)
	}
	return ret, nil
}

// RotateAbout rotates points about the bond a->b. The frame is moved so
// a is at the origin, rotated and moved back.
func RotateAbout(points []Xyz, a, b Xyz, deg float64) ([]Xyz, error) {
	return Rotate(points, a, r3.Sub(b, a), deg)
}

// Place puts a new atom d so that |cd| is bond, angle bcd is angle and
// the dihedral abcd is torsion. This is the usual trick for going from
// internal coordinates to Cartesian.
func Place(a, b, c Xyz, bond, angle, torsion float64) (Xyz, error) {
	bc, err := Unit(r3.Sub(c, b))
	if err != nil {
		return Xyz{}, err
	}
	n, err := Unit(r3.Cross(r3.Sub(b, a), bc))
	if err != nil {
		return Xyz{}, err // a, b and c on a line
	}
	m := r3.Cross(n, bc)
	st, ct := math.Sincos(angle * toRad)
	sp, cp := math.Sincos(torsion * toRad)
	d := r3.Scale(-bond*ct, bc)
	d = r3.Add(d, r3.Scale(bond*st*cp, m))
	d = r3.Add(d, r3.Scale(bond*st*sp, n))
	return r3.Add(c, d), nil
}
