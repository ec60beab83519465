// Package rmsd compares two sets of coordinates, either where they
// are, or after the best rotation of one onto the other (Kabsch).
package rmsd

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/andrew-torda/suitebuild/pdb/cmmn"
)

type Xyz = cmmn.Xyz

var (
	ErrLength = errors.New("coordinate sets differ in length")
	ErrEmpty  = errors.New("no coordinates")
	ErrSVD    = errors.New("svd failed")
)

func check(a, b []Xyz) error {
	if len(a) != len(b) {
		return ErrLength
	}
	if len(a) == 0 {
		return ErrEmpty
	}
	return nil
}

// Plain is the rmsd with no fitting.
func Plain(a, b []Xyz) (float64, error) {
	if err := check(a, b); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		sum += r3.Norm2(r3.Sub(a[i], b[i]))
	}
	return math.Sqrt(sum / float64(len(a))), nil
}

func centroid(x []Xyz) Xyz {
	var c Xyz
	for _, v := range x {
		c = r3.Add(c, v)
	}
	return r3.Scale(1/float64(len(x)), c)
}

// Fit is the rigid motion which best puts one set of points on another.
type Fit struct {
	rot      *mat.Dense
	from, to Xyz // centroids of the mobile and target points
}

// NewFit finds the rotation and translation taking mobile onto target
// with the least squared error. It is the usual Kabsch recipe.
// The covariance H = sum m t' goes into an SVD, H = U S V', and the
// rotation is V D U', where D fixes the sign of the determinant so we
// never get a reflection.
func NewFit(mobile, target []Xyz) (Fit, error) {
	if err := check(mobile, target); err != nil {
		return Fit{}, err
	}
	f := Fit{from: centroid(mobile), to: centroid(target)}
	h := mat.NewDense(3, 3, nil)
	for i := range mobile {
		m, t := r3.Sub(mobile[i], f.from), r3.Sub(target[i], f.to)
		mv, tv := [3]float64{m.X, m.Y, m.Z}, [3]float64{t.X, t.Y, t.Z}
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				h.Set(j, k, h.At(j, k)+mv[j]*tv[k])
			}
		}
	}
	var svd mat.SVD
	if ok := svd.Factorize(h, mat.SVDFull); !ok {
		return Fit{}, ErrSVD
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	var vut mat.Dense
	vut.Mul(&v, u.T())
	d := 1.0
	if mat.Det(&vut) < 0 {
		d = -1
	}
	f.rot = mat.NewDense(3, 3, nil)
	f.rot.Product(&v, mat.NewDiagDense(3, []float64{1, 1, d}), u.T())
	return f, nil
}

// Apply moves one point.
func (f Fit) Apply(x Xyz) Xyz {
	v := r3.Sub(x, f.from)
	r := f.rot
	return r3.Add(f.to, Xyz{
		X: r.At(0, 0)*v.X + r.At(0, 1)*v.Y + r.At(0, 2)*v.Z,
		Y: r.At(1, 0)*v.X + r.At(1, 1)*v.Y + r.At(1, 2)*v.Z,
		Z: r.At(2, 0)*v.X + r.At(2, 1)*v.Y + r.At(2, 2)*v.Z,
	})
}

// ApplyAll moves a slice of points, returning a new slice.
func (f Fit) ApplyAll(x []Xyz) []Xyz {
	ret := make([]Xyz, len(x))
	for i, v := range x {
		ret[i] = f.Apply(v)
	}
	return ret
}

// Superposed is the rmsd after the best fit of b onto a.
func Superposed(a, b []Xyz) (float64, error) {
	f, err := NewFit(b, a)
	if err != nil {
		return 0, err
	}
	return Plain(a, f.ApplyAll(b))
}
