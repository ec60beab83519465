// Package matrix 7 feb 2018
// Two dimensional tables for the simplex vertices (float64) and the
// decoder's back pointers (int).
// There are a few ways into this.
// You can declare a matrix. This will have zero space allocated.
// Before you use it, call Resize. This will do the allocation.
// You can call NewDMatrix2d or NewIMatrix2d with the right size. This
// is best if you have a one-off use.
// If you want to use matrices whose size changes on iterations of a loop,
// then declare the matrix at the start. On each iteration call Resize.
// The innards grow as necessary, reusing the backing store where they can.
// Zero rows or columns do not panic. You get a matrix with nothing in it
// and it will explode if you put something there, like any other slice.
package matrix

import (
	"fmt"
	"strings"
)

// elem is what we are willing to store.
type elem interface {
	~float64 | ~int
}

// Matrix2d is a two dimensional array. Mat[i] is row i. All the rows
// share one backing slice, so a whole matrix is one allocation.
type Matrix2d[T elem] struct {
	Mat      [][]T
	fullData []T
}

// DMatrix2d is a two dimensional array of float64's.
type DMatrix2d = Matrix2d[float64]

// IMatrix2d is a two dimensional array of ints.
type IMatrix2d = Matrix2d[int]

// fixSlices points the rows into the backing array.
func (mat *Matrix2d[T]) fixSlices(nr, nc int) {
	tmp := mat.fullData
	mat.Mat = make([][]T, nr)
	for i := range mat.Mat {
		mat.Mat[i] = tmp[:nc:nc]
		tmp = tmp[nc:]
	}
}

// Resize takes a matrix and desired size. If the backing array is too
// small, it is reallocated. Otherwise we only reset the row slices.
// It will not reduce the space used by a matrix. The contents after
// a resize are whatever was there before, so call Fill if you care.
func (mat *Matrix2d[T]) Resize(nr, nc int) *Matrix2d[T] {
	if nrow, ncol := mat.Size(); nrow == nr && ncol == nc {
		return mat
	}
	if nr*nc > cap(mat.fullData) {
		mat.fullData = make([]T, nr*nc)
	}
	mat.fullData = mat.fullData[:nr*nc]
	mat.fixSlices(nr, nc)
	return mat
}

func newMatrix2d[T elem](nr, nc int) *Matrix2d[T] {
	r := new(Matrix2d[T])
	r.fullData = make([]T, nr*nc)
	r.fixSlices(nr, nc)
	return r
}

// NewDMatrix2d gives us a float64 matrix of nr x nc, set to zero.
func NewDMatrix2d(nr, nc int) *DMatrix2d { return newMatrix2d[float64](nr, nc) }

// NewIMatrix2d gives us an int matrix of nr x nc, set to zero.
func NewIMatrix2d(nr, nc int) *IMatrix2d { return newMatrix2d[int](nr, nc) }

// Size returns the number of rows and number of columns.
func (mat *Matrix2d[T]) Size() (nrow, ncol int) {
	if nrow = len(mat.Mat); nrow == 0 {
		return 0, 0
	}
	return nrow, len(mat.Mat[0])
}

// Fill sets every element to x.
func (mat *Matrix2d[T]) Fill(x T) {
	for i := range mat.fullData {
		mat.fullData[i] = x
	}
}

// String returns the matrix printed out in a form that might be useful
// for debugging.
func (mat *Matrix2d[T]) String() string {
	var b strings.Builder
	for _, row := range mat.Mat {
		for _, x := range row {
			fmt.Fprintf(&b, "%8.3g", float64(x))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
