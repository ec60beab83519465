package matrix_test

import (
	"strings"
	"testing"

	. "github.com/andrew-torda/suitebuild/matrix"
)

var testSizes = []struct {
	nr, nc int
}{
	{5, 0},
	{0, 0},
	{3, 5},
	{5, 3},
	{5, 3},
	{4, 4},
	{1, 1},
	{7, 9},
}

func fillAccess(mat *DMatrix2d, nr, nc int) {
	var n float64 = 1
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			mat.Mat[i][j] = n
			n++
		}
	}
}

// checkMat checks a matrix if it seems to be the right size and that
// we can write to every element without the rows overlapping.
func checkMat(m *DMatrix2d, nr int, nc int, t *testing.T) {
	if nrow, ncol := m.Size(); nrow != nr || ncol != nc {
		t.Fatal("TestSize rows x cols, wanted", nr, nc, "got", nrow, ncol)
	}
	fillAccess(m, nr, nc)
	var n float64 = 1
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			if m.Mat[i][j] != n {
				t.Fatal("element", i, j, "got", m.Mat[i][j], "wanted", n)
			}
			n++
		}
	}
}

// Make a fresh matrix on each invocation
func TestFresh(t *testing.T) {
	for _, sizes := range testSizes {
		m := NewDMatrix2d(sizes.nr, sizes.nc)
		checkMat(m, sizes.nr, sizes.nc, t)
	}
}

// TestNoInit calls resize on a matrix not initialised
func TestNoInit(t *testing.T) {
	for _, sizes := range testSizes {
		var m DMatrix2d
		m.Resize(sizes.nr, sizes.nc)
		checkMat(&m, sizes.nr, sizes.nc, t)
	}
}

// TestResize makes a matrix and resizes it a few times
func TestResize(t *testing.T) {
	m := NewDMatrix2d(0, 0)
	for _, sizes := range testSizes {
		m.Resize(sizes.nr, sizes.nc)
		checkMat(m, sizes.nr, sizes.nc, t)
	}
}

// TestRowAppend makes sure appending to a row cannot walk into the next.
func TestRowAppend(t *testing.T) {
	m := NewIMatrix2d(2, 2)
	m.Mat[1][0] = 7
	_ = append(m.Mat[0], 99)
	if m.Mat[1][0] != 7 {
		t.Error("append to row 0 overwrote row 1")
	}
}

func TestFill(t *testing.T) {
	m := NewIMatrix2d(3, 4)
	m.Fill(-1)
	for _, row := range m.Mat {
		for _, x := range row {
			if x != -1 {
				t.Fatal("Fill missed an element")
			}
		}
	}
	if s := m.String(); strings.Count(s, "\n") != 3 {
		t.Error("String should give one line per row, got", s)
	}
}
