// 3 jan 2020
// The problem with a normal test of the simplex is that you will
// never see small mistakes. The method will probably converge, just
// inefficiently.
// I want to test some specific parts.

package simplex

import (
	"github.com/andrew-torda/suitebuild/matrix"
)

func SplxFromSlice(nparam int, x []float64) splx {
	npoint := nparam + 1
	if npoint*nparam != len(x) {
		panic("Should not happen in testing")
	}
	splx := splx{matrix.NewDMatrix2d(npoint, nparam)}
	n := 0
	for i := range splx.Mat { // Put array into simplex
		for j := range splx.Mat[i] {
			splx.Mat[i][j] = x[n]
			n++
		}
	}
	return splx
}

// Amo1 does one reflection of the worst vertex and returns it.
func Amo1(splx splx, cost CostFun) []float64 {
	var sWk sWk
	sWk.init(len(splx.Mat[0]), cost)
	if err := sWk.setupFirstStep(splx); err != nil {
		panic("cost function broke in testing")
	}
	sWk.sortRank()
	sWk.centroid(splx)
	_, _ = amotry(splx, alpha, &sWk)
	return splx.Mat[sWk.rank[0]] // highest vertex
}

// Centroid returns the centroid, leaving out the worst vertex.
func Centroid(splx splx, cost CostFun) []float64 {
	var sWk sWk
	sWk.init(len(splx.Mat[0]), cost)
	sWk.setupFirstStep(splx)
	sWk.sortRank()
	sWk.centroid(splx)
	return sWk.cntrd
}
