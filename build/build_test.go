package build_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	. "github.com/andrew-torda/suitebuild/build"
	"github.com/andrew-torda/suitebuild/geom"
	"github.com/andrew-torda/suitebuild/pdb/cmmn"
	"github.com/andrew-torda/suitebuild/rotamer"
)

const eps = 1e-6

func angle(t *testing.T, a, b, c Xyz) float64 {
	t.Helper()
	x, err := geom.Angle(a, b, c)
	require.NoError(t, err)
	return x
}

// TestTemplates checks each template really has the pucker it is
// filed under.
func TestTemplates(t *testing.T) {
	for _, p := range []rotamer.Pucker{rotamer.C3Endo, rotamer.C2Endo} {
		tm, err := Template(p)
		require.NoError(t, err)
		assert.Equal(t, Xyz{}, tm[cmmn.C1])
		delta := geom.Torsion(tm[cmmn.C5], tm[cmmn.C4], tm[cmmn.C3], tm[cmmn.O3])
		assert.Equal(t, p, rotamer.PuckerFromDelta(delta), "delta %g", delta)
		assert.InDelta(t, AngXi, angle(t, tm[cmmn.N], tm[cmmn.C1], tm[cmmn.O4]), 0.1)
		tm[cmmn.C1] = Xyz{X: 5}
	}
	tm, _ := Template(rotamer.C3Endo)
	assert.Equal(t, Xyz{}, tm[cmmn.C1], "changing a copy changed the template")
	_, err := Template(rotamer.Pucker(7))
	assert.Error(t, err)
}

// base is a C1' with a purine N9 and C4 somewhere awkward.
func base() cmmn.AtomSet {
	return cmmn.AtomSet{
		cmmn.C1: {X: 10, Y: -3, Z: 2},
		cmmn.N:  {X: 10.8, Y: -2.1, Z: 2.9},
		cmmn.NC: {X: 12.1, Y: -2.3, Z: 3.2},
		cmmn.O5: {X: 1, Y: 2, Z: 3},
	}
}

func TestSugar(t *testing.T) {
	for _, p := range []rotamer.Pucker{rotamer.C3Endo, rotamer.C2Endo} {
		for _, chi := range []float64{ChiAnti, ChiSyn} {
			work := base()
			sug, err := Sugar(work, p, chi)
			require.NoError(t, err)
			assert.ElementsMatch(t, cmmn.SugarAtoms, sug.Names())
			tm, _ := Template(p)
			c1 := work[cmmn.C1]
			for _, n := range cmmn.SugarAtoms {
				assert.InDelta(t, r3.Norm(tm[n]), geom.Dist(sug[n], c1), eps, "distance to %s", n)
			}
			x := geom.Torsion(sug[cmmn.O4], c1, work[cmmn.N], work[cmmn.NC])
			assert.InDelta(t, 0, geom.AngleDiff(x, chi), eps, "chi")
			assert.InDelta(t, angle(t, tm[cmmn.N], Xyz{}, tm[cmmn.O4]),
				angle(t, work[cmmn.N], c1, sug[cmmn.O4]), eps, "xi")
			assert.Equal(t, Xyz{X: 1, Y: 2, Z: 3}, work[cmmn.O5], "O5' should be left alone")
		}
	}
}

// TestSugarFlipped has the base pointing exactly opposite to the
// template's glycosidic bond.
func TestSugarFlipped(t *testing.T) {
	tm, _ := Template(rotamer.C3Endo)
	work := cmmn.AtomSet{
		cmmn.C1: {},
		cmmn.N:  r3.Scale(-1, tm[cmmn.N]),
		cmmn.NC: {X: 1, Y: 1, Z: 2},
	}
	sug, err := Sugar(work, rotamer.C3Endo, ChiAnti)
	require.NoError(t, err)
	assert.InDelta(t, AngXi, angle(t, work[cmmn.N], Xyz{}, sug[cmmn.O4]), 0.1)
}

func TestSugarMissing(t *testing.T) {
	work := base()
	delete(work, cmmn.NC)
	_, err := Sugar(work, rotamer.C3Endo, ChiAnti)
	assert.Error(t, err)
}

func TestNextO5(t *testing.T) {
	c3, o3, p := Xyz{X: 1}, Xyz{X: 1.5, Y: 1.3}, Xyz{X: 3, Y: 1.9, Z: 0.2}
	for _, zeta := range []float64{60, 180, 288.8} {
		o5, err := NextO5(c3, o3, p, zeta)
		require.NoError(t, err)
		assert.InDelta(t, BondPO5, geom.Dist(p, o5), eps)
		assert.InDelta(t, AngO3PO5, angle(t, o3, p, o5), eps)
		assert.InDelta(t, 0, geom.AngleDiff(geom.Torsion(c3, o3, p, o5), zeta), eps)
	}
	_, err := NextO5(c3, p, p, 180)
	assert.ErrorIs(t, err, geom.ErrDegenerate)
}

func checkOxy(t *testing.T, p, op1, op2 Xyz) {
	t.Helper()
	assert.InDelta(t, BondPOP, geom.Dist(p, op1), eps)
	assert.InDelta(t, BondPOP, geom.Dist(p, op2), eps)
	assert.InDelta(t, AngOPO, angle(t, op1, p, op2), eps)
}

func TestPhosOxy(t *testing.T) {
	o3, p, o5 := Xyz{X: -1.2, Y: 0.8}, Xyz{}, Xyz{X: 1.3, Y: 0.6, Z: 0.4}
	op1, op2, err := PhosOxy(o3, p, o5)
	require.NoError(t, err)
	checkOxy(t, p, op1, op2)
	// the two should sit symmetrically either side of the O3', P, O5' plane
	assert.InDelta(t, angle(t, o3, p, op1), angle(t, o3, p, op2), eps)

	_, _, err = PhosOxy(Xyz{X: -1}, Xyz{}, Xyz{X: 1})
	assert.ErrorIs(t, err, geom.ErrDegenerate, "P on the O3'-O5' line")
}

func TestInitPhosOxy(t *testing.T) {
	p, o5, c5 := Xyz{}, Xyz{X: 1.593}, Xyz{X: 2.3, Y: 1.2}
	op1, op2, err := InitPhosOxy(p, o5, c5)
	require.NoError(t, err)
	checkOxy(t, p, op1, op2)
	assert.InDelta(t, AngO5POP, angle(t, o5, p, op1), eps)
	assert.InDelta(t, AngO5POP, angle(t, o5, p, op2), eps)

	_, _, err = InitPhosOxy(p, o5, Xyz{X: 3})
	assert.Error(t, err, "collinear reference atoms")
}

func TestStartO5(t *testing.T) {
	c3, c4, c5 := Xyz{X: 1.8, Y: 1.5}, Xyz{X: 0.7, Y: 2, Z: 0.9}, Xyz{X: 0.4, Y: 3.5, Z: 0.6}
	o5, err := StartO5(c3, c4, c5, DfltGamma)
	require.NoError(t, err)
	assert.InDelta(t, BondO5C5, geom.Dist(c5, o5), eps)
	assert.InDelta(t, AngO5C5C4, angle(t, o5, c5, c4), eps)
	assert.InDelta(t, 0, geom.AngleDiff(geom.Torsion(o5, c5, c4, c3), DfltGamma), eps)
}
