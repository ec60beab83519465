package chain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/andrew-torda/suitebuild/chain"
	"github.com/andrew-torda/suitebuild/geom"
	"github.com/andrew-torda/suitebuild/pdb/cmmn"
)

type Xyz = cmmn.Xyz

// straight makes a chain of n nucleotides with P every 6 A along x and
// C1' off to the side, wobbling in z so the pseudotorsions are defined.
func straight(n int, withO3 bool) Chain {
	var c Chain
	for i := 0; i < n; i++ {
		x := 6 * float64(i)
		atoms := cmmn.AtomSet{
			cmmn.P:  {X: x},
			cmmn.C1: {X: x + 3, Y: 3, Z: float64(i%2) - 0.5},
			"N9":    {X: x + 3, Y: 4.4, Z: float64(i%2) - 0.5},
			"C4":    {X: x + 4, Y: 5, Z: 0},
		}
		if withO3 {
			atoms[cmmn.O3] = Xyz{X: x + 4.6, Y: 0.5}
		}
		c = append(c, NewNucleotide(i+1, "A", atoms))
	}
	return c
}

func TestConnected(t *testing.T) {
	c := straight(4, true)
	c[2].Break = true
	assert.False(t, c.Connected(0), "first nucleotide has nothing before it")
	assert.True(t, c.Connected(1))
	assert.False(t, c.Connected(4), "off the end")
	assert.False(t, c.Connected(2), "break marker")
	assert.Equal(t, []int{1, 3}, c.Suites())
}

// TestConnectedC1 has no O3' atoms, so we fall back to C1'-P.
func TestConnectedC1(t *testing.T) {
	c := straight(3, false)
	c[2].Atoms[cmmn.P] = Xyz{X: 40}
	assert.True(t, c.Connected(1))
	assert.False(t, c.Connected(2))
}

// TestMemo moves an atom after asking. The old answer should stick,
// even through Rebuild.
func TestMemo(t *testing.T) {
	c := straight(3, true)
	require.True(t, c.Connected(1))
	c[1].Atoms[cmmn.P] = Xyz{X: 100}
	assert.True(t, c.Connected(1), "answer should be remembered")
	c.Rebuild(1, c[1].Atoms)
	assert.True(t, c.Connected(1), "rebuilding atoms does not break a chain")
	fresh := straight(3, true)
	fresh[1].Atoms[cmmn.P] = Xyz{X: 100}
	assert.False(t, fresh.Connected(1))
}

// TestMeasureMemo checks Rebuild forgets pseudotorsions.
func TestMeasureMemo(t *testing.T) {
	c := straight(3, true)
	before := c.ThetaPrime(1)
	require.True(t, before.Ok)
	moved := c[2].Atoms.Copy()
	moved[cmmn.C1] = Xyz{X: 15, Y: -3, Z: 1}
	c[2].Atoms = moved
	assert.Equal(t, before, c.ThetaPrime(1), "not rebuilt, so remembered")
	c.Rebuild(2, moved)
	assert.NotEqual(t, before.Val, c.ThetaPrime(1).Val)
}

func TestPseudo(t *testing.T) {
	c := straight(4, true)
	assert.False(t, c.EtaPrime(0).Ok, "no nucleotide before the first")
	assert.False(t, c.ThetaPrime(3).Ok, "no nucleotide after the last")
	eta, theta := c.EtaPrime(1), c.ThetaPrime(1)
	require.True(t, eta.Ok)
	require.True(t, theta.Ok)
	for _, v := range []float64{eta.Val, theta.Val} {
		assert.True(t, v >= 0 && v < 360)
	}

	x := func(i int, n string) Xyz { return c[i].Atoms[n] }
	assert.InDelta(t, geom.Torsion(x(0, cmmn.C1), x(1, cmmn.P), x(1, cmmn.C1), x(2, cmmn.P)), eta.Val, 1e-9)
	assert.InDelta(t, geom.Torsion(x(1, cmmn.P), x(1, cmmn.C1), x(2, cmmn.P), x(2, cmmn.C1)), theta.Val, 1e-9)

	// C4' is there but the primed torsions do not look at it
	for _, nuc := range c {
		nuc.Atoms[cmmn.C4] = Xyz{X: 1, Y: 2, Z: 3}
	}
	c.Rebuild(1, c[1].Atoms)
	assert.InDelta(t, eta.Val, c.EtaPrime(1).Val, 1e-9)

	c = straight(4, true)
	c[2].Break = true
	assert.False(t, c.EtaPrime(1).Ok, "eta' needs the next phosphate")
	assert.False(t, c.EtaPrime(3).Ok)
}

func TestPperp(t *testing.T) {
	c := straight(2, true)
	m := c.Pperp(0)
	require.True(t, m.Ok)
	// next P at x=6, line along y through x=3, z=-0.5
	assert.InDelta(t, math.Sqrt(9+0.25), m.Val, 1e-9)
	assert.False(t, c.Pperp(1).Ok)
}

func TestProject(t *testing.T) {
	c := straight(3, true)
	c[0].Atoms[cmmn.C3] = Xyz{X: 4, Y: 1}
	work := c.Project(1)
	assert.True(t, work.Has(cmmn.N, cmmn.NC, cmmn.Prev(cmmn.O3), cmmn.Prev(cmmn.C3), cmmn.Next(cmmn.P)))
	assert.False(t, work.Has(cmmn.Prev(cmmn.C4)), "nobody built it")
	assert.Equal(t, c[1].Atoms["N9"], work[cmmn.N])
	work[cmmn.P] = Xyz{X: 99}
	assert.NotEqual(t, 99.0, c[1].Atoms[cmmn.P].X, "working set must be a copy")

	py := cmmn.AtomSet{"N1": {}, "C2": {X: 1}}
	n := NewNucleotide(1, "U", py)
	nn, cn := n.BaseNames()
	assert.Equal(t, "N1", nn)
	assert.Equal(t, "C2", cn)
}
