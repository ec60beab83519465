package randlik_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew-torda/suitebuild/pdb"
	. "github.com/andrew-torda/suitebuild/pkg/randlik"
	"github.com/andrew-torda/suitebuild/tables"
)

func run(t *testing.T, args RandLikArgs) (atoms, probs, full *bytes.Buffer) {
	t.Helper()
	atoms, probs, full = new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)
	args.Atoms, args.Probs, args.Full = atoms, probs, full
	require.NoError(t, RandLikMain(&args))
	return atoms, probs, full
}

func TestRandLik(t *testing.T) {
	args := RandLikArgs{Iseed: 7, Codes: []string{"1a", "1b", "2a"}, Noise: 0.3}
	atoms, probs, full := run(t, args)

	rows, err := tables.Parse(atoms)
	require.NoError(t, err)
	ch, err := pdb.ParseAtoms(rows)
	require.NoError(t, err)
	assert.Len(t, ch, 4)
	assert.Equal(t, []int{1, 2, 3}, ch.Suites())
	assert.Less(t, atoms.Len(), full.Len())

	rows, err = tables.Parse(probs)
	require.NoError(t, err)
	p, err := pdb.ParseProbs(rows)
	require.NoError(t, err)
	for j, n := range []int{2, 3, 4} {
		var tot float64
		for _, v := range p[n] {
			tot += v
		}
		assert.InDelta(t, 1, tot, 1e-4, "residue %d", n)
		assert.InDelta(t, 0.7, p[n][args.Codes[j]], 1e-6)
	}

	_, again, _ := run(t, args)
	_, probs2, _ := run(t, args)
	assert.Equal(t, again.String(), probs2.String(), "same seed, same table")
}

func TestRandLikBad(t *testing.T) {
	var b bytes.Buffer
	for _, args := range []RandLikArgs{
		{Codes: []string{"1a"}, Noise: 1},
		{Codes: []string{"1a"}, Noise: -0.1},
		{Codes: []string{"1a", "zz"}},
		{Codes: []string{"1b", "1b"}},
		{},
	} {
		args.Atoms, args.Probs = &b, &b
		assert.Error(t, RandLikMain(&args), "%v", args.Codes)
	}
}
