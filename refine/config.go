package refine

import "github.com/andrew-torda/suitebuild/build"

// Config has the knobs for refinement. The defaults are the values the
// method was tuned with. Changing them changes which sugars flip to syn.
type Config struct {
	BadFit        float64 // try a syn sugar if the anti one scores above this
	AntiChi       float64 // chi for the first sugar
	SynChi        float64 // chi for the second try
	MaxRestart    int     // simplex restarts
	RestartRatio  float64 // stop restarting when new/old is above this
	GoodEnough    float64 // stop restarting when the score is below this
	TorsionLoosen float64 // torsion standard deviations are multiplied by this
	PhosSd        float64 // how far, in A, we like phosphates to move
	MaxStep       int     // simplex cycles per run
	Tol           float64 // simplex convergence
	Seed          int64   // for the random signs of simplex steps
	ChiStep       float64 // first simplex steps, degrees for the rotations
	XiStep        float64
	MoveStep      float64 // and A for atom displacements
}

// DefaultConfig gives the settings we normally use.
func DefaultConfig() Config {
	return Config{
		BadFit:        50,
		AntiChi:       build.ChiAnti,
		SynChi:        build.ChiSyn,
		MaxRestart:    25,
		RestartRatio:  0.999,
		GoodEnough:    0.1,
		TorsionLoosen: 3,
		PhosSd:        0.3,
		MaxStep:       5000,
		Tol:           1e-9,
		Seed:          1637,
		ChiStep:       10,
		XiStep:        5,
		MoveStep:      0.1,
	}
}
