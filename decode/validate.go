package decode

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/andrew-torda/suitebuild/rotamer"
)

// ParseString splits a rotamer string. Codes may be separated by
// spaces or commas, or just run together ("1a1a1b"), in which case
// every code is two characters long.
func ParseString(s string) ([]string, error) {
	f := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	if len(f) != 1 {
		return f, nil
	}
	run := []rune(f[0])
	if len(run)%2 != 0 {
		return nil, fmt.Errorf("rotamer string %q has odd length", s)
	}
	ret := make([]string, 0, len(run)/2)
	for i := 0; i < len(run); i += 2 {
		ret = append(ret, string(run[i:i+2]))
	}
	return ret, nil
}

// Validate checks rotamers given by a user instead of coming from the
// decoder. We want one code per suite, every code in the catalog and
// compatible puckers wherever suites are connected. connected[0] is
// ignored. Anything wrong is fatal. We do not fix it up.
func Validate(cat *rotamer.Catalog, codes []string, connected []bool) (Path, error) {
	if len(codes) != len(connected) {
		return nil, fmt.Errorf("%w: %d for %d suites", ErrLength, len(codes), len(connected))
	}
	path := make(Path, len(codes))
	for i, code := range codes {
		r, ok := cat.Lookup(code)
		if !ok {
			return nil, fmt.Errorf("suite %d: %w %q", i, ErrUnknown, code)
		}
		if i > 0 && connected[i] && !rotamer.Compatible(path[i-1].Rotamer, r) {
			return nil, fmt.Errorf("suites %d and %d, %s (%v) then %s (%v): %w",
				i-1, i, path[i-1].Rotamer.Code, path[i-1].Rotamer.End, r.Code, r.Start, ErrIncompatible)
		}
		path[i] = Step{Suite: i, Rotamer: r, Prob: 1}
	}
	return path, nil
}
