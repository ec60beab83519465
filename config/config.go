// Package config reads the tunables from a toml file. Anything not in
// the file keeps its default, so a config file only has to mention the
// settings it changes.
//
//	[refine]
//	bad_fit = 50.0
//	seed = 1637
//
//	[files]
//	rotamers = "myrot.csv"
//	log = "stdout"
package config

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pelletier/go-toml"

	"github.com/andrew-torda/suitebuild/refine"
)

// Config is everything a run can be told from a file. Command line
// flags override Files.
type Config struct {
	Refine refine.Config
	Files  Files
}

// Files are optional replacements for built in tables and the log.
type Files struct {
	Rotamers string
	Log      string
}

// Default is what we use without a config file.
func Default() Config {
	return Config{Refine: refine.DefaultConfig()}
}

// fields maps toml keys onto the settings they change.
type fields struct {
	floats  map[string]*float64
	ints    map[string]*int
	int64s  map[string]*int64
	strings map[string]*string
}

func (c *Config) refineFields() fields {
	r := &c.Refine
	return fields{
		floats: map[string]*float64{
			"bad_fit":        &r.BadFit,
			"anti_chi":       &r.AntiChi,
			"syn_chi":        &r.SynChi,
			"restart_ratio":  &r.RestartRatio,
			"good_enough":    &r.GoodEnough,
			"torsion_loosen": &r.TorsionLoosen,
			"phos_sd":        &r.PhosSd,
			"tol":            &r.Tol,
			"chi_step":       &r.ChiStep,
			"xi_step":        &r.XiStep,
			"move_step":      &r.MoveStep,
		},
		ints: map[string]*int{
			"max_restart": &r.MaxRestart,
			"max_step":    &r.MaxStep,
		},
		int64s: map[string]*int64{"seed": &r.Seed},
	}
}

func (c *Config) fileFields() fields {
	return fields{strings: map[string]*string{
		"rotamers": &c.Files.Rotamers,
		"log":      &c.Files.Log,
	}}
}

// Read reads a config file on top of the defaults.
func Read(fname string) (Config, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return Config{}, err
	}
	defer fp.Close()
	c, err := ReadFrom(fp)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", fname, err)
	}
	return c, nil
}

// ReadFrom is Read for anything we can read from. Unknown tables or
// keys are errors. A typo should not silently leave a default in place.
func ReadFrom(r io.Reader) (Config, error) {
	c := Default()
	tree, err := toml.LoadReader(r)
	if err != nil {
		return c, err
	}
	sections := map[string]fields{
		"refine": c.refineFields(),
		"files":  c.fileFields(),
	}
	for _, name := range tree.Keys() {
		f, ok := sections[name]
		if !ok {
			return c, fmt.Errorf("%v: unknown section %q", tree.GetPosition(name), name)
		}
		sub, ok := tree.Get(name).(*toml.Tree)
		if !ok {
			return c, fmt.Errorf("%v: %q should be a table", tree.GetPosition(name), name)
		}
		if err := f.set(sub, name); err != nil {
			return c, err
		}
	}
	return c, nil
}

// set copies the values in one table into their settings.
func (f fields) set(tree *toml.Tree, section string) error {
	keys := tree.Keys()
	sort.Strings(keys)
	for _, k := range keys {
		v, pos := tree.Get(k), tree.GetPosition(k)
		bad := func(want string) error {
			return fmt.Errorf("%v: %s.%s should be %s, got %v", pos, section, k, want, v)
		}
		if p, ok := f.floats[k]; ok {
			switch x := v.(type) {
			case float64:
				*p = x
			case int64:
				*p = float64(x)
			default:
				return bad("a number")
			}
		} else if p, ok := f.ints[k]; ok {
			x, ok := v.(int64)
			if !ok || x < 0 {
				return bad("a positive integer")
			}
			*p = int(x)
		} else if p, ok := f.int64s[k]; ok {
			x, ok := v.(int64)
			if !ok {
				return bad("an integer")
			}
			*p = x
		} else if p, ok := f.strings[k]; ok {
			x, ok := v.(string)
			if !ok {
				return bad("a string")
			}
			*p = x
		} else {
			return fmt.Errorf("%v: unknown setting %s.%s", pos, section, k)
		}
	}
	return nil
}

// Write writes the whole config as toml. Reading it back gives the
// same settings.
func (c Config) Write(w io.Writer) error {
	tree, err := toml.TreeFromMap(map[string]interface{}{})
	if err != nil {
		return err
	}
	for sec, f := range map[string]fields{"refine": c.refineFields(), "files": c.fileFields()} {
		for k, p := range f.floats {
			tree.SetPath([]string{sec, k}, *p)
		}
		for k, p := range f.ints {
			tree.SetPath([]string{sec, k}, int64(*p))
		}
		for k, p := range f.int64s {
			tree.SetPath([]string{sec, k}, *p)
		}
		for k, p := range f.strings {
			tree.SetPath([]string{sec, k}, *p)
		}
	}
	_, err = tree.WriteTo(w)
	return err
}
