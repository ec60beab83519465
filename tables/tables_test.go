package tables_test

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrew-torda/suitebuild/brokenio"
	. "github.com/andrew-torda/suitebuild/tables"
)

const tbl = `# code start end
1a 3 3
1b,3,2   # trailing comment

  2a	2 3
#a 2 3
#
`

func TestParse(t *testing.T) {
	rows, err := Parse(strings.NewReader(tbl))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatal("wanted 4 rows, got", len(rows), rows)
	}
	if rows[1].Line != 3 || rows[1].Fields[0] != "1b" || rows[1].Fields[2] != "2" {
		t.Error("comma separated row wrong", rows[1])
	}
	if rows[2].Line != 5 || rows[2].Fields[0] != "2a" {
		t.Error("tab separated row wrong", rows[2])
	}
	if rows[3].Fields[0] != "#a" {
		t.Error("#a is a rotamer, not a comment", rows[3])
	}
	if err := CheckArity(rows, 3); err != nil {
		t.Error(err)
	}
	if err := CheckArity(rows, 4); err == nil {
		t.Error("arity check should fail")
	}
}

func TestFloats(t *testing.T) {
	r := Row{Line: 7, Fields: []string{"1a", "81.5", "-2e1"}}
	f, err := r.Floats(1)
	if err != nil || len(f) != 2 || f[0] != 81.5 || f[1] != -20 {
		t.Error("Floats got", f, err)
	}
	r.Fields[2] = "x"
	if _, err := r.Floats(1); err == nil || !strings.Contains(err.Error(), "line 7") {
		t.Error("bad number should give error with line number, got", err)
	}
	if _, err := r.Floats(5); err == nil {
		t.Error("too few fields not noticed")
	}
}

// TestRead writes the table plain and gzipped and reads both back
// through the memory mapped path.
func TestRead(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(plain, []byte(tbl), 0o600); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(tbl))
	zw.Close()
	zipped := filepath.Join(dir, "zipped.txt.gz")
	if err := os.WriteFile(zipped, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, fname := range []string{plain, zipped} {
		rows, err := Read(fname)
		if err != nil {
			t.Fatal(fname, err)
		}
		if len(rows) != 4 || rows[2].Fields[1] != "2" {
			t.Error(fname, "read wrong", rows)
		}
	}
	empty := filepath.Join(dir, "empty")
	os.WriteFile(empty, nil, 0o600)
	if rows, err := Read(empty); err != nil || len(rows) != 0 {
		t.Error("empty file gave", rows, err)
	}
	if _, err := Read(filepath.Join(dir, "not_there")); err == nil {
		t.Error("missing file not noticed")
	}
}

// TestBroken makes sure an I/O error is not swallowed.
func TestBroken(t *testing.T) {
	long := strings.Repeat("1a 3 3\n", 2000)
	rdr := brokenio.NewReader(io.NopCloser(strings.NewReader(long)))
	rdr.SetFailAfter(100)
	if _, err := ReadFrom(rdr); err == nil {
		t.Error("read error was lost")
	}
}
