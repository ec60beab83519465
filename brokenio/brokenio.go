// Package brokenio wraps an io.ReadCloser so that reads fail. We use it
// to make sure the table readers pass I/O errors back instead of
// quietly building a catalog from half a file.
// Typical use: You get a file pointer or a reader from a compressed
// source. You write
//   reader = brokenio.NewReader(reader)
// Everything then functions as before, but with artificial errors.
// When we trash data, we return an error.
// When we introduce a failure on the first read, we return without an
// error. This is what one often sees on a zero length file.
package brokenio

import (
	"fmt"
	"io"
	"math/rand"
)

// BrknRdrClsr is modelled on the various Readers in the standard library,
// but with variables controlling the frequency of errors.
// These values are the fraction of time an error will take place,
// so a value of 0.05 means failure in 5% of the cases.
type BrknRdrClsr struct {
	rdrOrig      io.ReadCloser // Wrapped reader
	rnd          *rand.Rand
	probZeroFile float64 // Probability of returning a zero length file
	probFail     float64 // per read
	fracFail     float64 // how much of a failed read is lost
	failAfter    int     // fail every read after this many bytes, if > 0
	nCalled      int
	nByte        int
	verbose      bool
}

const dfltSeed = 1637

// NewReader returns a new Reader, a wrapper around the old one.
// With no settings changed, it behaves exactly like the original.
func NewReader(rIn io.ReadCloser) *BrknRdrClsr {
	return &BrknRdrClsr{
		rdrOrig:  rIn,
		rnd:      rand.New(rand.NewSource(dfltSeed)),
		fracFail: 0.5,
	}
}

// SetVerbose sets the verbosity flag. If true, Close prints how much
// data went through.
func (r *BrknRdrClsr) SetVerbose(newV bool) { r.verbose = newV }

// SetFracFail sets the amount of the bytes which will be trashed
func (r *BrknRdrClsr) SetFracFail(frac float64) { r.fracFail = frac }

// SetProbZeroFile sets the rate at which we simply return 0 bytes on the
// first read. It must be a value from 0 to 1. We do not check.
func (r *BrknRdrClsr) SetProbZeroFile(prob float64) { r.probZeroFile = prob }

// SetProbFail set the probability of a read failing.
// It must be between zero and 1.
func (r *BrknRdrClsr) SetProbFail(prob float64) { r.probFail = prob }

// SetFailAfter makes every read fail once n bytes have gone through.
// Good for "the disk died half way through the table".
func (r *BrknRdrClsr) SetFailAfter(n int) { r.failAfter = n }

// Seed resets the random number generator.
func (r *BrknRdrClsr) Seed(seed int64) { r.rnd = rand.New(rand.NewSource(seed)) }

// trashSlice wipes out the second part of a slice.
// The amount to wipe out is given by a fraction, so 0.3
// will wipe out the second 30 % of a slice
func trashSlice(p []byte, frac float64) (int, error) {
	nkeep := int(float64(len(p)) * (1. - frac))
	if nkeep == len(p) {
		return nkeep, nil
	}
	q := p[nkeep:]
	for i := range q {
		q[i] = 0
	}
	return nkeep, fmt.Errorf("randomly wiped out last %d of %d", len(q), len(p))
}

// Read wraps the original reader and sums up the amount of data that
// has gone through. It generates an error with a probability given by probFail.
// On the first call, we might return zero data to simulate a zero length file.
func (r *BrknRdrClsr) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.nCalled == 0 && r.probZeroFile > 0 && r.rnd.Float64() < r.probZeroFile {
		return 0, io.EOF
	}
	if r.failAfter > 0 && r.nByte >= r.failAfter {
		return 0, fmt.Errorf("read failed after %d bytes", r.nByte)
	}
	n, err = r.rdrOrig.Read(p)
	r.nCalled++
	r.nByte += n
	if r.rnd.Float64() < r.probFail && r.fracFail > 0 {
		return trashSlice(p[:n], r.fracFail)
	}
	return n, err
}

// Close wraps the original Close method.
func (r *BrknRdrClsr) Close() error {
	if r.verbose {
		fmt.Println("Closing", r.nCalled, "calls and", r.nByte, "bytes")
	}
	return r.rdrOrig.Close()
}
