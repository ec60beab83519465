// Package zwrap takes a file pointer and optionally wraps it so upon
// calling Close, the decompressor will be closed, followed by the
// underlying file. Static tables (rotamer statistics, sugar templates)
// may be shipped gzipped or not and the reader should not care.
package zwrap

import (
	"bufio"
	"compress/gzip"
	"errors"
	"io"
)

var gzMagic = [2]byte{0x1f, 0x8b}

type FpGzip struct { // This is what we return.
	fp   io.Closer // underlying file, only for closing
	rdr  io.Reader // where reads come from
	zrdr *gzip.Reader
}

// Close closes the decompressor, then the underlying file. Both errors
// come back if both fail.
func (fc *FpGzip) Close() error {
	var ez error
	if fc.zrdr != nil {
		ez = fc.zrdr.Close()
	}
	return errors.Join(ez, fc.fp.Close())
}

// Read makes sure we read from the decompressed stream if there is one.
func (fc *FpGzip) Read(p []byte) (int, error) { return fc.rdr.Read(p) }

// Compressed says if we are decompressing.
func (fc *FpGzip) Compressed() bool { return fc.zrdr != nil }

// Wrap insists the stream is gzipped. If the header is broken, we get
// an error back.
func Wrap(fp io.ReadCloser) (*FpGzip, error) {
	zrdr, err := gzip.NewReader(fp)
	if err != nil {
		return nil, err
	}
	return &FpGzip{fp: fp, rdr: zrdr, zrdr: zrdr}, nil
}

// WrapMaybe will decide if the underlying stream is compressed
// and wrap the file pointer if necessary. It looks at the first two
// bytes through a buffer, so it does not need to seek and works on
// pipes as well as files.
// An empty stream is not an error. You just get an empty reader.
func WrapMaybe(fp io.ReadCloser) (*FpGzip, error) {
	buf := bufio.NewReader(fp)
	fc := &FpGzip{fp: fp, rdr: buf}
	magic, err := buf.Peek(len(gzMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(magic) < len(gzMagic) || magic[0] != gzMagic[0] || magic[1] != gzMagic[1] {
		return fc, nil
	}
	if fc.zrdr, err = gzip.NewReader(buf); err != nil {
		return nil, err
	}
	fc.rdr = fc.zrdr
	return fc, nil
}
