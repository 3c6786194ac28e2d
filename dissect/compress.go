package dissect

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
var gzipMagic = []byte{0x1F, 0x8B}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error {
	return r.close()
}

// NewBulkReader detects zstd or gzip compressed input by its magic bytes
// and decompresses it. Plain input is returned unchanged.
func NewBulkReader(in io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(in)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		return readCloser{dec, func() error {
			dec.Close()
			return nil
		}}, nil
	case bytes.HasPrefix(head, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return gz, nil
	}
	return io.NopCloser(br), nil
}

// OpenBulk opens a bulk match file, decompressing it when needed.
func OpenBulk(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewBulkReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return readCloser{r, func() error {
		return errors.Join(r.Close(), f.Close())
	}}, nil
}

type writeCloser struct {
	io.Writer
	close func() error
}

func (w writeCloser) Close() error {
	return w.close()
}

// NewCompressedWriter compresses output named *.zst with zstd and *.gz with gzip.
// Closing the returned writer flushes the compressor but leaves out open.
func NewCompressedWriter(out io.Writer, name string) (io.WriteCloser, error) {
	switch {
	case strings.HasSuffix(name, ".zst"):
		enc, err := zstd.NewWriter(out)
		if err != nil {
			return nil, err
		}
		return enc, nil
	case strings.HasSuffix(name, ".gz"):
		return gzip.NewWriter(out), nil
	}
	return writeCloser{out, func() error { return nil }}, nil
}

// CreateOutput creates the file at path, compressing by extension.
func CreateOutput(path string) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	w, err := NewCompressedWriter(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	return writeCloser{w, func() error {
		return errors.Join(w.Close(), f.Close())
	}}, nil
}
