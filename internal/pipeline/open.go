package pipeline

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Decompress wraps r according to compression ("auto", "none", "gzip" or
// "zstd"). In auto mode the stream's magic bytes decide, so rotated
// access.log.2.gz files can be read next to plain ones.
func Decompress(r io.Reader, compression string) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	if compression == "auto" {
		compression = "none"
		head, _ := br.Peek(len(zstdMagic))
		switch {
		case bytes.HasPrefix(head, gzipMagic):
			compression = "gzip"
		case bytes.HasPrefix(head, zstdMagic):
			compression = "zstd"
		}
	}

	switch compression {
	case "none":
		return io.NopCloser(br), nil
	case "gzip":
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, nil
	case "zstd":
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unsupported compression %q", compression)
	}
}

// Open opens the named file for reading through Decompress.
func Open(name, compression string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	rc, err := Decompress(f, compression)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &fileReader{ReadCloser: rc, f: f}, nil
}

type fileReader struct {
	io.ReadCloser
	f *os.File
}

func (r *fileReader) Close() error {
	err := r.ReadCloser.Close()
	if ferr := r.f.Close(); err == nil {
		err = ferr
	}
	return err
}
