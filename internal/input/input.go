// Package input acquires the raw document bytes, undoing compression.
package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var (
	ErrUnknownCompression = errors.New("unknown compression")
	ErrInvalidUTF8        = errors.New("input is not valid UTF-8")
)

// Compression selects how input bytes are decoded.
type Compression int

const (
	// CompressionAuto detects the codec from the leading magic bytes.
	CompressionAuto Compression = iota
	CompressionNone
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

var compressionNames = []string{
	CompressionAuto: "auto",
	CompressionNone: "none",
	CompressionGzip: "gzip",
	CompressionZstd: "zstd",
	CompressionLZ4:  "lz4",
}

func ParseCompression(s string) (Compression, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range compressionNames {
		if name == s {
			return Compression(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
}

func (c Compression) String() string {
	if c < 0 || int(c) >= len(compressionNames) {
		return "unknown"
	}
	return compressionNames[c]
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Detect reports the codec announced by data's magic bytes.
func Detect(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(data, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(data, lz4Magic):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Open returns the named file, or stdin for "" and "-".
func Open(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

// Read consumes r entirely, decompresses it according to mode and checks
// that the result is valid UTF-8. It also returns the codec actually used.
func Read(r io.Reader, mode Compression) ([]byte, Compression, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, mode, fmt.Errorf("read input: %w", err)
	}

	if mode == CompressionAuto {
		mode = Detect(raw)
	}

	data, err := Decompress(raw, mode)
	if err != nil {
		return nil, mode, err
	}

	if !utf8.Valid(data) {
		return nil, mode, ErrInvalidUTF8
	}
	return data, mode, nil
}

// Decompress decodes data with an explicit codec. CompressionAuto detects it.
func Decompress(data []byte, mode Compression) ([]byte, error) {
	switch mode {
	case CompressionAuto:
		return Decompress(data, Detect(data))
	case CompressionNone:
		return data, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		return readAll(zr, "gzip")
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return out, nil
	case CompressionLZ4:
		return readAll(lz4.NewReader(bytes.NewReader(data)), "lz4")
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, mode)
	}
}

func readAll(r io.Reader, codec string) ([]byte, error) {
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", codec, err)
	}
	return out, nil
}
