// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package compr provides a unified interface wrapping
// third-party compression libraries, and detection of
// compressed input by file name or magic header.
package compr

import (
	"bytes"
	"errors"
	"io"
	"path"
	"runtime"
	"strings"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// ErrTooLarge is returned by Decompress
// when the output would exceed its limit.
var ErrTooLarge = errors.New("compr: decompressed data exceeds limit")

// Compressor describes a compression algorithm.
type Compressor interface {
	// Name is the name of the compression algorithm.
	Name() string
	// Compress should append the compressed contents
	// of src to dst and return the result.
	Compress(src, dst []byte) []byte
}

// Decompressor is the inverse of a Compressor.
type Decompressor interface {
	// Name is the name of the compression algorithm.
	// See also Compressor.Name.
	Name() string
	// Decompress appends the decompressed contents
	// of src to dst and returns the result. If limit
	// is positive and the decompressed data is longer
	// than limit bytes, Decompress returns ErrTooLarge.
	//
	// It must be safe to make multiple
	// calls to Decompress simultaneously
	// from different goroutines.
	Decompress(src, dst []byte, limit int) ([]byte, error)
}

type zstdCompressor struct {
	enc *zstd.Encoder
}

func (z zstdCompressor) Compress(src, dst []byte) []byte {
	return z.enc.EncodeAll(src, dst)
}

func (z zstdCompressor) Name() string { return "zstd" }

var zstdDecoder *zstd.Decoder

func init() {
	// by default, concurrency is set to min(4, GOMAXPROCS);
	// we'd like it to *always* be GOMAXPROCS
	z, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		panic(err)
	}
	zstdDecoder = z
}

type zstdDecompressor struct{}

func (zstdDecompressor) Name() string { return "zstd" }

func (zstdDecompressor) Decompress(src, dst []byte, limit int) ([]byte, error) {
	if limit <= 0 {
		return zstdDecoder.DecodeAll(src, dst)
	}
	// DecodeAll cannot stop early, so a limited
	// decode streams through a private decoder
	d, err := zstd.NewReader(bytes.NewReader(src), zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return readAll(d, dst, limit)
}

// s2Stream produces and consumes the s2 stream
// format, which unlike s2 blocks carries a magic
// header (and also accepts framed snappy input)
type s2Stream struct{}

func (s2Stream) Compress(src, dst []byte) []byte {
	buf := bytes.NewBuffer(dst)
	w := s2.NewWriter(buf, s2.WriterConcurrency(1))
	// writes to a bytes.Buffer cannot fail
	w.Write(src)
	w.Close()
	return buf.Bytes()
}

func (s2Stream) Decompress(src, dst []byte, limit int) ([]byte, error) {
	return readAll(s2.NewReader(bytes.NewReader(src)), dst, limit)
}

func (s2Stream) Name() string { return "s2" }

func readAll(r io.Reader, dst []byte, limit int) ([]byte, error) {
	if limit > 0 {
		r = io.LimitReader(r, int64(limit)+1)
	}
	start := len(dst)
	buf := bytes.NewBuffer(dst)
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if limit > 0 && len(out)-start > limit {
		return nil, ErrTooLarge
	}
	return out, nil
}

// Compression selects a compression algorithm by name.
// Compressor.Name reports the format, which is "zstd"
// for both "zstd" and "zstd-better", so the result can
// always be passed to Decompression.
func Compression(name string) Compressor {
	switch name {
	case "zstd-better":
		z, _ := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
			zstd.WithEncoderConcurrency(1))
		return zstdCompressor{z}
	case "zstd":
		z, _ := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		return zstdCompressor{z}
	case "s2":
		return s2Stream{}
	default:
		return nil
	}
}

// Decompression selects a decompression algorithm
// by name, or returns nil if name is not known.
func Decompression(name string) Decompressor {
	switch name {
	case "zstd":
		return zstdDecompressor{}
	case "s2":
		return s2Stream{}
	default:
		return nil
	}
}

var (
	zstdMagic   = []byte{0x28, 0xb5, 0x2f, 0xfd}
	s2Magic     = []byte("\xff\x06\x00\x00S2sTwO")
	snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")
)

// Detect returns the Decompressor for src
// based on its leading magic bytes, or nil
// if src does not look compressed.
func Detect(src []byte) Decompressor {
	switch {
	case bytes.HasPrefix(src, zstdMagic):
		return zstdDecompressor{}
	case bytes.HasPrefix(src, s2Magic), bytes.HasPrefix(src, snappyMagic):
		return s2Stream{}
	default:
		return nil
	}
}

// ForFile returns the Decompressor implied
// by the extension of name, or nil.
func ForFile(name string) Decompressor {
	switch strings.ToLower(path.Ext(name)) {
	case ".zst", ".zstd":
		return zstdDecompressor{}
	case ".s2", ".sz":
		return s2Stream{}
	default:
		return nil
	}
}

// Decode decompresses src if it carries
// a known magic header, and otherwise
// returns src unchanged.
func Decode(src []byte, limit int) ([]byte, error) {
	d := Detect(src)
	if d == nil {
		if limit > 0 && len(src) > limit {
			return nil, ErrTooLarge
		}
		return src, nil
	}
	return d.Decompress(src, nil, limit)
}
