// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package binfmt provides the primitives shared by the legacy database's
// three binary formats: a byte cursor, the uleb128 string-length varint,
// and the single-byte string-presence marker.
package binfmt

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/osusync/bridge/internal/syncerr"
)

// stringPresent is the marker byte meaning "a string follows".
const stringPresent = 0x0b

// stringAbsent is the marker byte meaning "absent/empty string".
const stringAbsent = 0x00

// maxVarintBytes bounds the uleb128 decoder: any string-length varint
// longer than 5 bytes (shift reaching 35 bits) is rejected.
const maxVarintBytes = 5

// Reader is a forward-only cursor over a legacy binary stream, tracking
// the byte offset for structured parse-failure reporting.
type Reader struct {
	buf    []byte
	pos    int
	source string
}

// NewReader wraps buf for sequential decoding. source is the path reported
// in parse-failure errors.
func NewReader(buf []byte, source string) *Reader {
	return &Reader{buf: buf, source: source}
}

// Offset returns the current byte offset, for error reporting.
func (r *Reader) Offset() int64 { return int64(r.pos) }

func (r *Reader) fail(field string, err error) error {
	return syncerr.ParseFailure(r.source, r.Offset(), field, err)
}

func (r *Reader) need(n int, field string) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, r.fail(field, io.ErrUnexpectedEOF)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Byte reads a single byte.
func (r *Reader) Byte(field string) (byte, error) {
	b, err := r.need(1, field)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Int32 reads a little-endian signed 32-bit integer.
func (r *Reader) Int32(field string) (int32, error) {
	b, err := r.need(4, field)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// UInt16 reads a little-endian unsigned 16-bit integer.
func (r *Reader) UInt16(field string) (uint16, error) {
	b, err := r.need(2, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Int64 reads a little-endian signed 64-bit integer.
func (r *Reader) Int64(field string) (int64, error) {
	b, err := r.need(8, field)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// Float32 reads an IEEE-754 single-precision float.
func (r *Reader) Float32(field string) (float32, error) {
	b, err := r.need(4, field)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// Float64 reads an IEEE-754 double-precision float.
func (r *Reader) Float64(field string) (float64, error) {
	b, err := r.need(8, field)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// Bool reads a single byte as a boolean (non-zero is true).
func (r *Reader) Bool(field string) (bool, error) {
	b, err := r.Byte(field)
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// String reads the marker byte and, if present, a uleb128-prefixed UTF-8
// string. An absent marker yields "".
func (r *Reader) String(field string) (string, error) {
	marker, err := r.Byte(field)
	if err != nil {
		return "", err
	}
	switch marker {
	case stringAbsent:
		return "", nil
	case stringPresent:
		n, err := r.uleb128(field)
		if err != nil {
			return "", err
		}
		b, err := r.need(int(n), field)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", r.fail(field, syncerr.New(syncerr.KindParseFailure, "unrecognised string marker byte"))
	}
}

// uleb128 decodes an unsigned variable-length base-128 integer: 7 data
// bits per byte, high bit set means "more bytes follow". The decoder
// rejects inputs longer than 5 bytes (shift would reach or exceed 35).
func (r *Reader) uleb128(field string) (uint64, error) {
	var result uint64
	var shift uint
	for i := 0; i < maxVarintBytes; i++ {
		b, err := r.Byte(field)
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
	return 0, r.fail(field, syncerr.New(syncerr.KindParseFailure, "varint exceeds 5 bytes"))
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Bytes reads n raw bytes.
func (r *Reader) Bytes(n int, field string) ([]byte, error) {
	return r.need(n, field)
}
