package layout

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/roach88/commune/internal/address"
)

// Encoded field widths.
const (
	DiscriminatorLen = 8
	U64Len           = 8
	I64Len           = 8
	BoolLen          = 1
	BumpLen          = 1
	KeyLen           = address.KeySize
	StringPrefixLen  = 4

	// MaxBytesPerChar is the longest UTF-8 encoding of one code point.
	MaxBytesPerChar = 4
)

var (
	// ErrRecordTooLarge means an encoding does not fit the record's slot.
	ErrRecordTooLarge = errors.New("record exceeds its allocated size")

	// ErrKindMismatch means the stored discriminator belongs to another kind.
	ErrKindMismatch = errors.New("record kind mismatch")

	// ErrTruncated means the data ended before the record did.
	ErrTruncated = errors.New("record data truncated")
)

// StringSpace returns the byte budget of a string bounded to maxChars.
func StringSpace(maxChars int) int {
	return StringPrefixLen + maxChars*MaxBytesPerChar
}

// writer appends little-endian fields to a buffer.
type writer struct {
	buf []byte
	err error
}

func (w *writer) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) u64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *writer) i64(v int64) {
	w.u64(uint64(v))
}

func (w *writer) boolean(v bool) {
	if v {
		w.u8(1)
		return
	}
	w.u8(0)
}

func (w *writer) key(k address.Key) {
	w.buf = append(w.buf, k[:]...)
}

// str writes a length-prefixed string; maxChars bounds the byte budget.
func (w *writer) str(field, s string, maxChars int) {
	limit := maxChars * MaxBytesPerChar
	if len(s) > limit {
		if w.err == nil {
			w.err = fmt.Errorf("%w: %s is %d bytes, budget %d", ErrRecordTooLarge, field, len(s), limit)
		}
		return
	}
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// reader consumes fields written by writer. The first failure sticks.
type reader struct {
	data []byte
	off  int
	err  error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, r.off, len(r.data))
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u64() uint64 {
	b := r.take(U64Len)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) i64() int64 {
	return int64(r.u64())
}

func (r *reader) boolean() bool {
	return r.u8() != 0
}

func (r *reader) key() address.Key {
	var k address.Key
	b := r.take(KeyLen)
	if b != nil {
		copy(k[:], b)
	}
	return k
}

func (r *reader) str() string {
	b := r.take(StringPrefixLen)
	if b == nil {
		return ""
	}
	n := binary.LittleEndian.Uint32(b)
	if int64(n) > int64(len(r.data)-r.off) {
		r.err = fmt.Errorf("%w: string of %d bytes at offset %d", ErrTruncated, n, r.off)
		return ""
	}
	return string(r.take(int(n)))
}
