package leb128

import (
	"bytes"
	"math"
)

// Writer accumulates a section's byte stream — used by
// internal/binarywriter to build one section's payload before framing it.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Reset discards any buffered bytes so the Writer can be reused across
// method emissions without reallocating.
func (w *Writer) Reset() { w.buf.Reset() }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// Bytes returns the accumulated byte slice. The caller must not retain it
// across a subsequent Reset.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// WriteByte writes a single byte.
func (w *Writer) WriteByte(b byte) { w.buf.WriteByte(b) }

// WriteBytes writes raw bytes verbatim.
func (w *Writer) WriteBytes(b []byte) { w.buf.Write(b) }

// WriteUint32LE writes v as four little-endian bytes.
func (w *Writer) WriteUint32LE(v uint32) {
	w.buf.WriteByte(byte(v))
	w.buf.WriteByte(byte(v >> 8))
	w.buf.WriteByte(byte(v >> 16))
	w.buf.WriteByte(byte(v >> 24))
}

// WriteUint64LE writes v as eight little-endian bytes.
func (w *Writer) WriteUint64LE(v uint64) {
	for i := 0; i < 8; i++ {
		w.buf.WriteByte(byte(v >> (8 * i)))
	}
}

// WriteFloat32LE writes v as its IEEE 754 bit pattern, little-endian.
func (w *Writer) WriteFloat32LE(v float32) {
	w.WriteUint32LE(math.Float32bits(v))
}

// WriteFloat64LE writes v as its IEEE 754 bit pattern, little-endian.
func (w *Writer) WriteFloat64LE(v float64) {
	w.WriteUint64LE(math.Float64bits(v))
}

// WriteVarUint32 writes v as a varuint32.
func (w *Writer) WriteVarUint32(v uint32) { w.buf.Write(EncodeUint32(v)) }

// WriteVarUint64 writes v as a varuint64.
func (w *Writer) WriteVarUint64(v uint64) { w.buf.Write(EncodeUint64(v)) }

// WriteVarInt32 writes v as a varint32.
func (w *Writer) WriteVarInt32(v int32) { w.buf.Write(EncodeInt32(v)) }

// WriteVarInt64 writes v as a varint64.
func (w *Writer) WriteVarInt64(v int64) { w.buf.Write(EncodeInt64(v)) }

// WriteString writes s as a LEB128-length-prefixed UTF-8 string. No BOM is
// emitted; Go string contents are assumed to already be valid UTF-8.
func (w *Writer) WriteString(s string) {
	w.WriteVarUint32(uint32(len(s)))
	w.buf.WriteString(s)
}

// WriteInto appends the entire contents of w into dst, leaving w
// untouched.
func (w *Writer) WriteInto(dst *Writer) {
	dst.buf.Write(w.buf.Bytes())
}
