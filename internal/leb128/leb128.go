// Package leb128 implements the variable-length integer encodings used
// throughout the Wasm binary format, plus the little-endian fixed-width
// writers the format needs alongside them.
package leb128

import "fmt"

// EncodeUint32 encodes v as an unsigned LEB128 (varuint32).
func EncodeUint32(v uint32) []byte {
	return encodeUint64(uint64(v))
}

// EncodeUint64 encodes v as an unsigned LEB128 (varuint64).
func EncodeUint64(v uint64) []byte {
	return encodeUint64(v)
}

func encodeUint64(v uint64) []byte {
	out := make([]byte, 0, 10)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

// EncodeInt32 encodes v as a signed LEB128 (varint32).
func EncodeInt32(v int32) []byte {
	return encodeInt64(int64(v))
}

// EncodeInt64 encodes v as a signed LEB128 (varint64).
func EncodeInt64(v int64) []byte {
	return encodeInt64(v)
}

func encodeInt64(v int64) []byte {
	out := make([]byte, 0, 10)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			out = append(out, b)
			return out
		}
		out = append(out, b|0x80)
	}
}

// DecodeUint32 decodes a varuint32 from buf, returning the value, the
// number of bytes consumed, and an error if buf is malformed or the
// value overflows 32 bits.
func DecodeUint32(buf []byte) (uint32, uint64, error) {
	v, n, err := decodeUint64(buf, 35)
	if err != nil {
		return 0, 0, err
	}
	if v>>32 != 0 {
		return 0, 0, fmt.Errorf("leb128: varuint overflows 32 bits")
	}
	return uint32(v), n, nil
}

// DecodeUint64 decodes a varuint64 from buf.
func DecodeUint64(buf []byte) (uint64, uint64, error) {
	return decodeUint64(buf, 70)
}

func decodeUint64(buf []byte, maxBits uint) (uint64, uint64, error) {
	var result uint64
	var shift uint
	for i := 0; ; i++ {
		if i >= len(buf) {
			return 0, 0, fmt.Errorf("leb128: unexpected EOF decoding varuint")
		}
		b := buf[i]
		if shift >= maxBits {
			return 0, 0, fmt.Errorf("leb128: varuint overflows %d bits", maxBits)
		}
		result |= uint64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			return result, uint64(i + 1), nil
		}
	}
}

// DecodeInt32 decodes a varint32 from buf.
func DecodeInt32(buf []byte) (int32, uint64, error) {
	v, n, err := decodeInt64(buf, 35)
	if err != nil {
		return 0, 0, err
	}
	return int32(v), n, nil
}

// DecodeInt64 decodes a varint64 from buf.
func DecodeInt64(buf []byte) (int64, uint64, error) {
	return decodeInt64(buf, 70)
}

func decodeInt64(buf []byte, maxBits uint) (int64, uint64, error) {
	var result int64
	var shift uint
	var b byte
	i := 0
	for {
		if i >= len(buf) {
			return 0, 0, fmt.Errorf("leb128: unexpected EOF decoding varint")
		}
		b = buf[i]
		if shift >= maxBits {
			return 0, 0, fmt.Errorf("leb128: varint overflows %d bits", maxBits)
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		i++
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, uint64(i), nil
}

// LoadInt32 is an alias of DecodeInt32, alongside the
// LoadUint32/LoadInt64/LoadUint64 aliases.
func LoadInt32(buf []byte) (int32, uint64, error) { return DecodeInt32(buf) }

// LoadUint32 is an alias of DecodeUint32.
func LoadUint32(buf []byte) (uint32, uint64, error) { return DecodeUint32(buf) }

// LoadInt64 is an alias of DecodeInt64.
func LoadInt64(buf []byte) (int64, uint64, error) { return DecodeInt64(buf) }

// LoadUint64 is an alias of DecodeUint64.
func LoadUint64(buf []byte) (uint64, uint64, error) { return DecodeUint64(buf) }
