// internal/sunspec/words.go
package sunspec

import (
	"bytes"
	"fmt"
)

// Register layout is big-endian within each word and big-endian across words
// (high word first). All helpers here are pure; a short input is a caller bug.

// DecodeUint combines width consecutive words into one unsigned value,
// most-significant word first.
func DecodeUint(words []uint16, width int) uint64 {
	if width < 1 || width > 4 {
		panic(fmt.Sprintf("sunspec: invalid word width %d", width))
	}
	if len(words) < width {
		panic(fmt.Sprintf("sunspec: need %d words, have %d", width, len(words)))
	}

	var v uint64
	for i := 0; i < width; i++ {
		v = v<<16 | uint64(words[i])
	}
	return v
}

// DecodeInt is DecodeUint read as two's complement over width*16 bits.
func DecodeInt(words []uint16, width int) int64 {
	u := DecodeUint(words, width)
	shift := uint(64 - 16*width)
	return int64(u<<shift) >> shift
}

// DecodeString unpacks byteLength/2 words as ASCII (high byte first) and
// trims trailing NUL padding.
func DecodeString(words []uint16, byteLength int) string {
	n := (byteLength + 1) / 2
	if len(words) < n {
		panic(fmt.Sprintf("sunspec: need %d words for %d bytes, have %d", n, byteLength, len(words)))
	}

	b := make([]byte, 0, n*2)
	for _, w := range words[:n] {
		b = append(b, byte(w>>8), byte(w))
	}
	b = b[:byteLength]

	return string(bytes.TrimRight(b, "\x00"))
}

// quirkThreshold marks where the firmware switches from the folded encoding
// to the offset-from-max encoding.
const quirkThreshold = 32768 + 2000

// DecodeSigned16 decodes Outback's non two's-complement negative readings.
// The arithmetic matches the firmware exactly, including the off-by-one
// against canonical two's complement.
func DecodeSigned16(raw uint16) int32 {
	v := int32(raw)
	switch {
	case v >= quirkThreshold:
		return v - 65535
	case v >= 32768:
		return 32768 - v
	default:
		return v
	}
}

// DecodeInt16 is canonical two's complement, used for standard SunSpec
// signed fields such as scale factors.
func DecodeInt16(raw uint16) int16 {
	return int16(raw)
}

// PackString is the inverse of DecodeString: ASCII packed two bytes per word,
// NUL padded to byteLength. Nothing on the read path uses it; it builds
// register images for tests and simulators.
func PackString(s string, byteLength int) []uint16 {
	b := make([]byte, byteLength+byteLength%2)
	copy(b, s)

	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return out
}
