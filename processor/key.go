package processor

import (
	"encoding/binary"
	"math"
)

// KeyBuilder accumulates a binary program key.
type KeyBuilder struct {
	buf []byte
}

// Write8 appends one byte.
func (kb *KeyBuilder) Write8(v uint8) {
	kb.buf = append(kb.buf, v)
}

// Write16 appends a little-endian uint16.
func (kb *KeyBuilder) Write16(v uint16) {
	kb.buf = binary.LittleEndian.AppendUint16(kb.buf, v)
}

// Write32 appends a little-endian uint32.
func (kb *KeyBuilder) Write32(v uint32) {
	kb.buf = binary.LittleEndian.AppendUint32(kb.buf, v)
}

// WriteFloat appends the bits of a float32.
func (kb *KeyBuilder) WriteFloat(v float32) {
	kb.Write32(math.Float32bits(v))
}

// WriteBool appends 0 or 1.
func (kb *KeyBuilder) WriteBool(v bool) {
	if v {
		kb.Write8(1)
	} else {
		kb.Write8(0)
	}
}

// Len returns the key size in bytes.
func (kb *KeyBuilder) Len() int {
	return len(kb.buf)
}

// Bytes returns the key.
func (kb *KeyBuilder) Bytes() []byte {
	return kb.buf
}

// String returns the key as a map-friendly string.
func (kb *KeyBuilder) String() string {
	return string(kb.buf)
}

// Reset empties the builder, keeping its storage.
func (kb *KeyBuilder) Reset() {
	kb.buf = kb.buf[:0]
}
