// Package mem implements the flat, byte-addressable memory collaborator
// (component C): 64KiB of storage, little-endian 16-bit access, and a
// bounds-checked buffer copy. Grounded on the Beemu original's
// libbeemu/device/memory.c.
package mem

import "fmt"

// Size is the LR35902 address space: 0x0000..=0xFFFF.
const Size = 0x10000

// ErrOutOfRange is returned when an access falls outside 0x0000..0xFFFF,
// or a buffer operation would run past the end of memory.
var ErrOutOfRange = fmt.Errorf("mem: address out of range")

// Memory is a flat, fixed-size byte store.
type Memory struct {
	bytes [Size]byte
}

// New returns a zeroed 64KiB memory.
func New() *Memory {
	return &Memory{}
}

// Read returns the byte at addr. addr is a uint16, so it is always in
// range by construction.
func (m *Memory) Read(addr uint16) uint8 {
	return m.bytes[addr]
}

// Write stores a byte at addr.
func (m *Memory) Write(addr uint16, v uint8) {
	m.bytes[addr] = v
}

// Read16 reads a little-endian 16-bit word: the low byte is at addr, the
// high byte at addr+1. Wraps at the top of the address space like real
// hardware (addr=0xFFFF reads its high byte from 0x0000).
func (m *Memory) Read16(addr uint16) uint16 {
	lo := m.bytes[addr]
	hi := m.bytes[addr+1]
	return uint16(hi)<<8 | uint16(lo)
}

// Write16 writes v as a little-endian 16-bit word at addr, addr+1.
func (m *Memory) Write16(addr uint16, v uint16) {
	m.bytes[addr] = uint8(v)
	m.bytes[addr+1] = uint8(v >> 8)
}

// WriteBuffer copies data into memory starting at addr. It fails with no
// partial write if any byte would fall outside the address space.
func (m *Memory) WriteBuffer(addr uint16, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	end := int(addr) + len(data)
	if end > Size {
		return fmt.Errorf("%w: write of %d bytes at %#04x", ErrOutOfRange, len(data), addr)
	}
	copy(m.bytes[addr:end], data)
	return nil
}

// ReadBuffer returns a copy of length bytes starting at addr. It fails if
// the requested range runs past the end of the address space.
func (m *Memory) ReadBuffer(addr uint16, length int) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	end := int(addr) + length
	if end > Size {
		return nil, fmt.Errorf("%w: read of %d bytes at %#04x", ErrOutOfRange, length, addr)
	}
	out := make([]byte, length)
	copy(out, m.bytes[addr:end])
	return out, nil
}
