package mem

import (
	"errors"
	"testing"
)

func TestReadWrite(t *testing.T) {
	m := New()
	m.Write(0x1000, 0x42)
	if got := m.Read(0x1000); got != 0x42 {
		t.Errorf("got %#x, want 0x42", got)
	}
}

func TestRead16LittleEndian(t *testing.T) {
	m := New()
	m.Write(0x2000, 0x34)
	m.Write(0x2001, 0x12)
	if got := m.Read16(0x2000); got != 0x1234 {
		t.Errorf("got %#x, want 0x1234", got)
	}
}

func TestRead16MatchesManualDecode(t *testing.T) {
	m := New()
	m.Write(0x3000, 0xAD)
	m.Write(0x3001, 0xDE)
	want := uint16(m.Read(0x3001))<<8 | uint16(m.Read(0x3000))
	if got := m.Read16(0x3000); got != want {
		t.Errorf("got %#x, want %#x", got, want)
	}
}

func TestWrite16LittleEndian(t *testing.T) {
	m := New()
	m.Write16(0x4000, 0xBEEF)
	if m.Read(0x4000) != 0xEF || m.Read(0x4001) != 0xBE {
		t.Errorf("low=%#x high=%#x, want low=0xEF high=0xBE", m.Read(0x4000), m.Read(0x4001))
	}
}

func TestWriteBufferOK(t *testing.T) {
	m := New()
	data := []byte{1, 2, 3, 4}
	if err := m.WriteBuffer(0x5000, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := m.ReadBuffer(0x5000, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, b := range data {
		if got[i] != b {
			t.Errorf("byte %d: got %#x, want %#x", i, got[i], b)
		}
	}
}

func TestWriteBufferOutOfRangeNoPartialWrite(t *testing.T) {
	m := New()
	m.Write(0xFFFE, 0xAA)
	m.Write(0xFFFF, 0xAA)
	data := []byte{1, 2, 3, 4}
	err := m.WriteBuffer(0xFFFE, data)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if m.Read(0xFFFE) != 0xAA || m.Read(0xFFFF) != 0xAA {
		t.Fatal("write_buffer must not partially write on failure")
	}
}

func TestReadBufferOutOfRange(t *testing.T) {
	m := New()
	_, err := m.ReadBuffer(0xFFF0, 0x20)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}
