package core_test

import (
	"testing"

	"soundmark/core"
)

func TestPackUnpack_RoundTrip(t *testing.T) {
	tests := []struct {
		name          string
		f1, f2        uint16
		deltaMs       uint32
		wantF1, wantF2 uint16
		wantDelta     uint32
	}{
		{"zeros", 0, 0, 0, 0, 0, 0},
		{"max 13-bit fields", 0x1FFF, 0x1FFF, 0x7FFF, 0x1FFF, 0x1FFF, 0x7FFF},
		{"typical values", 120, 340, 2500, 120, 340, 2500},
		{"delta aliases past 15 bits", 0, 0, 40000, 0, 0, 40000 & 0x7FFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := core.Pack(tt.f1, tt.f2, tt.deltaMs)
			f1, f2, delta := core.Unpack(h)
			if f1 != tt.wantF1 || f2 != tt.wantF2 || delta != tt.wantDelta {
				t.Errorf("Unpack(Pack(%d,%d,%d)) = (%d,%d,%d), want (%d,%d,%d)",
					tt.f1, tt.f2, tt.deltaMs, f1, f2, delta, tt.wantF1, tt.wantF2, tt.wantDelta)
			}
		})
	}
}

func TestPack_MaxValue(t *testing.T) {
	h := core.Pack(0x1FFF, 0x1FFF, 0x7FFF)
	if h != 0x1FFFFFFFFFF {
		t.Errorf("Pack(0x1FFF, 0x1FFF, 0x7FFF) = %#x, want 0x1FFFFFFFFFF", uint64(h))
	}
}

func TestPack_FieldsStayWithinBitWidth(t *testing.T) {
	h := core.Pack(0xFFFF, 0xFFFF, 0xFFFFFFFF)
	f1, f2, delta := core.Unpack(h)
	if f1 >= 1<<13 {
		t.Errorf("f1 = %d exceeds 13 bits", f1)
	}
	if f2 >= 1<<13 {
		t.Errorf("f2 = %d exceeds 13 bits", f2)
	}
	if delta >= 1<<15 {
		t.Errorf("delta = %d exceeds 15 bits", delta)
	}
}
