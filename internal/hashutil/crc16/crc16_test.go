package crc16

import "testing"

func TestChecksumIBM(t *testing.T) {
	// Non-reflected, MSB-first check value for poly 0x8005; the reflected
	// CRC-16/ARC variant (0xBB3D) does not apply to FLAC.
	got := ChecksumIBM([]byte("123456789"))
	if got != 0xFEE8 {
		t.Fatalf("CRC-16 mismatch; expected 0xFEE8, got 0x%04X", got)
	}
}
