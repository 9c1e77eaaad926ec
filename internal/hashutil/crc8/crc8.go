// Package crc8 implements the 8-bit cyclic redundancy check used to verify
// FLAC frame headers: polynomial 0x07 (x^8+x^2+x+1), seed 0, no reflection,
// no final XOR.
package crc8

import "github.com/mkzflac/flac/internal/hashutil"

// Size of a CRC-8 checksum in bytes.
const Size = 1

// ATM is the FLAC frame-header polynomial.
const ATM = 0x07

// Table is a 256-entry lookup table for a given polynomial.
type Table [256]uint8

// ATMTable is the precomputed table for the ATM polynomial.
var ATMTable = makeTable(ATM)

func makeTable(poly uint8) *Table {
	table := new(Table)
	for i := range table {
		crc := uint8(i)
		for j := 0; j < 8; j++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

type digest struct {
	crc   uint8
	table *Table
}

// New returns a hashutil.Hash8 computing the CRC-8 checksum using table.
func New(table *Table) hashutil.Hash8 {
	return &digest{table: table}
}

// NewATM returns a hashutil.Hash8 computing the CRC-8 checksum with the ATM
// polynomial, the one used for FLAC frame headers.
func NewATM() hashutil.Hash8 {
	return New(ATMTable)
}

func (d *digest) Size() int      { return Size }
func (d *digest) BlockSize() int { return 1 }
func (d *digest) Reset()         { d.crc = 0 }

func (d *digest) Write(p []byte) (int, error) {
	crc := d.crc
	for _, v := range p {
		crc = d.table[crc^v]
	}
	d.crc = crc
	return len(p), nil
}

// Sum8 returns the 8-bit checksum accumulated so far.
func (d *digest) Sum8() uint8 { return d.crc }

func (d *digest) Sum(in []byte) []byte {
	return append(in, d.crc)
}

// ChecksumATM returns the CRC-8 checksum of data using the ATM polynomial.
func ChecksumATM(data []byte) uint8 {
	d := NewATM()
	d.Write(data)
	return d.Sum8()
}
