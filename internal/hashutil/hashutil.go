// Package hashutil defines narrow hash interfaces for checksums smaller than
// the 32-bit minimum of hash.Hash32.
package hashutil

import "hash"

// Hash8 is the common interface implemented by hash functions producing an
// 8-bit checksum.
type Hash8 interface {
	hash.Hash
	Sum8() uint8
}

// Hash16 is the common interface implemented by hash functions producing a
// 16-bit checksum.
type Hash16 interface {
	hash.Hash
	Sum16() uint16
}
