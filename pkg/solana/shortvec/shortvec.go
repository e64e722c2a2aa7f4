// Package shortvec implements the compact length prefix used by the Solana
// wire format: little endian groups of 7 bits, with the high bit of each byte
// marking a continuation. Lengths are limited to a uint16.
package shortvec

import (
	"fmt"
	"io"
	"math"
)

const maxEncodedLen = 3

// EncodeLen writes the encoding of length to w, returning the bytes written.
func EncodeLen(w io.Writer, length int) (int, error) {
	if length < 0 || length > math.MaxUint16 {
		return 0, fmt.Errorf("len must be within [0, %d]", math.MaxUint16)
	}

	encoded := make([]byte, 0, maxEncodedLen)
	for {
		b := byte(length & 0x7f)
		length >>= 7
		if length == 0 {
			encoded = append(encoded, b)
			break
		}
		encoded = append(encoded, b|0x80)
	}

	return w.Write(encoded)
}

// DecodeLen reads an encoded length from r.
func DecodeLen(r io.Reader) (int, error) {
	var length int
	b := make([]byte, 1)

	for i := 0; i < maxEncodedLen; i++ {
		if _, err := io.ReadFull(r, b); err != nil {
			return 0, err
		}

		length |= int(b[0]&0x7f) << (7 * i)
		if b[0]&0x80 == 0 {
			return length, nil
		}
	}

	return 0, fmt.Errorf("invalid size: more than %d bytes", maxEncodedLen)
}
