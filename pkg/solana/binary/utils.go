package binary

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"
)

var ErrBufferTooSmall = errors.New("buffer too small")

func PutKey32(dst []byte, src []byte, offset *int) {
	copy(dst, src)
	*offset += ed25519.PublicKeySize
}

func PutOptionalKey32(dst []byte, src []byte, offset *int, optionSize int) {
	if len(src) > 0 {
		dst[0] = 1
		copy(dst[optionSize:], src)
	}

	*offset += optionSize + ed25519.PublicKeySize
}

func PutUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst, v)
	*offset += 8
}

func PutUint32(dst []byte, v uint32, offset *int) {
	binary.LittleEndian.PutUint32(dst, v)
	*offset += 4
}

func PutUint8(dst []byte, v uint8, offset *int) {
	dst[0] = v
	*offset += 1
}

func PutOptionalUint64(dst []byte, v *uint64, offset *int, optionSize int) {
	if v != nil {
		dst[0] = 1
		binary.LittleEndian.PutUint64(dst[optionSize:], *v)
	}
	*offset += optionSize + 8
}

func GetKey32(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src)
	*offset += ed25519.PublicKeySize
}

func GetOptionalKey32(src []byte, dst *ed25519.PublicKey, offset *int, optionSize int) {
	if src[0] == 1 {
		*dst = make([]byte, ed25519.PublicKeySize)
		copy(*dst, src[optionSize:])
	}
	*offset += optionSize + ed25519.PublicKeySize
}

func GetUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src)
	*offset += 8
}

func GetUint32(src []byte, dst *uint32, offset *int) {
	*dst = binary.LittleEndian.Uint32(src)
	*offset += 4
}

func GetUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[0]
	*offset += 1
}

func GetOptionalUint64(src []byte, dst **uint64, offset *int, optionSize int) {
	if src[0] == 1 {
		val := binary.LittleEndian.Uint64(src[optionSize:])
		*dst = &val
	}
	*offset += optionSize + 8
}

func PutUint16(dst []byte, v uint16, offset *int) {
	binary.LittleEndian.PutUint16(dst, v)
	*offset += 2
}

func GetUint16(src []byte, dst *uint16, offset *int) {
	*dst = binary.LittleEndian.Uint16(src)
	*offset += 2
}

func PutBool(dst []byte, v bool, offset *int) {
	if v {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
	*offset += 1
}

func GetBool(src []byte, dst *bool, offset *int) {
	*dst = src[0] == 1
	*offset += 1
}

// PutString writes a u32 length prefixed string.
func PutString(dst []byte, v string, offset *int) {
	binary.LittleEndian.PutUint32(dst, uint32(len(v)))
	copy(dst[4:], v)
	*offset += 4 + len(v)
}

// GetString reads a u32 length prefixed string. The caller is expected to have
// validated the remaining buffer holds the length prefix.
func GetString(src []byte, dst *string, offset *int) error {
	length := binary.LittleEndian.Uint32(src)
	if uint64(len(src)) < 4+uint64(length) {
		return ErrBufferTooSmall
	}

	*dst = string(src[4 : 4+length])
	*offset += 4 + int(length)
	return nil
}
