package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32

	programDerivedAddressMarker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrNoViableBump          = errors.New("unable to find a viable program address bump seed")

	ErrInvalidPublicKey = errors.New("invalid public key")
)

// CreateProgramAddress derives sha256(seeds || program || marker). Derived
// addresses must lie off the ed25519 curve so no private key can exist for
// them; ErrInvalidPublicKey is returned for seeds that land on it.
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return nil, ErrTooManySeeds
	}

	h := sha256.New()
	for _, s := range seeds {
		if len(s) > maxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}
		h.Write(s)
	}
	h.Write(program)
	h.Write([]byte(programDerivedAddressMarker))

	address := ed25519.PublicKey(h.Sum(nil))
	if IsOnCurve(address) {
		return nil, ErrInvalidPublicKey
	}
	return address, nil
}

// FindProgramAddressAndBump searches bump seeds downward from 255 and returns
// the first off-curve address along with its bump.
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := math.MaxUint8; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}

		address, err := CreateProgramAddress(program, withBump...)
		switch err {
		case nil:
			return address, byte(bump), nil
		case ErrInvalidPublicKey:
		default:
			return nil, 0, err
		}
	}

	return nil, 0, ErrNoViableBump
}

// FindProgramAddress is FindProgramAddressAndBump without the bump.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	address, _, err := FindProgramAddressAndBump(program, seeds...)
	return address, err
}

// VerifyProgramAddress recomputes the address from the provided seeds and bump,
// and reports whether it matches the expected address.
func VerifyProgramAddress(expected, program ed25519.PublicKey, bump uint8, seeds ...[]byte) bool {
	withBump := append(append([][]byte{}, seeds...), []byte{bump})

	actual, err := CreateProgramAddress(program, withBump...)
	return err == nil && bytes.Equal(expected, actual)
}

// IsOnCurve reports whether the key decodes to an ed25519 point. The point
// decoding is internal to x/crypto, so the jdgcs fork is used for it.
func IsOnCurve(pub ed25519.PublicKey) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}

	var compressed [32]byte
	copy(compressed[:], pub)

	var point edwards25519.ExtendedGroupElement
	return point.FromBytes(&compressed)
}
