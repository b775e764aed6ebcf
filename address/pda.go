package address

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32
)

var pdaMarker = []byte("ProgramDerivedAddress")

// ErrOnCurve is returned when a seed set hashes to a valid ed25519 point; such
// an address could have a private key and is not a valid PDA.
var ErrOnCurve = errors.New("derived address is on the ed25519 curve")

// IsOnCurve reports whether b decodes to a point on edwards25519. Non-canonical
// encodings of valid points count as on-curve.
func IsOnCurve(b []byte) bool {
	if len(b) != PublicKeyLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// CreateProgramAddress computes sha256(seeds || programID || marker) and
// rejects digests that land on the curve.
func CreateProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return PublicKey{}, fmt.Errorf("pda: %d seeds exceeds max %d", len(seeds), MaxSeeds)
	}
	h := sha256.New()
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return PublicKey{}, fmt.Errorf("pda: seed %d is %d bytes, max %d", i, len(s), MaxSeedLength)
		}
		h.Write(s)
	}
	h.Write(programID[:])
	h.Write(pdaMarker)

	var out PublicKey
	copy(out[:], h.Sum(nil))
	if IsOnCurve(out[:]) {
		return PublicKey{}, ErrOnCurve
	}
	return out, nil
}

// FindProgramAddress searches bump seeds from 255 down and returns the first
// off-curve address together with its bump.
func FindProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, uint8, error) {
	if len(seeds) >= MaxSeeds {
		// One slot is reserved for the bump.
		return PublicKey{}, 0, fmt.Errorf("pda: %d seeds leaves no room for bump", len(seeds))
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return PublicKey{}, 0, err
		}
	}
	return PublicKey{}, 0, fmt.Errorf("pda: no viable bump seed")
}
