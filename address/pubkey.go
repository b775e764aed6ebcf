package address

import (
	"bytes"
	"fmt"

	"github.com/cosmos/btcutil/base58"
)

const PublicKeyLength = 32

// PublicKey is a 32-byte ledger account address (an ed25519 public key or a
// program-derived address). Its text form is base58.
type PublicKey [PublicKeyLength]byte

var (
	// SystemProgramID is the all-zero system program address.
	SystemProgramID = PublicKey{}

	SysvarRentID  = MustFromBase58("SysvarRent111111111111111111111111111111111")
	SysvarClockID = MustFromBase58("SysvarC1ock11111111111111111111111111111111")
)

func FromBytes(b []byte) (PublicKey, error) {
	if len(b) != PublicKeyLength {
		return PublicKey{}, fmt.Errorf("public key: expected %d bytes, got %d", PublicKeyLength, len(b))
	}
	var pk PublicKey
	copy(pk[:], b)
	return pk, nil
}

func FromBase58(s string) (PublicKey, error) {
	if s == "" {
		return PublicKey{}, fmt.Errorf("public key: empty string")
	}
	b := base58.Decode(s)
	if len(b) == 0 {
		return PublicKey{}, fmt.Errorf("public key: invalid base58 %q", s)
	}
	pk, err := FromBytes(b)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w (%q)", err, s)
	}
	return pk, nil
}

// MustFromBase58 is FromBase58 for compile-time constants.
func MustFromBase58(s string) PublicKey {
	pk, err := FromBase58(s)
	if err != nil {
		panic(err)
	}
	return pk
}

func (pk PublicKey) String() string {
	return base58.Encode(pk[:])
}

func (pk PublicKey) Bytes() []byte {
	out := make([]byte, PublicKeyLength)
	copy(out, pk[:])
	return out
}

func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

func (pk PublicKey) Equals(other PublicKey) bool {
	return bytes.Equal(pk[:], other[:])
}

func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

func (pk *PublicKey) UnmarshalText(text []byte) error {
	v, err := FromBase58(string(text))
	if err != nil {
		return err
	}
	*pk = v
	return nil
}
