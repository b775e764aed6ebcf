package codec

import (
	"crypto/ed25519"
	"fmt"

	"github.com/cosmos/btcutil/base58"
)

const (
	HashLength      = 32
	SignatureLength = ed25519.SignatureSize
)

// Hash is a recent blockhash: the short-lived checkpoint that stamps a
// transaction and bounds its validity window.
type Hash [HashLength]byte

func HashFromBase58(s string) (Hash, error) {
	b := base58.Decode(s)
	if len(b) != HashLength {
		return Hash{}, fmt.Errorf("hash: invalid base58 %q", s)
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

func (h Hash) String() string { return base58.Encode(h[:]) }
func (h Hash) IsZero() bool   { return h == Hash{} }

// Signature is an ed25519 signature. The first signature of a transaction is
// also its submission id.
type Signature [SignatureLength]byte

func SignatureFromBytes(b []byte) (Signature, error) {
	if len(b) != SignatureLength {
		return Signature{}, fmt.Errorf("signature: expected %d bytes, got %d", SignatureLength, len(b))
	}
	var s Signature
	copy(s[:], b)
	return s, nil
}

func SignatureFromBase58(s string) (Signature, error) {
	b := base58.Decode(s)
	if len(b) == 0 {
		return Signature{}, fmt.Errorf("signature: invalid base58 %q", s)
	}
	return SignatureFromBytes(b)
}

func (s Signature) String() string { return base58.Encode(s[:]) }
func (s Signature) IsZero() bool   { return s == Signature{} }

func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Signature) UnmarshalText(text []byte) error {
	v, err := SignatureFromBase58(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
