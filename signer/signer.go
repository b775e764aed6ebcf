package signer

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ElysonGreber/JKPSol/address"
	"github.com/ElysonGreber/JKPSol/codec"
)

// Signer is the wallet capability: it reveals the player identity and signs
// transactions on request. Either call may be refused.
type Signer interface {
	Connect(ctx context.Context) (address.PublicKey, error)
	SignTransaction(ctx context.Context, tx *codec.Transaction) (*codec.Transaction, error)
}

// Keypair is a local ed25519 key, stored in the solana-keygen JSON format
// (a 64-element byte array: seed || public key).
type Keypair struct {
	priv ed25519.PrivateKey
}

var _ Signer = (*Keypair)(nil)

func GenerateKeypair() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &Keypair{priv: priv}, nil
}

func KeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, ErrInvalidKey.Wrapf("seed must be %d bytes", ed25519.SeedSize)
	}
	return &Keypair{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

func KeypairFromBytes(b []byte) (*Keypair, error) {
	if len(b) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKey.Wrapf("expected %d bytes, got %d", ed25519.PrivateKeySize, len(b))
	}
	priv := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
	if !priv.Public().(ed25519.PublicKey).Equal(ed25519.PublicKey(b[ed25519.SeedSize:])) {
		return nil, ErrInvalidKey.Wrap("public half does not match seed")
	}
	return &Keypair{priv: priv}, nil
}

func LoadKeypair(path string) (*Keypair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keypair: %w", err)
	}
	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return nil, ErrInvalidKey.Wrapf("decode %s: %v", path, err)
	}
	b := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, ErrInvalidKey.Wrapf("byte %d out of range: %d", i, v)
		}
		b[i] = byte(v)
	}
	return KeypairFromBytes(b)
}

func (k *Keypair) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir keypair dir: %w", err)
	}
	ints := make([]int, len(k.priv))
	for i, v := range k.priv {
		ints[i] = int(v)
	}
	b, err := json.Marshal(ints)
	if err != nil {
		return fmt.Errorf("encode keypair: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write keypair: %w", err)
	}
	return nil
}

func (k *Keypair) PublicKey() address.PublicKey {
	var pk address.PublicKey
	copy(pk[:], k.priv.Public().(ed25519.PublicKey))
	return pk
}

func (k *Keypair) Connect(_ context.Context) (address.PublicKey, error) {
	return k.PublicKey(), nil
}

// SignTransaction fills this key's signature slot in tx and returns it.
func (k *Keypair) SignTransaction(_ context.Context, tx *codec.Transaction) (*codec.Transaction, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is nil")
	}
	pub := k.PublicKey()
	sig := ed25519.Sign(k.priv, tx.MessageBytes())
	if err := tx.AddSignature(pub, sig); err != nil {
		return nil, ErrNotSigner.Wrap(err.Error())
	}
	return tx, nil
}
