package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/ElysonGreber/JKPSol/address"
	"github.com/ElysonGreber/JKPSol/codec"
	"github.com/ElysonGreber/JKPSol/signer"
)

// Signer wraps a real keypair and can be told to refuse.
type Signer struct {
	mu sync.Mutex

	Key        *signer.Keypair
	ConnectErr error
	SignErr    error
	Signed     int
}

var _ signer.Signer = (*Signer)(nil)

func NewSigner(t testing.TB) *Signer {
	t.Helper()
	kp, err := signer.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return &Signer{Key: kp}
}

func (s *Signer) PublicKey() address.PublicKey { return s.Key.PublicKey() }

func (s *Signer) Connect(ctx context.Context) (address.PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ConnectErr != nil {
		return address.PublicKey{}, s.ConnectErr
	}
	return s.Key.Connect(ctx)
}

func (s *Signer) SignTransaction(ctx context.Context, tx *codec.Transaction) (*codec.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SignErr != nil {
		return nil, s.SignErr
	}
	s.Signed++
	return s.Key.SignTransaction(ctx, tx)
}
