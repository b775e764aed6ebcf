package chain

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/ElysonGreber/JKPSol/address"
	"github.com/ElysonGreber/JKPSol/app/params"
	"github.com/ElysonGreber/JKPSol/codec"
)

// Client is the ledger network capability.
type Client interface {
	// GetAccountBytes returns the raw account data, or ErrAccountNotFound.
	GetAccountBytes(ctx context.Context, addr address.PublicKey) ([]byte, error)
	GetLatestBlockhash(ctx context.Context) (codec.Hash, error)
	// SendTransaction submits a signed wire transaction and returns its
	// signature before finality.
	SendTransaction(ctx context.Context, raw []byte) (codec.Signature, error)
	// AwaitFinality blocks until sig reaches commitment, fails, or times out.
	AwaitFinality(ctx context.Context, sig codec.Signature, commitment Commitment) error
	GetSubmissionDetail(ctx context.Context, sig codec.Signature) (*SubmissionDetail, error)
}

// SubmissionDetail is the executed transaction as reported by the ledger.
type SubmissionDetail struct {
	Signature codec.Signature `json:"signature"`
	Slot      uint64          `json:"slot"`
	BlockTime time.Time       `json:"blockTime,omitempty"`
	Fee       uint64          `json:"fee"`
	Logs      []string        `json:"logs"`
	// Err is the raw execution error, empty on success.
	Err string `json:"err,omitempty"`
}

func (d SubmissionDetail) Succeeded() bool { return d.Err == "" }

// FeeSOL is the fee in whole SOL.
func (d SubmissionDetail) FeeSOL() sdkmath.LegacyDec {
	return sdkmath.LegacyNewDecFromInt(sdkmath.NewIntFromUint64(d.Fee)).QuoInt64(params.LamportsPerSOL)
}
