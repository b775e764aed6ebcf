// Package testutil holds in-memory doubles of the ledger and wallet used by
// package tests.
package testutil

import (
	"context"
	"sync"

	"github.com/ElysonGreber/JKPSol/address"
	"github.com/ElysonGreber/JKPSol/chain"
	"github.com/ElysonGreber/JKPSol/codec"
	"github.com/ElysonGreber/JKPSol/state"
)

// Chain is an in-memory chain.Client. When Program is set, every sent
// transaction carrying a one-byte move is applied to the storage account
// (the instruction's second account) through it.
type Chain struct {
	mu sync.Mutex

	Accounts  map[address.PublicKey][]byte
	Blockhash codec.Hash

	AccountErr   error
	BlockhashErr error
	SendErr      error
	AwaitErr     error
	DetailErr    error

	// Await, when set, replaces the AwaitFinality result.
	Await func(ctx context.Context, sig codec.Signature) error

	Program func(prev state.PlayerState, move state.Move) state.PlayerState

	Sent  []*codec.Transaction
	Calls []string
}

var _ chain.Client = (*Chain)(nil)

func NewChain() *Chain {
	c := &Chain{Accounts: map[address.PublicKey][]byte{}}
	for i := range c.Blockhash {
		c.Blockhash[i] = byte(200 + i%50)
	}
	return c
}

func (c *Chain) record(call string) {
	c.Calls = append(c.Calls, call)
}

// CallCount returns how many times method was called.
func (c *Chain) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.Calls {
		if m == method {
			n++
		}
	}
	return n
}

func (c *Chain) SetAccount(addr address.PublicKey, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[addr] = append([]byte(nil), data...)
}

func (c *Chain) GetAccountBytes(_ context.Context, addr address.PublicKey) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("GetAccountBytes")
	if c.AccountErr != nil {
		return nil, c.AccountErr
	}
	b, ok := c.Accounts[addr]
	if !ok {
		return nil, chain.ErrAccountNotFound.Wrap(addr.String())
	}
	return append([]byte(nil), b...), nil
}

func (c *Chain) GetLatestBlockhash(_ context.Context) (codec.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("GetLatestBlockhash")
	return c.Blockhash, c.BlockhashErr
}

func (c *Chain) SendTransaction(_ context.Context, raw []byte) (codec.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("SendTransaction")
	if c.SendErr != nil {
		return codec.Signature{}, c.SendErr
	}
	tx, err := codec.DecodeTransaction(raw)
	if err != nil {
		return codec.Signature{}, err
	}
	if err := tx.VerifySignatures(); err != nil {
		return codec.Signature{}, err
	}
	c.Sent = append(c.Sent, tx)

	if c.Program != nil {
		for _, ix := range tx.Message.Instructions {
			if len(ix.Accounts) < 2 || len(ix.Data) != 1 {
				continue
			}
			storage := tx.Message.AccountKeys[ix.Accounts[1]]
			prev := state.Decode(c.Accounts[storage])
			c.Accounts[storage] = c.Program(prev, state.Move(ix.Data[0])).Encode()
		}
	}
	return tx.ID(), nil
}

func (c *Chain) AwaitFinality(ctx context.Context, sig codec.Signature, _ chain.Commitment) error {
	c.mu.Lock()
	c.record("AwaitFinality")
	await, err := c.Await, c.AwaitErr
	c.mu.Unlock()
	if await != nil {
		return await(ctx, sig)
	}
	return err
}

func (c *Chain) GetSubmissionDetail(_ context.Context, sig codec.Signature) (*chain.SubmissionDetail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("GetSubmissionDetail")
	if c.DetailErr != nil {
		return nil, c.DetailErr
	}
	return &chain.SubmissionDetail{
		Signature: sig,
		Slot:      uint64(len(c.Sent)),
		Fee:       5000,
		Logs:      []string{"Program log: move accepted"},
	}, nil
}

// RockProgram answers every move with rock and awards a point per win.
func RockProgram(prev state.PlayerState, move state.Move) state.PlayerState {
	rec := state.RoundRecord{PlayerMove: move, ProgramMove: state.MoveRock}
	switch move {
	case state.MoveRock:
		rec.Result = state.OutcomeDraw
	case state.MovePaper:
		rec.Result = state.OutcomeWon
		prev.Score++
	default:
		rec.Result = state.OutcomeLost
	}
	prev.History = append(append([]state.RoundRecord{}, prev.History...), rec)
	return prev
}
