package submit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"cosmossdk.io/log"
	"github.com/google/uuid"

	"github.com/ElysonGreber/JKPSol/address"
	"github.com/ElysonGreber/JKPSol/chain"
	"github.com/ElysonGreber/JKPSol/codec"
	"github.com/ElysonGreber/JKPSol/metrics"
	"github.com/ElysonGreber/JKPSol/signer"
	"github.com/ElysonGreber/JKPSol/state"
)

// Resyncer refreshes the player's view after a confirmed move.
type Resyncer interface {
	Sync(ctx context.Context, player address.PublicKey) (state.PlayerState, error)
}

// Receipt describes one submission. It is returned even when Submit fails so
// callers can see how far it got.
type Receipt struct {
	ID        uuid.UUID               `json:"id"`
	Move      state.Move              `json:"move"`
	Player    address.PublicKey       `json:"player"`
	Address   address.PublicKey       `json:"address"`
	Signature codec.Signature         `json:"signature"`
	Stages    []Stage                 `json:"stages"`
	State     *state.PlayerState      `json:"state,omitempty"`
	Detail    *chain.SubmissionDetail `json:"detail,omitempty"`
}

// Stage is the last stage reached, zero before Built.
func (r *Receipt) Stage() Stage {
	if len(r.Stages) == 0 {
		return 0
	}
	return r.Stages[len(r.Stages)-1]
}

// BuildInstruction returns the program's move instruction. The account order
// is fixed by the program.
func BuildInstruction(programID, player, storage address.PublicKey, move state.Move) codec.Instruction {
	return codec.Instruction{
		ProgramID: programID,
		Accounts: []codec.AccountMeta{
			{PublicKey: player, IsSigner: true, IsWritable: true},
			{PublicKey: storage, IsWritable: true},
			{PublicKey: address.SystemProgramID},
			{PublicKey: address.SysvarRentID},
			{PublicKey: address.SysvarClockID},
		},
		Data: []byte{byte(move)},
	}
}

// Pipeline turns a move into a confirmed ledger transaction. At most one
// submission runs at a time.
type Pipeline struct {
	deriver    address.Deriver
	client     chain.Client
	signer     signer.Signer
	resyncer   Resyncer
	commitment chain.Commitment
	observer   func(Stage, *Receipt)
	logger     log.Logger
	metrics    *metrics.Metrics

	inFlight atomic.Bool
}

type Option func(*Pipeline)

func WithResyncer(r Resyncer) Option { return func(p *Pipeline) { p.resyncer = r } }

func WithCommitment(c chain.Commitment) Option { return func(p *Pipeline) { p.commitment = c } }

// WithObserver is called synchronously on every stage transition.
func WithObserver(fn func(Stage, *Receipt)) Option { return func(p *Pipeline) { p.observer = fn } }

func WithLogger(l log.Logger) Option { return func(p *Pipeline) { p.logger = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(p *Pipeline) { p.metrics = m } }

func NewPipeline(deriver address.Deriver, client chain.Client, s signer.Signer, opts ...Option) *Pipeline {
	if client == nil {
		panic("submit: chain client is nil")
	}
	if s == nil {
		panic("submit: signer is nil")
	}
	p := &Pipeline{
		deriver:    deriver,
		client:     client,
		signer:     s,
		commitment: chain.CommitmentConfirmed,
		logger:     log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("module", ModuleName)
	return p
}

// InFlight reports whether a submission is running.
func (p *Pipeline) InFlight() bool { return p.inFlight.Load() }

func (p *Pipeline) advance(r *Receipt, s Stage) {
	r.Stages = append(r.Stages, s)
	p.logger.Debug("stage", "id", r.ID.String(), "stage", s.String())
	if p.observer != nil {
		p.observer(s, r)
	}
}

// Submit builds, signs, sends and confirms one move for player. On
// confirmation the resyncer runs exactly once before Submit returns; on any
// failure it does not run.
func (p *Pipeline) Submit(ctx context.Context, player address.PublicKey, move state.Move) (*Receipt, error) {
	if !move.Valid() {
		return nil, ErrInvalidMove.Wrapf("%d", uint8(move))
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		return nil, ErrInFlight
	}
	defer p.inFlight.Store(false)

	start := time.Now()
	r := &Receipt{ID: uuid.New(), Move: move, Player: player}

	derived, err := p.deriver.Derive(player)
	if err != nil {
		return r, ErrBuild.Wrapf("derive storage address: %v", err)
	}
	r.Address = derived.Address
	ix := BuildInstruction(p.deriver.ProgramID, player, derived.Address, move)
	p.advance(r, StageBuilt)

	blockhash, err := p.client.GetLatestBlockhash(ctx)
	if err != nil {
		return r, fmt.Errorf("%w: blockhash: %w", ErrBuild, err)
	}
	tx, err := codec.NewTransaction(player, blockhash, ix)
	if err != nil {
		return r, ErrBuild.Wrap(err.Error())
	}

	signed, err := p.signer.SignTransaction(ctx, tx)
	if err != nil {
		p.logger.Info("signature rejected", "id", r.ID.String(), "err", err)
		return r, fmt.Errorf("%w: %w", ErrSignRejected, err)
	}
	raw, err := signed.Marshal()
	if err != nil {
		return r, fmt.Errorf("%w: %w", ErrSignRejected, err)
	}
	p.advance(r, StageSigned)

	sig, err := p.client.SendTransaction(ctx, raw)
	if err != nil {
		p.finish(r, StageRejected, start)
		return r, fmt.Errorf("%w: %w", ErrSubmitRejected, err)
	}
	if id := signed.ID(); sig != id {
		p.logger.Warn("node returned unexpected signature", "want", id.String(), "got", sig.String())
	}
	r.Signature = sig
	p.advance(r, StageSubmitted)

	if err := p.client.AwaitFinality(ctx, sig, p.commitment); err != nil {
		p.finish(r, StageRejected, start)
		return r, fmt.Errorf("%w: %w", ErrNotConfirmed, err)
	}
	p.finish(r, StageConfirmed, start)

	if p.resyncer != nil {
		st, err := p.resyncer.Sync(ctx, player)
		if err != nil {
			return r, fmt.Errorf("%w: %w", ErrResync, err)
		}
		r.State = &st
	}

	detail, err := p.client.GetSubmissionDetail(ctx, sig)
	if err != nil {
		p.logger.Debug("submission detail unavailable", "signature", sig.String(), "err", err)
	} else {
		r.Detail = detail
	}
	return r, nil
}

func (p *Pipeline) finish(r *Receipt, s Stage, start time.Time) {
	p.advance(r, s)
	p.metrics.ObserveSubmission(s.String(), time.Since(start))
	p.logger.Info("submission finished",
		"id", r.ID.String(),
		"move", r.Move.String(),
		"stage", s.String(),
		"signature", r.Signature.String(),
		"elapsed", time.Since(start).String(),
	)
}
