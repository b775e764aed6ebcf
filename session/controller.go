package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/log"
	"golang.org/x/sync/errgroup"

	"github.com/ElysonGreber/JKPSol/address"
	"github.com/ElysonGreber/JKPSol/app/params"
	"github.com/ElysonGreber/JKPSol/chain"
	"github.com/ElysonGreber/JKPSol/directory"
	"github.com/ElysonGreber/JKPSol/history"
	"github.com/ElysonGreber/JKPSol/metrics"
	"github.com/ElysonGreber/JKPSol/signer"
	"github.com/ElysonGreber/JKPSol/state"
	"github.com/ElysonGreber/JKPSol/submit"
)

// View is a point-in-time copy of everything the controller caches.
type View struct {
	Connected bool              `json:"connected"`
	Player    address.PublicKey `json:"player"`
	Address   address.PublicKey `json:"address"`
	State     state.PlayerState `json:"state"`
	SyncedAt  time.Time         `json:"syncedAt"`

	Page     int             `json:"page"`
	Pages    int             `json:"pages"`
	PageSize int             `json:"pageSize"`
	Items    []history.Entry `json:"items"`
	HasPrev  bool            `json:"hasPrev"`
	HasNext  bool            `json:"hasNext"`

	Summary history.Summary `json:"summary"`

	Ranking      []directory.Entry `json:"ranking,omitempty"`
	RankingError string            `json:"rankingError,omitempty"`
}

// Controller owns the player's cached view and orchestrates sync, play and
// leaderboard writes. Caches are only ever replaced wholesale.
type Controller struct {
	deriver  address.Deriver
	client   chain.Client
	signer   signer.Signer
	dir      directory.Directory
	pipeline *submit.Pipeline

	pageSize   int
	commitment chain.Commitment
	observer   func(submit.Stage, *submit.Receipt)
	now        func() time.Time
	logger     log.Logger
	metrics    *metrics.Metrics

	mu         sync.RWMutex
	connected  bool
	player     address.PublicKey
	derived    address.Derived
	st         state.PlayerState
	pager      *history.Pager
	summary    history.Summary
	syncedAt   time.Time
	ranking    []directory.Entry
	rankingErr error
}

var _ submit.Resyncer = (*Controller)(nil)

type Option func(*Controller)

// WithDirectory enables Register and Ranking.
func WithDirectory(d directory.Directory) Option { return func(c *Controller) { c.dir = d } }

func WithPageSize(n int) Option { return func(c *Controller) { c.pageSize = n } }

func WithCommitment(cm chain.Commitment) Option { return func(c *Controller) { c.commitment = cm } }

func WithStageObserver(fn func(submit.Stage, *submit.Receipt)) Option {
	return func(c *Controller) { c.observer = fn }
}

func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

func WithLogger(l log.Logger) Option { return func(c *Controller) { c.logger = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(c *Controller) { c.metrics = m } }

func New(deriver address.Deriver, client chain.Client, s signer.Signer, opts ...Option) *Controller {
	if client == nil {
		panic("session: chain client is nil")
	}
	if s == nil {
		panic("session: signer is nil")
	}
	c := &Controller{
		deriver:    deriver,
		client:     client,
		signer:     s,
		pageSize:   params.PageSize,
		commitment: chain.CommitmentConfirmed,
		now:        time.Now,
		logger:     log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pageSize <= 0 {
		c.pageSize = params.PageSize
	}
	c.logger = c.logger.With("module", ModuleName)

	pipeOpts := []submit.Option{
		submit.WithResyncer(c),
		submit.WithCommitment(c.commitment),
		submit.WithLogger(c.logger),
		submit.WithMetrics(c.metrics),
	}
	if c.observer != nil {
		pipeOpts = append(pipeOpts, submit.WithObserver(c.observer))
	}
	c.pipeline = submit.NewPipeline(deriver, client, s, pipeOpts...)
	c.replaceLocked(state.ZeroState())
	return c
}

// Connect asks the signer for the player identity, then syncs game state and
// fetches the ranking concurrently. A ranking failure is reported in the view
// and never fails Connect.
func (c *Controller) Connect(ctx context.Context) (View, error) {
	player, err := c.signer.Connect(ctx)
	if err != nil {
		return c.View(), fmt.Errorf("connect signer: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := c.Sync(gctx, player)
		return err
	})
	if c.dir != nil {
		g.Go(func() error {
			if _, err := c.Ranking(gctx); err != nil {
				c.logger.Info("ranking unavailable", "err", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return c.View(), err
	}
	c.logger.Info("connected", "player", player.String())
	return c.View(), nil
}

// Sync reads player's account and replaces the cached view. An absent account
// is the zero state. Any other fetch error leaves the cache untouched.
func (c *Controller) Sync(ctx context.Context, player address.PublicKey) (st state.PlayerState, err error) {
	defer func() { c.metrics.ObserveSync(err) }()

	derived, err := c.deriver.Derive(player)
	if err != nil {
		return state.PlayerState{}, ErrSync.Wrapf("derive storage address: %v", err)
	}
	b, err := c.client.GetAccountBytes(ctx, derived.Address)
	switch {
	case errors.Is(err, chain.ErrAccountNotFound):
		st = state.ZeroState()
	case err != nil:
		return state.PlayerState{}, fmt.Errorf("%w: %w", ErrSync, err)
	default:
		if len(b) < params.DataSize {
			c.logger.Debug("short account data", "address", derived.Address.String(), "len", len(b))
		}
		st = state.Decode(b)
	}

	c.mu.Lock()
	c.connected = true
	c.player = player
	c.derived = derived
	c.replaceLocked(st)
	c.mu.Unlock()

	c.logger.Debug("synced", "player", player.String(), "score", st.Score, "rounds", len(st.History))
	return st, nil
}

// Refresh re-syncs the connected player.
func (c *Controller) Refresh(ctx context.Context) (View, error) {
	player, err := c.connectedPlayer()
	if err != nil {
		return c.View(), err
	}
	if _, err := c.Sync(ctx, player); err != nil {
		return c.View(), err
	}
	return c.View(), nil
}

// Replace rewrites the state, pager and summary caches from st.
func (c *Controller) Replace(st state.PlayerState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replaceLocked(st)
}

func (c *Controller) replaceLocked(st state.PlayerState) {
	h := append([]state.RoundRecord{}, st.History...)
	c.st = state.PlayerState{Score: st.Score, History: h}
	c.pager = history.NewPager(h, c.pageSize)
	c.summary = history.Summarize(h)
	c.syncedAt = c.now()
}

func (c *Controller) connectedPlayer() (address.PublicKey, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected {
		return address.PublicKey{}, ErrNotConnected
	}
	return c.player, nil
}

// Play submits move for the connected player. On confirmation the pipeline
// calls back Sync exactly once.
func (c *Controller) Play(ctx context.Context, move state.Move) (*submit.Receipt, error) {
	player, err := c.connectedPlayer()
	if err != nil {
		return nil, err
	}
	return c.pipeline.Submit(ctx, player, move)
}

// InFlight reports whether a move submission is running.
func (c *Controller) InFlight() bool { return c.pipeline.InFlight() }

func (c *Controller) NextPage() View {
	c.mu.Lock()
	c.pager.Next()
	c.mu.Unlock()
	return c.View()
}

func (c *Controller) PrevPage() View {
	c.mu.Lock()
	c.pager.Prev()
	c.mu.Unlock()
	return c.View()
}

// GotoPage moves to page n, clamped to the valid range.
func (c *Controller) GotoPage(n int) View {
	c.mu.Lock()
	c.pager.Goto(n)
	c.mu.Unlock()
	return c.View()
}

func (c *Controller) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v := View{
		Connected: c.connected,
		Player:    c.player,
		Address:   c.derived.Address,
		State: state.PlayerState{
			Score:   c.st.Score,
			History: append([]state.RoundRecord{}, c.st.History...),
		},
		SyncedAt: c.syncedAt,
		Page:     c.pager.Page(),
		Pages:    c.pager.Pages(),
		PageSize: c.pager.PageSize(),
		Items:    append([]history.Entry{}, c.pager.Items()...),
		HasPrev:  c.pager.HasPrev(),
		HasNext:  c.pager.HasNext(),
		Summary:  c.summary,
	}
	if c.ranking != nil {
		v.Ranking = append([]directory.Entry{}, c.ranking...)
	}
	if c.rankingErr != nil {
		v.RankingError = c.rankingErr.Error()
	}
	return v
}
