package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"cosmossdk.io/depinject"
	"cosmossdk.io/log"

	"github.com/ElysonGreber/JKPSol/address"
	"github.com/ElysonGreber/JKPSol/chain"
	"github.com/ElysonGreber/JKPSol/codec"
	"github.com/ElysonGreber/JKPSol/config"
	"github.com/ElysonGreber/JKPSol/directory"
	"github.com/ElysonGreber/JKPSol/metrics"
	"github.com/ElysonGreber/JKPSol/session"
	"github.com/ElysonGreber/JKPSol/signer"
	"github.com/ElysonGreber/JKPSol/state"
	"github.com/ElysonGreber/JKPSol/submit"
)

// dialTimeout bounds opening the leaderboard directory.
const dialTimeout = 10 * time.Second

// Terminal is the interactive surface the wallet prompt and stage progress
// are written to.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	// Progress is called on every submission stage change. Optional.
	Progress func(submit.Stage, *submit.Receipt)
}

// App holds the wired client: ledger, wallet, leaderboard and the session
// controller built on top of them.
type App struct {
	Config config.Config
	Logger log.Logger

	Deriver    address.Deriver
	Client     chain.Client
	Signer     signer.Signer
	Directory  directory.Directory
	Controller *session.Controller
}

// Modules is the default provider set. Callers may pass their own set to New
// to swap the ledger or the wallet.
func Modules() depinject.Config {
	return depinject.Provide(
		ProvideDeriver,
		ProvideChainClient,
		ProvideKeypair,
		ProvideSigner,
		ProvideDirectory,
		ProvideController,
	)
}

// New wires an App from cfg. With no modules the default providers are used.
func New(cfg config.Config, logger log.Logger, m *metrics.Metrics, term Terminal, modules ...depinject.Config) (*App, error) {
	if len(modules) == 0 {
		modules = []depinject.Config{Modules()}
	}
	a := &App{Config: cfg, Logger: logger}

	if err := depinject.Inject(
		depinject.Configs(
			depinject.Supply(
				cfg,
				logger,
				m,
				term,
			),
			depinject.Configs(modules...),
		),
		&a.Deriver,
		&a.Client,
		&a.Signer,
		&a.Directory,
		&a.Controller,
	); err != nil {
		return nil, fmt.Errorf("wire app: %w", err)
	}
	return a, nil
}

// Close releases the leaderboard directory.
func (a *App) Close() error {
	if a.Directory == nil {
		return nil
	}
	return a.Directory.Close()
}

func ProvideDeriver(cfg config.Config) (address.Deriver, error) {
	programID, err := cfg.ProgramPublicKey()
	if err != nil {
		return address.Deriver{}, err
	}
	return address.NewDeriver(programID), nil
}

func ProvideChainClient(cfg config.Config, logger log.Logger, m *metrics.Metrics) (chain.Client, error) {
	commitment, err := cfg.CommitmentLevel()
	if err != nil {
		return nil, err
	}
	ws, err := cfg.WebsocketEndpoint()
	if err != nil {
		return nil, err
	}
	return chain.NewRPCClient(cfg.RPCURL,
		chain.WithWebsocketURL(ws),
		chain.WithPollInterval(cfg.PollInterval),
		chain.WithConfirmTimeout(cfg.ConfirmTimeout),
		chain.WithCommitment(commitment),
		chain.WithLogger(logger),
		chain.WithMetrics(m),
	), nil
}

// KeyFile is the keypair loaded from the configured file. It is a holder
// rather than a signer.Signer so depinject keeps it apart from the signer
// built on top of it.
type KeyFile struct {
	Keypair *signer.Keypair
}

func ProvideKeypair(cfg config.Config) (KeyFile, error) {
	kp, err := signer.LoadKeypair(cfg.Keypair)
	if err != nil {
		return KeyFile{}, err
	}
	return KeyFile{Keypair: kp}, nil
}

// ProvideSigner wraps the keypair in an approval prompt when confirm_sign is
// set.
func ProvideSigner(cfg config.Config, kf KeyFile, term Terminal) signer.Signer {
	if !cfg.ConfirmSign || term.In == nil || term.Out == nil {
		return kf.Keypair
	}
	return &signer.Confirming{
		Inner:    kf.Keypair,
		In:       term.In,
		Out:      term.Out,
		Describe: describeTransaction(cfg.ProgramID),
	}
}

func describeTransaction(programID string) func(*codec.Transaction) string {
	return func(tx *codec.Transaction) string {
		move := state.MoveUnknown
		for _, ix := range tx.Message.Instructions {
			if len(ix.Data) == 1 && tx.Message.AccountKeys[ix.ProgramIDIndex].String() == programID {
				move = state.MoveFromByte(ix.Data[0])
			}
		}
		return fmt.Sprintf("Sign move %s on program %s (fee payer %s)", move, programID, tx.Signers()[0])
	}
}

func ProvideDirectory(cfg config.Config, logger log.Logger, m *metrics.Metrics) (directory.Directory, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	return directory.Open(ctx, cfg.Directory.Backend, cfg.Directory.Dir, cfg.Directory.RedisURL, logger, m)
}

func ProvideController(
	cfg config.Config,
	deriver address.Deriver,
	client chain.Client,
	s signer.Signer,
	dir directory.Directory,
	term Terminal,
	logger log.Logger,
	m *metrics.Metrics,
) (*session.Controller, error) {
	commitment, err := cfg.CommitmentLevel()
	if err != nil {
		return nil, err
	}
	opts := []session.Option{
		session.WithDirectory(dir),
		session.WithPageSize(cfg.PageSize),
		session.WithCommitment(commitment),
		session.WithLogger(logger),
		session.WithMetrics(m),
	}
	if term.Progress != nil {
		opts = append(opts, session.WithStageObserver(term.Progress))
	}
	return session.New(deriver, client, s, opts...), nil
}
