package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"cosmossdk.io/depinject"
	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"github.com/ElysonGreber/JKPSol/chain"
	"github.com/ElysonGreber/JKPSol/config"
	"github.com/ElysonGreber/JKPSol/directory"
	"github.com/ElysonGreber/JKPSol/metrics"
	"github.com/ElysonGreber/JKPSol/signer"
	fakes "github.com/ElysonGreber/JKPSol/testutil"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	home := t.TempDir()
	cfg := config.Default(home)
	cfg.Directory.Backend = directory.BackendMemDB

	kp, err := signer.GenerateKeypair()
	require.NoError(t, err)
	require.NoError(t, kp.Save(cfg.Keypair))
	return cfg
}

func TestNewDefaultModules(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, log.NewNopLogger(), metrics.NewNop(), Terminal{})
	require.NoError(t, err)
	defer a.Close()

	require.IsType(t, &chain.RPCClient{}, a.Client)
	require.IsType(t, &signer.Keypair{}, a.Signer)
	require.IsType(t, &directory.KVStore{}, a.Directory)
	require.NotNil(t, a.Controller)
	require.Equal(t, cfg.ProgramID, a.Deriver.ProgramID.String())

	kp, err := signer.LoadKeypair(cfg.Keypair)
	require.NoError(t, err)
	player, err := a.Signer.Connect(context.Background())
	require.NoError(t, err)
	require.Equal(t, kp.PublicKey(), player)
}

func TestNewDefaultModulesWithPrompt(t *testing.T) {
	cfg := testConfig(t)
	var out strings.Builder
	a, err := New(cfg, log.NewNopLogger(), metrics.NewNop(), Terminal{In: strings.NewReader("y\n"), Out: &out})
	require.NoError(t, err)
	defer a.Close()
	require.IsType(t, &signer.Confirming{}, a.Signer)

	kf, err := ProvideKeypair(cfg)
	require.NoError(t, err)
	player, err := a.Signer.Connect(context.Background())
	require.NoError(t, err)
	require.Equal(t, kf.Keypair.PublicKey(), player)
}

func TestNewMissingKeypair(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.Directory.Backend = directory.BackendMemDB
	_, err := New(cfg, log.NewNopLogger(), metrics.NewNop(), Terminal{})
	require.Error(t, err)
}

func TestProvideSignerPrompt(t *testing.T) {
	cfg := testConfig(t)
	kp, err := signer.LoadKeypair(cfg.Keypair)
	require.NoError(t, err)

	kf := KeyFile{Keypair: kp}

	var out strings.Builder
	term := Terminal{In: strings.NewReader("y\n"), Out: &out}
	require.IsType(t, &signer.Confirming{}, ProvideSigner(cfg, kf, term))

	cfg.ConfirmSign = false
	require.Same(t, kp, ProvideSigner(cfg, kf, term))

	cfg.ConfirmSign = true
	require.Same(t, kp, ProvideSigner(cfg, kf, Terminal{}))
}

func TestNewWithCustomModules(t *testing.T) {
	cfg := testConfig(t)
	ch := fakes.NewChain()
	ch.Program = fakes.RockProgram
	s := fakes.NewSigner(t)

	a, err := New(cfg, log.NewNopLogger(), metrics.NewNop(), Terminal{},
		depinject.Supply(ch, s),
		depinject.Provide(ProvideDeriver, ProvideDirectory, ProvideController),
	)
	require.NoError(t, err)
	defer a.Close()
	require.Same(t, ch, a.Client)
	require.Same(t, s, a.Signer)

	v, err := a.Controller.Connect(context.Background())
	require.NoError(t, err)
	require.True(t, v.Connected)
	require.Equal(t, s.PublicKey(), v.Player)
	require.Equal(t, uint64(0), v.State.Score)
}

func TestProvideDirectoryGoLevelDB(t *testing.T) {
	cfg := config.Default(t.TempDir())
	dir, err := ProvideDirectory(cfg, log.NewNopLogger(), metrics.NewNop())
	require.NoError(t, err)
	require.NoError(t, dir.Close())
	require.DirExists(t, filepath.Join(cfg.Directory.Dir))
}
