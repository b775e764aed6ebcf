package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/ElysonGreber/JKPSol/app/params"
	"github.com/ElysonGreber/JKPSol/chain"
	"github.com/ElysonGreber/JKPSol/directory"
)

func newViper(t *testing.T, home string, args ...string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v, home)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, BindFlags(fs, v))
	require.NoError(t, fs.Parse(append([]string{"--home", home}, args...)))
	return v
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := Load(newViper(t, home))
	require.NoError(t, err)

	require.Equal(t, home, cfg.Home)
	require.Equal(t, params.DefaultRPCURL, cfg.RPCURL)
	require.Equal(t, params.DefaultProgramID, cfg.ProgramID)
	require.Equal(t, filepath.Join(home, KeypairFileName), cfg.Keypair)
	require.Equal(t, filepath.Join(home, DataDirName), cfg.Directory.Dir)
	require.Equal(t, directory.BackendGoLevelDB, cfg.Directory.Backend)
	require.Equal(t, params.PageSize, cfg.PageSize)
	require.Equal(t, 90*time.Second, cfg.ConfirmTimeout)
	require.True(t, cfg.ConfirmSign)

	cm, err := cfg.CommitmentLevel()
	require.NoError(t, err)
	require.Equal(t, chain.CommitmentConfirmed, cm)

	ws, err := cfg.WebsocketEndpoint()
	require.NoError(t, err)
	require.Equal(t, "wss://api.devnet.solana.com", ws)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JKPSOL_RPC_URL", "http://127.0.0.1:8899")
	t.Setenv("JKPSOL_DIRECTORY_BACKEND", "memdb")
	t.Setenv("JKPSOL_CONFIRM_TIMEOUT", "15s")
	t.Setenv("JKPSOL_PAGE_SIZE", "5")

	cfg, err := Load(newViper(t, t.TempDir()))
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8899", cfg.RPCURL)
	require.Equal(t, directory.BackendMemDB, cfg.Directory.Backend)
	require.Equal(t, 15*time.Second, cfg.ConfirmTimeout)
	require.Equal(t, 5, cfg.PageSize)

	ws, err := cfg.WebsocketEndpoint()
	require.NoError(t, err)
	require.Equal(t, "ws://127.0.0.1:8900", ws)
}

func TestLoad_ConfigFileThenFlags(t *testing.T) {
	home := t.TempDir()
	toml := strings.Join([]string{
		`rpc_url = "http://file.example:8899"`,
		`commitment = "finalized"`,
		`confirm_sign = false`,
		`[directory]`,
		`backend = "redis"`,
		`redis_url = "redis://localhost:6379/0"`,
		`[log]`,
		`level = "debug"`,
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(home, ConfigFileName), []byte(toml), 0o600))

	cfg, err := Load(newViper(t, home, "--rpc-url", "http://flag.example"))
	require.NoError(t, err)
	require.Equal(t, "http://flag.example", cfg.RPCURL)
	require.Equal(t, "finalized", cfg.Commitment)
	require.False(t, cfg.ConfirmSign)
	require.Equal(t, directory.BackendRedis, cfg.Directory.Backend)
	require.Equal(t, "redis://localhost:6379/0", cfg.Directory.RedisURL)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	good := Default(t.TempDir())
	require.NoError(t, good.Validate())

	bad := good
	bad.ProgramID = "not-base58-0OIl"
	require.Error(t, bad.Validate())

	bad = good
	bad.Commitment = "eventually"
	require.ErrorIs(t, bad.Validate(), chain.ErrInvalidCommitment)

	bad = good
	bad.Directory.Backend = "redis"
	require.Error(t, bad.Validate())

	bad = good
	bad.Directory.Backend = "postgres"
	require.ErrorIs(t, bad.Validate(), directory.ErrUnknownBackend)

	bad = good
	bad.PageSize = 0
	require.Error(t, bad.Validate())
}

func TestLoad_MissingExplicitConfig(t *testing.T) {
	home := t.TempDir()
	_, err := Load(newViper(t, home, "--config", filepath.Join(home, "nope.toml")))
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	logger.With("module", "test").Info("hello", "n", 3)
	logger.Debug("hidden")

	out := buf.String()
	require.Contains(t, out, `"message":"hello"`)
	require.Contains(t, out, `"module":"test"`)
	require.NotContains(t, out, "hidden")

	_, err = NewLogger(LogConfig{Level: "loud"}, &buf)
	require.Error(t, err)
	_, err = NewLogger(LogConfig{Level: "info", Format: "xml"}, &buf)
	require.Error(t, err)
}
