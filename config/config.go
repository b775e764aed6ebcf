package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ElysonGreber/JKPSol/address"
	"github.com/ElysonGreber/JKPSol/app/params"
	"github.com/ElysonGreber/JKPSol/chain"
	"github.com/ElysonGreber/JKPSol/directory"
)

const (
	ConfigFileName  = "config.toml"
	KeypairFileName = "id.json"
	DataDirName     = "data"
)

// Config keys, shared by viper, env vars (JKPSOL_ + upper-cased key with dots
// as underscores) and config.toml.
const (
	KeyHome             = "home"
	KeyConfig           = "config"
	KeyRPCURL           = "rpc_url"
	KeyWSURL            = "ws_url"
	KeyProgramID        = "program_id"
	KeyKeypair          = "keypair"
	KeyCluster          = "cluster"
	KeyCommitment       = "commitment"
	KeyPageSize         = "page_size"
	KeyPollInterval     = "poll_interval"
	KeyConfirmTimeout   = "confirm_timeout"
	KeyConfirmSign      = "confirm_sign"
	KeyMetricsAddr      = "metrics_addr"
	KeyDirectoryBackend = "directory.backend"
	KeyDirectoryDir     = "directory.dir"
	KeyRedisURL         = "directory.redis_url"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
)

type DirectoryConfig struct {
	Backend  string `mapstructure:"backend"`
	Dir      string `mapstructure:"dir"`
	RedisURL string `mapstructure:"redis_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Home           string          `mapstructure:"home"`
	RPCURL         string          `mapstructure:"rpc_url"`
	WSURL          string          `mapstructure:"ws_url"`
	ProgramID      string          `mapstructure:"program_id"`
	Keypair        string          `mapstructure:"keypair"`
	Cluster        string          `mapstructure:"cluster"`
	Commitment     string          `mapstructure:"commitment"`
	PageSize       int             `mapstructure:"page_size"`
	PollInterval   time.Duration   `mapstructure:"poll_interval"`
	ConfirmTimeout time.Duration   `mapstructure:"confirm_timeout"`
	ConfirmSign    bool            `mapstructure:"confirm_sign"`
	MetricsAddr    string          `mapstructure:"metrics_addr"`
	Directory      DirectoryConfig `mapstructure:"directory"`
	Log            LogConfig       `mapstructure:"log"`
}

// DefaultHome is ~/.jkpsol, or ./.jkpsol when the user home is unknown.
func DefaultHome() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "."+params.BinaryName)
}

func Default(home string) Config {
	return Config{
		Home:           home,
		RPCURL:         params.DefaultRPCURL,
		ProgramID:      params.DefaultProgramID,
		Keypair:        filepath.Join(home, KeypairFileName),
		Cluster:        params.DefaultCluster,
		Commitment:     string(chain.CommitmentConfirmed),
		PageSize:       params.PageSize,
		PollInterval:   chain.DefaultPollInterval,
		ConfirmTimeout: chain.DefaultConfirmTimeout,
		ConfirmSign:    true,
		Directory: DirectoryConfig{
			Backend: directory.BackendGoLevelDB,
			Dir:     filepath.Join(home, DataDirName),
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// SetDefaults registers every key on v so env vars and config files can
// override them.
func SetDefaults(v *viper.Viper, home string) {
	d := Default(home)
	v.SetDefault(KeyHome, d.Home)
	v.SetDefault(KeyConfig, "")
	v.SetDefault(KeyRPCURL, d.RPCURL)
	v.SetDefault(KeyWSURL, "")
	v.SetDefault(KeyProgramID, d.ProgramID)
	v.SetDefault(KeyKeypair, "")
	v.SetDefault(KeyCluster, d.Cluster)
	v.SetDefault(KeyCommitment, d.Commitment)
	v.SetDefault(KeyPageSize, d.PageSize)
	v.SetDefault(KeyPollInterval, d.PollInterval)
	v.SetDefault(KeyConfirmTimeout, d.ConfirmTimeout)
	v.SetDefault(KeyConfirmSign, d.ConfirmSign)
	v.SetDefault(KeyMetricsAddr, "")
	v.SetDefault(KeyDirectoryBackend, d.Directory.Backend)
	v.SetDefault(KeyDirectoryDir, "")
	v.SetDefault(KeyRedisURL, "")
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)
}

// BindFlags registers the persistent flags on fs and binds them to v.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	fs.String("home", DefaultHome(), "directory for config, keypair and leaderboard data")
	fs.String("config", "", "config file (default <home>/config.toml)")
	fs.String("rpc-url", params.DefaultRPCURL, "JSON-RPC endpoint")
	fs.String("ws-url", "", "pubsub websocket endpoint (derived from --rpc-url when empty)")
	fs.String("program-id", params.DefaultProgramID, "game program id")
	fs.String("keypair", "", "keypair file (default <home>/id.json)")
	fs.String("cluster", params.DefaultCluster, "cluster name used in explorer links")
	fs.String("commitment", string(chain.CommitmentConfirmed), "processed|confirmed|finalized")
	fs.String("log-level", "info", "trace|debug|info|warn|error")
	fs.String("log-format", "text", "text|json")
	fs.String("metrics-addr", "", "serve prometheus metrics on this address")
	fs.String("directory-backend", directory.BackendGoLevelDB, "memdb|goleveldb|redis")
	fs.String("redis-url", "", "redis url for the redis directory backend")

	for key, flag := range map[string]string{
		KeyHome:             "home",
		KeyConfig:           "config",
		KeyRPCURL:           "rpc-url",
		KeyWSURL:            "ws-url",
		KeyProgramID:        "program-id",
		KeyKeypair:          "keypair",
		KeyCluster:          "cluster",
		KeyCommitment:       "commitment",
		KeyLogLevel:         "log-level",
		KeyLogFormat:        "log-format",
		KeyMetricsAddr:      "metrics-addr",
		KeyDirectoryBackend: "directory-backend",
		KeyRedisURL:         "redis-url",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// Load resolves the configuration from v: defaults, then <home>/config.toml
// (or --config), then JKPSOL_* env vars, then flags.
func Load(v *viper.Viper) (Config, error) {
	v.SetEnvPrefix(params.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	home := v.GetString(KeyHome)
	if home == "" {
		home = DefaultHome()
	}
	file := v.GetString(KeyConfig)
	if file == "" {
		file = filepath.Join(home, ConfigFileName)
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			file = ""
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Home = home
	if cfg.Keypair == "" {
		cfg.Keypair = filepath.Join(home, KeypairFileName)
	}
	if cfg.Directory.Dir == "" {
		cfg.Directory.Dir = filepath.Join(home, DataDirName)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc_url is required")
	}
	if _, err := c.ProgramPublicKey(); err != nil {
		return err
	}
	if _, err := c.CommitmentLevel(); err != nil {
		return err
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	switch c.Directory.Backend {
	case directory.BackendMemDB, directory.BackendGoLevelDB:
	case directory.BackendRedis:
		if c.Directory.RedisURL == "" {
			return fmt.Errorf("directory.redis_url is required for the redis backend")
		}
	default:
		return directory.ErrUnknownBackend.Wrap(c.Directory.Backend)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

func (c Config) ProgramPublicKey() (address.PublicKey, error) {
	pk, err := address.FromBase58(c.ProgramID)
	if err != nil {
		return address.PublicKey{}, fmt.Errorf("program_id: %w", err)
	}
	return pk, nil
}

func (c Config) CommitmentLevel() (chain.Commitment, error) {
	return chain.ParseCommitment(c.Commitment)
}

// WebsocketEndpoint is ws_url, or the endpoint derived from rpc_url.
func (c Config) WebsocketEndpoint() (string, error) {
	if c.WSURL != "" {
		return c.WSURL, nil
	}
	return chain.WebsocketURL(c.RPCURL)
}

// NewLogger builds the process logger: zerolog console output by default,
// JSON lines when format is "json".
func NewLogger(cfg LogConfig, w io.Writer) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := []log.Option{log.LevelOption(lvl)}
	switch cfg.Format {
	case "json":
		opts = append(opts, log.OutputJSONOption())
	case "", "text":
		opts = append(opts, log.ColorOption(false))
	default:
		return nil, fmt.Errorf("log format %q (want text|json)", cfg.Format)
	}
	return log.NewLogger(w, opts...), nil
}
