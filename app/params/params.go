package params

const (
	// AppName is the human-readable name used in CLI output.
	AppName = "JKPSol"

	// BinaryName is the name of the CLI binary produced by this module.
	BinaryName = "jkpsol"

	// EnvPrefix is the environment variable prefix used by the config system.
	// Example: JKPSOL_RPC_URL, JKPSOL_KEYPAIR, etc.
	EnvPrefix = "JKPSOL"

	// DefaultProgramID is the deployed game program on devnet.
	DefaultProgramID = "BEGGHHUjM1u3okqQreDkqM11y7hhk1amfBrWDQTN4XhJ"

	// DefaultRPCURL is the public devnet JSON-RPC endpoint.
	DefaultRPCURL = "https://api.devnet.solana.com"

	// DefaultCluster names the cluster in explorer links.
	DefaultCluster = "devnet"

	// ScoreSeed is the namespace seed of the per-player state PDA.
	ScoreSeed = "score"

	// LamportsPerSOL converts fee amounts for display.
	LamportsPerSOL = 1_000_000_000

	// ExplorerURL is the transaction explorer base.
	ExplorerURL = "https://explorer.solana.com/tx/"
)

// Account layout of the on-chain player record.
const (
	ScoreSize       = 8
	HistoryCapacity = 10
	RecordSize      = 3

	// DataSize is the minimum account size that carries a full history:
	// score || len || HistoryCapacity records.
	DataSize = ScoreSize + 1 + HistoryCapacity*RecordSize

	// PageSize is the number of rounds shown per history page.
	PageSize = 10
)
