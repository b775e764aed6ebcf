package directory

import (
	"context"

	"cosmossdk.io/log"

	"github.com/ElysonGreber/JKPSol/metrics"
)

const (
	BackendMemDB     = "memdb"
	BackendGoLevelDB = "goleveldb"
	BackendRedis     = "redis"
)

// Open returns the directory for backend. dir is used by the key/value
// backends, redisURL by the redis one.
func Open(ctx context.Context, backend, dir, redisURL string, logger log.Logger, m *metrics.Metrics) (Directory, error) {
	switch backend {
	case BackendRedis:
		return DialRedis(ctx, redisURL, logger, m)
	case BackendMemDB, BackendGoLevelDB:
		return OpenKVStore(backend, dir, logger, m)
	default:
		return nil, ErrUnknownBackend.Wrap(backend)
	}
}
