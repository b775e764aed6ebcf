package directory

import (
	"context"
	"strconv"
	"time"

	"cosmossdk.io/log"
	"github.com/redis/go-redis/v9"

	"github.com/ElysonGreber/JKPSol/address"
	"github.com/ElysonGreber/JKPSol/metrics"
)

const (
	rankingKey   = "jkpsol:ranking"
	playerPrefix = "jkpsol:player:"
)

func playerKey(id address.PublicKey) string { return playerPrefix + id.String() }

// RedisStore keeps the ranking in a sorted set and each player's record in a
// hash. The sorted-set score is a float64 and only orders entries; the exact
// score is read back from the hash.
type RedisStore struct {
	rdb     *redis.Client
	logger  log.Logger
	metrics *metrics.Metrics
}

var _ Directory = (*RedisStore)(nil)

func NewRedisStore(rdb *redis.Client, logger log.Logger, m *metrics.Metrics) *RedisStore {
	if rdb == nil {
		panic("directory: redis client is nil")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &RedisStore{rdb: rdb, logger: logger.With("module", "directory", "backend", "redis"), metrics: m}
}

// DialRedis connects to a redis:// or rediss:// url and pings it.
func DialRedis(ctx context.Context, rawURL string, logger log.Logger, m *metrics.Metrics) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, ErrDirectory.Wrapf("parse redis url: %v", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, ErrDirectory.Wrapf("redis ping: %v", err)
	}
	return NewRedisStore(rdb, logger, m), nil
}

func (s *RedisStore) Upsert(ctx context.Context, identity address.PublicKey, rec Record) (err error) {
	defer func() { s.metrics.ObserveDirectory("upsert", err) }()

	nick, err := NormalizeNickname(rec.Nickname)
	if err != nil {
		return err
	}
	id := identity.String()
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, playerKey(identity),
			"nickname", nick,
			"score", strconv.FormatUint(rec.Score, 10),
			"updated_at", rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
		)
		p.ZAdd(ctx, rankingKey, redis.Z{Score: float64(rec.Score), Member: id})
		return nil
	})
	if err != nil {
		return ErrDirectory.Wrapf("write %s: %v", id, err)
	}
	s.logger.Debug("upserted", "identity", id, "score", rec.Score)
	return nil
}

func (s *RedisStore) Ranking(ctx context.Context) (out []Entry, err error) {
	defer func() { s.metrics.ObserveDirectory("ranking", err) }()

	members, err := s.rdb.ZRevRangeWithScores(ctx, rankingKey, 0, -1).Result()
	if err != nil {
		return nil, ErrDirectory.Wrapf("ranking: %v", err)
	}

	out = make([]Entry, 0, len(members))
	for _, z := range members {
		member, _ := z.Member.(string)
		id, err := address.FromBase58(member)
		if err != nil {
			s.logger.Debug("skipping malformed member", "member", member, "err", err)
			continue
		}
		fields, err := s.rdb.HGetAll(ctx, playerKey(id)).Result()
		if err != nil {
			return nil, ErrDirectory.Wrapf("read %s: %v", member, err)
		}
		e := Entry{Identity: id, Record: Record{Nickname: fields["nickname"]}}
		if e.Score, err = strconv.ParseUint(fields["score"], 10, 64); err != nil {
			e.Score = uint64(z.Score)
		}
		if t, err := time.Parse(time.RFC3339Nano, fields["updated_at"]); err == nil {
			e.UpdatedAt = t
		}
		out = append(out, e)
	}
	sortEntries(out)
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
