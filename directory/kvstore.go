package directory

import (
	"context"
	"encoding/json"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"

	"github.com/ElysonGreber/JKPSol/address"
	"github.com/ElysonGreber/JKPSol/metrics"
)

var entryPrefix = []byte("entry/")

func entryKey(id address.PublicKey) []byte {
	return append(append([]byte{}, entryPrefix...), id[:]...)
}

// prefixEnd returns the exclusive upper bound of keys starting with p.
func prefixEnd(p []byte) []byte {
	end := append([]byte{}, p...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// KVStore keeps the directory in a cosmos-db key/value database, one JSON
// record per identity.
type KVStore struct {
	db      dbm.DB
	logger  log.Logger
	metrics *metrics.Metrics
}

var _ Directory = (*KVStore)(nil)

func NewKVStore(db dbm.DB, logger log.Logger, m *metrics.Metrics) *KVStore {
	if db == nil {
		panic("directory: db is nil")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &KVStore{db: db, logger: logger.With("module", "directory", "backend", "kv"), metrics: m}
}

// OpenKVStore opens (or creates) the named database under dir with the given
// cosmos-db backend, e.g. "goleveldb" or "memdb".
func OpenKVStore(backend, dir string, logger log.Logger, m *metrics.Metrics) (*KVStore, error) {
	db, err := dbm.NewDB("leaderboard", dbm.BackendType(backend), dir)
	if err != nil {
		return nil, ErrDirectory.Wrapf("open %s db in %s: %v", backend, dir, err)
	}
	return NewKVStore(db, logger, m), nil
}

func (s *KVStore) Upsert(_ context.Context, identity address.PublicKey, rec Record) (err error) {
	defer func() { s.metrics.ObserveDirectory("upsert", err) }()

	nick, err := NormalizeNickname(rec.Nickname)
	if err != nil {
		return err
	}
	rec.Nickname = nick
	bz, err := json.Marshal(rec)
	if err != nil {
		return ErrDirectory.Wrapf("encode record: %v", err)
	}
	if err := s.db.SetSync(entryKey(identity), bz); err != nil {
		return ErrDirectory.Wrapf("write %s: %v", identity, err)
	}
	s.logger.Debug("upserted", "identity", identity.String(), "score", rec.Score)
	return nil
}

func (s *KVStore) Ranking(_ context.Context) (out []Entry, err error) {
	defer func() { s.metrics.ObserveDirectory("ranking", err) }()

	it, err := s.db.Iterator(entryPrefix, prefixEnd(entryPrefix))
	if err != nil {
		return nil, ErrDirectory.Wrapf("iterate: %v", err)
	}
	defer it.Close()

	out = []Entry{}
	for ; it.Valid(); it.Next() {
		id, err := address.FromBytes(it.Key()[len(entryPrefix):])
		if err != nil {
			s.logger.Debug("skipping malformed key", "key", it.Key(), "err", err)
			continue
		}
		var rec Record
		if err := json.Unmarshal(it.Value(), &rec); err != nil {
			s.logger.Debug("skipping malformed record", "identity", id.String(), "err", err)
			continue
		}
		out = append(out, Entry{Identity: id, Record: rec})
	}
	if err := it.Error(); err != nil {
		return nil, ErrDirectory.Wrapf("iterate: %v", err)
	}
	sortEntries(out)
	return out, nil
}

func (s *KVStore) Close() error {
	return s.db.Close()
}
