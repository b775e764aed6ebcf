package directory

import (
	"context"
	"strings"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/alicebob/miniredis/v2"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ElysonGreber/JKPSol/address"
	"github.com/ElysonGreber/JKPSol/metrics"
)

func key(b byte) address.PublicKey {
	var pk address.PublicKey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

func newKV(t *testing.T) Directory {
	t.Helper()
	s := NewKVStore(dbm.NewMemDB(), log.NewNopLogger(), metrics.NewNop())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newRedis(t *testing.T) Directory {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), log.NewNopLogger(), nil)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func backends() map[string]func(*testing.T) Directory {
	return map[string]func(*testing.T) Directory{
		"kv":    newKV,
		"redis": newRedis,
	}
}

func TestDirectory_RankingOrder(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			d := open(t)
			ctx := context.Background()

			require.NoError(t, d.Upsert(ctx, key(3), Record{Nickname: "carol", Score: 10, UpdatedAt: now}))
			require.NoError(t, d.Upsert(ctx, key(1), Record{Nickname: "alice", Score: 25, UpdatedAt: now}))
			require.NoError(t, d.Upsert(ctx, key(2), Record{Nickname: "bob", Score: 10, UpdatedAt: now}))

			got, err := d.Ranking(ctx)
			require.NoError(t, err)
			require.Len(t, got, 3)

			require.Equal(t, key(1), got[0].Identity)
			require.Equal(t, "alice", got[0].Nickname)
			require.Equal(t, uint64(25), got[0].Score)
			require.True(t, now.Equal(got[0].UpdatedAt))

			// Tie on 10: identity ascending by text form.
			lo, hi := key(2), key(3)
			if lo.String() > hi.String() {
				lo, hi = hi, lo
			}
			require.Equal(t, lo, got[1].Identity)
			require.Equal(t, hi, got[2].Identity)
		})
	}
}

func TestDirectory_UpsertOverwrites(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			d := open(t)
			ctx := context.Background()

			require.NoError(t, d.Upsert(ctx, key(1), Record{Nickname: "old", Score: 1}))
			require.NoError(t, d.Upsert(ctx, key(1), Record{Nickname: "  new  ", Score: 7}))

			got, err := d.Ranking(ctx)
			require.NoError(t, err)
			require.Len(t, got, 1)
			require.Equal(t, "new", got[0].Nickname)
			require.Equal(t, uint64(7), got[0].Score)
		})
	}
}

func TestDirectory_ExactLargeScore(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			d := open(t)
			ctx := context.Background()

			const big = uint64(1)<<63 + 1
			require.NoError(t, d.Upsert(ctx, key(4), Record{Nickname: "whale", Score: big}))
			got, err := d.Ranking(ctx)
			require.NoError(t, err)
			require.Equal(t, big, got[0].Score)
		})
	}
}

func TestDirectory_InvalidNickname(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			d := open(t)
			ctx := context.Background()

			require.ErrorIs(t, d.Upsert(ctx, key(1), Record{Nickname: "   "}), ErrInvalidNickname)
			require.ErrorIs(t, d.Upsert(ctx, key(1), Record{Nickname: strings.Repeat("é", 33)}), ErrInvalidNickname)

			got, err := d.Ranking(ctx)
			require.NoError(t, err)
			require.Empty(t, got)
		})
	}
}

func TestNormalizeNickname(t *testing.T) {
	s, err := NormalizeNickname(strings.Repeat("ç", 32))
	require.NoError(t, err)
	require.Equal(t, 32, len([]rune(s)))

	_, err = NormalizeNickname("\xff\xfe")
	require.ErrorIs(t, err, ErrInvalidNickname)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	d, err := Open(ctx, BackendGoLevelDB, t.TempDir(), "", log.NewNopLogger(), nil)
	require.NoError(t, err)
	require.NoError(t, d.Upsert(ctx, key(1), Record{Nickname: "disk", Score: 3}))
	require.NoError(t, d.Close())

	mr := miniredis.RunT(t)
	d, err = Open(ctx, BackendRedis, "", "redis://"+mr.Addr()+"/0", log.NewNopLogger(), nil)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	_, err = Open(ctx, "etcd", "", "", log.NewNopLogger(), nil)
	require.ErrorIs(t, err, ErrUnknownBackend)

	_, err = Open(ctx, BackendRedis, "", "redis://127.0.0.1:1/0", log.NewNopLogger(), nil)
	require.ErrorIs(t, err, ErrDirectory)
}

func TestKVStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenKVStore(BackendGoLevelDB, dir, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, key(9), Record{Nickname: "kept", Score: 5}))
	require.NoError(t, s.Close())

	s, err = OpenKVStore(BackendGoLevelDB, dir, nil, nil)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Ranking(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "kept", got[0].Nickname)
}

func TestPrefixEnd(t *testing.T) {
	require.Equal(t, []byte("entry0"), prefixEnd([]byte("entry/")))
	require.Equal(t, []byte{0x02}, prefixEnd([]byte{0x01, 0xff}))
	require.Nil(t, prefixEnd([]byte{0xff}))
}
