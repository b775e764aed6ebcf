package directory

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ElysonGreber/JKPSol/address"
)

const MaxNicknameLength = 32

// Directory is the leaderboard capability. It holds the last score each
// player pushed along with their chosen nickname.
type Directory interface {
	Upsert(ctx context.Context, identity address.PublicKey, rec Record) error
	// Ranking lists every entry, score descending, ties by identity ascending.
	Ranking(ctx context.Context) ([]Entry, error)
	Close() error
}

// Record is what a player writes about themselves.
type Record struct {
	Nickname  string    `json:"nickname"`
	Score     uint64    `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Entry struct {
	Identity address.PublicKey `json:"identity"`
	Record
}

// NormalizeNickname trims s and enforces 1..MaxNicknameLength runes.
func NormalizeNickname(s string) (string, error) {
	s = strings.TrimSpace(s)
	switch n := utf8.RuneCountInString(s); {
	case !utf8.ValidString(s):
		return "", ErrInvalidNickname.Wrap("not valid utf-8")
	case n == 0:
		return "", ErrInvalidNickname.Wrap("empty")
	case n > MaxNicknameLength:
		return "", ErrInvalidNickname.Wrapf("%d runes, max %d", n, MaxNicknameLength)
	}
	return s, nil
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Identity.String() < entries[j].Identity.String()
	})
}
