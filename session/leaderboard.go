package session

import (
	"context"
	"fmt"

	"github.com/ElysonGreber/JKPSol/directory"
)

// Register re-syncs the player's score from the ledger, publishes it under
// nickname and returns the refreshed ranking. Directory failures never touch
// the game state.
func (c *Controller) Register(ctx context.Context, nickname string) ([]directory.Entry, error) {
	if c.dir == nil {
		return nil, ErrNoDirectory
	}
	player, err := c.connectedPlayer()
	if err != nil {
		return nil, err
	}
	nick, err := directory.NormalizeNickname(nickname)
	if err != nil {
		return nil, err
	}

	st, err := c.Sync(ctx, player)
	if err != nil {
		return nil, err
	}
	rec := directory.Record{Nickname: nick, Score: st.Score, UpdatedAt: c.now().UTC()}
	if err := c.dir.Upsert(ctx, player, rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectory, err)
	}
	c.logger.Info("registered", "player", player.String(), "nickname", nick, "score", st.Score)
	return c.Ranking(ctx)
}

// Ranking lists the leaderboard and caches it in the view.
func (c *Controller) Ranking(ctx context.Context) ([]directory.Entry, error) {
	if c.dir == nil {
		return nil, ErrNoDirectory
	}
	entries, err := c.dir.Ranking(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.rankingErr = err
		return nil, fmt.Errorf("%w: %w", ErrDirectory, err)
	}
	c.ranking, c.rankingErr = entries, nil
	return append([]directory.Entry{}, entries...), nil
}
