package history

import (
	sdkmath "cosmossdk.io/math"

	"github.com/ElysonGreber/JKPSol/state"
)

// Summary is per-choice frequency and wins over a full history. Rounds whose
// player move is unknown are left out of every counter.
type Summary struct {
	Rounds       int       `json:"rounds"`
	ChoiceCounts [3]uint64 `json:"choiceCounts"` // indexed by state.Move
	WinCounts    [3]uint64 `json:"winCounts"`

	Won  uint64 `json:"won"`
	Draw uint64 `json:"draw"`
	Lost uint64 `json:"lost"`
}

// Summarize recomputes the summary from scratch.
func Summarize(h []state.RoundRecord) Summary {
	s := Summary{Rounds: len(h)}
	for _, r := range h {
		if !r.PlayerMove.Valid() {
			continue
		}
		s.ChoiceCounts[r.PlayerMove]++
		switch r.Result {
		case state.OutcomeWon:
			s.WinCounts[r.PlayerMove]++
			s.Won++
		case state.OutcomeDraw:
			s.Draw++
		case state.OutcomeLost:
			s.Lost++
		}
	}
	return s
}

func (s Summary) Choices(m state.Move) uint64 {
	if !m.Valid() {
		return 0
	}
	return s.ChoiceCounts[m]
}

func (s Summary) Wins(m state.Move) uint64 {
	if !m.Valid() {
		return 0
	}
	return s.WinCounts[m]
}

// WinRate is wins/choices for m, zero when m was never played.
func (s Summary) WinRate(m state.Move) sdkmath.LegacyDec {
	n := s.Choices(m)
	if n == 0 {
		return sdkmath.LegacyZeroDec()
	}
	return sdkmath.LegacyNewDec(int64(s.Wins(m))).Quo(sdkmath.LegacyNewDec(int64(n)))
}

// WinPercent is WinRate rounded to a whole percentage.
func (s Summary) WinPercent(m state.Move) int64 {
	return s.WinRate(m).MulInt64(100).RoundInt64()
}
