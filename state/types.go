package state

import (
	"fmt"
	"strings"
)

// Move is a player or program choice. Bytes outside 0..2 decode to MoveUnknown.
type Move uint8

const (
	MoveRock Move = iota
	MovePaper
	MoveScissors

	MoveUnknown Move = 0xff
)

// Moves lists the valid choices in encoding order.
var Moves = [...]Move{MoveRock, MovePaper, MoveScissors}

func MoveFromByte(b byte) Move {
	if b > byte(MoveScissors) {
		return MoveUnknown
	}
	return Move(b)
}

func (m Move) Valid() bool { return m <= MoveScissors }

func (m Move) String() string {
	switch m {
	case MoveRock:
		return "Rock"
	case MovePaper:
		return "Paper"
	case MoveScissors:
		return "Scissors"
	default:
		return "?"
	}
}

func (m Move) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseMove accepts english and portuguese names or the wire digit.
func ParseMove(s string) (Move, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rock", "pedra", "0":
		return MoveRock, nil
	case "paper", "papel", "1":
		return MovePaper, nil
	case "scissors", "tesoura", "2":
		return MoveScissors, nil
	default:
		return MoveUnknown, fmt.Errorf("unknown move %q (want rock|paper|scissors)", s)
	}
}

// Outcome is the round result from the player's point of view.
type Outcome uint8

const (
	OutcomeLost Outcome = iota
	OutcomeDraw
	OutcomeWon

	OutcomeUnknown Outcome = 0xff
)

func OutcomeFromByte(b byte) Outcome {
	if b > byte(OutcomeWon) {
		return OutcomeUnknown
	}
	return Outcome(b)
}

func (o Outcome) Valid() bool { return o <= OutcomeWon }

func (o Outcome) String() string {
	switch o {
	case OutcomeLost:
		return "Lost"
	case OutcomeDraw:
		return "Draw"
	case OutcomeWon:
		return "Won"
	default:
		return "?"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

type RoundRecord struct {
	PlayerMove  Move    `json:"playerMove"`
	ProgramMove Move    `json:"programMove"`
	Result      Outcome `json:"result"`
}

// PlayerState is a read-only projection of the player's account bytes.
type PlayerState struct {
	Score   uint64        `json:"score"`
	History []RoundRecord `json:"history"` // oldest first
}

// ZeroState is what a player with no account (or an empty one) looks like.
func ZeroState() PlayerState {
	return PlayerState{Score: 0, History: []RoundRecord{}}
}
