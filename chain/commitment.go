package chain

import "strings"

// Commitment is how final a ledger observation is. Levels are ordered
// processed < confirmed < finalized.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

func ParseCommitment(s string) (Commitment, error) {
	c := Commitment(strings.ToLower(strings.TrimSpace(s)))
	if c.rank() == 0 {
		return "", ErrInvalidCommitment.Wrapf("%q", s)
	}
	return c, nil
}

func (c Commitment) rank() int {
	switch c {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	default:
		return 0
	}
}

// Satisfies reports whether an observation at level c meets want.
func (c Commitment) Satisfies(want Commitment) bool {
	return c.rank() > 0 && c.rank() >= want.rank()
}

func (c Commitment) String() string { return string(c) }
