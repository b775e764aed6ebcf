package submit

import "fmt"

// Stage is a step of one submission. Every submission passes Built, then
// stops at the first failure or ends in Confirmed or Rejected.
type Stage uint8

const (
	StageBuilt Stage = iota + 1
	StageSigned
	StageSubmitted
	StageConfirmed
	StageRejected
)

func (s Stage) String() string {
	switch s {
	case StageBuilt:
		return "built"
	case StageSigned:
		return "signed"
	case StageSubmitted:
		return "submitted"
	case StageConfirmed:
		return "confirmed"
	case StageRejected:
		return "rejected"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s Stage) Terminal() bool { return s == StageConfirmed || s == StageRejected }
