package state

import (
	"encoding/binary"

	"github.com/ElysonGreber/JKPSol/app/params"
)

const historyOffset = params.ScoreSize + 1

// DecodeScore reads the score from two little-endian u32 halves (low, high).
// Buffers shorter than the score field decode to 0.
func DecodeScore(b []byte) uint64 {
	if len(b) < params.ScoreSize {
		return 0
	}
	low := binary.LittleEndian.Uint32(b[0:4])
	high := binary.LittleEndian.Uint32(b[4:8])
	return uint64(high)<<32 | uint64(low)
}

// DecodeHistory reads the stored round records, oldest first. Undersized
// buffers and a zero length byte decode to an empty history; a length byte
// above capacity is clamped. Unmapped field bytes become the unknown
// sentinels rather than failing the decode.
func DecodeHistory(b []byte) []RoundRecord {
	if len(b) < params.DataSize {
		return []RoundRecord{}
	}
	n := int(b[params.ScoreSize])
	if n == 0 {
		return []RoundRecord{}
	}
	if n > params.HistoryCapacity {
		n = params.HistoryCapacity
	}
	out := make([]RoundRecord, 0, n)
	for i := 0; i < n; i++ {
		base := historyOffset + i*params.RecordSize
		out = append(out, RoundRecord{
			PlayerMove:  MoveFromByte(b[base]),
			ProgramMove: MoveFromByte(b[base+1]),
			Result:      OutcomeFromByte(b[base+2]),
		})
	}
	return out
}

func Decode(b []byte) PlayerState {
	return PlayerState{
		Score:   DecodeScore(b),
		History: DecodeHistory(b),
	}
}

// Encode writes s in the account layout. History beyond capacity keeps the
// most recent records, matching the program's ring buffer.
func (s PlayerState) Encode() []byte {
	out := make([]byte, params.DataSize)
	binary.LittleEndian.PutUint32(out[0:4], uint32(s.Score))
	binary.LittleEndian.PutUint32(out[4:8], uint32(s.Score>>32))

	h := s.History
	if len(h) > params.HistoryCapacity {
		h = h[len(h)-params.HistoryCapacity:]
	}
	out[params.ScoreSize] = byte(len(h))
	for i, r := range h {
		base := historyOffset + i*params.RecordSize
		out[base] = byte(r.PlayerMove)
		out[base+1] = byte(r.ProgramMove)
		out[base+2] = byte(r.Result)
	}
	return out
}
