package history

import (
	"github.com/ElysonGreber/JKPSol/app/params"
	"github.com/ElysonGreber/JKPSol/state"
)

// Entry is a round in display order. Round is derived from the position in
// the current history, not stored on chain.
type Entry struct {
	Round int `json:"round"`
	state.RoundRecord
}

// DisplayOrder returns h most recent first, numbering rounds total-position.
func DisplayOrder(h []state.RoundRecord) []Entry {
	out := make([]Entry, len(h))
	for i := range h {
		out[i] = Entry{
			Round:       len(h) - i,
			RoundRecord: h[len(h)-1-i],
		}
	}
	return out
}

// Paginate returns entries[(page-1)*size : page*size], clipped to the slice.
// Pages are 1-based; a page outside the data yields an empty slice.
func Paginate(entries []Entry, page, pageSize int) []Entry {
	if pageSize <= 0 {
		pageSize = params.PageSize
	}
	if page < 1 {
		return []Entry{}
	}
	start := (page - 1) * pageSize
	if start >= len(entries) {
		return []Entry{}
	}
	end := start + pageSize
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end]
}

// PageCount is ceil(n/pageSize) with a floor of one page.
func PageCount(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = params.PageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}
