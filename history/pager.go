package history

import (
	"github.com/ElysonGreber/JKPSol/app/params"
	"github.com/ElysonGreber/JKPSol/state"
)

// Pager holds one display-ordered history and a page cursor. It is not safe
// for concurrent use; the session controller guards it.
type Pager struct {
	entries []Entry
	size    int
	page    int
}

func NewPager(h []state.RoundRecord, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = params.PageSize
	}
	return &Pager{entries: DisplayOrder(h), size: pageSize, page: 1}
}

func (p *Pager) Page() int     { return p.page }
func (p *Pager) Pages() int    { return PageCount(len(p.entries), p.size) }
func (p *Pager) PageSize() int { return p.size }
func (p *Pager) Len() int      { return len(p.entries) }

func (p *Pager) Items() []Entry {
	return Paginate(p.entries, p.page, p.size)
}

func (p *Pager) HasPrev() bool { return p.page > 1 }
func (p *Pager) HasNext() bool { return p.page*p.size < len(p.entries) }

func (p *Pager) Next() bool {
	if !p.HasNext() {
		return false
	}
	p.page++
	return true
}

func (p *Pager) Prev() bool {
	if !p.HasPrev() {
		return false
	}
	p.page--
	return true
}

// Goto moves to page n clamped to [1, Pages()] and returns the new page.
func (p *Pager) Goto(n int) int {
	if n < 1 {
		n = 1
	}
	if last := p.Pages(); n > last {
		n = last
	}
	p.page = n
	return n
}
