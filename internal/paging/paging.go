// Package paging tracks the page position of a listing against the page
// envelopes returned by the backend.
package paging

import (
	"fmt"
	"strconv"
)

// DefaultSize is the page size used when none is configured.
const DefaultSize = 15

// Sizes are the page sizes offered to the user.
var Sizes = []int{10, 15, 25, 50, 100}

// Envelope is the page metadata the controller consumes.
type Envelope struct {
	Page  int
	Size  int
	Total int
	Pages int
	Count int
	// Requested is the page the query asked for. Zero means Page.
	Requested int
}

// Controller holds the committed page position. Totals come only from the
// most recently applied envelope.
type Controller struct {
	page      int
	requested int
	size      int
	total     int
	pages     int
	count     int
	loaded    bool
}

// New returns a controller on page 1 with the given size.
func New(size int) *Controller {
	if size < 1 {
		size = DefaultSize
	}
	return &Controller{page: 1, size: size, pages: 1}
}

func (c *Controller) Page() int { return c.page }

func (c *Controller) Size() int { return c.size }

// Loaded reports whether an envelope has been applied since the last reset.
func (c *Controller) Loaded() bool { return c.loaded }

// TotalPages is the page count of the last envelope, at least 1.
func (c *Controller) TotalPages() int {
	if c.pages < 1 {
		return 1
	}
	return c.pages
}

// TotalItems is the match count of the last envelope.
func (c *Controller) TotalItems() int { return c.total }

// Count is the number of items on the current page.
func (c *Controller) Count() int { return c.count }

// Target clamps n into [1, TotalPages]. The committed page only moves when
// the resulting envelope is applied.
func (c *Controller) Target(n int) int {
	if n > c.TotalPages() {
		n = c.TotalPages()
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Next returns the page after the current one, clamped.
func (c *Controller) Next() int { return c.Target(c.page + 1) }

// Prev returns the page before the current one, clamped.
func (c *Controller) Prev() int { return c.Target(c.page - 1) }

// HasNext reports whether a later page exists.
func (c *Controller) HasNext() bool { return c.page < c.TotalPages() }

// HasPrev reports whether an earlier page exists.
func (c *Controller) HasPrev() bool { return c.page > 1 }

// SetPageSize switches the size and moves back to the first page.
func (c *Controller) SetPageSize(size int) {
	if size < 1 {
		size = DefaultSize
	}
	c.size = size
	c.page = 1
}

// Reset moves back to page 1, keeping size and totals.
func (c *Controller) Reset() {
	c.page = 1
}

// Apply commits a successfully loaded envelope. The page is kept within
// [1, TotalPages] even when the envelope reports a page past the end.
func (c *Controller) Apply(env Envelope) {
	if env.Size > 0 {
		c.size = env.Size
	}
	c.total = env.Total
	c.pages = env.Pages
	if c.pages < 1 {
		c.pages = 1
	}
	c.requested = env.Requested
	if c.requested < 1 {
		c.requested = env.Page
	}
	c.page = c.Target(env.Page)
	c.count = env.Count
	c.loaded = true
}

// NeedsStepBack reports whether the requested page came back empty while not
// being the first page, which happens after deleting the last row of a page.
func (c *Controller) NeedsStepBack() bool {
	return c.loaded && c.count == 0 && c.requested > 1
}

// StepBack returns the page before the requested one, clamped.
func (c *Controller) StepBack() int {
	return c.Target(c.requested - 1)
}

// Range describes the rows of the current page, e.g. "Showing 16 to 30 of 47".
func (c *Controller) Range() string {
	if !c.loaded || c.total == 0 || c.count == 0 {
		return fmt.Sprintf("Showing 0 of %d", c.total)
	}
	from := (c.page-1)*c.size + 1
	to := from + c.count - 1
	if to > c.total {
		to = c.total
	}
	return fmt.Sprintf("Showing %d to %d of %d", from, to, c.total)
}

// Summary is the compact "page x/y" indicator.
func (c *Controller) Summary() string {
	return fmt.Sprintf("page %d/%d", c.page, c.TotalPages())
}

// Gap marks elided page numbers in a Window.
const Gap = -1

// Window lists page numbers around current, always including the first and
// last page, with Gap where numbers are skipped.
func Window(current, total, delta int) []int {
	if total < 1 {
		total = 1
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}
	var out []int
	last := 0
	for p := 1; p <= total; p++ {
		if p != 1 && p != total && (p < current-delta || p > current+delta) {
			continue
		}
		if last != 0 && p-last > 1 {
			out = append(out, Gap)
		}
		out = append(out, p)
		last = p
	}
	return out
}

// FormatWindow renders a window such as "1 … 4 [5] 6 … 9".
func FormatWindow(pages []int, current int) string {
	var out string
	for i, p := range pages {
		if i > 0 {
			out += " "
		}
		switch {
		case p == Gap:
			out += "…"
		case p == current:
			out += "[" + strconv.Itoa(p) + "]"
		default:
			out += strconv.Itoa(p)
		}
	}
	return out
}

// NextSize cycles through Sizes starting after current.
func NextSize(current int) int {
	for i, s := range Sizes {
		if s == current {
			return Sizes[(i+1)%len(Sizes)]
		}
	}
	return DefaultSize
}
