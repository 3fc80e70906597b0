package state

import (
	"strings"

	"github.com/PawelWisn/Fleet-Flow/internal/menu"
)

// Level is one screen of the navigation stack: its items, the filter typed
// into it, the cursor and the first visible row.
type Level struct {
	ID    string
	Title string
	// Items are the entries shown; Full holds every entry before filtering.
	Items []menu.Item
	Full  []menu.Item
	Query Query
	// Cursor indexes Items. LastCursor remembers the cursor from before a
	// filter or a child level, -1 when unset.
	Cursor         int
	LastCursor     int
	ViewportOffset int
	Node           *menu.Node
	Data           interface{}
	// Remote levels are filtered by their owner; the query is only recorded
	// and Items always mirror Full.
	Remote bool
}

// NewLevel builds a level with the cursor on the first item.
func NewLevel(id, title string, items []menu.Item, node *menu.Node) *Level {
	l := &Level{ID: id, Title: title, LastCursor: -1, Node: node}
	l.UpdateItems(items)
	return l
}

// Filter returns the typed filter text.
func (l *Level) Filter() string { return l.Query.String() }

// IndexOf returns the index of the item with id. A namespaced id such as
// "account:sign-out" also matches an item whose id is its last segment.
func (l *Level) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	short := id
	if i := strings.LastIndex(id, ":"); i >= 0 {
		short = id[i+1:]
	}
	fallback := -1
	for i, item := range l.Items {
		if item.ID == id {
			return i
		}
		if fallback < 0 && item.ID == short {
			fallback = i
		}
	}
	return fallback
}

// UpdateItems replaces the entries, re-applying the current filter. The
// viewport stays put unless it would start past the new end.
func (l *Level) UpdateItems(items []menu.Item) {
	l.Full = append([]menu.Item(nil), items...)
	offset := l.ViewportOffset
	l.refilter()
	if offset < 0 || offset >= len(l.Items) {
		offset = 0
	}
	l.ViewportOffset = offset
}

// SetQuery replaces the filter text and caret.
func (l *Level) SetQuery(text string, caret int) {
	before := l.Query
	l.Query.Set(text, caret)
	l.queryChanged(before)
}

// InsertQuery types text at the caret.
func (l *Level) InsertQuery(text string) bool {
	before := l.Query
	if !l.Query.Insert(text) {
		return false
	}
	l.queryChanged(before)
	return true
}

// EditQuery applies e to the filter. Caret movements leave the items alone.
func (l *Level) EditQuery(e Edit) bool {
	before := l.Query
	if !l.Query.Apply(e) {
		return false
	}
	if e.Mutates() {
		l.queryChanged(before)
	}
	return true
}

// queryChanged refilters after an edit. Starting a filter remembers the
// cursor; clearing it puts the cursor back.
func (l *Level) queryChanged(before Query) {
	wasBlank, isBlank := before.Blank(), l.Query.Blank()
	switch {
	case wasBlank && !isBlank:
		l.LastCursor = l.Cursor
	case !wasBlank && isBlank:
		defer l.restoreCursor()
	}
	best := l.refilter()
	if l.Remote || isBlank {
		if !isBlank {
			l.Cursor = 0
		}
		return
	}
	if best >= 0 {
		l.Cursor = best
	}
}

func (l *Level) restoreCursor() {
	if l.Remote {
		l.LastCursor = -1
		return
	}
	if l.LastCursor >= 0 && l.LastCursor < len(l.Items) {
		l.Cursor = l.LastCursor
	} else if len(l.Items) > 0 {
		l.Cursor = len(l.Items) - 1
	}
	l.LastCursor = -1
}

// refilter recomputes Items and returns the best match index.
func (l *Level) refilter() int {
	best := 0
	if l.Remote {
		l.Items = append([]menu.Item(nil), l.Full...)
	} else {
		l.Items, best = Match(l.Full, l.Filter())
	}
	if len(l.Items) == 0 {
		l.Cursor = 0
		l.ViewportOffset = 0
		return -1
	}
	l.Cursor = clamp(l.Cursor, 0, len(l.Items)-1)
	if l.ViewportOffset >= len(l.Items) {
		l.ViewportOffset = 0
	}
	return best
}
