package state

// Step moves the cursor by delta, wrapping around either end.
func (l *Level) Step(delta int) bool {
	n := len(l.Items)
	if n == 0 {
		return false
	}
	old := l.Cursor
	l.Cursor = ((clamp(l.Cursor, 0, n-1)+delta)%n + n) % n
	return l.Cursor != old
}

// JumpTo puts the cursor on idx, clamped to the items.
func (l *Level) JumpTo(idx int) bool {
	if len(l.Items) == 0 {
		l.Cursor = 0
		return false
	}
	old := l.Cursor
	l.Cursor = clamp(idx, 0, len(l.Items)-1)
	return l.Cursor != old
}

// Home moves the cursor to the first item.
func (l *Level) Home() bool { return l.JumpTo(0) }

// End moves the cursor to the last item.
func (l *Level) End() bool { return l.JumpTo(len(l.Items) - 1) }

// PageDown moves the cursor one screenful of rows down without wrapping.
func (l *Level) PageDown(rows int) bool {
	return l.JumpTo(clamp(l.Cursor, 0, len(l.Items)) + l.pageRows(rows))
}

// PageUp moves the cursor one screenful of rows up without wrapping.
func (l *Level) PageUp(rows int) bool {
	return l.JumpTo(clamp(l.Cursor, 0, len(l.Items)) - l.pageRows(rows))
}

func (l *Level) pageRows(rows int) int {
	if rows <= 0 || rows > len(l.Items) {
		rows = len(l.Items)
	}
	return max(rows, 1)
}

// Follow scrolls the viewport so the cursor is one of the rows visible rows.
// rows <= 0 shows everything.
func (l *Level) Follow(rows int) {
	n := len(l.Items)
	if n == 0 {
		l.Cursor = 0
		l.ViewportOffset = 0
		return
	}
	l.Cursor = clamp(l.Cursor, 0, n-1)
	if rows <= 0 {
		l.ViewportOffset = 0
		return
	}
	top := clamp(l.ViewportOffset, 0, max(n-rows, 0))
	switch {
	case l.Cursor < top:
		top = l.Cursor
	case l.Cursor >= top+rows:
		top = l.Cursor - rows + 1
	}
	l.ViewportOffset = top
}

// Window returns the bounds [start, end) of the visible items for the given
// number of rows, after scrolling to the cursor.
func (l *Level) Window(rows int) (start, end int) {
	l.Follow(rows)
	n := len(l.Items)
	if rows <= 0 || rows >= n {
		return 0, n
	}
	return l.ViewportOffset, l.ViewportOffset + rows
}
