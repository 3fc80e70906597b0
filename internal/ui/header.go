package ui

import "strings"

// menuHeader is the breadcrumb of the open levels, e.g. "dashboard→soon".
func (m *Model) menuHeader() string {
	return strings.Join(m.headerSegments(), menuHeaderSeparator)
}

// headerSegments names every level above the root. The root only shows on its
// own, or first when the session started on an overridden root.
func (m *Model) headerSegments() []string {
	if len(m.stack) == 0 {
		return nil
	}
	root := strings.TrimSpace(m.rootTitle)
	if root == "" {
		root = defaultRootTitle
	}
	var segments []string
	if m.rootMenuID != "" {
		segments = append(segments, root)
	}
	for _, l := range m.stack[1:] {
		if s := levelSegment(l); s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return []string{root}
	}
	return segments
}

// levelSegment is the lowercased title of a list level, or the last part of
// a menu level's ID.
func levelSegment(l *level) string {
	if l == nil {
		return ""
	}
	name := strings.TrimSpace(l.Title)
	if l.Data == nil || name == "" {
		name = strings.TrimSpace(l.ID)
		if name == "" {
			name = l.Title
		}
		if i := strings.LastIndex(name, ":"); i >= 0 {
			name = name[i+1:]
		}
		name = headerSegmentCleaner.Replace(name)
	}
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
