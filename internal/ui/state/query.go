package state

import (
	"strings"
	"unicode"
)

// Edit is a caret movement or deletion applied to a Query.
type Edit int

const (
	EditNone Edit = iota
	EditHome
	EditEnd
	EditLeft
	EditRight
	EditWordLeft
	EditWordRight
	EditBackspace
	EditDeleteWord
	EditClear
)

var editNames = [...]string{
	EditNone:       "none",
	EditHome:       "home",
	EditEnd:        "end",
	EditLeft:       "left",
	EditRight:      "right",
	EditWordLeft:   "word-left",
	EditWordRight:  "word-right",
	EditBackspace:  "backspace",
	EditDeleteWord: "delete-word",
	EditClear:      "clear",
}

func (e Edit) String() string {
	if e < 0 || int(e) >= len(editNames) {
		return "unknown"
	}
	return editNames[e]
}

// Mutates reports whether e changes the text rather than only the caret.
func (e Edit) Mutates() bool {
	return e >= EditBackspace
}

// Query is a single-line text buffer with a caret measured in runes.
type Query struct {
	text  []rune
	caret int
}

func (q Query) String() string { return string(q.text) }

// Caret returns the caret offset, always within [0, len].
func (q Query) Caret() int {
	return clamp(q.caret, 0, len(q.text))
}

// Blank reports whether the text is empty after trimming spaces.
func (q Query) Blank() bool {
	return strings.TrimSpace(string(q.text)) == ""
}

// Set replaces the text and moves the caret, clamped to the new text.
func (q *Query) Set(text string, caret int) {
	q.text = []rune(text)
	q.caret = clamp(caret, 0, len(q.text))
}

// Insert places text at the caret and moves the caret past it.
func (q *Query) Insert(text string) bool {
	add := []rune(text)
	if len(add) == 0 {
		return false
	}
	at := q.Caret()
	out := make([]rune, 0, len(q.text)+len(add))
	out = append(out, q.text[:at]...)
	out = append(out, add...)
	out = append(out, q.text[at:]...)
	q.text = out
	q.caret = at + len(add)
	return true
}

// Apply performs e and reports whether the text or caret changed.
func (q *Query) Apply(e Edit) bool {
	at := q.Caret()
	switch e {
	case EditHome:
		return q.moveTo(0)
	case EditEnd:
		return q.moveTo(len(q.text))
	case EditLeft:
		return q.moveTo(at - 1)
	case EditRight:
		return q.moveTo(at + 1)
	case EditWordLeft:
		return q.moveTo(wordStart(q.text, at))
	case EditWordRight:
		return q.moveTo(wordEnd(q.text, at))
	case EditBackspace:
		return q.cut(at-1, at)
	case EditDeleteWord:
		return q.cut(wordStart(q.text, at), at)
	case EditClear:
		if len(q.text) == 0 {
			return false
		}
		q.text = nil
		q.caret = 0
		return true
	}
	return false
}

func (q *Query) moveTo(pos int) bool {
	pos = clamp(pos, 0, len(q.text))
	if pos == q.Caret() {
		return false
	}
	q.caret = pos
	return true
}

// cut removes the runes in [from, to).
func (q *Query) cut(from, to int) bool {
	from = clamp(from, 0, len(q.text))
	to = clamp(to, from, len(q.text))
	if from == to {
		return false
	}
	q.text = append(q.text[:from:from], q.text[to:]...)
	q.caret = from
	return true
}

// wordStart skips spaces then a word backwards from pos.
func wordStart(text []rune, pos int) int {
	i := pos
	for i > 0 && unicode.IsSpace(text[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(text[i-1]) {
		i--
	}
	return i
}

// wordEnd skips a word then spaces forwards from pos.
func wordEnd(text []rune, pos int) int {
	i := pos
	for i < len(text) && !unicode.IsSpace(text[i]) {
		i++
	}
	for i < len(text) && unicode.IsSpace(text[i]) {
		i++
	}
	return i
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
