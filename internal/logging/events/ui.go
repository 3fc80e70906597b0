package events

import "github.com/PawelWisn/Fleet-Flow/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

var (
	UI     = UITracer{}
	Filter = FilterTracer{}
)

// Enter records activation of item on level, with the filter typed at the time.
func (UITracer) Enter(level, item, label, filter string) {
	logging.Trace("ui.enter", map[string]interface{}{
		"level":  level,
		"item":   item,
		"label":  label,
		"filter": filter,
	})
}

func (UITracer) Cursor(level string, cursor int) {
	logging.Trace("ui.cursor", map[string]interface{}{"level": level, "cursor": cursor})
}

func (UITracer) Screen(name string) {
	logging.Trace("ui.screen", map[string]interface{}{"screen": name})
}

func (FilterTracer) Type(level, filter string) {
	logging.Trace("filter.type", map[string]interface{}{"level": level, "filter": filter})
}

// Edit records a caret movement or deletion on the filter line.
func (FilterTracer) Edit(level, edit, filter string, caret int) {
	logging.Trace("filter.edit", map[string]interface{}{
		"level":  level,
		"edit":   edit,
		"filter": filter,
		"caret":  caret,
	})
}
