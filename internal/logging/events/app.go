package events

import (
	"fmt"

	"github.com/PawelWisn/Fleet-Flow/internal/logging"
)

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

// Panic is logged even without tracing; the fallback screen hides the details.
func (AppTracer) Panic(where string, recovered interface{}) {
	logging.Error(fmt.Errorf("recovered panic in %s: %v", where, recovered))
	logging.Trace("app.panic", map[string]interface{}{"where": where, "recovered": fmt.Sprint(recovered)})
}
