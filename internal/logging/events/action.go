package events

import "github.com/PawelWisn/Fleet-Flow/internal/logging"

type ActionTracer struct{}

type CommandTracer struct{}

var (
	Action  = ActionTracer{}
	Command = CommandTracer{}
)

func (ActionTracer) Success(info string) {
	logging.Trace("action.success", map[string]interface{}{"info": info})
}

func (ActionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"error": err.Error()})
}

func (ActionTracer) Download(kind, path string, size int) {
	logging.Trace("action.download", map[string]interface{}{"kind": kind, "path": path, "bytes": size})
}

func commandTrace(event, id, label string, extra map[string]interface{}) {
	payload := map[string]interface{}{"id": id, "label": label}
	for k, v := range extra {
		payload[k] = v
	}
	logging.Trace(event, payload)
}

func (CommandTracer) Queue(id, label string) { commandTrace("command.queue", id, label, nil) }

// Skip records a request that has no handler.
func (CommandTracer) Skip(id, label string) { commandTrace("command.skip", id, label, nil) }

func (CommandTracer) NoOp(id, label string) { commandTrace("command.noop", id, label, nil) }

func (CommandTracer) Result(id, label, msgType string) {
	commandTrace("command.result", id, label, map[string]interface{}{"msg": msgType})
}

func (CommandTracer) Panic(id string, recovered interface{}) {
	logging.Trace("command.panic", map[string]interface{}{"id": id, "panic": recovered})
}
