package events

import "github.com/PawelWisn/Fleet-Flow/internal/logging"

type QueryTracer struct{}

type SelectorTracer struct{}

type PagingTracer struct{}

var (
	Query    = QueryTracer{}
	Selector = SelectorTracer{}
	Paging   = PagingTracer{}
)

func (QueryTracer) Issue(screen, resource string, seq uint64, page, size int, search string) {
	logging.Trace("query.issue", map[string]interface{}{
		"screen":   screen,
		"resource": resource,
		"seq":      seq,
		"page":     page,
		"size":     size,
		"search":   search,
	})
}

func (QueryTracer) Apply(screen string, seq uint64, items, total int) {
	logging.Trace("query.apply", map[string]interface{}{"screen": screen, "seq": seq, "items": items, "total": total})
}

func (QueryTracer) Stale(screen string, seq, latest uint64) {
	logging.Trace("query.stale", map[string]interface{}{"screen": screen, "seq": seq, "latest": latest})
}

func (QueryTracer) Failed(screen string, seq uint64, err error) {
	payload := map[string]interface{}{"screen": screen, "seq": seq}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("query.failed", payload)
}

func (SelectorTracer) Open(field string) {
	logging.Trace("selector.open", map[string]interface{}{"field": field})
}

func (SelectorTracer) Close(field string) {
	logging.Trace("selector.close", map[string]interface{}{"field": field})
}

func (SelectorTracer) Fetch(field, term string, page int, seq uint64) {
	logging.Trace("selector.fetch", map[string]interface{}{"field": field, "term": term, "page": page, "seq": seq})
}

func (SelectorTracer) Select(field, value, label string) {
	logging.Trace("selector.select", map[string]interface{}{"field": field, "value": value, "label": label})
}

func (PagingTracer) Page(screen string, page, pages int) {
	logging.Trace("paging.page", map[string]interface{}{"screen": screen, "page": page, "pages": pages})
}

func (PagingTracer) StepBack(screen string, from, to int) {
	logging.Trace("paging.step-back", map[string]interface{}{"screen": screen, "from": from, "to": to})
}

func (PagingTracer) PageSize(screen string, size int) {
	logging.Trace("paging.size", map[string]interface{}{"screen": screen, "size": size})
}
