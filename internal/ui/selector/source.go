package selector

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
)

// Option is one choice offered by a selector.
type Option struct {
	Value string
	Label string
}

// Result is one page of options.
type Result struct {
	Options []Option
	HasMore bool
}

// Source supplies options page by page for a search term.
type Source interface {
	Fetch(ctx context.Context, term string, page int) (Result, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, term string, page int) (Result, error)

func (f SourceFunc) Fetch(ctx context.Context, term string, page int) (Result, error) {
	return f(ctx, term, page)
}

// Labeler is implemented by sources that can label a related record embedded
// in another record, e.g. the company object next to a company_id.
type Labeler interface {
	Label(value string, related any) (string, bool)
}

type remote[T fleet.Entity] struct {
	client   *api.Client
	resource string
	size     int
	filters  map[string]string
}

// Remote pages through a backend collection, using each record's id as the
// option value and its display label as the option text.
func Remote[T fleet.Entity](c *api.Client, resource string, size int, filters map[string]string) Source {
	return remote[T]{client: c, resource: resource, size: size, filters: filters}
}

func (r remote[T]) Fetch(ctx context.Context, term string, page int) (Result, error) {
	res, err := api.Query[T](ctx, r.client, r.resource, api.Params{
		Page:    page,
		Size:    r.size,
		Search:  term,
		Filters: r.filters,
	})
	if err != nil {
		return Result{}, err
	}
	opts := make([]Option, 0, len(res.Items))
	for _, item := range res.Items {
		opts = append(opts, Option{Value: strconv.Itoa(item.EntityID()), Label: item.DisplayLabel()})
	}
	return Result{Options: opts, HasMore: res.HasMore()}, nil
}

// Label decodes related as T and returns its display label when its id is
// value.
func (r remote[T]) Label(value string, related any) (string, bool) {
	raw, err := json.Marshal(related)
	if err != nil {
		return "", false
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return "", false
	}
	if strconv.Itoa(item.EntityID()) != value {
		return "", false
	}
	return item.DisplayLabel(), true
}

// Static serves a fixed option list in a single page, filtered by substring.
type Static []Option

// Strings builds a static source whose values double as labels.
func Strings[S ~string](values ...S) Static {
	out := make(Static, len(values))
	for i, v := range values {
		out[i] = Option{Value: string(v), Label: string(v)}
	}
	return out
}

// Where keeps the options accepted by keep.
func (s Static) Where(keep func(Option) bool) Static {
	out := make(Static, 0, len(s))
	for _, opt := range s {
		if keep(opt) {
			out = append(out, opt)
		}
	}
	return out
}

func (s Static) Fetch(_ context.Context, term string, _ int) (Result, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	opts := make([]Option, 0, len(s))
	for _, opt := range s {
		if term == "" || strings.Contains(strings.ToLower(opt.Label), term) {
			opts = append(opts, opt)
		}
	}
	return Result{Options: opts}, nil
}
