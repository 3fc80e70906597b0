package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize matches the backend's default page size.
	DefaultPageSize = 15
	// MaxPageSize is the largest size the backend accepts.
	MaxPageSize = 100
)

// Page is the envelope every listing endpoint returns.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Pages int `json:"pages"`
}

// PageCount returns ceil(total/size), never less than one.
func PageCount(total, size int) int {
	if size < 1 {
		size = 1
	}
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// normalize repairs envelopes whose page metadata is missing or inconsistent
// with their totals.
func (p *Page[T]) normalize(requested Params) {
	if p.Items == nil {
		p.Items = []T{}
	}
	if p.Size < 1 {
		p.Size = requested.Size
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Total < len(p.Items) {
		p.Total = len(p.Items)
	}
	p.Pages = PageCount(p.Total, p.Size)
	if p.Page < 1 {
		p.Page = requested.Page
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > p.Pages {
		p.Page = p.Pages
	}
}

// HasMore reports whether a later page exists.
func (p Page[T]) HasMore() bool {
	return p.Page < p.Pages
}

// MapPage converts the items of a page while keeping its metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := Page[U]{Total: p.Total, Page: p.Page, Size: p.Size, Pages: p.Pages, Items: make([]U, len(p.Items))}
	for i, item := range p.Items {
		out.Items[i] = fn(item)
	}
	return out
}

// Params describes a page-bounded, optionally filtered collection query.
type Params struct {
	Page    int
	Size    int
	Search  string
	Filters map[string]string
}

// Normalized clamps page and size into the accepted ranges.
func (p Params) Normalized() Params {
	out := p
	if out.Page < 1 {
		out.Page = 1
	}
	if out.Size < 1 {
		out.Size = DefaultPageSize
	}
	if out.Size > MaxPageSize {
		out.Size = MaxPageSize
	}
	out.Search = strings.TrimSpace(out.Search)
	return out
}

// Values encodes the params as query string values. Filters are written in
// key order so identical params produce identical URLs.
func (p Params) Values() url.Values {
	n := p.Normalized()
	q := url.Values{}
	q.Set("page", strconv.Itoa(n.Page))
	q.Set("size", strconv.Itoa(n.Size))
	if n.Search != "" {
		q.Set("search", n.Search)
	}
	keys := make([]string, 0, len(n.Filters))
	for k := range n.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(n.Filters[k]); v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// Query fetches one page of resource. Responses that are a bare JSON array are
// returned as a single page.
func Query[T any](ctx context.Context, c *Client, resource string, params Params) (Page[T], error) {
	params = params.Normalized()
	req, err := c.NewRequest(ctx, http.MethodGet, resourcePath(resource), params.Values(), nil)
	if err != nil {
		return Page[T]{}, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return Page[T]{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page[T]{}, &Error{Kind: KindTransport, Method: req.Method, Path: req.URL.Path, Err: err}
	}
	page, err := decodePage[T](body, params)
	if err != nil {
		return Page[T]{}, &Error{Kind: KindServer, Status: resp.StatusCode, Method: req.Method, Path: req.URL.Path, Message: "malformed page", Err: err}
	}
	return page, nil
}

func decodePage[T any](body []byte, params Params) (Page[T], error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Page[T]{}, err
		}
		size := len(items)
		if size < 1 {
			size = params.Size
		}
		page := Page[T]{Items: items, Total: len(items), Page: 1, Size: size}
		page.normalize(params)
		return page, nil
	}
	var page Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return Page[T]{}, err
	}
	if page.Size > 0 && len(page.Items) > page.Size {
		return Page[T]{}, fmt.Errorf("page holds %d items but size is %d", len(page.Items), page.Size)
	}
	page.normalize(params)
	return page, nil
}
