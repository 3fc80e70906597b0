package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies a failed request so the UI can react without inspecting
// status codes.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Sentinels usable with errors.Is against any *Error.
var (
	ErrTransport    = &Error{Kind: KindTransport}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrServer       = &Error{Kind: KindServer}
)

// Error is returned for every failed backend call.
type Error struct {
	Kind      Kind
	Status    int
	Method    string
	Path      string
	Message   string
	Fields    map[string]string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Method != "" || e.Path != "" {
		fmt.Fprintf(&b, " %s %s", e.Method, e.Path)
	}
	if e.Status > 0 {
		fmt.Fprintf(&b, ": status=%d", e.Status)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Status == 0 && t.Path == ""
}

// KindOf extracts the kind from err, or 0 when err is not an API error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// FieldErrors returns the server-side validation messages keyed by field name.
func FieldErrors(err error) map[string]string {
	var apiErr *Error
	if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(apiErr.Fields))
	for k, v := range apiErr.Fields {
		out[k] = v
	}
	return out
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusConflict:
		return KindConflict
	default:
		return KindServer
	}
}

// detailEntry is one element of a FastAPI validation "detail" list.
type detailEntry struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// parseDetail understands {"detail": "text"} and {"detail": [{loc,msg,type}]}.
func parseDetail(body []byte) (string, map[string]string) {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return strings.TrimSpace(string(body)), nil
	}
	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text, nil
	}
	var entries []detailEntry
	if err := json.Unmarshal(envelope.Detail, &entries); err != nil {
		return strings.TrimSpace(string(envelope.Detail)), nil
	}
	fields := make(map[string]string)
	messages := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Msg == "" {
			continue
		}
		if field := fieldFromLoc(entry.Loc); field != "" {
			if _, seen := fields[field]; !seen {
				fields[field] = entry.Msg
			}
			continue
		}
		messages = append(messages, entry.Msg)
	}
	if len(messages) == 0 && len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			messages = append(messages, fmt.Sprintf("%s: %s", k, fields[k]))
		}
	}
	if len(fields) == 0 {
		fields = nil
	}
	return strings.Join(messages, "; "), fields
}

// fieldFromLoc returns the last string component of a loc path such as
// ["body", "date_to"], skipping the leading location marker.
func fieldFromLoc(loc []any) string {
	for i := len(loc) - 1; i >= 0; i-- {
		s, ok := loc[i].(string)
		if !ok {
			continue
		}
		switch s {
		case "body", "query", "path", "header", "cookie":
			return ""
		}
		return s
	}
	return ""
}
