package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Get fetches a single record.
func Get[T any](ctx context.Context, c *Client, resource string, id int) (T, error) {
	var out T
	err := c.doJSON(ctx, http.MethodGet, resourcePath(resource, strconv.Itoa(id)), nil, nil, &out)
	return out, err
}

// GetRaw fetches a single record as a generic JSON object, used to prefill
// edit forms.
func (c *Client) GetRaw(ctx context.Context, resource string, id int) (map[string]any, error) {
	out := map[string]any{}
	err := c.doJSON(ctx, http.MethodGet, resourcePath(resource, strconv.Itoa(id)), nil, nil, &out)
	return out, err
}

// Create posts body as JSON and returns the decoded record.
func (c *Client) Create(ctx context.Context, resource string, body any) (map[string]any, error) {
	out := map[string]any{}
	err := c.doJSON(ctx, http.MethodPost, resourcePath(resource), nil, body, &out)
	return out, err
}

// Update puts body as JSON onto the record.
func (c *Client) Update(ctx context.Context, resource string, id int, body any) (map[string]any, error) {
	out := map[string]any{}
	err := c.doJSON(ctx, http.MethodPut, resourcePath(resource, strconv.Itoa(id)), nil, body, &out)
	return out, err
}

// Delete removes a record. The backend answers 204.
func (c *Client) Delete(ctx context.Context, resource string, id int) error {
	return c.doJSON(ctx, http.MethodDelete, resourcePath(resource, strconv.Itoa(id)), nil, nil, nil)
}

// FilePart is a file attached to a multipart create.
type FilePart struct {
	Field string
	Path  string
}

// CreateMultipart posts fields and an optional file as multipart/form-data.
func (c *Client) CreateMultipart(ctx context.Context, resource string, fields map[string]string, file *FilePart) (map[string]any, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if file != nil && strings.TrimSpace(file.Path) != "" {
		if err := attachFile(w, file); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}
	req, err := c.NewRequest(ctx, http.MethodPost, resourcePath(resource), nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	out := map[string]any{}
	if err := decodeBody(resp, &out); err != nil {
		return nil, &Error{Kind: KindServer, Status: resp.StatusCode, Method: req.Method, Path: req.URL.Path, Message: "malformed response", Err: err}
	}
	return out, nil
}

func attachFile(w *multipart.Writer, file *FilePart) error {
	f, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", file.Path, err)
	}
	defer f.Close()
	field := file.Field
	if field == "" {
		field = "file"
	}
	part, err := w.CreateFormFile(field, filepath.Base(file.Path))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy %s: %w", file.Path, err)
	}
	return nil
}
