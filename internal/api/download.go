package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
)

// Payload is an opaque binary response.
type Payload struct {
	ContentType string
	Data        []byte
}

// Download fetches the binary behind relPath.
func (c *Client) Download(ctx context.Context, relPath string) (Payload, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, relPath, nil, nil)
	if err != nil {
		return Payload{}, err
	}
	req.Header.Set("Accept", "*/*")
	resp, err := c.Do(req)
	if err != nil {
		return Payload{}, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Payload{}, &Error{Kind: KindTransport, Method: req.Method, Path: req.URL.Path, Err: err}
	}
	return Payload{ContentType: resp.Header.Get("Content-Type"), Data: data}, nil
}

// DocumentFile downloads a stored document.
func (c *Client) DocumentFile(ctx context.Context, id int) (Payload, error) {
	return c.Download(ctx, resourcePath("documents", strconv.Itoa(id), "download"))
}

// FuelReport downloads the generated fuel report of a vehicle.
func (c *Client) FuelReport(ctx context.Context, vehicleID int) (Payload, error) {
	return c.Download(ctx, resourcePath("vehicles", strconv.Itoa(vehicleID), "reports", "fuel"))
}

// Save writes the payload to dir/name, creating dir when needed, and returns
// the full path written.
func (p Payload) Save(dir, name string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	target := filepath.Join(dir, SafeFilename(name))
	if err := os.WriteFile(target, p.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	return target, nil
}

// SafeFilename replaces path separators and control characters so the name
// cannot escape the download directory.
func SafeFilename(name string) string {
	name = strings.TrimSpace(name)
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	cleaned = strings.Trim(cleaned, ". ")
	if cleaned == "" {
		return "download"
	}
	return cleaned
}

func decodeBody(resp *http.Response, out any) error {
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
