package events

import (
	"time"

	"github.com/PawelWisn/Fleet-Flow/internal/logging"
)

type HTTPTracer struct{}

var HTTP = HTTPTracer{}

// Request records one round trip against the fleet API. status is zero when
// the request never produced a response.
func (HTTPTracer) Request(method, url string, status int, dur time.Duration, requestID string, err error) {
	if !logging.TraceEnabled() {
		return
	}
	payload := map[string]interface{}{
		"method":     method,
		"url":        url,
		"status":     status,
		"duration":   dur.String(),
		"request_id": requestID,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("http.request", payload)
}
