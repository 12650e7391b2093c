// Package sse implements the streaming transport: named, JSON-bodied frames
// written onto a single long-lived HTTP response, plus an incremental parser
// for the receiving side.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var ErrStreamingUnsupported = errors.New("response writer does not support streaming")

// Writer frames events onto an HTTP response. Every frame is flushed
// immediately so the receiver sees progress in real time.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	return &Writer{w: w, flusher: flusher}, nil
}

// Send writes one frame: `event: <name>\ndata: <json>\n\n`.
func (w *Writer) Send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event payload")
	}
	if _, err := fmt.Fprintf(w.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return errors.Wrap(err, "failed to write frame")
	}
	w.flusher.Flush()
	return nil
}
