package sse

import (
	"bytes"
	"strings"
)

// Frame is one parsed unit of the wire format.
type Frame struct {
	Event string
	Data  []byte
}

// Parser reassembles frames from an arbitrarily chunked byte stream. A chunk
// may contain a partial frame, exactly one frame, or several frames; partial
// data is buffered until the frame boundary (a blank line) arrives.
type Parser struct {
	buf bytes.Buffer
}

// Feed appends a chunk and returns every frame completed by it, in order.
func (p *Parser) Feed(chunk []byte) []Frame {
	p.buf.Write(chunk)

	var frames []Frame
	for {
		raw := p.buf.Bytes()
		idx := bytes.Index(raw, []byte("\n\n"))
		if idx < 0 {
			break
		}
		block := string(raw[:idx])
		p.buf.Next(idx + 2)

		if frame, ok := parseBlock(block); ok {
			frames = append(frames, frame)
		}
	}
	return frames
}

// Pending reports whether an incomplete frame is still buffered.
func (p *Parser) Pending() bool {
	return len(bytes.TrimSpace(p.buf.Bytes())) > 0
}

func parseBlock(block string) (Frame, bool) {
	var frame Frame
	var dataLines []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case strings.HasPrefix(line, "event:"):
			frame.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if frame.Event == "" && len(dataLines) == 0 {
		return Frame{}, false
	}
	frame.Data = []byte(strings.Join(dataLines, "\n"))
	return frame, true
}
