package sse

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
)

const readChunkSize = 4096

var blockSeparator = []byte("\n\n")

// Parser frames blank-line separated event blocks out of arbitrarily split
// chunks. A trailing partial block stays buffered until a later chunk
// completes it.
type Parser struct {
	buf []byte
}

func NewParser() *Parser {
	return &Parser{}
}

// Feed appends chunk to the buffer and returns the events of every block that
// is now complete.
func (p *Parser) Feed(chunk []byte) []Event {
	p.buf = append(p.buf, chunk...)
	p.buf = normalizeNewlines(p.buf)

	var events []Event
	for {
		idx := bytes.Index(p.buf, blockSeparator)
		if idx < 0 {
			break
		}
		block := string(p.buf[:idx])
		p.buf = p.buf[idx+len(blockSeparator):]

		if ev := parseBlock(block); ev != nil {
			events = append(events, ev)
		}
	}

	// Compact so a long stream does not pin the consumed prefix.
	if len(p.buf) == 0 {
		p.buf = nil
	} else {
		p.buf = append([]byte(nil), p.buf...)
	}
	return events
}

// Pending reports how many bytes of an incomplete block are buffered.
func (p *Parser) Pending() int {
	return len(p.buf)
}

// normalizeNewlines rewrites CRLF to LF. A lone trailing CR is left for the
// next chunk to complete.
func normalizeNewlines(b []byte) []byte {
	if bytes.IndexByte(b, '\r') < 0 {
		return b
	}
	return bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
}

func parseBlock(block string) Event {
	name := "message"
	var data strings.Builder

	for _, line := range strings.Split(block, "\n") {
		switch {
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimSpace(line[len("data:"):]))
		}
	}

	return decode(name, data.String())
}

// Read consumes r until EOF or ctx is cancelled, calling fn for every event in
// arrival order. It returns nil on EOF, ctx.Err() once cancelled, and the read
// error otherwise. fn is never called after ctx is done.
func Read(ctx context.Context, r io.Reader, fn func(Event)) error {
	p := NewParser()
	chunk := make([]byte, readChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := r.Read(chunk)
		if n > 0 {
			for _, ev := range p.Feed(chunk[:n]) {
				if err := ctx.Err(); err != nil {
					return err
				}
				fn(ev)
			}
		}

		if readErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}
