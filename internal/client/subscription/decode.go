// Package subscription reads the server's book-added event stream.
package subscription

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Event is one decoded server-sent event.
type Event struct {
	Name string
	Data string
}

// Decode reads events from r until EOF or ctx is done, calling fn for each.
// Both "field:value" and "field: value" forms are accepted; multi-line data
// is joined with "\n". An error from fn stops decoding and is returned.
func Decode(ctx context.Context, r io.Reader, fn func(Event) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var name string
	var data []string

	dispatch := func() error {
		defer func() { name, data = "", nil }()
		if len(data) == 0 {
			return nil
		}
		if name == "" {
			name = "message"
		}
		return fn(Event{Name: name, Data: strings.Join(data, "\n")})
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		if line == "" {
			if err := dispatch(); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			name = value
		case "data":
			data = append(data, value)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan event stream: %w", err)
	}
	// a final event without a trailing blank line is dropped, per the SSE format
	return nil
}
