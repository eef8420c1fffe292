package relay

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// LineSource turns lines of text into events for its subscribers.
type LineSource struct {
	name        string
	author      string
	subscribers []Subscriber
}

func NewLineSource(name, author string) *LineSource {
	return &LineSource{name: name, author: author}
}

func (s *LineSource) Subscribe(sub Subscriber) {
	s.subscribers = append(s.subscribers, sub)
}

// Run reads r until EOF or ctx is done. Blank lines are skipped.
func (s *LineSource) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.Publish(NewEvent(s.name, s.author, line))
	}
	return scanner.Err()
}

// Publish hands an event to every subscriber.
func (s *LineSource) Publish(event Event) {
	for _, sub := range s.subscribers {
		sub.OnEvent(event)
	}
}
