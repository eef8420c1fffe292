// Package relay repeats text events into a set of channels.
package relay

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/manamana32321/chanctl/channel"
)

// maxContent is Discord's message length limit in characters.
const maxContent = 2000

// Event is a piece of text to relay.
type Event struct {
	ID      string
	Source  string            // e.g. "stdin" or "#general"
	Origin  channel.ChannelID // channel the text came from, if any
	Author  string
	Content string
	Time    time.Time
}

// NewEvent stamps a new event with an id and the current time.
func NewEvent(source, author, content string) Event {
	return Event{
		ID:      uuid.NewString(),
		Source:  source,
		Author:  author,
		Content: content,
		Time:    time.Now(),
	}
}

// Subscriber receives events from a source.
type Subscriber interface {
	OnEvent(event Event)
}

// queue forwards events to the relay without blocking the source.
type queue struct {
	events  chan<- Event
	dropped *atomic.Uint64
}

func (q *queue) OnEvent(event Event) {
	select {
	case q.events <- event:
	default:
		// Drop event if channel is full (avoid blocking the source)
		q.dropped.Add(1)
	}
}

// Relay fans events out to every target channel.
type Relay struct {
	targets   []channel.Channel
	events    chan Event
	stop      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Uint64
	failed    atomic.Uint64
	delivered atomic.Uint64
}

func New(targets []channel.Channel, buffer int) *Relay {
	if buffer <= 0 {
		buffer = 100
	}
	return &Relay{
		targets: targets,
		events:  make(chan Event, buffer),
		stop:    make(chan struct{}),
	}
}

// Subscriber returns a Subscriber that queues events for FanOut.
func (r *Relay) Subscriber() Subscriber {
	return &queue{events: r.events, dropped: &r.dropped}
}

// Stats reports delivered, failed and dropped counts so far.
func (r *Relay) Stats() (delivered, failed, dropped uint64) {
	return r.delivered.Load(), r.failed.Load(), r.dropped.Load()
}

// FanOut delivers queued events until ctx is done or Close is called.
func (r *Relay) FanOut(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-r.events:
			r.deliver(ctx, event)
		case <-r.stop:
			r.drain(ctx)
			return
		}
	}
}

func (r *Relay) drain(ctx context.Context) {
	for {
		select {
		case event := <-r.events:
			r.deliver(ctx, event)
		default:
			return
		}
	}
}

// Close makes FanOut deliver whatever is already queued and return.
func (r *Relay) Close() {
	r.closeOnce.Do(func() { close(r.stop) })
}

func (r *Relay) deliver(ctx context.Context, event Event) {
	text := Format(event)
	if text == "" {
		return
	}
	for _, target := range r.targets {
		if event.Origin != "" && target.ID() == event.Origin {
			continue
		}
		err := target.Send(ctx, channel.Text(text), func(_ *channel.Message, err error) {
			if err != nil {
				r.failed.Add(1)
				log.Printf("relay %s to %s: %v", event.ID, target.ID(), err)
				return
			}
			r.delivered.Add(1)
		})
		if err != nil {
			r.failed.Add(1)
			log.Printf("relay %s to %s: %v", event.ID, target.ID(), err)
		}
	}
}

// Format renders an event as a Discord message, truncated to fit.
func Format(e Event) string {
	if e.Content == "" {
		return ""
	}
	var msg string
	switch {
	case e.Author != "" && e.Source != "":
		msg = fmt.Sprintf("**[%s]** %s: %s", e.Source, e.Author, e.Content)
	case e.Author != "":
		msg = fmt.Sprintf("%s: %s", e.Author, e.Content)
	case e.Source != "":
		msg = fmt.Sprintf("**[%s]** %s", e.Source, e.Content)
	default:
		msg = e.Content
	}
	if utf8.RuneCountInString(msg) <= maxContent {
		return msg
	}
	runes := []rune(msg)
	return string(runes[:maxContent-3]) + "..."
}
