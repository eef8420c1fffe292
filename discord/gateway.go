package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
	"weak"

	"github.com/bwmarrin/discordgo"

	"github.com/manamana32321/chanctl/channel"
)

// Inbound is a message posted by someone other than the bot.
type Inbound struct {
	ChannelID channel.ChannelID
	MessageID channel.MessageID
	Author    channel.User
	Content   string
	Time      time.Time
}

// gateway opens the session's websocket on first use. discordgo reconnects
// an open session by itself.
type gateway struct {
	mu      sync.Mutex
	session *discordgo.Session
	open    bool
}

func newGateway(session *discordgo.Session) *gateway {
	return &gateway{session: session}
}

func (g *gateway) ensure() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.open {
		return nil
	}
	if err := g.session.Open(); err != nil && !errors.Is(err, discordgo.ErrWSAlreadyOpen) {
		return fmt.Errorf("discord open: %w", err)
	}
	g.open = true
	return nil
}

func (g *gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		return nil
	}
	g.open = false
	return g.session.Close()
}

// Start connects to the gateway so tracked channels see new messages and
// subscribers receive them. It blocks until ctx is done.
func (c *Client) Start(ctx context.Context) error {
	if c.gateway == nil {
		return errors.New("discord client has no gateway session")
	}
	if err := c.gateway.ensure(); err != nil {
		return err
	}
	if u := c.gateway.session.State.User; u != nil {
		log.Printf("discord bot connected as %s", u.Username)
	}

	<-ctx.Done()
	return c.gateway.Close()
}

// Subscribe registers fn for every inbound message. fn runs on the
// gateway's event goroutine and must not block.
func (c *Client) Subscribe(fn func(Inbound)) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

func (c *Client) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	c.tracker.observe(channel.ChannelID(m.ChannelID), channel.MessageID(m.ID))

	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	if m.Content == "" {
		return
	}
	c.publish(Inbound{
		ChannelID: channel.ChannelID(m.ChannelID),
		MessageID: channel.MessageID(m.ID),
		Author:    toUser(m.Author),
		Content:   m.Content,
		Time:      m.Timestamp,
	})
}

func (c *Client) publish(in Inbound) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, fn := range c.subscribers {
		fn(in)
	}
}

// tracker remembers the last-message state of channels handed out by the
// client without keeping those channels alive.
type tracker struct {
	mu   sync.Mutex
	last map[channel.ChannelID][]weak.Pointer[channel.LastMessage]
}

func (t *tracker) track(ch channel.Channel) {
	lm := ch.LastMessage()
	if lm == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		t.last = make(map[channel.ChannelID][]weak.Pointer[channel.LastMessage])
	}
	t.last[ch.ID()] = append(t.last[ch.ID()], weak.Make(lm))
}

func (t *tracker) observe(id channel.ChannelID, msg channel.MessageID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	refs := t.last[id]
	live := refs[:0]
	for _, ref := range refs {
		if lm := ref.Value(); lm != nil {
			lm.Set(msg)
			live = append(live, ref)
		}
	}
	if len(live) == 0 {
		delete(t.last, id)
		return
	}
	t.last[id] = live
}

func (t *tracker) forget(id channel.ChannelID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.last, id)
}
