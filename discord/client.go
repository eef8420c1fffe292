// Package discord implements channel.Client on top of discordgo.
package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/manamana32321/chanctl/channel"
)

const (
	// bulkDeleteLimit is the most messages Discord deletes in one request.
	bulkDeleteLimit = 100
	reactionPage    = 100
)

// ErrClosed is delivered to callbacks of requests issued after Close.
var ErrClosed = errors.New("discord client closed")

// BulkDeleteError reports a bulk delete that stopped part way. Messages
// before the failing batch stay deleted.
type BulkDeleteError struct {
	Channel channel.ChannelID
	Deleted int
	Err     error
}

func (e *BulkDeleteError) Error() string {
	return fmt.Sprintf("bulk delete in %s stopped after %d messages: %v", e.Channel, e.Deleted, e.Err)
}

func (e *BulkDeleteError) Unwrap() error { return e.Err }

// Option configures a Client.
type Option func(*Client)

// WithMiddleware wraps the client the channels see, e.g. for telemetry.
// Middlewares apply in the order given, the first being outermost.
func WithMiddleware(mw ...func(channel.Client) channel.Client) Option {
	return func(c *Client) { c.middleware = append(c.middleware, mw...) }
}

// WithRequestTimeout bounds each REST request. Zero means no bound beyond
// the caller's context.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// Client performs channel operations against the Discord REST API. Every
// request runs on its own goroutine and completes through its callback.
type Client struct {
	rest       REST
	gateway    *gateway
	handle     *channel.Handle
	timeout    time.Duration
	middleware []func(channel.Client) channel.Client

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup

	tracker     tracker
	subsMu      sync.RWMutex
	subscribers []func(Inbound)
}

var _ channel.Client = (*Client)(nil)

// New creates a client authenticated with a bot token.
func New(token string, opts ...Option) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discordgo session: %w", err)
	}
	c := NewWithREST(session, opts...)
	c.gateway = newGateway(session)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent
	session.AddHandler(c.onMessage)
	return c, nil
}

// NewWithREST creates a client over rest without a gateway connection.
func NewWithREST(rest REST, opts ...Option) *Client {
	c := &Client{rest: rest}
	for _, opt := range opts {
		opt(c)
	}
	var api channel.Client = c
	for i := len(c.middleware) - 1; i >= 0; i-- {
		api = c.middleware[i](api)
	}
	c.handle = channel.NewHandle(api)
	return c
}

// Channel fetches a channel and returns its variant, owned by c.
func (c *Client) Channel(ctx context.Context, id channel.ChannelID) (channel.Channel, error) {
	dc, err := c.rest.Channel(string(id), discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get channel %s: %w", id, err)
	}
	return c.adopt(dc)
}

// Wrap returns the variant for a channel already fetched elsewhere.
func (c *Client) Wrap(dc *discordgo.Channel) (channel.Channel, error) {
	return c.adopt(dc)
}

func (c *Client) adopt(dc *discordgo.Channel) (channel.Channel, error) {
	ch, err := FromDiscord(dc, c.handle.Ref())
	if err != nil {
		return nil, err
	}
	c.tracker.track(ch)
	return ch, nil
}

// Close waits for in-flight requests, detaches every channel from c and
// closes the gateway if it was opened.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.handle.Release()
	c.inflight.Wait()
	if c.gateway != nil {
		return c.gateway.Close()
	}
	return nil
}

// do runs fn on a new goroutine, or calls fail with ErrClosed after Close.
func (c *Client) do(ctx context.Context, fn func(opt discordgo.RequestOption), fail func(error)) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		fail(ErrClosed)
		return
	}
	c.inflight.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.inflight.Done()
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		fn(discordgo.WithContext(ctx))
	}()
}

func (c *Client) AddReaction(ctx context.Context, ch channel.ChannelID, msg channel.MessageID, r channel.Reaction, done channel.ErrFunc) {
	c.do(ctx, func(opt discordgo.RequestOption) {
		if err := c.rest.MessageReactionAdd(string(ch), string(msg), string(r), opt); err != nil {
			done(fmt.Errorf("add reaction %s to %s: %w", r, msg, err))
			return
		}
		done(nil)
	}, done)
}

func (c *Client) DeleteChannel(ctx context.Context, ch channel.ChannelID, done channel.ChannelFunc) {
	c.do(ctx, func(opt discordgo.RequestOption) {
		dc, err := c.rest.ChannelDelete(string(ch), opt)
		if err != nil {
			done(nil, fmt.Errorf("delete channel %s: %w", ch, err))
			return
		}
		c.tracker.forget(ch)
		deleted, err := FromDiscord(dc, c.handle.Ref())
		done(deleted, err)
	}, func(err error) { done(nil, err) })
}

func (c *Client) DeleteMessage(ctx context.Context, ch channel.ChannelID, msg channel.MessageID, done channel.ErrFunc) {
	c.do(ctx, func(opt discordgo.RequestOption) {
		if err := c.rest.ChannelMessageDelete(string(ch), string(msg), opt); err != nil {
			done(fmt.Errorf("delete message %s: %w", msg, err))
			return
		}
		done(nil)
	}, done)
}

// DeleteMessages deletes msgs in batches of 100 and stops at the first
// failed batch with a *BulkDeleteError.
func (c *Client) DeleteMessages(ctx context.Context, ch channel.ChannelID, msgs []channel.MessageID, done channel.ErrFunc) {
	c.do(ctx, func(opt discordgo.RequestOption) {
		deleted := 0
		for start := 0; start < len(msgs); start += bulkDeleteLimit {
			end := min(start+bulkDeleteLimit, len(msgs))
			batch := make([]string, 0, end-start)
			for _, id := range msgs[start:end] {
				batch = append(batch, string(id))
			}
			if err := c.rest.ChannelMessagesBulkDelete(string(ch), batch, opt); err != nil {
				done(&BulkDeleteError{Channel: ch, Deleted: deleted, Err: err})
				return
			}
			deleted += len(batch)
		}
		done(nil)
	}, done)
}

func (c *Client) DeleteReaction(ctx context.Context, ch channel.ChannelID, msg channel.MessageID, r channel.Reaction, user channel.UserID, done channel.ErrFunc) {
	c.do(ctx, func(opt discordgo.RequestOption) {
		if err := c.rest.MessageReactionRemove(string(ch), string(msg), string(r), string(user), opt); err != nil {
			done(fmt.Errorf("remove reaction %s from %s: %w", r, msg, err))
			return
		}
		done(nil)
	}, done)
}

func (c *Client) EditMessage(ctx context.Context, ch channel.ChannelID, msg channel.MessageID, opts channel.EditOptions, done channel.MessageFunc) {
	if err := opts.Validate(); err != nil {
		done(nil, err)
		return
	}
	c.do(ctx, func(opt discordgo.RequestOption) {
		m, err := c.rest.ChannelMessageEditComplex(toMessageEdit(ch, msg, opts), opt)
		if err != nil {
			done(nil, fmt.Errorf("edit message %s: %w", msg, err))
			return
		}
		done(toMessage(m), nil)
	}, func(err error) { done(nil, err) })
}

func (c *Client) GetMessage(ctx context.Context, ch channel.ChannelID, msg channel.MessageID, done channel.MessageFunc) {
	c.do(ctx, func(opt discordgo.RequestOption) {
		m, err := c.rest.ChannelMessage(string(ch), string(msg), opt)
		if err != nil {
			done(nil, fmt.Errorf("get message %s: %w", msg, err))
			return
		}
		done(toMessage(m), nil)
	}, func(err error) { done(nil, err) })
}

// GetMessages fetches history. Extra query keys have no Discord equivalent
// and are ignored.
func (c *Client) GetMessages(ctx context.Context, ch channel.ChannelID, q *channel.MessageQuery, done channel.MessagesFunc) {
	if err := q.Validate(); err != nil {
		done(nil, err)
		return
	}
	var query channel.MessageQuery
	if q != nil {
		query = *q
	}
	c.do(ctx, func(opt discordgo.RequestOption) {
		ms, err := c.rest.ChannelMessages(string(ch), query.Limit,
			string(query.Before), string(query.After), string(query.Around), opt)
		if err != nil {
			done(nil, fmt.Errorf("get messages in %s: %w", ch, err))
			return
		}
		done(toMessages(ms), nil)
	}, func(err error) { done(nil, err) })
}

// GetReaction returns the first 100 users who reacted with r.
func (c *Client) GetReaction(ctx context.Context, ch channel.ChannelID, msg channel.MessageID, r channel.Reaction, done channel.UsersFunc) {
	c.do(ctx, func(opt discordgo.RequestOption) {
		us, err := c.rest.MessageReactions(string(ch), string(msg), string(r), reactionPage, "", "", opt)
		if err != nil {
			done(nil, fmt.Errorf("get reactions %s on %s: %w", r, msg, err))
			return
		}
		done(toUsers(us), nil)
	}, func(err error) { done(nil, err) })
}

func (c *Client) GetPinnedMessages(ctx context.Context, ch channel.ChannelID, done channel.MessagesFunc) {
	c.do(ctx, func(opt discordgo.RequestOption) {
		ms, err := c.rest.ChannelMessagesPinned(string(ch), opt)
		if err != nil {
			done(nil, fmt.Errorf("get pins in %s: %w", ch, err))
			return
		}
		done(toMessages(ms), nil)
	}, func(err error) { done(nil, err) })
}

func (c *Client) PinMessage(ctx context.Context, ch channel.ChannelID, msg channel.MessageID, done channel.ErrFunc) {
	c.do(ctx, func(opt discordgo.RequestOption) {
		if err := c.rest.ChannelMessagePin(string(ch), string(msg), opt); err != nil {
			done(fmt.Errorf("pin %s: %w", msg, err))
			return
		}
		done(nil)
	}, done)
}

func (c *Client) Send(ctx context.Context, ch channel.ChannelID, p channel.Payload, done channel.MessageFunc) {
	c.do(ctx, func(opt discordgo.RequestOption) {
		m, err := c.rest.ChannelMessageSendComplex(string(ch), toMessageSend(ch, p), opt)
		if err != nil {
			done(nil, fmt.Errorf("send to %s: %w", ch, err))
			return
		}
		c.tracker.observe(ch, channel.MessageID(m.ID))
		done(toMessage(m), nil)
	}, func(err error) { done(nil, err) })
}

func (c *Client) UnpinMessage(ctx context.Context, ch channel.ChannelID, msg channel.MessageID, done channel.ErrFunc) {
	c.do(ctx, func(opt discordgo.RequestOption) {
		if err := c.rest.ChannelMessageUnpin(string(ch), string(msg), opt); err != nil {
			done(fmt.Errorf("unpin %s: %w", msg, err))
			return
		}
		done(nil)
	}, done)
}

func (c *Client) TriggerTyping(ctx context.Context, ch channel.ChannelID, done channel.ErrFunc) {
	c.do(ctx, func(opt discordgo.RequestOption) {
		if err := c.rest.ChannelTyping(string(ch), opt); err != nil {
			done(fmt.Errorf("typing in %s: %w", ch, err))
			return
		}
		done(nil)
	}, done)
}
