package channel

import (
	"context"
	"sync"
	"weak"
)

// Completion callbacks. A nil callback passed to a channel operation is
// replaced by a function that does nothing.
type (
	ErrFunc      func(err error)
	MessageFunc  func(m *Message, err error)
	MessagesFunc func(ms []Message, err error)
	UsersFunc    func(us []User, err error)
	ChannelFunc  func(ch Channel, err error)
)

// Client performs the network work behind channel operations. Each method
// must return promptly and invoke done exactly once, on any goroutine.
type Client interface {
	AddReaction(ctx context.Context, ch ChannelID, msg MessageID, r Reaction, done ErrFunc)
	DeleteChannel(ctx context.Context, ch ChannelID, done ChannelFunc)
	DeleteMessage(ctx context.Context, ch ChannelID, msg MessageID, done ErrFunc)
	DeleteMessages(ctx context.Context, ch ChannelID, msgs []MessageID, done ErrFunc)
	DeleteReaction(ctx context.Context, ch ChannelID, msg MessageID, r Reaction, user UserID, done ErrFunc)
	EditMessage(ctx context.Context, ch ChannelID, msg MessageID, opts EditOptions, done MessageFunc)
	GetMessage(ctx context.Context, ch ChannelID, msg MessageID, done MessageFunc)
	GetMessages(ctx context.Context, ch ChannelID, q *MessageQuery, done MessagesFunc)
	GetReaction(ctx context.Context, ch ChannelID, msg MessageID, r Reaction, done UsersFunc)
	GetPinnedMessages(ctx context.Context, ch ChannelID, done MessagesFunc)
	PinMessage(ctx context.Context, ch ChannelID, msg MessageID, done ErrFunc)
	Send(ctx context.Context, ch ChannelID, p Payload, done MessageFunc)
	UnpinMessage(ctx context.Context, ch ChannelID, msg MessageID, done ErrFunc)
	TriggerTyping(ctx context.Context, ch ChannelID, done ErrFunc)
}

// Handle is the strong reference to a Client, kept by whoever owns it.
// Channels only ever see it through an OwnerRef.
type Handle struct {
	mu     sync.RWMutex
	client Client
}

func NewHandle(c Client) *Handle {
	return &Handle{client: c}
}

// Release detaches the client. Channels referring to h become inert.
func (h *Handle) Release() {
	h.mu.Lock()
	h.client = nil
	h.mu.Unlock()
}

// Ref returns a non-owning reference to h.
func (h *Handle) Ref() OwnerRef {
	return OwnerRef{p: weak.Make(h)}
}

func (h *Handle) get() Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.client
}

// OwnerRef is a weak back-reference from a channel to its client. The zero
// value refers to nothing.
type OwnerRef struct {
	p weak.Pointer[Handle]
}

// Client returns the owning client, or false once it has been released or
// collected.
func (r OwnerRef) Client() (Client, bool) {
	h := r.p.Value()
	if h == nil {
		return nil, false
	}
	c := h.get()
	return c, c != nil
}

func noopErr(error)                 {}
func noopMessage(*Message, error)   {}
func noopMessages([]Message, error) {}
func noopUsers([]User, error)       {}
func noopChannel(Channel, error)    {}
