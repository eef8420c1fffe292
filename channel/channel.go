// Package channel is a uniform facade over Discord channel variants.
//
// Every variant embeds Base, which implements the full operation set by
// checking the variant's capabilities and forwarding to the owning Client.
// Channels never own their client: they hold an OwnerRef, and once the
// client's Handle is released every operation is a no-op.
package channel

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Channel is implemented by every channel variant.
type Channel interface {
	ID() ChannelID
	Type() Type
	LastMessageID() (MessageID, bool)
	LastMessage() *LastMessage
	Owner() OwnerRef
	Mention() string

	AddReaction(ctx context.Context, r Reaction, msg MessageID, done ErrFunc) error
	Delete(ctx context.Context, done ChannelFunc) error
	DeleteMessage(ctx context.Context, msg MessageID, done ErrFunc) error
	DeleteMessages(ctx context.Context, msgs []MessageID, done ErrFunc) error
	DeleteReaction(ctx context.Context, r Reaction, msg MessageID, user UserID, done ErrFunc) error
	EditMessage(ctx context.Context, msg MessageID, opts EditOptions, done MessageFunc) error
	GetMessage(ctx context.Context, msg MessageID, done MessageFunc) error
	GetMessages(ctx context.Context, q *MessageQuery, done MessagesFunc) error
	GetReaction(ctx context.Context, r Reaction, msg MessageID, done UsersFunc) error
	GetPinnedMessages(ctx context.Context, done MessagesFunc) error
	Pin(ctx context.Context, msg MessageID, done ErrFunc) error
	Send(ctx context.Context, p Payload, done MessageFunc) error
	Unpin(ctx context.Context, msg MessageID, done ErrFunc) error
	TriggerTyping(ctx context.Context, done ErrFunc) error
}

var (
	_ Channel = (*TextChannel)(nil)
	_ Channel = (*DMChannel)(nil)
	_ Channel = (*VoiceChannel)(nil)
	_ Channel = (*GroupDMChannel)(nil)
	_ Channel = (*CategoryChannel)(nil)
)

// LastMessage tracks the most recent message seen in a channel. It is
// written by the client as messages arrive and is safe for concurrent use.
type LastMessage struct {
	id atomic.Pointer[MessageID]
}

func (l *LastMessage) Set(id MessageID) {
	if l == nil {
		return
	}
	l.id.Store(&id)
}

func (l *LastMessage) Get() (MessageID, bool) {
	if l == nil {
		return "", false
	}
	p := l.id.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}

// Base carries the identity shared by all variants and implements the
// operation set. Construct it with NewBase.
type Base struct {
	id    ChannelID
	typ   Type
	owner OwnerRef
	last  *LastMessage
}

func NewBase(id ChannelID, typ Type, owner OwnerRef) Base {
	return Base{id: id, typ: typ, owner: owner, last: new(LastMessage)}
}

func (b *Base) ID() ChannelID { return b.id }

func (b *Base) Type() Type { return b.typ }

func (b *Base) Owner() OwnerRef { return b.owner }

func (b *Base) LastMessage() *LastMessage { return b.last }

func (b *Base) LastMessageID() (MessageID, bool) { return b.last.Get() }

// Mention returns the markup Discord renders as a link to the channel.
func (b *Base) Mention() string { return fmt.Sprintf("<#%s>", b.id) }

type TextChannel struct {
	Base
	GuildID  string
	Name     string
	Topic    string
	Position int
	NSFW     bool
	ParentID ChannelID
}

type DMChannel struct {
	Base
	Recipient User
}

type VoiceChannel struct {
	Base
	GuildID   string
	Name      string
	Position  int
	Bitrate   int
	UserLimit int
	ParentID  ChannelID
}

type GroupDMChannel struct {
	Base
	Name       string
	Icon       string
	OwnerID    UserID
	Recipients []User
}

type CategoryChannel struct {
	Base
	GuildID  string
	Name     string
	Position int
}

// New returns the bare variant for typ.
func New(id ChannelID, typ Type, owner OwnerRef) (Channel, error) {
	base := NewBase(id, typ, owner)
	switch typ {
	case TypeText:
		return &TextChannel{Base: base}, nil
	case TypeDM:
		return &DMChannel{Base: base}, nil
	case TypeVoice:
		return &VoiceChannel{Base: base}, nil
	case TypeGroupDM:
		return &GroupDMChannel{Base: base}, nil
	case TypeCategory:
		return &CategoryChannel{Base: base}, nil
	}
	return nil, fmt.Errorf("channel %s: unknown %s", id, typ)
}
