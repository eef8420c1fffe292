package channel

import (
	"io"
	"time"
)

type (
	ChannelID string
	MessageID string
	UserID    string
)

// Reaction is a unicode emoji or a custom emoji encoded as name:id.
type Reaction string

// Self addresses the current user's own reaction in DeleteReaction.
const Self UserID = "@me"

type User struct {
	ID         UserID
	Username   string
	GlobalName string
	Avatar     string
	Bot        bool
}

// DisplayName prefers the global display name over the username.
func (u User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

type Embed struct {
	Title       string
	Description string
	URL         string
	Color       int
}

// File is an attachment uploaded with a message.
type File struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

type Message struct {
	ID        MessageID
	ChannelID ChannelID
	Author    User
	Content   string
	Embeds    []Embed
	Pinned    bool
	TTS       bool
	Timestamp time.Time
	EditedAt  *time.Time
}

// Payload is an outgoing message.
type Payload struct {
	Content string
	TTS     bool
	Embeds  []Embed
	Files   []File
	ReplyTo MessageID
}

// Text returns a plain-text payload.
func Text(content string) Payload {
	return Payload{Content: content}
}

// Empty reports whether the payload carries nothing Discord would accept.
func (p Payload) Empty() bool {
	return p.Content == "" && len(p.Embeds) == 0 && len(p.Files) == 0
}
