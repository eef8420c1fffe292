package channel

import (
	"context"
	"sync"
)

type call struct {
	op   string
	ch   ChannelID
	args []any
}

// recorder is a Client that records every call and completes it
// synchronously with its canned results.
type recorder struct {
	mu    sync.Mutex
	calls []call

	err      error
	message  *Message
	messages []Message
	users    []User
	deleted  Channel
}

func (r *recorder) record(op string, ch ChannelID, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{op: op, ch: ch, args: args})
}

func (r *recorder) Calls() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

func (r *recorder) AddReaction(_ context.Context, ch ChannelID, msg MessageID, re Reaction, done ErrFunc) {
	r.record("AddReaction", ch, msg, re)
	done(r.err)
}

func (r *recorder) DeleteChannel(_ context.Context, ch ChannelID, done ChannelFunc) {
	r.record("DeleteChannel", ch)
	done(r.deleted, r.err)
}

func (r *recorder) DeleteMessage(_ context.Context, ch ChannelID, msg MessageID, done ErrFunc) {
	r.record("DeleteMessage", ch, msg)
	done(r.err)
}

func (r *recorder) DeleteMessages(_ context.Context, ch ChannelID, msgs []MessageID, done ErrFunc) {
	r.record("DeleteMessages", ch, msgs)
	done(r.err)
}

func (r *recorder) DeleteReaction(_ context.Context, ch ChannelID, msg MessageID, re Reaction, user UserID, done ErrFunc) {
	r.record("DeleteReaction", ch, msg, re, user)
	done(r.err)
}

func (r *recorder) EditMessage(_ context.Context, ch ChannelID, msg MessageID, opts EditOptions, done MessageFunc) {
	r.record("EditMessage", ch, msg, opts)
	done(r.message, r.err)
}

func (r *recorder) GetMessage(_ context.Context, ch ChannelID, msg MessageID, done MessageFunc) {
	r.record("GetMessage", ch, msg)
	done(r.message, r.err)
}

func (r *recorder) GetMessages(_ context.Context, ch ChannelID, q *MessageQuery, done MessagesFunc) {
	r.record("GetMessages", ch, q)
	done(r.messages, r.err)
}

func (r *recorder) GetReaction(_ context.Context, ch ChannelID, msg MessageID, re Reaction, done UsersFunc) {
	r.record("GetReaction", ch, msg, re)
	done(r.users, r.err)
}

func (r *recorder) GetPinnedMessages(_ context.Context, ch ChannelID, done MessagesFunc) {
	r.record("GetPinnedMessages", ch)
	done(r.messages, r.err)
}

func (r *recorder) PinMessage(_ context.Context, ch ChannelID, msg MessageID, done ErrFunc) {
	r.record("PinMessage", ch, msg)
	done(r.err)
}

func (r *recorder) Send(_ context.Context, ch ChannelID, p Payload, done MessageFunc) {
	r.record("Send", ch, p)
	done(r.message, r.err)
}

func (r *recorder) UnpinMessage(_ context.Context, ch ChannelID, msg MessageID, done ErrFunc) {
	r.record("UnpinMessage", ch, msg)
	done(r.err)
}

func (r *recorder) TriggerTyping(_ context.Context, ch ChannelID, done ErrFunc) {
	r.record("TriggerTyping", ch)
	done(r.err)
}
