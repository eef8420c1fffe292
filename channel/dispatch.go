package channel

import "context"

// client resolves the owner for op. Guarded operations are refused for
// variants without messaging capability before the owner is consulted.
func (b *Base) client(op string, guarded bool) (Client, error) {
	if guarded && !b.typ.Capability().Messaging {
		return nil, &UnsupportedError{Op: op, Type: b.typ, ID: b.id}
	}
	c, ok := b.owner.Client()
	if !ok {
		return nil, ErrNoOwner
	}
	return c, nil
}

// The operations below forward to the owning Client and return nil once
// handed off. When the variant lacks the capability or the owner is gone
// they return an error instead and done is never called.

// AddReaction reacts to msg with r.
func (b *Base) AddReaction(ctx context.Context, r Reaction, msg MessageID, done ErrFunc) error {
	c, err := b.client("AddReaction", true)
	if err != nil {
		return err
	}
	if done == nil {
		done = noopErr
	}
	c.AddReaction(ctx, b.id, msg, r, done)
	return nil
}

// Delete deletes the channel itself. It is allowed for every variant.
func (b *Base) Delete(ctx context.Context, done ChannelFunc) error {
	c, err := b.client("Delete", false)
	if err != nil {
		return err
	}
	if done == nil {
		done = noopChannel
	}
	c.DeleteChannel(ctx, b.id, done)
	return nil
}

func (b *Base) DeleteMessage(ctx context.Context, msg MessageID, done ErrFunc) error {
	c, err := b.client("DeleteMessage", true)
	if err != nil {
		return err
	}
	if done == nil {
		done = noopErr
	}
	c.DeleteMessage(ctx, b.id, msg, done)
	return nil
}

// DeleteMessages deletes msgs in one request. Whether a failure can leave
// some messages deleted is up to the client.
func (b *Base) DeleteMessages(ctx context.Context, msgs []MessageID, done ErrFunc) error {
	c, err := b.client("DeleteMessages", true)
	if err != nil {
		return err
	}
	if done == nil {
		done = noopErr
	}
	c.DeleteMessages(ctx, b.id, msgs, done)
	return nil
}

// DeleteReaction removes user's reaction r from msg. An empty user means
// the current user's own reaction and is forwarded as Self.
func (b *Base) DeleteReaction(ctx context.Context, r Reaction, msg MessageID, user UserID, done ErrFunc) error {
	c, err := b.client("DeleteReaction", true)
	if err != nil {
		return err
	}
	if user == "" {
		user = Self
	}
	if done == nil {
		done = noopErr
	}
	c.DeleteReaction(ctx, b.id, msg, r, user, done)
	return nil
}

func (b *Base) EditMessage(ctx context.Context, msg MessageID, opts EditOptions, done MessageFunc) error {
	c, err := b.client("EditMessage", true)
	if err != nil {
		return err
	}
	if done == nil {
		done = noopMessage
	}
	c.EditMessage(ctx, b.id, msg, opts, done)
	return nil
}

func (b *Base) GetMessage(ctx context.Context, msg MessageID, done MessageFunc) error {
	c, err := b.client("GetMessage", true)
	if err != nil {
		return err
	}
	if done == nil {
		done = noopMessage
	}
	c.GetMessage(ctx, b.id, msg, done)
	return nil
}

// GetMessages fetches a page of history. A nil query is forwarded as nil.
func (b *Base) GetMessages(ctx context.Context, q *MessageQuery, done MessagesFunc) error {
	c, err := b.client("GetMessages", true)
	if err != nil {
		return err
	}
	if done == nil {
		done = noopMessages
	}
	c.GetMessages(ctx, b.id, q, done)
	return nil
}

// GetReaction lists the users who reacted to msg with r.
func (b *Base) GetReaction(ctx context.Context, r Reaction, msg MessageID, done UsersFunc) error {
	c, err := b.client("GetReaction", true)
	if err != nil {
		return err
	}
	if done == nil {
		done = noopUsers
	}
	c.GetReaction(ctx, b.id, msg, r, done)
	return nil
}

func (b *Base) GetPinnedMessages(ctx context.Context, done MessagesFunc) error {
	c, err := b.client("GetPinnedMessages", true)
	if err != nil {
		return err
	}
	if done == nil {
		done = noopMessages
	}
	c.GetPinnedMessages(ctx, b.id, done)
	return nil
}

func (b *Base) Pin(ctx context.Context, msg MessageID, done ErrFunc) error {
	c, err := b.client("Pin", true)
	if err != nil {
		return err
	}
	if done == nil {
		done = noopErr
	}
	c.PinMessage(ctx, b.id, msg, done)
	return nil
}

func (b *Base) Send(ctx context.Context, p Payload, done MessageFunc) error {
	c, err := b.client("Send", true)
	if err != nil {
		return err
	}
	if done == nil {
		done = noopMessage
	}
	c.Send(ctx, b.id, p, done)
	return nil
}

func (b *Base) Unpin(ctx context.Context, msg MessageID, done ErrFunc) error {
	c, err := b.client("Unpin", true)
	if err != nil {
		return err
	}
	if done == nil {
		done = noopErr
	}
	c.UnpinMessage(ctx, b.id, msg, done)
	return nil
}

// TriggerTyping shows the typing indicator for a few seconds.
func (b *Base) TriggerTyping(ctx context.Context, done ErrFunc) error {
	c, err := b.client("TriggerTyping", true)
	if err != nil {
		return err
	}
	if done == nil {
		done = noopErr
	}
	c.TriggerTyping(ctx, b.id, done)
	return nil
}
