package discord

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manamana32321/chanctl/channel"
)

func newTestClient(t *testing.T, rest *fakeREST, opts ...Option) *Client {
	t.Helper()
	c := NewWithREST(rest, opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func textChannel(id string) *discordgo.Channel {
	return &discordgo.Channel{ID: id, Type: discordgo.ChannelTypeGuildText, Name: "general", GuildID: "G1"}
}

// wait blocks until done is closed or fails the test.
func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback not invoked")
	}
}

func TestChannelBuildsOwnedVariant(t *testing.T) {
	rest := &fakeREST{channels: map[string]*discordgo.Channel{"C1": textChannel("C1")}}
	c := newTestClient(t, rest)

	ch, err := c.Channel(context.Background(), "C1")
	require.NoError(t, err)

	text, ok := ch.(*channel.TextChannel)
	require.True(t, ok)
	assert.Equal(t, "general", text.Name)
	assert.Equal(t, "G1", text.GuildID)

	_, owned := ch.Owner().Client()
	assert.True(t, owned)
}

func TestChannelRESTError(t *testing.T) {
	rest := &fakeREST{err: errors.New("404")}
	c := newTestClient(t, rest)

	_, err := c.Channel(context.Background(), "C404")
	assert.ErrorContains(t, err, "get channel C404")
}

func TestSendThroughFacade(t *testing.T) {
	rest := &fakeREST{
		channels: map[string]*discordgo.Channel{"C1": textChannel("C1")},
		message:  &discordgo.Message{ID: "M1", ChannelID: "C1", Content: "hello"},
	}
	c := newTestClient(t, rest)
	ch, err := c.Channel(context.Background(), "C1")
	require.NoError(t, err)

	done := make(chan struct{})
	var got *channel.Message
	require.NoError(t, ch.Send(context.Background(), channel.Text("hello"), func(m *channel.Message, err error) {
		assert.NoError(t, err)
		got = m
		close(done)
	}))
	wait(t, done)

	require.NotNil(t, got)
	assert.Equal(t, channel.MessageID("M1"), got.ID)
	assert.Equal(t, "hello", rest.lastSend.Content)
	assert.Nil(t, rest.lastSend.Reference)

	last, ok := ch.LastMessageID()
	assert.True(t, ok)
	assert.Equal(t, channel.MessageID("M1"), last)
}

func TestSendReply(t *testing.T) {
	rest := &fakeREST{message: &discordgo.Message{ID: "M2"}}
	c := newTestClient(t, rest)

	done := make(chan struct{})
	c.Send(context.Background(), "C1", channel.Payload{Content: "re", ReplyTo: "M1"}, func(*channel.Message, error) { close(done) })
	wait(t, done)

	require.NotNil(t, rest.lastSend.Reference)
	assert.Equal(t, "M1", rest.lastSend.Reference.MessageID)
	assert.Equal(t, "C1", rest.lastSend.Reference.ChannelID)
}

func TestVoiceChannelNeverReachesREST(t *testing.T) {
	rest := &fakeREST{channels: map[string]*discordgo.Channel{
		"C2": {ID: "C2", Type: discordgo.ChannelTypeGuildVoice},
	}}
	c := newTestClient(t, rest)
	ch, err := c.Channel(context.Background(), "C2")
	require.NoError(t, err)

	called := false
	err = ch.Pin(context.Background(), "M1", func(error) { called = true })
	assert.ErrorIs(t, err, channel.ErrUnsupported)

	require.NoError(t, c.Close())
	assert.False(t, called)
	assert.Equal(t, []string{"Channel C2"}, rest.Calls())
}

func TestDeleteReactionSelf(t *testing.T) {
	rest := &fakeREST{channels: map[string]*discordgo.Channel{"C1": textChannel("C1")}}
	c := newTestClient(t, rest)
	ch, err := c.Channel(context.Background(), "C1")
	require.NoError(t, err)

	done := make(chan struct{})
	require.NoError(t, ch.DeleteReaction(context.Background(), "👍", "M1", "", func(err error) {
		assert.NoError(t, err)
		close(done)
	}))
	wait(t, done)
	assert.Equal(t, "@me", rest.lastUser)
}

func TestGetMessagesMapsQuery(t *testing.T) {
	rest := &fakeREST{messages: []*discordgo.Message{{ID: "M1"}, nil, {ID: "M2"}}}
	c := newTestClient(t, rest)

	done := make(chan struct{})
	var got []channel.Message
	c.GetMessages(context.Background(), "C1", &channel.MessageQuery{Limit: 50, Before: "M9"}, func(ms []channel.Message, err error) {
		assert.NoError(t, err)
		got = ms
		close(done)
	})
	wait(t, done)

	assert.Equal(t, [4]any{50, "M9", "", ""}, rest.lastQuery)
	require.Len(t, got, 2)
	assert.Equal(t, channel.MessageID("M2"), got[1].ID)
}

func TestGetMessagesNilQuery(t *testing.T) {
	rest := &fakeREST{}
	c := newTestClient(t, rest)

	done := make(chan struct{})
	c.GetMessages(context.Background(), "C1", nil, func([]channel.Message, error) { close(done) })
	wait(t, done)
	assert.Equal(t, [4]any{0, "", "", ""}, rest.lastQuery)
}

func TestGetMessagesInvalidQuery(t *testing.T) {
	rest := &fakeREST{}
	c := newTestClient(t, rest)

	var got error
	c.GetMessages(context.Background(), "C1", &channel.MessageQuery{Limit: 500}, func(_ []channel.Message, err error) { got = err })

	assert.ErrorIs(t, got, channel.ErrInvalidQuery)
	assert.Empty(t, rest.Calls())
}

func TestEditMessage(t *testing.T) {
	rest := &fakeREST{message: &discordgo.Message{ID: "M1", Content: "new"}}
	c := newTestClient(t, rest)

	done := make(chan struct{})
	c.EditMessage(context.Background(), "C1", "M1", channel.EditContent("new"), func(m *channel.Message, err error) {
		assert.NoError(t, err)
		assert.Equal(t, "new", m.Content)
		close(done)
	})
	wait(t, done)

	require.NotNil(t, rest.lastEdit.Content)
	assert.Equal(t, "new", *rest.lastEdit.Content)
	assert.Equal(t, []string{"ChannelMessageEditComplex C1 M1"}, rest.Calls())
}

func TestEditMessageRejectsEmptyEdit(t *testing.T) {
	rest := &fakeREST{}
	c := newTestClient(t, rest)

	var got error
	c.EditMessage(context.Background(), "C1", "M1", channel.EditOptions{}, func(_ *channel.Message, err error) { got = err })
	assert.ErrorIs(t, got, channel.ErrEmptyEdit)
	assert.Empty(t, rest.Calls())
}

func TestDeleteMessagesBatches(t *testing.T) {
	rest := &fakeREST{}
	c := newTestClient(t, rest)

	ids := make([]channel.MessageID, 250)
	for i := range ids {
		ids[i] = channel.MessageID(fmt.Sprint(i))
	}

	done := make(chan struct{})
	c.DeleteMessages(context.Background(), "C1", ids, func(err error) {
		assert.NoError(t, err)
		close(done)
	})
	wait(t, done)

	require.Len(t, rest.bulk, 3)
	assert.Len(t, rest.bulk[0], 100)
	assert.Len(t, rest.bulk[1], 100)
	assert.Len(t, rest.bulk[2], 50)
	assert.Equal(t, "249", rest.bulk[2][49])
}

func TestDeleteMessagesPartialFailure(t *testing.T) {
	boom := errors.New("boom")
	rest := &fakeREST{err: boom, failBulkAt: 2}
	c := newTestClient(t, rest)

	ids := make([]channel.MessageID, 150)
	for i := range ids {
		ids[i] = channel.MessageID(fmt.Sprint(i))
	}

	done := make(chan struct{})
	var got error
	c.DeleteMessages(context.Background(), "C1", ids, func(err error) {
		got = err
		close(done)
	})
	wait(t, done)

	var bde *BulkDeleteError
	require.ErrorAs(t, got, &bde)
	assert.Equal(t, 100, bde.Deleted)
	assert.ErrorIs(t, got, boom)
}

func TestDeleteChannelReturnsVariant(t *testing.T) {
	rest := &fakeREST{channels: map[string]*discordgo.Channel{
		"C3": {ID: "C3", Type: discordgo.ChannelTypeGuildVoice, Name: "lounge"},
	}}
	c := newTestClient(t, rest)
	ch, err := c.Channel(context.Background(), "C3")
	require.NoError(t, err)

	done := make(chan struct{})
	var deleted channel.Channel
	require.NoError(t, ch.Delete(context.Background(), func(d channel.Channel, err error) {
		assert.NoError(t, err)
		deleted = d
		close(done)
	}))
	wait(t, done)

	voice, ok := deleted.(*channel.VoiceChannel)
	require.True(t, ok)
	assert.Equal(t, "lounge", voice.Name)
}

func TestRESTErrorsReachCallback(t *testing.T) {
	boom := errors.New("rate limited")
	rest := &fakeREST{err: boom}
	c := newTestClient(t, rest)

	done := make(chan struct{})
	var got error
	c.PinMessage(context.Background(), "C1", "M1", func(err error) {
		got = err
		close(done)
	})
	wait(t, done)
	assert.ErrorIs(t, got, boom)
}

func TestCloseDetachesChannels(t *testing.T) {
	rest := &fakeREST{channels: map[string]*discordgo.Channel{"C1": textChannel("C1")}}
	c := NewWithREST(rest)
	ch, err := c.Channel(context.Background(), "C1")
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	called := false
	assert.ErrorIs(t, ch.Send(context.Background(), channel.Text("x"), func(*channel.Message, error) { called = true }), channel.ErrNoOwner)
	assert.False(t, called)

	var got error
	c.TriggerTyping(context.Background(), "C1", func(err error) { got = err })
	assert.ErrorIs(t, got, ErrClosed)
}

func TestMiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) func(channel.Client) channel.Client {
		return func(next channel.Client) channel.Client {
			return &tagged{Client: next, tag: func() { order = append(order, name) }}
		}
	}
	rest := &fakeREST{channels: map[string]*discordgo.Channel{"C1": textChannel("C1")}}
	c := newTestClient(t, rest, WithMiddleware(mw("outer"), mw("inner")))
	ch, err := c.Channel(context.Background(), "C1")
	require.NoError(t, err)

	done := make(chan struct{})
	require.NoError(t, ch.TriggerTyping(context.Background(), func(error) { close(done) }))
	wait(t, done)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

type tagged struct {
	channel.Client
	tag func()
}

func (t *tagged) TriggerTyping(ctx context.Context, ch channel.ChannelID, done channel.ErrFunc) {
	t.tag()
	t.Client.TriggerTyping(ctx, ch, done)
}

func TestRequestTimeoutApplied(t *testing.T) {
	rest := &fakeREST{}
	c := newTestClient(t, rest, WithRequestTimeout(time.Second))
	assert.Equal(t, time.Second, c.timeout)
}
