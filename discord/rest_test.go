package discord

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// fakeREST records requests and answers them from canned values.
type fakeREST struct {
	mu    sync.Mutex
	calls []string

	channels map[string]*discordgo.Channel
	message  *discordgo.Message
	messages []*discordgo.Message
	users    []*discordgo.User
	err      error

	// failBulkAt fails the bulk delete batch with this index (1-based).
	failBulkAt int
	bulk       [][]string

	lastSend  *discordgo.MessageSend
	lastEdit  *discordgo.MessageEdit
	lastQuery [4]any
	lastUser  string
}

func (f *fakeREST) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeREST) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeREST) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.record("Channel " + channelID)
	if dc, ok := f.channels[channelID]; ok {
		return dc, nil
	}
	return nil, f.err
}

func (f *fakeREST) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.record("ChannelDelete " + channelID)
	if f.err != nil {
		return nil, f.err
	}
	return f.channels[channelID], nil
}

func (f *fakeREST) ChannelTyping(channelID string, _ ...discordgo.RequestOption) error {
	f.record("ChannelTyping " + channelID)
	return f.err
}

func (f *fakeREST) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.record("ChannelMessage " + channelID + " " + messageID)
	return f.message, f.err
}

func (f *fakeREST) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.record("ChannelMessages " + channelID)
	f.mu.Lock()
	f.lastQuery = [4]any{limit, beforeID, afterID, aroundID}
	f.mu.Unlock()
	return f.messages, f.err
}

func (f *fakeREST) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.record("ChannelMessageSendComplex " + channelID)
	f.mu.Lock()
	f.lastSend = data
	f.mu.Unlock()
	return f.message, f.err
}

func (f *fakeREST) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.record("ChannelMessageEditComplex " + m.Channel + " " + m.ID)
	f.mu.Lock()
	f.lastEdit = m
	f.mu.Unlock()
	return f.message, f.err
}

func (f *fakeREST) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.record("ChannelMessageDelete " + channelID + " " + messageID)
	return f.err
}

func (f *fakeREST) ChannelMessagesBulkDelete(channelID string, messages []string, _ ...discordgo.RequestOption) error {
	f.record("ChannelMessagesBulkDelete " + channelID)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulk = append(f.bulk, messages)
	if f.failBulkAt == len(f.bulk) {
		return f.err
	}
	return nil
}

func (f *fakeREST) ChannelMessagesPinned(channelID string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.record("ChannelMessagesPinned " + channelID)
	return f.messages, f.err
}

func (f *fakeREST) ChannelMessagePin(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.record("ChannelMessagePin " + channelID + " " + messageID)
	return f.err
}

func (f *fakeREST) ChannelMessageUnpin(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.record("ChannelMessageUnpin " + channelID + " " + messageID)
	return f.err
}

func (f *fakeREST) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	f.record("MessageReactionAdd " + channelID + " " + messageID + " " + emojiID)
	return f.err
}

func (f *fakeREST) MessageReactionRemove(channelID, messageID, emojiID, userID string, _ ...discordgo.RequestOption) error {
	f.record("MessageReactionRemove " + channelID + " " + messageID + " " + emojiID)
	f.mu.Lock()
	f.lastUser = userID
	f.mu.Unlock()
	return f.err
}

func (f *fakeREST) MessageReactions(channelID, messageID, emojiID string, limit int, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.User, error) {
	f.record("MessageReactions " + channelID + " " + messageID + " " + emojiID)
	return f.users, f.err
}
