package discord

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/manamana32321/chanctl/channel"
)

// ErrUnknownType is returned for Discord channel types outside the five
// variants the facade models (threads, forums, stage channels, ...).
var ErrUnknownType = errors.New("unsupported discord channel type")

// FromDiscord builds the channel variant for dc, owned by owner.
func FromDiscord(dc *discordgo.Channel, owner channel.OwnerRef) (channel.Channel, error) {
	id := channel.ChannelID(dc.ID)

	var ch channel.Channel
	switch dc.Type {
	case discordgo.ChannelTypeGuildText:
		ch = &channel.TextChannel{
			Base:     channel.NewBase(id, channel.TypeText, owner),
			GuildID:  dc.GuildID,
			Name:     dc.Name,
			Topic:    dc.Topic,
			Position: dc.Position,
			NSFW:     dc.NSFW,
			ParentID: channel.ChannelID(dc.ParentID),
		}
	case discordgo.ChannelTypeDM:
		dm := &channel.DMChannel{Base: channel.NewBase(id, channel.TypeDM, owner)}
		if len(dc.Recipients) > 0 {
			dm.Recipient = toUser(dc.Recipients[0])
		}
		ch = dm
	case discordgo.ChannelTypeGuildVoice:
		ch = &channel.VoiceChannel{
			Base:      channel.NewBase(id, channel.TypeVoice, owner),
			GuildID:   dc.GuildID,
			Name:      dc.Name,
			Position:  dc.Position,
			Bitrate:   dc.Bitrate,
			UserLimit: dc.UserLimit,
			ParentID:  channel.ChannelID(dc.ParentID),
		}
	case discordgo.ChannelTypeGroupDM:
		ch = &channel.GroupDMChannel{
			Base:       channel.NewBase(id, channel.TypeGroupDM, owner),
			Name:       dc.Name,
			Icon:       dc.Icon,
			OwnerID:    channel.UserID(dc.OwnerID),
			Recipients: toUsers(dc.Recipients),
		}
	case discordgo.ChannelTypeGuildCategory:
		ch = &channel.CategoryChannel{
			Base:     channel.NewBase(id, channel.TypeCategory, owner),
			GuildID:  dc.GuildID,
			Name:     dc.Name,
			Position: dc.Position,
		}
	default:
		return nil, fmt.Errorf("channel %s: %w (%d)", dc.ID, ErrUnknownType, dc.Type)
	}

	if dc.LastMessageID != "" {
		ch.LastMessage().Set(channel.MessageID(dc.LastMessageID))
	}
	return ch, nil
}

func toUser(u *discordgo.User) channel.User {
	if u == nil {
		return channel.User{}
	}
	return channel.User{
		ID:         channel.UserID(u.ID),
		Username:   u.Username,
		GlobalName: u.GlobalName,
		Avatar:     u.Avatar,
		Bot:        u.Bot,
	}
}

func toUsers(us []*discordgo.User) []channel.User {
	out := make([]channel.User, 0, len(us))
	for _, u := range us {
		out = append(out, toUser(u))
	}
	return out
}

func toMessage(m *discordgo.Message) *channel.Message {
	if m == nil {
		return nil
	}
	msg := &channel.Message{
		ID:        channel.MessageID(m.ID),
		ChannelID: channel.ChannelID(m.ChannelID),
		Author:    toUser(m.Author),
		Content:   m.Content,
		Pinned:    m.Pinned,
		TTS:       m.TTS,
		Timestamp: m.Timestamp,
		EditedAt:  m.EditedTimestamp,
	}
	for _, e := range m.Embeds {
		if e == nil {
			continue
		}
		msg.Embeds = append(msg.Embeds, channel.Embed{
			Title:       e.Title,
			Description: e.Description,
			URL:         e.URL,
			Color:       e.Color,
		})
	}
	return msg
}

func toMessages(ms []*discordgo.Message) []channel.Message {
	out := make([]channel.Message, 0, len(ms))
	for _, m := range ms {
		if m == nil {
			continue
		}
		out = append(out, *toMessage(m))
	}
	return out
}

func toEmbeds(es []channel.Embed) []*discordgo.MessageEmbed {
	out := make([]*discordgo.MessageEmbed, 0, len(es))
	for _, e := range es {
		out = append(out, &discordgo.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			URL:         e.URL,
			Color:       e.Color,
		})
	}
	return out
}

func toMessageSend(ch channel.ChannelID, p channel.Payload) *discordgo.MessageSend {
	data := &discordgo.MessageSend{
		Content: p.Content,
		TTS:     p.TTS,
	}
	if len(p.Embeds) > 0 {
		data.Embeds = toEmbeds(p.Embeds)
	}
	for _, f := range p.Files {
		data.Files = append(data.Files, &discordgo.File{
			Name:        f.Name,
			ContentType: f.ContentType,
			Reader:      f.Reader,
		})
	}
	if p.ReplyTo != "" {
		data.Reference = &discordgo.MessageReference{
			MessageID: string(p.ReplyTo),
			ChannelID: string(ch),
		}
	}
	return data
}

func toMessageEdit(ch channel.ChannelID, msg channel.MessageID, opts channel.EditOptions) *discordgo.MessageEdit {
	edit := discordgo.NewMessageEdit(string(ch), string(msg))
	if opts.Content != nil {
		edit.SetContent(*opts.Content)
	}
	if opts.Embeds != nil {
		edit.SetEmbeds(toEmbeds(*opts.Embeds))
	}
	return edit
}
