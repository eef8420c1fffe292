package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/manamana32321/chanctl/channel"
)

func newSendCommand(opts *rootOptions) *cobra.Command {
	var reply string
	var tts bool

	cmd := &cobra.Command{
		Use:     "send <channel> <text>...",
		Short:   "Send a message to a channel",
		Example: "chanctl send 1234567890 hello world",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := channel.Payload{
				Content: strings.Join(args[1:], " "),
				TTS:     tts,
				ReplyTo: channel.MessageID(reply),
			}
			return withChannel(cmd, opts, args[0], func(ctx context.Context, ch channel.Channel) error {
				m, err := await(ctx, func(done func(*channel.Message, error)) error {
					return ch.Send(ctx, p, done)
				})
				if err != nil {
					return explain(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), m.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reply, "reply", "", "Message ID to reply to")
	cmd.Flags().BoolVar(&tts, "tts", false, "Send as text-to-speech")

	return cmd
}

func newGetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <channel> <message>",
		Short: "Show one message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withChannel(cmd, opts, args[0], func(ctx context.Context, ch channel.Channel) error {
				m, err := await(ctx, func(done func(*channel.Message, error)) error {
					return ch.GetMessage(ctx, channel.MessageID(args[1]), done)
				})
				if err != nil {
					return explain(err)
				}
				printMessages(cmd.OutOrStdout(), []channel.Message{*m})
				return nil
			})
		},
	}
}

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var q channel.MessageQuery
	var around, before, after string

	cmd := &cobra.Command{
		Use:     "history <channel>",
		Short:   "List recent messages",
		Example: "chanctl history 1234567890 --limit 20 --before 998877",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Around = channel.MessageID(around)
			q.Before = channel.MessageID(before)
			q.After = channel.MessageID(after)
			if err := q.Validate(); err != nil {
				return err
			}
			return withChannel(cmd, opts, args[0], func(ctx context.Context, ch channel.Channel) error {
				ms, err := await(ctx, func(done func([]channel.Message, error)) error {
					return ch.GetMessages(ctx, &q, done)
				})
				if err != nil {
					return explain(err)
				}
				printMessages(cmd.OutOrStdout(), ms)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&q.Limit, "limit", "n", 50, "Number of messages, at most 100")
	cmd.Flags().StringVar(&around, "around", "", "List messages around this message ID")
	cmd.Flags().StringVar(&before, "before", "", "List messages before this message ID")
	cmd.Flags().StringVar(&after, "after", "", "List messages after this message ID")
	cmd.MarkFlagsMutuallyExclusive("around", "before", "after")

	return cmd
}

func newPinsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pins <channel>",
		Short: "List pinned messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withChannel(cmd, opts, args[0], func(ctx context.Context, ch channel.Channel) error {
				ms, err := await(ctx, func(done func([]channel.Message, error)) error {
					return ch.GetPinnedMessages(ctx, done)
				})
				if err != nil {
					return explain(err)
				}
				printMessages(cmd.OutOrStdout(), ms)
				return nil
			})
		},
	}
}

// messageCommand builds a command that acts on one message and reports
// only success or failure.
func messageCommand(opts *rootOptions, use, short string, op func(ctx context.Context, ch channel.Channel, msg channel.MessageID, done channel.ErrFunc) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <channel> <message>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withChannel(cmd, opts, args[0], func(ctx context.Context, ch channel.Channel) error {
				return explain(awaitErr(ctx, func(done channel.ErrFunc) error {
					return op(ctx, ch, channel.MessageID(args[1]), done)
				}))
			})
		},
	}
}

func newPinCommand(opts *rootOptions) *cobra.Command {
	return messageCommand(opts, "pin", "Pin a message", func(ctx context.Context, ch channel.Channel, msg channel.MessageID, done channel.ErrFunc) error {
		return ch.Pin(ctx, msg, done)
	})
}

func newUnpinCommand(opts *rootOptions) *cobra.Command {
	return messageCommand(opts, "unpin", "Unpin a message", func(ctx context.Context, ch channel.Channel, msg channel.MessageID, done channel.ErrFunc) error {
		return ch.Unpin(ctx, msg, done)
	})
}

func newDeleteMessageCommand(opts *rootOptions) *cobra.Command {
	return messageCommand(opts, "delete-message", "Delete a message", func(ctx context.Context, ch channel.Channel, msg channel.MessageID, done channel.ErrFunc) error {
		return ch.DeleteMessage(ctx, msg, done)
	})
}

func newReactCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "react <channel> <message> <emoji>",
		Short:   "Add a reaction as the bot",
		Example: "chanctl react 1234567890 998877 👍",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withChannel(cmd, opts, args[0], func(ctx context.Context, ch channel.Channel) error {
				return explain(awaitErr(ctx, func(done channel.ErrFunc) error {
					return ch.AddReaction(ctx, channel.Reaction(args[2]), channel.MessageID(args[1]), done)
				}))
			})
		},
	}
}

func newUnreactCommand(opts *rootOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "unreact <channel> <message> <emoji>",
		Short: "Remove a reaction, the bot's own unless --user is given",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withChannel(cmd, opts, args[0], func(ctx context.Context, ch channel.Channel) error {
				return explain(awaitErr(ctx, func(done channel.ErrFunc) error {
					return ch.DeleteReaction(ctx, channel.Reaction(args[2]), channel.MessageID(args[1]), channel.UserID(user), done)
				}))
			})
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User whose reaction to remove")

	return cmd
}

func newReactionsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reactions <channel> <message> <emoji>",
		Short: "List users who reacted with an emoji",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withChannel(cmd, opts, args[0], func(ctx context.Context, ch channel.Channel) error {
				us, err := await(ctx, func(done func([]channel.User, error)) error {
					return ch.GetReaction(ctx, channel.Reaction(args[2]), channel.MessageID(args[1]), done)
				})
				if err != nil {
					return explain(err)
				}
				for _, u := range us {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", u.ID, u.DisplayName())
				}
				return nil
			})
		},
	}
}

func newEditCommand(opts *rootOptions) *cobra.Command {
	var clearEmbeds bool

	cmd := &cobra.Command{
		Use:   "edit <channel> <message> [text]...",
		Short: "Replace a message's content",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var edit channel.EditOptions
			if len(args) > 2 {
				edit = channel.EditContent(strings.Join(args[2:], " "))
			}
			if clearEmbeds {
				edit.Embeds = &[]channel.Embed{}
			}
			if err := edit.Validate(); err != nil {
				return err
			}
			return withChannel(cmd, opts, args[0], func(ctx context.Context, ch channel.Channel) error {
				m, err := await(ctx, func(done func(*channel.Message, error)) error {
					return ch.EditMessage(ctx, channel.MessageID(args[1]), edit, done)
				})
				if err != nil {
					return explain(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), m.ID)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearEmbeds, "clear-embeds", false, "Remove all embeds")

	return cmd
}

func newPurgeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "purge <channel> <message>...",
		Short:   "Delete several messages at once",
		Example: "chanctl purge 1234567890 111 222 333",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]channel.MessageID, 0, len(args)-1)
			for _, a := range args[1:] {
				ids = append(ids, channel.MessageID(a))
			}
			return withChannel(cmd, opts, args[0], func(ctx context.Context, ch channel.Channel) error {
				return explain(awaitErr(ctx, func(done channel.ErrFunc) error {
					return ch.DeleteMessages(ctx, ids, done)
				}))
			})
		},
	}
}

func newDeleteChannelCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-channel <channel>",
		Short: "Delete a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withChannel(cmd, opts, args[0], func(ctx context.Context, ch channel.Channel) error {
				deleted, err := await(ctx, func(done func(channel.Channel, error)) error {
					return ch.Delete(ctx, done)
				})
				if err != nil {
					return explain(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s channel %s\n", deleted.Type(), deleted.ID())
				return nil
			})
		},
	}
}

func newTypingCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "typing <channel>",
		Short: "Show the bot as typing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withChannel(cmd, opts, args[0], func(ctx context.Context, ch channel.Channel) error {
				return explain(awaitErr(ctx, func(done channel.ErrFunc) error {
					return ch.TriggerTyping(ctx, done)
				}))
			})
		},
	}
}

// printMessages writes one tab-separated line per message.
func printMessages(w io.Writer, ms []channel.Message) {
	for _, m := range ms {
		flags := ""
		if m.Pinned {
			flags = "pinned"
		}
		if m.EditedAt != nil {
			flags = strings.TrimSpace(flags + " edited")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			m.ID, m.Timestamp.UTC().Format(time.RFC3339), m.Author.DisplayName(), flags, m.Content)
	}
}
