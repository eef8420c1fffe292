package main

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/spf13/cobra"

	"github.com/manamana32321/chanctl/channel"
	"github.com/manamana32321/chanctl/discord"
	"github.com/manamana32321/chanctl/relay"
	"github.com/manamana32321/chanctl/telemetry"
)

func newRelayCommand(opts *rootOptions) *cobra.Command {
	var from, to []string
	var stdin bool

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Mirror messages from channels or stdin into other channels",
		Long: "Mirror messages posted in the --from channels, and lines read from stdin\n" +
			"when --stdin is set, into every --to channel. Runs until interrupted, or\n" +
			"until stdin ends when there are no --from channels.",
		Example: "chanctl relay --from 111 --to 222 --to 333\n" +
			"tail -f app.log | chanctl relay --stdin --to 222",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app) error {
				if cmd.Flags().Changed("from") {
					a.cfg.Relay.From = from
				}
				if cmd.Flags().Changed("to") {
					a.cfg.Relay.To = to
				}
				return runRelay(ctx, a, cmd, stdin)
			})
		},
	}

	cmd.Flags().StringSliceVar(&from, "from", nil, "Channel IDs to mirror (overrides relay.from)")
	cmd.Flags().StringSliceVar(&to, "to", nil, "Channel IDs to post into (overrides relay.to)")
	cmd.Flags().BoolVar(&stdin, "stdin", false, "Also relay lines read from stdin")

	return cmd
}

func runRelay(ctx context.Context, a *app, cmd *cobra.Command, stdin bool) error {
	cfg := a.cfg.Relay
	if len(cfg.To) == 0 {
		return errors.New("relay needs at least one target channel")
	}
	if len(cfg.From) == 0 && !stdin {
		return errors.New("relay needs --from channels or --stdin")
	}

	targets := make([]channel.Channel, 0, len(cfg.To))
	for _, id := range cfg.To {
		ch, err := a.client.Channel(ctx, channel.ChannelID(id))
		if err != nil {
			return err
		}
		if !ch.Type().Capability().Messaging {
			return explain(&channel.UnsupportedError{Op: "Send", Type: ch.Type(), ID: ch.ID()})
		}
		targets = append(targets, ch)
	}

	r := relay.New(targets, cfg.Buffer)
	events := telemetry.NewEventLogger(a.logger)
	sub := r.Subscriber()

	var wg sync.WaitGroup

	if len(cfg.From) > 0 {
		sources := make(map[channel.ChannelID]string, len(cfg.From))
		for _, id := range cfg.From {
			ch, err := a.client.Channel(ctx, channel.ChannelID(id))
			if err != nil {
				return err
			}
			sources[ch.ID()] = sourceName(ch)
		}
		a.client.Subscribe(func(in discord.Inbound) {
			name, ok := sources[in.ChannelID]
			if !ok {
				return
			}
			ev := relay.NewEvent(name, in.Author.DisplayName(), in.Content)
			ev.Origin = in.ChannelID
			events.OnEvent(ev)
			sub.OnEvent(ev)
		})

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.client.Start(ctx); err != nil {
				log.Printf("discord gateway: %v", err)
			}
		}()
	}

	fanOutDone := make(chan struct{})
	go func() {
		defer close(fanOutDone)
		r.FanOut(ctx)
	}()

	if stdin {
		src := relay.NewLineSource("stdin", "")
		src.Subscribe(events)
		src.Subscribe(sub)
		// Not waited for: a read from stdin cannot be interrupted.
		go func() {
			if err := src.Run(ctx, cmd.InOrStdin()); err != nil {
				log.Printf("stdin: %v", err)
			}
			if len(cfg.From) == 0 {
				r.Close()
			}
		}()
	}

	log.Printf("relay started (from=%v, stdin=%v, to=%v)", cfg.From, stdin, cfg.To)

	<-fanOutDone
	wg.Wait()

	delivered, failed, dropped := r.Stats()
	log.Printf("relay stopped (delivered=%d, failed=%d, dropped=%d)", delivered, failed, dropped)
	return nil
}

// sourceName labels relayed text with where it came from.
func sourceName(ch channel.Channel) string {
	switch c := ch.(type) {
	case *channel.TextChannel:
		return "#" + c.Name
	case *channel.GroupDMChannel:
		if c.Name != "" {
			return c.Name
		}
	case *channel.DMChannel:
		return "@" + c.Recipient.DisplayName()
	}
	return ch.Mention()
}
