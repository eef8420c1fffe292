// Package telemetry records OTel metrics and logs for channel requests.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"

	"github.com/manamana32321/chanctl/channel"
)

const (
	requestsMetric = "chanctl.requests"
	durationMetric = "chanctl.request.duration"
)

// Middleware returns a wrapper that counts and times every request the
// wrapped client completes, and logs the failed ones.
func Middleware(meter metric.Meter, logger otellog.Logger) (func(channel.Client) channel.Client, error) {
	requests, err := meter.Int64Counter(requestsMetric,
		metric.WithDescription("Channel requests completed, by operation and outcome."))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", requestsMetric, err)
	}
	duration, err := meter.Float64Histogram(durationMetric,
		metric.WithDescription("Time from dispatch to completion of a channel request."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", durationMetric, err)
	}

	return func(next channel.Client) channel.Client {
		return &instrumented{
			next:     next,
			requests: requests,
			duration: duration,
			logger:   logger,
		}
	}, nil
}

type instrumented struct {
	next     channel.Client
	requests metric.Int64Counter
	duration metric.Float64Histogram
	logger   otellog.Logger
}

// track starts timing op and returns the function to call on completion.
func (i *instrumented) track(ctx context.Context, op string, ch channel.ChannelID) func(error) {
	begin := time.Now()
	return func(err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		attrs := metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("outcome", outcome),
		)
		i.requests.Add(ctx, 1, attrs)
		i.duration.Record(ctx, time.Since(begin).Seconds(), attrs)

		if err != nil {
			logEvent(ctx, i.logger, otellog.SeverityError, op,
				otellog.String("channel_id", string(ch)),
				otellog.String("error", err.Error()),
			)
		}
	}
}

func (i *instrumented) AddReaction(ctx context.Context, ch channel.ChannelID, msg channel.MessageID, r channel.Reaction, done channel.ErrFunc) {
	end := i.track(ctx, "AddReaction", ch)
	i.next.AddReaction(ctx, ch, msg, r, func(err error) {
		end(err)
		done(err)
	})
}

func (i *instrumented) DeleteChannel(ctx context.Context, ch channel.ChannelID, done channel.ChannelFunc) {
	end := i.track(ctx, "DeleteChannel", ch)
	i.next.DeleteChannel(ctx, ch, func(deleted channel.Channel, err error) {
		end(err)
		done(deleted, err)
	})
}

func (i *instrumented) DeleteMessage(ctx context.Context, ch channel.ChannelID, msg channel.MessageID, done channel.ErrFunc) {
	end := i.track(ctx, "DeleteMessage", ch)
	i.next.DeleteMessage(ctx, ch, msg, func(err error) {
		end(err)
		done(err)
	})
}

func (i *instrumented) DeleteMessages(ctx context.Context, ch channel.ChannelID, msgs []channel.MessageID, done channel.ErrFunc) {
	end := i.track(ctx, "DeleteMessages", ch)
	i.next.DeleteMessages(ctx, ch, msgs, func(err error) {
		end(err)
		done(err)
	})
}

func (i *instrumented) DeleteReaction(ctx context.Context, ch channel.ChannelID, msg channel.MessageID, r channel.Reaction, user channel.UserID, done channel.ErrFunc) {
	end := i.track(ctx, "DeleteReaction", ch)
	i.next.DeleteReaction(ctx, ch, msg, r, user, func(err error) {
		end(err)
		done(err)
	})
}

func (i *instrumented) EditMessage(ctx context.Context, ch channel.ChannelID, msg channel.MessageID, opts channel.EditOptions, done channel.MessageFunc) {
	end := i.track(ctx, "EditMessage", ch)
	i.next.EditMessage(ctx, ch, msg, opts, func(m *channel.Message, err error) {
		end(err)
		done(m, err)
	})
}

func (i *instrumented) GetMessage(ctx context.Context, ch channel.ChannelID, msg channel.MessageID, done channel.MessageFunc) {
	end := i.track(ctx, "GetMessage", ch)
	i.next.GetMessage(ctx, ch, msg, func(m *channel.Message, err error) {
		end(err)
		done(m, err)
	})
}

func (i *instrumented) GetMessages(ctx context.Context, ch channel.ChannelID, q *channel.MessageQuery, done channel.MessagesFunc) {
	end := i.track(ctx, "GetMessages", ch)
	i.next.GetMessages(ctx, ch, q, func(ms []channel.Message, err error) {
		end(err)
		done(ms, err)
	})
}

func (i *instrumented) GetReaction(ctx context.Context, ch channel.ChannelID, msg channel.MessageID, r channel.Reaction, done channel.UsersFunc) {
	end := i.track(ctx, "GetReaction", ch)
	i.next.GetReaction(ctx, ch, msg, r, func(us []channel.User, err error) {
		end(err)
		done(us, err)
	})
}

func (i *instrumented) GetPinnedMessages(ctx context.Context, ch channel.ChannelID, done channel.MessagesFunc) {
	end := i.track(ctx, "GetPinnedMessages", ch)
	i.next.GetPinnedMessages(ctx, ch, func(ms []channel.Message, err error) {
		end(err)
		done(ms, err)
	})
}

func (i *instrumented) PinMessage(ctx context.Context, ch channel.ChannelID, msg channel.MessageID, done channel.ErrFunc) {
	end := i.track(ctx, "PinMessage", ch)
	i.next.PinMessage(ctx, ch, msg, func(err error) {
		end(err)
		done(err)
	})
}

func (i *instrumented) Send(ctx context.Context, ch channel.ChannelID, p channel.Payload, done channel.MessageFunc) {
	end := i.track(ctx, "Send", ch)
	i.next.Send(ctx, ch, p, func(m *channel.Message, err error) {
		end(err)
		done(m, err)
	})
}

func (i *instrumented) UnpinMessage(ctx context.Context, ch channel.ChannelID, msg channel.MessageID, done channel.ErrFunc) {
	end := i.track(ctx, "UnpinMessage", ch)
	i.next.UnpinMessage(ctx, ch, msg, func(err error) {
		end(err)
		done(err)
	})
}

func (i *instrumented) TriggerTyping(ctx context.Context, ch channel.ChannelID, done channel.ErrFunc) {
	end := i.track(ctx, "TriggerTyping", ch)
	i.next.TriggerTyping(ctx, ch, func(err error) {
		end(err)
		done(err)
	})
}

func logEvent(ctx context.Context, logger otellog.Logger, sev otellog.Severity, event string, attrs ...otellog.KeyValue) {
	var r otellog.Record
	r.SetTimestamp(time.Now())
	r.SetSeverity(sev)
	r.SetBody(otellog.StringValue(event))
	r.AddAttributes(attrs...)
	logger.Emit(ctx, r)
}
