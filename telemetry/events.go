package telemetry

import (
	"context"

	otellog "go.opentelemetry.io/otel/log"

	"github.com/manamana32321/chanctl/relay"
)

// EventLogger records relayed events as OTel log records.
type EventLogger struct {
	logger otellog.Logger
}

func NewEventLogger(logger otellog.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

func (s *EventLogger) OnEvent(event relay.Event) {
	attrs := []otellog.KeyValue{
		otellog.String("event_id", event.ID),
		otellog.String("source", event.Source),
	}
	if event.Origin != "" {
		attrs = append(attrs, otellog.String("origin", string(event.Origin)))
	}
	if event.Author != "" {
		attrs = append(attrs, otellog.String("author", event.Author))
	}
	if event.Content != "" {
		attrs = append(attrs, otellog.String("message", event.Content))
	}

	logEvent(context.Background(), s.logger, otellog.SeverityInfo, "relay", attrs...)
}
