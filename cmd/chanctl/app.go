package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/manamana32321/chanctl/channel"
	"github.com/manamana32321/chanctl/discord"
	"github.com/manamana32321/chanctl/internal/config"
	"github.com/manamana32321/chanctl/telemetry"
)

// app holds what a command needs to talk to Discord.
type app struct {
	cfg    config.Config
	client *discord.Client
	logger otellog.Logger

	meterProvider  *sdkmetric.MeterProvider
	loggerProvider *sdklog.LoggerProvider
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	a := &app{cfg: cfg}
	if err := a.setupOTel(ctx); err != nil {
		return nil, err
	}

	mw, err := telemetry.Middleware(a.meterProvider.Meter(cfg.OTel.ServiceName), a.logger)
	if err != nil {
		a.shutdownOTel()
		return nil, err
	}
	a.client, err = discord.New(cfg.Discord.Token,
		discord.WithRequestTimeout(cfg.Discord.RequestTimeout),
		discord.WithMiddleware(mw),
	)
	if err != nil {
		a.shutdownOTel()
		return nil, fmt.Errorf("discord: %w", err)
	}
	return a, nil
}

// setupOTel exports over OTLP gRPC when an endpoint is configured. Without
// one the providers still run but record nowhere.
func (a *app) setupOTel(ctx context.Context) error {
	res := resource.NewSchemaless(attribute.String("service.name", a.cfg.OTel.ServiceName))

	if a.cfg.OTel.Endpoint == "" {
		a.meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))
		a.loggerProvider = sdklog.NewLoggerProvider(sdklog.WithResource(res))
		a.logger = a.loggerProvider.Logger(a.cfg.OTel.ServiceName)
		return nil
	}

	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(a.cfg.OTel.Endpoint)}
	logOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(a.cfg.OTel.Endpoint)}
	if a.cfg.OTel.Insecure {
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		logOpts = append(logOpts, otlploggrpc.WithInsecure())
	}

	meterOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if a.cfg.Metrics.Enabled {
		metricExporter, err := otlpmetricgrpc.New(ctx, metricOpts...)
		if err != nil {
			return fmt.Errorf("metric exporter: %w", err)
		}
		meterOpts = append(meterOpts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(a.cfg.Metrics.Interval)),
		))
	}
	a.meterProvider = sdkmetric.NewMeterProvider(meterOpts...)

	logExporter, err := otlploggrpc.New(ctx, logOpts...)
	if err != nil {
		_ = a.meterProvider.Shutdown(ctx)
		return fmt.Errorf("log exporter: %w", err)
	}
	a.loggerProvider = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
	)
	a.logger = a.loggerProvider.Logger(a.cfg.OTel.ServiceName)
	return nil
}

// Close waits for outstanding requests and flushes telemetry.
func (a *app) Close() {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			log.Printf("discord close: %v", err)
		}
	}
	a.shutdownOTel()
}

func (a *app) shutdownOTel() {
	ctx := context.Background()
	if a.meterProvider != nil {
		if err := a.meterProvider.Shutdown(ctx); err != nil {
			log.Printf("meter provider shutdown: %v", err)
		}
	}
	if a.loggerProvider != nil {
		if err := a.loggerProvider.Shutdown(ctx); err != nil {
			log.Printf("logger provider shutdown: %v", err)
		}
	}
}

// run sets up the app for one command and tears it down afterwards. ctx is
// cancelled on SIGINT or SIGTERM.
func run(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, opts.configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

// withChannel resolves id and runs fn against it within the request timeout.
func withChannel(cmd *cobra.Command, opts *rootOptions, id string, fn func(ctx context.Context, ch channel.Channel) error) error {
	return run(cmd, opts, func(ctx context.Context, a *app) error {
		if opts.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.timeout)
			defer cancel()
		}
		ch, err := a.client.Channel(ctx, channel.ChannelID(id))
		if err != nil {
			return err
		}
		return fn(ctx, ch)
	})
}

type result[T any] struct {
	v   T
	err error
}

// await dispatches an operation and waits for its callback. A dispatch that
// is refused never calls back, so its error is returned directly.
func await[T any](ctx context.Context, dispatch func(done func(T, error)) error) (T, error) {
	var zero T
	res := make(chan result[T], 1)
	if err := dispatch(func(v T, err error) { res <- result[T]{v, err} }); err != nil {
		return zero, err
	}
	select {
	case r := <-res:
		return r.v, r.err
	case <-ctx.Done():
		return zero, fmt.Errorf("waiting for discord: %w", ctx.Err())
	}
}

func awaitErr(ctx context.Context, dispatch func(done channel.ErrFunc) error) error {
	_, err := await(ctx, func(done func(struct{}, error)) error {
		return dispatch(func(err error) { done(struct{}{}, err) })
	})
	return err
}

// explain adds a hint to errors a user is likely to hit.
func explain(err error) error {
	var unsupported *channel.UnsupportedError
	switch {
	case errors.As(err, &unsupported):
		return fmt.Errorf("%w (%s channels carry no messages)", err, unsupported.Type)
	case errors.Is(err, channel.ErrNoOwner):
		return fmt.Errorf("%w (client already closed)", err)
	}
	return err
}
