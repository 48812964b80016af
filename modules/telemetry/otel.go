// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Providers owns whatever SDK providers Setup installed globally. Either
// may be nil, e.g. when a sidecar owns tracing or metrics are disabled.
type Providers struct {
	tracer *sdktrace.TracerProvider
	meter  *sdkmetric.MeterProvider
}

// Shutdown flushes and stops the installed providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.tracer != nil {
		if err := p.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry: tracer provider: %w", err))
		}
	}
	if p.meter != nil {
		if err := p.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry: meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Setup installs the global tracer and meter providers. Call once on
// startup and Shutdown the result on exit.
func Setup(ctx context.Context, cfg Config) (*Providers, error) {
	if cfg.ServiceName == "" {
		return nil, errors.New("telemetry: OTEL_SERVICE_NAME is required")
	}
	if cfg.StartupTimeout <= 0 {
		cfg.StartupTimeout = 5 * time.Second
	}

	mode, err := resolveMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	if mode == ModeOff {
		slog.InfoContext(ctx, "telemetry disabled")
		return &Providers{}, nil
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	sctx, cancel := context.WithTimeout(ctx, cfg.StartupTimeout)
	defer cancel()

	res, err := newResource(sctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: resource: %w", err)
	}

	p := &Providers{}
	if mode == ModeManual {
		if p.tracer, err = newTracerProvider(sctx, cfg, res); err != nil {
			return nil, err
		}
		otel.SetTracerProvider(p.tracer)
	} else {
		// the auto-instrumentation agent owns spans, it cannot see our meters
		slog.InfoContext(ctx, "tracing left to the auto-instrumentation agent")
	}

	if !cfg.DisableMetrics {
		mp, err := newMeterProvider(sctx, cfg, res)
		switch {
		case err == nil:
			p.meter = mp
			otel.SetMeterProvider(mp)
		case mode == ModeAuto:
			slog.WarnContext(ctx, "continuing without application metrics", slog.Any("error", err))
		default:
			_ = p.Shutdown(ctx)
			return nil, err
		}
	}

	slog.InfoContext(ctx, "telemetry ready",
		slog.String("mode", string(mode)),
		slog.String("protocol", cfg.Protocol),
		slog.Bool("metrics", p.meter != nil))
	return p, nil
}

func resolveMode(m Mode) (Mode, error) {
	switch m {
	case ModeOff, ModeAuto, ModeManual:
		return m, nil
	case ModeDetect, "":
		if autoInstrumented() {
			return ModeAuto, nil
		}
		return ModeManual, nil
	}
	return "", fmt.Errorf("telemetry: unknown OTEL_MODE %q", m)
}

// autoInstrumented looks for the variables the OTel Go auto-instrumentation
// agent sets on the process it attaches to.
func autoInstrumented() bool {
	if os.Getenv("OTEL_GO_AUTO_TARGET_EXE") != "" {
		return true
	}
	switch strings.ToLower(os.Getenv("OTEL_GO_AUTO_ENABLED")) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := make([]attribute.KeyValue, 0, 3+len(cfg.ResourceAttrs))
	attrs = append(attrs, semconv.ServiceName(cfg.ServiceName))
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}
	for k, v := range cfg.ResourceAttrs {
		attrs = append(attrs, attribute.String(k, v))
	}
	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(attrs...),
	)
}

func newTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	var (
		exp sdktrace.SpanExporter
		err error
	)
	t := cfg.target("/v1/traces")
	if cfg.grpc() {
		var opts []otlptracegrpc.Option
		switch {
		case t.url != "":
			opts = append(opts, otlptracegrpc.WithEndpointURL(t.url))
		case t.hostPort != "":
			opts = append(opts, otlptracegrpc.WithEndpoint(t.hostPort))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exp, err = otlptracegrpc.New(ctx, opts...)
	} else {
		var opts []otlptracehttp.Option
		switch {
		case t.url != "":
			opts = append(opts, otlptracehttp.WithEndpointURL(t.url))
		case t.hostPort != "":
			opts = append(opts, otlptracehttp.WithEndpoint(t.hostPort))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err = otlptracehttp.New(ctx, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("telemetry: trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SamplerRatio)),
	), nil
}

func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	var (
		exp sdkmetric.Exporter
		err error
	)
	t := cfg.target("/v1/metrics")
	if cfg.grpc() {
		var opts []otlpmetricgrpc.Option
		switch {
		case t.url != "":
			opts = append(opts, otlpmetricgrpc.WithEndpointURL(t.url))
		case t.hostPort != "":
			opts = append(opts, otlpmetricgrpc.WithEndpoint(t.hostPort))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exp, err = otlpmetricgrpc.New(ctx, opts...)
	} else {
		var opts []otlpmetrichttp.Option
		switch {
		case t.url != "":
			opts = append(opts, otlpmetrichttp.WithEndpointURL(t.url))
		case t.hostPort != "":
			opts = append(opts, otlpmetrichttp.WithEndpoint(t.hostPort))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err = otlpmetrichttp.New(ctx, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("telemetry: metric exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	), nil
}

func sampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	if ratio <= 0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}
