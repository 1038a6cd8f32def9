package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	name        = "github.com/hyperledger-labs/namada-relayer"
	serviceName = "namada-relayer"

	exporterOTLP       = "otlp"
	exporterConsole    = "console"
	exporterPrometheus = "prometheus"
	exporterNone       = "none"
)

// Environment variables read by SetupOTelSDK. The OTLP exporters read their own
// OTEL_EXPORTER_OTLP_* variables.
const (
	envPropagators     = "OTEL_PROPAGATORS"
	envTracesExporter  = "OTEL_TRACES_EXPORTER"
	envMetricsExporter = "OTEL_METRICS_EXPORTER"
	envLogsExporter    = "OTEL_LOGS_EXPORTER"
	envPrometheusHost  = "OTEL_EXPORTER_PROMETHEUS_HOST"
	envPrometheusPort  = "OTEL_EXPORTER_PROMETHEUS_PORT"
	envConsoleTraces   = "OTEL_EXPORTER_CONSOLE_TRACES_WRITER"
	envConsoleMetrics  = "OTEL_EXPORTER_CONSOLE_METRICS_WRITER"
	envConsoleLogs     = "OTEL_EXPORTER_CONSOLE_LOGS_WRITER"
)

// otelEnv is the exporter selection read from the environment
type otelEnv struct {
	propagators []string

	traces  []string
	metrics []string
	logs    []string

	prometheusAddr string

	consoleTraces  io.Writer
	consoleMetrics io.Writer
	consoleLogs    io.Writer
}

func loadOTelEnv() (*otelEnv, error) {
	env := &otelEnv{
		propagators:    getList(envPropagators, "tracecontext,baggage"),
		traces:         getList(envTracesExporter, exporterOTLP),
		metrics:        getList(envMetricsExporter, exporterOTLP),
		logs:           getList(envLogsExporter, exporterOTLP),
		prometheusAddr: net.JoinHostPort(getEnv(envPrometheusHost, "localhost"), getEnv(envPrometheusPort, "9464")),
	}

	var errs []error
	for _, p := range env.propagators {
		if p != "tracecontext" && p != "baggage" {
			errs = append(errs, fmt.Errorf("unsupported propagator %q in %s", p, envPropagators))
		}
	}
	errs = append(errs,
		checkExporters(envTracesExporter, env.traces, exporterOTLP, exporterConsole, exporterNone),
		checkExporters(envMetricsExporter, env.metrics, exporterOTLP, exporterConsole, exporterPrometheus, exporterNone),
		checkExporters(envLogsExporter, env.logs, exporterOTLP, exporterConsole, exporterNone),
	)

	var err error
	if env.consoleTraces, err = getWriter(envConsoleTraces); err != nil {
		errs = append(errs, err)
	}
	if env.consoleMetrics, err = getWriter(envConsoleMetrics); err != nil {
		errs = append(errs, err)
	}
	if env.consoleLogs, err = getWriter(envConsoleLogs); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return env, nil
}

// SetupOTelSDK installs the global tracer, meter and logger providers selected by the
// OTEL_* environment variables. Unknown values are reported as errors.
// On success the caller must call shutdown.
func SetupOTelSDK(ctx context.Context) (shutdown func(context.Context) error, err error) {
	env, err := loadOTelEnv()
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build the resource: %w", err)
	}

	var shutdownFuncs []func(context.Context) error
	shutdown = func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}
	fail := func(inErr error) (func(context.Context) error, error) {
		return nil, errors.Join(inErr, shutdown(ctx))
	}

	otel.SetTextMapPropagator(env.propagator())

	tp, err := env.tracerProvider(ctx, res)
	if err != nil {
		return fail(err)
	}
	shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
	otel.SetTracerProvider(tp)

	mp, err := env.meterProvider(ctx, res)
	if err != nil {
		return fail(err)
	}
	shutdownFuncs = append(shutdownFuncs, mp.Shutdown)
	otel.SetMeterProvider(mp)

	lp, err := env.loggerProvider(ctx, res)
	if err != nil {
		return fail(err)
	}
	shutdownFuncs = append(shutdownFuncs, lp.Shutdown)
	global.SetLoggerProvider(lp)

	return shutdown, nil
}

func (env *otelEnv) propagator() propagation.TextMapPropagator {
	var props []propagation.TextMapPropagator
	for _, p := range env.propagators {
		switch p {
		case "tracecontext":
			props = append(props, propagation.TraceContext{})
		case "baggage":
			props = append(props, propagation.Baggage{})
		}
	}
	return propagation.NewCompositeTextMapPropagator(props...)
}

func (env *otelEnv) tracerProvider(ctx context.Context, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, exporter := range env.traces {
		var exp sdktrace.SpanExporter
		var err error
		switch exporter {
		case exporterOTLP:
			exp, err = otlptracegrpc.New(ctx)
		case exporterConsole:
			exp, err = stdouttrace.New(stdouttrace.WithWriter(env.consoleTraces))
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create the %s trace exporter: %w", exporter, err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func (env *otelEnv) meterProvider(ctx context.Context, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, exporter := range env.metrics {
		var reader sdkmetric.Reader
		switch exporter {
		case exporterOTLP:
			exp, err := otlpmetricgrpc.New(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to create the otlp metric exporter: %w", err)
			}
			reader = sdkmetric.NewPeriodicReader(exp)
		case exporterConsole:
			exp, err := stdoutmetric.New(stdoutmetric.WithWriter(env.consoleMetrics))
			if err != nil {
				return nil, fmt.Errorf("failed to create the console metric exporter: %w", err)
			}
			reader = sdkmetric.NewPeriodicReader(exp)
		case exporterPrometheus:
			exp, err := NewPrometheusExporter(env.prometheusAddr)
			if err != nil {
				return nil, err
			}
			reader = exp
		default:
			continue
		}
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

func (env *otelEnv) loggerProvider(ctx context.Context, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	opts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	for _, exporter := range env.logs {
		var exp sdklog.Exporter
		var err error
		switch exporter {
		case exporterOTLP:
			exp, err = otlploggrpc.New(ctx)
		case exporterConsole:
			exp, err = stdoutlog.New(stdoutlog.WithWriter(env.consoleLogs))
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create the %s log exporter: %w", exporter, err)
		}
		opts = append(opts, sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)))
	}
	return sdklog.NewLoggerProvider(opts...), nil
}

func getEnv(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

func getList(key, defaultValue string) []string {
	var list []string
	for _, v := range strings.Split(getEnv(key, defaultValue), ",") {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	return list
}

func getWriter(key string) (io.Writer, error) {
	switch v := getEnv(key, "stdout"); v {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return nil, fmt.Errorf("unknown writer %q in %s", v, key)
	}
}

func checkExporters(key string, exporters []string, supported ...string) error {
	for _, exp := range exporters {
		if !slices.Contains(supported, exp) {
			return fmt.Errorf("unsupported exporter %q in %s", exp, key)
		}
	}
	return nil
}
