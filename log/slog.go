package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const otelLoggerName = "github.com/hyperledger-labs/namada-relayer"

type RelayLogger struct {
	*slog.Logger
}

var relayLogger *RelayLogger

// InitLogger initializes the global logger writing to "stdout" or "stderr"
func InitLogger(logLevel, format, output string, enableTelemetry bool) error {
	var writer io.Writer
	switch output {
	case "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		return errors.New("invalid log output")
	}
	return InitLoggerWithWriter(logLevel, format, writer, enableTelemetry)
}

// InitLoggerWithWriter initializes the global logger. If enableTelemetry is true,
// records are also sent to the OpenTelemetry logger provider.
func InitLoggerWithWriter(logLevel, format string, writer io.Writer, enableTelemetry bool) error {
	var slogLevel slog.Level
	if err := slogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return errors.Wrapf(err, "invalid log level: %s", logLevel)
	}
	handlerOpts := &slog.HandlerOptions{
		Level:     slogLevel,
		AddSource: true,
	}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(writer, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(writer, handlerOpts)
	default:
		return errors.New("invalid log format")
	}

	if enableTelemetry {
		handler = slogmulti.Fanout(handler, otelslog.NewHandler(otelLoggerName))
	}

	// set global logger
	relayLogger = &RelayLogger{
		slog.New(handler),
	}
	return nil
}

// GetLogger returns the global logger. A discarding logger is returned before initialization.
func GetLogger() *RelayLogger {
	if relayLogger == nil {
		return &RelayLogger{slog.New(slog.NewTextHandler(io.Discard, nil))}
	}
	return relayLogger
}

// Error logs the error with its stack at the error level
func (rl *RelayLogger) Error(msg string, err error, otherArgs ...any) {
	rl.logContext(context.Background(), slog.LevelError, 1, msg, errorArgs(err, otherArgs)...)
}

func (rl *RelayLogger) ErrorContext(ctx context.Context, msg string, err error, otherArgs ...any) {
	rl.logContext(ctx, slog.LevelError, 1, msg, errorArgs(err, otherArgs)...)
}

// Fatal logs the error and exits the process
func (rl *RelayLogger) Fatal(msg string, err error, otherArgs ...any) {
	rl.logContext(context.Background(), slog.LevelError, 1, msg, errorArgs(err, otherArgs)...)
	os.Exit(1)
}

func errorArgs(err error, otherArgs []any) []any {
	stack := errors.WithStackDepth(err, 2)
	return append([]any{"error", err, "stack", fmt.Sprintf("%+v", stack)}, otherArgs...)
}

func (rl *RelayLogger) log(level slog.Level, depth int, msg string, args ...any) {
	rl.logContext(context.Background(), level, depth+1, msg, args...)
}

// logContext writes a record whose source is the caller depth frames above it
func (rl *RelayLogger) logContext(ctx context.Context, level slog.Level, depth int, msg string, args ...any) {
	if !rl.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(depth+2, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = rl.Handler().Handle(ctx, r)
}

func (rl *RelayLogger) WithChain(chainID string) *RelayLogger {
	return &RelayLogger{
		rl.With(
			"chain_id", chainID,
		),
	}
}

func (rl *RelayLogger) WithChannel(chainID, portID, channelID string) *RelayLogger {
	return &RelayLogger{
		rl.With(
			"chain_id", chainID,
			"port_id", portID,
			"channel_id", channelID,
		),
	}
}

func (rl *RelayLogger) WithModule(moduleName string) *RelayLogger {
	return &RelayLogger{
		rl.With(
			"module", moduleName,
		),
	}
}
