package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // trace, debug, info, warn, error, fatal, panic
	Format     string // json, console
	TimeFormat string // RFC3339, Unix, or custom format
	Output     string // stdout, stderr, or file path
}

// DefaultConfig returns the default logging configuration. Logs go to stderr
// so that tables printed on stdout can be piped.
func DefaultConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "console",
		TimeFormat: time.RFC3339,
		Output:     "stderr",
	}
}

// Setup replaces the global logger. The returned function closes the log
// file when Output is a path and is a no-op otherwise.
func Setup(config LogConfig) (func() error, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(config.Level)))
	if err != nil {
		return nil, fmt.Errorf("logger: invalid level %q: %w", config.Level, err)
	}

	out, closeFn, err := openOutput(config.Output)
	if err != nil {
		return nil, err
	}

	var w io.Writer = out
	if !strings.EqualFold(config.Format, "json") {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: config.TimeFormat,
			NoColor:    !isStdStream(config.Output),
		}
	}

	zerolog.SetGlobalLevel(level)
	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}
	log.Logger = zerolog.New(w).With().
		Timestamp().
		Caller().
		Logger()

	return closeFn, nil
}

func openOutput(output string) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	switch output {
	case "stdout":
		return os.Stdout, noop, nil
	case "stderr", "":
		return os.Stderr, noop, nil
	}

	file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: open %s: %w", output, err)
	}
	return file, file.Close, nil
}

func isStdStream(output string) bool {
	return output == "" || output == "stdout" || output == "stderr"
}

// WithComponent returns a logger with a component field
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// WithRequestID returns l with a request ID field
func WithRequestID(l zerolog.Logger, requestID string) zerolog.Logger {
	return l.With().Str("request_id", requestID).Logger()
}

// WithAgent returns l tagged with the agent being worked on. An empty id
// leaves l untouched.
func WithAgent(l zerolog.Logger, agentID string) zerolog.Logger {
	if agentID == "" {
		return l
	}
	return l.With().Str("agent_id", agentID).Logger()
}
