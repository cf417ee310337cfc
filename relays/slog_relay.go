package relays

import (
	"context"
	"io"
	"log/slog"
	"strings"

	relayDTO "github.com/joy-dx/relay/dto"
)

// SlogRelay writes relay events to a log/slog logger.
type SlogRelay struct {
	logger *slog.Logger
}

func NewSlogRelay(logger *slog.Logger) *SlogRelay {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogRelay{logger: logger}
}

// NewSlogRelayFor builds a relay writing text or json records at the given level.
func NewSlogRelayFor(w io.Writer, level string, format string) *SlogRelay {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return NewSlogRelay(slog.New(handler))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (r *SlogRelay) Debug(data relayDTO.RelayEventInterface) { r.log(slog.LevelDebug, data) }
func (r *SlogRelay) Info(data relayDTO.RelayEventInterface)  { r.log(slog.LevelInfo, data) }
func (r *SlogRelay) Warn(data relayDTO.RelayEventInterface)  { r.log(slog.LevelWarn, data) }
func (r *SlogRelay) Error(data relayDTO.RelayEventInterface) { r.log(slog.LevelError, data) }

// Fatal is logged at error level; terminating the process is left to the caller.
func (r *SlogRelay) Fatal(data relayDTO.RelayEventInterface) {
	r.log(slog.LevelError, data, slog.Bool("fatal", true))
}

func (r *SlogRelay) Meta(data relayDTO.RelayEventInterface) { r.log(slog.LevelDebug, data) }

func (r *SlogRelay) log(level slog.Level, data relayDTO.RelayEventInterface, extra ...slog.Attr) {
	if data == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("channel", string(data.RelayChannel())),
		slog.String("type", string(data.RelayType())),
	}
	attrs = append(attrs, data.ToSlog()...)
	attrs = append(attrs, extra...)
	r.logger.LogAttrs(context.Background(), level, data.Message(), attrs...)
}
