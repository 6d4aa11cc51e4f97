package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// SetupLogger builds the root logger for the given environment.
// Local runs log human-readable text at debug level to stdout; dev and prod
// log JSON, prod additionally mirrors to a file under logDir.
func SetupLogger(env, logDir string) *slog.Logger {
	switch env {
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		out := io.Writer(os.Stdout)
		path := filepath.Join(logDir, "webstore.log")
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			out = io.MultiWriter(os.Stdout, f)
		}
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// Notifier receives rendered log lines, e.g. a Telegram admin bot.
type Notifier interface {
	SendMessage(msg string)
}

// SetupTelegramHandler mirrors records at or above level to the notifier,
// in addition to the logger's own handler.
func SetupTelegramHandler(log *slog.Logger, notifier Notifier, level slog.Level) *slog.Logger {
	return slog.New(&teeHandler{
		next:     log.Handler(),
		notifier: notifier,
		level:    level,
	})
}

type teeHandler struct {
	next     slog.Handler
	notifier Notifier
	level    slog.Level
	attrs    []slog.Attr
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= h.level && h.notifier != nil {
		text := fmt.Sprintf("[%s] %s", record.Level, record.Message)
		for _, attr := range h.attrs {
			text += fmt.Sprintf("\n%s: %v", attr.Key, attr.Value)
		}
		record.Attrs(func(attr slog.Attr) bool {
			text += fmt.Sprintf("\n%s: %v", attr.Key, attr.Value)
			return true
		})
		h.notifier.SendMessage(text)
	}
	return h.next.Handle(ctx, record)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{
		next:     h.next.WithAttrs(attrs),
		notifier: h.notifier,
		level:    h.level,
		attrs:    append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{
		next:     h.next.WithGroup(name),
		notifier: h.notifier,
		level:    h.level,
		attrs:    h.attrs,
	}
}
