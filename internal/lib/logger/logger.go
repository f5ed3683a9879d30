package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// Notifier is anything that can push a log line to an external channel.
type Notifier interface {
	SendMessageWithLevel(msg string, level slog.Level)
}

// SetupLogger builds the base slog logger for the given environment.
// Local gets text output on stdout, dev/prod get JSON written to a file
// in logDir (falling back to stdout if the file cannot be opened).
func SetupLogger(env string, logDir string) *slog.Logger {
	var out io.Writer = os.Stdout

	if env != envLocal {
		path := filepath.Join(logDir, "churchhelper.log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = io.MultiWriter(os.Stdout, file)
		}
	}

	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// SetupTelegramHandler fans records at or above minLevel out to the notifier
// in addition to the logger's own handler.
func SetupTelegramHandler(log *slog.Logger, notifier Notifier, minLevel slog.Level) *slog.Logger {
	return slog.New(&notifyHandler{
		next:     log.Handler(),
		notifier: notifier,
		minLevel: minLevel,
	})
}

type notifyHandler struct {
	next     slog.Handler
	notifier Notifier
	minLevel slog.Level
	attrs    []slog.Attr
}

func (h *notifyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *notifyHandler) Handle(ctx context.Context, rec slog.Record) error {
	if rec.Level >= h.minLevel && h.notifier != nil {
		var b strings.Builder
		b.WriteString(fmt.Sprintf("[%s] %s", rec.Level.String(), rec.Message))
		for _, a := range h.attrs {
			b.WriteString(fmt.Sprintf("\n%s: %s", a.Key, a.Value.String()))
		}
		rec.Attrs(func(a slog.Attr) bool {
			b.WriteString(fmt.Sprintf("\n%s: %s", a.Key, a.Value.String()))
			return true
		})
		h.notifier.SendMessageWithLevel(b.String(), rec.Level)
	}
	return h.next.Handle(ctx, rec)
}

func (h *notifyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &notifyHandler{
		next:     h.next.WithAttrs(attrs),
		notifier: h.notifier,
		minLevel: h.minLevel,
		attrs:    merged,
	}
}

func (h *notifyHandler) WithGroup(name string) slog.Handler {
	return &notifyHandler{
		next:     h.next.WithGroup(name),
		notifier: h.notifier,
		minLevel: h.minLevel,
		attrs:    h.attrs,
	}
}
