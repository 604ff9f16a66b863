// Package logging builds the process-wide slog logger.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	slogseq "github.com/sokkalf/slog-seq"
)

// Options selects the console format and the optional Seq sink.
type Options struct {
	Level  string // debug|info|warn|error
	Format string // text|json
	// SeqURL ships records to a Seq server as well when set.
	SeqURL string
	// Writer receives console output; nil means stderr.
	Writer io.Writer
}

// ParseLevel maps a level name onto slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// New returns a logger and a cleanup function that flushes remote sinks.
func New(opt Options) (*slog.Logger, func(), error) {
	level, err := ParseLevel(opt.Level)
	if err != nil {
		return nil, nil, err
	}
	w := opt.Writer
	if w == nil {
		w = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: level}

	var console slog.Handler
	switch strings.ToLower(strings.TrimSpace(opt.Format)) {
	case "", "text":
		console = slog.NewTextHandler(w, hopts)
	case "json":
		console = slog.NewJSONHandler(w, hopts)
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", opt.Format)
	}

	if opt.SeqURL == "" {
		return slog.New(&requestIDHandler{Handler: console}), func() {}, nil
	}

	_, seqHandler := slogseq.NewLogger(
		opt.SeqURL,
		slogseq.WithBatchSize(50),
		slogseq.WithFlushInterval(2*time.Second),
		slogseq.WithHandlerOptions(hopts),
	)
	if seqHandler == nil {
		return slog.New(&requestIDHandler{Handler: console}), func() {}, errors.New("seq handler unavailable; logging to console only")
	}
	multi := &multiHandler{handlers: []slog.Handler{console, seqHandler}}
	closeFn := func() {
		seqHandler.Close()
	}
	return slog.New(&requestIDHandler{Handler: multi}), closeFn, nil
}

// Discard returns a logger that drops everything, for tests and quiet CLI runs.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// requestIDHandler adds the chi request ID carried by ctx to every record.
type requestIDHandler struct {
	slog.Handler
}

func (h *requestIDHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := middleware.GetReqID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *requestIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &requestIDHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *requestIDHandler) WithGroup(name string) slog.Handler {
	return &requestIDHandler{Handler: h.Handler.WithGroup(name)}
}

// multiHandler forwards log records to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
