package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"unicode"
)

// NewWriter returns an io.WriteCloser that turns every line written to it
// into one log record at level. Blank lines are skipped and trailing
// whitespace is trimmed. Close flushes a final unterminated line.
func NewWriter(ctx context.Context, logger *slog.Logger, level slog.Level) io.WriteCloser {
	return &lineWriter{ctx: ctx, logger: logger, level: level}
}

type lineWriter struct {
	ctx     context.Context
	logger  *slog.Logger
	level   slog.Level
	pending bytes.Buffer
}

func (w *lineWriter) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			w.pending.Write(p)
			break
		}
		w.pending.Write(p[:i])
		w.emit()
		p = p[i+1:]
	}
	return n, nil
}

func (w *lineWriter) emit() {
	line := bytes.TrimRightFunc(w.pending.Bytes(), unicode.IsSpace)
	if len(line) > 0 {
		w.logger.Log(w.ctx, w.level, string(line))
	}
	w.pending.Reset()
}

func (w *lineWriter) Close() error {
	w.emit()
	return nil
}
