package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns the logger of the command line tool. It writes to stderr, as
// processed G-code may go to stdout.
func New(level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter is New writing to w. Records carry no timestamp, a run
// takes seconds and the elapsed time is logged at the end.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch {
			case len(groups) == 0 && a.Key == slog.TimeKey:
				return slog.Attr{}
			case a.Key == "error":
				a.Key = "err"
			}
			return a
		},
	}))
}

func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
