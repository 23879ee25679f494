package observability

import (
	"fmt"
	"io"
	"log"
	"strings"

	"tmfstock/internal/core"
)

// StdLogger writes service log lines through a standard library logger as
// "LEVEL msg key=value ...".
type StdLogger struct {
	out   *log.Logger
	debug bool
}

var _ core.Logger = (*StdLogger)(nil)

// NewStdLogger wraps out. Debug lines are dropped unless debug is set.
func NewStdLogger(out *log.Logger, debug bool) *StdLogger {
	if out == nil {
		out = log.Default()
	}
	return &StdLogger{out: out, debug: debug}
}

// NewWriterLogger builds a StdLogger writing to w with the usual date and
// time prefix.
func NewWriterLogger(w io.Writer, debug bool) *StdLogger {
	return NewStdLogger(log.New(w, "", log.LstdFlags), debug)
}

func (l *StdLogger) Debug(msg string, args ...any) {
	if l.debug {
		l.print("DEBUG", msg, args)
	}
}

func (l *StdLogger) Info(msg string, args ...any)  { l.print("INFO", msg, args) }
func (l *StdLogger) Warn(msg string, args ...any)  { l.print("WARN", msg, args) }
func (l *StdLogger) Error(msg string, args ...any) { l.print("ERROR", msg, args) }

func (l *StdLogger) print(level, msg string, args []any) {
	l.out.Print(formatLine(level, msg, args))
}

func formatLine(level, msg string, args []any) string {
	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		var value any = "(missing)"
		if i+1 < len(args) {
			value = args[i+1]
		}
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(quoteValue(fmt.Sprint(value)))
	}
	return b.String()
}

func quoteValue(v string) string {
	if v == "" || strings.ContainsAny(v, " \t\n\"=") {
		return fmt.Sprintf("%q", v)
	}
	return v
}
