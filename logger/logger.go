package logger

import (
	"io"
	"log"
	"os"
)

type Logger struct {
	log   *log.Logger
	warn  *log.Logger
	err   *log.Logger
	trace *log.Logger
}

// New logs to stdout and stderr. Trace output is off until WithTrace.
func New(prefix string) Logger {
	return NewWriters(prefix, os.Stdout, os.Stderr)
}

// NewWriters sends Log output to out and everything else to errOut.
func NewWriters(prefix string, out, errOut io.Writer) Logger {
	return Logger{
		log:   log.New(out, "["+prefix+"] ", log.Ldate|log.Ltime),
		warn:  log.New(errOut, "["+prefix+" WARN] ", log.Ldate|log.Ltime|log.Lshortfile),
		err:   log.New(errOut, "["+prefix+" ERR] ", log.Ldate|log.Ltime|log.Llongfile),
		trace: log.New(io.Discard, "["+prefix+" TRACE] ", log.Ldate|log.Ltime|log.Llongfile),
	}
}

// Discard drops everything.
func Discard() Logger {
	return NewWriters("", io.Discard, io.Discard)
}

func (l Logger) WithTrace(enabled bool) Logger {
	out := io.Discard
	if enabled {
		out = l.warn.Writer()
	}
	l.trace = log.New(out, l.trace.Prefix(), l.trace.Flags())
	return l
}

// Named returns a logger with the same outputs under another prefix.
func (l Logger) Named(prefix string) Logger {
	n := NewWriters(prefix, l.log.Writer(), l.warn.Writer())
	if l.trace.Writer() != io.Discard {
		n = n.WithTrace(true)
	}
	return n
}

func (l Logger) Log(format string, a ...interface{}) {
	l.log.Printf(format, a...)
}
func (l Logger) Warn(format string, a ...interface{}) {
	l.warn.Printf(format, a...)
}
func (l Logger) Err(err error, format string, a ...interface{}) {
	if err != nil {
		l.err.Printf(format+", %v", append(a, err)...)
	} else {
		l.err.Printf(format, a...)
	}
}
func (l Logger) Trace(format string, a ...interface{}) {
	l.trace.Printf(format, a...)
}
