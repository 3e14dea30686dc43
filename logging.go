package skyshow

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	// WarnOnce logs only the first warning filed under key. Per-frame systems
	// use it for conditions that persist, such as a galaxy image that failed.
	WarnOnce(key string, format string, args ...any)
	// Named returns a logger tagging its lines with name. It shares output,
	// the debug switch and the WarnOnce keys with its parent.
	Named(name string) Logger
}

type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
	levelError
)

func (l logLevel) String() string {
	switch l {
	case levelDebug:
		return "DEBUG"
	case levelInfo:
		return "INFO"
	case levelWarn:
		return "WARN"
	}
	return "ERROR"
}

// logSink is the state every named logger of one scene shares.
type logSink struct {
	mu    sync.Mutex
	debug bool
	seen  map[string]struct{}
	out   *log.Logger
	err   *log.Logger
}

type DefaultLogger struct {
	sink   *logSink
	prefix string
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewWriterLogger(os.Stdout, os.Stderr, prefix, debug)
}

// NewWriterLogger logs debug and info lines to out, warnings and errors to errOut.
func NewWriterLogger(out, errOut io.Writer, prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		prefix: prefix,
		sink: &logSink{
			debug: debug,
			seen:  make(map[string]struct{}),
			out:   log.New(out, "", flags),
			err:   log.New(errOut, "", flags),
		},
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.sink.mu.Lock()
	l.sink.debug = enabled
	l.sink.mu.Unlock()
}

func (l *DefaultLogger) Named(name string) Logger {
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "/" + name
	}
	return &DefaultLogger{sink: l.sink, prefix: prefix}
}

func (l *DefaultLogger) logf(level logLevel, format string, args ...any) {
	if level == levelDebug && !l.DebugEnabled() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		msg = fmt.Sprintf("[%s] %s: %s", l.prefix, level, msg)
	} else {
		msg = fmt.Sprintf("%s: %s", level, msg)
	}

	if level >= levelWarn {
		l.sink.err.Print(msg)
	} else {
		l.sink.out.Print(msg)
	}
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.logf(levelDebug, format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.logf(levelInfo, format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.logf(levelWarn, format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.logf(levelError, format, args...) }

func (l *DefaultLogger) WarnOnce(key string, format string, args ...any) {
	l.sink.mu.Lock()
	_, dup := l.sink.seen[key]
	l.sink.seen[key] = struct{}{}
	l.sink.mu.Unlock()
	if !dup {
		l.logf(levelWarn, format, args...)
	}
}

// LoggingModule installs a logger as a resource. Logger takes precedence
// over Prefix and Debug when set.
type LoggingModule struct {
	Prefix string
	Debug  bool
	Logger *DefaultLogger
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	logger := m.Logger
	if logger == nil {
		logger = NewDefaultLogger(m.Prefix, m.Debug)
	}
	app.addResources(logger)
}

type nopLogger struct{}

func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool                              { return false }
func (nopLogger) SetDebug(enabled bool)                           {}
func (nopLogger) Debugf(format string, args ...any)               {}
func (nopLogger) Infof(format string, args ...any)                {}
func (nopLogger) Warnf(format string, args ...any)                {}
func (nopLogger) Errorf(format string, args ...any)               {}
func (nopLogger) WarnOnce(key string, format string, args ...any) {}
func (n nopLogger) Named(name string) Logger                      { return n }

// Logger returns the first Logger resource if present, otherwise a no-op logger.
// Never returns nil.
func (app *App) Logger() Logger {
	if app == nil {
		return NewNopLogger()
	}
	for _, r := range app.resources {
		if l, ok := r.(Logger); ok {
			return l
		}
	}
	return NewNopLogger()
}
