// Package logger holds the process-wide zerolog logger.
//
// main calls Init once; packages ask for a component logger with For and
// receive it by constructor injection.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how the root logger is built.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Anything else means info.
	Level string
	// Pretty switches to zerolog's console writer for local development.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service, when set, is added to every entry.
	Service string
}

var (
	mu   sync.RWMutex
	root *zerolog.Logger
)

// New builds a logger from opts without touching the process-wide one.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	zctx := zerolog.New(out).Level(parseLevel(opts.Level)).With().Timestamp()
	if opts.Service != "" {
		zctx = zctx.Str("service", opts.Service)
	}
	return zctx.Logger()
}

// Init installs the process-wide logger. Only the first call has an effect;
// later calls return the logger already installed.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if root == nil {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := New(opts)
		root = &l
	}
	return *root
}

// Get returns the process-wide logger. It panics before Init.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if root == nil {
		panic("logger: Get() called before Init()")
	}
	return *root
}

// For returns a child logger carrying a "component" field, or a disabled
// logger before Init so packages stay usable from tests.
func For(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if root == nil {
		return zerolog.Nop()
	}
	return root.With().Str("component", component).Logger()
}

// Reset drops the process-wide logger. Tests only.
func Reset() {
	mu.Lock()
	root = nil
	mu.Unlock()
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	switch lvl, err := zerolog.ParseLevel(s); {
	case err != nil, s == "", lvl == zerolog.NoLevel:
		return zerolog.InfoLevel
	case lvl < zerolog.TraceLevel || lvl > zerolog.ErrorLevel:
		return zerolog.InfoLevel
	default:
		return lvl
	}
}
