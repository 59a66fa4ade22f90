// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// EnvLevel names the variable holding the log level.
const EnvLevel = "TFDELTA_LOG"

const tracePrefix = "TRACE: "

var (
	traceEnabled bool

	levels = map[string]log.Level{
		"trace": log.DebugLevel,
		"debug": log.DebugLevel,
		"info":  log.InfoLevel,
		"warn":  log.WarnLevel,
		"error": log.ErrorLevel,
		"fatal": log.FatalLevel,
	}

	letters = map[log.Level]string{
		log.DebugLevel: "D",
		log.InfoLevel:  "I",
		log.WarnLevel:  "W",
		log.ErrorLevel: "E",
		log.FatalLevel: "F",
	}
)

// InitLogger installs CustomHandler on stderr at the level named by
// TFDELTA_LOG, error by default. stdout is left to the event stream.
func InitLogger() {
	level := strings.ToLower(os.Getenv(EnvLevel))
	traceEnabled = level == "trace"
	log.SetHandler(&CustomHandler{Writer: os.Stderr})
	log.SetLevel(ParseLevel(level))
}

// ParseLevel maps a level name onto an apex level. trace is debug with the
// trace lines let through. Anything unknown is error.
func ParseLevel(name string) log.Level {
	if l, ok := levels[strings.ToLower(name)]; ok {
		return l
	}
	return log.ErrorLevel
}

// CustomHandler writes one line per entry: "timestamp level message
// [key=value...]", with the level as a single letter.
type CustomHandler struct {
	Writer io.Writer
	mu     sync.Mutex
}

// HandleLog implements log.Handler.
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	level, message := letters[e.Level], e.Message
	if rest, ok := strings.CutPrefix(message, tracePrefix); ok {
		level, message = "T", rest
	}
	if level == "" {
		level = "?"
	}

	var line strings.Builder
	fmt.Fprintf(&line, "%s %s %s", ts.Format(time.DateTime), level, message)
	for _, name := range e.Fields.Names() {
		fmt.Fprintf(&line, " %s=%v", name, e.Fields.Get(name))
	}
	line.WriteByte('\n')

	w := h.Writer
	if w == nil {
		w = os.Stderr
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(w, line.String())
	return err
}

// Tracef logs below debug. It is a no-op unless TFDELTA_LOG=trace.
func Tracef(format string, args ...any) {
	if traceEnabled {
		log.Debug(tracePrefix + fmt.Sprintf(format, args...))
	}
}

func Debug(msg string) { log.Debug(msg) }

func Debugf(format string, args ...any) { log.Debugf(format, args...) }

func Infof(format string, args ...any) { log.Infof(format, args...) }

func Warnf(format string, args ...any) { log.Warnf(format, args...) }

func Errorf(format string, args ...any) { log.Errorf(format, args...) }

// WithError returns an entry carrying err as the "error" field.
func WithError(err error) *log.Entry { return log.WithError(err) }

// WithFields returns an entry carrying fields.
func WithFields(fields log.Fields) *log.Entry { return log.WithFields(fields) }
