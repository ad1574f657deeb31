package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

// Level controls which entries a Logger emits.
type Level int

const (
	// LevelQuiet shows only warnings and errors
	LevelQuiet Level = iota
	// LevelNormal shows progress messages (default)
	LevelNormal
	// LevelVerbose adds subprocess output and resolved commands
	LevelVerbose
	// LevelDebug shows everything
	LevelDebug
)

// ParseLevel converts a verbosity name to a Level. Unknown names map to LevelNormal.
func ParseLevel(level string) Level {
	switch level {
	case "quiet":
		return LevelQuiet
	case "verbose":
		return LevelVerbose
	case "debug":
		return LevelDebug
	default:
		return LevelNormal
	}
}

var (
	// Global session ID for the current execution
	sessionID     string
	sessionIDOnce sync.Once
)

// getSessionID returns or creates the session ID for this execution
func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// GetSessionID returns the current global session ID
func GetSessionID() string {
	return getSessionID()
}

// sink is the output shared by a logger and every logger derived from it with Named.
type sink struct {
	mu      sync.Mutex
	out     io.Writer
	file    *os.File
	logPath string
	styles  map[string]lipgloss.Style

	closeOnce sync.Once
}

// Logger writes leveled, component-tagged entries to the console and,
// optionally, to a log file. Entries look like:
//
//	[2006-01-02 15:04:05.000] [setup] [WARN] python not found, skipping browser setup
//
// Level tags are colored when out is a terminal; the file always gets plain text.
type Logger struct {
	component string
	level     Level
	sink      *sink
}

// New creates a logger for component writing to out at the given level.
// A nil out defaults to os.Stderr.
func New(component string, level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}

	r := lipgloss.NewRenderer(out)
	styles := map[string]lipgloss.Style{
		"DEBUG": r.NewStyle().Foreground(lipgloss.Color("8")),
		"INFO":  r.NewStyle().Foreground(lipgloss.Color("6")),
		"WARN":  r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		"ERROR": r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}

	return &Logger{
		component: component,
		level:     level,
		sink: &sink{
			out:    out,
			styles: styles,
		},
	}
}

// Named returns a logger for another component that shares this logger's
// outputs and level.
func (l *Logger) Named(component string) *Logger {
	return &Logger{
		component: component,
		level:     l.level,
		sink:      l.sink,
	}
}

// OpenFile mirrors every entry to path, opened in append mode so several runs
// of the same container accumulate in one file.
func (l *Logger) OpenFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file != nil {
		l.sink.file.Close()
	}
	l.sink.file = file
	l.sink.logPath = path
	return nil
}

// Enabled reports whether entries at level are emitted.
func (l *Logger) Enabled(level Level) bool {
	return l.level >= level
}

func (l *Logger) write(tag, format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	styled := tag
	if style, ok := l.sink.styles[tag]; ok {
		styled = style.Render(tag)
	}
	fmt.Fprintf(l.sink.out, "[%s] [%s] [%s] %s\n", timestamp, l.component, styled, message)

	if l.sink.file != nil {
		fmt.Fprintf(l.sink.file, "[%s] [%s] [%s] [%s] %s\n", timestamp, getSessionID(), l.component, tag, message)
	}
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.Enabled(LevelDebug) {
		l.write("DEBUG", format, v...)
	}
}

// Verbosef logs detail shown only in verbose mode
func (l *Logger) Verbosef(format string, v ...interface{}) {
	if l.Enabled(LevelVerbose) {
		l.write("INFO", format, v...)
	}
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	if l.Enabled(LevelNormal) {
		l.write("INFO", format, v...)
	}
}

// Warnf logs a warning. Warnings are never filtered.
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.write("WARN", format, v...)
}

// Errorf logs an error. Errors are never filtered.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.write("ERROR", format, v...)
}

// LogPath returns the path of the mirrored log file, or "" if there is none.
func (l *Logger) LogPath() string {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.logPath
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.sink.closeOnce.Do(func() {
		l.sink.mu.Lock()
		defer l.sink.mu.Unlock()
		if l.sink.file != nil {
			err = l.sink.file.Close()
			l.sink.file = nil
		}
	})
	return err
}

// Writer returns a writer that logs each complete line written to it at level.
// Close flushes a trailing partial line.
func (l *Logger) Writer(level Level) io.WriteCloser {
	return &lineWriter{logger: l, level: level}
}

type lineWriter struct {
	logger *Logger
	level  Level
	mu     sync.Mutex
	buf    []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(string(bytes.TrimRight(w.buf[:i], "\r")))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) > 0 {
		w.emit(string(w.buf))
		w.buf = nil
	}
	return nil
}

func (w *lineWriter) emit(line string) {
	if line == "" || !w.logger.Enabled(w.level) {
		return
	}
	tag := "INFO"
	if w.level >= LevelDebug {
		tag = "DEBUG"
	}
	w.logger.write(tag, "%s", line)
}
