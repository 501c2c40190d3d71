package logx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Format selects how a sink renders records.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Sink receives fully formed log records from a Router. Emit must be
// safe for concurrent use and must write each record atomically with
// respect to other records on the same sink.
type Sink interface {
	Emit(ctx context.Context, r slog.Record) error
	Close() error
}

func newHandler(w io.Writer, format Format) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       LevelDebug,
		ReplaceAttr: replaceLevel,
	}
	if format == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// WriterSink renders records to an io.Writer using a text or JSON slog
// handler. A mutex serializes handler calls so records never interleave.
type WriterSink struct {
	mu sync.Mutex
	h  slog.Handler
}

// NewWriterSink creates a sink over w. The writer is not closed by
// Close; ownership stays with the caller.
func NewWriterSink(w io.Writer, format Format) *WriterSink {
	return &WriterSink{h: newHandler(w, format)}
}

func (s *WriterSink) Emit(ctx context.Context, r slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.Handle(ctx, r)
}

func (s *WriterSink) Close() error { return nil }

// FileSink appends records to a log file. It also covers the
// maintenance operations on the file: truncating it in place and
// snapshotting its contents to another path.
type FileSink struct {
	mu   sync.Mutex
	f    *os.File
	h    slog.Handler
	path string
}

// NewFileSink opens (or creates) the file at path in append mode.
func NewFileSink(path string, format Format) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logx: open log file: %w", err)
	}
	return &FileSink{f: f, h: newHandler(f, format), path: path}, nil
}

// Path returns the file path the sink writes to.
func (s *FileSink) Path() string { return s.path }

func (s *FileSink) Emit(ctx context.Context, r slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.Handle(ctx, r)
}

// Truncate discards everything written to the file so far.
func (s *FileSink) Truncate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.f.Truncate(0); err != nil {
		return fmt.Errorf("logx: truncate log file: %w", err)
	}
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("logx: rewind log file: %w", err)
	}
	return nil
}

// SnapshotTo copies the current file contents to dst and then truncates
// the live log, so dst holds everything logged up to the call.
func (s *FileSink) SnapshotTo(dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("logx: sync log file: %w", err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("logx: read log file: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("logx: write snapshot: %w", err)
	}
	if err := s.f.Truncate(0); err != nil {
		return fmt.Errorf("logx: truncate log file: %w", err)
	}
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("logx: rewind log file: %w", err)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}

// Entry is a decoded record retained by a MemorySink.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
	Attrs   map[string]any
}

// MemorySink retains records in memory for later inspection. It backs
// the in-memory log option and doubles as the capture sink in tests.
type MemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(_ context.Context, r slog.Record) error {
	e := Entry{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   make(map[string]any, r.NumAttrs()),
	}
	r.Attrs(func(a slog.Attr) bool {
		e.Attrs[a.Key] = a.Value.Any()
		return true
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

// Entries returns a copy of all retained entries.
func (s *MemorySink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clear drops all retained entries.
func (s *MemorySink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

func (s *MemorySink) Close() error { return nil }

// CallbackSink invokes a user function with each formatted log line.
type CallbackSink struct {
	mu  sync.Mutex
	fn  func(line string)
	buf bytes.Buffer
	h   slog.Handler
}

func NewCallbackSink(fn func(line string), format Format) *CallbackSink {
	s := &CallbackSink{fn: fn}
	s.h = newHandler(&s.buf, format)
	return s
}

func (s *CallbackSink) Emit(ctx context.Context, r slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Reset()
	if err := s.h.Handle(ctx, r); err != nil {
		return err
	}
	s.fn(string(bytes.TrimRight(s.buf.Bytes(), "\n")))
	return nil
}

func (s *CallbackSink) Close() error { return nil }
