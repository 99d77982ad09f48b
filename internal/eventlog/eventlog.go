// Package eventlog records preload session activity as compressed
// JSONL, one file per day, for offline inspection of what a build
// actually preloaded.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"leveltracker.gg/internal/session"
)

type jsonlZstdWriter struct {
	baseDir string
	prefix  string

	mu     sync.Mutex
	curDay string
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
}

func newJSONLZstdWriter(baseDir, prefix string) *jsonlZstdWriter {
	return &jsonlZstdWriter{baseDir: baseDir, prefix: prefix}
}

func (w *jsonlZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *jsonlZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	day := time.Now().UTC().Format("2006-01-02")
	if day != w.curDay {
		if err := w.rotateLocked(day); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *jsonlZstdWriter) rotateLocked(day string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, day))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curDay = day
	return nil
}

func (w *jsonlZstdWriter) closeLocked() error {
	var err error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err
}

// Record is one logged session event.
type Record struct {
	Time     string  `json:"time"`
	Kind     string  `json:"kind"`
	Level    string  `json:"level"`
	Progress float64 `json:"progress,omitempty"`
	Loaded   int     `json:"loaded,omitempty"`
	Total    int     `json:"total,omitempty"`
	Assets   int     `json:"assets,omitempty"`
}

// SessionLogger mirrors session events into the compressed log.
type SessionLogger struct {
	w *jsonlZstdWriter
}

func NewSessionLogger(dataDir string) *SessionLogger {
	return &SessionLogger{w: newJSONLZstdWriter(filepath.Join(dataDir, "events"), "sessions")}
}

func (l *SessionLogger) Close() error { return l.w.Close() }

// Attach subscribes the logger to a manager's event streams.
func (l *SessionLogger) Attach(m *session.Manager) {
	m.SubscribeProgress(func(ev session.ProgressEvent) { _ = l.Progress(ev) })
	m.SubscribeLoaded(func(ev session.LoadedEvent) { _ = l.Loaded(ev) })
	m.SubscribeUnloaded(func(ev session.UnloadedEvent) { _ = l.Unloaded(ev.Level) })
}

func (l *SessionLogger) Progress(ev session.ProgressEvent) error {
	return l.w.Write(Record{
		Time:     now(),
		Kind:     "progress",
		Level:    ev.Level,
		Progress: ev.Progress,
		Loaded:   ev.Loaded,
		Total:    ev.Total,
	})
}

func (l *SessionLogger) Loaded(ev session.LoadedEvent) error {
	return l.w.Write(Record{Time: now(), Kind: "loaded", Level: ev.Level})
}

func (l *SessionLogger) Unloaded(level string) error {
	return l.w.Write(Record{Time: now(), Kind: "unloaded", Level: level})
}

func (l *SessionLogger) Rebuilt(level string, assets int) error {
	return l.w.Write(Record{Time: now(), Kind: "rebuilt", Level: level, Assets: assets})
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }
