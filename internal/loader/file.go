package loader

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"leveltracker.gg/internal/asset"
	"leveltracker.gg/internal/session"
)

// FileLoader warms serialized asset payloads from a content directory.
// Package path /Game/X maps to <root>/X.uasset, with an optional
// zstd-compressed sibling X.uasset.zst that is decompressed instead.
//
// Work runs on one background goroutine per request. Callbacks are
// handed to Dispatch, which must execute them on the context owning
// the session table.
type FileLoader struct {
	Root     string
	Dispatch func(func())
	Log      *log.Logger
}

type fileHandle struct {
	id     string
	assets []asset.ID

	loader     *FileLoader
	onProgress func(float64)
	onComplete func()

	progress  atomic.Uint64
	cancelled atomic.Bool
	released  atomic.Bool
}

func (l *FileLoader) RequestLoad(assets []asset.ID, onComplete func()) (session.Handle, error) {
	h := &fileHandle{
		id:         uuid.NewString(),
		assets:     assets,
		loader:     l,
		onComplete: onComplete,
	}
	go h.run()
	return h, nil
}

func (h *fileHandle) BindProgress(fn func(float64)) { h.onProgress = fn }

func (h *fileHandle) Progress() float64 {
	return float64(h.progress.Load()) / progressScale
}

func (h *fileHandle) Cancel()  { h.cancelled.Store(true) }
func (h *fileHandle) Release() { h.released.Store(true) }

const progressScale = 1 << 20

func (h *fileHandle) run() {
	total := len(h.assets)
	for i, id := range h.assets {
		if h.cancelled.Load() {
			return
		}
		if err := h.loader.warm(id); err != nil && h.loader.Log != nil {
			h.loader.Log.Printf("handle %s: warm %s: %v", h.id, id, err)
		}
		p := float64(i+1) / float64(total)
		h.progress.Store(uint64(p * progressScale))
		h.dispatch(func() {
			if h.onProgress != nil && !h.cancelled.Load() {
				h.onProgress(p)
			}
		})
	}
	h.dispatch(func() {
		if h.onComplete != nil && !h.cancelled.Load() {
			h.onComplete()
		}
	})
}

func (h *fileHandle) dispatch(fn func()) {
	if h.loader.Dispatch != nil {
		h.loader.Dispatch(fn)
		return
	}
	fn()
}

// warm reads the asset's payload end to end so the OS page cache holds
// it before the engine asks.
func (l *FileLoader) warm(id asset.ID) error {
	path := l.assetPath(id)
	if zst := path + ".zst"; fileExists(zst) {
		return warmZstd(zst)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(io.Discard, f)
	return err
}

func (l *FileLoader) assetPath(id asset.ID) string {
	pkg := strings.TrimPrefix(id.Package(), "/Game/")
	return filepath.Join(l.Root, filepath.FromSlash(pkg)+".uasset")
}

func warmZstd(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()
	_, err = io.Copy(io.Discard, dec)
	return err
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
