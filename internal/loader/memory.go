// Package loader provides implementations of the async asset loading
// surface: an in-memory loader driven manually by tests and tooling,
// and a file loader that warms serialized asset payloads from disk.
package loader

import (
	"fmt"

	"leveltracker.gg/internal/asset"
	"leveltracker.gg/internal/session"
)

// MemoryHandle is a manually driven load handle.
type MemoryHandle struct {
	Assets []asset.ID

	progress   float64
	onProgress func(float64)
	onComplete func()

	Cancelled bool
	Released  int
	completed bool
}

func (h *MemoryHandle) BindProgress(fn func(float64)) { h.onProgress = fn }
func (h *MemoryHandle) Progress() float64             { return h.progress }
func (h *MemoryHandle) Cancel()                       { h.Cancelled = true }
func (h *MemoryHandle) Release()                      { h.Released++ }

// SetProgress advances the handle and fires the bound progress
// callback.
func (h *MemoryHandle) SetProgress(p float64) {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	h.progress = p
	if h.onProgress != nil {
		h.onProgress(p)
	}
}

// Complete fires the completion callback once.
func (h *MemoryHandle) Complete() {
	if h.completed || h.Cancelled {
		return
	}
	h.completed = true
	h.progress = 1
	if h.onComplete != nil {
		h.onComplete()
	}
}

// MemoryLoader hands out MemoryHandles and records them in request
// order. Setting Fail makes the next request refuse a handle.
type MemoryLoader struct {
	Handles []*MemoryHandle
	Fail    bool
}

func (l *MemoryLoader) RequestLoad(assets []asset.ID, onComplete func()) (session.Handle, error) {
	if l.Fail {
		return nil, fmt.Errorf("loader unavailable")
	}
	h := &MemoryHandle{Assets: assets, onComplete: onComplete}
	l.Handles = append(l.Handles, h)
	return h, nil
}

// Last returns the most recently issued handle.
func (l *MemoryLoader) Last() *MemoryHandle {
	if len(l.Handles) == 0 {
		return nil
	}
	return l.Handles[len(l.Handles)-1]
}
