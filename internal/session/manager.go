// Package session tracks per-level preload sessions: reading the
// preload database, driving the async loader chunk by chunk,
// broadcasting progress, and handing completed sessions to the engine
// for activation.
//
// The manager holds no locks. Every operation and every callback runs
// on the single context that owns the session table; the loader and
// activator deliver their callbacks back on that context.
package session

import (
	"log"
	"math"

	"leveltracker.gg/internal/asset"
	"leveltracker.gg/internal/preloaddb"
)

// EntrySource looks up preload database entries. A nil source means
// the database is unavailable and every preload degrades.
type EntrySource interface {
	Find(level string) (preloaddb.Entry, bool)
}

// Manager owns the session table.
type Manager struct {
	log       *log.Logger
	loader    Loader
	activator Activator
	db        EntrySource

	sessions map[string]*LevelState
	released map[Handle]bool

	progressSubs []func(ProgressEvent)
	loadedSubs   []func(LoadedEvent)
	unloadedSubs []func(UnloadedEvent)
}

func NewManager(logger *log.Logger, loader Loader, activator Activator, db EntrySource) *Manager {
	return &Manager{
		log:       logger,
		loader:    loader,
		activator: activator,
		db:        db,
		sessions:  make(map[string]*LevelState),
		released:  make(map[Handle]bool),
	}
}

// Sessions reports the number of tracked sessions.
func (m *Manager) Sessions() int { return len(m.sessions) }

// Session returns the tracked state for a level, if any.
func (m *Manager) Session(level string) (*LevelState, bool) {
	st, ok := m.sessions[level]
	return st, ok
}

// OpenLevel preloads a level and then asks the engine to open it. The
// load method is partitioned when the entry says so, standard
// otherwise.
func (m *Manager) OpenLevel(level string, preload bool) bool {
	method := MethodStandard
	if e, ok := m.findEntry(level); ok && e.Partitioned {
		method = MethodPartitioned
	}
	return m.requestLoad(level, method, InstanceParams{}, preload)
}

// LoadLevelInstance preloads a level and then instantiates it as a
// streamed level with the given placement.
func (m *Manager) LoadLevelInstance(level string, p InstanceParams, preload bool) bool {
	return m.requestLoad(level, MethodStreamed, p, preload)
}

func (m *Manager) requestLoad(level string, method LoadMethod, p InstanceParams, preload bool) bool {
	if !asset.FromPackage(level).Valid() {
		m.log.Printf("rejecting load: invalid level %q", level)
		return false
	}
	if _, exists := m.sessions[level]; exists {
		m.log.Printf("rejecting load: session already exists for %s", level)
		return false
	}

	st := &LevelState{Level: level, Method: method, Phase: PhasePreloading, params: p}
	m.sessions[level] = st

	if !preload {
		m.activate(st)
		return true
	}

	entry, ok := m.findEntry(level)
	if !ok {
		m.log.Printf("no preload entry for %s, degrading to single-unit", level)
		m.degrade(st)
		return true
	}

	assets := asset.Dedupe(entry.Assets)
	st.Total = len(assets)
	if st.Total == 0 {
		m.finishPreload(st)
		return true
	}

	if entry.Rules.UseChunkedPreload {
		st.chunks = splitChunks(assets, entry.Rules.EffectiveChunkSize())
	} else {
		st.chunks = [][]asset.ID{assets}
	}
	m.requestChunk(st)
	return true
}

func (m *Manager) findEntry(level string) (preloaddb.Entry, bool) {
	if m.db == nil {
		return preloaddb.Entry{}, false
	}
	return m.db.Find(level)
}

// degrade reports a single synthetic completed unit. Callers observing
// only the events cannot tell this apart from an empty preload set.
func (m *Manager) degrade(st *LevelState) {
	st.Total = 1
	st.Loaded = 1
	m.broadcastProgress(ProgressEvent{Level: st.Level, Progress: 1, Loaded: 1, Total: 1})
	m.activate(st)
}

// requestChunk issues the load for the current chunk. Handle failure
// is non-fatal: the remaining work is reported complete and activation
// proceeds with cold assets.
func (m *Manager) requestChunk(st *LevelState) {
	chunk := st.chunks[st.chunkIndex]
	h, err := m.loader.RequestLoad(chunk, func() { m.onChunkComplete(st) })
	if err != nil || h == nil {
		m.log.Printf("loader refused chunk %d/%d for %s: %v", st.chunkIndex+1, len(st.chunks), st.Level, err)
		m.finishPreload(st)
		return
	}
	st.handle = h
	st.chunkHandles = append(st.chunkHandles, h)
	h.BindProgress(func(p float64) { m.onChunkProgress(st, p) })
}

func (m *Manager) onChunkProgress(st *LevelState, p float64) {
	if st.done || st.Phase != PhasePreloading {
		return
	}
	size := len(st.chunks[st.chunkIndex])
	loaded := st.chunkBase + int(math.Round(p*float64(size)))
	if loaded < 0 {
		loaded = 0
	}
	if loaded > st.Total {
		loaded = st.Total
	}
	st.Loaded = loaded
	m.broadcastProgress(ProgressEvent{
		Level:    st.Level,
		Progress: float64(loaded) / float64(st.Total),
		Loaded:   loaded,
		Total:    st.Total,
	})
}

func (m *Manager) onChunkComplete(st *LevelState) {
	if st.done || st.Phase != PhasePreloading {
		return
	}
	st.chunkBase += len(st.chunks[st.chunkIndex])
	if st.chunkIndex+1 < len(st.chunks) {
		st.Loaded = st.chunkBase
		m.broadcastProgress(ProgressEvent{
			Level:    st.Level,
			Progress: float64(st.Loaded) / float64(st.Total),
			Loaded:   st.Loaded,
			Total:    st.Total,
		})
		m.releaseHandle(st.handle)
		st.handle = nil
		st.chunkIndex++
		m.requestChunk(st)
		return
	}
	m.finishPreload(st)
}

// finishPreload marks the whole set loaded, broadcasts the final
// progress event and moves on to activation. Progress for an empty set
// is 1.0 by definition.
func (m *Manager) finishPreload(st *LevelState) {
	st.Loaded = st.Total
	m.broadcastProgress(ProgressEvent{
		Level:    st.Level,
		Progress: 1,
		Loaded:   st.Loaded,
		Total:    st.Total,
	})
	m.activate(st)
}

func (m *Manager) activate(st *LevelState) {
	st.Phase = PhaseActivating

	if st.Method == MethodStreamed {
		inst, ok := m.activator.InstantiateStreamed(st.Level, st.params)
		if !ok {
			m.log.Printf("engine refused streamed instance for %s", st.Level)
			return
		}
		st.instance = inst
		st.Phase = PhaseResident
		inst.OnShown(func() { m.onShown() })
		return
	}

	if err := m.activator.OpenLevel(st.Level); err != nil {
		m.log.Printf("engine refused open for %s: %v", st.Level, err)
		return
	}
	if n, ok := m.activator.(OpenNotifier); ok {
		if n.OnLevelOpened(st.Level, func() { m.finishOpened(st) }) {
			return
		}
	}
	m.finishOpened(st)
}

// finishOpened completes a non-streamed session after its open request
// has gone through.
func (m *Manager) finishOpened(st *LevelState) {
	if st.done {
		return
	}
	st.done = true
	m.releaseSessionHandles(st)
	delete(m.sessions, st.Level)
	m.broadcastLoaded(LoadedEvent{Level: st.Level})
}

// onShown sweeps every streamed session. One engine notification may
// cover several instances, so each session re-checks its own
// visibility.
func (m *Manager) onShown() {
	for _, st := range m.sessions {
		if st.Method != MethodStreamed || st.instance == nil || st.done {
			continue
		}
		if !st.instance.Shown() {
			continue
		}
		st.done = true
		m.cancelSessionHandles(st)
		m.releaseSessionHandles(st)
		delete(m.sessions, st.Level)
		m.broadcastLoaded(LoadedEvent{Level: st.Level})
	}
}

// UnloadLevelInstance tears down one session: the streamed instance is
// asked to unload and outstanding handles are cancelled and released.
func (m *Manager) UnloadLevelInstance(level string) bool {
	st, ok := m.sessions[level]
	if !ok {
		m.log.Printf("unload: no session for %s", level)
		return false
	}
	m.teardown(st)
	delete(m.sessions, level)
	return true
}

// UnloadAll tears down every tracked session and clears the table.
func (m *Manager) UnloadAll() {
	for level, st := range m.sessions {
		m.teardown(st)
		delete(m.sessions, level)
	}
}

func (m *Manager) teardown(st *LevelState) {
	st.done = true
	if st.instance != nil {
		st.instance.RequestUnload()
		st.instance = nil
	}
	m.cancelSessionHandles(st)
	m.releaseSessionHandles(st)
	m.broadcastUnloaded(UnloadedEvent{Level: st.Level})
}

func (m *Manager) cancelSessionHandles(st *LevelState) {
	cancelled := make(map[Handle]bool, len(st.chunkHandles)+1)
	for _, h := range append(st.chunkHandles, st.handle) {
		if h == nil || cancelled[h] || m.released[h] {
			continue
		}
		cancelled[h] = true
		h.Cancel()
	}
}

// releaseSessionHandles releases the monolithic handle and every chunk
// handle. The two may alias the same handle, so releases go through a
// seen set and never happen twice. Handles belong to exactly one
// session, so their set entries are dropped once the session is done
// with them.
func (m *Manager) releaseSessionHandles(st *LevelState) {
	for _, h := range st.chunkHandles {
		m.releaseHandle(h)
	}
	m.releaseHandle(st.handle)
	for _, h := range st.chunkHandles {
		delete(m.released, h)
	}
	delete(m.released, st.handle)
	st.handle = nil
	st.chunkHandles = nil
}

func (m *Manager) releaseHandle(h Handle) {
	if h == nil || m.released[h] {
		return
	}
	m.released[h] = true
	h.Release()
}
