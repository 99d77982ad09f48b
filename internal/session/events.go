package session

// ProgressEvent reports one preload progress update.
type ProgressEvent struct {
	Level    string  `json:"level"`
	Progress float64 `json:"progress"`
	Loaded   int     `json:"loaded"`
	Total    int     `json:"total"`
}

// LoadedEvent reports a level reaching its loaded terminal state.
type LoadedEvent struct {
	Level string `json:"level"`
}

// SubscribeProgress registers a progress listener. Listeners are
// invoked on the owning context, in registration order.
func (m *Manager) SubscribeProgress(fn func(ProgressEvent)) {
	if fn != nil {
		m.progressSubs = append(m.progressSubs, fn)
	}
}

// UnloadedEvent reports a session being torn down.
type UnloadedEvent struct {
	Level string `json:"level"`
}

// SubscribeLoaded registers a level-loaded listener.
func (m *Manager) SubscribeLoaded(fn func(LoadedEvent)) {
	if fn != nil {
		m.loadedSubs = append(m.loadedSubs, fn)
	}
}

// SubscribeUnloaded registers an unload listener.
func (m *Manager) SubscribeUnloaded(fn func(UnloadedEvent)) {
	if fn != nil {
		m.unloadedSubs = append(m.unloadedSubs, fn)
	}
}

func (m *Manager) broadcastProgress(ev ProgressEvent) {
	for _, fn := range m.progressSubs {
		fn(ev)
	}
}

func (m *Manager) broadcastLoaded(ev LoadedEvent) {
	for _, fn := range m.loadedSubs {
		fn(ev)
	}
}

func (m *Manager) broadcastUnloaded(ev UnloadedEvent) {
	for _, fn := range m.unloadedSubs {
		fn(ev)
	}
}
