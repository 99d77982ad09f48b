package session

// Transform places a streamed level instance in the world.
type Transform struct {
	Position [3]float64 `json:"position" yaml:"position"`
	Rotation [3]float64 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Scale    [3]float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// InstanceParams carries the instantiation arguments of a streamed
// level session.
type InstanceParams struct {
	Transform     Transform `json:"transform" yaml:"transform"`
	ClassOverride string    `json:"class_override,omitempty" yaml:"class_override,omitempty"`
	Temp          bool      `json:"temp,omitempty" yaml:"temp,omitempty"`
}

// StreamedInstance is a live streamed level created by the engine.
type StreamedInstance interface {
	// RequestUnload asks the engine to remove the instance.
	RequestUnload()
	// OnShown registers a callback fired when the instance becomes
	// visible. The engine may fire one notification covering several
	// instances, so handlers re-check visibility per instance.
	OnShown(func())
	// Shown reports whether the instance is currently visible.
	Shown() bool
}

// Activator is the engine-facing level activation surface.
type Activator interface {
	// OpenLevel requests a full level open by package path.
	OpenLevel(levelPkg string) error
	// InstantiateStreamed creates a streamed level instance. ok=false
	// means the engine refused; there is no retry.
	InstantiateStreamed(levelPkg string, p InstanceParams) (inst StreamedInstance, ok bool)
}

// OpenNotifier is implemented by activators that can report when an
// opened level has finished its map load. When available, session
// teardown for opened levels waits for the notification instead of
// happening at request time.
type OpenNotifier interface {
	// OnLevelOpened registers a one-shot callback for the level's open
	// completing. Returns false when the notification cannot be
	// delivered, in which case the caller falls back to immediate
	// teardown.
	OnLevelOpened(levelPkg string, fn func()) bool
}
