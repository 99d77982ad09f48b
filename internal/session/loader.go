package session

import "leveltracker.gg/internal/asset"

// Handle is one in-flight async load request. Implementations may do
// their work on background goroutines, but every callback bound
// through a Handle must be delivered on the context that owns the
// session table.
type Handle interface {
	// BindProgress registers a progress callback invoked with values in
	// [0,1]. At most one callback is bound per handle.
	BindProgress(func(progress float64))
	// Progress reports the current fraction loaded.
	Progress() float64
	// Cancel tells the loader to stop in-flight work. Safe before
	// Release; never called after.
	Cancel()
	// Release frees the handle's resources and drops its asset refs.
	Release()
}

// Loader is the external async asset loader.
type Loader interface {
	// RequestLoad starts loading the assets and invokes onComplete once
	// all of them are resident. A nil handle or an error means the
	// request could not be issued; callers degrade rather than fail.
	RequestLoad(assets []asset.ID, onComplete func()) (Handle, error)
}
