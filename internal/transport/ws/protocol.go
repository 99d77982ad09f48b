package ws

import "leveltracker.gg/internal/session"

// Command types accepted from clients.
const (
	TypeOpenLevel    = "open_level"
	TypeLoadInstance = "load_instance"
	TypeUnload       = "unload"
	TypeUnloadAll    = "unload_all"
)

// Event types sent to clients.
const (
	TypeProgress = "progress"
	TypeLoaded   = "loaded"
	TypeError    = "error"
)

// Command is one client request.
type Command struct {
	Type    string `json:"type"`
	Level   string `json:"level,omitempty"`
	Preload *bool  `json:"preload,omitempty"`

	Transform     session.Transform `json:"transform,omitempty"`
	ClassOverride string            `json:"class_override,omitempty"`
	Temp          bool              `json:"temp,omitempty"`
}

// PreloadEnabled defaults to true when the client omits the flag.
func (c Command) PreloadEnabled() bool {
	return c.Preload == nil || *c.Preload
}

// ProgressMsg mirrors a session progress event onto the wire.
type ProgressMsg struct {
	Type     string  `json:"type"`
	Level    string  `json:"level"`
	Progress float64 `json:"progress"`
	Loaded   int     `json:"loaded"`
	Total    int     `json:"total"`
}

// LoadedMsg mirrors a level-loaded event.
type LoadedMsg struct {
	Type  string `json:"type"`
	Level string `json:"level"`
}

// ErrorMsg reports a rejected command to the sender only.
type ErrorMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
