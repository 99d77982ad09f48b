package session

import "leveltracker.gg/internal/asset"

// LoadMethod says how a level is brought in once its preload finishes.
type LoadMethod int

const (
	MethodStandard LoadMethod = iota
	MethodPartitioned
	MethodStreamed
)

func (m LoadMethod) String() string {
	switch m {
	case MethodStandard:
		return "standard"
	case MethodPartitioned:
		return "partitioned"
	case MethodStreamed:
		return "streamed"
	default:
		return "unknown"
	}
}

// Phase is a session's position in its lifecycle.
type Phase int

const (
	PhasePreloading Phase = iota
	PhaseActivating
	PhaseResident
)

func (p Phase) String() string {
	switch p {
	case PhasePreloading:
		return "preloading"
	case PhaseActivating:
		return "activating"
	case PhaseResident:
		return "resident"
	default:
		return "unknown"
	}
}

// LevelState is one tracked session. All mutation happens on the
// owning context.
type LevelState struct {
	Level  string
	Method LoadMethod
	Phase  Phase

	Total  int
	Loaded int

	chunks     [][]asset.ID
	chunkIndex int
	chunkBase  int

	handle       Handle
	chunkHandles []Handle

	params   InstanceParams
	instance StreamedInstance
	done     bool
}

// splitChunks partitions assets into consecutive chunks of at most
// size. The last chunk may be shorter.
func splitChunks(assets []asset.ID, size int) [][]asset.ID {
	if size < 1 {
		size = 1
	}
	var out [][]asset.ID
	for len(assets) > size {
		out = append(out, assets[:size])
		assets = assets[size:]
	}
	if len(assets) > 0 {
		out = append(out, assets)
	}
	return out
}
