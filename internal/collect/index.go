// Package collect walks the engine asset index to produce filtered
// preload candidate sets: hard-dependency closures for standard levels
// and region/cell-scoped actor package closures for partitioned worlds.
package collect

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"leveltracker.gg/internal/asset"
)

// AssetInfo is the per-asset metadata the index exposes.
type AssetInfo struct {
	ID         asset.ID `yaml:"id"`
	Class      string   `yaml:"class,omitempty"`
	EditorOnly bool     `yaml:"editor_only,omitempty"`
}

// ActorDesc describes one partition actor without loading it.
type ActorDesc struct {
	Path    asset.ID `yaml:"path"`
	Package string   `yaml:"package"`
	Regions []string `yaml:"regions,omitempty"`
}

// AssetIndex is the read-only view of the engine's asset/dependency
// registry the collector consumes.
type AssetIndex interface {
	// HardDependencies lists package paths the given package requires at
	// load time.
	HardDependencies(pkg string) []string
	// AssetsInPackage enumerates declared assets of a package. An empty
	// result for an existing package triggers the synthetic-identifier
	// fallback.
	AssetsInPackage(pkg string) []AssetInfo
	// AssetsUnderPath enumerates assets of every package under a folder
	// prefix, recursively.
	AssetsUnderPath(folder string) []AssetInfo
	// AssetTags returns registry tags for an asset identifier, with a
	// presence flag.
	AssetTags(id asset.ID) ([]string, bool)
	// PartitionActors enumerates actor descriptors of a partitioned
	// level. Empty for standard levels.
	PartitionActors(levelPkg string) []ActorDesc
	// PartitionRegions lists the canonical region names a partitioned
	// level declares.
	PartitionRegions(levelPkg string) []string
}

// PartitionTag marks a level asset as a partitioned world in its
// registry tags.
const PartitionTag = "WorldPartition"

// IsPartitioned reports whether the level's asset carries the partition
// tag.
func IsPartitioned(idx AssetIndex, levelPkg string) bool {
	tags, ok := idx.AssetTags(asset.FromPackage(levelPkg))
	if !ok {
		return false
	}
	for _, tag := range tags {
		if tag == PartitionTag {
			return true
		}
	}
	return false
}

// MemoryIndex is an in-process AssetIndex used by tests and by lptool,
// which loads it from an index dump exported alongside the project.
type MemoryIndex struct {
	deps    map[string][]string
	assets  map[string][]AssetInfo
	tags    map[asset.ID][]string
	actors  map[string][]ActorDesc
	regions map[string][]string
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		deps:    make(map[string][]string),
		assets:  make(map[string][]AssetInfo),
		tags:    make(map[asset.ID][]string),
		actors:  make(map[string][]ActorDesc),
		regions: make(map[string][]string),
	}
}

// AddPackage registers a package and its assets, creating the package
// even when it has no declared assets.
func (m *MemoryIndex) AddPackage(pkg string, assets ...AssetInfo) {
	m.assets[pkg] = append(m.assets[pkg], assets...)
}

// AddDependency records a hard dependency edge.
func (m *MemoryIndex) AddDependency(pkg string, deps ...string) {
	m.deps[pkg] = append(m.deps[pkg], deps...)
}

// SetTags replaces the registry tags for an asset.
func (m *MemoryIndex) SetTags(id asset.ID, tags ...string) {
	m.tags[id] = tags
}

// AddPartitionActor registers a partition actor descriptor for a level.
func (m *MemoryIndex) AddPartitionActor(levelPkg string, d ActorDesc) {
	m.actors[levelPkg] = append(m.actors[levelPkg], d)
}

// SetPartitionRegions declares the canonical region names of a level.
func (m *MemoryIndex) SetPartitionRegions(levelPkg string, regions ...string) {
	m.regions[levelPkg] = regions
}

func (m *MemoryIndex) HardDependencies(pkg string) []string { return m.deps[pkg] }
func (m *MemoryIndex) AssetsInPackage(pkg string) []AssetInfo {
	return m.assets[pkg]
}

func (m *MemoryIndex) AssetsUnderPath(folder string) []AssetInfo {
	var pkgs []string
	for pkg := range m.assets {
		if asset.FolderContains(folder, pkg) {
			pkgs = append(pkgs, pkg)
		}
	}
	sort.Strings(pkgs)
	var out []AssetInfo
	for _, pkg := range pkgs {
		out = append(out, m.assets[pkg]...)
	}
	return out
}

func (m *MemoryIndex) AssetTags(id asset.ID) ([]string, bool) {
	tags, ok := m.tags[id]
	if ok {
		return tags, true
	}
	// Any asset declared in a known package exists, tagless.
	for _, infos := range m.assets {
		for _, info := range infos {
			if info.ID == id {
				return nil, true
			}
		}
	}
	return nil, false
}

func (m *MemoryIndex) PartitionActors(levelPkg string) []ActorDesc { return m.actors[levelPkg] }
func (m *MemoryIndex) PartitionRegions(levelPkg string) []string   { return m.regions[levelPkg] }

// indexDump is the YAML shape of an exported asset index.
type indexDump struct {
	Packages []struct {
		Name     string      `yaml:"name"`
		Assets   []AssetInfo `yaml:"assets,omitempty"`
		HardDeps []string    `yaml:"hard_deps,omitempty"`
	} `yaml:"packages"`
	Tags map[string][]string `yaml:"tags,omitempty"`
	Partitions []struct {
		Level   string      `yaml:"level"`
		Regions []string    `yaml:"regions,omitempty"`
		Actors  []ActorDesc `yaml:"actors,omitempty"`
	} `yaml:"partitions,omitempty"`
}

// LoadIndex reads an asset index dump from a YAML file.
func LoadIndex(path string) (*MemoryIndex, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var dump indexDump
	if err := yaml.Unmarshal(raw, &dump); err != nil {
		return nil, fmt.Errorf("asset index %s: %w", path, err)
	}

	idx := NewMemoryIndex()
	for _, p := range dump.Packages {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		idx.AddPackage(name, p.Assets...)
		idx.AddDependency(name, p.HardDeps...)
	}
	for id, tags := range dump.Tags {
		idx.SetTags(asset.ID(id), tags...)
	}
	for _, part := range dump.Partitions {
		idx.SetPartitionRegions(part.Level, part.Regions...)
		for _, a := range part.Actors {
			idx.AddPartitionActor(part.Level, a)
		}
		idx.SetTags(asset.FromPackage(part.Level), PartitionTag)
	}
	return idx, nil
}
