package collect

import (
	"log"

	"leveltracker.gg/internal/asset"
	"leveltracker.gg/internal/filter"
	"leveltracker.gg/internal/rules"
)

// Collector walks hard-dependency closures over an AssetIndex.
type Collector struct {
	idx AssetIndex
	log *log.Logger
}

func NewCollector(idx AssetIndex, logger *log.Logger) *Collector {
	return &Collector{idx: idx, log: logger}
}

// Closure returns the package closure reachable from roots over hard
// dependencies, breadth-first, engine namespaces excluded. The roots
// themselves are included when they are project packages.
func (c *Collector) Closure(roots []string) []string {
	seen := make(map[string]bool, len(roots))
	var queue, out []string
	for _, root := range roots {
		if root == "" || asset.IsEnginePackage(root) || seen[root] {
			continue
		}
		seen[root] = true
		queue = append(queue, root)
	}
	for len(queue) > 0 {
		pkg := queue[0]
		queue = queue[1:]
		out = append(out, pkg)
		for _, dep := range c.idx.HardDependencies(pkg) {
			if dep == "" || asset.IsEnginePackage(dep) || seen[dep] {
				continue
			}
			seen[dep] = true
			queue = append(queue, dep)
		}
	}
	return out
}

// AppendAssets appends the preloadable assets of pkg onto dst.
// World-class assets and editor-only assets are skipped and the class
// filter is applied. A package with no declared assets at all yields
// one synthetic identifier, and only while the class filter is
// pass-through, since a bare package gives the filter nothing to
// judge.
func (c *Collector) AppendAssets(dst []asset.ID, pkg string, r *rules.LevelRules) []asset.ID {
	infos := c.idx.AssetsInPackage(pkg)
	if len(infos) == 0 {
		if classPassThrough(r) {
			dst = append(dst, asset.FromPackage(pkg))
		}
		return dst
	}
	for _, info := range infos {
		if !info.ID.Valid() {
			continue
		}
		if info.EditorOnly || asset.IsWorldClass(info.Class) {
			continue
		}
		if !filter.IncludeByClass(info.Class, r) {
			continue
		}
		dst = append(dst, info.ID)
	}
	return dst
}

// CollectPackages maps a package list to its assets in package order.
func (c *Collector) CollectPackages(pkgs []string, r *rules.LevelRules) []asset.ID {
	var out []asset.ID
	for _, pkg := range pkgs {
		out = c.AppendAssets(out, pkg, r)
	}
	return out
}

func classPassThrough(r *rules.LevelRules) bool {
	return r == nil || r.ClassFilter.PassThrough()
}

// classOf looks up the declared class of an asset through the index,
// for match-expression category resolution.
func (c *Collector) classOf(id asset.ID) string {
	for _, info := range c.idx.AssetsInPackage(id.Package()) {
		if info.ID == id {
			return info.Class
		}
	}
	return ""
}
