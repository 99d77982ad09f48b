package collect

import (
	"time"

	"leveltracker.gg/internal/asset"
	"leveltracker.gg/internal/filter"
	"leveltracker.gg/internal/rules"
)

// BuildResult is the output of one level rebuild.
type BuildResult struct {
	Level       string
	Partitioned bool
	GeneratedAt time.Time
	Assets      []asset.ID
}

// BuildLevelAssetList produces the preload asset list for one level.
//
// Standard levels expand the hard-dependency closure of the level
// package. Partitioned levels start from the level package plus the
// packages of actors passing the region and cell gates, when the rules
// allow the auto-scan. Explicit asset rules and, in inclusion mode,
// folder rules contribute additional candidates before filtering.
//
// In inclusion mode with selective rules the survivors of the first
// filter pass become seeds: their packages are re-expanded into a fresh
// closure so that everything a kept asset needs ships with it, and the
// second pass keeps only the class filter.
func (c *Collector) BuildLevelAssetList(levelPkg string, r *rules.LevelRules) BuildResult {
	partitioned := IsPartitioned(c.idx, levelPkg)

	roots := []string{levelPkg}
	if partitioned && allowAutoScan(r) {
		roots = append(roots, c.ActorPackages(levelPkg, r)...)
	}
	candidates := c.CollectPackages(c.Closure(roots), r)
	candidates = c.appendRuleCandidates(candidates, r)

	final := r
	if partitioned {
		final = stripSpatialRules(r)
	}
	assets := filter.AssetsWithClasses(candidates, final, c.classOf)

	if needsReexpand(final) {
		assets = c.reexpand(assets, final)
	}

	if c.log != nil {
		c.log.Printf("rebuilt %s: %d assets (partitioned=%v)", levelPkg, len(assets), partitioned)
	}
	return BuildResult{
		Level:       levelPkg,
		Partitioned: partitioned,
		GeneratedAt: time.Now().UTC(),
		Assets:      assets,
	}
}

// appendRuleCandidates adds assets named by explicit rules. Asset rules
// always contribute their targets; folder rules enumerate their subtree
// only in inclusion mode, where they select content beyond the closure.
func (c *Collector) appendRuleCandidates(dst []asset.ID, r *rules.LevelRules) []asset.ID {
	if r == nil {
		return dst
	}
	for _, rule := range r.AssetRules {
		if rule.Valid() {
			dst = append(dst, rule)
		}
	}
	if !r.UseExclusionMode {
		for _, folder := range r.FolderRules {
			norm := asset.NormalizeFolder(folder)
			for _, info := range c.idx.AssetsUnderPath(norm) {
				if !info.ID.Valid() || info.EditorOnly || asset.IsWorldClass(info.Class) {
					continue
				}
				if !filter.IncludeByClass(info.Class, r) {
					continue
				}
				dst = append(dst, info.ID)
			}
		}
	}
	return dst
}

func needsReexpand(r *rules.LevelRules) bool {
	return r != nil && !r.UseExclusionMode && r.HasAssetOrFolderRule()
}

// reexpand treats the filtered survivors as seeds, expands the closure
// of their packages, and keeps only the class filter for the second
// pass.
func (c *Collector) reexpand(seeds []asset.ID, r *rules.LevelRules) []asset.ID {
	var roots []string
	seen := make(map[string]bool, len(seeds))
	for _, id := range seeds {
		pkg := id.Package()
		if pkg == "" || seen[pkg] {
			continue
		}
		seen[pkg] = true
		roots = append(roots, pkg)
	}
	expanded := c.CollectPackages(c.Closure(roots), r)

	second := *r
	second.AssetRules = nil
	second.FolderRules = nil
	second.RegionRules = nil
	second.CellRules = nil
	second.MatchExpr = ""
	second.UseExclusionMode = false
	return filter.AssetsWithClasses(expanded, &second, c.classOf)
}

// stripSpatialRules removes region and cell predicates, which apply
// during the partition actor scan rather than in the asset filter.
func stripSpatialRules(r *rules.LevelRules) *rules.LevelRules {
	if r == nil || (len(r.RegionRules) == 0 && len(r.CellRules) == 0) {
		return r
	}
	out := *r
	out.RegionRules = nil
	out.CellRules = nil
	return &out
}

func allowAutoScan(r *rules.LevelRules) bool {
	return r != nil && r.AllowPartitionAutoScan
}
