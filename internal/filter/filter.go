// Package filter implements the pure asset selection engine: given
// candidate identifiers and a rule set, it decides inclusion or
// exclusion. Nothing here touches the asset index or the session layer.
package filter

import (
	"strings"

	"leveltracker.gg/internal/asset"
	"leveltracker.gg/internal/rules"
)

// predicates holds the prepared membership tests for one rule set.
type predicates struct {
	assetPackages map[string]struct{}
	folders       []string
	regions       []string
	cells         []string
	match         rules.MatchProgram
}

func buildPredicates(r *rules.LevelRules) predicates {
	p := predicates{assetPackages: make(map[string]struct{}, len(r.AssetRules))}
	for _, rule := range r.AssetRules {
		if pkg := rule.Package(); pkg != "" {
			p.assetPackages[pkg] = struct{}{}
		}
	}
	for _, f := range r.FolderRules {
		if n := asset.NormalizeFolder(f); n != "" {
			p.folders = append(p.folders, n)
		}
	}
	for _, reg := range r.RegionRules {
		if reg = strings.TrimSpace(reg); reg != "" {
			p.regions = append(p.regions, reg)
		}
	}
	for _, cell := range r.CellRules {
		if cell = strings.TrimSpace(cell); cell != "" {
			p.cells = append(p.cells, cell)
		}
	}
	if r.MatchExpr != "" {
		// Compile errors surface at config load; here a broken
		// expression degrades to an empty predicate category.
		if prog, err := rules.CompileMatchExpr(r.MatchExpr); err == nil {
			p.match = prog
		}
	}
	return p
}

func (p *predicates) matches(id asset.ID, classOf func(asset.ID) string) bool {
	pkg := id.Package()
	if _, ok := p.assetPackages[pkg]; ok {
		return true
	}
	for _, f := range p.folders {
		if asset.FolderContains(f, pkg) {
			return true
		}
	}
	for _, cell := range p.cells {
		if strings.Contains(pkg, cell) {
			return true
		}
	}
	for _, reg := range p.regions {
		if strings.Contains(pkg, reg) {
			return true
		}
	}
	if !p.match.Empty() {
		category := ""
		if classOf != nil {
			category = asset.ResolveCategory(classOf(id)).String()
		}
		if p.match.Match(rules.ExprEnv{
			Path:     string(id),
			Package:  pkg,
			Object:   id.ObjectName(),
			Category: category,
		}) {
			return true
		}
	}
	return false
}

// Assets filters candidate identifiers by the rule set. A nil rule set is
// the identity filter modulo validity and deduplication. In inclusion
// mode with no asset/folder rules all candidates are kept: region and
// cell scoping, if any, is applied upstream during partition actor
// collection, and an empty include list exists to express "no
// filtering", not "include nothing".
func Assets(candidates []asset.ID, r *rules.LevelRules) []asset.ID {
	return AssetsWithClasses(candidates, r, nil)
}

// AssetsWithClasses is Assets with an optional class lookup used by the
// match expression's Category field. classOf may be nil.
func AssetsWithClasses(candidates []asset.ID, r *rules.LevelRules, classOf func(asset.ID) string) []asset.ID {
	if r == nil {
		return asset.Dedupe(candidates)
	}
	if !r.UseExclusionMode && !r.HasAssetOrFolderRule() {
		return asset.Dedupe(candidates)
	}

	p := buildPredicates(r)
	out := make([]asset.ID, 0, len(candidates))
	seen := make(map[asset.ID]struct{}, len(candidates))
	for _, id := range candidates {
		if !id.Valid() {
			continue
		}
		matched := p.matches(id, classOf)
		include := matched
		if r.UseExclusionMode {
			include = !matched
		}
		if !include {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
