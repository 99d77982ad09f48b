// Package rules holds the preload rule model: per-level filtering and
// generation rules, global defaults, and the merge between the two.
package rules

import (
	"leveltracker.gg/internal/asset"
)

// LevelRules is the filtering/generation rule set for one level.
// Collections behave as sets: duplicates carry no meaning and merge
// helpers drop them.
type LevelRules struct {
	// UseExclusionMode flips match semantics: true removes matching
	// assets, false keeps only matching assets.
	UseExclusionMode bool `yaml:"use_exclusion_mode" json:"use_exclusion_mode"`

	// AssetRules match candidates by exact package path.
	AssetRules []asset.ID `yaml:"asset_rules,omitempty" json:"asset_rules,omitempty"`

	// FolderRules match candidates whose package path has the normalized
	// folder as prefix.
	FolderRules []string `yaml:"folder_rules,omitempty" json:"folder_rules,omitempty"`

	// ClassFilter gates candidates by resolved asset category.
	ClassFilter ClassFilter `yaml:"class_filter,omitempty" json:"class_filter"`

	// MatchExpr is an optional boolean expression over candidate metadata
	// ({Path, Package, Object, Category}), acting as one more match
	// predicate alongside asset and folder rules.
	MatchExpr string `yaml:"match_expr,omitempty" json:"match_expr,omitempty"`

	// AllowPartitionAutoScan enables partition actor descriptor scans
	// during database generation for partitioned levels.
	AllowPartitionAutoScan bool `yaml:"allow_partition_auto_scan" json:"allow_partition_auto_scan"`

	// RegionRules scope partition actor collection by region name or
	// package substring.
	RegionRules []string `yaml:"region_rules,omitempty" json:"region_rules,omitempty"`

	// CellRules scope partition actor collection by package substring.
	CellRules []string `yaml:"cell_rules,omitempty" json:"cell_rules,omitempty"`

	// UseChunkedPreload splits the preload set into fixed-size chunks
	// loaded sequentially.
	UseChunkedPreload bool `yaml:"use_chunked_preload" json:"use_chunked_preload"`
	ChunkSize         int  `yaml:"chunk_size,omitempty" json:"chunk_size,omitempty"`

	// FromGlobalDefaults records that this rule set was initialized from
	// (and keeps following) the project-wide defaults.
	FromGlobalDefaults bool `yaml:"from_global_defaults,omitempty" json:"from_global_defaults,omitempty"`
}

// EffectiveChunkSize clamps the configured chunk size to a usable value.
func (r *LevelRules) EffectiveChunkSize() int {
	if r.ChunkSize < 1 {
		return 1
	}
	return r.ChunkSize
}

// HasAssetOrFolderRule reports whether any selective asset-level rule
// exists. The optional match expression counts: like asset and folder
// rules it names concrete content, unlike region/cell scoping.
func (r *LevelRules) HasAssetOrFolderRule() bool {
	if r == nil {
		return false
	}
	return len(r.AssetRules) > 0 || len(r.FolderRules) > 0 || r.MatchExpr != ""
}

// HasAnyRule reports whether any rule list carries at least one item.
func (r *LevelRules) HasAnyRule() bool {
	if r == nil {
		return false
	}
	return r.HasAssetOrFolderRule() || len(r.RegionRules) > 0 || len(r.CellRules) > 0
}
