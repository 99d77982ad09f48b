package rules

import (
	"strings"

	"leveltracker.gg/internal/asset"
)

// MergeWithGlobalDefaults folds project-wide defaults into a level rule
// set. List rules union with level entries first; scalar and mode fields
// take the global value unconditionally, so behavior flags have exactly
// one authoritative source.
func MergeWithGlobalDefaults(level, global LevelRules) LevelRules {
	merged := level
	merged.FromGlobalDefaults = true

	merged.AssetRules = mergeAssetRules(level.AssetRules, global.AssetRules)
	merged.FolderRules = mergeFolderRules(level.FolderRules, global.FolderRules)
	merged.RegionRules = mergeTokenRules(level.RegionRules, global.RegionRules)
	merged.CellRules = mergeTokenRules(level.CellRules, global.CellRules)

	merged.UseExclusionMode = global.UseExclusionMode
	merged.AllowPartitionAutoScan = global.AllowPartitionAutoScan
	merged.ClassFilter = global.ClassFilter
	merged.UseChunkedPreload = global.UseChunkedPreload
	merged.ChunkSize = global.EffectiveChunkSize()
	if global.MatchExpr != "" {
		merged.MatchExpr = global.MatchExpr
	}
	return merged
}

func mergeAssetRules(level, global []asset.ID) []asset.ID {
	out := make([]asset.ID, 0, len(level)+len(global))
	seen := make(map[asset.ID]struct{}, len(level)+len(global))
	appendUnique := func(ids []asset.ID) {
		for _, id := range ids {
			if !id.Valid() {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	appendUnique(level)
	appendUnique(global)
	return out
}

func mergeFolderRules(level, global []string) []string {
	out := make([]string, 0, len(level)+len(global))
	seen := make(map[string]struct{}, len(level)+len(global))
	appendUnique := func(folders []string) {
		for _, f := range folders {
			n := asset.NormalizeFolder(f)
			if n == "" {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	appendUnique(level)
	appendUnique(global)
	return out
}

func mergeTokenRules(level, global []string) []string {
	out := make([]string, 0, len(level)+len(global))
	seen := make(map[string]struct{}, len(level)+len(global))
	appendUnique := func(tokens []string) {
		for _, tok := range tokens {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	appendUnique(level)
	appendUnique(global)
	return out
}
