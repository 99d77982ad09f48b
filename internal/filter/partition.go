package filter

import (
	"strings"

	"leveltracker.gg/internal/asset"
	"leveltracker.gg/internal/rules"
)

// IncludePartitionActor decides whether a partition actor joins the
// candidate root set. Region rules are evaluated first; an exclusion
// there short-circuits without consulting cell rules. Region and cell
// are independent scoping axes sharing one exclusion toggle, and the
// early exit avoids double-negative ambiguity when both are configured.
func IncludePartitionActor(actorID asset.ID, actorRegions []string, r *rules.LevelRules) bool {
	if !actorID.Valid() {
		return false
	}
	if r == nil {
		return true
	}
	pkg := actorID.Package()
	if pkg == "" {
		return false
	}

	included := true

	if regions := nonEmpty(r.RegionRules); len(regions) > 0 {
		matched := false
		for _, rule := range regions {
			if containsFold(actorRegions, rule) || strings.Contains(pkg, rule) {
				matched = true
				break
			}
		}
		included = matched
		if r.UseExclusionMode {
			included = !matched
		}
	}
	if !included {
		return false
	}

	if cells := nonEmpty(r.CellRules); len(cells) > 0 {
		matched := false
		for _, rule := range cells {
			if strings.Contains(pkg, rule) {
				matched = true
				break
			}
		}
		included = matched
		if r.UseExclusionMode {
			included = !matched
		}
	}
	return included
}

func nonEmpty(list []string) []string {
	out := list[:0:0]
	for _, r := range list {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func containsFold(names []string, want string) bool {
	for _, n := range names {
		if strings.EqualFold(n, want) {
			return true
		}
	}
	return false
}
