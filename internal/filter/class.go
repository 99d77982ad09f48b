package filter

import (
	"leveltracker.gg/internal/asset"
	"leveltracker.gg/internal/rules"
)

// IncludeByClass gates one asset by its class name under the rule set's
// class filter. A fully permissive filter passes everything, unrecognized
// classes included. A customized filter is a strict allow-list: assets
// whose class resolves to no tracked category are excluded.
func IncludeByClass(class string, r *rules.LevelRules) bool {
	if r == nil {
		return true
	}
	if r.ClassFilter.PassThrough() {
		return true
	}
	category := asset.ResolveCategory(class)
	if category == asset.CategoryUnknown {
		return false
	}
	return r.ClassFilter.Allows(category)
}
