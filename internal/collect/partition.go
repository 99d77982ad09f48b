package collect

import (
	"strings"

	"leveltracker.gg/internal/filter"
	"leveltracker.gg/internal/rules"
)

// ExpandRegionVariants maps a canonical region name to the spellings a
// rule may use: the full name plus the tails after the last '/', '.'
// and ':'. Results keep first-seen order without duplicates.
func ExpandRegionVariants(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	out := []string{name}
	seen := map[string]bool{name: true}
	for _, sep := range []byte{'/', '.', ':'} {
		if i := strings.LastIndexByte(name, sep); i >= 0 && i+1 < len(name) {
			tail := name[i+1:]
			if !seen[tail] {
				seen[tail] = true
				out = append(out, tail)
			}
		}
	}
	return out
}

// RegionNames expands every canonical region name of a level. Used to
// match actor region memberships against rule tokens regardless of
// which path form the rule author wrote.
func (c *Collector) RegionNames(levelPkg string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, name := range c.idx.PartitionRegions(levelPkg) {
		for _, v := range ExpandRegionVariants(name) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// ActorPackages collects the packages of partition actors that pass
// the region and cell gates, in descriptor order, deduplicated.
// Exclusion mode flips the gates here, during the scan; the final
// asset filter no longer sees region or cell rules.
func (c *Collector) ActorPackages(levelPkg string, r *rules.LevelRules) []string {
	var out []string
	seen := make(map[string]bool)
	for _, d := range c.idx.PartitionActors(levelPkg) {
		regions := c.expandActorRegions(d.Regions)
		if !filter.IncludePartitionActor(d.Path, regions, r) {
			continue
		}
		pkg := d.Package
		if pkg == "" {
			pkg = d.Path.Package()
		}
		if pkg == "" || seen[pkg] {
			continue
		}
		seen[pkg] = true
		out = append(out, pkg)
	}
	return out
}

func (c *Collector) expandActorRegions(regions []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, name := range regions {
		for _, v := range ExpandRegionVariants(name) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
