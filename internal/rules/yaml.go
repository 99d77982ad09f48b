package rules

import "gopkg.in/yaml.v3"

// Default returns the rule set applied to a level with no configuration:
// exclusion mode off, no list rules, fully permissive class filter,
// monolithic preload.
func Default() LevelRules {
	return LevelRules{
		ClassFilter: DefaultClassFilter(),
		ChunkSize:   DefaultChunkSize,
	}
}

// DefaultChunkSize bounds one async load request when chunking is on.
const DefaultChunkSize = 64

type levelRulesDoc LevelRules

// UnmarshalYAML decodes on top of Default so omitted fields keep their
// permissive defaults instead of Go zero values.
func (r *LevelRules) UnmarshalYAML(value *yaml.Node) error {
	doc := levelRulesDoc(Default())
	if err := value.Decode(&doc); err != nil {
		return err
	}
	*r = LevelRules(doc)
	return nil
}
