package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"leveltracker.gg/internal/asset"
)

// ClassFilter carries per-category allow flags. The zero value of a field
// in a config document means "allowed": omitted categories stay open, so
// an absent class_filter block is a full pass-through.
type ClassFilter struct {
	StaticMeshes   bool `json:"static_meshes"`
	SkeletalMeshes bool `json:"skeletal_meshes"`
	Materials      bool `json:"materials"`
	Effects        bool `json:"effects"`
	Sounds         bool `json:"sounds"`
	Widgets        bool `json:"widgets"`
	DataAssets     bool `json:"data_assets"`
}

// DefaultClassFilter allows every category.
func DefaultClassFilter() ClassFilter {
	return ClassFilter{
		StaticMeshes:   true,
		SkeletalMeshes: true,
		Materials:      true,
		Effects:        true,
		Sounds:         true,
		Widgets:        true,
		DataAssets:     true,
	}
}

// PassThrough reports whether every tracked category is allowed. A
// pass-through filter matches everything, unrecognized categories
// included.
func (f ClassFilter) PassThrough() bool {
	return f.StaticMeshes && f.SkeletalMeshes && f.Materials &&
		f.Effects && f.Sounds && f.Widgets && f.DataAssets
}

// Allows reports the flag for a tracked category. Unknown categories
// return false; the caller decides whether that matters (it only does
// when the filter is customized).
func (f ClassFilter) Allows(c asset.Category) bool {
	switch c {
	case asset.CategoryStaticMesh:
		return f.StaticMeshes
	case asset.CategorySkeletalMesh:
		return f.SkeletalMeshes
	case asset.CategoryMaterial:
		return f.Materials
	case asset.CategoryEffect:
		return f.Effects
	case asset.CategorySound:
		return f.Sounds
	case asset.CategoryWidget:
		return f.Widgets
	case asset.CategoryData:
		return f.DataAssets
	default:
		return false
	}
}

type classFilterDoc struct {
	StaticMeshes   *bool `yaml:"static_meshes"`
	SkeletalMeshes *bool `yaml:"skeletal_meshes"`
	Materials      *bool `yaml:"materials"`
	Effects        *bool `yaml:"effects"`
	Sounds         *bool `yaml:"sounds"`
	Widgets        *bool `yaml:"widgets"`
	DataAssets     *bool `yaml:"data_assets"`
}

// UnmarshalYAML decodes with omitted categories defaulting to allowed.
func (f *ClassFilter) UnmarshalYAML(value *yaml.Node) error {
	var doc classFilterDoc
	if err := value.Decode(&doc); err != nil {
		return fmt.Errorf("class_filter: %w", err)
	}
	*f = DefaultClassFilter()
	apply := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&f.StaticMeshes, doc.StaticMeshes)
	apply(&f.SkeletalMeshes, doc.SkeletalMeshes)
	apply(&f.Materials, doc.Materials)
	apply(&f.Effects, doc.Effects)
	apply(&f.Sounds, doc.Sounds)
	apply(&f.Widgets, doc.Widgets)
	apply(&f.DataAssets, doc.DataAssets)
	return nil
}

// MarshalYAML writes only the disabled categories, keeping documents for
// pass-through filters empty.
func (f ClassFilter) MarshalYAML() (any, error) {
	doc := map[string]bool{}
	if !f.StaticMeshes {
		doc["static_meshes"] = false
	}
	if !f.SkeletalMeshes {
		doc["skeletal_meshes"] = false
	}
	if !f.Materials {
		doc["materials"] = false
	}
	if !f.Effects {
		doc["effects"] = false
	}
	if !f.Sounds {
		doc["sounds"] = false
	}
	if !f.Widgets {
		doc["widgets"] = false
	}
	if !f.DataAssets {
		doc["data_assets"] = false
	}
	if len(doc) == 0 {
		return nil, nil
	}
	return doc, nil
}
