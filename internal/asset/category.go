package asset

import "strings"

// Category is the coarse asset class bucket used by rule class filters.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryStaticMesh
	CategorySkeletalMesh
	CategoryMaterial
	CategoryEffect
	CategorySound
	CategoryWidget
	CategoryData
)

func (c Category) String() string {
	switch c {
	case CategoryStaticMesh:
		return "static_mesh"
	case CategorySkeletalMesh:
		return "skeletal_mesh"
	case CategoryMaterial:
		return "material"
	case CategoryEffect:
		return "effect"
	case CategorySound:
		return "sound"
	case CategoryWidget:
		return "widget"
	case CategoryData:
		return "data"
	default:
		return "unknown"
	}
}

var exactClassCategories = map[string]Category{
	"StaticMesh":                   CategoryStaticMesh,
	"SkeletalMesh":                 CategorySkeletalMesh,
	"Material":                     CategoryMaterial,
	"MaterialInstance":             CategoryMaterial,
	"MaterialInstanceConstant":     CategoryMaterial,
	"MaterialInstanceDynamic":      CategoryMaterial,
	"MaterialFunction":             CategoryMaterial,
	"MaterialFunctionInstance":     CategoryMaterial,
	"MaterialParameterCollection":  CategoryMaterial,
	"SoundWave":                    CategorySound,
	"SoundCue":                     CategorySound,
	"SoundClass":                   CategorySound,
	"SoundMix":                     CategorySound,
	"WidgetBlueprint":              CategoryWidget,
	"WidgetBlueprintGeneratedClass": CategoryWidget,
	"EditorUtilityWidgetBlueprint": CategoryWidget,
	"DataAsset":                    CategoryData,
	"PrimaryDataAsset":             CategoryData,
	"DataTable":                    CategoryData,
	"CurveTable":                   CategoryData,
}

var prefixClassCategories = []struct {
	prefix   string
	category Category
}{
	{"Texture", CategoryMaterial},
	{"Niagara", CategoryEffect},
	{"Sound", CategorySound},
}

// ResolveCategory maps an asset class name onto a tracked category.
// Classes outside the static table resolve to CategoryUnknown; the filter
// layer decides what that means under a customized class filter.
func ResolveCategory(class string) Category {
	if c, ok := exactClassCategories[class]; ok {
		return c
	}
	for _, p := range prefixClassCategories {
		if strings.HasPrefix(class, p.prefix) {
			return p.category
		}
	}
	return CategoryUnknown
}

// IsWorldClass reports whether the class names a level container. World
// assets are activation targets, never preload candidates.
func IsWorldClass(class string) bool {
	return class == "World"
}
