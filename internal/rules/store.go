package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema/rules_config.schema.json
var configSchemaSource string

var configSchema = jsonschema.MustCompileString("rules_config.schema.json", configSchemaSource)

// Config is the persisted rule configuration: project-wide defaults plus
// per-level overrides keyed by level package path.
type Config struct {
	Defaults LevelRules            `yaml:"defaults"`
	Levels   map[string]LevelRules `yaml:"levels,omitempty"`
}

// ExprEnv is the evaluation environment one candidate asset exposes to a
// match expression.
type ExprEnv struct {
	Path     string `expr:"Path"`
	Package  string `expr:"Package"`
	Object   string `expr:"Object"`
	Category string `expr:"Category"`
}

// CompileMatchExpr builds the boolean program for a rule match
// expression.
func CompileMatchExpr(src string) (MatchProgram, error) {
	prog, err := expr.Compile(src, expr.Env(ExprEnv{}), expr.AsBool())
	if err != nil {
		return MatchProgram{}, fmt.Errorf("match_expr %q: %w", src, err)
	}
	return MatchProgram{prog: prog}, nil
}

// LoadConfig reads, schema-validates and decodes a rule configuration
// file. Match expressions are compiled here so later filtering never has
// to surface compile errors.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(raw)
}

// ParseConfig validates and decodes a rule configuration document.
func ParseConfig(raw []byte) (Config, error) {
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return Config{}, fmt.Errorf("rules config: %w", err)
	}
	if generic != nil {
		if err := configSchema.Validate(generic); err != nil {
			return Config{}, fmt.Errorf("rules config schema: %w", err)
		}
	}

	cfg := Config{Defaults: Default()}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("rules config: %w", err)
	}
	for lvl, r := range cfg.Levels {
		if !strings.HasPrefix(lvl, "/") {
			return Config{}, fmt.Errorf("rules config: level key %q is not a package path", lvl)
		}
		if r.MatchExpr != "" {
			if _, err := CompileMatchExpr(r.MatchExpr); err != nil {
				return Config{}, err
			}
		}
	}
	if cfg.Defaults.MatchExpr != "" {
		if _, err := CompileMatchExpr(cfg.Defaults.MatchExpr); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// FindLevelRules returns the override for a level package, if any.
func (c *Config) FindLevelRules(levelPkg string) (LevelRules, bool) {
	r, ok := c.Levels[levelPkg]
	return r, ok
}

// EffectiveRules resolves the rule set used for one level: the per-level
// override merged under global dominance when the entry follows defaults,
// the bare defaults when no override exists.
func (c *Config) EffectiveRules(levelPkg string) LevelRules {
	level, ok := c.FindLevelRules(levelPkg)
	if !ok {
		d := c.Defaults
		d.FromGlobalDefaults = true
		return d
	}
	if level.FromGlobalDefaults {
		return MergeWithGlobalDefaults(level, c.Defaults)
	}
	return level
}
