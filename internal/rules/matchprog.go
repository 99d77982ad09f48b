package rules

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// MatchProgram is a compiled match expression. The zero value matches
// nothing, which keeps an absent expression equivalent to an empty
// predicate category.
type MatchProgram struct {
	prog *vm.Program
}

func (p MatchProgram) Empty() bool { return p.prog == nil }

// Match evaluates the program against one candidate. Runtime evaluation
// errors count as no-match; configs are compile-checked at load time.
func (p MatchProgram) Match(env ExprEnv) bool {
	if p.prog == nil {
		return false
	}
	out, err := expr.Run(p.prog, env)
	if err != nil {
		return false
	}
	b, ok := out.(bool)
	return ok && b
}
