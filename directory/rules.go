// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package directory

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Default rules for a stock WordPress role setup.
const (
	DefaultVoterRule = `"subscriber" in roles || "administrator" in roles`
	DefaultAdminRule = `"administrator" in roles`
)

// RuleEnv is what an eligibility or admin rule can see about a user.
type RuleEnv struct {
	UserID      int64    `expr:"user_id"`
	Roles       []string `expr:"roles"`
	Building    int64    `expr:"building"`
	HasBuilding bool     `expr:"has_building"`
}

// Rule is a compiled boolean expression over RuleEnv.
type Rule struct {
	source  string
	program *vm.Program
}

// CompileRule compiles source; it must evaluate to a bool.
func CompileRule(source string) (*Rule, error) {
	program, err := expr.Compile(source, expr.Env(RuleEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid rule %q: %w", source, err)
	}
	return &Rule{source: source, program: program}, nil
}

func (r *Rule) String() string {
	return r.source
}

// Match evaluates the rule for env.
func (r *Rule) Match(env RuleEnv) (bool, error) {
	output, err := expr.Run(r.program, env)
	if err != nil {
		return false, err
	}

	result, ok := output.(bool)
	if !ok {
		return false, errors.New("expression did not return a boolean")
	}
	return result, nil
}
