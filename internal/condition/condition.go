// Package condition compiles and evaluates the boolean expressions carried
// by logic-node branches. Expressions use CEL with a single free variable,
// "input", bound to the run input. The validator uses Check for syntax
// feedback; the simulator uses EvalBool to pick a branch.
package condition

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

var defaultEnv *celgo.Env

func init() {
	env, err := celgo.NewEnv(
		celgo.Variable("input", celgo.DynType),
	)
	if err != nil {
		panic(fmt.Sprintf("flowforge: failed to create CEL environment: %v", err))
	}
	defaultEnv = env
}

// Check compiles the expression without evaluating it. It returns an error
// when the expression does not parse or does not type-check against the
// condition environment.
func Check(expr string) error {
	_, err := compile(expr)
	return err
}

// EvalBool evaluates the expression with "input" bound to the given value.
// A non-boolean result is an error: branch conditions must decide, not
// produce data.
func EvalBool(expr string, input any) (bool, error) {
	prg, err := compile(expr)
	if err != nil {
		return false, err
	}
	if input == nil {
		input = map[string]any{}
	}
	out, _, err := prg.Eval(map[string]any{"input": input})
	if err != nil {
		return false, fmt.Errorf("condition %q: evaluation failed: %w", expr, err)
	}
	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("condition %q: expected bool result, got %v", expr, out.Type())
	}
	return bool(b), nil
}

func compile(expr string) (celgo.Program, error) {
	ast, iss := defaultEnv.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("condition %q: %w", expr, iss.Err())
	}
	prg, err := defaultEnv.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("condition %q: program construction failed: %w", expr, err)
	}
	return prg, nil
}
