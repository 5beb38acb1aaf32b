package condition

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rulego/pumpsql/errs"
	sqlfunc "github.com/rulego/pumpsql/functions"
	"github.com/rulego/pumpsql/types"
)

// Condition is a compiled boolean expression (WHERE clause)
type Condition interface {
	Evaluate(env map[string]interface{}) (bool, error)
}

type ExprCondition struct {
	source  string
	program *vm.Program
}

func functions() []expr.Option {
	return append(sqlfunc.ExprOptions(),
		expr.Function("like_match", func(params ...any) (any, error) {
			if len(params) != 2 {
				return false, fmt.Errorf("like_match function requires 2 parameters")
			}
			text, ok1 := params[0].(string)
			pattern, ok2 := params[1].(string)
			if !ok1 || !ok2 {
				return false, fmt.Errorf("like_match function requires string parameters")
			}
			return MatchesLikePattern(text, pattern), nil
		}),
		expr.AllowUndefinedVariables(),
	)
}

// NewExprCondition compiles a boolean expression
func NewExprCondition(expression string) (Condition, error) {
	program, err := expr.Compile(expression, append(functions(), expr.AsBool())...)
	if err != nil {
		return nil, errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "invalid condition %q", expression)
	}
	return &ExprCondition{source: expression, program: program}, nil
}

func (ec *ExprCondition) Evaluate(env map[string]interface{}) (bool, error) {
	result, err := expr.Run(ec.program, env)
	if err != nil {
		return false, errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "evaluate %q", ec.source)
	}
	b, _ := result.(bool)
	return b, nil
}

// Expression is a compiled value expression (projection, aggregated
// value or group-by key)
type Expression struct {
	source  string
	program *vm.Program
}

// NewExpression compiles a value expression
func NewExpression(expression string) (*Expression, error) {
	program, err := expr.Compile(expression, functions()...)
	if err != nil {
		return nil, errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "invalid expression %q", expression)
	}
	return &Expression{source: expression, program: program}, nil
}

// Eval runs the expression against env
func (e *Expression) Eval(env map[string]interface{}) (types.Value, error) {
	result, err := expr.Run(e.program, env)
	if err != nil {
		return types.Null(), errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "evaluate %q", e.source)
	}
	v, err := types.FromInterface(result)
	if err != nil {
		return types.Null(), errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "evaluate %q", e.source)
	}
	return v, nil
}

func (e *Expression) String() string {
	return e.source
}

// MatchesLikePattern 实现LIKE模式匹配
// 支持%（匹配任意字符序列）和_（匹配单个字符）
func MatchesLikePattern(text, pattern string) bool {
	t, p := 0, 0
	// position of the last % and the text index it was tried against
	star, mark := -1, 0
	for t < len(text) {
		switch {
		case p < len(pattern) && (pattern[p] == '_' || pattern[p] == text[t]):
			t++
			p++
		case p < len(pattern) && pattern[p] == '%':
			star, mark = p, t
			p++
		case star >= 0:
			mark++
			t, p = mark, star+1
		default:
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '%' {
		p++
	}
	return p == len(pattern)
}
