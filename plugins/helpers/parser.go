// Package helpers contains helper methods shared by systems and effects.
package helpers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/savaki/jq"
)

// ITemplateParser describes value expressions parser.
type ITemplateParser interface {
	Compile(expression string) (ITemplateExpression, error)
}

// ITemplateExpression describes single pre-compiled expression.
type ITemplateExpression interface {
	Parse(payload string) (interface{}, error)
	Evaluate(params map[string]interface{}) (interface{}, error)
}

// Expression function with its name, used in errors.
type function func(name string, args ...interface{}) (interface{}, error)

// Parser implementation.
type parser struct {
	functions map[string]govaluate.ExpressionFunction
}

// Parser expression.
type parserExpression struct {
	expression *govaluate.EvaluableExpression
}

// NewParser constructs a new expressions parser.
// Besides govaluate operators, expressions may use:
//  jq(payload, '.path')          value extracted from JSON payload,
//  num(x), str(x), truthy(x)     conversions,
//  fmt(format, args...)          fmt.Sprintf,
//  attr(attributes, 'name')      entity attribute lookup,
//  clamp(x, min, max)            limits number to the range,
//  scale(x, inMin, inMax, outMin, outMax) linear rescale with clamping.
func NewParser() ITemplateParser {
	registered := map[string]function{
		"jq":     jqParse,
		"num":    numConvert,
		"str":    strConvert,
		"truthy": truthyConvert,
		"fmt":    format,
		"attr":   attribute,
		"clamp":  clamp,
		"scale":  scale,
	}

	p := &parser{
		functions: make(map[string]govaluate.ExpressionFunction, len(registered)),
	}

	for k, v := range registered {
		name, fn := k, v
		p.functions[name] = func(args ...interface{}) (interface{}, error) {
			return fn(name, args...)
		}
	}

	return p
}

// Compile tries to pre-compile expression.
func (p *parser) Compile(expression string) (ITemplateExpression, error) {
	exp, err := govaluate.NewEvaluableExpressionWithFunctions(expression, p.functions)
	if err != nil {
		return nil, err
	}

	return &parserExpression{expression: exp}, nil
}

// Parse evaluates expression against a raw payload.
func (p *parserExpression) Parse(payload string) (interface{}, error) {
	return p.expression.Evaluate(map[string]interface{}{"payload": payload})
}

// Evaluate evaluates expression with arbitrary params.
func (p *parserExpression) Evaluate(params map[string]interface{}) (interface{}, error) {
	if nil == params {
		params = make(map[string]interface{})
	}

	return p.expression.Evaluate(params)
}

// Returns un-marshaled JSON object with one argument, jq query result with two.
func jqParse(name string, args ...interface{}) (interface{}, error) {
	if 0 == len(args) || len(args) > 2 {
		return nil, &ErrArgumentsMismatch{Function: name, Count: len(args)}
	}

	payload, ok := args[0].(string)
	if !ok {
		return nil, &ErrWrongArgument{Function: name, Index: 0}
	}

	if 1 == len(args) {
		data := make(map[string]interface{})
		if err := json.Unmarshal([]byte(payload), &data); err != nil {
			return nil, err
		}

		return data, nil
	}

	query, ok := args[1].(string)
	if !ok {
		return nil, &ErrWrongArgument{Function: name, Index: 1}
	}

	op, err := jq.Parse(query)
	if err != nil {
		return nil, &ErrJqSyntax{Query: query, Err: err}
	}

	val, err := op.Apply([]byte(payload))
	if err != nil {
		return nil, &ErrJqSyntax{Query: query, Err: err}
	}

	return strings.Trim(string(val), "\""), nil
}

// Converts argument into float64.
func numConvert(name string, args ...interface{}) (interface{}, error) {
	if 1 != len(args) {
		return nil, &ErrArgumentsMismatch{Function: name, Count: len(args)}
	}

	v, ok := ToFloat(args[0])
	if !ok {
		return nil, &ErrWrongArgument{Function: name, Index: 0}
	}

	return v, nil
}

// Converts argument into string.
func strConvert(name string, args ...interface{}) (interface{}, error) {
	if 1 != len(args) {
		return nil, &ErrArgumentsMismatch{Function: name, Count: len(args)}
	}

	if s, ok := args[0].(string); ok {
		return s, nil
	}

	return fmt.Sprintf("%v", args[0]), nil
}

// Converts argument into bool.
func truthyConvert(name string, args ...interface{}) (interface{}, error) {
	if 1 != len(args) {
		return nil, &ErrArgumentsMismatch{Function: name, Count: len(args)}
	}

	return IsTruthy(args[0]), nil
}

// Uses fmt.Sprintf, first argument is a format string.
func format(name string, args ...interface{}) (interface{}, error) {
	if 0 == len(args) {
		return nil, &ErrArgumentsMismatch{Function: name, Count: 0}
	}

	f, ok := args[0].(string)
	if !ok {
		return nil, &ErrWrongArgument{Function: name, Index: 0}
	}

	return fmt.Sprintf(f, args[1:]...), nil
}

// Returns attribute value, nil if attribute doesn't exist.
func attribute(name string, args ...interface{}) (interface{}, error) {
	if 2 != len(args) {
		return nil, &ErrArgumentsMismatch{Function: name, Count: len(args)}
	}

	key, ok := args[1].(string)
	if !ok {
		return nil, &ErrWrongArgument{Function: name, Index: 1}
	}

	switch attrs := args[0].(type) {
	case map[string]interface{}:
		return attrs[key], nil
	case nil:
		return nil, nil
	}

	return nil, &ErrWrongArgument{Function: name, Index: 0}
}

// Limits number to the range.
func clamp(name string, args ...interface{}) (interface{}, error) {
	nums, err := floats(name, 3, args)
	if err != nil {
		return nil, err
	}

	return ClampFloat(nums[0], nums[1], nums[2]), nil
}

// Linearly rescales number from input into output range.
func scale(name string, args ...interface{}) (interface{}, error) {
	nums, err := floats(name, 5, args)
	if err != nil {
		return nil, err
	}

	v, inMin, inMax, outMin, outMax := nums[0], nums[1], nums[2], nums[3], nums[4]
	if inMax == inMin {
		return outMin + (outMax-outMin)/2, nil
	}

	t := ClampFloat((v-inMin)/(inMax-inMin), 0, 1)
	return outMin + t*(outMax-outMin), nil
}

// Converts exactly count arguments into numbers.
func floats(name string, count int, args []interface{}) ([]float64, error) {
	if count != len(args) {
		return nil, &ErrArgumentsMismatch{Function: name, Count: len(args)}
	}

	res := make([]float64, count)
	for ii, v := range args {
		f, ok := ToFloat(v)
		if !ok {
			return nil, &ErrWrongArgument{Function: name, Index: ii}
		}

		res[ii] = f
	}

	return res, nil
}
