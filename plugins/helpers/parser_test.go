package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testExpData struct {
	payload        string
	expression     string
	expectedResult interface{}
}

// Tests evaluation of different expressions.
func TestEvaluations(t *testing.T) {
	data := []testExpData{
		{
			expression:     "payload=='on'",
			payload:        "on",
			expectedResult: true,
		},
		{
			expression:     "jq(payload, '.status') == 'off'",
			payload:        "{ \"status\": \"off\" }",
			expectedResult: true,
		},
		{
			expression:     "num(jq(payload, '.sensor.temperature'))",
			payload:        "{ \"sensor\": { \"temperature\": 21.5 } }",
			expectedResult: 21.5,
		},
		{
			expression:     "num(payload)",
			payload:        "10",
			expectedResult: 10.0,
		},
		{
			expression:     "num(payload) * 2 > 15",
			payload:        "10.0",
			expectedResult: true,
		},
		{
			expression:     "fmt('%s-%s', payload, 'x')",
			payload:        "a",
			expectedResult: "a-x",
		},
	}

	p := NewParser()

	for _, v := range data {
		exp, err := p.Compile(v.expression)
		require.NoError(t, err, v.expression)

		res, err := exp.Parse(v.payload)
		require.NoError(t, err, v.expression)
		assert.True(t, StateDeepEqual(v.expectedResult, res), v.expression)
	}
}

// Tests threshold-like expressions with custom params.
func TestEvaluateParams(t *testing.T) {
	p := NewParser()
	exp, err := p.Compile("value >= threshold")
	require.NoError(t, err)

	res, err := exp.Evaluate(map[string]interface{}{"value": 30.0, "threshold": 30.0})
	require.NoError(t, err)
	assert.Equal(t, true, res)

	res, err = exp.Evaluate(map[string]interface{}{"value": 29.9, "threshold": 30.0})
	require.NoError(t, err)
	assert.Equal(t, false, res)
}

// Tests wrong expressions.
func TestWrongExpressions(t *testing.T) {
	p := NewParser()
	_, err := p.Compile("num(payload")
	assert.Error(t, err)

	exp, err := p.Compile("num(payload)")
	require.NoError(t, err)
	_, err = exp.Parse("not a number")
	assert.Error(t, err)

	exp, err = p.Compile("jq(payload, '.a', '.b')")
	require.NoError(t, err)
	_, err = exp.Parse("{}")
	assert.Error(t, err)
}

// Tests value shaping functions.
func TestValueFunctions(t *testing.T) {
	data := []struct {
		expression string
		params     map[string]interface{}
		expected   interface{}
	}{
		{"clamp(value, 0, 100)", map[string]interface{}{"value": 130.0}, 100.0},
		{"clamp(value, 0, 100)", map[string]interface{}{"value": -5.0}, 0.0},
		{"scale(value, 0, 50, 0, 100)", map[string]interface{}{"value": 25.0}, 50.0},
		{"scale(value, 0, 50, 0, 100)", map[string]interface{}{"value": 80.0}, 100.0},
		{"scale(value, 10, 10, 0, 100)", map[string]interface{}{"value": 80.0}, 50.0},
		{"truthy(value)", map[string]interface{}{"value": "on"}, true},
		{"num(attr(attributes, 'brightness')) / 255 * 100", map[string]interface{}{
			"attributes": map[string]interface{}{"brightness": 255}}, 100.0},
		{"str(attr(attributes, 'mode'))", map[string]interface{}{
			"attributes": map[string]interface{}{"mode": "night"}}, "night"},
	}

	p := NewParser()
	for _, v := range data {
		exp, err := p.Compile(v.expression)
		require.NoError(t, err, v.expression)
		res, err := exp.Evaluate(v.params)
		require.NoError(t, err, v.expression)
		assert.True(t, StateDeepEqual(v.expected, res), "%s: %v", v.expression, res)
	}
}

// Tests function errors.
func TestFunctionErrors(t *testing.T) {
	p := NewParser()

	exp, err := p.Compile("clamp(value, 0)")
	require.NoError(t, err)
	_, err = exp.Evaluate(map[string]interface{}{"value": 1.0})
	assert.Error(t, err)

	exp, err = p.Compile("scale(value, 0, 1, 0, 1)")
	require.NoError(t, err)
	_, err = exp.Evaluate(map[string]interface{}{"value": "unavailable"})
	assert.Error(t, err)

	exp, err = p.Compile("attr(value, 'mode')")
	require.NoError(t, err)
	_, err = exp.Evaluate(map[string]interface{}{"value": 1.0})
	assert.Error(t, err)
}

// Tests raw values conversion.
func TestConverters(t *testing.T) {
	f, ok := ToFloat(" 12.5 ")
	assert.True(t, ok)
	assert.Equal(t, 12.5, f)

	_, ok = ToFloat("unavailable")
	assert.False(t, ok)

	_, ok = ToFloat(map[string]interface{}{})
	assert.False(t, ok)

	for _, v := range []interface{}{"on", "TRUE", "1", "acknowledged", true, 1} {
		assert.True(t, IsTruthy(v), "%v", v)
	}

	for _, v := range []interface{}{"off", "false", "0", false, 2, nil} {
		assert.False(t, IsTruthy(v), "%v", v)
	}

	assert.True(t, StateDeepEqual(10, 10.0))
	assert.False(t, StateDeepEqual("10", 10))
	assert.True(t, StateDeepEqual(map[string]interface{}{"a": 1}, map[string]interface{}{"a": 1}))
}

// Tests settings decoding from loosely typed data.
func TestDecodeSettings(t *testing.T) {
	type target struct {
		Speed float64 `yaml:"speed"`
		Name  string  `yaml:"name"`
	}

	to := &target{}
	err := DecodeSettings(map[interface{}]interface{}{"speed": 0.5, "name": "x"}, to)
	require.NoError(t, err)
	assert.Equal(t, 0.5, to.Speed)
	assert.Equal(t, "x", to.Name)

	assert.NoError(t, DecodeSettings(nil, to))
	assert.Equal(t, 0.5, to.Speed)
}
