package tool

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtinRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(nil)
	require.NoError(t, RegisterBuiltins(r))
	return r
}

func TestRegisterBuiltins(t *testing.T) {
	r := builtinRegistry(t)

	want := []string{"get_current_time", "calculate", "get_random_number", "convert_temperature", "get_weather"}
	listed := r.List()
	require.Len(t, listed, len(want))
	for i, name := range want {
		assert.Equal(t, name, listed[i].Name())
	}
}

func TestCurrentTimeEchoesTimezoneLabel(t *testing.T) {
	r := builtinRegistry(t)

	result, err := r.Execute(context.Background(), "get_current_time", map[string]any{"timezone": "America/New_York"})
	require.NoError(t, err)

	s, ok := result.(string)
	require.True(t, ok)
	// The zone appears in the label only; the clock itself stays UTC.
	assert.True(t, strings.HasPrefix(s, "Current time in America/New_York: "), s)
}

func TestCurrentTimeDefaultTimezone(t *testing.T) {
	r := builtinRegistry(t)

	result, err := r.Execute(context.Background(), "get_current_time", nil)
	require.NoError(t, err)
	assert.Contains(t, result.(string), "Current time in UTC: ")
}

func TestCalculate(t *testing.T) {
	r := builtinRegistry(t)

	tests := []struct {
		expr string
		want float64
	}{
		{"2 + 2*2", 6},
		{"(1 + 2) * 3", 9},
		{"10 / 4", 2.5},
		{"-3 + 5", 2},
	}
	for _, tt := range tests {
		result, err := r.Execute(context.Background(), "calculate", map[string]any{"expression": tt.expr})
		require.NoError(t, err, tt.expr)
		assert.InDelta(t, tt.want, result.(float64), 1e-9, tt.expr)
	}
}

func TestCalculateRejectsInvalidExpressions(t *testing.T) {
	r := builtinRegistry(t)

	for _, expr := range []string{"import os", "x + 1", "1 / 0", "2 ** 3"} {
		_, err := r.Execute(context.Background(), "calculate", map[string]any{"expression": expr})
		require.Error(t, err, expr)

		var argErr *ArgumentError
		require.ErrorAs(t, err, &argErr, expr)
		assert.Equal(t, "expression", argErr.Field)
	}
}

func TestRandomNumberRange(t *testing.T) {
	r := builtinRegistry(t)

	for range 50 {
		result, err := r.Execute(context.Background(), "get_random_number", map[string]any{"min": 1, "max": 10})
		require.NoError(t, err)
		n := result.(int)
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, 10)
	}
}

func TestRandomNumberDegenerateRange(t *testing.T) {
	r := builtinRegistry(t)

	result, err := r.Execute(context.Background(), "get_random_number", map[string]any{"min": 5, "max": 5})
	require.NoError(t, err)
	assert.Equal(t, 5, result)
}

func TestRandomNumberDefaults(t *testing.T) {
	r := builtinRegistry(t)

	result, err := r.Execute(context.Background(), "get_random_number", nil)
	require.NoError(t, err)
	n := result.(int)
	assert.GreaterOrEqual(t, n, 0)
	assert.LessOrEqual(t, n, 100)
}

func TestRandomNumberMinGreaterThanMax(t *testing.T) {
	r := builtinRegistry(t)

	_, err := r.Execute(context.Background(), "get_random_number", map[string]any{"min": 10, "max": 1})
	require.Error(t, err)

	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestConvertTemperature(t *testing.T) {
	r := builtinRegistry(t)

	tests := []struct {
		value    float64
		from, to string
		want     float64
	}{
		{0, "celsius", "fahrenheit", 32},
		{100, "celsius", "kelvin", 373.15},
		{32, "fahrenheit", "celsius", 0},
		{273.15, "kelvin", "celsius", 0},
		{25, "celsius", "celsius", 25},
	}
	for _, tt := range tests {
		name := fmt.Sprintf("%v %s->%s", tt.value, tt.from, tt.to)
		result, err := r.Execute(context.Background(), "convert_temperature", map[string]any{
			"value": tt.value, "from_unit": tt.from, "to_unit": tt.to,
		})
		require.NoError(t, err, name)

		m := result.(map[string]any)
		assert.InDelta(t, tt.want, m["converted_value"].(float64), 0.01, name)
		assert.Equal(t, tt.value, m["original_value"], name)
		assert.Equal(t, tt.from, m["original_unit"], name)
		assert.Equal(t, tt.to, m["converted_unit"], name)
	}
}

func TestConvertTemperatureRoundTrip(t *testing.T) {
	r := builtinRegistry(t)

	out, err := r.Execute(context.Background(), "convert_temperature", map[string]any{
		"value": 21.5, "from_unit": "celsius", "to_unit": "fahrenheit",
	})
	require.NoError(t, err)
	f := out.(map[string]any)["converted_value"].(float64)

	back, err := r.Execute(context.Background(), "convert_temperature", map[string]any{
		"value": f, "from_unit": "fahrenheit", "to_unit": "celsius",
	})
	require.NoError(t, err)
	assert.InDelta(t, 21.5, back.(map[string]any)["converted_value"].(float64), 0.01)
}

func TestConvertTemperatureUnknownUnit(t *testing.T) {
	r := builtinRegistry(t)

	_, err := r.Execute(context.Background(), "convert_temperature", map[string]any{
		"value": 1, "from_unit": "rankine", "to_unit": "celsius",
	})
	require.Error(t, err)

	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "from_unit", argErr.Field)
}

func TestWeatherShapeAndRanges(t *testing.T) {
	r := builtinRegistry(t)

	result, err := r.Execute(context.Background(), "get_weather", map[string]any{"city": "Paris"})
	require.NoError(t, err)

	m := result.(map[string]any)
	assert.Equal(t, "Paris", m["city"])
	assert.Equal(t, "celsius", m["unit"])
	assert.Contains(t, weatherConditions, m["condition"])
	assert.NotEmpty(t, m["note"])

	temp := m["temperature"].(int)
	assert.GreaterOrEqual(t, temp, -10)
	assert.LessOrEqual(t, temp, 35)

	humidity := m["humidity"].(int)
	assert.GreaterOrEqual(t, humidity, 30)
	assert.LessOrEqual(t, humidity, 90)

	wind := m["wind_speed"].(int)
	assert.GreaterOrEqual(t, wind, 0)
	assert.LessOrEqual(t, wind, 30)
}

func TestWeatherRequiresCity(t *testing.T) {
	r := builtinRegistry(t)

	_, err := r.Execute(context.Background(), "get_weather", nil)
	require.Error(t, err)

	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "city", argErr.Field)
}

func TestConvertedValueRounding(t *testing.T) {
	r := builtinRegistry(t)

	result, err := r.Execute(context.Background(), "convert_temperature", map[string]any{
		"value": 36.6, "from_unit": "celsius", "to_unit": "fahrenheit",
	})
	require.NoError(t, err)

	v := result.(map[string]any)["converted_value"].(float64)
	// Two decimal places
	assert.Equal(t, v, math.Round(v*100)/100)
	assert.InDelta(t, 97.88, v, 0.001)
}
