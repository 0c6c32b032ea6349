package tool

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/toolbridge/toolbridge/internal/mathexpr"
)

// RegisterBuiltins adds the demo tool set to the registry: current time,
// calculator, random number, temperature conversion and mock weather.
func RegisterBuiltins(r *Registry) error {
	builtins := []Tool{
		currentTimeTool(),
		calculateTool(),
		randomNumberTool(),
		convertTemperatureTool(),
		weatherTool(),
	}
	for _, t := range builtins {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// currentTimeTool reports the current UTC time. The timezone argument is only
// echoed into the label, it does not convert the clock. That mirrors the
// behavior peers of this tool have shipped with and is kept for
// compatibility; callers expecting zone conversion should not rely on it.
func currentTimeTool() Tool {
	return NewFunctionTool(
		"get_current_time",
		"Get the current date and time",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"timezone": map[string]any{
					"type":        "string",
					"description": "Timezone (e.g., 'UTC', 'America/New_York')",
					"default":     "UTC",
				},
			},
			"required": []string{},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			tz, _ := args["timezone"].(string)
			now := time.Now().UTC()
			return fmt.Sprintf("Current time in %s: %s", tz, now.Format(time.RFC3339)), nil
		},
	)
}

func calculateTool() Tool {
	return NewFunctionTool(
		"calculate",
		"Perform basic mathematical calculations",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"expression": map[string]any{
					"type":        "string",
					"description": "Mathematical expression to evaluate",
				},
			},
			"required": []string{"expression"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			expr, _ := args["expression"].(string)
			v, err := mathexpr.Eval(expr)
			if err != nil {
				return nil, &ArgumentError{
					Tool:    "calculate",
					Field:   "expression",
					Value:   expr,
					Message: fmt.Sprintf("invalid expression: %v", err),
				}
			}
			return v, nil
		},
	)
}

func randomNumberTool() Tool {
	return NewFunctionTool(
		"get_random_number",
		"Generate a random number within a range",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"min": map[string]any{
					"type":        "integer",
					"description": "Minimum value",
					"default":     0,
				},
				"max": map[string]any{
					"type":        "integer",
					"description": "Maximum value",
					"default":     100,
				},
			},
			"required": []string{},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			minVal := args["min"].(int)
			maxVal := args["max"].(int)
			if minVal > maxVal {
				return nil, &ArgumentError{
					Tool:    "get_random_number",
					Field:   "min",
					Value:   minVal,
					Message: fmt.Sprintf("min (%d) must not exceed max (%d)", minVal, maxVal),
				}
			}
			return minVal + rand.IntN(maxVal-minVal+1), nil
		},
	)
}

func convertTemperatureTool() Tool {
	units := []any{"celsius", "fahrenheit", "kelvin"}
	return NewFunctionTool(
		"convert_temperature",
		"Convert temperature between Celsius, Fahrenheit, and Kelvin",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"value": map[string]any{
					"type":        "number",
					"description": "Temperature value to convert",
				},
				"from_unit": map[string]any{
					"type":        "string",
					"enum":        units,
					"description": "Source temperature unit",
				},
				"to_unit": map[string]any{
					"type":        "string",
					"enum":        units,
					"description": "Target temperature unit",
				},
			},
			"required": []string{"value", "from_unit", "to_unit"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			value := args["value"].(float64)
			fromUnit := strings.ToLower(args["from_unit"].(string))
			toUnit := strings.ToLower(args["to_unit"].(string))

			celsius, err := toCelsius(value, fromUnit)
			if err != nil {
				return nil, err
			}
			converted, err := fromCelsius(celsius, toUnit)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"original_value":  value,
				"original_unit":   fromUnit,
				"converted_value": math.Round(converted*100) / 100,
				"converted_unit":  toUnit,
			}, nil
		},
	)
}

// Celsius is the pivot unit for all conversions.
func toCelsius(value float64, unit string) (float64, error) {
	switch unit {
	case "celsius":
		return value, nil
	case "fahrenheit":
		return (value - 32) * 5 / 9, nil
	case "kelvin":
		return value - 273.15, nil
	default:
		return 0, &ArgumentError{Tool: "convert_temperature", Field: "from_unit", Value: unit, Message: "unknown unit"}
	}
}

func fromCelsius(celsius float64, unit string) (float64, error) {
	switch unit {
	case "celsius":
		return celsius, nil
	case "fahrenheit":
		return celsius*9/5 + 32, nil
	case "kelvin":
		return celsius + 273.15, nil
	default:
		return 0, &ArgumentError{Tool: "convert_temperature", Field: "to_unit", Value: unit, Message: "unknown unit"}
	}
}

// weatherConditions are the five labels the mock weather tool picks from.
var weatherConditions = []string{"Sunny", "Cloudy", "Rainy", "Partly Cloudy", "Snowy"}

// weatherTool fabricates weather data. It is intentionally non-deterministic;
// tests assert shape and ranges only.
func weatherTool() Tool {
	return NewFunctionTool(
		"get_weather",
		"Get mock weather information for a city",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"city": map[string]any{
					"type":        "string",
					"description": "City name",
				},
			},
			"required": []string{"city"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			city, _ := args["city"].(string)
			return map[string]any{
				"city":        city,
				"temperature": -10 + rand.IntN(46), // [-10, 35]
				"unit":        "celsius",
				"condition":   weatherConditions[rand.IntN(len(weatherConditions))],
				"humidity":    30 + rand.IntN(61), // [30, 90]
				"wind_speed":  rand.IntN(31),      // [0, 30]
				"note":        "This is mock weather data for demonstration purposes",
			}, nil
		},
	)
}
