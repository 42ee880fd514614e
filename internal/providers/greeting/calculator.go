package greeting

import (
	"context"
	"fmt"
	"math"
	"strconv"

	mcp "greeting/internal/mcp"
)

// DivideByZeroText is the result of dividing by zero. It is a normal result,
// not a failure.
const DivideByZeroText = "⚠️ Undefined operation: cannot divide by zero."

type operation struct {
	symbol string
	apply  func(a, b float64) float64
}

var operations = map[string]operation{
	"add":      {"+", func(a, b float64) float64 { return a + b }},
	"subtract": {"-", func(a, b float64) float64 { return a - b }},
	"multiply": {"×", func(a, b float64) float64 { return a * b }},
	"divide":   {"÷", func(a, b float64) float64 { return a / b }},
}

func calculatorTool() mcp.Descriptor {
	return mcp.Descriptor{
		Kind:        mcp.KindTool,
		Name:        "calculator",
		Description: "Performs one of the four basic arithmetic operations.",
		Schema: mcp.Schema(
			mcp.EnumParam("operation", "Operation (add, subtract, multiply, divide)", "add", "subtract", "multiply", "divide"),
			mcp.NumberParam("a", "First operand"),
			mcp.NumberParam("b", "Second operand"),
		),
		Handler: calculate,
	}
}

func calculate(_ context.Context, args mcp.Args) (mcp.Result, error) {
	name := args.String("operation")
	a, b := args.Number("a"), args.Number("b")
	op, ok := operations[name]
	if !ok {
		return nil, fmt.Errorf("unsupported operation %q", name)
	}
	if name == "divide" && b == 0 {
		return mcp.Text(DivideByZeroText), nil
	}

	result := formatResult(op.apply(a, b))
	return mcp.Text(fmt.Sprintf("🧮 **Calculation result**\n\n**Operation**: %s (%s)\n**Expression**: %s %s %s = %s\n**Result**: **%s**",
		name, op.symbol, formatNumber(a), op.symbol, formatNumber(b), result, result)), nil
}

// formatResult prints integers without a fractional part and everything
// else with two decimals.
func formatResult(f float64) string {
	if f == 0 {
		f = 0 // drop the sign of -0
	}
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatNumber(f float64) string {
	if f == 0 {
		f = 0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
