package mcp

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// ParamType is the primitive type a parameter accepts.
type ParamType string

const (
	TypeString ParamType = "string"
	TypeNumber ParamType = "number"
	TypeEnum   ParamType = "enum"
)

// Param declares one named argument.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Default     any
	Enum        []string
}

// StringParam declares a required string parameter.
func StringParam(name, description string) Param {
	return Param{Name: name, Type: TypeString, Description: description, Required: true}
}

// NumberParam declares a required number parameter.
func NumberParam(name, description string) Param {
	return Param{Name: name, Type: TypeNumber, Description: description, Required: true}
}

// EnumParam declares a required parameter restricted to values.
func EnumParam(name, description string, values ...string) Param {
	return Param{Name: name, Type: TypeEnum, Description: description, Required: true, Enum: values}
}

// Optional marks p as optional.
func (p Param) Optional() Param {
	p.Required = false
	return p
}

// WithDefault marks p as optional and substitutes v when it is absent.
func (p Param) WithDefault(v any) Param {
	p.Required = false
	p.Default = v
	return p
}

// ParameterSchema is the ordered list of parameters a capability accepts.
type ParameterSchema struct {
	Params []Param
}

// Schema builds a ParameterSchema from params.
func Schema(params ...Param) ParameterSchema {
	return ParameterSchema{Params: params}
}

// Args holds validated arguments. Values are string for string and enum
// parameters and float64 for numbers.
type Args map[string]any

// String returns the string value of name, or "" if absent.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Number returns the numeric value of name, or 0 if absent.
func (a Args) Number(name string) float64 {
	f, _ := a[name].(float64)
	return f
}

// Has reports whether name is present after validation.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Validate checks raw against s. The first failing parameter, in declaration
// order, fails the whole call. Undeclared arguments are dropped and JSON null
// counts as absent.
func Validate(s ParameterSchema, raw map[string]any) (Args, error) {
	out := make(Args, len(s.Params))
	for _, p := range s.Params {
		v, ok := raw[p.Name]
		if !ok || v == nil {
			if p.Required {
				return nil, &MissingParameterError{Param: p.Name}
			}
			if p.Default != nil {
				out[p.Name] = p.Default
			}
			continue
		}
		val, err := coerce(p, v)
		if err != nil {
			return nil, err
		}
		out[p.Name] = val
	}
	return out, nil
}

func coerce(p Param, v any) (any, error) {
	switch p.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, &TypeMismatchError{Param: p.Name, Expected: TypeString, Got: typeName(v)}
		}
		return s, nil
	case TypeNumber:
		f, ok := toFloat(v)
		if !ok {
			return nil, &TypeMismatchError{Param: p.Name, Expected: TypeNumber, Got: typeName(v)}
		}
		return f, nil
	case TypeEnum:
		s, ok := v.(string)
		if !ok {
			return nil, &TypeMismatchError{Param: p.Name, Expected: TypeEnum, Got: typeName(v)}
		}
		if !slices.Contains(p.Enum, s) {
			return nil, &InvalidEnumValueError{Param: p.Name, Value: s, Accepted: slices.Clone(p.Enum)}
		}
		return s, nil
	default:
		return nil, fmt.Errorf("parameter %q: unsupported type %q", p.Name, p.Type)
	}
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// JSONSchema renders s as the JSON Schema object advertised in tools/list.
func (s ParameterSchema) JSONSchema() map[string]any {
	props := map[string]any{}
	required := []string{}
	for _, p := range s.Params {
		prop := map[string]any{}
		switch p.Type {
		case TypeNumber:
			prop["type"] = "number"
		case TypeEnum:
			prop["type"] = "string"
			prop["enum"] = p.Enum
		default:
			prop["type"] = "string"
		}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

// PromptArgument describes one argument in prompts/list.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// PromptArguments renders s in the prompts/list argument form.
func (s ParameterSchema) PromptArguments() []PromptArgument {
	out := make([]PromptArgument, 0, len(s.Params))
	for _, p := range s.Params {
		out = append(out, PromptArgument{Name: p.Name, Description: p.Description, Required: p.Required})
	}
	return out
}
