// Package contract checks decoded store responses against the shape each
// operation declares, and turns failure responses into typed errors.
package contract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Shape is the closed set of legal decoded-body shapes.
type Shape uint8

const (
	ShapeAny Shape = iota
	ShapeArray
	ShapeBool
	ShapeFloat
	ShapeInt
	ShapeNumeric
	ShapeObject
	ShapeScalar
	ShapeString
	ShapeNonscalar
)

const nullableFlag Shape = 0x80

// Nullable returns the variant of s that also accepts null.
func (s Shape) Nullable() Shape {
	if s.Base() == ShapeAny {
		return ShapeAny
	}
	return s | nullableFlag
}

func (s Shape) IsNullable() bool { return s&nullableFlag != 0 }

func (s Shape) Base() Shape { return s &^ nullableFlag }

func (s Shape) String() string {
	var name string
	switch s.Base() {
	case ShapeAny:
		return "any"
	case ShapeArray:
		name = "array"
	case ShapeBool:
		name = "bool"
	case ShapeFloat:
		name = "float"
	case ShapeInt:
		name = "int"
	case ShapeNumeric:
		name = "numeric"
	case ShapeObject:
		name = "object"
	case ShapeScalar:
		name = "scalar"
	case ShapeString:
		name = "string"
	case ShapeNonscalar:
		name = "nonscalar"
	default:
		name = "invalid"
	}
	if s.IsNullable() {
		return "?" + name
	}
	return name
}

// Accepts reports whether v, as produced by Decode, has shape s.
func (s Shape) Accepts(v any) bool {
	if v == nil {
		return s.Base() == ShapeAny || s.IsNullable()
	}

	switch s.Base() {
	case ShapeAny:
		return true
	case ShapeArray:
		return isArray(v)
	case ShapeBool:
		_, ok := v.(bool)
		return ok
	case ShapeFloat:
		n, ok := v.(json.Number)
		return ok && isFloatLiteral(n)
	case ShapeInt:
		n, ok := v.(json.Number)
		return ok && !isFloatLiteral(n)
	case ShapeNumeric:
		return isNumeric(v)
	case ShapeObject:
		return isObject(v)
	case ShapeScalar:
		return isScalar(v)
	case ShapeString:
		_, ok := v.(string)
		return ok
	case ShapeNonscalar:
		return isArray(v) || isObject(v)
	}
	return false
}

// numericStringRe matches strings a PHP-style backend treats as numbers.
var numericStringRe = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?\s*$`)

func isFloatLiteral(n json.Number) bool {
	return strings.ContainsAny(string(n), ".eE")
}

func isArray(v any) bool {
	_, ok := v.([]any)
	return ok
}

func isObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func isScalar(v any) bool {
	switch v.(type) {
	case bool, json.Number, string:
		return true
	}
	return false
}

func isNumeric(v any) bool {
	switch x := v.(type) {
	case json.Number:
		return true
	case string:
		return numericStringRe.MatchString(x)
	}
	return false
}

// KindOf names the kind of a decoded value for diagnostics.
func KindOf(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case json.Number:
		if isFloatLiteral(x) {
			return "float"
		}
		return "int"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return "unknown"
}
