package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShape_String(t *testing.T) {
	assert.Equal(t, "any", ShapeAny.String())
	assert.Equal(t, "any", ShapeAny.Nullable().String())
	assert.Equal(t, "object", ShapeObject.String())
	assert.Equal(t, "?object", ShapeObject.Nullable().String())
	assert.Equal(t, "?int", ShapeInt.Nullable().Nullable().String())
	assert.Equal(t, ShapeString, ShapeString.Nullable().Base())
}

func TestShape_Accepts(t *testing.T) {
	bodies := map[string]string{
		"null":    `null`,
		"true":    `true`,
		"int":     `42`,
		"neg":     `-7`,
		"float":   `4.5`,
		"exp":     `1e3`,
		"str":     `"x"`,
		"numstr":  `" 12.5 "`,
		"dotstr":  `".5"`,
		"junkstr": `"12abc"`,
		"arr":     `[1,"a"]`,
		"obj":     `{"a":1}`,
	}

	tests := []struct {
		shape  Shape
		accept []string
	}{
		{ShapeAny, []string{"null", "true", "int", "neg", "float", "exp", "str", "numstr", "dotstr", "junkstr", "arr", "obj"}},
		{ShapeArray, []string{"arr"}},
		{ShapeArray.Nullable(), []string{"null", "arr"}},
		{ShapeBool, []string{"true"}},
		{ShapeFloat, []string{"float", "exp"}},
		{ShapeInt, []string{"int", "neg"}},
		{ShapeInt.Nullable(), []string{"null", "int", "neg"}},
		{ShapeNumeric, []string{"int", "neg", "float", "exp", "numstr", "dotstr"}},
		{ShapeObject, []string{"obj"}},
		{ShapeObject.Nullable(), []string{"null", "obj"}},
		{ShapeScalar, []string{"true", "int", "neg", "float", "exp", "str", "numstr", "dotstr", "junkstr"}},
		{ShapeString, []string{"str", "numstr", "dotstr", "junkstr"}},
		{ShapeString.Nullable(), []string{"null", "str", "numstr", "dotstr", "junkstr"}},
		{ShapeNonscalar, []string{"arr", "obj"}},
	}

	for _, tt := range tests {
		t.Run(tt.shape.String(), func(t *testing.T) {
			want := map[string]bool{}
			for _, name := range tt.accept {
				want[name] = true
			}
			for name, body := range bodies {
				v, err := decodeJSON([]byte(body))
				if !assert.NoError(t, err, name) {
					continue
				}
				assert.Equal(t, want[name], tt.shape.Accepts(v), "%s accepts %s", tt.shape, name)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	for body, want := range map[string]string{
		`null`: "null", `false`: "bool", `3`: "int", `3.0`: "float",
		`"s"`: "string", `[]`: "array", `{}`: "object",
	} {
		v, err := decodeJSON([]byte(body))
		assert.NoError(t, err)
		assert.Equal(t, want, KindOf(v), body)
	}
}
