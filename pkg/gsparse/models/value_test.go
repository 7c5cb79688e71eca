package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_String(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{"empty", Empty(), ""},
		{"text", Text("Moscow"), "Moscow"},
		{"integer", Number(25), "25"},
		{"negative", Number(-3), "-3"},
		{"fraction", Number(3.5), "3.5"},
		{"large integral", Number(1e15), "1000000000000000"},
		{"huge", Number(1e21), "1e+21"},
		{"true", Bool(true), "TRUE"},
		{"false", Bool(false), "FALSE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.value.String())
		})
	}
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, Empty().Equal(Value{}))
	assert.True(t, Number(25).Equal(Number(25.0)))
	assert.True(t, Text("a").Equal(Text("a")))
	assert.True(t, Bool(false).Equal(Bool(false)))

	assert.False(t, Text("25").Equal(Number(25)), "kinds differ")
	assert.False(t, Text("").Equal(Empty()), "kinds differ")
	assert.False(t, Bool(true).Equal(Bool(false)))
	assert.False(t, Number(math.NaN()).Equal(Number(math.NaN())))
}

func TestValue_IsEmpty(t *testing.T) {
	assert.True(t, Empty().IsEmpty())
	assert.True(t, Text("").IsEmpty())
	assert.True(t, Text(" \t\n").IsEmpty())
	assert.False(t, Text("x").IsEmpty())
	assert.False(t, Number(0).IsEmpty())
	assert.False(t, Bool(false).IsEmpty())
}

func TestValue_Accessors(t *testing.T) {
	n, ok := Number(2.5).AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 2.5, n)

	_, ok = Text("2.5").AsNumber()
	assert.False(t, ok)

	s, ok := Text("hi").AsText()
	assert.True(t, ok)
	assert.Equal(t, "hi", s)

	b, ok := Bool(true).AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	assert.Nil(t, Empty().Interface())
	assert.Equal(t, "number", KindNumber.String())
	assert.Equal(t, "boolean", KindBool.String())
}

func TestValue_MarshalJSON(t *testing.T) {
	out, err := json.Marshal([]Value{Empty(), Text("a"), Number(1.5), Bool(true), Number(math.Inf(1))})
	require.NoError(t, err)
	assert.JSONEq(t, `[null, "a", 1.5, true, "+Inf"]`, string(out))
}

func TestCell_MarshalJSON(t *testing.T) {
	c, err := NewCell(2, 28, Number(7))
	require.NoError(t, err)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"address":"AB2","row":2,"column":28,"type":"number","value":7}`, string(out))
}

func TestNewCell_InvalidCoordinate(t *testing.T) {
	_, err := NewCell(0, 1, Empty())
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	var zero Cell
	assert.Equal(t, "", zero.Address())
	assert.True(t, zero.IsEmpty())
}
