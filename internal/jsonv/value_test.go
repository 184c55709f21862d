package jsonv

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{"null", `null`, Null()},
		{"bool", `true`, Bool(true)},
		{"int", `42`, Int(42)},
		{"negative", `-7`, Int(-7)},
		{"integral float", `3.0`, Int(3)},
		{"exponent", `1e3`, Int(1000)},
		{"negative exponent", `2500e-2`, Int(25)},
		{"large integral float", `9007199254740993.0`, Int(9007199254740993)},
		{"max int64 as float", `9223372036854775807.0`, Int(math.MaxInt64)},
		{"string", `"hi"`, String("hi")},
		{"array", `[1,"a",null]`, Array(Int(1), String("a"), Null())},
		{"object", `{"a":{"b":false}}`, Object(map[string]Value{
			"a": Object(map[string]Value{"b": Bool(false)}),
		})},
		{"empty object", `{}`, Object(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"fraction", `1.5`},
		{"nested fraction", `{"a":[0.25]}`},
		{"syntax", `{"a":`},
		{"trailing", `{} {}`},
		{"empty", ``},
		{"fraction beyond float64 precision", `9007199254740993.5`},
		{"out of range", `1e19`},
		{"out of range float", `9223372036854775808.0`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParse_InvalidUTF8(t *testing.T) {
	for _, input := range []string{"\"\xff\"", "{\"a\":\"ok\xc3\"}", "{\"\xfe\":1}"} {
		_, err := Parse([]byte(input))
		assert.ErrorIs(t, err, ErrInvalid, "input %q", input)
	}

	v, err := Parse([]byte(`"h\u00e9"`))
	require.NoError(t, err)
	assert.True(t, Equal(String("hé"), v))
}

func TestEncode_RoundTrip(t *testing.T) {
	v := Object(map[string]Value{
		"name":  String("main"),
		"kind":  Int(12),
		"tags":  Array(Bool(true), Null()),
		"inner": Object(map[string]Value{"z": Int(1), "a": Int(2)}),
	})

	data, err := v.Encode()
	require.NoError(t, err)
	assert.Equal(t, `{"inner":{"a":2,"z":1},"kind":12,"name":"main","tags":[true,null]}`, string(data))

	back, err := Parse(data)
	require.NoError(t, err)
	assert.True(t, v.Equal(back))
}

func TestDecode_Record(t *testing.T) {
	type record struct {
		Int  int  `json:"int"`
		Bool bool `json:"bool"`
	}

	original := record{Int: 0, Bool: true}
	v, err := From(original)
	require.NoError(t, err)

	decoded, err := DecodeAs[record](v)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestAccessors(t *testing.T) {
	v, err := Parse([]byte(`{"s":"x","i":3,"b":true,"a":[1,2],"o":{},"n":null}`))
	require.NoError(t, err)

	s, err := v.StringAt("s")
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	i, err := v.IntAt("i")
	require.NoError(t, err)
	assert.Equal(t, 3, i)

	b, err := v.BoolAt("b")
	require.NoError(t, err)
	assert.True(t, b)

	arr, err := v.ArrayAt("a")
	require.NoError(t, err)
	assert.Len(t, arr, 2)

	obj, err := v.ObjectAt("o")
	require.NoError(t, err)
	assert.Empty(t, obj)

	assert.NoError(t, v.NullAt("n"))
	assert.Equal(t, []string{"a", "b", "i", "n", "o", "s"}, v.Keys())

	_, err = v.IntAt("s")
	var kindErr *KindError
	require.ErrorAs(t, err, &kindErr)
	assert.Equal(t, KindInt, kindErr.Want)
	assert.Equal(t, KindString, kindErr.Got)

	_, err = v.Get("missing")
	assert.True(t, errors.Is(err, ErrNoField))

	a, _ := v.Field("a")
	first, ok := a.Index(0)
	require.True(t, ok)
	assert.True(t, first.Equal(Int(1)))

	_, err = a.At(5)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, ok = a.Index(-1)
	assert.False(t, ok)
	_, ok = String("x").Field("a")
	assert.False(t, ok)
}

func TestQueryAndSet(t *testing.T) {
	v, err := Parse([]byte(`{"result":[{"name":"main","kind":12}]}`))
	require.NoError(t, err)

	name, ok := v.Query("result.0.name")
	require.True(t, ok)
	assert.True(t, name.Equal(String("main")))

	_, ok = v.Query("result.3.name")
	assert.False(t, ok)

	updated, err := v.Set("meta.count", 1)
	require.NoError(t, err)
	count, ok := updated.Query("meta.count")
	require.True(t, ok)
	assert.True(t, count.Equal(Int(1)))

	// the original value is unchanged
	_, ok = v.Query("meta")
	assert.False(t, ok)

	withValue, err := v.Set("extra", Array(Int(1)))
	require.NoError(t, err)
	extra, ok := withValue.Field("extra")
	require.True(t, ok)
	assert.Equal(t, 1, extra.Len())

	removed, err := withValue.Delete("result")
	require.NoError(t, err)
	assert.Equal(t, []string{"extra"}, removed.Keys())
}

func TestString_Pretty(t *testing.T) {
	v := Object(map[string]Value{"a": Int(1)})
	assert.Equal(t, "{\n  \"a\": 1\n}", v.String())
	assert.Equal(t, "null", Null().String())
}

func TestFromAny_Unsupported(t *testing.T) {
	_, err := FromAny(struct{}{})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = FromAny(2.5)
	assert.ErrorIs(t, err, ErrInvalid)
}
