package registry

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int
}

type opaque struct {
	level int
}

type tagged struct {
	Name  string `json:"name,omitempty"`
	Skip  int    `json:"-"`
	Inner *point
}

func mustKey(t *testing.T, kind Kind, typeID string, args []any) Key {
	t.Helper()
	k, err := ConstructionKey(kind, typeID, args)
	require.NoError(t, err)
	return k
}

func TestConstructionKey_Deterministic(t *testing.T) {
	a := mustKey(t, KindObtain, "app.Widget", []any{42, "x", map[string]any{"b": 1, "a": 2}})
	b := mustKey(t, KindObtain, "app.Widget", []any{42, "x", map[string]any{"a": 2, "b": 1}})
	assert.Equal(t, a, b)
	assert.False(t, a.IsZero())
	assert.Len(t, a.String(), 64)

	// int and float64 with the same value serialize identically
	assert.Equal(t, mustKey(t, KindNew, "w", []any{42}), mustKey(t, KindNew, "w", []any{42.0}))
	// nil and empty argument lists are the same request
	assert.Equal(t, mustKey(t, KindNew, "w", nil), mustKey(t, KindNew, "w", []any{}))
	assert.Equal(t, mustKey(t, KindNew, "w", []any{point{1, 2}}), mustKey(t, KindNew, "w", []any{point{1, 2}}))
}

func TestConstructionKey_Discriminates(t *testing.T) {
	base := mustKey(t, KindObtain, "app.Widget", []any{1, 2})
	cases := map[string]Key{
		"kind":      mustKey(t, KindNew, "app.Widget", []any{1, 2}),
		"type":      mustKey(t, KindObtain, "app.Gadget", []any{1, 2}),
		"order":     mustKey(t, KindObtain, "app.Widget", []any{2, 1}),
		"value":     mustKey(t, KindObtain, "app.Widget", []any{1, 3}),
		"arity":     mustKey(t, KindObtain, "app.Widget", []any{1}),
		"str vs nr": mustKey(t, KindObtain, "app.Widget", []any{"1", 2}),
		"alias":     AliasKey("app.Widget", "[1,2]"),
		"bytes":     mustKey(t, KindObtain, "app.Widget", []any{[]byte("a"), 2}),
		"base64":    mustKey(t, KindObtain, "app.Widget", []any{"YQ==", 2}),
	}
	for name, k := range cases {
		assert.NotEqual(t, base, k, name)
	}
}

func TestConstructionString(t *testing.T) {
	s, err := ConstructionString(KindObtain, "app.Widget", []any{42, "<a&b>"})
	require.NoError(t, err)
	assert.Equal(t, `obtain:app.Widget:[42,"<a&b>"]`, s)
	assert.Equal(t, "app.Widget:main", AliasString("app.Widget", "main"))
}

func TestConstructionKey_BytesAndStringsDiffer(t *testing.T) {
	assert.NotEqual(t,
		mustKey(t, KindObtain, "T", []any{[]byte("a")}),
		mustKey(t, KindObtain, "T", []any{"YQ=="}))

	s, err := ConstructionString(KindObtain, "T", []any{[]byte("ab")})
	require.NoError(t, err)
	assert.Equal(t, "obtain:T:[[97,98]]", s)
}

func TestConstructionString_Structs(t *testing.T) {
	s, err := ConstructionString(KindNew, "T", []any{
		tagged{Name: "n", Skip: 3, Inner: &point{1, 2}},
		&point{3, 4},
		map[int]bool{2: true, 1: false},
	})
	require.NoError(t, err)
	assert.Equal(t, `new:T:[{"name":"n","Inner":{"X":1,"Y":2}},{"X":3,"Y":4},{"1":false,"2":true}]`, s)
}

func TestConstructionString_Marshalers(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s, err := ConstructionString(KindNew, "T", []any{at, &at, time.Second})
	require.NoError(t, err)
	assert.Equal(t, `new:T:["2024-05-01T12:00:00Z","2024-05-01T12:00:00Z",1000000000]`, s)
}

func TestConstructionKey_UnsupportedArgument(t *testing.T) {
	cases := map[string][]any{
		"chan":       {make(chan int)},
		"nan":        {math.NaN()},
		"inf":        {math.Inf(1)},
		"func":       {func() {}},
		"unexported": {opaque{1}},
		"nested":     {[]any{map[string]any{"o": opaque{2}}}},
		"map key":    {map[point]int{{1, 2}: 3}},
	}
	for name, args := range cases {
		_, err := ConstructionKey(KindNew, "w", args)
		assert.ErrorIs(t, err, ErrUnsupportedArgument, name)
	}
}

func TestConstructionKey_CyclicArgument(t *testing.T) {
	type node struct {
		Next *node
	}
	n := &node{}
	n.Next = n
	_, err := ConstructionKey(KindNew, "w", []any{n})
	assert.ErrorIs(t, err, ErrUnsupportedArgument)
}

func TestAliasKey(t *testing.T) {
	assert.Equal(t, AliasKey("w", "a"), AliasKey("w", "a"))
	assert.NotEqual(t, AliasKey("w", "a"), AliasKey("w", "b"))
	assert.NotEqual(t, AliasKey("w", "a"), AliasKey("v", "a"))
}
