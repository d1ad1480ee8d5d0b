package constructor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Size  int
	Label string
	tags  []string
}

func newWidget(size int, label string) *widget { return &widget{Size: size, Label: label} }

func (w *widget) Grow(n int) int { w.Size += n; return w.Size }

func (w *widget) reset() { w.Size = 0 }

func newTagged(tags ...string) *widget { return &widget{tags: tags} }

func TestCatalog_ConstructSuccess(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register("app.Widget", newWidget))

	inst, err := c.Construct("app.Widget", []any{3, "a"})
	require.NoError(t, err)
	w, ok := inst.(*widget)
	require.True(t, ok)
	assert.Equal(t, 3, w.Size)
	assert.Equal(t, "a", w.Label)
}

func TestCatalog_ConstructNumericConversion(t *testing.T) {
	c := NewCatalog()
	c.MustRegister("app.Widget", newWidget)

	inst, err := c.Construct("app.Widget", []any{float64(7), "b"})
	require.NoError(t, err)
	assert.Equal(t, 7, inst.(*widget).Size)

	_, err = c.Construct("app.Widget", []any{7.5, "b"})
	assert.ErrorIs(t, err, ErrArguments)
}

func TestCatalog_ConstructVariadic(t *testing.T) {
	c := NewCatalog()
	c.MustRegister("app.Tagged", newTagged)

	inst, err := c.Construct("app.Tagged", nil)
	require.NoError(t, err)
	assert.Empty(t, inst.(*widget).tags)

	inst, err = c.Construct("app.Tagged", []any{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, inst.(*widget).tags)
}

func TestCatalog_ConstructionErrors(t *testing.T) {
	boom := errors.New("boom")
	c := NewCatalog()
	c.MustRegister("app.Widget", newWidget)
	c.MustRegister("app.Failing", func() (*widget, error) { return nil, boom })
	c.MustRegister("app.Nil", func() *widget { return nil })
	c.MustRegister("app.Panics", func() *widget { panic("kaboom") })
	c.MustRegister("app.Hidden", func() *widget { return &widget{} }, WithInternal())

	tests := []struct {
		name  string
		id    string
		args  []any
		cause error
	}{
		{"unknown type", "app.Missing", nil, ErrUnknownType},
		{"internal", "app.Hidden", nil, ErrNotInvocable},
		{"arity", "app.Widget", []any{1}, ErrArguments},
		{"arg type", "app.Widget", []any{"1", "a"}, ErrArguments},
		{"nil for value param", "app.Widget", []any{nil, "a"}, ErrArguments},
		{"ctor error", "app.Failing", nil, boom},
		{"nil result", "app.Nil", nil, errNilResult},
		{"panic", "app.Panics", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := c.Construct(tt.id, tt.args)
			require.Error(t, err)
			assert.Nil(t, inst)
			assert.ErrorIs(t, err, ErrConstruction)
			var ce *ConstructionError
			require.ErrorAs(t, err, &ce)
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}
		})
	}
}

func TestCatalog_RegisterValidation(t *testing.T) {
	c := NewCatalog()
	assert.Error(t, c.Register("x", 42))
	assert.Error(t, c.Register("x", nil))
	assert.Error(t, c.Register("x", func() {}))
	assert.Error(t, c.Register("x", func() (int, int) { return 1, 2 }))
	assert.Error(t, c.Register(" :: ", newWidget))

	require.NoError(t, c.Register("x", newWidget))
	assert.ErrorIs(t, c.Register("x", newWidget), ErrDuplicate)
}

func TestCatalog_RegisterDerivesTypeID(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register("", newWidget, WithDoc("test widget")))
	id := TypeIDOf(&widget{})
	assert.Equal(t, "github.com/kilianp07/objreg/core/constructor.widget", id)
	assert.Equal(t, []string{id}, c.Names())
	assert.Equal(t, "test widget", c.Doc(id))
}

func TestCatalog_ResolveTypeID(t *testing.T) {
	c := NewCatalog()
	assert.Equal(t, "App.Models.User", c.ResolveTypeID("  App::Models::User "))
	assert.Equal(t, "app/models/User", c.ResolveTypeID(`\app\models\User`))

	folded := NewCatalog(WithCaseFold())
	folded.MustRegister("App.Widget", newWidget)
	_, err := folded.Construct("app.WIDGET", []any{1, "a"})
	assert.NoError(t, err)
}

func TestCatalog_CheckPublicMethod(t *testing.T) {
	c := NewCatalog()
	c.MustRegister("app.Widget", newWidget)

	assert.NoError(t, c.CheckPublicMethod("app.Widget", "Grow"))

	err := c.CheckPublicMethod("app.Widget", "reset")
	var ve *VisibilityError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "reset", ve.Method)
	assert.ErrorIs(t, err, ErrVisibility)

	assert.ErrorIs(t, c.CheckPublicMethod("app.Widget", "Shrink"), ErrNoMethod)
	assert.ErrorIs(t, c.CheckPublicMethod("app.Nope", "Grow"), ErrUnknownType)
}

func TestCatalog_Call(t *testing.T) {
	c := NewCatalog()
	w := newWidget(1, "a")

	out, err := c.Call(w, "Grow", 2)
	require.NoError(t, err)
	assert.Equal(t, []any{3}, out)
	assert.Equal(t, 3, w.Size)

	_, err = c.Call(w, "reset")
	assert.ErrorIs(t, err, ErrVisibility)
	_, err = c.Call(w, "Shrink")
	assert.ErrorIs(t, err, ErrNoMethod)
	_, err = c.Call(w, "Grow", "x")
	assert.ErrorIs(t, err, ErrArguments)
}
