package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModule struct {
	defs []*Definition
}

func (m stubModule) Register(r *Registry) {
	for _, def := range m.defs {
		r.Register(def)
	}
}

func simplePart(name string) *Definition {
	b := NewPart[*service](name).Constructor(func() (*service, error) { return &service{}, nil })
	return ExportSelf(b, name, nil).MustBuild()
}

func TestRegistry(t *testing.T) {
	r := New()
	var m Module = stubModule{defs: []*Definition{simplePart("b"), simplePart("a")}}
	m.Register(r)

	t.Run("names are sorted", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b"}, r.Names())
		defs := r.Definitions()
		require.Len(t, defs, 2)
		assert.Equal(t, "a", defs[0].Name())
	})

	t.Run("lookup", func(t *testing.T) {
		def, ok := r.Lookup("a")
		require.True(t, ok)
		assert.Equal(t, "a", def.Name())

		_, ok = r.Lookup("missing")
		assert.False(t, ok)
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		assert.PanicsWithValue(t, "part with name 'a' already registered", func() {
			r.Register(simplePart("a"))
		})
	})
}
