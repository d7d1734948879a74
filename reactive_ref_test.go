package reactive

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef(t *testing.T) {
	t.Run("reads and writes", func(t *testing.T) {
		count := NewRef(0)
		assert.Equal(t, 0, count.Value())

		count.Set(10)
		assert.Equal(t, 10, count.Value())
	})

	t.Run("zero values", func(t *testing.T) {
		err := NewRef[error](nil)
		assert.Nil(t, err.Value())

		name := NewRef("")
		assert.Equal(t, "", name.Value())
	})

	t.Run("reruns effects on change only", func(t *testing.T) {
		log := []string{}

		name := NewRef("a")
		NewEffect(func() {
			log = append(log, name.Value())
		})

		name.Set("b")
		name.Set("b")
		name.Set("c")

		assert.Equal(t, []string{"a", "b", "c"}, log)
	})

	t.Run("holds proxies as reactive values", func(t *testing.T) {
		log := []any{}

		obj := Reactive(NewRecord().Put("foo", 1))
		ref := NewRef(obj)

		NewEffect(func() {
			log = append(log, ref.Value().Get("foo"))
		})

		obj.Set("foo", 2)

		assert.Same(t, obj, ref.Value())
		assert.Equal(t, []any{1, 2}, log)
	})

	t.Run("readonly values stay readonly", func(t *testing.T) {
		var buf bytes.Buffer
		rt, err := NewRuntime(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
		require.NoError(t, err)

		rt.Run(func() {
			child := NewRecord().Put("foo", 1)
			ro := Readonly(child)

			ref := NewRef(ro)
			assert.Same(t, ro, ref.Value())
			assert.True(t, ref.Value().IsReadonly())

			ref.Value().Set("foo", 3)

			other := NewRef(Reactive(NewRecord()))
			other.Set(ro)
			assert.Same(t, ro, other.Value())

			v, _ := child.Lookup("foo")
			assert.Equal(t, 1, v)
		})

		assert.Contains(t, buf.String(), "level=WARN")
	})
}
