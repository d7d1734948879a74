package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraverse(t *testing.T) {
	t.Run("survives cycles", func(t *testing.T) {
		r := newTestRuntime(t)

		rec := NewRecord()
		rec.Put("self", rec).Put("list", NewList(rec))
		obj := r.Wrap(rec, false, false)

		runs := 0
		_, err := r.Watch(obj, func(_, _ any) { runs++ }, WatchOptions{})
		require.NoError(t, err)

		obj.Get("list").(*Proxy).Push(1)

		assert.Equal(t, 1, runs)
	})

	t.Run("watch source kinds", func(t *testing.T) {
		r := newTestRuntime(t)
		cb := func(_, _ any) {}

		for _, source := range []any{
			func() any { return nil },
			NewRecord(),
			NewList(),
			r.Wrap(NewRecord(), true, false),
			r.NewSignal(1),
			r.NewComputed(func() any { return 1 }),
		} {
			_, err := r.Watch(source, cb, WatchOptions{})
			assert.NoError(t, err, "%T", source)
		}

		for _, source := range []any{nil, 1, "foo", (*Proxy)(nil), (func() any)(nil)} {
			_, err := r.Watch(source, cb, WatchOptions{})
			assert.ErrorIs(t, err, ErrInvalidWatchSource, "%T", source)
		}
	})
}
