package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobQueue(t *testing.T) {
	t.Run("coalesces reruns until flushed", func(t *testing.T) {
		r := newTestRuntime(t)
		q := NewJobQueue()
		obj := r.Wrap(NewRecord().Put("a", 1).Put("b", 1), false, false)

		log := []any{}
		r.NewEffect(func() any {
			log = append(log, obj.Get("a"), obj.Get("b"))
			return nil
		}, EffectOptions{Scheduler: q.Schedule})

		obj.Set("a", 2)
		obj.Set("b", 2)

		assert.Equal(t, 1, q.Len())
		assert.Equal(t, []any{1, 1}, log)

		q.Flush()

		assert.Equal(t, 0, q.Len())
		assert.Equal(t, []any{1, 1, 2, 2}, log)
	})

	t.Run("runs jobs scheduled while flushing", func(t *testing.T) {
		r := newTestRuntime(t)
		q := NewJobQueue()
		obj := r.Wrap(NewRecord().Put("a", 0).Put("b", 0), false, false)

		log := []string{}
		r.NewEffect(func() any {
			log = append(log, "first")
			if obj.Get("a").(int) > 0 {
				obj.Set("b", 1)
			}
			return nil
		}, EffectOptions{Scheduler: q.Schedule})

		r.NewEffect(func() any {
			log = append(log, "second")
			obj.Get("b")
			return nil
		}, EffectOptions{Scheduler: q.Schedule})

		obj.Set("a", 1)
		q.Flush()

		assert.Equal(t, []string{"first", "second", "first", "second"}, log)
	})

	t.Run("skips stopped effects", func(t *testing.T) {
		r := newTestRuntime(t)
		q := NewJobQueue()
		obj := r.Wrap(NewRecord().Put("a", 0), false, false)

		runs := 0
		e := r.NewEffect(func() any {
			runs++
			obj.Get("a")
			return nil
		}, EffectOptions{Scheduler: q.Schedule})

		obj.Set("a", 1)
		e.Stop()
		q.Flush()

		assert.Equal(t, 1, runs)
	})
}
