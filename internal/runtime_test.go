package internal

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	subscribe := func(r *Runtime, target any, keys ...any) *Effect {
		e := r.NewEffect(func() any { return nil }, EffectOptions{Lazy: true})
		for _, k := range keys {
			r.store.Dep(target, k, true).Link(e)
		}
		return e
	}

	t.Run("set only reaches the key", func(t *testing.T) {
		r := newTestRuntime(t)
		target := NewRecord()

		foo := subscribe(r, target, "foo")
		subscribe(r, target, IterateKey)

		assert.Equal(t, []*Effect{foo}, r.collect(target, "foo", OpSet, NoLength))
	})

	t.Run("add and delete reach iteration", func(t *testing.T) {
		r := newTestRuntime(t)
		target := NewRecord()

		iter := subscribe(r, target, IterateKey)
		foo := subscribe(r, target, "foo", IterateKey)

		assert.Equal(t, []*Effect{foo, iter}, r.collect(target, "foo", OpAdd, NoLength))
		assert.Equal(t, []*Effect{foo, iter}, r.collect(target, "foo", OpDelete, NoLength))
	})

	t.Run("length change reaches truncated indexes in order", func(t *testing.T) {
		r := newTestRuntime(t)
		target := NewList(1, 2, 3, 4)

		four := subscribe(r, target, 3)
		two := subscribe(r, target, 1)
		one := subscribe(r, target, 0)
		length := subscribe(r, target, LengthKey)

		runs := r.collect(target, LengthKey, OpSet, 1)

		assert.Equal(t, []*Effect{length, two, four}, runs)
		assert.NotContains(t, runs, one)
	})

	t.Run("skips the active effect", func(t *testing.T) {
		r := newTestRuntime(t)
		target := NewRecord()

		var runs []*Effect
		r.NewEffect(func() any {
			r.Track(target, "foo")
			runs = r.collect(target, "foo", OpSet, NoLength)
			return nil
		}, EffectOptions{})

		assert.Empty(t, runs)
	})
}

func TestMetrics(t *testing.T) {
	t.Run("counts tracks triggers and runs", func(t *testing.T) {
		r := newTestRuntime(t)
		obj := r.Wrap(NewRecord().Put("foo", 1), false, false)

		e := r.NewEffect(func() any {
			obj.Get("foo")
			obj.Get("foo")
			return nil
		}, EffectOptions{})

		obj.Set("foo", 2)
		obj.Set("bar", 1)

		assert.Equal(t, 2.0, testutil.ToFloat64(r.metrics.tracks))
		assert.Equal(t, 2.0, testutil.ToFloat64(r.metrics.effectRuns))
		assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.triggers.WithLabelValues("set")))
		assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.triggers.WithLabelValues("add")))
		assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.effectsActive))

		e.Stop()
		e.Stop()
		assert.Equal(t, 0.0, testutil.ToFloat64(r.metrics.effectsActive))
	})

	t.Run("readonly violations are counted and logged", func(t *testing.T) {
		var buf bytes.Buffer
		r, err := NewRuntime(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
		require.NoError(t, err)

		ro := r.Wrap(NewList(1), true, false)
		ro.Set(0, 2)
		ro.Push(3)

		assert.Equal(t, 2.0, testutil.ToFloat64(r.metrics.readonlyViolations))
		assert.Contains(t, buf.String(), "op=push")
	})

	t.Run("const labels", func(t *testing.T) {
		reg := prometheus.NewPedanticRegistry()

		r, err := NewRuntime(
			WithMetrics(reg),
			WithNamespace("app"),
			WithConstLabels(prometheus.Labels{"runtime": "main"}),
		)
		require.NoError(t, err)
		defer r.Close()

		count, err := testutil.GatherAndCount(reg, "app_effects_active")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
