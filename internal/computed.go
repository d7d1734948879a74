package internal

// Computed is a lazily evaluated, cached derivation.
// A trigger on its inputs marks it dirty and notifies its readers; the getter runs again on the next read.
type Computed struct {
	effect *Effect

	value any
	dirty bool
}

func (r *Runtime) NewComputed(getter func() any) *Computed {
	c := &Computed{
		dirty: true,
	}

	c.effect = r.NewEffect(getter, EffectOptions{
		Lazy: true,
		Scheduler: func(*Job) {
			c.dirty = true
			r.Trigger(c, ValueKey, OpSet, NoLength)
		},
	})

	return c
}

// Read returns the cached value, recomputing it first if dirty.
// Readers depend on the computed itself, never directly on its inputs.
func (c *Computed) Read() any {
	if c.dirty || c.effect.Disposed() {
		c.value = c.effect.Run()
		c.dirty = false
	}

	c.effect.rt.Track(c, ValueKey)

	return c.value
}

func (c *Computed) Dirty() bool { return c.dirty }

func (c *Computed) Effect() *Effect { return c.effect }

// Stop detaches the computed from its inputs. Later reads recompute every time.
func (c *Computed) Stop() {
	c.effect.Stop()
}
