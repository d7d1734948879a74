package internal

// ValueKey is the dependency key of refs and computeds.
const ValueKey = "value"

// Signal is a reactive box around a single value (a ref).
type Signal struct {
	rt *Runtime

	value any
}

func (r *Runtime) NewSignal(initial any) *Signal {
	return &Signal{
		rt:    r,
		value: toStored(initial),
	}
}

// Read returns the current value, tracking the dependency if within an effect.
// Records and lists are returned as reactive proxies, readonly ones as they were set.
func (s *Signal) Read() any {
	s.rt.Track(s, ValueKey)

	return s.Value()
}

// Value returns the current value without tracking.
func (s *Signal) Value() any {
	if isStructured(s.value) {
		return s.rt.Wrap(s.value.(Target), false, false)
	}

	return s.value
}

func (s *Signal) Write(v any) {
	v = toStored(v)

	if !hasChanged(s.value, v) {
		return
	}

	s.value = v
	s.rt.Trigger(s, ValueKey, OpSet, NoLength)
}
