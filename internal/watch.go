package internal

import "fmt"

type WatchOptions struct {
	// Immediate runs the callback once at setup, with a nil old value.
	Immediate bool
}

// Watcher calls back with (new, old) every time its source changes.
type Watcher struct {
	effect *Effect

	old any
}

func (r *Runtime) Watch(source any, cb func(newValue, oldValue any), opts WatchOptions) (*Watcher, error) {
	getter, err := r.watchGetter(source)
	if err != nil {
		return nil, err
	}
	if cb == nil {
		return nil, ErrNilCallback
	}

	w := &Watcher{}

	job := func() {
		if w.effect.Disposed() {
			return
		}

		value := w.effect.Run()
		cb(value, w.old)
		w.old = value
	}

	w.effect = r.NewEffect(getter, EffectOptions{
		Lazy:      true,
		Scheduler: func(*Job) { job() },
	})

	if opts.Immediate {
		job()
	} else {
		w.old = w.effect.Run()
	}

	return w, nil
}

func (r *Runtime) watchGetter(source any) (func() any, error) {
	switch s := source.(type) {
	case func() any:
		if s != nil {
			return s, nil
		}
	case *Proxy:
		if s != nil {
			return func() any {
				traverse(s, make(map[Target]struct{}))
				return s
			}, nil
		}
	case *Record:
		if s != nil {
			return r.watchGetter(r.Wrap(s, false, false))
		}
	case *List:
		if s != nil {
			return r.watchGetter(r.Wrap(s, false, false))
		}
	case *Signal:
		if s != nil {
			return s.Read, nil
		}
	case *Computed:
		if s != nil {
			return s.Read, nil
		}
	}

	return nil, fmt.Errorf("%w: %T", ErrInvalidWatchSource, source)
}

// traverse reads every nested key of v so the running effect depends on all of them.
// Targets already visited are skipped, which also breaks cycles.
func traverse(v any, seen map[Target]struct{}) {
	p, ok := v.(*Proxy)
	if !ok {
		return
	}

	if _, ok := seen[p.target]; ok {
		return
	}
	seen[p.target] = struct{}{}

	if p.IsList() {
		for _, item := range p.Values() {
			traverse(item, seen)
		}
		return
	}

	for _, item := range p.All() {
		traverse(item, seen)
	}
}

// Old returns the value passed as new to the last callback.
func (w *Watcher) Old() any { return w.old }

func (w *Watcher) Stop() { w.effect.Stop() }
