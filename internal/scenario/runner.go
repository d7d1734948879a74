package scenario

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/AnatoleLucet/reactive"
)

var modes = map[string]func(reactive.Target) *reactive.Proxy{
	"":                 reactive.Reactive,
	"reactive":         reactive.Reactive,
	"shallow":          reactive.ShallowReactive,
	"readonly":         reactive.Readonly,
	"shallow_readonly": reactive.ShallowReadonly,
}

type runner struct {
	w io.Writer

	root      *reactive.Proxy
	queue     *reactive.JobQueue
	computeds map[string]*reactive.Computed[int]

	// first error raised from inside a reaction
	err error
}

// Run executes s in a fresh runtime and writes its trace to w.
// Warnings logged by the runtime, such as refused readonly writes, are part of the trace.
// opts are applied to the runtime after the trace logger, so WithLogger replaces it.
// The runtime is not closed: metrics registered through opts can still be gathered.
func Run(s *Scenario, w io.Writer, opts ...reactive.Option) error {
	if err := s.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))

	rt, err := reactive.NewRuntime(append([]reactive.Option{reactive.WithLogger(logger)}, opts...)...)
	if err != nil {
		return err
	}

	r := &runner{
		w:         w,
		queue:     reactive.NewJobQueue(),
		computeds: make(map[string]*reactive.Computed[int]),
	}

	rt.Run(func() {
		err = r.run(s)
	})

	return err
}

func (r *runner) run(s *Scenario) error {
	r.root = modes[s.Mode](reactive.FromMap(s.Data))

	for _, spec := range s.Computeds {
		r.computed(spec)
	}

	for _, spec := range s.Effects {
		r.effect(spec)
	}

	for _, spec := range s.Watches {
		if err := r.watch(spec); err != nil {
			return err
		}
	}

	if r.err != nil {
		return r.err
	}

	for i, step := range s.Steps {
		if err := r.step(step); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}

		if r.err != nil {
			return fmt.Errorf("step %d: %w", i+1, r.err)
		}
	}

	return nil
}

func (r *runner) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format+"\n", args...)
}

func (r *runner) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *runner) computed(spec ComputedSpec) {
	paths, acc, op := spec.Sum, 0, func(a, b int) int { return a + b }
	if len(spec.Product) > 0 {
		paths, acc, op = spec.Product, 1, func(a, b int) int { return a * b }
	}

	r.computeds[spec.Name] = reactive.NewComputed(func() int {
		r.printf("computed %s evaluated", spec.Name)

		result := acc
		for _, path := range paths {
			v, err := r.lookup(path)
			if err != nil {
				r.fail(err)
				return 0
			}

			result = op(result, toInt(v))
		}

		return result
	})
}

func (r *runner) effect(spec EffectSpec) {
	var opts []reactive.EffectOption
	if spec.Scheduler == "queue" {
		opts = append(opts, reactive.WithScheduler(r.queue.Schedule))
	}

	reactive.NewEffect(func() {
		var line strings.Builder
		fmt.Fprintf(&line, "effect %s:", spec.Name)

		read := func(path string) any {
			v, err := r.lookup(path)
			if err != nil {
				r.fail(err)
				return nil
			}

			fmt.Fprintf(&line, " %s=%s", path, format(v))
			return v
		}

		for _, path := range spec.Reads {
			read(path)
		}

		if b := spec.When; b != nil {
			branch := b.Else
			if truthy(read(b.Path)) {
				branch = b.Then
			}

			for _, path := range branch {
				read(path)
			}
		}

		for _, name := range spec.Computeds {
			fmt.Fprintf(&line, " %s=%d", name, r.computeds[name].Value())
		}

		r.printf("%s", line.String())
	}, opts...)
}

func (r *runner) watch(spec WatchSpec) error {
	var opts []reactive.WatchOption
	if spec.Immediate {
		opts = append(opts, reactive.Immediate())
	}

	cb := func(newValue, oldValue any) {
		r.printf("watch %s: %s <- %s", spec.Name, format(newValue), format(oldValue))
	}

	var source any
	switch {
	case spec.Computed != "":
		source = r.computeds[spec.Computed]
	case spec.Deep:
		v, err := r.lookup(spec.Path)
		if err != nil {
			return err
		}

		// old and new are the same container, only print its current state
		source = v
		cb = func(newValue, _ any) {
			r.printf("watch %s: %s", spec.Name, format(newValue))
		}
	default:
		source = func() any {
			v, err := r.lookup(spec.Path)
			if err != nil {
				r.fail(err)
			}
			return v
		}
	}

	if _, err := reactive.WatchSource(source, cb, opts...); err != nil {
		return fmt.Errorf("%w: watch %q: %w", ErrScenario, spec.Name, err)
	}

	return nil
}

func (r *runner) step(step Step) error {
	switch {
	case step.Set != "":
		value := convert(step.Value)
		r.printf("> set %s = %s", step.Set, format(value))

		parent, key, err := r.parent(step.Set)
		if err != nil {
			return err
		}

		switch p := parent.(type) {
		case *reactive.Proxy:
			p.Set(key, value)
		case *reactive.Record:
			p.Put(key, value)
		default:
			return fmt.Errorf("%w: cannot set %q on %T", ErrScenario, step.Set, parent)
		}

	case step.Delete != "":
		r.printf("> delete %s", step.Delete)

		parent, key, err := r.parent(step.Delete)
		if err != nil {
			return err
		}

		p, ok := parent.(*reactive.Proxy)
		if !ok {
			return fmt.Errorf("%w: cannot delete %q from %T", ErrScenario, step.Delete, parent)
		}
		p.Delete(key)

	case step.Push != "":
		value := convert(step.Value)
		r.printf("> push %s %s", step.Push, format(value))

		v, err := r.lookup(step.Push)
		if err != nil {
			return err
		}

		p, ok := v.(*reactive.Proxy)
		if !ok || !p.IsList() {
			return fmt.Errorf("%w: %q is not an observed list", ErrScenario, step.Push)
		}
		p.Push(value)

	case step.Flush:
		r.printf("> flush")
		r.queue.Flush()

	case step.Read != "":
		r.printf("> read %s", step.Read)
		r.printf("computed %s = %d", step.Read, r.computeds[step.Read].Value())
	}

	return nil
}

// lookup resolves a dotted path from the root. The empty path is the root itself.
func (r *runner) lookup(path string) (any, error) {
	var v any = r.root
	if path == "" {
		return v, nil
	}

	for _, seg := range strings.Split(path, ".") {
		next, err := child(v, seg)
		if err != nil {
			return nil, fmt.Errorf("%w: path %q: %w", ErrScenario, path, err)
		}

		v = next
	}

	return v, nil
}

// parent resolves everything but the last segment of path.
func (r *runner) parent(path string) (any, string, error) {
	i := strings.LastIndex(path, ".")
	if i == -1 {
		return r.root, path, nil
	}

	parent, err := r.lookup(path[:i])
	return parent, path[i+1:], err
}

func child(v any, seg string) (any, error) {
	switch c := v.(type) {
	case *reactive.Proxy:
		return c.Get(seg), nil
	case *reactive.Record:
		x, _ := c.Lookup(seg)
		return x, nil
	case *reactive.List:
		if seg == reactive.LengthKey {
			return c.Len(), nil
		}

		i, err := strconv.Atoi(seg)
		if err != nil {
			return nil, fmt.Errorf("%q is not an index", seg)
		}
		return c.At(i), nil
	}

	return nil, fmt.Errorf("cannot read %q of %s", seg, format(v))
}

func convert(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return reactive.FromMap(v)
	case []any:
		return reactive.FromSlice(v)
	}

	return v
}

// format prints a value without tracking anything.
func format(v any) string {
	switch v := reactive.ToRaw(v).(type) {
	case nil:
		return "nil"
	case *reactive.Record:
		parts := make([]string, 0, v.Len())
		for _, k := range v.Keys() {
			x, _ := v.Lookup(k)
			parts = append(parts, k+":"+format(x))
		}
		return "{" + strings.Join(parts, " ") + "}"
	case *reactive.List:
		parts := make([]string, 0, v.Len())
		for i := range v.Len() {
			parts = append(parts, format(v.At(i)))
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case float64:
		return v != 0 && !math.IsNaN(v)
	}

	return true
}

// toInt reads a number. Anything else counts as zero.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}

	return 0
}
