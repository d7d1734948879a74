package reactive

import (
	"fmt"
	"reflect"

	"github.com/AnatoleLucet/reactive/internal"
)

type (
	// Target is a container that can be made observable: *Record, *List or *Proxy.
	Target = internal.Target

	// Record is an insertion ordered, string keyed container.
	Record = internal.Record

	// List is an index addressed container with a "length" key.
	List = internal.List

	// Accessor is a computed property of a Record. Get and Set receive the proxy
	// the property was accessed through.
	Accessor = internal.Accessor

	// Proxy is the observable view returned by Reactive, Readonly and their shallow variants.
	Proxy = internal.Proxy

	// Job is the stable rerun handle an effect hands to its Scheduler.
	Job = internal.Job

	// Scheduler decides when a triggered effect re-runs.
	Scheduler = internal.Scheduler

	// JobQueue is a deduplicating scheduler, see NewJobQueue.
	JobQueue = internal.JobQueue

	// Effect is a re-runnable computation handle.
	Effect = internal.Effect

	// Watcher is the handle returned by Watch.
	Watcher = internal.Watcher

	// Option configures a Runtime.
	Option = internal.Option
)

// LengthKey is the key of a list's length.
const LengthKey = internal.LengthKey

var (
	ErrInvalidWatchSource = internal.ErrInvalidWatchSource
	ErrNilCallback        = internal.ErrNilCallback
	ErrNotStructured      = internal.ErrNotStructured
)

var (
	NewRecord = internal.NewRecord
	NewList   = internal.NewList
	FromMap   = internal.FromMap
	FromSlice = internal.FromSlice

	// ToRaw unwraps a proxy to the record or list it observes.
	ToRaw = internal.ToRaw

	WithLogger      = internal.WithLogger
	WithMetrics     = internal.WithMetrics
	WithNamespace   = internal.WithNamespace
	WithConstLabels = internal.WithConstLabels
)

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	if t, ok := v.(T); ok {
		return t
	}

	// a ref of *Record hands back the record behind the proxy
	raw := internal.ToRaw(v)
	if t, ok := raw.(T); ok {
		return t
	}

	rv, typ := reflect.ValueOf(raw), reflect.TypeFor[T]()
	if isNumber(rv.Kind()) && isNumber(typ.Kind()) {
		return rv.Convert(typ).Interface().(T)
	}

	panic(fmt.Sprintf("reactive: cannot use %T as %v", raw, typ))
}

func isNumber(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}

// Runtime is an independent reactive universe. Proxies and effects keep the
// runtime they were created in, so dropping a runtime drops everything it tracks.
type Runtime struct {
	runtime *internal.Runtime
}

func NewRuntime(opts ...Option) (*Runtime, error) {
	r, err := internal.NewRuntime(opts...)
	if err != nil {
		return nil, err
	}

	return &Runtime{r}, nil
}

// Run fn with this runtime bound to the calling goroutine.
// Every package level function called from fn uses it.
func (r *Runtime) Run(fn func()) { r.runtime.Run(fn) }

// Close unregisters the runtime metrics.
func (r *Runtime) Close() { r.runtime.Close() }

// Reactive returns a deep, mutable observable view of target.
func Reactive(target Target) *Proxy {
	return internal.GetRuntime().Wrap(target, false, false)
}

// ShallowReactive only observes the first level: nested values are returned unwrapped.
func ShallowReactive(target Target) *Proxy {
	return internal.GetRuntime().Wrap(target, false, true)
}

// Readonly returns a deep view refusing every mutation with a logged warning.
func Readonly(target Target) *Proxy {
	return internal.GetRuntime().Wrap(target, true, false)
}

// ShallowReadonly refuses mutations on the first level only.
func ShallowReadonly(target Target) *Proxy {
	return internal.GetRuntime().Wrap(target, true, true)
}

// From makes v reactive, converting maps and slices into records and lists.
func From(v any) (*Proxy, error) {
	switch v := v.(type) {
	case map[string]any:
		return Reactive(FromMap(v)), nil
	case []any:
		return Reactive(FromSlice(v)), nil
	case *Record:
		if v != nil {
			return Reactive(v), nil
		}
	case *List:
		if v != nil {
			return Reactive(v), nil
		}
	case *Proxy:
		if v != nil {
			return Reactive(v), nil
		}
	}

	return nil, fmt.Errorf("%w: %T", ErrNotStructured, v)
}

// Get reads key from p as a T. Numbers are converted between numeric types,
// any other mismatch panics.
func Get[T any](p *Proxy, key any) T {
	return as[T](p.Get(key))
}

type EffectOption func(*internal.EffectOptions)

// Lazy skips the initial run of an effect.
func Lazy() EffectOption {
	return func(o *internal.EffectOptions) {
		o.Lazy = true
	}
}

// WithScheduler hands the reruns of an effect to s instead of running them synchronously.
func WithScheduler(s Scheduler) EffectOption {
	return func(o *internal.EffectOptions) {
		o.Scheduler = s
	}
}

func effectOptions(opts []EffectOption) internal.EffectOptions {
	var o internal.EffectOptions
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// NewEffect runs fn now and again whenever something it read changes.
func NewEffect(fn func(), opts ...EffectOption) *Effect {
	return internal.GetRuntime().NewEffect(func() any {
		fn()
		return nil
	}, effectOptions(opts))
}

type EffectFunc[T any] struct {
	effect *internal.Effect
}

// NewEffectFunc is NewEffect for a function returning a value, see EffectFunc.Run.
func NewEffectFunc[T any](fn func() T, opts ...EffectOption) *EffectFunc[T] {
	return &EffectFunc[T]{
		internal.GetRuntime().NewEffect(func() any { return fn() }, effectOptions(opts)),
	}
}

// Run the effect now, re-collecting its dependencies, and return the result.
func (e *EffectFunc[T]) Run() T { return as[T](e.effect.Run()) }

func (e *EffectFunc[T]) Stop() { e.effect.Stop() }

func (e *EffectFunc[T]) Effect() *Effect { return e.effect }

type Computed[T any] struct {
	computed *internal.Computed
}

// NewComputed creates a lazy, cached derivation of other reactive values.
func NewComputed[T any](getter func() T) *Computed[T] {
	return &Computed[T]{
		internal.GetRuntime().NewComputed(func() any { return getter() }),
	}
}

// Value returns the cached value, recomputing it if an input changed since the last read.
func (c *Computed[T]) Value() T {
	return as[T](c.computed.Read())
}

func (c *Computed[T]) Stop() { c.computed.Stop() }

type Ref[T any] struct {
	signal *internal.Signal
}

// NewRef creates a reactive box around a single value.
func NewRef[T any](initial T) *Ref[T] {
	return &Ref[T]{
		internal.GetRuntime().NewSignal(initial),
	}
}

// Value returns the current value, tracking the dependency if within an effect.
func (r *Ref[T]) Value() T {
	return as[T](r.signal.Read())
}

func (r *Ref[T]) Set(v T) {
	r.signal.Write(v)
}

type WatchOption func(*internal.WatchOptions)

// Immediate calls the watch callback once at setup, with a zero old value.
func Immediate() WatchOption {
	return func(o *internal.WatchOptions) {
		o.Immediate = true
	}
}

func watchOptions(opts []WatchOption) internal.WatchOptions {
	var o internal.WatchOptions
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Watch calls cb with the new and old result of getter each time something getter read changes.
func Watch[T any](getter func() T, cb func(newValue, oldValue T), opts ...WatchOption) (*Watcher, error) {
	if getter == nil {
		return nil, fmt.Errorf("%w: nil getter", ErrInvalidWatchSource)
	}
	if cb == nil {
		return nil, ErrNilCallback
	}

	return internal.GetRuntime().Watch(
		func() any { return getter() },
		func(newValue, oldValue any) { cb(as[T](newValue), as[T](oldValue)) },
		watchOptions(opts),
	)
}

// WatchSource watches a getter (func() any), a proxy or raw container (every
// nested key), a *Ref or a *Computed. Other sources fail with ErrInvalidWatchSource.
func WatchSource(source any, cb func(newValue, oldValue any), opts ...WatchOption) (*Watcher, error) {
	switch s := source.(type) {
	case interface{ signalOf() *internal.Signal }:
		source = s.signalOf()
	case interface{ computedOf() *internal.Computed }:
		source = s.computedOf()
	}

	return internal.GetRuntime().Watch(source, cb, watchOptions(opts))
}

func (r *Ref[T]) signalOf() *internal.Signal { return r.signal }

func (c *Computed[T]) computedOf() *internal.Computed { return c.computed }

// NewJobQueue returns a scheduler queue: pass q.Schedule to WithScheduler and call q.Flush.
func NewJobQueue() *JobQueue {
	return internal.NewJobQueue()
}

// Untrack runs the given function without tracking any reactive dependencies.
func Untrack[T any](fn func() T) T {
	var result T
	internal.GetRuntime().Untrack(func() { result = fn() })
	return result
}

// OnCleanup registers a function to be called when the current owner re-runs or is disposed.
func OnCleanup(fn func()) {
	internal.GetRuntime().OnCleanup(fn)
}

type Owner struct {
	owner *internal.Owner
}

// NewOwner creates a new reactive owner.
// An owner manages the lifecycle of reactive nodes created within its context.
func NewOwner() *Owner {
	return &Owner{
		internal.GetRuntime().NewOwner(),
	}
}

// Run a function within the context of this owner.
// Each effect, computed or watcher created within the function will be a child of this owner,
// and will be disposed when owner.Dispose() is called.
func (o *Owner) Run(fn func() error) error {
	var err error
	o.owner.Run(func() { err = fn() })
	return err
}

// Dispose this owner and all its children.
func (o *Owner) Dispose() { o.owner.Dispose() }

// Add a cleanup function to be called ONCE when the owner is disposed.
func (o *Owner) OnCleanup(fn func()) { o.owner.OnCleanup(fn) }

// Add a function to be called when the owner is disposed.
func (o *Owner) OnDispose(fn func()) { o.owner.OnDispose(fn) }
