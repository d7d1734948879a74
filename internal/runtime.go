package internal

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
)

// Op classifies a mutation handed to Trigger.
type Op int

const (
	OpSet Op = iota
	OpAdd
	OpDelete
)

func (op Op) String() string {
	switch op {
	case OpSet:
		return "set"
	case OpAdd:
		return "add"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

type Config struct {
	// Logger receives readonly violations and lifecycle events.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Namespace prefixes metric names (default: "reactive").
	Namespace string

	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels

	// Registerer, when set, receives the runtime metrics.
	Registerer prometheus.Registerer
}

type Option func(*Config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registerer = reg
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "reactive",
	}
}

type proxyKey struct {
	target   Target
	readonly bool
	shallow  bool
}

// Runtime is a reactive universe: it owns the dependency store, the active
// computation stack and the proxy cache. Dropping a runtime tears all of it down.
type Runtime struct {
	config Config
	logger *slog.Logger

	store   *Store
	tracker *Tracker
	metrics *Metrics

	proxies map[proxyKey]*Proxy

	ids uint64
}

func NewRuntime(opts ...Option) (*Runtime, error) {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Runtime{
		config: config,
		logger: logger,

		store:   NewStore(),
		tracker: NewTracker(),
		metrics: NewMetrics(config.Namespace, config.ConstLabels),

		proxies: make(map[proxyKey]*Proxy),
	}

	if config.Registerer != nil {
		if err := r.metrics.Register(config.Registerer); err != nil {
			return nil, fmt.Errorf("register runtime metrics: %w", err)
		}
	}

	logger.Debug("reactive runtime created", "namespace", config.Namespace)

	return r, nil
}

// Close unregisters the runtime metrics. The runtime stays usable.
func (r *Runtime) Close() {
	if r.config.Registerer != nil {
		r.metrics.Unregister(r.config.Registerer)
	}

	r.logger.Debug("reactive runtime closed", "targets", r.store.Size())
}

func (r *Runtime) Logger() *slog.Logger { return r.logger }

func (r *Runtime) Store() *Store { return r.store }

func (r *Runtime) Tracker() *Tracker { return r.tracker }

func (r *Runtime) nextID() uint64 {
	r.ids++
	return r.ids
}

func (r *Runtime) CurrentOwner() *Owner {
	return r.tracker.CurrentOwner()
}

func (r *Runtime) ActiveEffect() *Effect {
	return r.tracker.Active()
}

func (r *Runtime) OnCleanup(fn func()) {
	owner := r.CurrentOwner()
	if owner != nil {
		owner.OnCleanup(fn)
	}
}

func (r *Runtime) Untrack(fn func()) {
	r.tracker.RunUntracked(fn)
}

// Track records that the active effect depends on (target, key).
// Reads outside of any effect are inert.
func (r *Runtime) Track(target, key any) {
	if !r.tracker.ShouldTrack() {
		return
	}

	// an effect stopped during its own run keeps running but depends on nothing
	active := r.tracker.Active()
	if active.disposed {
		return
	}

	if r.store.Dep(target, key, true).Link(active) {
		r.metrics.tracks.Inc()
	}
}

// NoLength is passed to Trigger when a mutation leaves the length unchanged.
const NoLength = -1

// Trigger reruns every effect depending on (target, key).
// length is the new length of a list whose length changed, NoLength otherwise.
func (r *Runtime) Trigger(target, key any, op Op, length int) {
	r.metrics.triggers.WithLabelValues(op.String()).Inc()

	runs := r.collect(target, key, op, length)
	for _, e := range runs {
		e.schedule()
	}
}

// collect builds the deduplicated run-set of a trigger, skipping the active effect.
func (r *Runtime) collect(target, key any, op Op, length int) []*Effect {
	active := r.tracker.Active()

	var runs []*Effect
	seen := make(map[*Effect]struct{})

	add := func(key any) {
		dep := r.store.Dep(target, key, false)
		if dep == nil {
			return
		}

		for _, e := range dep.Subs() {
			if e == active {
				continue
			}
			if _, ok := seen[e]; ok {
				continue
			}

			seen[e] = struct{}{}
			runs = append(runs, e)
		}
	}

	add(key)

	if op == OpAdd || op == OpDelete {
		add(IterateKey)
	}

	if length != NoLength {
		add(LengthKey)
		add(IterateKey)

		var indexes []int
		for _, k := range r.store.Keys(target) {
			if i, ok := k.(int); ok && i >= length {
				indexes = append(indexes, i)
			}
		}
		slices.Sort(indexes)

		for _, i := range indexes {
			add(i)
		}
	}

	return runs
}

func (r *Runtime) warnReadonly(op string, key any) {
	r.metrics.readonlyViolations.Inc()
	r.logger.Warn("mutation refused on readonly target", "op", op, "key", fmt.Sprint(key))
}

func newDefaultRuntime() *Runtime {
	r, err := NewRuntime()
	if err != nil {
		// only metrics registration can fail and the default runtime registers none
		panic(err)
	}

	return r
}

// Run binds the runtime to the calling goroutine for the duration of fn.
func (r *Runtime) Run(fn func()) {
	prev := SwapRuntime(r)
	defer SwapRuntime(prev)

	fn()
}
