package internal

import "iter"

// Scheduler decides when a triggered effect re-runs.
// It receives the effect's job and is free to run it now, later, or never.
type Scheduler func(job *Job)

// Job is the rerun handle of one effect. Its identity is stable across runs.
type Job struct {
	effect *Effect
}

// Run reruns the effect unless it was stopped meanwhile.
func (j *Job) Run() {
	if !j.effect.disposed {
		j.effect.Run()
	}
}

func (j *Job) Effect() *Effect { return j.effect }

type EffectOptions struct {
	// Lazy skips the initial run.
	Lazy bool

	// Scheduler replaces the synchronous rerun on trigger.
	Scheduler Scheduler
}

// Effect is a re-runnable computation whose dependencies are rebuilt on every run.
type Effect struct {
	*Owner

	id uint64

	fn        func() any
	scheduler Scheduler
	job       *Job

	depsHead *DependencyLink
}

func (r *Runtime) NewEffect(fn func() any, opts EffectOptions) *Effect {
	e := &Effect{
		Owner: r.NewOwner(),
		id:    r.nextID(),

		fn:        fn,
		scheduler: opts.Scheduler,
	}
	e.job = &Job{effect: e}
	e.OnDispose(e.stop)

	r.metrics.effectsActive.Inc()

	if !opts.Lazy {
		e.Run()
	}

	return e
}

func (e *Effect) ID() uint64 { return e.id }

// Run executes the effect function, returning its result.
// Previous dependencies, children and cleanups are dropped before the function runs.
// A stopped effect still runs its function, without tracking.
func (e *Effect) Run() any {
	var result any

	if e.disposed {
		e.rt.tracker.RunUntracked(func() { result = e.fn() })
		return result
	}

	e.Clean()
	e.clearDeps()

	e.rt.metrics.effectRuns.Inc()
	e.rt.tracker.RunWithEffect(e, func() { result = e.fn() })

	// stopped by its own run: drop what the rest of the run created
	if e.disposed {
		e.Clean()
		e.clearDeps()
	}

	return result
}

// Stop disposes the effect: it leaves every dependency set and never reruns on its own.
func (e *Effect) Stop() { e.Dispose() }

func (e *Effect) stop() {
	e.clearDeps()
	e.rt.metrics.effectsActive.Dec()
}

func (e *Effect) schedule() {
	// an earlier effect of the same run-set may have disposed this one
	if e.disposed {
		return
	}

	if e.scheduler == nil {
		e.Run()
		return
	}

	e.scheduler(e.job)
}

// Deps yields the dependency sets held since the last run.
func (e *Effect) Deps() iter.Seq[*Dep] {
	return func(yield func(*Dep) bool) {
		for link := e.depsHead; link != nil; link = link.nextDep {
			if !yield(link.dep) {
				return
			}
		}
	}
}

// clearDeps removes the effect from every dependency set it belongs to.
func (e *Effect) clearDeps() {
	for link := e.depsHead; link != nil; {
		next := link.nextDep
		link.dep.removeSubLink(link)
		e.rt.store.release(link.dep)

		link.prevDep = nil
		link.nextDep = nil
		link = next
	}

	e.depsHead = nil
}

func (e *Effect) addDepLink(link *DependencyLink) {
	if e.depsHead == nil {
		e.depsHead = link
		link.prevDep = link // loop to self
		link.nextDep = nil
	} else {
		tail := e.depsHead.prevDep
		tail.nextDep = link
		link.prevDep = tail
		link.nextDep = nil
		e.depsHead.prevDep = link
	}
}
