package internal

import (
	"iter"
)

// Owner is a node in the lifecycle tree. Effects, computeds and watchers
// created while an owner is current become its children and are disposed with it.
type Owner struct {
	rt *Runtime

	// cleanup functions to be called the next time the owner is cleaned
	cleanups []func()

	// called once when the owner is disposed for good
	disposers []func()

	disposed bool

	parent       *Owner
	prevSibling  *Owner
	nextSibling  *Owner
	childrenHead *Owner
}

func (r *Runtime) NewOwner() *Owner {
	o := &Owner{rt: r}

	if parent := r.tracker.CurrentOwner(); parent != nil {
		parent.AddChild(o)
	}

	return o
}

func (o *Owner) Run(fn func()) {
	o.rt.tracker.RunWithOwner(o, fn)
}

func (parent *Owner) AddChild(child *Owner) {
	child.parent = parent
	child.prevSibling = nil
	child.nextSibling = parent.childrenHead

	if parent.childrenHead != nil {
		parent.childrenHead.prevSibling = child
	}

	parent.childrenHead = child
}

func (parent *Owner) removeChild(child *Owner) {
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else if parent.childrenHead == child {
		parent.childrenHead = child.nextSibling
	}

	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	}

	child.parent = nil
	child.prevSibling = nil
	child.nextSibling = nil
}

// Children yields the direct children, most recent first.
func (o *Owner) Children() iter.Seq[*Owner] {
	return func(yield func(*Owner) bool) {
		child := o.childrenHead

		for child != nil {
			next := child.nextSibling
			if !yield(child) {
				return
			}

			child = next
		}
	}
}

func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true

	o.Clean()

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	disposers := o.disposers
	o.disposers = nil
	for _, fn := range disposers {
		fn()
	}
}

// Clean disposes the children and runs the pending cleanups, leaving the owner usable.
func (o *Owner) Clean() {
	o.DisposeChildren()

	cleanups := o.cleanups
	o.cleanups = nil
	for _, fn := range cleanups {
		fn()
	}
}

func (o *Owner) DisposeChildren() {
	for child := range o.Children() {
		child.Dispose()
	}
	o.childrenHead = nil
}

func (o *Owner) Disposed() bool { return o.disposed }

func (o *Owner) OnCleanup(fn func()) {
	o.cleanups = append(o.cleanups, fn)
}

func (o *Owner) OnDispose(fn func()) {
	o.disposers = append(o.disposers, fn)
}
