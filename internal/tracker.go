package internal

// Tracker holds the active computation stack of a runtime.
type Tracker struct {
	tracking bool

	currentOwner *Owner    // for lifecycle/cleanup tracking
	stack        []*Effect // for reactive dependency tracking, innermost last
}

func NewTracker() *Tracker {
	return &Tracker{
		tracking: true,
	}
}

func (t *Tracker) RunWithOwner(owner *Owner, fn func()) {
	prev := t.currentOwner
	t.currentOwner = owner
	defer func() { t.currentOwner = prev }()

	fn()
}

// RunWithEffect pushes the effect as the active computation for the duration of fn.
// The previous state is restored even if fn panics.
func (t *Tracker) RunWithEffect(e *Effect, fn func()) {
	prevOwner := t.currentOwner
	prevTracking := t.tracking

	t.stack = append(t.stack, e)
	t.currentOwner = e.Owner
	t.tracking = true

	defer func() {
		t.stack[len(t.stack)-1] = nil
		t.stack = t.stack[:len(t.stack)-1]
		t.currentOwner = prevOwner
		t.tracking = prevTracking
	}()

	fn()
}

func (t *Tracker) RunUntracked(fn func()) {
	prev := t.tracking
	t.tracking = false
	defer func() { t.tracking = prev }()

	fn()
}

// Active returns the innermost running effect, or nil.
func (t *Tracker) Active() *Effect {
	if len(t.stack) == 0 {
		return nil
	}

	return t.stack[len(t.stack)-1]
}

func (t *Tracker) Depth() int { return len(t.stack) }

func (t *Tracker) CurrentOwner() *Owner { return t.currentOwner }

func (t *Tracker) ShouldTrack() bool {
	return t.tracking && t.Active() != nil
}
