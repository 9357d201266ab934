package caret

// Phase is the state of an Enforcer.
type Phase int

const (
	Idle Phase = iota
	Enforcing
)

func (p Phase) String() string {
	if p == Enforcing {
		return "enforcing"
	}
	return "idle"
}

// Enforcer snaps caret moves that come from outside the keypad, such as a
// tap on the rendered line. Placing the caret can itself report a caret
// move; those reports arrive while the Enforcer is Enforcing and are
// ignored.
type Enforcer struct {
	phase Phase
	place func(offset int)
}

// NewEnforcer returns an idle Enforcer that calls place whenever a snap
// moves the caret. place may be nil.
func NewEnforcer(place func(offset int)) *Enforcer {
	return &Enforcer{place: place}
}

func (e *Enforcer) Phase() Phase { return e.phase }

// Enforce snaps offset within text. It reports whether the caret moved.
func (e *Enforcer) Enforce(text string, offset int) (int, bool) {
	if e.phase == Enforcing {
		return offset, false
	}
	next := Snap(text, offset)
	if next == offset {
		return offset, false
	}
	e.phase = Enforcing
	defer func() { e.phase = Idle }()
	if e.place != nil {
		e.place(next)
	}
	return next, true
}

// Deferred holds at most one pending re-check. Scheduling replaces the
// previous one, so the check that finally runs reads the current state.
type Deferred struct {
	fn func()
}

func (d *Deferred) Schedule(fn func()) { d.fn = fn }

func (d *Deferred) Cancel() { d.fn = nil }

func (d *Deferred) Pending() bool { return d.fn != nil }

// Flush runs the pending check, if any.
func (d *Deferred) Flush() bool {
	fn := d.fn
	d.fn = nil
	if fn == nil {
		return false
	}
	fn()
	return true
}
