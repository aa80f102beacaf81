package concore

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrViolation marks a constraint found inconsistent with the rest of the
// network during propagation. Unlike the InvalidOperation/TypeMismatch/
// OutOfRange taxonomy in errors.go, this is not a usage error: it is an
// expected, recoverable state, so it never panics even under StrictMode.
var ErrViolation = errors.New("concore: constraint violated")

func violationErr(format string, args ...interface{}) error {
	return errors.Wrapf(ErrViolation, format, args...)
}

// ViolationBudgetExceededError is returned by Propagate when the number of
// simultaneously-violated constraints exceeds the engine's configured
// budget. Propagate leaves the engine Inconsistent when it returns this
// error; callers can relax a violating constraint's scope and re-propagate
// rather than unwind the whole search.
type ViolationBudgetExceededError struct {
	Count  int
	Budget int
}

func (e *ViolationBudgetExceededError) Error() string {
	return fmt.Sprintf("concore: violation budget exceeded: %d violated constraints, budget %d", e.Count, e.Budget)
}

// violationSet tracks the constraints currently in the violated state, in
// first-violated order so the engine can report them deterministically.
type violationSet struct {
	order []*Constraint
	index map[Key]int
}

func newViolationSet() *violationSet {
	return &violationSet{index: make(map[Key]int)}
}

func (s *violationSet) add(c *Constraint) {
	if _, ok := s.index[c.key]; ok {
		return
	}
	s.index[c.key] = len(s.order)
	s.order = append(s.order, c)
}

func (s *violationSet) remove(c *Constraint) {
	i, ok := s.index[c.key]
	if !ok {
		return
	}
	delete(s.index, c.key)
	s.order = append(s.order[:i], s.order[i+1:]...)
	for k := i; k < len(s.order); k++ {
		s.index[s.order[k].key] = k
	}
}

func (s *violationSet) len() int { return len(s.order) }

func (s *violationSet) list() []*Constraint {
	out := make([]*Constraint, len(s.order))
	copy(out, s.order)
	return out
}

// checkBudget returns a *ViolationBudgetExceededError when budget is
// positive and exceeded. A budget of zero means unlimited.
func (s *violationSet) checkBudget(budget int) error {
	if budget <= 0 {
		return nil
	}
	if s.len() > budget {
		return &ViolationBudgetExceededError{Count: s.len(), Budget: budget}
	}
	return nil
}

// violationManager is the ViolationMgr: it owns the violated-constraint set
// (via the embedded violationSet) plus the recovery machinery that keeps a
// violation from being a permanent dead end — handleEmpty records what just
// emptied, handleRelax gives a violated constraint another chance once one
// of its variables widens, and relaxEmptyVariables is the pop-and-relax loop
// Propagate runs before each pass to work off whatever handleEmpty queued.
type violationManager struct {
	*violationSet

	empty   []*Variable
	inEmpty map[Key]bool

	// relaxing guards relaxEmptyVariables against re-entrant invocation:
	// Variable.Relax can itself empty a neighbor through a reactivated
	// constraint, which calls handleEmpty and extends the same queue this
	// loop is draining — safe because it's a queue append, not a
	// recursive call, but the guard keeps a would-be nested call from
	// starting a second drain over the same slice.
	relaxing bool
}

func newViolationManager() *violationManager {
	return &violationManager{violationSet: newViolationSet(), inEmpty: make(map[Key]bool)}
}

// handleEmpty records every variable a constraint's execute just found
// empty, queuing each for relaxEmptyVariables. The constraint's own
// violated/deactivation bookkeeping is handled by Constraint.execute itself;
// this only tracks the emptied variables for recovery.
func (m *violationManager) handleEmpty(emptied []*Variable) {
	for _, v := range emptied {
		m.recordEmpty(v)
	}
}

func (m *violationManager) recordEmpty(v *Variable) {
	if m.inEmpty[v.key] {
		return
	}
	m.inEmpty[v.key] = true
	m.empty = append(m.empty, v)
}

func (m *violationManager) hasEmpty() bool { return len(m.empty) > 0 }

// handleRelax reactivates every violated constraint adjacent to v: v just
// widened (directly, or as part of a relax cascade), so a constraint that
// found it inconsistent deserves another try rather than staying dead.
func (m *violationManager) handleRelax(v *Variable) {
	for _, c := range v.AdjacentConstraints() {
		if !c.violated {
			continue
		}
		c.violated = false
		c.violation = nil
		c.decDeactivation()
		c.markDirty()
		m.remove(c)
		if c.engine != nil {
			c.engine.forEachListener(func(l ConstraintEngineListener) { l.NotifyViolationRemoved(c) })
		}
	}
}

// relaxEmptyVariables drains the queue handleEmpty built, relaxing each
// variable in turn. Draining by index rather than recursing keeps this
// robust to the queue growing mid-loop (a relax can itself cause another
// constraint to empty one of its neighbors).
func (m *violationManager) relaxEmptyVariables() error {
	if m.relaxing {
		return nil
	}
	m.relaxing = true
	defer func() { m.relaxing = false }()

	for len(m.empty) > 0 {
		v := m.empty[0]
		m.empty = m.empty[1:]
		delete(m.inEmpty, v.key)
		if err := v.Relax(); err != nil {
			return err
		}
	}
	return nil
}
