package concore

// ConstraintEngineListener observes engine-level lifecycle events:
// propagation phases, and constraint/variable add/remove/activate/
// deactivate/execute/violation events.
type ConstraintEngineListener interface {
	NotifyPropagationCommenced()
	NotifyPropagationCompleted()
	NotifyPropagationPreempted()

	NotifyConstraintAdded(c *Constraint)
	NotifyConstraintRemoved(c *Constraint)
	NotifyConstraintActivated(c *Constraint)
	NotifyConstraintDeactivated(c *Constraint)
	NotifyConstraintExecuted(c *Constraint)

	NotifyVariableAdded(v *Variable)
	NotifyVariableRemoved(v *Variable)
	NotifyVariableActivated(v *Variable)
	NotifyVariableDeactivated(v *Variable)
	NotifyVariableChanged(v *Variable, kind ChangeKind)

	NotifyViolationAdded(c *Constraint)
	NotifyViolationRemoved(c *Constraint)
}

// BaseConstraintEngineListener implements every ConstraintEngineListener
// method as a no-op, so concrete listeners (tracelog.CeLogger and the like)
// only need to override what they care about — the same "embed the base,
// override what you need" shape as the source's empty-bodied
// ConstraintEngineListener default methods.
type BaseConstraintEngineListener struct{}

func (BaseConstraintEngineListener) NotifyPropagationCommenced()          {}
func (BaseConstraintEngineListener) NotifyPropagationCompleted()          {}
func (BaseConstraintEngineListener) NotifyPropagationPreempted()          {}
func (BaseConstraintEngineListener) NotifyConstraintAdded(*Constraint)    {}
func (BaseConstraintEngineListener) NotifyConstraintRemoved(*Constraint)  {}
func (BaseConstraintEngineListener) NotifyConstraintActivated(*Constraint) {}
func (BaseConstraintEngineListener) NotifyConstraintDeactivated(*Constraint) {}
func (BaseConstraintEngineListener) NotifyConstraintExecuted(*Constraint) {}
func (BaseConstraintEngineListener) NotifyVariableAdded(*Variable)        {}
func (BaseConstraintEngineListener) NotifyVariableRemoved(*Variable)      {}
func (BaseConstraintEngineListener) NotifyVariableActivated(*Variable)    {}
func (BaseConstraintEngineListener) NotifyVariableDeactivated(*Variable)  {}
func (BaseConstraintEngineListener) NotifyVariableChanged(*Variable, ChangeKind) {}
func (BaseConstraintEngineListener) NotifyViolationAdded(*Constraint)     {}
func (BaseConstraintEngineListener) NotifyViolationRemoved(*Constraint)   {}

var _ ConstraintEngineListener = BaseConstraintEngineListener{}

// Subscription is a move-only handle for a registered listener: dropping it
// (calling Unsubscribe) removes the listener from the engine. This replaces
// the source's self-unregistering-observer-pointer pattern with an owned
// handle, per the DESIGN NOTES on listener lifetime.
type Subscription struct {
	unsub func()
	done  bool
}

// Unsubscribe removes the associated listener. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.done {
		return
	}
	s.done = true
	if s.unsub != nil {
		s.unsub()
	}
}
