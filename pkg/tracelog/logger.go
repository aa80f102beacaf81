package tracelog

import (
	"go.uber.org/zap"

	"github.com/plancore/concore/pkg/concore"
)

// CeLogger traces every ConstraintEngineListener event to a zap.Logger at
// debug level, named after the entity involved. It is grounded on
// CeLogger's role in the original implementation: a listener that exists
// purely to make propagation visible, never to change its outcome.
type CeLogger struct {
	log *zap.Logger
}

// NewCeLogger wraps log (zap.NewNop() is the typical choice in tests).
func NewCeLogger(log *zap.Logger) *CeLogger {
	return &CeLogger{log: log.Named("concore")}
}

var _ concore.ConstraintEngineListener = (*CeLogger)(nil)

func (l *CeLogger) NotifyPropagationCommenced() {
	l.log.Debug("propagation commenced")
}

func (l *CeLogger) NotifyPropagationCompleted() {
	l.log.Debug("propagation completed")
}

func (l *CeLogger) NotifyPropagationPreempted() {
	l.log.Debug("propagation preempted")
}

func (l *CeLogger) NotifyConstraintAdded(c *concore.Constraint) {
	l.log.Debug("constraint added", zap.String("name", c.Name()))
}

func (l *CeLogger) NotifyConstraintRemoved(c *concore.Constraint) {
	l.log.Debug("constraint removed", zap.String("name", c.Name()))
}

func (l *CeLogger) NotifyConstraintActivated(c *concore.Constraint) {
	l.log.Debug("constraint activated", zap.String("name", c.Name()))
}

func (l *CeLogger) NotifyConstraintDeactivated(c *concore.Constraint) {
	l.log.Debug("constraint deactivated", zap.String("name", c.Name()))
}

func (l *CeLogger) NotifyConstraintExecuted(c *concore.Constraint) {
	l.log.Debug("constraint executed",
		zap.String("name", c.Name()),
		zap.Bool("violated", c.IsViolated()))
}

func (l *CeLogger) NotifyVariableAdded(v *concore.Variable) {
	l.log.Debug("variable added", zap.String("name", v.Name()))
}

func (l *CeLogger) NotifyVariableRemoved(v *concore.Variable) {
	l.log.Debug("variable removed", zap.String("name", v.Name()))
}

func (l *CeLogger) NotifyVariableActivated(v *concore.Variable) {
	l.log.Debug("variable activated", zap.String("name", v.Name()))
}

func (l *CeLogger) NotifyVariableDeactivated(v *concore.Variable) {
	l.log.Debug("variable deactivated", zap.String("name", v.Name()))
}

func (l *CeLogger) NotifyVariableChanged(v *concore.Variable, kind concore.ChangeKind) {
	l.log.Debug("variable changed",
		zap.String("name", v.Name()),
		zap.String("kind", kind.String()))
}

func (l *CeLogger) NotifyViolationAdded(c *concore.Constraint) {
	l.log.Warn("violation added", zap.String("name", c.Name()))
}

func (l *CeLogger) NotifyViolationRemoved(c *concore.Constraint) {
	l.log.Debug("violation removed", zap.String("name", c.Name()))
}

// DomainLogger decorates a concore.DomainListener, logging each raw domain
// change before forwarding to inner. Attach it in place of a Variable only
// when debugging a single domain in isolation; a Variable is normally the
// sole listener a Domain carries.
type DomainLogger struct {
	log   *zap.Logger
	name  string
	inner concore.DomainListener
}

// NewDomainLogger builds a logger that forwards to inner after recording
// each change under name.
func NewDomainLogger(log *zap.Logger, name string, inner concore.DomainListener) *DomainLogger {
	return &DomainLogger{log: log.Named("domain"), name: name, inner: inner}
}

var _ concore.DomainListener = (*DomainLogger)(nil)

func (l *DomainLogger) NotifyChange(kind concore.ChangeKind) {
	l.log.Debug("domain changed", zap.String("name", l.name), zap.String("kind", kind.String()))
	if l.inner != nil {
		l.inner.NotifyChange(kind)
	}
}
