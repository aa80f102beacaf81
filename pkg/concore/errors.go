package concore

import (
	"github.com/pkg/errors"
)

// Error taxonomy. These are kinds, not concrete types: every misuse error
// this package returns wraps one of the three sentinels below via errors.Is,
// so callers branch on classification rather than string matching.
// Propagation outcomes (ErrViolation, ViolationBudgetExceededError in
// violation.go) are reported separately.
var (
	// ErrInvalidOperation marks a usage-precondition violation: an invalid
	// key, specifying a non-member value, narrowing to bounds wider than
	// current, calling Propagate re-entrantly, closing an already-closed
	// domain. These must not be swallowed.
	ErrInvalidOperation = errors.New("concore: invalid operation")

	// ErrTypeMismatch marks an incompatible-domain-family error: a
	// constraint scope with an incompatible argument, equating domains from
	// different families.
	ErrTypeMismatch = errors.New("concore: type mismatch")

	// ErrOutOfRange marks a bounds over/underflow: an edge length outside
	// [MinLength, MaxLength], or a propagated distance that would exceed
	// [MinDistance, MaxDistance].
	ErrOutOfRange = errors.New("concore: out of range")
)

// StrictMode controls whether a detected usage-precondition violation
// panics (debug builds, matching the source's assert behavior) or is
// returned as an ordinary error (release builds). Default on, since this
// module targets development/test use; production embedders should flip it
// off once they trust their call sites.
var StrictMode = true

// invalidOperation builds an ErrInvalidOperation, panicking first if
// StrictMode is set — the equivalent of the source's check_error assertion.
func invalidOperation(format string, args ...interface{}) error {
	err := errors.Wrapf(ErrInvalidOperation, format, args...)
	if StrictMode {
		panic(err)
	}
	return err
}

func typeMismatch(format string, args ...interface{}) error {
	err := errors.Wrapf(ErrTypeMismatch, format, args...)
	if StrictMode {
		panic(err)
	}
	return err
}

func outOfRange(format string, args ...interface{}) error {
	err := errors.Wrapf(ErrOutOfRange, format, args...)
	if StrictMode {
		panic(err)
	}
	return err
}
