package concore

import (
	"context"
)

// NewDomain builds a Domain by type-name tag, mirroring the source's
// TypeFactory lookup. Supported tags: "int", "float", "bool", "string",
// "symbol". args supplies the numeric bounds for "int"/"float" (lo, ub);
// omitted it returns the unbounded/full domain for that type.
func NewDomain(typeName string, args ...float64) (Domain, error) {
	switch typeName {
	case "int":
		if len(args) == 0 {
			return NewIntIntervalFull(), nil
		}
		if len(args) != 2 {
			return nil, invalidOperation("NewDomain: int domain takes 0 or 2 bound args, got %d", len(args))
		}
		return NewIntInterval(int64(args[0]), int64(args[1])), nil
	case "float":
		if len(args) == 0 {
			return NewFloatIntervalFull(), nil
		}
		if len(args) != 2 {
			return nil, invalidOperation("NewDomain: float domain takes 0 or 2 bound args, got %d", len(args))
		}
		return NewFloatInterval(args[0], args[1]), nil
	case "bool":
		return NewBoolDomain(), nil
	case "string":
		return NewStringDomain(), nil
	case "symbol":
		return NewSymbolDomain(), nil
	default:
		return nil, typeMismatch("NewDomain: unknown type tag %q", typeName)
	}
}

// builtinConstraint is a registered factory for one of the common,
// ready-made handlers: given a variable scope, build the ConstraintHandler
// that enforces the named relation over it.
type builtinConstraint func(scope []*Variable) (ConstraintHandler, error)

var builtinConstraints = map[string]builtinConstraint{
	"eq":  newEqualPropagator,
	"neq": newNotEqualPropagator,
	"lt":  newLessThanPropagator,
	"leq": newLessOrEqualPropagator,
}

// CreateBuiltinConstraint looks up name in the builtin registry and
// registers the resulting constraint on the engine over scope.
func (e *ConstraintEngine) CreateBuiltinConstraint(name string, scope ...*Variable) (*Constraint, error) {
	build, ok := builtinConstraints[name]
	if !ok {
		return nil, invalidOperation("CreateBuiltinConstraint: unknown constraint %q", name)
	}
	p, err := build(scope)
	if err != nil {
		return nil, err
	}
	return e.CreateConstraint(name, p, scope...)
}

func requireArity(name string, scope []*Variable, n int) error {
	if len(scope) != n {
		return invalidOperation("%s: requires %d variables, got %d", name, n, len(scope))
	}
	return nil
}

// newEqualPropagator builds a binary propagator that keeps two variables'
// current domains equal by mutual intersection.
func newEqualPropagator(scope []*Variable) (ConstraintHandler, error) {
	if err := requireArity("eq", scope, 2); err != nil {
		return nil, err
	}
	return ConstraintHandlerFunc{
		Label: "eq",
		Fn: func(ctx context.Context, scope []*Variable) error {
			a, b := scope[0].current, scope[1].current
			if _, err := a.Intersect(b); err != nil {
				return err
			}
			if _, err := b.Intersect(a); err != nil {
				return err
			}
			return nil
		},
	}, nil
}

// newNotEqualPropagator builds a binary propagator that removes each
// variable's singleton value from the other's domain.
func newNotEqualPropagator(scope []*Variable) (ConstraintHandler, error) {
	if err := requireArity("neq", scope, 2); err != nil {
		return nil, err
	}
	return ConstraintHandlerFunc{
		Label: "neq",
		Fn: func(ctx context.Context, scope []*Variable) error {
			a, b := scope[0].current, scope[1].current
			if v, ok := a.SingletonValue(); ok {
				if err := b.Remove(v); err != nil {
					return err
				}
			}
			if v, ok := b.SingletonValue(); ok {
				if err := a.Remove(v); err != nil {
					return err
				}
			}
			return nil
		},
	}, nil
}

// newLessThanPropagator builds a binary numeric propagator enforcing
// scope[0] < scope[1] by trimming each domain's bound against the other's.
func newLessThanPropagator(scope []*Variable) (ConstraintHandler, error) {
	if err := requireArity("lt", scope, 2); err != nil {
		return nil, err
	}
	return ConstraintHandlerFunc{
		Label: "lt",
		Fn: func(ctx context.Context, scope []*Variable) error {
			return restrictOrdered(scope[0].current, scope[1].current, scope[0].current.Epsilon())
		},
	}, nil
}

// newLessOrEqualPropagator is newLessThanPropagator's non-strict sibling.
func newLessOrEqualPropagator(scope []*Variable) (ConstraintHandler, error) {
	if err := requireArity("leq", scope, 2); err != nil {
		return nil, err
	}
	return ConstraintHandlerFunc{
		Label: "leq",
		Fn: func(ctx context.Context, scope []*Variable) error {
			return restrictOrdered(scope[0].current, scope[1].current, 0)
		},
	}, nil
}

// restrictOrdered narrows a and b so that a <= b - margin holds: a's upper
// bound is capped at b's upper bound minus margin, and b's lower bound is
// raised to a's lower bound plus margin. margin is the strictness gap
// (Epsilon for strict "<", 0 for "<=").
func restrictOrdered(a, b Domain, margin float64) error {
	loA, _ := numericBounds(a)
	_, hiB := numericBounds(b)
	if _, err := a.IntersectBounds(loA, hiB-margin); err != nil {
		return err
	}
	if _, err := b.IntersectBounds(loA+margin, hiB); err != nil {
		return err
	}
	return nil
}
