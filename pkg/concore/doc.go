// Package concore implements the core of a constraint-based planning system:
// a finite-domain Constraint Engine (CE) coupled with a family of Abstract
// Domains, built around a bipartite graph of Variables and Constraints
// scheduled by Propagators.
//
// The engine does not itself know about temporal reasoning — the dedicated
// shortest-paths engine for Simple Temporal Networks lives in
// github.com/plancore/concore/pkg/tnet, bridged into the engine by a
// ConstraintHandler implementation in github.com/plancore/concore/pkg/temporal.
//
// Control flow: a mutation on a Variable's current domain notifies the
// engine, which records which propagators have pending work; Engine.Propagate
// drives every enabled propagator to a fixpoint, each propagator executing
// its constraints, which mutate domains and feed the loop until no
// propagator reports further work or a domain empties.
//
// The engine is not safe for concurrent use: propagation is expected to run
// to quiescence on a single goroutine before control returns to the caller
// (see the CONCURRENCY & RESOURCE MODEL section of the system this package
// implements).
package concore
