// Package temporal bridges the finite-domain constraint engine in
// github.com/plancore/concore/pkg/concore to the shortest-paths temporal
// network in github.com/plancore/concore/pkg/tnet: a ConstraintHandler
// implementation that keeps CE variables/constraints and TNet
// timepoints/edges in sync, plus a planner-facing Facade exposing the
// precedence and distance queries a scheduler actually wants to ask.
package temporal
