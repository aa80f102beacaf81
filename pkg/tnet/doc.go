// Package tnet implements a generic single-source shortest-paths engine
// over a directed distance graph, and a Simple Temporal Network built on
// top of it: timepoints with propagated [lowerBound, upperBound] distance
// windows from a distinguished origin, connected by temporal constraints
// each realized as up to two weighted edges.
//
// The shortest-paths core (DistanceGraph) is domain-agnostic: full and
// incremental Bellman-Ford for cycle detection and nogood extraction, plus
// a bounded bidirectional Dijkstra with Johnson-style potentials for
// point-to-point distance queries. TemporalNetwork wraps it with the
// timepoint/edge-spec bookkeeping a planner's temporal propagator needs.
package tnet
