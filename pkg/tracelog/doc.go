// Package tracelog provides optional zap-backed diagnostic listeners for
// the constraint engine and temporal network: structured tracing only, no
// behavior. Wiring a Logger in is always the caller's choice — neither
// concore nor tnet imports this package.
package tracelog
