// Package engine composes the field registry, conditional visibility, summary
// synchronization and step validation into a single attachable unit.
//
// An Engine is built once per document with New and becomes active with
// Attach, which waits for the host's readiness signal, subscribes to input,
// change and click events, runs the initial visibility pass and mirrors any
// prefilled values into their summaries, hiding summary cards left empty.
// Radios carrying a go-to target steer the navigator and reveal the step
// items on the chosen path. Event handlers and debounced tasks
// are serialized by the engine, so controllers never observe concurrent
// mutation. Failures inside a handler are recovered and logged; they never
// stop the remaining fields from synchronizing.
package engine
