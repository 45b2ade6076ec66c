// Package events defines the lifecycle events the dispatchers fire.
//
// Events are immutable values; handlers receive copies. Events named
// *Queued and *PreRun implement event.Cancelable: a false result from any
// handler stops the host action. Every other event is informational.
package events
