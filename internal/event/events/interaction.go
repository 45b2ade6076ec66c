package events

import "github.com/dshills/simext/internal/host"

// InteractionEvent is implemented by every event about an interaction.
type InteractionEvent interface {
	Topic() string
	InteractionOf() host.Interaction
}

// InteractionQueued fires before an interaction is appended to a queue.
// A false result rejects the append.
type InteractionQueued struct {
	Interaction host.Interaction
	Queue       host.InteractionQueue
}

// Topic implements event.Event.
func (InteractionQueued) Topic() string { return "interaction.queued" }

// Cancelable implements event.Cancelable.
func (InteractionQueued) Cancelable() {}

// InteractionOf implements InteractionEvent.
func (e InteractionQueued) InteractionOf() host.Interaction { return e.Interaction }

// InteractionPostQueued fires after the append with the host's result.
type InteractionPostQueued struct {
	Interaction host.Interaction
	Queue       host.InteractionQueue
	Result      host.TestResult
}

// Topic implements event.Event.
func (InteractionPostQueued) Topic() string { return "interaction.queued.post" }

// InteractionOf implements InteractionEvent.
func (e InteractionPostQueued) InteractionOf() host.Interaction { return e.Interaction }

// InteractionPreRun fires before an interaction runs. A false result
// stops it.
type InteractionPreRun struct {
	Interaction host.Interaction
	Timeline    any
}

// Topic implements event.Event.
func (InteractionPreRun) Topic() string { return "interaction.run.pre" }

// Cancelable implements event.Cancelable.
func (InteractionPreRun) Cancelable() {}

// InteractionOf implements InteractionEvent.
func (e InteractionPreRun) InteractionOf() host.Interaction { return e.Interaction }

// InteractionRun fires after an interaction ran to completion.
type InteractionRun struct {
	Interaction host.Interaction
	Timeline    any
}

// Topic implements event.Event.
func (InteractionRun) Topic() string { return "interaction.run" }

// InteractionOf implements InteractionEvent.
func (e InteractionRun) InteractionOf() host.Interaction { return e.Interaction }

// InteractionOutcome fires when the host computes an interaction's outcome.
type InteractionOutcome struct {
	Interaction host.Interaction
	Outcome     any
}

// Topic implements event.Event.
func (InteractionOutcome) Topic() string { return "interaction.outcome" }

// InteractionOf implements InteractionEvent.
func (e InteractionOutcome) InteractionOf() host.Interaction { return e.Interaction }

// InteractionCancelled fires after an interaction was cancelled.
type InteractionCancelled struct {
	Interaction   host.Interaction
	FinishingType any
	Reason        string
	Result        bool
}

// Topic implements event.Event.
func (InteractionCancelled) Topic() string { return "interaction.cancelled" }

// InteractionOf implements InteractionEvent.
func (e InteractionCancelled) InteractionOf() host.Interaction { return e.Interaction }
