package dispatcher

import (
	"iter"

	"github.com/dshills/simext/internal/event/events"
	"github.com/dshills/simext/internal/host"
	"github.com/dshills/simext/internal/inject"
)

// QueueRejected is returned to the host when a handler vetoes
// InteractionQueued.
var QueueRejected = host.Failed("interaction rejected by an event handler")

// Interaction fires interaction events.
type Interaction struct {
	base
}

// Name implements Dispatcher.
func (d *Interaction) Name() string { return "interaction" }

// Install implements Dispatcher.
func (d *Interaction) Install(methods *inject.Registry) error {
	return d.install(methods,
		injection{host.QueueAppend, inject.Around(d.onAppend)},
		injection{host.InteractionRun, inject.Around(d.onRun)},
		injection{host.InteractionOutcome, inject.Around(d.onOutcome)},
		injection{host.InteractionCancel, inject.Around(d.onCancel)},
	)
}

func (d *Interaction) onAppend(original inject.Func, recv any, args ...any) any {
	queue := as[host.InteractionQueue](recv)
	interaction := arg[host.Interaction](args, 0)

	if !d.dispatch(events.InteractionQueued{Interaction: interaction, Queue: queue}) {
		return QueueRejected
	}

	result := original(recv, args...)
	d.dispatch(events.InteractionPostQueued{
		Interaction: interaction,
		Queue:       queue,
		Result:      testResult(result),
	})
	return result
}

// onRun wraps the interaction's generator. The pre-run event fires when the
// host starts consuming it; a veto yields false and skips the original.
// InteractionRun fires once the original is exhausted.
func (d *Interaction) onRun(original inject.Func, recv any, args ...any) any {
	interaction := as[host.Interaction](recv)
	timeline := arg[any](args, 0)

	return iter.Seq[any](func(yield func(any) bool) {
		if !d.dispatch(events.InteractionPreRun{Interaction: interaction, Timeline: timeline}) {
			yield(false)
			return
		}

		result := original(recv, args...)
		if seq, ok := inject.AsSeq(result); ok {
			for v := range seq {
				if !yield(v) {
					return
				}
			}
		} else if result != nil && !yield(result) {
			return
		}

		d.dispatch(events.InteractionRun{Interaction: interaction, Timeline: timeline})
	})
}

func (d *Interaction) onOutcome(original inject.Func, recv any, args ...any) any {
	result := original(recv, args...)
	d.dispatch(events.InteractionOutcome{Interaction: as[host.Interaction](recv), Outcome: result})
	return result
}

func (d *Interaction) onCancel(original inject.Func, recv any, args ...any) any {
	result := original(recv, args...)
	d.dispatch(events.InteractionCancelled{
		Interaction:   as[host.Interaction](recv),
		FinishingType: arg[any](args, 0),
		Reason:        arg[string](args, 1),
		Result:        host.Bool(result),
	})
	return result
}

func testResult(v any) host.TestResult {
	switch r := v.(type) {
	case host.TestResult:
		return r
	case *host.TestResult:
		if r != nil {
			return *r
		}
	}
	return host.TestResult{Result: host.Bool(v)}
}
