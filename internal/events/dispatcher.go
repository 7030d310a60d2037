package events

import "sync"

// Dispatcher queues events pushed during a tick and flushes them as a batch
// when the tick's event-dispatch hook runs. A nil sink simply drops the
// batch, matching "no dispatcher configured" rather than erroring.
type Dispatcher struct {
	mu   sync.Mutex
	reg  *Registry
	pend []Event
	sink func([]Event) error
}

// NewDispatcher returns a dispatcher bound to reg, sending flushed batches
// to sink.
func NewDispatcher(reg *Registry, sink func([]Event) error) *Dispatcher {
	return &Dispatcher{reg: reg, sink: sink}
}

// Push queues an event for the next Flush, validating its parameter count
// against the event's registration.
func (d *Dispatcher) Push(code uint16, params []any) error {
	desc, err := d.reg.ByCode(code)
	if err != nil {
		return err
	}
	if len(params) != len(desc.Params) {
		return ErrParamCountMismatch
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pend = append(d.pend, Event{Code: code, Params: params})
	return nil
}

// Flush hands every queued event to the sink as one batch and clears the
// queue, regardless of whether the sink returns an error.
func (d *Dispatcher) Flush() error {
	d.mu.Lock()
	batch := d.pend
	d.pend = nil
	d.mu.Unlock()

	if len(batch) == 0 || d.sink == nil {
		return nil
	}
	return d.sink(batch)
}

// Pending reports how many events are currently queued, awaiting Flush.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pend)
}
