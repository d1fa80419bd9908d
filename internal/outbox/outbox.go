package outbox

// Outbox is the per-evaluation queue of pending updates. Each protocol
// invocation gets its own; nothing here is shared or locked.
type Outbox struct {
	updates []Update
}

func New() *Outbox {
	return &Outbox{}
}

// Set replaces the pending updates.
func (o *Outbox) Set(updates []Update) {
	o.updates = append([]Update(nil), updates...)
}

// Append extends the pending updates, preserving append order.
func (o *Outbox) Append(updates ...Update) {
	o.updates = append(o.updates, updates...)
}

// Drain returns the pending updates in append order and empties the outbox.
func (o *Outbox) Drain() []Update {
	drained := o.updates
	o.updates = nil
	return drained
}

// Len returns the number of pending updates.
func (o *Outbox) Len() int {
	return len(o.updates)
}
