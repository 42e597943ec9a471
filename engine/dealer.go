package engine

// dealer keeps the deferred fields of one object in declaration order.
type dealer struct {
	needs []*task
}

// Needs defers a field until its generator becomes ready.
func (d *dealer) Needs(t *task) {
	t.state = stateDeferred
	d.needs = append(d.needs, t)
}

func (d *dealer) Pending() bool {
	return len(d.needs) > 0
}

// Drain hands out every deferred field and empties the dealer.
func (d *dealer) Drain() []*task {
	out := d.needs
	d.needs = nil

	return out
}

// Progressed reports whether a pass over drained settled at least one field.
func (d *dealer) Progressed(drained []*task) bool {
	return len(d.needs) < len(drained)
}
