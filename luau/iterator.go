package luau

import "iter"

// ---------------------------------------------------------------------------
// Generalized iteration bridge
// ---------------------------------------------------------------------------

// pullIterator adapts a table traversal into the step-at-a-time shape the
// FORGLOOP instruction needs. Created lazily at the first loop step,
// discarded when traversal ends, and stopped with the frame if the loop
// exits early.
type pullIterator struct {
	next func() (Value, Value, bool)
	stop func()
}

func newPullIterator(t *Table) *pullIterator {
	next, stop := iter.Pull2(t.Iter())
	return &pullIterator{next: next, stop: stop}
}

// step pulls the next key/value pair. ok=false means traversal is finished
// and the adapter is already stopped.
func (it *pullIterator) step() (k, v Value, ok bool) {
	k, v, ok = it.next()
	if !ok {
		it.stop()
	}
	return k, v, ok
}
