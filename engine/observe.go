package engine

// observers is a set of callbacks for one observable property. It is only
// touched on the UI goroutine.
type observers[T any] struct {
	next int
	fns  map[int]func(T)
}

func (o *observers[T]) add(fn func(T)) (cancel func()) {
	if o.fns == nil {
		o.fns = make(map[int]func(T))
	}
	id := o.next
	o.next++
	o.fns[id] = fn
	return func() { delete(o.fns, id) }
}

func (o *observers[T]) emit(v T) {
	for _, fn := range o.fns {
		fn(v)
	}
}

func (o *observers[T]) len() int {
	return len(o.fns)
}

func (o *observers[T]) reset() {
	o.fns = nil
}
