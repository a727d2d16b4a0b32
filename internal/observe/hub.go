// Package observe provides change subscriptions for the stores.
package observe

// Hub fans a value out to registered callbacks. Callbacks run
// synchronously on the publisher's goroutine in no particular order.
// A Hub is not safe for concurrent use.
type Hub[T any] struct {
	next int
	subs map[int]func(T)
}

// Subscribe registers fn and returns a function that removes it.
func (h *Hub[T]) Subscribe(fn func(T)) func() {
	if h.subs == nil {
		h.subs = make(map[int]func(T))
	}
	id := h.next
	h.next++
	h.subs[id] = fn
	return func() { delete(h.subs, id) }
}

// Publish calls every subscriber with its own value from snapshot.
func (h *Hub[T]) Publish(snapshot func() T) {
	fns := make([]func(T), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	for _, fn := range fns {
		fn(snapshot())
	}
}

func (h *Hub[T]) Len() int {
	return len(h.subs)
}
