package raster

import "sync"

// Notifier fans resource-changed events out to registered watchers. Each
// watcher is scoped to its registration and can be cancelled independently,
// so an editor screen can listen for the lifetime of one photo and let go.
type Notifier struct {
	mu       sync.Mutex
	nextID   int
	watchers map[int]func(name string)
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{watchers: make(map[int]func(string))}
}

// Watch registers a callback for every resource mutation. The returned
// func cancels the registration; cancelling twice is harmless.
func (n *Notifier) Watch(fn func(name string)) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.watchers[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.watchers, id)
		n.mu.Unlock()
	}
}

// Notify invokes all registered watchers with the resource name.
func (n *Notifier) Notify(name string) {
	n.mu.Lock()
	fns := make([]func(string), 0, len(n.watchers))
	for _, fn := range n.watchers {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(name)
	}
}
