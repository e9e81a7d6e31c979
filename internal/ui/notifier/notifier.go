// Package notifier fans out reload signals to the open dashboard streams.
package notifier

import "sync"

// Notifier tells subscribed streams that the pipeline result changed.
// A signal carries no payload; listeners re-read the current result.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan struct{}]struct{}
	reloads   uint64
}

// New creates a Notifier with no listeners.
func New() *Notifier {
	return &Notifier{listeners: make(map[chan struct{}]struct{})}
}

// Subscribe registers a listener. Unsubscribe must be called when the stream ends.
func (n *Notifier) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a listener. Unknown channels are ignored.
func (n *Notifier) Unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.listeners[ch]; !ok {
		return
	}
	delete(n.listeners, ch)
	close(ch)
}

// Broadcast signals every listener and returns how many were signalled.
// A listener that has not consumed the previous signal is not signalled
// again; it will re-read the latest result anyway.
func (n *Notifier) Broadcast() int {
	n.mu.Lock()
	n.reloads++
	n.mu.Unlock()

	n.mu.RLock()
	defer n.mu.RUnlock()

	sent := 0
	for ch := range n.listeners {
		select {
		case ch <- struct{}{}:
			sent++
		default:
		}
	}
	return sent
}

// Listeners returns the number of open streams.
func (n *Notifier) Listeners() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Reloads returns how many times Broadcast was called.
func (n *Notifier) Reloads() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.reloads
}
