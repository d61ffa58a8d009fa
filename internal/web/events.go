// pattern: Imperative Shell

package web

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

const sseKeepAlive = 25 * time.Second

// eventBroker fans out "board changed" signals to SSE subscribers.
type eventBroker struct {
	mu          sync.Mutex
	subscribers map[chan struct{}]struct{}
}

func newEventBroker() *eventBroker {
	return &eventBroker{
		subscribers: make(map[chan struct{}]struct{}),
	}
}

// Subscribe returns a buffered channel that receives a signal on each Notify call.
// The caller must call Unsubscribe when done.
func (b *eventBroker) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel.
func (b *eventBroker) Unsubscribe(ch chan struct{}) {
	b.mu.Lock()
	delete(b.subscribers, ch)
	b.mu.Unlock()
}

// Notify signals every subscriber without blocking. A subscriber that has
// not consumed its previous signal keeps just the one pending signal, so a
// burst of engine changes becomes a single re-fetch.
func (b *eventBroker) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// handleEvents is the SSE endpoint. It sends a "connected" event on open,
// then a "refresh" event each time the board changes. Comment lines keep
// idle connections open through proxies.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	fmt.Fprintf(w, "event: connected\ndata: ok\n\n")
	flusher.Flush()

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.ctx.Done():
			return
		case <-keepAlive.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-ch:
			fmt.Fprintf(w, "event: refresh\ndata: update\n\n")
			flusher.Flush()
		}
	}
}
