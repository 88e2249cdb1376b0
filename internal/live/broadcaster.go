package live

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	sseChannelBuffer = 16
	sseHeartbeat     = 30 * time.Second
)

// Subscriber is a single SSE connection to one session.
type Subscriber struct {
	ch   chan string
	code string
}

// C is the subscriber's message channel; it is closed on Unregister.
func (s *Subscriber) C() <-chan string { return s.ch }

// Broadcaster fans session events out to SSE clients grouped by join code.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*Subscriber]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[*Subscriber]struct{})}
}

// Register adds a subscriber for a session and returns it.
func (b *Broadcaster) Register(code string) *Subscriber {
	s := &Subscriber{ch: make(chan string, sseChannelBuffer), code: code}
	b.mu.Lock()
	b.clients[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Unregister removes a subscriber and closes its channel. Safe to call twice.
func (b *Broadcaster) Unregister(s *Subscriber) {
	b.mu.Lock()
	if _, ok := b.clients[s]; ok {
		delete(b.clients, s)
		close(s.ch)
	}
	b.mu.Unlock()
}

// Broadcast sends data to every subscriber of code. Slow clients whose
// buffer is full miss the message.
func (b *Broadcaster) Broadcast(code, data string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.clients {
		if s.code != code {
			continue
		}
		select {
		case s.ch <- data:
		default:
		}
	}
}

// CloseAll unregisters every subscriber of code, ending their streams.
func (b *Broadcaster) CloseAll(code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.clients {
		if s.code == code {
			delete(b.clients, s)
			close(s.ch)
		}
	}
}

// ClientCount returns the number of subscribers for code.
func (b *Broadcaster) ClientCount(code string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for s := range b.clients {
		if s.code == code {
			n++
		}
	}
	return n
}

// ServeSSE streams events for code until the client goes away or the
// session is closed. initial, when non-empty, is sent first.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, code, initial string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s := b.Register(code)
	defer b.Unregister(s)

	if initial != "" {
		fmt.Fprintf(w, "data: %s\n\n", initial)
	}
	flusher.Flush()

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-s.ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
