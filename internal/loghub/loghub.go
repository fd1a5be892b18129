// Package loghub keeps the most recent log lines in memory and fans new
// lines out to subscribers. It is installed as part of log.SetOutput.
package loghub

import (
	"bytes"
	"sync"
)

const (
	defaultCapacity = 2000
	defaultBuffer   = 200
)

type Hub struct {
	mu       sync.Mutex
	lines    []string
	capacity int
	partial  bytes.Buffer
	subs     map[chan string]struct{}
}

func New(capacity int) *Hub {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Hub{
		capacity: capacity,
		subs:     make(map[chan string]struct{}),
	}
}

// Write implements io.Writer. Partial lines are held until their newline
// arrives.
func (h *Hub) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.partial.Write(p)
	for {
		b := h.partial.Bytes()
		idx := bytes.IndexByte(b, '\n')
		if idx < 0 {
			break
		}
		line := string(bytes.TrimRight(b[:idx], "\r"))
		h.partial.Next(idx + 1)
		h.addLocked(line)
	}
	return len(p), nil
}

func (h *Hub) addLocked(line string) {
	if line == "" {
		return
	}
	h.lines = append(h.lines, line)
	if len(h.lines) > h.capacity {
		h.lines = h.lines[len(h.lines)-h.capacity:]
	}
	for ch := range h.subs {
		select {
		case ch <- line:
		default:
			// slow subscriber: drop rather than block the logger
		}
	}
}

func (h *Hub) Snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.lines))
	copy(out, h.lines)
	return out
}

// Subscribe returns a channel of new lines and a function that closes it.
// The cancel function is safe to call more than once.
func (h *Hub) Subscribe(buffer int) (<-chan string, func()) {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	ch := make(chan string, buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	unsub := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, unsub
}

func (h *Hub) Clear() {
	h.mu.Lock()
	h.lines = nil
	h.partial.Reset()
	h.mu.Unlock()
}
