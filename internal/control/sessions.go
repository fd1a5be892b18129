package control

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dylanchu/WinShortcuts/internal/protocol"
)

const writeTimeout = 3 * time.Second

type SessionInfo struct {
	ID          string
	RemoteAddr  string
	ConnectedAt int64
	LastSeenAt  int64
}

// safeConn serializes writes: gorilla/websocket allows one writer at a time.
type safeConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (s *safeConn) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.c.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.c.WriteJSON(v)
}

type sessionEntry struct {
	id          string
	remoteAddr  string
	connectedAt int64
	lastSeenAt  int64
	conn        *safeConn

	// states holds at most the newest undelivered broadcast.
	states chan protocol.StateMsg
	done   chan struct{}
}

// offer queues msg for the writer without blocking, replacing any state the
// client has not received yet.
func (se *sessionEntry) offer(msg protocol.StateMsg) {
	for {
		select {
		case se.states <- msg:
			return
		default:
		}
		select {
		case <-se.states:
		default:
		}
	}
}

func (se *sessionEntry) writeStates() {
	for {
		select {
		case <-se.done:
			return
		case msg := <-se.states:
			if err := se.conn.writeJSON(msg); err != nil {
				log.Printf("[control] broadcast to %s failed: %v", se.remoteAddr, err)
			}
		}
	}
}

type sessionTable struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func newSessionTable() *sessionTable {
	return &sessionTable{sessions: make(map[string]*sessionEntry)}
}

func newSessionID() string {
	b := make([]byte, 18)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (t *sessionTable) register(conn *safeConn, remote string) *sessionEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now().Unix()
	se := &sessionEntry{
		id:          newSessionID(),
		remoteAddr:  remote,
		connectedAt: now,
		lastSeenAt:  now,
		conn:        conn,
		states:      make(chan protocol.StateMsg, 1),
		done:        make(chan struct{}),
	}
	t.sessions[se.id] = se
	go se.writeStates()
	return se
}

func (t *sessionTable) unregister(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if se, ok := t.sessions[id]; ok {
		close(se.done)
		delete(t.sessions, id)
	}
}

func (t *sessionTable) touch(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if se, ok := t.sessions[id]; ok {
		se.lastSeenAt = time.Now().Unix()
	}
}

func (t *sessionTable) list() []SessionInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]SessionInfo, 0, len(t.sessions))
	for _, se := range t.sessions {
		out = append(out, SessionInfo{
			ID:          se.id,
			RemoteAddr:  se.remoteAddr,
			ConnectedAt: se.connectedAt,
			LastSeenAt:  se.lastSeenAt,
		})
	}
	return out
}

func (t *sessionTable) entries() []*sessionEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*sessionEntry, 0, len(t.sessions))
	for _, se := range t.sessions {
		out = append(out, se)
	}
	return out
}

func (t *sessionTable) conns() []*safeConn {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*safeConn, 0, len(t.sessions))
	for _, se := range t.sessions {
		out = append(out, se.conn)
	}
	return out
}

// closeAll drops every connection; each read loop then cleans up its entry.
func (t *sessionTable) closeAll() {
	for _, c := range t.conns() {
		_ = c.c.Close()
	}
}
