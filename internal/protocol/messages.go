// Package protocol defines the JSON messages of the local control socket.
package protocol

// Request types.
const (
	TypePing     = "ping"
	TypeStatus   = "status"
	TypeEnable   = "enable"
	TypeDisable  = "disable"
	TypeToggle   = "toggle"
	TypeLogs     = "logs"
	TypeSessions = "sessions"
)

// Response types.
const (
	TypePong  = "pong"
	TypeState = "state"
	TypeLog   = "log"
	TypeError = "error"
)

// TokenHeader carries the control token on the upgrade request.
const TokenHeader = "X-WinShortcuts-Token"

// Request is every client message. Feature is used by enable, disable and
// toggle.
type Request struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Feature string `json:"feature,omitempty"`
}

type State struct {
	HotCorner   bool `json:"hot_corner"`
	LWinBlocker bool `json:"lwin_blocker"`
}

// StateMsg answers status and toggles, and is broadcast on every change.
type StateMsg struct {
	ID    string `json:"id,omitempty"`
	Type  string `json:"type"`
	State State  `json:"state"`
}

type LogMsg struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`
	Line string `json:"line"`
}

type ErrorMsg struct {
	ID    string `json:"id,omitempty"`
	Type  string `json:"type"`
	Error string `json:"error"`
}

type PongMsg struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`
}

// Session describes one connected control client. Times are Unix seconds.
type Session struct {
	ID          string `json:"id"`
	RemoteAddr  string `json:"remote_addr"`
	ConnectedAt int64  `json:"connected_at"`
	LastSeenAt  int64  `json:"last_seen_at"`
}

type SessionsMsg struct {
	ID       string    `json:"id,omitempty"`
	Type     string    `json:"type"`
	Sessions []Session `json:"sessions"`
}
