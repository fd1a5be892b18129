// Package control serves the optional local websocket used to query and
// toggle the shortcuts from scripts.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"runtime/debug"
	"sort"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dylanchu/WinShortcuts/internal/config"
	"github.com/dylanchu/WinShortcuts/internal/protocol"
	"github.com/dylanchu/WinShortcuts/internal/shortcuts"
)

const shutdownTimeout = 3 * time.Second

// Controller is the part of shortcuts.HookSet the socket drives.
type Controller interface {
	State() shortcuts.State
	Set(f shortcuts.Feature, on bool) error
	Toggle(f shortcuts.Feature) (bool, error)
}

// LogSource is satisfied by loghub.Hub.
type LogSource interface {
	Snapshot() []string
	Subscribe(buffer int) (<-chan string, func())
}

type Server struct {
	addr      string
	tokenHash string
	ctl       Controller
	logs      LogSource
	sessions  *sessionTable
	upgrader  websocket.Upgrader
	echo      *echo.Echo
}

func New(addr, tokenHash string, ctl Controller, logs LogSource) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		addr:      addr,
		tokenHash: tokenHash,
		ctl:       ctl,
		logs:      logs,
		sessions:  newSessionTable(),
		upgrader: websocket.Upgrader{
			// Browsers always send Origin; scripts and the bundled client don't.
			CheckOrigin: func(r *http.Request) bool { return r.Header.Get("Origin") == "" },
		},
		echo: e,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.handleHealth)

	authed := s.echo.Group("", s.requireToken)
	authed.GET("/ws", s.handleWS)
	authed.GET("/status", s.handleStatus)
}

func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) Sessions() []SessionInfo { return s.sessions.list() }

// Broadcast queues st for every connected client and returns immediately.
// A client that falls behind only receives the newest state.
func (s *Server) Broadcast(st shortcuts.State) {
	msg := protocol.StateMsg{Type: protocol.TypeState, State: wireState(st)}
	for _, se := range s.sessions.entries() {
		se.offer(msg)
	}
}

// ListenAndServe serves until ctx is cancelled, then closes every session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Printf("[control] listening on ws://%s/ws", s.addr)

	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.sessions.closeAll()
		err := srv.Shutdown(sctx)
		log.Printf("[control] stopped")
		return err
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func tokenFromRequest(r *http.Request) string {
	if t := r.Header.Get(protocol.TokenHeader); t != "" {
		return t
	}
	return r.URL.Query().Get("token")
}

// requireToken rejects requests whose token does not match the stored hash.
func (s *Server) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		if !config.CheckToken(s.tokenHash, tokenFromRequest(r)) {
			log.Printf("[control] rejected %s %s: bad token", r.RemoteAddr, r.URL.Path)
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized (token)")
		}
		return next(c)
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, wireState(s.ctl.State()))
}

func (s *Server) handleWS(c echo.Context) error {
	s.serveWS(c.Response(), c.Request())
	return nil
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	rawConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[control] upgrade error:", err)
		return
	}
	defer rawConn.Close()

	conn := &safeConn{c: rawConn}
	se := s.sessions.register(conn, r.RemoteAddr)
	log.Println("[control] client connected from", r.RemoteAddr)

	var stopLogs func()
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[control] PANIC in handler: %v\n%s", rec, string(debug.Stack()))
		}
		if stopLogs != nil {
			stopLogs()
		}
		s.sessions.unregister(se.id)
		log.Println("[control] client disconnected:", r.RemoteAddr)
	}()

	for {
		_, raw, err := rawConn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("[control] read error:", err)
			}
			return
		}
		s.sessions.touch(se.id)

		var req protocol.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			_ = conn.writeJSON(protocol.ErrorMsg{Type: protocol.TypeError, Error: "invalid json"})
			continue
		}
		log.Printf("[control] recv type=%s id=%s feature=%s", req.Type, req.ID, req.Feature)

		switch req.Type {
		case protocol.TypePing:
			err = conn.writeJSON(protocol.PongMsg{ID: req.ID, Type: protocol.TypePong})

		case protocol.TypeStatus:
			err = conn.writeJSON(s.stateMsg(req.ID))

		case protocol.TypeSessions:
			err = conn.writeJSON(s.sessionsMsg(req.ID))

		case protocol.TypeEnable, protocol.TypeDisable, protocol.TypeToggle:
			err = s.applyToggle(conn, req)

		case protocol.TypeLogs:
			if stopLogs == nil {
				stopLogs = s.streamLogs(conn, req.ID)
			}

		default:
			err = conn.writeJSON(protocol.ErrorMsg{ID: req.ID, Type: protocol.TypeError, Error: "unknown type " + req.Type})
		}
		if err != nil {
			log.Printf("[control] write error: %v", err)
			return
		}
	}
}

// applyToggle answers the requester with the resulting state; other clients
// learn about it through Broadcast.
func (s *Server) applyToggle(conn *safeConn, req protocol.Request) error {
	f, err := shortcuts.ParseFeature(req.Feature)
	if err != nil {
		return conn.writeJSON(protocol.ErrorMsg{ID: req.ID, Type: protocol.TypeError, Error: err.Error()})
	}

	switch req.Type {
	case protocol.TypeEnable:
		err = s.ctl.Set(f, true)
	case protocol.TypeDisable:
		err = s.ctl.Set(f, false)
	default:
		_, err = s.ctl.Toggle(f)
	}
	if err != nil {
		return conn.writeJSON(protocol.ErrorMsg{ID: req.ID, Type: protocol.TypeError, Error: err.Error()})
	}
	return conn.writeJSON(s.stateMsg(req.ID))
}

func (s *Server) stateMsg(id string) protocol.StateMsg {
	return protocol.StateMsg{ID: id, Type: protocol.TypeState, State: wireState(s.ctl.State())}
}

func (s *Server) sessionsMsg(id string) protocol.SessionsMsg {
	infos := s.sessions.list()
	sort.Slice(infos, func(i, j int) bool { return infos[i].ConnectedAt < infos[j].ConnectedAt })
	out := make([]protocol.Session, 0, len(infos))
	for _, in := range infos {
		out = append(out, protocol.Session{
			ID:          in.ID,
			RemoteAddr:  in.RemoteAddr,
			ConnectedAt: in.ConnectedAt,
			LastSeenAt:  in.LastSeenAt,
		})
	}
	return protocol.SessionsMsg{ID: id, Type: protocol.TypeSessions, Sessions: out}
}

func (s *Server) streamLogs(conn *safeConn, id string) func() {
	if s.logs == nil {
		_ = conn.writeJSON(protocol.ErrorMsg{ID: id, Type: protocol.TypeError, Error: "logs unavailable"})
		return func() {}
	}
	ch, unsub := s.logs.Subscribe(500)
	for _, line := range s.logs.Snapshot() {
		if err := conn.writeJSON(protocol.LogMsg{ID: id, Type: protocol.TypeLog, Line: line}); err != nil {
			unsub()
			return func() {}
		}
	}
	go func() {
		for line := range ch {
			if err := conn.writeJSON(protocol.LogMsg{ID: id, Type: protocol.TypeLog, Line: line}); err != nil {
				unsub()
				return
			}
		}
	}()
	return unsub
}

func wireState(st shortcuts.State) protocol.State {
	return protocol.State{HotCorner: st.HotCorner, LWinBlocker: st.LWinBlocker}
}
