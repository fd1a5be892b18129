// Command client talks to a running WinShortcuts over its local control
// socket.
//
//	client status
//	client toggle hot_corner
//	client sessions
//	client logs
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"
	"golang.org/x/term"

	"github.com/dylanchu/WinShortcuts/internal/config"
	"github.com/dylanchu/WinShortcuts/internal/protocol"
	"github.com/dylanchu/WinShortcuts/internal/secret"
)

type args struct {
	Command string        `arg:"positional,required" help:"ping, status, sessions, logs, enable, disable or toggle"`
	Feature string        `arg:"positional" help:"hot_corner or lwin_blocker (enable, disable and toggle only)"`
	Addr    string        `arg:"-a,--addr" help:"control socket address; defaults to control_addr from the settings"`
	Config  string        `arg:"--config" help:"settings database (default: user config dir)"`
	Token   string        `arg:"-t,--token,env:WINSHORTCUTS_TOKEN" help:"control token; defaults to the saved token, then a prompt"`
	Timeout time.Duration `arg:"--timeout" default:"5s" help:"reply timeout"`
}

func (args) Description() string {
	return "Query or toggle a running WinShortcuts through its local control socket.\n"
}

func main() {
	var a args
	p := arg.MustParse(&a)
	a.Addr = resolveAddr(a.Addr, a.Config)

	req, err := buildRequest(a)
	if err != nil {
		p.Fail(err.Error())
	}
	token, err := resolveToken(a.Token)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	u := url.URL{Scheme: "ws", Host: a.Addr, Path: "/ws"}
	h := http.Header{}
	h.Set(protocol.TokenHeader, token)

	d := websocket.Dialer{HandshakeTimeout: a.Timeout}
	conn, resp, err := d.Dial(u.String(), h)
	if err != nil {
		if resp != nil {
			fmt.Fprintf(os.Stderr, "dial %s: %v (HTTP %d)\n", u.String(), err, resp.StatusCode)
		} else {
			fmt.Fprintf(os.Stderr, "dial %s: %v\n", u.String(), err)
		}
		os.Exit(1)
	}
	defer conn.Close()

	if err := conn.WriteJSON(req); err != nil {
		fmt.Fprintf(os.Stderr, "send: %v\n", err)
		os.Exit(1)
	}

	if req.Type == protocol.TypeLogs {
		follow(conn)
		return
	}

	for {
		_ = conn.SetReadDeadline(time.Now().Add(a.Timeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			fmt.Fprintf(os.Stderr, "read: %v\n", err)
			os.Exit(1)
		}
		out, mine, failed := formatReply(data, req.ID, time.Now())
		if !mine {
			// broadcast for another change
			continue
		}
		fmt.Println(out)
		if failed {
			os.Exit(1)
		}
		return
	}
}

// resolveAddr prefers the flag, then the address the app was configured to
// listen on, then the built-in default.
func resolveAddr(flagAddr, settingsPath string) string {
	if flagAddr != "" {
		return flagAddr
	}
	if settingsPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.DefaultAddr
		}
		settingsPath = p
	}
	if _, err := os.Stat(settingsPath); err != nil {
		return config.DefaultAddr
	}
	st, err := config.Open(settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "settings %s: %v\n", settingsPath, err)
		return config.DefaultAddr
	}
	defer st.Close()
	cfg, err := st.Load()
	if err != nil || cfg.ControlAddr == "" {
		return config.DefaultAddr
	}
	return cfg.ControlAddr
}

func buildRequest(a args) (protocol.Request, error) {
	req := protocol.Request{ID: "cli", Type: a.Command}
	switch a.Command {
	case protocol.TypePing, protocol.TypeStatus, protocol.TypeSessions, protocol.TypeLogs:
		if a.Feature != "" {
			return req, fmt.Errorf("%s takes no feature", a.Command)
		}
	case protocol.TypeEnable, protocol.TypeDisable, protocol.TypeToggle:
		if a.Feature == "" {
			return req, fmt.Errorf("%s needs a feature (hot_corner or lwin_blocker)", a.Command)
		}
		req.Feature = a.Feature
	default:
		return req, fmt.Errorf("unknown command %q", a.Command)
	}
	return req, nil
}

// resolveToken prefers the flag, then the OS credential store, then asks on
// the terminal.
func resolveToken(flagToken string) (string, error) {
	if flagToken != "" {
		return flagToken, nil
	}
	if ts, err := secret.Open(); err == nil {
		tok, err := ts.Token()
		if err == nil {
			return tok, nil
		}
		if !errors.Is(err, secret.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "keyring: %v\n", err)
		}
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no token: pass --token, set WINSHORTCUTS_TOKEN or run `winshortcuts token --save`")
	}
	fmt.Fprint(os.Stderr, "Token: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

type reply struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	State    protocol.State     `json:"state"`
	Sessions []protocol.Session `json:"sessions"`
	Error    string             `json:"error"`
}

// formatReply renders the answer to id. mine is false for messages meant
// for someone else, such as state broadcasts.
func formatReply(data []byte, id string, now time.Time) (out string, mine, failed bool) {
	var r reply
	if err := json.Unmarshal(data, &r); err != nil || r.ID != id {
		return "", false, false
	}
	switch r.Type {
	case protocol.TypePong:
		return "pong", true, false
	case protocol.TypeState:
		return fmt.Sprintf("hot_corner:   %s\nlwin_blocker: %s", onOff(r.State.HotCorner), onOff(r.State.LWinBlocker)), true, false
	case protocol.TypeSessions:
		var b strings.Builder
		fmt.Fprintf(&b, "%d session(s)", len(r.Sessions))
		for _, s := range r.Sessions {
			fmt.Fprintf(&b, "\n  %s  connected %s, last seen %s",
				s.RemoteAddr,
				humanize.RelTime(time.Unix(s.ConnectedAt, 0), now, "ago", "from now"),
				humanize.RelTime(time.Unix(s.LastSeenAt, 0), now, "ago", "from now"))
		}
		return b.String(), true, false
	case protocol.TypeError:
		return "error: " + r.Error, true, true
	}
	return string(data), true, false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// follow prints streamed log lines until interrupted.
func follow(conn *websocket.Conn) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	for {
		var msg protocol.LogMsg
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case protocol.TypeLog:
			fmt.Println(msg.Line)
		case protocol.TypeError:
			fmt.Fprintln(os.Stderr, "error: logs unavailable")
			return
		}
	}
}
