package main

import (
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"

	"github.com/dylanchu/WinShortcuts/internal/loghub"
)

// logRing is the bounded backing store of the log list widget.
type logRing struct {
	mu    sync.RWMutex
	buf   []string
	start int
	count int
	dirty bool
}

func newLogRing(limit int) *logRing {
	if limit <= 0 {
		limit = 1
	}
	return &logRing{buf: make([]string, limit)}
}

func (r *logRing) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.start, r.count = 0, 0
	r.dirty = true
}

func (r *logRing) appendMany(lines []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	limit := len(r.buf)
	for _, line := range lines {
		if r.count < limit {
			r.buf[(r.start+r.count)%limit] = line
			r.count++
		} else {
			r.buf[r.start] = line
			r.start = (r.start + 1) % limit
		}
	}
	if len(lines) > 0 {
		r.dirty = true
	}
}

func (r *logRing) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

func (r *logRing) at(i int) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= r.count {
		return ""
	}
	return r.buf[(r.start+i)%len(r.buf)]
}

func (r *logRing) snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, r.count)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(r.start+i)%len(r.buf)])
	}
	return out
}

func (r *logRing) consumeDirty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.dirty
	r.dirty = false
	return d
}

// drain pulls at most max lines without blocking.
func drain(pending <-chan string, max int) []string {
	batch := make([]string, 0, max)
	for len(batch) < max {
		select {
		case ln := <-pending:
			batch = append(batch, ln)
		default:
			return batch
		}
	}
	return batch
}

func buildLogsView(a fyne.App, hub *loghub.Hub, visible *uiVisibility, maxLines int, tick time.Duration) fyne.CanvasObject {
	ring := newLogRing(maxLines)

	initial := hub.Snapshot()
	if len(initial) > maxLines {
		initial = initial[len(initial)-maxLines:]
	}
	ring.appendMany(initial)
	_ = ring.consumeDirty()

	status := widget.NewLabel("Showing the last " + humanize.Comma(int64(maxLines)) + " lines")

	list := widget.NewList(
		func() int { return ring.len() },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(ring.at(i))
		},
	)

	btnClear := widget.NewButton("Clear", func() {
		hub.Clear()
		ring.clear()
		list.Refresh()
	})
	btnCopy := widget.NewButton("Copy all", func() {
		a.Clipboard().SetContent(strings.Join(ring.snapshot(), "\n"))
	})

	ch, _ := hub.Subscribe(1000)
	pending := make(chan string, 5000)
	go func() {
		for ln := range ch {
			select {
			case pending <- ln:
			default:
			}
		}
	}()

	if tick <= 0 {
		tick = 250 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	go func() {
		for range ticker.C {
			a.Driver().DoFromGoroutine(func() {
				batch := drain(pending, 200)
				if len(batch) == 0 {
					return
				}
				ring.appendMany(batch)
				if !visible.get() {
					_ = ring.consumeDirty()
					return
				}
				if ring.consumeDirty() {
					list.Refresh()
					list.ScrollToBottom()
				}
			}, false)
		}
	}()

	return container.NewBorder(
		container.NewHBox(btnClear, btnCopy),
		status, nil, nil,
		list,
	)
}
