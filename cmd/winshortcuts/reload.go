package main

import (
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dylanchu/WinShortcuts/internal/config"
)

// settingsWatcher re-reads the settings database whenever `winshortcuts
// config set` touches it, so notify and the blocker hotkey apply without a
// restart. Control socket settings still need one.
type settingsWatcher struct {
	fs       *fsnotify.Watcher
	path     string
	debounce time.Duration
	apply    func(config.Config)
	done     chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

func watchSettings(path string, debounce time.Duration, apply func(config.Config)) (*settingsWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// sqlite may write through a journal next to the file, so watch the dir
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	w := &settingsWatcher{
		fs:       fw,
		path:     path,
		debounce: debounce,
		apply:    apply,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *settingsWatcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.relevant(ev) {
				w.schedule()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("[config] watch error: %v", err)
		}
	}
}

func (w *settingsWatcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasPrefix(filepath.Base(ev.Name), filepath.Base(w.path))
}

func (w *settingsWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *settingsWatcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}
	store, err := config.Open(w.path)
	if err != nil {
		log.Printf("[config] reload: %v", err)
		return
	}
	defer store.Close()
	cfg, err := store.Load()
	if err != nil {
		log.Printf("[config] reload: %v", err)
		return
	}
	log.Printf("[config] settings changed on disk; reloaded")
	w.apply(cfg)
}

func (w *settingsWatcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	close(w.done)
	return w.fs.Close()
}
