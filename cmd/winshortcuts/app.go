package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/dustin/go-humanize"

	"github.com/dylanchu/WinShortcuts/internal/config"
	"github.com/dylanchu/WinShortcuts/internal/control"
	"github.com/dylanchu/WinShortcuts/internal/hook"
	"github.com/dylanchu/WinShortcuts/internal/input"
	"github.com/dylanchu/WinShortcuts/internal/loghub"
	"github.com/dylanchu/WinShortcuts/internal/notify"
	"github.com/dylanchu/WinShortcuts/internal/shortcuts"
	"github.com/dylanchu/WinShortcuts/internal/startup"
)

const (
	instanceMutexName = `Local\WinShortcuts`
	maxUILines        = 2000
	helpText          = "Click screen Left-Top corner to show task view.\n(By simulating hotkey RWin+Tab)"
)

var errAlreadyRunning = errors.New("winshortcuts is already running")

func runTray(opts *options) error {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	hub := loghub.New(maxUILines)
	closeLog, err := initLogging(opts.logDir, hub)
	if err != nil {
		log.SetOutput(io.MultiWriter(os.Stderr, hub))
		log.Printf("[boot] file logging disabled: %v", err)
	}
	defer closeLog()

	if !ensureSingleInstance(instanceMutexName) {
		log.Printf("[boot] another instance holds %s", instanceMutexName)
		return errAlreadyRunning
	}

	cfg := loadConfig(opts)
	if n, size, err := purgeOldLogs(opts.logDir, cfg.LogRetentionDays, time.Now()); err != nil {
		log.Printf("[boot] purge logs: %v", err)
	} else if n > 0 {
		log.Printf("[boot] purged %d old log file(s), %s", n, humanize.Bytes(uint64(size)))
	}

	notifier := notify.New(cfg.Notify)
	synth := input.NewSynthesizer(input.NewSender())

	set, err := shortcuts.New(hook.New(), synth)
	defer set.Close()
	if err != nil {
		log.Printf("[boot] %v", err)
		notifier.HookFailed(err)
	}
	set.OnChange(func(st shortcuts.State) {
		log.Printf("[hooks] hot_corner=%v lwin_blocker=%v", st.HotCorner, st.LWinBlocker)
	})

	hk := newBlockerHotkey(set, notifier)
	hk.apply(cfg.BlockerHotkey)
	defer hk.close()

	if path, err := settingsPath(opts); err == nil {
		w, err := watchSettings(path, 300*time.Millisecond, func(c config.Config) {
			notifier.SetEnabled(c.Notify)
			hk.apply(c.BlockerHotkey)
		})
		if err != nil {
			log.Printf("[config] live reload off: %v", err)
		} else {
			defer w.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.ControlEnabled {
		srv := control.New(cfg.ControlAddr, cfg.ControlTokenHash, set, hub)
		set.OnChange(srv.Broadcast)
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				log.Printf("[control] %v", err)
				_ = notifier.Notify("Control socket stopped: " + err.Error())
			}
		}()
	}

	log.Printf("[boot] winshortcuts %s started (hot_corner=%v)", version, set.HotCornerEnabled())
	if opts.headless {
		waitForInterrupt()
		log.Printf("[boot] exiting")
		return nil
	}

	restart := runUI(set, hub, notifier, autostartArgs(opts))
	log.Printf("[boot] exiting")
	if restart {
		if err := restartSelf(); err != nil {
			log.Printf("[boot] restart: %v", err)
			return err
		}
	}
	return nil
}

// waitForInterrupt blocks until Ctrl+C. Hooks keep running meanwhile: their
// threads pump their own messages.
func waitForInterrupt() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)
	log.Printf("[boot] running headless; Ctrl+C to stop")
	<-sig
}

// loadConfig never fails: a broken settings store falls back to defaults.
func loadConfig(opts *options) config.Config {
	store, err := openStore(opts)
	if err != nil {
		log.Printf("[config] open: %v (using defaults)", err)
		return config.Default()
	}
	defer store.Close()

	cfg, err := store.Load()
	if err != nil {
		log.Printf("[config] load: %v (using defaults)", err)
		return config.Default()
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("[config] %v (control socket disabled)", err)
		cfg.ControlEnabled = false
	}
	return cfg
}

type trayUI struct {
	app      fyne.App
	win      fyne.Window
	set      *shortcuts.HookSet
	notifier *notify.Notifier
	// startArgs are appended to the executable in the Run key.
	startArgs []string

	menu      *fyne.Menu
	hotCorner *fyne.MenuItem
	lwin      *fyne.MenuItem
	autostart *fyne.MenuItem

	restart bool
}

// runUI blocks until the tray app quits and reports whether the user asked
// for a restart.
func runUI(set *shortcuts.HookSet, hub *loghub.Hub, notifier *notify.Notifier, startArgs []string) bool {
	a := app.NewWithID("io.github.dylanchu.winshortcuts")
	icon := theme.ComputerIcon()
	a.SetIcon(icon)

	w := a.NewWindow(config.AppName)
	w.Resize(fyne.NewSize(800, 500))
	w.SetIcon(icon)

	visible := &uiVisibility{}
	w.SetContent(buildLogsView(a, hub, visible, maxUILines, 250*time.Millisecond))
	w.SetCloseIntercept(func() {
		visible.set(false)
		w.Hide()
	})

	ui := &trayUI{app: a, win: w, set: set, notifier: notifier, startArgs: startArgs}
	ui.buildMenu(visible)

	set.OnChange(func(shortcuts.State) {
		a.Driver().DoFromGoroutine(ui.refresh, false)
	})

	if desk, ok := a.(desktop.App); ok {
		desk.SetSystemTrayMenu(ui.menu)
		a.Lifecycle().SetOnStarted(func() {
			desk.SetSystemTrayIcon(icon)
		})
	} else {
		log.Printf("[ui] no system tray on this driver; showing window")
		visible.set(true)
		w.Show()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		log.Printf("[ui] interrupt")
		a.Driver().DoFromGoroutine(a.Quit, false)
	}()
	defer signal.Stop(sig)

	log.Printf("[ui] started")
	a.Run()
	return ui.restart
}

func (ui *trayUI) buildMenu(visible *uiVisibility) {
	ui.hotCorner = fyne.NewMenuItem("Hot Corner", func() { ui.toggle(shortcuts.HotCorner) })
	ui.lwin = fyne.NewMenuItem("Block LWin", func() { ui.toggle(shortcuts.LWinBlocker) })
	ui.autostart = fyne.NewMenuItem("Start with Windows", ui.toggleAutostart)

	showLog := fyne.NewMenuItem("Show Log", func() {
		visible.set(true)
		ui.win.Show()
		ui.win.RequestFocus()
	})
	help := fyne.NewMenuItem("Help", func() {
		visible.set(true)
		ui.win.Show()
		dialog.ShowInformation(config.AppName+" Help", helpText, ui.win)
	})
	restart := fyne.NewMenuItem("Restart", func() {
		log.Printf("[ui] restart requested")
		ui.restart = true
		ui.app.Quit()
	})
	exit := fyne.NewMenuItem("Exit", func() {
		log.Printf("[ui] exit requested")
		ui.app.Quit()
	})
	exit.IsQuit = true

	ui.menu = fyne.NewMenu(config.AppName,
		ui.hotCorner,
		ui.lwin,
		fyne.NewMenuItemSeparator(),
		ui.autostart,
		showLog,
		help,
		fyne.NewMenuItemSeparator(),
		restart,
		exit,
	)
	ui.syncChecks()
}

func (ui *trayUI) toggle(f shortcuts.Feature) {
	on, err := ui.set.Toggle(f)
	if err != nil {
		log.Printf("[ui] toggle %s: %v", f, err)
		ui.notifier.HookFailed(err)
		ui.refresh()
		return
	}
	log.Printf("[ui] %s enabled=%v", f, on)
}

func (ui *trayUI) toggleAutostart() {
	on, _, err := startup.IsEnabled(config.AppName)
	if err != nil {
		log.Printf("[ui] autostart: %v", err)
		return
	}
	if err := startup.SetEnabled(config.AppName, !on, ui.startArgs...); err != nil {
		log.Printf("[ui] autostart: %v", err)
		_ = ui.notifier.Notify(fmt.Sprintf("Could not change autostart: %v", err))
	} else {
		log.Printf("[ui] autostart enabled=%v", !on)
	}
	ui.refresh()
}

// autostartArgs carries the non-default paths into the Run key so a login
// start reads the same settings and logs as this process.
func autostartArgs(opts *options) []string {
	var args []string
	for _, f := range []struct{ flag, path string }{
		{"--config", opts.configPath},
		{"--log-dir", opts.logDir},
	} {
		if f.path == "" {
			continue
		}
		p, err := filepath.Abs(f.path)
		if err != nil {
			p = f.path
		}
		args = append(args, f.flag, p)
	}
	return args
}

// refresh syncs check marks with the hook set and the Run key and
// republishes the tray menu. Runs on the UI goroutine.
func (ui *trayUI) refresh() {
	ui.syncChecks()
	ui.menu.Refresh()
}

func (ui *trayUI) syncChecks() {
	st := ui.set.State()
	ui.hotCorner.Checked = st.HotCorner
	ui.lwin.Checked = st.LWinBlocker

	on, _, err := startup.IsEnabled(config.AppName)
	ui.autostart.Disabled = errors.Is(err, startup.ErrUnsupported)
	ui.autostart.Checked = err == nil && on
}

// uiVisibility lets the log pump skip list refreshes while hidden.
type uiVisibility struct {
	shown bool
}

func (v *uiVisibility) set(shown bool) { v.shown = shown }
func (v *uiVisibility) get() bool      { return v.shown }
