package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/spf13/pflag"

	"github.com/oukeidos/gdmount/internal/app"
	"github.com/oukeidos/gdmount/internal/apperrors"
	"github.com/oukeidos/gdmount/internal/cleanup"
	"github.com/oukeidos/gdmount/internal/i18n"
	"github.com/oukeidos/gdmount/internal/instance"
	"github.com/oukeidos/gdmount/internal/logger"
	"github.com/oukeidos/gdmount/internal/manager"
	"github.com/oukeidos/gdmount/internal/settings"
)

const appID = "io.github.oukeidos.gdmount"

type gdmountApp struct {
	fyne   fyne.App
	window fyne.Window
	core   *app.App

	// Owned by the UI thread.
	loc      *i18n.Localizer
	state    manager.State
	accounts *accountsTab
	deleted  *deletedTab
	prefs    *prefsTab
	tabs     *container.AppTabs
	hasTray  bool

	ctx    context.Context
	cancel context.CancelFunc

	panicNoticeOnce sync.Once
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Fatal panic in GUI main", "panic", fmt.Sprint(r))
			_ = cleanup.RunAll()
			os.Exit(1)
		}
	}()
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("gdmount-gui", pflag.ContinueOnError)
	settings.RegisterFlags(fs)
	minimized := fs.Bool("minimized", false, "Start hidden in the system tray")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	s, err := settings.Load(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}
	if err := app.InitLogging(s); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	defer func() {
		if err := cleanup.RunAll(); err != nil {
			logger.Warn("Cleanup failed", "error", err)
		}
	}()

	fa := fyneapp.NewWithID(appID)
	fa.SetIcon(theme.StorageIcon())
	g := &gdmountApp{fyne: fa, loc: i18n.New("")}

	claim, err := instance.Claim(s.InstanceBackend, func() {
		g.safeDo("instance.show", g.showWindow)
	})
	if errors.Is(err, instance.ErrAlreadyRunning) {
		logger.Info("Another instance is running; asked it to show its window")
		return 0
	}
	if err != nil {
		logger.Warn("Single instance check unavailable", "backend", s.InstanceBackend, "error", err)
	} else {
		cleanup.Register("single-instance listener", claim.Close)
	}

	core, err := app.New(s, app.Options{OpenBrowser: g.openURL})
	if err != nil {
		logger.Error("Could not start", "error", err)
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	defer core.Close()
	g.core = core
	g.loc = core.Manager.Localizer()
	g.ctx, g.cancel = context.WithCancel(context.Background())
	defer g.cancel()

	g.window = fa.NewWindow("gdmount")
	g.window.Resize(fyne.NewSize(760, 480))
	g.setupTray()
	g.window.SetCloseIntercept(func() {
		if g.hasTray {
			g.window.Hide()
			return
		}
		g.quit()
	})
	g.rebuild()

	g.safeGo("events", g.watchEvents)
	g.safeGo("startup", g.startup)

	if *minimized && g.hasTray {
		fa.Run()
	} else {
		g.window.ShowAndRun()
	}
	return 0
}

func (g *gdmountApp) openURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse consent url: %w", err)
	}
	return g.fyne.OpenURL(u)
}

func (g *gdmountApp) showWindow() {
	if g.window == nil {
		return
	}
	g.window.Show()
	g.window.RequestFocus()
}

// setupTray installs the tray menu when the desktop supports one.
func (g *gdmountApp) setupTray() {
	desk, ok := g.fyne.(desktop.App)
	if !ok {
		return
	}
	g.hasTray = true
	desk.SetSystemTrayIcon(theme.StorageIcon())
	desk.SetSystemTrayMenu(g.trayMenu())
}

func (g *gdmountApp) trayMenu() *fyne.Menu {
	items := []*fyne.MenuItem{
		fyne.NewMenuItem(g.loc.T("Show"), g.showWindow),
		fyne.NewMenuItemSeparator(),
	}
	for _, label := range g.state.Accounts.Labels() {
		label := label
		a := g.state.Accounts[label]
		mp, mounted := g.state.Mounted[label]
		item := fyne.NewMenuItem(accountLine(g.loc, label, a, mp), nil)
		switch {
		case mounted:
			item.Action = func() { g.unmount(label) }
		case a.Configured:
			item.Action = func() { g.mount(label) }
		default:
			item.Disabled = true
		}
		items = append(items, item)
	}
	if len(g.state.Mounted) > 0 {
		items = append(items, fyne.NewMenuItemSeparator(), fyne.NewMenuItem(g.loc.T("Unmount all"), g.unmountAll))
	}
	quit := fyne.NewMenuItem(g.loc.T("Quit"), g.quit)
	quit.IsQuit = true
	items = append(items, fyne.NewMenuItemSeparator(), quit)
	return fyne.NewMenu("gdmount", items...)
}

func (g *gdmountApp) quit() {
	g.cancel()
	g.core.Manager.StopMonitor()
	g.fyne.Quit()
}

// rebuild replaces the window content, for example after a language
// change.
func (g *gdmountApp) rebuild() {
	g.accounts = newAccountsTab(g)
	g.deleted = newDeletedTab(g)
	g.prefs = newPrefsTab(g)
	g.tabs = container.NewAppTabs(
		container.NewTabItemWithIcon(g.loc.T("Accounts"), theme.StorageIcon(), g.accounts.content),
		container.NewTabItemWithIcon(g.loc.T("Deleted"), theme.DeleteIcon(), g.deleted.content),
		container.NewTabItemWithIcon(g.loc.T("Preferences"), theme.SettingsIcon(), g.prefs.content),
		container.NewTabItemWithIcon(g.loc.T("About"), theme.InfoIcon(), buildAboutTab(g)),
	)
	g.window.SetContent(g.tabs)
	g.render()
}

// render pushes g.state into the widgets.
func (g *gdmountApp) render() {
	g.accounts.render(g.state)
	g.deleted.render(g.state)
	g.prefs.render(g.state)
	if g.hasTray {
		if desk, ok := g.fyne.(desktop.App); ok {
			desk.SetSystemTrayMenu(g.trayMenu())
		}
	}
}

// reload takes a fresh snapshot off the UI thread and renders it.
func (g *gdmountApp) reload() {
	g.safeGo("reload", func() {
		st := g.core.Manager.Snapshot()
		g.safeDo("reload.render", func() {
			relocalize := st.Language != g.state.Language
			g.state = st
			if relocalize {
				tab := g.tabs.SelectedIndex()
				g.loc = i18n.New(st.Language)
				g.rebuild()
				g.tabs.SelectIndex(tab)
				return
			}
			g.render()
		})
	})
}

func (g *gdmountApp) startup() {
	report, err := g.core.Manager.Startup(g.ctx, manager.StartupOptions{Automount: true, StartMonitor: true})
	if err != nil {
		logger.Error("Startup failed", "error", err)
		g.safeDo("startup.error", func() { g.showError(err) })
		return
	}
	for _, w := range report.Warnings {
		logger.Warn("Startup warning", "error", w)
	}
	g.reload()

	if _, err := g.core.Manager.ToolVersion(g.ctx); err != nil {
		g.safeDo("startup.tool", func() {
			msg := g.loc.Error(err)
			if apperrors.CodeOf(err) == apperrors.CodeNotInstalled {
				msg += "\n" + g.loc.T("Install it from https://github.com/astrada/google-drive-ocamlfuse.")
			}
			dialog.ShowInformation(g.loc.T("Mount tool"), msg, g.window)
		})
	}
	g.reportAutomount(report.Automount)
}

func (g *gdmountApp) showError(err error) {
	if err == nil || g.window == nil {
		return
	}
	dialog.ShowError(errors.New(g.loc.Error(err)), g.window)
}

func (g *gdmountApp) showInfo(msg string) {
	dialog.ShowInformation("gdmount", msg, g.window)
}
