package main

import (
	"context"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/gdmount/internal/logger"
	"github.com/oukeidos/gdmount/internal/manager"
)

// runTask runs fn off the UI thread behind a progress dialog. The dialog's
// cancel button cancels ctx. done runs on the UI thread with fn's error.
func (g *gdmountApp) runTask(scope, message string, fn func(ctx context.Context) error, done func(err error)) {
	ctx, cancel := context.WithCancel(g.ctx)
	bar := widget.NewProgressBarInfinite()
	content := container.NewVBox(widget.NewLabel(message), bar)
	d := dialog.NewCustom(g.loc.T("Please wait"), g.loc.T("Cancel"), content, g.window)
	d.SetOnClosed(cancel)
	d.Resize(fyne.NewSize(420, 140))
	d.Show()

	g.safeGo(scope, func() {
		err := fn(ctx)
		g.safeDo(scope+".done", func() {
			d.Hide()
			cancel()
			if err != nil {
				logger.Warn("Action failed", "scope", scope, "error", err)
			}
			if done != nil {
				done(err)
			}
			g.reload()
		})
	})
}

func (g *gdmountApp) mount(label string) {
	var point string
	g.runTask("ops.mount", g.loc.T("Mounting %s...", label), func(ctx context.Context) error {
		var err error
		point, err = g.core.Manager.Mount(ctx, label, "")
		return err
	}, func(err error) {
		if err != nil {
			g.showError(err)
			return
		}
		g.notify(g.loc.T("%s mounted at %s.", label, point))
	})
}

func (g *gdmountApp) unmount(label string) {
	g.runTask("ops.unmount", g.loc.T("Unmounting %s...", label), func(ctx context.Context) error {
		return g.core.Manager.Unmount(ctx, label)
	}, func(err error) {
		if err != nil {
			g.showError(err)
			return
		}
		g.notify(g.loc.T("%s unmounted.", label))
	})
}

func (g *gdmountApp) unmountAll() {
	g.runTask("ops.unmount_all", g.loc.T("Unmounting all accounts..."), func(ctx context.Context) error {
		return g.core.Manager.UnmountAll(ctx).Err()
	}, func(err error) {
		if err != nil {
			g.showError(err)
		}
	})
}

func (g *gdmountApp) automount() {
	var report manager.AutomountReport
	g.runTask("ops.automount", g.loc.T("Mounting accounts marked for automount..."), func(ctx context.Context) error {
		report = g.core.Manager.Automount(ctx)
		return nil
	}, func(error) {
		g.reportAutomount(report)
	})
}

// reportAutomount tells the user which accounts failed, pointing token
// failures at reauthorization. Safe to call from any goroutine.
func (g *gdmountApp) reportAutomount(r manager.AutomountReport) {
	if len(r.Failed) == 0 {
		return
	}
	reauth := r.NeedsReauth()
	g.safeDo("ops.automount.report", func() {
		var lines []string
		for label, err := range r.Failed {
			if selectedIndex(reauth, label) >= 0 {
				continue
			}
			lines = append(lines, label+": "+g.loc.Error(err))
		}
		sort.Strings(lines)
		for _, label := range reauth {
			lines = append(lines, g.loc.T("%s needs to be reauthorized.", label))
		}
		dialog.ShowInformation(g.loc.T("Automount"), strings.Join(lines, "\n"), g.window)
	})
}

func (g *gdmountApp) notify(msg string) {
	g.fyne.SendNotification(fyne.NewNotification("gdmount", msg))
}
