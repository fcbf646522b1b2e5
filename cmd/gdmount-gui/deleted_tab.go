package main

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/gdmount/internal/manager"
)

type deletedTab struct {
	g       *gdmountApp
	content fyne.CanvasObject

	list     *widget.List
	labels   []string
	selected string
	state    manager.State

	restoreBtn, reconfigureBtn, purgeBtn *widget.Button
}

func newDeletedTab(g *gdmountApp) *deletedTab {
	t := &deletedTab{g: g}
	loc := g.loc
	t.list = widget.NewList(
		func() int { return len(t.labels) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			label := t.labels[id]
			obj.(*widget.Label).SetText(deletedLine(label, t.state.Deleted[label]))
		},
	)
	t.list.OnSelected = func(id widget.ListItemID) {
		t.selected = t.labels[id]
		t.refreshActions()
	}
	t.list.OnUnselected = func(widget.ListItemID) {
		t.selected = ""
		t.refreshActions()
	}

	t.restoreBtn = widget.NewButtonWithIcon(loc.T("Restore"), theme.MailReplyIcon(), func() { t.restore(t.selected, false) })
	t.reconfigureBtn = widget.NewButtonWithIcon(loc.T("Restore and reauthorize"), theme.ViewRefreshIcon(), func() { t.restore(t.selected, true) })
	t.purgeBtn = widget.NewButtonWithIcon(loc.T("Delete permanently"), theme.DeleteIcon(), func() { t.confirmPurge(t.selected) })
	t.purgeBtn.Importance = widget.DangerImportance

	side := container.NewVBox(t.restoreBtn, t.reconfigureBtn, widget.NewSeparator(), t.purgeBtn)
	t.content = container.NewBorder(nil, nil, nil, container.NewPadded(side), t.list)
	t.refreshActions()
	return t
}

func (t *deletedTab) render(st manager.State) {
	t.state = st
	t.labels = st.Deleted.Labels()
	t.list.Refresh()
	if selectedIndex(t.labels, t.selected) < 0 {
		t.selected = ""
		t.list.UnselectAll()
	}
	t.refreshActions()
}

func (t *deletedTab) refreshActions() {
	_, ok := t.state.Deleted[t.selected]
	setEnabled(t.restoreBtn, ok)
	setEnabled(t.reconfigureBtn, ok)
	setEnabled(t.purgeBtn, ok)
}

func (t *deletedTab) restore(label string, reconfigure bool) {
	g := t.g
	msg := g.loc.T("Restoring %s...", label)
	if reconfigure {
		msg = g.loc.T("Waiting for the authorization in the browser...")
	}
	g.runTask("deleted.restore", msg, func(ctx context.Context) error {
		return g.core.Manager.RestoreAccount(ctx, label, reconfigure)
	}, func(err error) {
		switch {
		case err != nil:
			g.showError(err)
		case !reconfigure:
			g.showInfo(g.loc.T("Account %s restored without configuration. Reauthorize it before mounting.", label))
		default:
			g.showInfo(g.loc.T("Account %s restored.", label))
		}
	})
}

func (t *deletedTab) confirmPurge(label string) {
	g := t.g
	dialog.ShowConfirm(g.loc.T("Delete permanently"), g.loc.T("Permanently delete %s? This cannot be undone.", label), func(ok bool) {
		if !ok {
			return
		}
		g.safeGo("deleted.purge", func() {
			if err := g.core.Manager.PurgeAccount(label); err != nil {
				g.safeDo("deleted.purge.error", func() { g.showError(err) })
			}
			g.reload()
		})
	}, g.window)
}
