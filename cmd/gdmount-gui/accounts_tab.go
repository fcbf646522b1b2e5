package main

import (
	"context"
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/gdmount/internal/account"
	"github.com/oukeidos/gdmount/internal/apperrors"
	"github.com/oukeidos/gdmount/internal/manager"
	"github.com/oukeidos/gdmount/internal/oauth"
)

type accountsTab struct {
	g       *gdmountApp
	content fyne.CanvasObject

	list     *widget.List
	labels   []string
	selected string
	state    manager.State

	mountBtn, unmountBtn, reauthBtn, deleteBtn, mountPointBtn *widget.Button
	automountCheck                                            *widget.Check
}

func newAccountsTab(g *gdmountApp) *accountsTab {
	t := &accountsTab{g: g}
	loc := g.loc

	t.list = widget.NewList(
		func() int { return len(t.labels) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			label := t.labels[id]
			obj.(*widget.Label).SetText(accountLine(loc, label, t.state.Accounts[label], t.state.Mounted[label]))
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

	t.mountBtn = widget.NewButtonWithIcon(loc.T("Mount"), theme.MediaPlayIcon(), func() { g.mount(t.selected) })
	t.unmountBtn = widget.NewButtonWithIcon(loc.T("Unmount"), theme.MediaStopIcon(), func() { g.unmount(t.selected) })
	t.reauthBtn = widget.NewButtonWithIcon(loc.T("Reauthorize"), theme.ViewRefreshIcon(), func() { t.reauthorize(t.selected, "") })
	t.deleteBtn = widget.NewButtonWithIcon(loc.T("Delete"), theme.DeleteIcon(), func() { t.confirmDelete(t.selected) })
	t.mountPointBtn = widget.NewButtonWithIcon(loc.T("Mount point..."), theme.FolderOpenIcon(), func() { t.chooseMountPoint(t.selected) })
	t.automountCheck = widget.NewCheck(loc.T("Mount at startup"), nil)

	addBtn := widget.NewButtonWithIcon(loc.T("Add account"), theme.ContentAddIcon(), t.showAddDialog)
	addBtn.Importance = widget.HighImportance
	automountAllBtn := widget.NewButton(loc.T("Mount automount accounts"), g.automount)
	unmountAllBtn := widget.NewButton(loc.T("Unmount all"), g.unmountAll)

	side := container.NewVBox(
		addBtn,
		widget.NewSeparator(),
		t.mountBtn,
		t.unmountBtn,
		t.reauthBtn,
		t.mountPointBtn,
		t.automountCheck,
		t.deleteBtn,
		widget.NewSeparator(),
		automountAllBtn,
		unmountAllBtn,
	)
	t.content = container.NewBorder(nil, nil, nil, container.NewPadded(side), t.list)
	t.refreshActions()
	return t
}

func (t *accountsTab) render(st manager.State) {
	t.state = st
	t.labels = st.Accounts.Labels()
	t.list.Refresh()
	if selectedIndex(t.labels, t.selected) < 0 {
		t.selected = ""
		t.list.UnselectAll()
	}
	t.refreshActions()
}

func (t *accountsTab) refreshActions() {
	a, ok := t.state.Accounts[t.selected]
	_, mounted := t.state.Mounted[t.selected]
	act := actionsFor(a, ok, mounted)
	setEnabled(t.mountBtn, act.mount)
	setEnabled(t.unmountBtn, act.unmount)
	setEnabled(t.reauthBtn, act.reauth)
	setEnabled(t.deleteBtn, act.remove)
	setEnabled(t.mountPointBtn, act.mountPoint)

	// Detach the handler so SetChecked does not write back.
	t.automountCheck.OnChanged = nil
	t.automountCheck.SetChecked(ok && a.Automount)
	if act.automount {
		t.automountCheck.Enable()
	} else {
		t.automountCheck.Disable()
	}
	label := t.selected
	t.automountCheck.OnChanged = func(on bool) {
		t.g.safeGo("accounts.automount", func() {
			if err := t.g.core.Manager.SetAutomount(label, on); err != nil {
				t.g.safeDo("accounts.automount.error", func() { t.g.showError(err) })
			}
			t.g.reload()
		})
	}
}

type disableable interface {
	Enable()
	Disable()
}

func setEnabled(w disableable, on bool) {
	if on {
		w.Enable()
	} else {
		w.Disable()
	}
}

func (t *accountsTab) showAddDialog() {
	g := t.g
	loc := g.loc
	labelEntry := widget.NewEntry()
	labelEntry.SetPlaceHolder(loc.T("e.g. work"))
	idEntry := widget.NewEntry()
	idEntry.SetPlaceHolder("1234567890-abc.apps.googleusercontent.com")
	secretEntry := widget.NewPasswordEntry()

	importBtn := widget.NewButtonWithIcon(loc.T("Import credentials JSON..."), theme.FileIcon(), func() {
		dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil {
				g.showError(err)
				return
			}
			if rc == nil {
				return
			}
			path := rc.URI().Path()
			_ = rc.Close()
			id, secret, err := oauth.LoadClientCredentials(path)
			if err != nil {
				g.showError(err)
				return
			}
			idEntry.SetText(id)
			secretEntry.SetText(secret)
		}, g.window)
	})

	items := []*widget.FormItem{
		widget.NewFormItem(loc.T("Label"), labelEntry),
		widget.NewFormItem("Client ID", idEntry),
		widget.NewFormItem("Client Secret", secretEntry),
		widget.NewFormItem("", importBtn),
	}
	d := dialog.NewForm(loc.T("Add account"), loc.T("Authorize"), loc.T("Cancel"), items, func(ok bool) {
		if !ok {
			return
		}
		t.setup(account.Draft{Label: labelEntry.Text, ClientID: idEntry.Text, ClientSecret: secretEntry.Text})
	}, g.window)
	d.Resize(fyne.NewSize(560, 300))
	d.Show()
}

func (t *accountsTab) setup(d account.Draft) {
	g := t.g
	var acc account.Account
	g.runTask("accounts.setup", g.loc.T("Waiting for the authorization in the browser..."), func(ctx context.Context) error {
		var err error
		acc, err = g.core.Manager.SetupAccount(ctx, d)
		return err
	}, func(err error) {
		if err != nil {
			g.showError(err)
			return
		}
		label := d.Normalized().Label
		if acc.Email != "" {
			g.showInfo(g.loc.T("Account %s configured (%s).", label, acc.Email))
			return
		}
		g.showInfo(g.loc.T("Account %s configured.", label))
	})
}

// reauthorize re-runs the authorization. When the stored secret cannot be
// decrypted it asks for the secret and retries with it.
func (t *accountsTab) reauthorize(label, secret string) {
	g := t.g
	g.runTask("accounts.reauth", g.loc.T("Waiting for the authorization in the browser..."), func(ctx context.Context) error {
		return g.core.Manager.Reauthorize(ctx, label, secret)
	}, func(err error) {
		var appErr *apperrors.Error
		switch {
		case err == nil:
			g.showInfo(g.loc.T("Account %s reauthorized.", label))
		case secret == "" && errors.As(err, &appErr) && appErr.Kind == apperrors.KindDecryption:
			t.askSecret(label)
		default:
			g.showError(err)
		}
	})
}

func (t *accountsTab) askSecret(label string) {
	loc := t.g.loc
	entry := widget.NewPasswordEntry()
	items := []*widget.FormItem{widget.NewFormItem("Client Secret", entry)}
	msg := widget.NewLabel(loc.T("Could not decrypt the client secret. Reauthorize the account."))
	msg.Wrapping = fyne.TextWrapWord
	items = append([]*widget.FormItem{widget.NewFormItem("", msg)}, items...)
	dialog.ShowForm(loc.T("Reauthorize"), loc.T("Authorize"), loc.T("Cancel"), items, func(ok bool) {
		if ok && entry.Text != "" {
			t.reauthorize(label, entry.Text)
		}
	}, t.g.window)
}

func (t *accountsTab) chooseMountPoint(label string) {
	g := t.g
	dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil {
			g.showError(err)
			return
		}
		if dir == nil {
			return
		}
		path := dir.Path()
		g.safeGo("accounts.mount_point", func() {
			if err := g.core.Manager.SetMountPoint(label, path); err != nil {
				g.safeDo("accounts.mount_point.error", func() { g.showError(err) })
			}
			g.reload()
		})
	}, g.window)
}

// confirmDelete asks for the delete itself, then one question per cleanup
// target found by PlanDelete.
func (t *accountsTab) confirmDelete(label string) {
	g := t.g
	loc := g.loc
	dialog.ShowConfirm(loc.T("Delete"), loc.T("Delete account %s?", label), func(ok bool) {
		if !ok {
			return
		}
		g.safeGo("accounts.plan_delete", func() {
			plan, err := g.core.Manager.PlanDelete(label)
			g.safeDo("accounts.plan_delete.done", func() {
				if err != nil {
					g.showError(err)
					return
				}
				t.askCleanups(plan, cleanupQuestions(plan), manager.DeleteOptions{})
			})
		})
	}, g.window)
}

func (t *accountsTab) askCleanups(plan manager.DeletePlan, qs []cleanupQuestion, opts manager.DeleteOptions) {
	if len(qs) == 0 {
		t.delete(plan.Label, opts)
		return
	}
	loc := t.g.loc
	next := func() { t.askCleanups(plan, qs[1:], opts) }
	switch qs[0] {
	case askToolConfig:
		dialog.ShowConfirm(loc.T("Delete"), loc.T("Also remove %s?", plan.ToolConfigDir), func(yes bool) {
			opts.RemoveToolConfig = yes
			next()
		}, t.g.window)
	case askMountFolder:
		dontAsk := widget.NewCheck(loc.T("Don't ask again"), nil)
		msg := widget.NewLabel(loc.T("Also remove the mount folder %s?", plan.MountPoint))
		msg.Wrapping = fyne.TextWrapWord
		dialog.ShowCustomConfirm(loc.T("Delete"), loc.T("Delete"), loc.T("Keep"), container.NewVBox(msg, dontAsk), func(yes bool) {
			opts.RemoveMountPoint = yes
			opts.DontAskAgain = dontAsk.Checked
			next()
		}, t.g.window)
	}
}

func (t *accountsTab) delete(label string, opts manager.DeleteOptions) {
	g := t.g
	g.safeGo("accounts.delete", func() {
		report, err := g.core.Manager.DeleteAccount(label, opts)
		g.safeDo("accounts.delete.done", func() {
			if err != nil {
				g.showError(err)
				return
			}
			if cerr := report.Err(); cerr != nil {
				g.showError(cerr)
				return
			}
			g.showInfo(g.loc.T("Account %s moved to the deleted accounts.", label))
		})
		g.reload()
	})
}
