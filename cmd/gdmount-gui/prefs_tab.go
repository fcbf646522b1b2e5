package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/gdmount/internal/manager"
)

type prefsTab struct {
	g       *gdmountApp
	content fyne.CanvasObject

	language  *widget.Select
	askDelete *widget.Check
	autostart *widget.Check
}

func newPrefsTab(g *gdmountApp) *prefsTab {
	t := &prefsTab{g: g}
	loc := g.loc
	t.language = widget.NewSelect(languageOptions(), nil)
	t.askDelete = widget.NewCheck(loc.T("Ask before deleting the mount folder"), nil)
	t.autostart = widget.NewCheck(loc.T("Start at login, minimized to the tray"), nil)

	t.content = container.NewPadded(container.NewVBox(
		widget.NewLabelWithStyle(loc.T("Preferences"), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem(loc.T("Language"), t.language),
		),
		t.askDelete,
		t.autostart,
	))
	return t
}

// render shows st without firing the change handlers.
func (t *prefsTab) render(st manager.State) {
	t.language.OnChanged = nil
	t.askDelete.OnChanged = nil
	t.autostart.OnChanged = nil

	t.language.SetSelected(languageNames[t.g.loc.Code()])
	t.askDelete.SetChecked(st.AskBeforeDelete)
	t.autostart.SetChecked(st.AutostartEnabled)

	t.language.OnChanged = func(name string) {
		code := languageCode(name)
		if code == "" {
			return
		}
		t.save("prefs.language", func(m *manager.Manager) error { return m.SetLanguage(code) })
	}
	t.askDelete.OnChanged = func(on bool) {
		t.save("prefs.ask_before_delete", func(m *manager.Manager) error { return m.SetAskBeforeDelete(on) })
	}
	t.autostart.OnChanged = func(on bool) {
		t.save("prefs.autostart", func(m *manager.Manager) error { return m.SetAutostart(on) })
	}
}

func (t *prefsTab) save(scope string, fn func(m *manager.Manager) error) {
	g := t.g
	g.safeGo(scope, func() {
		if err := fn(g.core.Manager); err != nil {
			g.safeDo(scope+".error", func() { g.showError(err) })
		}
		g.reload()
	})
}
