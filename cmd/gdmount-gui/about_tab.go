package main

import (
	"net/url"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/gdmount/internal/licenses"
	"github.com/oukeidos/gdmount/internal/version"
)

const (
	githubURL = "https://github.com/oukeidos/gdmount"
	toolURL   = "https://github.com/astrada/google-drive-ocamlfuse"
)

func buildAboutTab(g *gdmountApp) fyne.CanvasObject {
	loc := g.loc
	toolLabel := widget.NewLabel("…")
	g.safeGo("about.tool_version", func() {
		v, err := g.core.Manager.ToolVersion(g.ctx)
		if err != nil {
			v = loc.Error(err)
		}
		g.safeDo("about.tool_version.done", func() { toolLabel.SetText(v) })
	})

	aboutSection := container.NewVBox(
		widget.NewLabelWithStyle(loc.T("About"), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel(loc.T("Mount several Google Drive accounts with google-drive-ocamlfuse.")),
		widget.NewForm(
			widget.NewFormItem("App", widget.NewLabel("gdmount")),
			widget.NewFormItem(loc.T("Version"), widget.NewLabel(version.Version)),
			widget.NewFormItem("Commit", widget.NewLabel(version.Commit)),
			widget.NewFormItem("Build", widget.NewLabel(version.BuildDate)),
			widget.NewFormItem(loc.T("Mount tool"), toolLabel),
			widget.NewFormItem(loc.T("Links"), container.NewHBox(
				newHyperlink("GitHub", githubURL),
				newHyperlink("google-drive-ocamlfuse", toolURL),
			)),
		),
	)

	var rows []string
	for _, m := range licenses.Modules() {
		rows = append(rows, m.Path+"  "+m.License)
	}
	noticesBtn := widget.NewButton(loc.T("View third-party notices"), func() {
		showTextDialog(g.window, loc.T("Third-party notices"), licenses.NoticesText())
	})
	licensesSection := container.NewVBox(
		widget.NewLabelWithStyle(loc.T("Licenses"), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel(strings.Join(rows, "\n")),
		noticesBtn,
	)

	return container.NewPadded(container.NewVScroll(container.NewVBox(
		aboutSection,
		widget.NewSeparator(),
		licensesSection,
	)))
}

func newHyperlink(label, raw string) *widget.Hyperlink {
	u, _ := url.Parse(raw)
	return widget.NewHyperlink(label, u)
}

func showTextDialog(w fyne.Window, title, text string) {
	entry := widget.NewMultiLineEntry()
	entry.SetText(text)
	entry.Wrapping = fyne.TextWrapWord
	lock := false
	entry.OnChanged = func(s string) {
		if lock || s == text {
			return
		}
		lock = true
		entry.SetText(text)
		lock = false
	}
	scroll := container.NewScroll(entry)
	scroll.SetMinSize(fyne.NewSize(640, 460))
	d := dialog.NewCustom(title, "OK", scroll, w)
	d.Resize(fyne.NewSize(680, 520))
	d.Show()
}
