package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"github.com/oukeidos/gdmount/internal/logger"
)

func withPanicGuard(scope string, onPanic func(any), fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered panic", "scope", scope, "panic", fmt.Sprint(r))
			if onPanic != nil {
				onPanic(r)
			}
		}
	}()
	fn()
}

func safeGo(scope string, fn func()) {
	go func() {
		withPanicGuard(scope, nil, fn)
	}()
}

// safeGo runs fn off the UI thread. A panic is logged and reported once.
func (g *gdmountApp) safeGo(scope string, fn func()) {
	if g == nil {
		safeGo(scope, fn)
		return
	}
	go func() {
		withPanicGuard(scope, func(r any) {
			g.handleRecoveredPanic(scope, r)
		}, fn)
	}()
}

// safeDo queues fn on the UI thread.
func (g *gdmountApp) safeDo(scope string, fn func()) {
	withPanicGuard(scope+".dispatch", func(r any) {
		g.handleRecoveredPanic(scope+".dispatch", r)
	}, func() {
		fyne.Do(func() {
			withPanicGuard(scope, func(r any) {
				g.handleRecoveredPanic(scope, r)
			}, fn)
		})
	})
}

func (g *gdmountApp) handleRecoveredPanic(scope string, _ any) {
	if g == nil || fyne.CurrentApp() == nil {
		return
	}
	g.panicNoticeOnce.Do(func() {
		g.safeDo("panic.notice", func() {
			if g.window == nil {
				return
			}
			dialog.ShowInformation(
				g.loc.T("Unexpected Error"),
				g.loc.T("An internal error stopped the last action (%s). Please retry. If this repeats, restart the application.", scope),
				g.window,
			)
		})
	})
}
