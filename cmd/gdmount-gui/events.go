package main

import (
	"github.com/oukeidos/gdmount/internal/logger"
	"github.com/oukeidos/gdmount/internal/manager"
)

// watchEvents forwards manager events to the UI thread until quit.
func (g *gdmountApp) watchEvents() {
	events := g.core.Manager.Events()
	for {
		select {
		case <-g.ctx.Done():
			return
		case ev := <-events:
			logger.Debug("Manager event", "kind", ev.Kind.String(), "label", ev.Label)
			g.safeDo("events."+ev.Kind.String(), func() { g.handleEvent(ev) })
		}
	}
}

func (g *gdmountApp) handleEvent(ev manager.Event) {
	if ev.Kind == manager.EventExternalUnmount {
		g.notify(externalUnmountNotice(g.loc, ev))
	}
	g.reload()
}
