package instance

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/oukeidos/gdmount/internal/logger"
)

// DBus is the primary side of the session-bus backend.
type DBus struct {
	conn *dbus.Conn
	name string
}

type showObject struct {
	fn func()
}

// Show is the exported D-Bus method second instances call.
func (o showObject) Show() *dbus.Error {
	if o.fn != nil {
		go o.fn()
	}
	return nil
}

// ClaimDBus requests name on the session bus without queueing. A current
// owner gets its Show method called and ErrAlreadyRunning is returned.
func ClaimDBus(name string, onShow func()) (*DBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus: %w", err)
	}
	reply, err := conn.RequestName(name, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request name %s: %w", name, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		call := conn.Object(name, dbus.ObjectPath(objectPath)).Call(name+".Show", 0)
		if call.Err != nil {
			logger.Warn("Could not signal running instance", "bus_name", name, "error", call.Err)
		}
		conn.Close()
		return nil, ErrAlreadyRunning
	}
	if err := conn.Export(showObject{fn: onShow}, dbus.ObjectPath(objectPath), name); err != nil {
		_, _ = conn.ReleaseName(name)
		conn.Close()
		return nil, fmt.Errorf("export show: %w", err)
	}
	logger.Debug("Single instance claimed", "bus_name", name)
	return &DBus{conn: conn, name: name}, nil
}

func (d *DBus) Close() error {
	_, _ = d.conn.ReleaseName(d.name)
	return d.conn.Close()
}
