// Package instance keeps a single primary process per user session. A
// second start pings the primary, which shows its window, and then exits.
package instance

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrAlreadyRunning means another process holds the rendezvous point and
// has been signalled.
var ErrAlreadyRunning = errors.New("another instance is already running")

const (
	BackendSocket = "socket"
	BackendDBus   = "dbus"
)

// DefaultSocketName is an abstract Unix socket name scoped to the user.
func DefaultSocketName() string {
	return fmt.Sprintf("@gdmount-%d", os.Getuid())
}

const (
	BusName    = "io.github.oukeidos.gdmount"
	objectPath = "/io/github/oukeidos/gdmount"
)

// Claim takes the rendezvous point with the chosen backend. onShow runs,
// on a background goroutine, every time a later instance starts.
func Claim(backend string, onShow func()) (io.Closer, error) {
	switch backend {
	case "", BackendSocket:
		return ClaimSocket(DefaultSocketName(), onShow)
	case BackendDBus:
		return ClaimDBus(BusName, onShow)
	default:
		return nil, fmt.Errorf("unknown instance backend %q", backend)
	}
}
