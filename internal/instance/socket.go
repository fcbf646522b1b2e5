package instance

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/oukeidos/gdmount/internal/logger"
)

// Socket is the primary side of the abstract-socket backend.
type Socket struct {
	ln     net.Listener
	onShow func()
	wg     sync.WaitGroup
	once   sync.Once
}

// ClaimSocket listens on name. If the name is taken the current owner is
// pinged and ErrAlreadyRunning is returned.
func ClaimSocket(name string, onShow func()) (*Socket, error) {
	ln, err := net.Listen("unix", name)
	if err != nil {
		conn, dialErr := net.DialTimeout("unix", name, time.Second)
		if dialErr != nil {
			return nil, fmt.Errorf("claim %s: %w", name, err)
		}
		_ = conn.Close()
		logger.Info("Signalled running instance", "socket", name)
		return nil, ErrAlreadyRunning
	}
	s := &Socket{ln: ln, onShow: onShow}
	s.wg.Add(1)
	go s.serve()
	logger.Debug("Single instance claimed", "socket", name)
	return s, nil
}

func (s *Socket) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				logger.Warn("Instance listener stopped", "error", err)
			}
			return
		}
		_ = conn.Close()
		if s.onShow != nil {
			s.onShow()
		}
	}
}

// Close releases the name and waits for the accept loop.
func (s *Socket) Close() error {
	var err error
	s.once.Do(func() {
		err = s.ln.Close()
		s.wg.Wait()
	})
	return err
}
