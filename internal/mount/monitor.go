package mount

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oukeidos/gdmount/internal/logger"
)

const DefaultInterval = 5 * time.Second

// Tracker owns the mounted-account map. The monitor never mutates it
// directly.
type Tracker interface {
	// ApplyLive reconciles the map against live and returns the tracked
	// entries that vanished. Returned entries are already removed.
	ApplyLive(live []Entry) ([]Gone, error)
	// Forget drops label after a successful unmount.
	Forget(label string) error
	// Mounted returns a snapshot of label -> mount point.
	Mounted() map[string]string
}

// Unmounter detaches a mount point.
type Unmounter interface {
	Unmount(ctx context.Context, mountPoint string) error
}

// Monitor polls the mount table on an interval and reports mounts that went
// away behind the application's back.
type Monitor struct {
	table     Table
	unmounter Unmounter
	tracker   Tracker

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	// tick is held by a poll and by an unmount from the tool call until
	// the label is forgotten, so a poll never sees the half-done unmount.
	tick sync.Mutex
}

func NewMonitor(table Table, unmounter Unmounter, tracker Tracker) *Monitor {
	return &Monitor{table: table, unmounter: unmounter, tracker: tracker}
}

// Start launches the polling goroutine. It returns false, doing nothing,
// when the monitor is already running.
func (m *Monitor) Start(interval time.Duration, onUnmount func(Gone)) bool {
	if interval <= 0 {
		interval = DefaultInterval
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return false
	}
	m.running = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.loop(interval, onUnmount, m.stop, m.done)
	logger.Debug("Mount monitor started", "interval", interval)
	return true
}

// Stop ends polling and waits for the goroutine to exit. Safe to call when
// not running.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stop, done := m.stop, m.done
	m.mu.Unlock()

	close(stop)
	<-done
	logger.Debug("Mount monitor stopped")
}

func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) loop(interval time.Duration, onUnmount func(Gone), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			gone, err := m.Poll()
			if err != nil {
				logger.Warn("Mount monitor tick failed", "error", err)
				continue
			}
			for _, g := range gone {
				logger.Info("Mount disappeared", "label", g.Label, "mount_point", g.MountPoint)
				if onUnmount != nil {
					onUnmount(g)
				}
			}
		}
	}
}

// Poll performs one reconciliation against the live table.
func (m *Monitor) Poll() ([]Gone, error) {
	m.tick.Lock()
	defer m.tick.Unlock()
	live, err := m.table.Entries()
	if err != nil {
		return nil, err
	}
	return m.tracker.ApplyLive(live)
}

func (m *Monitor) isLive(mountPoint string) bool {
	live, err := m.table.Entries()
	if err != nil {
		return true
	}
	want := filepath.Clean(mountPoint)
	for _, e := range live {
		if filepath.Clean(e.MountPoint) == want {
			return true
		}
	}
	return false
}

// Unmount detaches mountPoint and forgets label. If the tool fails but the
// mount point is no longer in the table the entry is forgotten anyway.
func (m *Monitor) Unmount(ctx context.Context, label, mountPoint string) error {
	m.tick.Lock()
	defer m.tick.Unlock()
	if err := m.unmounter.Unmount(ctx, mountPoint); err != nil {
		if m.isLive(mountPoint) {
			return err
		}
		logger.Info("Unmount failed but mount point is already gone", "label", label, "mount_point", mountPoint)
	}
	return m.tracker.Forget(label)
}

// UnmountReport lists the outcome of UnmountAll.
type UnmountReport struct {
	Unmounted []string
	Failed    map[string]error
}

func (r UnmountReport) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	labels := make([]string, 0, len(r.Failed))
	errs := make([]error, 0, len(r.Failed))
	for label := range r.Failed {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		errs = append(errs, fmt.Errorf("%s: %w", label, r.Failed[label]))
	}
	return fmt.Errorf("could not unmount %s: %w", strings.Join(labels, ", "), errors.Join(errs...))
}

// UnmountAll attempts every tracked mount and keeps going past failures.
func (m *Monitor) UnmountAll(ctx context.Context) UnmountReport {
	report := UnmountReport{Failed: map[string]error{}}
	mounted := m.tracker.Mounted()
	labels := make([]string, 0, len(mounted))
	for label := range mounted {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		if err := m.Unmount(ctx, label, mounted[label]); err != nil {
			report.Failed[label] = err
			continue
		}
		report.Unmounted = append(report.Unmounted, label)
	}
	return report
}
