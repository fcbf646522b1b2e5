// Package manager owns the account, deleted and mounted maps. Every read
// and write goes through one goroutine, so the presentation layer, the
// mount monitor and background operations never race on the document.
// Slow work (OAuth, tool calls, network) runs outside that goroutine and
// commits its result with a second, re-validated step.
package manager

import (
	"context"
	"errors"
	"maps"
	"os"
	"sync"
	"time"

	"github.com/oukeidos/gdmount/internal/account"
	"github.com/oukeidos/gdmount/internal/config"
	"github.com/oukeidos/gdmount/internal/gdfuse"
	"github.com/oukeidos/gdmount/internal/i18n"
	"github.com/oukeidos/gdmount/internal/logger"
	"github.com/oukeidos/gdmount/internal/mount"
	"github.com/oukeidos/gdmount/internal/oauth"
)

// DocumentStore persists the config document.
type DocumentStore interface {
	Load() config.Document
	Save(config.Document)
}

// SecretBox encrypts client secrets at rest.
type SecretBox interface {
	EnsureKey() error
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
	EnsureEncrypted(value string) (string, error)
}

// Tool is the mount tool adapter; *gdfuse.Tool implements it.
type Tool interface {
	Mount(ctx context.Context, label, dir string) error
	HeadlessAuthorize(ctx context.Context, c gdfuse.Credentials, code string) error
	Unmount(ctx context.Context, dir string) error
	Version(ctx context.Context) (string, error)
	ScanConfigs() ([]account.Discovered, error)
	LabelForMountPoint(mountPoint string) (string, bool)
	ReadAccessToken(label string) (string, error)
	LabelDir(label string) string
	HasLabelDir(label string) bool
	RemoveLabelDir(label string) error
}

// Authenticator captures one authorization code. loc localizes the
// callback page.
type Authenticator interface {
	Authenticate(ctx context.Context, clientID string, loc *i18n.Localizer) (oauth.Grant, error)
}

// EmailFetcher resolves the email behind an access token.
type EmailFetcher interface {
	FetchEmail(ctx context.Context, accessToken string) (string, error)
}

// Autostarter writes or removes the login entry.
type Autostarter interface {
	Set(enabled bool) error
}

// Deps are the collaborators of a Manager. Autostart and Email may be nil.
type Deps struct {
	Store     DocumentStore
	Secrets   SecretBox
	Tool      Tool
	Table     mount.Table
	Auth      Authenticator
	Email     EmailFetcher
	Autostart Autostarter
	// Home is the parent of default mount points. Empty uses the user's
	// home directory.
	Home            string
	MonitorInterval time.Duration
}

// OAuthFlow adapts oauth.Authenticator to the Authenticator interface.
type OAuthFlow struct {
	Port        int
	Timeout     time.Duration
	OpenBrowser func(url string) error
}

func (f OAuthFlow) Authenticate(ctx context.Context, clientID string, loc *i18n.Localizer) (oauth.Grant, error) {
	a := &oauth.Authenticator{Port: f.Port, Timeout: f.Timeout, OpenBrowser: f.OpenBrowser, Localizer: loc}
	return a.Authenticate(ctx, clientID)
}

type EventKind int

const (
	EventAccountsChanged EventKind = iota
	EventMountsChanged
	// EventExternalUnmount reports a tracked mount that disappeared without
	// going through Unmount.
	EventExternalUnmount
	EventPreferencesChanged
)

func (k EventKind) String() string {
	switch k {
	case EventAccountsChanged:
		return "accounts_changed"
	case EventMountsChanged:
		return "mounts_changed"
	case EventExternalUnmount:
		return "external_unmount"
	case EventPreferencesChanged:
		return "preferences_changed"
	}
	return "unknown"
}

// Event is an immutable notification for the presentation layer.
type Event struct {
	Kind       EventKind
	Label      string
	MountPoint string
}

const eventBuffer = 64

// ErrClosed is returned by operations on a closed Manager.
var ErrClosed = errors.New("manager closed")

// State is a copy of everything the presentation layer renders.
type State struct {
	Accounts         account.Set
	Deleted          account.Set
	Mounted          map[string]string
	AutostartEnabled bool
	AskBeforeDelete  bool
	Language         string
}

type state struct {
	doc config.Document
}

type Manager struct {
	deps    Deps
	monitor *mount.Monitor

	cmds   chan func(*state)
	events chan Event
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// New loads the document and starts the owner goroutine. Call Close when
// done.
func New(d Deps) *Manager {
	if d.Home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			d.Home = h
		}
	}
	if d.MonitorInterval <= 0 {
		d.MonitorInterval = mount.DefaultInterval
	}
	m := &Manager{
		deps:   d,
		cmds:   make(chan func(*state)),
		events: make(chan Event, eventBuffer),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	m.monitor = mount.NewMonitor(d.Table, d.Tool, m)
	st := &state{doc: d.Store.Load()}
	go m.loop(st)
	return m
}

func (m *Manager) loop(st *state) {
	defer close(m.done)
	for {
		select {
		case fn := <-m.cmds:
			fn(st)
		case <-m.quit:
			return
		}
	}
}

// do runs fn on the owner goroutine and waits for it. It reports false when
// the manager is closed.
func (m *Manager) do(fn func(st *state)) bool {
	finished := make(chan struct{})
	select {
	case m.cmds <- func(st *state) { fn(st); close(finished) }:
	case <-m.quit:
		return false
	}
	<-finished
	return true
}

// run is do for operations that fail; a closed manager yields ErrClosed.
func (m *Manager) run(fn func(st *state) error) error {
	var err error
	if !m.do(func(st *state) { err = fn(st) }) {
		return ErrClosed
	}
	return err
}

// query reads from the state on the owner goroutine. A closed manager
// yields the zero value and ErrClosed.
func query[T any](m *Manager, fn func(st *state) T) (T, error) {
	var out T
	if !m.do(func(st *state) { out = fn(st) }) {
		return out, ErrClosed
	}
	return out, nil
}

func (m *Manager) persist(st *state) {
	m.deps.Store.Save(st.doc.Clone())
}

func (m *Manager) emit(e Event) {
	select {
	case m.events <- e:
	default:
		logger.Debug("Event dropped; consumer is behind", "kind", e.Kind.String(), "label", e.Label)
	}
}

// Events is drained by the presentation layer. Slow consumers lose events
// rather than block the owner.
func (m *Manager) Events() <-chan Event { return m.events }

func (m *Manager) Snapshot() State {
	s, _ := query(m, func(st *state) State {
		doc := st.doc.Clone()
		return State{
			Accounts:         doc.Accounts,
			Deleted:          doc.DeletedAccounts,
			Mounted:          doc.MountedAccounts,
			AutostartEnabled: doc.AutostartEnabled,
			AskBeforeDelete:  doc.AskBeforeDelete,
			Language:         doc.Language,
		}
	})
	return s
}

// Localizer is resolved from the current language on every call.
func (m *Manager) Localizer() *i18n.Localizer {
	lang, _ := query(m, func(st *state) string { return st.doc.Language })
	return i18n.New(lang)
}

// Close stops the monitor and the owner goroutine. It does not unmount.
func (m *Manager) Close() {
	m.once.Do(func() {
		m.monitor.Stop()
		close(m.quit)
		<-m.done
	})
}

// ApplyLive implements mount.Tracker.
func (m *Manager) ApplyLive(live []mount.Entry) ([]mount.Gone, error) {
	var gone []mount.Gone
	m.do(func(st *state) {
		next, g := mount.Reconcile(st.doc.MountedAccounts, live, st.doc.Accounts, st.doc.DeletedAccounts, m.deps.Tool.LabelForMountPoint)
		gone = g
		if maps.Equal(next, st.doc.MountedAccounts) {
			return
		}
		st.doc.MountedAccounts = next
		m.persist(st)
		m.emit(Event{Kind: EventMountsChanged})
	})
	return gone, nil
}

// Forget implements mount.Tracker.
func (m *Manager) Forget(label string) error {
	m.do(func(st *state) {
		if _, ok := st.doc.MountedAccounts[label]; !ok {
			return
		}
		delete(st.doc.MountedAccounts, label)
		m.persist(st)
		m.emit(Event{Kind: EventMountsChanged, Label: label})
	})
	return nil
}

// Mounted implements mount.Tracker.
func (m *Manager) Mounted() map[string]string {
	out, _ := query(m, func(st *state) map[string]string { return maps.Clone(st.doc.MountedAccounts) })
	return out
}
