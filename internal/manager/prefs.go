package manager

import (
	"fmt"
	"slices"
	"strings"

	"github.com/oukeidos/gdmount/internal/apperrors"
	"github.com/oukeidos/gdmount/internal/i18n"
)

func (m *Manager) SetLanguage(lang string) error {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !slices.Contains(i18n.Supported(), lang) {
		return apperrors.Validation("", fmt.Sprintf("Unsupported language %q.", lang))
	}
	return m.setPreference(func(st *state) { st.doc.Language = lang })
}

func (m *Manager) SetAskBeforeDelete(ask bool) error {
	return m.setPreference(func(st *state) { st.doc.AskBeforeDelete = ask })
}

// SetAutostart writes or removes the login entry, then records the choice.
func (m *Manager) SetAutostart(enabled bool) error {
	if m.deps.Autostart != nil {
		if err := m.deps.Autostart.Set(enabled); err != nil {
			return apperrors.Filesystem("Could not update the autostart entry.", err)
		}
	}
	return m.setPreference(func(st *state) { st.doc.AutostartEnabled = enabled })
}

func (m *Manager) setPreference(fn func(st *state)) error {
	return m.run(func(st *state) error {
		fn(st)
		m.persist(st)
		m.emit(Event{Kind: EventPreferencesChanged})
		return nil
	})
}
