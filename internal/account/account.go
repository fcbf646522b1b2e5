// Package account holds the account model and the pure policies that act on
// it: validation, reconciliation with externally discovered accounts and the
// soft-delete ledger. Nothing here touches disk.
package account

import (
	"sort"
	"strings"
)

// Account is one Google Drive account. The JSON names match the persisted
// configuration document.
type Account struct {
	ClientID string `json:"client_id"`
	// ClientSecret is ciphertext once the account has passed through the
	// encryption store; legacy documents may still hold plaintext.
	ClientSecret       string `json:"client_secret"`
	Configured         bool   `json:"configured"`
	ExternallyDetected bool   `json:"externally_detected"`
	Automount          bool   `json:"automount"`
	MountPoint         string `json:"mount_point,omitempty"`
	Email              string `json:"email,omitempty"`
	RedirectURI        string `json:"redirect_url,omitempty"`
	// Blacklist is only ever set on entries of the deleted set.
	Blacklist bool `json:"blacklist,omitempty"`
}

// Set maps labels to accounts.
type Set map[string]Account

// Clone returns a shallow copy; Account has only value fields so this is a
// full copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Labels returns the keys in lexical order.
func (s Set) Labels() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NormalizeClientID is the comparison form used for client_id uniqueness.
func NormalizeClientID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// FindByClientID returns the label of the first account in s whose client_id
// matches id, ignoring case and surrounding space.
func FindByClientID(s Set, id string) (string, bool) {
	want := NormalizeClientID(id)
	if want == "" {
		return "", false
	}
	for _, label := range s.Labels() {
		if NormalizeClientID(s[label].ClientID) == want {
			return label, true
		}
	}
	return "", false
}

// FindByEmail returns the label of an account other than except whose email
// equals email.
func FindByEmail(s Set, email, except string) (string, bool) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", false
	}
	for _, label := range s.Labels() {
		if label == except {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(s[label].Email), email) {
			return label, true
		}
	}
	return "", false
}

// IsBlacklisted reports whether label sits in the deleted set with the
// blacklist flag.
func IsBlacklisted(deleted Set, label string) bool {
	a, ok := deleted[label]
	return ok && a.Blacklist
}
