package main

import (
	"fmt"

	"github.com/oukeidos/gdmount/internal/account"
	"github.com/oukeidos/gdmount/internal/display"
	"github.com/oukeidos/gdmount/internal/i18n"
	"github.com/oukeidos/gdmount/internal/manager"
)

const (
	labelWidth    = 20
	clientIDWidth = 28
)

type accountStatus int

const (
	statusUnconfigured accountStatus = iota
	statusConfigured
	statusMounted
)

func statusOf(a account.Account, mounted bool) accountStatus {
	switch {
	case mounted:
		return statusMounted
	case a.Configured:
		return statusConfigured
	default:
		return statusUnconfigured
	}
}

func (s accountStatus) text(loc *i18n.Localizer) string {
	switch s {
	case statusMounted:
		return loc.T("mounted")
	case statusConfigured:
		return loc.T("configured")
	default:
		return loc.T("unconfigured")
	}
}

// accountLine is the list row of an active account.
func accountLine(loc *i18n.Localizer, label string, a account.Account, mountPoint string) string {
	st := statusOf(a, mountPoint != "")
	name := display.Truncate(label, labelWidth)
	if a.ExternallyDetected {
		name += " *"
	}
	line := fmt.Sprintf("%s  [%s]", name, st.text(loc))
	if a.Email != "" {
		line += "  " + a.Email
	}
	if mountPoint != "" {
		line += "  → " + mountPoint
	}
	return line
}

// deletedLine is the list row of a deleted account.
func deletedLine(label string, a account.Account) string {
	line := display.Truncate(label, labelWidth) + "  " + display.Middle(a.ClientID, clientIDWidth)
	if a.Email != "" {
		line += "  " + a.Email
	}
	return line
}

// actions says which account buttons apply to the selection.
type actions struct {
	mount, unmount, reauth, remove, automount, mountPoint bool
}

func actionsFor(a account.Account, ok, mounted bool) actions {
	if !ok {
		return actions{}
	}
	return actions{
		mount:      a.Configured && !mounted,
		unmount:    mounted,
		reauth:     !mounted,
		remove:     !mounted,
		automount:  true,
		mountPoint: !mounted,
	}
}

type cleanupQuestion int

const (
	askToolConfig cleanupQuestion = iota
	askMountFolder
)

// cleanupQuestions lists the confirmations to show for plan, in order. The
// mount folder is only offered while ask_before_delete is on.
func cleanupQuestions(plan manager.DeletePlan) []cleanupQuestion {
	var qs []cleanupQuestion
	if plan.ToolConfigDir != "" {
		qs = append(qs, askToolConfig)
	}
	if plan.MountPoint != "" && plan.AskBeforeDelete {
		qs = append(qs, askMountFolder)
	}
	return qs
}

var languageNames = map[string]string{
	"es": "Español",
	"en": "English",
}

func languageOptions() []string {
	var out []string
	for _, code := range i18n.Supported() {
		out = append(out, languageNames[code])
	}
	return out
}

func languageCode(name string) string {
	for code, n := range languageNames {
		if n == name {
			return code
		}
	}
	return ""
}

func externalUnmountNotice(loc *i18n.Localizer, ev manager.Event) string {
	return loc.T("%s was unmounted from %s outside the application.", ev.Label, ev.MountPoint)
}

func selectedIndex(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}
