package account

// Discovered is an account found in the mount tool's per-label config.
type Discovered struct {
	Label        string
	ClientID     string
	ClientSecret string
	MountPoint   string
}

// Reconcile merges internal accounts with discovered ones and returns the new
// active set. Inputs are not modified.
//
// A discovered label that already exists internally keeps the internal
// configured/externally_detected flags, email and automount/mount_point
// overrides; its credentials come from disk unless the client_id is
// unchanged, in which case the stored (encrypted) secret is kept. Blacklisted
// labels never survive, whatever their source.
func Reconcile(internal Set, discovered []Discovered, deleted Set) Set {
	merged := internal.Clone()

	type seenKey struct{ label, clientID string }
	seen := make(map[seenKey]bool, len(discovered))

	for _, d := range discovered {
		if d.Label == "" || d.ClientID == "" {
			continue
		}
		k := seenKey{d.Label, d.ClientID}
		if seen[k] {
			continue
		}
		seen[k] = true
		if IsBlacklisted(deleted, d.Label) {
			continue
		}

		candidate := Account{
			ClientID:           d.ClientID,
			ClientSecret:       d.ClientSecret,
			Configured:         true,
			ExternallyDetected: true,
			MountPoint:         d.MountPoint,
		}
		if existing, ok := merged[d.Label]; ok {
			candidate = mergeExisting(existing, candidate)
		}
		merged[d.Label] = candidate
	}

	for label := range merged {
		if IsBlacklisted(deleted, label) {
			delete(merged, label)
		}
	}
	return merged
}

func mergeExisting(internal, external Account) Account {
	out := external
	out.ExternallyDetected = internal.ExternallyDetected
	out.Configured = internal.Configured
	out.Email = internal.Email
	out.RedirectURI = internal.RedirectURI
	if internal.Automount {
		out.Automount = true
	}
	if internal.MountPoint != "" {
		out.MountPoint = internal.MountPoint
	}
	if NormalizeClientID(internal.ClientID) == NormalizeClientID(external.ClientID) && internal.ClientSecret != "" {
		out.ClientID = internal.ClientID
		out.ClientSecret = internal.ClientSecret
	}
	out.Blacklist = false
	return out
}
