package mount

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/oukeidos/gdmount/internal/account"
)

// UnknownLabel names a live tool mount that matches no account.
const UnknownLabel = "unknown"

// Gone is a tracked mount that is no longer in the live table.
type Gone struct {
	Label      string
	MountPoint string
}

// Resolver maps a mount point to a label using the tool's own config.
type Resolver func(mountPoint string) (string, bool)

// Reconcile returns the mounted map implied by the live table. Tracked
// entries whose mount point is still live are kept; the rest are returned as
// gone. Live tool mounts not yet tracked are labelled by, in order: an
// account whose mount_point matches, resolve, the device's "label@" prefix,
// then UnknownLabel (suffixed to stay unique). Labels blacklisted in deleted
// are never adopted; their mounts become UnknownLabel.
func Reconcile(tracked map[string]string, live []Entry, known, deleted account.Set, resolve Resolver) (map[string]string, []Gone) {
	livePoints := make(map[string]bool, len(live))
	for _, e := range live {
		livePoints[filepath.Clean(e.MountPoint)] = true
	}

	next := make(map[string]string, len(tracked))
	trackedPoints := make(map[string]bool, len(tracked))
	var gone []Gone
	for label, mp := range tracked {
		clean := filepath.Clean(mp)
		if livePoints[clean] {
			next[label] = mp
			trackedPoints[clean] = true
			continue
		}
		gone = append(gone, Gone{Label: label, MountPoint: mp})
	}
	sort.Slice(gone, func(i, j int) bool { return gone[i].Label < gone[j].Label })

	byMountPoint := make(map[string]string, len(known))
	for _, label := range known.Labels() {
		if mp := known[label].MountPoint; mp != "" {
			if _, taken := byMountPoint[filepath.Clean(mp)]; !taken {
				byMountPoint[filepath.Clean(mp)] = label
			}
		}
	}

	for _, e := range live {
		if !e.IsTool() {
			continue
		}
		mp := filepath.Clean(e.MountPoint)
		if trackedPoints[mp] {
			continue
		}
		label := labelFor(e, mp, byMountPoint, resolve)
		if account.IsBlacklisted(deleted, label) {
			label = UnknownLabel
		}
		if _, clash := next[label]; clash || label == "" {
			label = uniqueUnknown(next)
		}
		next[label] = mp
		trackedPoints[mp] = true
	}
	return next, gone
}

func labelFor(e Entry, mp string, byMountPoint map[string]string, resolve Resolver) string {
	if label, ok := byMountPoint[mp]; ok {
		return label
	}
	if resolve != nil {
		if label, ok := resolve(mp); ok {
			return label
		}
	}
	if label, ok := e.DeviceLabel(); ok {
		return label
	}
	return UnknownLabel
}

func uniqueUnknown(m map[string]string) string {
	if _, ok := m[UnknownLabel]; !ok {
		return UnknownLabel
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", UnknownLabel, i)
		if _, ok := m[candidate]; !ok {
			return candidate
		}
	}
}
