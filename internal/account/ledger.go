package account

import (
	"fmt"

	"github.com/oukeidos/gdmount/internal/apperrors"
)

// Delete moves label from active into deleted with the blacklist flag set.
// New sets are returned; the inputs are left untouched.
func Delete(active, deleted Set, label string) (Set, Set, error) {
	a, ok := active[label]
	if !ok {
		return nil, nil, apperrors.Validation(CodeNotFound, fmt.Sprintf("Account %q not found.", label))
	}
	nextActive := active.Clone()
	nextDeleted := deleted.Clone()
	delete(nextActive, label)
	a.Blacklist = true
	nextDeleted[label] = a
	return nextActive, nextDeleted, nil
}

// Restore moves label from deleted back into active as a non-external
// account with the given configured state. It fails with a conflict when an
// active account shares the client_id or the label.
func Restore(active, deleted Set, label string, configured bool) (Set, Set, error) {
	a, ok := deleted[label]
	if !ok {
		return nil, nil, apperrors.Validation(CodeNotFound, fmt.Sprintf("Deleted account %q not found.", label))
	}
	if _, ok := active[label]; ok {
		return nil, nil, apperrors.Conflict(CodeDuplicateLabel, "An active account already uses this label.")
	}
	if other, ok := FindByClientID(active, a.ClientID); ok {
		return nil, nil, apperrors.Conflict(CodeDuplicateClientID,
			fmt.Sprintf("An active account (%s) already uses the same Client ID.", other))
	}

	a.Blacklist = false
	a.ExternallyDetected = false
	a.Configured = configured
	nextActive := active.Clone()
	nextDeleted := deleted.Clone()
	nextActive[label] = a
	delete(nextDeleted, label)
	return nextActive, nextDeleted, nil
}

// Purge removes label from the deleted set for good.
func Purge(deleted Set, label string) (Set, error) {
	if _, ok := deleted[label]; !ok {
		return nil, apperrors.Validation(CodeNotFound, fmt.Sprintf("Deleted account %q not found.", label))
	}
	next := deleted.Clone()
	delete(next, label)
	return next, nil
}
