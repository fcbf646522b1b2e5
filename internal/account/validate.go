package account

import (
	"regexp"
	"strings"

	"github.com/oukeidos/gdmount/internal/apperrors"
)

// Validation codes.
const (
	CodeEmptyLabel          = "empty_label"
	CodeInvalidLabel        = "invalid_label"
	CodeDuplicateLabel      = "duplicate_label"
	CodeLabelDeleted        = "label_deleted"
	CodeMissingCredentials  = "missing_credentials"
	CodeInvalidClientID     = "invalid_client_id"
	CodeInvalidClientSecret = "invalid_client_secret"
	CodeDuplicateClientID   = "duplicate_client_id"
	CodeNotFound            = "not_found"
	CodeMounted             = "mounted"
	CodeNotConfigured       = "not_configured"
	CodeInvalidMountPoint   = "invalid_mount_point"
)

var (
	clientIDPattern     = regexp.MustCompile(`^[0-9]+-[0-9a-zA-Z]+\.apps\.googleusercontent\.com$`)
	clientSecretPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{24,}$`)
)

// Draft is the user input for a new account.
type Draft struct {
	Label        string
	ClientID     string
	ClientSecret string
}

// Normalized trims surrounding whitespace from every field.
func (d Draft) Normalized() Draft {
	return Draft{
		Label:        strings.TrimSpace(d.Label),
		ClientID:     strings.TrimSpace(d.ClientID),
		ClientSecret: strings.TrimSpace(d.ClientSecret),
	}
}

// ValidateLabel checks that label can name a new active account. Labels name
// directories under the tool's config dir, so path separators are refused.
func ValidateLabel(label string, active, deleted Set) error {
	label = strings.TrimSpace(label)
	switch {
	case label == "":
		return apperrors.Validation(CodeEmptyLabel, "The label cannot be empty. Enter a unique name for the account.")
	case label == "." || label == ".." || strings.ContainsAny(label, `/\`) || strings.ContainsRune(label, 0):
		return apperrors.Validation(CodeInvalidLabel, "The label cannot contain path separators.")
	}
	if _, ok := active[label]; ok {
		return apperrors.Validation(CodeDuplicateLabel, "An account with this label already exists. Use a different one.")
	}
	if IsBlacklisted(deleted, label) {
		return apperrors.Validation(CodeLabelDeleted, "This label belongs to a deleted account. Restore or permanently delete it first.")
	}
	return nil
}

// ValidateCredentials checks client_id and client_secret format and
// client_id uniqueness across active.
func ValidateCredentials(clientID, clientSecret string, active Set) error {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return apperrors.Validation(CodeMissingCredentials, "Client ID and Client Secret are required.")
	}
	if !clientIDPattern.MatchString(clientID) {
		return apperrors.Validation(CodeInvalidClientID,
			"The Client ID must look like 1234567890-abcdefghijklmnopqrstuvwxyz.apps.googleusercontent.com.")
	}
	if !clientSecretPattern.MatchString(clientSecret) {
		return apperrors.Validation(CodeInvalidClientSecret,
			"The Client Secret must be at least 24 letters, digits, hyphens or underscores.")
	}
	if _, ok := FindByClientID(active, clientID); ok {
		return apperrors.Validation(CodeDuplicateClientID,
			"An account with this Client ID already exists. Create separate credentials for each Google Drive.")
	}
	return nil
}

// Validate runs every check for a new account in order: label, presence,
// format, then uniqueness. No state is touched.
func Validate(d Draft, active, deleted Set) error {
	d = d.Normalized()
	if err := ValidateLabel(d.Label, active, deleted); err != nil {
		return err
	}
	return ValidateCredentials(d.ClientID, d.ClientSecret, active)
}
