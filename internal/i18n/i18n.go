// Package i18n provides a localization handle built on x/text message
// catalogs. Message keys are the English text; Spanish is the default UI
// language.
package i18n

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/oukeidos/gdmount/internal/account"
	"github.com/oukeidos/gdmount/internal/apperrors"
)

var supported = []language.Tag{language.Spanish, language.English}

var cat = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, e := range entries {
		_ = b.SetString(language.English, e.en, e.en)
		_ = b.SetString(language.Spanish, e.en, e.es)
	}
	return b
}

// Localizer renders messages for one language. It is immutable; switching
// language means building a new one.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Localizer for lang ("es", "en", or any BCP 47 tag). Unknown
// languages fall back to Spanish.
func New(lang string) *Localizer {
	tag := language.Spanish
	if t, err := language.Parse(strings.TrimSpace(lang)); err == nil {
		matcher := language.NewMatcher(supported)
		if _, idx, conf := matcher.Match(t); conf != language.No {
			tag = supported[idx]
		}
	}
	return &Localizer{tag: tag, printer: message.NewPrinter(tag, message.Catalog(cat))}
}

// Code is the short language code, "es" or "en".
func (l *Localizer) Code() string {
	if l == nil {
		return "en"
	}
	base, _ := l.tag.Base()
	return base.String()
}

// T formats key with args in the localizer's language.
func (l *Localizer) T(key string, args ...any) string {
	if l == nil {
		return message.NewPrinter(language.English).Sprintf(key, args...)
	}
	return l.printer.Sprintf(key, args...)
}

// Supported lists the selectable language codes.
func Supported() []string {
	return []string{"es", "en"}
}

// codeMessages maps error codes to message keys.
var codeMessages = map[string]string{
	apperrors.CodeServerError:       "Could not start the OAuth server.",
	apperrors.CodeCancelled:         "Authorization cancelled by the user.",
	apperrors.CodeUserCancel:        "Authorization cancelled by the user.",
	apperrors.CodeTimeout:           "The authorization code was not received in time.",
	apperrors.CodeDuplicateEmail:    "An account is already configured with this email.",
	apperrors.CodeOAuthError:        "Could not complete the OAuth authorization.",
	apperrors.CodeBusy:              "The mount folder is in use. Make sure no file, terminal or window is using it.",
	apperrors.CodeNotInstalled:      "google-drive-ocamlfuse is not installed.",
	apperrors.CodeTokenInvalid:      "The OAuth token is invalid or has expired. Reauthorize the account.",
	account.CodeEmptyLabel:          "The label cannot be empty. Enter a unique name for the account.",
	account.CodeInvalidLabel:        "The label cannot contain path separators.",
	account.CodeDuplicateLabel:      "An account with this label already exists. Use a different one.",
	account.CodeLabelDeleted:        "This label belongs to a deleted account. Restore it or delete it permanently first.",
	account.CodeMissingCredentials:  "Client ID and Client Secret are required.",
	account.CodeInvalidClientID:     "The Client ID must look like 1234567890-abcdefghijklmnopqrstuvwxyz.apps.googleusercontent.com",
	account.CodeInvalidClientSecret: "The Client Secret must be an alphanumeric string of at least 24 characters.",
	account.CodeDuplicateClientID:   "An account with this Client ID already exists. Create separate credentials for each Google Drive.",
	account.CodeNotFound:            "Account not found.",
	account.CodeMounted:             "The account is mounted. Unmount it before continuing.",
	account.CodeNotConfigured:       "The account is not configured. Reauthorize it first.",
	account.CodeInvalidMountPoint:   "The mount point must be an absolute path.",
}

var kindMessages = map[apperrors.Kind]string{
	apperrors.KindDecryption:  "Could not decrypt the client secret. Reauthorize the account.",
	apperrors.KindPersistence: "Could not save the configuration.",
	apperrors.KindFilesystem:  "Some files could not be removed.",
}

// Error renders err for the user. Known codes get a translated message;
// tool failures keep the tool's own text.
func (l *Localizer) Error(err error) string {
	if err == nil {
		return ""
	}
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	switch {
	case appErr.Kind == apperrors.KindConflict:
		return l.T("An active account already uses the same Client ID or label.")
	case appErr.Kind == apperrors.KindExternalTool && appErr.Code == apperrors.CodeTimeout:
		return l.T("google-drive-ocamlfuse did not respond in time.")
	case appErr.Kind == apperrors.KindExternalTool && appErr.Code == apperrors.CodeFailed:
		return appErr.Error()
	}
	if key, ok := codeMessages[appErr.Code]; ok {
		return l.T(key)
	}
	if key, ok := kindMessages[appErr.Kind]; ok {
		return l.T(key)
	}
	return appErr.Error()
}
