package apperrors

import (
	"errors"
	"strings"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindOAuth        Kind = "oauth"
	KindExternalTool Kind = "external_tool"
	KindPersistence  Kind = "persistence"
	KindDecryption   Kind = "decryption"
	KindConflict     Kind = "conflict"
	KindFilesystem   Kind = "filesystem"
)

// OAuth failure codes. They are part of the user-facing contract and map
// one-to-one to messages in the presentation layer.
const (
	CodeServerError    = "server_error"
	CodeCancelled      = "cancelled"
	CodeUserCancel     = "user_cancel"
	CodeTimeout        = "timeout"
	CodeDuplicateEmail = "duplicate_email"
	CodeOAuthError     = "oauth_error"
)

// External tool failure codes.
const (
	CodeBusy         = "busy"
	CodeNotInstalled = "not_installed"
	CodeTokenInvalid = "token_invalid"
	CodeFailed       = "failed"
)

type Error struct {
	Kind Kind
	// Code narrows the kind (e.g. "timeout" for KindOAuth).
	Code string
	// SafeMessage is intended for user-facing output and logs.
	SafeMessage string
	// Cause keeps the original internal error for troubleshooting.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.SafeMessage); msg != "" {
		return msg
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	if e.Code != "" {
		return string(e.Kind) + ": " + e.Code
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another *Error by kind and code so callers can compare against
// templates such as OAuth(CodeTimeout, nil).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

func defaultSafeMessage(kind Kind, code string) string {
	switch kind {
	case KindValidation:
		return "Invalid account data."
	case KindOAuth:
		switch code {
		case CodeServerError:
			return "Could not start the local authorization server."
		case CodeCancelled, CodeUserCancel:
			return "Authorization cancelled."
		case CodeTimeout:
			return "The authorization code was not received in time."
		case CodeDuplicateEmail:
			return "Another account is already configured with this email."
		}
		return "Authorization failed."
	case KindExternalTool:
		switch code {
		case CodeBusy:
			return "The mount point is in use. Close any file, terminal or window using it."
		case CodeTimeout:
			return "The mount tool did not respond in time."
		case CodeNotInstalled:
			return "The mount tool is not installed."
		case CodeTokenInvalid:
			return "The OAuth token is invalid or expired. Please reauthorize the account."
		}
		return "The mount tool reported an error."
	case KindPersistence:
		return "Could not read or write the configuration."
	case KindDecryption:
		return "Could not decrypt the client secret. Please reauthorize the account."
	case KindConflict:
		return "The operation conflicts with an active account."
	case KindFilesystem:
		return "A file or directory could not be removed."
	default:
		return "Request failed."
	}
}

func New(kind Kind, code, safeMessage string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = defaultSafeMessage(kind, code)
	}
	return &Error{
		Kind:        kind,
		Code:        code,
		SafeMessage: msg,
		Cause:       cause,
	}
}

func Validation(code, msg string) error {
	return New(KindValidation, code, msg, nil)
}

func OAuth(code string, err error) error {
	return New(KindOAuth, code, "", err)
}

func ExternalTool(code, msg string, err error) error {
	return New(KindExternalTool, code, msg, err)
}

func Persistence(err error) error {
	return New(KindPersistence, "", "", err)
}

func Decryption(err error) error {
	return New(KindDecryption, "", "", err)
}

func Conflict(code, msg string) error {
	return New(KindConflict, code, msg, nil)
}

func Filesystem(msg string, err error) error {
	return New(KindFilesystem, "", msg, err)
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

// CodeOf returns the narrowing code of the first *Error in the chain.
func CodeOf(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Code
}

func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

// IsRecoverable reports whether the user may simply retry the operation.
func IsRecoverable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	// OAuth outcomes are always retryable; a busy mount point usually frees up.
	return e.Kind == KindOAuth || (e.Kind == KindExternalTool && e.Code == CodeBusy)
}
