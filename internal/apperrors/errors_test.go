package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestPublicMessage_UsesSafeMessage(t *testing.T) {
	sentinel := errors.New("GOCSPX-should-not-leak")
	err := New(KindExternalTool, CodeFailed, "mount failed", sentinel)
	if got := PublicMessage(err); got != "mount failed" {
		t.Fatalf("PublicMessage() = %q, want %q", got, "mount failed")
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped cause to be retained for internal matching")
	}
}

func TestKindAndCode(t *testing.T) {
	err := fmt.Errorf("setup: %w", OAuth(CodeTimeout, nil))
	kind, ok := KindOf(err)
	if !ok || kind != KindOAuth {
		t.Fatalf("KindOf() = (%q, %v), want (%q, true)", kind, ok, KindOAuth)
	}
	if got := CodeOf(err); got != CodeTimeout {
		t.Fatalf("CodeOf() = %q, want %q", got, CodeTimeout)
	}
	if !IsRecoverable(err) {
		t.Fatalf("expected oauth timeout to be recoverable")
	}
}

func TestIsMatchesTemplate(t *testing.T) {
	err := fmt.Errorf("wrap: %w", OAuth(CodeUserCancel, nil))
	if !errors.Is(err, &Error{Kind: KindOAuth, Code: CodeUserCancel}) {
		t.Fatalf("expected errors.Is to match kind and code")
	}
	if errors.Is(err, &Error{Kind: KindOAuth, Code: CodeTimeout}) {
		t.Fatalf("unexpected match on a different code")
	}
	if !errors.Is(err, &Error{Kind: KindOAuth}) {
		t.Fatalf("expected a kind-only template to match")
	}
}

func TestDefaultMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"busy", ExternalTool(CodeBusy, "", nil), "The mount point is in use. Close any file, terminal or window using it."},
		{"decryption", Decryption(errors.New("bad tag")), "Could not decrypt the client secret. Please reauthorize the account."},
		{"duplicate email", OAuth(CodeDuplicateEmail, nil), "Another account is already configured with this email."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PublicMessage(tc.err); got != tc.want {
				t.Fatalf("PublicMessage() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPublicMessage_NonAppError(t *testing.T) {
	err := errors.New("plain")
	if got := PublicMessage(err); got != "plain" {
		t.Fatalf("PublicMessage() = %q, want %q", got, "plain")
	}
	if IsRecoverable(err) {
		t.Fatalf("plain errors are not recoverable")
	}
}
