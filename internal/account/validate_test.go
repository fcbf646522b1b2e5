package account

import (
	"strings"
	"testing"

	"github.com/oukeidos/gdmount/internal/apperrors"
)

const (
	validClientID = "123456-abc123XYZ.apps.googleusercontent.com"
	validSecret   = "abcdefghijklmnopqrstuvwx"
)

func TestValidate(t *testing.T) {
	active := Set{
		"personal": {ClientID: "999-zzz.apps.googleusercontent.com", ClientSecret: "enc"},
	}
	deleted := Set{
		"old": {ClientID: "777-old.apps.googleusercontent.com", Blacklist: true},
	}

	tests := []struct {
		name  string
		draft Draft
		code  string
	}{
		{"valid", Draft{"work", validClientID, validSecret}, ""},
		{"valid with surrounding space", Draft{"  work ", " " + validClientID + " ", validSecret + "\n"}, ""},
		{"empty label", Draft{"   ", validClientID, validSecret}, CodeEmptyLabel},
		{"label with slash", Draft{"../etc", validClientID, validSecret}, CodeInvalidLabel},
		{"duplicate label", Draft{"personal", validClientID, validSecret}, CodeDuplicateLabel},
		{"deleted label", Draft{"old", validClientID, validSecret}, CodeLabelDeleted},
		{"missing id", Draft{"work", "", validSecret}, CodeMissingCredentials},
		{"missing secret", Draft{"work", validClientID, ""}, CodeMissingCredentials},
		{"bad id format", Draft{"work", "abc-123.apps.googleusercontent.com", validSecret}, CodeInvalidClientID},
		{"bad id suffix", Draft{"work", "123-abc.example.com", validSecret}, CodeInvalidClientID},
		{"short secret", Draft{"work", validClientID, validSecret[:23]}, CodeInvalidClientSecret},
		{"secret bad alphabet", Draft{"work", validClientID, strings.Repeat("a", 23) + "!"}, CodeInvalidClientSecret},
		{"duplicate client id ignoring case", Draft{"work", "999-ZZZ.apps.googleusercontent.com", validSecret}, CodeDuplicateClientID},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.draft, active, deleted)
			if tc.code == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want code %q", tc.code)
			}
			if kind, _ := apperrors.KindOf(err); kind != apperrors.KindValidation {
				t.Fatalf("kind = %q, want validation", kind)
			}
			if got := apperrors.CodeOf(err); got != tc.code {
				t.Fatalf("code = %q, want %q", got, tc.code)
			}
		})
	}
}

func TestValidate_SecondAccountSameClientID(t *testing.T) {
	active := Set{}
	if err := Validate(Draft{"work", validClientID, validSecret}, active, nil); err != nil {
		t.Fatalf("first account: %v", err)
	}
	active["work"] = Account{ClientID: validClientID, ClientSecret: validSecret, Configured: true}

	err := Validate(Draft{"work2", validClientID, validSecret}, active, nil)
	if apperrors.CodeOf(err) != CodeDuplicateClientID {
		t.Fatalf("second account error = %v, want duplicate client id", err)
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	active := Set{"a": {ClientID: validClientID}}
	before := len(active)
	_ = Validate(Draft{"b", validClientID, validSecret}, active, nil)
	if len(active) != before {
		t.Fatalf("Validate mutated the active set")
	}
}
