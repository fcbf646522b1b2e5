package i18n

import (
	"errors"
	"strings"
	"testing"

	"github.com/oukeidos/gdmount/internal/account"
	"github.com/oukeidos/gdmount/internal/apperrors"
)

func TestNew_LanguageSelection(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"es", "es"},
		{"en", "en"},
		{"en-GB", "en"},
		{"es-MX", "es"},
		{"", "es"},
		{"xx-invalid", "es"},
		{"de", "es"},
	}
	for _, tc := range tests {
		if got := New(tc.in).Code(); got != tc.want {
			t.Errorf("New(%q).Code() = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestT(t *testing.T) {
	es := New("es")
	if got := es.T("Account not found."); got != "Cuenta no encontrada." {
		t.Fatalf("es.T() = %q", got)
	}
	en := New("en")
	if got := en.T("Account not found."); got != "Account not found." {
		t.Fatalf("en.T() = %q", got)
	}
	if got := es.T("untranslated %s", "key"); got != "untranslated key" {
		t.Fatalf("missing key should fall back to English, got %q", got)
	}
	var nilLoc *Localizer
	if got := nilLoc.T("Page not found"); got != "Page not found" {
		t.Fatalf("nil localizer T() = %q", got)
	}
}

func TestCatalogComplete(t *testing.T) {
	seen := map[string]bool{}
	for _, e := range entries {
		if e.en == "" || e.es == "" {
			t.Fatalf("empty catalog entry %+v", e)
		}
		if seen[e.en] {
			t.Fatalf("duplicate catalog key %q", e.en)
		}
		seen[e.en] = true
	}
	for code, key := range codeMessages {
		if !seen[key] {
			t.Errorf("code %q maps to untranslated key %q", code, key)
		}
	}
	for kind, key := range kindMessages {
		if !seen[key] {
			t.Errorf("kind %q maps to untranslated key %q", kind, key)
		}
	}
}

func TestError(t *testing.T) {
	es := New("es")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"oauth timeout", apperrors.OAuth(apperrors.CodeTimeout, nil), "No se recibió el código de autorización a tiempo."},
		{"tool timeout", apperrors.ExternalTool(apperrors.CodeTimeout, "", nil), "google-drive-ocamlfuse no respondió a tiempo."},
		{"tool failure keeps raw text", apperrors.ExternalTool(apperrors.CodeFailed, "fuse: bad mount point", nil), "fuse: bad mount point"},
		{"validation", account.ValidateLabel("", nil, nil), "La etiqueta no puede estar vacía. Introduce un nombre único para la cuenta."},
		{"conflict", apperrors.Conflict(account.CodeDuplicateClientID, ""), "Ya hay una cuenta activa con el mismo Client ID o etiqueta."},
		{"decryption", apperrors.Decryption(errors.New("tag")), "No se pudo descifrar el client secret. Vuelve a autorizar la cuenta."},
		{"plain", errors.New("boom"), "boom"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := es.Error(tc.err); got != tc.want {
				t.Fatalf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
	if New("en").Error(nil) != "" {
		t.Fatalf("nil error should render empty")
	}
	if !strings.Contains(New("en").Error(apperrors.ExternalTool(apperrors.CodeBusy, "", nil)), "in use") {
		t.Fatalf("busy message not rendered")
	}
}
