package prompt

import (
	"bytes"
	"errors"
	"testing"
)

func TestConfirm_NonInteractive(t *testing.T) {
	c := &Confirmer{
		In:            bytes.NewBufferString("y\n"),
		IsInteractive: func() bool { return false },
	}
	ok, err := c.Confirm("Delete account work?", false)
	if !errors.Is(err, ErrNonInteractive) {
		t.Fatalf("expected ErrNonInteractive, got ok=%v err=%v", ok, err)
	}
}

func TestConfirm_AssumeYes(t *testing.T) {
	c := &Confirmer{
		In:            bytes.NewBufferString("n\n"),
		IsInteractive: func() bool { return false },
	}
	ok, err := c.Confirm("Delete account work?", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true for assumed yes")
	}
}

func TestConfirm_Interactive(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"sí\n", true},
		{"n\n", false},
		{"\n", false},
		{"y", true},
		{"", false},
	}
	for _, tc := range tests {
		var out bytes.Buffer
		c := &Confirmer{
			In:            bytes.NewBufferString(tc.input),
			Out:           &out,
			IsInteractive: func() bool { return true },
		}
		ok, err := c.Confirm("Remove mount folder?", false)
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", tc.input, err)
		}
		if ok != tc.want {
			t.Errorf("input %q: ok = %v, want %v", tc.input, ok, tc.want)
		}
		if out.String() != "Remove mount folder? (y/n): " {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestConfirm_SequentialQuestionsShareInput(t *testing.T) {
	c := &Confirmer{
		In:            bytes.NewBufferString("y\nn\n"),
		IsInteractive: func() bool { return true },
	}
	first, _ := c.Confirm("one", false)
	second, _ := c.Confirm("two", false)
	if !first || second {
		t.Fatalf("answers = %v, %v; want true, false", first, second)
	}
}

func TestSecret(t *testing.T) {
	t.Run("terminal", func(t *testing.T) {
		c := &Confirmer{
			In:            bytes.NewBufferString("ignored\n"),
			IsInteractive: func() bool { return true },
			ReadPassword:  func() ([]byte, error) { return []byte(" GOCSPX-secret \n"), nil },
		}
		got, err := c.Secret("Client Secret")
		if err != nil || got != "GOCSPX-secret" {
			t.Fatalf("Secret() = (%q, %v)", got, err)
		}
	})
	t.Run("piped", func(t *testing.T) {
		c := &Confirmer{
			In:            bytes.NewBufferString("piped-value\n"),
			IsInteractive: func() bool { return false },
		}
		got, err := c.Secret("Client Secret")
		if err != nil || got != "piped-value" {
			t.Fatalf("Secret() = (%q, %v)", got, err)
		}
	})
}
