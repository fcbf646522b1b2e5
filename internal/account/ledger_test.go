package account

import (
	"testing"

	"github.com/oukeidos/gdmount/internal/apperrors"
)

func assertDisjoint(t *testing.T, active, deleted Set) {
	t.Helper()
	for label := range active {
		if _, ok := deleted[label]; ok {
			t.Fatalf("label %q present in both sets", label)
		}
	}
}

func TestDeleteRestoreCycle(t *testing.T) {
	active := Set{"work": {ClientID: validClientID, ClientSecret: "enc", Configured: true, ExternallyDetected: true, Email: "w@example.com"}}
	deleted := Set{}

	a2, d2, err := Delete(active, deleted, "work")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := a2["work"]; ok {
		t.Fatalf("account still active after delete")
	}
	if !d2["work"].Blacklist {
		t.Fatalf("deleted entry not blacklisted: %+v", d2["work"])
	}
	if _, ok := active["work"]; !ok {
		t.Fatalf("Delete mutated input")
	}
	assertDisjoint(t, a2, d2)

	a3, d3, err := Restore(a2, d2, "work", false)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	r := a3["work"]
	if r.Blacklist || r.Configured || r.ExternallyDetected {
		t.Fatalf("restored flags wrong: %+v", r)
	}
	if r.Email != "w@example.com" || r.ClientSecret != "enc" {
		t.Fatalf("restored entry lost data: %+v", r)
	}
	if _, ok := d3["work"]; ok {
		t.Fatalf("entry still in deleted set")
	}
	assertDisjoint(t, a3, d3)
}

func TestRestore_ClientIDConflict(t *testing.T) {
	active := Set{"other": {ClientID: " " + validClientID + " "}}
	deleted := Set{"work": {ClientID: "123456-ABC123xyz.apps.googleusercontent.com", Blacklist: true}}

	_, _, err := Restore(active, deleted, "work", true)
	if kind, _ := apperrors.KindOf(err); kind != apperrors.KindConflict {
		t.Fatalf("Restore() error = %v, want conflict", err)
	}
	if apperrors.CodeOf(err) != CodeDuplicateClientID {
		t.Fatalf("code = %q", apperrors.CodeOf(err))
	}
}

func TestDelete_NotFound(t *testing.T) {
	if _, _, err := Delete(Set{}, Set{}, "ghost"); apperrors.CodeOf(err) != CodeNotFound {
		t.Fatalf("Delete() error = %v, want not_found", err)
	}
}

func TestPurge(t *testing.T) {
	deleted := Set{"work": {Blacklist: true}, "old": {Blacklist: true}}
	next, err := Purge(deleted, "work")
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if _, ok := next["work"]; ok || len(next) != 1 {
		t.Fatalf("Purge() = %+v", next)
	}
	if _, err := Purge(next, "work"); err == nil {
		t.Fatalf("expected second purge to fail")
	}
}

func TestFindByEmail(t *testing.T) {
	s := Set{"a": {Email: "Me@Example.com"}, "b": {}}
	if label, ok := FindByEmail(s, "me@example.com", ""); !ok || label != "a" {
		t.Fatalf("FindByEmail() = (%q, %v)", label, ok)
	}
	if _, ok := FindByEmail(s, "me@example.com", "a"); ok {
		t.Fatalf("FindByEmail should skip the excepted label")
	}
	if _, ok := FindByEmail(s, "", ""); ok {
		t.Fatalf("empty email must never match")
	}
}
