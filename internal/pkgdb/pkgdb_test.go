package pkgdb

import (
	"testing"

	"github.com/ralt/xpkg/internal/models"
)

func TestStateDefaultsToNotInstalled(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if st := db.State("never"); st != models.StateNotInstalled {
		t.Errorf("State = %v, want not-installed", st)
	}
	if db.Get("never") != nil {
		t.Error("Get returned a record for an unknown package")
	}
}

func TestSetStatePersists(t *testing.T) {
	root := t.TempDir()

	db, err := Open(root)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.SetState("tool", "1.0", "tool-1.0", models.StateHalfUnpacked); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if err := db.SetState("tool", "1.0", "tool-1.0", models.StateUnpacked); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}

	// Reopen to prove durability.
	db2, err := Open(root)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if st := db2.State("tool"); st != models.StateUnpacked {
		t.Errorf("State after reopen = %v, want unpacked", st)
	}
	e := db2.Get("tool")
	if e == nil || e.Pkgver != "tool-1.0" || e.Version != "1.0" {
		t.Errorf("entry after reopen = %+v", e)
	}
}

func TestSetStateRejectsUnknownState(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.SetState("tool", "1.0", "tool-1.0", models.InstallState("exploded")); err == nil {
		t.Fatal("SetState accepted an unknown state")
	}
}

func TestRemove(t *testing.T) {
	root := t.TempDir()

	db, err := Open(root)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.SetState("tool", "1.0", "tool-1.0", models.StateInstalled); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if err := db.Remove("tool"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := db.Remove("tool"); err != nil {
		t.Fatalf("Remove of absent package failed: %v", err)
	}

	db2, err := Open(root)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if st := db2.State("tool"); st != models.StateNotInstalled {
		t.Errorf("State after remove = %v, want not-installed", st)
	}
}
