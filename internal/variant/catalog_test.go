package variant

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r, ok := c.Lookup("blitz")
	if !ok {
		t.Fatalf("blitz missing from defaults")
	}
	if r.Time != 180 || r.Increment != 2 {
		t.Fatalf("blitz defaults wrong: %+v", r)
	}
	if _, ok := c.Lookup("hyperbullet"); ok {
		t.Fatalf("unknown variant resolved")
	}
}

func TestLookupNormalizesName(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := c.Lookup("  Blitz "); !ok {
		t.Fatalf("lookup should trim and lowercase")
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := "variants:\n  blitz:\n    time: 300\n    increment: 3\n  custom:\n    time: 90\n    increment: 1\n"
	if err := os.WriteFile(filepath.Join(dir, "10-local.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r, _ := c.Lookup("blitz"); r.Time != 300 || r.Increment != 3 {
		t.Fatalf("override not applied: %+v", r)
	}
	if r, ok := c.Lookup("custom"); !ok || r.Time != 90 {
		t.Fatalf("new variant not added: %+v ok=%v", r, ok)
	}
	// untouched defaults survive
	if _, ok := c.Lookup("rapid"); !ok {
		t.Fatalf("defaults lost after override")
	}
}

func TestRejectsInvalidRules(t *testing.T) {
	dir := t.TempDir()
	bad := "variants:\n  broken:\n    time: 0\n    increment: 1\n"
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(bad), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("non-positive time accepted")
	}
}
