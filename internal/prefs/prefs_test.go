package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingPrefsDegradeToDefaults(t *testing.T) {
	p := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if p.Theme != defaultTheme || p.PageSize != defaultPageSize {
		t.Fatalf("prefs = %#v, want defaults", p)
	}
}

func TestLoad_InvalidPageSizeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte(`
theme = "Parchment"
page_size = 137
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load(path)
	if p.Theme != "Parchment" {
		t.Fatalf("Theme = %q, want Parchment", p.Theme)
	}
	if p.PageSize != defaultPageSize {
		t.Fatalf("PageSize = %d, want fallback %d", p.PageSize, defaultPageSize)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "prefs.toml")

	if err := Save(path, Prefs{Theme: "Parchment", PageSize: 15}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	p := Load(path)
	if p.Theme != "Parchment" || p.PageSize != 15 {
		t.Fatalf("loaded prefs = %#v, want saved values", p)
	}
}

func TestValidPageSize(t *testing.T) {
	for _, size := range pageSizes {
		if !ValidPageSize(size) {
			t.Fatalf("ValidPageSize(%d) = false", size)
		}
	}
	if ValidPageSize(7) {
		t.Fatal("ValidPageSize(7) = true")
	}
}
