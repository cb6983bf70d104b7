package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/barcut/internal/model"
)

func TestSaveAndLoadCustomProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")

	profiles := []model.Profile{
		{Designation: "HEA200", Family: "HEA", SurfacePerMeter: 1.136, SectionCm2: 53.8},
		{Designation: "IPE160", Family: "IPE", SurfacePerMeter: 0.623, SectionCm2: 20.1},
	}
	if err := SaveCustomProfiles(path, profiles); err != nil {
		t.Fatalf("SaveCustomProfiles failed: %v", err)
	}

	loaded, err := LoadCustomProfiles(path)
	if err != nil {
		t.Fatalf("LoadCustomProfiles failed: %v", err)
	}
	if len(loaded) != 2 || loaded[1].Designation != "IPE160" {
		t.Errorf("unexpected profiles %+v", loaded)
	}
}

func TestLoadCustomProfilesMissingFile(t *testing.T) {
	loaded, err := LoadCustomProfiles(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if loaded == nil || len(loaded) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", loaded)
	}
}

func TestLoadCustomProfilesRejectsUnnamed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	if err := os.WriteFile(path, []byte(`[{"family":"UPN"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCustomProfiles(path); err == nil {
		t.Fatal("expected error for profile without designation")
	}
}

func TestExportAndImportProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hea200.json")
	p := model.Profile{Designation: "HEA200", Family: "HEA", SurfacePerMeter: 1.136, SectionCm2: 53.8}

	if err := ExportProfile(path, p); err != nil {
		t.Fatalf("ExportProfile failed: %v", err)
	}
	got, err := ImportProfile(path)
	if err != nil {
		t.Fatalf("ImportProfile failed: %v", err)
	}
	if got != p {
		t.Errorf("expected %+v, got %+v", p, got)
	}
}

func TestImportProfileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ImportProfile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"designation":"X","section_cm2":-1}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportProfile(bad); err == nil {
		t.Error("expected error for negative section")
	}
}

func TestMergeProfiles(t *testing.T) {
	base := []model.Profile{
		{Designation: "UPN80", SectionCm2: 11},
		{Designation: "Cornière 40", SectionCm2: 6},
	}
	extra := []model.Profile{
		{Designation: "upn80", SectionCm2: 12},
		{Designation: "HEA200", SectionCm2: 53.8},
	}

	kept := MergeProfiles(base, extra, false)
	if len(kept) != 3 || kept[0].SectionCm2 != 11 {
		t.Errorf("expected base UPN80 kept, got %+v", kept)
	}

	overridden := MergeProfiles(base, extra, true)
	if len(overridden) != 3 || overridden[0].SectionCm2 != 12 {
		t.Errorf("expected UPN80 overridden, got %+v", overridden)
	}
	if base[0].SectionCm2 != 11 {
		t.Error("MergeProfiles must not modify base")
	}
}

func TestCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	if err := SaveCustomProfiles(path, []model.Profile{{Designation: "HEA200", SectionCm2: 53.8}}); err != nil {
		t.Fatal(err)
	}

	inv := model.DefaultInventory()
	catalog, err := Catalog(inv, path)
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}
	if len(catalog) != len(inv.Profiles)+1 {
		t.Errorf("expected %d profiles, got %d", len(inv.Profiles)+1, len(catalog))
	}
	if _, ok := model.FindProfile(catalog, "HEA 200"); !ok {
		t.Error("expected HEA200 in catalog")
	}
}
