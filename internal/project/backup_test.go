package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/barcut/internal/model"
)

func TestExportAndImportAllData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultObjective = model.ObjectiveWaste
	inv := model.DefaultInventory()
	custom := []model.Profile{{Designation: "HEA200", SectionCm2: 53.8}}

	if err := ExportAllData(path, cfg, inv, custom); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}

	if backup.Version != BackupVersion {
		t.Errorf("expected version %s, got %s", BackupVersion, backup.Version)
	}
	if backup.CreatedAt == "" {
		t.Error("expected non-empty CreatedAt")
	}
	if backup.Config.DefaultObjective != model.ObjectiveWaste {
		t.Errorf("expected objective waste, got %s", backup.Config.DefaultObjective)
	}
	if len(backup.Inventory.Stocks) != len(inv.Stocks) {
		t.Errorf("expected %d stocks, got %d", len(inv.Stocks), len(backup.Inventory.Stocks))
	}
	if len(backup.CustomProfiles) != 1 {
		t.Errorf("expected 1 custom profile, got %d", len(backup.CustomProfiles))
	}
}

func TestImportAllDataMissingFile(t *testing.T) {
	if _, err := ImportAllData(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportAllDataInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestImportAllDataMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noversion.json")
	if err := os.WriteFile(path, []byte(`{"config":{}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected error for missing version")
	}
}

func TestRestoreAllData(t *testing.T) {
	src := filepath.Join(t.TempDir(), "backup.json")
	cfg := model.DefaultAppConfig()
	cfg.DefaultStockLength = 12000
	if err := ExportAllData(src, cfg, model.DefaultInventory(), []model.Profile{{Designation: "HEA200"}}); err != nil {
		t.Fatal(err)
	}

	dir := filepath.Join(t.TempDir(), ".barcut")
	if _, err := RestoreAllData(src, dir); err != nil {
		t.Fatalf("RestoreAllData failed: %v", err)
	}

	loaded, err := LoadAppConfig(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if loaded.DefaultStockLength != 12000 {
		t.Errorf("expected restored stock length 12000, got %d", loaded.DefaultStockLength)
	}
	profiles, err := LoadCustomProfiles(filepath.Join(dir, "profiles.json"))
	if err != nil || len(profiles) != 1 {
		t.Errorf("expected restored custom profile, got %v, %v", profiles, err)
	}
}

func TestImportAllDataRejectsInvalidProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	custom := []model.Profile{{Designation: "", SectionCm2: 10}}
	if err := ExportAllData(path, model.DefaultAppConfig(), model.DefaultInventory(), custom); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected error for a section without designation")
	}
}
