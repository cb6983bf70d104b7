package project

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/piwi3910/barcut/internal/model"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version        string          `json:"version"`
	CreatedAt      string          `json:"created_at"`
	Config         model.AppConfig `json:"config"`
	Inventory      model.Inventory `json:"inventory"`
	CustomProfiles []model.Profile `json:"custom_profiles,omitempty"`
}

// ExportAllData writes config, inventory and custom sections to a single
// JSON file at the specified path.
func ExportAllData(exportPath string, config model.AppConfig, inv model.Inventory, custom []model.Profile) error {
	backup := BackupData{
		Version:        BackupVersion,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		Config:         config,
		Inventory:      inv,
		CustomProfiles: custom,
	}
	if err := writeJSON(exportPath, backup); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup without applying it. Custom sections are
// validated the same way LoadCustomProfiles does.
func ImportAllData(importPath string) (BackupData, error) {
	var backup BackupData
	found, err := readJSON(importPath, &backup)
	switch {
	case err != nil:
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	case !found:
		return BackupData{}, fmt.Errorf("backup file %s does not exist", importPath)
	case backup.Version == "":
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	for _, p := range backup.CustomProfiles {
		if err := validateProfile(p); err != nil {
			return BackupData{}, fmt.Errorf("invalid backup file: %w", err)
		}
	}
	if backup.Config.RecentJobs == nil {
		backup.Config.RecentJobs = []string{}
	}
	return backup, nil
}

// RestoreAllData imports a backup and writes each part to its file in dir,
// replacing what is there.
func RestoreAllData(importPath, dir string) (BackupData, error) {
	backup, err := ImportAllData(importPath)
	if err != nil {
		return BackupData{}, err
	}
	if err := SaveAppConfig(filepath.Join(dir, "config.json"), backup.Config); err != nil {
		return BackupData{}, fmt.Errorf("failed to restore config: %w", err)
	}
	if err := SaveInventory(filepath.Join(dir, "inventory.json"), backup.Inventory); err != nil {
		return BackupData{}, fmt.Errorf("failed to restore inventory: %w", err)
	}
	if len(backup.CustomProfiles) > 0 {
		if err := SaveCustomProfiles(filepath.Join(dir, "profiles.json"), backup.CustomProfiles); err != nil {
			return BackupData{}, fmt.Errorf("failed to restore profiles: %w", err)
		}
	}
	return backup, nil
}
