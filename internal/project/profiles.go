package project

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/piwi3910/barcut/internal/model"
)

// DefaultProfilesPath returns the file holding user-defined sections,
// ~/.barcut/profiles.json.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles saves user-defined sections to a JSON file.
func SaveCustomProfiles(path string, profiles []model.Profile) error {
	return writeJSON(path, profiles)
}

// LoadCustomProfiles reads the user's own sections. No file means none.
func LoadCustomProfiles(path string) ([]model.Profile, error) {
	profiles := []model.Profile{}
	if _, err := readJSON(path, &profiles); err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	return profiles, nil
}

// ExportProfile exports a single section to a JSON file for sharing.
func ExportProfile(path string, profile model.Profile) error {
	return writeJSON(path, profile)
}

// ImportProfile reads one shared section and validates it.
func ImportProfile(path string) (model.Profile, error) {
	var profile model.Profile
	found, err := readJSON(path, &profile)
	if err != nil {
		return model.Profile{}, err
	}
	if !found {
		return model.Profile{}, fmt.Errorf("profile file %s does not exist", path)
	}
	if err := validateProfile(profile); err != nil {
		return model.Profile{}, err
	}
	return profile, nil
}

func validateProfile(p model.Profile) error {
	if p.Designation == "" {
		return errors.New("profile has no designation")
	}
	if p.SectionCm2 < 0 || p.SurfacePerMeter < 0 {
		return fmt.Errorf("profile %s has negative section or surface", p.Designation)
	}
	return nil
}

// MergeProfiles adds extra to base, matching designations the way
// model.FindProfile does. With override set, an extra section replaces a
// base section of the same designation; otherwise it is skipped.
func MergeProfiles(base, extra []model.Profile, override bool) []model.Profile {
	merged := append([]model.Profile(nil), base...)
	for _, p := range extra {
		replaced := false
		for i := range merged {
			if _, same := model.FindProfile(merged[i:i+1], p.Designation); same {
				if override {
					merged[i] = p
				}
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, p)
		}
	}
	return merged
}

// Catalog returns the inventory's sections with the user-defined sections
// at path layered on top.
func Catalog(inv model.Inventory, path string) ([]model.Profile, error) {
	custom, err := LoadCustomProfiles(path)
	if err != nil {
		return inv.Profiles, err
	}
	return MergeProfiles(inv.Profiles, custom, true), nil
}
