package project

import (
	"fmt"
	"path/filepath"

	"github.com/piwi3910/barcut/internal/model"
)

// DefaultInventoryPath returns ~/.barcut/inventory.json.
func DefaultInventoryPath() string {
	return filepath.Join(DefaultConfigDir(), "inventory.json")
}

func SaveInventory(path string, inv model.Inventory) error {
	return writeJSON(path, inv)
}

// LoadInventory reads the stock presets and sections at path. The first
// call on a machine finds no file and seeds it with model.DefaultInventory.
func LoadInventory(path string) (model.Inventory, error) {
	var inv model.Inventory
	found, err := readJSON(path, &inv)
	if err != nil {
		return model.Inventory{}, fmt.Errorf("failed to load inventory: %w", err)
	}
	if !found {
		inv = model.DefaultInventory()
		return inv, SaveInventory(path, inv)
	}
	return inv, nil
}

// LoadOrCreateInventory is LoadInventory on DefaultInventoryPath.
func LoadOrCreateInventory() (model.Inventory, string, error) {
	path := DefaultInventoryPath()
	inv, err := LoadInventory(path)
	return inv, path, err
}

// ExportInventory writes inv for another workstation to import.
func ExportInventory(path string, inv model.Inventory) error {
	if err := writeJSON(path, inv); err != nil {
		return fmt.Errorf("failed to export inventory: %w", err)
	}
	return nil
}

// ImportInventory merges the inventory file at path into existing. On
// error existing is returned unchanged.
func ImportInventory(path string, existing model.Inventory) (model.Inventory, error) {
	var imported model.Inventory
	found, err := readJSON(path, &imported)
	switch {
	case err != nil:
		return existing, fmt.Errorf("failed to import inventory: %w", err)
	case !found:
		return existing, fmt.Errorf("failed to import inventory: %s does not exist", path)
	}
	return MergeInventory(existing, imported), nil
}

// MergeInventory adds the presets and sections of imported that existing
// lacks. Presets match by ID, sections by designation, and existing wins.
func MergeInventory(existing, imported model.Inventory) model.Inventory {
	out := model.Inventory{
		Stocks:   append([]model.StockPreset(nil), existing.Stocks...),
		Profiles: MergeProfiles(existing.Profiles, imported.Profiles, false),
	}
	for _, s := range imported.Stocks {
		if out.FindStockByID(s.ID) == nil {
			out.Stocks = append(out.Stocks, s)
		}
	}
	return out
}
