package model

import (
	"fmt"

	"github.com/google/uuid"
)

// StockPreset is a saved stock definition, optionally tied to a catalog profile.
type StockPreset struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Length    int     `json:"length"`
	Width     int     `json:"width,omitempty"`
	Thickness float64 `json:"thickness,omitempty"`
	Profile   string  `json:"profile,omitempty"`
}

// NewStockPreset creates a new StockPreset with a generated ID.
func NewStockPreset(name string, length, width int, profile string) StockPreset {
	return StockPreset{
		ID:      uuid.New().String()[:8],
		Name:    name,
		Length:  length,
		Width:   width,
		Profile: profile,
	}
}

func (sp StockPreset) ToStockUnit() StockUnit {
	return StockUnit{Label: sp.Name, Length: sp.Length, Width: sp.Width, Thickness: sp.Thickness}
}

// Inventory holds the user's stock presets and section catalog.
type Inventory struct {
	Stocks   []StockPreset `json:"stocks"`
	Profiles []Profile     `json:"profiles"`
}

// DefaultInventory returns 6 m bars of every catalog profile and a common plate size.
func DefaultInventory() Inventory {
	profiles := DefaultProfiles()
	inv := Inventory{Profiles: profiles}
	for _, p := range profiles {
		inv.Stocks = append(inv.Stocks, NewStockPreset(fmt.Sprintf("%s 6m", p.Designation), 6000, 0, p.Designation))
	}
	plate := NewStockPreset("Tôle 3000x1500x5", 3000, 1500, "")
	plate.Thickness = 5
	inv.Stocks = append(inv.Stocks, plate)
	return inv
}

// FindStockByID returns a pointer to the stock preset with the given ID, or nil.
func (inv *Inventory) FindStockByID(id string) *StockPreset {
	for i := range inv.Stocks {
		if inv.Stocks[i].ID == id {
			return &inv.Stocks[i]
		}
	}
	return nil
}

// FindStockByName returns a pointer to the first stock preset with the given name, or nil.
func (inv *Inventory) FindStockByName(name string) *StockPreset {
	for i := range inv.Stocks {
		if inv.Stocks[i].Name == name {
			return &inv.Stocks[i]
		}
	}
	return nil
}

// StockNames returns the stock preset names in order.
func (inv *Inventory) StockNames() []string {
	names := make([]string, len(inv.Stocks))
	for i, s := range inv.Stocks {
		names[i] = s.Name
	}
	return names
}

// FindProfile looks a section up in the inventory's catalog.
func (inv *Inventory) FindProfile(designation string) (Profile, bool) {
	return FindProfile(inv.Profiles, designation)
}
