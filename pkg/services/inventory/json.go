package inventory

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ft-tools/forest-atlas/pkg/models/domain"
)

// ReadJSON decodes an inventory from JSON and validates every tree.
func ReadJSON(r io.Reader, name string) (*domain.ForestInventory, error) {
	var inv domain.ForestInventory
	if err := json.NewDecoder(r).Decode(&inv); err != nil {
		return nil, fmt.Errorf("failed to decode inventory JSON: %w", err)
	}
	for i := range inv.Plots {
		for j := range inv.Plots[i].Trees {
			if err := inv.Plots[i].Trees[j].Validate(); err != nil {
				return nil, err
			}
		}
	}
	if name != "" {
		inv.Name = name
	}
	return &inv, nil
}

// ParseJSONLenient decodes an inventory from JSON and returns its flat
// rows plus every validation issue. Malformed JSON is still fatal.
func ParseJSONLenient(r io.Reader) ([]EditableRow, []domain.ValidationIssue, error) {
	var inv domain.ForestInventory
	if err := json.NewDecoder(r).Decode(&inv); err != nil {
		return nil, nil, fmt.Errorf("failed to decode inventory JSON: %w", err)
	}
	rows := InventoryToRows(&inv)
	return rows, ValidateRows(rows), nil
}

// WriteJSON encodes the inventory as JSON, optionally indented.
func WriteJSON(inv *domain.ForestInventory, w io.Writer, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(inv); err != nil {
		return fmt.Errorf("failed to encode inventory JSON: %w", err)
	}
	return nil
}
