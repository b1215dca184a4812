package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ft-tools/forest-atlas/pkg/models/domain"
)

// ReadFile loads an inventory, dispatching on the file extension
// (.csv, .json, .xlsx). The inventory takes its name from the file
// stem.
func ReadFile(path string) (*domain.ForestInventory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ReadCSV(f, name)
	case ".json":
		return ReadJSON(f, name)
	case ".xlsx", ".xls":
		return ReadXLSX(f, name)
	default:
		return nil, fmt.Errorf("unsupported file format %q: use .csv, .json, or .xlsx", ext)
	}
}

// WriteFile saves an inventory, dispatching on the file extension.
func WriteFile(inv *domain.ForestInventory, path string, pretty bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return WriteCSV(inv, f)
	case ".json":
		return WriteJSON(inv, f, pretty)
	case ".xlsx":
		return WriteXLSX(inv, f)
	default:
		return fmt.Errorf("unsupported file format %q: use .csv, .json, or .xlsx", ext)
	}
}
