package enums

import "fmt"

// InventoryMode selects how a business tracks product stock.
type InventoryMode string

const (
	// InventoryModeShared keeps one stock count per product across all branches.
	InventoryModeShared InventoryMode = "shared"
	// InventoryModePerBranch keeps an independent count per (product, branch) pair.
	InventoryModePerBranch InventoryMode = "per_branch"
)

var validInventoryModes = []InventoryMode{
	InventoryModeShared,
	InventoryModePerBranch,
}

// String implements fmt.Stringer.
func (m InventoryMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known InventoryMode.
func (m InventoryMode) IsValid() bool {
	for _, candidate := range validInventoryModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseInventoryMode converts raw input into an InventoryMode.
func ParseInventoryMode(value string) (InventoryMode, error) {
	for _, candidate := range validInventoryModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory mode %q", value)
}
