package enums

import "fmt"

// TransferStatus tracks the lifecycle of an inter-branch stock transfer.
type TransferStatus string

const (
	TransferStatusPending    TransferStatus = "pending"
	TransferStatusCommitted  TransferStatus = "committed"
	TransferStatusRolledBack TransferStatus = "rolled_back"
)

var validTransferStatuses = []TransferStatus{
	TransferStatusPending,
	TransferStatusCommitted,
	TransferStatusRolledBack,
}

// String implements fmt.Stringer.
func (s TransferStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TransferStatus.
func (s TransferStatus) IsValid() bool {
	for _, candidate := range validTransferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTransferStatus converts raw input into a TransferStatus.
func ParseTransferStatus(value string) (TransferStatus, error) {
	for _, candidate := range validTransferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer status %q", value)
}
