package enums

import "fmt"

// AuditAction classifies an entry in the audit trail.
type AuditAction string

const (
	AuditActionSale          AuditAction = "sale"
	AuditActionPurchase      AuditAction = "purchase"
	AuditActionAdjustment    AuditAction = "adjustment"
	AuditActionTransfer      AuditAction = "transfer"
	AuditActionModeChange    AuditAction = "inventory_mode_change"
	AuditActionProductChange AuditAction = "product_change"
	AuditActionLogin         AuditAction = "login"
)

var validAuditActions = []AuditAction{
	AuditActionSale,
	AuditActionPurchase,
	AuditActionAdjustment,
	AuditActionTransfer,
	AuditActionModeChange,
	AuditActionProductChange,
	AuditActionLogin,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
