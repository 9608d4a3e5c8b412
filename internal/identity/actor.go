package identity

import (
	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
)

// Permissions are the feature gates carried by an employee identity.
type Permissions struct {
	CanSell           bool `json:"can_sell"`
	CanViewStock      bool `json:"can_view_stock"`
	CanManageProducts bool `json:"can_manage_products"`
	CanViewReports    bool `json:"can_view_reports"`
}

// Actor is the resolved identity for a request. Exactly one kind is active;
// the constructors below are the only way mixed states stay unrepresentable.
type Actor struct {
	Kind        enums.ActorKind
	OwnerID     *uuid.UUID
	EmployeeID  *uuid.UUID
	TerminalID  *uuid.UUID
	BusinessID  *uuid.UUID
	BranchID    *uuid.UUID
	Role        enums.EmployeeRole
	Permissions Permissions
	PINVerified bool
}

// NoActor is the unauthenticated identity.
func NoActor() Actor {
	return Actor{Kind: enums.ActorKindNone}
}

// OwnerActor builds the identity for an authenticated business owner.
func OwnerActor(ownerID uuid.UUID, businessID *uuid.UUID) Actor {
	return Actor{
		Kind:       enums.ActorKindOwner,
		OwnerID:    &ownerID,
		BusinessID: businessID,
	}
}

// EmployeeActor builds the identity for a logged-in staff member.
func EmployeeActor(employeeID, businessID, branchID uuid.UUID, role enums.EmployeeRole, perms Permissions, pinVerified bool) Actor {
	return Actor{
		Kind:        enums.ActorKindEmployee,
		EmployeeID:  &employeeID,
		BusinessID:  &businessID,
		BranchID:    &branchID,
		Role:        role,
		Permissions: perms,
		PINVerified: pinVerified,
	}
}

// TerminalActor builds the identity for a shared POS device with no
// verified operator. PINVerified is always false here; layering a shift
// produces an EmployeeActor instead.
func TerminalActor(terminalID, businessID, branchID uuid.UUID) Actor {
	return Actor{
		Kind:       enums.ActorKindTerminal,
		TerminalID: &terminalID,
		BusinessID: &businessID,
		BranchID:   &branchID,
	}
}

// Ref returns the identifier of whoever the actor is, or nil for none.
func (a Actor) Ref() *uuid.UUID {
	switch a.Kind {
	case enums.ActorKindOwner:
		return a.OwnerID
	case enums.ActorKindEmployee:
		return a.EmployeeID
	case enums.ActorKindTerminal:
		return a.TerminalID
	}
	return nil
}

// IsAuthenticated reports whether the actor is anything other than none.
func (a Actor) IsAuthenticated() bool {
	return a.Kind != enums.ActorKindNone && a.Kind != ""
}

// PermissionsFromEmployee lifts the model flags into the identity type.
func PermissionsFromEmployee(employee *models.Employee) Permissions {
	if employee == nil {
		return Permissions{}
	}
	return Permissions{
		CanSell:           employee.CanSell,
		CanViewStock:      employee.CanViewStock,
		CanManageProducts: employee.CanManageProducts,
		CanViewReports:    employee.CanViewReports,
	}
}
