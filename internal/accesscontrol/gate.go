package accesscontrol

import (
	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/internal/identity"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
	pkgerrors "github.com/marcovaldez/tiendapos-backend/pkg/errors"
)

// Action names a guarded operation. Route gates and services both call
// Authorize with these values, so there is exactly one rule table.
type Action string

const (
	ActionSell             Action = "sell"
	ActionViewStock        Action = "view_stock"
	ActionAdjustStock      Action = "adjust_stock"
	ActionReceiveStock     Action = "receive_stock"
	ActionTransferStock    Action = "transfer_stock"
	ActionManageProducts   Action = "manage_products"
	ActionManagePersonnel  Action = "manage_personnel"
	ActionManageTerminals  Action = "manage_terminals"
	ActionManageBusiness   Action = "manage_business"
	ActionViewReports      Action = "view_reports"
	ActionViewAudit        Action = "view_audit"
	ActionViewTransactions Action = "view_transactions"
)

// Resource scopes an action to a tenant.
type Resource struct {
	BusinessID uuid.UUID
}

var stockAffecting = map[Action]bool{
	ActionSell:          true,
	ActionAdjustStock:   true,
	ActionReceiveStock:  true,
	ActionTransferStock: true,
}

// Authorize decides whether the actor may perform the action on the
// resource. Unauthenticated actors get UNAUTHORIZED; authenticated actors
// that fail a rule get FORBIDDEN.
func Authorize(actor identity.Actor, action Action, resource Resource) error {
	switch actor.Kind {
	case enums.ActorKindOwner:
		return authorizeOwner(actor, resource)
	case enums.ActorKindEmployee:
		return authorizeEmployee(actor, action, resource)
	case enums.ActorKindTerminal:
		return authorizeTerminal(actor, action, resource)
	}
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
}

func authorizeOwner(actor identity.Actor, resource Resource) error {
	if err := sameBusiness(actor, resource); err != nil {
		return err
	}
	// Owners may do anything within their own business.
	return nil
}

func authorizeEmployee(actor identity.Actor, action Action, resource Resource) error {
	if err := sameBusiness(actor, resource); err != nil {
		return err
	}

	switch action {
	case ActionSell:
		if !actor.Permissions.CanSell {
			return deny("selling is not permitted for this employee")
		}
	case ActionViewStock:
		if !actor.Permissions.CanViewStock {
			return deny("stock visibility is not permitted for this employee")
		}
	case ActionManageProducts:
		if !actor.Permissions.CanManageProducts {
			return deny("product management is not permitted for this employee")
		}
	case ActionViewReports, ActionViewTransactions:
		if !actor.Permissions.CanViewReports {
			return deny("reports are not permitted for this employee")
		}
	case ActionAdjustStock, ActionReceiveStock, ActionTransferStock:
		if !actor.Role.AtLeast(enums.EmployeeRoleSupervisor) {
			return deny("supervisor role required")
		}
	case ActionManagePersonnel, ActionManageTerminals:
		if !actor.Role.AtLeast(enums.EmployeeRoleAdministrator) {
			return deny("administrator role required")
		}
	case ActionManageBusiness, ActionViewAudit:
		return deny("owner access required")
	default:
		return deny("unknown action")
	}
	return nil
}

func authorizeTerminal(actor identity.Actor, action Action, resource Resource) error {
	if err := sameBusiness(actor, resource); err != nil {
		return err
	}
	// A terminal without a verified PIN can only read; every
	// stock-affecting action needs an employee shift.
	if stockAffecting[action] {
		return deny("employee pin required")
	}
	if action == ActionViewStock {
		return nil
	}
	return deny("terminal access is read-only")
}

func sameBusiness(actor identity.Actor, resource Resource) error {
	if resource.BusinessID == uuid.Nil {
		return deny("resource business is required")
	}
	if actor.BusinessID == nil || *actor.BusinessID != resource.BusinessID {
		return deny("resource belongs to another business")
	}
	return nil
}

func deny(msg string) error {
	return pkgerrors.New(pkgerrors.CodeForbidden, msg)
}
