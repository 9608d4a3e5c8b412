package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
)

// employeeSummary is the employee view returned by the API. Credential
// hashes never leave the service layer.
type employeeSummary struct {
	ID         uuid.UUID          `json:"id"`
	BusinessID uuid.UUID          `json:"business_id"`
	BranchID   uuid.UUID          `json:"branch_id"`
	Name       string             `json:"name"`
	Identifier string             `json:"identifier"`
	Role       enums.EmployeeRole `json:"role"`
	HasPIN     bool               `json:"has_pin"`

	CanSell           bool `json:"can_sell"`
	CanViewStock      bool `json:"can_view_stock"`
	CanManageProducts bool `json:"can_manage_products"`
	CanViewReports    bool `json:"can_view_reports"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func employeeSummaryFromModel(employee *models.Employee) employeeSummary {
	if employee == nil {
		return employeeSummary{}
	}
	return employeeSummary{
		ID:         employee.ID,
		BusinessID: employee.BusinessID,
		BranchID:   employee.BranchID,
		Name:       employee.Name,
		Identifier: employee.Identifier,
		Role:       employee.Role,
		HasPIN:     employee.PINHash != nil,

		CanSell:           employee.CanSell,
		CanViewStock:      employee.CanViewStock,
		CanManageProducts: employee.CanManageProducts,
		CanViewReports:    employee.CanViewReports,

		Active:    employee.Active,
		CreatedAt: employee.CreatedAt,
		UpdatedAt: employee.UpdatedAt,
	}
}

func employeeSummaries(employees []models.Employee) []employeeSummary {
	out := make([]employeeSummary, 0, len(employees))
	for i := range employees {
		out = append(out, employeeSummaryFromModel(&employees[i]))
	}
	return out
}

// terminalSummary is the terminal view returned by the API. The pairing
// code hash stays server-side; the plaintext code appears exactly once,
// in the register and rotate responses.
type terminalSummary struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	BranchID   uuid.UUID `json:"branch_id"`
	Name       string    `json:"name"`
	Identifier string    `json:"identifier"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func terminalSummaryFromModel(terminal *models.Terminal) terminalSummary {
	if terminal == nil {
		return terminalSummary{}
	}
	return terminalSummary{
		ID:         terminal.ID,
		BusinessID: terminal.BusinessID,
		BranchID:   terminal.BranchID,
		Name:       terminal.Name,
		Identifier: terminal.Identifier,
		Active:     terminal.Active,
		CreatedAt:  terminal.CreatedAt,
		UpdatedAt:  terminal.UpdatedAt,
	}
}

func terminalSummaries(terminals []models.Terminal) []terminalSummary {
	out := make([]terminalSummary, 0, len(terminals))
	for i := range terminals {
		out = append(out, terminalSummaryFromModel(&terminals[i]))
	}
	return out
}

type registeredTerminalResponse struct {
	Terminal    terminalSummary `json:"terminal"`
	PairingCode string          `json:"pairing_code"`
}
