package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
)

// AuditRecord is an append-only trace of a mutating action. Writes are
// best-effort and must never block the operation they describe.
type AuditRecord struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID   uuid.UUID         `gorm:"column:business_id;type:uuid;not null;index"`
	BranchID     *uuid.UUID        `gorm:"column:branch_id;type:uuid"`
	Action       enums.AuditAction `gorm:"column:action;not null"`
	ActorKind    enums.ActorKind   `gorm:"column:actor_kind;not null"`
	ActorRef     *uuid.UUID        `gorm:"column:actor_ref;type:uuid"`
	ProductID    *uuid.UUID        `gorm:"column:product_id;type:uuid"`
	Delta        *int              `gorm:"column:delta"`
	ResultingQty *int              `gorm:"column:resulting_qty"`
	Details      string            `gorm:"column:details"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
}
