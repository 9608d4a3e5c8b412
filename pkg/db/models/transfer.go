package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
)

// Transfer is a first-class record of moving stock between two branch
// pools. Both legs apply inside one transaction; the status records the
// outcome so a failure is inspectable rather than silently inconsistent.
type Transfer struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID   uuid.UUID            `gorm:"column:business_id;type:uuid;not null;index"`
	ProductID    uuid.UUID            `gorm:"column:product_id;type:uuid;not null"`
	FromBranchID uuid.UUID            `gorm:"column:from_branch_id;type:uuid;not null"`
	ToBranchID   uuid.UUID            `gorm:"column:to_branch_id;type:uuid;not null"`
	Qty          int                  `gorm:"column:qty;not null"`
	Status       enums.TransferStatus `gorm:"column:status;not null;default:'pending'"`
	ActorKind    enums.ActorKind      `gorm:"column:actor_kind;not null"`
	ActorRef     uuid.UUID            `gorm:"column:actor_ref;type:uuid;not null"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	CommittedAt  *time.Time           `gorm:"column:committed_at"`
}
