package model

import (
	"time"

	"github.com/google/uuid"
)

// TableStatus constants
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
)

type Table struct {
	Base
	Number   int    `gorm:"uniqueIndex;not null" json:"number"`
	Capacity int    `gorm:"not null;default:2" json:"capacity"`
	Status   string `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	Location string `gorm:"type:varchar(100)" json:"location"` // e.g. "terrace"
}

// WaiterCallStatus constants
const (
	WaiterCallPending      = "pending"
	WaiterCallAcknowledged = "acknowledged"
	WaiterCallResolved     = "resolved"
)

// WaiterCall is a customer request for staff attention at a table.
type WaiterCall struct {
	Base
	TableNumber    int        `gorm:"not null;index" json:"table_number"`
	Reason         string     `gorm:"type:varchar(30);not null" json:"reason"` // assistance, bill, water, cutlery
	Note           string     `gorm:"type:text" json:"note"`
	Status         string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AcknowledgedBy *uuid.UUID `gorm:"type:char(36)" json:"acknowledged_by"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
}
