package model

import (
	"time"

	"github.com/shopspring/decimal"

	refmodel "eca_backend/internals/features/reference/model"
	usermodel "eca_backend/internals/features/users/model"
)

// BillModel aggregates the cost of one patron's orders into an invoice. Its
// lifecycle (brouillon → emise → payee) is its own; the billing status carried
// on orders is synchronized by the bill service, never written elsewhere.
type BillModel struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	AveugleID    uint       `gorm:"not null;index" json:"aveugle_id"`
	StateID      uint       `gorm:"not null;index" json:"state_id"`
	CreationDate time.Time  `gorm:"type:date;not null" json:"creation_date"`
	IssueDate    *time.Time `gorm:"type:date" json:"issue_date,omitempty"`
	PaymentDate  *time.Time `gorm:"type:date" json:"payment_date,omitempty"`
	// NUMERIC, not float: many small per-recording charges must sum exactly.
	InvoiceAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"invoice_amount"`
	Notes         *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Aveugle *usermodel.UserModel     `gorm:"foreignKey:AveugleID" json:"aveugle,omitempty"`
	State   *refmodel.BillStateModel `gorm:"foreignKey:StateID" json:"state,omitempty"`
}

func (BillModel) TableName() string { return "bills" }
