package model

import (
	"time"

	"github.com/shopspring/decimal"

	billmodel "eca_backend/internals/features/bills/model"
	cataloguemodel "eca_backend/internals/features/catalogue/model"
	refmodel "eca_backend/internals/features/reference/model"
	usermodel "eca_backend/internals/features/users/model"
)

/* ==============================
   ENUMS
============================== */

type BillingStatus string

const (
	BillingStatusUnbilled BillingStatus = "UNBILLED"
	BillingStatusBilled   BillingStatus = "BILLED"
	BillingStatusPaid     BillingStatus = "PAID"
)

type DeliveryMethod string

const (
	DeliveryPickup DeliveryMethod = "pickup"
	DeliveryMail   DeliveryMethod = "mail"
	DeliveryNone   DeliveryMethod = "none"
)

func IsValidDeliveryMethod(m DeliveryMethod) bool {
	switch m {
	case DeliveryPickup, DeliveryMail, DeliveryNone:
		return true
	}
	return false
}

/* ==============================
   MODEL
============================== */

// OrderModel is one patron request for one title, from intake to billing.
type OrderModel struct {
	ID                  uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	AveugleID           uint           `gorm:"not null;index" json:"aveugle_id"`
	OuvrageID           uint           `gorm:"not null;index" json:"ouvrage_id"`
	RequestReceivedDate time.Time      `gorm:"type:date;not null;index" json:"request_received_date"`
	StatusID            uint           `gorm:"not null;index" json:"status_id"`
	IsDuplication       bool           `gorm:"not null;default:false;index" json:"is_duplication"`
	MediaFormatID       uint           `gorm:"not null" json:"media_format_id"`
	DeliveryMethod      DeliveryMethod `gorm:"type:varchar(10);not null;default:'none'" json:"delivery_method"`
	// True when ECA lends the physical paper book for the recording; such an
	// order is "outstanding" until its closure date is set.
	LentPhysicalBook bool             `gorm:"not null;default:false;index" json:"lent_physical_book"`
	ProcessedByID    *uint            `gorm:"index" json:"processed_by_id,omitempty"`
	ClosureDate      *time.Time       `gorm:"type:date" json:"closure_date,omitempty"`
	Cost             *decimal.Decimal `gorm:"type:numeric(10,2)" json:"cost,omitempty"`
	BillingStatus    BillingStatus    `gorm:"type:varchar(10);not null;default:'UNBILLED';index" json:"billing_status"`
	BillID           *uint            `gorm:"index" json:"bill_id,omitempty"`
	Notes            *string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	Aveugle     *usermodel.UserModel            `gorm:"foreignKey:AveugleID" json:"aveugle,omitempty"`
	Ouvrage     *cataloguemodel.OuvrageModel    `gorm:"foreignKey:OuvrageID" json:"ouvrage,omitempty"`
	Status      *refmodel.StatusModel           `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	MediaFormat *refmodel.MediaFormatModel      `gorm:"foreignKey:MediaFormatID" json:"media_format,omitempty"`
	ProcessedBy *usermodel.UserModel            `gorm:"foreignKey:ProcessedByID" json:"processed_by,omitempty"`
	Bill        *billmodel.BillModel            `gorm:"foreignKey:BillID" json:"bill,omitempty"`
}

func (OrderModel) TableName() string { return "orders" }

// NeedsReturn: a lent paper book is still out.
func (o *OrderModel) NeedsReturn() bool {
	return o.LentPhysicalBook && o.ClosureDate == nil
}
