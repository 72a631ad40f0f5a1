package model

import (
	"time"

	cataloguemodel "eca_backend/internals/features/catalogue/model"
	ordermodel "eca_backend/internals/features/orders/model"
	refmodel "eca_backend/internals/features/reference/model"
	usermodel "eca_backend/internals/features/users/model"
)

// AssignmentModel is the production work unit for one order: where the
// physical book is and who is recording it. Workflow state is deliberately
// independent from the order's; an assignment is never closed directly,
// terminality follows the order's closure date.
type AssignmentModel struct {
	ID        uint  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint  `gorm:"not null;index" json:"order_id"`
	OuvrageID uint  `gorm:"not null;index" json:"ouvrage_id"`
	StatusID  *uint `gorm:"index" json:"status_id,omitempty"`
	// Custody dates of the physical book. Whenever all are present they must
	// satisfy reception ≤ sent_to_reader ≤ returned.
	ReceptionDate    *time.Time `gorm:"type:date" json:"reception_date,omitempty"`
	SentToReaderDate *time.Time `gorm:"type:date" json:"sent_to_reader_date,omitempty"`
	ReturnedDate     *time.Time `gorm:"type:date" json:"returned_date,omitempty"`
	ProcessedByID    *uint      `gorm:"index" json:"processed_by_id,omitempty"`
	Notes            *string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Order       *ordermodel.OrderModel       `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Ouvrage     *cataloguemodel.OuvrageModel `gorm:"foreignKey:OuvrageID" json:"ouvrage,omitempty"`
	Status      *refmodel.StatusModel        `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	ProcessedBy *usermodel.UserModel         `gorm:"foreignKey:ProcessedByID" json:"processed_by,omitempty"`
}

func (AssignmentModel) TableName() string { return "assignments" }

// CustodyDatesOrdered checks reception ≤ sent ≤ returned over the dates that
// are present. Absent dates constrain nothing.
func (a *AssignmentModel) CustodyDatesOrdered() bool {
	if a.ReceptionDate != nil && a.SentToReaderDate != nil && a.SentToReaderDate.Before(*a.ReceptionDate) {
		return false
	}
	if a.SentToReaderDate != nil && a.ReturnedDate != nil && a.ReturnedDate.Before(*a.SentToReaderDate) {
		return false
	}
	if a.ReceptionDate != nil && a.ReturnedDate != nil && a.ReturnedDate.Before(*a.ReceptionDate) {
		return false
	}
	return true
}
