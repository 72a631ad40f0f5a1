package dto

import (
	"time"

	"github.com/shopspring/decimal"

	billmodel "eca_backend/internals/features/bills/model"
	ordermodel "eca_backend/internals/features/orders/model"
	"eca_backend/internals/helpers/nullable"
)

/* ==============================
   CREATE
============================== */

type BillCreateDTO struct {
	AveugleID     uint             `json:"aveugle_id" validate:"required"`
	StateID       uint             `json:"state_id" validate:"required"`
	CreationDate  *time.Time       `json:"creation_date,omitempty"` // defaults to today
	InvoiceAmount *decimal.Decimal `json:"invoice_amount" validate:"required"`
	Notes         *string          `json:"notes,omitempty"`
}

func (d BillCreateDTO) ToModel(now time.Time) billmodel.BillModel {
	m := billmodel.BillModel{
		AveugleID: d.AveugleID,
		StateID:   d.StateID,
		Notes:     d.Notes,
	}
	if d.InvoiceAmount != nil {
		m.InvoiceAmount = *d.InvoiceAmount
	}
	if d.CreationDate != nil {
		m.CreationDate = *d.CreationDate
	} else {
		y, mo, day := now.Date()
		m.CreationDate = time.Date(y, mo, day, 0, 0, 0, 0, time.UTC)
	}
	return m
}

/* ==============================
   PATCH
============================== */

// BillPatchDTO: payment date and the paid state are owned by the pay
// endpoint, which is what keeps order billing statuses in sync.
type BillPatchDTO struct {
	StateID       nullable.Field[uint]            `json:"state_id"`
	IssueDate     nullable.Field[time.Time]       `json:"issue_date"`
	InvoiceAmount nullable.Field[decimal.Decimal] `json:"invoice_amount"`
	Notes         nullable.Field[string]          `json:"notes"`
}

func (d BillPatchDTO) ApplyTo(m *billmodel.BillModel) {
	d.StateID.ApplyValue(&m.StateID)
	d.IssueDate.Apply(&m.IssueDate)
	d.InvoiceAmount.ApplyValue(&m.InvoiceAmount)
	d.Notes.Apply(&m.Notes)
}

/* ==============================
   ATTACH / PAY
============================== */

type AttachOrdersDTO struct {
	OrderIDs []uint `json:"order_ids" validate:"required,min=1,dive,required"`
}

type MarkPaidDTO struct {
	PaymentDate *time.Time `json:"payment_date,omitempty"` // defaults to today
}

/* ==============================
   RESPONSES
============================== */

type BillDetailResponse struct {
	billmodel.BillModel
	Orders []ordermodel.OrderModel `json:"orders,omitempty"`
}
