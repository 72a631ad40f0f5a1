package dto

import (
	"time"

	"github.com/shopspring/decimal"

	assignmentmodel "eca_backend/internals/features/assignments/model"
	ordermodel "eca_backend/internals/features/orders/model"
	"eca_backend/internals/helpers/nullable"
)

/* ==============================
   CREATE
============================== */

type OrderCreateDTO struct {
	AveugleID           uint                      `json:"aveugle_id" validate:"required"`
	OuvrageID           uint                      `json:"ouvrage_id" validate:"required"`
	RequestReceivedDate time.Time                 `json:"request_received_date" validate:"required"`
	StatusID            uint                      `json:"status_id" validate:"required"`
	MediaFormatID       uint                      `json:"media_format_id" validate:"required"`
	DeliveryMethod      ordermodel.DeliveryMethod `json:"delivery_method" validate:"required"`
	IsDuplication       *bool                     `json:"is_duplication,omitempty"`
	LentPhysicalBook    *bool                     `json:"lent_physical_book,omitempty"`
	ProcessedByID       *uint                     `json:"processed_by_id,omitempty"`
	Cost                *decimal.Decimal          `json:"cost,omitempty"`
	Notes               *string                   `json:"notes,omitempty"`
}

func (d OrderCreateDTO) ToModel() ordermodel.OrderModel {
	m := ordermodel.OrderModel{
		AveugleID:           d.AveugleID,
		OuvrageID:           d.OuvrageID,
		RequestReceivedDate: d.RequestReceivedDate,
		StatusID:            d.StatusID,
		MediaFormatID:       d.MediaFormatID,
		DeliveryMethod:      d.DeliveryMethod,
		ProcessedByID:       d.ProcessedByID,
		Cost:                d.Cost,
		Notes:               d.Notes,
		BillingStatus:       ordermodel.BillingStatusUnbilled,
	}
	if d.IsDuplication != nil {
		m.IsDuplication = *d.IsDuplication
	}
	if d.LentPhysicalBook != nil {
		m.LentPhysicalBook = *d.LentPhysicalBook
	}
	return m
}

/* ==============================
   REPLACE (PUT) — full update
============================== */

// OrderReplaceDTO carries every mutable field. Optional fields left out of the
// body become explicit nulls on the row; callers that want field-level updates
// use PATCH instead. Billing linkage (billing_status, bill_id) is owned by the
// bill service and is not mutable here.
type OrderReplaceDTO struct {
	AveugleID           uint                      `json:"aveugle_id" validate:"required"`
	OuvrageID           uint                      `json:"ouvrage_id" validate:"required"`
	RequestReceivedDate time.Time                 `json:"request_received_date" validate:"required"`
	StatusID            uint                      `json:"status_id" validate:"required"`
	MediaFormatID       uint                      `json:"media_format_id" validate:"required"`
	DeliveryMethod      ordermodel.DeliveryMethod `json:"delivery_method" validate:"required"`
	IsDuplication       bool                      `json:"is_duplication"`
	LentPhysicalBook    bool                      `json:"lent_physical_book"`
	ProcessedByID       *uint                     `json:"processed_by_id"`
	ClosureDate         *time.Time                `json:"closure_date"`
	Cost                *decimal.Decimal          `json:"cost"`
	Notes               *string                   `json:"notes"`
}

func (d OrderReplaceDTO) ApplyTo(m *ordermodel.OrderModel) {
	m.AveugleID = d.AveugleID
	m.OuvrageID = d.OuvrageID
	m.RequestReceivedDate = d.RequestReceivedDate
	m.StatusID = d.StatusID
	m.MediaFormatID = d.MediaFormatID
	m.DeliveryMethod = d.DeliveryMethod
	m.IsDuplication = d.IsDuplication
	m.LentPhysicalBook = d.LentPhysicalBook
	m.ProcessedByID = d.ProcessedByID
	m.ClosureDate = d.ClosureDate
	m.Cost = d.Cost
	m.Notes = d.Notes
}

/* ==============================
   PATCH — partial update
============================== */

// OrderPatchDTO mutates only the fields present in the body. Explicit null
// clears nullable columns (closure_date, cost, processed_by_id, notes);
// absent fields are untouched.
type OrderPatchDTO struct {
	AveugleID           nullable.Field[uint]                      `json:"aveugle_id"`
	OuvrageID           nullable.Field[uint]                      `json:"ouvrage_id"`
	RequestReceivedDate nullable.Field[time.Time]                 `json:"request_received_date"`
	StatusID            nullable.Field[uint]                      `json:"status_id"`
	MediaFormatID       nullable.Field[uint]                      `json:"media_format_id"`
	DeliveryMethod      nullable.Field[ordermodel.DeliveryMethod] `json:"delivery_method"`
	IsDuplication       nullable.Field[bool]                      `json:"is_duplication"`
	LentPhysicalBook    nullable.Field[bool]                      `json:"lent_physical_book"`
	ProcessedByID       nullable.Field[uint]                      `json:"processed_by_id"`
	ClosureDate         nullable.Field[time.Time]                 `json:"closure_date"`
	Cost                nullable.Field[decimal.Decimal]           `json:"cost"`
	Notes               nullable.Field[string]                    `json:"notes"`
}

func (d OrderPatchDTO) ApplyTo(m *ordermodel.OrderModel) {
	d.AveugleID.ApplyValue(&m.AveugleID)
	d.OuvrageID.ApplyValue(&m.OuvrageID)
	d.RequestReceivedDate.ApplyValue(&m.RequestReceivedDate)
	d.StatusID.ApplyValue(&m.StatusID)
	d.MediaFormatID.ApplyValue(&m.MediaFormatID)
	d.DeliveryMethod.ApplyValue(&m.DeliveryMethod)
	d.IsDuplication.ApplyValue(&m.IsDuplication)
	d.LentPhysicalBook.ApplyValue(&m.LentPhysicalBook)
	d.ProcessedByID.Apply(&m.ProcessedByID)
	d.ClosureDate.Apply(&m.ClosureDate)
	d.Cost.Apply(&m.Cost)
	d.Notes.Apply(&m.Notes)
}

/* ==============================
   RESPONSES
============================== */

// AssignmentWithReaders is an assignment row plus its reader ledger, newest
// first. Readers stays empty below mode=full.
type AssignmentWithReaders struct {
	assignmentmodel.AssignmentModel
	Readers []assignmentmodel.AssignmentReaderModel `json:"readers,omitempty"`
}

// OrderDetailResponse is the order row plus the relation sets resolved for
// mode=detailed / mode=full.
type OrderDetailResponse struct {
	ordermodel.OrderModel
	Assignments []AssignmentWithReaders `json:"assignments,omitempty"`
}
