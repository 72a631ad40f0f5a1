package dto

import (
	"time"

	assignmentmodel "eca_backend/internals/features/assignments/model"
	"eca_backend/internals/helpers/nullable"
)

/* ==============================
   CREATE
============================== */

// AssignmentCreateDTO: an assignment inherits nothing from its order — status,
// staff and dates are set independently so the production workflow does not
// have to mirror the intake workflow.
type AssignmentCreateDTO struct {
	OrderID          uint       `json:"order_id" validate:"required"`
	OuvrageID        uint       `json:"ouvrage_id" validate:"required"`
	StatusID         *uint      `json:"status_id,omitempty"`
	ReceptionDate    *time.Time `json:"reception_date,omitempty"`
	SentToReaderDate *time.Time `json:"sent_to_reader_date,omitempty"`
	ReturnedDate     *time.Time `json:"returned_date,omitempty"`
	ProcessedByID    *uint      `json:"processed_by_id,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
}

func (d AssignmentCreateDTO) ToModel() assignmentmodel.AssignmentModel {
	return assignmentmodel.AssignmentModel{
		OrderID:          d.OrderID,
		OuvrageID:        d.OuvrageID,
		StatusID:         d.StatusID,
		ReceptionDate:    d.ReceptionDate,
		SentToReaderDate: d.SentToReaderDate,
		ReturnedDate:     d.ReturnedDate,
		ProcessedByID:    d.ProcessedByID,
		Notes:            d.Notes,
	}
}

/* ==============================
   PATCH
============================== */

// AssignmentPatchDTO: custody dates accept explicit null to undo a data-entry
// error, which is distinct from leaving the field out (no-op). The owning
// order is fixed at creation.
type AssignmentPatchDTO struct {
	OuvrageID        nullable.Field[uint]      `json:"ouvrage_id"`
	StatusID         nullable.Field[uint]      `json:"status_id"`
	ReceptionDate    nullable.Field[time.Time] `json:"reception_date"`
	SentToReaderDate nullable.Field[time.Time] `json:"sent_to_reader_date"`
	ReturnedDate     nullable.Field[time.Time] `json:"returned_date"`
	ProcessedByID    nullable.Field[uint]      `json:"processed_by_id"`
	Notes            nullable.Field[string]    `json:"notes"`
}

func (d AssignmentPatchDTO) ApplyTo(m *assignmentmodel.AssignmentModel) {
	d.OuvrageID.ApplyValue(&m.OuvrageID)
	d.StatusID.Apply(&m.StatusID)
	d.ReceptionDate.Apply(&m.ReceptionDate)
	d.SentToReaderDate.Apply(&m.SentToReaderDate)
	d.ReturnedDate.Apply(&m.ReturnedDate)
	d.ProcessedByID.Apply(&m.ProcessedByID)
	d.Notes.Apply(&m.Notes)
}

/* ==============================
   READER ASSIGNMENT
============================== */

type AssignReaderDTO struct {
	LecteurID uint `json:"lecteur_id" validate:"required"`
}

/* ==============================
   RESPONSES
============================== */

// AssignmentDetailResponse resolves the ledger on mode=full; CurrentReader is
// derived from the newest ledger row, never stored.
type AssignmentDetailResponse struct {
	assignmentmodel.AssignmentModel
	CurrentReader *assignmentmodel.AssignmentReaderModel  `json:"current_reader,omitempty"`
	Readers       []assignmentmodel.AssignmentReaderModel `json:"readers,omitempty"`
}
