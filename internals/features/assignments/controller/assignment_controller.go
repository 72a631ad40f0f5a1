package controller

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eca_backend/internals/apperr"
	"eca_backend/internals/constants"
	"eca_backend/internals/features/assignments/dto"
	assignmentmodel "eca_backend/internals/features/assignments/model"
	cataloguemodel "eca_backend/internals/features/catalogue/model"
	ordermodel "eca_backend/internals/features/orders/model"
	refmodel "eca_backend/internals/features/reference/model"
	usermodel "eca_backend/internals/features/users/model"
	helper "eca_backend/internals/helpers"
)

var validate = validator.New()

type AssignmentHandler struct {
	DB *gorm.DB
}

func NewAssignmentHandler(db *gorm.DB) *AssignmentHandler {
	return &AssignmentHandler{DB: db}
}

/* =======================================================
   INTERNAL
======================================================= */

// currentReaderSubquery selects the newest ledger row per assignment.
const currentReaderSubquery = "(SELECT ar.lecteur_id FROM assignment_readers ar WHERE ar.assignment_id = assignments.id ORDER BY ar.assigned_at DESC, ar.id DESC LIMIT 1)"

func checkAssignmentRefs(db *gorm.DB, m *assignmentmodel.AssignmentModel) error {
	if err := db.First(&ordermodel.OrderModel{}, m.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Reference("order_id", "order does not exist")
		}
		return err
	}
	if err := db.First(&cataloguemodel.OuvrageModel{}, m.OuvrageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Reference("ouvrage_id", "catalogue entry does not exist")
		}
		return err
	}
	if m.StatusID != nil {
		if err := db.First(&refmodel.StatusModel{}, *m.StatusID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Reference("status_id", "status does not exist")
			}
			return err
		}
	}
	if m.ProcessedByID != nil {
		var staff usermodel.UserModel
		if err := db.First(&staff, *m.ProcessedByID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Reference("processed_by_id", "staff member does not exist")
			}
			return err
		}
		if !staff.IsStaff() {
			return apperr.Reference("processed_by_id", "user is not staff")
		}
	}
	return nil
}

func validateAssignmentRow(m *assignmentmodel.AssignmentModel) error {
	if !m.CustodyDatesOrdered() {
		return apperr.Validation("invalid assignment", map[string]string{
			"dates": "reception_date ≤ sent_to_reader_date ≤ returned_date must hold",
		})
	}
	return nil
}

func assignmentPreloads(q *gorm.DB, mode helper.ViewMode) *gorm.DB {
	q = q.Preload("Ouvrage").Preload("Status")
	if mode == helper.ModeDetailed || mode == helper.ModeFull {
		q = q.Preload("Order").Preload("Order.Aveugle").Preload("ProcessedBy")
	}
	return q
}

func (h *AssignmentHandler) loadAssignmentResponse(db *gorm.DB, id uint, mode helper.ViewMode) (*dto.AssignmentDetailResponse, error) {
	var a assignmentmodel.AssignmentModel
	if err := assignmentPreloads(db, mode).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("assignment", id)
		}
		return nil, err
	}
	resp := &dto.AssignmentDetailResponse{AssignmentModel: a}

	if mode == helper.ModeDetailed || mode == helper.ModeFull {
		var readers []assignmentmodel.AssignmentReaderModel
		if err := db.Where("assignment_id = ?", id).
			Order("assigned_at DESC, id DESC").
			Preload("Lecteur").
			Find(&readers).Error; err != nil {
			return nil, err
		}
		if len(readers) > 0 {
			resp.CurrentReader = &readers[0]
		}
		if mode == helper.ModeFull {
			resp.Readers = readers
		}
	}
	return resp, nil
}

/* =======================================================
   CREATE
======================================================= */

func (h *AssignmentHandler) Create(c *fiber.Ctx) error {
	var body dto.AssignmentCreateDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	a := body.ToModel()
	if err := validateAssignmentRow(&a); err != nil {
		return helper.FromError(c, err)
	}
	if err := checkAssignmentRefs(h.DB, &a); err != nil {
		return helper.FromError(c, err)
	}
	if err := h.DB.Create(&a).Error; err != nil {
		return helper.FromError(c, err)
	}

	resp, err := h.loadAssignmentResponse(h.DB, a.ID, helper.ModeBasic)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "assignment created", resp)
}

/* =======================================================
   READ
======================================================= */

func (h *AssignmentHandler) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	mode, err := helper.ParseMode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	resp, err := h.loadAssignmentResponse(h.DB, id, mode)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "assignment", resp)
}

func (h *AssignmentHandler) List(c *fiber.Ctx) error {
	page := helper.ParsePage(c)
	q := h.DB.Model(&assignmentmodel.AssignmentModel{})

	if v := c.Query("order_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return helper.FromError(c, apperr.Validation("invalid filter", map[string]string{"order_id": "must be an integer"}))
		}
		q = q.Where("assignments.order_id = ?", uint(id))
	}
	if v := c.Query("status_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return helper.FromError(c, apperr.Validation("invalid filter", map[string]string{"status_id": "must be an integer"}))
		}
		q = q.Where("assignments.status_id = ?", uint(id))
	}
	// Filter on the derived current reader, not a stored field.
	if v := c.Query("lecteur_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return helper.FromError(c, apperr.Validation("invalid filter", map[string]string{"lecteur_id": "must be an integer"}))
		}
		q = q.Where(currentReaderSubquery+" = ?", uint(id))
	}
	if c.Query("not_returned") == "true" {
		q = q.Where("assignments.returned_date IS NULL")
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.FromError(c, err)
	}

	var assignments []assignmentmodel.AssignmentModel
	if err := assignmentPreloads(q.Session(&gorm.Session{}), helper.ModeBasic).
		Order("assignments.created_at DESC, assignments.id DESC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&assignments).Error; err != nil {
		return helper.FromError(c, err)
	}

	return helper.Success(c, "assignments", fiber.Map{
		"assignments": assignments,
		"pagination":  helper.BuildMeta(total, page),
	})
}

/* =======================================================
   UPDATE
======================================================= */

func (h *AssignmentHandler) Patch(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var body dto.AssignmentPatchDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.OuvrageID.Null {
		return helper.FromError(c, apperr.Validation("invalid assignment", map[string]string{"ouvrage_id": "cannot be null"}))
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var a assignmentmodel.AssignmentModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("assignment", id)
			}
			return err
		}
		body.ApplyTo(&a)
		// The invariant holds on the row as it will be stored, not on the
		// patch in isolation.
		if err := validateAssignmentRow(&a); err != nil {
			return err
		}
		if err := checkAssignmentRefs(tx, &a); err != nil {
			return err
		}
		return tx.Save(&a).Error
	})
	if txErr != nil {
		return helper.FromError(c, txErr)
	}

	resp, err := h.loadAssignmentResponse(h.DB, id, helper.ModeBasic)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "assignment updated", resp)
}

/* =======================================================
   READER LEDGER
======================================================= */

// AssignReader appends to the ledger. The assignment row is locked for the
// duration so two concurrent reassignments serialize and "most recent" stays
// unambiguous; assigning the already-current reader is a conflict.
func (h *AssignmentHandler) AssignReader(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var body dto.AssignReaderDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	var entry assignmentmodel.AssignmentReaderModel
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var a assignmentmodel.AssignmentModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("assignment", id)
			}
			return err
		}

		var lecteur usermodel.UserModel
		if err := tx.First(&lecteur, body.LecteurID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Reference("lecteur_id", "reader does not exist")
			}
			return err
		}
		if lecteur.Role != constants.RoleLecteur {
			return apperr.Reference("lecteur_id", "user is not a reader")
		}

		var current assignmentmodel.AssignmentReaderModel
		err := tx.Where("assignment_id = ?", id).
			Order("assigned_at DESC, id DESC").
			First(&current).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil && current.LecteurID == body.LecteurID {
			return apperr.Conflict("reader is already assigned",
				map[string]any{"lecteur_id": body.LecteurID})
		}

		entry = assignmentmodel.AssignmentReaderModel{
			AssignmentID: id,
			LecteurID:    body.LecteurID,
			AssignedAt:   time.Now(),
		}
		return tx.Create(&entry).Error
	})
	if txErr != nil {
		return helper.FromError(c, txErr)
	}

	if err := h.DB.Preload("Lecteur").First(&entry, entry.ID).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "reader assigned", entry)
}

// Readers returns the full ledger, newest first. History is never rewritten;
// provenance survives every reassignment.
func (h *AssignmentHandler) Readers(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := h.DB.First(&assignmentmodel.AssignmentModel{}, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.FromError(c, apperr.NotFound("assignment", id))
		}
		return helper.FromError(c, err)
	}

	var readers []assignmentmodel.AssignmentReaderModel
	if err := h.DB.Where("assignment_id = ?", id).
		Order("assigned_at DESC, id DESC").
		Preload("Lecteur").
		Find(&readers).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "readers", readers)
}

/* =======================================================
   DELETE
======================================================= */

// Delete removes the assignment and its ledger in one transaction. The ledger
// is owned by the assignment; the removed count is reported for the audit log.
func (h *AssignmentHandler) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}

	var readersRemoved int64
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var a assignmentmodel.AssignmentModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("assignment", id)
			}
			return err
		}

		res := tx.Where("assignment_id = ?", id).Delete(&assignmentmodel.AssignmentReaderModel{})
		if res.Error != nil {
			return res.Error
		}
		readersRemoved = res.RowsAffected

		return tx.Delete(&assignmentmodel.AssignmentModel{}, id).Error
	})
	if txErr != nil {
		return helper.FromError(c, txErr)
	}

	return helper.Success(c, "assignment deleted", fiber.Map{
		"id":              id,
		"readers_removed": readersRemoved,
	})
}
