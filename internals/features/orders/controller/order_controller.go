package controller

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eca_backend/internals/apperr"
	"eca_backend/internals/constants"
	assignmentmodel "eca_backend/internals/features/assignments/model"
	cataloguemodel "eca_backend/internals/features/catalogue/model"
	"eca_backend/internals/features/orders/dto"
	ordermodel "eca_backend/internals/features/orders/model"
	refmodel "eca_backend/internals/features/reference/model"
	usermodel "eca_backend/internals/features/users/model"
	helper "eca_backend/internals/helpers"
)

var validate = validator.New()

type OrderHandler struct {
	DB *gorm.DB
}

func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{DB: db}
}

/* =======================================================
   INTERNAL
======================================================= */

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// checkOrderRefs resolves every foreign reference of the row. Unresolvable ids
// are client input problems, not data corruption, and come back field-keyed.
func checkOrderRefs(db *gorm.DB, m *ordermodel.OrderModel) error {
	var aveugle usermodel.UserModel
	if err := db.First(&aveugle, m.AveugleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Reference("aveugle_id", "patron does not exist")
		}
		return err
	}
	if aveugle.Role != constants.RoleAveugle {
		return apperr.Reference("aveugle_id", "user is not a patron")
	}

	if err := db.First(&cataloguemodel.OuvrageModel{}, m.OuvrageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Reference("ouvrage_id", "catalogue entry does not exist")
		}
		return err
	}
	if err := db.First(&refmodel.StatusModel{}, m.StatusID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Reference("status_id", "status does not exist")
		}
		return err
	}
	if err := db.First(&refmodel.MediaFormatModel{}, m.MediaFormatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Reference("media_format_id", "media format does not exist")
		}
		return err
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

// validateOrderRow enforces the write-time invariants on the final row state.
func validateOrderRow(m *ordermodel.OrderModel) error {
	fields := map[string]string{}
	if !ordermodel.IsValidDeliveryMethod(m.DeliveryMethod) {
		fields["delivery_method"] = "must be pickup, mail or none"
	}
	if m.ClosureDate != nil && !m.CreatedAt.IsZero() &&
		dateOnly(*m.ClosureDate).Before(dateOnly(m.CreatedAt)) {
		fields["closure_date"] = "must be on or after the creation date"
	}
	if m.Cost != nil && m.Cost.IsNegative() {
		fields["cost"] = "must not be negative"
	}
	if len(fields) > 0 {
		return apperr.Validation("invalid order", fields)
	}
	return nil
}

func orderPreloads(q *gorm.DB, mode helper.ViewMode) *gorm.DB {
	q = q.Preload("Aveugle").Preload("Ouvrage").Preload("Status").Preload("MediaFormat")
	if mode == helper.ModeDetailed || mode == helper.ModeFull {
		q = q.Preload("ProcessedBy").Preload("Bill").Preload("Bill.State")
	}
	return q
}

// loadOrderResponse resolves the order at the requested depth.
func (h *OrderHandler) loadOrderResponse(db *gorm.DB, id uint, mode helper.ViewMode) (*dto.OrderDetailResponse, error) {
	var order ordermodel.OrderModel
	if err := orderPreloads(db, mode).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order", id)
		}
		return nil, err
	}
	resp := &dto.OrderDetailResponse{OrderModel: order}

	if mode == helper.ModeDetailed || mode == helper.ModeFull {
		var assignments []assignmentmodel.AssignmentModel
		q := db.Where("order_id = ?", id).Order("id ASC").Preload("Status")
		if err := q.Find(&assignments).Error; err != nil {
			return nil, err
		}
		for _, a := range assignments {
			item := dto.AssignmentWithReaders{AssignmentModel: a}
			if mode == helper.ModeFull {
				if err := db.Where("assignment_id = ?", a.ID).
					Order("assigned_at DESC, id DESC").
					Preload("Lecteur").
					Find(&item.Readers).Error; err != nil {
					return nil, err
				}
			}
			resp.Assignments = append(resp.Assignments, item)
		}
	}
	return resp, nil
}

/* =======================================================
   CREATE
======================================================= */

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var body dto.OrderCreateDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	order := body.ToModel()
	if err := validateOrderRow(&order); err != nil {
		return helper.FromError(c, err)
	}
	if err := checkOrderRefs(h.DB, &order); err != nil {
		return helper.FromError(c, err)
	}
	if err := h.DB.Create(&order).Error; err != nil {
		return helper.FromError(c, err)
	}

	resp, err := h.loadOrderResponse(h.DB, order.ID, helper.ModeBasic)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "order created", resp)
}

/* =======================================================
   READ
======================================================= */

func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	mode, err := helper.ParseMode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	resp, err := h.loadOrderResponse(h.DB, id, mode)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "order", resp)
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	filter, err := dto.ParseOrderListFilter(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	page := helper.ParsePage(c)
	now := time.Now()

	base := filter.Apply(h.DB.Model(&ordermodel.OrderModel{}), now)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.FromError(c, err)
	}

	var orders []ordermodel.OrderModel
	q := orderPreloads(base.Session(&gorm.Session{}), helper.ModeBasic).
		Order("orders.request_received_date DESC, orders.id DESC").
		Limit(page.Limit()).
		Offset(page.Offset())
	if err := q.Find(&orders).Error; err != nil {
		return helper.FromError(c, err)
	}

	return helper.Success(c, "orders", fiber.Map{
		"orders":     orders,
		"pagination": helper.BuildMeta(total, page),
	})
}

/* =======================================================
   UPDATE
======================================================= */

// Replace is the full-update path: every mutable field comes from the body,
// omitted optional fields become nulls.
func (h *OrderHandler) Replace(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var body dto.OrderReplaceDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var order ordermodel.OrderModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("order", id)
			}
			return err
		}
		body.ApplyTo(&order)
		if err := validateOrderRow(&order); err != nil {
			return err
		}
		if err := checkOrderRefs(tx, &order); err != nil {
			return err
		}
		return tx.Save(&order).Error
	})
	if txErr != nil {
		return helper.FromError(c, txErr)
	}

	resp, err := h.loadOrderResponse(h.DB, id, helper.ModeBasic)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "order replaced", resp)
}

// Patch mutates only the fields present in the body; explicit null clears.
func (h *OrderHandler) Patch(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var body dto.OrderPatchDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	// Non-nullable columns cannot be cleared.
	fields := map[string]string{}
	for name, f := range map[string]bool{
		"aveugle_id":            body.AveugleID.Null,
		"ouvrage_id":            body.OuvrageID.Null,
		"request_received_date": body.RequestReceivedDate.Null,
		"status_id":             body.StatusID.Null,
		"media_format_id":       body.MediaFormatID.Null,
		"delivery_method":       body.DeliveryMethod.Null,
		"is_duplication":        body.IsDuplication.Null,
		"lent_physical_book":    body.LentPhysicalBook.Null,
	} {
		if f {
			fields[name] = "cannot be null"
		}
	}
	if len(fields) > 0 {
		return helper.FromError(c, apperr.Validation("invalid order", fields))
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var order ordermodel.OrderModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("order", id)
			}
			return err
		}
		body.ApplyTo(&order)
		if err := validateOrderRow(&order); err != nil {
			return err
		}
		if err := checkOrderRefs(tx, &order); err != nil {
			return err
		}
		return tx.Save(&order).Error
	})
	if txErr != nil {
		return helper.FromError(c, txErr)
	}

	resp, err := h.loadOrderResponse(h.DB, id, helper.ModeBasic)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "order updated", resp)
}

/* =======================================================
   DELETE
======================================================= */

// Delete refuses while assignments exist; the count is re-checked inside the
// same transaction as the delete so a concurrent assignment create cannot
// slip between check and act.
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var order ordermodel.OrderModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("order", id)
			}
			return err
		}

		var assignmentCount int64
		if err := tx.Model(&assignmentmodel.AssignmentModel{}).
			Where("order_id = ?", id).
			Count(&assignmentCount).Error; err != nil {
			return err
		}
		if assignmentCount > 0 {
			return apperr.Conflict("order has assignments, remove them first",
				map[string]any{"assignment_count": assignmentCount})
		}
		return tx.Delete(&ordermodel.OrderModel{}, id).Error
	})
	if txErr != nil {
		return helper.FromError(c, txErr)
	}
	return helper.Success(c, "order deleted", fiber.Map{"id": id})
}
