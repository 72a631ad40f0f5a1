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
	"eca_backend/internals/features/bills/dto"
	billmodel "eca_backend/internals/features/bills/model"
	ordermodel "eca_backend/internals/features/orders/model"
	refmodel "eca_backend/internals/features/reference/model"
	usermodel "eca_backend/internals/features/users/model"
	helper "eca_backend/internals/helpers"
)

var validate = validator.New()

type BillHandler struct {
	DB *gorm.DB
}

func NewBillHandler(db *gorm.DB) *BillHandler {
	return &BillHandler{DB: db}
}

/* =======================================================
   INTERNAL
======================================================= */

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func checkBillRefs(db *gorm.DB, m *billmodel.BillModel) error {
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
	if err := db.First(&refmodel.BillStateModel{}, m.StateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Reference("state_id", "bill state does not exist")
		}
		return err
	}
	return nil
}

func validateBillRow(m *billmodel.BillModel) error {
	fields := map[string]string{}
	if m.InvoiceAmount.IsNegative() {
		fields["invoice_amount"] = "must not be negative"
	}
	if m.IssueDate != nil && dateOnly(*m.IssueDate).Before(dateOnly(m.CreationDate)) {
		fields["issue_date"] = "must be on or after the creation date"
	}
	if m.PaymentDate != nil {
		ref := m.CreationDate
		if m.IssueDate != nil {
			ref = *m.IssueDate
		}
		if dateOnly(*m.PaymentDate).Before(dateOnly(ref)) {
			fields["payment_date"] = "must be on or after the issue date"
		}
	}
	if len(fields) > 0 {
		return apperr.Validation("invalid bill", fields)
	}
	return nil
}

func billPreloads(q *gorm.DB, mode helper.ViewMode) *gorm.DB {
	q = q.Preload("Aveugle").Preload("State")
	return q
}

func (h *BillHandler) loadBillResponse(db *gorm.DB, id uint, mode helper.ViewMode) (*dto.BillDetailResponse, error) {
	var bill billmodel.BillModel
	if err := billPreloads(db, mode).First(&bill, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("bill", id)
		}
		return nil, err
	}
	resp := &dto.BillDetailResponse{BillModel: bill}

	if mode == helper.ModeDetailed || mode == helper.ModeFull {
		q := db.Where("bill_id = ?", id).Order("id ASC")
		if mode == helper.ModeFull {
			q = q.Preload("Ouvrage").Preload("Status").Preload("MediaFormat")
		}
		if err := q.Find(&resp.Orders).Error; err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// isPaid reports whether the bill is in the payee state.
func isPaid(db *gorm.DB, bill *billmodel.BillModel) (bool, error) {
	var state refmodel.BillStateModel
	if err := db.First(&state, bill.StateID).Error; err != nil {
		return false, err
	}
	return state.Code == refmodel.BillStateCodePayee, nil
}

/* =======================================================
   CREATE
======================================================= */

func (h *BillHandler) Create(c *fiber.Ctx) error {
	var body dto.BillCreateDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	bill := body.ToModel(time.Now())
	if err := validateBillRow(&bill); err != nil {
		return helper.FromError(c, err)
	}
	if err := checkBillRefs(h.DB, &bill); err != nil {
		return helper.FromError(c, err)
	}
	if err := h.DB.Create(&bill).Error; err != nil {
		return helper.FromError(c, err)
	}

	resp, err := h.loadBillResponse(h.DB, bill.ID, helper.ModeBasic)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "bill created", resp)
}

/* =======================================================
   READ
======================================================= */

func (h *BillHandler) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	mode, err := helper.ParseMode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	resp, err := h.loadBillResponse(h.DB, id, mode)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "bill", resp)
}

func (h *BillHandler) List(c *fiber.Ctx) error {
	page := helper.ParsePage(c)
	q := h.DB.Model(&billmodel.BillModel{})

	if v := c.Query("aveugle_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return helper.FromError(c, apperr.Validation("invalid filter", map[string]string{"aveugle_id": "must be an integer"}))
		}
		q = q.Where("aveugle_id = ?", uint(id))
	}
	if v := c.Query("state_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return helper.FromError(c, apperr.Validation("invalid filter", map[string]string{"state_id": "must be an integer"}))
		}
		q = q.Where("state_id = ?", uint(id))
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.FromError(c, err)
	}

	var bills []billmodel.BillModel
	if err := billPreloads(q.Session(&gorm.Session{}), helper.ModeBasic).
		Order("creation_date DESC, id DESC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&bills).Error; err != nil {
		return helper.FromError(c, err)
	}

	return helper.Success(c, "bills", fiber.Map{
		"bills":      bills,
		"pagination": helper.BuildMeta(total, page),
	})
}

/* =======================================================
   UPDATE
======================================================= */

func (h *BillHandler) Patch(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var body dto.BillPatchDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	fields := map[string]string{}
	if body.StateID.Null {
		fields["state_id"] = "cannot be null"
	}
	if body.InvoiceAmount.Null {
		fields["invoice_amount"] = "cannot be null"
	}
	if len(fields) > 0 {
		return helper.FromError(c, apperr.Validation("invalid bill", fields))
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var bill billmodel.BillModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&bill, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("bill", id)
			}
			return err
		}
		body.ApplyTo(&bill)

		// The paid transition fans out to orders; it only happens through the
		// pay endpoint.
		if body.StateID.Set() {
			var state refmodel.BillStateModel
			if err := tx.First(&state, bill.StateID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.Reference("state_id", "bill state does not exist")
				}
				return err
			}
			if state.Code == refmodel.BillStateCodePayee {
				return apperr.Conflict("mark the bill paid through the pay operation", nil)
			}
		}

		if err := validateBillRow(&bill); err != nil {
			return err
		}
		if err := checkBillRefs(tx, &bill); err != nil {
			return err
		}
		return tx.Save(&bill).Error
	})
	if txErr != nil {
		return helper.FromError(c, txErr)
	}

	resp, err := h.loadBillResponse(h.DB, id, helper.ModeBasic)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "bill updated", resp)
}

/* =======================================================
   ATTACH ORDERS
======================================================= */

// AttachOrders links a batch of unbilled orders to the bill: billing_status
// BILLED + bill_id on every target, atomically — a partially billed batch
// never survives the transaction.
func (h *BillHandler) AttachOrders(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var body dto.AttachOrdersDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var bill billmodel.BillModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&bill, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("bill", id)
			}
			return err
		}
		if paid, err := isPaid(tx, &bill); err != nil {
			return err
		} else if paid {
			return apperr.Conflict("bill is already paid", nil)
		}

		for _, orderID := range body.OrderIDs {
			var order ordermodel.OrderModel
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.Reference("order_ids", "order "+strconv.Itoa(int(orderID))+" does not exist")
				}
				return err
			}
			if order.AveugleID != bill.AveugleID {
				return apperr.Conflict("order belongs to another patron",
					map[string]any{"order_id": orderID})
			}
			if order.BillingStatus != ordermodel.BillingStatusUnbilled {
				return apperr.Conflict("order is already billed",
					map[string]any{"order_id": orderID})
			}

			order.BillingStatus = ordermodel.BillingStatusBilled
			order.BillID = &bill.ID
			if err := tx.Save(&order).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return helper.FromError(c, txErr)
	}

	resp, err := h.loadBillResponse(h.DB, id, helper.ModeDetailed)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "orders attached", resp)
}

/* =======================================================
   MARK PAID
======================================================= */

// MarkPaid transitions the bill to payee and fans billing_status=PAID out to
// every referencing order. One transaction: a crash can never leave the bill
// paid with its orders stuck at BILLED, or the reverse.
func (h *BillHandler) MarkPaid(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var body dto.MarkPaidDTO
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var bill billmodel.BillModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&bill, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("bill", id)
			}
			return err
		}
		if paid, err := isPaid(tx, &bill); err != nil {
			return err
		} else if paid {
			return apperr.Conflict("bill is already paid", nil)
		}

		var payee refmodel.BillStateModel
		if err := tx.Where("code = ?", refmodel.BillStateCodePayee).First(&payee).Error; err != nil {
			return apperr.Transaction("paid state is missing from reference data")
		}

		when := time.Now()
		if body.PaymentDate != nil {
			when = *body.PaymentDate
		}
		paymentDate := dateOnly(when)
		bill.StateID = payee.ID
		bill.PaymentDate = &paymentDate
		if err := validateBillRow(&bill); err != nil {
			return err
		}
		if err := tx.Save(&bill).Error; err != nil {
			return err
		}

		// Fan-out to the attached orders only; nothing outside the bill moves.
		return tx.Model(&ordermodel.OrderModel{}).
			Where("bill_id = ?", bill.ID).
			Update("billing_status", ordermodel.BillingStatusPaid).Error
	})
	if txErr != nil {
		return helper.FromError(c, txErr)
	}

	resp, err := h.loadBillResponse(h.DB, id, helper.ModeDetailed)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "bill paid", resp)
}

/* =======================================================
   DELETE
======================================================= */

func (h *BillHandler) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var bill billmodel.BillModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&bill, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("bill", id)
			}
			return err
		}

		var orderCount int64
		if err := tx.Model(&ordermodel.OrderModel{}).
			Where("bill_id = ?", id).
			Count(&orderCount).Error; err != nil {
			return err
		}
		if orderCount > 0 {
			return apperr.Conflict("orders still reference this bill",
				map[string]any{"order_count": orderCount})
		}
		return tx.Delete(&billmodel.BillModel{}, id).Error
	})
	if txErr != nil {
		return helper.FromError(c, txErr)
	}
	return helper.Success(c, "bill deleted", fiber.Map{"id": id})
}
