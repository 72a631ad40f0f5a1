package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eca_backend/internals/apperr"
	"eca_backend/internals/constants"
	assignmentmodel "eca_backend/internals/features/assignments/model"
	billmodel "eca_backend/internals/features/bills/model"
	ordermodel "eca_backend/internals/features/orders/model"
	"eca_backend/internals/features/users/dto"
	usermodel "eca_backend/internals/features/users/model"
	helper "eca_backend/internals/helpers"
)

var validate = validator.New()

type UserHandler struct {
	DB *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var body dto.UserCreateDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}
	if !constants.IsValidRole(body.Role) {
		return helper.FromError(c, apperr.Validation("invalid user", map[string]string{
			"role": "must be admin, benevole, lecteur or aveugle",
		}))
	}

	user := body.ToModel()
	if body.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
		if err != nil {
			return helper.FromError(c, err)
		}
		user.Password = string(hash)
	}

	if err := h.DB.Create(&user).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint") {
			return helper.FromError(c, apperr.Conflict("email is already registered",
				map[string]any{"email": user.Email}))
		}
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "user created", user)
}

func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var user usermodel.UserModel
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.FromError(c, apperr.NotFound("user", id))
		}
		return helper.FromError(c, err)
	}
	return helper.Success(c, "user", user)
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	page := helper.ParsePage(c)
	q := h.DB.Model(&usermodel.UserModel{})

	if role := c.Query("role"); role != "" {
		if !constants.IsValidRole(role) {
			return helper.FromError(c, apperr.Validation("invalid filter", map[string]string{
				"role": "must be admin, benevole, lecteur or aveugle",
			}))
		}
		q = q.Where("role = ?", role)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pat := "%" + search + "%"
		q = q.Where("(full_name ILIKE ? OR email ILIKE ?)", pat, pat)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.FromError(c, err)
	}

	var users []usermodel.UserModel
	if err := q.Session(&gorm.Session{}).
		Order("full_name ASC, id ASC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&users).Error; err != nil {
		return helper.FromError(c, err)
	}

	return helper.Success(c, "users", fiber.Map{
		"users":      users,
		"pagination": helper.BuildMeta(total, page),
	})
}

func (h *UserHandler) Patch(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var body dto.UserPatchDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	fields := map[string]string{}
	if body.FullName.Null {
		fields["full_name"] = "cannot be null"
	}
	if body.Email.Null {
		fields["email"] = "cannot be null"
	}
	if body.IsActive.Null {
		fields["is_active"] = "cannot be null"
	}
	if len(fields) > 0 {
		return helper.FromError(c, apperr.Validation("invalid user", fields))
	}

	var user usermodel.UserModel
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("user", id)
			}
			return err
		}
		body.ApplyTo(&user)
		return tx.Save(&user).Error
	})
	if txErr != nil {
		return helper.FromError(c, txErr)
	}
	return helper.Success(c, "user updated", user)
}

// Delete refuses while orders, ledger rows or bills still reference the user.
// Actors are deactivated day to day; deletion is for records created in error.
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var user usermodel.UserModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("user", id)
			}
			return err
		}

		var orderCount, processedOrderCount, readerCount, processedAssignmentCount, billCount int64
		if err := tx.Model(&ordermodel.OrderModel{}).Where("aveugle_id = ?", id).Count(&orderCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&ordermodel.OrderModel{}).Where("processed_by_id = ?", id).Count(&processedOrderCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&assignmentmodel.AssignmentReaderModel{}).Where("lecteur_id = ?", id).Count(&readerCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&assignmentmodel.AssignmentModel{}).Where("processed_by_id = ?", id).Count(&processedAssignmentCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&billmodel.BillModel{}).Where("aveugle_id = ?", id).Count(&billCount).Error; err != nil {
			return err
		}
		if orderCount+processedOrderCount+readerCount+processedAssignmentCount+billCount > 0 {
			return apperr.Conflict("user is still referenced", map[string]any{
				"order_count":                orderCount,
				"processed_order_count":      processedOrderCount,
				"reader_count":               readerCount,
				"processed_assignment_count": processedAssignmentCount,
				"bill_count":                 billCount,
			})
		}
		return tx.Delete(&usermodel.UserModel{}, id).Error
	})
	if txErr != nil {
		return helper.FromError(c, txErr)
	}
	return helper.Success(c, "user deleted", fiber.Map{"id": id})
}
