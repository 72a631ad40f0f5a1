package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eca_backend/internals/apperr"
	"eca_backend/internals/features/catalogue/dto"
	cataloguemodel "eca_backend/internals/features/catalogue/model"
	ordermodel "eca_backend/internals/features/orders/model"
	helper "eca_backend/internals/helpers"
)

var validate = validator.New()

type OuvrageHandler struct {
	DB *gorm.DB
}

func NewOuvrageHandler(db *gorm.DB) *OuvrageHandler {
	return &OuvrageHandler{DB: db}
}

func (h *OuvrageHandler) Create(c *fiber.Ctx) error {
	var body dto.OuvrageCreateDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	ouvrage := body.ToModel()
	if err := h.DB.Create(&ouvrage).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "ouvrage created", ouvrage)
}

func (h *OuvrageHandler) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var ouvrage cataloguemodel.OuvrageModel
	if err := h.DB.First(&ouvrage, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.FromError(c, apperr.NotFound("ouvrage", id))
		}
		return helper.FromError(c, err)
	}
	return helper.Success(c, "ouvrage", ouvrage)
}

func (h *OuvrageHandler) List(c *fiber.Ctx) error {
	page := helper.ParsePage(c)
	q := h.DB.Model(&cataloguemodel.OuvrageModel{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pat := "%" + search + "%"
		q = q.Where("(title ILIKE ? OR author ILIKE ?)", pat, pat)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.FromError(c, err)
	}

	var ouvrages []cataloguemodel.OuvrageModel
	if err := q.Session(&gorm.Session{}).
		Order("title ASC, id ASC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&ouvrages).Error; err != nil {
		return helper.FromError(c, err)
	}

	return helper.Success(c, "ouvrages", fiber.Map{
		"ouvrages":   ouvrages,
		"pagination": helper.BuildMeta(total, page),
	})
}

func (h *OuvrageHandler) Patch(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var body dto.OuvragePatchDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	fields := map[string]string{}
	if body.Title.Null {
		fields["title"] = "cannot be null"
	}
	if body.Author.Null {
		fields["author"] = "cannot be null"
	}
	if len(fields) > 0 {
		return helper.FromError(c, apperr.Validation("invalid ouvrage", fields))
	}

	var ouvrage cataloguemodel.OuvrageModel
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ouvrage, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("ouvrage", id)
			}
			return err
		}
		body.ApplyTo(&ouvrage)
		return tx.Save(&ouvrage).Error
	})
	if txErr != nil {
		return helper.FromError(c, txErr)
	}
	return helper.Success(c, "ouvrage updated", ouvrage)
}

func (h *OuvrageHandler) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var ouvrage cataloguemodel.OuvrageModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ouvrage, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("ouvrage", id)
			}
			return err
		}

		var orderCount int64
		if err := tx.Model(&ordermodel.OrderModel{}).Where("ouvrage_id = ?", id).Count(&orderCount).Error; err != nil {
			return err
		}
		if orderCount > 0 {
			return apperr.Conflict("orders still reference this ouvrage",
				map[string]any{"order_count": orderCount})
		}
		return tx.Delete(&cataloguemodel.OuvrageModel{}, id).Error
	})
	if txErr != nil {
		return helper.FromError(c, txErr)
	}
	return helper.Success(c, "ouvrage deleted", fiber.Map{"id": id})
}
