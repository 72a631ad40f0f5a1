package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	refmodel "eca_backend/internals/features/reference/model"
	helper "eca_backend/internals/helpers"
)

// ReferenceHandler serves the closed vocabularies the list screens and forms
// consume. Rows are operator data; these endpoints are read-only.
type ReferenceHandler struct {
	DB *gorm.DB
}

func NewReferenceHandler(db *gorm.DB) *ReferenceHandler {
	return &ReferenceHandler{DB: db}
}

func (h *ReferenceHandler) ListStatuses(c *fiber.Ctx) error {
	var statuses []refmodel.StatusModel
	if err := h.DB.Order("id ASC").Find(&statuses).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "statuses", statuses)
}

func (h *ReferenceHandler) ListMediaFormats(c *fiber.Ctx) error {
	var formats []refmodel.MediaFormatModel
	if err := h.DB.Order("id ASC").Find(&formats).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "media formats", formats)
}

func (h *ReferenceHandler) ListBillStates(c *fiber.Ctx) error {
	var states []refmodel.BillStateModel
	if err := h.DB.Order("id ASC").Find(&states).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "bill states", states)
}
