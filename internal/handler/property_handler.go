package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"property-web/internal/repository"
	"property-web/internal/utils"
)

type PropertyHandler struct {
	propertyRepo *repository.PropertyRepository
}

func NewPropertyHandler(propertyRepo *repository.PropertyRepository) *PropertyHandler {
	return &PropertyHandler{propertyRepo: propertyRepo}
}

func (h *PropertyHandler) GetProperties(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	properties, total, err := h.propertyRepo.GetProperties(params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve properties", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	return utils.PaginatedResponseBuilder(c, "Properties retrieved successfully", fiber.Map{
		"properties": properties,
	}, pagination)
}

func (h *PropertyHandler) GetProperty(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid property ID", err)
	}

	property, err := h.propertyRepo.GetPropertyByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Property not found", err)
	}

	return utils.SuccessResponse(c, "Property retrieved successfully", property)
}

func (h *PropertyHandler) GetPropertyUnits(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid property ID", err)
	}

	property, err := h.propertyRepo.GetPropertyByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Property not found", err)
	}

	units, err := h.propertyRepo.GetUnitsByProperty(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve units", err)
	}

	return utils.SuccessResponse(c, "Units retrieved successfully", fiber.Map{
		"property": property,
		"units":    units,
	})
}
