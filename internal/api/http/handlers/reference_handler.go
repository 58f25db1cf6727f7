package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sro-service/internal/api/dto"
	"github.com/spec-kit/sro-service/internal/cache"
	"github.com/spec-kit/sro-service/internal/domain"
	"github.com/spec-kit/sro-service/internal/service"
	"github.com/spec-kit/sro-service/pkg/util/errorutil"
)

// ReferenceHandler serves the dropdown collections.
type ReferenceHandler struct {
	reference *service.ReferenceService
	cache     *cache.Store
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(reference *service.ReferenceService, store *cache.Store) *ReferenceHandler {
	return &ReferenceHandler{reference: reference, cache: store}
}

// ListCustomers GET /reference/customers.
func (h *ReferenceHandler) ListCustomers(c *fiber.Ctx) error {
	customers, err := cache.Fetch(c.Context(), h.cache, cache.KeyCustomers, func(ctx context.Context) ([]domain.Customer, error) {
		return h.reference.ListCustomers(ctx)
	})
	if err != nil {
		return err
	}
	items := make([]dto.CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		items = append(items, dto.CustomerResponse{ID: customer.ID, Name: customer.Name, Country: customer.Country})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListRigs GET /reference/rigs.
func (h *ReferenceHandler) ListRigs(c *fiber.Ctx) error {
	rigs, err := cache.Fetch(c.Context(), h.cache, cache.KeyRigs, func(ctx context.Context) ([]domain.Rig, error) {
		return h.reference.ListRigs(ctx)
	})
	if err != nil {
		return err
	}
	items := make([]dto.RigResponse, 0, len(rigs))
	for _, rig := range rigs {
		items = append(items, dto.RigResponse{ID: rig.ID, CustomerID: rig.CustomerID, Number: rig.Number})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListWells GET /reference/wells.
func (h *ReferenceHandler) ListWells(c *fiber.Ctx) error {
	wells, err := cache.Fetch(c.Context(), h.cache, cache.KeyWells, func(ctx context.Context) ([]domain.Well, error) {
		return h.reference.ListWells(ctx)
	})
	if err != nil {
		return err
	}
	items := make([]dto.WellResponse, 0, len(wells))
	for _, well := range wells {
		items = append(items, wellResponse(well))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListEquipmentTypes GET /reference/equipment-types.
func (h *ReferenceHandler) ListEquipmentTypes(c *fiber.Ctx) error {
	types, err := cache.Fetch(c.Context(), h.cache, cache.KeyEquipmentTypes, func(ctx context.Context) ([]domain.EquipmentType, error) {
		return h.reference.ListEquipmentTypes(ctx)
	})
	if err != nil {
		return err
	}
	items := make([]dto.EquipmentTypeResponse, 0, len(types))
	for _, et := range types {
		items = append(items, dto.EquipmentTypeResponse{ID: et.ID, Name: et.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateWell POST /reference/wells. Invalidates the wells collection only.
func (h *ReferenceHandler) CreateWell(c *fiber.Ctx) error {
	var req dto.CreateWellRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	well, err := h.reference.CreateWell(c.Context(), service.WellCreateInput{
		Name:      req.Name,
		FieldName: req.FieldName,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": wellResponse(*well)})
}

func wellResponse(well domain.Well) dto.WellResponse {
	return dto.WellResponse{
		ID:        well.ID,
		Name:      well.Name,
		FieldName: well.FieldName,
		Latitude:  well.Latitude,
		Longitude: well.Longitude,
	}
}
