package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sro-service/internal/api/dto"
	"github.com/spec-kit/sro-service/internal/cache"
	"github.com/spec-kit/sro-service/internal/domain"
	"github.com/spec-kit/sro-service/internal/query"
	"github.com/spec-kit/sro-service/internal/service"
)

var sroAccessors = query.Accessors[domain.SRO]{
	Text: []func(domain.SRO) string{
		func(s domain.SRO) string { return s.Number },
		func(s domain.SRO) string { return s.CustomerID },
	},
	Status:    func(s domain.SRO) string { return string(s.Status) },
	Timestamp: func(s domain.SRO) (time.Time, bool) { return s.CreatedAt, !s.CreatedAt.IsZero() },
	Number:    func(s domain.SRO) string { return s.Number },
}

// SROsHandler manages service request order endpoints.
type SROsHandler struct {
	lifecycle *service.LifecycleService
	cache     *cache.Store
}

// NewSROsHandler constructs handler.
func NewSROsHandler(lifecycle *service.LifecycleService, store *cache.Store) *SROsHandler {
	return &SROsHandler{lifecycle: lifecycle, cache: store}
}

// List GET /sros.
func (h *SROsHandler) List(c *fiber.Ctx) error {
	spec, err := parseQuerySpec(c)
	if err != nil {
		return err
	}
	sros, err := cache.Fetch(c.Context(), h.cache, cache.KeySROList, func(ctx context.Context) ([]domain.SRO, error) {
		return h.lifecycle.ListSROs(ctx)
	})
	if err != nil {
		return err
	}

	result := query.Run(sros, sroAccessors, spec)
	items := make([]dto.SROResponse, 0, len(result.Records))
	for i := range result.Records {
		items = append(items, sroResponse(&result.Records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /sros/:id.
func (h *SROsHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	sro, err := cache.Fetch(c.Context(), h.cache, cache.SRODetailKey(id), func(ctx context.Context) (*domain.SRO, error) {
		return h.lifecycle.GetSRO(ctx, id)
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sroResponse(sro)})
}

// Approve POST /sros/:id/approve. Idempotent: a repeat call returns the
// approved SRO and existing schedule without creating a second one.
func (h *SROsHandler) Approve(c *fiber.Ctx) error {
	result, err := h.lifecycle.ApproveSRO(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	resp := dto.ApprovalResponse{
		SRO:             sroResponse(result.SRO),
		ScheduleCreated: result.ScheduleCreated,
	}
	if result.Schedule != nil {
		schedule := scheduleResponse(result.Schedule)
		resp.Schedule = &schedule
	}
	return c.JSON(fiber.Map{"data": resp})
}

func sroResponse(sro *domain.SRO) dto.SROResponse {
	return dto.SROResponse{
		ID:            sro.ID,
		Number:        sro.Number,
		CalloutID:     sro.CalloutID,
		CustomerID:    sro.CustomerID,
		Status:        sro.Status,
		DisplayStatus: sro.DisplayStatus(),
		CreatedAt:     sro.CreatedAt,
		UpdatedAt:     sro.UpdatedAt,
	}
}
