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
	"github.com/spec-kit/sro-service/pkg/util/errorutil"
)

var scheduleAccessors = query.Accessors[domain.Schedule]{
	Text: []func(domain.Schedule) string{
		func(s domain.Schedule) string { return s.Number },
	},
	Status:    func(s domain.Schedule) string { return string(s.Status) },
	Timestamp: func(s domain.Schedule) (time.Time, bool) { return s.CreatedAt, !s.CreatedAt.IsZero() },
	Number:    func(s domain.Schedule) string { return s.Number },
}

// SchedulesHandler manages schedule endpoints.
type SchedulesHandler struct {
	lifecycle *service.LifecycleService
	cache     *cache.Store
}

// NewSchedulesHandler constructs handler.
func NewSchedulesHandler(lifecycle *service.LifecycleService, store *cache.Store) *SchedulesHandler {
	return &SchedulesHandler{lifecycle: lifecycle, cache: store}
}

// List GET /schedules.
func (h *SchedulesHandler) List(c *fiber.Ctx) error {
	spec, err := parseQuerySpec(c)
	if err != nil {
		return err
	}
	schedules, err := cache.Fetch(c.Context(), h.cache, cache.KeyScheduleList, func(ctx context.Context) ([]domain.Schedule, error) {
		return h.lifecycle.ListSchedules(ctx)
	})
	if err != nil {
		return err
	}

	result := query.Run(schedules, scheduleAccessors, spec)
	items := make([]dto.ScheduleResponse, 0, len(result.Records))
	for i := range result.Records {
		items = append(items, scheduleResponse(&result.Records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /schedules/:id.
func (h *SchedulesHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	schedule, err := cache.Fetch(c.Context(), h.cache, cache.ScheduleDetailKey(id), func(ctx context.Context) (*domain.Schedule, error) {
		return h.lifecycle.GetSchedule(ctx, id)
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": scheduleResponse(schedule)})
}

// Patch PATCH /schedules/:id.
func (h *SchedulesHandler) Patch(c *fiber.Ctx) error {
	var req dto.PatchScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	schedule, err := h.lifecycle.UpdateSchedule(c.Context(), c.Params("id"), service.SchedulePatch{
		SROID:           req.SROID,
		FinancePriority: req.FinancePriority,
		OpsPriority:     req.OpsPriority,
		QAPriority:      req.QAPriority,
		Risk:            req.Risk,
		Difficulty:      req.Difficulty,
		EquipmentTypeID: req.EquipmentTypeID,
		ResourceID:      req.ResourceID,
		Status:          req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": scheduleResponse(schedule)})
}

func scheduleResponse(schedule *domain.Schedule) dto.ScheduleResponse {
	return dto.ScheduleResponse{
		ID:              schedule.ID,
		Number:          schedule.Number,
		SROID:           schedule.SROID,
		FinancePriority: schedule.FinancePriority,
		OpsPriority:     schedule.OpsPriority,
		QAPriority:      schedule.QAPriority,
		AveragePriority: schedule.AveragePriority(),
		Risk:            schedule.Risk,
		Difficulty:      schedule.Difficulty,
		EquipmentTypeID: schedule.EquipmentTypeID,
		ResourceID:      schedule.ResourceID,
		Status:          schedule.Status,
		CreatedAt:       schedule.CreatedAt,
		UpdatedAt:       schedule.UpdatedAt,
	}
}
