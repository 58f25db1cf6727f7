package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sro-service/internal/api/dto"
	"github.com/spec-kit/sro-service/internal/cache"
	"github.com/spec-kit/sro-service/internal/domain"
	"github.com/spec-kit/sro-service/internal/query"
	"github.com/spec-kit/sro-service/internal/service"
	"github.com/spec-kit/sro-service/pkg/util/errorutil"
)

// calloutAccessors binds callout records to the query engine; shared by the
// list view and the calendar view.
var calloutAccessors = query.Accessors[domain.CalloutDetail]{
	Text: []func(domain.CalloutDetail) string{
		func(c domain.CalloutDetail) string { return c.Number },
		func(c domain.CalloutDetail) string { return c.RigNumber },
		func(c domain.CalloutDetail) string { return c.FieldName },
		func(c domain.CalloutDetail) string { return c.Notes },
	},
	Status:    func(c domain.CalloutDetail) string { return string(c.Status) },
	Timestamp: func(c domain.CalloutDetail) (time.Time, bool) { return c.CreatedAt, !c.CreatedAt.IsZero() },
	Number:    func(c domain.CalloutDetail) string { return c.Number },
}

// CalloutsHandler manages callout endpoints.
type CalloutsHandler struct {
	lifecycle *service.LifecycleService
	cache     *cache.Store
}

// NewCalloutsHandler constructs handler.
func NewCalloutsHandler(lifecycle *service.LifecycleService, store *cache.Store) *CalloutsHandler {
	return &CalloutsHandler{lifecycle: lifecycle, cache: store}
}

// Create POST /callouts.
func (h *CalloutsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCalloutRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	callout, err := h.lifecycle.CreateCallout(c.Context(), service.CalloutCreateInput{
		CustomerID:      req.CustomerID,
		RigNumber:       req.RigNumber,
		FieldName:       req.FieldName,
		WellID:          req.WellID,
		HoleSection:     req.HoleSection,
		ServiceCategory: req.ServiceCategory,
		SurveyOptions:   req.SurveyOptions,
		StartDepth:      req.StartDepth,
		EndDepth:        req.EndDepth,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Notes:           req.Notes,
		CreatedBy:       c.Get("X-Requested-By"),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": calloutResponse(domain.CalloutDetail{Callout: *callout})})
}

// List GET /callouts.
func (h *CalloutsHandler) List(c *fiber.Ctx) error {
	spec, err := parseQuerySpec(c)
	if err != nil {
		return err
	}
	callouts, err := cache.Fetch(c.Context(), h.cache, cache.KeyCalloutList, func(ctx context.Context) ([]domain.CalloutDetail, error) {
		return h.lifecycle.ListCallouts(ctx)
	})
	if err != nil {
		return err
	}

	result := query.Run(callouts, calloutAccessors, spec)
	items := make([]dto.CalloutResponse, 0, len(result.Records))
	for _, callout := range result.Records {
		items = append(items, calloutResponse(callout))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /callouts/:id.
func (h *CalloutsHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	detail, err := cache.Fetch(c.Context(), h.cache, cache.CalloutDetailKey(id), func(ctx context.Context) (*domain.CalloutDetail, error) {
		return h.lifecycle.GetCallout(ctx, id)
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": calloutResponse(*detail)})
}

// Patch PATCH /callouts/:id.
func (h *CalloutsHandler) Patch(c *fiber.Ctx) error {
	var req dto.PatchCalloutRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	detail, err := h.lifecycle.EditCallout(c.Context(), c.Params("id"), service.CalloutPatch{
		CustomerID:      req.CustomerID,
		RigNumber:       req.RigNumber,
		FieldName:       req.FieldName,
		WellID:          req.WellID,
		HoleSection:     req.HoleSection,
		ServiceCategory: req.ServiceCategory,
		SurveyOptions:   req.SurveyOptions,
		StartDepth:      req.StartDepth,
		EndDepth:        req.EndDepth,
		ClearDepths:     req.ClearDepths,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": calloutResponse(*detail)})
}

// GenerateSRO POST /callouts/:id/generate-sro.
func (h *CalloutsHandler) GenerateSRO(c *fiber.Ctx) error {
	sro, err := h.lifecycle.GenerateSRO(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": sroResponse(sro)})
}

// Delete DELETE /callouts/:id. Intent is logged; no removal semantics.
func (h *CalloutsHandler) Delete(c *fiber.Ctx) error {
	h.lifecycle.DeleteCallout(c.Context(), c.Params("id"), c.Get("X-Requested-By"))
	return c.SendStatus(fiber.StatusAccepted)
}

// Calendar GET /calendar/:year/:month.
func (h *CalloutsHandler) Calendar(c *fiber.Ctx) error {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return errorutil.NewValidationError("invalid year", nil)
	}
	month, err := strconv.Atoi(c.Params("month"))
	if err != nil || month < 1 || month > 12 {
		return errorutil.NewValidationError("invalid month", nil)
	}

	callouts, err := cache.Fetch(c.Context(), h.cache, cache.KeyCalloutList, func(ctx context.Context) ([]domain.CalloutDetail, error) {
		return h.lifecycle.ListCallouts(ctx)
	})
	if err != nil {
		return err
	}

	grid := query.MonthGrid(year, time.Month(month))
	from, to := grid[0], grid[len(grid)-1]
	result := query.Run(callouts, calloutAccessors, query.Spec{
		From: &from,
		To:   &to,
		Sort: query.SortOldest,
	})

	days := make([]string, 0, len(grid))
	for _, day := range grid {
		days = append(days, query.DayKey(day))
	}
	buckets := make(map[string][]dto.CalloutResponse, len(result.Buckets))
	for day, records := range result.Buckets {
		items := make([]dto.CalloutResponse, 0, len(records))
		for _, callout := range records {
			items = append(items, calloutResponse(callout))
		}
		buckets[day] = items
	}
	return c.JSON(fiber.Map{"data": dto.CalendarResponse{
		Year:    year,
		Month:   month,
		Days:    days,
		Buckets: buckets,
	}})
}

func calloutResponse(detail domain.CalloutDetail) dto.CalloutResponse {
	return dto.CalloutResponse{
		ID:              detail.ID,
		Number:          detail.Number,
		CustomerID:      detail.CustomerID,
		RigNumber:       detail.RigNumber,
		FieldName:       detail.FieldName,
		WellID:          detail.WellID,
		HoleSection:     detail.HoleSection,
		ServiceCategory: detail.ServiceCategory,
		SurveyOptions:   detail.SurveyOptions,
		StartDepth:      detail.StartDepth,
		EndDepth:        detail.EndDepth,
		SurveyInterval:  detail.SurveyInterval,
		Latitude:        detail.Latitude,
		Longitude:       detail.Longitude,
		Notes:           detail.Notes,
		Status:          detail.Status,
		HasSRO:          detail.HasSRO,
		SRONumber:       detail.SRONumber,
		ScheduleNumber:  detail.ScheduleNumber,
		CreatedBy:       detail.CreatedBy,
		CreatedAt:       detail.CreatedAt,
		UpdatedAt:       detail.UpdatedAt,
	}
}

// parseQuerySpec reads the shared list-view query parameters. Date inputs
// are clamped so to never precedes from; the engine itself does not
// re-validate the range.
func parseQuerySpec(c *fiber.Ctx) (query.Spec, error) {
	spec := query.Spec{
		Search: c.Query("q"),
		Status: c.Query("status"),
		Sort:   query.SortKey(c.Query("sort", string(query.SortNewest))),
	}
	if !query.ValidSortKey(spec.Sort) {
		return spec, errorutil.NewValidationError("unknown sort key", map[string]any{"sort": spec.Sort})
	}
	spec.From = parseDate(c.Query("from"))
	spec.To = parseDate(c.Query("to"))
	if spec.From != nil && spec.To != nil && spec.To.Before(*spec.From) {
		spec.To = spec.From
	}
	return spec, nil
}

func parseDate(val string) *time.Time {
	if val == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, val, time.Local); err == nil {
			return &t
		}
	}
	return nil
}
