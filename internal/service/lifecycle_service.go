package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/sro-service/internal/domain"
	"github.com/spec-kit/sro-service/internal/events"
	"github.com/spec-kit/sro-service/internal/repository"
	"github.com/spec-kit/sro-service/pkg/util/errorutil"
)

// LifecycleService is the state machine over the callout/SRO/schedule
// triple. Every transition validates its guard, executes against the store,
// and publishes changed facts before reporting success, so cache
// invalidation is complete by the time the caller sees a result.
type LifecycleService struct {
	callouts   repository.CalloutRepository
	sros       repository.SRORepository
	schedules  repository.ScheduleRepository
	dispatcher events.Dispatcher
	guard      *entityGuard
	logger     *zap.Logger
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	CalloutRepo  repository.CalloutRepository
	SRORepo      repository.SRORepository
	ScheduleRepo repository.ScheduleRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// CalloutCreateInput describes callout creation payload.
type CalloutCreateInput struct {
	CustomerID      string
	RigNumber       string
	FieldName       string
	WellID          *string
	HoleSection     *string
	ServiceCategory domain.ServiceCategory
	SurveyOptions   domain.SurveyOptions
	StartDepth      *float64
	EndDepth        *float64
	Latitude        *float64
	Longitude       *float64
	Notes           string
	CreatedBy       string
}

// CalloutPatch carries optional field updates; nil means unchanged.
type CalloutPatch struct {
	CustomerID      *string
	RigNumber       *string
	FieldName       *string
	WellID          *string
	HoleSection     *string
	ServiceCategory *domain.ServiceCategory
	SurveyOptions   *domain.SurveyOptions
	StartDepth      *float64
	EndDepth        *float64
	ClearDepths     bool
	Latitude        *float64
	Longitude       *float64
	Notes           *string
}

// SchedulePatch carries optional schedule updates; nil means unchanged.
// SROID is accepted only so a mismatch can be rejected explicitly; the
// linkage itself is immutable. AveragePriority is derived and has no input.
type SchedulePatch struct {
	SROID           *string
	FinancePriority *int
	OpsPriority     *int
	QAPriority      *int
	Risk            *domain.RiskFlags
	Difficulty      *int
	EquipmentTypeID *string
	ResourceID      *string
	Status          *domain.ScheduleStatus
}

// ApprovalResult is the outcome of an approve transition.
type ApprovalResult struct {
	SRO             *domain.SRO
	Schedule        *domain.Schedule
	ScheduleCreated bool
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		callouts:   deps.CalloutRepo,
		sros:       deps.SRORepo,
		schedules:  deps.ScheduleRepo,
		dispatcher: deps.Dispatcher,
		guard:      newEntityGuard(),
		logger:     deps.Logger,
	}
}

// CreateCallout creates a callout in draft status.
func (s *LifecycleService) CreateCallout(ctx context.Context, input CalloutCreateInput) (*domain.Callout, error) {
	if input.CustomerID == "" || input.RigNumber == "" {
		return nil, errorutil.NewValidationError("customer_id and rig_number required", nil)
	}
	callout := &domain.Callout{
		Number:          generateNumber("CO"),
		CustomerID:      input.CustomerID,
		RigNumber:       strings.TrimSpace(input.RigNumber),
		FieldName:       strings.TrimSpace(input.FieldName),
		WellID:          input.WellID,
		HoleSection:     input.HoleSection,
		ServiceCategory: input.ServiceCategory,
		SurveyOptions:   input.SurveyOptions,
		StartDepth:      input.StartDepth,
		EndDepth:        input.EndDepth,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		Notes:           strings.TrimSpace(input.Notes),
		Status:          domain.CalloutStatusDraft,
		CreatedBy:       input.CreatedBy,
	}
	callout.SurveyInterval = surveyInterval(callout.StartDepth, callout.EndDepth)

	if err := s.callouts.Create(ctx, callout); err != nil {
		return nil, storeErr("callout", err)
	}
	s.publish(ctx, events.EventCalloutCreated, events.Facts{CalloutID: callout.ID})
	return callout, nil
}

// EditCallout mutates callout fields. Callouts are writable only in draft;
// the survey interval is recomputed server-side and treated as absent unless
// both depth bounds are present.
func (s *LifecycleService) EditCallout(ctx context.Context, id string, patch CalloutPatch) (*domain.CalloutDetail, error) {
	detail, err := s.callouts.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("callout", err)
	}
	if !detail.Editable() {
		return nil, errorutil.NewGuardViolation("not editable outside draft", map[string]any{
			"callout_id": id,
			"status":     detail.Status,
		})
	}

	applyCalloutPatch(&detail.Callout, patch)
	detail.SurveyInterval = surveyInterval(detail.StartDepth, detail.EndDepth)

	if err := s.callouts.Update(ctx, &detail.Callout); err != nil {
		return nil, storeErr("callout", err)
	}
	s.publish(ctx, events.EventCalloutEdited, events.Facts{CalloutID: detail.ID})
	return detail, nil
}

// GenerateSRO creates the work order for a draft callout. At most one SRO
// may ever reference a callout; a repeat call fails with CONFLICT. At most
// one generate per callout may be in flight; a concurrent call fails with
// BUSY rather than silently executing twice.
func (s *LifecycleService) GenerateSRO(ctx context.Context, calloutID string) (*domain.SRO, error) {
	if !s.guard.acquire("callout:" + calloutID) {
		return nil, errorutil.NewBusy("a transition for this callout is already in flight", map[string]any{
			"callout_id": calloutID,
		})
	}
	defer s.guard.release("callout:" + calloutID)

	detail, err := s.callouts.GetByID(ctx, calloutID)
	if err != nil {
		return nil, storeErr("callout", err)
	}
	existing, err := s.sros.GetByCallout(ctx, calloutID)
	if err != nil {
		return nil, storeErr("sro", err)
	}
	if existing != nil {
		return nil, errorutil.NewConflict("callout already has an SRO", map[string]any{
			"callout_id": calloutID,
			"sro_id":     existing.ID,
		})
	}

	sro := &domain.SRO{
		Number:     generateNumber("SRO"),
		CalloutID:  detail.ID,
		CustomerID: detail.CustomerID,
		Status:     domain.SROStatusCreated,
	}
	if err := s.sros.Create(ctx, sro); err != nil {
		return nil, storeErr("sro", err)
	}

	detail.Status = domain.CalloutStatusSROActivated
	if err := s.callouts.Update(ctx, &detail.Callout); err != nil {
		// The SRO row already exists; the caller must re-fetch the callout
		// and check has_sro before retrying.
		return nil, partialFailure("sro created but callout activation failed", err, map[string]any{
			"sro_id":      sro.ID,
			"sro_created": true,
		})
	}

	s.publish(ctx, events.EventSROGenerated, events.Facts{
		CalloutID: detail.ID,
		SROID:     sro.ID,
	})
	return sro, nil
}

// ApproveSRO advances an SRO to approved, creating its draft schedule if
// none exists and marking the source callout scheduled. Approving an
// already-approved SRO is an idempotent no-op success: the SRO and whatever
// schedule it has (cancelled included) are returned unchanged, and no second
// schedule is ever created.
func (s *LifecycleService) ApproveSRO(ctx context.Context, sroID string) (*ApprovalResult, error) {
	if !s.guard.acquire("sro:" + sroID) {
		return nil, errorutil.NewBusy("a transition for this SRO is already in flight", map[string]any{
			"sro_id": sroID,
		})
	}
	defer s.guard.release("sro:" + sroID)

	sro, err := s.sros.GetByID(ctx, sroID)
	if err != nil {
		return nil, storeErr("sro", err)
	}

	if sro.Status == domain.SROStatusApproved {
		schedule, serr := s.schedules.GetBySRO(ctx, sroID)
		if serr != nil {
			return nil, storeErr("schedule", serr)
		}
		return &ApprovalResult{SRO: sro, Schedule: schedule}, nil
	}
	if !sro.Approvable() {
		return nil, errorutil.NewGuardViolation("sro cannot be approved", map[string]any{
			"sro_id": sroID,
			"status": sro.Status,
		})
	}

	if err := s.sros.UpdateStatus(ctx, sroID, domain.SROStatusApproved); err != nil {
		return nil, storeErr("sro", err)
	}
	sro.Status = domain.SROStatusApproved

	schedule, err := s.schedules.GetBySRO(ctx, sroID)
	if err != nil {
		return nil, partialFailure("sro approved but schedule lookup failed", err, map[string]any{
			"sro_id":       sroID,
			"sro_approved": true,
		})
	}
	created := false
	if schedule == nil {
		schedule = &domain.Schedule{
			Number: generateNumber("SCH"),
			SROID:  sroID,
			Status: domain.ScheduleStatusDraft,
		}
		if err := s.schedules.Create(ctx, schedule); err != nil {
			return nil, partialFailure("sro approved but schedule creation failed", err, map[string]any{
				"sro_id":       sroID,
				"sro_approved": true,
			})
		}
		created = true
	}

	detail, err := s.callouts.GetByID(ctx, sro.CalloutID)
	if err == nil {
		detail.Status = domain.CalloutStatusScheduled
		err = s.callouts.Update(ctx, &detail.Callout)
	}
	if err != nil {
		return nil, partialFailure("sro approved but callout scheduling failed", err, map[string]any{
			"sro_id":           sroID,
			"sro_approved":     true,
			"schedule_id":      schedule.ID,
			"schedule_created": created,
		})
	}

	s.publish(ctx, events.EventSROApproved, events.Facts{
		CalloutID:       sro.CalloutID,
		SROID:           sro.ID,
		ScheduleID:      schedule.ID,
		ScheduleCreated: created,
	})
	return &ApprovalResult{SRO: sro, Schedule: schedule, ScheduleCreated: created}, nil
}

// UpdateSchedule mutates schedule attributes. The SRO linkage is one-to-one
// and immutable: a patch carrying a different SRO reference is rejected.
func (s *LifecycleService) UpdateSchedule(ctx context.Context, id string, patch SchedulePatch) (*domain.Schedule, error) {
	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("schedule", err)
	}
	if patch.SROID != nil && *patch.SROID != schedule.SROID {
		return nil, errorutil.NewConflict("schedule sro reference is immutable", map[string]any{
			"schedule_id": id,
			"sro_id":      schedule.SROID,
		})
	}
	for name, p := range map[string]*int{
		"finance_priority": patch.FinancePriority,
		"ops_priority":     patch.OpsPriority,
		"qa_priority":      patch.QAPriority,
		"difficulty":       patch.Difficulty,
	} {
		if !domain.ValidPriority(p) {
			return nil, errorutil.NewValidationError(name+" must be between 1 and 5", map[string]any{
				name: *p,
			})
		}
	}

	applySchedulePatch(schedule, patch)

	if err := s.schedules.Update(ctx, schedule); err != nil {
		return nil, storeErr("schedule", err)
	}
	s.publish(ctx, events.EventScheduleUpdated, events.Facts{
		SROID:      schedule.SROID,
		ScheduleID: schedule.ID,
	})
	return schedule, nil
}

// DeleteCallout records the intent only. Removal is an administrative action
// outside the lifecycle engine.
func (s *LifecycleService) DeleteCallout(ctx context.Context, id string, requestedBy string) {
	s.logger.Info("callout deletion requested; removal is administrative",
		zap.String("callout_id", id),
		zap.String("requested_by", requestedBy),
	)
}

// GetCallout fetches one callout with its read-time relationship joins.
func (s *LifecycleService) GetCallout(ctx context.Context, id string) (*domain.CalloutDetail, error) {
	detail, err := s.callouts.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("callout", err)
	}
	return detail, nil
}

// ListCallouts fetches the full callout collection for the list views.
func (s *LifecycleService) ListCallouts(ctx context.Context) ([]domain.CalloutDetail, error) {
	callouts, err := s.callouts.List(ctx)
	if err != nil {
		return nil, storeErr("callout", err)
	}
	return callouts, nil
}

// GetSRO fetches one SRO.
func (s *LifecycleService) GetSRO(ctx context.Context, id string) (*domain.SRO, error) {
	sro, err := s.sros.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("sro", err)
	}
	return sro, nil
}

// ListSROs fetches the full SRO collection.
func (s *LifecycleService) ListSROs(ctx context.Context) ([]domain.SRO, error) {
	sros, err := s.sros.List(ctx)
	if err != nil {
		return nil, storeErr("sro", err)
	}
	return sros, nil
}

// GetSchedule fetches one schedule.
func (s *LifecycleService) GetSchedule(ctx context.Context, id string) (*domain.Schedule, error) {
	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("schedule", err)
	}
	return schedule, nil
}

// ListSchedules fetches the full schedule collection.
func (s *LifecycleService) ListSchedules(ctx context.Context) ([]domain.Schedule, error) {
	schedules, err := s.schedules.List(ctx)
	if err != nil {
		return nil, storeErr("schedule", err)
	}
	return schedules, nil
}

func applyCalloutPatch(callout *domain.Callout, patch CalloutPatch) {
	if patch.CustomerID != nil {
		callout.CustomerID = *patch.CustomerID
	}
	if patch.RigNumber != nil {
		callout.RigNumber = strings.TrimSpace(*patch.RigNumber)
	}
	if patch.FieldName != nil {
		callout.FieldName = strings.TrimSpace(*patch.FieldName)
	}
	if patch.WellID != nil {
		callout.WellID = patch.WellID
	}
	if patch.HoleSection != nil {
		callout.HoleSection = patch.HoleSection
	}
	if patch.ServiceCategory != nil {
		callout.ServiceCategory = *patch.ServiceCategory
	}
	if patch.SurveyOptions != nil {
		callout.SurveyOptions = *patch.SurveyOptions
	}
	if patch.ClearDepths {
		callout.StartDepth = nil
		callout.EndDepth = nil
	}
	if patch.StartDepth != nil {
		callout.StartDepth = patch.StartDepth
	}
	if patch.EndDepth != nil {
		callout.EndDepth = patch.EndDepth
	}
	if patch.Latitude != nil {
		callout.Latitude = patch.Latitude
	}
	if patch.Longitude != nil {
		callout.Longitude = patch.Longitude
	}
	if patch.Notes != nil {
		callout.Notes = strings.TrimSpace(*patch.Notes)
	}
}

func applySchedulePatch(schedule *domain.Schedule, patch SchedulePatch) {
	if patch.FinancePriority != nil {
		schedule.FinancePriority = patch.FinancePriority
	}
	if patch.OpsPriority != nil {
		schedule.OpsPriority = patch.OpsPriority
	}
	if patch.QAPriority != nil {
		schedule.QAPriority = patch.QAPriority
	}
	if patch.Risk != nil {
		schedule.Risk = *patch.Risk
	}
	if patch.Difficulty != nil {
		schedule.Difficulty = patch.Difficulty
	}
	if patch.EquipmentTypeID != nil {
		schedule.EquipmentTypeID = patch.EquipmentTypeID
	}
	if patch.ResourceID != nil {
		schedule.ResourceID = patch.ResourceID
	}
	if patch.Status != nil {
		schedule.Status = *patch.Status
	}
}

// surveyInterval derives end − start, absent (nil) unless both bounds are
// present. Never zero-filled.
func surveyInterval(start, end *float64) *float64 {
	if start == nil || end == nil {
		return nil
	}
	interval := *end - *start
	return &interval
}

func generateNumber(prefix string) string {
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *LifecycleService) publish(ctx context.Context, eventType events.EventType, facts events.Facts) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Facts:     facts,
	})
}

// storeErr surfaces persistence failures as typed results: row misses become
// NOT_FOUND, everything else REMOTE_FAILURE. Never swallowed.
func storeErr(resource string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errorutil.NewNotFound(resource, nil)
	}
	return errorutil.NewRemoteFailure(resource+" store unavailable", err)
}

// partialFailure reports a transition that stopped between the steps of a
// linked-entity pair, distinguishable from a clean failure via details.
func partialFailure(message string, err error, details map[string]any) error {
	return &errorutil.DomainError{
		Code:       errorutil.CodeRemoteFailure,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Details:    details,
		Err:        err,
	}
}
