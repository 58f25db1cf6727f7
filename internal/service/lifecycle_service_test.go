package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sro-service/internal/cache"
	"github.com/spec-kit/sro-service/internal/domain"
	"github.com/spec-kit/sro-service/internal/events"
	"github.com/spec-kit/sro-service/internal/service"
	"github.com/spec-kit/sro-service/internal/worker"
	"github.com/spec-kit/sro-service/pkg/util/errorutil"
)

type mockCalloutRepo struct {
	mu   sync.Mutex
	seq  int
	rows map[string]domain.Callout

	sros      *mockSRORepo
	schedules *mockScheduleRepo

	createErr error
	updateErr error
	getErr    error
	listErr   error

	// When set, GetByID signals enteredGet and then waits on releaseGet
	// before proceeding. Used to hold a transition in flight.
	enteredGet chan struct{}
	releaseGet chan struct{}
}

func (m *mockCalloutRepo) Create(_ context.Context, callout *domain.Callout) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	callout.ID = fmt.Sprintf("co-%d", m.seq)
	callout.CreatedAt = time.Now()
	callout.UpdatedAt = callout.CreatedAt
	m.rows[callout.ID] = *callout
	return nil
}

func (m *mockCalloutRepo) Update(_ context.Context, callout *domain.Callout) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[callout.ID]; !ok {
		return pgx.ErrNoRows
	}
	callout.UpdatedAt = time.Now()
	m.rows[callout.ID] = *callout
	return nil
}

func (m *mockCalloutRepo) GetByID(ctx context.Context, id string) (*domain.CalloutDetail, error) {
	if m.enteredGet != nil {
		m.enteredGet <- struct{}{}
		<-m.releaseGet
	}
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	row, ok := m.rows[id]
	m.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	detail := &domain.CalloutDetail{Callout: row}
	if m.sros != nil {
		if sro, _ := m.sros.GetByCallout(ctx, id); sro != nil {
			detail.HasSRO = true
			detail.SROID = &sro.ID
			detail.SRONumber = &sro.Number
			if m.schedules != nil {
				if sch, _ := m.schedules.GetBySRO(ctx, sro.ID); sch != nil {
					detail.ScheduleNumber = &sch.Number
				}
			}
		}
	}
	return detail, nil
}

func (m *mockCalloutRepo) List(ctx context.Context) ([]domain.CalloutDetail, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	ids := make([]string, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	out := make([]domain.CalloutDetail, 0, len(ids))
	for _, id := range ids {
		detail, err := m.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *detail)
	}
	return out, nil
}

type mockSRORepo struct {
	mu   sync.Mutex
	seq  int
	rows map[string]domain.SRO

	createErr       error
	getErr          error
	getByCalloutErr error
	updateErr       error
}

func (m *mockSRORepo) Create(_ context.Context, sro *domain.SRO) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	sro.ID = fmt.Sprintf("sro-%d", m.seq)
	sro.CreatedAt = time.Now()
	sro.UpdatedAt = sro.CreatedAt
	m.rows[sro.ID] = *sro
	return nil
}

func (m *mockSRORepo) GetByID(_ context.Context, id string) (*domain.SRO, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &row, nil
}

func (m *mockSRORepo) GetByCallout(_ context.Context, calloutID string) (*domain.SRO, error) {
	if m.getByCalloutErr != nil {
		return nil, m.getByCalloutErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.CalloutID == calloutID {
			sro := row
			return &sro, nil
		}
	}
	return nil, nil
}

func (m *mockSRORepo) UpdateStatus(_ context.Context, id string, status domain.SROStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	row.Status = status
	row.UpdatedAt = time.Now()
	m.rows[id] = row
	return nil
}

func (m *mockSRORepo) List(_ context.Context) ([]domain.SRO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SRO, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row)
	}
	return out, nil
}

type mockScheduleRepo struct {
	mu   sync.Mutex
	seq  int
	rows map[string]domain.Schedule

	createErr   error
	updateErr   error
	getErr      error
	getBySROErr error
}

func (m *mockScheduleRepo) Create(_ context.Context, schedule *domain.Schedule) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	schedule.ID = fmt.Sprintf("sch-%d", m.seq)
	schedule.CreatedAt = time.Now()
	schedule.UpdatedAt = schedule.CreatedAt
	m.rows[schedule.ID] = *schedule
	return nil
}

func (m *mockScheduleRepo) Update(_ context.Context, schedule *domain.Schedule) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[schedule.ID]; !ok {
		return pgx.ErrNoRows
	}
	schedule.UpdatedAt = time.Now()
	m.rows[schedule.ID] = *schedule
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*domain.Schedule, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &row, nil
}

func (m *mockScheduleRepo) GetBySRO(_ context.Context, sroID string) (*domain.Schedule, error) {
	if m.getBySROErr != nil {
		return nil, m.getBySROErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.SROID == sroID {
			schedule := row
			return &schedule, nil
		}
	}
	return nil, nil
}

func (m *mockScheduleRepo) List(_ context.Context) ([]domain.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Schedule, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row)
	}
	return out, nil
}

type fixture struct {
	callouts   *mockCalloutRepo
	sros       *mockSRORepo
	schedules  *mockScheduleRepo
	dispatcher events.Dispatcher
	store      *cache.Store
	svc        *service.LifecycleService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sros := &mockSRORepo{rows: make(map[string]domain.SRO)}
	schedules := &mockScheduleRepo{rows: make(map[string]domain.Schedule)}
	callouts := &mockCalloutRepo{
		rows:      make(map[string]domain.Callout),
		sros:      sros,
		schedules: schedules,
	}
	dispatcher := events.NewInMemoryDispatcher()
	store := cache.NewStore(nil, time.Minute, zap.NewNop())
	worker.StartInvalidationWorker(dispatcher, store)

	svc := service.NewLifecycleService(service.LifecycleDependencies{
		CalloutRepo:  callouts,
		SRORepo:      sros,
		ScheduleRepo: schedules,
		Dispatcher:   dispatcher,
		Logger:       zap.NewNop(),
	})
	return &fixture{
		callouts:   callouts,
		sros:       sros,
		schedules:  schedules,
		dispatcher: dispatcher,
		store:      store,
		svc:        svc,
	}
}

func (f *fixture) seedDraftCallout(t *testing.T) *domain.Callout {
	t.Helper()
	callout, err := f.svc.CreateCallout(context.Background(), service.CalloutCreateInput{
		CustomerID:      "cust-1",
		RigNumber:       "Rig 12",
		FieldName:       "North Field",
		ServiceCategory: domain.ServiceCategoryGyro,
		CreatedBy:       "planner",
	})
	require.NoError(t, err)
	return callout
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }

func TestCreateCalloutStartsInDraft(t *testing.T) {
	f := newFixture(t)
	callout, err := f.svc.CreateCallout(context.Background(), service.CalloutCreateInput{
		CustomerID:      "cust-1",
		RigNumber:       " Rig 12 ",
		ServiceCategory: domain.ServiceCategoryMWD,
		StartDepth:      floatPtr(1000),
		EndDepth:        floatPtr(4500),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.CalloutStatusDraft, callout.Status)
	assert.Equal(t, "Rig 12", callout.RigNumber)
	require.NotNil(t, callout.SurveyInterval)
	assert.Equal(t, 3500.0, *callout.SurveyInterval)
	assert.Contains(t, callout.Number, "CO-")
}

func TestCreateCalloutRequiresCustomerAndRig(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateCallout(context.Background(), service.CalloutCreateInput{RigNumber: "Rig 1"})
	assert.Equal(t, errorutil.CodeValidation, errorutil.CodeOf(err))
}

func TestCreateCalloutLeavesIntervalUnsetWithoutBothDepths(t *testing.T) {
	f := newFixture(t)
	callout, err := f.svc.CreateCallout(context.Background(), service.CalloutCreateInput{
		CustomerID: "cust-1",
		RigNumber:  "Rig 3",
		StartDepth: floatPtr(1200),
	})
	require.NoError(t, err)
	assert.Nil(t, callout.SurveyInterval)
}

func TestEditCalloutRecomputesSurveyInterval(t *testing.T) {
	f := newFixture(t)
	callout := f.seedDraftCallout(t)

	detail, err := f.svc.EditCallout(context.Background(), callout.ID, service.CalloutPatch{
		StartDepth: floatPtr(500),
		EndDepth:   floatPtr(2500),
		Notes:      strPtr("  depth window confirmed  "),
	})
	require.NoError(t, err)
	require.NotNil(t, detail.SurveyInterval)
	assert.Equal(t, 2000.0, *detail.SurveyInterval)
	assert.Equal(t, "depth window confirmed", detail.Notes)

	detail, err = f.svc.EditCallout(context.Background(), callout.ID, service.CalloutPatch{ClearDepths: true})
	require.NoError(t, err)
	assert.Nil(t, detail.StartDepth)
	assert.Nil(t, detail.SurveyInterval)
}

func TestEditCalloutRejectedOutsideDraft(t *testing.T) {
	f := newFixture(t)
	callout := f.seedDraftCallout(t)
	_, err := f.svc.GenerateSRO(context.Background(), callout.ID)
	require.NoError(t, err)

	_, err = f.svc.EditCallout(context.Background(), callout.ID, service.CalloutPatch{
		Notes: strPtr("late change"),
	})
	assert.Equal(t, errorutil.CodeGuardViolation, errorutil.CodeOf(err))
}

func TestEditCalloutUnknownIDIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.EditCallout(context.Background(), "missing", service.CalloutPatch{})
	assert.Equal(t, errorutil.CodeNotFound, errorutil.CodeOf(err))
}

func TestGenerateSROActivatesCallout(t *testing.T) {
	f := newFixture(t)
	callout := f.seedDraftCallout(t)

	sro, err := f.svc.GenerateSRO(context.Background(), callout.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SROStatusCreated, sro.Status)
	assert.Equal(t, callout.ID, sro.CalloutID)
	assert.Equal(t, callout.CustomerID, sro.CustomerID)
	assert.Contains(t, sro.Number, "SRO-")

	detail, err := f.svc.GetCallout(context.Background(), callout.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CalloutStatusSROActivated, detail.Status)
	assert.True(t, detail.HasSRO)
	require.NotNil(t, detail.SRONumber)
	assert.Equal(t, sro.Number, *detail.SRONumber)
}

func TestGenerateSROIsAtMostOnce(t *testing.T) {
	f := newFixture(t)
	callout := f.seedDraftCallout(t)

	first, err := f.svc.GenerateSRO(context.Background(), callout.ID)
	require.NoError(t, err)

	_, err = f.svc.GenerateSRO(context.Background(), callout.ID)
	assert.Equal(t, errorutil.CodeConflict, errorutil.CodeOf(err))

	sros, err := f.svc.ListSROs(context.Background())
	require.NoError(t, err)
	require.Len(t, sros, 1)
	assert.Equal(t, first.ID, sros[0].ID)
}

func TestGenerateSROUnknownCalloutIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GenerateSRO(context.Background(), "missing")
	assert.Equal(t, errorutil.CodeNotFound, errorutil.CodeOf(err))
}

func TestGenerateSROReportsPartialFailure(t *testing.T) {
	f := newFixture(t)
	callout := f.seedDraftCallout(t)
	f.callouts.updateErr = errors.New("connection reset")

	_, err := f.svc.GenerateSRO(context.Background(), callout.ID)
	require.Error(t, err)
	assert.Equal(t, errorutil.CodeRemoteFailure, errorutil.CodeOf(err))

	var de *errorutil.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, true, de.Details["sro_created"])

	// The SRO row exists even though the transition failed.
	existing, err := f.sros.GetByCallout(context.Background(), callout.ID)
	require.NoError(t, err)
	require.NotNil(t, existing)
}

func TestGenerateSRORejectsConcurrentTransition(t *testing.T) {
	f := newFixture(t)
	callout := f.seedDraftCallout(t)

	f.callouts.enteredGet = make(chan struct{})
	f.callouts.releaseGet = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.GenerateSRO(context.Background(), callout.ID)
		done <- err
	}()
	<-f.callouts.enteredGet

	_, err := f.svc.GenerateSRO(context.Background(), callout.ID)
	assert.Equal(t, errorutil.CodeBusy, errorutil.CodeOf(err))

	close(f.callouts.releaseGet)
	require.NoError(t, <-done)
	f.callouts.enteredGet = nil

	// The guard is released once the first transition resolves; the retry
	// now resolves against stored state instead of the in-flight guard.
	_, err = f.svc.GenerateSRO(context.Background(), callout.ID)
	assert.Equal(t, errorutil.CodeConflict, errorutil.CodeOf(err))
}

func TestApproveSROCreatesExactlyOneSchedule(t *testing.T) {
	f := newFixture(t)
	callout := f.seedDraftCallout(t)
	sro, err := f.svc.GenerateSRO(context.Background(), callout.ID)
	require.NoError(t, err)

	result, err := f.svc.ApproveSRO(context.Background(), sro.ID)
	require.NoError(t, err)
	assert.True(t, result.ScheduleCreated)
	assert.Equal(t, domain.SROStatusApproved, result.SRO.Status)
	require.NotNil(t, result.Schedule)
	assert.Equal(t, domain.ScheduleStatusDraft, result.Schedule.Status)
	assert.Equal(t, sro.ID, result.Schedule.SROID)
	assert.Contains(t, result.Schedule.Number, "SCH-")

	detail, err := f.svc.GetCallout(context.Background(), callout.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CalloutStatusScheduled, detail.Status)
	require.NotNil(t, detail.ScheduleNumber)
	assert.Equal(t, result.Schedule.Number, *detail.ScheduleNumber)

	again, err := f.svc.ApproveSRO(context.Background(), sro.ID)
	require.NoError(t, err)
	assert.False(t, again.ScheduleCreated)
	require.NotNil(t, again.Schedule)
	assert.Equal(t, result.Schedule.ID, again.Schedule.ID)

	schedules, err := f.svc.ListSchedules(context.Background())
	require.NoError(t, err)
	assert.Len(t, schedules, 1)
}

func TestApproveSRODoesNotResurrectCancelledSchedule(t *testing.T) {
	f := newFixture(t)
	callout := f.seedDraftCallout(t)
	sro, err := f.svc.GenerateSRO(context.Background(), callout.ID)
	require.NoError(t, err)
	result, err := f.svc.ApproveSRO(context.Background(), sro.ID)
	require.NoError(t, err)

	cancelled := domain.ScheduleStatusCancelled
	_, err = f.svc.UpdateSchedule(context.Background(), result.Schedule.ID, service.SchedulePatch{
		Status: &cancelled,
	})
	require.NoError(t, err)

	again, err := f.svc.ApproveSRO(context.Background(), sro.ID)
	require.NoError(t, err)
	assert.False(t, again.ScheduleCreated)
	require.NotNil(t, again.Schedule)
	assert.Equal(t, domain.ScheduleStatusCancelled, again.Schedule.Status)

	schedules, err := f.svc.ListSchedules(context.Background())
	require.NoError(t, err)
	assert.Len(t, schedules, 1)
}

func TestApproveSRORejectedIsGuardViolation(t *testing.T) {
	f := newFixture(t)
	sro := &domain.SRO{Number: "SRO-TEST", CalloutID: "co-x", Status: domain.SROStatusRejected}
	require.NoError(t, f.sros.Create(context.Background(), sro))

	_, err := f.svc.ApproveSRO(context.Background(), sro.ID)
	assert.Equal(t, errorutil.CodeGuardViolation, errorutil.CodeOf(err))
}

func TestApproveSROPartialFailureOnScheduleCreation(t *testing.T) {
	f := newFixture(t)
	callout := f.seedDraftCallout(t)
	sro, err := f.svc.GenerateSRO(context.Background(), callout.ID)
	require.NoError(t, err)
	f.schedules.createErr = errors.New("connection reset")

	_, err = f.svc.ApproveSRO(context.Background(), sro.ID)
	require.Error(t, err)
	assert.Equal(t, errorutil.CodeRemoteFailure, errorutil.CodeOf(err))

	var de *errorutil.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, true, de.Details["sro_approved"])

	// The status write landed before the failure; a retry takes the
	// idempotent branch once the store recovers.
	f.schedules.createErr = nil
	stored, err := f.svc.GetSRO(context.Background(), sro.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SROStatusApproved, stored.Status)
}

func TestUpdateScheduleSRORefIsImmutable(t *testing.T) {
	f := newFixture(t)
	callout := f.seedDraftCallout(t)
	sro, err := f.svc.GenerateSRO(context.Background(), callout.ID)
	require.NoError(t, err)
	result, err := f.svc.ApproveSRO(context.Background(), sro.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateSchedule(context.Background(), result.Schedule.ID, service.SchedulePatch{
		SROID: strPtr("sro-other"),
	})
	assert.Equal(t, errorutil.CodeConflict, errorutil.CodeOf(err))

	// Restating the current reference is not a change and passes.
	updated, err := f.svc.UpdateSchedule(context.Background(), result.Schedule.ID, service.SchedulePatch{
		SROID:       &sro.ID,
		OpsPriority: intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, sro.ID, updated.SROID)
}

func TestUpdateScheduleValidatesPriorities(t *testing.T) {
	f := newFixture(t)
	callout := f.seedDraftCallout(t)
	sro, err := f.svc.GenerateSRO(context.Background(), callout.ID)
	require.NoError(t, err)
	result, err := f.svc.ApproveSRO(context.Background(), sro.ID)
	require.NoError(t, err)

	for _, bad := range []int{0, 6, -1} {
		_, err = f.svc.UpdateSchedule(context.Background(), result.Schedule.ID, service.SchedulePatch{
			FinancePriority: intPtr(bad),
		})
		assert.Equal(t, errorutil.CodeValidation, errorutil.CodeOf(err), "priority %d", bad)
	}

	updated, err := f.svc.UpdateSchedule(context.Background(), result.Schedule.ID, service.SchedulePatch{
		FinancePriority: intPtr(1),
		OpsPriority:     intPtr(4),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.AveragePriority())
	assert.Equal(t, 2.5, *updated.AveragePriority())
}

func TestUpdateScheduleUnknownIDIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateSchedule(context.Background(), "missing", service.SchedulePatch{})
	assert.Equal(t, errorutil.CodeNotFound, errorutil.CodeOf(err))
}

func TestDeleteCalloutOnlyRecordsIntent(t *testing.T) {
	f := newFixture(t)
	callout := f.seedDraftCallout(t)

	f.svc.DeleteCallout(context.Background(), callout.ID, "planner")

	detail, err := f.svc.GetCallout(context.Background(), callout.ID)
	require.NoError(t, err)
	assert.Equal(t, callout.ID, detail.ID)
}

func TestListFailuresSurfaceAsRemoteFailure(t *testing.T) {
	f := newFixture(t)
	f.callouts.listErr = errors.New("connection refused")
	_, err := f.svc.ListCallouts(context.Background())
	assert.Equal(t, errorutil.CodeRemoteFailure, errorutil.CodeOf(err))
}

func TestTransitionsInvalidateCachesBeforeReturning(t *testing.T) {
	f := newFixture(t)
	callout := f.seedDraftCallout(t)
	detailKey := cache.CalloutDetailKey(callout.ID)

	listBefore := f.store.Version(cache.KeyCalloutList)
	sroListBefore := f.store.Version(cache.KeySROList)
	scheduleListBefore := f.store.Version(cache.KeyScheduleList)
	detailBefore := f.store.Version(detailKey)

	sro, err := f.svc.GenerateSRO(context.Background(), callout.ID)
	require.NoError(t, err)

	assert.Equal(t, listBefore+1, f.store.Version(cache.KeyCalloutList))
	assert.Equal(t, sroListBefore+1, f.store.Version(cache.KeySROList))
	assert.Equal(t, detailBefore+1, f.store.Version(detailKey))
	// Generation does not touch schedules.
	assert.Equal(t, scheduleListBefore, f.store.Version(cache.KeyScheduleList))

	listBefore = f.store.Version(cache.KeyCalloutList)
	scheduleListBefore = f.store.Version(cache.KeyScheduleList)

	result, err := f.svc.ApproveSRO(context.Background(), sro.ID)
	require.NoError(t, err)
	require.True(t, result.ScheduleCreated)

	assert.Equal(t, scheduleListBefore+1, f.store.Version(cache.KeyScheduleList))
	assert.Equal(t, listBefore, f.store.Version(cache.KeyCalloutList))

	// The idempotent re-approval changes nothing, so nothing is invalidated.
	scheduleListBefore = f.store.Version(cache.KeyScheduleList)
	_, err = f.svc.ApproveSRO(context.Background(), sro.ID)
	require.NoError(t, err)
	assert.Equal(t, scheduleListBefore, f.store.Version(cache.KeyScheduleList))
}
