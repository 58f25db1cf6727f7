package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sro-service/internal/domain"
)

// CalloutRepository encapsulates callout persistence. Reads return the
// detail shape: HasSRO, SRONumber and ScheduleNumber are joined from the
// relationship graph at read time, never duplicated into the callout row.
type CalloutRepository interface {
	Create(ctx context.Context, callout *domain.Callout) error
	Update(ctx context.Context, callout *domain.Callout) error
	GetByID(ctx context.Context, id string) (*domain.CalloutDetail, error)
	List(ctx context.Context) ([]domain.CalloutDetail, error)
}

type calloutRepository struct {
	pool *pgxpool.Pool
}

// NewCalloutRepository instantiates repository.
func NewCalloutRepository(pool *pgxpool.Pool) CalloutRepository {
	return &calloutRepository{pool: pool}
}

const calloutDetailColumns = `
        c.id, c.number, c.customer_id, c.rig_number, c.field_name, c.well_id, c.hole_section,
        c.service_category, c.multishot, c.single_shot, c.orientation, c.continuous,
        c.in_run_out_run, c.north_seeking, c.start_depth, c.end_depth, c.survey_interval,
        c.latitude, c.longitude, c.notes, c.status, c.created_by, c.created_at, c.updated_at,
        s.id, s.number, sch.number`

const calloutDetailFrom = `
        FROM callouts c
        LEFT JOIN sros s ON s.callout_id = c.id
        LEFT JOIN schedules sch ON sch.sro_id = s.id`

func (r *calloutRepository) Create(ctx context.Context, callout *domain.Callout) error {
	const query = `
        INSERT INTO callouts (number, customer_id, rig_number, field_name, well_id, hole_section,
            service_category, multishot, single_shot, orientation, continuous, in_run_out_run,
            north_seeking, start_depth, end_depth, survey_interval, latitude, longitude, notes,
            status, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		callout.Number,
		callout.CustomerID,
		callout.RigNumber,
		callout.FieldName,
		callout.WellID,
		callout.HoleSection,
		callout.ServiceCategory,
		callout.SurveyOptions.Multishot,
		callout.SurveyOptions.SingleShot,
		callout.SurveyOptions.Orientation,
		callout.SurveyOptions.Continuous,
		callout.SurveyOptions.InRunOutRun,
		callout.SurveyOptions.NorthSeeking,
		callout.StartDepth,
		callout.EndDepth,
		callout.SurveyInterval,
		callout.Latitude,
		callout.Longitude,
		callout.Notes,
		callout.Status,
		callout.CreatedBy,
	).Scan(&callout.ID, &callout.CreatedAt, &callout.UpdatedAt)
}

func (r *calloutRepository) Update(ctx context.Context, callout *domain.Callout) error {
	const query = `
        UPDATE callouts SET customer_id=$1, rig_number=$2, field_name=$3, well_id=$4,
            hole_section=$5, service_category=$6, multishot=$7, single_shot=$8, orientation=$9,
            continuous=$10, in_run_out_run=$11, north_seeking=$12, start_depth=$13, end_depth=$14,
            survey_interval=$15, latitude=$16, longitude=$17, notes=$18, status=$19,
            updated_at=NOW()
        WHERE id=$20`
	cmd, err := r.pool.Exec(ctx, query,
		callout.CustomerID,
		callout.RigNumber,
		callout.FieldName,
		callout.WellID,
		callout.HoleSection,
		callout.ServiceCategory,
		callout.SurveyOptions.Multishot,
		callout.SurveyOptions.SingleShot,
		callout.SurveyOptions.Orientation,
		callout.SurveyOptions.Continuous,
		callout.SurveyOptions.InRunOutRun,
		callout.SurveyOptions.NorthSeeking,
		callout.StartDepth,
		callout.EndDepth,
		callout.SurveyInterval,
		callout.Latitude,
		callout.Longitude,
		callout.Notes,
		callout.Status,
		callout.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *calloutRepository) GetByID(ctx context.Context, id string) (*domain.CalloutDetail, error) {
	query := `SELECT` + calloutDetailColumns + calloutDetailFrom + ` WHERE c.id=$1`
	var detail domain.CalloutDetail
	if err := scanCalloutDetail(r.pool.QueryRow(ctx, query, id), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *calloutRepository) List(ctx context.Context) ([]domain.CalloutDetail, error) {
	query := `SELECT` + calloutDetailColumns + calloutDetailFrom + ` ORDER BY c.created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CalloutDetail
	for rows.Next() {
		var detail domain.CalloutDetail
		if err := scanCalloutDetail(rows, &detail); err != nil {
			return nil, err
		}
		result = append(result, detail)
	}
	return result, rows.Err()
}

func scanCalloutDetail(row pgx.Row, detail *domain.CalloutDetail) error {
	if err := row.Scan(
		&detail.ID,
		&detail.Number,
		&detail.CustomerID,
		&detail.RigNumber,
		&detail.FieldName,
		&detail.WellID,
		&detail.HoleSection,
		&detail.ServiceCategory,
		&detail.SurveyOptions.Multishot,
		&detail.SurveyOptions.SingleShot,
		&detail.SurveyOptions.Orientation,
		&detail.SurveyOptions.Continuous,
		&detail.SurveyOptions.InRunOutRun,
		&detail.SurveyOptions.NorthSeeking,
		&detail.StartDepth,
		&detail.EndDepth,
		&detail.SurveyInterval,
		&detail.Latitude,
		&detail.Longitude,
		&detail.Notes,
		&detail.Status,
		&detail.CreatedBy,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.SROID,
		&detail.SRONumber,
		&detail.ScheduleNumber,
	); err != nil {
		return err
	}
	detail.HasSRO = detail.SROID != nil
	return nil
}
