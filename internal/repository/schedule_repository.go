package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sro-service/internal/domain"
)

// ScheduleRepository encapsulates schedule persistence.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.Schedule) error
	Update(ctx context.Context, schedule *domain.Schedule) error
	GetByID(ctx context.Context, id string) (*domain.Schedule, error)
	// GetBySRO returns (nil, nil) when the SRO has no schedule yet.
	GetBySRO(ctx context.Context, sroID string) (*domain.Schedule, error)
	List(ctx context.Context) ([]domain.Schedule, error)
}

type scheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository instantiates repository.
func NewScheduleRepository(pool *pgxpool.Pool) ScheduleRepository {
	return &scheduleRepository{pool: pool}
}

const scheduleColumns = `
        id, number, sro_id, finance_priority, ops_priority, qa_priority,
        high_temperature, pressure_risk, hse_risk, difficulty,
        equipment_type_id, resource_id, status, created_at, updated_at`

func (r *scheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) error {
	const query = `
        INSERT INTO schedules (number, sro_id, finance_priority, ops_priority, qa_priority,
            high_temperature, pressure_risk, hse_risk, difficulty, equipment_type_id,
            resource_id, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		schedule.Number,
		schedule.SROID,
		schedule.FinancePriority,
		schedule.OpsPriority,
		schedule.QAPriority,
		schedule.Risk.HighTemperature,
		schedule.Risk.PressureRisk,
		schedule.Risk.HSERisk,
		schedule.Difficulty,
		schedule.EquipmentTypeID,
		schedule.ResourceID,
		schedule.Status,
	).Scan(&schedule.ID, &schedule.CreatedAt, &schedule.UpdatedAt)
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *domain.Schedule) error {
	const query = `
        UPDATE schedules SET finance_priority=$1, ops_priority=$2, qa_priority=$3,
            high_temperature=$4, pressure_risk=$5, hse_risk=$6, difficulty=$7,
            equipment_type_id=$8, resource_id=$9, status=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		schedule.FinancePriority,
		schedule.OpsPriority,
		schedule.QAPriority,
		schedule.Risk.HighTemperature,
		schedule.Risk.PressureRisk,
		schedule.Risk.HSERisk,
		schedule.Difficulty,
		schedule.EquipmentTypeID,
		schedule.ResourceID,
		schedule.Status,
		schedule.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	query := `SELECT` + scheduleColumns + ` FROM schedules WHERE id=$1`
	var schedule domain.Schedule
	if err := scanSchedule(r.pool.QueryRow(ctx, query, id), &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepository) GetBySRO(ctx context.Context, sroID string) (*domain.Schedule, error) {
	query := `SELECT` + scheduleColumns + ` FROM schedules WHERE sro_id=$1`
	var schedule domain.Schedule
	err := scanSchedule(r.pool.QueryRow(ctx, query, sroID), &schedule)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepository) List(ctx context.Context) ([]domain.Schedule, error) {
	query := `SELECT` + scheduleColumns + ` FROM schedules ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Schedule
	for rows.Next() {
		var schedule domain.Schedule
		if err := scanSchedule(rows, &schedule); err != nil {
			return nil, err
		}
		result = append(result, schedule)
	}
	return result, rows.Err()
}

func scanSchedule(row pgx.Row, schedule *domain.Schedule) error {
	return row.Scan(
		&schedule.ID,
		&schedule.Number,
		&schedule.SROID,
		&schedule.FinancePriority,
		&schedule.OpsPriority,
		&schedule.QAPriority,
		&schedule.Risk.HighTemperature,
		&schedule.Risk.PressureRisk,
		&schedule.Risk.HSERisk,
		&schedule.Difficulty,
		&schedule.EquipmentTypeID,
		&schedule.ResourceID,
		&schedule.Status,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
}
