package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sro-service/internal/domain"
)

// SRORepository encapsulates SRO persistence.
type SRORepository interface {
	Create(ctx context.Context, sro *domain.SRO) error
	GetByID(ctx context.Context, id string) (*domain.SRO, error)
	// GetByCallout returns (nil, nil) when the callout has no SRO yet; the
	// at-most-one invariant check depends on distinguishing absence from
	// failure.
	GetByCallout(ctx context.Context, calloutID string) (*domain.SRO, error)
	UpdateStatus(ctx context.Context, id string, status domain.SROStatus) error
	List(ctx context.Context) ([]domain.SRO, error)
}

type sroRepository struct {
	pool *pgxpool.Pool
}

// NewSRORepository instantiates repository.
func NewSRORepository(pool *pgxpool.Pool) SRORepository {
	return &sroRepository{pool: pool}
}

const sroColumns = ` id, number, callout_id, customer_id, status, created_at, updated_at `

func (r *sroRepository) Create(ctx context.Context, sro *domain.SRO) error {
	const query = `
        INSERT INTO sros (number, callout_id, customer_id, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		sro.Number,
		sro.CalloutID,
		sro.CustomerID,
		sro.Status,
	).Scan(&sro.ID, &sro.CreatedAt, &sro.UpdatedAt)
}

func (r *sroRepository) GetByID(ctx context.Context, id string) (*domain.SRO, error) {
	query := `SELECT` + sroColumns + `FROM sros WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *sroRepository) GetByCallout(ctx context.Context, calloutID string) (*domain.SRO, error) {
	query := `SELECT` + sroColumns + `FROM sros WHERE callout_id=$1`
	sro, err := r.fetchSingle(ctx, query, calloutID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return sro, err
}

func (r *sroRepository) UpdateStatus(ctx context.Context, id string, status domain.SROStatus) error {
	const query = `UPDATE sros SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *sroRepository) List(ctx context.Context) ([]domain.SRO, error) {
	query := `SELECT` + sroColumns + `FROM sros ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SRO
	for rows.Next() {
		var sro domain.SRO
		if err := scanSRO(rows, &sro); err != nil {
			return nil, err
		}
		result = append(result, sro)
	}
	return result, rows.Err()
}

func (r *sroRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.SRO, error) {
	var sro domain.SRO
	if err := scanSRO(r.pool.QueryRow(ctx, query, arg), &sro); err != nil {
		return nil, err
	}
	return &sro, nil
}

func scanSRO(row pgx.Row, sro *domain.SRO) error {
	return row.Scan(
		&sro.ID,
		&sro.Number,
		&sro.CalloutID,
		&sro.CustomerID,
		&sro.Status,
		&sro.CreatedAt,
		&sro.UpdatedAt,
	)
}
