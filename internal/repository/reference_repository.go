package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sro-service/internal/domain"
)

// ReferenceRepository serves the dropdown collections lifecycle entities
// point at. Wells are the only mutable collection the engine exposes.
type ReferenceRepository interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	ListRigs(ctx context.Context) ([]domain.Rig, error)
	ListWells(ctx context.Context) ([]domain.Well, error)
	ListEquipmentTypes(ctx context.Context) ([]domain.EquipmentType, error)
	CreateWell(ctx context.Context, well *domain.Well) error
}

type referenceRepository struct {
	pool *pgxpool.Pool
}

// NewReferenceRepository instantiates repository.
func NewReferenceRepository(pool *pgxpool.Pool) ReferenceRepository {
	return &referenceRepository{pool: pool}
}

func (r *referenceRepository) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	const query = `
        SELECT id, name, country, is_active, created_at, updated_at
        FROM customers WHERE is_active ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Country, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *referenceRepository) ListRigs(ctx context.Context) ([]domain.Rig, error) {
	const query = `
        SELECT id, customer_id, number, is_active, created_at, updated_at
        FROM rigs WHERE is_active ORDER BY number`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Rig
	for rows.Next() {
		var rig domain.Rig
		if err := rows.Scan(&rig.ID, &rig.CustomerID, &rig.Number, &rig.IsActive, &rig.CreatedAt, &rig.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, rig)
	}
	return result, rows.Err()
}

func (r *referenceRepository) ListWells(ctx context.Context) ([]domain.Well, error) {
	const query = `
        SELECT id, name, field_name, latitude, longitude, is_active, created_at, updated_at
        FROM wells WHERE is_active ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Well
	for rows.Next() {
		var w domain.Well
		if err := rows.Scan(&w.ID, &w.Name, &w.FieldName, &w.Latitude, &w.Longitude, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

func (r *referenceRepository) ListEquipmentTypes(ctx context.Context) ([]domain.EquipmentType, error) {
	const query = `
        SELECT id, name, is_active, created_at, updated_at
        FROM equipment_types WHERE is_active ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EquipmentType
	for rows.Next() {
		var et domain.EquipmentType
		if err := rows.Scan(&et.ID, &et.Name, &et.IsActive, &et.CreatedAt, &et.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, et)
	}
	return result, rows.Err()
}

func (r *referenceRepository) CreateWell(ctx context.Context, well *domain.Well) error {
	const query = `
        INSERT INTO wells (name, field_name, latitude, longitude, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		well.Name,
		well.FieldName,
		well.Latitude,
		well.Longitude,
		well.IsActive,
	).Scan(&well.ID, &well.CreatedAt, &well.UpdatedAt)
}
