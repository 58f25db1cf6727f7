package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/sro-service/internal/domain"
	"github.com/spec-kit/sro-service/internal/events"
	"github.com/spec-kit/sro-service/internal/repository"
	"github.com/spec-kit/sro-service/pkg/util/errorutil"
)

// ReferenceService serves the dropdown collections. Reference mutations
// invalidate only their own collection, never the lifecycle caches.
type ReferenceService struct {
	refs       repository.ReferenceRepository
	dispatcher events.Dispatcher
}

// WellCreateInput describes well creation payload.
type WellCreateInput struct {
	Name      string
	FieldName string
	Latitude  *float64
	Longitude *float64
}

// NewReferenceService constructs the service.
func NewReferenceService(refs repository.ReferenceRepository, dispatcher events.Dispatcher) *ReferenceService {
	return &ReferenceService{refs: refs, dispatcher: dispatcher}
}

// CreateWell registers a new well for callout dropdowns.
func (s *ReferenceService) CreateWell(ctx context.Context, input WellCreateInput) (*domain.Well, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errorutil.NewValidationError("name required", nil)
	}
	well := &domain.Well{
		Name:      name,
		FieldName: strings.TrimSpace(input.FieldName),
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		IsActive:  true,
	}
	if err := s.refs.CreateWell(ctx, well); err != nil {
		return nil, storeErr("well", err)
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventWellCreated,
			Timestamp: time.Now(),
			Facts:     events.Facts{WellID: well.ID},
		})
	}
	return well, nil
}

// ListCustomers returns the active customers.
func (s *ReferenceService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.refs.ListCustomers(ctx)
	if err != nil {
		return nil, storeErr("customer", err)
	}
	return customers, nil
}

// ListRigs returns the active rigs.
func (s *ReferenceService) ListRigs(ctx context.Context) ([]domain.Rig, error) {
	rigs, err := s.refs.ListRigs(ctx)
	if err != nil {
		return nil, storeErr("rig", err)
	}
	return rigs, nil
}

// ListWells returns the active wells.
func (s *ReferenceService) ListWells(ctx context.Context) ([]domain.Well, error) {
	wells, err := s.refs.ListWells(ctx)
	if err != nil {
		return nil, storeErr("well", err)
	}
	return wells, nil
}

// ListEquipmentTypes returns the active equipment types.
func (s *ReferenceService) ListEquipmentTypes(ctx context.Context) ([]domain.EquipmentType, error) {
	types, err := s.refs.ListEquipmentTypes(ctx)
	if err != nil {
		return nil, storeErr("equipment type", err)
	}
	return types, nil
}
