package material

import (
	"context"
	"fmt"
	"time"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/id"
	"rollstock/internal/core/numerator"
	"rollstock/internal/domain"
	"rollstock/pkg/logger"
)

// Service provides business logic for the material catalog.
type Service struct {
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new material service.
func NewService(repo Repository, gen numerator.Generator) *Service {
	return &Service{
		repo:      repo,
		numerator: gen,
	}
}

// Create validates and stores a new material. A code is generated when
// the caller leaves it empty; a caller-supplied code must be unused.
func (s *Service) Create(ctx context.Context, m *Material) error {
	if m.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("MAT"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		m.Code = code
	} else if existing, err := s.repo.GetByCode(ctx, m.Code); err == nil && existing.ID != m.ID {
		return apperror.NewDuplicate("material", "code", m.Code)
	}

	if err := m.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return err
	}

	logger.Info(ctx, "material created", "id", m.ID, "code", m.Code)
	return nil
}

// Update validates and stores changes to an existing material.
func (s *Service) Update(ctx context.Context, m *Material) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}
	if existing, err := s.repo.GetByCode(ctx, m.Code); err == nil && existing.ID != m.ID {
		return apperror.NewDuplicate("material", "code", m.Code)
	}

	m.Touch()
	if err := s.repo.Update(ctx, m); err != nil {
		return err
	}

	logger.Info(ctx, "material updated", "id", m.ID, "code", m.Code)
	return nil
}

// Delete soft-deletes a material by setting its deletion mark. Existing
// batches keep referencing it by code.
func (s *Service) Delete(ctx context.Context, materialID id.ID) error {
	m, err := s.repo.Get(ctx, materialID)
	if err != nil {
		return err
	}
	if m.DeletionMark {
		return nil
	}

	m.DeletionMark = true
	m.Touch()
	if err := s.repo.Update(ctx, m); err != nil {
		return err
	}

	logger.Info(ctx, "material marked deleted", "id", m.ID, "code", m.Code)
	return nil
}

// GetByID retrieves a material by id.
func (s *Service) GetByID(ctx context.Context, materialID id.ID) (*Material, error) {
	return s.repo.Get(ctx, materialID)
}

// GetByCode retrieves a material by code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Material, error) {
	return s.repo.GetByCode(ctx, code)
}

// List retrieves materials with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Material], error) {
	return s.repo.List(ctx, filter)
}
