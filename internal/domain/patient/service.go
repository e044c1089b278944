package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if p.MRN == "" {
		return fmt.Errorf("mrn is required")
	}
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if existing, err := s.repo.GetByMRN(ctx, p.MRN); err == nil && existing != nil {
		return fmt.Errorf("mrn %s is already registered", p.MRN)
	}
	p.Active = true
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return s.repo.GetByMRN(ctx, mrn)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Search(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.Search(ctx, name, limit, offset)
}
