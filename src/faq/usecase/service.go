package usecase

import (
	"context"

	"github.com/blockhaven/backend/src/faq/domain"
	"github.com/blockhaven/backend/src/logger"
)

type Service struct {
	repo   domain.Repository
	logger *logger.Logger
}

func NewService(repo domain.Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logger: logg}
}

// ListPublic returns active entries in display order.
func (s *Service) ListPublic(ctx context.Context) ([]domain.FAQ, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.FAQ, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) Create(ctx context.Context, f *domain.FAQ) error {
	return s.repo.Create(ctx, f)
}

func (s *Service) Update(ctx context.Context, f *domain.FAQ) error {
	return s.repo.Update(ctx, f)
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
