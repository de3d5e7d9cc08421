package usecase

import (
	"context"

	"github.com/blockhaven/backend/src/logger"
	"github.com/blockhaven/backend/src/servicefee/domain"
	"github.com/shopspring/decimal"
)

type Service struct {
	repo   domain.Repository
	logger *logger.Logger
}

func NewService(repo domain.Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logger: logg}
}

// GetActiveFee returns the fee currently applied to quotes. No active fee
// means no markup, which is a valid configuration, not an error.
func (s *Service) GetActiveFee(ctx context.Context) (*domain.ServiceFee, error) {
	return s.repo.GetActive(ctx)
}

func (s *Service) ListFees(ctx context.Context) ([]domain.ServiceFee, error) {
	return s.repo.List(ctx)
}

func (s *Service) CreateFee(ctx context.Context, name string, feeType domain.FeeType, amount decimal.Decimal) (*domain.ServiceFee, error) {
	f := &domain.ServiceFee{
		Name:    name,
		FeeType: feeType,
		Amount:  amount,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) UpdateFee(ctx context.Context, f *domain.ServiceFee) error {
	return s.repo.Update(ctx, f)
}

func (s *Service) DeleteFee(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ActivateFee(ctx context.Context, id uint) error {
	return s.repo.Activate(ctx, id)
}
