package repository

import (
	"context"
	"errors"
	"time"

	"github.com/blockhaven/backend/src/logger"
	"github.com/blockhaven/backend/src/servicefee/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var _ domain.Repository = (*FeeRepo)(nil)

type ServiceFee struct {
	ID        uint            `gorm:"primarykey"`
	Name      string          `gorm:"size:100;not null"`
	FeeType   string          `gorm:"size:20;not null;default:percentage"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	IsActive  bool            `gorm:"not null;default:false;index:idx_service_fees_active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ServiceFee) TableName() string { return "service_fees" }

type FeeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeeRepo(db *gorm.DB, log *logger.Logger) *FeeRepo {
	if err := db.AutoMigrate(&ServiceFee{}); err != nil {
		log.Fatalf("failed to migrate service_fees schema: %v", err)
	}
	return &FeeRepo{db: db, log: log}
}

func (r *FeeRepo) GetActive(ctx context.Context) (*domain.ServiceFee, error) {
	var m ServiceFee
	if err := r.db.WithContext(ctx).Where("is_active = true").Order("updated_at DESC").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDomainFee(&m), nil
}

func (r *FeeRepo) List(ctx context.Context) ([]domain.ServiceFee, error) {
	var models []ServiceFee
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ServiceFee, 0, len(models))
	for i := range models {
		out = append(out, *toDomainFee(&models[i]))
	}
	return out, nil
}

func (r *FeeRepo) Create(ctx context.Context, f *domain.ServiceFee) error {
	model := fromDomainFee(f)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	f.ID = model.ID
	f.CreatedAt = model.CreatedAt
	f.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *FeeRepo) Update(ctx context.Context, f *domain.ServiceFee) error {
	res := r.db.WithContext(ctx).Model(&ServiceFee{}).Where("id = ?", f.ID).Updates(map[string]interface{}{
		"name":       f.Name,
		"fee_type":   string(f.FeeType),
		"amount":     f.Amount,
		"is_active":  f.IsActive,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *FeeRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&ServiceFee{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Activate makes the given fee the single active one, atomically.
func (r *FeeRepo) Activate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&ServiceFee{}).Where("is_active = true").Update("is_active", false).Error; err != nil {
			return err
		}
		res := tx.Model(&ServiceFee{}).Where("id = ?", id).Update("is_active", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func toDomainFee(m *ServiceFee) *domain.ServiceFee {
	return &domain.ServiceFee{
		ID:        m.ID,
		Name:      m.Name,
		FeeType:   domain.FeeType(m.FeeType),
		Amount:    m.Amount,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromDomainFee(f *domain.ServiceFee) ServiceFee {
	return ServiceFee{
		ID:       f.ID,
		Name:     f.Name,
		FeeType:  string(f.FeeType),
		Amount:   f.Amount,
		IsActive: f.IsActive,
	}
}
