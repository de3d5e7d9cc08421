package repository

import (
	"context"
	"time"

	"github.com/blockhaven/backend/src/faq/domain"
	"github.com/blockhaven/backend/src/logger"
	"gorm.io/gorm"
)

var _ domain.Repository = (*FAQRepo)(nil)

type FAQ struct {
	ID         uint   `gorm:"primarykey"`
	Question   string `gorm:"type:text;not null"`
	Answer     string `gorm:"type:text;not null"`
	OrderIndex int    `gorm:"not null;default:0;index:idx_faqs_order"`
	IsActive   bool   `gorm:"not null;default:true;index:idx_faqs_active"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (FAQ) TableName() string { return "faqs" }

type FAQRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFAQRepo(db *gorm.DB, log *logger.Logger) *FAQRepo {
	if err := db.AutoMigrate(&FAQ{}); err != nil {
		log.Fatalf("failed to migrate faqs schema: %v", err)
	}
	return &FAQRepo{db: db, log: log}
}

func (r *FAQRepo) ListActive(ctx context.Context) ([]domain.FAQ, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("is_active = true"))
}

func (r *FAQRepo) ListAll(ctx context.Context) ([]domain.FAQ, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *FAQRepo) list(_ context.Context, q *gorm.DB) ([]domain.FAQ, error) {
	var models []FAQ
	if err := q.Order("order_index ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.FAQ, 0, len(models))
	for i := range models {
		out = append(out, *toDomainFAQ(&models[i]))
	}
	return out, nil
}

func (r *FAQRepo) Create(ctx context.Context, f *domain.FAQ) error {
	model := FAQ{
		Question:   f.Question,
		Answer:     f.Answer,
		OrderIndex: f.OrderIndex,
		IsActive:   f.IsActive,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	f.ID = model.ID
	f.CreatedAt = model.CreatedAt
	f.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *FAQRepo) Update(ctx context.Context, f *domain.FAQ) error {
	res := r.db.WithContext(ctx).Model(&FAQ{}).Where("id = ?", f.ID).Updates(map[string]interface{}{
		"question":    f.Question,
		"answer":      f.Answer,
		"order_index": f.OrderIndex,
		"is_active":   f.IsActive,
		"updated_at":  time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *FAQRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&FAQ{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toDomainFAQ(m *FAQ) *domain.FAQ {
	return &domain.FAQ{
		ID:         m.ID,
		Question:   m.Question,
		Answer:     m.Answer,
		OrderIndex: m.OrderIndex,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
