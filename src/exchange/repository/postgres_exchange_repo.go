package repository

import (
	"context"
	"errors"
	"time"

	"github.com/blockhaven/backend/src/exchange/domain"
	"github.com/blockhaven/backend/src/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var _ domain.ExchangeRepository = (*ExchangeRepo)(nil)

// ---------- EXCHANGES ----------

type Exchange struct {
	ID                uint   `gorm:"primarykey"`
	TransactionID     string `gorm:"not null;uniqueIndex:uidx_exchange_transaction_id"`
	FromCurrency      string `gorm:"not null"`
	FromNetwork       string `gorm:"not null"`
	ToCurrency        string `gorm:"not null"`
	ToNetwork         string `gorm:"not null"`
	FromAmount        decimal.Decimal  `gorm:"type:decimal(18,8);not null"`
	ToAmount          *decimal.Decimal `gorm:"type:decimal(18,8)"`
	PayinAddress      string           `gorm:"not null"`
	PayoutAddress     string           `gorm:"not null"`
	PayinExtraID      *string
	PayoutExtraID     *string
	RefundAddress     *string
	RefundExtraID     *string
	Flow              string `gorm:"not null;default:standard"`
	Type              string `gorm:"not null;default:direct"`
	RateID            *string
	UserID            *string `gorm:"index:idx_exchanges_user_id"`
	ContactEmail      *string
	PayoutExtraIDName *string
	Status            string `gorm:"not null;default:waiting"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Exchange) TableName() string { return "exchanges" }

// ---------- REPO ----------

type ExchangeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExchangeRepo(db *gorm.DB, log *logger.Logger) *ExchangeRepo {
	if err := db.AutoMigrate(&Exchange{}); err != nil {
		log.Fatalf("failed to migrate exchanges schema: %v", err)
	}
	return &ExchangeRepo{db: db, log: log}
}

func (r *ExchangeRepo) Create(ctx context.Context, e *domain.Exchange) error {
	model := fromDomainExchange(e)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	e.ID = model.ID
	e.CreatedAt = model.CreatedAt
	e.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *ExchangeRepo) GetByID(ctx context.Context, id uint) (*domain.Exchange, error) {
	var m Exchange
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDomainExchange(&m), nil
}

func (r *ExchangeRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Exchange, error) {
	var m Exchange
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDomainExchange(&m), nil
}

// ListByUser returns transactions newest first. A nil userID lists all rows
// (admin view).
func (r *ExchangeRepo) ListByUser(ctx context.Context, userID *string) ([]domain.Exchange, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var models []Exchange
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Exchange, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainExchange(&m))
	}
	return out, nil
}

// ListPendingTransactionIDs returns the provider ids of transactions that
// have not reached a terminal state, oldest first.
func (r *ExchangeRepo) ListPendingTransactionIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&Exchange{}).
		Where("status NOT IN ?", []string{
			string(domain.StatusFinished),
			string(domain.StatusFailed),
			string(domain.StatusRefunded),
		}).
		Order("created_at ASC").
		Pluck("transaction_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateStatus touches only the mutable columns. Identity fields and
// addresses are immutable once written.
func (r *ExchangeRepo) UpdateStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, toAmount *decimal.Decimal) error {
	updates := map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now(),
	}
	if toAmount != nil {
		updates["to_amount"] = *toAmount
	}
	res := r.db.WithContext(ctx).Model(&Exchange{}).
		Where("transaction_id = ?", transactionID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ---------- HELPERS ----------

func toDomainExchange(m *Exchange) *domain.Exchange {
	return &domain.Exchange{
		ID:                m.ID,
		TransactionID:     m.TransactionID,
		FromCurrency:      m.FromCurrency,
		FromNetwork:       m.FromNetwork,
		ToCurrency:        m.ToCurrency,
		ToNetwork:         m.ToNetwork,
		FromAmount:        m.FromAmount,
		ToAmount:          m.ToAmount,
		PayinAddress:      m.PayinAddress,
		PayoutAddress:     m.PayoutAddress,
		PayinExtraID:      m.PayinExtraID,
		PayoutExtraID:     m.PayoutExtraID,
		RefundAddress:     m.RefundAddress,
		RefundExtraID:     m.RefundExtraID,
		Flow:              domain.Flow(m.Flow),
		Type:              domain.ExchangeType(m.Type),
		RateID:            m.RateID,
		UserID:            m.UserID,
		ContactEmail:      m.ContactEmail,
		PayoutExtraIDName: m.PayoutExtraIDName,
		Status:            domain.TransactionStatus(m.Status),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func fromDomainExchange(e *domain.Exchange) Exchange {
	return Exchange{
		ID:                e.ID,
		TransactionID:     e.TransactionID,
		FromCurrency:      e.FromCurrency,
		FromNetwork:       e.FromNetwork,
		ToCurrency:        e.ToCurrency,
		ToNetwork:         e.ToNetwork,
		FromAmount:        e.FromAmount,
		ToAmount:          e.ToAmount,
		PayinAddress:      e.PayinAddress,
		PayoutAddress:     e.PayoutAddress,
		PayinExtraID:      e.PayinExtraID,
		PayoutExtraID:     e.PayoutExtraID,
		RefundAddress:     e.RefundAddress,
		RefundExtraID:     e.RefundExtraID,
		Flow:              string(e.Flow),
		Type:              string(e.Type),
		RateID:            e.RateID,
		UserID:            e.UserID,
		ContactEmail:      e.ContactEmail,
		PayoutExtraIDName: e.PayoutExtraIDName,
		Status:            string(e.Status),
	}
}
