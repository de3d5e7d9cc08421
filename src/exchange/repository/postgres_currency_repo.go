package repository

import (
	"context"
	"time"

	"github.com/blockhaven/backend/src/exchange/domain"
	"github.com/blockhaven/backend/src/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ domain.CurrencyRepository = (*CurrencyRepo)(nil)

// ---------- CURRENCIES ----------

type Currency struct {
	ID                 uint   `gorm:"primarykey"`
	Ticker             string `gorm:"size:20;not null;uniqueIndex:uidx_currency_ticker_network;index:idx_currencies_ticker"`
	Network            string `gorm:"size:50;not null;uniqueIndex:uidx_currency_ticker_network;index:idx_currencies_network"`
	Name               string `gorm:"size:100;not null"`
	ImageURL           *string
	HasExternalID      bool `gorm:"not null;default:false"`
	IsExtraIDSupported bool `gorm:"not null;default:false"`
	IsFiat             bool `gorm:"not null;default:false"`
	Featured           bool `gorm:"not null;default:false;index:idx_currencies_featured"`
	IsStable           bool `gorm:"not null;default:false"`
	SupportsFixedRate  bool `gorm:"not null;default:false"`
	TokenContract      *string
	BuyEnabled         bool    `gorm:"not null;default:true"`
	SellEnabled        bool    `gorm:"not null;default:true"`
	LegacyTicker       *string `gorm:"size:20"`
	IsActive           bool    `gorm:"not null;default:true;index:idx_currencies_active"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (Currency) TableName() string { return "currencies" }

// updated_at on the catalog tables is refreshed by a DB trigger so that rows
// touched outside gorm (bulk SQL) stay honest.
const updatedAtTriggerFn = `
CREATE OR REPLACE FUNCTION update_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ language 'plpgsql';
`

// ---------- REPO ----------

type CurrencyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCurrencyRepo(db *gorm.DB, log *logger.Logger) *CurrencyRepo {
	if err := db.AutoMigrate(&Currency{}); err != nil {
		log.Fatalf("failed to migrate currencies schema: %v", err)
	}
	if err := db.Exec(updatedAtTriggerFn).Error; err != nil {
		log.Fatalf("failed to create updated_at trigger function: %v", err)
	}
	if err := db.Exec(`DROP TRIGGER IF EXISTS update_currencies_updated_at ON currencies`).Error; err == nil {
		db.Exec(`CREATE TRIGGER update_currencies_updated_at
			BEFORE UPDATE ON currencies
			FOR EACH ROW EXECUTE FUNCTION update_updated_at_column()`)
	}
	return &CurrencyRepo{db: db, log: log}
}

func (r *CurrencyRepo) ListAll(ctx context.Context) ([]domain.Currency, error) {
	var models []Currency
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Currency, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainCurrency(&m))
	}
	return out, nil
}

// UpsertBatch inserts or updates currencies keyed on (ticker, network).
// Catalog-scale runs stage thousands of rows; writing them in chunks bounds
// statement size.
func (r *CurrencyRepo) UpsertBatch(ctx context.Context, currencies []domain.Currency) error {
	if len(currencies) == 0 {
		return nil
	}
	models := make([]Currency, 0, len(currencies))
	for _, c := range currencies {
		models = append(models, fromDomainCurrency(c))
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "ticker"}, {Name: "network"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "image_url", "has_external_id", "is_extra_id_supported",
				"is_fiat", "featured", "is_stable", "supports_fixed_rate",
				"token_contract", "buy_enabled", "sell_enabled", "legacy_ticker",
				"is_active", "updated_at",
			}),
		}).
		CreateInBatches(&models, 500).Error
}

// ---------- HELPERS ----------

func toDomainCurrency(m *Currency) domain.Currency {
	return domain.Currency{
		ID:                 m.ID,
		Ticker:             m.Ticker,
		Network:            m.Network,
		Name:               m.Name,
		ImageURL:           deref(m.ImageURL),
		HasExternalID:      m.HasExternalID,
		IsExtraIDSupported: m.IsExtraIDSupported,
		IsFiat:             m.IsFiat,
		Featured:           m.Featured,
		IsStable:           m.IsStable,
		SupportsFixedRate:  m.SupportsFixedRate,
		TokenContract:      deref(m.TokenContract),
		BuyEnabled:         m.BuyEnabled,
		SellEnabled:        m.SellEnabled,
		LegacyTicker:       deref(m.LegacyTicker),
		IsActive:           m.IsActive,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func fromDomainCurrency(c domain.Currency) Currency {
	return Currency{
		ID:                 c.ID,
		Ticker:             c.Ticker,
		Network:            c.Network,
		Name:               c.Name,
		ImageURL:           optional(c.ImageURL),
		HasExternalID:      c.HasExternalID,
		IsExtraIDSupported: c.IsExtraIDSupported,
		IsFiat:             c.IsFiat,
		Featured:           c.Featured,
		IsStable:           c.IsStable,
		SupportsFixedRate:  c.SupportsFixedRate,
		TokenContract:      optional(c.TokenContract),
		BuyEnabled:         c.BuyEnabled,
		SellEnabled:        c.SellEnabled,
		LegacyTicker:       optional(c.LegacyTicker),
		IsActive:           c.IsActive,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
