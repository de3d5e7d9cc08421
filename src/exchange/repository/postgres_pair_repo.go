package repository

import (
	"context"
	"strings"
	"time"

	"github.com/blockhaven/backend/src/exchange/domain"
	"github.com/blockhaven/backend/src/logger"
	"gorm.io/gorm"
)

var _ domain.PairRepository = (*PairRepo)(nil)

// ---------- PAIRS ----------

type ExchangePair struct {
	ID            uint   `gorm:"primarykey"`
	FromTicker    string `gorm:"size:20;not null;uniqueIndex:uidx_pair_identity;index:idx_pairs_from_ticker"`
	FromNetwork   string `gorm:"size:50;not null;uniqueIndex:uidx_pair_identity"`
	ToTicker      string `gorm:"size:20;not null;uniqueIndex:uidx_pair_identity;index:idx_pairs_to_ticker"`
	ToNetwork     string `gorm:"size:50;not null;uniqueIndex:uidx_pair_identity"`
	FlowStandard  bool   `gorm:"not null;default:false;index:idx_pairs_flow_standard"`
	FlowFixedRate bool   `gorm:"not null;default:false;index:idx_pairs_flow_fixed"`
	IsActive      bool   `gorm:"not null;default:true;index:idx_pairs_active"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (ExchangePair) TableName() string { return "exchange_pairs" }

// ---------- REPO ----------

type PairRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPairRepo(db *gorm.DB, log *logger.Logger) *PairRepo {
	if err := db.AutoMigrate(&ExchangePair{}); err != nil {
		log.Fatalf("failed to migrate exchange_pairs schema: %v", err)
	}
	if err := db.Exec(`DROP TRIGGER IF EXISTS update_pairs_updated_at ON exchange_pairs`).Error; err == nil {
		db.Exec(`CREATE TRIGGER update_pairs_updated_at
			BEFORE UPDATE ON exchange_pairs
			FOR EACH ROW EXECUTE FUNCTION update_updated_at_column()`)
	}
	return &PairRepo{db: db, log: log}
}

func (r *PairRepo) ListAll(ctx context.Context) ([]domain.Pair, error) {
	var models []ExchangePair
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Pair, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainPair(&m))
	}
	return out, nil
}

func (r *PairRepo) InsertBatch(ctx context.Context, pairs []domain.Pair) error {
	if len(pairs) == 0 {
		return nil
	}
	models := make([]ExchangePair, 0, len(pairs))
	for _, p := range pairs {
		models = append(models, ExchangePair{
			FromTicker:    p.FromTicker,
			FromNetwork:   p.FromNetwork,
			ToTicker:      p.ToTicker,
			ToNetwork:     p.ToNetwork,
			FlowStandard:  p.FlowStandard,
			FlowFixedRate: p.FlowFixedRate,
			IsActive:      p.IsActive,
		})
	}
	return r.db.WithContext(ctx).CreateInBatches(&models, 500).Error
}

// UpdateFlags flips the flow flags on already-known pairs. Rows are updated
// inside one transaction per batch so a partial failure rolls back together.
func (r *PairRepo) UpdateFlags(ctx context.Context, pairs []domain.Pair) error {
	if len(pairs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range pairs {
			if err := tx.Model(&ExchangePair{}).
				Where("from_ticker = ? AND from_network = ? AND to_ticker = ? AND to_network = ?",
					p.FromTicker, p.FromNetwork, p.ToTicker, p.ToNetwork).
				Updates(map[string]interface{}{
					"flow_standard":   p.FlowStandard,
					"flow_fixed_rate": p.FlowFixedRate,
					"is_active":       p.IsActive,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DistinctCurrencyKeys returns every (ticker, network) appearing on either
// leg of any pair. Pair rows are authoritative for tradability even when the
// currency table has no matching row.
func (r *PairRepo) DistinctCurrencyKeys(ctx context.Context) ([]domain.CurrencyRef, error) {
	var rows []domain.CurrencyRef
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT from_ticker AS ticker, from_network AS network FROM exchange_pairs
		UNION
		SELECT DISTINCT to_ticker AS ticker, to_network AS network FROM exchange_pairs
		ORDER BY ticker, network
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// EnhancedPairs joins active pairs with currency display metadata on both
// legs. Legs missing from the currency table get a synthesized name (the
// upper-cased ticker) and no image.
func (r *PairRepo) EnhancedPairs(ctx context.Context) ([]domain.EnhancedPair, error) {
	type row struct {
		FromTicker    string
		FromNetwork   string
		FromName      *string
		FromImage     *string
		FromFeatured  *bool
		ToTicker      string
		ToNetwork     string
		ToName        *string
		ToImage       *string
		ToFeatured    *bool
		FlowStandard  bool
		FlowFixedRate bool
	}
	var rows []row
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			ep.from_ticker, ep.from_network,
			fc.name AS from_name, fc.image_url AS from_image, fc.featured AS from_featured,
			ep.to_ticker, ep.to_network,
			tc.name AS to_name, tc.image_url AS to_image, tc.featured AS to_featured,
			ep.flow_standard, ep.flow_fixed_rate
		FROM exchange_pairs ep
		LEFT JOIN currencies fc ON ep.from_ticker = fc.ticker AND ep.from_network = fc.network
		LEFT JOIN currencies tc ON ep.to_ticker = tc.ticker AND ep.to_network = tc.network
		WHERE ep.is_active = true
		ORDER BY ep.from_ticker, ep.to_ticker
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.EnhancedPair, 0, len(rows))
	for _, rw := range rows {
		out = append(out, domain.EnhancedPair{
			From:          toPairLeg(rw.FromTicker, rw.FromNetwork, rw.FromName, rw.FromImage, rw.FromFeatured),
			To:            toPairLeg(rw.ToTicker, rw.ToNetwork, rw.ToName, rw.ToImage, rw.ToFeatured),
			FlowStandard:  rw.FlowStandard,
			FlowFixedRate: rw.FlowFixedRate,
		})
	}
	return out, nil
}

// ---------- HELPERS ----------

func toDomainPair(m *ExchangePair) domain.Pair {
	return domain.Pair{
		ID:            m.ID,
		FromTicker:    m.FromTicker,
		FromNetwork:   m.FromNetwork,
		ToTicker:      m.ToTicker,
		ToNetwork:     m.ToNetwork,
		FlowStandard:  m.FlowStandard,
		FlowFixedRate: m.FlowFixedRate,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toPairLeg(ticker, network string, name, image *string, featured *bool) domain.PairLeg {
	leg := domain.PairLeg{
		Ticker:  ticker,
		Network: network,
		Name:    strings.ToUpper(ticker),
	}
	if name != nil && *name != "" {
		leg.Name = *name
	}
	if image != nil {
		leg.ImageURL = *image
	}
	if featured != nil {
		leg.Featured = *featured
	}
	return leg
}
