package usecase

import (
	"context"
	"strings"

	"github.com/blockhaven/backend/src/exchange/domain"
	"golang.org/x/sync/errgroup"
)

// Pair listings arrive in the hundreds of thousands; they are staged and
// written in fixed-size slices to bound both memory and statement size.
const pairBatchSize = 1000

// SyncCurrencies refreshes the currency catalog from the provider. The run is
// read-compare-write: provider entries are deduplicated (last occurrence
// wins), compared against the local table, and only rows that are new or
// meaningfully changed are written back. Concurrent calls collapse into one
// underlying run.
func (s *Service) SyncCurrencies(ctx context.Context) (*domain.SyncReport, error) {
	v, err, _ := s.syncGroup.Do("currencies", func() (interface{}, error) {
		return s.syncCurrencies(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.SyncReport), nil
}

func (s *Service) syncCurrencies(ctx context.Context) (*domain.SyncReport, error) {
	var (
		remote []domain.ProviderCurrency
		local  []domain.Currency
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		remote, err = s.provider.ListCurrencies(gctx)
		return err
	})
	g.Go(func() (err error) {
		local, err = s.currencies.ListAll(gctx)
		if err != nil {
			err = &domain.PersistenceError{Op: "list currencies", Err: err}
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &domain.SyncReport{Processed: len(remote)}

	// Provider listings repeat (ticker, network) combinations; the last
	// occurrence wins so a refreshed entry later in the feed supersedes an
	// earlier stale one.
	deduped := make(map[string]domain.ProviderCurrency, len(remote))
	order := make([]string, 0, len(remote))
	for _, c := range remote {
		if c.Ticker == "" {
			report.Skipped++
			continue
		}
		key := domain.CurrencyKey(c.Ticker, c.Network)
		if _, seen := deduped[key]; seen {
			report.Duplicates++
		} else {
			order = append(order, key)
		}
		deduped[key] = c
	}

	index := make(map[string]domain.Currency, len(local))
	for _, c := range local {
		index[c.Key()] = c
	}

	staged := make([]domain.Currency, 0, len(order))
	for _, key := range order {
		entry := deduped[key]
		existing, ok := index[key]
		if !ok {
			staged = append(staged, domain.Currency{
				Ticker:             strings.ToLower(entry.Ticker),
				Network:            strings.ToLower(entry.Network),
				Name:               entry.Name,
				ImageURL:           entry.Image,
				HasExternalID:      entry.HasExternalID,
				IsExtraIDSupported: entry.IsExtraIDSupported,
				IsFiat:             entry.IsFiat,
				Featured:           entry.Featured,
				IsStable:           entry.IsStable,
				SupportsFixedRate:  entry.SupportsFixedRate,
				TokenContract:      entry.TokenContract,
				BuyEnabled:         entry.Buy,
				SellEnabled:        entry.Sell,
				LegacyTicker:       entry.LegacyTicker,
				IsActive:           true,
			})
			report.Inserted++
			continue
		}

		// Existing rows are touched only when the provider reports a better
		// display name or an icon the row is missing. Everything else stays
		// as-is so unchanged re-runs are write-free.
		changed := false
		if entry.Name != "" && entry.Name != existing.Name {
			existing.Name = entry.Name
			changed = true
		}
		if existing.ImageURL == "" && entry.Image != "" {
			existing.ImageURL = entry.Image
			changed = true
		}
		if changed {
			staged = append(staged, existing)
			report.Updated++
		}
	}

	if err := s.currencies.UpsertBatch(ctx, staged); err != nil {
		return nil, &domain.PersistenceError{Op: "upsert currencies", Err: err}
	}

	s.logger.Infof("currency sync: processed=%d inserted=%d updated=%d skipped=%d duplicates=%d",
		report.Processed, report.Inserted, report.Updated, report.Skipped, report.Duplicates)
	return report, nil
}

// SyncPairs refreshes the pair catalog. Entries are staged in memory against a
// shared index and flushed in fixed-size batches: unknown 4-tuples become
// inserts, known ones get their flow flags widened. Flags only ever turn on
// during a run; retiring a pair is an operator decision, not a sync side
// effect. Concurrent calls collapse into one underlying run.
func (s *Service) SyncPairs(ctx context.Context) (*domain.SyncReport, error) {
	v, err, _ := s.syncGroup.Do("pairs", func() (interface{}, error) {
		return s.syncPairs(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.SyncReport), nil
}

func (s *Service) syncPairs(ctx context.Context) (*domain.SyncReport, error) {
	var (
		remote []domain.ProviderPair
		local  []domain.Pair
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		remote, err = s.provider.ListPairs(gctx, domain.PairFilter{})
		return err
	})
	g.Go(func() (err error) {
		local, err = s.pairs.ListAll(gctx)
		if err != nil {
			err = &domain.PersistenceError{Op: "list pairs", Err: err}
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The index is shared across batches: a pair inserted in batch N must be
	// recognized as existing when batch N+5 repeats it.
	index := make(map[string]*domain.Pair, len(local))
	for i := range local {
		index[local[i].Key()] = &local[i]
	}

	report := &domain.SyncReport{Processed: len(remote)}

	for start := 0; start < len(remote); start += pairBatchSize {
		end := start + pairBatchSize
		if end > len(remote) {
			end = len(remote)
		}

		inserts := make([]domain.Pair, 0, end-start)
		insertedKeys := make(map[string]int)
		updatedKeys := make(map[string]struct{})

		for _, entry := range remote[start:end] {
			from := entry.ResolveFrom()
			to := entry.ResolveTo()
			if from.Ticker == "" || to.Ticker == "" {
				s.logger.Warnf("pair sync: skipping entry with unresolvable ticker (from=%q to=%q)", from.Ticker, to.Ticker)
				report.Skipped++
				continue
			}

			fromTicker := strings.ToLower(from.Ticker)
			fromNetwork := strings.ToLower(from.Network)
			toTicker := strings.ToLower(to.Ticker)
			toNetwork := strings.ToLower(to.Network)

			std := entry.SupportsStandard()
			fixed := entry.SupportsFixedRate()
			if !std && !fixed && entry.Flow == "" && entry.FlowType == "" && len(entry.Flows) == 0 {
				// No flow information at all means the legacy listing, which
				// only ever carried standard-flow pairs.
				std = true
			}

			key := domain.PairKey(fromTicker, fromNetwork, toTicker, toNetwork)
			existing, ok := index[key]
			if !ok {
				p := domain.Pair{
					FromTicker:    fromTicker,
					FromNetwork:   fromNetwork,
					ToTicker:      toTicker,
					ToNetwork:     toNetwork,
					FlowStandard:  std,
					FlowFixedRate: fixed,
					IsActive:      true,
				}
				inserts = append(inserts, p)
				insertedKeys[key] = len(inserts) - 1
				index[key] = &inserts[len(inserts)-1]
				continue
			}

			changed := false
			if std && !existing.FlowStandard {
				existing.FlowStandard = true
				changed = true
			}
			if fixed && !existing.FlowFixedRate {
				existing.FlowFixedRate = true
				changed = true
			}
			if !existing.IsActive {
				existing.IsActive = true
				changed = true
			}
			if !changed {
				continue
			}
			// Flag widening on a row staged for insert in this same batch is
			// already captured by the shared pointer.
			if _, stagedInsert := insertedKeys[key]; !stagedInsert {
				updatedKeys[key] = struct{}{}
			}
		}

		updates := make([]domain.Pair, 0, len(updatedKeys))
		for key := range updatedKeys {
			updates = append(updates, *index[key])
		}

		if err := s.pairs.InsertBatch(ctx, inserts); err != nil {
			return nil, &domain.PersistenceError{Op: "insert pairs", Err: err}
		}
		if err := s.pairs.UpdateFlags(ctx, updates); err != nil {
			return nil, &domain.PersistenceError{Op: "update pair flags", Err: err}
		}
		report.Inserted += len(inserts)
		report.Updated += len(updates)

		// Staged inserts escape their batch slice once flushed; re-point the
		// index at stable copies so later batches keep widening correctly.
		for key, i := range insertedKeys {
			p := inserts[i]
			index[key] = &p
		}
	}

	s.logger.Infof("pair sync: processed=%d inserted=%d updated=%d skipped=%d",
		report.Processed, report.Inserted, report.Updated, report.Skipped)
	return report, nil
}

// SyncAll refreshes currencies first, then pairs. A currency failure is
// logged and does not block the pair run; pairs are the catalog users trade
// against, currency metadata only decorates them.
func (s *Service) SyncAll(ctx context.Context) (currencies, pairs *domain.SyncReport, err error) {
	currencies, cerr := s.SyncCurrencies(ctx)
	if cerr != nil {
		s.logger.Warnf("currency sync failed, continuing with pairs: %v", cerr)
	}
	pairs, err = s.SyncPairs(ctx)
	if err != nil {
		return currencies, nil, err
	}
	return currencies, pairs, nil
}
