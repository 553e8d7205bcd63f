// Package growth builds per-source and combined net-worth series from stored
// snapshots and the external account ledger.
package growth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/bobmcallan/tally/internal/services/ledger"
	"github.com/shopspring/decimal"
)

// Compile-time interface check
var _ interfaces.GrowthService = (*Service)(nil)

// Service implements GrowthService
type Service struct {
	storage      interfaces.StorageManager
	logger       *common.Logger
	currency     string
	defaultRange string
	now          func() time.Time
}

// NewService creates a new growth service. Display currency and default
// range come from config.
func NewService(storage interfaces.StorageManager, logger *common.Logger, config *common.Config) *Service {
	s := &Service{
		storage:  storage,
		logger:   logger,
		currency: "USD",
		now:      time.Now,
	}
	if config != nil {
		s.currency = config.DisplayCurrency
		s.defaultRange = config.Growth.DefaultRange
	}
	return s
}

// inputs is everything one request reads from storage.
type inputs struct {
	rows   map[models.Source][]models.SnapshotWithMetrics
	ledger *ledger.Ledger
}

// load fetches each source's snapshots and the user's ledger in parallel.
func (s *Service) load(ctx context.Context, userID string, sources []models.Source) (*inputs, error) {
	results := make([][]models.SnapshotWithMetrics, len(sources))
	var l *ledger.Ledger

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			rows, err := s.storage.SnapshotStore().ListSnapshotMetrics(gctx, userID, src)
			if err != nil {
				return fmt.Errorf("failed to list %s snapshots: %w", src, err)
			}
			results[i] = rows
			return nil
		})
	}
	g.Go(func() error {
		var err error
		l, err = ledger.Load(gctx, s.storage.AccountStore(), userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	in := &inputs{rows: make(map[models.Source][]models.SnapshotWithMetrics, len(sources)), ledger: l}
	for i, src := range sources {
		in.rows[src] = results[i]
	}
	return in, nil
}

// latestSnapshotID returns the chronologically last snapshot across rows.
func latestSnapshotID(rows ...[]models.SnapshotWithMetrics) string {
	var all []models.SnapshotWithMetrics
	for _, r := range rows {
		for _, row := range r {
			if row.Snapshot != nil && row.Metrics != nil {
				all = append(all, row)
			}
		}
	}
	if len(all) == 0 {
		return ""
	}
	models.SortSnapshotsWithMetrics(all)
	return all[len(all)-1].Snapshot.ID
}

type shape struct {
	sources  []models.Source
	rng      models.TimeRange
	interval string
	now      time.Time
}

func (s *Service) resolve(opts interfaces.GrowthOptions) (*shape, error) {
	sh := &shape{now: opts.Now}
	if sh.now.IsZero() {
		sh.now = s.now()
	}

	for _, src := range opts.Sources {
		if _, ok := models.ParseSource(string(src)); !ok {
			return nil, &models.ValidationError{Field: "sources", Message: fmt.Sprintf("unknown source %q", src)}
		}
	}
	sh.sources = normalizeSources(opts.Sources)

	raw := string(opts.Range)
	if raw == "" {
		raw = s.defaultRange
	}
	rng, err := ParseTimeRange(raw)
	if err != nil {
		return nil, err
	}
	sh.rng = rng

	if sh.interval, err = ParseInterval(opts.Interval); err != nil {
		return nil, err
	}
	return sh, nil
}

// BuildGrowthSeries merges the requested sources with the ledger
func (s *Service) BuildGrowthSeries(ctx context.Context, userID string, opts interfaces.GrowthOptions) ([]models.CombinedGrowthPoint, error) {
	sh, err := s.resolve(opts)
	if err != nil {
		return nil, err
	}
	in, err := s.load(ctx, userID, sh.sources)
	if err != nil {
		return nil, err
	}

	all := make([][]models.SnapshotWithMetrics, 0, len(sh.sources))
	for _, src := range sh.sources {
		all = append(all, in.rows[src])
	}
	build := BuildOptions{LiveSnapshotID: latestSnapshotID(all...)}

	series := make(map[models.Source][]models.GrowthPoint, len(sh.sources))
	for _, src := range sh.sources {
		series[src] = BuildSourceSeries(src, in.rows[src], in.ledger, build)
	}

	points := Combine(series, in.ledger, sh.sources)
	points = rechainCombined(downsample(FilterByRange(points, sh.rng, sh.now), sh.interval))

	s.logger.Info().
		Str("user_id", userID).
		Int("sources", len(sh.sources)).
		Str("range", string(sh.rng)).
		Str("interval", sh.interval).
		Int("points", len(points)).
		Msg("Growth series built")
	return points, nil
}

// BuildSourceGrowthSeries returns one source's series
func (s *Service) BuildSourceGrowthSeries(ctx context.Context, userID string, source models.Source, opts interfaces.GrowthOptions) ([]models.GrowthPoint, error) {
	src, ok := models.ParseSource(string(source))
	if !ok {
		return nil, &models.ValidationError{Field: "source", Message: fmt.Sprintf("unknown source %q", source)}
	}
	opts.Sources = []models.Source{src}
	sh, err := s.resolve(opts)
	if err != nil {
		return nil, err
	}
	in, err := s.load(ctx, userID, sh.sources)
	if err != nil {
		return nil, err
	}

	rows := in.rows[src]
	points := BuildSourceSeries(src, rows, in.ledger, BuildOptions{LiveSnapshotID: latestSnapshotID(rows)})
	points = rechainSource(downsample(FilterByRange(points, sh.rng, sh.now), sh.interval))

	s.logger.Info().
		Str("user_id", userID).
		Str("source", string(src)).
		Str("range", string(sh.rng)).
		Int("points", len(points)).
		Msg("Source growth series built")
	return points, nil
}

// NetWorthSummary reports the latest snapshot of every source plus live
// balances of active external accounts
func (s *Service) NetWorthSummary(ctx context.Context, userID string) (*models.NetWorthSummary, error) {
	in, err := s.load(ctx, userID, models.KnownSources)
	if err != nil {
		return nil, err
	}

	summary := &models.NetWorthSummary{
		AsOf:            s.now().UTC(),
		Sources:         make(map[models.Source]decimal.Decimal, len(models.KnownSources)),
		LatestSnapshots: make(map[models.Source]string),
	}
	for _, src := range models.KnownSources {
		summary.Sources[src] = decimal.Zero
		rows := in.rows[src]
		id := latestSnapshotID(rows)
		if id == "" {
			continue
		}
		for _, row := range rows {
			if row.Snapshot != nil && row.Metrics != nil && row.Snapshot.ID == id {
				summary.Sources[src] = row.Metrics.TotalMarketValue
				summary.TotalPortfolioValue = summary.TotalPortfolioValue.Add(row.Metrics.TotalMarketValue)
				summary.LatestSnapshots[src] = id
				break
			}
		}
	}

	assets, debt := in.ledger.LiveTotals()
	summary.ExternalAssets = assets.Decimal
	summary.ExternalDebt = debt.Decimal
	summary.NetWorth = summary.TotalPortfolioValue.Add(summary.ExternalAssets).Sub(summary.ExternalDebt)
	return summary, nil
}

// RenderChart draws the combined series as a PNG
func (s *Service) RenderChart(ctx context.Context, userID string, opts interfaces.GrowthOptions) ([]byte, error) {
	points, err := s.BuildGrowthSeries(ctx, userID, opts)
	if err != nil {
		return nil, err
	}
	png, err := RenderNetWorthChart(points, s.currency)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return png, nil
}
