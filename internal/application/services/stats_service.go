package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
)

// PositionsFetcher fetches claimable fee positions for a wallet
type PositionsFetcher interface {
	ClaimablePositions(ctx context.Context, wallet string) ([]entities.Position, error)
}

// ClaimStatsFetcher fetches per-wallet claimed totals for a token mint
type ClaimStatsFetcher interface {
	ClaimStats(ctx context.Context, mint string) ([]entities.ClaimStat, error)
}

// MetadataFetcher fetches token display metadata; (nil, nil) means unknown mint
type MetadataFetcher interface {
	TokenMetadata(ctx context.Context, mint string) (*entities.TokenMetadata, error)
}

// PriceOracle provides the current SOL/USD price with a last-known fallback
type PriceOracle interface {
	Price(ctx context.Context) (float64, error)
	LastKnown() float64
}

// StatsCache caches computed wallet earnings views with a fixed TTL
type StatsCache interface {
	Get(ctx context.Context, wallet string) (*entities.WalletEarningsView, bool)
	Put(ctx context.Context, wallet string, view *entities.WalletEarningsView)
}

// StatsConfig tunes the aggregation pipeline
type StatsConfig struct {
	// ClaimStatsDelay paces successive claim-stats fetches to respect
	// upstream rate limits
	ClaimStatsDelay time.Duration

	// MetadataMaxMints caps how many mints get a metadata lookup; overflow
	// mints keep placeholder name/symbol
	MetadataMaxMints int

	// MetadataWorkers bounds parallel metadata fetches
	MetadataWorkers int
}

// StatsService aggregates positions, claim stats, metadata and price into a
// consistent per-wallet earnings view
type StatsService struct {
	positions PositionsFetcher
	claims    ClaimStatsFetcher
	metadata  MetadataFetcher
	oracle    PriceOracle
	cache     StatsCache
	cfg       StatsConfig
	logger    *zap.Logger

	limiter *rate.Limiter
	group   singleflight.Group
}

// NewStatsService creates a new stats service
func NewStatsService(
	positions PositionsFetcher,
	claims ClaimStatsFetcher,
	metadata MetadataFetcher,
	oracle PriceOracle,
	cache StatsCache,
	cfg StatsConfig,
	logger *zap.Logger,
) *StatsService {
	if cfg.ClaimStatsDelay <= 0 {
		cfg.ClaimStatsDelay = 50 * time.Millisecond
	}
	if cfg.MetadataMaxMints <= 0 {
		cfg.MetadataMaxMints = 30
	}
	if cfg.MetadataWorkers <= 0 {
		cfg.MetadataWorkers = 4
	}

	return &StatsService{
		positions: positions,
		claims:    claims,
		metadata:  metadata,
		oracle:    oracle,
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
		limiter:   rate.NewLimiter(rate.Every(cfg.ClaimStatsDelay), 1),
	}
}

// ComputeEarnings returns the earnings view for a wallet, serving from cache
// within the TTL. Concurrent calls for the same wallet share one computation.
func (s *StatsService) ComputeEarnings(ctx context.Context, wallet string) (*entities.WalletEarningsView, error) {
	if view, ok := s.cache.Get(ctx, wallet); ok {
		s.logger.Debug("Stats cache hit", zap.String("wallet", wallet))
		return view, nil
	}

	v, err, _ := s.group.Do(wallet, func() (interface{}, error) {
		// A concurrent caller may have filled the cache while we waited
		if view, ok := s.cache.Get(ctx, wallet); ok {
			return view, nil
		}

		view, err := s.computeFresh(ctx, wallet)
		if err != nil {
			return nil, err
		}

		s.cache.Put(ctx, wallet, view)
		return view, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*entities.WalletEarningsView), nil
}

func (s *StatsService) computeFresh(ctx context.Context, wallet string) (*entities.WalletEarningsView, error) {
	// Positions are the only mandatory source
	positions, err := s.positions.ClaimablePositions(ctx, wallet)
	if err != nil {
		return nil, &UpstreamError{Source: "positions", Err: err}
	}

	price, err := s.oracle.Price(ctx)
	if err != nil {
		price = s.oracle.LastKnown()
		s.logger.Warn("Price fetch failed, using last known",
			zap.Float64("price", price),
			zap.Error(err),
		)
	}

	// Distinct mints, in order of first appearance
	var mints []string
	seen := make(map[string]bool)
	for _, pos := range positions {
		if !seen[pos.Mint] {
			seen[pos.Mint] = true
			mints = append(mints, pos.Mint)
		}
	}

	claimedByMint := s.fetchClaimedTotals(ctx, wallet, mints)

	// Fold positions into per-mint aggregates
	aggregates := make(map[string]*entities.TokenEarnings, len(mints))
	for _, pos := range positions {
		agg, ok := aggregates[pos.Mint]
		if !ok {
			agg = &entities.TokenEarnings{Mint: pos.Mint}
			aggregates[pos.Mint] = agg
		}
		agg.UnclaimedLamports += pos.ClaimableLamports
		agg.PositionCount++
	}
	for mint, claimed := range claimedByMint {
		if agg, ok := aggregates[mint]; ok {
			agg.ClaimedLamports = claimed
		}
	}

	s.attachMetadata(ctx, mints, aggregates)

	// Convert to USD once, at the end, so wallet totals and per-token values
	// share a single conversion point
	tokens := make([]entities.TokenEarnings, 0, len(mints))
	for _, mint := range mints {
		agg := aggregates[mint]
		if agg.Name == "" {
			agg.Name = placeholderName(mint)
		}
		if agg.Symbol == "" {
			agg.Symbol = placeholderSymbol(mint)
		}
		agg.UnclaimedUSD = lamportsToUSD(agg.UnclaimedLamports, price)
		agg.ClaimedUSD = lamportsToUSD(agg.ClaimedLamports, price)
		agg.TotalUSD = agg.UnclaimedUSD + agg.ClaimedUSD
		tokens = append(tokens, *agg)
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].TotalUSD > tokens[j].TotalUSD
	})

	view := &entities.WalletEarningsView{
		Wallet:         wallet,
		TokensCount:    len(tokens),
		PositionsCount: len(positions),
		Tokens:         tokens,
	}
	for _, t := range tokens {
		view.UnclaimedUSD += t.UnclaimedUSD
		view.ClaimedUSD += t.ClaimedUSD
	}
	view.TotalEarnedUSD = view.UnclaimedUSD + view.ClaimedUSD

	return view, nil
}

// fetchClaimedTotals looks up the wallet's claimed amount for every mint.
// Each fetch is independent: a failure for one mint never aborts the others.
func (s *StatsService) fetchClaimedTotals(ctx context.Context, wallet string, mints []string) map[string]int64 {
	claimed := make(map[string]int64)

	for _, mint := range mints {
		if err := s.limiter.Wait(ctx); err != nil {
			return claimed
		}

		stats, err := s.claims.ClaimStats(ctx, mint)
		if err != nil {
			s.logger.Warn("Claim stats fetch failed",
				zap.String("mint", mint),
				zap.Error(err),
			)
			continue
		}

		for _, st := range stats {
			if st.Wallet == wallet {
				claimed[mint] = st.TotalClaimed
				break
			}
		}
	}

	return claimed
}

// attachMetadata resolves name/symbol/logo for up to MetadataMaxMints mints
// with bounded parallelism. Failures are non-fatal per mint.
func (s *StatsService) attachMetadata(ctx context.Context, mints []string, aggregates map[string]*entities.TokenEarnings) {
	fetch := mints
	if len(fetch) > s.cfg.MetadataMaxMints {
		fetch = fetch[:s.cfg.MetadataMaxMints]
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MetadataWorkers)

	var mu sync.Mutex
	for _, mint := range fetch {
		mint := mint
		g.Go(func() error {
			meta, err := s.metadata.TokenMetadata(gctx, mint)
			if err != nil {
				s.logger.Warn("Metadata fetch failed",
					zap.String("mint", mint),
					zap.Error(err),
				)
				return nil
			}
			if meta == nil {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			agg, ok := aggregates[mint]
			if !ok {
				return nil
			}
			agg.Name = meta.Name
			agg.Symbol = meta.Symbol
			if meta.LogoURI != "" {
				uri := meta.LogoURI
				agg.LogoURI = &uri
			}
			return nil
		})
	}

	_ = g.Wait()
}

func lamportsToUSD(lamports int64, price float64) float64 {
	return float64(lamports) / entities.LamportsPerSOL * price
}

func placeholderName(mint string) string {
	if len(mint) > 6 {
		return mint[:6] + "..."
	}
	return mint
}

func placeholderSymbol(mint string) string {
	if len(mint) > 4 {
		return strings.ToUpper(mint[:4])
	}
	return strings.ToUpper(mint)
}
