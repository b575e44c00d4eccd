package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
	"github.com/Pavelevich/bagstats-backend/internal/infrastructure/cache"
	"github.com/Pavelevich/bagstats-backend/internal/testutil"
)

func setupStatsServiceTest() (*StatsService, *testutil.MockPositionsFetcher, *testutil.MockClaimStatsFetcher, *testutil.MockMetadataFetcher) {
	positions := testutil.NewMockPositionsFetcher()
	claims := testutil.NewMockClaimStatsFetcher()
	metadata := testutil.NewMockMetadataFetcher()
	oracle := testutil.NewMockPriceOracle(200)
	statsCache := cache.NewMemoryStatsCache(0)
	logger := zap.NewNop()

	service := NewStatsService(positions, claims, metadata, oracle, statsCache, StatsConfig{}, logger)
	return service, positions, claims, metadata
}

func TestStatsService_ComputeEarnings_EmptyWallet(t *testing.T) {
	service, _, _, _ := setupStatsServiceTest()
	ctx := context.Background()

	view, err := service.ComputeEarnings(ctx, testutil.CreatorWallet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view.Wallet != testutil.CreatorWallet {
		t.Errorf("expected wallet %s, got %s", testutil.CreatorWallet, view.Wallet)
	}
	if view.TotalEarnedUSD != 0 {
		t.Errorf("expected zero total earned, got %f", view.TotalEarnedUSD)
	}
	if view.TokensCount != 0 || view.PositionsCount != 0 {
		t.Errorf("expected zero counts, got tokens=%d positions=%d", view.TokensCount, view.PositionsCount)
	}
	if len(view.Tokens) != 0 {
		t.Errorf("expected empty token list, got %d entries", len(view.Tokens))
	}
}

func TestStatsService_ComputeEarnings_MergesPositionsByMint(t *testing.T) {
	service, positions, claims, _ := setupStatsServiceTest()
	ctx := context.Background()

	// Two positions on the same mint, one on another, claimed fees on the first
	positions.Positions[testutil.CreatorWallet] = []entities.Position{
		{Mint: testutil.BonkMint, ClaimableLamports: 200_000_000},
		{Mint: testutil.BonkMint, ClaimableLamports: 400_000_000},
		{Mint: testutil.USDCMint, ClaimableLamports: 100_000_000},
	}
	claims.Stats[testutil.BonkMint] = []entities.ClaimStat{
		{Wallet: testutil.SecondWallet, TotalClaimed: 9_000_000_000},
		{Wallet: testutil.CreatorWallet, TotalClaimed: 100_000_000},
	}

	view, err := service.ComputeEarnings(ctx, testutil.CreatorWallet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view.TokensCount != 2 {
		t.Fatalf("expected 2 tokens, got %d", view.TokensCount)
	}
	if view.PositionsCount != 3 {
		t.Errorf("expected 3 positions, got %d", view.PositionsCount)
	}

	// At $200/SOL: bonk unclaimed 0.6 SOL = $120, claimed 0.1 SOL = $20
	bonk := view.Tokens[0]
	if bonk.Mint != testutil.BonkMint {
		t.Fatalf("expected bonk first (largest total), got %s", bonk.Mint)
	}
	if bonk.UnclaimedLamports != 600_000_000 {
		t.Errorf("expected 600000000 unclaimed lamports, got %d", bonk.UnclaimedLamports)
	}
	if bonk.ClaimedLamports != 100_000_000 {
		t.Errorf("expected 100000000 claimed lamports, got %d", bonk.ClaimedLamports)
	}
	if bonk.PositionCount != 2 {
		t.Errorf("expected 2 positions for bonk, got %d", bonk.PositionCount)
	}
	if bonk.UnclaimedUSD != 120 {
		t.Errorf("expected unclaimed $120, got %f", bonk.UnclaimedUSD)
	}
	if bonk.ClaimedUSD != 20 {
		t.Errorf("expected claimed $20, got %f", bonk.ClaimedUSD)
	}
	if bonk.TotalUSD != 140 {
		t.Errorf("expected total $140, got %f", bonk.TotalUSD)
	}

	// Wallet totals are the sums of the per-token USD values
	if view.UnclaimedUSD != 140 {
		t.Errorf("expected wallet unclaimed $140, got %f", view.UnclaimedUSD)
	}
	if view.ClaimedUSD != 20 {
		t.Errorf("expected wallet claimed $20, got %f", view.ClaimedUSD)
	}
	if view.TotalEarnedUSD != 160 {
		t.Errorf("expected wallet total $160, got %f", view.TotalEarnedUSD)
	}
}

func TestStatsService_ComputeEarnings_SortsByTotalDescending(t *testing.T) {
	service, positions, _, _ := setupStatsServiceTest()
	ctx := context.Background()

	positions.Positions[testutil.CreatorWallet] = []entities.Position{
		{Mint: testutil.USDCMint, ClaimableLamports: 100_000_000},
		{Mint: testutil.BonkMint, ClaimableLamports: 900_000_000},
	}

	view, err := service.ComputeEarnings(ctx, testutil.CreatorWallet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(view.Tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(view.Tokens))
	}
	if view.Tokens[0].Mint != testutil.BonkMint {
		t.Errorf("expected largest token first, got %s", view.Tokens[0].Mint)
	}
	if view.Tokens[0].TotalUSD < view.Tokens[1].TotalUSD {
		t.Error("expected tokens sorted by descending total")
	}
}

func TestStatsService_ComputeEarnings_AttachesMetadata(t *testing.T) {
	service, positions, _, metadata := setupStatsServiceTest()
	ctx := context.Background()

	positions.Positions[testutil.CreatorWallet] = []entities.Position{
		{Mint: testutil.BonkMint, ClaimableLamports: 100_000_000},
		{Mint: testutil.USDCMint, ClaimableLamports: 50_000_000},
	}
	metadata.Metadata[testutil.BonkMint] = &entities.TokenMetadata{
		Name:    "Bonk",
		Symbol:  "BONK",
		LogoURI: "https://example.com/bonk.png",
	}

	view, err := service.ComputeEarnings(ctx, testutil.CreatorWallet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var bonk, usdc *entities.TokenEarnings
	for i := range view.Tokens {
		switch view.Tokens[i].Mint {
		case testutil.BonkMint:
			bonk = &view.Tokens[i]
		case testutil.USDCMint:
			usdc = &view.Tokens[i]
		}
	}
	if bonk == nil || usdc == nil {
		t.Fatal("expected both mints in the view")
	}

	if bonk.Name != "Bonk" || bonk.Symbol != "BONK" {
		t.Errorf("expected resolved metadata, got name=%q symbol=%q", bonk.Name, bonk.Symbol)
	}
	if bonk.LogoURI == nil || *bonk.LogoURI != "https://example.com/bonk.png" {
		t.Error("expected logo URI to be set")
	}

	// Unknown mint falls back to placeholder name and symbol
	wantName := testutil.USDCMint[:6] + "..."
	if usdc.Name != wantName {
		t.Errorf("expected placeholder name %q, got %q", wantName, usdc.Name)
	}
	if usdc.Symbol != "EPJF" {
		t.Errorf("expected placeholder symbol EPJF, got %q", usdc.Symbol)
	}
	if usdc.LogoURI != nil {
		t.Error("expected nil logo URI for unknown mint")
	}
}

func TestStatsService_ComputeEarnings_ServesFromCache(t *testing.T) {
	service, positions, _, _ := setupStatsServiceTest()
	ctx := context.Background()

	positions.Positions[testutil.CreatorWallet] = []entities.Position{
		{Mint: testutil.BonkMint, ClaimableLamports: 100_000_000},
	}

	first, err := service.ComputeEarnings(ctx, testutil.CreatorWallet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := service.ComputeEarnings(ctx, testutil.CreatorWallet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if positions.Count() != 1 {
		t.Errorf("expected a single upstream fetch, got %d", positions.Count())
	}
	if first.TotalEarnedUSD != second.TotalEarnedUSD {
		t.Error("expected identical cached view")
	}
}

func TestStatsService_ComputeEarnings_PositionsFailureIsFatal(t *testing.T) {
	service, positions, _, _ := setupStatsServiceTest()
	ctx := context.Background()

	positions.ClaimablePositionsFunc = func(ctx context.Context, wallet string) ([]entities.Position, error) {
		return nil, errors.New("upstream down")
	}

	_, err := service.ComputeEarnings(ctx, testutil.CreatorWallet)
	if err == nil {
		t.Fatal("expected error")
	}

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %T", err)
	}
	if upstream.Source != "positions" {
		t.Errorf("expected positions source, got %s", upstream.Source)
	}
}

func TestStatsService_ComputeEarnings_PriceFailureUsesLastKnown(t *testing.T) {
	positions := testutil.NewMockPositionsFetcher()
	claims := testutil.NewMockClaimStatsFetcher()
	metadata := testutil.NewMockMetadataFetcher()
	oracle := testutil.NewMockPriceOracle(200)
	oracle.PriceFunc = func(ctx context.Context) (float64, error) {
		return 0, errors.New("price feed down")
	}
	oracle.Fallback = 150
	service := NewStatsService(positions, claims, metadata, oracle, cache.NewMemoryStatsCache(0), StatsConfig{}, zap.NewNop())

	positions.Positions[testutil.CreatorWallet] = []entities.Position{
		{Mint: testutil.BonkMint, ClaimableLamports: entities.LamportsPerSOL},
	}

	view, err := service.ComputeEarnings(context.Background(), testutil.CreatorWallet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1 SOL at the $150 fallback
	if view.UnclaimedUSD != 150 {
		t.Errorf("expected $150 from fallback price, got %f", view.UnclaimedUSD)
	}
}

func TestStatsService_ComputeEarnings_ClaimStatsFailureIsNonFatal(t *testing.T) {
	service, positions, claims, _ := setupStatsServiceTest()
	ctx := context.Background()

	positions.Positions[testutil.CreatorWallet] = []entities.Position{
		{Mint: testutil.BonkMint, ClaimableLamports: 500_000_000},
	}
	claims.ClaimStatsFunc = func(ctx context.Context, mint string) ([]entities.ClaimStat, error) {
		return nil, errors.New("claim stats down")
	}

	view, err := service.ComputeEarnings(ctx, testutil.CreatorWallet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view.Tokens[0].ClaimedLamports != 0 {
		t.Errorf("expected zero claimed on failure, got %d", view.Tokens[0].ClaimedLamports)
	}
	if view.Tokens[0].UnclaimedLamports != 500_000_000 {
		t.Errorf("expected unclaimed preserved, got %d", view.Tokens[0].UnclaimedLamports)
	}
}

func TestStatsService_ComputeEarnings_MetadataFailureIsNonFatal(t *testing.T) {
	service, positions, _, metadata := setupStatsServiceTest()
	ctx := context.Background()

	positions.Positions[testutil.CreatorWallet] = []entities.Position{
		{Mint: testutil.BonkMint, ClaimableLamports: 500_000_000},
	}
	metadata.TokenMetadataFunc = func(ctx context.Context, mint string) (*entities.TokenMetadata, error) {
		return nil, errors.New("metadata down")
	}

	view, err := service.ComputeEarnings(ctx, testutil.CreatorWallet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantName := testutil.BonkMint[:6] + "..."
	if view.Tokens[0].Name != wantName {
		t.Errorf("expected placeholder name %q, got %q", wantName, view.Tokens[0].Name)
	}
}

func TestStatsService_ComputeEarnings_MetadataCapRespected(t *testing.T) {
	positions := testutil.NewMockPositionsFetcher()
	claims := testutil.NewMockClaimStatsFetcher()
	metadata := testutil.NewMockMetadataFetcher()
	service := NewStatsService(positions, claims, metadata, testutil.NewMockPriceOracle(200),
		cache.NewMemoryStatsCache(0), StatsConfig{MetadataMaxMints: 1}, zap.NewNop())

	positions.Positions[testutil.CreatorWallet] = []entities.Position{
		{Mint: testutil.BonkMint, ClaimableLamports: 100},
		{Mint: testutil.USDCMint, ClaimableLamports: 100},
	}

	if _, err := service.ComputeEarnings(context.Background(), testutil.CreatorWallet); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if metadata.CallCount != 1 {
		t.Errorf("expected 1 metadata lookup, got %d", metadata.CallCount)
	}
}

func TestPlaceholderHelpers(t *testing.T) {
	if got := placeholderName("abc"); got != "abc" {
		t.Errorf("expected short mint unchanged, got %q", got)
	}
	if got := placeholderSymbol("ab"); got != "AB" {
		t.Errorf("expected uppercased short mint, got %q", got)
	}
	if got := placeholderName(testutil.BonkMint); got != "DezXAZ..." {
		t.Errorf("unexpected placeholder name %q", got)
	}
	if got := placeholderSymbol(testutil.BonkMint); got != "DEZX" {
		t.Errorf("unexpected placeholder symbol %q", got)
	}
}
