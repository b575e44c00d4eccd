package entities

// LamportsPerSOL is the number of lamports per SOL.
const LamportsPerSOL = 1_000_000_000

// Position is a single claimable fee position returned by the launch platform.
// Positions are ephemeral: produced per aggregation call, never persisted.
type Position struct {
	Mint              string
	ClaimableLamports int64
}

// ClaimStat is one wallet's claimed total for a token mint.
type ClaimStat struct {
	Wallet       string
	TotalClaimed int64
}

// TokenMetadata holds display metadata for a token mint.
type TokenMetadata struct {
	Name    string
	Symbol  string
	LogoURI string
}

// TokenEarnings aggregates every position sharing a mint.
type TokenEarnings struct {
	Mint              string  `json:"mint"`
	Name              string  `json:"name"`
	Symbol            string  `json:"symbol"`
	LogoURI           *string `json:"logoURI"`
	UnclaimedLamports int64   `json:"unclaimedLamports"`
	ClaimedLamports   int64   `json:"claimedLamports"`
	PositionCount     int     `json:"positionCount"`
	UnclaimedUSD      float64 `json:"unclaimed"`
	ClaimedUSD        float64 `json:"claimed"`
	TotalUSD          float64 `json:"total"`
}

// WalletEarningsView is the complete earnings picture for a wallet.
// Tokens are sorted by descending total USD value.
type WalletEarningsView struct {
	Wallet         string          `json:"wallet"`
	TotalEarnedUSD float64         `json:"totalEarned"`
	UnclaimedUSD   float64         `json:"unclaimedFees"`
	ClaimedUSD     float64         `json:"claimedFees"`
	TokensCount    int             `json:"tokensCount"`
	PositionsCount int             `json:"positionsCount"`
	Tokens         []TokenEarnings `json:"tokens"`
}

// EarningsEvent records a positive unclaimed-fees delta for a wallet.
type EarningsEvent struct {
	Wallet        string
	DeltaLamports int64
	DeltaSOL      float64
	DeltaUSD      float64
}
