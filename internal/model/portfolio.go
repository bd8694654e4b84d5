package model

// Holding is the derived aggregate position for one (asset, currency) pair.
// It is computed fresh from the full ledger on every query, never persisted.
type Holding struct {
	AssetID         string  `json:"asset_id"`
	AssetName       string  `json:"asset_name"`
	AssetType       string  `json:"asset_type"`
	Currency        string  `json:"currency"`
	Quantity        float64 `json:"quantity"`
	AverageCost     float64 `json:"average_cost"`
	LastPrice       float64 `json:"last_price"`
	Invested        float64 `json:"invested"`
	MarketValue     float64 `json:"market_value"`
	UnrealizedPL    float64 `json:"unrealized_pl"`
	UnrealizedPLPct float64 `json:"unrealized_pl_pct"`
}

// AllocationBucket groups market value under a categorical label
// (asset type or currency) with its weight in the total portfolio.
type AllocationBucket struct {
	Label       string  `json:"label"`
	MarketValue float64 `json:"market_value"`
	Weight      float64 `json:"weight"`
}

// PortfolioMetrics are the portfolio-wide aggregates over all holdings.
type PortfolioMetrics struct {
	TotalAssets          int     `json:"total_assets"`
	TotalMarketValue     float64 `json:"total_market_value"`
	TotalInvested        float64 `json:"total_invested"`
	TotalUnrealizedPL    float64 `json:"total_unrealized_pl"`
	TotalUnrealizedPLPct float64 `json:"total_unrealized_pl_pct"`
}

// PortfolioAllocation holds both allocation breakdowns.
type PortfolioAllocation struct {
	ByAssetType []AllocationBucket `json:"by_asset_type"`
	ByCurrency  []AllocationBucket `json:"by_currency"`
}

// PortfolioSnapshot is the full portfolio read-model derived from the ledger.
type PortfolioSnapshot struct {
	Holdings   []Holding           `json:"holdings"`
	Metrics    PortfolioMetrics    `json:"metrics"`
	Allocation PortfolioAllocation `json:"allocation"`
}
