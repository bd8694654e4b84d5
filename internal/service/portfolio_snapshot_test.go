package service

import (
	"math"
	"testing"
	"time"

	"github.com/finledger/transactions-service/internal/model"
)

func day(date string) time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return t
}

func buy(assetID string, quantity, price float64, date string) model.Transaction {
	return model.Transaction{
		ID:            assetID + "-" + date,
		AssetID:       assetID,
		AssetName:     "Test Asset",
		AssetType:     "ETF",
		OperationType: model.OperationBuy,
		Quantity:      quantity,
		Price:         price,
		Currency:      "USD",
		TradeDate:     day(date),
	}
}

func sell(assetID string, quantity, price float64, date string) model.Transaction {
	tx := buy(assetID, quantity, price, date)
	tx.OperationType = model.OperationSell
	return tx
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuildPortfolioSnapshot_SingleBuy(t *testing.T) {
	snapshot := buildPortfolioSnapshot([]model.Transaction{
		buy("ETF123", 10, 100, "2024-01-10"),
	})

	if len(snapshot.Holdings) != 1 {
		t.Fatalf("Expected 1 holding, got %d", len(snapshot.Holdings))
	}
	h := snapshot.Holdings[0]
	if h.Quantity != 10 {
		t.Errorf("Expected quantity 10, got %g", h.Quantity)
	}
	if h.AverageCost != 100 {
		t.Errorf("Expected average cost 100, got %g", h.AverageCost)
	}
	if h.Invested != 1000 {
		t.Errorf("Expected invested 1000, got %g", h.Invested)
	}
	if h.MarketValue != 1000 {
		t.Errorf("Expected market value 1000, got %g", h.MarketValue)
	}
	if h.UnrealizedPL != 0 {
		t.Errorf("Expected unrealized P&L 0, got %g", h.UnrealizedPL)
	}
}

func TestBuildPortfolioSnapshot_EmptyLedger(t *testing.T) {
	snapshot := buildPortfolioSnapshot(nil)

	if len(snapshot.Holdings) != 0 {
		t.Errorf("Expected no holdings, got %d", len(snapshot.Holdings))
	}
	if snapshot.Metrics.TotalAssets != 0 || snapshot.Metrics.TotalMarketValue != 0 {
		t.Errorf("Expected zeroed metrics, got %+v", snapshot.Metrics)
	}
	if len(snapshot.Allocation.ByAssetType) != 0 || len(snapshot.Allocation.ByCurrency) != 0 {
		t.Errorf("Expected empty allocations, got %+v", snapshot.Allocation)
	}
}

func TestBuildPortfolioSnapshot_ClosedPositionDropped(t *testing.T) {
	snapshot := buildPortfolioSnapshot([]model.Transaction{
		buy("ETF123", 10, 100, "2024-01-10"),
		sell("ETF123", 10, 110, "2024-02-10"),
		buy("ETF999", 5, 50, "2024-01-15"),
	})

	if len(snapshot.Holdings) != 1 {
		t.Fatalf("Expected 1 holding, got %d", len(snapshot.Holdings))
	}
	if snapshot.Holdings[0].AssetID != "ETF999" {
		t.Errorf("Expected only ETF999 to remain, got %s", snapshot.Holdings[0].AssetID)
	}
	if snapshot.Metrics.TotalAssets != 1 {
		t.Errorf("Expected TotalAssets 1, got %d", snapshot.Metrics.TotalAssets)
	}
}

func TestBuildPortfolioSnapshot_NetShortPositionDropped(t *testing.T) {
	// Only reachable by deleting a buy after a sell was accepted.
	snapshot := buildPortfolioSnapshot([]model.Transaction{
		sell("ETF123", 5, 100, "2024-01-20"),
	})

	if len(snapshot.Holdings) != 0 {
		t.Errorf("Expected no holdings for a negative position, got %d", len(snapshot.Holdings))
	}
}

func TestBuildPortfolioSnapshot_AverageCostAfterPartialSell(t *testing.T) {
	snapshot := buildPortfolioSnapshot([]model.Transaction{
		buy("ETF123", 10, 100, "2024-01-10"),
		buy("ETF123", 10, 120, "2024-01-20"),
		sell("ETF123", 5, 130, "2024-02-01"),
	})

	if len(snapshot.Holdings) != 1 {
		t.Fatalf("Expected 1 holding, got %d", len(snapshot.Holdings))
	}
	h := snapshot.Holdings[0]
	// invested = 1000 + 1200 - 650 = 1550 over 15 units
	if h.Quantity != 15 {
		t.Errorf("Expected quantity 15, got %g", h.Quantity)
	}
	if !approxEqual(h.Invested, 1550) {
		t.Errorf("Expected invested 1550, got %g", h.Invested)
	}
	if !approxEqual(h.AverageCost, roundTo(1550.0/15.0, pricePrecision)) {
		t.Errorf("Expected average cost %g, got %g", roundTo(1550.0/15.0, pricePrecision), h.AverageCost)
	}
	if h.LastPrice != 130 {
		t.Errorf("Expected last price 130, got %g", h.LastPrice)
	}
	if !approxEqual(h.MarketValue, 1950) {
		t.Errorf("Expected market value 1950, got %g", h.MarketValue)
	}
}

func TestBuildPortfolioSnapshot_InputOrderIrrelevant(t *testing.T) {
	transactions := []model.Transaction{
		buy("ETF123", 10, 100, "2024-01-10"),
		sell("ETF123", 3, 110, "2024-02-10"),
		buy("ETF999", 5, 50, "2024-01-15"),
		buy("ETF123", 2, 105, "2024-01-20"),
	}
	reversed := make([]model.Transaction, len(transactions))
	for i, tx := range transactions {
		reversed[len(transactions)-1-i] = tx
	}

	a := buildPortfolioSnapshot(transactions)
	b := buildPortfolioSnapshot(reversed)

	if len(a.Holdings) != len(b.Holdings) {
		t.Fatalf("Holding counts differ: %d vs %d", len(a.Holdings), len(b.Holdings))
	}
	for i := range a.Holdings {
		if a.Holdings[i] != b.Holdings[i] {
			t.Errorf("Holding %d differs:\n%+v\n%+v", i, a.Holdings[i], b.Holdings[i])
		}
	}
	if a.Metrics != b.Metrics {
		t.Errorf("Metrics differ:\n%+v\n%+v", a.Metrics, b.Metrics)
	}
}

func TestBuildPortfolioSnapshot_CurrencySplitsPositions(t *testing.T) {
	usd := buy("ETF123", 5, 100, "2024-01-10")
	eur := buy("ETF123", 3, 90, "2024-01-15")
	eur.Currency = "EUR"

	snapshot := buildPortfolioSnapshot([]model.Transaction{usd, eur})

	if len(snapshot.Holdings) != 2 {
		t.Fatalf("Expected 2 holdings for the same asset in 2 currencies, got %d", len(snapshot.Holdings))
	}
	if snapshot.Metrics.TotalAssets != 2 {
		t.Errorf("Expected TotalAssets 2, got %d", snapshot.Metrics.TotalAssets)
	}
}

func TestBuildPortfolioSnapshot_LastMetadataWins(t *testing.T) {
	first := buy("ETF123", 10, 100, "2024-01-10")
	first.AssetName = ""
	first.AssetType = ""
	second := buy("ETF123", 5, 100, "2024-01-20")
	second.AssetName = "Renamed ETF"
	second.AssetType = "FUND"
	third := buy("ETF123", 5, 100, "2024-01-30")
	third.AssetName = ""
	third.AssetType = ""

	snapshot := buildPortfolioSnapshot([]model.Transaction{first, second, third})

	h := snapshot.Holdings[0]
	// Empty metadata never overwrites an earlier observed value.
	if h.AssetName != "Renamed ETF" {
		t.Errorf("Expected asset name from last non-empty trade, got %q", h.AssetName)
	}
	if h.AssetType != "FUND" {
		t.Errorf("Expected asset type from last non-empty trade, got %q", h.AssetType)
	}
}

func TestBuildPortfolioSnapshot_MetadataNeverSupplied(t *testing.T) {
	tx := buy("ETF123", 10, 100, "2024-01-10")
	tx.AssetName = ""
	tx.AssetType = ""

	snapshot := buildPortfolioSnapshot([]model.Transaction{tx})

	h := snapshot.Holdings[0]
	if h.AssetName != unknownAssetName {
		t.Errorf("Expected %q, got %q", unknownAssetName, h.AssetName)
	}
	if h.AssetType != unknownAssetType {
		t.Errorf("Expected %q, got %q", unknownAssetType, h.AssetType)
	}
}

func TestBuildPortfolioSnapshot_HoldingsSortedByMarketValue(t *testing.T) {
	snapshot := buildPortfolioSnapshot([]model.Transaction{
		buy("SMALL", 1, 10, "2024-01-10"),
		buy("LARGE", 10, 100, "2024-01-10"),
		buy("MID", 5, 50, "2024-01-10"),
	})

	if len(snapshot.Holdings) != 3 {
		t.Fatalf("Expected 3 holdings, got %d", len(snapshot.Holdings))
	}
	order := []string{"LARGE", "MID", "SMALL"}
	for i, want := range order {
		if snapshot.Holdings[i].AssetID != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, snapshot.Holdings[i].AssetID)
		}
	}
}

func TestBuildPortfolioSnapshot_Metrics(t *testing.T) {
	snapshot := buildPortfolioSnapshot([]model.Transaction{
		buy("ETF123", 10, 100, "2024-01-10"),
		sell("ETF123", 5, 120, "2024-02-01"),
		buy("ETF999", 4, 50, "2024-01-15"),
	})

	m := snapshot.Metrics
	// ETF123: qty 5, invested 400, market 600. ETF999: qty 4, invested 200, market 200.
	if !approxEqual(m.TotalMarketValue, 800) {
		t.Errorf("Expected total market value 800, got %g", m.TotalMarketValue)
	}
	if !approxEqual(m.TotalInvested, 600) {
		t.Errorf("Expected total invested 600, got %g", m.TotalInvested)
	}
	if !approxEqual(m.TotalUnrealizedPL, 200) {
		t.Errorf("Expected total unrealized P&L 200, got %g", m.TotalUnrealizedPL)
	}
	if !approxEqual(m.TotalUnrealizedPLPct, roundTo(200.0/600.0, ratioPrecision)) {
		t.Errorf("Expected total P&L pct %g, got %g", roundTo(200.0/600.0, ratioPrecision), m.TotalUnrealizedPLPct)
	}
	if m.TotalAssets != 2 {
		t.Errorf("Expected 2 assets, got %d", m.TotalAssets)
	}
}

func TestBuildPortfolioSnapshot_AllocationWeightsSumToOne(t *testing.T) {
	chf := buy("BOND1", 7, 30, "2024-01-12")
	chf.Currency = "CHF"
	chf.AssetType = "BOND"

	snapshot := buildPortfolioSnapshot([]model.Transaction{
		buy("ETF123", 10, 100, "2024-01-10"),
		buy("ETF999", 5, 40, "2024-01-11"),
		chf,
	})

	for name, buckets := range map[string][]model.AllocationBucket{
		"by_asset_type": snapshot.Allocation.ByAssetType,
		"by_currency":   snapshot.Allocation.ByCurrency,
	} {
		total := 0.0
		for _, bucket := range buckets {
			total += bucket.Weight
		}
		if math.Abs(total-1.0) > 1e-4 {
			t.Errorf("%s weights sum to %g, expected ~1", name, total)
		}
	}

	if len(snapshot.Allocation.ByAssetType) != 2 {
		t.Errorf("Expected 2 asset type buckets, got %d", len(snapshot.Allocation.ByAssetType))
	}
	if snapshot.Allocation.ByAssetType[0].Label != "ETF" {
		t.Errorf("Expected largest bucket first, got %s", snapshot.Allocation.ByAssetType[0].Label)
	}
	if len(snapshot.Allocation.ByCurrency) != 2 {
		t.Errorf("Expected 2 currency buckets, got %d", len(snapshot.Allocation.ByCurrency))
	}
}

func TestBuildPortfolioSnapshot_ZeroInvestedGuard(t *testing.T) {
	// Free shares: invested nets to zero while quantity does not.
	snapshot := buildPortfolioSnapshot([]model.Transaction{
		buy("ETF123", 10, 0, "2024-01-10"),
	})

	h := snapshot.Holdings[0]
	if h.UnrealizedPLPct != 0 {
		t.Errorf("Expected P&L pct 0 when invested is 0, got %g", h.UnrealizedPLPct)
	}
	if snapshot.Metrics.TotalUnrealizedPLPct != 0 {
		t.Errorf("Expected total P&L pct 0, got %g", snapshot.Metrics.TotalUnrealizedPLPct)
	}
	// With no market value the weights are zero as well.
	for _, bucket := range snapshot.Allocation.ByCurrency {
		if bucket.Weight != 0 {
			t.Errorf("Expected weight 0 with zero total market value, got %g", bucket.Weight)
		}
	}
}

func TestBuildPortfolioSnapshot_Rounding(t *testing.T) {
	snapshot := buildPortfolioSnapshot([]model.Transaction{
		buy("ETF123", 3, 99.99994, "2024-01-10"),
	})

	h := snapshot.Holdings[0]
	if h.LastPrice != 99.9999 {
		t.Errorf("Expected price rounded to 4 places, got %v", h.LastPrice)
	}
	if h.Invested != 300.00 {
		t.Errorf("Expected invested rounded to 2 places, got %v", h.Invested)
	}
	if h.MarketValue != 300.00 {
		t.Errorf("Expected market value rounded to 2 places, got %v", h.MarketValue)
	}
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		places int
		want   float64
	}{
		{"rounds up past the midpoint", 2.346, 2, 2.35},
		{"rounds down below the midpoint", 2.344, 2, 2.34},
		{"negative rounds away from zero", -2.346, 2, -2.35},
		{"quantity precision", 1.2345678, 6, 1.234568},
		{"no-op on exact value", 10.25, 2, 10.25},
		{"zero places", 2.5, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := roundTo(tt.value, tt.places); !approxEqual(got, tt.want) {
				t.Errorf("roundTo(%g, %d) = %g, expected %g", tt.value, tt.places, got, tt.want)
			}
		})
	}
}
