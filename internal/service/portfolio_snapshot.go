package service

import (
	"math"
	"sort"

	"github.com/finledger/transactions-service/internal/model"
)

// Fallback labels for assets whose descriptive metadata was never supplied.
const (
	unknownAssetName = "Unknown Asset"
	unknownAssetType = "UNKNOWN"
)

// Output precision, applied once at the boundary. Intermediate sums stay exact.
const (
	quantityPrecision = 6
	pricePrecision    = 4
	monetaryPrecision = 2
	ratioPrecision    = 6
)

// positionKey identifies one aggregate position. Holdings are keyed by asset
// and currency even though the sell-sufficiency check is asset-only.
type positionKey struct {
	assetID  string
	currency string
}

// position accumulates the running state of one (asset, currency) pair while
// folding the ledger.
type position struct {
	assetID   string
	assetName string
	assetType string
	currency  string
	quantity  float64
	invested  float64
	lastPrice float64
}

// buildPortfolioSnapshot replays the full transaction history into holdings,
// portfolio metrics and allocation breakdowns. It is a pure function of its
// input: no I/O, deterministic, and it never fails on well-formed input.
func buildPortfolioSnapshot(transactions []model.Transaction) model.PortfolioSnapshot {
	sorted := make([]model.Transaction, len(transactions))
	copy(sorted, transactions)
	// Stable: equal trade dates keep their relative input order, which decides
	// the last-observed metadata and last price for those ties.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TradeDate.Before(sorted[j].TradeDate)
	})

	positions := make(map[positionKey]*position)
	keyOrder := []positionKey{}

	for _, tx := range sorted {
		key := positionKey{assetID: tx.AssetID, currency: tx.Currency}
		entry, ok := positions[key]
		if !ok {
			entry = &position{
				assetID:   tx.AssetID,
				assetName: unknownAssetName,
				assetType: unknownAssetType,
				currency:  tx.Currency,
			}
			positions[key] = entry
			keyOrder = append(keyOrder, key)
		}

		if tx.AssetName != "" {
			entry.assetName = tx.AssetName
		}
		if tx.AssetType != "" {
			entry.assetType = tx.AssetType
		}

		multiplier := 1.0
		if tx.OperationType == model.OperationSell {
			multiplier = -1.0
		}
		entry.quantity += multiplier * tx.Quantity
		entry.invested += multiplier * tx.Quantity * tx.Price
		// Every transaction overwrites: the last chronological trade's price
		// stands in for the current price.
		entry.lastPrice = tx.Price
	}

	holdings := []model.Holding{}
	for _, key := range keyOrder {
		entry := positions[key]
		// Closed-out and net-short positions are dropped from the visible
		// portfolio. Net-short only happens via out-of-band deletion of a buy.
		if entry.quantity <= 0 {
			continue
		}

		invested := entry.invested
		marketValue := entry.quantity * entry.lastPrice
		unrealizedPL := marketValue - invested

		unrealizedPLPct := 0.0
		if invested != 0 {
			unrealizedPLPct = unrealizedPL / invested
		}
		averageCost := 0.0
		if entry.quantity != 0 {
			averageCost = invested / entry.quantity
		}

		holdings = append(holdings, model.Holding{
			AssetID:         entry.assetID,
			AssetName:       entry.assetName,
			AssetType:       entry.assetType,
			Currency:        entry.currency,
			Quantity:        roundTo(entry.quantity, quantityPrecision),
			AverageCost:     roundTo(averageCost, pricePrecision),
			LastPrice:       roundTo(entry.lastPrice, pricePrecision),
			Invested:        roundTo(invested, monetaryPrecision),
			MarketValue:     roundTo(marketValue, monetaryPrecision),
			UnrealizedPL:    roundTo(unrealizedPL, monetaryPrecision),
			UnrealizedPLPct: roundTo(unrealizedPLPct, ratioPrecision),
		})
	}

	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].MarketValue > holdings[j].MarketValue
	})

	totalMarketValue := 0.0
	totalInvested := 0.0
	for _, h := range holdings {
		totalMarketValue += h.MarketValue
		totalInvested += h.Invested
	}
	// Difference of the sums, not a sum of per-holding rounded P&L, so rounding
	// error does not compound.
	totalUnrealizedPL := totalMarketValue - totalInvested
	totalUnrealizedPLPct := 0.0
	if totalInvested != 0 {
		totalUnrealizedPLPct = totalUnrealizedPL / totalInvested
	}

	return model.PortfolioSnapshot{
		Holdings: holdings,
		Metrics: model.PortfolioMetrics{
			TotalAssets:          len(holdings),
			TotalMarketValue:     roundTo(totalMarketValue, monetaryPrecision),
			TotalInvested:        roundTo(totalInvested, monetaryPrecision),
			TotalUnrealizedPL:    roundTo(totalUnrealizedPL, monetaryPrecision),
			TotalUnrealizedPLPct: roundTo(totalUnrealizedPLPct, ratioPrecision),
		},
		Allocation: model.PortfolioAllocation{
			ByAssetType: buildAllocation(holdings, totalMarketValue, func(h model.Holding) string { return h.AssetType }),
			ByCurrency:  buildAllocation(holdings, totalMarketValue, func(h model.Holding) string { return h.Currency }),
		},
	}
}

// buildAllocation groups holdings by label, sums market value per label and
// derives each label's weight in the total. Weights are zero when the total
// market value is zero.
func buildAllocation(holdings []model.Holding, totalMarketValue float64, labelOf func(model.Holding) string) []model.AllocationBucket {
	sums := make(map[string]float64)
	labelOrder := []string{}

	for _, h := range holdings {
		label := labelOf(h)
		if _, ok := sums[label]; !ok {
			labelOrder = append(labelOrder, label)
		}
		sums[label] += h.MarketValue
	}

	allocation := make([]model.AllocationBucket, 0, len(labelOrder))
	for _, label := range labelOrder {
		marketValue := sums[label]
		weight := 0.0
		if totalMarketValue != 0 {
			weight = marketValue / totalMarketValue
		}
		allocation = append(allocation, model.AllocationBucket{
			Label:       label,
			MarketValue: roundTo(marketValue, monetaryPrecision),
			Weight:      roundTo(weight, ratioPrecision),
		})
	}

	sort.SliceStable(allocation, func(i, j int) bool {
		return allocation[i].MarketValue > allocation[j].MarketValue
	})

	return allocation
}

// roundTo rounds half away from zero at the given number of decimal places.
func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
