package service

import (
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/finledger/transactions-service/internal/model"
	"github.com/finledger/transactions-service/internal/repository"
)

// PortfolioService derives the portfolio read-model from the transaction
// ledger. The aggregation itself is pure; this service owns fetching the
// ledger and collapsing concurrent recomputations. Snapshot reads tolerate
// staleness: they see whatever was committed by read time.
type PortfolioService struct {
	transactionRepo *repository.TransactionRepository

	// group deduplicates concurrent snapshot builds over the same ledger read.
	group singleflight.Group
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(transactionRepo *repository.TransactionRepository) *PortfolioService {
	return &PortfolioService{transactionRepo: transactionRepo}
}

// GetSnapshot replays the full ledger into the portfolio snapshot.
func (s *PortfolioService) GetSnapshot() (model.PortfolioSnapshot, error) {
	result, err, _ := s.group.Do("snapshot", func() (any, error) {
		transactions, err := s.transactionRepo.FindAll()
		if err != nil {
			return model.PortfolioSnapshot{}, fmt.Errorf("failed to load ledger: %w", err)
		}
		return buildPortfolioSnapshot(transactions), nil
	})
	if err != nil {
		return model.PortfolioSnapshot{}, err
	}
	return result.(model.PortfolioSnapshot), nil
}

// GetMetrics returns only the portfolio-wide aggregates.
func (s *PortfolioService) GetMetrics() (model.PortfolioMetrics, error) {
	snapshot, err := s.GetSnapshot()
	if err != nil {
		return model.PortfolioMetrics{}, err
	}
	return snapshot.Metrics, nil
}

// GetAllocation returns only the allocation breakdowns.
func (s *PortfolioService) GetAllocation() (model.PortfolioAllocation, error) {
	snapshot, err := s.GetSnapshot()
	if err != nil {
		return model.PortfolioAllocation{}, err
	}
	return snapshot.Allocation, nil
}
