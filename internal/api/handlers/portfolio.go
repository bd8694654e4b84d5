package handlers

import (
	"net/http"

	"github.com/finledger/transactions-service/internal/api/response"
	"github.com/finledger/transactions-service/internal/apperrors"
	"github.com/finledger/transactions-service/internal/service"
)

// PortfolioHandler handles HTTP requests for the derived portfolio read-model.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependency.
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Snapshot handles GET requests for the full portfolio snapshot: holdings,
// metrics and both allocation breakdowns, recomputed from the full ledger.
//
// Endpoint: GET /api/portfolio
// Response: 200 OK with PortfolioSnapshot
// Error: 500 Internal Server Error if the ledger cannot be read
func (h *PortfolioHandler) Snapshot(w http.ResponseWriter, _ *http.Request) {
	snapshot, err := h.portfolioService.GetSnapshot()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, response.CodeInternalError, apperrors.ErrFailedToBuildSnapshot.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshot)
}

// Metrics handles GET requests for the portfolio-wide aggregates only.
//
// Endpoint: GET /api/portfolio/metrics
func (h *PortfolioHandler) Metrics(w http.ResponseWriter, _ *http.Request) {
	metrics, err := h.portfolioService.GetMetrics()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, response.CodeInternalError, apperrors.ErrFailedToBuildSnapshot.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, metrics)
}

// Allocation handles GET requests for the allocation breakdowns only.
//
// Endpoint: GET /api/portfolio/allocation
func (h *PortfolioHandler) Allocation(w http.ResponseWriter, _ *http.Request) {
	allocation, err := h.portfolioService.GetAllocation()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, response.CodeInternalError, apperrors.ErrFailedToBuildSnapshot.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, allocation)
}
