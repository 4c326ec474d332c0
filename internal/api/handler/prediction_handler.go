package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oddsline/tracker/internal/api/middleware"
	"github.com/oddsline/tracker/internal/domain"
	"github.com/oddsline/tracker/internal/service"
)

// PredictionHandler serves placement, history, and statistics endpoints.
type PredictionHandler struct {
	lifecycleSvc *service.LifecycleService
}

// NewPredictionHandler creates a PredictionHandler.
func NewPredictionHandler(lifecycleSvc *service.LifecycleService) *PredictionHandler {
	return &PredictionHandler{lifecycleSvc: lifecycleSvc}
}

// Place godoc
// POST /api/predictions [wallet]
// Body: {"market_id":"0xabc…","outcome":"YES","amount":"10.00"}
func (h *PredictionHandler) Place(c *gin.Context) {
	address := middleware.GetWalletAddress(c)

	var body struct {
		MarketID string `json:"market_id" binding:"required"`
		Outcome  string `json:"outcome"   binding:"required"`
		Amount   string `json:"amount"    binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", domain.ErrInvalidAmount.Error())
		return
	}

	req := domain.PlacePredictionRequest{
		Address:  address,
		MarketID: body.MarketID,
		Outcome:  domain.Outcome(body.Outcome),
		Amount:   amount,
	}

	p, err := h.lifecycleSvc.PlacePrediction(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTransactionFailed):
			respondError(c, http.StatusBadGateway, "ERR_TX_FAILED", err.Error())
		case errors.Is(err, domain.ErrRecordFailed):
			// The transfer went through; the message carries the tx hash the
			// user must keep.
			respondError(c, http.StatusInternalServerError, "ERR_NOT_RECORDED", err.Error())
		default:
			respondDomainError(c, err)
		}
		return
	}

	respondSuccess(c, http.StatusCreated, p.ToResponse())
}

// List godoc
// GET /api/predictions?limit=20&offset=0 [wallet]
func (h *PredictionHandler) List(c *gin.Context) {
	address := middleware.GetWalletAddress(c)
	limit, offset := pagination(c)

	predictions, err := h.lifecycleSvc.GetPredictions(c.Request.Context(), address, limit, offset)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	items := make([]domain.PredictionResponse, 0, len(predictions))
	for _, p := range predictions {
		items = append(items, p.ToResponse())
	}
	respondList(c, items, len(items), limit, offset)
}

// GetByID godoc
// GET /api/predictions/:id [wallet]
func (h *PredictionHandler) GetByID(c *gin.Context) {
	address := middleware.GetWalletAddress(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid prediction id format")
		return
	}

	p, err := h.lifecycleSvc.GetPrediction(c.Request.Context(), id, address)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, p.ToResponse())
}

// Stats godoc
// GET /api/predictions/stats [wallet]
func (h *PredictionHandler) Stats(c *gin.Context) {
	address := middleware.GetWalletAddress(c)

	stats, err := h.lifecycleSvc.GetStatistics(c.Request.Context(), address)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, stats)
}

// pagination extracts limit/offset query params with sane bounds.
func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
