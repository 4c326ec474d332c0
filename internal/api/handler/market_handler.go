package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oddsline/tracker/internal/domain"
)

// MarketHandler exposes a read-only view of upstream markets with
// display-ready pricing.
type MarketHandler struct {
	markets domain.MarketSource
	now     func() time.Time
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(markets domain.MarketSource) *MarketHandler {
	return &MarketHandler{markets: markets, now: time.Now}
}

type marketView struct {
	ID            string `json:"id"`
	Question      string `json:"question"`
	YesPrice      int64  `json:"yes_price"`
	NoPrice       int64  `json:"no_price"`
	Volume        string `json:"volume"`
	TimeRemaining string `json:"time_remaining"`
	Resolved      bool   `json:"resolved"`
	Winner        string `json:"winner,omitempty"`
}

// GetByID godoc
// GET /api/markets/:id [public]
func (h *MarketHandler) GetByID(c *gin.Context) {
	m, err := h.markets.GetMarket(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	prices := m.Prices()
	view := marketView{
		ID:            m.ID,
		Question:      m.Question,
		YesPrice:      prices.Yes,
		NoPrice:       prices.No,
		Volume:        domain.FormatVolume(m.Volume()),
		TimeRemaining: domain.FormatTimeRemaining(m.EndTime, h.now()),
		Resolved:      m.Resolved,
	}
	if m.WinningOutcome != domain.WinnerNone {
		view.Winner = string(m.WinningOutcome)
	}
	respondSuccess(c, http.StatusOK, view)
}
