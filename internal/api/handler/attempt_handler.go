package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oddsline/tracker/internal/api/middleware"
	"github.com/oddsline/tracker/internal/service"
)

// AttemptHandler serves the failed-attempt log endpoints.
type AttemptHandler struct {
	lifecycleSvc *service.LifecycleService
}

// NewAttemptHandler creates an AttemptHandler.
func NewAttemptHandler(lifecycleSvc *service.LifecycleService) *AttemptHandler {
	return &AttemptHandler{lifecycleSvc: lifecycleSvc}
}

// List godoc
// GET /api/attempts [wallet]
func (h *AttemptHandler) List(c *gin.Context) {
	address := middleware.GetWalletAddress(c)

	attempts, err := h.lifecycleSvc.GetFailedAttempts(c.Request.Context(), address)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, attempts)
}

// Clear godoc
// DELETE /api/attempts [wallet]
func (h *AttemptHandler) Clear(c *gin.Context) {
	address := middleware.GetWalletAddress(c)

	removed, err := h.lifecycleSvc.ClearFailedAttempts(c.Request.Context(), address)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"removed": removed})
}
