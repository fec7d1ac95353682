package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sigha-api/internal/dto"
	appErrors "github.com/noah-isme/sigha-api/pkg/errors"
	"github.com/noah-isme/sigha-api/pkg/response"
)

type dashboardService interface {
	Metrics(ctx context.Context) (*dto.DashboardMetricsResponse, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Metrics godoc
// @Summary Occupancy metrics for the published timetable
// @Description Total allocated hours plus per-room and per-program breakdowns. Responses are served from cache when available.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/metrics [get]
func (h *DashboardHandler) Metrics(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	summary, cacheHit, err := h.service.Metrics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{"cache": cacheHit})
}
