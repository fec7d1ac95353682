package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sigha-api/internal/allocator"
	"github.com/noah-isme/sigha-api/internal/dto"
	appErrors "github.com/noah-isme/sigha-api/pkg/errors"
)

type envelopeBody struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

type fakeDashboardSrv struct {
	resp *dto.DashboardMetricsResponse
	hit  bool
	err  error
}

func (f *fakeDashboardSrv) Metrics(context.Context) (*dto.DashboardMetricsResponse, bool, error) {
	return f.resp, f.hit, f.err
}

func TestDashboardHandlerMetricsSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{
		resp: &dto.DashboardMetricsResponse{
			Version: 2,
			Summary: allocator.Summary{TotalHours: 70},
		},
		hit: true,
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/metrics", nil)

	handler.Metrics(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope envelopeBody
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache"])
	assert.Equal(t, float64(2), envelope.Data["version"])
}

func TestDashboardHandlerMetricsNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{
		err: appErrors.Clone(appErrors.ErrNotFound, "no published timetable"),
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/metrics", nil)

	handler.Metrics(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
