package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sigha-api/internal/dto"
	"github.com/noah-isme/sigha-api/internal/models"
	"github.com/noah-isme/sigha-api/internal/service"
	appErrors "github.com/noah-isme/sigha-api/pkg/errors"
	"github.com/noah-isme/sigha-api/pkg/response"
)

type timetableOrchestrator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	Save(ctx context.Context, req dto.SaveTimetableRequest) (*models.TimetableVersion, error)
	Current(ctx context.Context) (*dto.TimetableResponse, error)
	Version(ctx context.Context, id string) (*dto.TimetableResponse, error)
	Versions(ctx context.Context) ([]models.TimetableVersion, error)
	Delete(ctx context.Context, id string) error
}

type timetableExporter interface {
	Export(ctx context.Context, format string) (*service.ExportResult, error)
}

// TimetableHandler exposes allocation and versioning endpoints.
type TimetableHandler struct {
	service  timetableOrchestrator
	exporter timetableExporter
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService, exporter *service.ExportService) *TimetableHandler {
	h := &TimetableHandler{service: svc}
	if exporter != nil {
		h.exporter = exporter
	}
	return h
}

// Generate godoc
// @Summary Run the timetable allocation engine
// @Description Produces a block proposal over the stored catalog and room inventory. The proposal stays in memory until saved or expired.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest false "Generation overrides"
// @Success 200 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
			return
		}
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Save godoc
// @Summary Persist a generated proposal as a timetable version
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.SaveTimetableRequest true "Save timetable payload"
// @Success 201 {object} response.Envelope
// @Router /timetable/save [post]
func (h *TimetableHandler) Save(c *gin.Context) {
	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	version, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, version)
}

// Current godoc
// @Summary Get the published timetable
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/current [get]
func (h *TimetableHandler) Current(c *gin.Context) {
	result, err := h.service.Current(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Versions godoc
// @Summary List stored timetable versions
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/versions [get]
func (h *TimetableHandler) Versions(c *gin.Context) {
	versions, err := h.service.Versions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, versions, nil)
}

// Version godoc
// @Summary Get one timetable version with its blocks
// @Tags Timetable
// @Produce json
// @Param id path string true "Timetable version ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/versions/{id} [get]
func (h *TimetableHandler) Version(c *gin.Context) {
	result, err := h.service.Version(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete a draft timetable version
// @Tags Timetable
// @Param id path string true "Timetable version ID"
// @Success 204
// @Router /timetable/versions/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Download the published timetable
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200
// @Router /timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export is disabled"))
		return
	}
	format := c.DefaultQuery("format", "csv")
	result, err := h.exporter.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
