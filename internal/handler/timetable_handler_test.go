package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sigha-api/internal/dto"
	"github.com/noah-isme/sigha-api/internal/models"
	"github.com/noah-isme/sigha-api/internal/service"
	appErrors "github.com/noah-isme/sigha-api/pkg/errors"
)

type fakeTimetableSrv struct {
	generateResp *dto.GenerateTimetableResponse
	generateErr  error
	saveResp     *models.TimetableVersion
	saveErr      error
	currentResp  *dto.TimetableResponse
	currentErr   error
	deleteErr    error
	lastSave     dto.SaveTimetableRequest
}

func (f *fakeTimetableSrv) Generate(_ context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	return f.generateResp, f.generateErr
}

func (f *fakeTimetableSrv) Save(_ context.Context, req dto.SaveTimetableRequest) (*models.TimetableVersion, error) {
	f.lastSave = req
	return f.saveResp, f.saveErr
}

func (f *fakeTimetableSrv) Current(context.Context) (*dto.TimetableResponse, error) {
	return f.currentResp, f.currentErr
}

func (f *fakeTimetableSrv) Version(context.Context, string) (*dto.TimetableResponse, error) {
	return f.currentResp, f.currentErr
}

func (f *fakeTimetableSrv) Versions(context.Context) ([]models.TimetableVersion, error) {
	return nil, nil
}

func (f *fakeTimetableSrv) Delete(context.Context, string) error {
	return f.deleteErr
}

type fakeExporter struct {
	result *service.ExportResult
	err    error
}

func (f *fakeExporter) Export(_ context.Context, format string) (*service.ExportResult, error) {
	return f.result, f.err
}

func newTimetableTestHandler(srv timetableOrchestrator, exporter timetableExporter) *TimetableHandler {
	return &TimetableHandler{service: srv, exporter: exporter}
}

func TestTimetableHandlerGenerateEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeTimetableSrv{
		generateResp: &dto.GenerateTimetableResponse{ProposalID: "p-1"},
	}
	handler := newTimetableTestHandler(srv, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/timetable/generate", nil)

	handler.Generate(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope envelopeBody
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "p-1", envelope.Data["proposalId"])
}

func TestTimetableHandlerGenerateMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTimetableTestHandler(&fakeTimetableSrv{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/timetable/generate", strings.NewReader("{bad"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Generate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimetableHandlerSave(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeTimetableSrv{
		saveResp: &models.TimetableVersion{ID: "tt-1", Version: 1, Status: models.TimetableStatusDraft},
	}
	handler := newTimetableTestHandler(srv, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/timetable/save", strings.NewReader(`{"proposalId":"p-1","publish":true}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Save(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "p-1", srv.lastSave.ProposalID)
	assert.True(t, srv.lastSave.Publish)
}

func TestTimetableHandlerCurrentNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTimetableTestHandler(&fakeTimetableSrv{
		currentErr: appErrors.Clone(appErrors.ErrNotFound, "no published timetable"),
	}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/timetable/current", nil)

	handler.Current(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTimetableHandlerDeleteConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTimetableTestHandler(&fakeTimetableSrv{
		deleteErr: appErrors.Clone(appErrors.ErrConflict, "only draft timetables can be deleted"),
	}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/timetable/versions/tt-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	handler.Delete(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTimetableHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTimetableTestHandler(&fakeTimetableSrv{}, &fakeExporter{
		result: &service.ExportResult{
			Payload:     []byte("Día,Inicio\n"),
			Filename:    "horario_v1_20260829_120000.csv",
			ContentType: "text/csv",
		},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/timetable/export?format=csv", nil)

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "horario_v1")
}

func TestTimetableHandlerExportDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTimetableTestHandler(&fakeTimetableSrv{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/timetable/export", nil)

	handler.Export(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
