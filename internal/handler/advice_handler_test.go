package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mochila-app/backpack-api/internal/middleware"
	"github.com/mochila-app/backpack-api/internal/models"
	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
	"github.com/mochila-app/backpack-api/pkg/response"
)

type adviceServiceMock struct {
	result *models.AdviceResult
	err    error
	lastAt time.Time
	called bool
}

func (m *adviceServiceMock) Resolve(ctx context.Context, ownerID, profileID string, at time.Time) (*models.AdviceResult, error) {
	m.called = true
	m.lastAt = at
	return m.result, m.err
}

func TestAdviceHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &adviceServiceMock{result: &models.AdviceResult{
		ProfileID:  "p1",
		TargetDate: "2026-03-02",
		Weekday:    "Monday",
		Label:      models.LabelToday,
		Configured: true,
		Notebooks:  []string{"Math"},
	}}
	h := NewAdviceHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/profiles/p1/advice", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1"})

	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.called)
	assert.True(t, mockSvc.lastAt.IsZero(), "no at query means resolve now")

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotNil(t, envelope.Data)
}

func TestAdviceHandlerGetWithAt(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &adviceServiceMock{result: &models.AdviceResult{Label: models.LabelTomorrow, Notebooks: []string{}}}
	h := NewAdviceHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/profiles/p1/advice?at=2026-03-02T16:00:00Z", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1"})

	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 16, mockSvc.lastAt.UTC().Hour())
}

func TestAdviceHandlerGetInvalidAt(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &adviceServiceMock{}
	h := NewAdviceHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/profiles/p1/advice?at=yesterday", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1"})

	h.Get(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.called)
}

func TestAdviceHandlerGetUnknownProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &adviceServiceMock{err: appErrors.Clone(appErrors.ErrProfileNotFound, "profile not found")}
	h := NewAdviceHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/profiles/missing/advice", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1"})

	h.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdviceHandlerGetRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAdviceHandler(&adviceServiceMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/profiles/p1/advice", nil)
	c.Request = req

	h.Get(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
