package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"brandforge-backend/internal/funnel"
	"brandforge-backend/internal/middleware"
	"brandforge-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buf).Encode(v))
	return buf
}

func allAnswers() map[string]string {
	return map[string]string{
		"goals":    "double inbound leads",
		"audience": "local restaurants",
		"style":    "bold and colorful",
		"scope":    "site plus blog",
		"timeline": "eight weeks",
	}
}

func TestFunnelSaveAnonymous(t *testing.T) {
	store := newMemFunnelStore()
	h := NewFunnelHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/api/funnel/save", jsonBody(t, SaveFunnelRequest{
		AnonymousID: "anon-123",
		StepData:    map[string]string{"goals": "double inbound leads"},
		CurrentStep: 0,
	}))
	rec := httptest.NewRecorder()
	h.Save(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.FunnelResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "anon-123", resp.AnonymousID)
	assert.Equal(t, 0, resp.CurrentStep)
	assert.False(t, resp.Completed)
}

func TestFunnelSaveRequiresIdentity(t *testing.T) {
	h := NewFunnelHandler(newMemFunnelStore())

	req := httptest.NewRequest(http.MethodPost, "/api/funnel/save", jsonBody(t, SaveFunnelRequest{
		StepData: map[string]string{"goals": "x"},
	}))
	rec := httptest.NewRecorder()
	h.Save(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFunnelSaveRejectsUnknownStep(t *testing.T) {
	h := NewFunnelHandler(newMemFunnelStore())

	req := httptest.NewRequest(http.MethodPost, "/api/funnel/save", jsonBody(t, SaveFunnelRequest{
		AnonymousID: "anon-123",
		StepData:    map[string]string{"budget": "low"},
	}))
	rec := httptest.NewRecorder()
	h.Save(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFunnelFinalStepCompletes(t *testing.T) {
	store := newMemFunnelStore()
	h := NewFunnelHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/api/funnel/save", jsonBody(t, SaveFunnelRequest{
		AnonymousID: "anon-123",
		StepData:    allAnswers(),
		CurrentStep: funnel.LastStepIndex(),
	}))
	rec := httptest.NewRecorder()
	h.Save(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.FunnelResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Completed)
	assert.Equal(t, funnel.LastStepIndex(), resp.CurrentStep)
}

func TestFunnelFinalStepMissingRequired(t *testing.T) {
	h := NewFunnelHandler(newMemFunnelStore())

	answers := allAnswers()
	delete(answers, "scope")
	req := httptest.NewRequest(http.MethodPost, "/api/funnel/save", jsonBody(t, SaveFunnelRequest{
		AnonymousID: "anon-123",
		StepData:    answers,
		CurrentStep: funnel.LastStepIndex(),
	}))
	rec := httptest.NewRecorder()
	h.Save(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFunnelSaveAuthenticatedKeysByUser(t *testing.T) {
	store := newMemFunnelStore()
	h := NewFunnelHandler(store)
	userID := bson.NewObjectID()

	req := httptest.NewRequest(http.MethodPost, "/api/funnel/save", jsonBody(t, SaveFunnelRequest{
		AnonymousID: "ignored-when-authed",
		StepData:    map[string]string{"goals": "brand refresh"},
		CurrentStep: 0,
	}))
	req = req.WithContext(middleware.WithIdentity(req.Context(), userID.Hex(), "c@example.com", models.RoleClient))
	rec := httptest.NewRecorder()
	h.Save(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	row, err := store.LatestByUser(req.Context(), userID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "brand refresh", row.StepData["goals"])
}

func TestFunnelLatestAnonymous(t *testing.T) {
	store := newMemFunnelStore()
	h := NewFunnelHandler(store)

	_, err := store.Upsert(context.Background(), bson.M{"anonymous_id": "anon-9", "user_id": nil},
		map[string]string{"goals": "launch"}, 1, false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/funnel/latest?anonymous_id=anon-9", nil)
	rec := httptest.NewRecorder()
	h.Latest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.FunnelResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.CurrentStep)
}

func TestFunnelLatestNotFound(t *testing.T) {
	h := NewFunnelHandler(newMemFunnelStore())

	req := httptest.NewRequest(http.MethodGet, "/api/funnel/latest?anonymous_id=nobody", nil)
	rec := httptest.NewRecorder()
	h.Latest(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
