// internal/server/handlers_test.go
package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"rentflow/internal/common/config"
	"rentflow/internal/common/logger"
	"rentflow/internal/facade"
	"rentflow/internal/models"
	"rentflow/internal/notify"
	"rentflow/internal/property"
	appregistry "rentflow/internal/registry"
	"rentflow/internal/tasks"
	"rentflow/internal/workflow"
	stageregistry "rentflow/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *appregistry.MockStore, *property.MockStore) {
	log := logger.NewTestLogger(t)

	apps := appregistry.NewMockStore()
	propStore := property.NewMockStore()
	propStore.SeedProperty("prop-1", "12 Elm Street")

	engine := workflow.NewEngine(apps, log)
	coordinator := tasks.NewCoordinator(tasks.NewMockStore(), stageregistry.Defaults(), log)
	dispatcher := notify.NewDispatcher(notify.NewMockStore(), nil, nil, log)

	f, err := facade.New(apps, engine, coordinator, dispatcher, propStore, nil, log)
	require.NoError(t, err)

	return New(config.ServerConfig{Port: 8080}, f, log), apps, propStore
}

func doRequest(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubmitEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/applications", facade.SubmissionRequest{
		PropertyID:    "prop-1",
		ApplicantName: "Jane Doe",
		AgentID:       "agent-1",
		LandlordID:    "landlord-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var app models.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &app))
	assert.Equal(t, models.StatusUndetermined, app.Status)
	assert.NotEmpty(t, app.ID)
}

func TestSubmitEndpoint_ValidationError(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/applications", facade.SubmissionRequest{
		ApplicantName: "Jane Doe",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_FAILED", resp.Code)
}

func TestAcceptEndpoint(t *testing.T) {
	srv, apps, _ := newTestServer(t)
	apps.Seed(models.Application{
		ID: "app-1", PropertyID: "prop-1",
		Status: models.StatusUndetermined, Step: 1,
	})

	rec := doRequest(t, srv, http.MethodPost, "/api/applications/app-1/accept", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var app models.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &app))
	assert.Equal(t, models.StatusAccepted, app.Status)
}

func TestAcceptEndpoint_UnsupportedTransition(t *testing.T) {
	srv, apps, _ := newTestServer(t)
	apps.Seed(models.Application{
		ID: "app-1", PropertyID: "prop-1",
		Status: models.StatusTenantChosen, Step: 5,
	})

	rec := doRequest(t, srv, http.MethodPost, "/api/applications/app-1/accept", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAcceptEndpoint_NotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/applications/missing/accept", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendToLandlordEndpoint(t *testing.T) {
	srv, apps, _ := newTestServer(t)
	apps.Seed(models.Application{ID: "app-1", PropertyID: "prop-1", Status: models.StatusAccepted, Step: 1})
	apps.Seed(models.Application{ID: "app-2", PropertyID: "prop-1", Status: models.StatusAccepted, Step: 1})

	rec := doRequest(t, srv, http.MethodPost, "/api/properties/prop-1/send-to-landlord", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result facade.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Count)
	assert.NotEmpty(t, result.TaskID)
}

func TestFinalizeEndpoint_InvalidBatchSize(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/properties/prop-1/finalize", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_BATCH_SIZE", resp.Code)
}

func TestListByPropertyEndpoint(t *testing.T) {
	srv, apps, _ := newTestServer(t)
	apps.Seed(models.Application{ID: "app-1", PropertyID: "prop-1", Status: models.StatusUndetermined, Step: 1})

	rec := doRequest(t, srv, http.MethodGet, "/api/properties/prop-1/applications", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []models.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}
