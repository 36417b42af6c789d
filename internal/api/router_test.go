package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"mergington-activities/internal/analytics"
	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/enrollment"
	"mergington-activities/internal/models"
	"mergington-activities/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestRouter(t *testing.T, cfg RouterConfig) http.Handler {
	log := logger.NewTestLogger(t)
	reg := enrollment.NewRegistry(registry.DefaultRegistry())
	return NewRouter(cfg, Dependencies{
		Enrollment: enrollment.NewService(reg, nil, log, 0),
		Analytics:  analytics.NewService(reg, analytics.DefaultOptions(), log),
		Logger:     log,
	})
}

func doRequest(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func activityPath(name, action, email string) string {
	p := "/activities/" + url.PathEscape(name) + "/" + action
	if email != "" {
		p += "?email=" + url.QueryEscape(email)
	}
	return p
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

// ==========================
// Activities
// ==========================

func TestRouter_RootRedirect(t *testing.T) {
	rec := doRequest(t, createTestRouter(t, RouterConfig{}), http.MethodGet, "/")
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/static/index.html", rec.Header().Get("Location"))
}

func TestRouter_ListActivities(t *testing.T) {
	rec := doRequest(t, createTestRouter(t, RouterConfig{}), http.MethodGet, "/activities")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]models.Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 9)
	assert.Equal(t, 12, body["Chess Club"].MaxParticipants)
	assert.True(t, strings.HasPrefix(rec.Body.String(), `{"Chess Club":`))
}

func TestRouter_Signup(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedDetail string
		expectedMsg    string
	}{
		{
			name:           "success",
			path:           activityPath("Chess Club", "signup", "new@mergington.edu"),
			expectedStatus: http.StatusOK,
			expectedMsg:    "Signed up new@mergington.edu for Chess Club",
		},
		{
			name:           "already signed up",
			path:           activityPath("Chess Club", "signup", "michael@mergington.edu"),
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Student is already signed up",
		},
		{
			name:           "unknown activity",
			path:           activityPath("Nonexistent", "signup", "x@mergington.edu"),
			expectedStatus: http.StatusNotFound,
			expectedDetail: "Activity not found",
		},
		{
			name:           "missing email",
			path:           activityPath("Chess Club", "signup", ""),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedDetail: "Invalid request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, createTestRouter(t, RouterConfig{}), http.MethodPost, tt.path)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedMsg != "" {
				var body models.MessageResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedMsg, body.Message)
				return
			}
			assert.Equal(t, tt.expectedDetail, decodeError(t, rec).Detail)
		})
	}
}

func TestRouter_Unregister(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedDetail string
		expectedMsg    string
	}{
		{
			name:           "success",
			path:           activityPath("Chess Club", "unregister", "michael@mergington.edu"),
			expectedStatus: http.StatusOK,
			expectedMsg:    "Unregistered michael@mergington.edu from Chess Club",
		},
		{
			name:           "not signed up",
			path:           activityPath("Chess Club", "unregister", "nobody@mergington.edu"),
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Student is not signed up for this activity",
		},
		{
			name:           "unknown activity",
			path:           activityPath("Nonexistent", "unregister", "x@mergington.edu"),
			expectedStatus: http.StatusNotFound,
			expectedDetail: "Activity not found",
		},
		{
			name:           "missing email",
			path:           activityPath("Chess Club", "unregister", ""),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedDetail: "Invalid request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, createTestRouter(t, RouterConfig{}), http.MethodDelete, tt.path)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedMsg != "" {
				var body models.MessageResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedMsg, body.Message)
				return
			}
			assert.Equal(t, tt.expectedDetail, decodeError(t, rec).Detail)
		})
	}
}

func TestRouter_SignupThenUnregisterRestoresList(t *testing.T) {
	h := createTestRouter(t, RouterConfig{})
	before := doRequest(t, h, http.MethodGet, "/activities").Body.String()

	require.Equal(t, http.StatusOK, doRequest(t, h, http.MethodPost, activityPath("Art Club", "signup", "x@mergington.edu")).Code)
	require.Equal(t, http.StatusOK, doRequest(t, h, http.MethodDelete, activityPath("Art Club", "unregister", "x@mergington.edu")).Code)

	assert.Equal(t, before, doRequest(t, h, http.MethodGet, "/activities").Body.String())
}

func TestRouter_ConcurrentSignupSameEmail(t *testing.T) {
	h := createTestRouter(t, RouterConfig{})
	path := activityPath("Chess Club", "signup", "race@mergington.edu")

	const workers = 32
	statuses := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
			statuses <- rec.Code
		}()
	}
	wg.Wait()
	close(statuses)

	ok := 0
	for s := range statuses {
		if s == http.StatusOK {
			ok++
		} else {
			assert.Equal(t, http.StatusBadRequest, s)
		}
	}
	assert.Equal(t, 1, ok)
}

// ==========================
// Analytics
// ==========================

func TestRouter_StudentAnalytics(t *testing.T) {
	rec := doRequest(t, createTestRouter(t, RouterConfig{}), http.MethodGet, "/analytics/student/emma@mergington.edu")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"email": "emma@mergington.edu",
		"total_enrolled": 1,
		"activities": [{"name": "Programming Class", "schedule": "Tuesdays and Thursdays, 3:30 PM - 4:30 PM"}],
		"hours_per_week": 3.0,
		"attendance_rate": 95,
		"completion_rate": 90
	}`, rec.Body.String())
}

func TestRouter_StudentAnalyticsUnknown(t *testing.T) {
	rec := doRequest(t, createTestRouter(t, RouterConfig{}), http.MethodGet, "/analytics/student/ghost@mergington.edu")
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.StudentAnalytics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.TotalEnrolled)
	assert.Empty(t, body.Activities)
}

func TestRouter_ActivityAnalytics(t *testing.T) {
	h := createTestRouter(t, RouterConfig{})

	rec := doRequest(t, h, http.MethodGet, "/analytics/activity/Chess%20Club")
	require.Equal(t, http.StatusOK, rec.Code)
	var body models.ActivityAnalytics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 16.7, body.CapacityUtilization)
	assert.Equal(t, 10, body.SpotsAvailable)

	rec = doRequest(t, h, http.MethodGet, "/analytics/activity/Nonexistent")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Activity not found", decodeError(t, rec).Detail)
}

func TestRouter_OverviewAnalytics(t *testing.T) {
	rec := doRequest(t, createTestRouter(t, RouterConfig{}), http.MethodGet, "/analytics/overview")
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.OverviewAnalytics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 18, body.TotalStudents)
	assert.Equal(t, 9, body.TotalActivities)
	assert.Equal(t, 2.0, body.AverageEnrollment)
	assert.Equal(t, 156, body.TotalCapacity)
	assert.Equal(t, 11.5, body.OverallUtilization)
	assert.Len(t, body.ActivityStats, 9)
}

// ==========================
// Infrastructure Routes
// ==========================

func TestRouter_Healthz(t *testing.T) {
	rec := doRequest(t, createTestRouter(t, RouterConfig{}), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	h := createTestRouter(t, RouterConfig{MetricsEnabled: true})
	doRequest(t, h, http.MethodPost, activityPath("Chess Club", "signup", "metrics@mergington.edu"))

	rec := doRequest(t, h, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "activity_enrollment_changes_total")

	disabled := doRequest(t, createTestRouter(t, RouterConfig{}), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, disabled.Code)
}

func TestRouter_Static(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Mergington</h1>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log('ok')"), 0644))
	h := createTestRouter(t, RouterConfig{StaticDir: dir})

	rec := doRequest(t, h, http.MethodGet, "/static/index.html")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mergington")
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = doRequest(t, h, http.MethodHead, "/static/index.html")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/static/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "console.log")

	missing := doRequest(t, createTestRouter(t, RouterConfig{StaticDir: filepath.Join(dir, "nope")}), http.MethodGet, "/static/index.html")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestRouter_RootLandsOnIndexInOneHop(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Mergington</h1>"), 0644))
	h := createTestRouter(t, RouterConfig{StaticDir: dir})

	rec := doRequest(t, h, http.MethodGet, "/")
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	landing := doRequest(t, h, http.MethodGet, rec.Header().Get("Location"))
	assert.Equal(t, http.StatusOK, landing.Code)
	assert.Empty(t, landing.Header().Get("Location"))
	assert.Contains(t, landing.Body.String(), "Mergington")
}

func TestRouter_StaticWithoutIndex(t *testing.T) {
	rec := doRequest(t, createTestRouter(t, RouterConfig{StaticDir: t.TempDir()}), http.MethodGet, "/static/index.html")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.ErrCodeRouteNotFound, decodeError(t, rec).Code)
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	h := createTestRouter(t, RouterConfig{})

	rec := doRequest(t, h, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.ErrCodeRouteNotFound, decodeError(t, rec).Code)

	rec = doRequest(t, h, http.MethodGet, activityPath("Chess Club", "signup", "x@mergington.edu"))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, apperrors.ErrCodeMethodNotAllowed, decodeError(t, rec).Code)
}

func TestRecoverMiddleware(t *testing.T) {
	log := logger.NewTestLogger(t)
	mw := recoverMiddleware(apperrors.NewErrorHandler(log), log)
	h := mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperrors.ErrCodeInternal, decodeError(t, rec).Code)
}
