package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/PullBot_Go/internal/clock"
	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/event"
	"github.com/osse101/PullBot_Go/internal/eventlog"
)

var adminNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestHandleCreateGrant(t *testing.T) {
	expires := adminNow.Add(48 * time.Hour)

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockQuotaService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Success",
			body: `{"label":"summer","credits_per_user":3,"expires_at":"2026-03-16T09:30:00Z","created_by":"ops"}`,
			setupMock: func(m *MockQuotaService) {
				m.On("CreateGrant", mock.Anything, mock.MatchedBy(func(g domain.NamedGrant) bool {
					return g.Label == "summer" && g.CreditsPerUser == 3 && g.CreatedBy == "ops" && g.ExpiresAt.Equal(expires)
				})).Return(&domain.NamedGrant{Label: "summer", CreditsPerUser: 3, ExpiresAt: expires, Active: true}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"active":true`,
		},
		{
			name:           "Zero credits",
			body:           `{"label":"summer","credits_per_user":0,"expires_at":"2026-03-16T09:30:00Z"}`,
			setupMock:      func(m *MockQuotaService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"credits_per_user"`,
		},
		{
			name:           "Missing expiry",
			body:           `{"label":"summer","credits_per_user":1}`,
			setupMock:      func(m *MockQuotaService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"expires_at":"This field is required"`,
		},
		{
			name: "Duplicate label",
			body: `{"label":"summer","credits_per_user":1,"expires_at":"2026-03-16T09:30:00Z"}`,
			setupMock: func(m *MockQuotaService) {
				m.On("CreateGrant", mock.Anything, mock.Anything).Return(nil, domain.ErrGrantExists)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   ErrMsgGrantExistsError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockQuotaService{}
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/grants", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			HandleCreateGrant(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleDeactivateGrant(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := &MockQuotaService{}
		svc.On("DeactivateGrant", mock.Anything, "summer").Return(nil)

		req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/v1/admin/grants/summer/deactivate", nil), ParamLabel, "summer")
		w := httptest.NewRecorder()
		HandleDeactivateGrant(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), MsgGrantDeactivated)
		svc.AssertExpectations(t)
	})

	t.Run("Unknown grant", func(t *testing.T) {
		svc := &MockQuotaService{}
		svc.On("DeactivateGrant", mock.Anything, "winter").Return(domain.ErrGrantNotFound)

		req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/v1/admin/grants/winter/deactivate", nil), ParamLabel, "winter")
		w := httptest.NewRecorder()
		HandleDeactivateGrant(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleListGrants_EmptyIsArray(t *testing.T) {
	svc := &MockQuotaService{}
	svc.On("ListActiveGrants", mock.Anything).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/grants", nil)
	w := httptest.NewRecorder()
	HandleListGrants(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestHandleDateGrant(t *testing.T) {
	clk := clock.NewSimulatedClock(adminNow)

	t.Run("Defaults to today and every record", func(t *testing.T) {
		svc := &MockQuotaService{}
		pub := &capturePublisher{}
		svc.On("GrantForDate", mock.Anything, "2026-03-14", domain.WildcardTarget, 2).
			Return(&domain.DateGrantResult{DateKey: "2026-03-14", Target: domain.WildcardTarget, Claimed: true, RecordsAffected: 40}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/daily-grant", strings.NewReader(`{"credits":2}`))
		w := httptest.NewRecorder()
		HandleDateGrant(svc, pub, clk).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), MsgDateGrantApplied)
		events := pub.Events()
		require.Len(t, events, 1)
		assert.Equal(t, event.DateGrantApplied, events[0].Type)
		assert.Equal(t, adminEventSource, events[0].GetMetadataValue("source"))
		svc.AssertExpectations(t)
	})

	t.Run("Repeat is a no-op", func(t *testing.T) {
		svc := &MockQuotaService{}
		pub := &capturePublisher{}
		svc.On("GrantForDate", mock.Anything, "2026-03-01", "u1", 2).
			Return(&domain.DateGrantResult{DateKey: "2026-03-01", Target: "u1"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/daily-grant",
			strings.NewReader(`{"date_key":"2026-03-01","target":"u1","credits":2}`))
		w := httptest.NewRecorder()
		HandleDateGrant(svc, pub, clk).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), MsgDateGrantDuplicate)
		assert.Empty(t, pub.Events())
	})

	t.Run("Malformed date key", func(t *testing.T) {
		svc := &MockQuotaService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/daily-grant",
			strings.NewReader(`{"date_key":"14/03/2026","credits":2}`))
		w := httptest.NewRecorder()
		HandleDateGrant(svc, nil, clk).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
	})
}

func TestHandleBirthdayGrant(t *testing.T) {
	clk := clock.NewSimulatedClock(adminNow)

	tests := []struct {
		name     string
		granted  bool
		expected string
	}{
		{"First this year", true, MsgBirthdayGranted},
		{"Already granted", false, MsgBirthdayAlreadyDone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockQuotaService{}
			svc.On("GrantBirthday", mock.Anything, "u1", 2026, 5).Return(tt.granted, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/birthday-grant",
				strings.NewReader(`{"user_id":"u1","credits":5}`))
			w := httptest.NewRecorder()
			HandleBirthdayGrant(svc, clk).ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.expected)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandleListEvents(t *testing.T) {
	t.Run("Filters are forwarded", func(t *testing.T) {
		svc := &MockEventlogService{}
		since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		svc.On("ListEvents", mock.Anything, mock.MatchedBy(func(f eventlog.EventFilter) bool {
			return f.UserID != nil && *f.UserID == "u1" &&
				f.EventType != nil && *f.EventType == "pull.completed" &&
				f.Since != nil && f.Since.Equal(since) &&
				f.Until == nil && f.Limit == 10
		})).Return([]eventlog.Event{{ID: 7, EventType: "pull.completed"}}, nil)

		req := httptest.NewRequest(http.MethodGet,
			"/api/v1/admin/events?user_id=u1&event_type=pull.completed&since=2026-03-01T00:00:00Z&limit=10", nil)
		w := httptest.NewRecorder()
		HandleListEvents(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"id":7`)
		svc.AssertExpectations(t)
	})

	t.Run("Bad timestamp", func(t *testing.T) {
		svc := &MockEventlogService{}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/events?since=yesterday", nil)
		w := httptest.NewRecorder()
		HandleListEvents(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid since timestamp")
	})
}
