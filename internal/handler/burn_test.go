package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/osse101/PullBot_Go/internal/domain"
)

const testToken = "2f1c6d0e-8f7b-4a53-9d36-0b6f1f3a9c11"

func TestHandleBurnPreview(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockBurnService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Filter burn",
			body: `{"user_id":"u1","character":"aria","filter":{"rarities":["common"],"op":"gt","threshold":1},"keep":1}`,
			setupMock: func(m *MockBurnService) {
				m.On("Preview", mock.Anything, domain.BurnRequest{
					UserID:    "u1",
					Character: "aria",
					Keep:      1,
					Filter:    domain.StackFilter{Rarities: []string{"common"}, Op: domain.OpGreaterThan, Threshold: 1},
				}).Return(&domain.BurnPreview{Token: testToken, TotalCount: 4, TotalXP: 4}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   testToken,
		},
		{
			name: "Explicit items",
			body: `{"user_id":"u1","character":"aria","items":[{"name":"a","rarity":"rare","count":2}]}`,
			setupMock: func(m *MockBurnService) {
				m.On("Preview", mock.Anything, domain.BurnRequest{
					UserID:    "u1",
					Character: "aria",
					Items:     []domain.StackRemoval{{Name: "a", Rarity: "rare", Count: 2}},
				}).Return(&domain.BurnPreview{Token: testToken, TotalCount: 2, TotalXP: 10}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"total_xp":10`,
		},
		{
			name:           "Missing character",
			body:           `{"user_id":"u1"}`,
			setupMock:      func(m *MockBurnService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"character":"This field is required"`,
		},
		{
			name:           "Bad operator",
			body:           `{"user_id":"u1","character":"aria","filter":{"op":"between"}}`,
			setupMock:      func(m *MockBurnService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Must be one of gt, gte, lt, lte, eq",
		},
		{
			name:           "Negative keep",
			body:           `{"user_id":"u1","character":"aria","keep":-1}`,
			setupMock:      func(m *MockBurnService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"keep"`,
		},
		{
			name:           "Zero count item",
			body:           `{"user_id":"u1","character":"aria","items":[{"name":"a","rarity":"rare","count":0}]}`,
			setupMock:      func(m *MockBurnService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"count"`,
		},
		{
			name: "Nothing selected",
			body: `{"user_id":"u1","character":"aria"}`,
			setupMock: func(m *MockBurnService) {
				m.On("Preview", mock.Anything, mock.Anything).Return(nil, domain.ErrNothingToBurn)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   ErrMsgNothingToBurnError,
		},
		{
			name: "Held count too low",
			body: `{"user_id":"u1","character":"aria","items":[{"name":"a","rarity":"rare","count":9}]}`,
			setupMock: func(m *MockBurnService) {
				m.On("Preview", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("%w: a/rare holds 2", domain.ErrInsufficientQuantity))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   ErrMsgInsufficientQuantityError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockBurnService{}
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/burn/preview", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			HandleBurnPreview(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandleBurnConfirm(t *testing.T) {
	body := fmt.Sprintf(`{"user_id":"u1","token":%q}`, testToken)

	t.Run("Success", func(t *testing.T) {
		svc := &MockBurnService{}
		svc.On("Confirm", mock.Anything, "u1", testToken).Return(&domain.BurnResult{
			AuditID:       "audit-1",
			CardsRemoved:  4,
			XPGained:      12,
			PreviousLevel: 1,
			NewLevel:      2,
			LevelsGained:  1,
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/burn/confirm", strings.NewReader(body))
		w := httptest.NewRecorder()
		HandleBurnConfirm(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"levels_gained":1`)
		svc.AssertExpectations(t)
	})

	t.Run("Expired preview", func(t *testing.T) {
		svc := &MockBurnService{}
		svc.On("Confirm", mock.Anything, "u1", testToken).Return(nil, domain.ErrPreviewNotFound)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/burn/confirm", strings.NewReader(body))
		w := httptest.NewRecorder()
		HandleBurnConfirm(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgPreviewNotFoundError)
	})

	t.Run("Token must be a UUID", func(t *testing.T) {
		svc := &MockBurnService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/burn/confirm",
			strings.NewReader(`{"user_id":"u1","token":"abc"}`))
		w := httptest.NewRecorder()
		HandleBurnConfirm(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Concurrent confirm", func(t *testing.T) {
		svc := &MockBurnService{}
		svc.On("Confirm", mock.Anything, "u1", testToken).Return(nil, domain.ErrConcurrencyConflict)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/burn/confirm", strings.NewReader(body))
		w := httptest.NewRecorder()
		HandleBurnConfirm(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHandleBurnCancel(t *testing.T) {
	svc := &MockBurnService{}
	svc.On("Cancel", mock.Anything, "u1", testToken).Return(nil)

	body := fmt.Sprintf(`{"user_id":"u1","token":%q}`, testToken)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/burn/cancel", strings.NewReader(body))
	w := httptest.NewRecorder()
	HandleBurnCancel(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), MsgBurnCancelled)
	svc.AssertExpectations(t)
}
