package discord

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/PullBot_Go/internal/domain"
)

func TestAPIClient_Pull(t *testing.T) {
	ctx := SetupTestContext(t)

	var got map[string]string
	ctx.Mux.HandleFunc("POST /api/v1/pull", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("X-API-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		WriteJSON(w, http.StatusOK, domain.PullResult{
			Cards: []domain.Card{{Rarity: domain.RarityRare, Name: "Dragon"}},
			Debit: domain.Debit{Timed: 1},
		})
	})

	res, err := ctx.APIClient.Pull(context.Background(), "discord:1", "best", "")

	require.NoError(t, err)
	assert.Equal(t, "discord:1", got["user_id"])
	assert.Equal(t, "best", got["policy"])
	assert.NotContains(t, got, "grant")
	require.Len(t, res.Cards, 1)
	assert.Equal(t, "Dragon", res.Cards[0].Name)
}

func TestAPIClient_InsufficientBalance(t *testing.T) {
	ctx := SetupTestContext(t)
	ctx.Mux.HandleFunc("POST /api/v1/pull", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusConflict, map[string]interface{}{
			"error":             "not enough pulls",
			"requested":         1,
			"shortfall":         1,
			"next_refill_in_ms": 90000,
		})
	})

	_, err := ctx.APIClient.Pull(context.Background(), "discord:1", "", "")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	require.NotNil(t, apiErr.Balance)
	assert.Equal(t, 1, apiErr.Balance.Shortfall)
	assert.Equal(t, int64(90000), apiErr.Balance.NextRefillInMS)
}

func TestAPIClient_PostIsNotRetried(t *testing.T) {
	ctx := SetupTestContext(t)
	var calls atomic.Int32
	ctx.Mux.HandleFunc("POST /api/v1/burn/confirm", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Something went wrong"})
	})

	_, err := ctx.APIClient.ConfirmBurn(context.Background(), "discord:1", "tok")

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAPIClient_GetRetriesServerErrors(t *testing.T) {
	if testing.Short() {
		t.Skip("retry backoff takes half a second")
	}
	ctx := SetupTestContext(t)
	var calls atomic.Int32
	ctx.Mux.HandleFunc("GET /api/v1/allowance", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		WriteJSON(w, http.StatusOK, domain.AllowanceView{UserID: r.URL.Query().Get("user_id"), TimedStock: 3, MaxStock: 12})
	})

	view, err := ctx.APIClient.GetAllowance(context.Background(), "discord:1")

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "discord:1", view.UserID)
	assert.Equal(t, 3, view.TimedStock)
}

func TestAPIClient_GetInventoryPassesRarity(t *testing.T) {
	ctx := SetupTestContext(t)
	ctx.Mux.HandleFunc("GET /api/v1/inventory", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, domain.RarityRare, r.URL.Query().Get("rarity"))
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"stacks": []domain.InventoryStack{{Name: "Dragon", Rarity: domain.RarityRare, Count: 2}},
			"total":  1,
		})
	})

	stacks, err := ctx.APIClient.GetInventory(context.Background(), "discord:1", domain.RarityRare)

	require.NoError(t, err)
	require.Len(t, stacks, 1)
	assert.Equal(t, 2, stacks[0].Count)
}
