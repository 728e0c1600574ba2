package handler

import (
	"net/http"

	"github.com/osse101/PullBot_Go/internal/quota"
)

// HandleGetAllowance returns the user's current pool balances.
// Reading applies any pending timed refill.
// @Summary Get allowance
// @Tags pull
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} domain.AllowanceView
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/allowance [get]
func HandleGetAllowance(svc quota.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, ParamUserID)
		if !ok {
			return
		}

		view, err := svc.GetCurrentAllowance(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, ErrMsgGetAllowanceFailed, err)
			return
		}

		respondJSON(w, http.StatusOK, view)
	}
}
