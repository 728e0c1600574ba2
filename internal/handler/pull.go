package handler

import (
	"net/http"

	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/logger"
	"github.com/osse101/PullBot_Go/internal/pull"
)

// PullRequest is the body of a packet pull
type PullRequest struct {
	UserID string `json:"user_id" validate:"required,max=100,printascii"`
	Policy string `json:"policy" validate:"policy"`
	Grant  string `json:"grant" validate:"omitempty,max=64"`
	Cohort string `json:"cohort" validate:"omitempty,max=64"`
	Source string `json:"source" validate:"omitempty,max=32"`
}

// HandlePull draws one packet for the user
// @Summary Pull a packet
// @Description Debits one pull under the chosen policy and draws a packet of cards
// @Tags pull
// @Accept json
// @Produce json
// @Param request body PullRequest true "Pull details"
// @Success 200 {object} domain.PullResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} InsufficientBalanceResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/pull [post]
func HandlePull(svc pull.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PullRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Pull"); err != nil {
			return
		}

		result, err := svc.Pull(r.Context(), domain.PullRequest{
			UserID:         req.UserID,
			Policy:         req.Policy,
			GrantLabel:     req.Grant,
			CohortOverride: req.Cohort,
			Source:         req.Source,
		})
		if err != nil {
			respondServiceError(w, r, ErrMsgPullFailed, err)
			return
		}

		logger.FromContext(r.Context()).Info(LogMsgPullCompleted,
			"user_id", req.UserID,
			"cards", len(result.Cards),
			"debit", result.Debit.Total())

		respondJSON(w, http.StatusOK, result)
	}
}
