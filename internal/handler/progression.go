package handler

import (
	"net/http"

	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/ledger"
)

// ProgressionResponse pairs a character's leveling state with the
// milestones that can still fire for it
type ProgressionResponse struct {
	Progression *domain.ProgressionState `json:"progression"`
	Milestones  []domain.Milestone       `json:"milestones"`
}

// HandleGetProgression returns the leveling state for one character. A
// character with no conversions yet reports level 1.
// @Summary Get progression
// @Tags progression
// @Produce json
// @Param user_id query string true "User ID"
// @Param character query string true "Character"
// @Success 200 {object} ProgressionResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/progression [get]
func HandleGetProgression(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, ParamUserID)
		if !ok {
			return
		}
		character, ok := GetQueryParam(r, w, ParamCharacter)
		if !ok {
			return
		}

		state, err := svc.GetProgression(r.Context(), userID, character)
		if err != nil {
			respondServiceError(w, r, ErrMsgGetProgressionFailed, err)
			return
		}
		catalog, err := svc.Catalog(r.Context(), character)
		if err != nil {
			respondServiceError(w, r, ErrMsgGetProgressionFailed, err)
			return
		}

		respondJSON(w, http.StatusOK, ProgressionResponse{
			Progression: state,
			Milestones:  pendingMilestones(state, catalog),
		})
	}
}

// pendingMilestones drops one-time milestones that already fired
func pendingMilestones(state *domain.ProgressionState, catalog []domain.Milestone) []domain.Milestone {
	out := make([]domain.Milestone, 0, len(catalog))
	for _, m := range catalog {
		if m.OneTime && state.AwardedOneTime[m.ID] {
			continue
		}
		out = append(out, m)
	}
	return out
}
