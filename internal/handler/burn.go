package handler

import (
	"net/http"

	"github.com/osse101/PullBot_Go/internal/burn"
	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/logger"
)

// BurnFilter selects stacks for a filter-driven burn
type BurnFilter struct {
	Rarities      []string `json:"rarities" validate:"omitempty,dive,required,max=32"`
	Op            string   `json:"op" validate:"compare_op"`
	Threshold     int      `json:"threshold" validate:"gte=0"`
	IncludeLocked bool     `json:"include_locked"`
}

// BurnItem names an explicit removal
type BurnItem struct {
	Name   string `json:"name" validate:"required,max=200"`
	Rarity string `json:"rarity" validate:"required,max=32"`
	Count  int    `json:"count" validate:"gt=0"`
}

// BurnPreviewRequest asks for an uncommitted conversion preview. Items, when
// present, take precedence over Filter.
type BurnPreviewRequest struct {
	UserID    string     `json:"user_id" validate:"required,max=100,printascii"`
	Character string     `json:"character" validate:"required,max=64"`
	Filter    BurnFilter `json:"filter"`
	Keep      int        `json:"keep" validate:"gte=0"`
	Items     []BurnItem `json:"items" validate:"omitempty,max=500,dive"`
}

// BurnTokenRequest names a preview to confirm or cancel
type BurnTokenRequest struct {
	UserID string `json:"user_id" validate:"required,max=100"`
	Token  string `json:"token" validate:"required,uuid"`
}

// HandleBurnPreview computes a conversion preview without touching inventory
// @Summary Preview a burn
// @Tags burn
// @Accept json
// @Produce json
// @Param request body BurnPreviewRequest true "Burn selection"
// @Success 200 {object} domain.BurnPreview
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/burn/preview [post]
func HandleBurnPreview(svc burn.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BurnPreviewRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Burn preview"); err != nil {
			return
		}

		preview, err := svc.Preview(r.Context(), req.toDomain())
		if err != nil {
			respondServiceError(w, r, ErrMsgBurnPreviewFailed, err)
			return
		}

		logger.FromContext(r.Context()).Info(LogMsgBurnPreviewed,
			"user_id", req.UserID,
			"character", req.Character,
			"cards", preview.TotalCount,
			"xp", preview.TotalXP)

		respondJSON(w, http.StatusOK, preview)
	}
}

func (req BurnPreviewRequest) toDomain() domain.BurnRequest {
	out := domain.BurnRequest{
		UserID:    req.UserID,
		Character: req.Character,
		Keep:      req.Keep,
		Filter: domain.StackFilter{
			Rarities:      req.Filter.Rarities,
			Op:            domain.CompareOp(req.Filter.Op),
			Threshold:     req.Filter.Threshold,
			IncludeLocked: req.Filter.IncludeLocked,
		},
	}
	for _, it := range req.Items {
		out.Items = append(out.Items, domain.StackRemoval{Name: it.Name, Rarity: it.Rarity, Count: it.Count})
	}
	return out
}

// HandleBurnConfirm commits a preview. A preview is single-use: it is gone
// whether the commit succeeds or fails.
// @Summary Confirm a burn
// @Tags burn
// @Accept json
// @Produce json
// @Param request body BurnTokenRequest true "Preview token"
// @Success 200 {object} domain.BurnResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/burn/confirm [post]
func HandleBurnConfirm(svc burn.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BurnTokenRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Burn confirm"); err != nil {
			return
		}

		result, err := svc.Confirm(r.Context(), req.UserID, req.Token)
		if err != nil {
			respondServiceError(w, r, ErrMsgBurnConfirmFailed, err)
			return
		}

		logger.FromContext(r.Context()).Info(LogMsgBurnConfirmed,
			"user_id", req.UserID,
			"audit_id", result.AuditID,
			"removed", result.CardsRemoved,
			"levels_gained", result.LevelsGained)

		respondJSON(w, http.StatusOK, result)
	}
}

// HandleBurnCancel discards a preview
// @Summary Cancel a burn
// @Tags burn
// @Accept json
// @Produce json
// @Param request body BurnTokenRequest true "Preview token"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/burn/cancel [post]
func HandleBurnCancel(svc burn.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BurnTokenRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Burn cancel"); err != nil {
			return
		}

		if err := svc.Cancel(r.Context(), req.UserID, req.Token); err != nil {
			respondServiceError(w, r, ErrMsgBurnCancelFailed, err)
			return
		}

		logger.FromContext(r.Context()).Info(LogMsgBurnCancelled, "user_id", req.UserID)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgBurnCancelled})
	}
}
