package handler

import (
	"net/http"
	"strings"

	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/inventory"
	"github.com/osse101/PullBot_Go/internal/logger"
)

// InventoryResponse lists a user's stacks
type InventoryResponse struct {
	UserID string                  `json:"user_id"`
	Stacks []domain.InventoryStack `json:"stacks"`
	Total  int                     `json:"total"`
}

// HandleGetInventory lists the user's stacks. Locked stacks are included
// unless include_locked=false; rarity is a comma-separated list.
// @Summary List inventory
// @Tags inventory
// @Produce json
// @Param user_id query string true "User ID"
// @Param rarity query string false "Comma-separated rarities"
// @Param op query string false "Stack-size operator (gt, gte, lt, lte, eq)"
// @Param threshold query int false "Stack-size threshold"
// @Param include_locked query bool false "Include locked stacks (default true)"
// @Success 200 {object} InventoryResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/inventory [get]
func HandleGetInventory(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, ParamUserID)
		if !ok {
			return
		}
		filter, ok := parseStackFilter(r, w)
		if !ok {
			return
		}

		stacks, err := svc.ListStacks(r.Context(), userID, filter)
		if err != nil {
			respondServiceError(w, r, ErrMsgGetInventoryFailed, err)
			return
		}

		total := 0
		for _, s := range stacks {
			total += s.Count
		}
		respondJSON(w, http.StatusOK, InventoryResponse{UserID: userID, Stacks: stacks, Total: total})
	}
}

func parseStackFilter(r *http.Request, w http.ResponseWriter) (domain.StackFilter, bool) {
	var f domain.StackFilter
	if raw := GetOptionalQueryParam(r, ParamRarity, ""); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				f.Rarities = append(f.Rarities, part)
			}
		}
	}

	f.Op = domain.CompareOp(GetOptionalQueryParam(r, ParamOp, ""))
	if f.Op != "" {
		if _, err := f.Op.Compare(0, 0); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidInputError)
			return f, false
		}
	}

	var ok bool
	if f.Threshold, ok = GetIntQueryParam(r, w, ParamThreshold, 0); !ok {
		return f, false
	}
	if f.IncludeLocked, ok = GetBoolQueryParam(r, w, ParamLocked, true); !ok {
		return f, false
	}
	return f, true
}

// LockRequest toggles protection on one stack
type LockRequest struct {
	UserID string `json:"user_id" validate:"required,max=100"`
	Name   string `json:"name" validate:"required,max=200"`
	Rarity string `json:"rarity" validate:"required,max=32"`
	Locked bool   `json:"locked"`
}

// HandleSetLocked locks or unlocks a stack against bulk conversion
// @Summary Lock or unlock a stack
// @Tags inventory
// @Accept json
// @Produce json
// @Param request body LockRequest true "Stack and lock state"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/inventory/lock [post]
func HandleSetLocked(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LockRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Lock stack"); err != nil {
			return
		}

		key := domain.StackKey{Name: req.Name, Rarity: req.Rarity}
		if err := svc.SetLocked(r.Context(), req.UserID, key, req.Locked); err != nil {
			respondServiceError(w, r, ErrMsgLockStackFailed, err)
			return
		}

		logger.FromContext(r.Context()).Info(LogMsgStackLockChanged,
			"user_id", req.UserID, "name", req.Name, "rarity", req.Rarity, "locked", req.Locked)

		msg := MsgStackUnlocked
		if req.Locked {
			msg = MsgStackLocked
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: msg})
	}
}
