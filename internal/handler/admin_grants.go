package handler

import (
	"net/http"
	"time"

	"github.com/osse101/PullBot_Go/internal/clock"
	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/event"
	"github.com/osse101/PullBot_Go/internal/logger"
	"github.com/osse101/PullBot_Go/internal/quota"
)

// Source recorded on events raised through the admin API
const adminEventSource = "admin_api"

// CreateGrantRequest defines a time-boxed named grant
type CreateGrantRequest struct {
	Label          string    `json:"label" validate:"required,max=64,printascii"`
	DisplayLabel   string    `json:"display_label" validate:"omitempty,max=100"`
	CreditsPerUser int       `json:"credits_per_user" validate:"gt=0,max=10000"`
	ExpiresAt      time.Time `json:"expires_at" validate:"required"`
	CreatedBy      string    `json:"created_by" validate:"omitempty,max=100"`
}

// HandleCreateGrant registers a named grant
// @Summary Create named grant
// @Tags admin
// @Accept json
// @Produce json
// @Param request body CreateGrantRequest true "Grant definition"
// @Success 201 {object} domain.NamedGrant
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/admin/grants [post]
func HandleCreateGrant(svc quota.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateGrantRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Create grant"); err != nil {
			return
		}

		grant, err := svc.CreateGrant(r.Context(), domain.NamedGrant{
			Label:          req.Label,
			DisplayLabel:   req.DisplayLabel,
			CreditsPerUser: req.CreditsPerUser,
			ExpiresAt:      req.ExpiresAt,
			CreatedBy:      req.CreatedBy,
		})
		if err != nil {
			respondServiceError(w, r, ErrMsgCreateGrantFailed, err)
			return
		}

		logger.FromContext(r.Context()).Info(LogMsgGrantCreated, "label", grant.Label)
		respondJSON(w, http.StatusCreated, grant)
	}
}

// HandleDeactivateGrant stops further consumption of a grant
// @Summary Deactivate named grant
// @Tags admin
// @Produce json
// @Param label path string true "Grant label"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/admin/grants/{label}/deactivate [post]
func HandleDeactivateGrant(svc quota.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		label, ok := GetPathParam(r, w, ParamLabel)
		if !ok {
			return
		}

		if err := svc.DeactivateGrant(r.Context(), label); err != nil {
			respondServiceError(w, r, ErrMsgDeactivateGrantFailed, err)
			return
		}

		logger.FromContext(r.Context()).Info(LogMsgGrantDeactivated, "label", label)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgGrantDeactivated})
	}
}

// HandleListGrants lists live named grants
// @Summary List active grants
// @Tags admin
// @Produce json
// @Success 200 {object} DataResponse
// @Router /api/v1/admin/grants [get]
func HandleListGrants(svc quota.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grants, err := svc.ListActiveGrants(r.Context())
		if err != nil {
			respondServiceError(w, r, ErrMsgListGrantsFailed, err)
			return
		}
		if grants == nil {
			grants = []domain.NamedGrant{}
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: grants})
	}
}

// DateGrantRequest credits a date-keyed grant. DateKey defaults to today (UTC)
// and Target to every record.
type DateGrantRequest struct {
	DateKey string `json:"date_key" validate:"date_key"`
	Target  string `json:"target" validate:"omitempty,max=100"`
	Credits int    `json:"credits" validate:"gt=0,max=10000"`
}

// DateGrantResponse reports whether this call applied the grant
type DateGrantResponse struct {
	Message string                  `json:"message"`
	Result  *domain.DateGrantResult `json:"result"`
}

// HandleDateGrant applies an idempotent date-keyed grant. Repeating the same
// (date_key, target) returns 200 with claimed=false.
// @Summary Apply date-keyed grant
// @Tags admin
// @Accept json
// @Produce json
// @Param request body DateGrantRequest true "Grant"
// @Success 200 {object} DateGrantResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/admin/daily-grant [post]
func HandleDateGrant(svc quota.Service, publisher event.Publisher, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DateGrantRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Date grant"); err != nil {
			return
		}
		if req.DateKey == "" {
			req.DateKey = clock.DateKey(clk.Now())
		}
		if req.Target == "" {
			req.Target = domain.WildcardTarget
		}

		res, err := svc.GrantForDate(r.Context(), req.DateKey, req.Target, req.Credits)
		if err != nil {
			respondServiceError(w, r, ErrMsgDateGrantFailed, err)
			return
		}

		msg := MsgDateGrantDuplicate
		if res.Claimed {
			msg = MsgDateGrantApplied
			logger.FromContext(r.Context()).Info(LogMsgDateGrantApplied,
				"date_key", res.DateKey, "target", res.Target, "records", res.RecordsAffected)
			if publisher != nil {
				publisher.PublishWithRetry(r.Context(), event.NewDateGrantAppliedEvent(res, req.Credits, adminEventSource))
			}
		}
		respondJSON(w, http.StatusOK, DateGrantResponse{Message: msg, Result: res})
	}
}

// BirthdayGrantRequest credits a user's yearly birthday grant. Year defaults
// to the current UTC year.
type BirthdayGrantRequest struct {
	UserID  string `json:"user_id" validate:"required,max=100"`
	Year    int    `json:"year" validate:"omitempty,min=2000,max=9999"`
	Credits int    `json:"credits" validate:"gt=0,max=10000"`
}

// BirthdayGrantResponse reports whether the grant was applied
type BirthdayGrantResponse struct {
	Message string `json:"message"`
	Granted bool   `json:"granted"`
	Year    int    `json:"year"`
}

// HandleBirthdayGrant applies a once-per-year grant
// @Summary Apply birthday grant
// @Tags admin
// @Accept json
// @Produce json
// @Param request body BirthdayGrantRequest true "Grant"
// @Success 200 {object} BirthdayGrantResponse
// @Router /api/v1/admin/birthday-grant [post]
func HandleBirthdayGrant(svc quota.Service, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BirthdayGrantRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Birthday grant"); err != nil {
			return
		}
		if req.Year == 0 {
			req.Year = clk.Now().UTC().Year()
		}

		granted, err := svc.GrantBirthday(r.Context(), req.UserID, req.Year, req.Credits)
		if err != nil {
			respondServiceError(w, r, ErrMsgBirthdayGrantFailed, err)
			return
		}

		logger.FromContext(r.Context()).Info(LogMsgBirthdayGrant, "user_id", req.UserID, "year", req.Year, "granted", granted)

		msg := MsgBirthdayAlreadyDone
		if granted {
			msg = MsgBirthdayGranted
		}
		respondJSON(w, http.StatusOK, BirthdayGrantResponse{Message: msg, Granted: granted, Year: req.Year})
	}
}
