package handler

import (
	"net/http"

	"github.com/osse101/PullBot_Go/internal/eventlog"
)

// HandleListEvents returns persisted domain events, newest first
// @Summary List logged events
// @Tags admin
// @Produce json
// @Param user_id query string false "User ID"
// @Param event_type query string false "Event type, e.g. pull.completed"
// @Param since query string false "RFC3339 lower bound"
// @Param until query string false "RFC3339 upper bound"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} DataResponse
// @Router /api/v1/admin/events [get]
func HandleListEvents(svc eventlog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter eventlog.EventFilter
		if v := GetOptionalQueryParam(r, ParamUserID, ""); v != "" {
			filter.UserID = &v
		}
		if v := GetOptionalQueryParam(r, ParamEventType, ""); v != "" {
			filter.EventType = &v
		}

		var ok bool
		if filter.Since, ok = GetTimeQueryParam(r, w, ParamSince); !ok {
			return
		}
		if filter.Until, ok = GetTimeQueryParam(r, w, ParamUntil); !ok {
			return
		}
		if filter.Limit, ok = GetIntQueryParam(r, w, ParamLimit, eventlog.DefaultQueryLimit); !ok {
			return
		}

		events, err := svc.ListEvents(r.Context(), filter)
		if err != nil {
			respondServiceError(w, r, ErrMsgListEventsFailed, err)
			return
		}
		if events == nil {
			events = []eventlog.Event{}
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: events})
	}
}
