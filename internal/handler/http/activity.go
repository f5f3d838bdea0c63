package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

type ActivityHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type activityHandlerImpl struct {
	activityLogger activity.Logger
}

func NewActivityHandler(activityLogger activity.Logger) ActivityHandler {
	return &activityHandlerImpl{activityLogger: activityLogger}
}

// List handles GET /activities
func (h *activityHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := activity.Filter{
		ActorID:    queryString(r, "actor_id"),
		EntityType: queryString(r, "entity_type"),
		Page:       queryInt(r, "page", 1),
		Limit:      queryInt(r, "limit", 20),
	}
	if action := queryString(r, "action"); action != nil {
		a := activity.Action(*action)
		filter.Action = &a
	}

	result, err := h.activityLogger.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
