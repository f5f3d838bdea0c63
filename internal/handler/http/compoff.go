package http

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type CompOffHandler interface {
	GetMine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Grant(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type compOffHandlerImpl struct {
	compOffService compoff.CompOffService
	loc            *time.Location
}

func NewCompOffHandler(compOffService compoff.CompOffService, loc *time.Location) CompOffHandler {
	return &compOffHandlerImpl{compOffService: compOffService, loc: loc}
}

// GetMine returns the caller's comp-offs and the days usable today.
func (h *compOffHandlerImpl) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.compOffService.ListMine(r.Context(), userID, time.Now().In(h.loc))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *compOffHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := compoff.Filter{
		UserID: queryString(r, "user_id"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 20),
	}
	if status := queryString(r, "status"); status != nil {
		s := compoff.Status(*status)
		filter.Status = &s
	}

	results, err := h.compOffService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

func (h *compOffHandlerImpl) Grant(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req compoff.GrantRequest
	if !decodeAndValidate(w, r, &req, "GrantCompOff") {
		return
	}

	result, err := h.compOffService.Grant(r.Context(), actorID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Comp-off granted", result)
}

func (h *compOffHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.compOffService.Cancel(r.Context(), actorID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Comp-off cancelled", result)
}
