package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
)

type ActivityHandler interface {
	ListLogs(w http.ResponseWriter, r *http.Request)
}

type activityHandlerImpl struct {
	activityService activity.Service
}

func NewActivityHandler(activityService activity.Service) ActivityHandler {
	return &activityHandlerImpl{activityService: activityService}
}

func (h *activityHandlerImpl) ListLogs(w http.ResponseWriter, r *http.Request) {
	filter := activity.ListFilter{
		Module:   r.URL.Query().Get("module"),
		TargetID: r.URL.Query().Get("target_id"),
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsedLimit, err := strconv.Atoi(l); err == nil && parsedLimit > 0 {
			filter.Limit = parsedLimit
		}
	}

	result, err := h.activityService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
