package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
)

type ReconciliationHandler interface {
	ListRecords(w http.ResponseWriter, r *http.Request)
	Relay(w http.ResponseWriter, r *http.Request)
}

type reconciliationHandlerImpl struct {
	reconciliationService reconciliation.Service
}

func NewReconciliationHandler(reconciliationService reconciliation.Service) ReconciliationHandler {
	return &reconciliationHandlerImpl{reconciliationService: reconciliationService}
}

func (h *reconciliationHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	filter := reconciliation.ListFilter{
		ReferenceID: r.URL.Query().Get("reference_id"),
		Status:      reconciliation.Status(r.URL.Query().Get("status")),
	}

	result, err := h.reconciliationService.ListRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Relay flushes the caller's company outbox now instead of waiting for the next cron tick
func (h *reconciliationHandlerImpl) Relay(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciliationService.RelayCompany(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
