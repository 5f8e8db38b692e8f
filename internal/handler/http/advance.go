package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/advance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AdvanceHandler interface {
	ListAdvances(w http.ResponseWriter, r *http.Request)
	CreateAdvance(w http.ResponseWriter, r *http.Request)
	GetAdvance(w http.ResponseWriter, r *http.Request)
	CancelAdvance(w http.ResponseWriter, r *http.Request)
	ListEligible(w http.ResponseWriter, r *http.Request)
}

type advanceHandlerImpl struct {
	advanceService advance.AdvanceService
}

func NewAdvanceHandler(advanceService advance.AdvanceService) AdvanceHandler {
	return &advanceHandlerImpl{advanceService: advanceService}
}

func (h *advanceHandlerImpl) ListAdvances(w http.ResponseWriter, r *http.Request) {
	filter := advance.ListFilter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Status:     advance.Status(r.URL.Query().Get("status")),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		response.HandleError(w, validator.ValidationErrors{{Field: "status", Message: "must be ACTIVE, FULLY_DEDUCTED or CANCELLED"}})
		return
	}

	result, err := h.advanceService.ListAdvances(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *advanceHandlerImpl) CreateAdvance(w http.ResponseWriter, r *http.Request) {
	var req advance.CreateAdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.advanceService.CreateAdvance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Advance created successfully", result)
}

func (h *advanceHandlerImpl) GetAdvance(w http.ResponseWriter, r *http.Request) {
	result, err := h.advanceService.GetAdvance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *advanceHandlerImpl) CancelAdvance(w http.ResponseWriter, r *http.Request) {
	result, err := h.advanceService.CancelAdvance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Advance cancelled successfully", result)
}

// ListEligible shows what the next payroll run would deduct for an employee
func (h *advanceHandlerImpl) ListEligible(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		response.HandleError(w, validator.ValidationErrors{{Field: "employee_id", Message: "is required"}})
		return
	}

	advances, err := h.advanceService.EligibleForDeduction(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]advance.AdvanceResponse, 0, len(advances))
	for _, a := range advances {
		result = append(result, advance.ToResponse(a))
	}
	response.Success(w, result)
}
