package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/advance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
		code string
	}{
		{validator.ValidationErrors{{Field: "month", Message: "is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{employee.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("failed to get employee: %w", employee.ErrEmployeeNotFound), http.StatusNotFound, "NOT_FOUND"},
		{overtime.ErrFutureDate, http.StatusBadRequest, "BAD_REQUEST"},
		{overtime.ErrOvertimeEntryLocked, http.StatusConflict, "CONFLICT"},
		{advance.ErrAdvanceNotActive, http.StatusConflict, "CONFLICT"},
		{payroll.ErrFutureMonth, http.StatusBadRequest, "BAD_REQUEST"},
		{payroll.ErrMonthAlreadyProcessed, http.StatusConflict, "CONFLICT"},
		{payroll.ErrPayrollEntryNotPaid, http.StatusConflict, "CONFLICT"},
		{payroll.ErrCannotDeletePaidEntry, http.StatusConflict, "CONFLICT"},
		{errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tc.err)

			assert.Equal(t, tc.want, rec.Code)

			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}
}

func TestHandleErrorPartiallyPaidKeepsCount(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, fmt.Errorf("%w: %d of %d entries already paid, reverse them first", payroll.ErrMonthPartiallyPaid, 1, 2))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 of 2 entries already paid")
}

func TestHandleErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, errors.New("pq: password authentication failed"))

	assert.NotContains(t, rec.Body.String(), "password")
}
