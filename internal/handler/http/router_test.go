package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/journal"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	activityservice "github.com/cmlabs-hris/hris-payroll-go/internal/service/activity"
	advanceservice "github.com/cmlabs-hris/hris-payroll-go/internal/service/advance"
	employeeservice "github.com/cmlabs-hris/hris-payroll-go/internal/service/employee"
	overtimeservice "github.com/cmlabs-hris/hris-payroll-go/internal/service/overtime"
	payrollservice "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	reconciliationservice "github.com/cmlabs-hris/hris-payroll-go/internal/service/reconciliation"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *chi.Mux
	jwt    jwt.Service
	hub    *sse.Hub
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	hub := sse.NewHub()
	employeeRepo := memory.NewEmployeeRepository(store)
	payrollRepo := memory.NewPayrollRepository(store)

	activitySvc := activityservice.NewActivityService(memory.NewActivityRepository(store))
	t.Cleanup(activitySvc.Close)

	overtimeSvc := overtimeservice.NewOvertimeService(memory.NewOvertimeRepository(store), employeeRepo, activitySvc, hub)
	advanceSvc := advanceservice.NewAdvanceService(memory.NewAdvanceRepository(store), employeeRepo, activitySvc, hub)
	reconciliationSvc := reconciliationservice.NewReconciliationService(
		memory.NewRecordRepository(store), journal.NewLogJournal(slog.Default()), reconciliationservice.Options{},
	)
	payrollSvc := payrollservice.NewPayrollService(store, payrollRepo, employeeRepo,
		overtimeSvc, advanceSvc, reconciliationSvc, activitySvc, hub, payrollservice.DefaultPolicy())
	employeeSvc := employeeservice.NewEmployeeService(store, employeeRepo, payrollRepo, payrollSvc, advanceSvc, activitySvc, hub)

	jwtSvc := jwt.NewJWTService("handler-test-secret", "1h")
	router := NewRouter(jwtSvc, RouterOptions{Env: "test", AllowedOrigins: []string{"*"}, LogLevel: slog.LevelError}, Handlers{
		Employee:       NewEmployeeHandler(employeeSvc),
		Overtime:       NewOvertimeHandler(overtimeSvc),
		Advance:        NewAdvanceHandler(advanceSvc),
		Payroll:        NewPayrollHandler(payrollSvc),
		Reconciliation: NewReconciliationHandler(reconciliationSvc),
		Activity:       NewActivityHandler(activitySvc),
		Stream:         NewStreamHandler(hub),
	})

	token, _, err := jwtSvc.GenerateAccessToken("user-1", "company-1")
	require.NoError(t, err)

	return &testServer{router: router, jwt: jwtSvc, hub: hub, token: token}
}

type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    json.RawMessage       `json:"data"`
	Error   *response.ErrorDetail `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	return s.doWithToken(t, s.token, method, path, body)
}

func (s *testServer) doWithToken(t *testing.T, token, method, path string, body any) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}

func (s *testServer) createEmployee(t *testing.T, name, salary, hireDate string, overtimeEligible bool) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/employees", map[string]any{
		"name":              name,
		"position":          "Staff",
		"current_salary":    salary,
		"overtime_eligible": overtimeEligible,
		"hire_date":         hireDate,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	return decodeData[struct {
		ID string `json:"id"`
	}](t, env).ID
}

func TestRouterRequiresToken(t *testing.T) {
	s := newTestServer(t)

	code, env := s.doWithToken(t, "", http.MethodGet, "/api/v1/employees", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = s.doWithToken(t, "not-a-jwt", http.MethodGet, "/api/v1/employees", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouterRejectsTokenWithoutCompany(t *testing.T) {
	s := newTestServer(t)

	token, _, err := s.jwt.GenerateAccessToken("user-1", "")
	require.NoError(t, err)

	code, env := s.doWithToken(t, token, http.MethodGet, "/api/v1/employees", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestRouterHeartbeat(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEmployeeEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/employees", map[string]any{"name": "", "current_salary": "0"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "current_salary")
	assert.Contains(t, env.Error.Details, "hire_date")

	code, _ = s.do(t, http.MethodPost, "/api/v1/employees", map[string]any{
		"name": "Future", "current_salary": "500", "hire_date": "2999-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	id := s.createEmployee(t, "Ana Lima", "600", "2024-01-01", true)

	code, env = s.do(t, http.MethodPut, "/api/v1/employees/"+id, map[string]any{"current_salary": "660"})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = s.do(t, http.MethodGet, "/api/v1/employees/"+id+"/salary-history", nil)
	require.Equal(t, http.StatusOK, code)
	history := decodeData[[]struct {
		IncrementPercentage decimal.Decimal `json:"increment_percentage"`
	}](t, env)
	require.Len(t, history, 1)
	assert.True(t, history[0].IncrementPercentage.Equal(decimal.NewFromInt(10)))

	code, _ = s.do(t, http.MethodGet, "/api/v1/employees/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/employees/"+id, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/employees/"+id, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPayrollLifecycleEndpoints(t *testing.T) {
	s := newTestServer(t)

	id := s.createEmployee(t, "Ana Lima", "600", "2024-01-01", true)

	code, env := s.do(t, http.MethodPost, "/api/v1/overtime", map[string]any{
		"employee_id": id, "date": "2025-01-15", "hours": "10",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	overtimeID := decodeData[struct {
		ID string `json:"id"`
	}](t, env).ID

	code, env = s.do(t, http.MethodPost, "/api/v1/advances", map[string]any{
		"employee_id": id, "amount": "300", "date": "2025-01-05",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)

	code, env = s.do(t, http.MethodPost, "/api/v1/payroll/process", map[string]any{"month": "2025-01"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	result := decodeData[struct {
		ProcessedCount int `json:"processed_count"`
		Entries        []struct {
			ID               string          `json:"id"`
			OvertimePay      decimal.Decimal `json:"overtime_pay"`
			AdvanceDeduction decimal.Decimal `json:"advance_deduction"`
			TotalSalary      decimal.Decimal `json:"total_salary"`
			NetSalary        decimal.Decimal `json:"net_salary"`
		} `json:"entries"`
	}](t, env)
	require.Equal(t, 1, result.ProcessedCount)
	entry := result.Entries[0]
	assert.True(t, entry.OvertimePay.Equal(decimal.RequireFromString("28.85")), entry.OvertimePay.String())
	assert.True(t, entry.TotalSalary.Equal(decimal.RequireFromString("628.85")))
	assert.True(t, entry.AdvanceDeduction.Equal(decimal.RequireFromString("300")))
	assert.True(t, entry.NetSalary.Equal(decimal.RequireFromString("328.85")))

	code, _ = s.do(t, http.MethodPost, "/api/v1/payroll/process", map[string]any{"month": "2025-01"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/overtime/"+overtimeID, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/payroll/"+entry.ID+"/pay", nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/payroll/"+entry.ID+"/pay", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/payroll/"+entry.ID, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(t, http.MethodDelete, "/api/v1/payroll/months/2025-01", nil)
	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "1 of 1 entries already paid")

	code, env = s.do(t, http.MethodGet, "/api/v1/reconciliation?reference_id="+entry.ID, nil)
	require.Equal(t, http.StatusOK, code)
	records := decodeData[[]json.RawMessage](t, env)
	assert.Len(t, records, 1)

	code, _ = s.do(t, http.MethodPost, "/api/v1/payroll/"+entry.ID+"/reverse", nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodPost, "/api/v1/reconciliation/relay", nil)
	require.Equal(t, http.StatusOK, code)
	relay := decodeData[struct {
		Delivered int `json:"delivered"`
	}](t, env)
	assert.Equal(t, 2, relay.Delivered)

	code, env = s.do(t, http.MethodDelete, "/api/v1/payroll/months/2025-01", nil)
	require.Equal(t, http.StatusOK, code, env.Error)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/overtime/"+overtimeID, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/payroll/months", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decodeData[[]json.RawMessage](t, env))
}

func TestPayrollProcessValidation(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/payroll/process", map[string]any{"month": "2025-13"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "month")

	code, _ = s.do(t, http.MethodPost, "/api/v1/payroll/process", map[string]any{"month": "2099-01"})
	assert.Equal(t, http.StatusBadRequest, code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/process", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdvanceEndpoints(t *testing.T) {
	s := newTestServer(t)
	id := s.createEmployee(t, "Ana Lima", "600", "2024-01-01", false)

	code, env := s.do(t, http.MethodPost, "/api/v1/advances", map[string]any{
		"employee_id": id, "amount": "1,250.50", "date": "2025-01-05",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	advanceID := decodeData[struct {
		ID string `json:"id"`
	}](t, env).ID

	code, env = s.do(t, http.MethodGet, "/api/v1/advances/eligible?employee_id="+id, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeData[[]json.RawMessage](t, env), 1)

	code, _ = s.do(t, http.MethodGet, "/api/v1/advances/eligible", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/advances?status=BOGUS", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/advances/"+advanceID+"/cancel", nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/advances/"+advanceID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestStreamDeliversCompanyEvents(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/stream?token="+s.token, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		_, err = reader.ReadString('\n') // data
		require.NoError(t, err)
		_, err = reader.ReadString('\n') // blank
		require.NoError(t, err)
		return strings.TrimSpace(line)
	}

	assert.Equal(t, "event: connected", readEvent())

	require.Eventually(t, func() bool { return s.hub.SubscriberCount("company-1") == 1 }, time.Second, 5*time.Millisecond)
	s.hub.Publish("company-2", "payroll.processed", map[string]string{"month": "2025-01"})
	s.hub.Publish("company-1", "payroll.paid", map[string]string{"id": "entry-1"})

	assert.Equal(t, "event: payroll.paid", readEvent())
}
