package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Env            string
	Version        string
	AllowedOrigins []string
	LogLevel       slog.Level
}

type Handlers struct {
	Employee       EmployeeHandler
	Overtime       OvertimeHandler
	Advance        AdvanceHandler
	Payroll        PayrollHandler
	Reconciliation ReconciliationHandler
	Activity       ActivityHandler
	Stream         StreamHandler
}

func NewRouter(JWTService jwt.Service, opts RouterOptions, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		ja := JWTService.JWTAuth()

		// EventSource cannot send headers, so the stream also accepts ?token=
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(ja, jwtauth.TokenFromHeader, jwtauth.TokenFromCookie, middleware.TokenFromQuery))
			r.Use(middleware.AuthRequired)
			r.Get("/stream", h.Stream.Stream)
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(ja))
			r.Use(middleware.AuthRequired)
			r.Use(chiMiddleware.AllowContentType("application/json"))

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.Employee.ListEmployees)
				r.Post("/", h.Employee.CreateEmployee)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Employee.GetEmployee)
					r.Put("/", h.Employee.UpdateEmployee)
					r.Delete("/", h.Employee.DeleteEmployee)
					r.Get("/salary-history", h.Employee.GetSalaryHistory)
					r.Get("/balance", h.Employee.GetBalance)
				})
			})

			r.Route("/overtime", func(r chi.Router) {
				r.Get("/", h.Overtime.ListEntries)
				r.Post("/", h.Overtime.RecordEntry)
				r.Get("/summary", h.Overtime.GetSummary)
				r.Put("/{id}", h.Overtime.UpdateEntry)
				r.Delete("/{id}", h.Overtime.DeleteEntry)
			})

			r.Route("/advances", func(r chi.Router) {
				r.Get("/", h.Advance.ListAdvances)
				r.Post("/", h.Advance.CreateAdvance)
				r.Get("/eligible", h.Advance.ListEligible)
				r.Get("/{id}", h.Advance.GetAdvance)
				r.Post("/{id}/cancel", h.Advance.CancelAdvance)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Post("/process", h.Payroll.ProcessMonth)
				r.Route("/months", func(r chi.Router) {
					r.Get("/", h.Payroll.ListMonths)
					r.Get("/{month}", h.Payroll.GetMonth)
					r.Delete("/{month}", h.Payroll.UndoMonth)
				})
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Payroll.GetEntry)
					r.Delete("/", h.Payroll.DeleteEntry)
					r.Post("/pay", h.Payroll.MarkAsPaid)
					r.Post("/reverse", h.Payroll.ReversePayment)
				})
			})

			r.Route("/reconciliation", func(r chi.Router) {
				r.Get("/", h.Reconciliation.ListRecords)
				r.Post("/relay", h.Reconciliation.Relay)
			})

			r.Get("/activity", h.Activity.ListLogs)
		})
	})
	return r
}
