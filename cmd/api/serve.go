package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/advance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/reconciliation"
	appHTTP "github.com/cmlabs-hris/hris-payroll-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/journal"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	activityService "github.com/cmlabs-hris/hris-payroll-go/internal/service/activity"
	advanceService "github.com/cmlabs-hris/hris-payroll-go/internal/service/advance"
	employeeService "github.com/cmlabs-hris/hris-payroll-go/internal/service/employee"
	overtimeService "github.com/cmlabs-hris/hris-payroll-go/internal/service/overtime"
	payrollService "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	reconciliationService "github.com/cmlabs-hris/hris-payroll-go/internal/service/reconciliation"
	"github.com/spf13/cobra"
)

const version = "v1.0.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the reconciliation relay",
	RunE:  runServe,
}

// repositories is the persistence backend selected by APP_STORE
type repositories struct {
	transactor     database.Transactor
	employee       employee.EmployeeRepository
	overtime       overtime.OvertimeRepository
	advance        advance.AdvanceRepository
	payroll        payroll.PayrollRepository
	reconciliation reconciliation.RecordRepository
	activity       activity.ActivityRepository
	close          func()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.App.Store == config.StoreMemory {
		slog.Warn("using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			transactor:     store,
			employee:       memory.NewEmployeeRepository(store),
			overtime:       memory.NewOvertimeRepository(store),
			advance:        memory.NewAdvanceRepository(store),
			payroll:        memory.NewPayrollRepository(store),
			reconciliation: memory.NewRecordRepository(store),
			activity:       memory.NewActivityRepository(store),
			close:          func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := postgresql.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &repositories{
		transactor:     postgresql.NewTransactor(db),
		employee:       postgresql.NewEmployeeRepository(db),
		overtime:       postgresql.NewOvertimeRepository(db),
		advance:        postgresql.NewAdvanceRepository(db),
		payroll:        postgresql.NewPayrollRepository(db),
		reconciliation: postgresql.NewRecordRepository(db),
		activity:       postgresql.NewActivityRepository(db),
		close:          db.Close,
	}, nil
}

func newJournal(cfg config.ReconciliationConfig) reconciliation.Journal {
	if cfg.JournalURL == "" {
		slog.Info("JOURNAL_URL not set, reconciliation records are written to the log")
		return journal.NewLogJournal(slog.Default())
	}
	return journal.NewClient(cfg.JournalURL, cfg.JournalAPIKey, cfg.JournalTimeout)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := loadedConfig

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	hub := sse.NewHub()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration.String())

	activitySvc := activityService.NewActivityService(repos.activity)
	defer activitySvc.Close()

	overtimeSvc := overtimeService.NewOvertimeService(repos.overtime, repos.employee, activitySvc, hub)
	advanceSvc := advanceService.NewAdvanceService(repos.advance, repos.employee, activitySvc, hub)
	reconciliationSvc := reconciliationService.NewReconciliationService(
		repos.reconciliation,
		newJournal(cfg.Reconciliation),
		reconciliationService.Options{
			BatchSize:   cfg.Reconciliation.BatchSize,
			MaxAttempts: cfg.Reconciliation.MaxAttempts,
		},
	)
	payrollSvc := payrollService.NewPayrollService(
		repos.transactor,
		repos.payroll,
		repos.employee,
		overtimeSvc,
		advanceSvc,
		reconciliationSvc,
		activitySvc,
		hub,
		payrollService.Policy{
			OvertimeMultiplier:   cfg.Payroll.OvertimeMultiplier,
			StandardMonthlyHours: cfg.Payroll.StandardMonthlyHours,
		},
	)
	employeeSvc := employeeService.NewEmployeeService(
		repos.transactor,
		repos.employee,
		repos.payroll,
		payrollSvc,
		advanceSvc,
		activitySvc,
		hub,
	)

	scheduler := cron.NewScheduler()
	cron.NewReconciliationJobs(reconciliationSvc, cfg.Reconciliation.RelayInterval).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(JWTService, appHTTP.RouterOptions{
		Env:            cfg.App.Env,
		Version:        version,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		LogLevel:       cfg.SlogLevel(),
	}, appHTTP.Handlers{
		Employee:       appHTTP.NewEmployeeHandler(employeeSvc),
		Overtime:       appHTTP.NewOvertimeHandler(overtimeSvc),
		Advance:        appHTTP.NewAdvanceHandler(advanceSvc),
		Payroll:        appHTTP.NewPayrollHandler(payrollSvc),
		Reconciliation: appHTTP.NewReconciliationHandler(reconciliationSvc),
		Activity:       appHTTP.NewActivityHandler(activitySvc),
		Stream:         appHTTP.NewStreamHandler(hub),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	server.RegisterOnShutdown(hub.Close)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", server.Addr, "store", cfg.App.Store, "env", cfg.App.Env)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		return nil
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}
