package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	approveReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/approve_reservation"
	cancelReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/cancel_reservation"
	createReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/create_reservation"
	deleteReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/delete_reservation"
	getPolicyHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_policy"
	getReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_reservation"
	getTableHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_table"
	getTableAvailabilityHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_table_availability"
	listReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/list_reservations"
	listTablesHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/list_tables"
	rejectReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/reject_reservation"
	updatePolicyHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/update_policy"
	updateReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/update_reservation"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	approvalService "github.com/m04kA/SMC-ReservationService/internal/service/approval"
	policyService "github.com/m04kA/SMC-ReservationService/internal/service/policy"
	reservationsService "github.com/m04kA/SMC-ReservationService/internal/service/reservations"
	tablesService "github.com/m04kA/SMC-ReservationService/internal/service/tables"
	"github.com/m04kA/SMC-ReservationService/internal/sweeper"
	createReservationUC "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	getTableAvailabilityUC "github.com/m04kA/SMC-ReservationService/internal/usecase/get_table_availability"
	updateReservationUC "github.com/m04kA/SMC-ReservationService/internal/usecase/update_reservation"
)

func newServeCmd() *cobra.Command {
	var (
		withSweeper bool
		migrateUp   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the lifecycle sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), withSweeper, migrateUp)
		},
	}

	cmd.Flags().BoolVar(&withSweeper, "sweeper", true, "run the lifecycle sweeper in this process")
	cmd.Flags().BoolVar(&migrateUp, "migrate", false, "apply database migrations on startup")

	return cmd
}

func runServe(parent context.Context, withSweeper, migrateUp bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, migrateUp)
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.log
	cfg := a.cfg
	log.Info("Starting SMC-ReservationService...")

	// Фоновое завершение прошедших бронирований
	if withSweeper && cfg.Sweeper.Enabled {
		sw := sweeper.New(a.reservations, a.events, a.metrics, log, sweeper.WithBatchSize(cfg.Sweeper.BatchSize))
		runner, err := sweeper.NewRunner(ctx, sw, cfg.Sweeper.Interval(), log)
		if err != nil {
			return err
		}
		runner.Start()
		defer func() {
			if err := runner.Stop(); err != nil {
				log.Error("Failed to stop sweeper: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      newRouter(a),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}

func newRouter(a *app) *mux.Router {
	log := a.log
	cfg := a.cfg

	// Инициализируем сервисы
	reservationSvc := reservationsService.NewService(a.reservations, a.events, a.metrics, log)
	approvalSvc := approvalService.NewService(a.reservations, a.events, a.metrics, log)
	policySvc := policyService.NewService(a.policies, a.txManager, log)
	tableSvc := tablesService.NewService(a.tables, log)

	// Инициализируем use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		a.reservations,
		a.policies,
		a.tables,
		a.locker,
		a.txManager,
		a.events,
		a.metrics,
		createReservationUC.Config{
			MaxWriteAttempts: cfg.Scheduler.MaxWriteAttempts,
			RetryBackoff:     cfg.Scheduler.RetryBackoff(),
			LockTimeout:      cfg.Scheduler.LockTimeout(),
		},
		log,
	)
	updateReservationUseCase := updateReservationUC.NewUseCase(
		a.reservations,
		a.policies,
		a.tables,
		a.locker,
		a.txManager,
		a.events,
		a.metrics,
		updateReservationUC.Config{
			MaxWriteAttempts: cfg.Scheduler.MaxWriteAttempts,
			RetryBackoff:     cfg.Scheduler.RetryBackoff(),
			LockTimeout:      cfg.Scheduler.LockTimeout(),
		},
		log,
	)
	getTableAvailabilityUseCase := getTableAvailabilityUC.NewUseCase(a.reservations, a.policies, a.tables, log)

	// Инициализируем handlers
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	updateReservation := updateReservationHandler.NewHandler(updateReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	listReservations := listReservationsHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	deleteReservation := deleteReservationHandler.NewHandler(reservationSvc, log)
	approveReservation := approveReservationHandler.NewHandler(approvalSvc, log)
	rejectReservation := rejectReservationHandler.NewHandler(approvalSvc, log)
	getPolicy := getPolicyHandler.NewHandler(policySvc, log)
	updatePolicy := updatePolicyHandler.NewHandler(policySvc, log)
	listTables := listTablesHandler.NewHandler(tableSvc, log)
	getTable := getTableHandler.NewHandler(tableSvc, log)
	getTableAvailability := getTableAvailabilityHandler.NewHandler(getTableAvailabilityUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(a.metrics))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	// Все маршруты API требуют X-User-ID
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth)

	// --- Бронирования ---
	api.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)
	api.HandleFunc("/reservations", listReservations.Handle).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{reservationId}", updateReservation.Handle).Methods(http.MethodPut)
	api.HandleFunc("/reservations/{reservationId}", deleteReservation.Handle).Methods(http.MethodDelete)
	api.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)

	// --- Согласование (администратор) ---
	api.HandleFunc("/reservations/{reservationId}/approve", approveReservation.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/reservations/{reservationId}/reject", rejectReservation.Handle).Methods(http.MethodPatch)

	// --- Политика ---
	api.HandleFunc("/policy", getPolicy.Handle).Methods(http.MethodGet)
	api.HandleFunc("/policy", updatePolicy.Handle).Methods(http.MethodPut)

	// --- Столы ---
	api.HandleFunc("/tables", listTables.Handle).Methods(http.MethodGet)
	api.HandleFunc("/tables/{tableId}", getTable.Handle).Methods(http.MethodGet)
	api.HandleFunc("/tables/{tableId}/availability", getTableAvailability.Handle).Methods(http.MethodGet)

	return r
}

