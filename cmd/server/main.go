package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timeclock-hq/timeclock-backend-go/internal/config"
	appHTTP "github.com/timeclock-hq/timeclock-backend-go/internal/handler/http"
	"github.com/timeclock-hq/timeclock-backend-go/internal/pkg/database"
	"github.com/timeclock-hq/timeclock-backend-go/internal/pkg/jwt"
	"github.com/timeclock-hq/timeclock-backend-go/internal/reconcile"
	"github.com/timeclock-hq/timeclock-backend-go/internal/repository/postgresql"
	"github.com/timeclock-hq/timeclock-backend-go/internal/server"
	authService "github.com/timeclock-hq/timeclock-backend-go/internal/service/auth"
	employeeService "github.com/timeclock-hq/timeclock-backend-go/internal/service/employee"
	taskService "github.com/timeclock-hq/timeclock-backend-go/internal/service/task"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logLevel := slog.LevelInfo
	if cfg.App.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	taskRepo := postgresql.NewTaskRepository(db)
	worklogRepo := postgresql.NewWorklogRepository(db)
	adminRepo := postgresql.NewAdminUserRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	authSvc := authService.NewAuthService(adminRepo, jwtService)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	taskSvc := taskService.NewTaskService(taskRepo, employeeRepo)

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if err := authSvc.EnsureUser(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return fmt.Errorf("bootstrap admin user: %w", err)
		}
	}

	runner := reconcile.NewRunner(db, worklogRepo, taskRepo, logger)
	tcpServer := server.New(&server.Deps{
		Secret:     cfg.Wire.PairingSecret,
		Employees:  employeeRepo,
		Tasks:      taskRepo,
		Worklogs:   worklogRepo,
		Reconciler: runner,
	}, logger)

	if err := tcpServer.Start(ctx, cfg.Wire.Port); err != nil {
		return fmt.Errorf("start station endpoint: %w", err)
	}

	router := appHTTP.NewRouter(
		jwtService,
		appHTTP.NewAuthHandler(jwtService, authSvc),
		appHTTP.NewEmployeeHandler(employeeSvc),
		appHTTP.NewTaskHandler(taskSvc),
	)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	httpErr := make(chan error, 1)
	go func() {
		logger.Info("admin API listening", slog.Int("port", cfg.App.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			httpErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-httpErr:
		tcpServer.Stop()
		return fmt.Errorf("admin API: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin API shutdown failed", slog.String("error", err.Error()))
	}
	tcpServer.Stop()
	return nil
}
