package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-console-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-console-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-console-go/internal/pkg/backend"
	"github.com/cmlabs-hris/hris-console-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-console-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-console-go/internal/pkg/sse"
	approvalService "github.com/cmlabs-hris/hris-console-go/internal/service/approval"
	notificationService "github.com/cmlabs-hris/hris-console-go/internal/service/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := appHTTP.NewLogger(cfg.App, cfg.SlogLevel())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	hub := sse.NewHub()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	approvalSvc := approvalService.NewApprovalService(backendClient, hub)
	notificationSvc := notificationService.NewNotificationService(backendClient, hub, notificationService.Config{
		BatchSize:     cfg.Broadcast.BatchSize,
		FlushInterval: cfg.Broadcast.FlushInterval,
		WorkerCount:   cfg.Broadcast.WorkerCount,
		QueueSize:     cfg.Broadcast.QueueSize,
	})

	attendanceJobs, err := cron.NewAttendanceJobs(cfg.Attendance.Timezone, hub)
	if err != nil {
		slog.Error("Failed to initialize attendance clock", "error", err)
		os.Exit(1)
	}
	scheduler := cron.NewScheduler(ctx)
	attendanceJobs.RegisterJobs(scheduler, cfg.Attendance.DayRolloverInterval)
	scheduler.Start()

	approvalHandler := appHTTP.NewApprovalHandler(approvalSvc)
	notificationHandler := appHTTP.NewNotificationHandler(notificationSvc, JWTService)
	clockHandler := appHTTP.NewClockHandler(attendanceJobs)

	router := appHTTP.NewRouter(
		cfg,
		logger,
		JWTService,
		approvalHandler,
		notificationHandler,
		clockHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// open SSE streams end when the shutdown signal cancels ctx
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "backend", cfg.Backend.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	scheduler.Stop()
	notificationSvc.Stop()
}
