package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/config"
	"github.com/iliyamo/hostel-management/internal/database"
	"github.com/iliyamo/hostel-management/internal/handler"
	"github.com/iliyamo/hostel-management/internal/logger"
	"github.com/iliyamo/hostel-management/internal/mailer"
	"github.com/iliyamo/hostel-management/internal/middleware"
	"github.com/iliyamo/hostel-management/internal/queue"
	"github.com/iliyamo/hostel-management/internal/repository"
	"github.com/iliyamo/hostel-management/internal/router"
	"github.com/iliyamo/hostel-management/internal/service"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat, "hostel-api")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.WaitFor(ctx, database.Options{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
		TLS:  cfg.DBTLS,
	}, 30, 2*time.Second)
	if err != nil {
		lg.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		lg.Fatal("schema bootstrap failed", zap.Error(err))
	}

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		lg.Warn("redis unreachable, rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	var sender mailer.Sender = mailer.LogSender{Log: lg}
	if cfg.Mail.Configured() {
		sender = mailer.NewSMTPSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password)
	} else {
		lg.Warn("SMTP not configured, OTP codes will be logged instead of mailed")
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.Events.Enabled {
		pub := queue.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Queue)
		async := queue.NewAsyncPublisher(pub, 256, 5*time.Second, lg.Named("events"))
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := async.Close(flushCtx); err != nil {
				lg.Warn("events not flushed before shutdown", zap.Error(err))
			}
			_ = pub.Close()
		}()
		events = async

		consumer := &queue.AuditConsumer{
			URL:   cfg.Events.URL,
			Queue: cfg.Events.Queue,
			Dir:   cfg.Events.LogDir,
			Log:   lg.Named("events"),
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				lg.Error("events consumer stopped", zap.Error(err))
			}
		}()
	}

	accounts := repository.NewAccountRepo(db)
	rooms := repository.NewRoomRepo(db)
	payments := repository.NewPaymentRepo(db)
	details := repository.NewStudentDetailRepo(db)
	visits := repository.NewVisitorLogRepo(db)

	registration := service.NewRegistrationService(db, accounts, visits, sender, events, lg,
		service.RegistrationOptions{MailFrom: cfg.Mail.From, OTPTTL: cfg.OTPTTL, BcryptCost: cfg.BcryptCost})
	assignment := service.NewAssignmentService(db, accounts, rooms, payments, details, events, lg)
	payment := service.NewPaymentService(db, payments, events, lg)

	h := router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, registration, lg),
		Rooms:         handler.NewRoomHandler(accounts, rooms, assignment, lg),
		Payments:      handler.NewPaymentHandler(payment, payments, lg),
		Complaints:    handler.NewComplaintHandler(repository.NewComplaintRepo(db), lg),
		Notifications: handler.NewNotificationHandler(repository.NewNotificationRepo(db), lg),
		Students:      handler.NewStudentHandler(accounts, details, assignment, lg),
		VisitorLogs:   handler.NewVisitorLogHandler(visits, lg),
		Health:        handler.NewHealthHandler(db),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(lg))
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit("1M"))

	router.Register(e, h, cfg, config.LoadRateLimitConfig(), rdb, lg)
	if cfg.FrontendDir != "" {
		if st, err := os.Stat(cfg.FrontendDir); err == nil && st.IsDir() {
			e.Static("/", cfg.FrontendDir)
		} else {
			lg.Warn("frontend directory not found", zap.String("dir", cfg.FrontendDir))
		}
	}

	addr := ":" + cfg.Port
	go func() {
		lg.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
	lg.Info("server stopped")
}
