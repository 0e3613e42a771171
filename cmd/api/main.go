package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-auth-otp/internal/application/auth"
	"github.com/go-auth-otp/internal/config"
	"github.com/go-auth-otp/internal/domain"
	"github.com/go-auth-otp/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-auth-otp/internal/infrastructure/jwt"
	"github.com/go-auth-otp/internal/infrastructure/memory"
	redisinfra "github.com/go-auth-otp/internal/infrastructure/redis"
	"github.com/go-auth-otp/internal/infrastructure/smtp"
	transporthttp "github.com/go-auth-otp/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		fatal("dynamodb client", err)
	}
	// Creates tables if they don't exist.
	dynamo.Bootstrap(ctx, dynamoClient, cfg)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		fatal("jwt provider", err)
	}

	svcDeps := auth.ServiceDeps{
		UserRepo:               dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		Mailer:                 smtp.NewMailer(cfg),
		JWTProvider:            jwtProvider,
		BcryptCost:             cfg.BcryptCost,
		ResetOTPTTL:            cfg.ResetOTPTTL,
		ResetRecordRetention:   cfg.ResetRecordRetention,
		PendingSignupRetention: cfg.PendingSignupRetention,
	}

	switch cfg.OTPStore {
	case config.OTPStoreRedis:
		rdb, err := redisinfra.NewClient(ctx, cfg)
		if err != nil {
			fatal("redis client", err)
		}
		defer rdb.Close()
		svcDeps.PendingSignups = redisinfra.NewStore[domain.PendingRegistration](rdb, redisinfra.PrefixSignup)
		svcDeps.ResetOTPs = redisinfra.NewStore[domain.ResetOTP](rdb, redisinfra.PrefixReset)
	case config.OTPStoreDynamo:
		table := cfg.DynamoTables.OTPRecords
		svcDeps.PendingSignups = dynamo.NewRecordStore[domain.PendingRegistration](dynamoClient, table, dynamo.KindSignup)
		svcDeps.ResetOTPs = dynamo.NewRecordStore[domain.ResetOTP](dynamoClient, table, dynamo.KindReset)
	case config.OTPStoreMemory:
		svcDeps.PendingSignups = memory.NewStore[domain.PendingRegistration]()
		svcDeps.ResetOTPs = memory.NewStore[domain.ResetOTP]()
	default:
		fatal("config", fmt.Errorf("unknown OTP_STORE %q", cfg.OTPStore))
	}
	slog.Info("OTP store selected", "backend", cfg.OTPStore)

	router := transporthttp.NewRouter(ctx, cfg, &transporthttp.Deps{
		AuthService:   auth.NewService(svcDeps),
		TokenVerifier: jwtProvider,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
		return
	}
	slog.Info("server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.AppEnv == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func fatal(what string, err error) {
	slog.Error("startup failed", "component", what, "err", err)
	os.Exit(1)
}
