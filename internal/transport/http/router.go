package http

import (
	"context"
	"net/http"

	"github.com/go-auth-otp/internal/config"
	"github.com/go-auth-otp/internal/transport/http/handler"
	appmiddleware "github.com/go-auth-otp/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the
// lifetime of background middleware goroutines.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, on endpoints that send mail or check secrets.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10, cfg.TrustProxyHeaders)

	healthH := handler.NewHealthHandler()
	signupH := handler.NewSignupHandler(deps.AuthService)
	sessionH := handler.NewSessionHandler(deps.AuthService)
	pwH := handler.NewPasswordRecoveryHandler(deps.AuthService)

	r.Get("/health-check/{action}", healthH.Ping)
	r.Post("/health-check/{action}", healthH.Ping)

	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/test", healthH.Test)

		r.Group(func(r chi.Router) {
			r.Use(sensitiveRL.Limit)

			r.Post("/signup", signupH.Signup)
			r.Post("/verify-otp", signupH.VerifyOTP)
			r.Post("/login", sessionH.Login)
			r.Post("/send-otp", pwH.SendOTP)
			r.Post("/verify-reset-otp", pwH.VerifyOTP)
			r.Post("/reset-password", pwH.ResetPassword)
		})

		r.With(appmiddleware.Auth(deps.TokenVerifier)).Get("/protected", sessionH.Protected)
	})

	return r
}
