package http

import (
	"github.com/go-auth-otp/internal/application/auth"
	"github.com/go-auth-otp/internal/transport/http/middleware"
)

// Deps holds the dependencies the router wires into handlers.
type Deps struct {
	AuthService auth.Service
	// TokenVerifier guards the protected route.
	TokenVerifier middleware.Verifier
}
