package auth

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"ainav/backend/internal/config"
	"ainav/backend/internal/services"
	"ainav/backend/pkg/models"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Auth gates endpoints behind a human-verification challenge token.
type Auth struct {
	verifier services.HumanVerifier
	header   string
	required bool
	logger   Logger
}

// New creates a new Auth from the verification settings. When verification
// is not required the middleware passes every request through.
func New(cfg *config.Config, verifier services.HumanVerifier, logger Logger) *Auth {
	header := cfg.Verification.Header
	if header == "" {
		header = "CF-Turnstile-Token"
	}
	return &Auth{
		verifier: verifier,
		header:   header,
		required: cfg.Verification.Required,
		logger:   logger,
	}
}

// RequireHuman is middleware that rejects requests without a valid
// challenge token with 403 Forbidden.
func (a *Auth) RequireHuman(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.required {
			next.ServeHTTP(w, r)
			return
		}

		if err := a.check(r); err != nil {
			a.logRejection(err)
			writeForbidden(w, r, "Human verification failed, please retry the challenge")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Auth) check(r *http.Request) error {
	token := r.Header.Get(a.header)
	if token == "" {
		return &models.VerificationError{Reason: "missing " + a.header + " header"}
	}
	if a.verifier == nil {
		return &models.ConfigurationError{Component: "human verification", Setting: "verification.secret"}
	}
	ok, err := a.verifier.Verify(r.Context(), token, remoteIP(r))
	if err != nil {
		return err
	}
	if !ok {
		return &models.VerificationError{Reason: "token rejected"}
	}
	return nil
}

func (a *Auth) logRejection(err error) {
	if a.logger == nil {
		return
	}
	var verr *models.VerificationError
	if errors.As(err, &verr) {
		a.logger.Debug("human verification rejected", "reason", verr.Reason)
		return
	}
	// the verifier itself failed; the request is still refused
	a.logger.Error("human verification unavailable", "error", err)
}

func remoteIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeForbidden(w http.ResponseWriter, r *http.Request, detail string) {
	problem := models.ProblemDetails{
		Type:     "about:blank",
		Title:    http.StatusText(http.StatusForbidden),
		Status:   http.StatusForbidden,
		Detail:   detail,
		Instance: r.URL.Path,
		TraceID:  w.Header().Get("X-Request-Id"),
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(problem)
}
