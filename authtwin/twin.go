// Package authtwin is an in-memory stand-in for the authentication backend.
// It serves the same routes, status codes and messages as the real server so
// the scenarios and the coordinator can be exercised without a deployment.
package authtwin

import (
	"context"
	"crypto/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Messages returned by the twin.
const (
	MsgForgotPassword   = "If an account with this email exists, you will receive a password reset link shortly."
	MsgResetRequired    = "User ID, secret, and new password are required"
	MsgResetShort       = "Password must be at least 6 characters long"
	MsgResetInvalid     = "Invalid or expired reset link"
	MsgResetDone        = "Password has been reset successfully"
	MsgRegisterRequired = "Email, password, and name are required"
	MsgEmailTaken       = "User with this email already exists"
	MsgLoginRequired    = "Email and password are required"
	MsgInvalidLogin     = "Invalid email or password"
	MsgTokenRequired    = "Access token required"
	MsgInvalidToken     = "Invalid token"
	MsgEmailRequired    = "Email is required"
)

const (
	defaultAllowedOrigin = "http://localhost:3000"
	tokenTTL             = 24 * time.Hour
	minPasswordLength    = 6
)

// Options configures a Twin.
type Options struct {
	// JWTSecret signs issued tokens. A random secret is used if empty.
	JWTSecret []byte

	// AllowedOrigin is the only origin granted by CORS preflights.
	AllowedOrigin string

	// LeakAccountExistence makes forgot-password answer differently for
	// unknown emails.
	LeakAccountExistence bool
}

// Fault replaces the normal reply of one route.
type Fault struct {
	Status      int
	ContentType string
	Body        string
	Delay       time.Duration
}

// Twin is the backend double.
type Twin struct {
	Router chi.Router

	store  *MemoryStore
	opts   Options
	mu     sync.RWMutex
	faults map[string]Fault
}

type ctxKey struct{}

// New creates a twin with its routes mounted.
func New(opts Options) *Twin {
	if len(opts.JWTSecret) == 0 {
		opts.JWTSecret = make([]byte, 32)
		_, _ = rand.Read(opts.JWTSecret)
	}
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = defaultAllowedOrigin
	}

	t := &Twin{
		Router: chi.NewRouter(),
		store:  NewMemoryStore(),
		opts:   opts,
		faults: make(map[string]Fault),
	}
	t.routes()
	return t
}

// Store exposes the twin's state.
func (t *Twin) Store() *MemoryStore {
	return t.store
}

// InjectFault makes method+path answer with f until cleared.
func (t *Twin) InjectFault(method, path string, f Fault) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.faults[method+" "+path] = f
}

// ClearFaults removes all injected faults.
func (t *Twin) ClearFaults() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.faults = make(map[string]Fault)
}

func (t *Twin) routes() {
	r := t.Router
	r.Use(t.cors)
	r.Use(t.faultInjection)

	r.Get("/health", t.health)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", t.register)
		r.Post("/login", t.login)
		r.With(t.authenticate).Get("/me", t.me)
		r.Post("/forgot-password", t.forgotPassword)
		r.Post("/reset-password", t.resetPassword)
	})
}

func (t *Twin) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && origin == t.opts.AllowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if origin == t.opts.AllowedOrigin {
				w.Header().Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
				w.Header().Set("Access-Control-Allow-Headers", r.Header.Get("Access-Control-Request-Headers"))
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *Twin) faultInjection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.mu.RLock()
		f, exists := t.faults[r.Method+" "+r.URL.Path]
		t.mu.RUnlock()
		if !exists {
			next.ServeHTTP(w, r)
			return
		}

		if f.Delay > 0 {
			select {
			case <-time.After(f.Delay):
			case <-r.Context().Done():
				return
			}
		}
		if f.ContentType != "" {
			w.Header().Set("Content-Type", f.ContentType)
		}
		status := f.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(f.Body))
	})
}

func (t *Twin) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
		if len(parts) != 2 || parts[1] == "" {
			writeError(w, http.StatusUnauthorized, MsgTokenRequired)
			return
		}

		userID, err := t.verifyToken(parts[1])
		if err != nil {
			writeError(w, http.StatusForbidden, MsgInvalidToken)
			return
		}
		u, err := t.store.Get(userID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, MsgInvalidToken)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

func (t *Twin) issueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.opts.JWTSecret)
}

func (t *Twin) verifyToken(raw string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.opts.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	userID, _ := claims["userId"].(string)
	if userID == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return userID, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = sonic.ConfigStd.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func readJSON(r *http.Request, v any) {
	_ = sonic.ConfigStd.NewDecoder(r.Body).Decode(v)
}
