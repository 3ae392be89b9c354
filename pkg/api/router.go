package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/cabinetfs/cabinet/internal/logger"
	"github.com/cabinetfs/cabinet/pkg/api/auth"
	"github.com/cabinetfs/cabinet/pkg/api/handlers"
	"github.com/cabinetfs/cabinet/pkg/api/middleware"
	"github.com/cabinetfs/cabinet/pkg/blob"
	"github.com/cabinetfs/cabinet/pkg/identity"
	"github.com/cabinetfs/cabinet/pkg/registry"
	"github.com/cabinetfs/cabinet/pkg/session"
)

// RouterDeps carries the collaborators the router wires into handlers.
type RouterDeps struct {
	Registry   *registry.Registry
	Blobs      blob.Store
	Users      identity.UserStore
	JWTService *auth.JWTService
	Sessions   *session.Manager
	PresignTTL time.Duration
}

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET  /health              - Liveness probe
//   - GET  /health/ready        - Readiness probe
//   - GET  /health/stores       - Detailed store health
//   - POST /api/v1/auth/login   - Credential login
//   - POST /api/v1/auth/refresh - Token refresh
//   - GET  /api/v1/auth/me      - Current user
//   - /api/v1/folders, /api/v1/files - Folder and file operations (JWT)
//   - /api/v1/session           - Conversational prompt state (JWT)
func NewRouter(config APIConfig, deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	if config.MaxBodySize > 0 {
		r.Use(limitBody(int64(config.MaxBodySize)))
	}

	healthHandler := handlers.NewHealthHandler(deps.Registry, deps.Blobs)

	// Health routes - unauthenticated
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
		r.Get("/stores", healthHandler.Stores)
	})

	r.Route("/api/v1", func(r chi.Router) {
		authHandler := handlers.NewAuthHandler(deps.Users, deps.JWTService)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(middleware.JWTAuth(deps.JWTService))
				r.Get("/me", authHandler.Me)
			})
		})

		// Everything below requires a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(deps.JWTService))

			foldersHandler := handlers.NewFoldersHandler(deps.Registry)
			r.Route("/folders", func(r chi.Router) {
				r.Post("/", foldersHandler.Create)
				r.Get("/", foldersHandler.List)
				r.Delete("/", foldersHandler.Delete)
				r.Get("/info", foldersHandler.Get)
				r.Post("/rename", foldersHandler.Rename)
			})

			sessionsHandler := handlers.NewSessionsHandler(deps.Sessions)
			r.Route("/session", func(r chi.Router) {
				r.Get("/", sessionsHandler.Get)
				r.Delete("/", sessionsHandler.Cancel)
				r.Post("/begin", sessionsHandler.Begin)
				r.Post("/values", sessionsHandler.SetValue)
				r.Post("/complete", sessionsHandler.Complete)
			})

			filesHandler := handlers.NewFilesHandler(deps.Registry, deps.Blobs, deps.PresignTTL)
			r.Route("/files", func(r chi.Router) {
				r.Post("/", filesHandler.Register)
				r.Get("/", filesHandler.List)
				r.Get("/search", filesHandler.Search)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", filesHandler.Get)
					r.Delete("/", filesHandler.Delete)
					r.Get("/download", filesHandler.Download)
					r.Post("/rename", filesHandler.Rename)
					r.Post("/move", filesHandler.Move)
				})
			})
		})
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}

// limitBody caps request body size. Requests carry metadata only, so the
// limit can be small.
func limitBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger is a custom middleware that logs requests using the internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := chimiddleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		logger.Info("API request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		)
	})
}
