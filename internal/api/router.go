package api

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/classiccarrry/classic-carrry-admin/internal/dashboard"
	"github.com/classiccarrry/classic-carrry-admin/internal/metrics"
	"github.com/classiccarrry/classic-carrry-admin/internal/notify"
	"github.com/classiccarrry/classic-carrry-admin/internal/session"
	"github.com/classiccarrry/classic-carrry-admin/internal/settings"
	"github.com/classiccarrry/classic-carrry-admin/internal/storefront"
	"github.com/classiccarrry/classic-carrry-admin/internal/viewmodel"
)

// Server holds shared state for all API handlers.
type Server struct {
	Gate          *session.Gate
	Notifications *notify.Channel
	Views         *viewmodel.Registry
	Client        *storefront.Client
	Dashboard     *dashboard.Service
	Settings      *settings.Service
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
}

// NewRouter builds the chi router with all API routes. webFS, when not nil,
// is served as a single-page app for every other path.
func NewRouter(s *Server, webFS fs.FS) http.Handler {
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Gate and session, reachable before sign-in
		r.Get("/state", s.GetState)
		r.Post("/session", s.Login)
		r.Delete("/session", s.Logout)
		r.Post("/session/reset-password", s.ResetPassword)
		r.Post("/health/retry", s.RetryHealth)
		r.Get("/notification", s.GetNotification)
		r.Delete("/notification", s.DismissNotification)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			// Resource lists and mutations
			r.Get("/resources", s.ListResourceTypes)
			r.Get("/resources/{type}", s.ListResources)
			r.Get("/resources/{type}/{id}", s.GetResource)
			r.Post("/resources/{type}", s.CreateResource)
			r.Put("/resources/{type}/{id}", s.UpdateResource)
			r.Delete("/resources/{type}/{id}", s.DeleteResource)
			r.Post("/resources/{type}/{id}/toggle", s.ToggleResource)

			// Per-resource field updates
			r.Put("/orders/{id}/status", s.UpdateOrderStatus)
			r.Put("/contacts/{id}/status", s.UpdateContactStatus)
			r.Post("/contacts/{id}/reply", s.ReplyToContact)
			r.Get("/contacts/stats", s.GetContactStats)

			r.Post("/uploads/{kind}", s.UploadImages)

			r.Get("/settings/{section}", s.GetSettings)
			r.Put("/settings/{section}", s.UpdateSettings)

			r.Get("/dashboard", s.GetDashboard)
			r.Get("/customers/summary", s.GetCustomerSummary)
		})
	})

	r.Handle("/metrics", s.Metrics.Handler())

	// WebSocket (outside /api to avoid JSON content-type assumptions)
	r.Get("/ws/events", s.StreamEvents)

	if webFS != nil {
		r.Get("/*", spaHandler(webFS))
	}
	return r
}

// spaHandler serves files from webFS and falls back to index.html for
// client-side routes.
func spaHandler(webFS fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path
		if path == "/" {
			path = "/index.html"
		}

		if f, err := webFS.Open(path[1:]); err == nil {
			f.Close()
			http.ServeFileFS(w, req, webFS, path[1:])
			return
		}
		http.ServeFileFS(w, req, webFS, "index.html")
	}
}

// requireSession lets a request through only while the gate shows the
// console: 503 while the backend is unreachable, 401 until signed in.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch s.Gate.Phase() {
		case session.PhaseAuthenticated:
			next.ServeHTTP(w, r)
		case session.PhaseUnreachable:
			writeError(w, http.StatusServiceUnavailable, unreachableMessage)
		default:
			writeError(w, http.StatusUnauthorized, "Authentication required")
		}
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
