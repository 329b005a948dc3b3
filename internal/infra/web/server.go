package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"classroom-ai-assistant/internal/domain/ports/repository"
	"classroom-ai-assistant/internal/infra/events"
	"classroom-ai-assistant/internal/infra/logging"
	"classroom-ai-assistant/internal/usecase"
)

// Publisher is the slice of the change-feed dispatcher the web layer
// needs to hand ingested records onward.
type Publisher interface {
	Publish(rec events.Record) error
}

type Server struct {
	attendanceUC usecase.AttendanceUseCase
	videoJobs    repository.VideoJobRepository
	events       repository.ScreenshotEventRepository
	directory    repository.UserDirectory
	usage        repository.UsageRepository
	pub          Publisher
	auth         *AuthManager
	apiKey       string
	log          *zerolog.Logger
}

func NewServer(
	attendanceUC usecase.AttendanceUseCase,
	videoJobs repository.VideoJobRepository,
	events repository.ScreenshotEventRepository,
	directory repository.UserDirectory,
	usage repository.UsageRepository,
	pub Publisher,
	auth *AuthManager,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	srvLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		attendanceUC: attendanceUC,
		videoJobs:    videoJobs,
		events:       events,
		directory:    directory,
		usage:        usage,
		pub:          pub,
		auth:         auth,
		apiKey:       apiKey,
		log:          &srvLog,
	}
}

// Router builds the HTTP routing for the service API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.apiKeyMiddleware).Post("/attendance", attendanceHandler(s.attendanceUC, s.log))
		r.With(s.apiKeyMiddleware).Post("/video-jobs", videoJobReportHandler(s.videoJobs, s.pub, s.log))
		r.With(s.apiKeyMiddleware).Post("/screenshots", screenshotIngestHandler(s.events, s.directory, s.pub, s.log))
		r.With(s.apiKeyMiddleware).Get("/users/resolve", userResolveHandler(s.directory, s.log))
		r.With(s.apiKeyMiddleware).Post("/admin/login", s.loginHandler())

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.adminMiddleware)
			r.Delete("/screenshots", screenshotsPurgeHandler(s.events, s.log))
			r.Get("/usage", usageHandler(s.usage, s.log))
		})
	})

	return r
}

// apiKeyMiddleware provides simple Bearer token authentication for the API.
func (s *Server) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}

		if tokenParts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if tid := middleware.GetReqID(r.Context()); tid != "" {
			r = r.WithContext(logging.WithTraceID(r.Context(), tid))
		}
		next.ServeHTTP(w, r)
	})
}

// adminMiddleware requires a valid admin session token.
func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loginHandler mints an admin session for a caller holding the API key.
func (s *Server) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := s.auth.Mint(w)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to mint admin session")
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}
