// Package web exposes the pipeline over a JSON API for the dashboard.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"blogforge/internal/domain/ports/repository"
	"blogforge/internal/usecase"
)

type Server struct {
	keywords usecase.KeywordUseCase
	research usecase.ResearchUseCase
	images   usecase.ImageUseCase
	sessions usecase.SessionUseCase
	metadata usecase.MetadataUseCase
	batches  usecase.BatchUseCase
	articles repository.ArticleRepository

	auth          *AuthManager
	adminPassword string
	log           *zerolog.Logger
}

func NewServer(
	keywords usecase.KeywordUseCase,
	research usecase.ResearchUseCase,
	images usecase.ImageUseCase,
	sessions usecase.SessionUseCase,
	metadata usecase.MetadataUseCase,
	batches usecase.BatchUseCase,
	articles repository.ArticleRepository,
	auth *AuthManager,
	adminPassword string,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "web").Logger()
	return &Server{
		keywords:      keywords,
		research:      research,
		images:        images,
		sessions:      sessions,
		metadata:      metadata,
		batches:       batches,
		articles:      articles,
		auth:          auth,
		adminPassword: adminPassword,
		log:           &l,
	}
}

// Routes builds the full router. With no admin password configured the API
// is open; that is the dev-mode arrangement.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/admin/login", s.loginHandler())
		api.Post("/admin/logout", s.logoutHandler())

		api.Group(func(g chi.Router) {
			if s.adminPassword != "" {
				g.Use(s.auth.Middleware)
			}

			g.Route("/keywords", func(kw chi.Router) {
				kw.Post("/", keywordCreateHandler(s.keywords))
				kw.Get("/", keywordListHandler(s.keywords))

				kw.Route("/{id}", func(one chi.Router) {
					one.Get("/", keywordGetHandler(s.keywords))
					one.Delete("/", keywordDeleteHandler(s.keywords))

					one.Post("/research", researchRunHandler(s.research))
					one.Get("/research", researchGetHandler(s.research))

					one.Post("/images", imageFetchHandler(s.images))
					one.Get("/images", imageGetHandler(s.images))
					one.Post("/images/integrate", imageIntegrateHandler(s.images))

					one.Post("/blog/start", blogStartHandler(s.sessions))
					one.Post("/blog/step", blogStepHandler(s.sessions))
					one.Get("/blog", blogSessionHandler(s.sessions))
					one.Get("/blog/session", blogSessionHandler(s.sessions))
					one.Get("/blog/summary", blogSummaryHandler(s.keywords, s.articles))
					one.Get("/blog/download", blogDownloadHandler(s.articles))

					one.Post("/metadata", metadataHandler(s.metadata))
				})
			})

			g.Route("/batches", func(b chi.Router) {
				b.Post("/", batchStartHandler(s.batches))
				b.Get("/", batchListHandler(s.batches))
				b.Get("/{id}/status", batchStatusHandler(s.batches))
				b.Get("/{id}/results", batchResultsHandler(s.batches))
			})
		})
	})

	return r
}

func (s *Server) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Password string `json:"password"`
		}
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if s.adminPassword == "" || req.Password != s.adminPassword {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		token, err := s.auth.Mint(w)
		if err != nil {
			http.Error(w, "Failed to mint session", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

func (s *Server) logoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.auth.Clear(w)
		w.WriteHeader(http.StatusNoContent)
	}
}
