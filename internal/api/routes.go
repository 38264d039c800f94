package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func (s *Server) Routes() http.Handler {
	origins := s.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", userIDHeader, "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}

	r.Route("/game", func(r chi.Router) {
		r.Get("/ranking/{musicId}", s.handleRanking)
		r.Get("/answer/{musicId}", s.handleGetAnswer)
		r.Post("/answer/{musicId}", s.handleImportAnswer)
		r.Post("/result/guest/{musicId}", s.handleScoreGuest)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/result/user/{musicId}", s.handleScoreUser)
			r.Get("/result/{scoreId}", s.handleGetResult)
			r.Get("/best/{musicId}", s.handleBest)
			r.Get("/history/{musicId}", s.handleHistory)
		})
	})
	return r
}
