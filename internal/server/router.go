package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lazobello/cvagent/internal/api"
	"github.com/lazobello/cvagent/internal/api/handlers"
	"github.com/lazobello/cvagent/internal/api/middleware"
)

type RouterConfig struct {
	AuthValidator    middleware.AuthValidator
	ChatHandler      *handlers.ChatHandler
	ContactHandler   *handlers.ContactHandler
	KnowledgeHandler *handlers.KnowledgeHandler
	ChatQuota        *middleware.DailyQuota
	ContactQuota     *middleware.DailyQuota
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))

		r.Group(func(r chi.Router) {
			if cfg.ChatQuota != nil {
				r.Use(cfg.ChatQuota.Middleware)
			}
			r.Post("/chat", cfg.ChatHandler.Ask)
		})

		r.Group(func(r chi.Router) {
			if cfg.ContactQuota != nil {
				r.Use(cfg.ContactQuota.Middleware)
			}
			r.Post("/contact", cfg.ContactHandler.Create)
		})

		r.Route("/knowledge", func(r chi.Router) {
			r.Post("/upload", cfg.KnowledgeHandler.Upload)
			r.Delete("/", cfg.KnowledgeHandler.Purge)
		})
	})

	return r
}
