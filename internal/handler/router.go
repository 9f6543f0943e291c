package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskpad/internal/auth"
)

type RouterDeps struct {
	Tasks  *TaskHandler
	Notes  *NoteHandler
	Health *HealthHandler
	Tokens *auth.TokenManager
	Logger *zap.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter() // Создаем роутер
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Logger))
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/health", d.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(d.Tokens, d.Logger))
		r.Mount("/tasks", d.Tasks.Routes())
		r.Mount("/notes", d.Notes.Routes())
	})
	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
