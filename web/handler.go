package web

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/nasermirzaei89/blotter/contents"
)

type Handler struct {
	mux         *http.ServeMux
	handler     http.Handler
	contentsSvc *contents.Service
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(contentsSvc *contents.Service) *Handler {
	h := &Handler{
		mux:         &http.ServeMux{},
		handler:     nil,
		contentsSvc: contentsSvc,
	}

	h.registerRoutes()

	h.handler = h.mux
	h.handler = logMiddleware(h.handler)
	h.handler = recoverMiddleware(h.handler)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.Handle("GET /healthz", h.HandleHealthz())

	h.mux.Handle("POST /authors", h.HandleCreateAuthor())
	h.mux.Handle("GET /authors", h.HandleListAuthors())
	h.mux.Handle("GET /authors/{authorId}", h.HandleGetAuthor())
	h.mux.Handle("PATCH /authors/{authorId}", h.HandleUpdateAuthor())
	h.mux.Handle("DELETE /authors/{authorId}", h.HandleDeleteAuthor())

	h.mux.Handle("POST /posts", h.HandleCreatePost())
	h.mux.Handle("GET /posts", h.HandleListPosts())
	h.mux.Handle("GET /posts/{postId}", h.HandleGetPost())
	h.mux.Handle("PATCH /posts/{postId}", h.HandleUpdatePost())
	h.mux.Handle("DELETE /posts/{postId}", h.HandleDeletePost())
}

func (h *Handler) HandleHealthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func(ctx context.Context) {
			if err := recover(); err != nil {
				slog.ErrorContext(
					ctx,
					"recovered from panic",
					"error",
					err,
					"stack",
					string(debug.Stack()),
				)

				writeErrorMessage(w, r, http.StatusInternalServerError, "internal error occurred")
			}
		}(r.Context())

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		slog.DebugContext(
			r.Context(),
			"request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
