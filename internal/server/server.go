// Package server exposes the cleaned datasets over a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/magic-city-guide/poi-cli/internal/ingest"
	"github.com/magic-city-guide/poi-cli/internal/model"
	"github.com/magic-city-guide/poi-cli/internal/store"
)

// Server serves place datasets from the store, falling back to the CSV
// files on disk when no store is configured.
type Server struct {
	store   store.Store
	dataDir string
	port    int
}

// New creates a Server. store may be nil, in which case every request is
// answered from the CSV files under dataDir.
func New(st store.Store, dataDir string, port int) *Server {
	return &Server{store: st, dataDir: dataDir, port: port}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/api/posts", s.handlePosts)
	r.Get("/api/{kind}", s.handleList)

	return r
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	zap.L().Info("starting server", zap.Int("port", s.port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			body["store"] = "unavailable"
		} else {
			body["store"] = "ok"
		}
	}
	writeJSON(w, http.StatusOK, body)
}

// handlePosts serves the community post feed with optional category, search,
// and limit filters. Posts live only in the store; there is no CSV fallback.
func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "post feed requires a configured store",
		})
		return
	}

	params := store.ListPostsParams{Search: r.URL.Query().Get("q")}
	if raw := r.URL.Query().Get("category"); raw != "" {
		category := model.Category(raw)
		if !category.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("unknown category %q", raw),
			})
			return
		}
		params.Category = category
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "limit must be a positive integer",
			})
			return
		}
		params.Limit = limit
	}

	posts, err := s.store.ListPosts(r.Context(), params)
	if err != nil {
		zap.L().Error("list posts failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load posts",
		})
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(posts),
		"posts": posts,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	kind := model.Kind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("unknown dataset %q", kind),
		})
		return
	}

	records, err := s.list(r.Context(), kind)
	if err != nil {
		zap.L().Error("list dataset failed",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load dataset",
		})
		return
	}
	if records == nil {
		records = []model.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"kind":    kind,
		"count":   len(records),
		"records": records,
	})
}

// list reads the dataset from the store when one is configured. A store
// failure falls back to the CSV file so the API stays up during database
// maintenance.
func (s *Server) list(ctx context.Context, kind model.Kind) ([]model.Record, error) {
	if s.store != nil {
		records, err := s.store.ListPlaces(ctx, kind)
		if err == nil {
			return records, nil
		}
		zap.L().Warn("store read failed, falling back to csv",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
	_, records, err := ingest.ReadCSVFile(s.csvPath(kind))
	return records, err
}

func (s *Server) csvPath(kind model.Kind) string {
	return filepath.Join(s.dataDir, string(kind)+".csv")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}
