package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"docchat/internal/app"
	"docchat/internal/files"
	"docchat/internal/httputil"
	"docchat/internal/pipeline"
	"docchat/internal/prompt"
)

//go:embed openapi.json
var openAPIDoc []byte

const shutdownTimeout = 10 * time.Second

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/query", queryHandler(deps))
	r.Post("/api/files/upload", uploadHandler(deps))
	r.Get("/api/files", listFilesHandler(deps))
	r.Delete("/api/files/{name}", deleteFileHandler(deps))
	r.Get("/api/docs", docsHandler())
	r.Get("/healthz", httputil.HealthHandler(deps))

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		deps.Log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("server stopped", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("server stopped")
}

func queryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pipeline.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}

		// Validate request
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		resp, err := deps.Pipeline.HandleQuery(r.Context(), req)
		if err != nil {
			httputil.Fail(deps.Log, w, err.Error(), err, statusForError(err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		// Validate file size before parsing
		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		// The same extension set gates uploads and context inclusion, so
		// anything stored here can later appear in query context.
		if !prompt.IsTextFile(header.Filename) {
			httputil.Fail(deps.Log, w, "unsupported file type", nil, http.StatusBadRequest)
			return
		}

		info, err := deps.Files.Save(header.Filename, file)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, files.ErrInvalidPath) {
				status = http.StatusBadRequest
			}
			httputil.Fail(deps.Log, w, "failed to store file", err, status)
			return
		}

		deps.Log.Info("file uploaded", "name", info.Name, "size", info.Size)
		httputil.WriteJSON(w, http.StatusCreated, info)
	}
}

func listFilesHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infos, err := deps.Files.List()
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to list files", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"files": infos})
	}
}

func deleteFileHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if err := deps.Files.Delete(name); err != nil {
			httputil.Fail(deps.Log, w, err.Error(), err, statusForError(err))
			return
		}
		deps.Log.Info("file deleted", "name", name)
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"deleted": name})
	}
}

func docsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(openAPIDoc)
	}
}

// statusForError maps pipeline and file store failures onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrValidation), errors.Is(err, files.ErrInvalidPath):
		return http.StatusBadRequest
	case errors.Is(err, files.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, files.ErrPermission):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
