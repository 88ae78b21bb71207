package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/summary-analyzer/internal/model"
	"github.com/sells-group/summary-analyzer/internal/pipeline"
	"github.com/sells-group/summary-analyzer/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env, cfg.Server.MaxBodyBytes),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func newRouter(env *pipelineEnv, maxBodyBytes int64) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/analyze", func(w http.ResponseWriter, req *http.Request) {
		req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)

		text, sourceID, err := readAnalyzeRequest(req, maxBodyBytes)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if text == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
			return
		}

		result, err := env.Pipeline.Run(req.Context(), text, sourceID)
		if err != nil {
			zap.L().Error("analyze request failed", zap.Error(err))
			recordFailure(req.Context(), env.Store, sourceID)
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "analysis failed"})
			return
		}

		if err := storeResult(req.Context(), env.Store, result); err != nil {
			zap.L().Error("store analysis failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store analysis"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"analysis_id": result.Analysis.ID,
			"company":     result.Analysis.CompanyName,
			"extraction":  result.Analysis.Record,
			"sections":    result.Analysis.Sections,
			"report_files": map[string]string{
				"markdown": fmt.Sprintf("/api/report/markdown/%s", result.Analysis.ID),
				"html":     fmt.Sprintf("/api/report/html/%s", result.Analysis.ID),
			},
		})
	})

	r.Get("/api/report/{format}/{id}", func(w http.ResponseWriter, req *http.Request) {
		format := model.ArtifactFormat(chi.URLParam(req, "format"))
		if format != model.ArtifactMarkdown && format != model.ArtifactHTML {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown format"})
			return
		}

		art, err := env.Store.GetArtifact(req.Context(), chi.URLParam(req, "id"), format)
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
			return
		}
		if err != nil {
			zap.L().Error("get artifact failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load report"})
			return
		}

		contentType := "text/markdown; charset=utf-8"
		if format == model.ArtifactHTML {
			contentType = "text/html; charset=utf-8"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(art.Content)) //nolint:errcheck
	})

	return r
}

// recordFailure keeps a trace of analyses that never produced a report,
// so failed submissions show up in listings.
func recordFailure(ctx context.Context, st store.Store, sourceID string) {
	failed := &model.Analysis{
		ID:        uuid.NewString(),
		SourceID:  sourceID,
		Status:    model.AnalysisStatusFailed,
		Record:    model.ExtractionRecord{},
		CreatedAt: time.Now().UTC(),
	}
	if err := st.CreateAnalysis(ctx, failed); err != nil {
		zap.L().Error("record failed analysis", zap.Error(err))
	}
}

// readAnalyzeRequest pulls the document text and source ID from either
// a JSON body or a multipart upload with a "file" part.
func readAnalyzeRequest(req *http.Request, maxBodyBytes int64) (string, string, error) {
	if strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data") {
		if err := req.ParseMultipartForm(maxBodyBytes); err != nil {
			return "", "", eris.Wrap(err, "parse multipart form")
		}
		file, header, err := req.FormFile("file")
		if err != nil {
			return "", "", eris.Wrap(err, "read file part")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return "", "", eris.Wrap(err, "read file contents")
		}
		sourceID := req.FormValue("source_id")
		if sourceID == "" {
			sourceID = header.Filename
		}
		return string(data), sourceID, nil
	}

	var body struct {
		Text     string `json:"text"`
		SourceID string `json:"source_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return "", "", eris.Wrap(err, "decode json body")
	}
	return body.Text, body.SourceID, nil
}

func storeResult(ctx context.Context, st store.Store, result *pipeline.Result) error {
	if err := st.CreateAnalysis(ctx, result.Analysis); err != nil {
		return err
	}
	artifacts := map[model.ArtifactFormat]struct {
		ext     string
		content string
	}{
		model.ArtifactMarkdown: {"md", result.Artifacts.Markdown},
		model.ArtifactHTML:     {"html", result.Artifacts.HTML},
	}
	for format, a := range artifacts {
		if err := st.SaveArtifact(ctx, &model.Artifact{
			ID:         uuid.NewString(),
			AnalysisID: result.Analysis.ID,
			Format:     format,
			Filename:   fmt.Sprintf("%s.%s", result.Basename, a.ext),
			Content:    a.content,
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload) //nolint:errcheck
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
