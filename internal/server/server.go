// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the converter over HTTP: one upload-and-convert
// endpoint plus a health probe. It is a thin wrapper over the same batch
// path the CLI uses.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/pdiddy/imgconv/internal/batch"
	"github.com/pdiddy/imgconv/internal/classify"
	"github.com/pdiddy/imgconv/pkg/types"
)

const (
	defaultMaxUploadMB = 500
	defaultUploadDir   = "uploads"
	defaultOutputDir   = "outputs"
)

// Server handles conversion requests over HTTP.
type Server struct {
	conv batch.Converter
	cfg  types.ServerConfig
}

// New creates a Server. Empty directory settings fall back to uploads/
// and outputs/ relative to the working directory.
func New(conv batch.Converter, cfg types.ServerConfig) *Server {
	if cfg.UploadDir == "" {
		cfg.UploadDir = defaultUploadDir
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaultOutputDir
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = defaultMaxUploadMB
	}
	return &Server{conv: conv, cfg: cfg}
}

// Handler returns the HTTP handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/convert", s.handleConvert)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return withCORS(mux)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// convertResponse is the JSON body returned for multi-output batches.
type convertResponse struct {
	TaskID    string                   `json:"task_id"`
	Converted int                      `json:"converted"`
	Failed    int                      `json:"failed"`
	Skipped   int                      `json:"skipped"`
	Results   []types.ConversionResult `json:"results"`
}

// handleConvert accepts a multipart upload with "files" parts, a "target"
// format field, and an optional "dpi" field. A single converted output
// streams back directly; multiple outputs return a JSON listing.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	maxBytes := int64(s.cfg.MaxUploadMB) * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parsing upload: %v", err))
		return
	}

	target := types.Format(r.FormValue("target"))
	switch target {
	case types.FormatPDF, types.FormatJPG, types.FormatTIFF:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported target format %q", r.FormValue("target")))
		return
	}

	dpi := 0
	if v := r.FormValue("dpi"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid dpi %q", v))
			return
		}
		dpi = n
	}

	uploads := r.MultipartForm.File["files"]
	if len(uploads) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}

	taskID := uuid.NewString()
	uploadDir := filepath.Join(s.cfg.UploadDir, taskID)
	outputDir := filepath.Join(s.cfg.OutputDir, taskID)
	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("creating %s: %v", dir, err))
			return
		}
	}
	defer os.RemoveAll(uploadDir)

	jobs := make([]types.ConversionJob, 0, len(uploads))
	for _, fh := range uploads {
		path, err := saveUpload(fh, uploadDir)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("saving %s: %v", fh.Filename, err))
			return
		}
		format, err := classify.Validate(path, s.cfg.MaxUploadMB)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		jobs = append(jobs, types.ConversionJob{
			SourcePath:   path,
			SourceFormat: format,
			TargetFormat: target,
			DPI:          dpi,
			OutputDir:    outputDir,
		})
	}

	summary, err := batch.Run(r.Context(), s.conv, jobs, nil, nil, io.Discard)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	outputs := outputPaths(summary)
	if len(outputs) == 1 && !summary.HasFailures() {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", filepath.Base(outputs[0])))
		http.ServeFile(w, r, outputs[0])
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{
		TaskID:    taskID,
		Converted: summary.Converted,
		Failed:    summary.Failed,
		Skipped:   summary.Skipped,
		Results:   summary.Results,
	})
}

func saveUpload(fh *multipart.FileHeader, dir string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(dir, filepath.Base(fh.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	return path, dst.Close()
}

// outputPaths returns the distinct output files of successful results,
// preserving order.
func outputPaths(summary batch.Summary) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, r := range summary.Results {
		if r.Status == types.StatusConverted && r.OutputPath != "" && !seen[r.OutputPath] {
			seen[r.OutputPath] = true
			paths = append(paths, r.OutputPath)
		}
	}
	return paths
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
