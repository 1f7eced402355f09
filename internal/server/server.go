// Package server provides the HTTP API around the analysis service.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/filesense/internal/dataset"
	"github.com/KaramelBytes/filesense/internal/i18n"
	"github.com/KaramelBytes/filesense/internal/report"
	"github.com/KaramelBytes/filesense/internal/service"
)

// DefaultMaxBody is the request body limit when none is configured.
const DefaultMaxBody = 32 << 20

// Analyzer is the part of the service the handlers need.
type Analyzer interface {
	Analyze(ctx context.Context, req service.Request) (*report.AIResult, error)
}

// Server handles HTTP requests for dataset analysis.
type Server struct {
	analyzer Analyzer
	log      *slog.Logger
	maxBody  int64
	mux      *http.ServeMux
}

// Option tweaks a Server.
type Option func(*Server)

// WithMaxBody limits request bodies to n bytes.
func WithMaxBody(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a server backed by a.
func New(a Analyzer, opts ...Option) *Server {
	s := &Server{
		analyzer: a,
		log:      slog.Default(),
		maxBody:  DefaultMaxBody,
		mux:      http.NewServeMux(),
	}
	for _, o := range opts {
		o(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("POST /api/analyze/file", s.handleAnalyzeFile)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
}

// ServeHTTP implements http.Handler. Every response carries an X-Request-Id.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get("X-Request-Id")
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set("X-Request-Id", id)
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()

	r.Body = http.MaxBytesReader(rec, r.Body, s.maxBody)
	s.mux.ServeHTTP(rec, r)

	s.log.Info("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(start).Round(time.Millisecond),
		"request_id", id,
	)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

type analyzeBody struct {
	Data     json.RawMessage `json:"data"`
	FileName string          `json:"fileName"`
	Language string          `json:"language"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body analyzeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if tooLarge(err) {
			jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, i18n.Resolve("").Copy.InvalidDataset, http.StatusBadRequest)
		return
	}
	lang := i18n.Resolve(body.Language)
	rows, err := dataset.DecodeRows(body.Data)
	if err != nil || len(rows) == 0 {
		jsonError(w, lang.Copy.InvalidDataset, http.StatusBadRequest)
		return
	}
	s.analyze(w, r, service.Request{Rows: rows, FileName: body.FileName, Language: i18n.ReportLanguage(body.Language)}, lang)
}

func (s *Server) handleAnalyzeFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxBody); err != nil {
		if tooLarge(err) {
			jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "Failed to parse upload", http.StatusBadRequest)
		return
	}
	lang := i18n.Resolve(r.FormValue("language"))
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !dataset.Supported(name) {
		jsonError(w, dataset.ErrUnsupported.Error()+": "+filepath.Ext(name), http.StatusUnsupportedMediaType)
		return
	}
	rows, err := dataset.Load(name, file)
	if err != nil {
		s.log.Warn("decode upload", "file", name, "err", err)
		jsonError(w, lang.Copy.InvalidDataset, http.StatusBadRequest)
		return
	}
	if len(rows) == 0 {
		jsonError(w, lang.Copy.EmptyFile, http.StatusBadRequest)
		return
	}
	s.analyze(w, r, service.Request{Rows: rows, FileName: name, Language: i18n.ReportLanguage(r.FormValue("language"))}, lang)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, map[string]string{"status": "ok"})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, req service.Request, lang i18n.Language) {
	res, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		var se *service.Error
		if errors.As(err, &se) {
			msg := se.Message
			if se.Kind == service.InvalidInput {
				msg = lang.Copy.InvalidDataset
			}
			jsonError(w, msg, se.HTTPStatus())
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if r.URL.Query().Get("format") == "html" {
		var buf bytes.Buffer
		if err := report.RenderHTML(&buf, res, req.FileName, lang.Copy); err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
		return
	}
	if raw := res.Raw(); raw != nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(raw)
		_, _ = io.WriteString(w, "\n")
		return
	}
	jsonResponse(w, res)
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Helper functions

func jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
