// Package service runs one dataset analysis end to end: profile, prompt,
// model call and result parsing.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KaramelBytes/filesense/internal/ai"
	"github.com/KaramelBytes/filesense/internal/analysis"
	"github.com/KaramelBytes/filesense/internal/dataset"
	"github.com/KaramelBytes/filesense/internal/prompt"
	"github.com/KaramelBytes/filesense/internal/report"
)

// Kind classifies an analysis failure.
type Kind int

const (
	InvalidInput Kind = iota + 1
	ConfigurationError
	UpstreamError
	EmptyResponse
	ParseError
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case ConfigurationError:
		return "configuration_error"
	case UpstreamError:
		return "upstream_error"
	case EmptyResponse:
		return "empty_response"
	case ParseError:
		return "parse_error"
	}
	return "unknown"
}

// Error is returned by Analyze. Status is the provider's HTTP status for
// UpstreamError and zero otherwise.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error onto a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case InvalidInput:
		return http.StatusBadRequest
	case UpstreamError:
		if e.Status >= 400 && e.Status <= 599 {
			return e.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrEmptyDataset is wrapped by InvalidInput errors for an empty row list.
var ErrEmptyDataset = errors.New("dataset is empty")

// Service holds read-only configuration and is safe for concurrent use.
type Service struct {
	Runtime     ai.Runtime
	Model       string
	SampleRows  int
	MaxTokens   int
	Temperature float64
	// Strict rejects results that fail (*report.AIResult).Validate.
	Strict bool
	Logger *slog.Logger
}

// Request is one analysis job.
type Request struct {
	Rows     dataset.Dataset
	FileName string
	Language string
}

// Prompt builds the instruction for req without calling the model.
func (s *Service) Prompt(req Request) (string, error) {
	prof, ok := analysis.Profile(req.Rows)
	if !ok {
		return "", &Error{Kind: InvalidInput, Message: "dataset is empty or invalid", Err: ErrEmptyDataset}
	}
	n := s.sampleSize()
	out, err := prompt.Build(prompt.Input{
		Profile:    prof,
		FileName:   req.FileName,
		SampleRows: prompt.SampleRows(req.Rows, n),
		SampleSize: n,
		Language:   req.Language,
	})
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}
	return out, nil
}

// Analyze profiles req.Rows, asks the model for a report and parses it.
func (s *Service) Analyze(ctx context.Context, req Request) (*report.AIResult, error) {
	if len(req.Rows) == 0 {
		return nil, &Error{Kind: InvalidInput, Message: "dataset is empty or invalid", Err: ErrEmptyDataset}
	}
	if s.Runtime == nil {
		return nil, &Error{Kind: ConfigurationError, Message: "no model runtime configured"}
	}
	if kr, ok := s.Runtime.(ai.KeyedRuntime); ok && kr.RequiresKey() && !kr.HasKey() {
		return nil, &Error{Kind: ConfigurationError, Message: "API key is not configured", Err: ai.ErrMissingAPIKey}
	}

	text, err := s.Prompt(req)
	if err != nil {
		return nil, err
	}

	log := s.logger()
	start := time.Now()
	resp, err := s.Runtime.Generate(ctx, ai.GenerateRequest{
		Model: s.Model,
		Messages: []ai.Message{
			{Role: "system", Content: prompt.SystemInstruction},
			{Role: "user", Content: text},
		},
		MaxTokens:      s.MaxTokens,
		Temperature:    s.Temperature,
		ResponseFormat: ai.JSONObject,
	})
	if err != nil {
		return nil, s.upstream(err)
	}
	log.Info("model response",
		"model", s.Model,
		"request_id", resp.RequestID,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	content := resp.Content()
	if strings.TrimSpace(content) == "" {
		return nil, &Error{Kind: EmptyResponse, Message: "model returned no content"}
	}
	res, err := report.Parse([]byte(content))
	if err != nil {
		log.Warn("unparseable model response", "request_id", resp.RequestID, "err", err)
		return nil, &Error{Kind: ParseError, Message: "model response is not valid JSON", Err: err}
	}
	if s.Strict {
		if err := res.Validate(); err != nil {
			return nil, &Error{Kind: ParseError, Message: "model response does not match the report schema", Err: err}
		}
	}
	return res, nil
}

// upstream maps a runtime error onto the service taxonomy.
func (s *Service) upstream(err error) error {
	if errors.Is(err, ai.ErrMissingAPIKey) {
		return &Error{Kind: ConfigurationError, Message: "API key is not configured", Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: UpstreamError, Status: http.StatusGatewayTimeout, Message: "analysis was cancelled", Err: err}
	}
	var apiErr *ai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		s.logger().Error("provider error", "status", apiErr.StatusCode, "code", apiErr.Code, "request_id", apiErr.RequestID, "err", err)
		return &Error{Kind: UpstreamError, Status: apiErr.StatusCode, Message: msg, Err: err}
	}
	s.logger().Error("provider call failed", "err", err)
	return &Error{Kind: UpstreamError, Message: err.Error(), Err: err}
}

func (s *Service) sampleSize() int {
	if s.SampleRows > 0 {
		return s.SampleRows
	}
	return prompt.DefaultSampleRows
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
