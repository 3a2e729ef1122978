package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/webtools"
)

// Response is the JSON envelope of every API response.
type Response struct {
	Success  bool   `json:"success"`
	Data     any    `json:"data,omitempty"`
	Analysis string `json:"analysis,omitempty"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	var filter webtools.ToolFilter
	if category := r.URL.Query().Get("category"); category != "" {
		filter.Category = &category
	}
	s.writeJSON(w, http.StatusOK, Response{Success: true, Data: s.Catalog.List(filter)})
}

func (s *Server) handleGetTool(w http.ResponseWriter, r *http.Request) {
	tool, err := s.Catalog.Find(r.PathValue("category"), r.PathValue("tool"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Success: true, Data: tool.Info()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.Runs == nil {
		s.Error(w, r, webtools.Errorf(webtools.EUNAVAILABLE, "usage statistics are disabled"))
		return
	}
	stats, err := s.Runs.ToolStats(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Success: true, Data: stats})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.Metrics == nil {
		s.Error(w, r, webtools.Errorf(webtools.ENOTFOUND, "metrics are disabled"))
		return
	}
	s.Metrics.ServeHTTP(w, r)
}

func (s *Server) handleRunTool(w http.ResponseWriter, r *http.Request) {
	tool, err := s.Catalog.Find(r.PathValue("category"), r.PathValue("tool"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	info := tool.Info()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, Response{
				Error:   "Request body too large",
				Message: fmt.Sprintf("request body must not exceed %d bytes", maxErr.Limit),
			})
			return
		}
		s.Error(w, r, webtools.Errorf(webtools.EINVALID, "could not read request body: %v", err))
		return
	}

	begin := time.Now()
	result, err := tool.Run(r.Context(), body)
	s.recordRun(r.Context(), info, body, time.Since(begin), err)
	if err != nil {
		s.Error(w, r, err)
		return
	}

	resp := Response{Success: true, Data: result}
	if s.Analyzer != nil && r.URL.Query().Get("analysis") != "false" {
		text := s.analyze(r.Context(), info, body, result)
		if setter, ok := result.(webtools.AnalysisSetter); ok {
			setter.SetAnalysis(text)
		} else {
			resp.Analysis = text
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// analyze returns commentary for a tool result. Failures are logged and
// yield an empty string.
func (s *Server) analyze(ctx context.Context, info webtools.ToolInfo, input []byte, result any) string {
	ctx, cancel := context.WithTimeout(ctx, s.AnalysisTimeout)
	defer cancel()

	raw := json.RawMessage(input)
	if !json.Valid(raw) {
		raw = json.RawMessage("null")
	}
	text, err := s.Analyzer.Analyze(ctx, webtools.AnalysisRequest{Tool: info, Input: raw, Result: result})
	if err != nil {
		s.Logger.Warn("analysis failed", "tool", info.Key(), "err", err)
		return ""
	}
	return text
}

// recordRun stores a usage record. Failures are logged only.
func (s *Server) recordRun(ctx context.Context, info webtools.ToolInfo, input []byte, d time.Duration, runErr error) {
	if s.Runs == nil {
		return
	}
	run := &webtools.Run{
		Category:  info.Category,
		Tool:      info.Slug,
		Success:   runErr == nil,
		ErrorCode: webtools.ErrorCode(runErr),
		Duration:  d,
		InputHash: fmt.Sprintf("%016x", xxhash.Sum64(input)),
	}
	if err := s.Runs.CreateRun(context.WithoutCancel(ctx), run); err != nil {
		s.Logger.Warn("record run failed", "tool", info.Key(), "err", err)
	}
}

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	webtools.EINVALID:     http.StatusBadRequest,
	webtools.ENOTFOUND:    http.StatusNotFound,
	webtools.ECONFLICT:    http.StatusConflict,
	webtools.ERATELIMIT:   http.StatusTooManyRequests,
	webtools.EUNAVAILABLE: http.StatusServiceUnavailable,
	webtools.EINTERNAL:    http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// Error writes an error envelope. Internal errors are logged and reported
// with a generic error and the underlying message.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	code := webtools.ErrorCode(err)
	status := ErrorStatusCode(code)

	if code == webtools.EINTERNAL {
		s.Logger.Error("internal error", "method", r.Method, "path", r.URL.Path, "err", err)
		s.writeJSON(w, status, Response{Error: "Internal server error", Code: code, Message: err.Error()})
		return
	}
	if code == webtools.ERATELIMIT {
		w.Header().Set("Retry-After", "1")
	}
	s.writeJSON(w, status, Response{Error: webtools.ErrorMessage(err), Code: code})
}

// writeJSON encodes v before writing the status so a value that cannot be
// encoded becomes a 500 envelope instead of an empty body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.Logger.Error("encode response failed", "err", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(Response{
			Error:   "Internal server error",
			Code:    webtools.EINTERNAL,
			Message: "encode response: " + err.Error(),
		})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.Logger.Debug("write response failed", "err", err)
	}
}
