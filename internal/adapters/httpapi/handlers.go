package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alejandrodnm/fuelpricer/internal/adapters/dataset"
	"github.com/alejandrodnm/fuelpricer/internal/domain"
)

type recommendationResponse struct {
	ID string `json:"id"`
	domain.Recommendation
	FilterFallback       bool `json:"filter_fallback"`
	CandidatesConsidered int  `json:"candidates_considered"`
	GridSize             int  `json:"grid_size"`
}

type historyResponse struct {
	Source  string                `json:"source"`
	Count   int                   `json:"count"`
	Entries []domain.HistoryEntry `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleRecommend calcula una recomendación para la observación del body.
// POST /api/recommendations
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	obs, err := dataset.DecodeObservation(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	obs, err = obs.WithFuelDefaults()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.service.Recommend(r.Context(), obs)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, recommendationResponse{
		ID:                   res.Entry.ID,
		Recommendation:       res.Report.Recommendation,
		FilterFallback:       res.Report.FilterFallback,
		CandidatesConsidered: len(res.Report.Candidates),
		GridSize:             res.Report.GridSize,
	})
}

// handleHistory devuelve el histórico de la sesión, o el persistido si se pide un rango.
// GET /api/history?from=YYYY-MM-DD&to=YYYY-MM-DD
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("from") == "" && q.Get("to") == "" {
		entries := s.sessionEntries()
		writeJSON(w, http.StatusOK, historyResponse{Source: "session", Count: len(entries), Entries: entries})
		return
	}

	if s.storage == nil {
		writeError(w, http.StatusNotImplemented, errors.New("persistent history is not configured"))
		return
	}

	now := time.Now().UTC()
	from, err := parseBound(q.Get("from"), now.AddDate(0, 0, -30))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := parseBound(q.Get("to"), now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if q.Get("to") != "" {
		// "to" es inclusivo: cubre todo el día indicado.
		to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	entries, err := s.storage.GetHistory(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Source: "storage", Count: len(entries), Entries: entries})
}

// handleHistoryCSV exporta el histórico de la sesión.
// GET /api/history.csv
func (s *Server) handleHistoryCSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="recommendations.csv"`)
	if err := dataset.WriteHistoryCSV(w, s.sessionEntries()); err != nil {
		slog.Warn("history export failed", "err", err)
	}
}

// GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"model":   s.modelName,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"history": len(s.sessionEntries()),
	})
}

func (s *Server) sessionEntries() []domain.HistoryEntry {
	h := s.service.History()
	if h == nil {
		return []domain.HistoryEntry{}
	}
	entries := h.Entries()
	if entries == nil {
		return []domain.HistoryEntry{}
	}
	return entries
}

func parseBound(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	return domain.ParseDate(s, def)
}

// statusFor traduce los errores del dominio a códigos HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingField), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptyModelOutput):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrSchemaValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
