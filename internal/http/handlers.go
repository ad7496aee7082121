package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"fraudbusters/internal/core"
	"fraudbusters/internal/dashboard"
	"fraudbusters/internal/log"
)

const indexTemplate = "dashboard.html"

var templateFuncs = template.FuncMap{
	"percent": func(part, total int) string {
		if total == 0 {
			return "0.0%"
		}
		return formatPercent(float64(part) * 100 / float64(total))
	},
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

type indexView struct {
	Title           string
	BuiltAt         string
	Transactions    int
	CustomerHistory int
	FraudCount      int
	NonFraudCount   int
	Rows            [][]dashboard.Panel
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	if s.data == nil {
		http.Error(w, "dashboard not built", http.StatusServiceUnavailable)
		return
	}
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldOperation, log.OpRender)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	view := indexView{
		Title:           "Fraudbusters",
		BuiltAt:         s.data.BuiltAt.UTC().Format(time.RFC3339),
		Transactions:    s.data.Transactions,
		CustomerHistory: s.data.CustomerHistory,
		FraudCount:      s.data.Partition(core.Fraud).Count,
		NonFraudCount:   s.data.Partition(core.NonFraud).Count,
		Rows:            s.data.Rows(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, indexTemplate, view); err != nil {
		logger.ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err,
			"template", indexTemplate)
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}

type chartsResponse struct {
	BuiltAt time.Time         `json:"built_at"`
	Panels  []dashboard.Panel `json:"panels"`
}

// handleCharts returns every panel in display order.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	if s.data == nil {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"error": "dashboard not built"})
		return
	}
	writeJSON(w, r, http.StatusOK, chartsResponse{BuiltAt: s.data.BuiltAt, Panels: s.data.Panels})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if s.data == nil {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"error": "dashboard not built"})
		return
	}
	id := dashboard.SlotID(r.PathValue("slot"))
	panel, ok := s.data.Panel(id)
	if !ok {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Unknown chart slot", log.FieldSlot, string(id))
		writeJSON(w, r, http.StatusNotFound, map[string]string{"error": "unknown chart slot"})
		return
	}
	writeJSON(w, r, http.StatusOK, panel)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady reports whether the page can be rendered.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	code := http.StatusOK
	checks := make(map[string]string)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}
	if s.data == nil {
		checks["dashboard"] = "failed: dashboard not built"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["dashboard"] = "ok"
	}

	writeJSON(w, r, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "JSON encode failed", log.FieldError, err)
	}
}
