package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-guardian/internal/api/middleware"
	"github.com/dvloznov/expense-guardian/internal/report"
	"github.com/dvloznov/expense-guardian/internal/session"
)

// ReportsHandler serves the spending dashboard and the financial coach.
type ReportsHandler struct {
	sessions *session.Store
	coach    *report.Coach
	log      zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(sessions *session.Store, coach *report.Coach, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{
		sessions: sessions,
		coach:    coach,
		log:      log,
	}
}

// Summary handles GET /api/summary.
// Totals are recomputed from the full history table on every request.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sess := resolveSession(w, r, h.sessions)

	summary := report.Summarize(sess.History())
	top := report.TopN(summary, 3)

	highest := ""
	if len(top) > 0 {
		highest = top[0].Category
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session_id":       sess.ID,
		"totals":           summary,
		"top":              top,
		"total_spend":      report.Total(summary),
		"highest_category": highest,
	})
}

// Coach handles POST /api/coach.
// It runs the advisor over the session history, caches the result on
// the session, and returns it.
func (h *ReportsHandler) Coach(w http.ResponseWriter, r *http.Request) {
	sess := resolveSession(w, r, h.sessions)

	advice, err := h.coach.Advise(r.Context(), sess.History())
	if err != nil {
		h.log.Warn().Err(err).Str("session_id", sess.ID).Msg("Coach request abandoned")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Coach request cancelled")
		return
	}

	sess.SetAdvice(advice)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sess.ID,
		"advice":     advice,
	})
}

// LastAdvice handles GET /api/coach.
func (h *ReportsHandler) LastAdvice(w http.ResponseWriter, r *http.Request) {
	sess := resolveSession(w, r, h.sessions)

	advice, ok := sess.Advice()
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "No coach advice generated yet")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sess.ID,
		"advice":     advice,
	})
}
