package handlers

import (
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-guardian/internal/analyzer"
	"github.com/dvloznov/expense-guardian/internal/api/middleware"
	"github.com/dvloznov/expense-guardian/internal/expense"
	"github.com/dvloznov/expense-guardian/internal/session"
)

// SessionHeader carries the session ID between client and server. A
// missing or unknown ID lazily creates a fresh seeded session, and the
// resolved ID is always echoed back.
const SessionHeader = "X-Session-ID"

// ReceiptsHandler handles receipt upload and analysis endpoints.
type ReceiptsHandler struct {
	analyzer  analyzer.Analyzer
	sessions  *session.Store
	maxUpload int64
	log       zerolog.Logger
}

// NewReceiptsHandler creates a new receipts handler.
func NewReceiptsHandler(a analyzer.Analyzer, sessions *session.Store, maxUpload int64, log zerolog.Logger) *ReceiptsHandler {
	return &ReceiptsHandler{
		analyzer:  a,
		sessions:  sessions,
		maxUpload: maxUpload,
		log:       log,
	}
}

// resolveSession finds or creates the caller's session and echoes its
// ID on the response.
func resolveSession(w http.ResponseWriter, r *http.Request, sessions *session.Store) *session.Session {
	sess := sessions.GetOrCreate(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, sess.ID)
	return sess
}

// Analyze handles POST /api/receipts/analyze.
// It reads the uploaded image, runs the analyzer synchronously, appends
// the resulting record to the session, and returns the record together
// with its risk assessment. Analyzer failures are not HTTP errors: they
// come back as 200 with a degraded, flagged record.
func (h *ReceiptsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := resolveSession(w, r, h.sessions)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("receipt")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Multipart field 'receipt' is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read uploaded receipt")
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(image)
	}

	rec := h.analyzer.Analyze(ctx, image, mimeType)
	sess.Append(rec)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sess.ID,
		"record":     rec,
		"assessment": expense.Classify(rec.RiskScore),
	})
}

// List handles GET /api/receipts.
func (h *ReceiptsHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := resolveSession(w, r, h.sessions)

	records := sess.Records()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sess.ID,
		"records":    records,
		"count":      len(records),
	})
}

// Latest handles GET /api/receipts/latest.
func (h *ReceiptsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	sess := resolveSession(w, r, h.sessions)

	rec, ok := sess.Latest()
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "No receipts analyzed yet")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sess.ID,
		"record":     rec,
		"assessment": expense.Classify(rec.RiskScore),
	})
}
