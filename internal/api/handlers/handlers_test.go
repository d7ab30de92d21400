package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-guardian/internal/expense"
	"github.com/dvloznov/expense-guardian/internal/logger"
	"github.com/dvloznov/expense-guardian/internal/report"
	"github.com/dvloznov/expense-guardian/internal/session"
)

// stubAnalyzer returns a fixed record and counts calls.
type stubAnalyzer struct {
	calls  int
	record expense.Record
}

func (s *stubAnalyzer) Analyze(ctx context.Context, image []byte, mimeType string) expense.Record {
	s.calls++
	return s.record
}

func testLog() zerolog.Logger {
	return logger.NewWithWriter(io.Discard)
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestAnalyzeEndpoint(t *testing.T) {
	stub := &stubAnalyzer{
		record: expense.Record{
			ID:         "r1",
			Vendor:     "Starbucks",
			Date:       civil.Date{Year: 2026, Month: 3, Day: 12},
			Amount:     14.50,
			Category:   "Meals",
			RiskScore:  85,
			RiskReason: "Unusually high amount for the category.",
		},
	}
	store := session.NewStore()
	h := NewReceiptsHandler(stub, store, 10<<20, testLog())

	body, contentType := multipartBody(t, "receipt", "receipt.png", []byte("fake image bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/receipts/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.Analyze(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rr.Code, rr.Body.String())
	}
	if stub.calls != 1 {
		t.Errorf("analyzer called %d times, want 1", stub.calls)
	}

	var resp struct {
		SessionID string `json:"session_id"`
		Record    struct {
			Vendor    string `json:"vendor"`
			RiskScore int    `json:"risk_score"`
		} `json:"record"`
		Assessment struct {
			Level  string `json:"level"`
			Action string `json:"action"`
		} `json:"assessment"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("response missing session_id")
	}
	if resp.Record.Vendor != "Starbucks" {
		t.Errorf("record vendor = %q, want Starbucks", resp.Record.Vendor)
	}
	if resp.Assessment.Level != "High" || resp.Assessment.Action != "Auto-Reject" {
		t.Errorf("assessment = %+v, want High/Auto-Reject for score 85", resp.Assessment)
	}

	// The record must now be in the session.
	sess, ok := store.Get(resp.SessionID)
	if !ok {
		t.Fatalf("session %q not in store", resp.SessionID)
	}
	if latest, ok := sess.Latest(); !ok || latest.ID != "r1" {
		t.Errorf("session latest = %+v, ok=%v", latest, ok)
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	h := NewReceiptsHandler(&stubAnalyzer{}, session.NewStore(), 10<<20, testLog())

	req := httptest.NewRequest(http.MethodPost, "/api/receipts/analyze", strings.NewReader("not multipart"))
	rr := httptest.NewRecorder()

	h.Analyze(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestSessionReuseAcrossRequests(t *testing.T) {
	stub := &stubAnalyzer{record: expense.Record{ID: "r1", Category: "Meals", Amount: 10}}
	store := session.NewStore()
	h := NewReceiptsHandler(stub, store, 10<<20, testLog())

	// First request creates the session.
	body, contentType := multipartBody(t, "receipt", "a.png", []byte("img"))
	req := httptest.NewRequest(http.MethodPost, "/api/receipts/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.Analyze(rr, req)

	sessionID := rr.Header().Get(SessionHeader)
	if sessionID == "" {
		t.Fatal("first response did not echo a session ID")
	}

	// Second request with the header lands in the same session.
	body, contentType = multipartBody(t, "receipt", "b.png", []byte("img"))
	req = httptest.NewRequest(http.MethodPost, "/api/receipts/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(SessionHeader, sessionID)
	rr = httptest.NewRecorder()
	h.Analyze(rr, req)

	if store.Len() != 1 {
		t.Errorf("store has %d sessions, want 1", store.Len())
	}
	sess, _ := store.Get(sessionID)
	if got := len(sess.Records()); got != 2 {
		t.Errorf("session has %d records, want 2", got)
	}
}

func TestListAndLatest(t *testing.T) {
	store := session.NewStore()
	sess := store.GetOrCreate("")
	h := NewReceiptsHandler(&stubAnalyzer{}, store, 10<<20, testLog())

	// Empty session: latest is a 404, list is an empty set.
	req := httptest.NewRequest(http.MethodGet, "/api/receipts/latest", nil)
	req.Header.Set(SessionHeader, sess.ID)
	rr := httptest.NewRecorder()
	h.Latest(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Latest on empty session: status = %d, want 404", rr.Code)
	}

	sess.Append(expense.Record{ID: "r1", Vendor: "Acme"})

	req = httptest.NewRequest(http.MethodGet, "/api/receipts", nil)
	req.Header.Set(SessionHeader, sess.ID)
	rr = httptest.NewRecorder()
	h.List(rr, req)

	var listResp struct {
		Count   int `json:"count"`
		Records []struct {
			ID string `json:"id"`
		} `json:"records"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("invalid list response: %v", err)
	}
	if listResp.Count != 1 || len(listResp.Records) != 1 || listResp.Records[0].ID != "r1" {
		t.Errorf("list response = %+v, want one record r1", listResp)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	store := session.NewStore()
	sess := store.GetOrCreate("")
	h := NewReportsHandler(store, report.NewCoach(0, rand.New(rand.NewSource(1))), testLog())

	// Use a category that is not in the synthetic seed so its total is
	// exactly what we append.
	sess.Append(expense.Record{Category: "Lab Equipment", Amount: 100})
	sess.Append(expense.Record{Category: "Lab Equipment", Amount: 50})

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req.Header.Set(SessionHeader, sess.ID)
	rr := httptest.NewRecorder()
	h.Summary(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp struct {
		Totals []struct {
			Category string  `json:"category"`
			Total    float64 `json:"total"`
		} `json:"totals"`
		Top             []struct{ Category string } `json:"top"`
		TotalSpend      float64                     `json:"total_spend"`
		HighestCategory string                      `json:"highest_category"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid summary response: %v", err)
	}

	var labTotal float64
	for _, ct := range resp.Totals {
		if ct.Category == "Lab Equipment" {
			labTotal = ct.Total
		}
	}
	if labTotal != 150 {
		t.Errorf("Lab Equipment total = %v, want 150", labTotal)
	}
	if len(resp.Top) != 3 {
		t.Errorf("top has %d entries, want 3", len(resp.Top))
	}
	if resp.HighestCategory == "" {
		t.Error("highest_category is empty")
	}
	if resp.TotalSpend <= 0 {
		t.Errorf("total_spend = %v, want > 0", resp.TotalSpend)
	}
}

func TestCoachEndpointCaches(t *testing.T) {
	store := session.NewStore()
	sess := store.GetOrCreate("")
	coach := report.NewCoach(time.Millisecond, rand.New(rand.NewSource(1)))
	h := NewReportsHandler(store, coach, testLog())

	// Before the first run there is nothing cached.
	req := httptest.NewRequest(http.MethodGet, "/api/coach", nil)
	req.Header.Set(SessionHeader, sess.ID)
	rr := httptest.NewRecorder()
	h.LastAdvice(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("LastAdvice before Coach: status = %d, want 404", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/coach", nil)
	req.Header.Set(SessionHeader, sess.ID)
	rr = httptest.NewRecorder()
	h.Coach(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("Coach: status = %d, want 200", rr.Code)
	}

	var resp struct {
		Advice struct {
			MonthlyForecast float64  `json:"monthly_forecast"`
			Tips            []string `json:"advice"`
		} `json:"advice"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid coach response: %v", err)
	}
	if len(resp.Advice.Tips) != 4 {
		t.Errorf("got %d tips, want 4", len(resp.Advice.Tips))
	}
	if resp.Advice.MonthlyForecast <= 0 {
		t.Errorf("monthly_forecast = %v, want > 0 for seeded history", resp.Advice.MonthlyForecast)
	}

	// The result must now be cached on the session.
	req = httptest.NewRequest(http.MethodGet, "/api/coach", nil)
	req.Header.Set(SessionHeader, sess.ID)
	rr = httptest.NewRecorder()
	h.LastAdvice(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("LastAdvice after Coach: status = %d, want 200", rr.Code)
	}
}
