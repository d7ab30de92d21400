package expense

import (
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// Defaults applied when the model output is missing or malformed.
const (
	DefaultVendor   = "Unknown"
	DefaultCategory = "Uncategorized"
)

// FromModelOutput coerces the raw JSON object returned by the model
// into a Record. Unlike a strict schema check, every field falls back
// to a safe default: the caller always gets a well-formed record, never
// an error. The date defaults to the current date when unparseable and
// the risk score is clamped to [0, 100].
func FromModelOutput(raw map[string]interface{}, now time.Time) Record {
	rec := Record{
		ID:         uuid.NewString(),
		Vendor:     stringField(raw, "vendor", DefaultVendor),
		Date:       dateField(raw, "date", now),
		Amount:     floatField(raw, "amount", 0),
		Category:   stringField(raw, "category", DefaultCategory),
		RiskScore:  intField(raw, "risk_score", 0),
		RiskReason: stringField(raw, "risk_reason", ""),
		AnalyzedAt: now,
	}

	if rec.Amount < 0 {
		rec.Amount = 0
	}
	if rec.RiskScore < 0 {
		rec.RiskScore = 0
	}
	if rec.RiskScore > 100 {
		rec.RiskScore = 100
	}

	return rec
}

func stringField(m map[string]interface{}, key, fallback string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return fallback
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return strings.TrimSpace(s)
}

func floatField(m map[string]interface{}, key string, fallback float64) float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return fallback
	}
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return fallback
		}
		return f
	default:
		return fallback
	}
}

func intField(m map[string]interface{}, key string, fallback int) int {
	return int(floatField(m, key, float64(fallback)))
}

func dateField(m map[string]interface{}, key string, now time.Time) civil.Date {
	s := stringField(m, key, "")
	if s != "" {
		if parsed, err := time.Parse("2006-01-02", s); err == nil {
			return civil.DateOf(parsed)
		}
	}
	return civil.DateOf(now)
}
