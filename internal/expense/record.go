package expense

import (
	"time"

	"cloud.google.com/go/civil"
)

// Record is the structured result of analyzing one receipt.
// A Record always exists for every analysis attempt: failed analyses
// produce a degraded record (zero amount, risk score 0 with an
// explanatory reason) rather than no record at all.
type Record struct {
	ID         string     `json:"id"`
	Vendor     string     `json:"vendor"`
	Date       civil.Date `json:"date"`
	Amount     float64    `json:"amount"`
	Category   string     `json:"category"`
	RiskScore  int        `json:"risk_score"`
	RiskReason string     `json:"risk_reason"`
	AnalyzedAt time.Time  `json:"analyzed_at"`
}

// HistoryRow is one entry in the session's spending history table.
// The table is seeded with synthetic data at session start and grows by
// one row per successfully analyzed receipt.
type HistoryRow struct {
	Category string     `json:"category"`
	Amount   float64    `json:"amount"`
	Date     civil.Date `json:"date"`
}
