package session

import (
	"math/rand"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/dvloznov/expense-guardian/internal/expense"
	"github.com/dvloznov/expense-guardian/internal/report"
)

// Synthetic history seeded into every new session so the dashboard and
// coach have something to work with before the first real receipt.
var SeedCategories = []string{
	"Travel",
	"Meals",
	"Software",
	"Office Supplies",
	"Entertainment",
	"Client Gifts",
}

const (
	seedRowsPerCategory = 20
	seedWindowDays      = 90
	seedMinAmount       = 50.0
	seedMaxAmount       = 500.0
)

// Session holds all state for one interactive visit: the sequence of
// analyzed receipts, the spending history table, and the last coach
// result. Nothing here survives the process.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	records []expense.Record
	history []expense.HistoryRow
	advice  *report.Advice
}

// New creates a session with a freshly seeded history table. A nil rng
// gets a time-seeded source.
func New(rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	now := time.Now()
	history := make([]expense.HistoryRow, 0, len(SeedCategories)*seedRowsPerCategory)
	for i := 0; i < seedRowsPerCategory; i++ {
		for _, category := range SeedCategories {
			daysAgo := 1 + rng.Intn(seedWindowDays)
			history = append(history, expense.HistoryRow{
				Category: category,
				Amount:   seedMinAmount + rng.Float64()*(seedMaxAmount-seedMinAmount),
				Date:     civil.DateOf(now.AddDate(0, 0, -daysAgo)),
			})
		}
	}

	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		history:   history,
	}
}

// Append adds an analyzed record to the session and mirrors its
// category, amount and date into the history table.
func (s *Session) Append(rec expense.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	s.history = append(s.history, expense.HistoryRow{
		Category: rec.Category,
		Amount:   rec.Amount,
		Date:     rec.Date,
	})
}

// Latest returns the most recently appended record.
func (s *Session) Latest() (expense.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return expense.Record{}, false
	}
	return s.records[len(s.records)-1], true
}

// Records returns the analyzed records in insertion order.
func (s *Session) Records() []expense.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]expense.Record, len(s.records))
	copy(out, s.records)
	return out
}

// History returns a copy of the history table.
func (s *Session) History() []expense.HistoryRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]expense.HistoryRow, len(s.history))
	copy(out, s.history)
	return out
}

// SetAdvice caches the latest coach result.
func (s *Session) SetAdvice(advice report.Advice) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.advice = &advice
}

// Advice returns the last cached coach result, if any.
func (s *Session) Advice() (report.Advice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.advice == nil {
		return report.Advice{}, false
	}
	return *s.advice, true
}
