package report

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/dvloznov/expense-guardian/internal/expense"
)

// DefaultCoachDelay simulates the latency of a real advisory model.
const DefaultCoachDelay = 2 * time.Second

// Advice is the financial coach result for one session.
type Advice struct {
	MonthlyForecast  float64   `json:"monthly_forecast"`
	CuttableExpenses string    `json:"cuttable_expenses"`
	Tips             []string  `json:"advice"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// coachTips is static content; the advisor is a stub for a real
// recommendation engine and its interface must not change when the
// backing logic does.
var coachTips = []string{
	"Your **Software** spending is efficient at just 15% of your total budget. Keep utilizing subscription bundles.",
	"The **Meals** category shows frequent high-value transactions. Consider setting a daily cap of $50 to cut costs by 15%.",
	"**Entertainment** expenses currently exceed internal policy thresholds. We recommend cutting these expenses completely to save $1,200/month.",
	"Optimize **Travel** by booking flights 21 days in advance; this could reduce airfare costs by 10% next month.",
}

const cuttableExpenses = "Entertainment, High-Value Meals"

// Coach produces spending forecasts and tips from the session history.
type Coach struct {
	// Delay is the artificial wait before answering.
	Delay time.Duration

	rng *rand.Rand
}

// NewCoach creates a coach with the given delay. A nil rng gets a
// time-seeded source; tests pass a fixed seed.
func NewCoach(delay time.Duration, rng *rand.Rand) *Coach {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Coach{Delay: delay, rng: rng}
}

// Advise waits the configured delay, then builds the advice for the
// given history. The only error it can return is the context's.
func (c *Coach) Advise(ctx context.Context, history []expense.HistoryRow) (Advice, error) {
	if c.Delay > 0 {
		timer := time.NewTimer(c.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Advice{}, ctx.Err()
		case <-timer.C:
		}
	}

	return Advice{
		MonthlyForecast:  c.Forecast(history),
		CuttableExpenses: cuttableExpenses,
		Tips:             c.Tips(),
		GeneratedAt:      time.Now(),
	}, nil
}

// Forecast is the historical total perturbed by a uniform multiplier in
// [0.95, 1.05], rounded to two decimals. Deliberately not reproducible.
func (c *Coach) Forecast(history []expense.HistoryRow) float64 {
	total := Total(Summarize(history))
	forecast := total * (0.95 + 0.10*c.rng.Float64())
	return math.Round(forecast*100) / 100
}

// Tips returns the fixed, ordered tip list.
func (c *Coach) Tips() []string {
	tips := make([]string, len(coachTips))
	copy(tips, coachTips)
	return tips
}
