package report

import (
	"sort"

	"github.com/dvloznov/expense-guardian/internal/expense"
)

// CategoryTotal is the summed spend for one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Summarize groups the history by category and sums the amounts in a
// single pass. The result preserves first-seen category order, which is
// also the tie-break order for TopN.
func Summarize(history []expense.HistoryRow) []CategoryTotal {
	index := make(map[string]int, len(history))
	totals := make([]CategoryTotal, 0, len(history))

	for _, row := range history {
		i, ok := index[row.Category]
		if !ok {
			i = len(totals)
			index[row.Category] = i
			totals = append(totals, CategoryTotal{Category: row.Category})
		}
		totals[i].Total += row.Amount
	}

	return totals
}

// TopN returns the n categories with the greatest totals in descending
// order. Ties keep the summary's original order. n larger than the
// summary returns everything.
func TopN(summary []CategoryTotal, n int) []CategoryTotal {
	if n < 0 {
		n = 0
	}

	sorted := make([]CategoryTotal, len(summary))
	copy(sorted, summary)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Total > sorted[j].Total
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Total sums a summary into a single spend figure.
func Total(summary []CategoryTotal) float64 {
	var sum float64
	for _, ct := range summary {
		sum += ct.Total
	}
	return sum
}
