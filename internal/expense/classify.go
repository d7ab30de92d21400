package expense

// RiskLevel is the three-level risk category derived from a risk score.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

// String returns the display name of the risk level.
func (l RiskLevel) String() string {
	switch l {
	case RiskHigh:
		return "High"
	case RiskMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// MarshalText implements encoding.TextMarshaler so levels serialize as
// their display names in JSON responses.
func (l RiskLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Assessment is the approval recommendation derived from a risk score.
type Assessment struct {
	Level  RiskLevel `json:"level"`
	Action string    `json:"action"`
	Emoji  string    `json:"emoji"`
}

// Classify maps a risk score to a level and a recommended action.
//
// The branches are evaluated High, then Medium, then Low, which makes
// the effective ranges High (80,100] and Medium (50,80]. Score 80 is
// Medium, not High; swapping the comparison order would change the
// outcome at that boundary.
func Classify(score int) Assessment {
	switch {
	case score > 80:
		return Assessment{Level: RiskHigh, Action: "Auto-Reject", Emoji: "❌"}
	case score > 50:
		return Assessment{Level: RiskMedium, Action: "Requires Review", Emoji: "⚠️"}
	default:
		return Assessment{Level: RiskLow, Action: "Auto-Approve", Emoji: "✅"}
	}
}
