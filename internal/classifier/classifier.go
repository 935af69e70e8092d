// Package classifier implements the risk decision table applied to every
// submitted event. Any single escalating condition pushes the event to
// Assessable; nothing ever downgrades it back.
package classifier

import (
	"strconv"
	"strings"

	"github.com/Macaies/Permit-app/internal/model"
)

// RiskInput carries the fields the decision table looks at.
type RiskInput struct {
	Attendance     int
	Alcohol        bool
	HighRisk       bool
	TrafficMgmt    bool
	VehicleAccess  bool
	AmplifiedSound bool
	NoiseLevel     int
	TotalDays      int
}

// Classify applies the escalation rules. It is total: every input maps to
// exactly one classification and there are no error conditions.
func Classify(in RiskInput) model.Classification {
	switch {
	case in.Attendance >= 200:
		return model.Assessable
	case in.Alcohol:
		return model.Assessable
	case in.HighRisk:
		return model.Assessable
	case in.TrafficMgmt:
		return model.Assessable
	case in.VehicleAccess:
		return model.Assessable
	case in.AmplifiedSound && in.NoiseLevel > 95:
		return model.Assessable
	case in.TotalDays > 2:
		return model.Assessable
	default:
		return model.SelfAssessable
	}
}

// ParseCount coerces a form value to a non-negative count. Missing or
// malformed values collapse to 0 rather than failing the submission.
func ParseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseFlag coerces a form value to a boolean. The intake form posts
// "Yes"/"No", checkboxes post "on", JSON-ish clients post "true"/"1";
// anything unrecognised means the flag is absent.
func ParseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "on", "1":
		return true
	default:
		return false
	}
}
