// Package calendar checks a proposed slot against the weekend rule and
// produces an advisory. The advisory is informational only: it never blocks
// a submission and no conflict detection against existing bookings exists.
package calendar

import (
	"fmt"
	"time"
)

// Outcome is the advisory result class.
type Outcome string

const (
	Available     Outcome = "available"
	WeekendReview Outcome = "weekend_review"
	InvalidFormat Outcome = "invalid_format"
)

// Advisory carries the outcome plus an operator-facing message. It is a
// value, not an error: parse failures are absorbed here.
type Advisory struct {
	Outcome Outcome
	Detail  string
}

const slotLayout = "2006-01-02 15:04"

// Reserve combines date and start time, checks the weekday, and reports.
func Reserve(eventDate, startTime string) Advisory {
	dt, err := time.Parse(slotLayout, eventDate+" "+startTime)
	if err != nil {
		return Advisory{
			Outcome: InvalidFormat,
			Detail:  fmt.Sprintf("Invalid date/time format: %v", err),
		}
	}

	if wd := dt.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return Advisory{
			Outcome: WeekendReview,
			Detail:  "Event is scheduled on a weekend. Additional review may be required.",
		}
	}

	return Advisory{
		Outcome: Available,
		Detail:  "Date and time are available.",
	}
}
