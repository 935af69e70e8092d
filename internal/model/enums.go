package model

// Classification is the risk tier assigned to an application at submission
// time. It is computed once and never recomputed after storage.
type Classification string

const (
	SelfAssessable Classification = "Self-assessable"
	Assessable     Classification = "Assessable"
)

func (c Classification) String() string {
	return string(c)
}

func (c Classification) IsValid() bool {
	return c == SelfAssessable || c == Assessable
}

// Status is the review state of an application. It is the only mutable
// field on a stored record and only staff actions change it.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// InitialStatus derives the status a freshly created record starts with:
// self-assessable applications are approved on the spot, everything else
// waits for staff review.
func InitialStatus(c Classification) Status {
	if c == SelfAssessable {
		return StatusApproved
	}
	return StatusPending
}

// AllStatuses returns every valid status value.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled}
}
