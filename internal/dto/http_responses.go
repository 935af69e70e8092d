package dto

import (
	"time"

	"github.com/wb-go/wbf/ginext"

	"github.com/Macaies/Permit-app/internal/model"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	ApplicationNotFound = "APPLICATION_NOT_FOUND"
	UnsupportedFormat   = "UNSUPPORTED_FORMAT"
	UnknownAction       = "UNKNOWN_ACTION"
	Forbidden           = "FORBIDDEN"
)

// SubmissionForm binds the multipart text fields of the intake form.
// Presentation names map onto record names here (organizer_name →
// applicant_name and so on). Risk fields stay strings: they are coerced
// leniently by the classifier, never rejected.
type SubmissionForm struct {
	OrganizerName string `form:"organizer_name"`
	ApplicantName string `form:"applicant_name"`
	Email         string `form:"email" validate:"required,email"`
	Phone         string `form:"phone"`
	EventName     string `form:"event_name" validate:"required"`
	EventType     string `form:"event_type"`
	Venue         string `form:"venue"`
	EventLocation string `form:"event_location"`
	StartDate     string `form:"start_date" validate:"required,date"`
	EndDate       string `form:"end_date" validate:"omitempty,date"`
	StartTime     string `form:"start_time" validate:"required,clock"`
	EndTime       string `form:"end_time" validate:"omitempty,clock"`

	Attendance     string `form:"attendance"`
	Alcohol        string `form:"alcohol"`
	HighRisk       string `form:"high_risk"`
	TrafficMgmt    string `form:"traffic_mgmt"`
	VehicleAccess  string `form:"vehicle_access"`
	AmplifiedSound string `form:"amplified_sound"`
	NoiseLevel     string `form:"noise_level"`
	TotalDays      string `form:"total_days"`

	Notes             string `form:"notes"`
	Latitude          string `form:"latitude"`
	Longitude         string `form:"longitude"`
	ArcgisFeatureID   string `form:"arcgis_feature_id"`
	ArcgisFeatureName string `form:"arcgis_feature_name"`
	ArcgisLayer       string `form:"arcgis_layer"`
}

// QuickBookRequest is the staff shortcut payload. Classification and status
// are not accepted from the caller: the record is always created
// Self-assessable and Approved.
type QuickBookRequest struct {
	ApplicantName string `json:"applicant_name" validate:"required"`
	Email         string `json:"email" validate:"omitempty,email"`
	EventName     string `json:"event_name" validate:"required"`
	Location      string `json:"location"`
	StartDate     string `json:"start_date" validate:"required,date"`
	EndDate       string `json:"end_date" validate:"omitempty,date"`
	StartTime     string `json:"start_time" validate:"required,clock"`
	EndTime       string `json:"end_time" validate:"omitempty,clock"`
	Notes         string `json:"notes"`
}

// UpdateStatusRequest is the JSON body of POST /api/event/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// StatusUpdateResponse is the fixed shape that endpoint answers with.
type StatusUpdateResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// CalendarEventResponse is one entry of the /api/events feed.
type CalendarEventResponse struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	Start          string `json:"start"`
	End            string `json:"end,omitempty"`
	Location       string `json:"location,omitempty"`
	Classification string `json:"classification"`
	Status         string `json:"status"`
}

// NotificationMessage travels over the rabbit exchange from the submit path
// to the mail worker.
type NotificationMessage struct {
	ApplicationID  int       `json:"application_id"`
	Email          string    `json:"email"`
	EventName      string    `json:"event_name"`
	Classification string    `json:"classification"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// CalendarStatusLabel maps a record status to the fixed label set the
// calendar frontend colors by. Unknown values render as pending.
func CalendarStatusLabel(s model.Status) string {
	switch s {
	case model.StatusApproved:
		return "fc-approved"
	case model.StatusRejected, model.StatusCancelled:
		return "fc-rejected"
	default:
		return "fc-pending"
	}
}

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func BadResponseError(c *ginext.Context, code, desc string) {
	c.JSON(400, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func ForbiddenError(c *ginext.Context) {
	c.JSON(403, Response{
		Status: "error",
		Error: &Error{
			Code: Forbidden,
			Desc: "Staff role required",
		},
	})
}

func NotFoundError(c *ginext.Context) {
	c.JSON(404, Response{
		Status: "error",
		Error: &Error{
			Code: ApplicationNotFound,
			Desc: "Application not found",
		},
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, Response{
		Status: "error",
		Error: &Error{
			Code: ServiceUnavailable,
			Desc: InternalError,
		},
	})
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(201, Response{
		Status: "ok",
		Data:   data,
	})
}
