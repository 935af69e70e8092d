package model

import "time"

// Application is a submitted event-permit application. Everything except
// Status is immutable after creation; there is no edit or resubmit flow.
type Application struct {
	ID                int            `db:"id" json:"id"`
	ApplicantName     string         `db:"applicant_name" json:"applicant_name"`
	Email             string         `db:"email" json:"email"`
	Phone             string         `db:"phone,omitempty" json:"phone,omitempty"`
	EventName         string         `db:"event_name" json:"event_name"`
	EventType         string         `db:"event_type,omitempty" json:"event_type,omitempty"`
	Location          string         `db:"location,omitempty" json:"location,omitempty"`
	StartDate         string         `db:"start_date" json:"start_date"`
	EndDate           string         `db:"end_date,omitempty" json:"end_date,omitempty"`
	StartTime         string         `db:"start_time" json:"start_time"`
	EndTime           string         `db:"end_time,omitempty" json:"end_time,omitempty"`
	Attendance        int            `db:"attendance" json:"attendance"`
	Alcohol           bool           `db:"alcohol" json:"alcohol"`
	HighRisk          bool           `db:"high_risk" json:"high_risk"`
	TrafficMgmt       bool           `db:"traffic_mgmt" json:"traffic_mgmt"`
	VehicleAccess     bool           `db:"vehicle_access" json:"vehicle_access"`
	AmplifiedSound    bool           `db:"amplified_sound" json:"amplified_sound"`
	NoiseLevel        int            `db:"noise_level" json:"noise_level"`
	TotalDays         int            `db:"total_days" json:"total_days"`
	Notes             string         `db:"notes,omitempty" json:"notes,omitempty"`
	InsuranceFile     string         `db:"insurance_file,omitempty" json:"insurance_file,omitempty"`
	SiteMapFile       string         `db:"site_map_file,omitempty" json:"site_map_file,omitempty"`
	OtherDocs         string         `db:"other_docs,omitempty" json:"other_docs,omitempty"`
	Latitude          string         `db:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude         string         `db:"longitude,omitempty" json:"longitude,omitempty"`
	ArcgisFeatureID   string         `db:"arcgis_feature_id,omitempty" json:"arcgis_feature_id,omitempty"`
	ArcgisFeatureName string         `db:"arcgis_feature_name,omitempty" json:"arcgis_feature_name,omitempty"`
	ArcgisLayer       string         `db:"arcgis_layer,omitempty" json:"arcgis_layer,omitempty"`
	Classification    Classification `db:"classification" json:"classification"`
	Status            Status         `db:"status" json:"status"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
}

// CalendarEntry is the minimal projection served to the calendar feed.
type CalendarEntry struct {
	ID             int            `db:"id" json:"id"`
	EventName      string         `db:"event_name" json:"event_name"`
	StartDate      string         `db:"start_date" json:"start_date"`
	EndDate        string         `db:"end_date,omitempty" json:"end_date,omitempty"`
	StartTime      string         `db:"start_time" json:"start_time"`
	EndTime        string         `db:"end_time,omitempty" json:"end_time,omitempty"`
	Location       string         `db:"location,omitempty" json:"location,omitempty"`
	Classification Classification `db:"classification" json:"classification"`
	Status         Status         `db:"status" json:"status"`
}

// ExportColumns is the events table column list in its natural (schema)
// order. The export surface uses it verbatim as the header row.
var ExportColumns = []string{
	"id", "applicant_name", "email", "phone",
	"event_name", "event_type", "location",
	"start_date", "end_date", "start_time", "end_time",
	"attendance", "alcohol", "high_risk", "traffic_mgmt",
	"vehicle_access", "amplified_sound", "noise_level", "total_days",
	"notes", "insurance_file", "site_map_file", "other_docs",
	"latitude", "longitude", "arcgis_feature_id", "arcgis_feature_name", "arcgis_layer",
	"classification", "status", "created_at",
}
