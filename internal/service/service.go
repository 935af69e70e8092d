package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"github.com/Macaies/Permit-app/internal/calendar"
	"github.com/Macaies/Permit-app/internal/classifier"
	"github.com/Macaies/Permit-app/internal/dto"
	"github.com/Macaies/Permit-app/internal/export"
	"github.com/Macaies/Permit-app/internal/model"
	"github.com/Macaies/Permit-app/internal/repo"
	"github.com/Macaies/Permit-app/internal/uploads"
	"github.com/Macaies/Permit-app/pkg/validator"
)

// Publisher is the notification side of the rabbit client. Failures are
// logged and swallowed; a submission is complete once it is persisted.
type Publisher interface {
	Publish(message []byte) error
}

type Service interface {
	Submit(ctx *ginext.Context)
	QuickBook(ctx *ginext.Context)
	ListApplications(ctx *ginext.Context)
	AdminAction(ctx *ginext.Context)
	UpdateStatusAPI(ctx *ginext.Context)
	Export(ctx *ginext.Context)
	CalendarEvents(ctx *ginext.Context)
	ServeUpload(ctx *ginext.Context)
}

type service struct {
	repo    repo.Repository
	log     *zerolog.Logger
	pub     Publisher
	uploads *uploads.Store
}

func NewService(repository repo.Repository, logger *zerolog.Logger, pub Publisher, uploadStore *uploads.Store) Service {
	return &service{
		repo:    repository,
		log:     logger,
		pub:     pub,
		uploads: uploadStore,
	}
}

// Submit is the applicant intake path: classify, persist, then run the
// side effects that may not fail the request (advisory, notification).
func (s *service) Submit(ctx *ginext.Context) {
	var form dto.SubmissionForm
	if err := ctx.ShouldBind(&form); err != nil {
		s.log.Error().Err(err).Msg("failed to parse submission form")
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid form data")
		return
	}

	// Presentation names fold into record names.
	if form.ApplicantName == "" {
		form.ApplicantName = form.OrganizerName
	}
	location := form.Venue
	if location == "" {
		location = form.EventLocation
	}

	if form.ApplicantName == "" {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Field is required: applicant_name")
		return
	}
	if verr := validator.Validate(ctx, form); verr != nil {
		s.log.Error().Msgf("submission validation failed: %v", verr)
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	risk := classifier.RiskInput{
		Attendance:     classifier.ParseCount(form.Attendance),
		Alcohol:        classifier.ParseFlag(form.Alcohol),
		HighRisk:       classifier.ParseFlag(form.HighRisk),
		TrafficMgmt:    classifier.ParseFlag(form.TrafficMgmt),
		VehicleAccess:  classifier.ParseFlag(form.VehicleAccess),
		AmplifiedSound: classifier.ParseFlag(form.AmplifiedSound),
		NoiseLevel:     classifier.ParseCount(form.NoiseLevel),
		TotalDays:      classifier.ParseCount(form.TotalDays),
	}
	classification := classifier.Classify(risk)

	insuranceFile, err := s.saveUpload(ctx, "insurance")
	if err != nil {
		s.log.Error().Err(err).Msg("failed to store insurance upload")
		dto.InternalServerError(ctx)
		return
	}
	siteMapFile, err := s.saveUpload(ctx, "site_map")
	if err != nil {
		s.log.Error().Err(err).Msg("failed to store site map upload")
		dto.InternalServerError(ctx)
		return
	}
	otherDocs, err := s.saveOtherDocs(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to store document uploads")
		dto.InternalServerError(ctx)
		return
	}

	app := &model.Application{
		ApplicantName:     form.ApplicantName,
		Email:             form.Email,
		Phone:             form.Phone,
		EventName:         form.EventName,
		EventType:         form.EventType,
		Location:          location,
		StartDate:         form.StartDate,
		EndDate:           form.EndDate,
		StartTime:         form.StartTime,
		EndTime:           form.EndTime,
		Attendance:        risk.Attendance,
		Alcohol:           risk.Alcohol,
		HighRisk:          risk.HighRisk,
		TrafficMgmt:       risk.TrafficMgmt,
		VehicleAccess:     risk.VehicleAccess,
		AmplifiedSound:    risk.AmplifiedSound,
		NoiseLevel:        risk.NoiseLevel,
		TotalDays:         risk.TotalDays,
		Notes:             form.Notes,
		InsuranceFile:     insuranceFile,
		SiteMapFile:       siteMapFile,
		OtherDocs:         otherDocs,
		Latitude:          form.Latitude,
		Longitude:         form.Longitude,
		ArcgisFeatureID:   form.ArcgisFeatureID,
		ArcgisFeatureName: form.ArcgisFeatureName,
		ArcgisLayer:       form.ArcgisLayer,
		Classification:    classification,
		Status:            model.InitialStatus(classification),
	}

	id, err := s.repo.Insert(ctx, app)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to persist application")
		dto.InternalServerError(ctx)
		return
	}
	s.log.Info().
		Int64("application_id", id).
		Str("classification", classification.String()).
		Str("status", app.Status.String()).
		Msg("application submitted")

	// From here on nothing may fail the request: the record is committed.
	if classification == model.SelfAssessable {
		s.logAdvisory(calendar.Reserve(app.StartDate, app.StartTime), id)
	}
	s.notify(app)

	ctx.Redirect(303, successURL(app))
}

func (s *service) saveUpload(ctx *ginext.Context, field string) (string, error) {
	fh, err := ctx.FormFile(field)
	if err != nil || fh == nil || fh.Filename == "" {
		return "", nil
	}
	return s.uploads.Save(fh)
}

func (s *service) saveOtherDocs(ctx *ginext.Context) (string, error) {
	mf, err := ctx.MultipartForm()
	if err != nil || mf == nil {
		return "", nil
	}
	var names []string
	for _, fh := range mf.File["other_docs"] {
		if fh.Filename == "" {
			continue
		}
		name, err := s.uploads.Save(fh)
		if err != nil {
			return "", err
		}
		names = append(names, name)
	}
	return strings.Join(names, ";"), nil
}

func (s *service) logAdvisory(adv calendar.Advisory, id int64) {
	switch adv.Outcome {
	case calendar.Available:
		s.log.Info().Int64("application_id", id).Msg(adv.Detail)
	default:
		s.log.Warn().
			Int64("application_id", id).
			Str("outcome", string(adv.Outcome)).
			Msg(adv.Detail)
	}
}

func (s *service) notify(app *model.Application) {
	payload, err := json.Marshal(dto.NotificationMessage{
		ApplicationID:  app.ID,
		Email:          app.Email,
		EventName:      app.EventName,
		Classification: app.Classification.String(),
		SubmittedAt:    time.Now(),
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal notification message")
		return
	}
	if err := s.pub.Publish(payload); err != nil {
		s.log.Warn().Err(err).Int("application_id", app.ID).Msg("notification publish failed")
	}
}

func successURL(app *model.Application) string {
	q := url.Values{}
	q.Set("classification", app.Classification.String())
	q.Set("applicant", app.ApplicantName)
	q.Set("event", app.EventName)
	return "/success?" + q.Encode()
}

// QuickBook is the staff shortcut: no classification, no advisory, no
// notification. The record is always Self-assessable and Approved.
func (s *service) QuickBook(ctx *ginext.Context) {
	var req dto.QuickBookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	app := &model.Application{
		ApplicantName:  req.ApplicantName,
		Email:          req.Email,
		EventName:      req.EventName,
		Location:       req.Location,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		TotalDays:      1,
		Notes:          req.Notes,
		Classification: model.SelfAssessable,
		Status:         model.StatusApproved,
	}

	id, err := s.repo.Insert(ctx, app)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to persist quick-book record")
		dto.InternalServerError(ctx)
		return
	}
	s.log.Info().Int64("application_id", id).Msg("quick-book record created")

	dto.SuccessCreatedResponse(ctx, app)
}

// ListApplications is the filtered review listing behind the admin page.
func (s *service) ListApplications(ctx *ginext.Context) {
	f := repo.Filter{Text: strings.TrimSpace(ctx.Query("q"))}

	if v := ctx.Query("status"); v != "" {
		st := model.Status(v)
		if !st.IsValid() {
			dto.BadResponseError(ctx, dto.FieldIncorrect, "Unknown status filter: "+v)
			return
		}
		f.Status = st
	}
	if v := ctx.Query("classification"); v != "" {
		cl := model.Classification(v)
		if !cl.IsValid() {
			dto.BadResponseError(ctx, dto.FieldIncorrect, "Unknown classification filter: "+v)
			return
		}
		f.Classification = cl
	}

	apps, err := s.repo.Query(ctx, f)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to query applications")
		dto.InternalServerError(ctx)
		return
	}
	if apps == nil {
		apps = []model.Application{}
	}
	dto.SuccessResponse(ctx, apps)
}

// AdminAction handles the approve/reject quick actions on the review page.
// Cancelled is deliberately not reachable here; it only exists on the
// status API.
func (s *service) AdminAction(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid application ID")
		return
	}

	var target model.Status
	switch ctx.Param("action") {
	case "approve":
		target = model.StatusApproved
	case "reject":
		target = model.StatusRejected
	default:
		dto.BadResponseError(ctx, dto.UnknownAction, "Action must be approve or reject")
		return
	}

	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		if errors.Is(err, repo.ErrApplicationNotFound) {
			dto.NotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int64("application_id", id).Msg("failed to update status")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("application_id", id).Str("status", target.String()).Msg("status updated by staff action")
	ctx.Redirect(302, "/admin")
}

// UpdateStatusAPI sets any of the four valid statuses on a record.
func (s *service) UpdateStatusAPI(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(400, dto.StatusUpdateResponse{OK: false, Error: "invalid application id"})
		return
	}

	var req dto.UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, dto.StatusUpdateResponse{OK: false, Error: "invalid JSON body"})
		return
	}

	target := model.Status(req.Status)
	if !target.IsValid() {
		ctx.JSON(400, dto.StatusUpdateResponse{OK: false, Error: "invalid status value"})
		return
	}

	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		if errors.Is(err, repo.ErrApplicationNotFound) {
			ctx.JSON(404, dto.StatusUpdateResponse{OK: false, Error: "application not found"})
			return
		}
		s.log.Error().Err(err).Int64("application_id", id).Msg("failed to update status")
		ctx.JSON(500, dto.StatusUpdateResponse{OK: false, Error: "internal error"})
		return
	}

	ctx.JSON(200, dto.StatusUpdateResponse{OK: true})
}

// Export streams the whole record set as csv or xlsx.
func (s *service) Export(ctx *ginext.Context) {
	format := ctx.Param("format")
	if format != "csv" && format != "xlsx" {
		dto.BadResponseError(ctx, dto.UnsupportedFormat, "Format must be csv or xlsx")
		return
	}

	apps, err := s.repo.ListAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load applications for export")
		dto.InternalServerError(ctx)
		return
	}

	var buf bytes.Buffer
	switch format {
	case "csv":
		if err := export.WriteCSV(&buf, apps); err != nil {
			s.log.Error().Err(err).Msg("csv export failed")
			dto.InternalServerError(ctx)
			return
		}
		ctx.Header("Content-Disposition", `attachment; filename="applications.csv"`)
		ctx.Data(200, "text/csv", buf.Bytes())
	case "xlsx":
		if err := export.WriteXLSX(&buf, apps); err != nil {
			s.log.Error().Err(err).Msg("xlsx export failed")
			dto.InternalServerError(ctx)
			return
		}
		ctx.Header("Content-Disposition", `attachment; filename="applications.xlsx"`)
		ctx.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
}

// CalendarEvents serves the feed the calendar page renders from.
func (s *service) CalendarEvents(ctx *ginext.Context) {
	entries, err := s.repo.ListForCalendar(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list calendar entries")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.CalendarEventResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.CalendarEventResponse{
			ID:             e.ID,
			Title:          e.EventName,
			Start:          combineSlot(e.StartDate, e.StartTime),
			End:            combineSlot(endDate(e), e.EndTime),
			Location:       e.Location,
			Classification: e.Classification.String(),
			Status:         dto.CalendarStatusLabel(e.Status),
		})
	}

	ctx.JSON(200, resp)
}

func endDate(e model.CalendarEntry) string {
	if e.EndTime == "" && e.EndDate == "" {
		return ""
	}
	if e.EndDate != "" {
		return e.EndDate
	}
	return e.StartDate
}

func combineSlot(date, clock string) string {
	if date == "" {
		return ""
	}
	if clock == "" {
		return date
	}
	return date + "T" + clock + ":00"
}

// ServeUpload returns a previously stored document by name.
func (s *service) ServeUpload(ctx *ginext.Context) {
	path, err := s.uploads.Path(ctx.Param("filename"))
	if err != nil {
		dto.NotFoundError(ctx)
		return
	}
	ctx.File(path)
}
