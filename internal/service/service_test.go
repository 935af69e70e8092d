package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"

	"github.com/Macaies/Permit-app/internal/api/api"
	"github.com/Macaies/Permit-app/internal/dto"
	"github.com/Macaies/Permit-app/internal/model"
	"github.com/Macaies/Permit-app/internal/repo"
	"github.com/Macaies/Permit-app/internal/service"
	"github.com/Macaies/Permit-app/internal/uploads"
)

// fakeRepo mirrors the store's contract in memory.
type fakeRepo struct {
	apps      []model.Application
	calendar  []model.CalendarEntry
	nextID    int
	insertErr error
}

func (f *fakeRepo) Insert(_ context.Context, app *model.Application) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	app.ID = f.nextID
	app.CreatedAt = time.Now()
	f.apps = append(f.apps, *app)
	return int64(app.ID), nil
}

func matchText(a model.Application, text string) bool {
	t := strings.ToLower(text)
	return strings.Contains(strings.ToLower(a.ApplicantName), t) ||
		strings.Contains(strings.ToLower(a.EventType), t) ||
		strings.Contains(strings.ToLower(a.EventName), t)
}

func (f *fakeRepo) Query(_ context.Context, flt repo.Filter) ([]model.Application, error) {
	var out []model.Application
	for i := len(f.apps) - 1; i >= 0; i-- { // newest-first
		a := f.apps[i]
		if flt.Text != "" && !matchText(a, flt.Text) {
			continue
		}
		if flt.Classification != "" && a.Classification != flt.Classification {
			continue
		}
		if flt.Status != "" && a.Status != flt.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeRepo) ListAll(_ context.Context) ([]model.Application, error) {
	return append([]model.Application(nil), f.apps...), nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id int64, newStatus model.Status) error {
	if !newStatus.IsValid() {
		return repo.ErrInvalidStatus
	}
	for i := range f.apps {
		if f.apps[i].ID == int(id) {
			f.apps[i].Status = newStatus
			return nil
		}
	}
	return repo.ErrApplicationNotFound
}

func (f *fakeRepo) ListForCalendar(_ context.Context) ([]model.CalendarEntry, error) {
	return f.calendar, nil
}

func (f *fakeRepo) MigrateUp(string) error   { return nil }
func (f *fakeRepo) MigrateDown(string) error { return nil }

type fakePublisher struct {
	messages [][]byte
	err      error
}

func (p *fakePublisher) Publish(message []byte) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, message)
	return nil
}

func newTestRouter(t *testing.T, r repo.Repository, pub service.Publisher) *ginext.Engine {
	t.Helper()
	store, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)
	log := zerolog.Nop()
	svc := service.NewService(r, &log, pub, store)

	frontendDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(frontendDir, "admin.html"),
		[]byte("<html>review</html>"), 0o644))
	return api.NewRouters(&api.Routers{Service: svc, FrontendDir: frontendDir})
}

func submissionForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	base := map[string]string{
		"organizer_name": "Dana Wells",
		"email":          "dana@example.com",
		"event_name":     "Harbour Fair",
		"event_type":     "fair",
		"venue":          "Harbour Foreshore",
		"start_date":     "2024-01-08",
		"start_time":     "10:00",
		"total_days":     "1",
	}
	for k, v := range fields {
		base[k] = v
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range base {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doRequest(router *ginext.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func asStaff(req *http.Request) *http.Request {
	req.Header.Set("X-Staff-Role", "staff")
	return req
}

func TestSubmit_SelfAssessableIsAutoApproved(t *testing.T) {
	fr := &fakeRepo{}
	pub := &fakePublisher{}
	router := newTestRouter(t, fr, pub)

	body, contentType := submissionForm(t, map[string]string{"attendance": "50"})
	req := httptest.NewRequest(http.MethodPost, "/submit", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(router, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc := rec.Header().Get("Location")
	assert.Contains(t, loc, "classification=Self-assessable")
	assert.Contains(t, loc, "applicant=Dana+Wells")

	require.Len(t, fr.apps, 1)
	assert.Equal(t, model.SelfAssessable, fr.apps[0].Classification)
	assert.Equal(t, model.StatusApproved, fr.apps[0].Status)
	assert.Equal(t, "Dana Wells", fr.apps[0].ApplicantName, "organizer_name maps to applicant_name")

	require.Len(t, pub.messages, 1)
	var msg dto.NotificationMessage
	require.NoError(t, json.Unmarshal(pub.messages[0], &msg))
	assert.Equal(t, "Harbour Fair", msg.EventName)
	assert.Equal(t, "dana@example.com", msg.Email)
}

func TestSubmit_HighAttendanceGoesToReview(t *testing.T) {
	fr := &fakeRepo{}
	router := newTestRouter(t, fr, &fakePublisher{})

	body, contentType := submissionForm(t, map[string]string{"attendance": "250"})
	req := httptest.NewRequest(http.MethodPost, "/submit", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(router, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "classification=Assessable")
	require.Len(t, fr.apps, 1)
	assert.Equal(t, model.StatusPending, fr.apps[0].Status)
}

func TestSubmit_MalformedNumbersCoerceToZero(t *testing.T) {
	fr := &fakeRepo{}
	router := newTestRouter(t, fr, &fakePublisher{})

	body, contentType := submissionForm(t, map[string]string{
		"attendance":  "lots",
		"noise_level": "",
		"alcohol":     "maybe",
	})
	req := httptest.NewRequest(http.MethodPost, "/submit", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(router, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, fr.apps, 1)
	assert.Equal(t, 0, fr.apps[0].Attendance)
	assert.False(t, fr.apps[0].Alcohol)
	assert.Equal(t, model.SelfAssessable, fr.apps[0].Classification)
}

func TestSubmit_PersistenceFailureIsFatalAndNothingIsNotified(t *testing.T) {
	fr := &fakeRepo{insertErr: errors.New("db down")}
	pub := &fakePublisher{}
	router := newTestRouter(t, fr, pub)

	body, contentType := submissionForm(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/submit", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(router, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, fr.apps)
	assert.Empty(t, pub.messages)
}

func TestSubmit_NotificationFailureIsSwallowed(t *testing.T) {
	fr := &fakeRepo{}
	router := newTestRouter(t, fr, &fakePublisher{err: errors.New("broker down")})

	body, contentType := submissionForm(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/submit", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(router, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code, "submission succeeds once persisted")
	assert.Len(t, fr.apps, 1)
}

func TestQuickBook_ForcesSelfAssessableApproved(t *testing.T) {
	fr := &fakeRepo{}
	pub := &fakePublisher{}
	router := newTestRouter(t, fr, pub)

	payload := `{
		"applicant_name": "Events Desk",
		"event_name": "Council Sausage Sizzle",
		"start_date": "2024-01-06",
		"start_time": "09:00"
	}`
	req := asStaff(httptest.NewRequest(http.MethodPost, "/admin/quick_book", strings.NewReader(payload)))
	req.Header.Set("Content-Type", "application/json")
	rec := doRequest(router, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, fr.apps, 1)
	assert.Equal(t, model.SelfAssessable, fr.apps[0].Classification)
	assert.Equal(t, model.StatusApproved, fr.apps[0].Status)
	assert.Empty(t, pub.messages, "quick-book sends no notification")
}

func TestAdminPage_RequiresStaffRole(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{}, &fakePublisher{})

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code, "review page is never served anonymously")

	rec = doRequest(router, asStaff(httptest.NewRequest(http.MethodGet, "/admin", nil)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQuickBook_RequiresStaffRole(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{}, &fakePublisher{})

	req := httptest.NewRequest(http.MethodPost, "/admin/quick_book", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := doRequest(router, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func seedApp(fr *fakeRepo, name string, cls model.Classification) int {
	app := model.Application{
		ApplicantName:  name,
		Email:          name + "@example.com",
		EventName:      name + " Event",
		StartDate:      "2024-02-05",
		StartTime:      "10:00",
		Classification: cls,
		Status:         model.InitialStatus(cls),
	}
	_, _ = fr.Insert(context.Background(), &app)
	return app.ID
}

func TestAdminAction_ApproveThenListedUnderApprovedFilter(t *testing.T) {
	fr := &fakeRepo{}
	router := newTestRouter(t, fr, &fakePublisher{})
	id := seedApp(fr, "Noor", model.Assessable)

	rec := doRequest(router, asStaff(httptest.NewRequest(http.MethodGet,
		"/admin/event/1/approve", nil)))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
	assert.Equal(t, model.StatusApproved, fr.apps[0].Status)

	rec = doRequest(router, asStaff(httptest.NewRequest(http.MethodGet,
		"/api/applications?status=Approved", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []model.Application `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, id, body.Data[0].ID)
}

func TestAdminAction_UnknownActionRejected(t *testing.T) {
	fr := &fakeRepo{}
	router := newTestRouter(t, fr, &fakePublisher{})
	seedApp(fr, "Omar", model.Assessable)

	rec := doRequest(router, asStaff(httptest.NewRequest(http.MethodGet,
		"/admin/event/1/cancel", nil)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.StatusPending, fr.apps[0].Status, "status unchanged")
}

func TestUpdateStatusAPI_ValidatesEnum(t *testing.T) {
	fr := &fakeRepo{}
	router := newTestRouter(t, fr, &fakePublisher{})
	seedApp(fr, "Iris", model.Assessable)

	req := asStaff(httptest.NewRequest(http.MethodPost, "/api/event/1/status",
		strings.NewReader(`{"status":"Archived"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := doRequest(router, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp dto.StatusUpdateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, model.StatusPending, fr.apps[0].Status, "prior status unchanged")

	// Cancelled is valid here even though the quick actions don't offer it.
	req = asStaff(httptest.NewRequest(http.MethodPost, "/api/event/1/status",
		strings.NewReader(`{"status":"Cancelled"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec = doRequest(router, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, model.StatusCancelled, fr.apps[0].Status)
}

func TestCalendarEvents_StatusLabelMapping(t *testing.T) {
	fr := &fakeRepo{calendar: []model.CalendarEntry{
		{ID: 1, EventName: "A", StartDate: "2024-03-01", StartTime: "09:00", Status: model.StatusApproved},
		{ID: 2, EventName: "B", StartDate: "2024-03-02", StartTime: "09:00", Status: model.StatusPending},
		{ID: 3, EventName: "C", StartDate: "2024-03-03", StartTime: "09:00", Status: model.StatusRejected},
		{ID: 4, EventName: "D", StartDate: "2024-03-04", StartTime: "09:00", Status: model.StatusCancelled},
		{ID: 5, EventName: "E", StartDate: "2024-03-05", StartTime: "09:00", Status: model.Status("Mystery")},
	}}
	router := newTestRouter(t, fr, &fakePublisher{})

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var events []dto.CalendarEventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 5)
	assert.Equal(t, "fc-approved", events[0].Status)
	assert.Equal(t, "fc-pending", events[1].Status)
	assert.Equal(t, "fc-rejected", events[2].Status)
	assert.Equal(t, "fc-rejected", events[3].Status)
	assert.Equal(t, "fc-pending", events[4].Status, "unknown status defaults to pending label")
	assert.Equal(t, "2024-03-01T09:00:00", events[0].Start)
}

func TestExport_UnsupportedFormatRejected(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{}, &fakePublisher{})

	rec := doRequest(router, asStaff(httptest.NewRequest(http.MethodGet, "/export/pdf", nil)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport_EmptyCSVHasHeaderOnly(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{}, &fakePublisher{})

	rec := doRequest(router, asStaff(httptest.NewRequest(http.MethodGet, "/export/csv", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "id,applicant_name,email"))
}

func TestListApplications_RejectsUnknownFilterValues(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{}, &fakePublisher{})

	rec := doRequest(router, asStaff(httptest.NewRequest(http.MethodGet,
		"/api/applications?status=Archived", nil)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
