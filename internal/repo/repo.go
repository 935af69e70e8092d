package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"github.com/Macaies/Permit-app/internal/model"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidStatus       = errors.New("invalid status value")
)

// Filter narrows the review listing. Zero values mean "no constraint".
type Filter struct {
	// Text matches applicant name, event type or event name,
	// case-insensitive substring.
	Text           string
	Classification model.Classification
	Status         model.Status
}

type Repository interface {
	Insert(ctx context.Context, app *model.Application) (int64, error)
	Query(ctx context.Context, f Filter) ([]model.Application, error)
	ListAll(ctx context.Context) ([]model.Application, error)
	UpdateStatus(ctx context.Context, id int64, newStatus model.Status) error
	ListForCalendar(ctx context.Context) ([]model.CalendarEntry, error)
	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) MigrateUp(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations applied successfully from %s", migrationsDir)
	return nil
}

func (r *repository) MigrateDown(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("failed to read rollback files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read rollback file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations rolled back successfully from %s", migrationsDir)
	return nil
}

const applicationColumns = `
	id, applicant_name, email, phone,
	event_name, event_type, location,
	start_date, end_date, start_time, end_time,
	attendance, alcohol, high_risk, traffic_mgmt,
	vehicle_access, amplified_sound, noise_level, total_days,
	notes, insurance_file, site_map_file, other_docs,
	latitude, longitude, arcgis_feature_id, arcgis_feature_name, arcgis_layer,
	classification, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*model.Application, error) {
	var a model.Application
	if err := row.Scan(
		&a.ID, &a.ApplicantName, &a.Email, &a.Phone,
		&a.EventName, &a.EventType, &a.Location,
		&a.StartDate, &a.EndDate, &a.StartTime, &a.EndTime,
		&a.Attendance, &a.Alcohol, &a.HighRisk, &a.TrafficMgmt,
		&a.VehicleAccess, &a.AmplifiedSound, &a.NoiseLevel, &a.TotalDays,
		&a.Notes, &a.InsuranceFile, &a.SiteMapFile, &a.OtherDocs,
		&a.Latitude, &a.Longitude, &a.ArcgisFeatureID, &a.ArcgisFeatureName, &a.ArcgisLayer,
		&a.Classification, &a.Status, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) Insert(ctx context.Context, app *model.Application) (int64, error) {
	query := `
		INSERT INTO events (
			applicant_name, email, phone,
			event_name, event_type, location,
			start_date, end_date, start_time, end_time,
			attendance, alcohol, high_risk, traffic_mgmt,
			vehicle_access, amplified_sound, noise_level, total_days,
			notes, insurance_file, site_map_file, other_docs,
			latitude, longitude, arcgis_feature_id, arcgis_feature_name, arcgis_layer,
			classification, status
		)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27,
			$28, $29
		)
		RETURNING id, created_at
	`

	row := r.db.QueryRowContext(ctx, query,
		app.ApplicantName, app.Email, app.Phone,
		app.EventName, app.EventType, app.Location,
		app.StartDate, app.EndDate, app.StartTime, app.EndTime,
		app.Attendance, app.Alcohol, app.HighRisk, app.TrafficMgmt,
		app.VehicleAccess, app.AmplifiedSound, app.NoiseLevel, app.TotalDays,
		app.Notes, app.InsuranceFile, app.SiteMapFile, app.OtherDocs,
		app.Latitude, app.Longitude, app.ArcgisFeatureID, app.ArcgisFeatureName, app.ArcgisLayer,
		app.Classification.String(), app.Status.String(),
	)

	var id int64
	if err := row.Scan(&id, &app.CreatedAt); err != nil {
		return 0, fmt.Errorf("failed to insert application: %w", err)
	}
	app.ID = int(id)
	return id, nil
}

func (r *repository) Query(ctx context.Context, f Filter) ([]model.Application, error) {
	query := `SELECT` + applicationColumns + ` FROM events`

	var (
		conds []string
		args  []any
	)
	if f.Text != "" {
		pattern := "%" + f.Text + "%"
		args = append(args, pattern)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(applicant_name ILIKE $%d OR event_type ILIKE $%d OR event_name ILIKE $%d)", n, n, n))
	}
	if f.Classification != "" {
		args = append(args, f.Classification.String())
		conds = append(conds, fmt.Sprintf("classification = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status.String())
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

func (r *repository) ListAll(ctx context.Context) ([]model.Application, error) {
	query := `SELECT` + applicationColumns + ` FROM events ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

func collectApplications(rows *sql.Rows) ([]model.Application, error) {
	var apps []model.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read applications: %w", err)
	}
	return apps, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, newStatus model.Status) error {
	if !newStatus.IsValid() {
		return ErrInvalidStatus
	}

	query := `
		UPDATE events
		SET status = $1
		WHERE id = $2
		RETURNING id
	`

	var updated int64
	if err := r.db.QueryRowContext(ctx, query, newStatus.String(), id).Scan(&updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrApplicationNotFound
		}
		return fmt.Errorf("failed to update application status: %w", err)
	}
	return nil
}

func (r *repository) ListForCalendar(ctx context.Context) ([]model.CalendarEntry, error) {
	query := `
		SELECT id, event_name, start_date, end_date, start_time, end_time,
		       location, classification, status
		FROM events
		ORDER BY start_date, start_time
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar entries: %w", err)
	}
	defer rows.Close()

	var entries []model.CalendarEntry
	for rows.Next() {
		var e model.CalendarEntry
		if err := rows.Scan(
			&e.ID, &e.EventName, &e.StartDate, &e.EndDate, &e.StartTime, &e.EndTime,
			&e.Location, &e.Classification, &e.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan calendar entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read calendar entries: %w", err)
	}

	return entries, nil
}
