// Package export renders the full application table for staff download.
// Column order matches the schema (model.ExportColumns). There is no
// filtering; exports always cover the whole record set.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Macaies/Permit-app/internal/model"
)

func flag(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func rowValues(a model.Application) []string {
	return []string{
		strconv.Itoa(a.ID), a.ApplicantName, a.Email, a.Phone,
		a.EventName, a.EventType, a.Location,
		a.StartDate, a.EndDate, a.StartTime, a.EndTime,
		strconv.Itoa(a.Attendance), flag(a.Alcohol), flag(a.HighRisk), flag(a.TrafficMgmt),
		flag(a.VehicleAccess), flag(a.AmplifiedSound), strconv.Itoa(a.NoiseLevel), strconv.Itoa(a.TotalDays),
		a.Notes, a.InsuranceFile, a.SiteMapFile, a.OtherDocs,
		a.Latitude, a.Longitude, a.ArcgisFeatureID, a.ArcgisFeatureName, a.ArcgisLayer,
		a.Classification.String(), a.Status.String(), a.CreatedAt.Format(time.RFC3339),
	}
}

// WriteCSV emits the header row even when there are no records.
func WriteCSV(w io.Writer, apps []model.Application) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.ExportColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, a := range apps {
		if err := cw.Write(rowValues(a)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX emits a single sheet. An empty record set produces an empty
// sheet, with no header row.
func WriteXLSX(w io.Writer, apps []model.Application) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if len(apps) > 0 {
		header := make([]any, len(model.ExportColumns))
		for i, c := range model.ExportColumns {
			header[i] = c
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("write xlsx header: %w", err)
		}
		for i, a := range apps {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return fmt.Errorf("xlsx cell name: %w", err)
			}
			values := rowValues(a)
			row := make([]any, len(values))
			for j, v := range values {
				row[j] = v
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("write xlsx row: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
