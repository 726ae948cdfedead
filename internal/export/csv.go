// Package export produces on-demand dumps of the current filtered
// record set: a flat CSV and a multi-sheet workbook with the KPI tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/pioneerbroadband/leadtracker/internal/leads"
)

var csvHeader = []string{
	"SubmissionID", "Name", "ContactSource", "Status", "TypeOfService",
	"LostReason", "Notes", "SurveyScheduledDate", "SurveyCompletedDate",
	"ScheduledDate", "InstalledDate", "CreatedAt", "LastUpdated",
}

// WriteCSV dumps the records as a flat table, one row per lead.
func WriteCSV(w io.Writer, records []leads.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for i := range records {
		l := &records[i]
		row := []string{
			l.ID, l.Name, l.ContactSource, string(l.Status), l.ServiceType,
			l.LostReason, l.Notes,
			fmtDate(l.SurveyScheduledDate), fmtDate(l.SurveyCompletedDate),
			fmtDate(l.ScheduledDate), fmtDate(l.InstalledDate),
			l.CreatedAt.UTC().Format(time.RFC3339),
			l.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
