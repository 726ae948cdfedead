package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/pioneerbroadband/leadtracker/internal/analytics"
	"github.com/pioneerbroadband/leadtracker/internal/leads"
)

// Workbook builds the multi-sheet export: raw records on the first
// sheet, aggregate KPI tables on the rest.
func Workbook(records []leads.Lead, report *analytics.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Leads"); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}

	if err := writeLeadsSheet(f, records); err != nil {
		return nil, err
	}
	if err := writeKPISheet(f, report); err != nil {
		return nil, err
	}
	if err := writeSLASheet(f, report); err != nil {
		return nil, err
	}
	if err := writeOpenTicketsSheet(f, report); err != nil {
		return nil, err
	}
	return f, nil
}

func writeLeadsSheet(f *excelize.File, records []leads.Lead) error {
	if err := setRow(f, "Leads", 1, toAny(csvHeader)); err != nil {
		return err
	}
	for i := range records {
		l := &records[i]
		row := []any{
			l.ID, l.Name, l.ContactSource, string(l.Status), l.ServiceType,
			l.LostReason, l.Notes,
			fmtDate(l.SurveyScheduledDate), fmtDate(l.SurveyCompletedDate),
			fmtDate(l.ScheduledDate), fmtDate(l.InstalledDate),
			l.CreatedAt.UTC(), l.UpdatedAt.UTC(),
		}
		if err := setRow(f, "Leads", i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeKPISheet(f *excelize.File, report *analytics.Report) error {
	const sheet = "KPIs"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("export: new sheet: %w", err)
	}
	rows := [][]any{
		{"Metric", "Value"},
		{"Total Leads", report.TotalLeads},
		{"Conversion Rate (%)", conversionCell(report.ConversionRate)},
		{"Avg Days To Install", statCell(report.DaysToInstall, report.DaysToInstall.Avg)},
		{"Median Days To Install", statCell(report.DaysToInstall, report.DaysToInstall.Median)},
		{"Min Days To Install", statCell(report.DaysToInstall, report.DaysToInstall.Min)},
		{"Max Days To Install", statCell(report.DaysToInstall, report.DaysToInstall.Max)},
		{"Breached Leads", report.BreachedCount},
		{},
		{"Status", "Count"},
	}
	for _, s := range leads.AllStatuses {
		rows = append(rows, []any{string(s), report.CountByStatus[s]})
	}
	rows = append(rows, []any{}, []any{"Contact Source", "Count", "Conversion (%)"})
	for src, count := range report.CountBySource {
		rows = append(rows, []any{src, count, report.ConversionBySource[src]})
	}
	if len(report.CountByLostReason) > 0 {
		rows = append(rows, []any{}, []any{"Lost Reason", "Count"})
		for reason, count := range report.CountByLostReason {
			rows = append(rows, []any{reason, count})
		}
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func writeSLASheet(f *excelize.File, report *analytics.Report) error {
	const sheet = "SLA"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("export: new sheet: %w", err)
	}
	if err := setRow(f, sheet, 1, []any{
		"TicketID", "Name",
		"Survey (days)", "Survey", "Scheduling (days)", "Scheduling",
		"Install Wait (days)", "Install Wait", "Any Breach",
	}); err != nil {
		return err
	}
	for i, sla := range report.SLA {
		row := []any{sla.LeadID, sla.Name}
		for _, stage := range analytics.Stages {
			s := sla.Stages[stage]
			row = append(row, durationCell(s.Duration), string(s.Classification))
		}
		row = append(row, sla.AnyBreach)
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeOpenTicketsSheet(f *excelize.File, report *analytics.Report) error {
	const sheet = "Open Tickets"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("export: new sheet: %w", err)
	}
	if err := setRow(f, sheet, 1, []any{"TicketID", "Name", "Status", "Age (days)"}); err != nil {
		return err
	}
	for i, age := range report.AgeOfOpenTickets {
		row := []any{age.LeadID, age.Name, string(age.Status), age.AgeDays}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("export: cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("export: set cell: %w", err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func conversionCell(rate *float64) any {
	if rate == nil {
		return "no resolved tickets"
	}
	return *rate
}

func statCell(stats analytics.SummaryStats, v float64) any {
	if stats.Count == 0 {
		return "no data"
	}
	return v
}

func durationCell(d analytics.Duration) any {
	if !d.Defined {
		return ""
	}
	return d.Days
}
