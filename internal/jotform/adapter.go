package jotform

import (
	"fmt"
	"strings"
	"time"

	"github.com/pioneerbroadband/leadtracker/internal/leads"
)

// Timestamp layouts the provider emits. Submission metadata uses the
// first; date questions have been observed in all of them.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// ToLead converts a raw submission into a typed lead record. Every
// assumption about the provider's answer shapes lives here. Returned
// warnings are data-quality notes (unparsable dates, missing names);
// the record is still returned and listed.
func ToLead(sub Submission) (leads.Lead, []string) {
	var warnings []string

	answer := func(field string) string {
		id, ok := FieldID(field)
		if !ok {
			return ""
		}
		return sub.Answers[id].Text()
	}

	first := answer(fieldNameFirst)
	last := answer(fieldNameLast)
	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		name = fmt.Sprintf("Unnamed (%s)", sub.ID)
		warnings = append(warnings, "missing name")
	}

	createdAt, err := parseTime(sub.CreatedAt)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("unparsable created_at %q", sub.CreatedAt))
	}
	updatedAt, err := parseTime(sub.UpdatedAt)
	if err != nil {
		updatedAt = createdAt
	}

	l := leads.Lead{
		ID:            sub.ID,
		Name:          name,
		ContactSource: answer(leads.FieldSource),
		ServiceType:   answer(leads.FieldServiceType),
		Status:        leads.Status(answer(leads.FieldStatus)),
		Notes:         answer(leads.FieldNotes),
		LostReason:    answer(leads.FieldLostReason),
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
	if !l.Status.Known() {
		warnings = append(warnings, fmt.Sprintf("unknown status %q", l.Status))
	}

	stageDates := []struct {
		field string
		dst   **time.Time
	}{
		{leads.FieldSurveyScheduledDate, &l.SurveyScheduledDate},
		{leads.FieldSurveyCompletedDate, &l.SurveyCompletedDate},
		{leads.FieldScheduledDate, &l.ScheduledDate},
		{leads.FieldInstalledDate, &l.InstalledDate},
		{leads.FieldWaitingOnCustomerDate, &l.WaitingOnCustomerDate},
	}
	for _, sd := range stageDates {
		raw := answer(sd.field)
		if raw == "" {
			continue
		}
		t, err := parseTime(raw)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("unparsable %s %q", sd.field, raw))
			continue
		}
		*sd.dst = &t
	}
	return l, warnings
}

// ToFields flattens a lead into the provider's question-id keyed field
// set for a create call.
func ToFields(l *leads.Lead) map[string]string {
	fields := map[string]string{}
	set := func(field, value string) {
		if value == "" {
			return
		}
		if id, ok := FieldID(field); ok {
			fields[id] = value
		}
	}
	first, last := splitName(l.Name)
	set(fieldNameFirst, first)
	set(fieldNameLast, last)
	set(leads.FieldSource, l.ContactSource)
	set(leads.FieldServiceType, l.ServiceType)
	set(leads.FieldStatus, string(l.Status))
	set(leads.FieldNotes, l.Notes)
	set(leads.FieldLostReason, l.LostReason)
	setDate := func(field string, t *time.Time) {
		if t != nil {
			set(field, t.Format("2006-01-02 15:04:05"))
		}
	}
	setDate(leads.FieldSurveyScheduledDate, l.SurveyScheduledDate)
	setDate(leads.FieldSurveyCompletedDate, l.SurveyCompletedDate)
	setDate(leads.FieldScheduledDate, l.ScheduledDate)
	setDate(leads.FieldInstalledDate, l.InstalledDate)
	setDate(leads.FieldWaitingOnCustomerDate, l.WaitingOnCustomerDate)
	return fields
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
