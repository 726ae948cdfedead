// Package seedfile implements the local flat-file fallback for the lead
// store: one CSV row per record, whole-file replace on every mutation.
// It is used when the remote forms provider is unavailable or when
// running against seed data.
package seedfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pioneerbroadband/leadtracker/internal/leads"
)

var header = []string{
	"ID", "Name", "ContactSource", "ServiceType", "Status", "Notes", "LostReason",
	"SurveyScheduledDate", "SurveyCompletedDate", "ScheduledDate", "InstalledDate",
	"WaitingOnCustomerDate", "CreatedAt", "UpdatedAt", "StatusHistory",
}

// Persister reads and writes the seed CSV. Every mutation loads the
// file, applies the change and rewrites the whole file.
type Persister struct {
	mu   sync.Mutex
	path string

	now func() time.Time
}

// New creates a persister for the given CSV path. The file is created
// on first write; a missing file reads as an empty record set.
func New(path string) *Persister {
	return &Persister{path: path, now: time.Now}
}

func (p *Persister) Fetch(ctx context.Context) ([]leads.Lead, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load()
}

func (p *Persister) Create(ctx context.Context, lead *leads.Lead) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	records, err := p.load()
	if err != nil {
		return "", err
	}
	id := "seed_" + uuid.NewString()
	stored := *lead.Clone()
	stored.ID = id
	records = append(records, stored)
	if err := p.save(records); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Persister) Update(ctx context.Context, id string, fields map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	records, err := p.load()
	if err != nil {
		return err
	}
	found := false
	for i := range records {
		if records[i].ID != id {
			continue
		}
		if err := applyFields(&records[i], fields, p.now().UTC()); err != nil {
			return err
		}
		found = true
		break
	}
	if !found {
		return leads.ErrLeadNotFound
	}
	return p.save(records)
}

func (p *Persister) Delete(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	records, err := p.load()
	if err != nil {
		return err
	}
	kept := records[:0]
	found := false
	for _, l := range records {
		if l.ID == id {
			found = true
			continue
		}
		kept = append(kept, l)
	}
	if !found {
		return leads.ErrLeadNotFound
	}
	return p.save(kept)
}

func applyFields(l *leads.Lead, fields map[string]string, now time.Time) error {
	transitionAt := now
	if raw, ok := fields[leads.FieldStatusChangedAt]; ok {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("seedfile: parse %s: %w", leads.FieldStatusChangedAt, err)
		}
		transitionAt = t
	}
	for name, value := range fields {
		switch name {
		case leads.FieldStatusChangedAt:
			// Consumed above alongside the status field.
		case leads.FieldName:
			l.Name = value
		case leads.FieldSource:
			l.ContactSource = value
		case leads.FieldServiceType:
			l.ServiceType = value
		case leads.FieldNotes:
			l.Notes = value
		case leads.FieldLostReason:
			l.LostReason = value
		case leads.FieldStatus:
			l.Status = leads.Status(value)
			l.StatusHistory = append(l.StatusHistory, leads.StatusChange{Status: l.Status, At: transitionAt})
		case leads.FieldSurveyScheduledDate, leads.FieldSurveyCompletedDate,
			leads.FieldScheduledDate, leads.FieldInstalledDate, leads.FieldWaitingOnCustomerDate:
			t, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return fmt.Errorf("seedfile: parse %s: %w", name, err)
			}
			if err := setStageDate(l, name, t); err != nil {
				return err
			}
		default:
			return fmt.Errorf("seedfile: unknown field %q", name)
		}
	}
	l.UpdatedAt = now
	return nil
}

func setStageDate(l *leads.Lead, field string, t time.Time) error {
	switch field {
	case leads.FieldSurveyScheduledDate:
		l.SurveyScheduledDate = &t
	case leads.FieldSurveyCompletedDate:
		l.SurveyCompletedDate = &t
	case leads.FieldScheduledDate:
		l.ScheduledDate = &t
	case leads.FieldInstalledDate:
		l.InstalledDate = &t
	case leads.FieldWaitingOnCustomerDate:
		l.WaitingOnCustomerDate = &t
	default:
		return fmt.Errorf("seedfile: not a stage date: %q", field)
	}
	return nil
}

func (p *Persister) load() ([]leads.Lead, error) {
	f, err := os.Open(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("seedfile: open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("seedfile: parse: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]leads.Lead, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("seedfile: row has %d columns, want %d", len(row), len(header))
		}
		l, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (p *Persister) save(records []leads.Lead) error {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("seedfile: write header: %w", err)
	}
	for i := range records {
		if err := w.Write(toRow(&records[i])); err != nil {
			return fmt.Errorf("seedfile: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("seedfile: flush: %w", err)
	}
	// Whole-file replace, not append.
	if err := os.WriteFile(p.path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("seedfile: replace: %w", err)
	}
	return nil
}

func toRow(l *leads.Lead) []string {
	return []string{
		l.ID, l.Name, l.ContactSource, l.ServiceType, string(l.Status), l.Notes, l.LostReason,
		formatDate(l.SurveyScheduledDate), formatDate(l.SurveyCompletedDate),
		formatDate(l.ScheduledDate), formatDate(l.InstalledDate), formatDate(l.WaitingOnCustomerDate),
		l.CreatedAt.UTC().Format(time.RFC3339), l.UpdatedAt.UTC().Format(time.RFC3339),
		formatHistory(l.StatusHistory),
	}
}

func fromRow(row []string) (leads.Lead, error) {
	createdAt, err := time.Parse(time.RFC3339, row[12])
	if err != nil {
		return leads.Lead{}, fmt.Errorf("seedfile: parse CreatedAt: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339, row[13])
	if err != nil {
		updatedAt = createdAt
	}
	history, err := parseHistory(row[14])
	if err != nil {
		return leads.Lead{}, err
	}
	l := leads.Lead{
		ID:            row[0],
		Name:          row[1],
		ContactSource: row[2],
		ServiceType:   row[3],
		Status:        leads.Status(row[4]),
		Notes:         row[5],
		LostReason:    row[6],
		StatusHistory: history,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
	dates := []struct {
		raw string
		dst **time.Time
	}{
		{row[7], &l.SurveyScheduledDate},
		{row[8], &l.SurveyCompletedDate},
		{row[9], &l.ScheduledDate},
		{row[10], &l.InstalledDate},
		{row[11], &l.WaitingOnCustomerDate},
	}
	for _, d := range dates {
		if d.raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, d.raw)
		if err != nil {
			return leads.Lead{}, fmt.Errorf("seedfile: parse stage date: %w", err)
		}
		*d.dst = &t
	}
	return l, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// History is serialized as "Status@timestamp|Status@timestamp"; statuses
// never contain '@' or '|'.
func formatHistory(history []leads.StatusChange) string {
	parts := make([]string, 0, len(history))
	for _, h := range history {
		parts = append(parts, string(h.Status)+"@"+h.At.UTC().Format(time.RFC3339))
	}
	return strings.Join(parts, "|")
}

func parseHistory(raw string) ([]leads.StatusChange, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, "|")
	out := make([]leads.StatusChange, 0, len(parts))
	for _, part := range parts {
		idx := strings.LastIndex(part, "@")
		if idx < 0 {
			return nil, fmt.Errorf("seedfile: malformed history entry %q", part)
		}
		at, err := time.Parse(time.RFC3339, part[idx+1:])
		if err != nil {
			return nil, fmt.Errorf("seedfile: parse history timestamp: %w", err)
		}
		out = append(out, leads.StatusChange{Status: leads.Status(part[:idx]), At: at})
	}
	return out, nil
}
