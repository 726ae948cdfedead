package seedfile

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pioneerbroadband/leadtracker/internal/leads"
)

func newTestPersister(t *testing.T) *Persister {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "saleslead_seed.csv"))
}

func sampleLead() *leads.Lead {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return &leads.Lead{
		Name:          "June Barrow",
		ContactSource: "Email",
		ServiceType:   "Internet",
		Status:        leads.StatusSurveyScheduled,
		Notes:         "first contact",
		StatusHistory: []leads.StatusChange{{Status: leads.StatusSurveyScheduled, At: created}},
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestFetchMissingFileIsEmpty(t *testing.T) {
	p := newTestPersister(t)
	records, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCreateRoundTrips(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()

	id, err := p.Create(ctx, sampleLead())
	require.NoError(t, err)
	assert.Contains(t, id, "seed_")

	records, err := p.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "June Barrow", got.Name)
	assert.Equal(t, leads.StatusSurveyScheduled, got.Status)
	require.Len(t, got.StatusHistory, 1)
	assert.Equal(t, sampleLead().CreatedAt, got.StatusHistory[0].At)
}

func TestUpdateStatusAppendsFileHistory(t *testing.T) {
	p := newTestPersister(t)
	p.now = func() time.Time { return time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	id, err := p.Create(ctx, sampleLead())
	require.NoError(t, err)

	err = p.Update(ctx, id, map[string]string{
		leads.FieldStatus:              string(leads.StatusSurveyCompleted),
		leads.FieldSurveyCompletedDate: "2024-01-04T00:00:00Z",
	})
	require.NoError(t, err)

	records, err := p.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records[0]
	assert.Equal(t, leads.StatusSurveyCompleted, got.Status)
	require.Len(t, got.StatusHistory, 2)
	assert.Equal(t, got.Status, got.StatusHistory[1].Status)
	require.NotNil(t, got.SurveyCompletedDate)
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), *got.SurveyCompletedDate)
}

func TestUpdateUsesSuppliedTransitionTimestamp(t *testing.T) {
	p := newTestPersister(t)
	p.now = func() time.Time { return time.Date(2024, 1, 4, 0, 0, 7, 0, time.UTC) }
	ctx := context.Background()
	id, err := p.Create(ctx, sampleLead())
	require.NoError(t, err)

	// The caller already stamped the transition; the file must carry the
	// same instant, not this persister's clock.
	err = p.Update(ctx, id, map[string]string{
		leads.FieldStatus:          string(leads.StatusScheduled),
		leads.FieldStatusChangedAt: "2024-01-04T00:00:00Z",
	})
	require.NoError(t, err)

	records, err := p.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records[0]
	require.Len(t, got.StatusHistory, 2)
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), got.StatusHistory[1].At)
}

func TestUpdateUnknownIDIsNotFound(t *testing.T) {
	p := newTestPersister(t)
	err := p.Update(context.Background(), "missing", map[string]string{leads.FieldNotes: "x"})
	assert.ErrorIs(t, err, leads.ErrLeadNotFound)
}

func TestDeleteRewritesWholeFile(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()
	id1, err := p.Create(ctx, sampleLead())
	require.NoError(t, err)
	other := sampleLead()
	other.Name = "Burt Hollis"
	id2, err := p.Create(ctx, other)
	require.NoError(t, err)

	require.NoError(t, p.Delete(ctx, id1))
	records, err := p.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id2, records[0].ID)

	assert.ErrorIs(t, p.Delete(ctx, id1), leads.ErrLeadNotFound)
}

func TestNotesWithCommasAndNewlinesSurvive(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()
	l := sampleLead()
	l.Notes = "[2024-01-04 00:00] Status → Scheduled\ncalled, left message"
	id, err := p.Create(ctx, l)
	require.NoError(t, err)

	records, err := p.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, l.Notes, records[0].Notes)
}
