package leads

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pioneerbroadband/leadtracker/internal/observability/metrics"
	"github.com/pioneerbroadband/leadtracker/pkg/logging"
)

// Logical field names used when sending partial updates to a Persister.
const (
	FieldName                  = "name"
	FieldSource                = "source"
	FieldServiceType           = "service_type"
	FieldStatus                = "status"
	FieldStatusChangedAt       = "status_changed_at"
	FieldNotes                 = "notes"
	FieldLostReason            = "lost_reason"
	FieldSurveyScheduledDate   = "survey_scheduled_date"
	FieldSurveyCompletedDate   = "survey_completed_date"
	FieldScheduledDate         = "scheduled_date"
	FieldInstalledDate         = "installed_date"
	FieldWaitingOnCustomerDate = "waiting_on_customer_date"
)

// Persister is the external system of record behind the store: the forms
// provider over HTTP, or the local seed file when running offline. The
// store itself has no durability of its own.
type Persister interface {
	// Fetch returns every known record.
	Fetch(ctx context.Context) ([]Lead, error)
	// Create persists a new record and returns the assigned id.
	Create(ctx context.Context, lead *Lead) (string, error)
	// Update persists a partial field set; only changed fields are sent.
	Update(ctx context.Context, id string, fields map[string]string) error
	// Delete removes the record permanently.
	Delete(ctx context.Context, id string) error
}

// Store holds the in-memory snapshot of lead records and mediates every
// mutation through the Persister. A failed persistence call leaves the
// snapshot unchanged. The snapshot is stale until Refresh is called;
// there is no hidden auto-retry or background sync.
type Store struct {
	mu        sync.RWMutex
	persister Persister
	logger    *logging.Logger
	metrics   *metrics.TrackerMetrics
	leads     map[string]*Lead

	now func() time.Time
}

// NewStore creates an empty store. Call Refresh to load the snapshot.
func NewStore(p Persister, logger *logging.Logger, m *metrics.TrackerMetrics) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		persister: p,
		logger:    logger,
		metrics:   m,
		leads:     make(map[string]*Lead),
		now:       time.Now,
	}
}

// Refresh replaces the snapshot with the persister's current view.
func (s *Store) Refresh(ctx context.Context) error {
	fetched, err := s.persister.Fetch(ctx)
	s.metrics.ObserveRefresh(err == nil)
	if err != nil {
		return err
	}
	next := make(map[string]*Lead, len(fetched))
	for i := range fetched {
		l := fetched[i].Clone()
		if len(l.StatusHistory) == 0 {
			// Provider records carry no history of their own; seed it
			// from the creation event so the invariant holds.
			l.StatusHistory = []StatusChange{{Status: l.Status, At: l.CreatedAt}}
		}
		next[l.ID] = l
	}
	s.mu.Lock()
	s.leads = next
	s.mu.Unlock()
	s.logger.Info("lead snapshot refreshed", "count", len(next))
	return nil
}

// List returns a copy of every known record, newest first.
func (s *Store) List() []Lead {
	s.mu.RLock()
	out := make([]Lead, 0, len(s.leads))
	for _, l := range s.leads {
		out = append(out, *l.Clone())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Get returns a single record by id.
func (s *Store) Get(id string) (*Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	return l.Clone(), nil
}

// Create validates the request, persists a new record and adds it to the
// snapshot. The persister assigns the id.
func (s *Store) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	l := &Lead{
		Name:          req.Name,
		ContactSource: req.ContactSource,
		ServiceType:   req.ServiceType,
		Status:        req.Status,
		StatusHistory: []StatusChange{{Status: req.Status, At: now}},
		Notes:         req.Notes,
		LostReason:    req.LostReason,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if d := l.StageDate(req.Status); d != nil && *d == nil {
		*d = &now
	}
	id, err := s.persister.Create(ctx, l)
	if err != nil {
		return nil, err
	}
	l.ID = id
	s.mu.Lock()
	s.leads[id] = l
	s.mu.Unlock()
	s.logger.Info("lead created", "id", id, "name", l.Name, "status", l.Status)
	return l.Clone(), nil
}

// Update applies a partial edit. A status change appends to the history,
// stamps the matching stage date if unset, and prepends an audit line to
// the notes. The persister sees only the changed fields; on failure the
// in-memory record is untouched.
func (s *Store) Update(ctx context.Context, id string, req *UpdateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	cur, ok := s.leads[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrLeadNotFound
	}

	next := cur.Clone()
	now := s.now().UTC()
	changed := map[string]string{}

	if req.Name != nil && *req.Name != next.Name {
		next.Name = *req.Name
		changed[FieldName] = next.Name
	}
	if req.ContactSource != nil && *req.ContactSource != next.ContactSource {
		next.ContactSource = *req.ContactSource
		changed[FieldSource] = next.ContactSource
	}
	if req.ServiceType != nil && *req.ServiceType != next.ServiceType {
		next.ServiceType = *req.ServiceType
		changed[FieldServiceType] = next.ServiceType
	}
	if req.LostReason != nil && *req.LostReason != next.LostReason {
		next.LostReason = *req.LostReason
		changed[FieldLostReason] = next.LostReason
	}
	if req.Notes != nil && *req.Notes != next.Notes {
		next.Notes = *req.Notes
		changed[FieldNotes] = next.Notes
	}
	applyDate(next, req.SurveyScheduledDate, StatusSurveyScheduled, FieldSurveyScheduledDate, changed)
	applyDate(next, req.SurveyCompletedDate, StatusSurveyCompleted, FieldSurveyCompletedDate, changed)
	applyDate(next, req.ScheduledDate, StatusScheduled, FieldScheduledDate, changed)
	applyDate(next, req.InstalledDate, StatusInstalled, FieldInstalledDate, changed)
	applyDate(next, req.WaitingOnCustomerDate, StatusWaitingOnCustomer, FieldWaitingOnCustomerDate, changed)

	if req.Status != nil && *req.Status != next.Status {
		next.Status = *req.Status
		next.StatusHistory = append(next.StatusHistory, StatusChange{Status: *req.Status, At: now})
		changed[FieldStatus] = string(*req.Status)
		// The persister records the same transition instant, not its own.
		changed[FieldStatusChangedAt] = now.Format(time.RFC3339)
		if d := next.StageDate(*req.Status); d != nil && *d == nil {
			*d = &now
			changed[stageField(*req.Status)] = now.Format(time.RFC3339)
		}
		next.Notes = fmt.Sprintf("[%s] Status → %s\n%s",
			now.Format("2006-01-02 15:04"), *req.Status, next.Notes)
		changed[FieldNotes] = next.Notes
	}

	if len(changed) == 0 {
		return next, nil
	}
	if err := s.persister.Update(ctx, id, changed); err != nil {
		return nil, err
	}
	next.UpdatedAt = now
	s.mu.Lock()
	s.leads[id] = next
	s.mu.Unlock()
	s.logger.Info("lead updated", "id", id, "fields", len(changed))
	return next.Clone(), nil
}

// Delete removes a record permanently. No cascading side effects.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.RLock()
	_, ok := s.leads[id]
	s.mu.RUnlock()
	if !ok {
		return ErrLeadNotFound
	}
	if err := s.persister.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.leads, id)
	s.mu.Unlock()
	s.logger.Info("lead deleted", "id", id)
	return nil
}

func applyDate(l *Lead, v *time.Time, status Status, field string, changed map[string]string) {
	if v == nil {
		return
	}
	d := l.StageDate(status)
	if d == nil {
		return
	}
	if *d != nil && (*d).Equal(*v) {
		return
	}
	t := v.UTC()
	*d = &t
	changed[field] = t.Format(time.RFC3339)
}

func stageField(s Status) string {
	switch s {
	case StatusSurveyScheduled:
		return FieldSurveyScheduledDate
	case StatusSurveyCompleted:
		return FieldSurveyCompletedDate
	case StatusScheduled:
		return FieldScheduledDate
	case StatusInstalled:
		return FieldInstalledDate
	case StatusWaitingOnCustomer:
		return FieldWaitingOnCustomerDate
	}
	return ""
}
