package leads

import (
	"fmt"
	"strings"
	"time"
)

// Status is a lead lifecycle state. The set is fixed but transitions are
// not: operators move tickets in any direction on the pipeline board.
type Status string

const (
	StatusSurveyScheduled   Status = "Survey Scheduled"
	StatusSurveyCompleted   Status = "Survey Completed"
	StatusScheduled         Status = "Scheduled"
	StatusInstalled         Status = "Installed"
	StatusWaitingOnCustomer Status = "Waiting on Customer"
	StatusLost              Status = "Lost"
)

// AllStatuses lists the known statuses in pipeline display order.
var AllStatuses = []Status{
	StatusSurveyScheduled,
	StatusSurveyCompleted,
	StatusScheduled,
	StatusInstalled,
	StatusWaitingOnCustomer,
	StatusLost,
}

// Known reports whether s is one of the fixed lifecycle statuses.
// Unknown statuses can arrive from the forms provider; such records are
// still listed but excluded from status-keyed aggregates.
func (s Status) Known() bool {
	for _, k := range AllStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// Terminal reports whether no further status transition is expected.
func (s Status) Terminal() bool {
	return s == StatusInstalled || s == StatusLost
}

// ContactSources are the accepted values for where a lead came from.
var ContactSources = []string{"Email", "Phone Call", "Walk In", "Social Media", "In Person"}

// ServiceTypes are the accepted service offerings.
var ServiceTypes = []string{
	"Internet", "Phone", "TV", "Cell Phone",
	"Internet and Phone", "Internet and TV", "Internet and Cell Phone",
}

// StatusChange is one entry in a lead's append-only status history.
type StatusChange struct {
	Status Status    `json:"status"`
	At     time.Time `json:"at"`
}

// Lead is a sales ticket tracked from first contact through install or loss.
//
// StatusHistory is append-only and ordered by timestamp ascending; the
// first entry is the creation event and the last entry always matches
// Status. The named stage dates mirror the provider's date fields and
// exist independently of the history.
type Lead struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	ContactSource string         `json:"contact_source"`
	ServiceType   string         `json:"service_type"`
	Status        Status         `json:"status"`
	StatusHistory []StatusChange `json:"status_history"`
	Notes         string         `json:"notes"`
	LostReason    string         `json:"lost_reason,omitempty"`

	SurveyScheduledDate   *time.Time `json:"survey_scheduled_date,omitempty"`
	SurveyCompletedDate   *time.Time `json:"survey_completed_date,omitempty"`
	ScheduledDate         *time.Time `json:"scheduled_date,omitempty"`
	InstalledDate         *time.Time `json:"installed_date,omitempty"`
	WaitingOnCustomerDate *time.Time `json:"waiting_on_customer_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so snapshots handed to callers cannot alias
// store-internal state.
func (l *Lead) Clone() *Lead {
	c := *l
	c.StatusHistory = make([]StatusChange, len(l.StatusHistory))
	copy(c.StatusHistory, l.StatusHistory)
	c.SurveyScheduledDate = cloneTime(l.SurveyScheduledDate)
	c.SurveyCompletedDate = cloneTime(l.SurveyCompletedDate)
	c.ScheduledDate = cloneTime(l.ScheduledDate)
	c.InstalledDate = cloneTime(l.InstalledDate)
	c.WaitingOnCustomerDate = cloneTime(l.WaitingOnCustomerDate)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// StageDate returns the pointer to the named date field that corresponds
// to a status, or nil for statuses without one (Lost).
func (l *Lead) StageDate(s Status) **time.Time {
	switch s {
	case StatusSurveyScheduled:
		return &l.SurveyScheduledDate
	case StatusSurveyCompleted:
		return &l.SurveyCompletedDate
	case StatusScheduled:
		return &l.ScheduledDate
	case StatusInstalled:
		return &l.InstalledDate
	case StatusWaitingOnCustomer:
		return &l.WaitingOnCustomerDate
	}
	return nil
}

// CreateLeadRequest carries the fields for a new ticket.
type CreateLeadRequest struct {
	Name          string `json:"name"`
	ContactSource string `json:"contact_source"`
	ServiceType   string `json:"service_type"`
	Status        Status `json:"status"`
	Notes         string `json:"notes"`
	LostReason    string `json:"lost_reason"`
}

// Validate checks the required fields and reports every missing one.
func (r *CreateLeadRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(r.ContactSource) == "" {
		missing = append(missing, "contact_source")
	}
	if strings.TrimSpace(string(r.Status)) == "" {
		missing = append(missing, "status")
	}
	if strings.TrimSpace(r.ServiceType) == "" {
		missing = append(missing, "service_type")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	if !r.Status.Known() {
		return &ValidationError{Reason: fmt.Sprintf("unknown status %q", r.Status)}
	}
	return nil
}

// UpdateLeadRequest carries a partial edit; nil fields are left untouched.
type UpdateLeadRequest struct {
	Name          *string `json:"name,omitempty"`
	ContactSource *string `json:"contact_source,omitempty"`
	ServiceType   *string `json:"service_type,omitempty"`
	Status        *Status `json:"status,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	LostReason    *string `json:"lost_reason,omitempty"`

	SurveyScheduledDate   *time.Time `json:"survey_scheduled_date,omitempty"`
	SurveyCompletedDate   *time.Time `json:"survey_completed_date,omitempty"`
	ScheduledDate         *time.Time `json:"scheduled_date,omitempty"`
	InstalledDate         *time.Time `json:"installed_date,omitempty"`
	WaitingOnCustomerDate *time.Time `json:"waiting_on_customer_date,omitempty"`
}

// Validate rejects updates that would blank a required field or set an
// unknown status.
func (r *UpdateLeadRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return &ValidationError{Missing: []string{"name"}}
	}
	if r.ContactSource != nil && strings.TrimSpace(*r.ContactSource) == "" {
		return &ValidationError{Missing: []string{"contact_source"}}
	}
	if r.ServiceType != nil && strings.TrimSpace(*r.ServiceType) == "" {
		return &ValidationError{Missing: []string{"service_type"}}
	}
	if r.Status != nil && !r.Status.Known() {
		return &ValidationError{Reason: fmt.Sprintf("unknown status %q", *r.Status)}
	}
	return nil
}
