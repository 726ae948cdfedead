package analytics

import (
	"sort"
	"time"

	"github.com/pioneerbroadband/leadtracker/internal/leads"
	"github.com/pioneerbroadband/leadtracker/internal/observability/metrics"
	"github.com/pioneerbroadband/leadtracker/pkg/logging"
)

// SummaryStats aggregates defined durations only. Count is the number of
// contributing records; zero means "no data", not zero days.
type SummaryStats struct {
	Count  int     `json:"count"`
	Avg    float64 `json:"avg"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// OpenTicketAge is a triage row: how long an unresolved ticket has been
// open.
type OpenTicketAge struct {
	LeadID  string       `json:"lead_id"`
	Name    string       `json:"name"`
	Status  leads.Status `json:"status"`
	AgeDays float64      `json:"age_days"`
}

// Report is one full KPI pass over a snapshot. It is recomputed from
// scratch on every request; there is no cached aggregate state.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	TotalLeads  int       `json:"total_leads"`

	CountByStatus     map[leads.Status]int `json:"count_by_status"`
	CountBySource     map[string]int       `json:"count_by_source"`
	CountByService    map[string]int       `json:"count_by_service"`
	CountByLostReason map[string]int       `json:"count_by_lost_reason"`

	// ConversionRate is Installed / (Installed + Lost) as a percentage,
	// nil while there are no resolved tickets.
	ConversionRate     *float64           `json:"conversion_rate"`
	ConversionBySource map[string]float64 `json:"conversion_by_source"`

	DaysToInstall       SummaryStats             `json:"days_to_install"`
	AverageTimeInStatus map[leads.Status]float64 `json:"average_time_in_status"`
	AgeOfOpenTickets    []OpenTicketAge          `json:"age_of_open_tickets"`

	SLA           []LeadSLA `json:"sla"`
	BreachedCount int       `json:"breached_count"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// BuildReport computes every aggregate over the given records. Pure:
// the same snapshot and clock always yield the same report.
func BuildReport(records []leads.Lead, th Thresholds, now time.Time) *Report {
	if th == nil {
		th = DefaultThresholds()
	}
	r := &Report{
		GeneratedAt:         now,
		TotalLeads:          len(records),
		CountByStatus:       make(map[leads.Status]int, len(leads.AllStatuses)),
		CountBySource:       map[string]int{},
		CountByService:      map[string]int{},
		CountByLostReason:   map[string]int{},
		ConversionBySource:  map[string]float64{},
		AverageTimeInStatus: map[leads.Status]float64{},
	}
	for _, s := range leads.AllStatuses {
		r.CountByStatus[s] = 0
	}

	var installDays []float64
	statusTotals := map[leads.Status]float64{}
	statusCounts := map[leads.Status]int{}
	sourceTotals := map[string]int{}
	sourceInstalled := map[string]int{}
	installed, lost := 0, 0

	for i := range records {
		l := &records[i]

		if l.Status.Known() {
			r.CountByStatus[l.Status]++
		} else {
			r.Warnings = append(r.Warnings, Warning{
				LeadID: l.ID,
				Kind:   WarnUnknownStatus,
				Detail: "status " + string(l.Status) + " is not in the lifecycle set",
			})
		}
		if l.CreatedAt.IsZero() {
			// Age and install-time math all anchor on CreatedAt; a record
			// whose creation timestamp never parsed skips those aggregates.
			r.Warnings = append(r.Warnings, Warning{
				LeadID: l.ID,
				Kind:   WarnMissingTimestamp,
				Detail: "created_at is missing or unparsable",
			})
		}
		if l.ContactSource != "" {
			r.CountBySource[l.ContactSource]++
			sourceTotals[l.ContactSource]++
		}
		if l.ServiceType != "" {
			r.CountByService[l.ServiceType]++
		}
		if l.Status == leads.StatusLost && l.LostReason != "" {
			r.CountByLostReason[l.LostReason]++
		}

		switch l.Status {
		case leads.StatusInstalled:
			installed++
			if l.ContactSource != "" {
				sourceInstalled[l.ContactSource]++
			}
		case leads.StatusLost:
			lost++
		}

		if d := TotalDaysToInstall(l); d.Defined {
			installDays = append(installDays, d.Days)
		}

		intervals, warnings := Intervals(l, now)
		r.Warnings = append(r.Warnings, warnings...)
		for _, iv := range intervals {
			if !iv.Span.Defined || !iv.Status.Known() {
				continue
			}
			statusTotals[iv.Status] += iv.Span.Days
			statusCounts[iv.Status]++
		}

		if l.Status.Known() && !l.Status.Terminal() {
			if age := Between(&l.CreatedAt, &now); age.Defined {
				r.AgeOfOpenTickets = append(r.AgeOfOpenTickets, OpenTicketAge{
					LeadID:  l.ID,
					Name:    l.Name,
					Status:  l.Status,
					AgeDays: age.Days,
				})
			}
		}

		sla := EvaluateSLA(l, th)
		r.SLA = append(r.SLA, sla)
		if sla.AnyBreach {
			r.BreachedCount++
		}
	}

	if resolved := installed + lost; resolved > 0 {
		rate := 100 * float64(installed) / float64(resolved)
		r.ConversionRate = &rate
	}
	for src, total := range sourceTotals {
		r.ConversionBySource[src] = 100 * float64(sourceInstalled[src]) / float64(total)
	}
	for s, total := range statusTotals {
		r.AverageTimeInStatus[s] = total / float64(statusCounts[s])
	}
	r.DaysToInstall = summarize(installDays)

	// Oldest open tickets first for triage.
	sort.Slice(r.AgeOfOpenTickets, func(i, j int) bool {
		return r.AgeOfOpenTickets[i].AgeDays > r.AgeOfOpenTickets[j].AgeDays
	})
	return r
}

func summarize(values []float64) SummaryStats {
	if len(values) == 0 {
		return SummaryStats{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return SummaryStats{
		Count:  n,
		Avg:    sum / float64(n),
		Median: median,
		Min:    sorted[0],
		Max:    sorted[n-1],
	}
}

// Engine wraps report building with thresholds, logging and metrics. The
// computation itself stays pure; the engine only observes it.
type Engine struct {
	thresholds Thresholds
	logger     *logging.Logger
	metrics    *metrics.TrackerMetrics
	now        func() time.Time
}

// NewEngine creates an engine. Nil thresholds fall back to the defaults;
// nil logger and metrics are allowed.
func NewEngine(th Thresholds, logger *logging.Logger, m *metrics.TrackerMetrics) *Engine {
	if th == nil {
		th = DefaultThresholds()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{thresholds: th, logger: logger, metrics: m, now: time.Now}
}

// Thresholds returns the configured per-stage limits.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Report runs a full KPI pass over the snapshot.
func (e *Engine) Report(records []leads.Lead) *Report {
	start := time.Now()
	r := BuildReport(records, e.thresholds, e.now().UTC())
	e.metrics.ObserveReportLatency(time.Since(start).Seconds())
	for _, w := range r.Warnings {
		e.logger.Warn("data quality", "lead", w.LeadID, "kind", w.Kind, "detail", w.Detail)
		e.metrics.ObserveQualityWarning(w.Kind)
	}
	return r
}
