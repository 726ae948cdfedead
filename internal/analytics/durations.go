package analytics

import (
	"time"

	"github.com/pioneerbroadband/leadtracker/internal/leads"
)

const secondsPerDay = 86400.0

// Duration is a span in fractional days that may be undefined. Undefined
// means a boundary timestamp is missing or the pair is out of order; such
// values are excluded from every aggregate rather than treated as zero.
type Duration struct {
	Days    float64 `json:"days"`
	Defined bool    `json:"defined"`
}

// Undefined is the zero Duration.
var Undefined = Duration{}

func days(d time.Duration) float64 {
	return d.Seconds() / secondsPerDay
}

// Between computes end minus start in fractional days. It is undefined
// when either endpoint is missing or when end precedes start; negative
// spans are never clamped to zero. A zero time counts as missing: the
// provider can hand back records whose timestamps failed to parse, and
// an epoch-anchored span would otherwise saturate every aggregate.
func Between(start, end *time.Time) Duration {
	if start == nil || end == nil || start.IsZero() || end.IsZero() {
		return Undefined
	}
	span := end.Sub(*start)
	if span < 0 {
		return Undefined
	}
	return Duration{Days: days(span), Defined: true}
}

// Warning flags a record whose data broke one specific computation. The
// record stays visible; only the affected aggregate skips it.
type Warning struct {
	LeadID string `json:"lead_id"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

const (
	WarnOutOfOrder       = "out_of_order_timestamps"
	WarnUnknownStatus    = "unknown_status"
	WarnMissingTimestamp = "missing_timestamp"
)

// Interval is one stretch of a lead's history spent in a single status,
// over the half-open range [Start, End).
type Interval struct {
	Status leads.Status `json:"status"`
	Start  time.Time    `json:"start"`
	End    time.Time    `json:"end"`
	Span   Duration     `json:"span"`
}

// Intervals reconstructs the per-status occupancy of a record from its
// status history. The last interval extends to now while the record is
// open; once a terminal status is reached it is closed at the final
// transition, accruing no further time. Out-of-order adjacent
// timestamps make that interval undefined and produce a warning.
func Intervals(l *leads.Lead, now time.Time) ([]Interval, []Warning) {
	history := l.StatusHistory
	if len(history) == 0 {
		// Creation is normally history[0]; synthesize it if a record
		// arrived without history.
		history = []leads.StatusChange{{Status: l.Status, At: l.CreatedAt}}
	}

	var warnings []Warning
	out := make([]Interval, 0, len(history))
	for i, ev := range history {
		var end time.Time
		switch {
		case i+1 < len(history):
			end = history[i+1].At
		case ev.Status.Terminal():
			end = ev.At
		default:
			end = now
		}
		span := Between(&ev.At, &end)
		if !span.Defined {
			w := Warning{
				LeadID: l.ID,
				Kind:   WarnOutOfOrder,
				Detail: "interval for status " + string(ev.Status) + " ends before it starts",
			}
			if ev.At.IsZero() || end.IsZero() {
				w.Kind = WarnMissingTimestamp
				w.Detail = "interval for status " + string(ev.Status) + " has no timestamp"
			}
			warnings = append(warnings, w)
		}
		out = append(out, Interval{Status: ev.Status, Start: ev.At, End: end, Span: span})
	}
	return out, warnings
}

// Named stage durations, derived from the paired provider date fields
// rather than the generic history reconstruction.

func SurveyDuration(l *leads.Lead) Duration {
	return Between(l.SurveyScheduledDate, l.SurveyCompletedDate)
}

func SchedulingDuration(l *leads.Lead) Duration {
	return Between(l.SurveyCompletedDate, l.ScheduledDate)
}

func InstallWaitDuration(l *leads.Lead) Duration {
	return Between(l.ScheduledDate, l.InstalledDate)
}

func TotalDaysToInstall(l *leads.Lead) Duration {
	return Between(&l.CreatedAt, l.InstalledDate)
}
