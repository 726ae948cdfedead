package analytics

import (
	"strings"

	"github.com/pioneerbroadband/leadtracker/internal/leads"
)

// Filter narrows a snapshot before listing or reporting. Empty values
// (or the literal "All") leave that dimension unconstrained.
type Filter struct {
	Query      string
	Source     string
	Status     string
	Service    string
	LostReason string
}

func active(v string) bool {
	return v != "" && v != "All"
}

// Apply returns the records matching every active constraint. The input
// slice is not modified.
func (f Filter) Apply(records []leads.Lead) []leads.Lead {
	out := make([]leads.Lead, 0, len(records))
	q := strings.ToLower(strings.TrimSpace(f.Query))
	for _, l := range records {
		if q != "" && !strings.Contains(strings.ToLower(l.Name), q) {
			continue
		}
		if active(f.Source) && l.ContactSource != f.Source {
			continue
		}
		if active(f.Status) && string(l.Status) != f.Status {
			continue
		}
		if active(f.Service) && l.ServiceType != f.Service {
			continue
		}
		if active(f.LostReason) && l.LostReason != f.LostReason {
			continue
		}
		out = append(out, l)
	}
	return out
}
