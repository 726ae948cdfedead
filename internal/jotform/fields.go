package jotform

import "github.com/pioneerbroadband/leadtracker/internal/leads"

// Provider field ids for the sales-lead form. This table is the only
// place that knows the form layout; it is configuration, not logic.
// Name is two provider fields (first/last) joined on read and split on
// write.
const (
	fieldNameFirst = "name_first"
	fieldNameLast  = "name_last"
)

var fieldIDs = map[string]string{
	fieldNameFirst:                   "first_3",
	fieldNameLast:                    "last_3",
	leads.FieldSource:                "4",
	leads.FieldStatus:                "6",
	leads.FieldNotes:                 "10",
	leads.FieldSurveyScheduledDate:   "12",
	leads.FieldSurveyCompletedDate:   "13",
	leads.FieldScheduledDate:         "14",
	leads.FieldInstalledDate:         "15",
	leads.FieldWaitingOnCustomerDate: "16",
	leads.FieldLostReason:            "17",
	leads.FieldServiceType:           "18",
}

// FieldID resolves a logical field name to the provider's question id.
func FieldID(name string) (string, bool) {
	id, ok := fieldIDs[name]
	return id, ok
}
