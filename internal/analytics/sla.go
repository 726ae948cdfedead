package analytics

import "github.com/pioneerbroadband/leadtracker/internal/leads"

// Stage names one SLA-tracked segment of the lead lifecycle.
type Stage string

const (
	StageSurvey      Stage = "survey"
	StageScheduling  Stage = "scheduling"
	StageInstallWait Stage = "install_wait"
)

// Stages lists the SLA-tracked stages in lifecycle order.
var Stages = []Stage{StageSurvey, StageScheduling, StageInstallWait}

// Thresholds maps each stage to its maximum allowed duration in days.
type Thresholds map[Stage]float64

// DefaultThresholds is three days per stage.
func DefaultThresholds() Thresholds {
	return Thresholds{
		StageSurvey:      3,
		StageScheduling:  3,
		StageInstallWait: 3,
	}
}

// Classification of a stage against its threshold.
type Classification string

const (
	OnTrack  Classification = "on_track"
	Breached Classification = "breached"
)

// Classify marks a stage breached only when its duration is defined and
// strictly exceeds the threshold. Absence of data is not a breach.
func Classify(d Duration, threshold float64) Classification {
	if d.Defined && d.Days > threshold {
		return Breached
	}
	return OnTrack
}

// StageSLA pairs a stage duration with its classification.
type StageSLA struct {
	Duration       Duration       `json:"duration"`
	Classification Classification `json:"classification"`
}

// LeadSLA is the per-record SLA verdict.
type LeadSLA struct {
	LeadID    string             `json:"lead_id"`
	Name      string             `json:"name"`
	Stages    map[Stage]StageSLA `json:"stages"`
	AnyBreach bool               `json:"any_breach"`
}

// EvaluateSLA classifies every tracked stage of a record.
func EvaluateSLA(l *leads.Lead, th Thresholds) LeadSLA {
	durations := map[Stage]Duration{
		StageSurvey:      SurveyDuration(l),
		StageScheduling:  SchedulingDuration(l),
		StageInstallWait: InstallWaitDuration(l),
	}
	out := LeadSLA{LeadID: l.ID, Name: l.Name, Stages: make(map[Stage]StageSLA, len(Stages))}
	for _, stage := range Stages {
		c := Classify(durations[stage], th[stage])
		out.Stages[stage] = StageSLA{Duration: durations[stage], Classification: c}
		if c == Breached {
			out.AnyBreach = true
		}
	}
	return out
}
