// Package slaconfig loads per-stage SLA thresholds from a YAML file.
package slaconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pioneerbroadband/leadtracker/internal/analytics"
)

type fileFormat struct {
	Thresholds struct {
		Survey      *float64 `yaml:"survey"`
		Scheduling  *float64 `yaml:"scheduling"`
		InstallWait *float64 `yaml:"install_wait"`
	} `yaml:"thresholds"`
}

// Load reads thresholds from path. A missing path (or empty string)
// yields the defaults; stages absent from the file keep their default.
// Negative thresholds are rejected.
func Load(path string) (analytics.Thresholds, error) {
	th := analytics.DefaultThresholds()
	if path == "" {
		return th, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return th, nil
		}
		return nil, fmt.Errorf("slaconfig: read %s: %w", path, err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("slaconfig: parse %s: %w", path, err)
	}
	apply := func(stage analytics.Stage, v *float64) error {
		if v == nil {
			return nil
		}
		if *v < 0 {
			return fmt.Errorf("slaconfig: %s threshold must not be negative", stage)
		}
		th[stage] = *v
		return nil
	}
	if err := apply(analytics.StageSurvey, f.Thresholds.Survey); err != nil {
		return nil, err
	}
	if err := apply(analytics.StageScheduling, f.Thresholds.Scheduling); err != nil {
		return nil, err
	}
	if err := apply(analytics.StageInstallWait, f.Thresholds.InstallWait); err != nil {
		return nil, err
	}
	return th, nil
}
