package application

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	domain "aeroledger/internal/report/domain"
)

// Config tunes report generation. Values come from defaults, optionally
// overridden by a yaml file pointed at by REPORT_CONFIG.
type Config struct {
	// ATSCutoff is the amortization-start cutoff for the ATS report
	// variant, formatted 2006-01-02.
	ATSCutoff string `yaml:"ats_cutoff"`
	// DefaultYearFilter applies when the request omits the year parameter.
	DefaultYearFilter string `yaml:"default_year_filter"`
}

// LoadConfig loads report config from yaml or defaults.
func LoadConfig() (Config, error) {
	cfg := Config{
		ATSCutoff:         domain.DefaultATSCutoff.Format("2006-01-02"),
		DefaultYearFilter: domain.YearFilterCurrent,
	}

	if path := os.Getenv("REPORT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if _, err := cfg.CutoffTime(); err != nil {
		return cfg, err
	}
	if cfg.DefaultYearFilter != domain.YearFilterCurrent && cfg.DefaultYearFilter != domain.YearFilterAll {
		return cfg, fmt.Errorf("report config: invalid default_year_filter %q", cfg.DefaultYearFilter)
	}
	return cfg, nil
}

// CutoffTime parses the configured ATS cutoff.
func (c Config) CutoffTime() (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", c.ATSCutoff)
	if err != nil {
		return time.Time{}, fmt.Errorf("report config: invalid ats_cutoff %q: %w", c.ATSCutoff, err)
	}
	return parsed, nil
}
