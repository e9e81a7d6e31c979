package config

import (
	"fmt"

	"github.com/leapstack-labs/covidlens/pkg/core"
)

// Validate checks that the pipeline configuration is usable.
func (c *PipelineConfig) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Files.Cases == "" || c.Files.Vaccination == "" || c.Files.Population == "" {
		return fmt.Errorf("files.cases, files.vaccination and files.population are required")
	}
	if (c.Cases.RegionColumn == "") != (c.Cases.CountColumn == "") {
		return fmt.Errorf("cases.region_column and cases.count_column must be set together")
	}
	if _, err := core.ParseVaccinationGrouping(c.Vaccination.GroupBy); err != nil {
		return fmt.Errorf("vaccination.group_by: %w", err)
	}
	if _, err := core.ParseMissingPopulationPolicy(c.Population.OnMissing); err != nil {
		return fmt.Errorf("population.on_missing: %w", err)
	}
	if c.Population.Default <= 0 {
		return fmt.Errorf("population.default must be positive, got %v", c.Population.Default)
	}
	if len(c.DateFormats) == 0 {
		return fmt.Errorf("date_formats must list at least one format")
	}
	if c.Dashboard.DefaultRegions < 0 {
		return fmt.Errorf("dashboard.default_regions must not be negative")
	}
	return nil
}

// Policy returns the parsed missing-population policy.
func (c *PipelineConfig) Policy() core.MissingPopulationPolicy {
	p, err := core.ParseMissingPopulationPolicy(c.Population.OnMissing)
	if err != nil {
		return core.MissingPopulationDefault
	}
	return p
}

// Grouping returns the parsed vaccination grouping.
func (c *PipelineConfig) Grouping() core.VaccinationGrouping {
	g, err := core.ParseVaccinationGrouping(c.Vaccination.GroupBy)
	if err != nil {
		return core.GroupByDate
	}
	return g
}

// DosesMetric returns the snake_case metric name of the doses column.
func (c *PipelineConfig) DosesMetric() string {
	return core.MetricName(c.Vaccination.DosesColumn)
}
