// Package config provides the pipeline configuration shared by covidlens.
// This package is decoupled from CLI concerns and can be used by the engine,
// the dashboard, and tests that need to describe a data directory.
package config

import (
	"path/filepath"
)

// FilesConfig names the input files inside the data directory.
type FilesConfig struct {
	Cases       string `koanf:"cases"`
	Vaccination string `koanf:"vaccination"`
	Population  string `koanf:"population"`
	// Boundaries is the GeoJSON file of region polygons. Empty disables the map.
	Boundaries string `koanf:"boundaries"`
}

// CasesConfig describes the layout of the case file.
//
// The default layout is wide: one row per (date, status) with one count column
// per region. Setting RegionColumn and CountColumn switches to long input with
// one row per (date, region, status).
type CasesConfig struct {
	DateColumn     string   `koanf:"date_column"`
	StatusColumn   string   `koanf:"status_column"`
	RegionColumn   string   `koanf:"region_column"`
	CountColumn    string   `koanf:"count_column"`
	ExcludeColumns []string `koanf:"exclude_columns"` // non-region columns of the wide layout
}

// IsLong reports whether the case file is in long format.
func (c CasesConfig) IsLong() bool {
	return c.RegionColumn != "" && c.CountColumn != ""
}

// VaccinationConfig describes the vaccination file and its aggregation.
type VaccinationConfig struct {
	DateColumn   string `koanf:"date_column"`
	RegionColumn string `koanf:"region_column"`
	GroupBy      string `koanf:"group_by"` // date | date_region
	DosesColumn  string `koanf:"doses_column"`
}

// PopulationConfig describes the population file and the missing-region policy.
type PopulationConfig struct {
	RegionColumn string  `koanf:"region_column"`
	ValueColumn  string  `koanf:"value_column"`
	OnMissing    string  `koanf:"on_missing"` // default | reject | skip
	Default      float64 `koanf:"default"`
}

// GeoConfig describes the boundary file.
type GeoConfig struct {
	NameProperty string `koanf:"name_property"`
}

// DashboardConfig holds the initial selection of the presentation layer.
type DashboardConfig struct {
	DefaultRegions int      `koanf:"default_regions"`
	Regions        []string `koanf:"regions"`
}

// DatabaseConfig holds the session database settings.
type DatabaseConfig struct {
	Path string `koanf:"path"`

	// Params holds adapter-specific configuration (settings, extensions)
	Params map[string]any `koanf:"params"`
}

// PipelineConfig holds everything the pipeline needs to turn a data directory
// into the merged table.
type PipelineConfig struct {
	DataDir     string            `koanf:"data_dir"`
	Files       FilesConfig       `koanf:"files"`
	Cases       CasesConfig       `koanf:"cases"`
	Vaccination VaccinationConfig `koanf:"vaccination"`
	Population  PopulationConfig  `koanf:"population"`
	DateFormats []string          `koanf:"date_formats"`
	Geo         GeoConfig         `koanf:"geo"`
	Dashboard   DashboardConfig   `koanf:"dashboard"`
	Database    DatabaseConfig    `koanf:"database"`
}

// Path returns the location of a file inside the data directory.
// Absolute names are returned unchanged.
func (c *PipelineConfig) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}
