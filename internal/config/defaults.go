package config

// Default configuration values.
const (
	DefaultDataDir         = "data"
	DefaultCasesFile       = "covid_cases.csv"
	DefaultVaccinationFile = "vaccination.csv"
	DefaultPopulationFile  = "population.csv"
	DefaultBoundariesFile  = "states_geojson.geojson"

	DefaultCasesDateColumn   = "Date"
	DefaultCasesStatusColumn = "Status"

	DefaultVaccinationDateColumn   = "Updated On"
	DefaultVaccinationRegionColumn = "State"
	DefaultVaccinationGroupBy      = "date"
	DefaultDosesColumn             = "Total Doses Administered"

	DefaultPopulationRegionColumn = "State"
	DefaultPopulationValueColumn  = "Population"
	DefaultOnMissingPopulation    = "default"
	DefaultPopulationDivisor      = 1.0

	DefaultGeoNameProperty  = "ST_NM"
	DefaultDashboardRegions = 5
	DefaultDatabasePath     = ":memory:"
)

// DefaultExcludeColumns lists wide case columns that are not regions.
func DefaultExcludeColumns() []string {
	return []string{"Date_YMD"}
}

// DefaultDateFormats lists the accepted date layouts (strptime syntax), day-first first.
// Two-digit years come before four-digit ones: DuckDB's %Y also accepts "20" and
// would read 14-03-20 as year 20, while %y rejects a trailing "2020".
func DefaultDateFormats() []string {
	return []string{
		"%d-%m-%y", "%d/%m/%y", "%d-%m-%Y", "%d/%m/%Y",
		"%d-%b-%y", "%d-%b-%Y", "%d.%m.%Y",
		"%Y-%m-%d", "%Y-%m-%d %H:%M:%S",
	}
}

// DefaultDatabaseParams keeps DuckDB on one thread, matching the single-threaded pipeline.
func DefaultDatabaseParams() map[string]any {
	return map[string]any{
		"settings": map[string]any{"threads": "1"},
	}
}

// Default returns a PipelineConfig with every default applied.
func Default() *PipelineConfig {
	c := &PipelineConfig{}
	ApplyDefaults(c)
	return c
}

// DefaultsMap returns the defaults keyed by their koanf path, for use as the lowest config layer.
func DefaultsMap() map[string]any {
	return map[string]any{
		"data_dir":                  DefaultDataDir,
		"files.cases":               DefaultCasesFile,
		"files.vaccination":         DefaultVaccinationFile,
		"files.population":          DefaultPopulationFile,
		"files.boundaries":          DefaultBoundariesFile,
		"cases.date_column":         DefaultCasesDateColumn,
		"cases.status_column":       DefaultCasesStatusColumn,
		"cases.exclude_columns":     DefaultExcludeColumns(),
		"vaccination.date_column":   DefaultVaccinationDateColumn,
		"vaccination.region_column": DefaultVaccinationRegionColumn,
		"vaccination.group_by":      DefaultVaccinationGroupBy,
		"vaccination.doses_column":  DefaultDosesColumn,
		"population.region_column":  DefaultPopulationRegionColumn,
		"population.value_column":   DefaultPopulationValueColumn,
		"population.on_missing":     DefaultOnMissingPopulation,
		"population.default":        DefaultPopulationDivisor,
		"date_formats":              DefaultDateFormats(),
		"geo.name_property":         DefaultGeoNameProperty,
		"dashboard.default_regions": DefaultDashboardRegions,
		"database.path":             DefaultDatabasePath,
		"database.params":           DefaultDatabaseParams(),
	}
}

// ApplyDefaults fills every unset field of c with its default value.
// Files.Boundaries is only defaulted together with the other file names,
// so an explicit empty value in a fully specified config disables the map.
func ApplyDefaults(c *PipelineConfig) {
	if c == nil {
		return
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.Files == (FilesConfig{}) {
		c.Files.Boundaries = DefaultBoundariesFile
	}
	if c.Files.Cases == "" {
		c.Files.Cases = DefaultCasesFile
	}
	if c.Files.Vaccination == "" {
		c.Files.Vaccination = DefaultVaccinationFile
	}
	if c.Files.Population == "" {
		c.Files.Population = DefaultPopulationFile
	}
	if c.Cases.DateColumn == "" {
		c.Cases.DateColumn = DefaultCasesDateColumn
	}
	if c.Cases.StatusColumn == "" {
		c.Cases.StatusColumn = DefaultCasesStatusColumn
	}
	if c.Cases.ExcludeColumns == nil {
		c.Cases.ExcludeColumns = DefaultExcludeColumns()
	}
	if c.Vaccination.DateColumn == "" {
		c.Vaccination.DateColumn = DefaultVaccinationDateColumn
	}
	if c.Vaccination.RegionColumn == "" {
		c.Vaccination.RegionColumn = DefaultVaccinationRegionColumn
	}
	if c.Vaccination.GroupBy == "" {
		c.Vaccination.GroupBy = DefaultVaccinationGroupBy
	}
	if c.Vaccination.DosesColumn == "" {
		c.Vaccination.DosesColumn = DefaultDosesColumn
	}
	if c.Population.RegionColumn == "" {
		c.Population.RegionColumn = DefaultPopulationRegionColumn
	}
	if c.Population.ValueColumn == "" {
		c.Population.ValueColumn = DefaultPopulationValueColumn
	}
	if c.Population.OnMissing == "" {
		c.Population.OnMissing = DefaultOnMissingPopulation
	}
	if c.Population.Default == 0 {
		c.Population.Default = DefaultPopulationDivisor
	}
	if len(c.DateFormats) == 0 {
		c.DateFormats = DefaultDateFormats()
	}
	if c.Geo.NameProperty == "" {
		c.Geo.NameProperty = DefaultGeoNameProperty
	}
	if c.Dashboard.DefaultRegions == 0 {
		c.Dashboard.DefaultRegions = DefaultDashboardRegions
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Database.Params == nil {
		c.Database.Params = DefaultDatabaseParams()
	}
}
