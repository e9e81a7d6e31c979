package core

import (
	"strings"
	"time"
	"unicode"
)

// Status is the case category carried by the Status column of the case file.
type Status string

// Known case statuses.
const (
	StatusConfirmed Status = "Confirmed"
	StatusRecovered Status = "Recovered"
	StatusDeceased  Status = "Deceased"
	StatusActive    Status = "Active"
)

// KnownStatuses lists the statuses in display order.
var KnownStatuses = []Status{StatusConfirmed, StatusRecovered, StatusDeceased, StatusActive}

// IsKnown reports whether s is one of the statuses the dashboard understands.
func (s Status) IsKnown() bool {
	for _, k := range KnownStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// CaseColumn returns the wide column name for a status/region pair: "{status}_{region}".
func CaseColumn(status Status, region string) string {
	return string(status) + "_" + region
}

// CasesPerMillionColumn names the derived cases-per-million column of a region.
func CasesPerMillionColumn(region string) string {
	return region + "_cases_per_million"
}

// VaccPerMillionColumn names the derived vaccinations-per-million column of a region.
func VaccPerMillionColumn(region string) string {
	return region + "_vacc_per_million"
}

// RegionMetricColumn names a region-scoped vaccination metric, e.g. "Kerala_total_doses_administered".
func RegionMetricColumn(region, metric string) string {
	return region + "_" + metric
}

// MetricName turns a source column header into a snake_case metric name:
// "Total Doses Administered" becomes "total_doses_administered".
func MetricName(column string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.TrimSpace(column) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if underscore && b.Len() > 0 {
				b.WriteByte('_')
			}
			underscore = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		underscore = true
	}
	return b.String()
}

// CaseRecord is one long-format observation: a count for a region and status on a date.
// For a given (Date, Region) there is at most one record per Status.
type CaseRecord struct {
	Date   time.Time
	Region string
	Status Status
	Count  float64
}

// VaccinationRecord is one row of the vaccination file.
// Region is empty for national rows.
type VaccinationRecord struct {
	Date       time.Time
	Region     string
	TotalDoses float64
	FirstDose  float64
	SecondDose float64
}

// PopulationRecord maps a region to its population.
type PopulationRecord struct {
	Region     string
	Population float64
}
