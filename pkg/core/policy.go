package core

import "fmt"

// MissingPopulationPolicy decides what the metric deriver does for a region
// that has no entry in the population table.
type MissingPopulationPolicy string

const (
	// MissingPopulationDefault divides by the configured default (1 unless overridden).
	// Per-million values for such regions are therefore raw counts times one million.
	MissingPopulationDefault MissingPopulationPolicy = "default"
	// MissingPopulationReject fails the derivation with a lookup error.
	MissingPopulationReject MissingPopulationPolicy = "reject"
	// MissingPopulationSkip omits the per-million columns of the region.
	MissingPopulationSkip MissingPopulationPolicy = "skip"
)

// ParseMissingPopulationPolicy validates a policy name. The empty string selects the default policy.
func ParseMissingPopulationPolicy(s string) (MissingPopulationPolicy, error) {
	switch MissingPopulationPolicy(s) {
	case "", MissingPopulationDefault:
		return MissingPopulationDefault, nil
	case MissingPopulationReject, MissingPopulationSkip:
		return MissingPopulationPolicy(s), nil
	}
	return "", fmt.Errorf("unknown missing-population policy %q (want default, reject or skip)", s)
}

// VaccinationGrouping selects the grouping key of the vaccination aggregation.
type VaccinationGrouping string

const (
	// GroupByDate sums every vaccination row of a date into one national row.
	// Region detail is lost.
	GroupByDate VaccinationGrouping = "date"
	// GroupByDateRegion keeps one "{region}_{metric}" column per region.
	GroupByDateRegion VaccinationGrouping = "date_region"
)

// ParseVaccinationGrouping validates a grouping name. The empty string selects GroupByDate.
func ParseVaccinationGrouping(s string) (VaccinationGrouping, error) {
	switch VaccinationGrouping(s) {
	case "", GroupByDate:
		return GroupByDate, nil
	case GroupByDateRegion:
		return GroupByDateRegion, nil
	}
	return "", fmt.Errorf("unknown vaccination grouping %q (want date or date_region)", s)
}
