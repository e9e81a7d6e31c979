// Package derive computes the per-million metrics of the merged table.
//
// For each region:
//
//	{region}_cases_per_million = Confirmed_{region} / population(region) * 1e6
//	{region}_vacc_per_million  = {region}_{doses metric} / population(region) * 1e6
//
// A region absent from the population lookup is handled by the configured
// MissingPopulationPolicy. Under the default policy the divisor is the configured
// default (1), so per-million values of such regions are raw counts times one million.
package derive

import (
	"fmt"
	"log/slog"

	perrors "github.com/leapstack-labs/covidlens/internal/errors"
	"github.com/leapstack-labs/covidlens/pkg/core"
)

// PerMillion is the scale of the normalized metrics.
const PerMillion = 1_000_000

// Population is the region -> population lookup.
type Population map[string]float64

// NewPopulation builds the lookup from population records.
// The last record of a region wins. A record without a positive population
// leaves its region unknown, even when an earlier record had a value, and is
// reported through skipped.
func NewPopulation(records []core.PopulationRecord) (pop Population, skipped []string) {
	pop = make(Population, len(records))
	for _, r := range records {
		if r.Region == "" {
			continue
		}
		if r.Population <= 0 {
			delete(pop, r.Region)
			skipped = append(skipped, r.Region)
			continue
		}
		pop[r.Region] = r.Population
	}
	return pop, skipped
}

// Lookup returns the population of region and whether it is known.
func (p Population) Lookup(region string) (float64, bool) {
	v, ok := p[region]
	return v, ok
}

// Options configure the deriver.
type Options struct {
	Policy core.MissingPopulationPolicy
	// Default is the divisor used under MissingPopulationDefault (1 when zero).
	Default float64
	// DosesMetric is the snake_case vaccination metric read as "{region}_{DosesMetric}".
	DosesMetric string
	Logger      *slog.Logger
}

// Result is the derived table plus the regions the population lookup did not cover.
type Result struct {
	Table *core.Table
	// Defaulted lists regions divided by the default divisor.
	Defaulted []string
	// Skipped lists regions left without per-million columns.
	Skipped []string
}

// Derive returns a copy of merged extended with the per-million columns of every region.
// The input table is not modified. A missing confirmed or doses column reads as 0.
func Derive(merged *core.Table, regions []string, pop Population, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	policy := opts.Policy
	if policy == "" {
		policy = core.MissingPopulationDefault
	}
	divisor := opts.Default
	if divisor == 0 {
		divisor = 1
	}

	res := &Result{}
	var names []string
	values := make(map[string][]float64)

	for _, region := range regions {
		p, ok := pop.Lookup(region)
		if !ok {
			switch policy {
			case core.MissingPopulationReject:
				return nil, perrors.NewMissingPopulation(region)
			case core.MissingPopulationSkip:
				logger.Debug("skipping region without population", "region", region)
				res.Skipped = append(res.Skipped, region)
				continue
			case core.MissingPopulationDefault:
				logger.Debug("using default population divisor", "region", region, "divisor", divisor)
				res.Defaulted = append(res.Defaulted, region)
				p = divisor
			default:
				return nil, fmt.Errorf("unknown missing-population policy %q", policy)
			}
		}

		casesCol := core.CasesPerMillionColumn(region)
		vaccCol := core.VaccPerMillionColumn(region)
		confirmed := merged.Column(core.CaseColumn(core.StatusConfirmed, region))
		doses := merged.Column(core.RegionMetricColumn(region, opts.DosesMetric))

		values[casesCol] = scale(confirmed, p)
		values[vaccCol] = scale(doses, p)
		names = append(names, casesCol, vaccCol)
	}

	res.Table = merged.WithColumns(names, values)
	return res, nil
}

// scale computes v / pop * 1e6 for every value, in that order.
func scale(vs []float64, pop float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = v / pop * PerMillion
	}
	return out
}
