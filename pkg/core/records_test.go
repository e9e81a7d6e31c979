package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_IsKnown(t *testing.T) {
	for _, s := range KnownStatuses {
		assert.True(t, s.IsKnown(), s)
	}
	assert.False(t, Status("confirmed").IsKnown(), "statuses are case sensitive")
	assert.False(t, Status("Migrated").IsKnown())
}

func TestColumnNames(t *testing.T) {
	assert.Equal(t, "Confirmed_Kerala", CaseColumn(StatusConfirmed, "Kerala"))
	assert.Equal(t, "Tamil Nadu_cases_per_million", CasesPerMillionColumn("Tamil Nadu"))
	assert.Equal(t, "Goa_vacc_per_million", VaccPerMillionColumn("Goa"))
	assert.Equal(t, "Goa_total_doses_administered", RegionMetricColumn("Goa", "total_doses_administered"))
}

func TestMetricName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Total Doses Administered", "total_doses_administered"},
		{"  First Dose Administered ", "first_dose_administered"},
		{"Male (Doses)", "male_doses"},
		{"18-44 Years", "18_44_years"},
		{"already_snake", "already_snake"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MetricName(tt.in))
		})
	}
}

func TestParseMissingPopulationPolicy(t *testing.T) {
	for in, want := range map[string]MissingPopulationPolicy{
		"":        MissingPopulationDefault,
		"default": MissingPopulationDefault,
		"reject":  MissingPopulationReject,
		"skip":    MissingPopulationSkip,
	} {
		got, err := ParseMissingPopulationPolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseMissingPopulationPolicy("ignore")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ignore")
}

func TestParseVaccinationGrouping(t *testing.T) {
	for in, want := range map[string]VaccinationGrouping{
		"":            GroupByDate,
		"date":        GroupByDate,
		"date_region": GroupByDateRegion,
	} {
		got, err := ParseVaccinationGrouping(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseVaccinationGrouping("region")
	assert.Error(t, err)
}
