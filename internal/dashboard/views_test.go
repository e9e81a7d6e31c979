package dashboard

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/covidlens/internal/config"
	"github.com/leapstack-labs/covidlens/internal/engine"
	perrors "github.com/leapstack-labs/covidlens/internal/errors"
	"github.com/leapstack-labs/covidlens/internal/testutil"
	"github.com/leapstack-labs/covidlens/pkg/core"
)

const doses = "total_doses_administered"

func day(d int) time.Time {
	return time.Date(2021, 1, d, 0, 0, 0, 0, time.UTC)
}

// testResult builds a result with regions A and B over three days.
func testResult() *engine.Result {
	rows := []core.Row{
		{Date: day(1), Values: map[string]float64{
			"Confirmed_A": 10, "Recovered_A": 2, "Deceased_A": 1,
			"Confirmed_B": 5, "Recovered_B": 1, "Deceased_B": 0,
			"A_cases_per_million": 10, "B_cases_per_million": 5e6,
			"A_vacc_per_million": 0, "B_vacc_per_million": 0,
			doses: 100,
		}},
		{Date: day(2), Values: map[string]float64{
			"Confirmed_A": 20, "Recovered_A": 5, "Deceased_A": 1,
			"Confirmed_B": 7, "Recovered_B": 2, "Deceased_B": 1,
			"A_cases_per_million": 20, "B_cases_per_million": 7e6,
			"A_vacc_per_million": 0, "B_vacc_per_million": 0,
			doses: 300,
		}},
		{Date: day(3), Values: map[string]float64{
			"Confirmed_A": 30, "Recovered_A": 9, "Deceased_A": 2,
			"Confirmed_B": 9, "Recovered_B": 4, "Deceased_B": 1,
			"A_cases_per_million": 30, "B_cases_per_million": 9e6,
			"A_vacc_per_million": 0, "B_vacc_per_million": 0,
			doses: 350,
		}},
	}
	return &engine.Result{
		Regions:  []string{"A", "B"},
		Statuses: []core.Status{core.StatusConfirmed, core.StatusRecovered, core.StatusDeceased},
		Table: &core.Table{
			Columns: []string{
				"Confirmed_A", "Confirmed_B", "Recovered_A", "Recovered_B", "Deceased_A", "Deceased_B", doses,
				"A_cases_per_million", "A_vacc_per_million", "B_cases_per_million", "B_vacc_per_million",
			},
			Rows: rows,
		},
	}
}

func all() Selection {
	return Selection{Regions: []string{"A", "B"}}
}

func TestKinds_AllRegistered(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 11)
	assert.Len(t, registry, len(kinds))
	for _, k := range kinds {
		_, ok := registry[k]
		assert.True(t, ok, "view %s has no render function", k)
	}
}

func TestParseViewKind(t *testing.T) {
	k, err := ParseViewKind("Cases-Per-Million")
	require.NoError(t, err)
	assert.Equal(t, CasesPerMillion, k)

	_, err = ParseViewKind("forecast")
	require.Error(t, err)
	assert.Equal(t, perrors.CodeUnknownView, perrors.GetCode(err))
}

func TestViewKind_Title(t *testing.T) {
	assert.Equal(t, "Key Metrics", KeyMetrics.Title())
	assert.Equal(t, "Vacc Per Million", VaccPerMillion.Title())
}

func TestRender_KeyMetrics(t *testing.T) {
	v, err := Render(KeyMetrics, testResult(), all(), doses)
	require.NoError(t, err)

	assert.Equal(t, "Key Metrics", v.Title)
	assert.Equal(t, []Metric{
		{Label: "Total Confirmed", Value: 81},
		{Label: "Total Recovered", Value: 23},
		{Label: "Total Deaths", Value: 6},
		{Label: "Total Vaccinations", Value: 0},
	}, v.Metrics)
}

func TestRender_KeyMetrics_DateRange(t *testing.T) {
	sel := Selection{Regions: []string{"A"}, From: day(2), To: day(3)}
	v, err := Render(KeyMetrics, testResult(), sel, doses)
	require.NoError(t, err)
	assert.Equal(t, 50.0, v.Metrics[0].Value)
}

func TestRender_StatusTrends(t *testing.T) {
	for kind, want := range map[ViewKind][]float64{
		ConfirmedTrend: {10, 20, 30},
		RecoveredTrend: {2, 5, 9},
		DeceasedTrend:  {1, 1, 2},
		ActiveTrend:    {7, 14, 19},
	} {
		v, err := Render(kind, testResult(), Selection{Regions: []string{"A"}}, doses)
		require.NoError(t, err, kind)
		require.Len(t, v.Series, 1)
		assert.Equal(t, "A", v.Series[0].Name)

		var got []float64
		for _, p := range v.Series[0].Points {
			got = append(got, p.Value)
		}
		assert.Equal(t, want, got, kind)
	}
}

func TestRender_ActiveTrend_UsesSourceColumn(t *testing.T) {
	res := testResult()
	res.Table = res.Table.WithColumns([]string{"Active_A"}, map[string][]float64{"Active_A": {1, 2, 3}})

	v, err := Render(ActiveTrend, res, Selection{Regions: []string{"A"}}, doses)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v.Series[0].Points[2].Value)
}

func TestRender_VaccinationTrend_National(t *testing.T) {
	v, err := Render(VaccinationTrend, testResult(), all(), doses)
	require.NoError(t, err)
	require.Len(t, v.Series, 1)
	assert.Equal(t, "All regions", v.Series[0].Name)
	assert.Equal(t, 350.0, v.Series[0].Points[2].Value)
}

func TestRender_VaccinationTrend_Regional(t *testing.T) {
	res := testResult()
	res.Table = res.Table.WithColumns([]string{"A_" + doses}, map[string][]float64{"A_" + doses: {1, 2, 3}})

	v, err := Render(VaccinationTrend, res, all(), doses)
	require.NoError(t, err)
	require.Len(t, v.Series, 1)
	assert.Equal(t, "A", v.Series[0].Name)

	km, err := Render(KeyMetrics, res, all(), doses)
	require.NoError(t, err)
	assert.Equal(t, 6.0, km.Metrics[3].Value)
}

func TestRender_PerMillion(t *testing.T) {
	v, err := Render(CasesPerMillion, testResult(), all(), doses)
	require.NoError(t, err)
	require.Len(t, v.Series, 2)
	assert.Equal(t, 9e6, v.Series[1].Points[2].Value)

	_, err = Render(VaccPerMillion, testResult(), all(), doses)
	assert.NoError(t, err)
}

func TestRender_RegionComparison(t *testing.T) {
	v, err := Render(RegionComparison, testResult(), Selection{Regions: []string{"A", "B"}, To: day(2)}, doses)
	require.NoError(t, err)

	assert.Equal(t, day(2), v.AsOf)
	assert.Equal(t, []string{"Confirmed", "Recovered", "Deceased"}, v.Groups)
	assert.Equal(t, []Bar{
		{Label: "A", Values: []float64{20, 5, 1}},
		{Label: "B", Values: []float64{7, 2, 1}},
	}, v.Bars)
}

func TestRender_Correlation(t *testing.T) {
	v, err := Render(Correlation, testResult(), all(), doses)
	require.NoError(t, err)
	require.NotNil(t, v.Matrix)

	assert.Equal(t, []string{"Confirmed", "Recovered", "Deceased", "Vaccinations"}, v.Matrix.Labels)
	for i := range v.Matrix.Labels {
		assert.InDelta(t, 1.0, v.Matrix.Values[i][i], 1e-12)
		for j := range v.Matrix.Labels {
			assert.Equal(t, v.Matrix.Values[i][j], v.Matrix.Values[j][i])
		}
	}

	_, err = Render(Correlation, testResult(), Selection{Regions: []string{"A"}, From: day(3)}, doses)
	assert.Equal(t, perrors.CodeEmptySelection, perrors.GetCode(err))
}

func TestRender_Map(t *testing.T) {
	res := testResult()

	_, err := Render(Map, res, all(), doses)
	assert.Equal(t, perrors.CodeEmptySelection, perrors.GetCode(err), "no boundaries loaded")

	res.GeoErr = perrors.NewFileNotFound("states.geojson", errors.New("missing"))
	_, err = Render(Map, res, all(), doses)
	assert.Equal(t, perrors.CodeFileNotFound, perrors.GetCode(err), "boundary failure surfaces in the map view only")

	_, err = Render(KeyMetrics, res, all(), doses)
	assert.NoError(t, err)
}

func TestRender_SchemaChecksInEveryView(t *testing.T) {
	res := testResult()
	res.Regions = append(res.Regions, "C") // known region without columns

	for _, kind := range Kinds() {
		if kind == Map {
			continue
		}
		if kind == VaccinationTrend {
			// falls back to the national column
			continue
		}
		_, err := Render(kind, res, Selection{Regions: []string{"C"}}, doses)
		require.Error(t, err, kind)
		assert.Equal(t, perrors.ErrCategorySchema, perrors.GetCategory(err), kind)
		assert.Equal(t, perrors.CodeMissingColumn, perrors.GetCode(err), kind)
	}
}

func TestRender_UnknownView(t *testing.T) {
	_, err := Render("forecast", testResult(), all(), doses)
	assert.Equal(t, perrors.CodeUnknownView, perrors.GetCode(err))
}

func TestSelection(t *testing.T) {
	res := testResult()

	t.Run("unknown region", func(t *testing.T) {
		_, err := Render(KeyMetrics, res, Selection{Regions: []string{"A", "Atlantis"}}, doses)
		require.Error(t, err)
		assert.Equal(t, perrors.ErrCategorySchema, perrors.GetCategory(err))
		assert.Equal(t, perrors.CodeUnknownRegion, perrors.GetCode(err))
		assert.Contains(t, err.Error(), "Atlantis")
	})

	t.Run("no regions", func(t *testing.T) {
		_, err := Render(KeyMetrics, res, Selection{}, doses)
		assert.Equal(t, perrors.CodeEmptySelection, perrors.GetCode(err))
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := Render(KeyMetrics, res, Selection{Regions: []string{"A"}, From: day(3), To: day(1)}, doses)
		assert.Equal(t, perrors.CodeEmptySelection, perrors.GetCode(err))
	})

	t.Run("range without data", func(t *testing.T) {
		_, err := Render(KeyMetrics, res, Selection{Regions: []string{"A"}, From: day(10)}, doses)
		assert.Equal(t, perrors.CodeEmptySelection, perrors.GetCode(err))
	})
}

func TestDefaultSelection(t *testing.T) {
	res := testResult()

	sel := DefaultSelection(res, config.DashboardConfig{DefaultRegions: 5})
	assert.Equal(t, []string{"A", "B"}, sel.Regions)
	assert.Equal(t, day(1), sel.From)
	assert.Equal(t, day(3), sel.To)

	sel = DefaultSelection(res, config.DashboardConfig{DefaultRegions: 1})
	assert.Equal(t, []string{"A"}, sel.Regions)

	sel = DefaultSelection(res, config.DashboardConfig{Regions: []string{"B"}})
	assert.Equal(t, []string{"B"}, sel.Regions)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2021-01-02")
	require.NoError(t, err)
	assert.Equal(t, day(2), d)

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("02-01-2021")
	assert.Error(t, err)
}

func TestPearson(t *testing.T) {
	assert.InDelta(t, 1.0, Pearson([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.InDelta(t, -1.0, Pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	assert.True(t, math.IsNaN(Pearson([]float64{1, 1, 1}, []float64{1, 2, 3})))
	assert.True(t, math.IsNaN(Pearson([]float64{1}, []float64{1})))
	assert.True(t, math.IsNaN(Pearson([]float64{1, 2}, []float64{1})))
}

func TestRender_SamplePipeline(t *testing.T) {
	pc := config.Default()
	pc.DataDir = testutil.SampleDataDir(t)
	e, err := engine.New(engine.Config{Pipeline: pc, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	defer e.Close()

	res, err := e.Run(context.Background())
	require.NoError(t, err)

	sel := DefaultSelection(res, pc.Dashboard)
	assert.Equal(t, []string{"Kerala", "Goa", "Delhi", "Maharashtra", "Punjab"}, sel.Regions)

	metric := core.MetricName(pc.Vaccination.DosesColumn)
	for _, kind := range Kinds() {
		v, err := Render(kind, res, sel, metric)
		require.NoError(t, err, kind)
		assert.Equal(t, kind, v.Kind)
	}

	v, err := Render(Map, res, sel, metric)
	require.NoError(t, err)
	require.Len(t, v.Markers, 3)
	assert.Equal(t, 15.0, v.Markers[1].Value)
	assert.False(t, v.Markers[2].Matched, "NCT of Delhi does not match Delhi")
}
