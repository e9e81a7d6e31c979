package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/covidlens/internal/config"
	perrors "github.com/leapstack-labs/covidlens/internal/errors"
	"github.com/leapstack-labs/covidlens/internal/testutil"
	"github.com/leapstack-labs/covidlens/pkg/core"
)

// prepare loads and normalizes the inputs of e.
func prepare(t *testing.T, e *Engine) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.LoadInputs(ctx))
	_, err := e.NormalizeDates(ctx, TableRawCases, e.cfg.Cases.DateColumn)
	require.NoError(t, err)
	_, err = e.NormalizeDates(ctx, TableRawVaccination, e.cfg.Vaccination.DateColumn)
	require.NoError(t, err)
}

func TestBuildCaseRecords_Wide(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testutil.SampleDataDir(t), nil)
	prepare(t, e)

	regions, err := e.BuildCaseRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kerala", "Goa", "Delhi", "Maharashtra", "Punjab", "Sikkim"}, regions,
		"regions follow column order and skip Date_YMD")

	n, err := e.countRows(ctx, TableCaseRecords)
	require.NoError(t, err)
	assert.Equal(t, int64(9*6), n)

	statuses, err := e.CaseStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Status{core.StatusConfirmed, core.StatusRecovered, core.StatusDeceased}, statuses)
}

func TestBuildCaseRecords_Long(t *testing.T) {
	ctx := context.Background()
	dir := testutil.WriteDataDir(t, testutil.DataDir{
		Cases: testutil.CasesLongCSV([]core.CaseRecord{
			{Date: date(2021, 1, 1), Region: "StateB", Status: core.StatusConfirmed, Count: 4},
			{Date: date(2021, 1, 1), Region: "StateA", Status: core.StatusConfirmed, Count: 10},
			{Date: date(2021, 1, 1), Region: "StateA", Status: core.StatusRecovered, Count: 2},
		}),
		Vaccination: "Updated On,State\n",
		Population:  "State,Population\n",
	})
	e := newTestEngine(t, dir, func(c *config.PipelineConfig) {
		c.Cases.RegionColumn = "State"
		c.Cases.CountColumn = "Count"
	})
	prepare(t, e)

	regions, err := e.BuildCaseRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"StateA", "StateB"}, regions)

	records, err := e.caseRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "StateA", records[0].Region)
	assert.Equal(t, core.StatusConfirmed, records[0].Status)
	assert.Equal(t, 10.0, records[0].Count)
}

func TestBuildCaseRecords_MissingStatusColumn(t *testing.T) {
	dir := testutil.WriteDataDir(t, testutil.DataDir{
		Cases:       "Date,Kerala\n14-03-2020,1\n",
		Vaccination: "Updated On,State\n",
		Population:  "State,Population\n",
	})
	e := newTestEngine(t, dir, nil)
	prepare(t, e)

	_, err := e.BuildCaseRecords(context.Background())
	require.Error(t, err)
	assert.Equal(t, perrors.CodeMissingColumn, perrors.GetCode(err))
}

func TestPivotCases_ZeroFill(t *testing.T) {
	ctx := context.Background()
	dir := testutil.WriteDataDir(t, testutil.DataDir{
		Cases: testutil.CasesLongCSV([]core.CaseRecord{
			{Date: date(2021, 1, 1), Region: "StateA", Status: core.StatusConfirmed, Count: 10},
			{Date: date(2021, 1, 2), Region: "StateB", Status: core.StatusRecovered, Count: 3},
			{Date: date(2021, 1, 2), Region: "StateB", Status: core.StatusRecovered, Count: 4},
		}),
		Vaccination: "Updated On,State\n",
		Population:  "State,Population\n",
	})
	e := newTestEngine(t, dir, func(c *config.PipelineConfig) {
		c.Cases.RegionColumn = "State"
		c.Cases.CountColumn = "Count"
	})
	prepare(t, e)

	regions, err := e.BuildCaseRecords(ctx)
	require.NoError(t, err)
	statuses, err := e.CaseStatuses(ctx)
	require.NoError(t, err)

	cols, err := e.PivotCases(ctx, regions, statuses)
	require.NoError(t, err)
	assert.Equal(t, []string{"Confirmed_StateA", "Confirmed_StateB", "Recovered_StateA", "Recovered_StateB"}, cols)

	wide, err := e.readTable(ctx, TableWideCases, "date")
	require.NoError(t, err)
	require.Equal(t, 2, wide.Len())

	first, second := wide.Rows[0], wide.Rows[1]
	for _, c := range cols {
		_, ok := first.Get(c)
		assert.True(t, ok, "column %s present", c)
	}
	assert.Equal(t, 10.0, first.Value("Confirmed_StateA"))
	assert.Equal(t, 0.0, first.Value("Recovered_StateB"))
	assert.Equal(t, 7.0, second.Value("Recovered_StateB"), "duplicate records are summed")
	assert.Equal(t, 0.0, second.Value("Confirmed_StateA"))
}

func TestAggregateVaccination_ByDate(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testutil.SampleDataDir(t), nil)
	prepare(t, e)

	cols, err := e.AggregateVaccination(ctx, core.GroupByDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"total_doses_administered", "first_dose_administered", "second_dose_administered"}, cols)

	agg, err := e.readTable(ctx, TableVaccination, "date")
	require.NoError(t, err)
	require.Equal(t, 2, agg.Len())
	assert.Equal(t, date(2020, 3, 14), agg.Rows[0].Date.UTC())
	assert.Equal(t, 450.0, agg.Rows[0].Value("total_doses_administered"))
	assert.Equal(t, 220.0, agg.Rows[1].Value("total_doses_administered"), "same-date rows are summed")
	assert.Equal(t, 65.0, agg.Rows[1].Value("second_dose_administered"))
}

func TestAggregateVaccination_ByDateRegion(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testutil.SampleDataDir(t), nil)
	prepare(t, e)

	cols, err := e.AggregateVaccination(ctx, core.GroupByDateRegion)
	require.NoError(t, err)
	assert.Contains(t, cols, "Kerala_total_doses_administered")
	assert.Contains(t, cols, "India_first_dose_administered")
	assert.Len(t, cols, 9)

	agg, err := e.readTable(ctx, TableVaccination, "date")
	require.NoError(t, err)
	require.Equal(t, 2, agg.Len())
	assert.Equal(t, 100.0, agg.Rows[0].Value("Kerala_total_doses_administered"))
	assert.Equal(t, 160.0, agg.Rows[1].Value("Kerala_total_doses_administered"))
	assert.Equal(t, 0.0, agg.Rows[1].Value("India_total_doses_administered"))
}

func TestAggregateVaccination_SkipsTextColumns(t *testing.T) {
	ctx := context.Background()
	dir := testutil.WriteDataDir(t, testutil.DataDir{
		Cases:       testutil.SampleCases,
		Vaccination: "Updated On,State,Source,Total Doses Administered\n14/03/2020,Kerala,MoHFW,5\n",
		Population:  testutil.SamplePopulation,
	})
	e := newTestEngine(t, dir, nil)
	prepare(t, e)

	cols, err := e.AggregateVaccination(ctx, core.GroupByDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"total_doses_administered"}, cols)
}

func TestMerge_LeftJoinZeroFill(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testutil.SampleDataDir(t), nil)
	prepare(t, e)

	regions, err := e.BuildCaseRecords(ctx)
	require.NoError(t, err)
	statuses, err := e.CaseStatuses(ctx)
	require.NoError(t, err)
	caseCols, err := e.PivotCases(ctx, regions, statuses)
	require.NoError(t, err)
	vaccCols, err := e.AggregateVaccination(ctx, core.GroupByDate)
	require.NoError(t, err)

	require.NoError(t, e.Merge(ctx, caseCols, vaccCols))

	merged, err := e.readTable(ctx, TableMerged, "date")
	require.NoError(t, err)
	require.Equal(t, 3, merged.Len(), "every case date is kept")

	mid := merged.Rows[1]
	assert.Equal(t, date(2020, 3, 15), mid.Date.UTC())
	for _, c := range vaccCols {
		v, ok := mid.Get(c)
		assert.True(t, ok)
		assert.Equal(t, 0.0, v, "%s on a date without vaccination data", c)
	}
	assert.Equal(t, 12.0, mid.Value("Confirmed_Kerala"))
}

func TestMerge_ColumnConflict(t *testing.T) {
	e := newTestEngine(t, testutil.SampleDataDir(t), nil)
	prepare(t, e)

	err := e.Merge(context.Background(), []string{"Confirmed_Kerala"}, []string{"Confirmed_Kerala"})
	require.Error(t, err)
	assert.Equal(t, perrors.ErrCategorySchema, perrors.GetCategory(err))
	assert.Equal(t, perrors.CodeColumnConflict, perrors.GetCode(err))
}

func TestMerge_ColumnConflictIgnoresCase(t *testing.T) {
	e := newTestEngine(t, testutil.SampleDataDir(t), nil)
	prepare(t, e)

	err := e.Merge(context.Background(), []string{"Confirmed_Kerala"}, []string{"confirmed_kerala"})
	assert.Equal(t, perrors.CodeColumnConflict, perrors.GetCode(err))

	err = e.Merge(context.Background(), nil, []string{"Date"})
	assert.Equal(t, perrors.CodeColumnConflict, perrors.GetCode(err))
}

func TestPivotCases_StatusesDifferingInCase(t *testing.T) {
	dir := testutil.WriteDataDir(t, testutil.DataDir{
		Cases:       "Date,Status,Kerala\n14-03-2020,Confirmed,5\n14-03-2020,confirmed,1\n",
		Vaccination: testutil.VaccinationCSV(nil),
		Population:  testutil.SamplePopulation,
	})
	e := newTestEngine(t, dir, nil)

	_, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, perrors.ErrCategorySchema, perrors.GetCategory(err))
	assert.Equal(t, perrors.CodeColumnConflict, perrors.GetCode(err))
}

func TestFirstDuplicate(t *testing.T) {
	assert.Equal(t, "", firstDuplicate([]string{"a", "b"}))
	assert.Equal(t, "b", firstDuplicate([]string{"a", "b", "c", "b"}))
	assert.Equal(t, "Confirmed_goa", firstDuplicate([]string{"Confirmed_Goa", "Confirmed_goa"}))
}
