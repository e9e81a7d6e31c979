// Package testutil holds the data fixtures and log helpers shared by the pipeline tests.
package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/leapstack-labs/covidlens/pkg/core"
)

// DataDir holds the contents of a test data directory. Empty fields are not written.
type DataDir struct {
	Cases       string
	Vaccination string
	Population  string
	Boundaries  string
}

// Default file names, matching the pipeline defaults.
const (
	CasesFile       = "covid_cases.csv"
	VaccinationFile = "vaccination.csv"
	PopulationFile  = "population.csv"
	BoundariesFile  = "states_geojson.geojson"
)

// WriteDataDir writes the given files into a fresh temporary directory and returns it.
func WriteDataDir(t testing.TB, d DataDir) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		CasesFile:       d.Cases,
		VaccinationFile: d.Vaccination,
		PopulationFile:  d.Population,
		BoundariesFile:  d.Boundaries,
	}
	for name, content := range files {
		if content == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

// SampleCases is a wide case file: six regions, three dates, one unparseable date row.
const SampleCases = `Date,Date_YMD,Status,Kerala,Goa,Delhi,Maharashtra,Punjab,Sikkim
14-03-2020,2020-03-14,Confirmed,10,2,5,20,1,0
14-03-2020,2020-03-14,Recovered,1,0,1,2,0,0
14-03-2020,2020-03-14,Deceased,0,0,0,1,0,0
15-Mar-20,2020-03-15,Confirmed,12,3,6,25,2,1
15-Mar-20,2020-03-15,Recovered,2,1,1,3,0,0
15-Mar-20,2020-03-15,Deceased,0,0,1,1,0,0
16/03/2020,2020-03-16,Confirmed,15,3,8,30,2,1
16/03/2020,2020-03-16,Recovered,4,1,2,5,1,0
16/03/2020,2020-03-16,Deceased,1,0,1,2,0,0
not-a-date,,Confirmed,99,99,99,99,99,99
`

// SampleVaccination is a statewise vaccination file with a national row and a duplicate date.
const SampleVaccination = `Updated On,State,Total Doses Administered,First Dose Administered,Second Dose Administered
14/03/2020,India,300,200,100
14/03/2020,Kerala,100,80,20
14/03/2020,Goa,50,40,10
16/03/2020,Kerala,150,100,50
16/03/2020,Kerala,10,10,0
16/03/2020,Goa,60,45,15
`

// SamplePopulation has no entry for Sikkim and a duplicate for Goa (last one wins).
const SamplePopulation = `State,Population
Kerala,35699443
Goa,1000000
Delhi,"16,787,941"
Maharashtra,123144223
Punjab,30141373
Goa,1586250
`

// SampleBoundaries has three regions; "NCT of Delhi" deliberately does not match "Delhi".
const SampleBoundaries = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"ST_NM":"Kerala"},"geometry":{"type":"Polygon","coordinates":[[[76,8],[78,8],[78,12],[76,12],[76,8]]]}},
{"type":"Feature","properties":{"ST_NM":"Goa"},"geometry":{"type":"Polygon","coordinates":[[[73,15],[75,15],[75,16],[73,16],[73,15]]]}},
{"type":"Feature","properties":{"ST_NM":"NCT of Delhi"},"geometry":{"type":"Polygon","coordinates":[[[76,28],[78,28],[78,29],[76,29],[76,28]]]}}
]}`

// SampleDataDir writes the sample data set and returns its directory.
func SampleDataDir(t testing.TB) string {
	t.Helper()
	return WriteDataDir(t, DataDir{
		Cases:       SampleCases,
		Vaccination: SampleVaccination,
		Population:  SamplePopulation,
		Boundaries:  SampleBoundaries,
	})
}

// CasesLongCSV renders case records as a long-format case file
// with the columns Date, State, Status, Count. Dates are written day-first.
func CasesLongCSV(records []core.CaseRecord) string {
	rows := [][]string{{"Date", "State", "Status", "Count"}}
	for _, r := range records {
		rows = append(rows, []string{
			r.Date.Format("02-01-2006"), r.Region, string(r.Status), formatFloat(r.Count),
		})
	}
	return writeCSV(rows)
}

// VaccinationCSV renders vaccination records with the default column names.
func VaccinationCSV(records []core.VaccinationRecord) string {
	rows := [][]string{{"Updated On", "State", "Total Doses Administered", "First Dose Administered", "Second Dose Administered"}}
	for _, r := range records {
		rows = append(rows, []string{
			r.Date.Format("02/01/2006"), r.Region,
			formatFloat(r.TotalDoses), formatFloat(r.FirstDose), formatFloat(r.SecondDose),
		})
	}
	return writeCSV(rows)
}

// PopulationCSV renders population records with the default column names.
func PopulationCSV(records []core.PopulationRecord) string {
	rows := [][]string{{"State", "Population"}}
	for _, r := range records {
		rows = append(rows, []string{r.Region, formatFloat(r.Population)})
	}
	return writeCSV(rows)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func writeCSV(rows [][]string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.WriteAll(rows)
	return b.String()
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
