// Package geo loads region boundaries and joins them to case counts for the map view.
package geo

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"golang.org/x/text/unicode/norm"

	perrors "github.com/leapstack-labs/covidlens/internal/errors"
	"github.com/leapstack-labs/covidlens/pkg/core"
)

// Region is one boundary of the boundary file.
type Region struct {
	Name     string
	Geometry orb.Geometry
	Centroid orb.Point
	Area     float64
}

// Key normalizes a region name for joining. Only Unicode normalization and
// surrounding whitespace are forgiven; any other spelling difference is a miss.
func Key(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Load reads a GeoJSON feature collection and returns one Region per feature
// that carries nameProperty, ordered by name.
func Load(path, nameProperty string) ([]Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, perrors.NewFileNotFound(path, err)
		}
		return nil, perrors.NewParseError(path, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, perrors.NewParseError(path, err)
	}

	regions := make([]Region, 0, len(fc.Features))
	for _, f := range fc.Features {
		name := f.Properties.MustString(nameProperty, "")
		if name == "" || f.Geometry == nil {
			continue
		}
		centroid, area := planar.CentroidArea(f.Geometry)
		regions = append(regions, Region{
			Name:     name,
			Geometry: f.Geometry,
			Centroid: centroid,
			Area:     area,
		})
	}

	sort.SliceStable(regions, func(i, j int) bool { return regions[i].Name < regions[j].Name })
	return regions, nil
}

// Marker is a map point: a region centroid sized by a count.
type Marker struct {
	Region  string
	Lon     float64
	Lat     float64
	Value   float64
	Matched bool
}

// JoinLatest places one marker per boundary region at its centroid, valued by
// row's column for the region of the same name. Regions without a matching
// case region get 0 and Matched false.
func JoinLatest(regions []Region, caseRegions []string, row core.Row, column func(region string) string) []Marker {
	byKey := make(map[string]string, len(caseRegions))
	for _, r := range caseRegions {
		byKey[Key(r)] = r
	}

	markers := make([]Marker, 0, len(regions))
	for _, g := range regions {
		m := Marker{Region: g.Name, Lon: g.Centroid.Lon(), Lat: g.Centroid.Lat()}
		if caseRegion, ok := byKey[Key(g.Name)]; ok {
			m.Value, m.Matched = row.Get(column(caseRegion))
		}
		markers = append(markers, m)
	}
	return markers
}
