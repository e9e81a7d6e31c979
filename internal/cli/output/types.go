package output

// JSON documents emitted by the commands in --output json mode.

// LoadOutput is the JSON output of the load command.
type LoadOutput struct {
	RunID      string          `json:"run_id"`
	DurationMS int64           `json:"duration_ms"`
	DateRange  *DateRange      `json:"date_range,omitempty"`
	Regions    []string        `json:"regions"`
	Statuses   []string        `json:"statuses"`
	Grouping   string          `json:"grouping"`
	Tables     []TableInfo     `json:"tables"`
	Dates      []NormalizeInfo `json:"dates"`
	Population PopulationInfo  `json:"population"`
	Boundaries *BoundaryInfo   `json:"boundaries,omitempty"`
}

// DateRange is an inclusive date range in YYYY-MM-DD form.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TableInfo describes one session table.
type TableInfo struct {
	Name    string   `json:"name"`
	Rows    int64    `json:"rows"`
	Columns []string `json:"columns,omitempty"`
}

// NormalizeInfo reports one date normalization.
type NormalizeInfo struct {
	Table   string `json:"table"`
	Column  string `json:"column"`
	Rows    int64  `json:"rows"`
	Dropped int64  `json:"dropped"`
}

// PopulationInfo reports the population lookup.
type PopulationInfo struct {
	Regions   int      `json:"regions"`
	Defaulted []string `json:"defaulted,omitempty"`
	Skipped   []string `json:"skipped,omitempty"`
}

// BoundaryInfo reports the boundary file.
type BoundaryInfo struct {
	Regions int    `json:"regions"`
	Error   string `json:"error,omitempty"`
}

// ViewList is the JSON output of the views command.
type ViewList struct {
	Views []ViewEntry `json:"views"`
}

// ViewEntry names one view.
type ViewEntry struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
}

// ViewOutput is the JSON output of the view command.
type ViewOutput struct {
	Kind      string       `json:"kind"`
	Title     string       `json:"title"`
	Regions   []string     `json:"regions"`
	DateRange DateRange    `json:"date_range"`
	AsOf      string       `json:"as_of,omitempty"`
	Metrics   []MetricJSON `json:"metrics,omitempty"`
	Series    []SeriesJSON `json:"series,omitempty"`
	Groups    []string     `json:"groups,omitempty"`
	Bars      []BarJSON    `json:"bars,omitempty"`
	Matrix    *MatrixJSON  `json:"matrix,omitempty"`
	Markers   []MarkerJSON `json:"markers,omitempty"`
}

// MetricJSON is a headline number.
type MetricJSON struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// SeriesJSON is one trend line.
type SeriesJSON struct {
	Name   string      `json:"name"`
	Points []PointJSON `json:"points"`
}

// PointJSON is one dated value.
type PointJSON struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// BarJSON is one bar group.
type BarJSON struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// MatrixJSON is a labelled matrix. Undefined cells are null.
type MatrixJSON struct {
	Labels []string     `json:"labels"`
	Values [][]*float64 `json:"values"`
}

// MarkerJSON is one map marker.
type MarkerJSON struct {
	Region  string  `json:"region"`
	Lon     float64 `json:"lon"`
	Lat     float64 `json:"lat"`
	Value   float64 `json:"value"`
	Matched bool    `json:"matched"`
}

// HistoryOutput is the JSON output of the history command.
type HistoryOutput struct {
	Runs []RunInfo `json:"runs"`
}

// RunInfo describes one recorded pipeline run.
type RunInfo struct {
	ID         string   `json:"id"`
	StartedAt  string   `json:"started_at"`
	DurationMS int64    `json:"duration_ms"`
	Status     string   `json:"status"`
	DataDir    string   `json:"data_dir"`
	Grouping   string   `json:"grouping,omitempty"`
	Regions    int      `json:"regions"`
	Dates      int      `json:"dates"`
	Dropped    int64    `json:"dropped"`
	Defaulted  []string `json:"defaulted,omitempty"`
	Error      string   `json:"error,omitempty"`
}
