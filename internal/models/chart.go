package models

// Dataset is one line on the chart. Data is index-aligned with the chart's
// Labels: a nil entry means no observation at that timestamp.
type Dataset struct {
	Label        string     `json:"label"`
	Color        string     `json:"color"`
	UID          string     `json:"uid"`
	CurrentValue float64    `json:"current_value"`
	Data         []*float64 `json:"data"`
}

// AxisRange is the computed y-axis window.
type AxisRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ChartSeries is the unified chart dataset: sorted unique timestamp labels
// and index-aligned datasets (len(Data) == len(Labels) for every dataset).
type ChartSeries struct {
	Labels    []string  `json:"labels"`
	Datasets  []Dataset `json:"datasets"`
	AxisRange AxisRange `json:"axis_range"`
}

// ModelSeries is one model's raw equity series before reconciliation.
type ModelSeries struct {
	Label  string
	Color  string
	UID    string
	Points []SeriesPoint
}

// SeriesPoint is one timestamped observation.
type SeriesPoint struct {
	Timestamp string
	Value     float64
}

// BenchmarkSeries is a differently-sampled value series (typically the
// buy-and-hold portfolio value derived from candles) to be overlaid on the
// unified timeline by nearest-observation alignment.
type BenchmarkSeries struct {
	Label  string
	Color  string
	Points []SeriesPoint
}
