package chart

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/rfglabs/modeldesk/internal/common"
	"github.com/rfglabs/modeldesk/internal/models"
)

// TimelineStrategy selects how the unified label timeline is built.
type TimelineStrategy string

const (
	// TimelineUnion merges every distinct timestamp across all model
	// series; models without an observation at a label get a gap.
	TimelineUnion TimelineStrategy = "union"
	// TimelineReference reuses the first non-empty model's timestamps
	// as the timeline.
	TimelineReference TimelineStrategy = "reference"
)

// labelLayout keeps second resolution so observations recorded within
// the same minute stay distinct on the unified timeline.
const labelLayout = "2006-01-02 15:04:05"

// timestampLayouts are tried in order when parsing recorder timestamps.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

type observation struct {
	ms    int64
	value float64
}

func parseTimestamp(s string) (int64, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

func toObservations(points []models.SeriesPoint) []observation {
	obs := make([]observation, 0, len(points))
	for _, p := range points {
		ms, ok := parseTimestamp(p.Timestamp)
		if !ok {
			continue
		}
		obs = append(obs, observation{ms: ms, value: p.Value})
	}
	return obs
}

// reconcile assembles the unified chart dataset from per-model series and
// an optional benchmark. Every dataset's Data is index-aligned with Labels;
// nil marks a gap. Empty or unparseable model series are skipped.
func reconcile(
	series []models.ModelSeries,
	benchmark *models.BenchmarkSeries,
	strategy TimelineStrategy,
	tiers []common.AxisTier,
	logger *common.Logger,
) *models.ChartSeries {
	type parsedSeries struct {
		models.ModelSeries
		obs []observation
	}

	parsed := make([]parsedSeries, 0, len(series))
	for _, s := range series {
		obs := toObservations(s.Points)
		if len(obs) == 0 {
			logger.Warn().Str("label", s.Label).Msg("Skipping empty model series")
			continue
		}
		parsed = append(parsed, parsedSeries{ModelSeries: s, obs: obs})
	}

	if len(parsed) == 0 {
		return &models.ChartSeries{
			Labels:    []string{},
			Datasets:  []models.Dataset{},
			AxisRange: models.AxisRange{Min: 0, Max: 100},
		}
	}

	var timeline []int64
	switch strategy {
	case TimelineReference:
		timeline = lo.Map(parsed[0].obs, func(o observation, _ int) int64 { return o.ms })
		timeline = lo.Uniq(timeline)
	default:
		for _, s := range parsed {
			for _, o := range s.obs {
				timeline = append(timeline, o.ms)
			}
		}
		timeline = lo.Uniq(timeline)
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i] < timeline[j] })

	labels := lo.Map(timeline, func(ms int64, _ int) string {
		return time.UnixMilli(ms).UTC().Format(labelLayout)
	})

	datasets := make([]models.Dataset, 0, len(parsed)+1)
	for _, s := range parsed {
		byMs := make(map[int64]float64, len(s.obs))
		for _, o := range s.obs {
			byMs[o.ms] = o.value
		}

		data := make([]*float64, len(timeline))
		for i, ms := range timeline {
			if v, ok := byMs[ms]; ok {
				value := v
				data[i] = &value
			}
		}

		datasets = append(datasets, models.Dataset{
			Label:        s.Label,
			Color:        s.Color,
			UID:          s.UID,
			CurrentValue: s.obs[len(s.obs)-1].value,
			Data:         data,
		})
	}

	if benchmark != nil {
		if obs := toObservations(benchmark.Points); len(obs) > 0 {
			datasets = append(datasets, alignBenchmark(benchmark, obs, timeline))
		} else {
			logger.Warn().Str("label", benchmark.Label).Msg("Skipping empty benchmark series")
		}
	}

	return &models.ChartSeries{
		Labels:    labels,
		Datasets:  datasets,
		AxisRange: computeAxisRange(datasets, tiers),
	}
}

// alignBenchmark projects a differently-sampled series onto the timeline
// by nearest observation. Ties keep the first-seen minimum, so the earlier
// of two equidistant observations wins.
func alignBenchmark(benchmark *models.BenchmarkSeries, obs []observation, timeline []int64) models.Dataset {
	data := make([]*float64, len(timeline))
	for i, ms := range timeline {
		best := 0
		bestDist := int64(math.MaxInt64)
		for j, o := range obs {
			dist := o.ms - ms
			if dist < 0 {
				dist = -dist
			}
			if dist < bestDist {
				bestDist = dist
				best = j
			}
		}
		value := obs[best].value
		data[i] = &value
	}

	current := obs[len(obs)-1].value
	return models.Dataset{
		Label:        benchmark.Label,
		Color:        benchmark.Color,
		CurrentValue: current,
		Data:         data,
	}
}

// computeAxisRange derives the y-axis window from all plotted values.
// The minimum comes from the configured tier table when the data minimum
// clears a threshold, otherwise max(0, min-1000); the maximum pads the
// data maximum by at least 20% of the range or 500, whichever is larger.
// Both bounds snap to 500.
func computeAxisRange(datasets []models.Dataset, tiers []common.AxisTier) models.AxisRange {
	dataMin := math.Inf(1)
	dataMax := math.Inf(-1)
	for _, ds := range datasets {
		for _, v := range ds.Data {
			if v == nil {
				continue
			}
			dataMin = math.Min(dataMin, *v)
			dataMax = math.Max(dataMax, *v)
		}
	}
	if math.IsInf(dataMin, 1) {
		return models.AxisRange{Min: 0, Max: 100}
	}

	min := math.Max(0, dataMin-1000)
	for _, tier := range tiers {
		if dataMin > tier.Above {
			min = tier.Floor
			break
		}
	}

	pad := math.Max(0.2*(dataMax-dataMin), 500)
	max := dataMax + pad

	return models.AxisRange{
		Min: math.Floor(min/500) * 500,
		Max: math.Ceil(max/500) * 500,
	}
}
