package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/evedata/record"
	"gopkg.in/yaml.v3"
)

func repeatedScan() []*record.Record {
	return []*record.Record{
		record.Start(1, "sm1", record.ModuleScan),
		record.Motor(1, "y", 1, 0, "mm"),
		record.StartIn(1, "sm2", "sm1", record.ModuleScan),
		record.Motor(1, "x", 2, 0.0, "mm"),
		record.Detector(1, "i0", 2, 10, "V"),
		record.Detector(1, "tey", 2, 1, "nA"),
		record.Motor(1, "x", 3, 0.5, "mm"),
		record.Detector(1, "i0", 3, 20, "V"),
		record.Detector(1, "tey", 3, 4, "nA"),
		record.End(1, "sm2"),
		record.Motor(1, "y", 4, 1, "mm"),
		record.StartIn(1, "sm2", "sm1", record.ModuleScan),
		record.Motor(1, "x", 5, 0.0, "mm"),
		record.Detector(1, "tey", 5, 2, "nA"),
		record.End(1, "sm2"),
		record.End(1, "sm1"),
	}
}

func TestChain_Subscan(t *testing.T) {
	ds := build(t, nil, repeatedScan()...)
	var testCases = []struct {
		description string
		path        string
		expectTey   []Point
		expectErr   error
	}{
		{description: "outer module", path: "sm1", expectTey: []Point{{2, 1}, {3, 4}, {5, 2}}},
		{description: "first run", path: "sm1/sm2", expectTey: []Point{{2, 1}, {3, 4}}},
		{description: "explicit first run", path: "sm1/sm2#1", expectTey: []Point{{2, 1}, {3, 4}}},
		{description: "second run", path: "sm1/sm2#2", expectTey: []Point{{5, 2}}},
		{description: "missing run", path: "sm1/sm2#3", expectErr: ErrUnknownModule},
		{description: "bad run", path: "sm1/sm2#x", expectErr: ErrUnknownModule},
		{description: "missing module", path: "sm9", expectErr: ErrUnknownModule},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			view, err := ds.Subscan(1, testCase.path)
			if testCase.expectErr != nil {
				assert.ErrorIs(t, err, testCase.expectErr)
				return
			}
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, testCase.expectTey, view.Points("tey", All))
		})
	}
	_, err := ds.Subscan(7, "sm1")
	assert.ErrorIs(t, err, ErrUnknownChain)
}

func TestView_Subscans(t *testing.T) {
	ds := build(t, nil, repeatedScan()...)
	sm1, err := ds.Subscan(1, "sm1")
	if !assert.Nil(t, err) {
		return
	}
	var paths []string
	for _, sub := range sm1.Subscans() {
		paths = append(paths, sub.Path())
	}
	assert.Equal(t, []string{"sm1/sm2", "sm1/sm2#2"}, paths)

	second, _ := ds.Subscan(1, "sm1/sm2#2")
	var axes []string
	for _, axis := range second.Axes() {
		axes = append(axes, axis.Name)
	}
	assert.Equal(t, []string{"x"}, axes, "only series with values in the module")
	extent, ok := second.Extent()
	assert.True(t, ok)
	assert.Equal(t, Range{From: 5, To: 5}, extent)
}

func TestView_Preferred(t *testing.T) {
	var testCases = []struct {
		description   string
		header        *record.ChainHeader
		expectAxis    string
		expectChannel string
		expectNorm    string
	}{
		{description: "most points", expectAxis: "x", expectChannel: "tey"},
		{description: "marked", header: &record.ChainHeader{PreferredAxis: "y", PreferredChannel: "i0", PreferredNormalization: "i0"}, expectAxis: "y", expectChannel: "i0", expectNorm: "i0"},
		{description: "marked but absent", header: &record.ChainHeader{PreferredAxis: "theta", PreferredChannel: "mcp", PreferredNormalization: "mcp"}, expectAxis: "x", expectChannel: "tey"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			header := &record.Header{}
			if testCase.header != nil {
				header.Chains = map[int]*record.ChainHeader{1: testCase.header}
			}
			view := build(t, header, repeatedScan()...).View()
			axis, _ := view.PreferredAxis()
			channel, _ := view.PreferredChannel()
			norm, _ := view.PreferredNormalization()
			assert.Equal(t, testCase.expectAxis, axis)
			assert.Equal(t, testCase.expectChannel, channel)
			assert.Equal(t, testCase.expectNorm, norm)
		})
	}
}

func TestPreferred_TieBreak(t *testing.T) {
	candidates := []Series{
		{Name: "b", Order: 1, Points: 4},
		{Name: "a", Order: 0, Points: 4},
		{Name: "c", Order: 2, Points: 2},
	}
	name, ok := preferred("", candidates)
	assert.True(t, ok)
	assert.Equal(t, "a", name)
	_, ok = preferred("a", nil)
	assert.False(t, ok)
}

func TestView_WithPreferred(t *testing.T) {
	ds := build(t, nil, repeatedScan()...)
	view := ds.View()
	selected, err := view.WithPreferred("y", "i0")
	if !assert.Nil(t, err) {
		return
	}
	axis, _ := selected.PreferredAxis()
	channel, _ := selected.PreferredChannel()
	assert.Equal(t, "y", axis)
	assert.Equal(t, "i0", channel)

	axis, _ = ds.View().PreferredAxis()
	assert.Equal(t, "x", axis, "the dataset is not mutated")
	axis, _ = view.PreferredAxis()
	assert.Equal(t, "x", axis)

	_, err = view.WithPreferred("theta", "")
	assert.ErrorIs(t, err, ErrUnknownSeries)
}

func TestView_Normalized(t *testing.T) {
	view := build(t, nil, repeatedScan()...).View()
	var got []Point
	for count, value := range view.Normalized("tey", "i0", All) {
		got = append(got, Point{count, value})
	}
	assert.Equal(t, []Point{{2, 0.1}, {3, 0.2}}, got, "counts without a divisor are skipped")
	series, err := view.NormalizedSeries("tey", "i0")
	assert.Nil(t, err)
	assert.Equal(t, "tey/i0 / nA / V", series.Label())
	_, err = view.NormalizedSeries("tey", "mcp")
	assert.ErrorIs(t, err, ErrUnknownSeries)
}

func TestView_ValuesStop(t *testing.T) {
	view := build(t, nil, repeatedScan()...).View()
	var counts []int64
	for count := range view.Values("x", All) {
		counts = append(counts, count)
		if len(counts) == 2 {
			break
		}
	}
	assert.Equal(t, []int64{2, 3}, counts)
	for range view.Values("unknown", All) {
		t.Fatal("unexpected value")
	}
}

func TestDataset_Summary(t *testing.T) {
	ds := build(t, nil, repeatedScan()...)
	summary := ds.Summary()
	if !assert.Len(t, summary.Chains, 1) {
		return
	}
	chain := summary.Chains[0]
	assert.Equal(t, "x", chain.PreferredAxis)
	assert.Equal(t, "tey", chain.PreferredChannel)
	assert.Len(t, chain.Subscans, 3)
	data, err := yaml.Marshal(summary)
	assert.Nil(t, err)
	assert.Contains(t, string(data), "sm1/sm2#2")
}
