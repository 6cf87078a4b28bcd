package dataset

import (
	"fmt"
	"iter"
	"slices"
	"sort"

	"github.com/viant/evedata/record"
	"github.com/viant/evedata/section"
)

// View is the query surface of a chain overview or of one of its subscans.
// Views are cheap values over the immutable chain; display preferences set through
// WithPreferred live in the returned view only.
type View struct {
	chain    *Chain
	module   int
	axes     []Series
	channels []Series
	axis     string
	channel  string
}

func newView(c *Chain, module int) *View {
	m := c.modules[module]
	ret := &View{chain: c, module: module}
	for _, name := range c.seriesOrder {
		index := c.series[name]
		entries := index.within(m.First, m.Last)
		if len(entries) == 0 {
			continue
		}
		series := index.Series
		series.Points = distinct(c.entries, entries)
		if series.Role == record.RoleAxis {
			ret.axes = append(ret.axes, series)
		} else {
			ret.channels = append(ret.channels, series)
		}
	}
	return ret
}

func (v *View) node() *Module {
	return v.chain.modules[v.module]
}

// Chain returns the chain the view belongs to
func (v *View) Chain() *Chain {
	return v.chain
}

// Module returns a copy of the viewed scan module
func (v *View) Module() Module {
	return *v.node()
}

// Path returns the module path, empty for the chain overview
func (v *View) Path() string {
	return v.node().Path
}

func (v *View) Kind() record.ModuleKind {
	return v.node().Kind
}

// Truncated reports whether the module, or any module below it, was closed without its end marker
func (v *View) Truncated() bool {
	return v.node().partial
}

// Metadata returns the metadata of the dataset
func (v *View) Metadata() Metadata {
	if v.chain.meta == nil {
		return Metadata{}
	}
	return *v.chain.meta
}

// Subscans returns the direct child modules
func (v *View) Subscans() []*View {
	var ret []*View
	for _, child := range v.node().Children {
		ret = append(ret, newView(v.chain, child))
	}
	return ret
}

// Axes returns the axes with values in the view, in declaration order
func (v *View) Axes() []Series {
	return v.axes
}

// Channels returns the channels with values in the view, in declaration order
func (v *View) Channels() []Series {
	return v.channels
}

// Series returns an axis or channel by name
func (v *View) Series(name string) (Series, bool) {
	for _, list := range [][]Series{v.axes, v.channels} {
		for _, s := range list {
			if s.Name == name {
				return s, true
			}
		}
	}
	return Series{}, false
}

// PreferredAxis returns the selected axis, the one marked in the scan, or the axis with most points
func (v *View) PreferredAxis() (string, bool) {
	if v.axis != "" {
		return v.axis, true
	}
	return preferred(v.chain.header.PreferredAxis, v.axes)
}

// PreferredChannel returns the selected channel, the one marked in the scan, or the channel with most points
func (v *View) PreferredChannel() (string, bool) {
	if v.channel != "" {
		return v.channel, true
	}
	return preferred(v.chain.header.PreferredChannel, v.channels)
}

// PreferredNormalization returns the normalization channel marked in the scan, if present in the view
func (v *View) PreferredNormalization() (string, bool) {
	marked := v.chain.header.PreferredNormalization
	if marked == "" {
		return "", false
	}
	if _, ok := v.Series(marked); !ok {
		return "", false
	}
	return marked, true
}

// WithPreferred returns a view with the given axis and channel selected; an empty name keeps the current choice
func (v *View) WithPreferred(axis, channel string) (*View, error) {
	ret := *v
	for _, name := range []string{axis, channel} {
		if name == "" {
			continue
		}
		if _, ok := v.Series(name); !ok {
			return nil, fmt.Errorf("%w: %q in chain %d %q", ErrUnknownSeries, name, v.chain.ID, v.Path())
		}
	}
	if axis != "" {
		ret.axis = axis
	}
	if channel != "" {
		ret.channel = channel
	}
	return &ret, nil
}

// Values returns the values of an axis or channel in rng, ordered by position count.
// When several values share a position count, the first recorded one is returned.
func (v *View) Values(name string, rng Range) iter.Seq2[int64, float64] {
	index, ok := v.chain.series[name]
	if !ok {
		return func(yield func(int64, float64) bool) {}
	}
	m := v.node()
	return v.chain.iterate(index.within(m.First, m.Last), rng)
}

// Points collects Values
func (v *View) Points(name string, rng Range) []Point {
	var ret []Point
	for count, value := range v.Values(name, rng) {
		ret = append(ret, Point{Count: count, Value: value})
	}
	return ret
}

// Normalized returns channel divided by norm at the position counts both were recorded at
func (v *View) Normalized(channel, norm string, rng Range) iter.Seq2[int64, float64] {
	return func(yield func(int64, float64) bool) {
		divisors := map[int64]float64{}
		for count, value := range v.Values(norm, rng) {
			divisors[count] = value
		}
		for count, value := range v.Values(channel, rng) {
			divisor, ok := divisors[count]
			if !ok || divisor == 0 {
				continue
			}
			if !yield(count, value/divisor) {
				return
			}
		}
	}
}

// NormalizedSeries describes channel divided by norm
func (v *View) NormalizedSeries(channel, norm string) (Series, error) {
	c, ok := v.Series(channel)
	if !ok {
		return Series{}, fmt.Errorf("%w: %q", ErrUnknownSeries, channel)
	}
	n, ok := v.Series(norm)
	if !ok {
		return Series{}, fmt.Errorf("%w: %q", ErrUnknownSeries, norm)
	}
	normUnit := n.Unit
	if normUnit == "" {
		normUnit = "1"
	}
	ret := c
	ret.Name = channel + "/" + norm
	ret.Unit = c.Unit + " / " + normUnit
	return ret, nil
}

// Extent returns the range of position counts of the view's standard section
func (v *View) Extent() (Range, bool) {
	m := v.node()
	ret := Range{}
	found := false
	for i := m.First; i < m.Last; i++ {
		if e := v.chain.entries[i]; e.hasCount && e.section == section.Standard {
			ret.From, found = e.count, true
			break
		}
	}
	if !found {
		return Range{}, false
	}
	for i := m.Last - 1; i >= m.First; i-- {
		if e := v.chain.entries[i]; e.hasCount && e.section == section.Standard {
			ret.To = e.count
			break
		}
	}
	return ret, true
}

// Timestamps returns the chain's timestamp section restricted to the view's extent
func (v *View) Timestamps() []Timestamp {
	all := v.chain.timestamps
	if v.module == 0 {
		return slices.Clone(all)
	}
	extent, ok := v.Extent()
	if !ok {
		return nil
	}
	lo := sort.Search(len(all), func(i int) bool { return all[i].Count >= extent.From })
	hi := sort.Search(len(all), func(i int) bool { return all[i].Count > extent.To })
	return slices.Clone(all[lo:hi])
}
