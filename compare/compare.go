// Package compare checks datasets for compatibility and aligns them for a joint display.
package compare

import (
	"errors"
	"fmt"
	"strings"

	"github.com/viant/evedata/dataset"
)

var (
	// ErrTooFewDatasets is returned when fewer than two datasets are compared
	ErrTooFewDatasets = errors.New("at least two datasets are required for a comparison")
	// ErrIncompatibleComparison describes datasets that do not share axis and channel with the same units
	ErrIncompatibleComparison = errors.New("incompatible datasets")
	// ErrNoSelection is returned when neither the caller nor the first dataset names an axis or channel
	ErrNoSelection = errors.New("no axis or channel to compare")
)

type (
	// Entry is the compatibility of one dataset with the first one
	Entry struct {
		Name    string
		Axis    *dataset.Series
		Channel *dataset.Series
		Matches bool
		Reasons []string
	}

	// Report lists the compatibility of every compared dataset
	Report struct {
		Axis    string
		Channel string
		Entries []*Entry
		Pending bool // incompatible under the Prompt policy, awaiting the caller's decision
	}

	// AlignedPoint is a channel value with its axis value
	AlignedPoint struct {
		Count int64
		X     float64
		Y     float64
	}

	// AlignedSeries holds the points of one dataset in its own sampling
	AlignedSeries struct {
		Name        string
		CountAsAxis bool // axis missing, X holds the position count
		Points      []AlignedPoint
	}

	// AlignedView is a comparison ready to be drawn on shared axes
	AlignedView struct {
		XLabel string
		YLabel string
		Series []*AlignedSeries
	}

	// Result holds the report and, when the policy allows, the aligned view
	Result struct {
		Report *Report
		View   *AlignedView
	}

	input struct {
		name string
		view *dataset.View
	}
)

// Compatible reports whether every dataset matches
func (r *Report) Compatible() bool {
	for _, entry := range r.Entries {
		if !entry.Matches {
			return false
		}
	}
	return true
}

// Err returns ErrIncompatibleComparison with the reasons of every mismatch, nil when compatible
func (r *Report) Err() error {
	var reasons []string
	for _, entry := range r.Entries {
		for _, reason := range entry.Reasons {
			reasons = append(reasons, entry.Name+": "+reason)
		}
	}
	if len(reasons) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrIncompatibleComparison, strings.Join(reasons, "; "))
}

// Compare compares the overviews of datasets. Empty axis or channel select the preferred ones of the first dataset.
// Incompatibility is reported in the result, not as an error.
func Compare(datasets []*dataset.Dataset, axis, channel string, policy Policy) (*Result, error) {
	inputs := make([]input, 0, len(datasets))
	for _, ds := range datasets {
		name := ds.Metadata.Comment
		if name == "" {
			name = ds.ID
		}
		inputs = append(inputs, input{name: name, view: ds.View()})
	}
	return compare(inputs, axis, channel, policy)
}

// CompareViews compares views, e.g. subscans, of one or more datasets
func CompareViews(views []*dataset.View, axis, channel string, policy Policy) (*Result, error) {
	inputs := make([]input, 0, len(views))
	for i, view := range views {
		name := view.Metadata().Comment
		if name == "" {
			name = fmt.Sprintf("dataset %d", i+1)
		}
		if view.Path() != "" {
			name += " " + view.Path()
		}
		inputs = append(inputs, input{name: name, view: view})
	}
	return compare(inputs, axis, channel, policy)
}

func compare(inputs []input, axis, channel string, policy Policy) (*Result, error) {
	if !policy.valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPolicy, policy)
	}
	if len(inputs) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewDatasets, len(inputs))
	}
	if axis == "" {
		axis, _ = inputs[0].view.PreferredAxis()
	}
	if channel == "" {
		channel, _ = inputs[0].view.PreferredChannel()
	}
	if axis == "" || channel == "" {
		return nil, ErrNoSelection
	}
	report := newReport(inputs, axis, channel)
	ret := &Result{Report: report}
	if report.Compatible() {
		ret.View = align(inputs, report)
		return ret, nil
	}
	switch policy {
	case Permissive:
		ret.View = align(inputs, report)
	case Prompt:
		report.Pending = true
	}
	return ret, nil
}

func lookup(view *dataset.View, name string) *dataset.Series {
	if series, ok := view.Series(name); ok {
		return &series
	}
	return nil
}

// reference returns the first found series, whose unit every other dataset has to match
func reference(entries []*Entry, get func(*Entry) *dataset.Series) *dataset.Series {
	for _, entry := range entries {
		if series := get(entry); series != nil {
			return series
		}
	}
	return nil
}

func newReport(inputs []input, axis, channel string) *Report {
	ret := &Report{Axis: axis, Channel: channel}
	for _, in := range inputs {
		ret.Entries = append(ret.Entries, &Entry{Name: in.name, Axis: lookup(in.view, axis), Channel: lookup(in.view, channel)})
	}
	axisRef := reference(ret.Entries, func(e *Entry) *dataset.Series { return e.Axis })
	channelRef := reference(ret.Entries, func(e *Entry) *dataset.Series { return e.Channel })
	for _, entry := range ret.Entries {
		entry.Reasons = append(entry.Reasons, check("axis", axis, entry.Axis, axisRef)...)
		entry.Reasons = append(entry.Reasons, check("channel", channel, entry.Channel, channelRef)...)
		entry.Matches = len(entry.Reasons) == 0
	}
	return ret
}

func check(role, name string, series, ref *dataset.Series) []string {
	if series == nil {
		return []string{fmt.Sprintf("%s %q missing", role, name)}
	}
	if series.Unit != ref.Unit {
		return []string{fmt.Sprintf("%s %q unit %q differs from %q", role, name, series.Unit, ref.Unit)}
	}
	return nil
}

// unitsAgree reports whether every found series shares the reference unit
func unitsAgree(entries []*Entry, get func(*Entry) *dataset.Series) bool {
	ref := reference(entries, get)
	for _, entry := range entries {
		if series := get(entry); series != nil && series.Unit != ref.Unit {
			return false
		}
	}
	return true
}

// label returns the IUPAC label, no label when the units conflict, or the bare name when no dataset has the series
func label(name string, entries []*Entry, get func(*Entry) *dataset.Series) string {
	ref := reference(entries, get)
	switch {
	case ref == nil:
		return name
	case !unitsAgree(entries, get):
		return ""
	}
	return ref.Label()
}

// align pairs every channel value with the last axis value recorded at or before its position count.
// Datasets without the channel are left out; without the axis, the position count stands in for it.
func align(inputs []input, report *Report) *AlignedView {
	axisOf := func(e *Entry) *dataset.Series { return e.Axis }
	channelOf := func(e *Entry) *dataset.Series { return e.Channel }
	ret := &AlignedView{
		XLabel: label(report.Axis, report.Entries, axisOf),
		YLabel: label(report.Channel, report.Entries, channelOf),
	}
	for i, in := range inputs {
		entry := report.Entries[i]
		if entry.Channel == nil {
			continue
		}
		series := &AlignedSeries{Name: in.name, CountAsAxis: entry.Axis == nil}
		axisPoints := in.view.Points(report.Axis, dataset.All)
		next := 0
		var x float64
		hasX := false
		for count, y := range in.view.Values(report.Channel, dataset.All) {
			if series.CountAsAxis {
				series.Points = append(series.Points, AlignedPoint{Count: count, X: float64(count), Y: y})
				continue
			}
			for next < len(axisPoints) && axisPoints[next].Count <= count {
				x, hasX = axisPoints[next].Value, true
				next++
			}
			if !hasX {
				continue
			}
			series.Points = append(series.Points, AlignedPoint{Count: count, X: x, Y: y})
		}
		ret.Series = append(ret.Series, series)
	}
	return ret
}
