// Package characteristic computes descriptive characteristics of a channel: extrema, step width,
// full width at half maximum and timing. Every computation is a read over an immutable view.
package characteristic

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/viant/evedata/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrUndefined is returned when the data does not define a characteristic; no value is fabricated
	ErrUndefined = errors.New("characteristic undefined")
	// ErrMissingTimestampSection is returned by timing characteristics of a chain without timestamps
	ErrMissingTimestampSection = errors.New("missing timestamp section")
)

type (
	// Calculator computes characteristics of one channel against one axis of a view
	Calculator struct {
		view    *dataset.View
		channel string
		axis    string
	}

	// Extremum is a channel value and the axis value it was recorded at
	Extremum struct {
		Count int64
		X     float64
		Y     float64
	}

	// Width is the full width at half maximum, Left and Right being the interpolated crossings
	Width struct {
		Value float64
		Left  float64
		Right float64
		Half  float64
		Peak  Extremum
	}

	// Timing describes when a scan ran
	Timing struct {
		Location string
		Start    time.Time
		Stop     time.Time
		Duration time.Duration
	}

	// Option configures a Calculator
	Option func(c *Calculator)
)

// WithAxis sets the axis, the view's preferred axis is used otherwise
func WithAxis(axis string) Option {
	return func(c *Calculator) {
		c.axis = axis
	}
}

// New creates a calculator for a channel of view
func New(view *dataset.View, channel string, opts ...Option) (*Calculator, error) {
	ret := &Calculator{view: view, channel: channel}
	for _, opt := range opts {
		opt(ret)
	}
	if _, ok := view.Series(channel); !ok {
		return nil, fmt.Errorf("%w: %q", dataset.ErrUnknownSeries, channel)
	}
	if ret.axis == "" {
		ret.axis, _ = view.PreferredAxis()
	} else if _, ok := view.Series(ret.axis); !ok {
		return nil, fmt.Errorf("%w: %q", dataset.ErrUnknownSeries, ret.axis)
	}
	return ret, nil
}

// Axis returns the axis the channel is evaluated against, empty when the position count stands in for it
func (c *Calculator) Axis() string {
	return c.axis
}

// points pairs channel values with the last axis value recorded at or before their position count;
// without an axis the position count is used
func (c *Calculator) points() (counts []int64, xs, ys []float64) {
	var axis []dataset.Point
	if c.axis != "" {
		axis = c.view.Points(c.axis, dataset.All)
	}
	next := 0
	var x float64
	hasX := false
	for count, y := range c.view.Values(c.channel, dataset.All) {
		switch {
		case c.axis == "":
			x, hasX = float64(count), true
		default:
			for next < len(axis) && axis[next].Count <= count {
				x, hasX = axis[next].Value, true
				next++
			}
		}
		if !hasX || math.IsNaN(y) {
			continue
		}
		counts = append(counts, count)
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return counts, xs, ys
}

// Extrema returns the minimum and maximum of the channel; ties go to the first recorded
func (c *Calculator) Extrema() (minimum, maximum Extremum, err error) {
	counts, xs, ys := c.points()
	if len(ys) == 0 {
		return minimum, maximum, fmt.Errorf("%w: %q has no values", ErrUndefined, c.channel)
	}
	lo, hi := floats.MinIdx(ys), floats.MaxIdx(ys)
	minimum = Extremum{Count: counts[lo], X: xs[lo], Y: ys[lo]}
	maximum = Extremum{Count: counts[hi], X: xs[hi], Y: ys[hi]}
	return minimum, maximum, nil
}

// StepWidth returns the median of the absolute differences between successive axis values
func (c *Calculator) StepWidth() (float64, error) {
	if c.axis == "" {
		return 0, fmt.Errorf("%w: no axis", ErrUndefined)
	}
	points := c.view.Points(c.axis, dataset.All)
	if len(points) < 2 {
		return 0, fmt.Errorf("%w: step width of %q needs two points, got %d", ErrUndefined, c.axis, len(points))
	}
	steps := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		steps = append(steps, math.Abs(points[i].Value-points[i-1].Value))
	}
	return median(steps), nil
}

func median(values []float64) float64 {
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return stat.Mean(values[mid-1:mid+1], nil)
}

// FWHM returns the full width at half maximum of the channel's highest peak.
// The half maximum lies halfway between the minimum and the maximum; crossings are interpolated linearly.
func (c *Calculator) FWHM() (*Width, error) {
	counts, xs, ys := c.points()
	if len(ys) < 3 {
		return nil, fmt.Errorf("%w: FWHM of %q needs three points, got %d", ErrUndefined, c.channel, len(ys))
	}
	lo, peak := floats.MinIdx(ys), floats.MaxIdx(ys)
	if ys[peak] == ys[lo] {
		return nil, fmt.Errorf("%w: %q is flat", ErrUndefined, c.channel)
	}
	half := ys[lo] + (ys[peak]-ys[lo])/2
	left, okLeft := crossing(xs, ys, peak, -1, half)
	right, okRight := crossing(xs, ys, peak, 1, half)
	if !okLeft || !okRight {
		return nil, fmt.Errorf("%w: %q does not fall below half maximum on both sides of the peak", ErrUndefined, c.channel)
	}
	return &Width{
		Value: math.Abs(right - left),
		Left:  left,
		Right: right,
		Half:  half,
		Peak:  Extremum{Count: counts[peak], X: xs[peak], Y: ys[peak]},
	}, nil
}

// crossing walks from the peak in direction step until the data drops below half,
// and interpolates the axis value between the bracketing points
func crossing(xs, ys []float64, peak, step int, half float64) (float64, bool) {
	for i := peak + step; i >= 0 && i < len(ys); i += step {
		if ys[i] >= half {
			continue
		}
		inner := i - step
		fraction := (ys[inner] - half) / (ys[inner] - ys[i])
		return xs[inner] + fraction*(xs[i]-xs[inner]), true
	}
	return 0, false
}

// Duration returns the time between the first and the last position count of the view
func (c *Calculator) Duration() (time.Duration, error) {
	if !c.view.Chain().HasTimestamps() {
		return 0, fmt.Errorf("%w: chain %d", ErrMissingTimestampSection, c.view.Chain().ID)
	}
	timestamps := c.view.Timestamps()
	if len(timestamps) == 0 {
		return 0, fmt.Errorf("%w: %q has no position counts", ErrUndefined, c.view.Path())
	}
	return timestamps[len(timestamps)-1].Elapsed - timestamps[0].Elapsed, nil
}

// Timing returns location, start, stop and duration of the view.
// The chain overview falls back to the dataset start and stop without a timestamp section.
func (c *Calculator) Timing() (*Timing, error) {
	meta := c.view.Metadata()
	ret := &Timing{Location: meta.Location}
	duration, err := c.Duration()
	switch {
	case err == nil:
		timestamps := c.view.Timestamps()
		ret.Duration = duration
		if !meta.Start.IsZero() {
			ret.Start = meta.Start.Add(timestamps[0].Elapsed)
			ret.Stop = ret.Start.Add(duration)
		}
	case errors.Is(err, ErrMissingTimestampSection) && c.view.Path() == "" && !meta.Start.IsZero() && !meta.Stop.IsZero():
		ret.Start, ret.Stop = meta.Start, meta.Stop
		ret.Duration = meta.Stop.Sub(meta.Start)
	default:
		return nil, err
	}
	return ret, nil
}
