package dataset

import (
	"math"
	"time"

	"github.com/viant/evedata/record"
)

// Series describes an axis or channel as seen by a view
type Series struct {
	Name   string      `yaml:"name"`
	Role   record.Role `yaml:"role"`
	Unit   string      `yaml:"unit,omitempty"`
	Order  int         `yaml:"-"`      // first declaration in the chain
	Points int         `yaml:"points"` // distinct position counts with a value
}

// Label returns the axis label, quantity and unit separated by a slash
func (s Series) Label() string {
	if s.Unit == "" {
		return s.Name
	}
	return s.Name + " / " + s.Unit
}

// Point is a value recorded at a position count
type Point struct {
	Count int64
	Value float64
}

// Range is an inclusive range of position counts
type Range struct {
	From int64
	To   int64
}

// All covers every position count
var All = Range{From: math.MinInt64, To: math.MaxInt64}

func (r Range) Contains(count int64) bool {
	return count >= r.From && count <= r.To
}

// Timestamp maps a position count to the time elapsed since the scan start.
// Inferred is set when the source had no entry for the count and the previous elapsed time was carried over.
type Timestamp struct {
	Count    int64
	Elapsed  time.Duration
	Inferred bool
}

// MonitorEvent is an asynchronous device update, not tied to position counts
type MonitorEvent struct {
	Name    string
	Value   float64
	Unit    string
	Elapsed time.Duration
	Time    time.Time // zero when the scan start is unknown
}
