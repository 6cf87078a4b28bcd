package dataset

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/viant/evedata/record"
	"github.com/viant/evedata/section"
)

// entry is a resolved and classified data record of a chain
type entry struct {
	rec      *record.Record
	count    int64
	hasCount bool
	section  section.Section
}

// Module is a node of a chain's scan module arena. Index 0 is the overview of the whole chain.
type Module struct {
	ID        string
	Kind      record.ModuleKind
	Path      string // slash separated ids, "#n" marks the n-th run of a repeated id
	Depth     int
	Parent    int // -1 for the overview
	Children  []int
	First     int // subtree records, [First, Last) into the chain's entries
	Last      int
	Truncated bool // closed without its end marker
	partial   bool // truncated itself or somewhere below
	byID      map[string][]int
}

// Chain is an independent scan sequence of a dataset
type Chain struct {
	ID            int
	header        *record.ChainHeader
	meta          *Metadata
	entries       []entry
	modules       []*Module
	series        map[string]*seriesIndex
	seriesOrder   []string
	snapshots     map[string]*seriesIndex
	snapshotOrder []string
	timestamps    []Timestamp
	monitors      []MonitorEvent
}

// View returns the overview of the chain
func (c *Chain) View() *View {
	return newView(c, 0)
}

// Subscan returns the view of the module at path, e.g. "sm1/sm2" or "sm1/sm2#3".
// The lookup walks one arena level per path segment.
func (c *Chain) Subscan(path string) (*View, error) {
	index := 0
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if segment == "" {
			continue
		}
		id, run := segment, 1
		if pos := strings.LastIndex(segment, "#"); pos != -1 {
			n, err := strconv.Atoi(segment[pos+1:])
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: chain %d path %q", ErrUnknownModule, c.ID, path)
			}
			id, run = segment[:pos], n
		}
		runs := c.modules[index].byID[id]
		if len(runs) < run {
			return nil, fmt.Errorf("%w: chain %d path %q", ErrUnknownModule, c.ID, path)
		}
		index = runs[run-1]
	}
	return newView(c, index), nil
}

// Subscans returns every scan module of the chain, depth first, truncated ones included
func (c *Chain) Subscans() []*View {
	var ret []*View
	var walk func(index int)
	walk = func(index int) {
		for _, child := range c.modules[index].Children {
			ret = append(ret, newView(c, child))
			walk(child)
		}
	}
	walk(0)
	return ret
}

// Modules returns a copy of the module arena
func (c *Chain) Modules() []Module {
	ret := make([]Module, len(c.modules))
	for i, m := range c.modules {
		ret[i] = *m
	}
	return ret
}

// HasTimestamps reports whether the chain carries a timestamp section
func (c *Chain) HasTimestamps() bool {
	return len(c.timestamps) > 0
}

// Timestamps returns the timestamp section ordered by position count
func (c *Chain) Timestamps() []Timestamp {
	return slices.Clone(c.timestamps)
}

// Elapsed returns the elapsed time at a position count
func (c *Chain) Elapsed(count int64) (Timestamp, bool) {
	i := sort.Search(len(c.timestamps), func(i int) bool { return c.timestamps[i].Count >= count })
	if i < len(c.timestamps) && c.timestamps[i].Count == count {
		return c.timestamps[i], true
	}
	return Timestamp{}, false
}

// SnapshotNames returns the devices of the snapshot section in declaration order
func (c *Chain) SnapshotNames() []string {
	return slices.Clone(c.snapshotOrder)
}

// Snapshot returns the snapshot values of a device ordered by position count
func (c *Chain) Snapshot(name string) iter.Seq2[int64, float64] {
	index, ok := c.snapshots[name]
	if !ok {
		return func(yield func(int64, float64) bool) {}
	}
	return c.iterate(index.entries, All)
}

// SnapshotBeforeAfter returns the first and last snapshot of a device, usually taken before and after the scan
func (c *Chain) SnapshotBeforeAfter(name string) (before, after Point, ok bool) {
	index, has := c.snapshots[name]
	if !has || len(index.entries) == 0 {
		return before, after, false
	}
	first, last := c.entries[index.entries[0]], c.entries[index.entries[len(index.entries)-1]]
	before = Point{Count: first.count, Value: *first.rec.Value}
	after = Point{Count: last.count, Value: *last.rec.Value}
	return before, after, true
}

// Monitors returns the monitor events of the chain ordered by time
func (c *Chain) Monitors() []MonitorEvent {
	return slices.Clone(c.monitors)
}

// iterate yields entries with distinct position counts in rng, first value wins
func (c *Chain) iterate(entries []int, rng Range) iter.Seq2[int64, float64] {
	return func(yield func(int64, float64) bool) {
		var prev int64
		started := false
		for _, i := range entries {
			e := c.entries[i]
			if !rng.Contains(e.count) || (started && e.count == prev) {
				continue
			}
			started, prev = true, e.count
			if !yield(e.count, *e.rec.Value) {
				return
			}
		}
	}
}
