package dataset

import (
	"sort"

	"github.com/viant/evedata/section"
)

// seriesIndex is the derived view of one device: entry indices into the chain, never values
type seriesIndex struct {
	Series
	entries []int // increasing
}

// within returns the entry indices falling into [first, last)
func (s *seriesIndex) within(first, last int) []int {
	lo := sort.SearchInts(s.entries, first)
	hi := sort.SearchInts(s.entries, last)
	return s.entries[lo:hi]
}

// resolver indexes devices by name, in the order they are first declared
type resolver struct {
	series map[string]*seriesIndex
	order  []string
}

func newResolver() *resolver {
	return &resolver{series: map[string]*seriesIndex{}}
}

func (r *resolver) add(index int, e *entry) {
	if !e.hasCount || !e.rec.HasPayload() || e.rec.Name == "" {
		return
	}
	s, ok := r.series[e.rec.Name]
	if !ok {
		s = &seriesIndex{Series: Series{Name: e.rec.Name, Role: e.rec.DeviceRole(), Unit: e.rec.Unit, Order: len(r.order)}}
		r.series[e.rec.Name] = s
		r.order = append(r.order, e.rec.Name)
	}
	if s.Unit == "" {
		s.Unit = e.rec.Unit
	}
	s.entries = append(s.entries, index)
}

// consume indexes the standard section of a classified stream
func (r *resolver) consume(in <-chan classified) {
	for c := range in {
		if c.entry.section == section.Standard {
			r.add(c.index, c.entry)
		}
	}
}

// distinct counts the distinct position counts of entries, which are ordered by count
func distinct(entries []entry, indices []int) int {
	ret := 0
	var prev int64
	for i, index := range indices {
		if count := entries[index].count; i == 0 || count != prev {
			ret++
			prev = count
		}
	}
	return ret
}

// preferred picks a header-marked name present in candidates, or the candidate with most
// distinct position counts, ties going to the first declared
func preferred(marked string, candidates []Series) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	if marked != "" {
		for _, c := range candidates {
			if c.Name == marked {
				return marked, true
			}
		}
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Points > best.Points || (c.Points == best.Points && c.Order < best.Order) {
			best = c
		}
	}
	return best.Name, true
}
