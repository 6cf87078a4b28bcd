// Package reconcile assigns and validates position counts of a chain's raw records.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/viant/evedata/record"
)

var (
	// ErrMalformedSequence reports a chain whose position counts cannot be trusted
	ErrMalformedSequence = errors.New("malformed position count sequence")
	// ErrUnresolvedDeferral reports a deferred read without a preceding non-deferred read in its module
	ErrUnresolvedDeferral = errors.New("unresolved deferred record")
	// ErrMissingPosition reports a record that needs a position count but carries none
	ErrMissingPosition = errors.New("missing position count")
	// ErrReassignedPosition reports a positioning record whose count was taken already
	ErrReassignedPosition = errors.New("reassigned position count")
)

// Resolved is a raw record with its resolved position count and enclosing module
type Resolved struct {
	*record.Record
	Seq        int  // index in the chain's raw stream
	HasCount   bool // false for boundaries and monitor updates outside the scan grid
	Count      int64
	ModuleKind record.ModuleKind // kind of the innermost open module
}

type state struct {
	stack   record.Stack
	lasts   []last // per open module, index 0 is the chain root
	last    int64  // last assigned count of the chain
	hasLast bool
}

type last struct {
	count int64
	ok    bool
}

func (s *state) open(rec *record.Record) {
	closed := s.stack.Push(rec)
	s.lasts = append(s.lasts[:len(s.lasts)-len(closed)], last{})
}

func (s *state) close(rec *record.Record) {
	if _, implicit, ok := s.stack.Pop(rec.Module); ok {
		s.lasts = s.lasts[:len(s.lasts)-len(implicit)-1]
	}
}

func (s *state) module() *last {
	return &s.lasts[len(s.lasts)-1]
}

func (s *state) assign(count int64) {
	s.last, s.hasLast = count, true
	*s.module() = last{count: count, ok: true}
}

// Chain resolves the position counts of one chain's records, given in emission order.
// Recoverable problems are returned as warnings, and the affected records are left out.
// A violated sequence fails the whole chain with ErrMalformedSequence.
func Chain(records []*record.Record) ([]*Resolved, []error, error) {
	s := &state{lasts: []last{{}}}
	var warnings []error
	ret := make([]*Resolved, 0, len(records))
	for seq, rec := range records {
		resolved := &Resolved{Record: rec, Seq: seq, ModuleKind: s.stack.Kind()}
		switch {
		case rec.Kind == record.KindModuleStart:
			s.open(rec)
			resolved.ModuleKind = rec.ModuleKind
			ret = append(ret, resolved)
			continue
		case rec.Kind == record.KindModuleEnd:
			s.close(rec)
			ret = append(ret, resolved)
			continue
		case rec.IsTimestamp():
			if rec.PosCount == nil {
				warnings = append(warnings, fmt.Errorf("%w: timestamp record #%d", ErrMissingPosition, seq))
				continue
			}
			resolved.Count, resolved.HasCount = *rec.PosCount, true
		case rec.Kind == record.KindMonitor && (rec.PosCount == nil || !s.stack.Kind().Advances()):
			// value-on-change update, not tied to the scan grid
		case rec.Kind == record.KindPositioning:
			count := s.last + 1
			if rec.PosCount != nil {
				if raw := *rec.PosCount; !s.hasLast || raw > s.last {
					count = raw
				} else {
					warnings = append(warnings, fmt.Errorf("%w: positioning %q #%d carries position count %d, reassigned to %d", ErrReassignedPosition, rec.Name, seq, raw, count))
				}
			}
			s.assign(count)
			resolved.Count, resolved.HasCount = count, true
		case rec.Deferred:
			module := s.module()
			if !module.ok {
				warnings = append(warnings, fmt.Errorf("%w: %q #%d has no preceding read in its module", ErrUnresolvedDeferral, rec.Name, seq))
				continue
			}
			if module.count < s.last {
				warnings = append(warnings, fmt.Errorf("%w: %q #%d follows position count %d of its module, chain is at %d", ErrUnresolvedDeferral, rec.Name, seq, module.count, s.last))
				continue
			}
			resolved.Count, resolved.HasCount = module.count, true
		default:
			if rec.PosCount == nil {
				if !isKnown(rec.Kind) {
					warnings = append(warnings, fmt.Errorf("%w: %s record %q #%d", ErrMissingPosition, rec.Kind, rec.Name, seq))
					continue
				}
				return nil, warnings, fmt.Errorf("%w: %s record %q #%d: %w", ErrMalformedSequence, rec.Kind, rec.Name, seq, ErrMissingPosition)
			}
			count := *rec.PosCount
			if s.hasLast && count < s.last {
				return nil, warnings, fmt.Errorf("%w: %q #%d position count %d after %d", ErrMalformedSequence, rec.Name, seq, count, s.last)
			}
			s.assign(count)
			resolved.Count, resolved.HasCount = count, true
		}
		ret = append(ret, resolved)
	}
	return ret, warnings, nil
}

func isKnown(kind record.Kind) bool {
	switch kind {
	case record.KindMotor, record.KindDetector, record.KindSnapshot, record.KindMonitor, record.KindPositioning:
		return true
	}
	return false
}
