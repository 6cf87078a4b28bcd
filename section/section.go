// Package section classifies resolved records into dataset sections.
package section

import (
	"errors"
	"fmt"

	"github.com/viant/evedata/record"
)

// Section tags the part of a chain a record belongs to
type Section string

const (
	Standard  Section = "standard"
	Snapshot  Section = "snapshot"
	Monitor   Section = "monitor"
	Timestamp Section = "timestamp"
)

// ErrUnclassified reports a record no rule matched; it is kept in the standard section
var ErrUnclassified = errors.New("unclassified record")

// Classify returns the section of a data record given the kind of its innermost module
// and whether a position count was resolved for it. The first matching rule wins.
// The returned error is a warning only, the section is always valid.
func Classify(rec *record.Record, module record.ModuleKind, hasCount bool) (Section, error) {
	switch {
	case rec.IsTimestamp():
		return Timestamp, nil
	case rec.Kind == record.KindMonitor && (!module.Advances() || !hasCount):
		return Monitor, nil
	case hasCount && (module == record.ModuleSnapshot || rec.Kind == record.KindSnapshot):
		return Snapshot, nil
	case module.Advances() && isScanKind(rec.Kind):
		return Standard, nil
	}
	return Standard, fmt.Errorf("%w: %s record %q in %q module", ErrUnclassified, rec.Kind, rec.Name, moduleName(module))
}

func isScanKind(kind record.Kind) bool {
	switch kind {
	case record.KindMotor, record.KindDetector, record.KindPositioning, record.KindMonitor:
		return true
	}
	return false
}

func moduleName(kind record.ModuleKind) string {
	if kind == record.ModuleNone {
		return "none"
	}
	return string(kind)
}
