package dataset

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/viant/evedata/record"
	"github.com/viant/evedata/section"
)

// classified is an item of a chain's classified stream; boundaries carry no entry
type classified struct {
	index    int
	entry    *entry
	boundary *record.Record
}

// assembler rebuilds the module arena of a chain from boundary markers
type assembler struct {
	chain     int
	entries   []entry
	modules   []*Module
	open      []int
	stack     record.Stack
	snapshots *resolver
	elapsed   map[int64]int64
	monitors  []MonitorEvent
	warnings  []Warning
}

func newAssembler(chain int) *assembler {
	root := &Module{Parent: -1, byID: map[string][]int{}}
	return &assembler{
		chain:     chain,
		modules:   []*Module{root},
		snapshots: newResolver(),
		elapsed:   map[int64]int64{},
	}
}

func (a *assembler) top() int {
	if len(a.open) == 0 {
		return 0
	}
	return a.open[len(a.open)-1]
}

// consume assembles the whole stream; ctx is checked after every closed module
func (a *assembler) consume(ctx context.Context, in <-chan classified) error {
	for c := range in {
		if c.boundary == nil {
			a.add(c.entry)
			continue
		}
		var err error
		switch c.boundary.Kind {
		case record.KindModuleStart:
			err = a.start(ctx, c.boundary)
		case record.KindModuleEnd:
			err = a.end(ctx, c.boundary)
		}
		if err != nil {
			return err
		}
	}
	for range a.stack.Drain() {
		if err := a.close(ctx, true); err != nil {
			return err
		}
	}
	root := a.modules[0]
	root.Last = len(a.entries)
	for _, child := range root.Children {
		root.partial = root.partial || a.modules[child].partial
	}
	return nil
}

func (a *assembler) start(ctx context.Context, rec *record.Record) error {
	for range a.stack.Push(rec) {
		if err := a.close(ctx, true); err != nil {
			return err
		}
	}
	parentIndex := a.top()
	parent := a.modules[parentIndex]
	index := len(a.modules)
	run := len(parent.byID[rec.Module]) + 1
	segment := rec.Module
	if run > 1 {
		segment += "#" + strconv.Itoa(run)
	}
	path := segment
	if parent.Path != "" {
		path = parent.Path + "/" + segment
	}
	a.modules = append(a.modules, &Module{
		ID:     rec.Module,
		Kind:   rec.ModuleKind,
		Path:   path,
		Depth:  parent.Depth + 1,
		Parent: parentIndex,
		First:  len(a.entries),
		byID:   map[string][]int{},
	})
	parent.Children = append(parent.Children, index)
	parent.byID[rec.Module] = append(parent.byID[rec.Module], index)
	a.open = append(a.open, index)
	return nil
}

func (a *assembler) end(ctx context.Context, rec *record.Record) error {
	_, implicit, ok := a.stack.Pop(rec.Module)
	if !ok {
		a.warnings = append(a.warnings, Warning{Chain: a.chain, Module: rec.Module, Err: fmt.Errorf("%w: end marker without start", ErrUnknownModule)})
		return nil
	}
	for range implicit {
		if err := a.close(ctx, true); err != nil {
			return err
		}
	}
	return a.close(ctx, false)
}

// close closes the innermost open module
func (a *assembler) close(ctx context.Context, truncated bool) error {
	index := a.top()
	a.open = a.open[:len(a.open)-1]
	module := a.modules[index]
	module.Last = len(a.entries)
	module.Truncated = truncated
	module.partial = truncated
	for _, child := range module.Children {
		module.partial = module.partial || a.modules[child].partial
	}
	if truncated {
		a.warnings = append(a.warnings, Warning{Chain: a.chain, Module: module.Path, Err: fmt.Errorf("%w: closed without end marker", ErrIncompleteScan)})
	}
	return ctx.Err()
}

func (a *assembler) add(e *entry) {
	index := len(a.entries)
	a.entries = append(a.entries, *e)
	switch e.section {
	case section.Snapshot:
		a.snapshots.add(index, e)
	case section.Timestamp:
		if _, ok := a.elapsed[e.count]; !ok && e.hasCount {
			a.elapsed[e.count] = *e.rec.ElapsedMs
		}
	case section.Monitor:
		if !e.rec.HasPayload() {
			return
		}
		event := MonitorEvent{Name: e.rec.Name, Value: *e.rec.Value, Unit: e.rec.Unit}
		if e.rec.ElapsedMs != nil {
			event.Elapsed = time.Duration(*e.rec.ElapsedMs) * time.Millisecond
		}
		a.monitors = append(a.monitors, event)
	}
}
