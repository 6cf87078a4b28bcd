package dataset

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/viant/evedata/reconcile"
	"github.com/viant/evedata/record"
	"github.com/viant/evedata/section"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	checkEvery = 1024 // records read between cancellation checks
	bufferSize = 256
)

type builder struct {
	id     string
	URL    string
	logger *zap.SugaredLogger
}

// Build reads every record of src and builds the dataset.
// Chains whose position counts are malformed are left out and reported in Failures;
// Build fails only when the source fails, ctx is cancelled, or no chain could be built.
func Build(ctx context.Context, src record.Source, opts ...Option) (*Dataset, error) {
	b := &builder{logger: zap.S()}
	for _, opt := range opts {
		opt(b)
	}
	if b.id == "" {
		b.id = uuid.NewString()
	}
	header := src.Header()
	if header == nil {
		header = &record.Header{}
	}

	byChain := map[int][]*record.Record{}
	var ids []int
	n := 0
	for rec, err := range src.Records() {
		if err != nil {
			return nil, fmt.Errorf("failed to read records of %v: %w", b.URL, err)
		}
		if n++; n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if _, ok := byChain[rec.Chain]; !ok {
			ids = append(ids, rec.Chain)
		}
		byChain[rec.Chain] = append(byChain[rec.Chain], rec)
	}
	sort.Ints(ids)

	ret := &Dataset{ID: b.id, URL: b.URL, Metadata: b.metadata(header), chainIndex: map[int]int{}}
	for _, id := range ids {
		chain, warnings, err := b.buildChain(ctx, id, header.Chain(id), byChain[id])
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		for _, warning := range warnings {
			b.logger.Warnw("dataset warning", "url", b.URL, "chain", warning.Chain, "module", warning.Module, "error", warning.Err)
		}
		ret.Warnings = append(ret.Warnings, warnings...)
		if err != nil {
			b.logger.Errorw("chain left out", "url", b.URL, "chain", id, "error", err)
			ret.Failures = append(ret.Failures, Failure{Chain: id, Err: err})
			continue
		}
		chain.meta = &ret.Metadata
		ret.chainIndex[id] = len(ret.chains)
		ret.chains = append(ret.chains, chain)
	}
	if len(ret.chains) == 0 {
		if len(ret.Failures) == 0 {
			return nil, fmt.Errorf("%w: %v has no records", ErrNoChains, b.URL)
		}
		return nil, fmt.Errorf("%w: %w", ErrNoChains, errors.Join(failures(ret.Failures)...))
	}
	b.finish(ret)
	return ret, nil
}

func failures(list []Failure) []error {
	var ret []error
	for _, f := range list {
		ret = append(ret, f)
	}
	return ret
}

func (b *builder) metadata(header *record.Header) Metadata {
	ret := Metadata{
		Location:   header.Location,
		Comment:    header.Comment,
		Start:      header.Start,
		Stop:       header.Stop,
		Version:    header.Version,
		XMLVersion: header.XMLVersion,
		H5Version:  header.H5Version,
	}
	if ret.Comment == "" && b.URL != "" {
		ret.Comment = path.Base(b.URL)
	}
	if header.LiveComment != "" {
		ret.Comment = fmt.Sprintf("%s (live: %s)", ret.Comment, header.LiveComment)
	}
	return ret
}

// finish derives dataset-wide values from the built chains
func (b *builder) finish(ds *Dataset) {
	if ds.Metadata.Start.IsZero() {
		return
	}
	for _, chain := range ds.chains {
		for i := range chain.monitors {
			chain.monitors[i].Time = ds.Metadata.Start.Add(chain.monitors[i].Elapsed)
		}
	}
	if !ds.Metadata.Stop.IsZero() {
		return
	}
	var longest time.Duration
	for _, chain := range ds.chains {
		if n := len(chain.timestamps); n > 0 && chain.timestamps[n-1].Elapsed > longest {
			longest = chain.timestamps[n-1].Elapsed
		}
	}
	if longest > 0 {
		ds.Metadata.Stop = ds.Metadata.Start.Add(longest)
	}
}

// buildChain runs reconciler and classifier over a chain's records, then feeds the classified
// stream to the assembler and the resolver, which run concurrently
func (b *builder) buildChain(ctx context.Context, id int, header *record.ChainHeader, records []*record.Record) (*Chain, []Warning, error) {
	resolved, problems, err := reconcile.Chain(records)
	var warnings []Warning
	for _, problem := range problems {
		warnings = append(warnings, Warning{Chain: id, Err: problem})
	}
	if err != nil {
		return nil, warnings, err
	}

	asm := newAssembler(id)
	res := newResolver()
	toAssembler := make(chan classified, bufferSize)
	toResolver := make(chan classified, bufferSize)
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer close(toAssembler)
		defer close(toResolver)
		index := 0
		for _, r := range resolved {
			item := classified{index: -1}
			if r.IsBoundary() {
				item.boundary = r.Record
			} else {
				tag, warn := section.Classify(r.Record, r.ModuleKind, r.HasCount)
				if warn != nil {
					warnings = append(warnings, Warning{Chain: id, Err: warn})
				}
				item.index = index
				item.entry = &entry{rec: r.Record, count: r.Count, hasCount: r.HasCount, section: tag}
				index++
			}
			if err := send(gctx, toAssembler, item); err != nil {
				return err
			}
			if item.entry != nil && item.entry.section == section.Standard {
				if err := send(gctx, toResolver, item); err != nil {
					return err
				}
			}
		}
		return nil
	})
	group.Go(func() error {
		return asm.consume(gctx, toAssembler)
	})
	group.Go(func() error {
		res.consume(toResolver)
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, warnings, err
	}
	warnings = append(warnings, asm.warnings...)

	chain := &Chain{
		ID:            id,
		header:        header,
		entries:       asm.entries,
		modules:       asm.modules,
		series:        res.series,
		seriesOrder:   res.order,
		snapshots:     asm.snapshots.series,
		snapshotOrder: asm.snapshots.order,
		monitors:      asm.monitors,
	}
	sort.SliceStable(chain.monitors, func(i, j int) bool { return chain.monitors[i].Elapsed < chain.monitors[j].Elapsed })
	chain.timestamps, warnings = timestamps(id, asm, warnings)
	return chain, warnings, nil
}

func send(ctx context.Context, ch chan<- classified, item classified) error {
	select {
	case ch <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// timestamps builds the timestamp section: exactly the position counts of the standard and
// snapshot sections. Counts without a source entry carry the previous elapsed time over.
func timestamps(chainID int, asm *assembler, warnings []Warning) ([]Timestamp, []Warning) {
	if len(asm.elapsed) == 0 {
		return nil, warnings
	}
	seen := map[int64]bool{}
	var counts []int64
	for _, e := range asm.entries {
		if !e.hasCount || (e.section != section.Standard && e.section != section.Snapshot) || seen[e.count] {
			continue
		}
		seen[e.count] = true
		counts = append(counts, e.count)
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i] < counts[j] })
	ret := make([]Timestamp, 0, len(counts))
	var carried time.Duration
	var missing []int64
	for _, count := range counts {
		if ms, ok := asm.elapsed[count]; ok {
			carried = time.Duration(ms) * time.Millisecond
			ret = append(ret, Timestamp{Count: count, Elapsed: carried})
			continue
		}
		missing = append(missing, count)
		ret = append(ret, Timestamp{Count: count, Elapsed: carried, Inferred: true})
	}
	if len(missing) > 0 {
		warnings = append(warnings, Warning{Chain: chainID, Err: fmt.Errorf("%w: %v", ErrInferredTimestamp, missing)})
	}
	return ret, warnings
}
