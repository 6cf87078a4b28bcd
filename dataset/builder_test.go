package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/evedata/reconcile"
	"github.com/viant/evedata/record"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func energyScan(chain int) []*record.Record {
	return []*record.Record{
		record.Start(chain, "sm1", record.ModuleScan),
		record.Motor(chain, "energy", 1, 100, "eV"),
		record.Detector(chain, "diode", 1, 0.5, "A"),
		record.Deferred(chain, "diode_avg", 0.6, "A"),
		record.Timestamp(chain, 1, 0),
		record.Motor(chain, "energy", 2, 101, "eV"),
		record.Detector(chain, "diode", 2, 0.7, "A"),
		record.Timestamp(chain, 2, 100),
		record.Motor(chain, "energy", 3, 102, "eV"),
		record.Detector(chain, "diode", 3, 0.9, "A"),
		record.End(chain, "sm1"),
	}
}

func build(t *testing.T, header *record.Header, records ...*record.Record) *Dataset {
	ds, err := Build(context.Background(), record.NewSource(header, records...), WithLogger(zap.NewNop().Sugar()))
	if !assert.Nil(t, err) {
		t.FailNow()
	}
	return ds
}

func TestBuild(t *testing.T) {
	ds, err := Build(context.Background(), record.NewSource(&record.Header{Location: "KMC-3"}, energyScan(1)...),
		WithURL("mem://localhost/data/scan01.jsonl"), WithID("scan01"), WithLogger(zap.NewNop().Sugar()))
	if !assert.Nil(t, err) {
		return
	}
	assert.Equal(t, "scan01", ds.ID)
	assert.Equal(t, "KMC-3", ds.Metadata.Location)
	assert.Equal(t, "scan01.jsonl", ds.Metadata.Comment)
	assert.Len(t, ds.Chains(), 1)

	view := ds.View()
	assert.Equal(t, []Series{{Name: "energy", Role: record.RoleAxis, Unit: "eV", Points: 3}}, view.Axes())
	assert.Equal(t, []Series{
		{Name: "diode", Role: record.RoleChannel, Unit: "A", Order: 1, Points: 3},
		{Name: "diode_avg", Role: record.RoleChannel, Unit: "A", Order: 2, Points: 1},
	}, view.Channels())
	assert.Equal(t, []Point{{1, 0.5}, {2, 0.7}, {3, 0.9}}, view.Points("diode", All))
	assert.Equal(t, []Point{{2, 101}}, view.Points("energy", Range{From: 2, To: 2}))

	axis, ok := view.PreferredAxis()
	assert.True(t, ok)
	assert.Equal(t, "energy", axis)
	channel, _ := view.PreferredChannel()
	assert.Equal(t, "diode", channel)

	assert.Equal(t, []Timestamp{
		{Count: 1},
		{Count: 2, Elapsed: 100 * time.Millisecond},
		{Count: 3, Elapsed: 100 * time.Millisecond, Inferred: true},
	}, view.Timestamps())
	if assert.Len(t, ds.Warnings, 1) {
		assert.ErrorIs(t, ds.Warnings[0], ErrInferredTimestamp)
	}
	assert.False(t, ds.Truncated())
}

func TestBuild_TimestampCompleteness(t *testing.T) {
	ds := build(t, nil,
		record.Snapshot(1, "ring", record.RoleChannel, 1, 300.1, "mA"),
		record.Timestamp(1, 1, 0),
		record.Start(1, "sm1", record.ModuleScan),
		record.Motor(1, "x", 2, 0.1, "mm"),
		record.Timestamp(1, 2, 50),
		record.Motor(1, "x", 2, 0.1, "mm"),
		record.Motor(1, "x", 4, 0.2, "mm"),
		record.Timestamp(1, 4, 80),
		record.Timestamp(1, 9, 90),
		record.End(1, "sm1"),
		record.Snapshot(1, "ring", record.RoleChannel, 5, 299.8, "mA"),
	)
	chain := ds.Chains()[0]
	var counts []int64
	for _, ts := range chain.Timestamps() {
		counts = append(counts, ts.Count)
	}
	assert.Equal(t, []int64{1, 2, 4, 5}, counts, "exactly the standard and snapshot counts")
	last, ok := chain.Elapsed(5)
	assert.True(t, ok)
	assert.True(t, last.Inferred)
	assert.Equal(t, 80*time.Millisecond, last.Elapsed)
	_, ok = chain.Elapsed(9)
	assert.False(t, ok, "orphan timestamp dropped")

	before, after, ok := chain.SnapshotBeforeAfter("ring")
	assert.True(t, ok)
	assert.Equal(t, Point{Count: 1, Value: 300.1}, before)
	assert.Equal(t, Point{Count: 5, Value: 299.8}, after)
	assert.Equal(t, []string{"ring"}, chain.SnapshotNames())
	_, has := ds.View().Series("ring")
	assert.False(t, has, "snapshots stay out of the standard section")
}

func TestBuild_MonitorInSnapshot(t *testing.T) {
	ds := build(t, nil,
		record.Start(1, "snap", record.ModuleSnapshot),
		record.Snapshot(1, "ring", record.RoleChannel, 1, 300.1, "mA"),
		record.Monitor(1, "shutter", 20, 1, ""),
		record.End(1, "snap"),
		record.Start(1, "sm1", record.ModuleScan),
		record.Motor(1, "x", 2, 0, "mm"),
		record.End(1, "sm1"),
	)
	chain := ds.Chains()[0]
	assert.Equal(t, []string{"ring"}, chain.SnapshotNames())
	assert.Equal(t, []string{"shutter"}, ds.Monitors())
	if events := chain.Monitors(); assert.Len(t, events, 1) {
		assert.Equal(t, "shutter", events[0].Name)
	}
}

func TestBuild_PositioningReassigned(t *testing.T) {
	ds := build(t, nil,
		record.Start(1, "pos", record.ModulePositioning),
		record.Motor(1, "x", 3, 0, "mm"),
		record.Positioning(1, "x", 3, 1.5, "mm"),
		record.End(1, "pos"),
	)
	assert.Empty(t, ds.Failures)
	if assert.Len(t, ds.Warnings, 1) {
		assert.ErrorIs(t, ds.Warnings[0], reconcile.ErrReassignedPosition)
	}
	assert.Equal(t, []Point{{3, 0}, {4, 1.5}}, ds.View().Points("x", All))
}

func TestDataset_AccessorsCopy(t *testing.T) {
	ds := build(t, nil,
		record.Monitor(1, "ring", 5, 300, "mA"),
		record.Snapshot(1, "ring_snap", record.RoleChannel, 1, 300.1, "mA"),
		record.Start(1, "sm1", record.ModuleScan),
		record.Motor(1, "x", 2, 0, "mm"),
		record.Timestamp(1, 1, 0),
		record.Timestamp(1, 2, 10),
		record.End(1, "sm1"),
	)
	chain := ds.Chains()[0]
	ds.Chains()[0] = nil
	chain.Timestamps()[0].Count = 99
	chain.SnapshotNames()[0] = "changed"
	chain.Monitors()[0].Name = "changed"
	ds.View().Timestamps()[0].Count = 99

	assert.Same(t, chain, ds.Chains()[0])
	assert.EqualValues(t, 1, chain.Timestamps()[0].Count)
	assert.EqualValues(t, 1, ds.View().Timestamps()[0].Count)
	assert.Equal(t, []string{"ring_snap"}, chain.SnapshotNames())
	assert.Equal(t, "ring", chain.Monitors()[0].Name)
}

func TestBuild_NoTimestampSection(t *testing.T) {
	ds := build(t, nil,
		record.Start(1, "sm1", record.ModuleScan),
		record.Motor(1, "x", 1, 0, "mm"),
		record.End(1, "sm1"),
	)
	assert.False(t, ds.Chains()[0].HasTimestamps())
	assert.Empty(t, ds.Warnings)
}

func TestBuild_DeferredDropped(t *testing.T) {
	ds := build(t, nil,
		record.Start(1, "sm1", record.ModuleScan),
		record.Deferred(1, "diode_avg", 9.9, "A"),
		record.Motor(1, "energy", 1, 100, "eV"),
		record.Detector(1, "diode", 1, 0.5, "A"),
		record.Deferred(1, "diode_avg", 0.6, "A"),
		record.End(1, "sm1"),
	)
	assert.Equal(t, []Point{{1, 0.6}}, ds.View().Points("diode_avg", All))
	if assert.Len(t, ds.Warnings, 1) {
		assert.ErrorIs(t, ds.Warnings[0], reconcile.ErrUnresolvedDeferral)
	}
}

func TestBuild_Truncated(t *testing.T) {
	ds := build(t, nil,
		record.Start(1, "sm1", record.ModuleScan),
		record.Motor(1, "x", 1, 0, "mm"),
		record.StartIn(1, "sm2", "sm1", record.ModuleScan),
		record.Detector(1, "d", 2, 1, "V"),
		record.Detector(1, "d", 3, 2, "V"),
		record.End(1, "sm1"),
		record.Start(1, "sm3", record.ModuleScan),
		record.Motor(1, "y", 4, 5, "mm"),
	)
	assert.True(t, ds.Truncated())
	subscans, err := ds.Subscans(1)
	if !assert.Nil(t, err) {
		return
	}
	var paths []string
	for _, sub := range subscans {
		paths = append(paths, sub.Path())
	}
	assert.Equal(t, []string{"sm1", "sm1/sm2", "sm3"}, paths)

	sm1, sm2, sm3 := subscans[0], subscans[1], subscans[2]
	assert.False(t, sm1.Module().Truncated)
	assert.True(t, sm1.Truncated(), "a truncated subscan marks its parents")
	assert.True(t, sm2.Module().Truncated)
	assert.True(t, sm3.Module().Truncated)
	assert.Equal(t, []Point{{2, 1}, {3, 2}}, sm2.Points("d", All), "data of truncated modules is kept")

	var truncated []string
	for _, warning := range ds.Warnings {
		if errors.Is(warning, ErrIncompleteScan) {
			truncated = append(truncated, warning.Module)
		}
	}
	assert.Equal(t, []string{"sm1/sm2", "sm3"}, truncated)
}

func TestBuild_ChainFailures(t *testing.T) {
	malformed := []*record.Record{
		record.Start(2, "sm1", record.ModuleScan),
		record.Motor(2, "x", 5, 0, "mm"),
		record.Motor(2, "x", 4, 0, "mm"),
		record.End(2, "sm1"),
	}
	records := append(energyScan(1), malformed...)
	ds := build(t, nil, records...)
	assert.Len(t, ds.Chains(), 1)
	if assert.Len(t, ds.Failures, 1) {
		assert.Equal(t, 2, ds.Failures[0].Chain)
		assert.ErrorIs(t, ds.Failures[0], reconcile.ErrMalformedSequence)
	}
	_, err := ds.Chain(2)
	assert.ErrorIs(t, err, ErrUnknownChain)

	_, err = Build(context.Background(), record.NewSource(nil, malformed...), WithLogger(zap.NewNop().Sugar()))
	assert.ErrorIs(t, err, ErrNoChains)
	assert.ErrorIs(t, err, reconcile.ErrMalformedSequence)
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ds, err := Build(ctx, record.NewSource(nil, energyScan(1)...), WithLogger(zap.NewNop().Sugar()))
	assert.Nil(t, ds)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	_, err := Build(context.Background(), record.NewSource(nil,
		record.Start(1, "sm1", record.ModuleScan),
		record.Motor(1, "x", 1, 0, "mm"),
	), WithLogger(zap.New(core).Sugar()))
	assert.Nil(t, err)
	entries := logs.FilterMessage("dataset warning").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "sm1", entries[0].ContextMap()["module"])
	}
}

func TestBuild_Metadata(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ds := build(t, &record.Header{Comment: "XANES Fe", LiveComment: "beam lost", Start: start},
		record.Monitor(1, "ring", 250, 299.5, "mA"),
		record.Start(1, "sm1", record.ModuleScan),
		record.Motor(1, "x", 1, 0, "mm"),
		record.Timestamp(1, 1, 1500),
		record.End(1, "sm1"),
		record.Monitor(1, "ring", 100, 300.0, "mA"),
	)
	assert.Equal(t, "XANES Fe (live: beam lost)", ds.Metadata.Comment)
	assert.Equal(t, start.Add(1500*time.Millisecond), ds.Metadata.Stop)
	assert.Equal(t, []string{"ring"}, ds.Monitors())
	events := ds.Monitor("ring")
	if assert.Len(t, events, 2) {
		assert.Equal(t, 300.0, events[0].Value, "ordered by time")
		assert.Equal(t, start.Add(250*time.Millisecond), events[1].Time)
	}
}
