package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/goccy/go-json"
	"github.com/viant/afs"
	"github.com/viant/evedata/record"
)

// ErrMalformedLog reports an event log line that cannot be decoded
var ErrMalformedLog = errors.New("malformed event log")

// EventLog imports JSON lines event logs: an optional first line {"header": {...}}
// followed by one record object per line. Blank lines are skipped.
type EventLog struct {
	fs afs.Service
}

// NewEventLog creates an event log importer
func NewEventLog(fs afs.Service) *EventLog {
	if fs == nil {
		fs = afs.New()
	}
	return &EventLog{fs: fs}
}

// Import downloads and parses the event log at URL
func (l *EventLog) Import(ctx context.Context, URL string) (record.Source, error) {
	data, err := l.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download %v: %w", URL, err)
	}
	return Parse(data)
}

type headerLine struct {
	Header *record.Header `json:"header"`
}

type eventLog struct {
	header *record.Header
	data   []byte
	line   int // number of the first record line
}

// Parse decodes the header of an event log; records are decoded lazily on every range over Records
func Parse(data []byte) (record.Source, error) {
	ret := &eventLog{header: &record.Header{}, data: data, line: 1}
	first, rest, _ := bytes.Cut(data, []byte("\n"))
	first = bytes.TrimSpace(first)
	if !bytes.HasPrefix(first, []byte(`{"header"`)) {
		return ret, nil
	}
	line := headerLine{}
	if err := json.Unmarshal(first, &line); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedLog, err)
	}
	if line.Header != nil {
		ret.header = line.Header
	}
	ret.data, ret.line = rest, 2
	return ret, nil
}

func (l *eventLog) Header() *record.Header {
	return l.header
}

func (l *eventLog) Records() iter.Seq2[*record.Record, error] {
	return func(yield func(*record.Record, error) bool) {
		data := l.data
		for number := l.line; len(data) > 0; number++ {
			var line []byte
			line, data, _ = bytes.Cut(data, []byte("\n"))
			if line = bytes.TrimSpace(line); len(line) == 0 {
				continue
			}
			rec := &record.Record{}
			if err := json.Unmarshal(line, rec); err != nil {
				yield(nil, fmt.Errorf("%w: line %d: %v", ErrMalformedLog, number, err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}
