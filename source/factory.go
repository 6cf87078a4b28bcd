// Package source imports raw measurement records from storage.
package source

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/evedata/record"
)

// Importer provides the records of a measurement stored at URL
type Importer interface {
	Import(ctx context.Context, URL string) (record.Source, error)
}

// ImporterFunc adapts a function to Importer
type ImporterFunc func(ctx context.Context, URL string) (record.Source, error)

func (f ImporterFunc) Import(ctx context.Context, URL string) (record.Source, error) {
	return f(ctx, URL)
}

// Factory selects an importer by file extension
type Factory struct {
	fs        afs.Service
	importers map[string]Importer
}

// NewFactory creates a factory with the event log importer registered for .jsonl and .ndjson
func NewFactory(fs afs.Service) *Factory {
	if fs == nil {
		fs = afs.New()
	}
	ret := &Factory{fs: fs, importers: map[string]Importer{}}
	eventLog := NewEventLog(fs)
	ret.Register(".jsonl", eventLog)
	ret.Register(".ndjson", eventLog)
	return ret
}

// Register sets the importer of a file extension, e.g. ".h5"
func (f *Factory) Register(ext string, importer Importer) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	f.importers[ext] = importer
}

// GetImporter returns an appropriate importer based on file extension
func (f *Factory) GetImporter(URL string) (Importer, error) {
	ext := strings.ToLower(path.Ext(URL))
	if importer, ok := f.importers[ext]; ok {
		return importer, nil
	}
	return nil, fmt.Errorf("unsupported file type: %s", ext)
}

// Import is a convenience method that gets the appropriate importer and imports the file
func (f *Factory) Import(ctx context.Context, URL string) (record.Source, error) {
	importer, err := f.GetImporter(URL)
	if err != nil {
		return nil, err
	}
	return importer.Import(ctx, URL)
}
