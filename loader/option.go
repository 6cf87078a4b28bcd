package loader

import (
	"github.com/viant/afs"
	"github.com/viant/evedata/source"
	"go.uber.org/zap"
)

type Option func(*Loader)

func WithConfig(config *Config) Option {
	return func(l *Loader) {
		l.config = config
	}
}

// WithFS sets the storage service files are stat-ed and read with
func WithFS(fs afs.Service) Option {
	return func(l *Loader) {
		l.fs = fs
	}
}

// WithFactory sets the importer factory, e.g. with additional formats registered
func WithFactory(factory *source.Factory) Option {
	return func(l *Loader) {
		l.factory = factory
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}
