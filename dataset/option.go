package dataset

import "go.uber.org/zap"

type Option func(*builder)

// WithLogger sets the logger used to surface warnings
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(b *builder) {
		b.logger = logger
	}
}

// WithURL sets the location the records were imported from
func WithURL(URL string) Option {
	return func(b *builder) {
		b.URL = URL
	}
}

// WithID sets the dataset identifier, a random UUID is used otherwise
func WithID(id string) Option {
	return func(b *builder) {
		b.id = id
	}
}
