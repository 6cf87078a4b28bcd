// Package loader builds datasets from files, in parallel, caching them by file version.
package loader

import (
	"context"
	"fmt"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/viant/afs"
	"github.com/viant/evedata/dataset"
	"github.com/viant/evedata/source"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Loader builds datasets from files. A file version is built at most once at a time;
// concurrent requests for it wait for the same build.
type Loader struct {
	config  *Config
	fs      afs.Service
	factory *source.Factory
	logger  *zap.SugaredLogger
	cache   *lru.Cache
	group   singleflight.Group
}

// New creates a loader
func New(opts ...Option) (*Loader, error) {
	ret := &Loader{}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.config == nil {
		ret.config = DefaultConfig()
	}
	if err := ret.config.Validate(); err != nil {
		return nil, err
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	if ret.factory == nil {
		ret.factory = source.NewFactory(ret.fs)
	}
	if ret.logger == nil {
		ret.logger = zap.S()
	}
	var err error
	if ret.cache, err = lru.New(ret.config.CacheSize); err != nil {
		return nil, err
	}
	return ret, nil
}

// Load returns the dataset of the file at URL, from cache while the file is unchanged.
// The build of a file version outlives the caller that started it: a caller whose ctx is done
// stops waiting, while the others still get the dataset.
func (l *Loader) Load(ctx context.Context, URL string) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to load %v: %w", URL, err)
	}
	object, err := l.fs.Object(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to locate %v: %w", URL, err)
	}
	key, err := NewKey(URL, object.ModTime())
	if err != nil {
		return nil, err
	}
	if cached, ok := l.cache.Get(key); ok {
		cacheRequests.WithLabelValues("hit").Inc()
		l.logger.Debugw("dataset cache hit", "url", URL)
		return cached.(*dataset.Dataset), nil
	}
	cacheRequests.WithLabelValues("miss").Inc()
	buildCtx := context.WithoutCancel(ctx)
	results := l.group.DoChan(strconv.FormatUint(uint64(key), 16), func() (interface{}, error) {
		if cached, ok := l.cache.Get(key); ok {
			return cached, nil
		}
		ds, err := l.build(buildCtx, URL)
		if err != nil {
			return nil, err
		}
		l.cache.Add(key, ds)
		return ds, nil
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to load %v: %w", URL, ctx.Err())
	case result := <-results:
		if result.Err != nil {
			return nil, result.Err
		}
		if result.Shared {
			l.logger.Debugw("dataset build shared", "url", URL)
		}
		return result.Val.(*dataset.Dataset), nil
	}
}

func (l *Loader) build(ctx context.Context, URL string) (*dataset.Dataset, error) {
	started := time.Now()
	src, err := l.factory.Import(ctx, URL)
	if err == nil {
		var ds *dataset.Dataset
		if ds, err = dataset.Build(ctx, src, dataset.WithURL(URL), dataset.WithLogger(l.logger)); err == nil {
			buildDuration.Observe(time.Since(started).Seconds())
			buildsTotal.WithLabelValues("ok").Inc()
			failedChainsTotal.Add(float64(len(ds.Failures)))
			l.logger.Infow("dataset built", "url", URL, "id", ds.ID, "chains", len(ds.Chains()), "warnings", len(ds.Warnings), "elapsed", time.Since(started))
			return ds, nil
		}
	}
	buildsTotal.WithLabelValues("error").Inc()
	return nil, fmt.Errorf("failed to load %v: %w", URL, err)
}

// LoadAll loads files in parallel, Config.Workers at a time. Results follow the order of URLs;
// the first failure cancels the remaining loads.
func (l *Loader) LoadAll(ctx context.Context, URLs ...string) ([]*dataset.Dataset, error) {
	ret := make([]*dataset.Dataset, len(URLs))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(l.config.Workers)
	for i, URL := range URLs {
		group.Go(func() error {
			ds, err := l.Load(gctx, URL)
			ret[i] = ds
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return ret, nil
}

// Cached returns the number of datasets in cache
func (l *Loader) Cached() int {
	return l.cache.Len()
}

// Purge empties the cache
func (l *Loader) Purge() {
	l.cache.Purge()
}
