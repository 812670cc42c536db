package resource

import (
	"context"
	"fmt"
	"sync"

	"jasypt-go/internal/config"
	"jasypt-go/internal/jasypt"
)

// Router dispatches a location to the loader registered for its scheme.
// The S3 loader is built on first use so that configurations without s3://
// locations never touch AWS configuration. A failed build is retried on the
// next s3:// load.
type Router struct {
	fs *FileSystemLoader

	newS3 func(context.Context) (jasypt.ResourceLoader, error)
	s3Mu  sync.Mutex
	s3    jasypt.ResourceLoader
}

var _ jasypt.ResourceLoader = (*Router)(nil)

// NewLoaderFromConfig creates the resource loader described by cfg.
// Locations ending in ".age" are decrypted with cfg.AgeIdentityFile.
func NewLoaderFromConfig(cfg config.ResourceConfig) *AgeLoader {
	return NewAgeLoader(NewRouter(cfg), cfg.AgeIdentityFile)
}

// NewRouter creates the scheme router for cfg without age decryption.
func NewRouter(cfg config.ResourceConfig) *Router {
	return &Router{
		fs: NewFileSystemLoader(cfg.ClasspathDirs),
		newS3: func(ctx context.Context) (jasypt.ResourceLoader, error) {
			return NewS3LoaderFromConfig(ctx, cfg.S3)
		},
	}
}

// Load reads location with the loader for its scheme.
func (r *Router) Load(ctx context.Context, location string) ([]byte, error) {
	scheme, _ := splitScheme(location)
	if scheme != schemeS3 {
		return r.fs.Load(ctx, location)
	}

	s3, err := r.s3Loader(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating s3 loader: %w", err)
	}
	return s3.Load(ctx, location)
}

func (r *Router) s3Loader(ctx context.Context) (jasypt.ResourceLoader, error) {
	r.s3Mu.Lock()
	defer r.s3Mu.Unlock()

	if r.s3 != nil {
		return r.s3, nil
	}
	s3, err := r.newS3(ctx)
	if err != nil {
		return nil, err
	}
	r.s3 = s3
	return s3, nil
}
