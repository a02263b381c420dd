package datasource

import (
	"context"
	"fmt"

	"github.com/vanderheijden86/msmview/pkg/loader"
	"github.com/vanderheijden86/msmview/pkg/model"
)

// Load discovers the source at path and loads the dataset from it.
func Load(ctx context.Context, path string, opts loader.Options) (*model.Dataset, DataSource, error) {
	src, err := Discover(path)
	if err != nil {
		return nil, DataSource{}, err
	}
	ds, err := LoadFromSource(ctx, src, opts)
	return ds, src, err
}

// LoadFromSource loads a dataset from a specific DataSource, dispatching to
// the appropriate reader based on source type.
func LoadFromSource(ctx context.Context, source DataSource, opts loader.Options) (*model.Dataset, error) {
	switch source.Type {
	case SourceTypeDir:
		return loader.LoadDir(ctx, source.Path, opts)

	case SourceTypeBundle:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open bundle %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.Load(ctx, opts)

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}
