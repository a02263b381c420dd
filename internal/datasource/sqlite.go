package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/msmview/pkg/loader"
	"github.com/vanderheijden86/msmview/pkg/metrics"
	"github.com/vanderheijden86/msmview/pkg/model"
)

// SQLiteReader provides read access to a dataset bundle
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a bundle for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeBundle {
		return nil, fmt.Errorf("source is not a bundle: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	return &SQLiteReader{db: db, path: source.Path}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SchemaVersion returns the schema version recorded in the bundle.
func (r *SQLiteReader) SchemaVersion(ctx context.Context) (int, error) {
	meta, err := r.meta(ctx)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(meta[metaSchemaVersion])
	if err != nil {
		return 0, fmt.Errorf("bad schema version %q", meta[metaSchemaVersion])
	}
	return v, nil
}

// Load reads the whole bundle and assembles a validated dataset.
func (r *SQLiteReader) Load(ctx context.Context, opts loader.Options) (*model.Dataset, error) {
	defer metrics.Timer(metrics.DatasetLoad)()

	meta, err := r.meta(ctx)
	if err != nil {
		return nil, err
	}
	if v := meta[metaSchemaVersion]; v != strconv.Itoa(SchemaVersion) {
		return nil, fmt.Errorf("bundle %s has schema version %q, want %d", r.path, v, SchemaVersion)
	}

	parts := loader.NewParts()
	if doc := meta[metaManifest]; doc != "" {
		if parts.Manifest, err = loader.ParseManifest([]byte(doc)); err != nil {
			return nil, err
		}
	}
	if parts.Manifest.Name == "" {
		parts.Manifest.Name = meta[metaName]
	}

	if err := r.loadFields(ctx, parts); err != nil {
		return nil, err
	}
	if parts.Timescales, err = r.loadTimescales(ctx); err != nil {
		return nil, err
	}
	parts.Timescales.Unit = meta[metaLagUnit]
	if err := r.loadImages(ctx, parts); err != nil {
		return nil, err
	}
	return loader.Assemble(parts, opts)
}

func (r *SQLiteReader) meta(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("query meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

func (r *SQLiteReader) loadFields(ctx context.Context, parts *loader.Parts) error {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, id, doc FROM fields`)
	if err != nil {
		return fmt.Errorf("query fields: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var id int
		var doc []byte
		if err := rows.Scan(&kind, &id, &doc); err != nil {
			return err
		}
		f, err := loader.DecodeField(doc)
		if err != nil {
			return fmt.Errorf("%s %d: %w", kind, id, err)
		}
		switch kind {
		case fieldFreeEnergy:
			parts.FreeEnergy = f
		case fieldCluster:
			parts.Clusters[id] = f
		case fieldEigenvector:
			parts.Eigenvectors[id] = f
		default:
			return fmt.Errorf("unknown field kind %q", kind)
		}
	}
	return rows.Err()
}

func (r *SQLiteReader) loadTimescales(ctx context.Context) (loader.TimescaleTable, error) {
	var t loader.TimescaleTable
	rows, err := r.db.QueryContext(ctx,
		`SELECT process, lag_index, lag, timescale FROM timescales ORDER BY process, lag_index`)
	if err != nil {
		return t, fmt.Errorf("query timescales: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var process, idx int
		var lag, ts float64
		if err := rows.Scan(&process, &idx, &lag, &ts); err != nil {
			return t, err
		}
		if process < 1 || process > model.ProcessCount {
			return t, fmt.Errorf("timescale row for unknown process %d", process)
		}
		for len(t.Timescales) < process {
			t.Timescales = append(t.Timescales, nil)
		}
		t.Timescales[process-1] = append(t.Timescales[process-1], ts)
		if process == 1 {
			t.Lags = append(t.Lags, lag)
		}
	}
	return t, rows.Err()
}

func (r *SQLiteReader) loadImages(ctx context.Context, parts *loader.Parts) error {
	rows, err := r.db.QueryContext(ctx, `SELECT key, data FROM images`)
	if err != nil {
		return fmt.Errorf("query images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key int
		var data []byte
		if err := rows.Scan(&key, &data); err != nil {
			return err
		}
		img, err := loader.DecodeImage(data)
		if err != nil {
			return fmt.Errorf("image %s: %w", model.ImageKey(key), err)
		}
		parts.Images[model.ImageKey(key)] = img
	}
	return rows.Err()
}
