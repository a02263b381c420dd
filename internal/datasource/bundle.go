package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/vanderheijden86/msmview/pkg/loader"
	"github.com/vanderheijden86/msmview/pkg/model"
)

// WriteBundle stores ds as a single SQLite file at path, replacing any
// existing file.
func WriteBundle(ctx context.Context, ds *model.Dataset, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing bundle: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertMeta(ctx, tx, ds); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	if err := insertFields(ctx, tx, ds); err != nil {
		return fmt.Errorf("insert fields: %w", err)
	}
	if err := insertTimescales(ctx, tx, ds); err != nil {
		return fmt.Errorf("insert timescales: %w", err)
	}
	if err := insertImages(ctx, tx, ds); err != nil {
		return fmt.Errorf("insert images: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	return nil
}

func insertMeta(ctx context.Context, tx *sql.Tx, ds *model.Dataset) error {
	manifest, err := loader.MarshalManifest(loader.ManifestFor(ds))
	if err != nil {
		return err
	}
	values := map[string]string{
		metaSchemaVersion: strconv.Itoa(SchemaVersion),
		metaName:          ds.Name,
		metaLagUnit:       ds.LagUnit,
		metaManifest:      string(manifest),
	}
	for k, v := range values {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return err
		}
	}
	return nil
}

func insertFields(ctx context.Context, tx *sql.Tx, ds *model.Dataset) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO fields (kind, id, doc) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	put := func(kind string, id int, f *model.ScalarField) error {
		doc, err := loader.EncodeField(f)
		if err != nil {
			return fmt.Errorf("%s %d: %w", kind, id, err)
		}
		_, err = stmt.ExecContext(ctx, kind, id, doc)
		return err
	}

	if err := put(fieldFreeEnergy, 0, ds.FreeEnergy); err != nil {
		return err
	}
	for _, c := range ds.Clusters {
		if err := put(fieldCluster, c.ID, c.Density); err != nil {
			return err
		}
	}
	for _, p := range ds.Processes {
		if err := put(fieldEigenvector, p.ID, p.Eigenvector); err != nil {
			return err
		}
	}
	return nil
}

func insertTimescales(ctx context.Context, tx *sql.Tx, ds *model.Dataset) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO timescales (process, lag_index, lag, timescale) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range ds.Processes {
		for i, ts := range p.Timescales {
			if _, err := stmt.ExecContext(ctx, p.ID, i, ds.Lags[i], ts); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertImages(ctx context.Context, tx *sql.Tx, ds *model.Dataset) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO images (key, data) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, img := range ds.Images {
		data, err := loader.EncodePNG(img)
		if err != nil {
			return fmt.Errorf("image %s: %w", key, err)
		}
		if _, err := stmt.ExecContext(ctx, int(key), data); err != nil {
			return err
		}
	}
	return nil
}
