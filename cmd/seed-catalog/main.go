// Command seed-catalog writes a bootstrap product dataset into the blob
// store, running every record through the catalog normalizer. It refuses to
// overwrite an existing catalog unless -force is given.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/misagal/retail-pos/internal/catalog"
	"github.com/misagal/retail-pos/internal/kvstore"
)

func main() {
	var (
		backend     string
		storePath   string
		databaseURL string
		key         string
		file        string
		force       bool
	)

	flag.StringVar(&backend, "backend", "bolt", "blob store backend: bolt or postgres")
	flag.StringVar(&storePath, "store-path", "pos.db", "bbolt database file path")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&key, "key", catalog.DefaultKey, "blob entry holding the serialized catalog")
	flag.StringVar(&file, "file", "", "products JSON file (.json or .json.gz); empty uses the embedded dataset")
	flag.BoolVar(&force, "force", false, "overwrite an existing catalog entry")
	flag.Parse()

	if backend == "postgres" && databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
		if databaseURL == "" {
			slog.Error("database URL is required: set -database-url or DATABASE_URL")
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, backend, storePath, databaseURL, key, file, force); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, backend, storePath, databaseURL, key, file string, force bool) error {
	kv, err := openStore(ctx, backend, storePath, databaseURL)
	if err != nil {
		return errors.Wrap(err, "open blob store")
	}
	defer func() { _ = kv.Close() }()

	// Existing catalogs are only replaced on request.
	if _, err := kv.Get(ctx, key); err == nil {
		if !force {
			return errors.Errorf("catalog entry %q already exists (use -force to overwrite)", key)
		}
		slog.Info("removing existing catalog entry", slog.String("key", key))
		if err := kv.Delete(ctx, key); err != nil {
			return errors.Wrap(err, "delete existing entry")
		}
	} else if !errors.Is(err, kvstore.ErrNotFound) {
		return errors.Wrap(err, "check existing entry")
	}

	var src catalog.Source = catalog.EmbeddedSource{}
	if file != "" {
		src = catalog.FileSource{Path: file}
		slog.Info("reading products file", slog.String("path", file))
	} else {
		slog.Info("using embedded dataset")
	}

	// Loading an absent entry seeds it from the source, normalizing every
	// record on the way in.
	store := catalog.NewStore(kv, key, src)
	products, err := store.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	slog.Info("catalog seeded",
		slog.String("key", key),
		slog.Int("products", len(products)),
	)
	return nil
}

func openStore(ctx context.Context, backend, storePath, databaseURL string) (kvstore.Store, error) {
	switch backend {
	case "bolt":
		return kvstore.OpenBolt(storePath)
	case "postgres":
		pool, err := kvstore.NewPool(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		if err := kvstore.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return kvstore.NewPostgres(pool), nil
	default:
		return nil, errors.Errorf("unknown backend %q (want bolt or postgres)", backend)
	}
}
