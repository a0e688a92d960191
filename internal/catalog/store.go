package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/misagal/retail-pos/internal/kvstore"
)

// DefaultKey is the blob store entry holding the serialized catalog. The name
// is the one the original terminal used in its local storage.
const DefaultKey = "myProductItems"

// Store loads and saves the full product collection through the blob store.
// There is no row-level persistence: every writer loads the whole collection,
// mutates its own copy, and saves the whole collection back.
type Store struct {
	kv   kvstore.Store
	key  string
	seed Source
}

// NewStore creates a Store over the given blob store entry. seed may be nil
// when no bootstrap dataset is available.
func NewStore(kv kvstore.Store, key string, seed Source) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key, seed: seed}
}

// Load fetches, parses, and normalizes the stored catalog.
//
// An absent entry triggers a one-time seed from the bootstrap source; a
// failed or missing source yields an empty catalog without error. Unparsable
// content also yields an empty catalog (logged, never fatal) while leaving
// the stored blob untouched. When normalization changed anything, the
// canonical form is persisted back so the schema converges after one cycle.
func (s *Store) Load(ctx context.Context) ([]Product, error) {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return s.bootstrap(ctx)
		}
		return nil, errors.Wrap(err, "load catalog")
	}

	records, err := decodeRecords(data)
	if err != nil {
		zctx.From(ctx).Warn("Stored catalog is malformed, substituting empty catalog",
			zap.String("key", s.key),
			zap.Error(err),
		)
		return []Product{}, nil
	}

	products, dirty := normalizeAll(records)
	if dirty {
		if err := s.Save(ctx, products); err != nil {
			return nil, errors.Wrap(err, "persist normalized catalog")
		}
		zctx.From(ctx).Info("Catalog normalized to canonical schema",
			zap.Int("products", len(products)),
		)
	}

	return products, nil
}

// Save serializes the catalog in canonical form and overwrites the blob in
// full. This is the only mutation path.
func (s *Store) Save(ctx context.Context, products []Product) error {
	if err := s.kv.Set(ctx, s.key, encodeProducts(products)); err != nil {
		return errors.Wrap(err, "save catalog")
	}
	return nil
}

// bootstrap seeds the store from the external dataset on first load. Seed
// failures leave the catalog empty rather than retrying; the next Load will
// attempt the seed again only if nothing was written.
func (s *Store) bootstrap(ctx context.Context) ([]Product, error) {
	lg := zctx.From(ctx)

	if s.seed == nil {
		lg.Warn("Catalog entry absent and no bootstrap source configured")
		return []Product{}, nil
	}

	data, err := s.seed.Fetch(ctx)
	if err != nil {
		lg.Warn("Bootstrap fetch failed, starting with empty catalog", zap.Error(err))
		return []Product{}, nil
	}

	records, err := decodeRecords(data)
	if err != nil {
		lg.Warn("Bootstrap dataset is malformed, starting with empty catalog", zap.Error(err))
		return []Product{}, nil
	}

	products, _ := normalizeAll(records)
	if err := s.Save(ctx, products); err != nil {
		return nil, errors.Wrap(err, "persist seeded catalog")
	}

	lg.Info("Catalog seeded from bootstrap source", zap.Int("products", len(products)))
	return products, nil
}
