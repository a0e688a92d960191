package catalog

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"

	"github.com/misagal/retail-pos/db"
)

// Source is an external bootstrap dataset, fetched once when the blob store
// entry does not yet exist. The fetched bytes are subject to the same
// normalizer as stored data.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FileSource reads the bootstrap dataset from a local file. Files ending in
// .gz are decompressed transparently.
type FileSource struct {
	Path string
}

// Fetch reads and, when necessary, decompresses the dataset file.
func (s FileSource) Fetch(_ context.Context) ([]byte, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", s.Path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(s.Path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", s.Path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", s.Path)
	}
	return data, nil
}

// HTTPSource fetches the bootstrap dataset from a URL, the way the original
// terminal fetched its products.json on first run.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// Fetch performs a single GET for the dataset.
func (s HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", s.URL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch %s: unexpected status %d", s.URL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}
	return data, nil
}

// EmbeddedSource serves the dataset bundled into the binary.
type EmbeddedSource struct{}

// Fetch returns the embedded default dataset.
func (EmbeddedSource) Fetch(context.Context) ([]byte, error) {
	return db.SeedProducts, nil
}
