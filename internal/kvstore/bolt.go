package kvstore

import (
	"context"

	"github.com/go-faster/errors"
	bolt "go.etcd.io/bbolt"
)

// bucketName is the single bucket holding all POS blobs.
var bucketName = []byte("pos")

var _ Store = (*Bolt)(nil)

// Bolt implements Store on top of a bbolt file. This is the default backend:
// one file on the terminal's disk, surviving restarts, no external service.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (creating if necessary) the bbolt file at path and ensures
// the blob bucket exists.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt file %s", path)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create bucket")
	}

	return &Bolt{db: db}, nil
}

// Get retrieves the blob stored under key.
func (b *Bolt) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid inside the transaction.
		out = make([]byte, len(v))
		copy(out, v)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get %q", key)
	}
	return out, nil
}

// Set overwrites the blob stored under key.
func (b *Bolt) Set(_ context.Context, key string, value []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
	if err != nil {
		return errors.Wrapf(err, "set %q", key)
	}
	return nil
}

// Delete removes key. Idempotent.
func (b *Bolt) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
	if err != nil {
		return errors.Wrapf(err, "delete %q", key)
	}
	return nil
}

// Ping verifies the file is still readable.
func (b *Bolt) Ping(context.Context) error {
	return b.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketName) == nil {
			return errors.New("blob bucket missing")
		}
		return nil
	})
}

// Close closes the underlying bbolt database.
func (b *Bolt) Close() error { return b.db.Close() }
