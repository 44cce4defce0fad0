package store

import (
	"bytes"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const boltBucketSettings = "settings" // key: root segment -> JSON document

// Bolt is the default settings backend.
type Bolt struct {
	kv

	storage *bbolt.DB
}

func boltPath(dir string) string {
	return filepath.Join(dir, "settings.bolt")
}

// NewBolt opens or creates a Bolt settings database at the specified path.
func NewBolt(path string) (*Bolt, error) {
	instance, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketSettings))

		return err
	}); err != nil {
		_ = instance.Close()

		return nil, err
	}

	b := &Bolt{storage: instance}
	b.docs = b

	return b, nil
}

// Ping opens a read transaction.
func (b *Bolt) Ping() error {
	return b.storage.View(func(tx *bbolt.Tx) error {
		return nil
	})
}

func (b *Bolt) view(root string) ([]byte, error) {
	var out []byte

	err := b.storage.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(boltBucketSettings)).Get([]byte(root))
		if v != nil {
			// bbolt memory is only valid inside the transaction
			out = bytes.Clone(v)
		}

		return nil
	})

	return out, err
}

func (b *Bolt) update(root string, fn func(doc []byte) ([]byte, error)) error {
	return b.storage.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketSettings))

		var current []byte
		if v := bucket.Get([]byte(root)); v != nil {
			current = bytes.Clone(v)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		if next == nil {
			return bucket.Delete([]byte(root))
		}

		return bucket.Put([]byte(root), next)
	})
}

func (b *Bolt) close() error {
	return b.storage.Close()
}
