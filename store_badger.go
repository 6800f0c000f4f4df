package text2img_gan

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

const badgerKeyPrefix = "model/"

// BadgerStore Keeps artifacts in embedded Badger key-value database
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore Opens (or creates) database at path. Empty path means in-memory database.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, withKind(ErrPersistence, err, "Can't open badger database '%s'", path)
	}
	return &BadgerStore{db: db}, nil
}

// Save Implements Store
func (bs *BadgerStore) Save(name string, data []byte) error {
	if err := checkArtifactName(name); err != nil {
		return err
	}
	err := bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKeyPrefix+name), data)
	})
	if err != nil {
		return withKind(ErrPersistence, err, "Can't save '%s'", name)
	}
	return nil
}

// Load Implements Store
func (bs *BadgerStore) Load(name string) ([]byte, error) {
	if err := checkArtifactName(name); err != nil {
		return nil, err
	}
	var data []byte
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, withKind(ErrPersistence, err, "artifact '%s' not found", name)
	}
	if err != nil {
		return nil, withKind(ErrPersistence, err, "Can't load '%s'", name)
	}
	return data, nil
}

// Close Implements Store
func (bs *BadgerStore) Close() error {
	return bs.db.Close()
}
