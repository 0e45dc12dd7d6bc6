// Package staging persists fetched article metadata in a local Badger store
// so an interrupted fetch can resume without re-requesting resolved IDs.
package staging

import (
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/graphsets/pubmed-temporal/pkg/types"
)

// Store is a Badger-backed metadata staging store keyed by PMID.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a staging store at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open staging store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores metadata for a PMID.
func (s *Store) Put(md *types.Metadata) error {
	if md == nil || md.PMID == "" {
		return errors.New("metadata must carry a PMID")
	}

	data, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(md.PMID), data)
	})
}

// PutBatch stores a batch of metadata records in a single transaction batch.
func (s *Store) PutBatch(mds []*types.Metadata) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, md := range mds {
		if md == nil || md.PMID == "" {
			continue
		}
		data, err := json.Marshal(md)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", md.PMID, err)
		}
		if err := wb.Set([]byte(md.PMID), data); err != nil {
			return fmt.Errorf("failed to stage metadata for %s: %w", md.PMID, err)
		}
	}

	return wb.Flush()
}

// Get returns the metadata for a PMID, reporting whether it was found.
func (s *Store) Get(pmid string) (*types.Metadata, bool, error) {
	var md types.Metadata
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(pmid))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &md)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read metadata for %s: %w", pmid, err)
	}
	return &md, true, nil
}

// All returns every staged metadata record keyed by PMID.
func (s *Store) All() (map[string]*types.Metadata, error) {
	out := make(map[string]*types.Metadata)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			md := &types.Metadata{}
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, md)
			}); err != nil {
				return err
			}
			out[string(item.Key())] = md
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan staging store: %w", err)
	}
	return out, nil
}
