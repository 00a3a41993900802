package gateway

import (
	"encoding/binary"
	"slices"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore keeps records in a badger database, keyed by a big-endian sequence
// number so iteration follows arrival order.
type BadgerStore struct {
	db  *badger.DB
	seq atomic.Uint64
}

func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	s := &BadgerStore{db: db}
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false // keys only
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Rewind()
		if it.Valid() {
			s.seq.Store(binary.BigEndian.Uint64(it.Item().Key()))
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BadgerStore) String() string {
	return "badger-store"
}

func (s *BadgerStore) Put(rec Record) error {
	key := binary.BigEndian.AppendUint64(nil, s.seq.Add(1))
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, encodeRecord(rec))
	})
}

func (s *BadgerStore) List(limit int) (records []Record, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true // newest first
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if limit > 0 && len(records) >= limit {
				break
			}
			buf, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := decodeRecord(buf)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	slices.Reverse(records)
	return
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
