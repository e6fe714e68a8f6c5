package pebbledb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"extrinsicScope/internal/model"
	"extrinsicScope/internal/storage"
)

const (
	txPrefix    byte = 0x01
	idPrefix    byte = 0x02
	statePrefix byte = 0x03
)

// Store keeps transaction history in an embedded pebble database. Records
// are keyed by chain, account and block position so that a prefix scan in
// reverse yields the newest first.
type Store struct {
	db *pebble.DB
}

func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func appendString(key []byte, value string) []byte {
	key = binary.BigEndian.AppendUint16(key, uint16(len(value)))
	return append(key, value...)
}

func accountPrefix(prefix byte, chainID, accountID string) []byte {
	key := []byte{prefix}
	key = appendString(key, chainID)
	return appendString(key, accountID)
}

func txKey(record model.TransactionRecord) []byte {
	key := accountPrefix(txPrefix, record.ChainID, record.AccountID)
	key = binary.BigEndian.AppendUint64(key, record.BlockNumber)
	key = binary.BigEndian.AppendUint32(key, record.ExtrinsicIndex)
	return appendString(key, record.ID)
}

func idKey(chainID, accountID, id string) []byte {
	return appendString(accountPrefix(idPrefix, chainID, accountID), id)
}

func upperBound(prefix []byte) []byte {
	out := make([]byte, len(prefix), len(prefix)+1)
	copy(out, prefix)
	return append(out, 0xff)
}

// SaveBatch upserts records and deletes ids of one chain and account
// atomically.
func (s *Store) SaveBatch(_ context.Context, chainID, accountID string, records []model.TransactionRecord, deleteIDs []string) error {
	if len(records) == 0 && len(deleteIDs) == 0 {
		return nil
	}
	if err := storage.CheckScope(chainID, accountID, records); err != nil {
		return err
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	remove := func(id string) error {
		primary, closer, err := s.db.Get(idKey(chainID, accountID, id))
		if errors.Is(err, pebble.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("lookup transaction %s: %w", id, err)
		}
		key := append([]byte(nil), primary...)
		closer.Close()

		if err := batch.Delete(key, nil); err != nil {
			return err
		}
		return batch.Delete(idKey(chainID, accountID, id), nil)
	}

	for _, id := range deleteIDs {
		if err := remove(id); err != nil {
			return err
		}
	}

	for _, record := range records {
		if err := remove(record.ID); err != nil {
			return err
		}
		value, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal transaction record: %w", err)
		}
		key := txKey(record)
		if err := batch.Set(key, value, nil); err != nil {
			return err
		}
		if err := batch.Set(idKey(chainID, accountID, record.ID), key, nil); err != nil {
			return err
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("commit transactions: %w", err)
	}
	return nil
}

// ListTransactions returns the records of an account, newest first.
func (s *Store) ListTransactions(_ context.Context, chainID, accountID string, limit int) ([]model.TransactionRecord, error) {
	prefix := accountPrefix(txPrefix, chainID, accountID)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	var out []model.TransactionRecord
	for iter.Last(); iter.Valid(); iter.Prev() {
		if limit > 0 && len(out) >= limit {
			break
		}
		var record model.TransactionRecord
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			return nil, fmt.Errorf("decode transaction record: %w", err)
		}
		out = append(out, record)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterator error: %w", err)
	}
	return out, nil
}

// GetTransaction returns the record of an account by id.
func (s *Store) GetTransaction(_ context.Context, chainID, accountID, id string) (model.TransactionRecord, error) {
	primary, closer, err := s.db.Get(idKey(chainID, accountID, id))
	if errors.Is(err, pebble.ErrNotFound) {
		return model.TransactionRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return model.TransactionRecord{}, err
	}
	key := append([]byte(nil), primary...)
	closer.Close()

	value, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return model.TransactionRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return model.TransactionRecord{}, err
	}
	defer closer.Close()

	var record model.TransactionRecord
	if err := json.Unmarshal(value, &record); err != nil {
		return model.TransactionRecord{}, fmt.Errorf("decode transaction record: %w", err)
	}
	return record, nil
}

// LoadState returns the last processed block number stored under name.
func (s *Store) LoadState(_ context.Context, name string) (uint64, bool, error) {
	value, closer, err := s.db.Get(appendString([]byte{statePrefix}, name))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("getting state %s: %w", name, err)
	}
	defer closer.Close()
	if len(value) != 8 {
		return 0, false, fmt.Errorf("state %s: invalid length %d", name, len(value))
	}
	return binary.BigEndian.Uint64(value), true, nil
}

// SaveState stores the last processed block number under name.
func (s *Store) SaveState(_ context.Context, name string, block uint64) error {
	value := binary.BigEndian.AppendUint64(nil, block)
	if err := s.db.Set(appendString([]byte{statePrefix}, name), value, pebble.Sync); err != nil {
		return fmt.Errorf("setting state %s: %w", name, err)
	}
	return nil
}
