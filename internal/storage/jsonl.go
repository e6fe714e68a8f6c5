package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"extrinsicScope/internal/model"
)

// jsonlEntry is one line of the journal: either an upsert or a delete.
type jsonlEntry struct {
	Op        string                   `json:"op"`
	ChainID   string                   `json:"chainId,omitempty"`
	AccountID string                   `json:"accountId,omitempty"`
	ID        string                   `json:"id,omitempty"`
	Record    *model.TransactionRecord `json:"record,omitempty"`
}

const (
	opUpsert = "upsert"
	opDelete = "delete"
)

// JsonlStorage journals transaction records to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// SaveBatch appends the upserts and deletes as JSON lines.
func (s *JsonlStorage) SaveBatch(_ context.Context, chainID, accountID string, records []model.TransactionRecord, deleteIDs []string) error {
	if len(records) == 0 && len(deleteIDs) == 0 {
		return nil
	}
	if err := CheckScope(chainID, accountID, records); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	write := func(entry jsonlEntry) error {
		line, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal transaction record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write transaction record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
		return nil
	}

	for _, id := range deleteIDs {
		if err := write(jsonlEntry{Op: opDelete, ChainID: chainID, AccountID: accountID, ID: id}); err != nil {
			return err
		}
	}
	for i := range records {
		if err := write(jsonlEntry{Op: opUpsert, ID: records[i].ID, Record: &records[i]}); err != nil {
			return err
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// ListTransactions replays the journal and returns the live records of an
// account, newest first.
func (s *JsonlStorage) ListTransactions(_ context.Context, chainID, accountID string, limit int) ([]model.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	live := make(map[string]model.TransactionRecord)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var entry jsonlEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("decode journal line: %w", err)
		}
		switch entry.Op {
		case opUpsert:
			if entry.Record != nil {
				live[recordKey(entry.Record.ChainID, entry.Record.AccountID, entry.ID)] = *entry.Record
			}
		case opDelete:
			delete(live, recordKey(entry.ChainID, entry.AccountID, entry.ID))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	out := make([]model.TransactionRecord, 0, len(live))
	for _, record := range live {
		if record.ChainID == chainID && record.AccountID == accountID {
			out = append(out, record)
		}
	}
	SortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SortNewestFirst orders records by block number and extrinsic index,
// descending.
func SortNewestFirst(records []model.TransactionRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].BlockNumber != records[j].BlockNumber {
			return records[i].BlockNumber > records[j].BlockNumber
		}
		return records[i].ExtrinsicIndex > records[j].ExtrinsicIndex
	})
}

func recordKey(chainID, accountID, id string) string {
	return chainID + "/" + accountID + "/" + id
}
