package storage

import (
	"context"
	"errors"
	"fmt"

	"extrinsicScope/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Repository persists normalized transaction records keyed by chain and
// account. SaveBatch upserts records and removes the given ids of that chain
// and account in one unit.
type Repository interface {
	SaveBatch(ctx context.Context, chainID, accountID string, records []model.TransactionRecord, deleteIDs []string) error
}

// CheckScope rejects records that belong to another chain or account.
func CheckScope(chainID, accountID string, records []model.TransactionRecord) error {
	for _, record := range records {
		if record.ChainID != chainID || record.AccountID != accountID {
			return fmt.Errorf("record %s belongs to %s/%s, batch is %s/%s",
				record.ID, record.ChainID, record.AccountID, chainID, accountID)
		}
	}
	return nil
}

// Reader lists stored transactions of an account, newest first.
type Reader interface {
	ListTransactions(ctx context.Context, chainID, accountID string, limit int) ([]model.TransactionRecord, error)
}
