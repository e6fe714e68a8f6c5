package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"extrinsicScope/internal/model"
)

func record(id, accountID string) model.TransactionRecord {
	return model.TransactionRecord{
		ID:             id,
		ChainID:        "polkadot",
		AccountID:      accountID,
		BlockNumber:    10,
		ExtrinsicIndex: 1,
		TxHash:         id,
		Sender:         "0x11",
		Amount:         "1",
		Status:         model.TransactionSuccess,
	}
}

// openStore connects to EXTRINSIC_TEST_PG_DSN and starts from empty tables.
func openStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("EXTRINSIC_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("EXTRINSIC_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.Migrate(ctx))
	_, err = store.pool.Exec(ctx, `TRUNCATE transactions, indexer_state`)
	require.NoError(t, err)
	return store
}

func TestSaveBatchRejectsForeignRecords(t *testing.T) {
	store := &Store{}
	err := store.SaveBatch(context.Background(), "polkadot", "0x22", []model.TransactionRecord{record("a", "0x11")}, nil)
	require.Error(t, err)
}

func TestDeleteIsScopedToAccount(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.SaveBatch(ctx, "polkadot", "0x11", []model.TransactionRecord{record("0xhash", "0x11")}, nil))
	require.NoError(t, store.SaveBatch(ctx, "polkadot", "0x22", []model.TransactionRecord{record("0xhash", "0x22")}, nil))

	require.NoError(t, store.SaveBatch(ctx, "polkadot", "0x22", nil, []string{"0xhash"}))

	sender, err := store.ListTransactions(ctx, "polkadot", "0x11", 0)
	require.NoError(t, err)
	require.Len(t, sender, 1)
	receiver, err := store.ListTransactions(ctx, "polkadot", "0x22", 0)
	require.NoError(t, err)
	require.Empty(t, receiver)
}
