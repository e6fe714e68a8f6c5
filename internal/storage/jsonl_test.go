package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"extrinsicScope/internal/model"
)

func record(id string, block uint64, index uint32) model.TransactionRecord {
	return model.TransactionRecord{
		ID:             id,
		ChainID:        "polkadot",
		AccountID:      "0x11",
		BlockNumber:    block,
		ExtrinsicIndex: index,
		Amount:         "1",
		Status:         model.TransactionSuccess,
	}
}

func TestJsonlStorageSaveAndList(t *testing.T) {
	ctx := context.Background()
	store := NewJsonlStorage(filepath.Join(t.TempDir(), "out", "tx.jsonl"))

	require.NoError(t, store.SaveBatch(ctx, "polkadot", "0x11", []model.TransactionRecord{record("a", 10, 1), record("b", 12, 0)}, nil))
	require.NoError(t, store.SaveBatch(ctx, "polkadot", "0x11", []model.TransactionRecord{record("c", 12, 3)}, []string{"a"}))

	other := record("d", 99, 0)
	other.AccountID = "0x22"
	require.NoError(t, store.SaveBatch(ctx, "polkadot", "0x22", []model.TransactionRecord{other}, nil))

	got, err := store.ListTransactions(ctx, "polkadot", "0x11", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "c", got[0].ID)
	require.Equal(t, "b", got[1].ID)

	limited, err := store.ListTransactions(ctx, "polkadot", "0x11", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestJsonlStorageUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewJsonlStorage(filepath.Join(t.TempDir(), "tx.jsonl"))

	first := record("a", 10, 1)
	second := record("a", 10, 1)
	second.Amount = "2"
	require.NoError(t, store.SaveBatch(ctx, "polkadot", "0x11", []model.TransactionRecord{first}, nil))
	require.NoError(t, store.SaveBatch(ctx, "polkadot", "0x11", []model.TransactionRecord{second}, nil))

	got, err := store.ListTransactions(ctx, "polkadot", "0x11", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "2", got[0].Amount)
}

func TestJsonlStorageMissingFile(t *testing.T) {
	store := NewJsonlStorage(filepath.Join(t.TempDir(), "missing.jsonl"))
	got, err := store.ListTransactions(context.Background(), "polkadot", "0x11", 0)
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoError(t, store.SaveBatch(context.Background(), "polkadot", "0x11", nil, nil))
}

func TestJsonlStorageSameIDForTwoAccounts(t *testing.T) {
	ctx := context.Background()
	store := NewJsonlStorage(filepath.Join(t.TempDir(), "tx.jsonl"))

	sent := record("0xhash", 10, 1)
	received := record("0xhash", 10, 1)
	received.AccountID = "0x22"
	require.NoError(t, store.SaveBatch(ctx, "polkadot", "0x11", []model.TransactionRecord{sent}, nil))
	require.NoError(t, store.SaveBatch(ctx, "polkadot", "0x22", []model.TransactionRecord{received}, nil))

	require.NoError(t, store.SaveBatch(ctx, "polkadot", "0x22", nil, []string{"0xhash"}))

	senderList, err := store.ListTransactions(ctx, "polkadot", "0x11", 0)
	require.NoError(t, err)
	require.Len(t, senderList, 1)

	receiverList, err := store.ListTransactions(ctx, "polkadot", "0x22", 0)
	require.NoError(t, err)
	require.Empty(t, receiverList)
}

func TestJsonlStorageRejectsForeignRecords(t *testing.T) {
	store := NewJsonlStorage(filepath.Join(t.TempDir(), "tx.jsonl"))
	err := store.SaveBatch(context.Background(), "polkadot", "0x22", []model.TransactionRecord{record("a", 1, 0)}, nil)
	require.Error(t, err)
}
