package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"extrinsicScope/internal/model"
	"extrinsicScope/internal/storage"
)

// Schema creates the tables used by Store.
const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
	chain_id        TEXT        NOT NULL,
	account_id      TEXT        NOT NULL,
	id              TEXT        NOT NULL,
	asset_id        BIGINT      NOT NULL,
	block_number    BIGINT      NOT NULL,
	extrinsic_index INTEGER     NOT NULL,
	tx_hash         TEXT        NOT NULL,
	sender          TEXT        NOT NULL,
	receiver        TEXT,
	amount          NUMERIC,
	fee             NUMERIC,
	fee_asset_id    BIGINT,
	status          TEXT        NOT NULL,
	module          TEXT        NOT NULL,
	function        TEXT        NOT NULL,
	call            JSONB,
	swap            JSONB,
	timestamp       BIGINT      NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, account_id, id)
);
CREATE INDEX IF NOT EXISTS transactions_account_block_idx
	ON transactions (chain_id, account_id, block_number DESC, extrinsic_index DESC);
CREATE TABLE IF NOT EXISTS indexer_state (
	name              TEXT        PRIMARY KEY,
	last_processed_ts BIGINT      NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store provides Postgres persistence for transaction records.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// SaveBatch deletes ids and upserts records in one batch.
func (s *Store) SaveBatch(ctx context.Context, chainID, accountID string, records []model.TransactionRecord, deleteIDs []string) error {
	if len(records) == 0 && len(deleteIDs) == 0 {
		return nil
	}
	if err := storage.CheckScope(chainID, accountID, records); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	if len(deleteIDs) > 0 {
		batch.Queue(`DELETE FROM transactions WHERE chain_id = $1 AND account_id = $2 AND id = ANY($3)`,
			chainID, accountID, deleteIDs)
	}

	for _, record := range records {
		var swap []byte
		if record.Swap != nil {
			encoded, err := json.Marshal(record.Swap)
			if err != nil {
				return fmt.Errorf("marshal swap: %w", err)
			}
			swap = encoded
		}
		var call []byte
		if len(record.Call) > 0 {
			call = record.Call
		}
		var feeAsset any
		if record.FeeAssetID != nil {
			feeAsset = int64(*record.FeeAssetID)
		}

		batch.Queue(`
			INSERT INTO transactions (
				chain_id, account_id, id, asset_id, block_number, extrinsic_index, tx_hash,
				sender, receiver, amount, fee, fee_asset_id, status, module, function,
				call, swap, timestamp, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,now(),now())
			ON CONFLICT (chain_id, account_id, id)
			DO UPDATE SET
				asset_id = EXCLUDED.asset_id,
				block_number = EXCLUDED.block_number,
				extrinsic_index = EXCLUDED.extrinsic_index,
				tx_hash = EXCLUDED.tx_hash,
				sender = EXCLUDED.sender,
				receiver = EXCLUDED.receiver,
				amount = EXCLUDED.amount,
				fee = EXCLUDED.fee,
				fee_asset_id = EXCLUDED.fee_asset_id,
				status = EXCLUDED.status,
				module = EXCLUDED.module,
				function = EXCLUDED.function,
				call = EXCLUDED.call,
				swap = EXCLUDED.swap,
				updated_at = now()
		`,
			record.ChainID,
			record.AccountID,
			record.ID,
			int64(record.AssetID),
			int64(record.BlockNumber),
			int32(record.ExtrinsicIndex),
			record.TxHash,
			record.Sender,
			nullable(record.Receiver),
			nullable(record.Amount),
			nullable(record.Fee),
			feeAsset,
			string(record.Status),
			record.Module,
			record.Function,
			call,
			swap,
			record.Timestamp,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// ListTransactions returns the records of an account, newest first.
func (s *Store) ListTransactions(ctx context.Context, chainID, accountID string, limit int) ([]model.TransactionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, asset_id, block_number, extrinsic_index, tx_hash, sender,
			COALESCE(receiver, ''), COALESCE(amount::text, ''), COALESCE(fee::text, ''),
			fee_asset_id, status, module, function, call, swap, timestamp
		FROM transactions
		WHERE chain_id = $1 AND account_id = $2
		ORDER BY block_number DESC, extrinsic_index DESC
		LIMIT $3
	`, chainID, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TransactionRecord
	for rows.Next() {
		var (
			record   model.TransactionRecord
			assetID  int64
			block    int64
			index    int32
			feeAsset *int64
			status   string
			call     []byte
			swap     []byte
		)
		if err := rows.Scan(
			&record.ID, &assetID, &block, &index, &record.TxHash, &record.Sender,
			&record.Receiver, &record.Amount, &record.Fee,
			&feeAsset, &status, &record.Module, &record.Function, &call, &swap, &record.Timestamp,
		); err != nil {
			return nil, err
		}

		record.ChainID = chainID
		record.AccountID = accountID
		record.AssetID = uint32(assetID)
		record.BlockNumber = uint64(block)
		record.ExtrinsicIndex = uint32(index)
		record.Status = model.TransactionStatus(status)
		if feeAsset != nil {
			id := uint32(*feeAsset)
			record.FeeAssetID = &id
		}
		if len(call) > 0 {
			record.Call = json.RawMessage(call)
		}
		if len(swap) > 0 {
			record.Swap = &model.SwapRecord{}
			if err := json.Unmarshal(swap, record.Swap); err != nil {
				return nil, fmt.Errorf("decode swap: %w", err)
			}
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// LoadState returns the last processed block stored under name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block uint64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_ts FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return block, true, nil
}

// SaveState upserts the last processed block for name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_ts, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_ts = EXCLUDED.last_processed_ts, updated_at = now()
	`, name, int64(block))
	return err
}
