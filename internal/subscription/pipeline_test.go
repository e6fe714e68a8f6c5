package subscription

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"extrinsicScope/internal/codec"
	"extrinsicScope/internal/events"
	"extrinsicScope/internal/extrinsic"
	"extrinsicScope/internal/model"
	"extrinsicScope/internal/storage"
)

const (
	alice = "0x1111111111111111111111111111111111111111111111111111111111111111"
	bob   = "0x2222222222222222222222222222222222222222222222222222222222222222"
	carol = "0x3333333333333333333333333333333333333333333333333333333333333333"
)

type fakeSource struct {
	mu     sync.Mutex
	blocks map[string]model.Block
	events map[string][]byte
	err    error
	calls  int
}

func (s *fakeSource) GetBlock(_ context.Context, blockHash string) (model.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return model.Block{}, s.err
	}
	block, ok := s.blocks[blockHash]
	if !ok {
		return model.Block{}, fmt.Errorf("block %s not found", blockHash)
	}
	return block, nil
}

func (s *fakeSource) QueryStorage(_ context.Context, key, blockHash string) ([]byte, error) {
	if key != EventsStorageKey {
		return nil, fmt.Errorf("unexpected key %s", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[blockHash], nil
}

func (s *fakeSource) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

type fakeRepository struct {
	mu      sync.Mutex
	batches [][]model.TransactionRecord
	err     error
}

func (r *fakeRepository) SaveBatch(_ context.Context, chainID, accountID string, records []model.TransactionRecord, deleteIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if len(deleteIDs) != 0 {
		return errors.New("unexpected deletes")
	}
	if err := storage.CheckScope(chainID, accountID, records); err != nil {
		return err
	}
	r.batches = append(r.batches, records)
	return nil
}

func (r *fakeRepository) batchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []events.TransactionListChanged
}

func (n *fakeNotifier) Notify(event events.TransactionListChanged) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func testAccount(t *testing.T, hex string) model.AccountID {
	t.Helper()
	id, err := model.ParseAccountID(hex)
	require.NoError(t, err)
	return id
}

func testChain() model.Chain {
	return model.Chain{
		ChainID: "polkadot",
		Assets:  []model.Asset{{ID: 0, Symbol: "DOT", Utility: true}},
	}
}

func signed(signer, call string) []byte {
	return []byte(fmt.Sprintf(`{"signature":{"address":{"Id":%q}},"call":%s}`, signer, call))
}

func transferCall(dest string, value int) string {
	return fmt.Sprintf(`{"module":"Balances","function":"transfer","args":{"dest":{"Id":%q},"value":%d}}`, dest, value)
}

const remarkCall = `{"module":"System","function":"remark","args":{"remark":"0x"}}`

func eventJSON(index int, module, name, params string) string {
	return fmt.Sprintf(`{"phase":{"ApplyExtrinsic":%d},"event":{"module":%q,"event":%q,"params":%s}}`, index, module, name, params)
}

type harness struct {
	source   *fakeSource
	repo     *fakeRepository
	notifier *fakeNotifier
	pipeline *Pipeline
	transfer []byte
}

// newHarness serves block "0xaa" (number 7) with a malformed extrinsic, a
// transfer from alice to bob and a remark signed by carol.
func newHarness(t *testing.T, who string) *harness {
	t.Helper()
	transfer := signed(alice, transferCall(bob, 100))
	block := model.Block{
		Hash:   "0xaa",
		Number: 7,
		Extrinsics: [][]byte{
			[]byte("garbage"),
			transfer,
			signed(carol, remarkCall),
		},
	}
	rawEvents := "[" +
		eventJSON(1, "Balances", "Transfer", fmt.Sprintf(`[%q,%q,"100"]`, alice, bob)) + "," +
		eventJSON(1, "TransactionPayment", "TransactionFeePaid", fmt.Sprintf(`[%q,"15","0"]`, alice)) + "," +
		eventJSON(1, "System", "ExtrinsicSuccess", `[{}]`) + "," +
		eventJSON(2, "System", "ExtrinsicSuccess", `[{}]`) +
		"]"

	h := &harness{
		source: &fakeSource{
			blocks: map[string]model.Block{"0xaa": block, "0xbb": {Hash: "0xbb", Number: 8}},
			events: map[string][]byte{"0xaa": []byte(rawEvents)},
		},
		repo:     &fakeRepository{},
		notifier: &fakeNotifier{},
		transfer: transfer,
	}
	processor := extrinsic.NewProcessor(testAccount(t, who), testChain(), zap.NewNop())
	h.pipeline = NewPipeline(processor, Deps{
		Source:     h.source,
		Codecs:     codec.StaticProvider{Factory: codec.NewJSONFactory(1)},
		Repository: h.repo,
		Notifier:   h.notifier,
		Logger:     zap.NewNop(),
		Now:        func() time.Time { return time.UnixMilli(1700000000000) },
	})
	return h
}

func TestPipelineProcessesBlock(t *testing.T) {
	h := newHarness(t, alice)

	require.NoError(t, h.pipeline.Process(context.Background(), "0xaa"))

	require.Equal(t, 1, h.repo.batchCount())
	records := h.repo.batches[0]
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "polkadot", record.ChainID)
	assert.Equal(t, alice, record.AccountID)
	assert.Equal(t, uint64(7), record.BlockNumber)
	assert.Equal(t, uint32(1), record.ExtrinsicIndex)
	assert.Equal(t, hexutil.Encode(codec.ExtrinsicHash(h.transfer)), record.TxHash)
	assert.Equal(t, record.TxHash, record.ID)
	assert.Equal(t, alice, record.Sender)
	assert.Equal(t, bob, record.Receiver)
	assert.Equal(t, "100", record.Amount)
	assert.Equal(t, "15", record.Fee)
	assert.Nil(t, record.FeeAssetID)
	assert.Equal(t, model.TransactionSuccess, record.Status)
	assert.Equal(t, "Balances", record.Module)
	assert.Equal(t, "transfer", record.Function)
	assert.Equal(t, int64(1700000000000), record.Timestamp)

	require.Equal(t, 1, h.notifier.count())
	assert.Equal(t, events.TransactionListChanged{
		ChainID:     "polkadot",
		AccountID:   testAccount(t, alice),
		BlockNumber: 7,
		Count:       1,
	}, h.notifier.events[0])
}

func TestPipelineIgnoresRepeatedHash(t *testing.T) {
	h := newHarness(t, alice)
	ctx := context.Background()

	require.NoError(t, h.pipeline.Process(ctx, "0xaa"))
	require.NoError(t, h.pipeline.Process(ctx, "0xaa"))

	require.Equal(t, 1, h.repo.batchCount())
	require.Equal(t, 1, h.notifier.count())
	require.Equal(t, 1, h.source.calls)
}

func TestPipelineConcurrentRepeatedHash(t *testing.T) {
	h := newHarness(t, alice)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.pipeline.Process(context.Background(), "0xaa")
		}()
	}
	wg.Wait()

	require.Equal(t, 1, h.repo.batchCount())
}

func TestPipelineGuardsOnlyLastHash(t *testing.T) {
	h := newHarness(t, alice)
	ctx := context.Background()

	require.NoError(t, h.pipeline.Process(ctx, "0xaa"))
	require.NoError(t, h.pipeline.Process(ctx, "0xbb"))
	require.NoError(t, h.pipeline.Process(ctx, "0xaa"))

	require.Equal(t, 3, h.repo.batchCount())
	require.Equal(t, 2, h.notifier.count())
}

func TestPipelineIncomingTransfer(t *testing.T) {
	h := newHarness(t, bob)

	require.NoError(t, h.pipeline.Process(context.Background(), "0xaa"))

	require.Equal(t, 1, h.repo.batchCount())
	records := h.repo.batches[0]
	require.Len(t, records, 1)
	assert.Equal(t, bob, records[0].AccountID)
	assert.Equal(t, alice, records[0].Sender)
	assert.Equal(t, bob, records[0].Receiver)
}

func TestPipelineNoNotificationWithoutRecords(t *testing.T) {
	h := newHarness(t, "0x4444444444444444444444444444444444444444444444444444444444444444")

	require.NoError(t, h.pipeline.Process(context.Background(), "0xaa"))

	require.Equal(t, 1, h.repo.batchCount())
	require.Empty(t, h.repo.batches[0])
	require.Zero(t, h.notifier.count())
}

func TestPipelineFetchFailureAllowsRetry(t *testing.T) {
	h := newHarness(t, alice)
	ctx := context.Background()
	h.source.setErr(errors.New("connection reset"))

	err := h.pipeline.Process(ctx, "0xaa")
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection reset")
	require.Zero(t, h.repo.batchCount())
	require.Zero(t, h.notifier.count())

	h.source.setErr(nil)
	require.NoError(t, h.pipeline.Process(ctx, "0xaa"))
	require.Equal(t, 1, h.repo.batchCount())
}

func TestPipelinePersistFailure(t *testing.T) {
	h := newHarness(t, alice)
	h.repo.err = errors.New("disk full")

	err := h.pipeline.Process(context.Background(), "0xaa")
	require.Error(t, err)
	require.Zero(t, h.notifier.count())
}

func TestPipelineUnconfigured(t *testing.T) {
	processor := extrinsic.NewProcessor(testAccount(t, alice), testChain(), nil)
	pipeline := NewPipeline(processor, Deps{})

	require.Error(t, pipeline.Process(context.Background(), "0xaa"))
}

func TestNewRecordSkipsUnknownAsset(t *testing.T) {
	result := model.TransactionSubscriptionResult{
		ProcessingResult: model.ExtrinsicProcessingResult{
			Sender:   testAccount(t, alice),
			CallPath: model.BalancesTransfer,
			AssetID:  99,
		},
		BlockNumber: 3,
		TxIndex:     2,
	}

	_, ok := NewRecord(result, testChain(), testAccount(t, alice), 0)
	require.False(t, ok)
}

func TestNewRecordSwapAndCustomFee(t *testing.T) {
	chain := testChain()
	chain.Assets = append(chain.Assets, model.Asset{ID: 1, Symbol: "USDT"})
	peer := testAccount(t, bob)

	result := model.TransactionSubscriptionResult{
		ProcessingResult: model.ExtrinsicProcessingResult{
			Sender:    testAccount(t, alice),
			CallPath:  model.AssetConversionSwapExactIn,
			Fee:       model.AssetFee(big.NewInt(3), 1),
			PeerID:    &peer,
			IsSuccess: false,
			AssetID:   1,
			Swap: &model.SwapDetail{
				AssetIDIn:  1,
				AssetIDOut: 0,
				AmountIn:   big.NewInt(50),
				AmountOut:  big.NewInt(10),
			},
		},
		BlockNumber: 3,
		TxIndex:     2,
	}

	record, ok := NewRecord(result, chain, testAccount(t, alice), 42)
	require.True(t, ok)
	assert.Equal(t, "3-2", record.ID)
	assert.Empty(t, record.TxHash)
	assert.Equal(t, model.TransactionFailed, record.Status)
	assert.Equal(t, bob, record.Receiver)
	assert.Equal(t, "3", record.Fee)
	require.NotNil(t, record.FeeAssetID)
	assert.Equal(t, uint32(1), *record.FeeAssetID)
	assert.Equal(t, &model.SwapRecord{AssetIDIn: 1, AssetIDOut: 0, AmountIn: "50", AmountOut: "10"}, record.Swap)
	assert.Empty(t, record.Amount)
}
