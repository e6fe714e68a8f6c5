package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"extrinsicScope/internal/model"
)

// EventsStorageKey is the storage key of System.Events.
const EventsStorageKey = "0x26aa394eea5630e07c48ae0c9558cef780d41e5e16056765bc8461851072c9d7"

type fileBlock struct {
	Hash       string            `json:"hash"`
	Number     uint64            `json:"number"`
	Extrinsics []json.RawMessage `json:"extrinsics"`
	Events     json.RawMessage   `json:"events"`
}

// FileSource serves blocks from a JSON dump: a list of objects with hash,
// number, extrinsics and events.
type FileSource struct {
	blocks map[string]model.Block
	events map[string][]byte
	order  []string
}

// LoadFile reads a block dump from path.
func LoadFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blocks file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile parses a block dump.
func ParseFile(data []byte) (*FileSource, error) {
	var items []fileBlock
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse blocks file: %w", err)
	}

	src := &FileSource{
		blocks: make(map[string]model.Block, len(items)),
		events: make(map[string][]byte, len(items)),
	}
	for i, item := range items {
		if item.Hash == "" {
			return nil, fmt.Errorf("block %d: missing hash", i)
		}
		if _, ok := src.blocks[item.Hash]; ok {
			return nil, fmt.Errorf("block %d: duplicate hash %s", i, item.Hash)
		}

		extrinsics := make([][]byte, 0, len(item.Extrinsics))
		for j, raw := range item.Extrinsics {
			payloadBytes, err := payload(raw)
			if err != nil {
				return nil, fmt.Errorf("block %s extrinsic %d: %w", item.Hash, j, err)
			}
			extrinsics = append(extrinsics, payloadBytes)
		}
		eventBytes, err := payload(item.Events)
		if err != nil {
			return nil, fmt.Errorf("block %s events: %w", item.Hash, err)
		}

		src.blocks[item.Hash] = model.Block{Hash: item.Hash, Number: item.Number, Extrinsics: extrinsics}
		src.events[item.Hash] = eventBytes
		src.order = append(src.order, item.Hash)
	}
	return src, nil
}

// Hashes returns the block hashes in file order.
func (s *FileSource) Hashes() []string {
	return append([]string(nil), s.order...)
}

func (s *FileSource) GetBlock(_ context.Context, blockHash string) (model.Block, error) {
	block, ok := s.blocks[blockHash]
	if !ok {
		return model.Block{}, fmt.Errorf("block %s not found", blockHash)
	}
	return block, nil
}

// QueryStorage serves the events item only.
func (s *FileSource) QueryStorage(_ context.Context, key, blockHash string) ([]byte, error) {
	if key != EventsStorageKey {
		return nil, fmt.Errorf("storage key %s not available", key)
	}
	if _, ok := s.blocks[blockHash]; !ok {
		return nil, fmt.Errorf("block %s not found", blockHash)
	}
	return s.events[blockHash], nil
}
