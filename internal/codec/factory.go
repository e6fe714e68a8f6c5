package codec

import (
	"context"
	"errors"
)

// Type names understood by every Factory.
const (
	TypeExtrinsic    = "Extrinsic"
	TypeEventRecords = "Vec<EventRecord>"
	TypeU8           = "u8"
	TypeU16          = "u16"
	TypeU32          = "u32"
	TypeU64          = "u64"
	TypeU128         = "u128"
	TypeLocation     = "MultiLocation"
)

// ErrUnknownType is returned for a type name the factory cannot handle.
var ErrUnknownType = errors.New("unknown type")

// Factory decodes and encodes values for one runtime version.
type Factory interface {
	Decode(data []byte, typeName string) (Value, error)
	Encode(value Value, typeName string) ([]byte, error)
	SpecVersion() uint32
}

// Provider returns the factory valid at a given block.
type Provider interface {
	FactoryAt(ctx context.Context, blockHash string) (Factory, error)
}

// StaticProvider serves one factory for every block.
type StaticProvider struct {
	Factory Factory
}

func (p StaticProvider) FactoryAt(_ context.Context, _ string) (Factory, error) {
	if p.Factory == nil {
		return nil, errors.New("codec factory is nil")
	}
	return p.Factory, nil
}
