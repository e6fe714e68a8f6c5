package codec

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// JSONFactory decodes self-describing JSON payloads. Primitive unsigned
// integer types are encoded little-endian as SCALE does; every other type is
// encoded as canonical JSON so that equal values produce equal bytes.
type JSONFactory struct {
	specVersion uint32
}

func NewJSONFactory(specVersion uint32) *JSONFactory {
	return &JSONFactory{specVersion: specVersion}
}

func (f *JSONFactory) SpecVersion() uint32 {
	return f.specVersion
}

// Decode parses data and checks the top level shape for known type names.
func (f *JSONFactory) Decode(data []byte, typeName string) (Value, error) {
	if strings.TrimSpace(typeName) == "" {
		return Value{}, fmt.Errorf("%w: empty type name", ErrUnknownType)
	}

	value, err := ParseJSON(data)
	if err != nil {
		return Value{}, err
	}

	switch typeName {
	case TypeExtrinsic:
		if _, ok := value.raw.(map[string]any); !ok || value.Field("call").IsNull() {
			return Value{}, fmt.Errorf("%w: extrinsic without call", ErrTypeMismatch)
		}
	case TypeEventRecords:
		if _, ok := value.raw.([]any); !ok {
			return Value{}, fmt.Errorf("%w: event records must be a list", ErrTypeMismatch)
		}
	}
	return value, nil
}

// Encode serializes value according to typeName.
func (f *JSONFactory) Encode(value Value, typeName string) ([]byte, error) {
	if width, ok := uintWidth(typeName); ok {
		n, err := value.BigInt()
		if err != nil {
			return nil, err
		}
		return encodeUint(n, width)
	}
	if strings.TrimSpace(typeName) == "" {
		return nil, fmt.Errorf("%w: empty type name", ErrUnknownType)
	}
	return json.Marshal(canonical(value.raw))
}

func uintWidth(typeName string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(typeName)) {
	case TypeU8:
		return 1, true
	case TypeU16:
		return 2, true
	case TypeU32:
		return 4, true
	case TypeU64:
		return 8, true
	case TypeU128:
		return 16, true
	default:
		return 0, false
	}
}

func encodeUint(n *big.Int, width int) ([]byte, error) {
	if n.BitLen() > width*8 {
		return nil, fmt.Errorf("%w: %s overflows %d bytes", ErrTypeMismatch, n, width)
	}
	if width == 8 {
		out := make([]byte, 8)
		binary.LittleEndian.PutUint64(out, n.Uint64())
		return out, nil
	}
	be := n.FillBytes(make([]byte, width))
	out := make([]byte, width)
	for i := range be {
		out[i] = be[width-1-i]
	}
	return out, nil
}

// canonical normalizes integral numbers to decimal strings so that 3, "3"
// and 3.0 encode identically.
func canonical(raw any) any {
	switch typed := raw.(type) {
	case json.Number:
		if n, ok := new(big.Int).SetString(typed.String(), 10); ok {
			return n.String()
		}
		return typed.String()
	case float64:
		if typed == float64(int64(typed)) {
			return big.NewInt(int64(typed)).String()
		}
		return typed
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = canonical(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, item := range typed {
			out[k] = canonical(item)
		}
		return out
	default:
		return raw
	}
}
