package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"extrinsicScope/internal/model"
)

// ErrTypeMismatch is returned when a value cannot be projected to the
// requested shape.
var ErrTypeMismatch = errors.New("type mismatch")

// Value is a decoded, self-describing value: null, bool, json.Number, string,
// []any or map[string]any.
type Value struct {
	raw any
}

// NewValue wraps a raw decoded value.
func NewValue(raw any) Value {
	return Value{raw: raw}
}

// ParseJSON decodes a JSON document into a Value, keeping numbers exact.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("parse json: %w", err)
	}
	return Value{raw: raw}, nil
}

// MustParseJSON is ParseJSON for literals known to be valid.
func MustParseJSON(data string) Value {
	v, err := ParseJSON([]byte(data))
	if err != nil {
		panic(err)
	}
	return v
}

func (v Value) Raw() any {
	return v.raw
}

func (v Value) IsNull() bool {
	return v.raw == nil
}

// Field returns the named field of an object, or null.
func (v Value) Field(name string) Value {
	obj, ok := v.raw.(map[string]any)
	if !ok {
		return Value{}
	}
	return Value{raw: obj[name]}
}

// FirstField returns the first present field among names.
func (v Value) FirstField(names ...string) Value {
	obj, ok := v.raw.(map[string]any)
	if !ok {
		return Value{}
	}
	for _, name := range names {
		if field, ok := obj[name]; ok {
			return Value{raw: field}
		}
	}
	return Value{}
}

// Index returns the i-th element of a list, or null.
func (v Value) Index(i int) Value {
	list, ok := v.raw.([]any)
	if !ok || i < 0 || i >= len(list) {
		return Value{}
	}
	return Value{raw: list[i]}
}

// List projects a list.
func (v Value) List() ([]Value, error) {
	list, ok := v.raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected list, got %T", ErrTypeMismatch, v.raw)
	}
	out := make([]Value, 0, len(list))
	for _, item := range list {
		out = append(out, Value{raw: item})
	}
	return out, nil
}

// Str projects a string.
func (v Value) Str() (string, error) {
	s, ok := v.raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string, got %T", ErrTypeMismatch, v.raw)
	}
	return s, nil
}

// Bool projects a boolean.
func (v Value) Bool() (bool, error) {
	b, ok := v.raw.(bool)
	if !ok {
		return false, fmt.Errorf("%w: expected bool, got %T", ErrTypeMismatch, v.raw)
	}
	return b, nil
}

// BigInt projects an unsigned integer given as a JSON number, a decimal
// string or a 0x-prefixed big-endian hex string.
func (v Value) BigInt() (*big.Int, error) {
	var text string
	switch typed := v.raw.(type) {
	case json.Number:
		text = typed.String()
	case string:
		text = strings.TrimSpace(typed)
	case float64:
		text = new(big.Float).SetFloat64(typed).Text('f', 0)
	default:
		return nil, fmt.Errorf("%w: expected integer, got %T", ErrTypeMismatch, v.raw)
	}

	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		data, err := hexutil.Decode(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
		}
		return new(big.Int).SetBytes(data), nil
	}

	out, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, fmt.Errorf("%w: invalid integer %q", ErrTypeMismatch, text)
	}
	if out.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative integer %s", ErrTypeMismatch, text)
	}
	return out, nil
}

func (v Value) Uint64() (uint64, error) {
	n, err := v.BigInt()
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("%w: %s overflows uint64", ErrTypeMismatch, n)
	}
	return n.Uint64(), nil
}

func (v Value) Uint32() (uint32, error) {
	n, err := v.Uint64()
	if err != nil {
		return 0, err
	}
	if n > uint64(^uint32(0)) {
		return 0, fmt.Errorf("%w: %d overflows uint32", ErrTypeMismatch, n)
	}
	return uint32(n), nil
}

// Bytes projects a hex string or a list of byte values.
func (v Value) Bytes() ([]byte, error) {
	switch typed := v.raw.(type) {
	case string:
		data, err := hexutil.Decode(typed)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
		}
		return data, nil
	case []any:
		out := make([]byte, 0, len(typed))
		for _, item := range typed {
			n, err := Value{raw: item}.Uint64()
			if err != nil || n > 0xff {
				return nil, fmt.Errorf("%w: invalid byte %v", ErrTypeMismatch, item)
			}
			out = append(out, byte(n))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected bytes, got %T", ErrTypeMismatch, v.raw)
	}
}

// Variant projects an enum value: either a bare variant name or an object
// with exactly one key.
func (v Value) Variant() (string, Value, error) {
	switch typed := v.raw.(type) {
	case string:
		return typed, Value{}, nil
	case map[string]any:
		if len(typed) != 1 {
			return "", Value{}, fmt.Errorf("%w: enum object with %d keys", ErrTypeMismatch, len(typed))
		}
		for name, inner := range typed {
			return name, Value{raw: inner}, nil
		}
	}
	return "", Value{}, fmt.Errorf("%w: expected enum, got %T", ErrTypeMismatch, v.raw)
}

// AccountID projects a raw account id or a MultiAddress enum
// (Id, Address32, Address20).
func (v Value) AccountID() (model.AccountID, error) {
	if _, ok := v.raw.(map[string]any); ok {
		name, inner, err := v.Variant()
		if err != nil {
			return "", err
		}
		switch name {
		case "Id", "Address32", "Address20":
			return inner.AccountID()
		default:
			return "", fmt.Errorf("%w: unsupported address variant %s", ErrTypeMismatch, name)
		}
	}

	data, err := v.Bytes()
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty account id", ErrTypeMismatch)
	}
	return model.AccountIDFromBytes(data), nil
}

// MarshalJSON encodes the underlying value.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw)
}

// UnmarshalJSON decodes into the value keeping numbers exact.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// RawJSON returns the JSON encoding, or nil if it cannot be encoded.
func (v Value) RawJSON() json.RawMessage {
	data, err := json.Marshal(v.raw)
	if err != nil {
		return nil
	}
	return data
}
