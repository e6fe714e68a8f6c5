package codec

import (
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"extrinsicScope/internal/model"
)

// Call is a decoded runtime call.
type Call struct {
	Path model.CallPath
	Args Value
	raw  Value
}

// CallFromValue projects {"module", "function", "args"}.
func CallFromValue(v Value) (Call, error) {
	module, err := v.FirstField("module", "module_name", "section").Str()
	if err != nil {
		return Call{}, fmt.Errorf("call module: %w", err)
	}
	function, err := v.FirstField("function", "call_name", "method").Str()
	if err != nil {
		return Call{}, fmt.Errorf("call function: %w", err)
	}
	return Call{
		Path: model.NewCallPath(module, function),
		Args: v.Field("args"),
		raw:  v,
	}, nil
}

// NewCall builds a call from its parts.
func NewCall(path model.CallPath, args Value) Call {
	raw := map[string]any{
		"module":   path.Module,
		"function": path.Function,
		"args":     args.raw,
	}
	return Call{Path: path, Args: args, raw: Value{raw: raw}}
}

// Value returns the call in its decoded form.
func (c Call) Value() Value {
	return c.raw
}

// JSON returns the call encoded as JSON.
func (c Call) JSON() json.RawMessage {
	return c.raw.RawJSON()
}

// Extrinsic is a decoded extrinsic.
type Extrinsic struct {
	Signer *model.AccountID
	Call   Call
}

// DecodeExtrinsic decodes raw extrinsic bytes with the factory.
func DecodeExtrinsic(f Factory, data []byte) (Extrinsic, error) {
	value, err := f.Decode(data, TypeExtrinsic)
	if err != nil {
		return Extrinsic{}, fmt.Errorf("decode extrinsic: %w", err)
	}

	call, err := CallFromValue(value.Field("call"))
	if err != nil {
		return Extrinsic{}, err
	}

	ext := Extrinsic{Call: call}
	signature := value.Field("signature")
	if !signature.IsNull() {
		signer, err := signature.Field("address").AccountID()
		if err != nil {
			return Extrinsic{}, fmt.Errorf("extrinsic signer: %w", err)
		}
		ext.Signer = &signer
	}
	return ext, nil
}

// ExtrinsicHash returns the blake2b-256 hash of the raw extrinsic.
func ExtrinsicHash(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}
