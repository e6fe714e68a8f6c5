package fee

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"extrinsicScope/internal/codec"
	"extrinsicScope/internal/model"
)

const (
	alice = "0x1111111111111111111111111111111111111111111111111111111111111111"
	bob   = "0x2222222222222222222222222222222222222222222222222222222222222222"
)

func account(t *testing.T, hex string) model.AccountID {
	t.Helper()
	id, err := model.ParseAccountID(hex)
	require.NoError(t, err)
	return id
}

func event(index uint32, path model.EventPath, params string) codec.EventRecord {
	return codec.EventRecord{
		ExtrinsicIndex: &index,
		Path:           path,
		Params:         codec.MustParseJSON(params),
	}
}

func quoted(s string) string {
	return fmt.Sprintf("%q", s)
}
