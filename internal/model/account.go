package model

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AccountID is the raw byte identifier of a chain account.
// The zero value is the empty account.
type AccountID string

// AccountIDFromBytes copies raw bytes into an AccountID.
func AccountIDFromBytes(data []byte) AccountID {
	return AccountID(data)
}

// ParseAccountID parses a 0x-prefixed hex account identifier.
func ParseAccountID(input string) (AccountID, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("empty account id")
	}
	data, err := hexutil.Decode(input)
	if err != nil {
		return "", fmt.Errorf("invalid account id %q: %w", input, err)
	}
	if len(data) != 20 && len(data) != 32 {
		return "", fmt.Errorf("invalid account id length: %d", len(data))
	}
	return AccountID(data), nil
}

func (a AccountID) Bytes() []byte {
	return []byte(a)
}

func (a AccountID) IsEmpty() bool {
	return len(a) == 0
}

// Hex returns the 0x-prefixed hex form.
func (a AccountID) Hex() string {
	if a.IsEmpty() {
		return ""
	}
	return hexutil.Encode([]byte(a))
}

func (a AccountID) String() string {
	return a.Hex()
}

// MarshalText encodes the account as hex.
func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText decodes a hex account.
func (a *AccountID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*a = ""
		return nil
	}
	data, err := hexutil.Decode(string(text))
	if err != nil {
		return err
	}
	*a = AccountID(data)
	return nil
}
