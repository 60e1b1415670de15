// Package chain provides the primitives the indexer needs from the EVM chain:
// hashes, addresses, logs, the Player contract's event catalog, and a minimal
// JSON-RPC client for fetching logs and block timestamps.
package chain

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash is a 0x-prefixed, lowercase hex encoding of a 32-byte hash.
type Hash string

// Address is a 0x-prefixed, lowercase hex encoding of a 20-byte address.
type Address string

const (
	hashByteLen    = 32
	addressByteLen = 20
)

// NormalizeAddress lowercases an address and ensures the 0x prefix.
// Addresses are stored and compared in this canonical form.
func NormalizeAddress(value string) Address {
	value = strings.ToLower(strings.TrimSpace(value))
	if value != "" && !strings.HasPrefix(value, "0x") {
		value = "0x" + value
	}
	return Address(value)
}

// Bytes decodes the hash into its raw 32 bytes.
func (h Hash) Bytes() ([]byte, error) {
	raw, err := decodeHex(string(h))
	if err != nil {
		return nil, fmt.Errorf("decode hash %q: %w", h, err)
	}
	if len(raw) != hashByteLen {
		return nil, fmt.Errorf("hash %q is %d bytes, want %d", h, len(raw), hashByteLen)
	}
	return raw, nil
}

// Bytes decodes the address into its raw 20 bytes.
func (a Address) Bytes() ([]byte, error) {
	raw, err := decodeHex(string(a))
	if err != nil {
		return nil, fmt.Errorf("decode address %q: %w", a, err)
	}
	if len(raw) != addressByteLen {
		return nil, fmt.Errorf("address %q is %d bytes, want %d", a, len(raw), addressByteLen)
	}
	return raw, nil
}

// Log is one EVM log entry scoped to the fields the indexer consumes.
type Log struct {
	Address     Address
	Topics      []Hash
	Data        []byte
	BlockNumber uint64
	TxHash      Hash
	Index       uint32
}

// EventID builds the audit record identity for a log occurrence: the raw
// transaction hash followed by the log index as a 4-byte big-endian integer,
// hex encoded. The byte concatenation keeps IDs unambiguous without a
// delimiter, and the log index suffix keeps multiple events in one
// transaction distinct.
func EventID(txHash Hash, logIndex uint32) (string, error) {
	raw, err := txHash.Bytes()
	if err != nil {
		return "", err
	}
	id := make([]byte, hashByteLen+4)
	copy(id, raw)
	binary.BigEndian.PutUint32(id[hashByteLen:], logIndex)
	return hex.EncodeToString(id), nil
}

func decodeHex(value string) ([]byte, error) {
	value = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), "0x")
	return hex.DecodeString(value)
}

func encodeHex(raw []byte) string {
	return "0x" + hex.EncodeToString(raw)
}
