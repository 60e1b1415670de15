// Package errors provides structured error handling for the indexer.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Storage errors
	CodeNotFound           Code = "NOT_FOUND"
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"

	// Chain/event errors
	CodeEventUnknownKind Code = "EVENT_UNKNOWN_KIND"
	CodeEventMalformed   Code = "EVENT_MALFORMED"
	CodeEventPayloadType Code = "EVENT_PAYLOAD_TYPE"

	// Ingest errors
	CodeCursorBlockGap Code = "CURSOR_BLOCK_GAP"
	CodeRPCUnavailable Code = "RPC_UNAVAILABLE"
	CodeRPCBadResponse Code = "RPC_BAD_RESPONSE"
)
