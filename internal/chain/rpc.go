package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	apperrors "github.com/heavyhelms/playerindex/internal/platform/errors"
)

// Client is a minimal JSON-RPC 2.0 client over a websocket connection. It
// issues one request at a time; the indexer's ingest loop is sequential, so
// no pipelining is needed.
type Client struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	nextID uint64
}

// Dial connects to an EVM node's websocket JSON-RPC endpoint.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeRPCUnavailable, "dial rpc endpoint", err)
	}
	return &Client{conn: conn}, nil
}

// Close tears down the websocket connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	req := rpcRequest{JSONRPC: "2.0", ID: c.nextID, Method: method, Params: params}
	if params == nil {
		req.Params = []any{}
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		_ = c.conn.SetReadDeadline(deadline)
	} else {
		_ = c.conn.SetWriteDeadline(time.Time{})
		_ = c.conn.SetReadDeadline(time.Time{})
	}

	if err := c.conn.WriteJSON(req); err != nil {
		return apperrors.Wrap(apperrors.CodeRPCUnavailable, "write "+method, err)
	}

	// Responses to our own sequential requests arrive in order, but a node
	// may interleave subscription notifications; skip frames that do not
	// answer the outstanding request.
	for {
		var resp rpcResponse
		if err := c.conn.ReadJSON(&resp); err != nil {
			return apperrors.Wrap(apperrors.CodeRPCUnavailable, "read "+method, err)
		}
		if resp.ID != req.ID {
			continue
		}
		if resp.Error != nil {
			return apperrors.Wrap(apperrors.CodeRPCBadResponse, method, resp.Error)
		}
		if result == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return apperrors.Wrap(apperrors.CodeRPCBadResponse, "decode "+method+" result", err)
		}
		return nil
	}
}

// BlockNumber returns the node's latest block height.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var raw string
	if err := c.call(ctx, "eth_blockNumber", nil, &raw); err != nil {
		return 0, err
	}
	return parseQuantity(raw)
}

// FilterQuery selects the logs an eth_getLogs call returns.
type FilterQuery struct {
	FromBlock uint64
	ToBlock   uint64
	Address   Address
	Topics    []Hash
}

type rpcLog struct {
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	BlockNumber string   `json:"blockNumber"`
	TxHash      string   `json:"transactionHash"`
	LogIndex    string   `json:"logIndex"`
	Removed     bool     `json:"removed"`
}

// FilterLogs fetches the contract's logs for an inclusive block range.
func (c *Client) FilterLogs(ctx context.Context, query FilterQuery) ([]Log, error) {
	params := map[string]any{
		"fromBlock": formatQuantity(query.FromBlock),
		"toBlock":   formatQuantity(query.ToBlock),
		"address":   string(query.Address),
	}
	if len(query.Topics) > 0 {
		topics := make([]any, len(query.Topics))
		for i, topic := range query.Topics {
			topics[i] = string(topic)
		}
		// topic-0 position accepts a list of alternatives
		params["topics"] = []any{topics}
	}

	var raw []rpcLog
	if err := c.call(ctx, "eth_getLogs", []any{params}, &raw); err != nil {
		return nil, err
	}

	logs := make([]Log, 0, len(raw))
	for _, entry := range raw {
		if entry.Removed {
			continue
		}
		lg, err := entry.toLog()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeRPCBadResponse, "decode log entry", err)
		}
		logs = append(logs, lg)
	}
	return logs, nil
}

func (e rpcLog) toLog() (Log, error) {
	blockNumber, err := parseQuantity(e.BlockNumber)
	if err != nil {
		return Log{}, fmt.Errorf("blockNumber: %w", err)
	}
	logIndex, err := parseQuantity(e.LogIndex)
	if err != nil {
		return Log{}, fmt.Errorf("logIndex: %w", err)
	}
	if logIndex > 1<<32-1 {
		return Log{}, fmt.Errorf("logIndex %d overflows uint32", logIndex)
	}
	data, err := decodeHex(e.Data)
	if err != nil {
		return Log{}, fmt.Errorf("data: %w", err)
	}
	topics := make([]Hash, len(e.Topics))
	for i, topic := range e.Topics {
		topics[i] = Hash(strings.ToLower(topic))
	}
	return Log{
		Address:     NormalizeAddress(e.Address),
		Topics:      topics,
		Data:        data,
		BlockNumber: blockNumber,
		TxHash:      Hash(strings.ToLower(e.TxHash)),
		Index:       uint32(logIndex),
	}, nil
}

type rpcBlock struct {
	Timestamp string `json:"timestamp"`
}

// BlockTime returns a block's timestamp.
func (c *Client) BlockTime(ctx context.Context, blockNumber uint64) (time.Time, error) {
	var block *rpcBlock
	if err := c.call(ctx, "eth_getBlockByNumber", []any{formatQuantity(blockNumber), false}, &block); err != nil {
		return time.Time{}, err
	}
	if block == nil {
		return time.Time{}, apperrors.New(apperrors.CodeRPCBadResponse, "block not found")
	}
	seconds, err := parseQuantity(block.Timestamp)
	if err != nil {
		return time.Time{}, apperrors.Wrap(apperrors.CodeRPCBadResponse, "decode block timestamp", err)
	}
	return time.Unix(int64(seconds), 0).UTC(), nil
}

// parseQuantity decodes a JSON-RPC hex quantity like "0x1b4".
func parseQuantity(value string) (uint64, error) {
	trimmed := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), "0x")
	if trimmed == "" {
		return 0, fmt.Errorf("empty quantity %q", value)
	}
	parsed, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return 0, fmt.Errorf("malformed quantity %q", value)
	}
	if !parsed.IsUint64() {
		return 0, fmt.Errorf("quantity %q overflows uint64", value)
	}
	return parsed.Uint64(), nil
}

func formatQuantity(value uint64) string {
	return fmt.Sprintf("0x%x", value)
}
