package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// fakeNode serves scripted JSON-RPC responses over a websocket endpoint.
type fakeNode struct {
	t       *testing.T
	server  *httptest.Server
	respond func(method string, params []json.RawMessage) (any, *rpcError)
}

func newFakeNode(t *testing.T, respond func(method string, params []json.RawMessage) (any, *rpcError)) *fakeNode {
	t.Helper()
	node := &fakeNode{t: t, respond: respond}
	upgrader := websocket.Upgrader{}
	node.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var req struct {
				ID     uint64            `json:"id"`
				Method string            `json:"method"`
				Params []json.RawMessage `json:"params"`
			}
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			result, rpcErr := node.respond(req.Method, req.Params)
			resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
			if rpcErr != nil {
				resp["error"] = rpcErr
			} else {
				resp["result"] = result
			}
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	}))
	t.Cleanup(node.server.Close)
	return node
}

func (n *fakeNode) url() string {
	return "ws" + strings.TrimPrefix(n.server.URL, "http")
}

func dialFake(t *testing.T, node *fakeNode) *Client {
	t.Helper()
	client, err := Dial(context.Background(), node.url())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClientBlockNumber(t *testing.T) {
	node := newFakeNode(t, func(method string, _ []json.RawMessage) (any, *rpcError) {
		if method != "eth_blockNumber" {
			t.Fatalf("method = %s", method)
		}
		return "0x1b4", nil
	})
	client := dialFake(t, node)

	got, err := client.BlockNumber(context.Background())
	if err != nil {
		t.Fatalf("BlockNumber() error = %v", err)
	}
	if got != 436 {
		t.Fatalf("BlockNumber() = %d, want 436", got)
	}
}

func TestClientBlockTime(t *testing.T) {
	node := newFakeNode(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		if method != "eth_getBlockByNumber" {
			t.Fatalf("method = %s", method)
		}
		var blockTag string
		if err := json.Unmarshal(params[0], &blockTag); err != nil {
			t.Fatalf("decode block tag: %v", err)
		}
		if blockTag != "0x2a" {
			t.Fatalf("block tag = %s, want 0x2a", blockTag)
		}
		return map[string]any{"timestamp": "0x6553f100"}, nil
	})
	client := dialFake(t, node)

	got, err := client.BlockTime(context.Background(), 42)
	if err != nil {
		t.Fatalf("BlockTime() error = %v", err)
	}
	want := time.Unix(0x6553f100, 0).UTC()
	if !got.Equal(want) {
		t.Fatalf("BlockTime() = %v, want %v", got, want)
	}
}

func TestClientFilterLogs(t *testing.T) {
	node := newFakeNode(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		if method != "eth_getLogs" {
			t.Fatalf("method = %s", method)
		}
		var query struct {
			FromBlock string `json:"fromBlock"`
			ToBlock   string `json:"toBlock"`
			Address   string `json:"address"`
		}
		if err := json.Unmarshal(params[0], &query); err != nil {
			t.Fatalf("decode query: %v", err)
		}
		if query.FromBlock != "0xa" || query.ToBlock != "0x14" {
			t.Fatalf("range = %s..%s", query.FromBlock, query.ToBlock)
		}
		return []map[string]any{
			{
				"address":         query.Address,
				"topics":          []string{"0x" + strings.Repeat("ab", 32)},
				"data":            "0x" + strings.Repeat("00", 31) + "07",
				"blockNumber":     "0xb",
				"transactionHash": string(testTxHash),
				"logIndex":        "0x3",
			},
			{
				"address":         query.Address,
				"topics":          []string{},
				"data":            "0x",
				"blockNumber":     "0xc",
				"transactionHash": string(testTxHash),
				"logIndex":        "0x0",
				"removed":         true,
			},
		}, nil
	})
	client := dialFake(t, node)

	logs, err := client.FilterLogs(context.Background(), FilterQuery{
		FromBlock: 10,
		ToBlock:   20,
		Address:   testOwner,
	})
	if err != nil {
		t.Fatalf("FilterLogs() error = %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("FilterLogs() returned %d logs, want 1 (removed log dropped)", len(logs))
	}
	lg := logs[0]
	if lg.BlockNumber != 11 || lg.Index != 3 || lg.TxHash != testTxHash {
		t.Fatalf("log = %+v", lg)
	}
	if len(lg.Data) != wordLen || lg.Data[wordLen-1] != 7 {
		t.Fatalf("log data = %x", lg.Data)
	}
}

func TestClientSurfacesRPCErrors(t *testing.T) {
	node := newFakeNode(t, func(string, []json.RawMessage) (any, *rpcError) {
		return nil, &rpcError{Code: -32000, Message: "header not found"}
	})
	client := dialFake(t, node)

	if _, err := client.BlockNumber(context.Background()); err == nil {
		t.Fatalf("BlockNumber() error = nil, want rpc failure")
	}
}
