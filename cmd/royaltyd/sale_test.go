package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/royaltyledger-go/config"
	"github.com/bitfsorg/royaltyledger-go/network"
	"github.com/bitfsorg/royaltyledger-go/royalty"
	"github.com/bitfsorg/royaltyledger-go/store"
)

const payoutTxID = "5e3b7d0c8c1f0b8a2d4e6f8091a2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4"

func TestPrintSettlementStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  *network.TxStatus
		err     error
		want    string
		wantErr bool
	}{
		{
			name:   "confirmed",
			status: &network.TxStatus{Confirmed: true, Confirmations: 6, BlockHeight: 840000, BlockHash: "00ab"},
			want:   "confirmed (6 confirmations, block 840000 00ab)",
		},
		{
			name:   "unconfirmed",
			status: &network.TxStatus{},
			want:   "unconfirmed",
		},
		{
			name: "unknown",
			err:  network.ErrTxNotFound,
			want: "unknown to the node",
		},
		{
			name:    "node down",
			err:     errors.Join(network.ErrConnectionFailed, errors.New("dial tcp: refused")),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var asked string
			chain := &network.MockBlockchainService{
				GetTxStatusFn: func(_ context.Context, txid string) (*network.TxStatus, error) {
					asked = txid
					return tt.status, tt.err
				},
			}
			var buf bytes.Buffer
			err := printSettlementStatus(context.Background(), &buf, chain, payoutTxID)
			assert.Equal(t, payoutTxID, asked)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

// newNodeServer answers getrawtransaction for payoutTxID.
func newNodeServer(t *testing.T, confirmations int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int64         `json:"id"`
			Method string        `json:"method"`
			Params []interface{} `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := map[string]interface{}{"id": req.ID, "error": nil}
		if req.Method == "getrawtransaction" && len(req.Params) > 0 && req.Params[0] == payoutTxID {
			resp["result"] = map[string]interface{}{
				"confirmations": confirmations,
				"blockhash":     "00ab",
				"blockheight":   840000,
			}
		} else {
			w.WriteHeader(http.StatusInternalServerError)
			resp["error"] = map[string]interface{}{"code": -5, "message": "No such mempool or blockchain transaction"}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCLI_SaleStatus(t *testing.T) {
	node := newNodeServer(t, 3)
	dir := t.TempDir()
	mustRun(t, dir, "init", "--admin", "admin@example.com", "--rpc-url", node.URL)
	mustRun(t, dir, "policy", "register", "--asset", "1", "--creator", "creator@example.com", "--bps", "500")

	// Offline sales carry no settlement reference.
	mustRun(t, dir, "sale", "record", "--asset", "1", "--seller", "seller@example.com", "--buyer", "buyer@example.com", "--price", "1000")
	out := mustRun(t, dir, "sale", "status", "--asset", "1", "--seq", "1")
	assert.Contains(t, out, "asset 1 sale 1: no settlement reference")

	out = mustRun(t, dir, "sale", "status", "--asset", "1", "--seq", "9")
	assert.Contains(t, out, "asset 1: no sale 9")

	s, err := store.OpenBoltStore(config.DatabasePath(dir))
	require.NoError(t, err)
	require.NoError(t, s.Update(func(tx store.Tx) error {
		if err := tx.PutSale(&royalty.SaleRecord{
			AssetID:       1,
			Sequence:      2,
			Seller:        "seller@example.com",
			Buyer:         "buyer@example.com",
			SalePrice:     1000,
			RoyaltyPaid:   50,
			Timestamp:     840000,
			Payouts:       []royalty.Payout{{To: "creator@example.com", Amount: 50}},
			SettlementRef: payoutTxID,
		}); err != nil {
			return err
		}
		return tx.SetLastSequence(1, 2)
	}))
	require.NoError(t, s.Close())

	out = mustRun(t, dir, "sale", "status", "--asset", "1", "--seq", "2")
	assert.Contains(t, out, "settlement "+payoutTxID+": confirmed (3 confirmations, block 840000 00ab)")
}

func TestCLI_SaleTimestampsAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init", "--admin", "admin@example.com")
	mustRun(t, dir, "policy", "register", "--asset", "1", "--creator", "creator@example.com", "--bps", "500")
	for range 3 {
		mustRun(t, dir, "sale", "record", "--asset", "1", "--seller", "seller@example.com", "--buyer", "buyer@example.com", "--price", "1000")
	}

	// Every invocation reopens the store; the clock keeps counting.
	out := mustRun(t, dir, "sale", "list", "--asset", "1")
	assert.Contains(t, out, "#1 seller@example.com -> buyer@example.com price 1000 royalty 50 at 2")
	assert.Contains(t, out, "#3 seller@example.com -> buyer@example.com price 1000 royalty 50 at 4")
}
