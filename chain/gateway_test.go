package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varunguleriaCodes/DeWebStatus/rail"
)

func writeGateway(w http.ResponseWriter, status, code int, data interface{}) {
	raw, _ := json.Marshal(data)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&gatewayResponse{Code: code, Msg: "msg", Data: raw})
}

func TestTransfer(t *testing.T) {
	testCases := []struct {
		name         string
		status       int
		code         int
		wantID       string
		wantRejected bool
		wantTransit  bool
	}{
		{
			name:   "confirmed",
			status: http.StatusOK,
			code:   http.StatusOK,
			wantID: "sig-1",
		},
		{
			name:         "insufficient funds",
			status:       http.StatusOK,
			code:         http.StatusPaymentRequired,
			wantRejected: true,
		},
		{
			name:        "gateway unavailable",
			status:      http.StatusServiceUnavailable,
			code:        0,
			wantTransit: true,
		},
		{
			name:        "rate limited",
			status:      http.StatusOK,
			code:        http.StatusTooManyRequests,
			wantTransit: true,
		},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/transfers", r.URL.Path)
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

				req := &transferReq{}
				assert.NoError(t, json.NewDecoder(r.Body).Decode(req))
				assert.Equal(t, "addr", req.Address)
				assert.Equal(t, uint64(500), req.Amount)
				assert.Equal(t, "key-1", req.IdempotencyKey)

				writeGateway(w, c.status, c.code, &transferResp{TransferID: "sig-1"})
			}))
			defer srv.Close()

			id, err := NewGatewayClient(srv.URL, "secret").
				Transfer(context.Background(), "addr", 500, "key-1")
			assert.Equal(t, c.wantRejected, rail.IsRejected(err))
			assert.Equal(t, c.wantTransit, errors.Is(err, rail.ErrTransient))
			assert.Equal(t, c.wantID, id)
		})
	}
}

func TestTransferUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewGatewayClient(srv.URL, "").Transfer(context.Background(), "addr", 1, "key")
	assert.True(t, errors.Is(err, rail.ErrTransient))
}

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Query().Get("idempotency_key") {
		case "known":
			writeGateway(w, http.StatusOK, http.StatusOK, &transferResp{TransferID: "sig-9"})
		default:
			writeGateway(w, http.StatusNotFound, http.StatusNotFound, nil)
		}
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "")
	var _ rail.Lookuper = client

	id, found, err := client.Lookup(context.Background(), "known")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "sig-9", id)

	_, found, err = client.Lookup(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, found)
}
