// Package chain talks to the payout gateway that signs and broadcasts
// transfers on the chain.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/varunguleriaCodes/DeWebStatus/rail"
)

const (
	transferPath = "transfers"

	defaultRequestTimeout = 10 * time.Second
)

// GatewayClient implements rail.PaymentRail and rail.Lookuper against the
// payout gateway HTTP API.
type GatewayClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewGatewayClient returns a new gateway client instance.
func NewGatewayClient(endpoint, apiKey string) *GatewayClient {
	return &GatewayClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: defaultRequestTimeout},
	}
}

type transferReq struct {
	Address        string `json:"address"`
	Amount         uint64 `json:"amount"`
	IdempotencyKey string `json:"idempotency_key"`
}

type transferResp struct {
	TransferID string `json:"transfer_id"`
}

// Transfer submits a transfer. The gateway deduplicates by idempotency key.
func (g *GatewayClient) Transfer(
	ctx context.Context,
	address string,
	amount uint64,
	idempotencyKey string,
) (string, error) {
	payload, err := json.Marshal(&transferReq{
		Address:        address,
		Amount:         amount,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return "", errors.Wrap(err, "json marshal")
	}

	u := fmt.Sprintf("%s/%s", g.endpoint, transferPath)
	resp := &transferResp{}
	if err := g.request(ctx, http.MethodPost, u, payload, resp); errors.Is(err, errTransferNotFound) {
		return "", rail.Transient(errors.Wrap(err, "transfer endpoint"))
	} else if err != nil {
		return "", err
	}

	if resp.TransferID == "" {
		return "", rail.Transient(errors.New("gateway returned empty transfer id"))
	}

	return resp.TransferID, nil
}

// Lookup finds the transfer submitted with the idempotency key.
func (g *GatewayClient) Lookup(ctx context.Context, idempotencyKey string) (string, bool, error) {
	u := fmt.Sprintf("%s/%s?idempotency_key=%s",
		g.endpoint, transferPath, url.QueryEscape(idempotencyKey))
	resp := &transferResp{}
	err := g.request(ctx, http.MethodGet, u, nil, resp)
	if errors.Is(err, errTransferNotFound) {
		return "", false, nil
	}

	if err != nil {
		return "", false, err
	}

	return resp.TransferID, resp.TransferID != "", nil
}

type gatewayResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data,omitempty"`
}

var errTransferNotFound = errors.New("transfer not found")

// request performs the call and classifies failures: transport errors and
// 5xx answers are transient, 404 means not found, other 4xx answers are
// rejections.
func (g *GatewayClient) request(
	ctx context.Context,
	method string,
	u string,
	payload []byte,
	result interface{},
) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return rail.Transient(err)
	}

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return rail.Transient(err)
	}

	gr := &gatewayResponse{}
	if err := json.Unmarshal(raw, gr); err != nil {
		return rail.Transient(errors.Wrapf(err, "decode gateway response, status %d", resp.StatusCode))
	}

	code := gr.Code
	if code == 0 {
		code = resp.StatusCode
	}

	switch {
	case code == http.StatusOK || code == http.StatusCreated:
		if err := json.Unmarshal(gr.Data, result); err != nil {
			return rail.Transient(errors.Wrap(err, "decode gateway data"))
		}
		return nil

	case code == http.StatusNotFound:
		return errTransferNotFound

	case code >= 400 && code < 500 && code != http.StatusTooManyRequests &&
		code != http.StatusRequestTimeout:
		return rail.Rejected(fmt.Sprintf("gateway code %d: %s", code, gr.Msg))

	default:
		return rail.Transient(fmt.Errorf("gateway code %d: %s", code, gr.Msg))
	}
}
