package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/varunguleriaCodes/DeWebStatus/api/service"
	"github.com/varunguleriaCodes/DeWebStatus/config"
	"github.com/varunguleriaCodes/DeWebStatus/database/orm"
	"github.com/varunguleriaCodes/DeWebStatus/ingest"
	"github.com/varunguleriaCodes/DeWebStatus/ledger"
	"github.com/varunguleriaCodes/DeWebStatus/metrics"
	"github.com/varunguleriaCodes/DeWebStatus/rail/memrail"
	"github.com/varunguleriaCodes/DeWebStatus/settlement"
	"github.com/varunguleriaCodes/DeWebStatus/testutil"
)

const payoutAddress = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"

type testServer struct {
	db        *gorm.DB
	rail      *memrail.Rail
	handler   http.Handler
	website   *orm.Website
	validator *orm.Validator
}

func newTestServer(t *testing.T, pending uint64) *testServer {
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	store := ledger.NewStore(db, 100)
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("hub_test", reg)
	r := memrail.New()

	cfg := config.DefaultSettlement()
	cfg.RailTimeout = 50 * time.Millisecond
	engine := settlement.NewEngine(store, r, cfg, m)
	t.Cleanup(engine.Close)

	svc := service.New(store, ingest.New(store, m), engine, 9)
	return &testServer{
		db:        db,
		rail:      r,
		handler:   New(0, svc, reg).Handler(),
		website:   testutil.CreateWebsite(t, db, "https://example.com", false),
		validator: testutil.CreateValidator(t, db, payoutAddress, pending),
	}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (int, *envelope) {
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	env := &envelope{}
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), env))
	}
	return w.Code, env
}

func TestPing(t *testing.T) {
	s := newTestServer(t, 0)

	status, env := s.do(t, http.MethodGet, "/api/v1/ping", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, env.Code)
	assert.JSONEq(t, `{"pong":"pong"}`, string(env.Data))
}

func TestRecordTickEndpoint(t *testing.T) {
	s := newTestServer(t, 0)
	now := time.Now().UTC().Format(time.RFC3339)

	testCases := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
	}{
		{
			name: "recorded",
			body: map[string]interface{}{
				"website_id":   s.website.ID,
				"validator_id": s.validator.ID,
				"status":       "up",
				"latency_ms":   87,
				"observed_at":  now,
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "unknown website",
			body: map[string]interface{}{
				"website_id":   s.website.ID + 1,
				"validator_id": s.validator.ID,
				"status":       "up",
				"observed_at":  now,
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "unknown validator",
			body: map[string]interface{}{
				"website_id":   s.website.ID,
				"validator_id": s.validator.ID + 1,
				"status":       "down",
				"observed_at":  now,
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "invalid status",
			body: map[string]interface{}{
				"website_id":   s.website.ID,
				"validator_id": s.validator.ID,
				"status":       "sideways",
				"observed_at":  now,
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "negative latency",
			body: map[string]interface{}{
				"website_id":   s.website.ID,
				"validator_id": s.validator.ID,
				"status":       "up",
				"latency_ms":   -1,
				"observed_at":  now,
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing website",
			body: map[string]interface{}{
				"validator_id": s.validator.ID,
				"status":       "up",
				"observed_at":  now,
			},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			status, env := s.do(t, http.MethodPost, "/api/v1/ticks", c.body)
			assert.Equal(t, c.wantStatus, status, env.Msg)
			if c.wantStatus == http.StatusCreated {
				assert.Contains(t, string(env.Data), "tick_id")
			} else {
				assert.NotZero(t, env.Code)
			}
		})
	}

	assert.Equal(t, uint64(100), testutil.PendingAmount(t, s.db, s.validator.ID))

	status, env := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/websites/%d/status", s.website.ID), nil)
	require.Equal(t, http.StatusOK, status)
	st := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, "up", st["status"])
	assert.Equal(t, float64(87), st["latency_ms"])
	assert.Contains(t, st, "last_seen_ago")
}

func TestSettleEndpoint(t *testing.T) {
	s := newTestServer(t, 500)
	path := fmt.Sprintf("/api/v1/validators/%d/settle", s.validator.ID)

	status, env := s.do(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, status, env.Msg)
	res := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "settled", res["outcome"])
	assert.Equal(t, float64(500), res["amount"])
	assert.Equal(t, "0.000000500", res["amount_display"])
	assert.Equal(t, "T1", res["transfer_id"])

	status, env = s.do(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, status)
	res = map[string]interface{}{}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "nothing_pending", res["outcome"])

	status, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/validators/%d/settle", s.validator.ID+1), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/validators/abc/settle", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSettleEndpointOutcomeUnknown(t *testing.T) {
	s := newTestServer(t, 500)
	s.rail.SetMode(memrail.Timeout)
	path := fmt.Sprintf("/api/v1/validators/%d/settle", s.validator.ID)

	status, env := s.do(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusBadGateway, status, env.Msg)
	res := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, true, res["outcome_unknown"])
	intentID, ok := res["intent_id"].(float64)
	require.True(t, ok)

	status, _ = s.do(t, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/intents/%d", uint64(intentID)), nil)
	require.Equal(t, http.StatusOK, status)
	intent := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(env.Data, &intent))
	assert.Equal(t, string(orm.IntentSubmitted), intent["state"])

	status, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/validators/%d/intents", s.validator.ID), nil)
	require.Equal(t, http.StatusOK, status)
	page := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, float64(1), page["total"])
	assert.Equal(t, uint64(500), testutil.PendingAmount(t, s.db, s.validator.ID))
}

func TestSettleEndpointRejected(t *testing.T) {
	s := newTestServer(t, 500)
	s.rail.SetMode(memrail.Reject)

	status, env := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/validators/%d/settle", s.validator.ID), nil)
	require.Equal(t, http.StatusBadGateway, status)
	res := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "rejected", res["outcome"])
	assert.NotContains(t, res, "outcome_unknown")
}

func TestRegisterValidatorEndpoint(t *testing.T) {
	s := newTestServer(t, 0)

	status, env := s.do(t, http.MethodPost, "/api/v1/validators", map[string]interface{}{
		"public_key":     "validator-b",
		"payout_address": "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T",
		"location":       "eu-west",
	})
	require.Equal(t, http.StatusOK, status, env.Msg)
	v := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(env.Data, &v))
	id := uint64(v["id"].(float64))

	status, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/validators/%d", id), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "eu-west")

	status, _ = s.do(t, http.MethodPost, "/api/v1/validators", map[string]interface{}{
		"public_key":     "validator-b",
		"payout_address": payoutAddress,
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/validators", map[string]interface{}{
		"public_key":     "validator-c",
		"payout_address": "0xnot-base58",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWebsitesEndpoint(t *testing.T) {
	s := newTestServer(t, 0)
	testutil.CreateWebsite(t, s.db, "https://disabled.example.com", true)
	testutil.CreateWebsite(t, s.db, "https://second.example.com", false)

	status, env := s.do(t, http.MethodGet, "/api/v1/websites?start=0&limit=1", nil)
	require.Equal(t, http.StatusOK, status)
	page := struct {
		Data  []map[string]interface{} `json:"data"`
		Total int64                    `json:"total"`
	}{}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Data, 1)

	status, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/websites/%d/status", s.website.ID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), ledger.StatusUnknown)

	status, _ = s.do(t, http.MethodGet, "/api/v1/websites?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, 0)

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
