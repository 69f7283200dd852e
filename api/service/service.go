package service

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/varunguleriaCodes/DeWebStatus/ingest"
	"github.com/varunguleriaCodes/DeWebStatus/ledger"
	"github.com/varunguleriaCodes/DeWebStatus/settlement"
)

// Service defines an instance of service that handles validator and
// dashboard requests.
type Service struct {
	store    *ledger.Store
	ingest   *ingest.Service
	engine   *settlement.Engine
	decimals int32
}

// New creates a new service instance. Amounts are rendered with decimals
// fractional digits.
func New(
	store *ledger.Store,
	ingest *ingest.Service,
	engine *settlement.Engine,
	decimals int32,
) *Service {
	return &Service{
		store:    store,
		ingest:   ingest,
		engine:   engine,
		decimals: decimals,
	}
}

type pingResp struct {
	Pong string `json:"pong"`
}

// Ping handles the /ping request.
func (s *Service) Ping(_ *gin.Context) (*pingResp, error) {
	return &pingResp{Pong: "pong"}, nil
}

func idParam(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}

	return id, nil
}
