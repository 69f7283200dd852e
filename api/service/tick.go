package service

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/varunguleriaCodes/DeWebStatus/database/orm"
	"github.com/varunguleriaCodes/DeWebStatus/ingest"
)

type tickReq struct {
	WebsiteID   uint64    `json:"website_id" binding:"required"`
	ValidatorID uint64    `json:"validator_id" binding:"required"`
	Status      string    `json:"status" binding:"required"`
	LatencyMS   uint64    `json:"latency_ms"`
	ObservedAt  time.Time `json:"observed_at"`
}

type tickResp struct {
	TickID uint64 `json:"tick_id"`
}

func (r *tickResp) StatusCode() int {
	return http.StatusCreated
}

// RecordTick handles the /ticks request.
func (s *Service) RecordTick(c *gin.Context, req *tickReq) (*tickResp, error) {
	id, err := s.ingest.Record(c.Request.Context(), ingest.Report{
		WebsiteID:   req.WebsiteID,
		ValidatorID: req.ValidatorID,
		Status:      orm.TickStatus(req.Status),
		LatencyMS:   req.LatencyMS,
		ObservedAt:  req.ObservedAt,
	})
	if err != nil {
		return nil, err
	}

	return &tickResp{TickID: id}, nil
}
