package service

import (
	"time"

	"github.com/docker/go-units"
	"github.com/gin-gonic/gin"

	"github.com/varunguleriaCodes/DeWebStatus/api/pagination"
)

type websiteResp struct {
	ID  uint64 `json:"id"`
	URL string `json:"url"`
}

// Websites handles the /websites request. Validators poll it for the
// websites to probe.
func (s *Service) Websites(
	c *gin.Context,
	page *pagination.Query,
) (*pagination.Result, error) {
	ws, count, err := s.store.EnabledWebsites(c.Request.Context(), page.Start, page.Limit)
	if err != nil {
		return nil, err
	}

	websites := make([]*websiteResp, len(ws))
	for i, w := range ws {
		websites[i] = &websiteResp{
			ID:  w.ID,
			URL: w.URL,
		}
	}

	return &pagination.Result{
		Data:  websites,
		Total: count,
	}, nil
}

type websiteStatusResp struct {
	WebsiteID   uint64     `json:"website_id"`
	Status      string     `json:"status"`
	LatencyMS   uint64     `json:"latency_ms"`
	LastSeen    *time.Time `json:"last_seen,omitempty"`
	LastSeenAgo string     `json:"last_seen_ago,omitempty"`
}

// WebsiteStatus handles the /websites/:id/status request.
func (s *Service) WebsiteStatus(c *gin.Context) (*websiteStatusResp, error) {
	id, err := idParam(c, "id")
	if err != nil {
		return nil, err
	}

	st, err := s.store.CurrentStatus(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}

	resp := &websiteStatusResp{
		WebsiteID: st.WebsiteID,
		Status:    st.Status,
		LatencyMS: st.LatencyMS,
	}
	if !st.LastSeen.IsZero() {
		resp.LastSeen = &st.LastSeen
		resp.LastSeenAgo = units.HumanDuration(time.Since(st.LastSeen)) + " ago"
	}

	return resp, nil
}

type tickItem struct {
	ID          uint64    `json:"id"`
	ValidatorID uint64    `json:"validator_id"`
	Status      string    `json:"status"`
	LatencyMS   uint64    `json:"latency_ms"`
	ObservedAt  time.Time `json:"observed_at"`
}

// WebsiteTicks handles the /websites/:id/ticks request.
func (s *Service) WebsiteTicks(
	c *gin.Context,
	page *pagination.Query,
) (*pagination.Result, error) {
	id, err := idParam(c, "id")
	if err != nil {
		return nil, err
	}

	ts, count, err := s.store.Ticks(c.Request.Context(), id, page.Start, page.Limit)
	if err != nil {
		return nil, err
	}

	ticks := make([]*tickItem, len(ts))
	for i, t := range ts {
		ticks[i] = &tickItem{
			ID:          t.ID,
			ValidatorID: t.ValidatorID,
			Status:      string(t.Status),
			LatencyMS:   t.LatencyMS,
			ObservedAt:  t.ObservedAt,
		}
	}

	return &pagination.Result{
		Data:  ticks,
		Total: count,
	}, nil
}
