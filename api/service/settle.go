package service

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/varunguleriaCodes/DeWebStatus/api/pagination"
	"github.com/varunguleriaCodes/DeWebStatus/api/util"
	"github.com/varunguleriaCodes/DeWebStatus/database/orm"
	"github.com/varunguleriaCodes/DeWebStatus/settlement"
)

type settleResp struct {
	Outcome        string `json:"outcome"`
	Amount         uint64 `json:"amount"`
	AmountDisplay  string `json:"amount_display"`
	IntentID       uint64 `json:"intent_id,omitempty"`
	TransferID     string `json:"transfer_id,omitempty"`
	OutcomeUnknown bool   `json:"outcome_unknown,omitempty"`
}

// Settle handles the /validators/:id/settle request. Once the intent is
// written, failures carry the intent id so that the attempt can be
// followed through /intents/:id.
func (s *Service) Settle(c *gin.Context) (*settleResp, error) {
	id, err := idParam(c, "id")
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Settle(c.Request.Context(), id)
	if err != nil {
		if res == nil || res.IntentID == 0 {
			return nil, err
		}

		resp := s.settleResp(res)
		resp.OutcomeUnknown = settlement.OutcomeUnknown(err)
		return nil, WithData(err, resp)
	}

	return s.settleResp(res), nil
}

func (s *Service) settleResp(res *settlement.Result) *settleResp {
	return &settleResp{
		Outcome:       string(res.Outcome),
		Amount:        res.Amount,
		AmountDisplay: util.DisplayAmount(res.Amount, s.decimals),
		IntentID:      res.IntentID,
		TransferID:    res.TransferID,
	}
}

type intentResp struct {
	ID            uint64     `json:"id"`
	ValidatorID   uint64     `json:"validator_id"`
	Amount        uint64     `json:"amount"`
	AmountDisplay string     `json:"amount_display"`
	State         string     `json:"state"`
	TransferID    string     `json:"transfer_id,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (s *Service) intentResp(intent *orm.SettlementIntent) *intentResp {
	return &intentResp{
		ID:            intent.ID,
		ValidatorID:   intent.ValidatorID,
		Amount:        intent.Amount,
		AmountDisplay: util.DisplayAmount(intent.Amount, s.decimals),
		State:         string(intent.State),
		TransferID:    intent.ExternalTransferID.String,
		FailureReason: intent.FailureReason,
		CreatedAt:     intent.CreatedAt,
		SubmittedAt:   intent.SubmittedAt,
		UpdatedAt:     intent.UpdatedAt,
	}
}

// Intent handles the /intents/:id request.
func (s *Service) Intent(c *gin.Context) (*intentResp, error) {
	id, err := idParam(c, "id")
	if err != nil {
		return nil, err
	}

	intent, err := s.store.Intent(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}

	return s.intentResp(intent), nil
}

// ValidatorIntents handles the /validators/:id/intents request.
func (s *Service) ValidatorIntents(
	c *gin.Context,
	page *pagination.Query,
) (*pagination.Result, error) {
	id, err := idParam(c, "id")
	if err != nil {
		return nil, err
	}

	intents, count, err := s.store.IntentsByValidator(c.Request.Context(), id, page.Start, page.Limit)
	if err != nil {
		return nil, err
	}

	resp := make([]*intentResp, len(intents))
	for i, intent := range intents {
		resp[i] = s.intentResp(intent)
	}

	return &pagination.Result{
		Data:  resp,
		Total: count,
	}, nil
}
