package service

import (
	"github.com/gin-gonic/gin"

	"github.com/varunguleriaCodes/DeWebStatus/api/util"
	"github.com/varunguleriaCodes/DeWebStatus/database/orm"
	"github.com/varunguleriaCodes/DeWebStatus/ledger"
)

type validatorResp struct {
	ID            uint64 `json:"id"`
	PublicKey     string `json:"public_key"`
	PayoutAddress string `json:"payout_address"`
	Location      string `json:"location,omitempty"`
	PendingAmount uint64 `json:"pending_amount"`
	PendingPayout string `json:"pending_payout"`
}

func (s *Service) validatorResp(v *orm.Validator) *validatorResp {
	return &validatorResp{
		ID:            v.ID,
		PublicKey:     v.PublicKey,
		PayoutAddress: v.PayoutAddress,
		Location:      v.Location,
		PendingAmount: v.PendingAmount,
		PendingPayout: util.DisplayAmount(v.PendingAmount, s.decimals),
	}
}

// Validator handles the /validators/:id request.
func (s *Service) Validator(c *gin.Context) (*validatorResp, error) {
	id, err := idParam(c, "id")
	if err != nil {
		return nil, err
	}

	v, err := s.store.Validator(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}

	return s.validatorResp(v), nil
}

type signupReq struct {
	PublicKey     string `json:"public_key" binding:"required,max=64"`
	PayoutAddress string `json:"payout_address" binding:"required,payout_address"`
	Location      string `json:"location" binding:"max=128"`
}

// RegisterValidator handles the /validators signup request.
func (s *Service) RegisterValidator(c *gin.Context, req *signupReq) (*validatorResp, error) {
	v, err := s.store.RegisterValidator(c.Request.Context(), ledger.Registration{
		PublicKey:     req.PublicKey,
		PayoutAddress: req.PayoutAddress,
		IP:            c.ClientIP(),
		Location:      req.Location,
	})
	if err != nil {
		return nil, err
	}

	return s.validatorResp(v), nil
}
