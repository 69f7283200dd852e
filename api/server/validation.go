package server

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/photon-storage/go-common/log"
)

// payoutAddressReg matches base58 encoded 32 byte addresses.
var payoutAddressReg = regexp.MustCompile("^[1-9A-HJ-NP-Za-km-z]{32,44}$")

var registerOnce sync.Once

func registerValidations() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Fatal("unexpected gin validator engine")
		}

		if err := v.RegisterValidation("payout_address", validPayoutAddress); err != nil {
			log.Fatal("register payout address validation failed", "error", err)
		}
	})
}

func validPayoutAddress(fl validator.FieldLevel) bool {
	return payoutAddressReg.MatchString(fl.Field().String())
}
