package service

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/varunguleriaCodes/DeWebStatus/ingest"
	"github.com/varunguleriaCodes/DeWebStatus/ledger"
	"github.com/varunguleriaCodes/DeWebStatus/settlement"
)

var (
	errSystem         = errors.New("system error")
	errInvalidRequest = errors.New("invalid request")
	errInvalidID      = errors.New("invalid id")
)

// ErrInvalidRequest wraps request binding failures.
func ErrInvalidRequest(err error) error {
	return errors.Wrapf(errInvalidRequest, "%v", err)
}

type errorCode struct {
	code   int
	status int
}

// ErrorCode maps known errors to business codes and HTTP status.
var ErrorCode = map[error]errorCode{
	errSystem:                             {code: 1000, status: http.StatusInternalServerError},
	errInvalidRequest:                     {code: 1001, status: http.StatusBadRequest},
	errInvalidID:                          {code: 1002, status: http.StatusBadRequest},
	ingest.ErrInvalidTick:                 {code: 1003, status: http.StatusBadRequest},
	ledger.ErrNotFound:                    {code: 1004, status: http.StatusNotFound},
	ledger.ErrConflict:                    {code: 1005, status: http.StatusConflict},
	ledger.ErrInvalidTransition:           {code: 1006, status: http.StatusConflict},
	settlement.ErrRailRejected:            {code: 1007, status: http.StatusBadGateway},
	settlement.ErrRailTransient:           {code: 1008, status: http.StatusBadGateway},
	settlement.ErrConfirmationNotRecorded: {code: 1009, status: http.StatusBadGateway},
	settlement.ErrInProgress:              {code: 1010, status: http.StatusAccepted},
	settlement.ErrClosed:                  {code: 1011, status: http.StatusServiceUnavailable},
}

// Status returns the business code and HTTP status of err. Unknown errors
// are system errors.
func Status(err error) (int, int) {
	for target, ec := range ErrorCode {
		if errors.Is(err, target) {
			return ec.code, ec.status
		}
	}

	ec := ErrorCode[errSystem]
	return ec.code, ec.status
}

// Message returns the client facing message of err. System errors are not
// exposed.
func Message(err error) string {
	if code, _ := Status(err); code == ErrorCode[errSystem].code {
		return errSystem.Error()
	}

	return err.Error()
}

type dataError struct {
	error
	data interface{}
}

func (e *dataError) Unwrap() error {
	return e.error
}

// WithData attaches a response payload to err.
func WithData(err error, data interface{}) error {
	return &dataError{error: err, data: data}
}

// Data returns the payload attached by WithData, or nil.
func Data(err error) interface{} {
	var de *dataError
	if errors.As(err, &de) {
		return de.data
	}

	return nil
}
