package server

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/photon-storage/go-common/log"

	"github.com/varunguleriaCodes/DeWebStatus/api/pagination"
	"github.com/varunguleriaCodes/DeWebStatus/api/service"
)

// handleFunc is a service method with one of the shapes accepted by
// validateFunc.
type handleFunc interface{}

// resp is the envelope of every api response.
type resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// statusCoder lets a response override the 200 status.
type statusCoder interface {
	StatusCode() int
}

var (
	ginContextType = reflect.TypeOf(&gin.Context{})
	queryType      = reflect.TypeOf(&pagination.Query{})
	resultType     = reflect.TypeOf(&pagination.Result{})
	errorType      = reflect.TypeOf((*error)(nil)).Elem()
)

// validateFunc checks that fn can be served by handle. Accepted shapes:
//
//	func(*gin.Context) ([T,] error)
//	func(*gin.Context, *Req) ([T,] error)
//	func(*gin.Context, *Req, *pagination.Query) (*pagination.Result, error)
func validateFunc(fn handleFunc) error {
	ft := reflect.TypeOf(fn)
	if ft == nil || ft.Kind() != reflect.Func {
		return errors.New("the interface is not function type")
	}

	if ft.NumIn() == 0 || ft.NumIn() > 3 {
		return errors.New("the func must have one to three input parameters")
	}

	if ft.In(0) != ginContextType {
		return errors.New("the first input parameter of the func must be *gin.Context")
	}

	if ft.NumIn() > 1 && ft.In(1).Kind() != reflect.Ptr {
		return errors.New("the second input parameter of the func must be a pointer")
	}

	if ft.NumIn() > 2 && ft.In(2) != queryType {
		return errors.New("the third input parameter of the func must be *pagination.Query")
	}

	if ft.NumOut() == 0 || ft.NumOut() > 2 {
		return errors.New("the func must return one or two values")
	}

	if ft.Out(ft.NumOut()-1) != errorType {
		return errors.New("the last return value of the func must be an error")
	}

	if ft.NumIn() == 3 && (ft.NumOut() != 2 || ft.Out(0) != resultType) {
		return errors.New("the first return value of the func must be *pagination.Result")
	}

	return nil
}

// handle adapts fn to a gin handler. Request parameters are bound and
// validated before fn is called; returned errors are rendered by
// handleError.
func (s *Server) handle(fn handleFunc) gin.HandlerFunc {
	if err := validateFunc(fn); err != nil {
		log.Fatal("invalid handler", "error", err)
	}

	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	return func(c *gin.Context) {
		args := []reflect.Value{reflect.ValueOf(c)}
		for i := 1; i < ft.NumIn(); i++ {
			arg, err := bind(c, ft.In(i))
			if err != nil {
				_ = c.Error(service.ErrInvalidRequest(err))
				return
			}
			args = append(args, arg)
		}

		outs := fv.Call(args)
		if err, _ := outs[len(outs)-1].Interface().(error); err != nil {
			_ = c.Error(err)
			return
		}

		var data interface{}
		if len(outs) == 2 && !(outs[0].Kind() == reflect.Ptr && outs[0].IsNil()) {
			data = outs[0].Interface()
		}

		status := http.StatusOK
		if sc, ok := data.(statusCoder); ok {
			status = sc.StatusCode()
		}

		c.JSON(status, &resp{
			Code: 0,
			Msg:  "success",
			Data: data,
		})
	}
}

func bind(c *gin.Context, t reflect.Type) (reflect.Value, error) {
	v := reflect.New(t.Elem())
	if t == queryType {
		page := v.Interface().(*pagination.Query)
		if err := c.ShouldBindQuery(page); err != nil {
			return v, err
		}
		page.Normalize()
		return v, nil
	}

	if err := c.ShouldBind(v.Interface()); err != nil {
		return v, err
	}

	return v, nil
}

// handleError renders the last error of the request.
func handleError() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		code, status := service.Status(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", status,
				"error", err,
			)
		}

		c.JSON(status, &resp{
			Code: code,
			Msg:  service.Message(err),
			Data: service.Data(err),
		})
	}
}
