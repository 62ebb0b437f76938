// Package response shapes every JSON reply of the service. Success wraps the
// payload in the standard envelope; Error carries one of the errcode space
// codes at body level with HTTP 200, which is also what the document editor
// service expects from endpoints it calls.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi/proxyutil"
)

type codeErr struct {
	code uint32
	msg  string
}

func (e codeErr) Error() string {
	return e.msg
}

func (e codeErr) Code() uint32 {
	return e.code
}

func Success(c *gin.Context, data interface{}) {
	proxyutil.SuccessJson(c, data)
}

func Error(c *gin.Context, code int, message string) {
	proxyutil.FailJson(c, http.StatusOK, codeErr{code: uint32(code), msg: message})
}
