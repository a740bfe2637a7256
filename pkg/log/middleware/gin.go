package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"moff.io/dapp-demo/pkg/errors"
	"moff.io/dapp-demo/pkg/log"
	"moff.io/dapp-demo/pkg/log/meta"
)

// responseBodyWriter keeps a copy of the response for the access log.
type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// maxLoggedBody bounds how much of a response is kept for the log line,
// streaming routes would otherwise grow the buffer without limit.
const maxLoggedBody = 4096

// Write writes response message into response body and the connection.
func (r responseBodyWriter) Write(b []byte) (int, error) {
	if r.body.Len() < maxLoggedBody {
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

type httpInfo struct {
	RequestID     string            `json:"request_id,omitempty"`
	Headers       map[string]string `json:"headers"`
	Method        string            `json:"method"`
	RequestAPI    string            `json:"request_api,omitempty"`
	RemoteAddr    string            `json:"remote_addr,omitempty"`
	Response      *response         `json:"response,omitempty"`
	ExecutionTime string            `json:"execution_time,omitempty"`
}

func newHTTPInfo(ctx *gin.Context) *httpInfo {
	return &httpInfo{
		RequestID:  meta.RequestID(ctx.Request.Context()),
		Headers:    requestHeaderFilter(ctx.Request.Header),
		Method:     ctx.Request.Method,
		RequestAPI: ctx.Request.RequestURI,
		RemoteAddr: ctx.ClientIP(),
	}
}

// RecoveredHTTPLog logs every request with its response and recovers
// handler panics, which are reported.
func RecoveredHTTPLog() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rctx := meta.Begin(ctx.Request.Context())
		requestID := ctx.Request.Header.Get(meta.RequestIDKey)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		meta.WithValue(rctx, meta.RequestIDKey, requestID)
		ctx.Request = ctx.Request.WithContext(rctx)
		ctx.Header(meta.RequestIDKey, requestID)

		w := &responseBodyWriter{body: &bytes.Buffer{}, ResponseWriter: ctx.Writer}
		ctx.Writer = w

		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				log.Error(errors.ErrorfAndReport("%v", r))
			}
			logHTTP(ctx, w, start)
		}()
		ctx.Next()
	}
}

const defaultRequestTimeout = time.Second * 60

// TimeoutHTTP bounds the request context, 60s unless timeout is given.
func TimeoutHTTP(timeout ...time.Duration) gin.HandlerFunc {
	d := defaultRequestTimeout
	if len(timeout) != 0 && timeout[0] > 0 {
		d = timeout[0]
	}
	return func(ctx *gin.Context) {
		timeoutCtx, cancelFunc := context.WithTimeout(ctx.Request.Context(), d)
		defer cancelFunc()
		ctx.Request = ctx.Request.WithContext(timeoutCtx)
		ctx.Next()
	}
}

func logHTTP(ctx *gin.Context, w *responseBodyWriter, start time.Time) {
	// nothing written means the handler panicked
	if !ctx.Writer.Written() {
		ctx.JSON(http.StatusInternalServerError, map[string]interface{}{
			"code": 5000,
			"msg":  "Server internal error",
		})
	}

	s := w.Status()
	info := newHTTPInfo(ctx)
	info.Response = decodeHandlerResponse(w.body.Bytes(), s)
	info.ExecutionTime = fmt.Sprintf("%vms", time.Since(start).Nanoseconds()/1e6)
	line, _ := json.Marshal(info)
	switch {
	case s < http.StatusBadRequest:
		log.Info(string(line))
	case s >= http.StatusInternalServerError:
		log.Error(string(line))
	default:
		log.Warn(string(line))
	}
}

type response struct {
	//ProtocolCode is the response protocol status code
	ProtocolCode int `json:"protocol_code"`
	//Code is the response business code.
	Code interface{} `json:"code,omitempty"`
	//Message is the response message.
	Message interface{} `json:"msg,omitempty"`
}

func decodeHandlerResponse(respBody []byte, httpCode int) *response {
	resp := response{ProtocolCode: httpCode}
	_ = json.Unmarshal(respBody, &resp)
	return &resp
}

var excludedHeaders = map[string]bool{
	"token":         true,
	"access-token":  true,
	"authorization": true,
	"cookie":        true,
}

func requestHeaderFilter(headers map[string][]string) map[string]string {
	filtered := make(map[string]string)
	for k, v := range headers {
		k = strings.ToLower(k)
		if excludedHeaders[k] {
			continue
		}
		filtered[k] = strings.Join(v, ";")
	}
	return filtered
}
