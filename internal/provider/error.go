package provider

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"

	"moff.io/dapp-demo/internal/wallet"
)

// Error is a provider failure carrying a JSON-RPC error code.
type Error struct {
	Code    int
	Message string
}

var _ rpc.Error = (*Error)(nil)

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) ErrorCode() int {
	return e.Code
}

// UserRejected is the error a provider returns when the user declines.
func UserRejected(message string) *Error {
	if message == "" {
		message = "User rejected the request."
	}
	return &Error{Code: wallet.CodeUserRejected, Message: message}
}

// Internal wraps an arbitrary failure as a JSON-RPC internal error.
func Internal(format string, args ...interface{}) *Error {
	return &Error{Code: -32603, Message: fmt.Sprintf(format, args...)}
}

// Unsupported is returned for methods an adapter does not implement.
func Unsupported(method string) *Error {
	return &Error{Code: -32601, Message: fmt.Sprintf("the method %s does not exist/is not available", method)}
}
