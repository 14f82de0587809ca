// ABOUTME: Error taxonomy of the hived validation pipeline
// ABOUTME: Protocol violations versus scheduler connectivity failures

package hived

import (
	"errors"
	"fmt"
)

// Error codes surfaced to callers
const (
	CodeInvalidProtocol  = "InvalidProtocolError"
	CodeCannotReachHiveD = "CannotReachHiveDScheduler"
)

// Error aborts the pipeline. Code tells callers how to report it.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidProtocol reports a semantic violation in the submitted job
func InvalidProtocol(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInvalidProtocol, Message: "Hived error: " + fmt.Sprintf(format, args...)}
}

// CannotReachScheduler reports a failed topology fetch
func CannotReachScheduler(virtualCluster string, err error) *Error {
	return &Error{
		Code:    CodeCannotReachHiveD,
		Message: fmt.Sprintf("failed to fetch cell status of virtual cluster %s", virtualCluster),
		Err:     err,
	}
}

// ErrorCode returns the pipeline error code of err, or "" for foreign errors
func ErrorCode(err error) string {
	var he *Error
	if errors.As(err, &he) {
		return he.Code
	}
	return ""
}
