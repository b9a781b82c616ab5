package serverutils

import (
	"errors"
	"fmt"
)

type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

// ResponseError carries the HTTP status the error handler should answer with
type ResponseError struct {
	Code    int
	Message string
}

func (e *ResponseError) Error() string {
	return e.Message
}

func ErrorResponse(code int, message string) error {
	return &ResponseError{Code: code, Message: message}
}

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// NotFound wraps ErrNotFound with the resource name, e.g. "content not found"
func NotFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

func BadRequest(message string) error {
	return fmt.Errorf("%s: %w", message, ErrBadRequest)
}
