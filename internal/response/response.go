// Package response provides helpers for consistent API responses.
package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/mall-event-back/internal/campaign"
	"github.com/kyiku/mall-event-back/internal/dedup"
)

// Error codes returned alongside error messages.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeAlreadyActed   = "ALREADY_ACTED"
	CodeUpstream       = "UPSTREAM_ERROR"
	CodeUnavailable    = "UNAVAILABLE"
	CodeInternal       = "INTERNAL_ERROR"
)

// Success sends a successful JSON response with the given data.
// The response will always include "error": false.
func Success(c echo.Context, data map[string]interface{}) error {
	return SuccessWithStatus(c, http.StatusOK, data)
}

// SuccessWithStatus is Success with an explicit status code.
func SuccessWithStatus(c echo.Context, statusCode int, data map[string]interface{}) error {
	resp := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		resp[k] = v
	}
	resp["error"] = false

	return c.JSON(statusCode, resp)
}

// Error sends an error JSON response with the given status code and message.
func Error(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, map[string]interface{}{
		"error":   true,
		"message": message,
	})
}

// ErrorWithCode sends an error response with a specific error code.
// This is useful for clients that need to handle specific error types.
func ErrorWithCode(c echo.Context, statusCode int, code string, message string) error {
	return c.JSON(statusCode, map[string]interface{}{
		"error":   true,
		"code":    code,
		"message": message,
	})
}

// FromError maps domain errors to status codes.
// Unknown errors become 500 without leaking details.
func FromError(c echo.Context, err error) error {
	var apiErr *campaign.APIError

	switch {
	case errors.Is(err, dedup.ErrAlreadyActed), errors.Is(err, campaign.ErrDuplicate):
		return ErrorWithCode(c, http.StatusConflict, CodeAlreadyActed, "すでに参加済みです")
	case errors.Is(err, dedup.ErrUnknownAction), errors.Is(err, dedup.ErrEmptyUserID):
		return ErrorWithCode(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	case errors.Is(err, campaign.ErrNotFound):
		return ErrorWithCode(c, http.StatusNotFound, CodeNotFound, "見つかりません")
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorWithCode(c, http.StatusGatewayTimeout, CodeUpstream, "キャンペーンAPIがタイムアウトしました")
	case errors.As(err, &apiErr):
		return ErrorWithCode(c, http.StatusBadGateway, CodeUpstream, "キャンペーンAPIでエラーが発生しました")
	default:
		return ErrorWithCode(c, http.StatusInternalServerError, CodeInternal, "サーバーエラーが発生しました")
	}
}
