package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/mall-event-back/internal/dedup"
	"github.com/kyiku/mall-event-back/internal/response"
)

// UserHandler exposes per-user action records.
type UserHandler struct {
	store dedup.Store
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store dedup.Store) *UserHandler {
	return &UserHandler{
		store: store,
	}
}

// Actions returns what the user has already voted for, liked and shared.
func (h *UserHandler) Actions(c echo.Context) error {
	raw := c.Param("userId")
	if raw == "" {
		return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, "ユーザーIDが必要です")
	}
	userID, _, err := ResolveUserID(raw, "")
	if err != nil {
		return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, err.Error())
	}

	rec, err := h.store.Get(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Errorf("dedup get %s: %v", userID, err)
		return response.FromError(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"actions": rec,
	})
}

// IssuePseudoID creates an identifier for visitors without a phone number.
func (h *UserHandler) IssuePseudoID(c echo.Context) error {
	return response.SuccessWithStatus(c, http.StatusCreated, map[string]interface{}{
		"user_id": dedup.NewPseudoUserID(),
	})
}
