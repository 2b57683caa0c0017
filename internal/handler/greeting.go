package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/mall-event-back/internal/greeting"
	"github.com/kyiku/mall-event-back/internal/response"
)

// GreetingSuggester writes greeting card messages.
type GreetingSuggester interface {
	Suggest(req greeting.Request) (string, error)
}

// GreetingHandler suggests messages for greeting cards.
type GreetingHandler struct {
	suggester GreetingSuggester
}

// NewGreetingHandler creates a new GreetingHandler.
func NewGreetingHandler(suggester GreetingSuggester) *GreetingHandler {
	return &GreetingHandler{
		suggester: suggester,
	}
}

// Suggest returns a message for the requested occasion.
func (h *GreetingHandler) Suggest(c echo.Context) error {
	var req greeting.Request
	if err := c.Bind(&req); err != nil {
		return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, "リクエストの解析に失敗しました")
	}

	message, err := h.suggester.Suggest(req)
	if err != nil {
		if errors.Is(err, greeting.ErrInvalidOccasion) {
			return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, "occasionが不正です")
		}
		c.Logger().Errorf("greeting suggest: %v", err)
		return response.ErrorWithCode(c, http.StatusBadGateway, response.CodeUpstream, "メッセージの生成に失敗しました")
	}

	return response.Success(c, map[string]interface{}{
		"occasion": req.Occasion,
		"message":  message,
	})
}
