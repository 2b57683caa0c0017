package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/mall-event-back/internal/campaign"
	"github.com/kyiku/mall-event-back/internal/collage"
	"github.com/kyiku/mall-event-back/internal/layout"
	"github.com/kyiku/mall-event-back/internal/response"
	"github.com/kyiku/mall-event-back/internal/storage"
)

// Composer renders a campaign collage.
type Composer interface {
	Compose(ctx context.Context, campaignID string, dims layout.Dimensions) (*collage.Result, error)
}

// CollageHandler renders collages from gallery images.
type CollageHandler struct {
	composer Composer
}

// NewCollageHandler creates a new CollageHandler.
func NewCollageHandler(composer Composer) *CollageHandler {
	return &CollageHandler{
		composer: composer,
	}
}

// CollageRequest is the body of a collage request. Zero sizes use the defaults.
type CollageRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Create renders and uploads a collage for the campaign.
func (h *CollageHandler) Create(c echo.Context) error {
	id := c.Param("id")
	if id == "" || strings.ContainsAny(id, `/\`) {
		return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, "キャンペーンIDが不正です")
	}

	var req CollageRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, "リクエストの解析に失敗しました")
		}
	}

	dims, err := collage.NormalizeDimensions(req.Width, req.Height)
	if err != nil {
		return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, "画像サイズが不正です")
	}

	result, err := h.composer.Compose(c.Request().Context(), id, dims)
	if err != nil {
		if errors.Is(err, storage.ErrNoGalleryImages) {
			return response.ErrorWithCode(c, http.StatusNotFound, response.CodeNotFound, "ギャラリー画像がありません")
		}
		if errors.Is(err, campaign.ErrNotFound) {
			return response.ErrorWithCode(c, http.StatusNotFound, response.CodeNotFound, "キャンペーンが見つかりません")
		}
		c.Logger().Errorf("compose collage %s: %v", id, err)
		return response.ErrorWithCode(c, http.StatusBadGateway, response.CodeUpstream, "コラージュの作成に失敗しました")
	}

	if len(result.Skipped) > 0 {
		c.Logger().Warnf("collage %s skipped %d images", id, len(result.Skipped))
	}

	return response.SuccessWithStatus(c, http.StatusCreated, map[string]interface{}{
		"image_url": result.ImageURL,
		"layout":    result.Layout,
		"skipped":   result.Skipped,
	})
}
