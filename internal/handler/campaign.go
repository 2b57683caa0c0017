package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/mall-event-back/internal/layout"
	"github.com/kyiku/mall-event-back/internal/model"
	"github.com/kyiku/mall-event-back/internal/response"
)

// Viewport defaults and limits for layout requests.
const (
	defaultViewportWidth  = 1200
	defaultViewportHeight = 800
	maxViewportSide       = 8192
)

// CampaignAPI is the subset of the campaign client used by handlers.
type CampaignAPI interface {
	GetCampaign(ctx context.Context, id string) (*model.Campaign, error)
	Act(ctx context.Context, action model.Action, submissionID, userID string) (*model.Counts, error)
}

// CampaignHandler serves campaign data and gallery layouts.
type CampaignHandler struct {
	api    CampaignAPI
	engine *layout.Engine
}

// NewCampaignHandler creates a new CampaignHandler.
func NewCampaignHandler(api CampaignAPI, engine *layout.Engine) *CampaignHandler {
	return &CampaignHandler{
		api:    api,
		engine: engine,
	}
}

// Get returns a campaign with its submissions and whether it accepts reactions now.
func (h *CampaignHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, "キャンペーンIDが必要です")
	}

	campaign, err := h.api.GetCampaign(c.Request().Context(), id)
	if err != nil {
		c.Logger().Warnf("get campaign %s: %v", id, err)
		return response.FromError(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"campaign": campaign,
		"open":     campaign.IsOpen(time.Now()),
	})
}

// Layout computes a gallery layout for a campaign's submissions.
func (h *CampaignHandler) Layout(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, "キャンペーンIDが必要です")
	}

	dims, err := dimensionsFromQuery(c)
	if err != nil {
		return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, err.Error())
	}

	campaign, err := h.api.GetCampaign(c.Request().Context(), id)
	if err != nil {
		c.Logger().Warnf("get campaign %s: %v", id, err)
		return response.FromError(c, err)
	}

	l := h.engine.Recompute(layout.SubmissionImages(campaign.Submissions), dims, layout.ParseMode(c.QueryParam("mode")))

	return response.Success(c, map[string]interface{}{
		"campaign_id": campaign.ID,
		"layout":      l,
	})
}

type dimensionError string

func (e dimensionError) Error() string { return string(e) }

// dimensionsFromQuery reads width and height, defaulting to 1200x800.
func dimensionsFromQuery(c echo.Context) (layout.Dimensions, error) {
	w, err := intParam(c.QueryParam("width"), defaultViewportWidth)
	if err != nil {
		return layout.Dimensions{}, dimensionError("widthが不正です")
	}
	hgt, err := intParam(c.QueryParam("height"), defaultViewportHeight)
	if err != nil {
		return layout.Dimensions{}, dimensionError("heightが不正です")
	}
	return checkDimensions(w, hgt)
}

func checkDimensions(w, h int) (layout.Dimensions, error) {
	if w <= 0 || h <= 0 || w > maxViewportSide || h > maxViewportSide {
		return layout.Dimensions{}, dimensionError("画面サイズが範囲外です")
	}
	return layout.Dimensions{Width: float64(w), Height: float64(h)}, nil
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// LayoutHandler computes layouts for an explicit list of images.
type LayoutHandler struct {
	engine *layout.Engine
}

// NewLayoutHandler creates a new LayoutHandler.
func NewLayoutHandler(engine *layout.Engine) *LayoutHandler {
	return &LayoutHandler{
		engine: engine,
	}
}

// LayoutRequest is the body of POST /api/layout.
type LayoutRequest struct {
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Mode   string         `json:"mode"`
	Images []layout.Image `json:"images"`
}

// Compute returns a layout for the requested images and viewport.
func (h *LayoutHandler) Compute(c echo.Context) error {
	var req LayoutRequest
	if err := c.Bind(&req); err != nil {
		return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, "リクエストの解析に失敗しました")
	}

	dims, err := checkDimensions(req.Width, req.Height)
	if err != nil {
		return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, err.Error())
	}
	if len(req.Images) > layout.MaxImages {
		return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, "画像が多すぎます")
	}
	for i := range req.Images {
		if req.Images[i].ID == "" {
			req.Images[i].ID = strconv.Itoa(i)
		}
		req.Images[i].Size = layout.ParseSizeClass(string(req.Images[i].Size))
	}

	return response.Success(c, map[string]interface{}{
		"layout": h.engine.Recompute(req.Images, dims, layout.ParseMode(req.Mode)),
	})
}
