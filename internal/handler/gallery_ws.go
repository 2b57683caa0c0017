package handler

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/mall-event-back/internal/campaign"
	"github.com/kyiku/mall-event-back/internal/hub"
	"github.com/kyiku/mall-event-back/internal/layout"
	"github.com/kyiku/mall-event-back/internal/websocket"
)

// GalleryHandler serves the live gallery socket.
type GalleryHandler struct {
	upgrader *websocket.Upgrader
	hub      *hub.Hub
	api      CampaignAPI
	engine   *layout.Engine
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(upgrader *websocket.Upgrader, h *hub.Hub, api CampaignAPI, engine *layout.Engine) *GalleryHandler {
	return &GalleryHandler{
		upgrader: upgrader,
		hub:      h,
		api:      api,
		engine:   engine,
	}
}

// Connect upgrades the request and reads client messages until the socket closes.
func (h *GalleryHandler) Connect(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request())
	if err != nil {
		// the upgrader has already written the HTTP error
		c.Logger().Warnf("websocket upgrade: %v", err)
		return nil
	}

	client := h.hub.Register(c.QueryParam("campaign"), conn)
	defer func() {
		h.hub.Unregister(client.ID)
		_ = conn.Close()
	}()

	ctx := c.Request().Context()
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedClose(err) {
				c.Logger().Warnf("gallery client %s: %v", client.ID, err)
			}
			return nil
		}
		h.HandleMessage(ctx, client, data)
	}
}

// HandleMessage processes one client frame and writes the reply.
func (h *GalleryHandler) HandleMessage(ctx context.Context, client *hub.Client, data []byte) {
	if websocket.NewPingHandler(client.Conn).Handle(data) {
		return
	}

	msg, err := websocket.ParseMessage(data)
	if err != nil {
		_ = client.Send(websocket.ErrorMessage(err.Error()))
		return
	}
	if err := msg.Validate(); err != nil {
		_ = client.Send(websocket.ErrorMessage(err.Error()))
		return
	}

	switch msg.Type {
	case websocket.TypeSubscribe:
		h.hub.SetCampaign(client.ID, msg.CampaignID)
		_ = client.Send(map[string]interface{}{
			"type":        websocket.TypeSubscribed,
			"campaign_id": msg.CampaignID,
		})
	case websocket.TypeResize:
		h.sendLayout(ctx, client, msg)
	default:
		_ = client.Send(websocket.ErrorMessage("unknown message type: " + msg.Type))
	}
}

func (h *GalleryHandler) sendLayout(ctx context.Context, client *hub.Client, msg *websocket.Message) {
	if client.CampaignID == "" {
		_ = client.Send(websocket.ErrorMessage("no campaign selected"))
		return
	}

	dims, err := checkDimensions(msg.Width, msg.Height)
	if err != nil {
		_ = client.Send(websocket.ErrorMessage(err.Error()))
		return
	}

	c, err := h.api.GetCampaign(ctx, client.CampaignID)
	if err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			_ = client.Send(websocket.ErrorMessage("campaign not found"))
		} else {
			_ = client.Send(websocket.ErrorMessage("failed to load campaign"))
		}
		return
	}

	l := h.engine.Recompute(layout.SubmissionImages(c.Submissions), dims, layout.ParseMode(msg.Mode))
	_ = client.Send(map[string]interface{}{
		"type":        websocket.TypeLayout,
		"campaign_id": c.ID,
		"layout":      l,
	})
}
