package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/mall-event-back/internal/campaign"
	"github.com/kyiku/mall-event-back/internal/dedup"
	"github.com/kyiku/mall-event-back/internal/model"
	"github.com/kyiku/mall-event-back/internal/response"
	"github.com/kyiku/mall-event-back/internal/util"
)

// CountsBroadcaster pushes updated counts to live viewers.
type CountsBroadcaster interface {
	BroadcastCounts(submissionID string, counts model.Counts)
}

// ActionHandler handles votes, likes and shares.
type ActionHandler struct {
	api         CampaignAPI
	store       dedup.Store
	broadcaster CountsBroadcaster
}

// NewActionHandler creates a new ActionHandler.
func NewActionHandler(api CampaignAPI, store dedup.Store) *ActionHandler {
	return &ActionHandler{
		api:   api,
		store: store,
	}
}

// SetBroadcaster sets the broadcaster notified after successful actions.
func (h *ActionHandler) SetBroadcaster(b CountsBroadcaster) {
	h.broadcaster = b
}

// ActionRequest is the body of an action request. Either field may be empty.
type ActionRequest struct {
	UserID string `json:"user_id"`
	Phone  string `json:"phone"`
}

// Vote casts a vote.
func (h *ActionHandler) Vote(c echo.Context) error {
	return h.handle(c, model.ActionVote)
}

// Like likes a submission.
func (h *ActionHandler) Like(c echo.Context) error {
	return h.handle(c, model.ActionLike)
}

// Share records a share.
func (h *ActionHandler) Share(c echo.Context) error {
	return h.handle(c, model.ActionShare)
}

func (h *ActionHandler) handle(c echo.Context, action model.Action) error {
	submissionID := c.Param("id")
	if submissionID == "" {
		return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, "作品IDが必要です")
	}

	var req ActionRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, "リクエストの解析に失敗しました")
		}
	}
	if req.UserID == "" {
		req.UserID = c.Request().Header.Get("X-User-ID")
	}

	userID, issued, err := ResolveUserID(req.UserID, req.Phone)
	if err != nil {
		return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, err.Error())
	}

	ctx := c.Request().Context()

	if !issued {
		rec, err := h.store.Get(ctx, userID)
		if err != nil {
			c.Logger().Errorf("dedup get %s: %v", userID, err)
			return response.FromError(c, err)
		}
		if rec.HasActed(action, submissionID) {
			return response.FromError(c, dedup.ErrAlreadyActed)
		}
	}

	counts, err := h.api.Act(ctx, action, submissionID, userID)
	if err != nil {
		if errors.Is(err, campaign.ErrDuplicate) {
			// a 409 from the API is recorded locally too
			if _, recErr := h.store.Record(ctx, userID, action, submissionID); recErr != nil && !errors.Is(recErr, dedup.ErrAlreadyActed) {
				c.Logger().Warnf("dedup record %s: %v", userID, recErr)
			}
		} else {
			c.Logger().Errorf("%s %s by %s: %v", action, submissionID, userID, err)
		}
		return response.FromError(c, err)
	}

	rec, err := h.store.Record(ctx, userID, action, submissionID)
	if err != nil && !errors.Is(err, dedup.ErrAlreadyActed) {
		// counts are already updated upstream
		c.Logger().Warnf("dedup record %s: %v", userID, err)
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastCounts(submissionID, *counts)
	}

	data := map[string]interface{}{
		"user_id":       userID,
		"submission_id": submissionID,
		"action":        action,
		"counts":        counts,
	}
	if rec != nil {
		data["actions"] = rec
	}
	return response.Success(c, data)
}

// ResolveUserID picks the dedup identity for a request. A phone number wins
// over a user ID and is normalized; a missing identity gets a new pseudo ID.
// issued reports whether the ID was generated.
func ResolveUserID(userID, phone string) (id string, issued bool, err error) {
	if phone = strings.TrimSpace(phone); phone != "" {
		if !util.IsPhoneNumber(phone) {
			return "", false, errors.New("電話番号が不正です")
		}
		return util.NormalizePhone(phone), false, nil
	}

	userID = strings.TrimSpace(userID)
	switch {
	case userID == "":
		return dedup.NewPseudoUserID(), true, nil
	case dedup.IsPseudoUserID(userID):
		return userID, false, nil
	case util.IsPhoneNumber(userID):
		return util.NormalizePhone(userID), false, nil
	default:
		return "", false, errors.New("ユーザーIDが不正です")
	}
}
