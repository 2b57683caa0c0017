package collage

import (
	"context"
	"fmt"
	"image"

	"github.com/kyiku/mall-event-back/internal/layout"
	"github.com/kyiku/mall-event-back/internal/model"
	"github.com/kyiku/mall-event-back/internal/storage"
)

// ImageStore is the storage the compositor reads from and uploads to.
type ImageStore interface {
	ListGalleryImages(campaignID string) ([]storage.GalleryImage, error)
	GetImage(key string) (image.Image, error)
	UploadCollage(img image.Image) (string, error)
}

// Result is a rendered and uploaded collage.
type Result struct {
	ImageURL string        `json:"image_url"`
	Layout   layout.Layout `json:"layout"`
	Skipped  []string      `json:"skipped,omitempty"`
}

// CampaignSource supplies submission size classes.
type CampaignSource interface {
	GetCampaign(ctx context.Context, id string) (*model.Campaign, error)
}

// Compositor builds campaign collages.
type Compositor struct {
	store     ImageStore
	engine    *layout.Engine
	campaigns CampaignSource
}

// NewCompositor creates a new Compositor. With a nil campaigns source,
// image sizes cycle by position.
func NewCompositor(store ImageStore, engine *layout.Engine, campaigns CampaignSource) *Compositor {
	return &Compositor{
		store:     store,
		engine:    engine,
		campaigns: campaigns,
	}
}

// Compose lays out every gallery image of a campaign, renders and uploads it.
// Images that fail to load are skipped and reported in Result.Skipped.
func (c *Compositor) Compose(ctx context.Context, campaignID string, dims layout.Dimensions) (*Result, error) {
	gallery, err := c.store.ListGalleryImages(campaignID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(gallery))
	decoded := make(map[string]image.Image, len(gallery))
	var skipped []string
	for _, g := range gallery {
		img, err := c.store.GetImage(g.Key)
		if err != nil {
			skipped = append(skipped, g.SubmissionID)
			continue
		}
		ids = append(ids, g.SubmissionID)
		decoded[g.SubmissionID] = img
	}

	images, err := c.images(ctx, campaignID, ids)
	if err != nil {
		return nil, err
	}

	l := c.engine.Recompute(images, dims, layout.ModeScatter)

	canvas, err := Render(dims, l, decoded)
	if err != nil {
		return nil, err
	}

	url, err := c.store.UploadCollage(canvas)
	if err != nil {
		return nil, fmt.Errorf("failed to upload collage for %s: %w", campaignID, err)
	}

	return &Result{
		ImageURL: url,
		Layout:   l,
		Skipped:  skipped,
	}, nil
}

// images sizes the loaded gallery images the way the gallery layout does:
// in submission order with each submission's size class. Gallery images
// without a matching submission follow, cycling the default sizes.
func (c *Compositor) images(ctx context.Context, campaignID string, ids []string) ([]layout.Image, error) {
	if c.campaigns == nil {
		if len(ids) > layout.MaxImages {
			ids = ids[:layout.MaxImages]
		}
		return layout.ImagesFromIDs(ids), nil
	}

	campaign, err := c.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign %s: %w", campaignID, err)
	}

	loaded := make(map[string]bool, len(ids))
	for _, id := range ids {
		loaded[id] = true
	}

	images := make([]layout.Image, 0, len(ids))
	for _, img := range layout.SubmissionImages(campaign.Submissions) {
		if loaded[img.ID] {
			images = append(images, img)
			delete(loaded, img.ID)
		}
	}
	for _, id := range ids {
		if len(images) >= layout.MaxImages {
			break
		}
		if loaded[id] {
			images = append(images, layout.Image{ID: id, Size: layout.SizeForIndex(len(images))})
		}
	}
	return images, nil
}
