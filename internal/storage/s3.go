// Package storage provides S3 storage integration.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // gallery uploads are mostly JPEG
	"image/png"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const (
	galleryPrefix = "gallery/"
	collagePrefix = "collages/"
)

// ErrNoGalleryImages is returned when a campaign has nothing uploaded yet.
var ErrNoGalleryImages = errors.New("no gallery images available")

// S3ClientInterface defines the interface for S3 operations.
type S3ClientInterface interface {
	GetObject(key string) ([]byte, error)
	PutObject(key string, data []byte) error
	ListObjects(prefix string) ([]string, error)
}

// GalleryImage is a stored submission image.
type GalleryImage struct {
	Key          string `json:"key"`
	SubmissionID string `json:"submission_id"`
	URL          string `json:"url"`
}

// S3Client wraps S3 operations for image storage.
type S3Client struct {
	client        S3ClientInterface
	bucket        string
	cloudfrontURL string
}

// NewS3Client creates a new S3Client.
func NewS3Client(client S3ClientInterface, bucket string, cloudfrontURL string) *S3Client {
	return &S3Client{
		client:        client,
		bucket:        bucket,
		cloudfrontURL: strings.TrimSuffix(cloudfrontURL, "/"),
	}
}

// Bucket returns the configured bucket name.
func (c *S3Client) Bucket() string {
	return c.bucket
}

// ListGalleryImages returns the images uploaded for a campaign, sorted by key.
func (c *S3Client) ListGalleryImages(campaignID string) ([]GalleryImage, error) {
	if campaignID == "" || strings.Contains(campaignID, "/") {
		return nil, fmt.Errorf("invalid campaign id %q", campaignID)
	}

	prefix := galleryPrefix + campaignID + "/"
	keys, err := c.client.ListObjects(prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery images: %w", err)
	}

	sort.Strings(keys)
	images := make([]GalleryImage, 0, len(keys))
	for _, key := range keys {
		if !isImageKey(key) {
			continue
		}
		images = append(images, GalleryImage{
			Key:          key,
			SubmissionID: submissionIDFromKey(key),
			URL:          c.ImageURL(key),
		})
	}

	if len(images) == 0 {
		return nil, ErrNoGalleryImages
	}
	return images, nil
}

// GetImage fetches and decodes a stored image.
func (c *S3Client) GetImage(key string) (image.Image, error) {
	data, err := c.client.GetObject(key)
	if err != nil {
		return nil, fmt.Errorf("failed to get image %s: %w", key, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", key, err)
	}

	return img, nil
}

// ImageURL returns the CloudFront URL for a stored key.
func (c *S3Client) ImageURL(key string) string {
	return fmt.Sprintf("%s/%s", c.cloudfrontURL, key)
}

// UploadCollage uploads a rendered collage and returns its CloudFront URL.
func (c *S3Client) UploadCollage(img image.Image) (string, error) {
	key := collagePrefix + uuid.New().String() + ".png"

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode collage: %w", err)
	}

	if err := c.client.PutObject(key, buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to upload collage: %w", err)
	}

	return c.ImageURL(key), nil
}

func isImageKey(key string) bool {
	switch strings.ToLower(path.Ext(key)) {
	case ".png", ".jpg", ".jpeg", ".webp":
		return true
	}
	return false
}

// submissionIDFromKey extracts "s1" from "gallery/<campaign>/s1.jpg".
func submissionIDFromKey(key string) string {
	name := path.Base(key)
	return strings.TrimSuffix(name, path.Ext(name))
}
