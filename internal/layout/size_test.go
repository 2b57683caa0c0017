package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kyiku/mall-event-back/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		dims Dimensions
		want ScreenCategory
	}{
		{name: "スマートフォン", dims: Dimensions{Width: 390, Height: 844}, want: ScreenSmall},
		{name: "ノートPC", dims: Dimensions{Width: 1280, Height: 720}, want: ScreenMedium},
		{name: "境界値: 1366x768", dims: Dimensions{Width: 1366, Height: 768}, want: ScreenLarge},
		{name: "フルHD", dims: Dimensions{Width: 1920, Height: 1080}, want: ScreenXLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.dims))
		})
	}
}

func TestResponsiveMultiplier(t *testing.T) {
	tests := []struct {
		name string
		dims Dimensions
		want float64
	}{
		{name: "標準", dims: Dimensions{Width: 1200, Height: 800}, want: 0.8},
		{name: "縦長", dims: Dimensions{Width: 390, Height: 844}, want: 0.6 * 0.85},
		{name: "ウルトラワイド", dims: Dimensions{Width: 2200, Height: 900}, want: 1.0 * 0.9},
		{name: "高解像度", dims: Dimensions{Width: 2560, Height: 1440}, want: 1.2 * 1.15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ResponsiveMultiplier(tt.dims), 1e-9)
		})
	}
}

func TestParseSizeClass(t *testing.T) {
	assert.Equal(t, SizeLarge, ParseSizeClass("large"))
	assert.Equal(t, SizeMedium, ParseSizeClass("huge"))
	assert.Equal(t, SizeMedium, ParseSizeClass(""))
}

func TestSizeForIndex(t *testing.T) {
	want := []SizeClass{SizeMedium, SizeSmall, SizeLarge, SizeMedium, SizeXLarge, SizeSmall, SizeMedium}
	for i, w := range want {
		assert.Equal(t, w, SizeForIndex(i), "index %d", i)
	}
}

func TestImagesFromIDs(t *testing.T) {
	images := ImagesFromIDs([]string{"a", "b", "c"})
	assert.Equal(t, []Image{
		{ID: "a", Size: SizeMedium},
		{ID: "b", Size: SizeSmall},
		{ID: "c", Size: SizeLarge},
	}, images)
}

func TestSubmissionImages(t *testing.T) {
	t.Run("正常系: sizeClassを優先し、なければ位置で巡回", func(t *testing.T) {
		subs := []model.Submission{
			{ID: "a", SizeClass: "large"},
			{ID: "b"},
			{ID: "c", SizeClass: "huge"},
			{ID: "d"},
		}

		assert.Equal(t, []Image{
			{ID: "a", Size: SizeLarge},
			{ID: "b", Size: SizeSmall},
			{ID: "c", Size: SizeMedium},
			{ID: "d", Size: SizeMedium},
		}, SubmissionImages(subs))
	})

	t.Run("正常系: 上限で切り詰める", func(t *testing.T) {
		subs := make([]model.Submission, MaxImages+50)
		for i := range subs {
			subs[i] = model.Submission{ID: fmt.Sprintf("s%d", i)}
		}

		images := SubmissionImages(subs)

		assert.Len(t, images, MaxImages)
		assert.Equal(t, "s0", images[0].ID)
		assert.Equal(t, fmt.Sprintf("s%d", MaxImages-1), images[MaxImages-1].ID)
	})
}
