package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mediumImages(n int) []Image {
	images := make([]Image, n)
	for i := range images {
		images[i] = Image{ID: fmt.Sprintf("img-%d", i), Size: SizeMedium}
	}
	return images
}

func mixedImages(n int) []Image {
	sizes := []SizeClass{SizeSmall, SizeMedium, SizeLarge, SizeXLarge}
	images := make([]Image, n)
	for i := range images {
		images[i] = Image{ID: fmt.Sprintf("img-%d", i), Size: sizes[i%len(sizes)]}
	}
	return images
}

func assertLayoutInvariants(t *testing.T, e *Engine, placements []Placement, dims Dimensions) {
	t.Helper()
	p := e.Config().Padding

	for i, pl := range placements {
		assert.GreaterOrEqual(t, pl.X, p-epsilon, "placement %d x", i)
		assert.GreaterOrEqual(t, pl.Y, p-epsilon, "placement %d y", i)
		assert.LessOrEqual(t, pl.X+pl.Width, dims.Width-p+epsilon, "placement %d right", i)
		assert.LessOrEqual(t, pl.Y+pl.Height, dims.Height-p+epsilon, "placement %d bottom", i)

		for _, ex := range e.Exclusions(dims) {
			assert.False(t, pl.Bounds().Overlaps(ex), "placement %d overlaps exclusion %+v", i, ex)
		}
	}

	for i := 0; i < len(placements); i++ {
		for j := i + 1; j < len(placements); j++ {
			a, b := placements[i], placements[j]
			if a.Fallback || b.Fallback {
				continue
			}
			assert.GreaterOrEqual(t, a.CenterDistance(b), RequiredDistance(a, b, e.Config().MinMargin)-epsilon,
				"placements %d and %d are too close", i, j)
		}
	}
}

func TestEngine_ScatteredPositions_Cardinality(t *testing.T) {
	tests := []struct {
		name  string
		count int
		dims  Dimensions
	}{
		{name: "正常系: 0枚", count: 0, dims: Dimensions{Width: 1200, Height: 800}},
		{name: "正常系: 1枚", count: 1, dims: Dimensions{Width: 1200, Height: 800}},
		{name: "正常系: 12枚", count: 12, dims: Dimensions{Width: 1920, Height: 1080}},
		{name: "正常系: 過密でも件数を保つ", count: 40, dims: Dimensions{Width: 800, Height: 600}},
		{name: "異常系: 1x1のビューポート", count: 5, dims: Dimensions{Width: 1, Height: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(DefaultConfig(), NewSeededRand(42))
			images := mediumImages(tt.count)

			placements := e.ScatteredPositions(images, tt.dims)

			require.NotNil(t, placements)
			require.Len(t, placements, tt.count)
			for i, pl := range placements {
				assert.Equal(t, images[i].ID, pl.ImageID, "順序が保たれているべき")
			}
		})
	}
}

func TestEngine_ScatteredPositions_Invariants(t *testing.T) {
	viewports := []Dimensions{
		{Width: 1200, Height: 800},
		{Width: 1366, Height: 768},
		{Width: 1920, Height: 1080},
		{Width: 2560, Height: 1440},
		{Width: 1024, Height: 1366},
	}

	for _, dims := range viewports {
		for seed := int64(1); seed <= 5; seed++ {
			t.Run(fmt.Sprintf("%vx%v/seed=%d", dims.Width, dims.Height, seed), func(t *testing.T) {
				e := NewEngine(DefaultConfig(), NewSeededRand(seed))

				placements := e.ScatteredPositions(mixedImages(10), dims)

				require.Len(t, placements, 10)
				assertLayoutInvariants(t, e, placements, dims)
			})
		}
	}
}

func TestEngine_ScatteredPositions_Scenario1200x800(t *testing.T) {
	dims := Dimensions{Width: 1200, Height: 800}
	e := NewEngine(DefaultConfig(), NewSeededRand(7))

	// 800 > 780 なので大きい画面用の除外領域が使われる
	center := e.CenterExclusion(dims)
	assert.Equal(t, 500.0, center.Width)
	assert.Equal(t, 200.0, center.Height)

	zones := e.CandidateZones(dims)
	require.NotEmpty(t, zones)
	top := zones[0]
	assert.Equal(t, 20.0, top.Y)
	assert.InDelta(t, 280.0, top.Height, epsilon)

	placements := e.ScatteredPositions(mediumImages(6), dims)

	require.Len(t, placements, 6)
	assertLayoutInvariants(t, e, placements, dims)

	random := 0
	for _, pl := range placements {
		assert.GreaterOrEqual(t, pl.Scale, 0.8)
		assert.LessOrEqual(t, pl.Scale, 1.2)
		if !pl.Fallback {
			random++
		}
	}
	assert.Greater(t, random, 0, "ランダム配置が使われるべき")
}

func TestEngine_ScatteredPositions_FallbackCorners(t *testing.T) {
	dims := Dimensions{Width: 1, Height: 1}
	e := NewEngine(DefaultConfig(), NewSeededRand(3))

	placements := e.ScatteredPositions(mediumImages(7), dims)

	require.Len(t, placements, 7)
	for k, pl := range placements {
		assert.True(t, pl.Fallback, "placement %d should fall back", k)
		x, y := e.SafeCorner(k%3, pl.Width, pl.Height, dims)
		assert.Equal(t, x, pl.X, "placement %d x", k)
		assert.Equal(t, y, pl.Y, "placement %d y", k)
	}

	// corner order: top-left, top-right, bottom-right
	assert.Equal(t, 20.0, placements[0].X)
	assert.Equal(t, 20.0, placements[0].Y)
	assert.Equal(t, placements[0].Y, placements[1].Y)
	assert.Equal(t, 1-20-placements[1].Width, placements[1].X)
	assert.Equal(t, 1-20-placements[2].Height, placements[2].Y)
}

func TestEngine_ScatteredPositions_FallbackMayOverlapExclusion(t *testing.T) {
	dims := Dimensions{Width: 800, Height: 600}
	e := NewEngine(DefaultConfig(), NewSeededRand(11))
	center := e.CenterExclusion(dims)

	images := make([]Image, 30)
	for i := range images {
		images[i] = Image{ID: fmt.Sprintf("xl-%d", i), Size: SizeXLarge}
	}

	placements := e.ScatteredPositions(images, dims)
	require.Len(t, placements, 30)

	// 角への退避は固定位置で、中央の除外領域と重なってもよい
	overlapping := 0
	for i, pl := range placements {
		if !pl.Fallback {
			assert.False(t, pl.Bounds().Overlaps(center), "placement %d overlaps center", i)
			continue
		}
		x, y := e.SafeCorner(i, pl.Width, pl.Height, dims)
		assert.Equal(t, x, pl.X, "placement %d x", i)
		assert.Equal(t, y, pl.Y, "placement %d y", i)
		if pl.Bounds().Overlaps(center) {
			overlapping++
		}
	}
	assert.Greater(t, overlapping, 0)
}

func TestEngine_ScatteredPositions_Deterministic(t *testing.T) {
	dims := Dimensions{Width: 1440, Height: 900}

	first := NewEngine(DefaultConfig(), NewSeededRand(99)).ScatteredPositions(mixedImages(8), dims)
	second := NewEngine(DefaultConfig(), NewSeededRand(99)).ScatteredPositions(mixedImages(8), dims)

	assert.Equal(t, first, second)
}

func TestEngine_ScatteredPositions_ExtraExclusion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exclusion.Extra = []Rect{{X: 900, Y: 0, Width: 300, Height: 300}}
	dims := Dimensions{Width: 1200, Height: 800}
	e := NewEngine(cfg, NewSeededRand(11))

	placements := e.ScatteredPositions(mediumImages(6), dims)

	require.Len(t, placements, 6)
	assert.Len(t, e.Exclusions(dims), 3)
	for i, pl := range placements {
		if pl.Fallback {
			continue
		}
		assert.False(t, pl.Bounds().Overlaps(cfg.Exclusion.Extra[0]), "placement %d overlaps extra exclusion", i)
	}
}

func TestEngine_CenterExclusion_Breakpoint(t *testing.T) {
	tests := []struct {
		name      string
		height    float64
		wantWidth float64
	}{
		{name: "ブレークポイント以下", height: 780, wantWidth: 700},
		{name: "ブレークポイント超え", height: 781, wantWidth: 500},
	}

	e := NewEngine(DefaultConfig(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dims := Dimensions{Width: 1400, Height: tt.height}

			r := e.CenterExclusion(dims)

			assert.Equal(t, tt.wantWidth, r.Width)
			assert.Equal(t, 200.0, r.Height)
			cx, cy := r.Center()
			assert.Equal(t, 700.0, cx)
			assert.Equal(t, tt.height/2, cy)
		})
	}
}

func TestEngine_CandidateZones_MinSize(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)

	for _, dims := range []Dimensions{{Width: 1200, Height: 800}, {Width: 600, Height: 400}, {Width: 1, Height: 1}} {
		for _, z := range e.CandidateZones(dims) {
			assert.GreaterOrEqual(t, z.Width, 100.0)
			assert.GreaterOrEqual(t, z.Height, 100.0)
			for _, ex := range e.Exclusions(dims) {
				assert.False(t, z.Overlaps(ex))
			}
		}
	}
	assert.Empty(t, e.CandidateZones(Dimensions{Width: 1, Height: 1}))
}

func TestEngine_CenterPositions(t *testing.T) {
	e := NewEngine(DefaultConfig(), NewSeededRand(1))
	dims := Dimensions{Width: 1200, Height: 800}
	images := mixedImages(4)

	first := e.CenterPositions(images, dims)
	second := e.CenterPositions(images, dims)

	require.Len(t, first, 4)
	assert.Equal(t, first, second)
	for _, pl := range first {
		assert.Equal(t, 525.0, pl.X)
		assert.Equal(t, 325.0, pl.Y)
		assert.Equal(t, 1.0, pl.Scale)
	}
	assert.Empty(t, e.CenterPositions(nil, dims))
}

func TestEngine_RandomZIndexes(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		wantLen int
	}{
		{name: "正常系: 10件", count: 10, wantLen: 10},
		{name: "正常系: 0件", count: 0, wantLen: 0},
		{name: "異常系: 負数", count: -3, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(DefaultConfig(), NewSeededRand(5))

			zs := e.RandomZIndexes(tt.count)

			require.Len(t, zs, tt.wantLen)
			for _, z := range zs {
				assert.GreaterOrEqual(t, z, 10)
				assert.Less(t, z, 25)
			}
		})
	}
}

func TestEngine_Recompute(t *testing.T) {
	e := NewEngine(DefaultConfig(), NewSeededRand(8))
	dims := Dimensions{Width: 1200, Height: 800}

	scatter := e.Recompute(mediumImages(5), dims, ModeScatter)
	center := e.Recompute(mediumImages(5), dims, ModeCenter)

	assert.Len(t, scatter.Placements, 5)
	assert.Len(t, scatter.ZIndexes, 5)
	assert.Equal(t, ScreenMedium, scatter.ScreenCategory)
	assert.Len(t, scatter.Exclusions, 2)
	for _, pl := range center.Placements {
		assert.Equal(t, 1.0, pl.Scale)
	}
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeCenter, ParseMode("center"))
	assert.Equal(t, ModeScatter, ParseMode("scatter"))
	assert.Equal(t, ModeScatter, ParseMode(""))
}
