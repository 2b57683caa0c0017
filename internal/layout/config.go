package layout

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// ExclusionConfig describes the regions images must stay clear of.
type ExclusionConfig struct {
	// Breakpoint selects Tall when the viewport height exceeds it, Compact otherwise.
	Breakpoint float64 `toml:"breakpoint"`
	Tall       Size    `toml:"tall"`
	Compact    Size    `toml:"compact"`
	// BottomLeft is anchored to the bottom-left viewport corner. A zero size disables it.
	BottomLeft Size `toml:"bottom_left"`
	// Extra rectangles in absolute viewport coordinates.
	Extra []Rect `toml:"extra"`
}

// Config holds the layout engine tuning.
type Config struct {
	Padding          float64         `toml:"padding"`
	MinMargin        float64         `toml:"min_margin"`
	MinScale         float64         `toml:"min_scale"`
	MaxScale         float64         `toml:"max_scale"`
	ZoneAttempts     int             `toml:"zone_attempts"`
	ViewportAttempts int             `toml:"viewport_attempts"`
	MinZoneSize      float64         `toml:"min_zone_size"`
	LeftStripRatio   float64         `toml:"left_strip_ratio"`
	CenterHalfSize   float64         `toml:"center_half_size"`
	ZIndexMin        int             `toml:"z_index_min"`
	ZIndexMax        int             `toml:"z_index_max"`
	BaseSizes        map[string]Size `toml:"base_sizes"`
	Exclusion        ExclusionConfig `toml:"exclusion"`
}

// DefaultConfig returns the configuration tuned for the event gallery header.
func DefaultConfig() Config {
	return Config{
		Padding:          20,
		MinMargin:        20,
		MinScale:         0.8,
		MaxScale:         1.2,
		ZoneAttempts:     100,
		ViewportAttempts: 50,
		MinZoneSize:      100,
		LeftStripRatio:   0.15,
		CenterHalfSize:   75,
		ZIndexMin:        10,
		ZIndexMax:        25,
		BaseSizes: map[string]Size{
			string(SizeSmall):  {Width: 100, Height: 130},
			string(SizeMedium): {Width: 140, Height: 180},
			string(SizeLarge):  {Width: 180, Height: 230},
			string(SizeXLarge): {Width: 220, Height: 280},
		},
		Exclusion: ExclusionConfig{
			Breakpoint: 780,
			Tall:       Size{Width: 500, Height: 200},
			Compact:    Size{Width: 700, Height: 200},
			BottomLeft: Size{Width: 240, Height: 160},
		},
	}
}

// LoadConfig reads a TOML file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode layout config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot use.
func (c Config) Validate() error {
	if c.Padding < 0 || c.MinMargin < 0 {
		return errors.New("invalid layout config: padding and margin must not be negative")
	}
	if c.MinScale <= 0 || c.MinScale > c.MaxScale {
		return errors.New("invalid layout config: scale range must be positive and ordered")
	}
	if c.ZoneAttempts < 0 || c.ViewportAttempts < 0 || c.ZoneAttempts+c.ViewportAttempts == 0 {
		return errors.New("invalid layout config: attempts must be positive")
	}
	if c.ZIndexMin >= c.ZIndexMax {
		return errors.New("invalid layout config: z-index band is empty")
	}
	if _, ok := c.BaseSizes[string(SizeMedium)]; !ok {
		return errors.New("invalid layout config: missing medium base size")
	}
	return nil
}

// baseSize returns the unscaled size for a class, falling back to medium.
func (c Config) baseSize(class SizeClass) Size {
	if s, ok := c.BaseSizes[string(class)]; ok {
		return s
	}
	return c.BaseSizes[string(SizeMedium)]
}
