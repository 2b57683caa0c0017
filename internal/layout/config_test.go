package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantErr     bool
		wantPadding float64
		wantExtra   int
	}{
		{
			name: "正常系: 一部だけ上書き",
			content: `
padding = 32

[exclusion]
breakpoint = 900

[[exclusion.extra]]
x = 10
y = 10
width = 200
height = 80
`,
			wantPadding: 32,
			wantExtra:   1,
		},
		{
			name:        "正常系: 空ファイルはデフォルト",
			content:     "",
			wantPadding: 20,
			wantExtra:   0,
		},
		{
			name:    "異常系: スケール範囲が逆転",
			content: "min_scale = 1.5\nmax_scale = 1.0\n",
			wantErr: true,
		},
		{
			name:    "異常系: TOMLとして不正",
			content: "padding = = 3",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "layout.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			cfg, err := LoadConfig(path)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPadding, cfg.Padding)
			assert.Len(t, cfg.Exclusion.Extra, tt.wantExtra)
			assert.Equal(t, 100, cfg.ZoneAttempts)
			assert.Equal(t, Size{Width: 140, Height: 180}, cfg.BaseSizes["medium"])
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "デフォルトは有効", mutate: func(*Config) {}, wantErr: false},
		{name: "負のパディング", mutate: func(c *Config) { c.Padding = -1 }, wantErr: true},
		{name: "試行回数ゼロ", mutate: func(c *Config) { c.ZoneAttempts = 0; c.ViewportAttempts = 0 }, wantErr: true},
		{name: "zIndex帯が空", mutate: func(c *Config) { c.ZIndexMax = c.ZIndexMin }, wantErr: true},
		{name: "mediumの基準サイズがない", mutate: func(c *Config) { delete(c.BaseSizes, "medium") }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
