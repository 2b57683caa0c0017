// Command layout-preview computes a gallery layout for a viewport and prints
// it as JSON or renders it as a PNG of colored boxes.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	"github.com/kyiku/mall-event-back/internal/collage"
	"github.com/kyiku/mall-event-back/internal/layout"
	"github.com/kyiku/mall-event-back/internal/logging"
)

type options struct {
	width      int
	height     int
	count      int
	sizes      []string
	seed       int64
	configPath string
	mode       string
	format     string
	out        string
}

// swatch colors per size class for PNG previews.
var swatchColors = map[layout.SizeClass]color.RGBA{
	layout.SizeSmall:  {R: 0x8e, G: 0xc5, B: 0xfc, A: 0xff},
	layout.SizeMedium: {R: 0xe0, G: 0xc3, B: 0xfc, A: 0xff},
	layout.SizeLarge:  {R: 0xfc, G: 0xb6, B: 0x9f, A: 0xff},
	layout.SizeXLarge: {R: 0xff, G: 0xe0, B: 0x82, A: 0xff},
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	opts := options{
		width:  collage.DefaultWidth,
		height: collage.DefaultHeight,
		count:  12,
		mode:   string(layout.ModeScatter),
		format: "json",
	}

	cmd := &cobra.Command{
		Use:   "layout-preview",
		Short: "Preview gallery layouts for a viewport",
		Long: `Compute a gallery layout for a viewport and N images.

Images cycle through the default size classes unless --size is given.
Use --seed for reproducible output and --config to load a TOML layout config.
The json format prints the layout; the png format renders each placement as a
colored box so the exclusion zones can be checked by eye.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			level := "info"
			if verbose {
				level = "debug"
			}
			logger := logging.New(cmd.ErrOrStderr(), level)

			w := cmd.OutOrStdout()
			if opts.out != "" {
				f, err := os.Create(opts.out)
				if err != nil {
					return fmt.Errorf("create %s: %w", opts.out, err)
				}
				defer func() {
					if cerr := f.Close(); cerr != nil && err == nil {
						err = cerr
					}
				}()
				w = f
			}

			return preview(opts, w, logger)
		},
	}

	cmd.Flags().IntVar(&opts.width, "width", opts.width, "viewport width")
	cmd.Flags().IntVar(&opts.height, "height", opts.height, "viewport height")
	cmd.Flags().IntVarP(&opts.count, "count", "n", opts.count, "number of images")
	cmd.Flags().StringSliceVar(&opts.sizes, "size", nil, "size classes to cycle through (small, medium, large, xlarge)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed (0 picks a random layout)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "layout config file (TOML)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", opts.mode, "layout mode: scatter, center")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: json, png")
	cmd.Flags().StringVarP(&opts.out, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	return cmd
}

// preview computes the layout described by opts and writes it to w.
func preview(opts options, w io.Writer, logger *log.Logger) error {
	if opts.count < 0 {
		return errors.New("count must not be negative")
	}

	dims, err := collage.NormalizeDimensions(opts.width, opts.height)
	if err != nil {
		return fmt.Errorf("invalid viewport %dx%d: %w", opts.width, opts.height, err)
	}

	cfg := layout.DefaultConfig()
	if opts.configPath != "" {
		if cfg, err = layout.LoadConfig(opts.configPath); err != nil {
			return err
		}
		logger.Debug("loaded config", "path", opts.configPath)
	}

	var rng layout.Rand
	if opts.seed != 0 {
		rng = layout.NewSeededRand(opts.seed)
	}
	engine := layout.NewEngine(cfg, rng)

	images := previewImages(opts.count, opts.sizes)
	l := engine.Recompute(images, dims, layout.ParseMode(opts.mode))

	fallbacks := 0
	for _, p := range l.Placements {
		if p.Fallback {
			fallbacks++
		}
	}
	logger.Info("layout computed",
		"viewport", fmt.Sprintf("%.0fx%.0f", dims.Width, dims.Height),
		"screen", l.ScreenCategory,
		"images", len(l.Placements),
		"fallbacks", fallbacks)

	switch opts.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	case "png":
		canvas, err := collage.Render(dims, l, swatches(images))
		if err != nil {
			return err
		}
		return png.Encode(w, canvas)
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}

// previewImages builds count images named by index. sizes, when given, are
// cycled; otherwise the default size cycle applies.
func previewImages(count int, sizes []string) []layout.Image {
	images := make([]layout.Image, count)
	for i := range images {
		size := layout.SizeForIndex(i)
		if len(sizes) > 0 {
			size = layout.ParseSizeClass(sizes[i%len(sizes)])
		}
		images[i] = layout.Image{ID: strconv.Itoa(i), Size: size}
	}
	return images
}

// swatches returns a solid tile per image colored by its size class.
func swatches(images []layout.Image) map[string]image.Image {
	out := make(map[string]image.Image, len(images))
	for _, img := range images {
		tile := image.NewRGBA(image.Rect(0, 0, 8, 8))
		draw.Draw(tile, tile.Bounds(), &image.Uniform{C: swatchColors[img.Size]}, image.Point{}, draw.Src)
		out[img.ID] = tile
	}
	return out
}
