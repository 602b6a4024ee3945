package pixelbasher

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/mso-test/pixelbasher/bitmap"
	"gopkg.in/yaml.v2"
)

//go:embed configdata/default.yaml
//go:embed configdata/strict.yaml
var presets embed.FS

// ErrConfig reports an invalid configuration value.
var ErrConfig = errors.New("pixelbasher: invalid configuration")

// Thresholds are the tunable constants of the image analysis and the
// pixel classification.
type Thresholds struct {
	BackgroundTolerance   int `yaml:"background_tolerance"`
	EdgeThreshold         int `yaml:"edge_threshold"`
	VerticalEdgeThreshold int `yaml:"vertical_edge_threshold"`
	MinVerticalRun        int `yaml:"min_vertical_run"`
	DilationRadius        int `yaml:"dilation_radius"`

	// PixelThreshold is the blue channel delta above which a pixel differs.
	PixelThreshold int `yaml:"pixel_threshold"`
	// Pixels closer than NearBackgroundDistance to the background get
	// NearBackgroundWidening added to the threshold.
	NearBackgroundDistance int `yaml:"near_background_distance"`
	NearBackgroundWidening int `yaml:"near_background_widening"`
	// NearEdgeWidening is added to the threshold for pixels near an edge
	// in both images.
	NearEdgeWidening int `yaml:"near_edge_widening"`
}

// DefaultThresholds returns the values tuned for rendered office pages.
func DefaultThresholds() Thresholds {
	opts := bitmap.DefaultOptions()
	return Thresholds{
		BackgroundTolerance:    opts.BackgroundTolerance,
		EdgeThreshold:          opts.EdgeThreshold,
		VerticalEdgeThreshold:  opts.VerticalEdgeThreshold,
		MinVerticalRun:         opts.MinVerticalRun,
		DilationRadius:         opts.DilationRadius,
		PixelThreshold:         40,
		NearBackgroundDistance: 15,
		NearBackgroundWidening: 20,
		NearEdgeWidening:       50,
	}
}

// ImageOptions returns the analysis settings for decoding images.
func (t Thresholds) ImageOptions() bitmap.Options {
	return bitmap.Options{
		BackgroundTolerance:   t.BackgroundTolerance,
		EdgeThreshold:         t.EdgeThreshold,
		VerticalEdgeThreshold: t.VerticalEdgeThreshold,
		MinVerticalRun:        t.MinVerticalRun,
		DilationRadius:        t.DilationRadius,
	}
}

// Validate checks ranges. The vertical edge threshold may not be lower
// than the edge threshold, which keeps every vertical edge pixel inside
// the dilated edge mask.
func (t Thresholds) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"background_tolerance", t.BackgroundTolerance},
		{"edge_threshold", t.EdgeThreshold},
		{"vertical_edge_threshold", t.VerticalEdgeThreshold},
		{"min_vertical_run", t.MinVerticalRun},
		{"dilation_radius", t.DilationRadius},
		{"pixel_threshold", t.PixelThreshold},
		{"near_background_distance", t.NearBackgroundDistance},
		{"near_background_widening", t.NearBackgroundWidening},
		{"near_edge_widening", t.NearEdgeWidening},
	}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d",
				ErrConfig, f.name, f.value)
		}
	}
	if t.EdgeThreshold > 255 || t.PixelThreshold > 255 {
		return fmt.Errorf("%w: edge_threshold and pixel_threshold must be "+
			"at most 255", ErrConfig)
	}
	if t.VerticalEdgeThreshold < t.EdgeThreshold {
		return fmt.Errorf("%w: vertical_edge_threshold %d is below "+
			"edge_threshold %d", ErrConfig, t.VerticalEdgeThreshold, t.EdgeThreshold)
	}
	return nil
}

// PaletteConfig holds marker colours as "#rrggbb" strings. Empty entries
// keep the default colour.
type PaletteConfig struct {
	Red        string `yaml:"red,omitempty"`
	Yellow     string `yaml:"yellow,omitempty"`
	DarkYellow string `yaml:"dark_yellow,omitempty"`
	Blue       string `yaml:"blue,omitempty"`
	Green      string `yaml:"green,omitempty"`
}

// Config is the complete run configuration.
type Config struct {
	Thresholds       Thresholds    `yaml:"thresholds"`
	Palette          PaletteConfig `yaml:"palette"`
	MinorDifferences bool          `yaml:"minor_differences"`
	Workers          int           `yaml:"workers"`
	FailIf           string        `yaml:"fail_if,omitempty"`

	palette  Palette
	criteria *Criteria
}

// NewConfig returns the default configuration, already finalized.
func NewConfig() Config {
	c := Config{Thresholds: DefaultThresholds()}
	if err := c.Finalize(); err != nil {
		panic(err)
	}
	return c
}

// NewConfigFromYAML parses b on top of the defaults and finalizes it.
func NewConfigFromYAML(b []byte) (Config, error) {
	c := Config{Thresholds: DefaultThresholds()}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := c.Finalize(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig reads a configuration by preset name ("default", "strict")
// or from a YAML file.
func LoadConfig(name string) (Config, error) {
	data, err := presets.ReadFile(fmt.Sprintf("configdata/%s.yaml", name))
	if err != nil {
		var fsErr error
		data, fsErr = os.ReadFile(name)
		if fsErr != nil {
			return Config{}, fmt.Errorf("reading config: %w", fsErr)
		}
	}
	c, err := NewConfigFromYAML(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// Finalize validates the configuration and resolves derived values.
func (c *Config) Finalize() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrConfig, c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}

	p := DefaultPalette()
	entries := []struct {
		name string
		hex  string
		dst  *[4]byte
	}{
		{"red", c.Palette.Red, &p.Red},
		{"yellow", c.Palette.Yellow, &p.Yellow},
		{"dark_yellow", c.Palette.DarkYellow, &p.DarkYellow},
		{"blue", c.Palette.Blue, &p.Blue},
		{"green", c.Palette.Green, &p.Green},
	}
	for _, e := range entries {
		if e.hex == "" {
			continue
		}
		col, err := ParseHexColour(e.hex)
		if err != nil {
			return fmt.Errorf("%w: palette.%s: %w", ErrConfig, e.name, err)
		}
		*e.dst = col
	}
	c.palette = p

	c.criteria = nil
	if c.FailIf != "" {
		crit, err := ParseCriteria(c.FailIf)
		if err != nil {
			return fmt.Errorf("%w: fail_if: %w", ErrConfig, err)
		}
		c.criteria = crit
	}
	return nil
}

// ResolvedPalette returns the marker colours after Finalize.
func (c Config) ResolvedPalette() Palette {
	return c.palette
}

// Criteria returns the parsed fail_if expression, or nil if none is set.
func (c Config) Criteria() *Criteria {
	return c.criteria
}

// NewComparer builds a Comparer from the configuration.
func (c Config) NewComparer() *Comparer {
	return NewComparer(WithThresholds(c.Thresholds), WithPalette(c.palette))
}

// AsYAML renders the configuration, including resolved palette colours.
func (c Config) AsYAML() (string, error) {
	out := c
	out.Palette = PaletteConfig{
		Red:        HexColour(c.palette.Red),
		Yellow:     HexColour(c.palette.Yellow),
		DarkYellow: HexColour(c.palette.DarkYellow),
		Blue:       HexColour(c.palette.Blue),
		Green:      HexColour(c.palette.Green),
	}
	b, err := yaml.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	return string(b), nil
}
