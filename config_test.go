package pixelbasher

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	c := NewConfig()
	if c.Thresholds != DefaultThresholds() {
		t.Errorf("Expected default thresholds, got %+v", c.Thresholds)
	}
	if c.ResolvedPalette() != DefaultPalette() {
		t.Errorf("Expected default palette, got %+v", c.ResolvedPalette())
	}
	if c.Workers != runtime.GOMAXPROCS(0) {
		t.Errorf("Expected %d workers, got %d", runtime.GOMAXPROCS(0), c.Workers)
	}
	if c.Criteria() != nil {
		t.Error("Expected no criteria by default")
	}
}

func TestEmbeddedPresets(t *testing.T) {
	def, err := LoadConfig("default")
	if err != nil {
		t.Fatalf("Loading default preset: %v", err)
	}
	if def.Thresholds != DefaultThresholds() {
		t.Errorf("Default preset should match DefaultThresholds, got %+v", def.Thresholds)
	}
	if def.ResolvedPalette() != DefaultPalette() {
		t.Errorf("Default preset should match DefaultPalette, got %+v", def.ResolvedPalette())
	}

	strict, err := LoadConfig("strict")
	if err != nil {
		t.Fatalf("Loading strict preset: %v", err)
	}
	if !strict.MinorDifferences {
		t.Error("Strict preset should report minor differences")
	}
	if strict.Criteria() == nil {
		t.Error("Strict preset should carry a fail_if criterion")
	}
}

func TestConfigFromYAMLKeepsDefaults(t *testing.T) {
	c, err := NewConfigFromYAML([]byte(`
thresholds:
  pixel_threshold: 25
palette:
  red: "#ff00ff"
workers: 3
`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Thresholds.PixelThreshold != 25 {
		t.Errorf("Expected pixel threshold 25, got %d", c.Thresholds.PixelThreshold)
	}
	if c.Thresholds.DilationRadius != 3 {
		t.Errorf("Expected unspecified keys to keep defaults, got radius %d", c.Thresholds.DilationRadius)
	}
	if c.ResolvedPalette().Red != [4]byte{255, 0, 255, 255} {
		t.Errorf("Expected magenta red marker, got %v", c.ResolvedPalette().Red)
	}
	if c.ResolvedPalette().Blue != ColourBlue {
		t.Error("Unspecified palette entries should keep defaults")
	}
	if c.Workers != 3 {
		t.Errorf("Expected 3 workers, got %d", c.Workers)
	}
	if cmp := c.NewComparer(); cmp.Thresholds.PixelThreshold != 25 || cmp.Palette.Red != c.ResolvedPalette().Red {
		t.Error("Comparer should use the configured values")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := map[string]string{
		"negative radius":     "thresholds:\n  dilation_radius: -1\n",
		"threshold too big":   "thresholds:\n  pixel_threshold: 300\n",
		"vertical below edge": "thresholds:\n  edge_threshold: 120\n  vertical_edge_threshold: 100\n",
		"bad colour":          "palette:\n  green: nope\n",
		"bad criteria":        "fail_if: \"red >\"\n",
		"negative workers":    "workers: -2\n",
		"malformed yaml":      "thresholds: [1, 2\n",
	}
	for name, doc := range tests {
		if _, err := NewConfigFromYAML([]byte(doc)); !errors.Is(err, ErrConfig) {
			t.Errorf("%s: expected ErrConfig, got %v", name, err)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("minor_differences: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if !c.MinorDifferences {
		t.Error("Expected minor differences from file")
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestConfigAsYAMLRoundTrip(t *testing.T) {
	c, err := NewConfigFromYAML([]byte("thresholds:\n  near_edge_widening: 70\nfail_if: \"red > 10\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.AsYAML()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "near_edge_widening: 70") {
		t.Errorf("Expected thresholds in YAML, got:\n%s", out)
	}
	if !strings.Contains(out, "#ffc500") {
		t.Errorf("Expected resolved palette in YAML, got:\n%s", out)
	}

	again, err := NewConfigFromYAML([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if again.Thresholds != c.Thresholds || again.ResolvedPalette() != c.ResolvedPalette() || again.FailIf != c.FailIf {
		t.Error("Expected identical configuration after a YAML round trip")
	}
}
