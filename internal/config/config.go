// Package config loads, normalizes, and validates smartzoom configuration.
//
// It supplies repository defaults, reads TOML files, expands user paths
// (including tilde shortcuts), and materializes the per-stage planner
// settings. Downstream code should obtain tuning through Settings so a
// partial config file still yields a complete, validated set of knobs.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"smartzoom/internal/intent"
	"smartzoom/internal/pipeline"
	"smartzoom/internal/scene"
	"smartzoom/internal/shot"
	"smartzoom/internal/transition"
)

//go:embed sample_config.toml
var sampleConfig string

// Intent tunes the activity classifier. Times are seconds, radii are
// fractions of the capture axes.
type Intent struct {
	TypingAnticipation float64 `toml:"typing_anticipation"`
	MaxKeyGap          float64 `toml:"max_key_gap"`
	ClickSpanDuration  float64 `toml:"click_span_duration"`
	NavClickGap        float64 `toml:"nav_click_gap"`
	NavClickRadius     float64 `toml:"nav_click_radius"`
	ScrollGroupGap     float64 `toml:"scroll_group_gap"`
	ScrollRadius       float64 `toml:"scroll_radius"`
	ScrollSpanDuration float64 `toml:"scroll_span_duration"`
	SwitchSpanDuration float64 `toml:"switch_span_duration"`
	IdleThreshold      float64 `toml:"idle_threshold"`
	MinGap             float64 `toml:"min_gap"`
	ContextWindow      float64 `toml:"context_window"`
}

// Scene tunes scene segmentation and focus region synthesis.
type Scene struct {
	MinSceneDuration  float64 `toml:"min_scene_duration"`
	SpatialThreshold  float64 `toml:"spatial_threshold"`
	ClickRegionSize   float64 `toml:"click_region_size"`
	TypingRegionW     float64 `toml:"typing_region_width"`
	TypingRegionH     float64 `toml:"typing_region_height"`
	ScrollRegionSize  float64 `toml:"scroll_region_size"`
	DefaultRegionSize float64 `toml:"default_region_size"`
	DragPadding       float64 `toml:"drag_padding"`
}

// Shot tunes framing. Zoom ranges are inline tables, e.g.
// clicking = {min = 1.4, max = 2.2}.
type Shot struct {
	MinZoom        float64        `toml:"min_zoom"`
	MaxZoom        float64        `toml:"max_zoom"`
	TargetCoverage float64        `toml:"target_coverage"`
	BBoxPadding    float64        `toml:"bbox_padding"`
	IdleDecay      float64        `toml:"idle_decay"`
	IdleZoom       float64        `toml:"idle_zoom"`
	SwitchingZoom  float64        `toml:"switching_zoom"`
	Clicking       shot.ZoomRange `toml:"clicking"`
	Navigating     shot.ZoomRange `toml:"navigating"`
	Scrolling      shot.ZoomRange `toml:"scrolling"`
	Dragging       shot.ZoomRange `toml:"dragging"`
	TypingCode     shot.ZoomRange `toml:"typing_code"`
	TypingTerminal shot.ZoomRange `toml:"typing_terminal"`
	TypingText     shot.ZoomRange `toml:"typing_text"`
}

// Transition tunes the camera moves between shots.
type Transition struct {
	ShortDistance  float64                  `toml:"short_distance"`
	MediumDistance float64                  `toml:"medium_distance"`
	FarNormalize   float64                  `toml:"far_normalize"`
	ShortPan       transition.DurationRange `toml:"short_pan"`
	MediumPan      transition.DurationRange `toml:"medium_pan"`
	ZoomOutPan     transition.DurationRange `toml:"zoom_out_pan"`
	ZoomInPan      transition.DurationRange `toml:"zoom_in_pan"`
	PanEasing      string                   `toml:"pan_easing"`
	ZoomOutEasing  string                   `toml:"zoom_out_easing"`
	ZoomInEasing   string                   `toml:"zoom_in_easing"`
}

// Logging controls log output.
type Logging struct {
	Verbose bool `toml:"verbose"`
}

// Output controls where plan files land.
type Output struct {
	Dir string `toml:"dir"`
}

// Config encapsulates all configuration values for smartzoom.
type Config struct {
	Intent     Intent     `toml:"intent"`
	Scene      Scene      `toml:"scene"`
	Shot       Shot       `toml:"shot"`
	Transition Transition `toml:"transition"`
	Logging    Logging    `toml:"logging"`
	Output     Output     `toml:"output"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/smartzoom/config.toml")
}

// Default returns a Config populated with the planner defaults.
func Default() Config {
	s := pipeline.DefaultSettings()
	return Config{
		Intent: Intent{
			TypingAnticipation: s.Intent.TypingAnticipation,
			MaxKeyGap:          s.Intent.MaxKeyGap,
			ClickSpanDuration:  s.Intent.ClickSpanDuration,
			NavClickGap:        s.Intent.NavClickGap,
			NavClickRadius:     s.Intent.NavClickRadius,
			ScrollGroupGap:     s.Intent.ScrollGroupGap,
			ScrollRadius:       s.Intent.ScrollRadius,
			ScrollSpanDuration: s.Intent.ScrollSpanDuration,
			SwitchSpanDuration: s.Intent.SwitchSpanDuration,
			IdleThreshold:      s.Intent.IdleThreshold,
			MinGap:             s.Intent.MinGap,
			ContextWindow:      s.Intent.ContextWindow,
		},
		Scene: Scene{
			MinSceneDuration:  s.Scene.MinSceneDuration,
			SpatialThreshold:  s.Scene.SpatialThreshold,
			ClickRegionSize:   s.Scene.ClickRegionSize,
			TypingRegionW:     s.Scene.TypingRegionW,
			TypingRegionH:     s.Scene.TypingRegionH,
			ScrollRegionSize:  s.Scene.ScrollRegionSize,
			DefaultRegionSize: s.Scene.DefaultRegionSize,
			DragPadding:       s.Scene.DragPadding,
		},
		Shot: Shot{
			MinZoom:        s.Shot.MinZoom,
			MaxZoom:        s.Shot.MaxZoom,
			TargetCoverage: s.Shot.TargetCoverage,
			BBoxPadding:    s.Shot.BBoxPadding,
			IdleDecay:      s.Shot.IdleDecay,
			IdleZoom:       s.Shot.IdleZoom,
			SwitchingZoom:  s.Shot.SwitchingZoom,
			Clicking:       s.Shot.Clicking,
			Navigating:     s.Shot.Navigating,
			Scrolling:      s.Shot.Scrolling,
			Dragging:       s.Shot.Dragging,
			TypingCode:     s.Shot.TypingCode,
			TypingTerminal: s.Shot.TypingTerminal,
			TypingText:     s.Shot.TypingText,
		},
		Transition: Transition{
			ShortDistance:  s.Transition.ShortDistance,
			MediumDistance: s.Transition.MediumDistance,
			FarNormalize:   s.Transition.FarNormalize,
			ShortPan:       s.Transition.ShortPan,
			MediumPan:      s.Transition.MediumPan,
			ZoomOutPan:     s.Transition.ZoomOutPan,
			ZoomInPan:      s.Transition.ZoomInPan,
			PanEasing:      string(s.Transition.PanEasing),
			ZoomOutEasing:  string(s.Transition.ZoomOutEasing),
			ZoomInEasing:   string(s.Transition.ZoomInEasing),
		},
		Logging: Logging{
			Verbose: false,
		},
		Output: Output{
			Dir: "plans",
		},
	}
}

// Load locates, parses, and validates a configuration file. Missing files
// are not an error: the defaults apply and exists reports false. Keys
// absent from the file keep their default values.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("smartzoom.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	if strings.TrimSpace(c.Output.Dir) == "" {
		c.Output.Dir = "plans"
	}
	expanded, err := ExpandPath(c.Output.Dir)
	if err != nil {
		return fmt.Errorf("output.dir: %w", err)
	}
	c.Output.Dir = expanded

	c.Transition.PanEasing = strings.TrimSpace(c.Transition.PanEasing)
	c.Transition.ZoomOutEasing = strings.TrimSpace(c.Transition.ZoomOutEasing)
	c.Transition.ZoomInEasing = strings.TrimSpace(c.Transition.ZoomInEasing)
	return nil
}

// Validate ensures the configuration is usable. Stage-specific rules live
// with the stages; this re-checks them on the materialized settings plus
// the file-facing fields the stages never see.
func (c *Config) Validate() error {
	for key, easing := range map[string]string{
		"transition.pan_easing":      c.Transition.PanEasing,
		"transition.zoom_out_easing": c.Transition.ZoomOutEasing,
		"transition.zoom_in_easing":  c.Transition.ZoomInEasing,
	} {
		if !validEasing(easing) {
			return fmt.Errorf("%s: unknown easing %q", key, easing)
		}
	}

	return c.Settings().Validate()
}

func validEasing(name string) bool {
	switch transition.Easing(name) {
	case transition.EasingLinear, transition.EasingInOut, transition.EasingOut, transition.EasingSpring:
		return true
	default:
		return false
	}
}

// Settings materializes the per-stage planner settings from the file-facing
// configuration.
func (c *Config) Settings() pipeline.Settings {
	return pipeline.Settings{
		Intent: intent.Config{
			TypingAnticipation: c.Intent.TypingAnticipation,
			MaxKeyGap:          c.Intent.MaxKeyGap,
			ClickSpanDuration:  c.Intent.ClickSpanDuration,
			NavClickGap:        c.Intent.NavClickGap,
			NavClickRadius:     c.Intent.NavClickRadius,
			ScrollGroupGap:     c.Intent.ScrollGroupGap,
			ScrollRadius:       c.Intent.ScrollRadius,
			ScrollSpanDuration: c.Intent.ScrollSpanDuration,
			SwitchSpanDuration: c.Intent.SwitchSpanDuration,
			IdleThreshold:      c.Intent.IdleThreshold,
			MinGap:             c.Intent.MinGap,
			ContextWindow:      c.Intent.ContextWindow,
		},
		Scene: scene.Config{
			MinSceneDuration:  c.Scene.MinSceneDuration,
			SpatialThreshold:  c.Scene.SpatialThreshold,
			ClickRegionSize:   c.Scene.ClickRegionSize,
			TypingRegionW:     c.Scene.TypingRegionW,
			TypingRegionH:     c.Scene.TypingRegionH,
			ScrollRegionSize:  c.Scene.ScrollRegionSize,
			DefaultRegionSize: c.Scene.DefaultRegionSize,
			DragPadding:       c.Scene.DragPadding,
		},
		Shot: shot.Config{
			MinZoom:        c.Shot.MinZoom,
			MaxZoom:        c.Shot.MaxZoom,
			TargetCoverage: c.Shot.TargetCoverage,
			BBoxPadding:    c.Shot.BBoxPadding,
			IdleDecay:      c.Shot.IdleDecay,
			IdleZoom:       c.Shot.IdleZoom,
			SwitchingZoom:  c.Shot.SwitchingZoom,
			Clicking:       c.Shot.Clicking,
			Navigating:     c.Shot.Navigating,
			Scrolling:      c.Shot.Scrolling,
			Dragging:       c.Shot.Dragging,
			TypingCode:     c.Shot.TypingCode,
			TypingTerminal: c.Shot.TypingTerminal,
			TypingText:     c.Shot.TypingText,
		},
		Transition: transition.Config{
			ShortDistance:  c.Transition.ShortDistance,
			MediumDistance: c.Transition.MediumDistance,
			FarNormalize:   c.Transition.FarNormalize,
			ShortPan:       c.Transition.ShortPan,
			MediumPan:      c.Transition.MediumPan,
			ZoomOutPan:     c.Transition.ZoomOutPan,
			ZoomInPan:      c.Transition.ZoomInPan,
			PanEasing:      transition.Easing(c.Transition.PanEasing),
			ZoomOutEasing:  transition.Easing(c.Transition.ZoomOutEasing),
			ZoomInEasing:   transition.Easing(c.Transition.ZoomInEasing),
		},
	}
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a fully commented sample configuration file.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
