// Package shot decides how tight the virtual camera frames each scene and
// where it points. The output is one static framing per scene; moving the
// camera between framings is the transition stage's job.
package shot

import (
	"fmt"

	"smartzoom/internal/geom"
	"smartzoom/internal/intent"
)

// Type is the coarse shot classification derived from the final zoom.
type Type string

const (
	TypeWide    Type = "wide"
	TypeMedium  Type = "medium"
	TypeCloseUp Type = "closeUp"
)

// Zoom levels separating the shot types.
const (
	wideMaxZoom    = 1.05
	closeUpMinZoom = 2.0
)

// TypeForZoom maps a zoom factor onto a shot type.
func TypeForZoom(zoom float64) Type {
	switch {
	case zoom <= wideMaxZoom:
		return TypeWide
	case zoom >= closeUpMinZoom:
		return TypeCloseUp
	default:
		return TypeMedium
	}
}

// ZoomSource records which rule produced a shot's zoom, mostly for plan
// inspection and tests.
type ZoomSource string

const (
	// SourceElement: framed around an accessibility element region.
	SourceElement ZoomSource = "element"
	// SourceBoundingBox: framed around the padded extent of the scene's
	// interaction positions.
	SourceBoundingBox ZoomSource = "boundingBox"
	// SourceSingleEvent: one interaction position, gentlest zoom of the
	// intent's range.
	SourceSingleEvent ZoomSource = "singleEvent"
	// SourceMidpoint: no usable evidence, middle of the intent's range.
	SourceMidpoint ZoomSource = "midpointFallback"
	// SourceIdleDecay: relaxed from a neighboring scene's zoom.
	SourceIdleDecay ZoomSource = "idleDecay"
	// SourceFixed: structurally fixed framing (switching, isolated idle).
	SourceFixed ZoomSource = "fixed"
)

// Shot is the planned framing for one scene.
type Shot struct {
	SceneIndex int
	Start      float64
	End        float64
	Intent     intent.Intent
	App        string
	Type       Type
	Zoom       float64
	Center     geom.Point
	Source     ZoomSource
}

// Duration returns the shot length in seconds.
func (s Shot) Duration() float64 {
	return s.End - s.Start
}

// ZoomRange bounds the zoom for one intent.
type ZoomRange struct {
	Min float64 `toml:"min"`
	Max float64 `toml:"max"`
}

// Clamp limits z into the range.
func (r ZoomRange) Clamp(z float64) float64 {
	return geom.Clamp(z, r.Min, r.Max)
}

// Mid returns the middle of the range.
func (r ZoomRange) Mid() float64 {
	return (r.Min + r.Max) / 2
}

func (r ZoomRange) validate(name string) error {
	if r.Min < 1 || r.Max < r.Min {
		return fmt.Errorf("%s zoom range must satisfy 1 <= min <= max, got [%g, %g]", name, r.Min, r.Max)
	}
	return nil
}

// Config holds the framing tuning.
type Config struct {
	// MinZoom and MaxZoom globally bound every planned zoom.
	MinZoom float64
	MaxZoom float64
	// TargetCoverage is the fraction of the viewport the framed subject
	// should fill along its larger axis.
	TargetCoverage float64
	// BBoxPadding expands an event bounding box before framing it.
	BBoxPadding float64
	// IdleDecay is how much of a neighbor's zoom an idle scene keeps,
	// as the fraction of the zoom excess above 1.
	IdleDecay float64
	// IdleZoom and SwitchingZoom are the fixed framings for scenes with
	// nothing to frame. Idle scenes bordering an active scene decay from
	// that neighbor instead of using IdleZoom.
	IdleZoom      float64
	SwitchingZoom float64
	// Per-intent zoom ranges.
	Clicking       ZoomRange
	Navigating     ZoomRange
	Scrolling      ZoomRange
	Dragging       ZoomRange
	TypingCode     ZoomRange
	TypingTerminal ZoomRange
	TypingText     ZoomRange
}

// DefaultConfig returns the framing tuning used when no configuration
// overrides it.
func DefaultConfig() Config {
	return Config{
		MinZoom:        1.0,
		MaxZoom:        3.0,
		TargetCoverage: 0.45,
		BBoxPadding:    0.15,
		IdleDecay:      0.55,
		IdleZoom:       1.0,
		SwitchingZoom:  1.0,
		Clicking:       ZoomRange{Min: 1.4, Max: 2.2},
		Navigating:     ZoomRange{Min: 1.2, Max: 1.8},
		Scrolling:      ZoomRange{Min: 1.1, Max: 1.6},
		Dragging:       ZoomRange{Min: 1.2, Max: 1.8},
		TypingCode:     ZoomRange{Min: 1.6, Max: 2.4},
		TypingTerminal: ZoomRange{Min: 1.6, Max: 2.4},
		TypingText:     ZoomRange{Min: 1.5, Max: 2.2},
	}
}

// Validate rejects configurations that could frame outside the capture.
func (c Config) Validate() error {
	if c.MinZoom < 1 {
		return fmt.Errorf("min zoom must be at least 1, got %g", c.MinZoom)
	}
	if c.MaxZoom < c.MinZoom {
		return fmt.Errorf("max zoom %g below min zoom %g", c.MaxZoom, c.MinZoom)
	}
	if c.TargetCoverage <= 0 || c.TargetCoverage > 1 {
		return fmt.Errorf("target coverage must be within (0, 1], got %g", c.TargetCoverage)
	}
	if c.BBoxPadding < 0 {
		return fmt.Errorf("bounding box padding must not be negative, got %g", c.BBoxPadding)
	}
	if c.IdleDecay < 0 || c.IdleDecay > 1 {
		return fmt.Errorf("idle decay must be within [0, 1], got %g", c.IdleDecay)
	}
	if c.IdleZoom < 1 || c.IdleZoom > c.MaxZoom {
		return fmt.Errorf("idle zoom must be within [1, max zoom], got %g", c.IdleZoom)
	}
	if c.SwitchingZoom < 1 || c.SwitchingZoom > c.MaxZoom {
		return fmt.Errorf("switching zoom must be within [1, max zoom], got %g", c.SwitchingZoom)
	}
	ranges := map[string]ZoomRange{
		"clicking":        c.Clicking,
		"navigating":      c.Navigating,
		"scrolling":       c.Scrolling,
		"dragging":        c.Dragging,
		"typing code":     c.TypingCode,
		"typing terminal": c.TypingTerminal,
		"typing text":     c.TypingText,
	}
	for name, r := range ranges {
		if err := r.validate(name); err != nil {
			return err
		}
	}
	return nil
}

// rangeFor picks the zoom range for an intent. Idle and switching scenes
// do not frame through ranges at all.
func (c Config) rangeFor(i intent.Intent) ZoomRange {
	switch v := i.(type) {
	case intent.Typing:
		switch v.Context {
		case intent.ContextCodeEditor:
			return c.TypingCode
		case intent.ContextTerminal:
			return c.TypingTerminal
		default:
			return c.TypingText
		}
	case intent.Clicking:
		return c.Clicking
	case intent.Navigating:
		return c.Navigating
	case intent.Scrolling:
		return c.Scrolling
	case intent.Dragging:
		return c.Dragging
	default:
		return ZoomRange{Min: 1, Max: 1}
	}
}
