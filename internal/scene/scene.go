// Package scene groups classified activity spans into camera scenes. A
// scene is the unit the camera commits to: one framing target held for one
// stretch of time, with the focus regions that justify it.
package scene

import (
	"fmt"

	"smartzoom/internal/geom"
	"smartzoom/internal/intent"
)

// RegionSource says how a focus region was derived.
type RegionSource string

const (
	// SourceActiveElement means the region is an accessibility element
	// frame, the most trustworthy kind.
	SourceActiveElement RegionSource = "activeElement"
	// SourceCursor means the region was synthesized around an interaction
	// position.
	SourceCursor RegionSource = "cursorPosition"
	// SourceDragPath means the region covers a drag gesture's extent.
	SourceDragPath RegionSource = "dragPath"
)

// FocusRegion is one rectangle of user attention inside a scene.
type FocusRegion struct {
	Rect       geom.Rect
	Source     RegionSource
	Time       float64
	Confidence float64
}

// Scene is a contiguous run of spans the camera treats as one subject.
type Scene struct {
	Start   float64
	End     float64
	Primary intent.Intent
	Spans   []intent.Span
	Regions []FocusRegion
	// App is the canonical application the scene plays in, empty when it
	// could not be determined.
	App string
}

// Duration returns the scene length in seconds.
func (s Scene) Duration() float64 {
	return s.End - s.Start
}

// Config holds the segmentation thresholds. Sizes are fractions of the
// capture dimensions.
type Config struct {
	// MinSceneDuration is the shortest scene worth a camera move; shorter
	// ones are absorbed into a neighbor.
	MinSceneDuration float64
	// SpatialThreshold is how far a span's focus may sit from the running
	// centroid of the current scene before a split, for intents where
	// position is meaningful.
	SpatialThreshold float64
	// Region sizes for synthesized focus regions.
	ClickRegionSize   float64
	TypingRegionW     float64
	TypingRegionH     float64
	ScrollRegionSize  float64
	DefaultRegionSize float64
	// DragPadding expands a drag gesture's bounding box by this fraction
	// of each dimension.
	DragPadding float64
}

// DefaultConfig returns the segmentation tuning used when no configuration
// overrides it.
func DefaultConfig() Config {
	return Config{
		MinSceneDuration:  0.3,
		SpatialThreshold:  0.25,
		ClickRegionSize:   0.08,
		TypingRegionW:     0.28,
		TypingRegionH:     0.06,
		ScrollRegionSize:  0.12,
		DefaultRegionSize: 0.02,
		DragPadding:       0.15,
	}
}

// Validate rejects configurations that would produce degenerate regions.
func (c Config) Validate() error {
	if c.MinSceneDuration < 0 {
		return fmt.Errorf("min scene duration must not be negative, got %g", c.MinSceneDuration)
	}
	if c.SpatialThreshold <= 0 || c.SpatialThreshold > 1 {
		return fmt.Errorf("spatial threshold must be within (0, 1], got %g", c.SpatialThreshold)
	}
	for name, v := range map[string]float64{
		"click region size":    c.ClickRegionSize,
		"typing region width":  c.TypingRegionW,
		"typing region height": c.TypingRegionH,
		"scroll region size":   c.ScrollRegionSize,
		"default region size":  c.DefaultRegionSize,
	} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%s must be within (0, 1], got %g", name, v)
		}
	}
	if c.DragPadding < 0 {
		return fmt.Errorf("drag padding must not be negative, got %g", c.DragPadding)
	}
	return nil
}
