// Package transition plans the camera moves between consecutive shots.
// Each boundary gets a style, a duration and an easing curve; the actual
// frame-by-frame interpolation belongs to whatever renders the plan.
package transition

import (
	"fmt"
	"math"

	"smartzoom/internal/geom"
)

// Style is the closed set of camera move kinds.
type Style interface {
	isStyle()
}

// Cut jumps instantly, used into app switches and between identical
// framings.
type Cut struct{}

// DirectPan moves center and zoom together in one smooth motion.
type DirectPan struct{}

// ZoomOutAndPan pulls back first and settles into the new framing, used
// for long moves that end no tighter than they started.
type ZoomOutAndPan struct{}

// ZoomInAndPan travels wide and dives into the new framing, used for long
// moves that end tighter.
type ZoomInAndPan struct{}

func (Cut) isStyle()           {}
func (DirectPan) isStyle()     {}
func (ZoomOutAndPan) isStyle() {}
func (ZoomInAndPan) isStyle()  {}

// StyleName returns the stable name used in plan output.
func StyleName(s Style) string {
	switch s.(type) {
	case Cut:
		return "cut"
	case DirectPan:
		return "directPan"
	case ZoomOutAndPan:
		return "zoomOutAndPan"
	case ZoomInAndPan:
		return "zoomInAndPan"
	default:
		return "unknown"
	}
}

// Easing identifies the interpolation curve of a transition.
type Easing string

const (
	EasingLinear  Easing = "linear"
	EasingInOut   Easing = "easeInOutCubic"
	EasingOut     Easing = "easeOutCubic"
	EasingSpring  Easing = "spring"
)

// Evaluate maps progress t in [0,1] onto the eased value. The spring curve
// is a light underdamped approach for previewing; a materializer is free to
// substitute a physical spring.
func (e Easing) Evaluate(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	switch e {
	case EasingInOut:
		if t < 0.5 {
			return 4 * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 3)/2
	case EasingOut:
		return 1 - math.Pow(1-t, 3)
	case EasingSpring:
		return geom.Clamp01(1 - math.Exp(-5*t)*math.Cos(10*t))
	default:
		return t
	}
}

// Plan is one planned camera move at a scene boundary.
type Plan struct {
	FromScene int
	ToScene   int
	// At is the moment the move lands, the destination shot's start.
	At       float64
	Style    Style
	Duration float64
	Easing   Easing
	// Distance is the effective on-screen travel that picked the style,
	// kept for inspection.
	Distance float64
}

// DurationRange maps a normalized position inside a tier onto a duration.
type DurationRange struct {
	Min float64 `toml:"min"`
	Max float64 `toml:"max"`
}

// At lerps through the range; t is clamped into [0,1].
func (r DurationRange) At(t float64) float64 {
	return geom.Lerp(r.Min, r.Max, geom.Clamp01(t))
}

// Contains reports whether d lies inside the range.
func (r DurationRange) Contains(d float64) bool {
	return d >= r.Min-1e-9 && d <= r.Max+1e-9
}

func (r DurationRange) validate(name string) error {
	if r.Min <= 0 || r.Max < r.Min {
		return fmt.Errorf("%s duration range must satisfy 0 < min <= max, got [%g, %g]", name, r.Min, r.Max)
	}
	return nil
}

// Config holds the transition tuning. Distances are effective on-screen
// travel: the centers' separation scaled by the larger zoom of the pair.
type Config struct {
	// ShortDistance and MediumDistance are the tier boundaries.
	ShortDistance  float64
	MediumDistance float64
	// FarNormalize is the effective distance at which far moves reach
	// their maximum duration.
	FarNormalize float64
	// Durations per tier.
	ShortPan   DurationRange
	MediumPan  DurationRange
	ZoomOutPan DurationRange
	ZoomInPan  DurationRange
	// Easings per style.
	PanEasing     Easing
	ZoomOutEasing Easing
	ZoomInEasing  Easing
}

// DefaultConfig returns the transition tuning used when no configuration
// overrides it.
func DefaultConfig() Config {
	return Config{
		ShortDistance:  0.18,
		MediumDistance: 0.42,
		FarNormalize:   1.5,
		ShortPan:       DurationRange{Min: 0.35, Max: 0.6},
		MediumPan:      DurationRange{Min: 0.6, Max: 1.0},
		ZoomOutPan:     DurationRange{Min: 0.9, Max: 1.4},
		ZoomInPan:      DurationRange{Min: 0.8, Max: 1.2},
		PanEasing:      EasingSpring,
		ZoomOutEasing:  EasingInOut,
		ZoomInEasing:   EasingOut,
	}
}

// Validate rejects tier layouts that cannot classify every distance.
func (c Config) Validate() error {
	if c.ShortDistance <= 0 {
		return fmt.Errorf("short distance must be positive, got %g", c.ShortDistance)
	}
	if c.MediumDistance <= c.ShortDistance {
		return fmt.Errorf("medium distance %g must exceed short distance %g", c.MediumDistance, c.ShortDistance)
	}
	if c.FarNormalize <= c.MediumDistance {
		return fmt.Errorf("far normalization %g must exceed medium distance %g", c.FarNormalize, c.MediumDistance)
	}
	for name, r := range map[string]DurationRange{
		"short pan":    c.ShortPan,
		"medium pan":   c.MediumPan,
		"zoom-out pan": c.ZoomOutPan,
		"zoom-in pan":  c.ZoomInPan,
	} {
		if err := r.validate(name); err != nil {
			return err
		}
	}
	return nil
}
