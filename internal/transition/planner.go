package transition

import (
	"math"

	"smartzoom/internal/intent"
	"smartzoom/internal/shot"
)

const (
	distanceEpsilon = 1e-6
	zoomEpsilon     = 1e-6
)

// Planner turns a shot sequence into boundary transitions.
type Planner struct {
	cfg Config
}

// NewPlanner creates a planner with the given tuning.
func NewPlanner(cfg Config) *Planner {
	return &Planner{cfg: cfg}
}

// Plan emits one transition per consecutive shot pair. The same input
// always yields the same plan; durations depend only on the pair's
// effective distance.
func (p *Planner) Plan(shots []shot.Shot) []Plan {
	if len(shots) < 2 {
		return nil
	}
	plans := make([]Plan, 0, len(shots)-1)
	for i := 1; i < len(shots); i++ {
		plans = append(plans, p.between(shots[i-1], shots[i]))
	}
	return plans
}

func (p *Planner) between(src, dst shot.Shot) Plan {
	pl := Plan{
		FromScene: src.SceneIndex,
		ToScene:   dst.SceneIndex,
		At:        dst.Start,
	}

	// An app switch reads as a context break, so the camera cuts rather
	// than drags the old app's pixels across the screen.
	if _, ok := dst.Intent.(intent.Switching); ok {
		pl.Style = Cut{}
		pl.Easing = EasingLinear
		return pl
	}

	raw := src.Center.Dist(dst.Center)
	// What the viewer experiences is screen travel, not capture travel: a
	// small capture-space move at high zoom sweeps a lot of screen.
	eff := raw * math.Max(src.Zoom, dst.Zoom)
	pl.Distance = eff

	zoomDelta := dst.Zoom - src.Zoom
	if eff < distanceEpsilon && math.Abs(zoomDelta) < zoomEpsilon {
		pl.Style = Cut{}
		pl.Easing = EasingLinear
		return pl
	}

	switch {
	case eff <= p.cfg.ShortDistance:
		pl.Style = DirectPan{}
		pl.Easing = p.cfg.PanEasing
		pl.Duration = p.cfg.ShortPan.At(eff / p.cfg.ShortDistance)
	case eff <= p.cfg.MediumDistance:
		pl.Style = DirectPan{}
		pl.Easing = p.cfg.PanEasing
		t := (eff - p.cfg.ShortDistance) / (p.cfg.MediumDistance - p.cfg.ShortDistance)
		pl.Duration = p.cfg.MediumPan.At(t)
	default:
		t := (eff - p.cfg.MediumDistance) / (p.cfg.FarNormalize - p.cfg.MediumDistance)
		if zoomDelta > zoomEpsilon {
			pl.Style = ZoomInAndPan{}
			pl.Easing = p.cfg.ZoomInEasing
			pl.Duration = p.cfg.ZoomInPan.At(t)
		} else {
			// Ending no tighter than it started, including equal zooms:
			// pulling back reads calmer over a long move.
			pl.Style = ZoomOutAndPan{}
			pl.Easing = p.cfg.ZoomOutEasing
			pl.Duration = p.cfg.ZoomOutPan.At(t)
		}
	}
	return pl
}
