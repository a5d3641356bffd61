package shot

import (
	"math"

	"smartzoom/internal/geom"
	"smartzoom/internal/intent"
	"smartzoom/internal/scene"
	"smartzoom/internal/timeline"
)

// Planner frames scenes into shots.
type Planner struct {
	cfg Config
}

// NewPlanner creates a planner with the given tuning.
func NewPlanner(cfg Config) *Planner {
	return &Planner{cfg: cfg}
}

// Plan produces one shot per scene, in order. Active scenes are framed from
// their best evidence (element frame, then event extent, then fallbacks);
// idle scenes relax toward a neighbor's framing afterwards. Every returned
// shot keeps its viewport fully inside the capture.
func (p *Planner) Plan(tl timeline.Timeline, scenes []scene.Scene) []Shot {
	shots := make([]Shot, 0, len(scenes))
	for i, sc := range scenes {
		shots = append(shots, p.frame(&tl, i, sc))
	}
	p.decayIdle(shots)
	for i := range shots {
		shots[i].Center = clampCenter(shots[i].Center, shots[i].Zoom)
		shots[i].Type = TypeForZoom(shots[i].Zoom)
	}
	return shots
}

func (p *Planner) frame(tl *timeline.Timeline, idx int, sc scene.Scene) Shot {
	shot := Shot{
		SceneIndex: idx,
		Start:      sc.Start,
		End:        sc.End,
		Intent:     sc.Primary,
		App:        sc.App,
	}

	switch sc.Primary.(type) {
	case intent.Idle:
		shot.Zoom = p.cfg.IdleZoom
		shot.Center = geom.Point{X: 0.5, Y: 0.5}
		shot.Source = SourceFixed
		return shot
	case intent.Switching:
		shot.Zoom = p.cfg.SwitchingZoom
		shot.Center = geom.Point{X: 0.5, Y: 0.5}
		shot.Source = SourceFixed
		return shot
	}

	r := p.cfg.rangeFor(sc.Primary)

	// An element region is the strongest signal: frame it so it fills the
	// target share of the viewport. The latest one wins, covering clicks
	// that moved focus during the scene.
	if region, ok := lastElementRegion(sc); ok {
		shot.Zoom = p.clampZoom(r, p.coverageZoom(region.Rect.MaxDim(), r))
		shot.Center = region.Rect.Center()
		shot.Source = SourceElement
		return shot
	}

	positions := p.scenePositions(tl, sc)
	switch len(positions) {
	case 0:
		shot.Zoom = p.clampZoom(r, r.Mid())
		shot.Center = fallbackCenter(sc)
		shot.Source = SourceMidpoint
	case 1:
		shot.Zoom = p.clampZoom(r, r.Min)
		shot.Center = positions[0]
		shot.Source = SourceSingleEvent
	default:
		box, _ := geom.BoundingBox(positions)
		box = box.Pad(p.cfg.BBoxPadding)
		shot.Zoom = p.clampZoom(r, p.coverageZoom(box.MaxDim(), r))
		shot.Center = framingCenter(sc.Primary, positions)
		shot.Source = SourceBoundingBox
	}
	return shot
}

// coverageZoom makes a subject of the given size fill TargetCoverage of
// the viewport along its larger axis.
func (p *Planner) coverageZoom(maxDim float64, r ZoomRange) float64 {
	if maxDim < 1e-6 {
		return r.Mid()
	}
	return p.cfg.TargetCoverage / maxDim
}

func (p *Planner) clampZoom(r ZoomRange, z float64) float64 {
	return geom.Clamp(r.Clamp(z), p.cfg.MinZoom, p.cfg.MaxZoom)
}

func lastElementRegion(sc scene.Scene) (scene.FocusRegion, bool) {
	for i := len(sc.Regions) - 1; i >= 0; i-- {
		if sc.Regions[i].Source == scene.SourceActiveElement {
			return sc.Regions[i], true
		}
	}
	return scene.FocusRegion{}, false
}

// scenePositions collects the interaction positions that should influence
// the framing, per intent kind.
func (p *Planner) scenePositions(tl *timeline.Timeline, sc scene.Scene) []geom.Point {
	var pts []geom.Point
	for _, ev := range tl.EventsBetween(sc.Start, sc.End) {
		switch k := ev.Kind.(type) {
		case timeline.Click:
			if isClickScene(sc.Primary) {
				pts = append(pts, ev.Pos)
			}
		case timeline.DragStart:
			if _, ok := sc.Primary.(intent.Dragging); ok {
				pts = append(pts, k.Gesture.Start, k.Gesture.End)
			}
		case timeline.MouseMove:
			if _, ok := sc.Primary.(intent.Scrolling); ok {
				pts = append(pts, ev.Pos)
			}
		case timeline.KeyDown:
			if _, ok := sc.Primary.(intent.Typing); ok && !k.Modifiers.IsShortcut() {
				pts = append(pts, ev.Pos)
			}
		}
	}
	return pts
}

func isClickScene(i intent.Intent) bool {
	switch i.(type) {
	case intent.Clicking, intent.Navigating:
		return true
	default:
		return false
	}
}

// framingCenter picks where a multi-event framing points. Typing centers on
// the first keystroke so the camera leads the caret instead of chasing it;
// everything else centers on the event centroid.
func framingCenter(i intent.Intent, positions []geom.Point) geom.Point {
	if _, ok := i.(intent.Typing); ok {
		return positions[0]
	}
	c, _ := geom.Centroid(positions)
	return c
}

func fallbackCenter(sc scene.Scene) geom.Point {
	if len(sc.Regions) > 0 {
		return sc.Regions[0].Rect.Center()
	}
	return geom.Point{X: 0.5, Y: 0.5}
}

// decayIdle relaxes idle shots toward a bordering active shot instead of
// snapping to full screen. The preceding neighbor wins; a leading idle run
// borrows from the following one. Idle with no active neighbor at all
// keeps the fixed idle framing.
func (p *Planner) decayIdle(shots []Shot) {
	for i := range shots {
		if _, ok := shots[i].Intent.(intent.Idle); !ok {
			continue
		}
		n := activeNeighbor(shots, i)
		if n < 0 {
			continue
		}
		shots[i].Zoom = 1 + (shots[n].Zoom-1)*p.cfg.IdleDecay
		shots[i].Center = shots[n].Center
		shots[i].Source = SourceIdleDecay
	}
}

func activeNeighbor(shots []Shot, idx int) int {
	for i := idx - 1; i >= 0; i-- {
		if _, ok := shots[i].Intent.(intent.Idle); !ok {
			return i
		}
	}
	for i := idx + 1; i < len(shots); i++ {
		if _, ok := shots[i].Intent.(intent.Idle); !ok {
			return i
		}
	}
	return -1
}

// clampCenter keeps the zoomed viewport inside the capture. At zoom 1 the
// viewport is the whole capture, so the center must be exactly the middle.
func clampCenter(c geom.Point, zoom float64) geom.Point {
	if zoom <= 1 {
		return geom.Point{X: 0.5, Y: 0.5}
	}
	margin := 0.5 / zoom
	return geom.Point{
		X: math.Min(math.Max(c.X, margin), 1-margin),
		Y: math.Min(math.Max(c.Y, margin), 1-margin),
	}
}
