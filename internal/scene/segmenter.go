package scene

import (
	"sort"

	"smartzoom/internal/apps"
	"smartzoom/internal/geom"
	"smartzoom/internal/intent"
	"smartzoom/internal/timeline"
)

// Segmenter folds a span sequence into camera scenes.
type Segmenter struct {
	cfg Config
}

// NewSegmenter creates a segmenter with the given thresholds.
func NewSegmenter(cfg Config) *Segmenter {
	return &Segmenter{cfg: cfg}
}

// Segment converts a gapless span sequence into scenes. Consecutive spans
// with exactly equal intent stay in one scene as long as their focus stays
// near the scene's running centroid; idle and switching spans always stand
// alone. The output tiles the same range the input does.
func (g *Segmenter) Segment(tl timeline.Timeline, spans []intent.Span) []Scene {
	if len(spans) == 0 {
		return nil
	}

	var scenes []Scene
	var group []intent.Span
	var centroid geom.RunningCentroid

	flush := func() {
		if len(group) > 0 {
			scenes = append(scenes, g.build(&tl, group))
			group = nil
			centroid.Reset()
		}
	}

	for _, s := range spans {
		if len(group) > 0 {
			cur := group[0].Intent
			split := soloScene(cur) || soloScene(s.Intent) || s.Intent != cur ||
				(spatiallySensitive(s.Intent) && s.Focus.Dist(centroid.Center()) > g.cfg.SpatialThreshold)
			if split {
				flush()
			}
		}
		group = append(group, s)
		centroid.Add(s.Focus)
	}
	flush()

	return g.absorbShort(scenes)
}

// soloScene reports intents that never share a scene with another span.
func soloScene(i intent.Intent) bool {
	switch i.(type) {
	case intent.Idle, intent.Switching:
		return true
	default:
		return false
	}
}

// spatiallySensitive reports intents whose focus position decides scene
// identity. Typing and dragging hold one scene while the caret or cursor
// moves; the shot stage handles the travel inside the scene.
func spatiallySensitive(i intent.Intent) bool {
	switch i.(type) {
	case intent.Clicking, intent.Navigating, intent.Scrolling:
		return true
	default:
		return false
	}
}

func (g *Segmenter) build(tl *timeline.Timeline, group []intent.Span) Scene {
	sc := Scene{
		Start:   group[0].Start,
		End:     group[len(group)-1].End,
		Primary: group[0].Intent,
		Spans:   group,
	}
	for _, sp := range group {
		sc.Regions = append(sc.Regions, g.regions(tl, sp)...)
	}
	sc.App = g.appContext(tl, sc)
	return sc
}

// regions derives the focus regions one span contributes. An accessibility
// element frame beats any synthesized rectangle; a click that revealed a
// new element contributes that element as a second region.
func (g *Segmenter) regions(tl *timeline.Timeline, sp intent.Span) []FocusRegion {
	var out []FocusRegion

	if sp.Element.HasFrame() {
		out = append(out, FocusRegion{
			Rect:       sp.Element.Frame,
			Source:     SourceActiveElement,
			Time:       sp.Start,
			Confidence: sp.Confidence,
		})
	} else {
		out = append(out, g.synthesized(tl, sp))
	}

	if sp.Context != nil && sp.Context.Element.HasFrame() {
		out = append(out, FocusRegion{
			Rect:       sp.Context.Element.Frame,
			Source:     SourceActiveElement,
			Time:       sp.Context.At,
			Confidence: sp.Confidence * 0.9,
		})
	}
	return out
}

func (g *Segmenter) synthesized(tl *timeline.Timeline, sp intent.Span) FocusRegion {
	region := FocusRegion{Source: SourceCursor, Time: sp.Start, Confidence: sp.Confidence}

	switch sp.Intent.(type) {
	case intent.Typing:
		region.Rect = geom.RectAround(sp.Focus, g.cfg.TypingRegionW, g.cfg.TypingRegionH)
	case intent.Clicking, intent.Navigating:
		region.Rect = geom.RectAround(sp.Focus, g.cfg.ClickRegionSize, g.cfg.ClickRegionSize)
	case intent.Scrolling:
		region.Rect = geom.RectAround(sp.Focus, g.cfg.ScrollRegionSize, g.cfg.ScrollRegionSize)
	case intent.Dragging:
		if rect, ok := g.dragExtent(tl, sp); ok {
			region.Rect = rect
			region.Source = SourceDragPath
		} else {
			region.Rect = geom.RectAround(sp.Focus, g.cfg.DefaultRegionSize, g.cfg.DefaultRegionSize)
		}
	default:
		region.Rect = geom.RectAround(sp.Focus, g.cfg.DefaultRegionSize, g.cfg.DefaultRegionSize)
	}
	return region
}

// dragExtent covers the gesture from grab to release, padded, with a floor
// so a short straight drag still yields a visible region.
func (g *Segmenter) dragExtent(tl *timeline.Timeline, sp intent.Span) (geom.Rect, bool) {
	for _, ev := range tl.EventsBetween(sp.Start, sp.End+1e-9) {
		start, ok := ev.Kind.(timeline.DragStart)
		if !ok {
			continue
		}
		box, _ := geom.BoundingBox([]geom.Point{start.Gesture.Start, start.Gesture.End})
		box = box.Pad(g.cfg.DragPadding)
		return ensureSize(box, g.cfg.DefaultRegionSize), true
	}
	return geom.Rect{}, false
}

// ensureSize widens degenerate rectangles (a perfectly horizontal drag has
// zero height) up to a minimum on each axis.
func ensureSize(r geom.Rect, min float64) geom.Rect {
	c := r.Center()
	w := r.W
	h := r.H
	if w < min {
		w = min
	}
	if h < min {
		h = min
	}
	return geom.RectAround(c, w, h)
}

// appContext resolves which application a scene plays in. A switching
// scene belongs to its destination; otherwise the first tagged event in
// range decides, with the UI sample at scene start as fallback.
func (g *Segmenter) appContext(tl *timeline.Timeline, sc Scene) string {
	if sw, ok := sc.Primary.(intent.Switching); ok {
		return sw.To
	}
	for _, ev := range tl.EventsBetween(sc.Start, sc.End) {
		if ev.App != "" {
			return apps.Canonical(ev.App)
		}
	}
	if s := tl.SampleAt(sc.Start); s != nil {
		raw := s.BundleID
		if raw == "" {
			raw = s.AppName
		}
		if raw != "" {
			return apps.Canonical(raw)
		}
	}
	return ""
}

// absorbShort merges scenes below the minimum duration into a neighbor,
// preferring the one before. Regions and spans travel with the merge so no
// attention evidence is lost. A lone short scene stays.
func (g *Segmenter) absorbShort(scenes []Scene) []Scene {
	for len(scenes) > 1 {
		idx := -1
		for i := range scenes {
			if scenes[i].Duration() < g.cfg.MinSceneDuration {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		if idx > 0 {
			scenes[idx-1] = merge(scenes[idx-1], scenes[idx])
			scenes = append(scenes[:idx], scenes[idx+1:]...)
		} else {
			scenes[1] = merge(scenes[1], scenes[0])
			scenes = scenes[1:]
		}
	}
	return scenes
}

// merge folds absorbed into keeper. The keeper's primary intent stands;
// the absorbed scene's regions and spans are kept in time order.
func merge(keeper, absorbed Scene) Scene {
	if absorbed.Start < keeper.Start {
		keeper.Start = absorbed.Start
	}
	if absorbed.End > keeper.End {
		keeper.End = absorbed.End
	}

	keeper.Regions = append(keeper.Regions, absorbed.Regions...)
	sort.SliceStable(keeper.Regions, func(i, j int) bool {
		return keeper.Regions[i].Time < keeper.Regions[j].Time
	})

	keeper.Spans = append(keeper.Spans, absorbed.Spans...)
	sort.SliceStable(keeper.Spans, func(i, j int) bool {
		return keeper.Spans[i].Start < keeper.Spans[j].Start
	})

	if keeper.App == "" {
		keeper.App = absorbed.App
	}
	return keeper
}
