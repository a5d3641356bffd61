package intent

import (
	"math"
	"sort"

	"smartzoom/internal/apps"
	"smartzoom/internal/geom"
	"smartzoom/internal/timeline"
)

const timeEpsilon = 1e-9

func isSwitch(i Intent) bool {
	_, ok := i.(Switching)
	return ok
}

// Classifier turns a unified timeline into a gapless span sequence.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify produces the activity spans for one timeline. The result tiles
// [0, Duration] exactly: spans are sorted, non-overlapping and contiguous.
// A timeline without classifiable events yields a single idle span; a
// timeline without duration yields nothing.
func (c *Classifier) Classify(tl timeline.Timeline) []Span {
	if tl.Duration <= 0 {
		return nil
	}

	var candidates []Span
	candidates = append(candidates, c.typingSpans(&tl)...)
	candidates = append(candidates, c.clickSpans(&tl)...)
	candidates = append(candidates, c.dragSpans(&tl)...)
	candidates = append(candidates, c.scrollSpans(&tl)...)
	candidates = append(candidates, c.switchSpans(&tl)...)

	spans := resolveOverlaps(candidates, tl.Duration)
	return c.fillGaps(spans, tl.Duration)
}

// typingSpans groups plain keystrokes into sessions. A session breaks on a
// pause longer than MaxKeyGap or on a change of the owning application;
// shortcut chords never start or join a session.
func (c *Classifier) typingSpans(tl *timeline.Timeline) []Span {
	var session []timeline.Event
	var spans []Span

	flush := func() {
		if len(session) > 0 {
			spans = append(spans, c.typingSpan(tl, session))
			session = nil
		}
	}

	for _, ev := range tl.Events {
		down, ok := ev.Kind.(timeline.KeyDown)
		if !ok || down.Modifiers.IsShortcut() {
			continue
		}
		if len(session) > 0 {
			prev := session[len(session)-1]
			if ev.Time-prev.Time > c.cfg.MaxKeyGap || apps.Canonical(ev.App) != apps.Canonical(prev.App) {
				flush()
			}
		}
		session = append(session, ev)
	}
	flush()
	return spans
}

func (c *Classifier) typingSpan(tl *timeline.Timeline, session []timeline.Event) Span {
	first := session[0]
	last := session[len(session)-1]

	// Anticipation must not reach back into another application's screen
	// time, so it is cut off where the current app context began.
	start := math.Max(0, first.Time-c.cfg.TypingAnticipation)
	start = math.Max(start, appContextStart(tl, first.Time))

	span := Span{
		Start:      start,
		End:        last.Time,
		Intent:     Typing{Context: c.typingContext(tl, first)},
		Focus:      first.Pos,
		Confidence: math.Min(0.95, 0.55+0.05*float64(len(session))),
	}

	// The focused text element gives a better anchor than the cursor,
	// which often rests far from the caret while typing.
	if sample := tl.SampleAt(first.Time); sample != nil && sample.Element.HasFrame() {
		span.Element = sample.Element
		span.Focus = sample.Element.Frame.Center()
	}
	return span
}

// appContextStart returns the time since which the application in focus at
// the given moment has been continuously frontmost. Zero means the context
// reaches back to the recording start or cannot be determined.
func appContextStart(tl *timeline.Timeline, at float64) float64 {
	idx := sort.Search(len(tl.Samples), func(i int) bool {
		return tl.Samples[i].Time > at
	}) - 1
	if idx < 0 {
		return 0
	}
	cur := sampleApp(&tl.Samples[idx])
	if cur == "" {
		return 0
	}
	start := tl.Samples[idx].Time
	for i := idx - 1; i >= 0; i-- {
		if sampleApp(&tl.Samples[i]) != cur {
			return start
		}
		start = tl.Samples[i].Time
	}
	// The run reaches the first sample, so nothing contradicts the app
	// having been frontmost since the beginning.
	return 0
}

func sampleApp(s *timeline.UISample) string {
	raw := s.BundleID
	if raw == "" {
		raw = s.AppName
	}
	if raw == "" {
		return ""
	}
	return apps.Canonical(raw)
}

// typingContext picks the typing flavor from the owning application, with
// the focused element's reported application as a fallback for recorders
// that only resolve bundle IDs for the frontmost process.
func (c *Classifier) typingContext(tl *timeline.Timeline, ev timeline.Event) TypingContext {
	var id apps.Identity
	if sample := tl.SampleAt(ev.Time); sample != nil {
		id = apps.Resolve(sample.BundleID, sample.AppName)
		if id.Category == apps.CategoryOther && sample.Element != nil && sample.Element.AppName != "" {
			id = apps.Resolve("", sample.Element.AppName)
		}
	} else if ev.App != "" {
		id = apps.Resolve(ev.App, "")
	}

	switch id.Category {
	case apps.CategoryCodeEditor:
		return ContextCodeEditor
	case apps.CategoryTerminal:
		return ContextTerminal
	default:
		return ContextTextField
	}
}

// clickSpans clusters clicks. A lone click becomes a clicking span; a burst
// of clicks close in time and space becomes a navigating span anchored on
// the burst centroid. Joining compares against the running centroid of the
// burst so far, so a slowly drifting chain still splits once it has moved
// far from where it began.
func (c *Classifier) clickSpans(tl *timeline.Timeline) []Span {
	var group []timeline.Event
	var centroid geom.RunningCentroid
	var spans []Span

	flush := func() {
		if len(group) == 0 {
			return
		}
		if len(group) == 1 {
			spans = append(spans, c.singleClickSpan(tl, group[0]))
		} else {
			first, last := group[0], group[len(group)-1]
			spans = append(spans, Span{
				Start:      first.Time,
				End:        last.Time + c.cfg.ClickSpanDuration,
				Intent:     Navigating{},
				Focus:      centroid.Center(),
				Confidence: math.Min(0.92, 0.55+0.08*float64(len(group))),
			})
		}
		group = nil
		centroid.Reset()
	}

	for _, ev := range tl.Events {
		if _, ok := ev.Kind.(timeline.Click); !ok {
			continue
		}
		if len(group) > 0 {
			prev := group[len(group)-1]
			if ev.Time-prev.Time > c.cfg.NavClickGap ||
				ev.Pos.Dist(centroid.Center()) > c.cfg.NavClickRadius ||
				apps.Canonical(ev.App) != apps.Canonical(prev.App) {
				flush()
			}
		}
		group = append(group, ev)
		centroid.Add(ev.Pos)
	}
	flush()
	return spans
}

func (c *Classifier) singleClickSpan(tl *timeline.Timeline, ev timeline.Event) Span {
	click := ev.Kind.(timeline.Click)
	span := Span{
		Start:      ev.Time,
		End:        ev.Time + c.cfg.ClickSpanDuration,
		Intent:     Clicking{},
		Focus:      ev.Pos,
		Element:    click.Element,
		Confidence: 0.85,
	}
	span.Context = c.contextChange(tl, ev)
	return span
}

// contextChange looks for a focus-element change shortly after a click,
// which usually means the click opened a panel, menu or dialog.
func (c *Classifier) contextChange(tl *timeline.Timeline, ev timeline.Event) *ContextChange {
	baseline := ""
	if s := tl.SampleAt(ev.Time); s != nil {
		baseline = elementKey(s.Element)
	}
	for i := range tl.Samples {
		s := &tl.Samples[i]
		if s.Time <= ev.Time {
			continue
		}
		if s.Time > ev.Time+c.cfg.ContextWindow {
			break
		}
		if s.Element != nil && elementKey(s.Element) != baseline {
			return &ContextChange{At: s.Time, Element: s.Element}
		}
	}
	return nil
}

func elementKey(e *timeline.ElementInfo) string {
	if e == nil {
		return ""
	}
	return e.Role + "\x00" + e.Title + "\x00" + e.AppName
}

func (c *Classifier) dragSpans(tl *timeline.Timeline) []Span {
	var spans []Span
	for _, ev := range tl.Events {
		start, ok := ev.Kind.(timeline.DragStart)
		if !ok {
			continue
		}
		g := start.Gesture
		spans = append(spans, Span{
			Start:      ev.Time,
			End:        ev.Time + math.Max(g.Duration, timeEpsilon),
			Intent:     Dragging{Type: g.Type},
			Focus:      geom.Mid(g.Start, g.End),
			Confidence: 0.85,
		})
	}
	return spans
}

// scrollSpans groups scroll ticks the same way clicks cluster, with the
// dominant tick direction as the span qualifier.
func (c *Classifier) scrollSpans(tl *timeline.Timeline) []Span {
	var group []timeline.Event
	var centroid geom.RunningCentroid
	var spans []Span

	flush := func() {
		if len(group) == 0 {
			return
		}
		first, last := group[0], group[len(group)-1]
		spans = append(spans, Span{
			Start:      first.Time,
			End:        last.Time + c.cfg.ScrollSpanDuration,
			Intent:     Scrolling{Direction: dominantDirection(group)},
			Focus:      centroid.Center(),
			Confidence: math.Min(0.9, 0.65+0.03*float64(len(group))),
		})
		group = nil
		centroid.Reset()
	}

	for _, ev := range tl.Events {
		if _, ok := ev.Kind.(timeline.Scroll); !ok {
			continue
		}
		if len(group) > 0 {
			prev := group[len(group)-1]
			if ev.Time-prev.Time > c.cfg.ScrollGroupGap ||
				ev.Pos.Dist(centroid.Center()) > c.cfg.ScrollRadius ||
				apps.Canonical(ev.App) != apps.Canonical(prev.App) {
				flush()
			}
		}
		group = append(group, ev)
		centroid.Add(ev.Pos)
	}
	flush()
	return spans
}

func dominantDirection(group []timeline.Event) timeline.ScrollDirection {
	counts := make(map[timeline.ScrollDirection]int)
	var best timeline.ScrollDirection
	for _, ev := range group {
		d := ev.Kind.(timeline.Scroll).Direction
		counts[d]++
		if counts[d] >= counts[best] {
			best = d
		}
	}
	return best
}

// switchSpans emits a fixed-length span whenever the canonical application
// identity changes between consecutive UI samples. Alias resolution keeps a
// helper process reporting a different spelling of the same app from
// producing a switch.
func (c *Classifier) switchSpans(tl *timeline.Timeline) []Span {
	var spans []Span
	prev := ""
	for i := range tl.Samples {
		s := &tl.Samples[i]
		raw := s.BundleID
		if raw == "" {
			raw = s.AppName
		}
		if raw == "" {
			continue
		}
		cur := apps.Canonical(raw)
		if prev != "" && cur != prev {
			spans = append(spans, Span{
				Start:      s.Time,
				End:        s.Time + c.cfg.SwitchSpanDuration,
				Intent:     Switching{From: prev, To: cur},
				Focus:      geom.Point{X: 0.5, Y: 0.5},
				Confidence: 0.95,
			})
		}
		prev = cur
	}
	return spans
}

// resolveOverlaps trims colliding candidate spans. Among ordinary spans the
// later one yields; switching spans always keep their window and carve it
// out of whatever they land on, splitting a straddling span in two. Spans
// trimmed to nothing are dropped.
func resolveOverlaps(candidates []Span, duration float64) []Span {
	var normal, switches []Span
	for _, s := range candidates {
		if s.Start < 0 {
			s.Start = 0
		}
		if s.End > duration {
			s.End = duration
		}
		if s.End-s.Start <= timeEpsilon {
			continue
		}
		if _, ok := s.Intent.(Switching); ok {
			switches = append(switches, s)
		} else {
			normal = append(normal, s)
		}
	}

	out := yieldLater(normal)
	for _, sw := range yieldLater(switches) {
		out = carve(out, sw)
	}
	return out
}

// yieldLater sorts spans by start and shrinks each to begin where its
// predecessor ends.
func yieldLater(spans []Span) []Span {
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Start < spans[j].Start
	})
	var out []Span
	for _, s := range spans {
		if len(out) > 0 {
			if last := out[len(out)-1]; s.Start < last.End {
				s.Start = last.End
			}
		}
		if s.End-s.Start > timeEpsilon {
			out = append(out, s)
		}
	}
	return out
}

// carve inserts one switching span into a sorted non-overlapping sequence,
// cutting its window out of anything it overlaps.
func carve(spans []Span, sw Span) []Span {
	out := make([]Span, 0, len(spans)+1)
	inserted := false
	insert := func() {
		if !inserted {
			out = append(out, sw)
			inserted = true
		}
	}

	for _, s := range spans {
		switch {
		case s.End <= sw.Start+timeEpsilon:
			out = append(out, s)
		case s.Start >= sw.End-timeEpsilon:
			insert()
			out = append(out, s)
		default:
			if sw.Start-s.Start > timeEpsilon {
				left := s
				left.End = sw.Start
				out = append(out, left)
			}
			insert()
			if s.End-sw.End > timeEpsilon {
				right := s
				right.Start = sw.End
				out = append(out, right)
			}
		}
	}
	insert()
	return out
}

// fillGaps stretches the resolved spans into a gapless tiling of the
// recording. Stretches longer than IdleThreshold become explicit idle
// spans inheriting the nearest neighbor's focus; shorter ones are absorbed
// by a neighbor, never by a manufactured idle span.
func (c *Classifier) fillGaps(spans []Span, duration float64) []Span {
	if len(spans) == 0 {
		return []Span{{
			Start:      0,
			End:        duration,
			Intent:     Idle{},
			Focus:      geom.Point{X: 0.5, Y: 0.5},
			Confidence: 1.0,
		}}
	}

	var out []Span
	first := spans[0]
	if first.Start > timeEpsilon {
		if first.Start > c.cfg.IdleThreshold {
			out = append(out, Span{
				Start:      0,
				End:        first.Start,
				Intent:     Idle{},
				Focus:      first.Focus,
				Confidence: 1.0,
			})
		} else {
			first.Start = 0
		}
	} else {
		first.Start = 0
	}
	out = append(out, first)

	for _, s := range spans[1:] {
		prev := &out[len(out)-1]
		gap := s.Start - prev.End
		switch {
		case gap <= timeEpsilon:
			s.Start = prev.End
		case gap > c.cfg.IdleThreshold:
			out = append(out, Span{
				Start:      prev.End,
				End:        s.Start,
				Intent:     Idle{},
				Focus:      prev.Focus,
				Confidence: 1.0,
			})
		case gap <= c.cfg.MinGap && !SameFamily(prev.Intent, s.Intent) && !isSwitch(s.Intent):
			// A new kind of activity right after the old one claims the
			// sliver, so its span starts where the old activity ended. A
			// switch never claims backward; it starts when it was seen.
			s.Start = prev.End
		default:
			// The camera holds the previous focus until the new activity
			// actually begins.
			prev.End = s.Start
		}
		out = append(out, s)
	}

	last := &out[len(out)-1]
	tail := duration - last.End
	switch {
	case tail > c.cfg.IdleThreshold:
		out = append(out, Span{
			Start:      last.End,
			End:        duration,
			Intent:     Idle{},
			Focus:      last.Focus,
			Confidence: 1.0,
		})
	case tail > 0:
		last.End = duration
	}
	return out
}
