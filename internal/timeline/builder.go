package timeline

import (
	"math"
	"sort"

	"smartzoom/internal/geom"
	"smartzoom/internal/recording"
)

// Build converts a raw capture into a unified timeline. Malformed records
// (non-finite times, positions outside the capture bounds) are dropped and
// counted rather than clamped, so one bad sample cannot yank the camera.
func Build(rec recording.Recording) Timeline {
	b := builder{screen: rec.Screen}

	b.addMouseSamples(rec.MouseSamples)
	b.addClicks(rec.Clicks)
	b.addDrags(rec.Drags)
	b.addScrolls(rec.Scrolls)
	b.addKeys(rec.Keys)
	b.addUISamples(rec.UISamples)

	sort.SliceStable(b.events, func(i, j int) bool {
		return b.events[i].Time < b.events[j].Time
	})
	sort.SliceStable(b.samples, func(i, j int) bool {
		return b.samples[i].Time < b.samples[j].Time
	})

	tl := Timeline{
		Duration: b.duration(rec.Duration),
		Events:   b.events,
		Samples:  b.samples,
		Dropped:  b.dropped,
	}
	tagApplications(&tl)
	return tl
}

type builder struct {
	screen  recording.ScreenBounds
	events  []Event
	samples []UISample
	dropped int
	// mouseTrack keeps normalized cursor samples in input order for key
	// position lookup; recorder tracks are already chronological.
	mouseTrack []Event
}

func validTime(t float64) bool {
	return !math.IsNaN(t) && !math.IsInf(t, 0) && t >= 0
}

// normalize converts a pixel position into capture-relative coordinates.
func (b *builder) normalize(x, y float64) (geom.Point, bool) {
	p := geom.Point{X: x / b.screen.Width, Y: y / b.screen.Height}
	return p, p.Valid()
}

func (b *builder) addMouseSamples(samples []recording.MouseSample) {
	for _, s := range samples {
		p, ok := b.normalize(s.X, s.Y)
		if !validTime(s.Time) || !ok {
			b.dropped++
			continue
		}
		ev := Event{Time: s.Time, Pos: p, Kind: MouseMove{}}
		b.events = append(b.events, ev)
		b.mouseTrack = append(b.mouseTrack, ev)
	}
	sort.SliceStable(b.mouseTrack, func(i, j int) bool {
		return b.mouseTrack[i].Time < b.mouseTrack[j].Time
	})
}

func (b *builder) addClicks(clicks []recording.ClickEvent) {
	for _, c := range clicks {
		p, ok := b.normalize(c.X, c.Y)
		if !validTime(c.Time) || !ok {
			b.dropped++
			continue
		}
		b.events = append(b.events, Event{
			Time: c.Time,
			Pos:  p,
			Kind: Click{Type: ClickType(c.Type), Element: b.element(c.Element)},
		})
	}
}

func (b *builder) addDrags(drags []recording.DragEvent) {
	for _, d := range drags {
		start, okS := b.normalize(d.StartX, d.StartY)
		end, okE := b.normalize(d.EndX, d.EndY)
		if !validTime(d.StartTime) || !validTime(d.EndTime) || d.EndTime < d.StartTime || !okS || !okE {
			b.dropped++
			continue
		}
		gesture := Drag{Start: start, End: end, Type: DragType(d.Type), Duration: d.EndTime - d.StartTime}
		b.events = append(b.events,
			Event{Time: d.StartTime, Pos: start, Kind: DragStart{Gesture: gesture}},
			Event{Time: d.EndTime, Pos: end, Kind: DragEnd{Gesture: gesture}},
		)
	}
}

func (b *builder) addScrolls(scrolls []recording.ScrollEvent) {
	for _, s := range scrolls {
		p, ok := b.normalize(s.X, s.Y)
		if !validTime(s.Time) || !ok || math.IsNaN(s.Amount) {
			b.dropped++
			continue
		}
		b.events = append(b.events, Event{
			Time: s.Time,
			Pos:  p,
			Kind: Scroll{Direction: ScrollDirection(s.Direction), Amount: math.Abs(s.Amount)},
		})
	}
}

func (b *builder) addKeys(keys []recording.KeyEvent) {
	for _, k := range keys {
		if !validTime(k.Time) {
			b.dropped++
			continue
		}
		ev := Event{Time: k.Time, Pos: b.cursorAt(k.Time)}
		if k.Up {
			ev.Kind = KeyUp{Code: k.Code}
		} else {
			ev.Kind = KeyDown{
				Code:      k.Code,
				Character: k.Character,
				Modifiers: ParseModifiers(k.Modifiers),
			}
		}
		b.events = append(b.events, ev)
	}
}

// cursorAt returns the cursor position at the given time, taken from the
// nearest preceding mouse sample. Keyboard events carry no position of
// their own; without any mouse track the capture center is used.
func (b *builder) cursorAt(at float64) geom.Point {
	idx := sort.Search(len(b.mouseTrack), func(i int) bool {
		return b.mouseTrack[i].Time > at
	})
	if idx == 0 {
		if len(b.mouseTrack) > 0 {
			return b.mouseTrack[0].Pos
		}
		return geom.Point{X: 0.5, Y: 0.5}
	}
	return b.mouseTrack[idx-1].Pos
}

func (b *builder) addUISamples(samples []recording.UISample) {
	for _, s := range samples {
		if !validTime(s.Time) {
			b.dropped++
			continue
		}
		b.samples = append(b.samples, UISample{
			Time:     s.Time,
			BundleID: s.BundleID,
			AppName:  s.AppName,
			Element:  b.element(s.Element),
		})
	}
}

// element normalizes an accessibility element, discarding frames that fall
// entirely outside the capture.
func (b *builder) element(raw *recording.Element) *ElementInfo {
	if raw == nil {
		return nil
	}
	info := &ElementInfo{
		Role:      raw.Role,
		Title:     raw.Title,
		AppName:   raw.AppName,
		Clickable: raw.Clickable,
	}
	if f := raw.Frame; f != nil && f.W > 0 && f.H > 0 {
		frame := geom.Rect{
			X: f.X / b.screen.Width,
			Y: f.Y / b.screen.Height,
			W: f.W / b.screen.Width,
			H: f.H / b.screen.Height,
		}.Clamped()
		if !frame.Empty() {
			info.Frame = frame
		}
	}
	return info
}

// duration picks the recorded duration, extended when events run past it
// and derived from the last record when the recorder wrote none.
func (b *builder) duration(recorded float64) float64 {
	d := recorded
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		d = 0
	}
	if n := len(b.events); n > 0 {
		// events are sorted by the time duration() is called
		d = math.Max(d, b.events[n-1].Time)
	}
	if n := len(b.samples); n > 0 {
		d = math.Max(d, b.samples[n-1].Time)
	}
	return d
}

// tagApplications stamps each event with the owning application reported by
// the latest UI sample at or before it. Events before the first sample stay
// untagged.
func tagApplications(tl *Timeline) {
	if len(tl.Samples) == 0 {
		return
	}
	si := 0
	current := ""
	for i := range tl.Events {
		for si < len(tl.Samples) && tl.Samples[si].Time <= tl.Events[i].Time {
			current = tl.Samples[si].BundleID
			if current == "" {
				current = tl.Samples[si].AppName
			}
			si++
		}
		tl.Events[i].App = current
	}
}
