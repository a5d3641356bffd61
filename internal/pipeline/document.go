package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"smartzoom/internal/intent"
	"smartzoom/internal/transition"
)

// DocumentVersion identifies the plan schema this build writes.
const DocumentVersion = "1"

// Document is the exported camera plan: one entry per scene carrying its
// framing and the transition that lands on it. Times are seconds from the
// recording start; centers and zoom are in capture space, so a materializer
// applies them without knowing the screen size.
type Document struct {
	Version  string       `yaml:"version"`
	RunID    string       `yaml:"runId"`
	Name     string       `yaml:"name,omitempty"`
	Duration float64      `yaml:"duration"`
	Scenes   []SceneEntry `yaml:"scenes"`
}

// SceneEntry is one scene with its planned framing.
type SceneEntry struct {
	Index      int              `yaml:"index"`
	Start      float64          `yaml:"start"`
	End        float64          `yaml:"end"`
	Intent     string           `yaml:"intent"`
	App        string           `yaml:"app,omitempty"`
	Shot       ShotEntry        `yaml:"shot"`
	Transition *TransitionEntry `yaml:"transition,omitempty"`
}

// ShotEntry is the static framing held across a scene.
type ShotEntry struct {
	Type    string  `yaml:"type"`
	Zoom    float64 `yaml:"zoom"`
	CenterX float64 `yaml:"centerX"`
	CenterY float64 `yaml:"centerY"`
	Source  string  `yaml:"source"`
}

// TransitionEntry describes the camera move into a scene.
type TransitionEntry struct {
	Style    string  `yaml:"style"`
	Duration float64 `yaml:"duration,omitempty"`
	Easing   string  `yaml:"easing"`
}

// BuildDocument flattens a run result into its exportable plan.
func BuildDocument(res *Result) *Document {
	doc := &Document{
		Version:  DocumentVersion,
		RunID:    res.RunID,
		Name:     res.Name,
		Duration: res.Duration,
		Scenes:   make([]SceneEntry, 0, len(res.Shots)),
	}

	for i, sh := range res.Shots {
		entry := SceneEntry{
			Index:  sh.SceneIndex,
			Start:  sh.Start,
			End:    sh.End,
			Intent: intent.Describe(sh.Intent),
			App:    sh.App,
			Shot: ShotEntry{
				Type:    string(sh.Type),
				Zoom:    sh.Zoom,
				CenterX: sh.Center.X,
				CenterY: sh.Center.Y,
				Source:  string(sh.Source),
			},
		}
		// Transitions land on their destination scene.
		if i > 0 && i-1 < len(res.Transitions) {
			tr := res.Transitions[i-1]
			entry.Transition = &TransitionEntry{
				Style:    transition.StyleName(tr.Style),
				Duration: tr.Duration,
				Easing:   string(tr.Easing),
			}
		}
		doc.Scenes = append(doc.Scenes, entry)
	}

	return doc
}

// WriteDocument writes a plan document to a YAML file.
func WriteDocument(doc *Document, path string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// ReadDocument reads a plan document from a YAML file.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", path, err)
	}

	if doc.Version != DocumentVersion {
		return nil, fmt.Errorf("unsupported plan version %q", doc.Version)
	}

	return &doc, nil
}
