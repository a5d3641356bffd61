// Package pipeline runs the planning stages in order: interaction timeline,
// intent spans, scenes, shots, transitions. The stages themselves are pure;
// this package owns orchestration, logging and run bookkeeping.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"smartzoom/internal/intent"
	"smartzoom/internal/recording"
	"smartzoom/internal/scene"
	"smartzoom/internal/shot"
	"smartzoom/internal/timeline"
	"smartzoom/internal/transition"
)

// Settings bundles the per-stage tuning into one record.
type Settings struct {
	Intent     intent.Config
	Scene      scene.Config
	Shot       shot.Config
	Transition transition.Config
}

// DefaultSettings returns every stage's default tuning.
func DefaultSettings() Settings {
	return Settings{
		Intent:     intent.DefaultConfig(),
		Scene:      scene.DefaultConfig(),
		Shot:       shot.DefaultConfig(),
		Transition: transition.DefaultConfig(),
	}
}

// Validate checks every stage's tuning.
func (s Settings) Validate() error {
	if err := s.Intent.Validate(); err != nil {
		return fmt.Errorf("intent settings: %w", err)
	}
	if err := s.Scene.Validate(); err != nil {
		return fmt.Errorf("scene settings: %w", err)
	}
	if err := s.Shot.Validate(); err != nil {
		return fmt.Errorf("shot settings: %w", err)
	}
	if err := s.Transition.Validate(); err != nil {
		return fmt.Errorf("transition settings: %w", err)
	}
	return nil
}

// Stats records how long each stage of one run took.
type Stats struct {
	Timeline    time.Duration
	Classify    time.Duration
	Segment     time.Duration
	Frame       time.Duration
	Transitions time.Duration
	Total       time.Duration
}

// Result carries one recording's complete plan. Intermediate stage outputs
// are kept so callers can inspect, preview or re-export them.
type Result struct {
	RunID       string
	Name        string
	Duration    float64
	Timeline    timeline.Timeline
	Spans       []intent.Span
	Scenes      []scene.Scene
	Shots       []shot.Shot
	Transitions []transition.Plan
	Stats       Stats
}

// Pipeline plans camera movement for screen recordings.
type Pipeline struct {
	logger   zerolog.Logger
	settings Settings
}

// New creates a pipeline after validating the settings.
func New(logger zerolog.Logger, settings Settings) (*Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return &Pipeline{
		logger:   logger.With().Str("component", "pipeline").Logger(),
		settings: settings,
	}, nil
}

// Run plans a single recording. The same recording and settings always
// produce the same plan; only RunID and timings differ between runs.
func (p *Pipeline) Run(name string, rec recording.Recording) (*Result, error) {
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("recording %s: %w", name, err)
	}

	start := time.Now()
	res := &Result{
		RunID: uuid.NewString(),
		Name:  name,
	}

	stageStart := time.Now()
	res.Timeline = timeline.Build(rec)
	res.Stats.Timeline = time.Since(stageStart)
	res.Duration = res.Timeline.Duration

	p.logger.Debug().
		Str("recording", name).
		Int("events", len(res.Timeline.Events)).
		Int("dropped", res.Timeline.Dropped).
		Float64("duration", res.Timeline.Duration).
		Msg("timeline built")

	stageStart = time.Now()
	res.Spans = intent.NewClassifier(p.settings.Intent).Classify(res.Timeline)
	res.Stats.Classify = time.Since(stageStart)

	p.logger.Debug().
		Str("recording", name).
		Int("spans", len(res.Spans)).
		Msg("intents classified")

	stageStart = time.Now()
	res.Scenes = scene.NewSegmenter(p.settings.Scene).Segment(res.Timeline, res.Spans)
	res.Stats.Segment = time.Since(stageStart)

	stageStart = time.Now()
	res.Shots = shot.NewPlanner(p.settings.Shot).Plan(res.Timeline, res.Scenes)
	res.Stats.Frame = time.Since(stageStart)

	stageStart = time.Now()
	res.Transitions = transition.NewPlanner(p.settings.Transition).Plan(res.Shots)
	res.Stats.Transitions = time.Since(stageStart)

	res.Stats.Total = time.Since(start)

	p.logger.Info().
		Str("recording", name).
		Str("run_id", res.RunID).
		Float64("duration", res.Duration).
		Int("scenes", len(res.Scenes)).
		Int("shots", len(res.Shots)).
		Int("transitions", len(res.Transitions)).
		Msg("plan complete")

	return res, nil
}

// RunBatch plans several recordings concurrently. Recordings are
// independent, so the only coupling is the worker limit; results keep the
// input order. The first failure cancels the rest of the batch.
func (p *Pipeline) RunBatch(ctx context.Context, recs []recording.Named) ([]*Result, error) {
	results := make([]*Result, len(recs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, nr := range recs {
		i, nr := i, nr
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := p.Run(nr.Name, nr.Recording)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
