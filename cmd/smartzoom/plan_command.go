package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"smartzoom/internal/intent"
	"smartzoom/internal/logging"
	"smartzoom/internal/pipeline"
	"smartzoom/internal/preview"
	"smartzoom/internal/recording"
	"smartzoom/internal/system"
	"smartzoom/internal/transition"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	var previewPath string
	var showTable bool
	var showStats bool

	cmd := &cobra.Command{
		Use:   "plan <capture.json>",
		Short: "Plan camera movement for one recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			rec, err := recording.Load(args[0])
			if err != nil {
				return err
			}

			p, err := pipeline.New(logging.NewLogger(), cfg.Settings())
			if err != nil {
				return err
			}

			name := captureStem(args[0])
			res, err := p.Run(name, rec)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outPath)
			if target == "" {
				target = filepath.Join(cfg.Output.Dir, name+".yaml")
			}
			if dir := filepath.Dir(target); dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create output directory %q: %w", dir, err)
				}
			}
			if err := pipeline.WriteDocument(pipeline.BuildDocument(res), target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote plan for %s to %s (%d scenes, %d shots)\n",
				name, target, len(res.Scenes), len(res.Shots))

			if previewPath != "" {
				if err := preview.WritePNG(res, previewPath, preview.Options{}); err != nil {
					return fmt.Errorf("write preview: %w", err)
				}
				fmt.Fprintf(out, "Wrote preview to %s\n", previewPath)
			}

			if showTable {
				fmt.Fprintln(out, renderTable(
					[]string{"Scene", "Start", "End", "Intent", "App", "Shot", "Zoom", "Arrival"},
					buildShotRows(res),
					[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
			}

			if showStats {
				fmt.Fprint(out, system.FormatReport(res))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Plan file path (default <output dir>/<name>.yaml)")
	cmd.Flags().StringVar(&previewPath, "preview", "", "Also write a PNG overview of the plan to this path")
	cmd.Flags().BoolVar(&showTable, "table", false, "Print a per-scene shot summary")
	cmd.Flags().BoolVar(&showStats, "stats", false, "Print per-stage timing and resource usage")
	return cmd
}

// buildShotRows produces one row per scene: the shot that frames it and the
// transition that arrives at it, if any.
func buildShotRows(res *pipeline.Result) [][]string {
	arrivals := make(map[int]transition.Plan, len(res.Transitions))
	for _, tr := range res.Transitions {
		arrivals[tr.ToScene] = tr
	}

	rows := make([][]string, 0, len(res.Shots))
	for _, sh := range res.Shots {
		arrival := ""
		if tr, ok := arrivals[sh.SceneIndex]; ok {
			arrival = transition.StyleName(tr.Style)
			if tr.Duration > 0 {
				arrival = fmt.Sprintf("%s %.2fs", arrival, tr.Duration)
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(sh.SceneIndex),
			fmt.Sprintf("%.2fs", sh.Start),
			fmt.Sprintf("%.2fs", sh.End),
			intent.Describe(sh.Intent),
			sh.App,
			string(sh.Type),
			fmt.Sprintf("%.2fx", sh.Zoom),
			arrival,
		})
	}
	return rows
}

func captureStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
