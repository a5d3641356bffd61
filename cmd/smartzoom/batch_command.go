package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"smartzoom/internal/logging"
	"smartzoom/internal/pipeline"
	"smartzoom/internal/recording"
	"smartzoom/internal/system"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var outDir string
	var showStats bool

	cmd := &cobra.Command{
		Use:   "batch <capture-dir>",
		Short: "Plan every recording in a directory",
		Long: "batch loads every *.json capture in the directory, plans them " +
			"concurrently, and writes one YAML plan per recording into the " +
			"output directory. Captures that fail to parse are skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outDir)
			if target == "" {
				target = cfg.Output.Dir
			}
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create output directory %q: %w", target, err)
			}

			// One writer per output directory; a second batch pointed at
			// the same plans would silently interleave files.
			lock := flock.New(filepath.Join(target, ".smartzoom.lock"))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire output lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another batch is already writing to %s", target)
			}
			defer func() { _ = lock.Unlock() }()

			out := cmd.OutOrStdout()
			recs, loadErrs := recording.LoadDir(args[0])
			for _, loadErr := range loadErrs {
				fmt.Fprintf(out, "Skipping capture: %v\n", loadErr)
			}
			if len(recs) == 0 {
				return fmt.Errorf("no usable captures in %s", args[0])
			}

			p, err := pipeline.New(logging.NewLogger(), cfg.Settings())
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			results, err := p.RunBatch(signalCtx, recs)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(results))
			for _, res := range results {
				path := filepath.Join(target, res.Name+".yaml")
				if err := pipeline.WriteDocument(pipeline.BuildDocument(res), path); err != nil {
					return err
				}
				rows = append(rows, []string{
					res.Name,
					fmt.Sprintf("%.2fs", res.Duration),
					strconv.Itoa(len(res.Scenes)),
					strconv.Itoa(len(res.Shots)),
					res.Stats.Total.Round(time.Millisecond).String(),
				})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Recording", "Duration", "Scenes", "Shots", "Planned In"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(out, "Wrote %d plans to %s\n", len(results), target)

			if showStats {
				for _, res := range results {
					fmt.Fprint(out, system.FormatReport(res))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from config)")
	cmd.Flags().BoolVar(&showStats, "stats", false, "Print per-recording timing and resource usage")
	return cmd
}
