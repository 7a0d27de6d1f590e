package main

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/e7canasta/orion-mediakit/modules/comobj"
	"github.com/e7canasta/orion-mediakit/modules/config"
	"github.com/e7canasta/orion-mediakit/modules/metrics"
	"github.com/e7canasta/orion-mediakit/modules/pixelregion"
	"github.com/e7canasta/orion-mediakit/modules/pixelregion/mmap"
)

type convertOptions struct {
	root        *rootOptions
	configPath  string
	job         string
	slice       int
	dumpMetrics bool
}

func newConvertCommand(root *rootOptions) *cobra.Command {
	opts := &convertOptions{root: root}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert raw pixel volumes described by a job file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd.Context(), cmd.OutOrStdout())
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.configPath, "config", "c", "mediakit.yaml", "path to the job file")
	fs.StringVar(&opts.job, "job", "", "run only the named job")
	fs.IntVar(&opts.slice, "slice", -1, "destination slice to write, overrides the job's slice")
	fs.BoolVar(&opts.dumpMetrics, "metrics", false, "print prometheus metrics after the run")
	return cmd
}

func (o *convertOptions) run(ctx context.Context, out io.Writer) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	logger, err := o.root.logger(cfg.LogLevel)
	if err != nil {
		return err
	}
	ctx = comobj.ContextWithLogger(ctx, logger)

	reg := prometheus.NewRegistry()
	metrics.RegisterMetrics(reg)

	jobs := cfg.Jobs
	if o.job != "" {
		job, ok := cfg.Job(o.job)
		if !ok {
			return fmt.Errorf("job %q not found in %s", o.job, o.configPath)
		}
		jobs = []config.Job{*job}
	}

	logger.Info("convert: starting", "config", o.configPath, "jobs", len(jobs))
	for i := range jobs {
		if err := o.convert(ctx, logger, &jobs[i]); err != nil {
			return fmt.Errorf("job %s: %w", jobs[i].Name, err)
		}
	}

	if o.dumpMetrics {
		return writeMetrics(out, reg)
	}
	return nil
}

func (o *convertOptions) convert(ctx context.Context, logger *slog.Logger, job *config.Job) error {
	start := time.Now()
	dst := job.Destination

	vol, err := pixelregion.NewMemoryVolume(dst.Width, dst.Height, dst.Depth, dst.ResolvedFormat)
	if err != nil {
		return err
	}

	info, err := pixelregion.LoadFromFile(ctx, vol, job.Source.Path, mmap.New(), config.RawParser{Source: job.Source},
		pixelregion.FileRequest{
			DstBox:   dst.Box,
			SrcBox:   job.Source.Box,
			Filter:   job.ResolvedFilter,
			ColorKey: job.ColorKey,
		})
	if err != nil {
		return err
	}

	slice := job.Slice
	if o.slice >= 0 {
		slice = o.slice
	}
	img, err := vol.Slice(slice)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(job.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(job.Output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	logger.Info("convert: job complete",
		"job", job.Name,
		"source_format", info.Format,
		"destination_format", dst.ResolvedFormat,
		"filter", job.ResolvedFilter,
		"slice", slice,
		"output", job.Output,
		"duration", time.Since(start),
	)
	return nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
