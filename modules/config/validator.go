package config

import (
	"fmt"
	"regexp"

	"github.com/e7canasta/orion-mediakit/modules/pixelregion"
)

var jobNamePattern = regexp.MustCompile(`^[a-z0-9\-]+$`)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks the configuration and fills in defaults
func Validate(cfg *Config) error {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !logLevels[cfg.LogLevel] {
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}

	if len(cfg.Jobs) == 0 {
		return fmt.Errorf("at least one job is required")
	}

	seen := make(map[string]bool, len(cfg.Jobs))
	for i := range cfg.Jobs {
		job := &cfg.Jobs[i]
		if err := validateJob(job); err != nil {
			return fmt.Errorf("jobs[%d]: %w", i, err)
		}
		if seen[job.Name] {
			return fmt.Errorf("jobs[%d]: duplicate name '%s'", i, job.Name)
		}
		seen[job.Name] = true
	}

	return nil
}

func validateJob(job *Job) error {
	if job.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !jobNamePattern.MatchString(job.Name) {
		return fmt.Errorf("name must match pattern [a-z0-9-]+")
	}

	if err := validateSource(&job.Source); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := validateDestination(&job.Destination); err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	if job.Filter == "" {
		job.Filter = "default"
	}
	filter, err := pixelregion.ParseFilter(job.Filter)
	if err != nil {
		return err
	}
	job.ResolvedFilter = filter

	if job.Output == "" {
		return fmt.Errorf("output is required")
	}
	if job.Slice < 0 || job.Slice >= job.Destination.Depth {
		return fmt.Errorf("slice %d outside destination depth %d", job.Slice, job.Destination.Depth)
	}

	return nil
}

func validateSource(src *SourceConfig) error {
	if src.Path == "" {
		return fmt.Errorf("path is required")
	}

	format, err := pixelregion.ParseFormat(src.Format)
	if err != nil {
		return err
	}
	src.ResolvedFormat = format
	desc, err := pixelregion.Lookup(format)
	if err != nil {
		return err
	}

	if src.Width <= 0 || src.Height <= 0 {
		return fmt.Errorf("width and height must be > 0, got %dx%d", src.Width, src.Height)
	}
	if src.Depth == 0 {
		src.Depth = 1 // default
	}
	if src.Depth < 0 {
		return fmt.Errorf("depth must be > 0, got %d", src.Depth)
	}

	minRow := desc.RowBytes(src.Width)
	if src.RowPitch == 0 {
		src.RowPitch = minRow
	}
	if src.RowPitch < minRow {
		return fmt.Errorf("row_pitch %d smaller than %d bytes per row", src.RowPitch, minRow)
	}
	minSlice := src.RowPitch * desc.Rows(src.Height)
	if src.SlicePitch == 0 {
		src.SlicePitch = minSlice
	}
	if src.SlicePitch < minSlice {
		return fmt.Errorf("slice_pitch %d smaller than %d bytes per slice", src.SlicePitch, minSlice)
	}

	if format == pixelregion.FormatP8 && len(src.Palette) == 0 {
		return fmt.Errorf("P8 source requires a palette")
	}
	if len(src.Palette) > 256 {
		return fmt.Errorf("palette has %d entries, max 256", len(src.Palette))
	}

	if src.Box != nil && (src.Box.Empty() || !src.Box.Within(src.Width, src.Height, src.Depth)) {
		return fmt.Errorf("box %s outside %dx%dx%d source", src.Box, src.Width, src.Height, src.Depth)
	}

	return nil
}

func validateDestination(dst *DestinationConfig) error {
	format, err := pixelregion.ParseFormat(dst.Format)
	if err != nil {
		return err
	}
	if format == pixelregion.FormatP8 {
		return fmt.Errorf("P8 destinations are not supported")
	}
	dst.ResolvedFormat = format

	if dst.Width <= 0 || dst.Height <= 0 {
		return fmt.Errorf("width and height must be > 0, got %dx%d", dst.Width, dst.Height)
	}
	if dst.Depth == 0 {
		dst.Depth = 1 // default
	}
	if dst.Depth < 0 {
		return fmt.Errorf("depth must be > 0, got %d", dst.Depth)
	}

	if dst.Box != nil && (dst.Box.Empty() || !dst.Box.Within(dst.Width, dst.Height, dst.Depth)) {
		return fmt.Errorf("box %s outside %dx%dx%d destination", dst.Box, dst.Width, dst.Height, dst.Depth)
	}

	return nil
}
