// Package orchestration drives full evaluation runs over targets.
package orchestration

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/evalgate/evalgate/internal/dataset"
	"github.com/evalgate/evalgate/internal/execution"
	"github.com/evalgate/evalgate/internal/models"
	"github.com/evalgate/evalgate/internal/scoring"
)

// PipelineArgs configures a Pipeline.
type PipelineArgs struct {
	Adapter *execution.LocalAdapter
	// Version labels the run, usually the target's current prompt version.
	Version string
}

// Pipeline evaluates a single target end to end.
type Pipeline struct {
	adapter *execution.LocalAdapter
	version string
}

// NewPipeline creates a Pipeline.
func NewPipeline(args PipelineArgs) *Pipeline {
	return &Pipeline{
		adapter: args.Adapter,
		version: args.Version,
	}
}

// Run executes every case in the target and aggregates the run record.
func (p *Pipeline) Run(ctx context.Context, target *dataset.Target) (*models.RunRecord, error) {
	start := time.Now()

	slog.InfoContext(ctx, "starting evaluation run",
		"target", target.Name,
		"mode", target.Suite.EffectiveMode(),
		"cases", len(target.Cases))

	cases, err := p.adapter.RunCases(ctx, target)
	if err != nil {
		return nil, err
	}

	record := &models.RunRecord{
		RunID:      uuid.NewString(),
		PromptName: target.Name,
		Version:    p.version,
		Mode:       target.Suite.EffectiveMode(),
		Model:      target.Suite.Config.Model,
		Timestamp:  start.UTC(),
		Summary:    scoring.BuildRunSummary(cases),
		Cases:      cases,
		DurationMs: time.Since(start).Milliseconds(),
	}

	slog.InfoContext(ctx, "run complete",
		"target", target.Name,
		"passed", record.Summary.Passed,
		"failed", record.Summary.Failed,
		"duration_ms", record.DurationMs)

	return record, nil
}
