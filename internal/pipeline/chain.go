// Package pipeline runs QR creation requests as a two step chain: generate
// writes the code to a temp file, save publishes it to the gallery. Save only
// runs after generate succeeded, and each step posts its own notifications.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"qrquicker/internal/domain"
	"qrquicker/internal/metrics"
)

// StepOutcome is what a step hands back to the chain.
type StepOutcome struct {
	Status  domain.JobStatus
	Output  Data
	Failure domain.FailureKind
	Err     error
}

func (o StepOutcome) succeeded() bool {
	return o.Status == domain.JobStatusSucceeded
}

// Step is one unit of a chain. Run must not panic for expected failures; it
// reports them through the outcome.
type Step interface {
	Name() domain.StepName
	Run(ctx context.Context, in Data) StepOutcome
}

// failureReporter is implemented by steps that notify the user about their
// own failures. The chain calls it when the step panicked before it could.
type failureReporter interface {
	ReportFailure(ctx context.Context, in Data)
}

// ChainOutcome summarizes one chain run.
type ChainOutcome struct {
	ChainID    string
	Status     domain.JobStatus
	Completed  []domain.StepName
	FailedStep domain.StepName
	Failure    domain.FailureKind
	Err        error
	Output     Data
}

func (o ChainOutcome) Succeeded() bool {
	return o.Status == domain.JobStatusSucceeded
}

// Chain runs steps in order and stops at the first one that does not succeed.
type Chain struct {
	steps  []Step
	logger zerolog.Logger
}

func NewChain(logger zerolog.Logger, steps ...Step) *Chain {
	return &Chain{steps: steps, logger: logger}
}

// Run executes the chain and never returns an error: failures end up in the
// outcome.
func (c *Chain) Run(ctx context.Context, chainID string, in Data) ChainOutcome {
	data := in.Merge(Data{KeyChainID: chainID})
	out := ChainOutcome{ChainID: chainID, Status: domain.JobStatusRunning}

	for _, step := range c.steps {
		start := time.Now()
		res := c.runStep(ctx, step, data)
		elapsed := time.Since(start)

		metrics.StepDuration.WithLabelValues(string(step.Name())).Observe(elapsed.Seconds())
		metrics.StepRunsTotal.WithLabelValues(string(step.Name()), string(res.Status), string(res.Failure)).Inc()

		if !res.succeeded() {
			c.logger.Error().Err(res.Err).
				Str("job_id", chainID).
				Str("step", string(step.Name())).
				Str("failure", string(res.Failure)).
				Dur("elapsed", elapsed).
				Msg("pipeline: step failed")
			out.Status = domain.JobStatusFailed
			out.FailedStep = step.Name()
			out.Failure = res.Failure
			out.Err = res.Err
			out.Output = data
			return out
		}

		c.logger.Debug().
			Str("job_id", chainID).
			Str("step", string(step.Name())).
			Dur("elapsed", elapsed).
			Msg("pipeline: step succeeded")
		data = data.Merge(res.Output)
		out.Completed = append(out.Completed, step.Name())
	}

	out.Status = domain.JobStatusSucceeded
	out.Output = data
	return out
}

func (c *Chain) runStep(ctx context.Context, step Step, in Data) (res StepOutcome) {
	ctx, mark := withTerminalMark(ctx)
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		res = StepOutcome{
			Status:  domain.JobStatusFailed,
			Failure: domain.FailureUnexpected,
			Err:     fmt.Errorf("step %s panicked: %v", step.Name(), r),
		}
		if mark.posted.Load() {
			c.logger.Warn().Str("step", string(step.Name())).Msg("pipeline: step panicked after reporting, failure not posted again")
			return
		}
		if fr, ok := step.(failureReporter); ok {
			c.report(ctx, fr, in)
		}
	}()
	return step.Run(ctx, in)
}

func (c *Chain) report(ctx context.Context, fr failureReporter, in Data) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Msg("pipeline: failure report panicked")
		}
	}()
	fr.ReportFailure(ctx, in)
}
