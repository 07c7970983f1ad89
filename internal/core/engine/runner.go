package engine

import (
	"context"
	"errors"
	"iter"

	"go.uber.org/zap"

	"github.com/domainsweep/domainsweep/internal/core"
)

// DomainCheck performs a single domain availability check. Per-domain
// failures are encoded in the returned result, not in the error.
type DomainCheck interface {
	Check(ctx context.Context, domain string) (*core.CheckResult, error)
}

// ResultSink consumes results as they are produced.
type ResultSink func(result *core.CheckResult) error

// Runner drives a DomainCheck over an ordered, possibly unbounded sequence
// of domain names, strictly one at a time. Each result is handed to the
// sink as soon as it is computed, in input order, so consumers can stream
// output without buffering the whole batch.
type Runner struct {
	Checker DomainCheck
	Logger  *zap.Logger
}

// Run checks every domain in the sequence. It fails only on a missing
// checker, a sink error, or cancellation between checks; individual check
// outcomes always arrive as results.
func (r *Runner) Run(ctx context.Context, domains iter.Seq[string], sink ResultSink) error {
	if r == nil || r.Checker == nil {
		return errors.New("batch runner is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	index := 0
	for domain := range domains {
		if err := ctx.Err(); err != nil {
			return err
		}

		index++
		result, err := r.Checker.Check(ctx, domain)
		if err != nil {
			return err
		}

		r.log(index, result)

		if sink != nil {
			if err := sink(result); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *Runner) log(index int, result *core.CheckResult) {
	if r.Logger == nil || result == nil {
		return
	}

	r.Logger.Info("Checked domain",
		zap.Int("index", index),
		zap.String("domain", result.Domain),
		zap.String("status", result.Status),
		zap.String("available", result.Available.String()),
	)
}
