// Package background runs detached tasks that outlive their caller, such
// as subscriber notification and archival after a committed merge. Task
// failures are logged on their own channel and never reach the caller.
package background

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Runner executes a named task. The production runner detaches the task
// onto its own goroutine; SyncRunner executes inline for deterministic
// tests.
type Runner interface {
	Go(name string, task func(ctx context.Context) error)
}

type asyncRunner struct {
	log *zap.Logger
}

func NewRunner(log *zap.Logger) Runner {
	return &asyncRunner{log: log.Named("background")}
}

func (r *asyncRunner) Go(name string, task func(ctx context.Context) error) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("background task panicked",
					zap.String("task", name),
					zap.Any("panic", rec),
				)
			}
		}()
		// Detached from the caller's request context on purpose.
		if err := task(context.Background()); err != nil {
			r.log.Error("background task failed",
				zap.String("task", name),
				zap.Error(err),
			)
		}
	}()
}

// SyncRunner executes tasks inline and records their errors.
type SyncRunner struct {
	Errors []error
}

func (r *SyncRunner) Go(name string, task func(ctx context.Context) error) {
	if err := task(context.Background()); err != nil {
		r.Errors = append(r.Errors, err)
	}
}

var Module = fx.Module("background",
	fx.Provide(NewRunner),
)
