// Package gojob bridges the bridge's job contracts onto go-job queues and
// workers. The dedup purge job runs through this adapter.
package gojob

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bvcollective/sheetbridge/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
)

// RetryPolicy defines queue retry bounds to avoid unbounded retry loops.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// NormalizeDelay clamps a retry delay to the policy's bounds.
func (p RetryPolicy) NormalizeDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// Exhausted reports whether an attempt count has consumed the policy.
func (p RetryPolicy) Exhausted(attempt int) bool {
	return p.MaxAttempts > 0 && attempt >= p.MaxAttempts
}

// ToExecutionMessage maps a bridge runtime message to go-job.
func ToExecutionMessage(msg *core.JobExecutionMessage) *job.ExecutionMessage {
	if msg == nil {
		return nil
	}
	return &job.ExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		Parameters:     copyAnyMap(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy(strings.TrimSpace(msg.DedupPolicy)),
	}
}

// FromExecutionMessage maps a go-job message into the bridge contract.
func FromExecutionMessage(msg *job.ExecutionMessage) *core.JobExecutionMessage {
	if msg == nil {
		return nil
	}
	return &core.JobExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		Parameters:     copyAnyMap(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    strings.TrimSpace(string(msg.DedupPolicy)),
	}
}

type EnqueuerAdapter struct {
	enqueuer queue.Enqueuer
}

func NewEnqueuerAdapter(enqueuer queue.Enqueuer) *EnqueuerAdapter {
	return &EnqueuerAdapter{enqueuer: enqueuer}
}

func (a *EnqueuerAdapter) Enqueue(ctx context.Context, msg core.JobExecutionMessage) error {
	if a == nil || a.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if strings.TrimSpace(msg.JobID) == "" {
		return fmt.Errorf("gojob: job id is required")
	}
	if _, err := a.enqueuer.Enqueue(ctx, ToExecutionMessage(&msg)); err != nil {
		return err
	}
	return nil
}

// DedupPurger is the slice of the bridge service the purge runner drives.
type DedupPurger interface {
	PurgeDedup(ctx context.Context) (int, error)
}

// PurgeRunner executes dedup purge deliveries pulled off a queue.
type PurgeRunner struct {
	service DedupPurger
	logger  core.Logger
}

func NewPurgeRunner(service DedupPurger, logger core.Logger) (*PurgeRunner, error) {
	if service == nil {
		return nil, fmt.Errorf("gojob: purge service is required")
	}
	return &PurgeRunner{service: service, logger: logger}, nil
}

// Run handles one purge delivery. Deliveries for other job ids are
// rejected so misrouted messages surface instead of silently acking.
func (r *PurgeRunner) Run(ctx context.Context, msg *core.JobExecutionMessage) error {
	if r == nil || r.service == nil {
		return fmt.Errorf("gojob: purge runner is not configured")
	}
	if msg == nil || strings.TrimSpace(msg.JobID) != core.DedupPurgeJobID {
		return fmt.Errorf("gojob: unexpected job id %q", jobID(msg))
	}
	removed, err := r.service.PurgeDedup(ctx)
	if err != nil {
		return err
	}
	if r.logger != nil {
		r.logger.Info("dedup purge completed", "removed", removed)
	}
	return nil
}

func jobID(msg *core.JobExecutionMessage) string {
	if msg == nil {
		return ""
	}
	return msg.JobID
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

var _ core.JobEnqueuer = (*EnqueuerAdapter)(nil)
