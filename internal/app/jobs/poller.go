package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"voice-relay/internal/app/api"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/model"
)

// DefaultPollInterval is the pause between two status checks.
const DefaultPollInterval = 5 * time.Second

// Poller observes jobs owned by external services. It never mutates a job.
type Poller struct {
	sources  map[model.JobKind]api.StatusSource
	interval time.Duration
	logger   *zap.Logger
}

// NewPoller creates a poller over one status source per job kind.
func NewPoller(sources map[model.JobKind]api.StatusSource, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{sources: sources, interval: interval, logger: logger}
}

// Interval returns the pause between two checks.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Check performs one status query and normalizes the answer. A failed job always carries a
// failure reason.
func (p *Poller) Check(ctx context.Context, kind model.JobKind, jobID string) (model.Job, error) {
	if jobID == "" {
		return model.Job{}, apperrors.ErrMissingJobID
	}
	source, ok := p.sources[kind]
	if !ok || source == nil {
		return model.Job{}, apperrors.Wrapf(apperrors.ErrUnsupportedJobKind, "%q", kind)
	}

	report, err := source.JobStatus(ctx, jobID)
	if err != nil {
		return model.Job{}, err
	}

	status := report.Status
	if status == "" {
		status = NormalizeStatus(report.RawStatus)
	}
	job := model.Job{
		JobID:     jobID,
		Kind:      kind,
		Status:    status,
		UpdatedAt: time.Now().UTC(),
	}
	switch status {
	case model.JobStatusCompleted:
		job.ResultLocation = report.ResultLocation
	case model.JobStatusFailed:
		job.FailureReason = report.FailureReason
		if job.FailureReason == "" {
			job.FailureReason = model.UnknownFailureReason
		}
	}
	return job, nil
}

// Wait checks the job every interval until it reaches a terminal status or ctx is done.
// A failed check ends the wait with its error.
func (p *Poller) Wait(ctx context.Context, kind model.JobKind, jobID string) (model.Job, error) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for polls := 1; ; polls++ {
		select {
		case <-ctx.Done():
			return model.Job{}, ctx.Err()
		case <-timer.C:
		}

		job, err := p.Check(ctx, kind, jobID)
		if err != nil {
			return model.Job{}, err
		}
		if job.Status.Terminal() {
			p.logger.Info("Job finished",
				zap.String("job", jobID),
				zap.String("kind", string(kind)),
				zap.String("status", string(job.Status)),
				zap.Int("polls", polls))
			return job, nil
		}

		p.logger.Debug("Job not finished",
			zap.String("job", jobID),
			zap.String("kind", string(kind)),
			zap.String("status", string(job.Status)),
			zap.Int("polls", polls))
		timer.Reset(p.interval)
	}
}
