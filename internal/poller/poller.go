// Package poller drives an asynchronous transcription job to a terminal
// state by polling its status at a fixed interval.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// JobState is one status observation. ResultURI is only set when the
// status is COMPLETED; FailureReason only when FAILED.
type JobState struct {
	Status        Status
	ResultURI     string
	FailureReason string
}

// JobClient is the remote job surface the poller drives.
type JobClient interface {
	StartJob(ctx context.Context, jobName, mediaURI string) error
	JobStatus(ctx context.Context, jobName string) (JobState, error)
}

// JobFailedError reports a job that reached the FAILED terminal state.
type JobFailedError struct {
	Job    string
	Reason string
}

func (e *JobFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("transcription job %s failed", e.Job)
	}
	return fmt.Sprintf("transcription job %s failed: %s", e.Job, e.Reason)
}

// PollTimeoutError reports a job still non-terminal after MaxPolls
// status checks.
type PollTimeoutError struct {
	Job   string
	Polls uint64
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("transcription job %s not terminal after %d polls", e.Job, e.Polls)
}

var errStillRunning = errors.New("job still in progress")

// Poller blocks between status checks for a constant Interval. MaxPolls
// zero means poll until terminal; a stuck job then blocks until the
// context is cancelled. A nil Timer waits on the wall clock.
type Poller struct {
	Client   JobClient
	Interval time.Duration
	MaxPolls uint64
	Timer    backoff.Timer
}

func New(client JobClient, interval time.Duration) *Poller {
	return &Poller{Client: client, Interval: interval}
}

func (p *Poller) Submit(ctx context.Context, mediaURI, jobName string) error {
	if err := p.Client.StartJob(ctx, jobName, mediaURI); err != nil {
		return fmt.Errorf("submit transcription job %s: %w", jobName, err)
	}
	return nil
}

// AwaitCompletion polls until the job is terminal and returns the result
// location. The result location is never read from a non-COMPLETED
// observation.
func (p *Poller) AwaitCompletion(ctx context.Context, jobName string) (string, error) {
	var resultURI string

	op := func() error {
		state, err := p.Client.JobStatus(ctx, jobName)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("poll transcription job %s: %w", jobName, err))
		}
		switch state.Status {
		case StatusCompleted:
			resultURI = state.ResultURI
			return nil
		case StatusFailed:
			return backoff.Permanent(&JobFailedError{Job: jobName, Reason: state.FailureReason})
		default:
			return errStillRunning
		}
	}

	var bo backoff.BackOff = backoff.WithContext(backoff.NewConstantBackOff(p.Interval), ctx)
	if p.MaxPolls > 0 {
		bo = backoff.WithMaxRetries(bo, p.MaxPolls-1)
	}

	if err := backoff.RetryNotifyWithTimer(op, bo, nil, p.Timer); err != nil {
		if errors.Is(err, errStillRunning) {
			return "", &PollTimeoutError{Job: jobName, Polls: p.MaxPolls}
		}
		return "", err
	}
	return resultURI, nil
}
