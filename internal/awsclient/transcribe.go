package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	transcribetypes "github.com/aws/aws-sdk-go-v2/service/transcribe/types"

	"news-sentiment-go/internal/poller"
)

// StartJob submits a transcription job for an mp3 already uploaded to
// the bucket. Implements poller.JobClient.
func (c *Client) StartJob(ctx context.Context, jobName, mediaURI string) error {
	_, err := c.transcribe.StartTranscriptionJob(ctx, &transcribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(jobName),
		Media:                &transcribetypes.Media{MediaFileUri: aws.String(mediaURI)},
		MediaFormat:          transcribetypes.MediaFormatMp3,
		LanguageCode:         transcribetypes.LanguageCodeEnUs,
	})
	if err != nil {
		return fmt.Errorf("start transcription job %s: %w", jobName, err)
	}
	return nil
}

// JobStatus maps the remote job state onto the poller's state machine.
func (c *Client) JobStatus(ctx context.Context, jobName string) (poller.JobState, error) {
	out, err := c.transcribe.GetTranscriptionJob(ctx, &transcribe.GetTranscriptionJobInput{
		TranscriptionJobName: aws.String(jobName),
	})
	if err != nil {
		return poller.JobState{}, err
	}
	job := out.TranscriptionJob
	if job == nil {
		return poller.JobState{}, fmt.Errorf("transcription job %s: empty response", jobName)
	}

	switch job.TranscriptionJobStatus {
	case transcribetypes.TranscriptionJobStatusCompleted:
		state := poller.JobState{Status: poller.StatusCompleted}
		if job.Transcript != nil {
			state.ResultURI = aws.ToString(job.Transcript.TranscriptFileUri)
		}
		return state, nil
	case transcribetypes.TranscriptionJobStatusFailed:
		return poller.JobState{
			Status:        poller.StatusFailed,
			FailureReason: aws.ToString(job.FailureReason),
		}, nil
	default:
		// QUEUED and IN_PROGRESS both mean keep waiting.
		return poller.JobState{Status: poller.StatusInProgress}, nil
	}
}
