package awsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Shape of the document behind a completed job's result URI.
type transcriptPayload struct {
	Results struct {
		Transcripts []struct {
			Transcript string `json:"transcript"`
		} `json:"transcripts"`
	} `json:"results"`
}

// FetchTranscript dereferences a COMPLETED job's result URI and returns
// the transcript text. A payload without a transcript entry is a hard
// error.
func (c *Client) FetchTranscript(ctx context.Context, uri string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", fmt.Errorf("build transcript request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("fetch transcript: status %s: %s", resp.Status, body)
	}

	var payload transcriptPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode transcript payload: %w", err)
	}
	if len(payload.Results.Transcripts) == 0 {
		return "", fmt.Errorf("transcript payload has no transcripts")
	}
	return payload.Results.Transcripts[0].Transcript, nil
}
