// Package awsclient holds the concrete provider clients: Translate,
// Comprehend, Transcribe and S3, plus the transcript payload fetch.
package awsclient

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/translate"
)

type Client struct {
	translate  *translate.Client
	comprehend *comprehend.Client
	transcribe *transcribe.Client
	s3         *s3.Client
	bucket     string
	httpc      *http.Client
}

// New builds the clients from the static credential record. No shared
// config chain: the credential file is the only identity source.
func New(region, accessKeyID, secretAccessKey, bucket string) *Client {
	cfg := aws.Config{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
	}
	return &Client{
		translate:  translate.NewFromConfig(cfg),
		comprehend: comprehend.NewFromConfig(cfg),
		transcribe: transcribe.NewFromConfig(cfg),
		s3:         s3.NewFromConfig(cfg),
		bucket:     bucket,
		httpc:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Bucket() string {
	return c.bucket
}
