package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"news-sentiment-go/internal/types"
)

// Credentials is one row of an AWS-console accessKeys.csv export.
type Credentials struct {
	AccessKeyID     string `csv:"Access key ID"`
	SecretAccessKey string `csv:"Secret access key"`
}

type Config struct {
	Region       string
	Bucket       string
	OutputDir    string
	PollInterval time.Duration
	// Seconds credited per transcription job. A fixed estimate, not a
	// measured duration; provider-reported media length would be more
	// accurate.
	SecondsPerTranscriptionJob int
	// MaxPolls zero means the poller waits indefinitely.
	MaxPolls uint64
	// ContinueOnItemError keeps the run going past a failed item and
	// persists whatever succeeded. Off by default: first failure aborts.
	ContinueOnItemError bool
	Credentials         Credentials
	Articles            []types.SourceItem
	AudioItems          []types.SourceItem
}

// The fixed source lists, processed in this order.
func defaultArticles() []types.SourceItem {
	return []types.SourceItem{
		{Name: "cnn", Origin: "https://edition.cnn.com/2025/12/10/economy/fed-december-rate-decision", Kind: types.KindArticle},
		{Name: "cnbc", Origin: "https://www.cnbc.com/2025/12/10/fed-interest-rate-decision-december-2025-.html", Kind: types.KindArticle},
		{Name: "reuters", Origin: "https://www.reuters.com/business/view-divided-fed-cuts-rates-expected-sees-only-one-reduction-2026-2025-12-10/", Kind: types.KindArticle},
		{Name: "bbc", Origin: "https://www.bbc.com/news/articles/cx257k3n2g1o", Kind: types.KindArticle},
		{Name: "german", Origin: "https://www.derstandard.at/story/3000000300108/us-notenbank-fed-senkt-leitzins-zum-dritten-mal-heuer", Kind: types.KindArticle, SourceLang: "de"},
	}
}

func defaultAudioItems() []types.SourceItem {
	return []types.SourceItem{
		{Name: "fox_news", Origin: "audio/fox.mp3", Kind: types.KindVideo},
		{Name: "cnn_news", Origin: "audio/cnn.mp3", Kind: types.KindVideo},
		{Name: "cnbc_fast_money", Origin: "audio/cnbc1.mp3", Kind: types.KindVideo},
		{Name: "cnbc_news", Origin: "audio/cnbc2.mp3", Kind: types.KindVideo},
		{Name: "reuters_powell", Origin: "audio/reuters.mp3", Kind: types.KindVideo},
	}
}

func Load() (*Config, error) {
	creds, err := LoadCredentials(envOr("ACCESS_KEYS_FILE", "accessKeys.csv"))
	if err != nil {
		return nil, err
	}
	return &Config{
		Region:                     envOr("AWS_REGION", "eu-west-1"),
		Bucket:                     envOr("S3_BUCKET", "2404422-news-sentiment"),
		OutputDir:                  envOr("OUTPUT_DIR", "output"),
		PollInterval:               time.Duration(envInt("POLL_INTERVAL_SEC", 5)) * time.Second,
		SecondsPerTranscriptionJob: envInt("TRANSCRIBE_JOB_SECONDS", 180),
		MaxPolls:                   uint64(envInt("MAX_POLLS", 0)),
		ContinueOnItemError:        envBool("CONTINUE_ON_ITEM_ERROR", false),
		Credentials:                creds,
		Articles:                   defaultArticles(),
		AudioItems:                 defaultAudioItems(),
	}, nil
}

// LoadCredentials reads the static access-key file. The console export
// starts with a UTF-8 BOM, which would otherwise corrupt the first
// header name.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("read access keys: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var rows []Credentials
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return Credentials{}, fmt.Errorf("parse access keys %s: %w", path, err)
	}
	if len(rows) == 0 {
		return Credentials{}, fmt.Errorf("access keys %s: no rows", path)
	}
	creds := rows[0]
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return Credentials{}, fmt.Errorf("access keys %s: missing key id or secret", path)
	}
	return creds, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
