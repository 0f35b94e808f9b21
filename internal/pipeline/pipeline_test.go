package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-sentiment-go/internal/config"
	"news-sentiment-go/internal/poller"
	"news-sentiment-go/internal/store"
	"news-sentiment-go/internal/types"
	"news-sentiment-go/internal/usage"
)

type fakeScraper struct {
	pages map[string]string
	fail  map[string]error
}

func (f *fakeScraper) Scrape(_ context.Context, pageURL string) (string, error) {
	if err := f.fail[pageURL]; err != nil {
		return "", err
	}
	text, ok := f.pages[pageURL]
	if !ok {
		return "", fmt.Errorf("no page for %s", pageURL)
	}
	return text, nil
}

type fakeTranslator struct {
	inputs []string
	out    string
}

func (f *fakeTranslator) Translate(_ context.Context, text string) (string, error) {
	f.inputs = append(f.inputs, text)
	return f.out, nil
}

type fakeSentiment struct {
	inputs []string
	result types.Sentiment
}

func (f *fakeSentiment) DetectSentiment(_ context.Context, text string) (types.Sentiment, error) {
	f.inputs = append(f.inputs, text)
	return f.result, nil
}

type submission struct {
	mediaURI string
	jobName  string
}

type fakeTranscriber struct {
	submissions []submission
	resultURI   string
	failReason  string
}

func (f *fakeTranscriber) Submit(_ context.Context, mediaURI, jobName string) error {
	f.submissions = append(f.submissions, submission{mediaURI: mediaURI, jobName: jobName})
	return nil
}

func (f *fakeTranscriber) AwaitCompletion(_ context.Context, jobName string) (string, error) {
	if f.failReason != "" {
		return "", &poller.JobFailedError{Job: jobName, Reason: f.failReason}
	}
	return f.resultURI, nil
}

type fakeFetcher struct {
	text string
}

func (f *fakeFetcher) FetchTranscript(context.Context, string) (string, error) {
	return f.text, nil
}

type fakeUploader struct {
	keys []string
}

func (f *fakeUploader) Upload(_ context.Context, _, key string) error {
	f.keys = append(f.keys, key)
	return nil
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func articleItem(name, url, lang string) types.SourceItem {
	return types.SourceItem{Name: name, Origin: url, Kind: types.KindArticle, SourceLang: lang}
}

func audioItem(name, path string) types.SourceItem {
	return types.SourceItem{Name: name, Origin: path, Kind: types.KindVideo}
}

func newTestPipeline(t *testing.T, cfg *config.Config) (*Pipeline, *fakeScraper, *fakeTranslator, *fakeSentiment, *fakeTranscriber, *fakeUploader) {
	t.Helper()
	scr := &fakeScraper{pages: map[string]string{}, fail: map[string]error{}}
	tr := &fakeTranslator{out: "translated english text"}
	sent := &fakeSentiment{result: types.Sentiment{Label: "NEUTRAL", Neutral: 0.9, Positive: 0.05, Negative: 0.03, Mixed: 0.02}}
	jobs := &fakeTranscriber{resultURI: "https://example.com/job.json"}
	up := &fakeUploader{}
	p := &Pipeline{
		Config:      cfg,
		Log:         testLog(),
		Meter:       usage.NewMeter(),
		Scraper:     scr,
		Translator:  tr,
		Sentiment:   sent,
		Transcriber: jobs,
		Transcripts: &fakeFetcher{text: "powell spoke about rates"},
		Uploader:    up,
		Store:       store.New(cfg.OutputDir),
		Now:         func() time.Time { return time.Unix(1700000000, 0) },
	}
	return p, scr, tr, sent, jobs, up
}

func testConfig(t *testing.T, articles, audio []types.SourceItem) *config.Config {
	t.Helper()
	return &config.Config{
		Bucket:                     "test-bucket",
		OutputDir:                  t.TempDir(),
		SecondsPerTranscriptionJob: 180,
		Articles:                   articles,
		AudioItems:                 audio,
	}
}

func TestRunEndToEnd(t *testing.T) {
	articles := []types.SourceItem{
		articleItem("cnn", "https://cnn.example/a", ""),
		articleItem("cnbc", "https://cnbc.example/a", ""),
		articleItem("reuters", "https://reuters.example/a", ""),
		articleItem("bbc", "https://bbc.example/a", ""),
		articleItem("german", "https://derstandard.example/a", "de"),
	}
	audio := []types.SourceItem{
		audioItem("fox_news", "audio/fox.mp3"),
		audioItem("cnn_news", "audio/cnn.mp3"),
		audioItem("cnbc_fast_money", "audio/cnbc1.mp3"),
		audioItem("cnbc_news", "audio/cnbc2.mp3"),
		audioItem("reuters_powell", "audio/reuters.mp3"),
	}
	cfg := testConfig(t, articles, audio)
	p, scr, tr, sent, _, up := newTestPipeline(t, cfg)
	for _, a := range articles {
		scr.pages[a.Origin] = "some article text about the fed"
	}
	scr.pages["https://derstandard.example/a"] = "die notenbank senkt den leitzins"

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, summary.Failures)

	// one record per configured item, articles first, configured order
	require.Len(t, summary.Records, 10)
	for i, a := range articles {
		assert.Equal(t, a.Name, summary.Records[i].Source)
		assert.Equal(t, types.KindArticle, summary.Records[i].ContentType)
	}
	for i, a := range audio {
		assert.Equal(t, a.Name, summary.Records[5+i].Source)
		assert.Equal(t, types.KindVideo, summary.Records[5+i].ContentType)
	}

	// only the flagged article was translated, and its sentiment ran on
	// the translated text
	require.Len(t, tr.inputs, 1)
	assert.Equal(t, "die notenbank senkt den leitzins", tr.inputs[0])
	assert.Contains(t, sent.inputs, "translated english text")
	require.Len(t, sent.inputs, 10)

	// cost table: three services plus TOTAL = their sum
	require.Len(t, summary.Costs, 4)
	assert.Equal(t, usage.ServiceTotal, summary.Costs[3].Service)
	assert.Equal(t, summary.Costs[0].Cost+summary.Costs[1].Cost+summary.Costs[2].Cost, summary.Costs[3].Cost)
	assert.Equal(t, summary.Costs[3].Cost, summary.TotalCost())

	totals := p.Meter.Snapshot()
	assert.Equal(t, int64(len("die notenbank senkt den leitzins")), totals.TranslateChars)
	assert.Equal(t, int64(10), totals.ComprehendCalls)
	assert.Equal(t, int64(5*180), totals.TranscribeSeconds)

	// bucket layout mirrors the local outputs
	assert.Contains(t, up.keys, "audio/fox.mp3")
	assert.Contains(t, up.keys, "output/txt/cnn_article.txt")
	assert.Contains(t, up.keys, "output/txt/fox_news_transcript.txt")
	assert.Contains(t, up.keys, "output/csv/sentiment_results.csv")
	assert.Contains(t, up.keys, "output/csv/aws_costs.csv")

	_, err = os.Stat(filepath.Join(cfg.OutputDir, "csv", "sentiment_results.csv"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "csv", "aws_costs.csv"))
	require.NoError(t, err)
}

func TestTranslationTruncatesButBillsOriginalLength(t *testing.T) {
	long := strings.Repeat("ä", 6000)
	cfg := testConfig(t, []types.SourceItem{articleItem("german", "https://x.example", "de")}, nil)
	p, scr, tr, sent, _, _ := newTestPipeline(t, cfg)
	scr.pages["https://x.example"] = long

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, tr.inputs, 1)
	assert.Equal(t, 4500, len([]rune(tr.inputs[0])))
	assert.Equal(t, strings.Repeat("ä", 4500), tr.inputs[0])

	// billed at the pre-truncation length
	assert.Equal(t, int64(6000), p.Meter.Snapshot().TranslateChars)

	require.Len(t, sent.inputs, 1)
	assert.LessOrEqual(t, len([]rune(sent.inputs[0])), 4500)
}

func TestSentimentInputTruncated(t *testing.T) {
	cfg := testConfig(t, []types.SourceItem{articleItem("cnn", "https://x.example", "")}, nil)
	p, scr, _, sent, _, _ := newTestPipeline(t, cfg)
	scr.pages["https://x.example"] = strings.Repeat("a", 5000)

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sent.inputs, 1)
	assert.Equal(t, 4500, len([]rune(sent.inputs[0])))
}

func TestFailFastAbortsBeforeAggregateOutputs(t *testing.T) {
	articles := []types.SourceItem{
		articleItem("cnn", "https://one.example", ""),
		articleItem("cnbc", "https://two.example", ""),
		articleItem("reuters", "https://three.example", ""),
		articleItem("bbc", "https://four.example", ""),
	}
	cfg := testConfig(t, articles, nil)
	p, scr, _, sent, _, up := newTestPipeline(t, cfg)
	scr.pages["https://one.example"] = "first"
	scr.pages["https://two.example"] = "second"
	scr.fail["https://three.example"] = errors.New("connection refused")

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "reuters")

	// two items completed before the abort, no tables were produced
	assert.Len(t, sent.inputs, 2)
	_, statErr := os.Stat(filepath.Join(cfg.OutputDir, "csv", "sentiment_results.csv"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(cfg.OutputDir, "csv", "aws_costs.csv"))
	assert.True(t, os.IsNotExist(statErr))
	for _, key := range up.keys {
		assert.NotContains(t, key, "csv")
	}
}

func TestContinueOnItemErrorCollectsOutcomes(t *testing.T) {
	articles := []types.SourceItem{
		articleItem("cnn", "https://one.example", ""),
		articleItem("cnbc", "https://two.example", ""),
		articleItem("reuters", "https://three.example", ""),
	}
	cfg := testConfig(t, articles, nil)
	cfg.ContinueOnItemError = true
	p, scr, _, _, _, _ := newTestPipeline(t, cfg)
	scr.pages["https://one.example"] = "first"
	scr.fail["https://two.example"] = errors.New("timeout")
	scr.pages["https://three.example"] = "third"

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Records, 2)
	assert.Equal(t, "cnn", summary.Records[0].Source)
	assert.Equal(t, "reuters", summary.Records[1].Source)

	require.Len(t, summary.Failures, 1)
	assert.ErrorContains(t, summary.Failures[0], "cnbc")

	// successes still get persisted
	_, statErr := os.Stat(filepath.Join(cfg.OutputDir, "csv", "sentiment_results.csv"))
	require.NoError(t, statErr)
}

func TestAudioItemFlow(t *testing.T) {
	cfg := testConfig(t, nil, []types.SourceItem{audioItem("fox_news", "audio/fox.mp3")})
	cfg.SecondsPerTranscriptionJob = 60
	p, _, _, sent, jobs, up := newTestPipeline(t, cfg)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, jobs.submissions, 1)
	assert.Equal(t, "s3://test-bucket/audio/fox.mp3", jobs.submissions[0].mediaURI)
	assert.Equal(t, "transcribe-fox_news-1700000000", jobs.submissions[0].jobName)

	require.Len(t, summary.Records, 1)
	assert.Equal(t, types.KindVideo, summary.Records[0].ContentType)

	require.Len(t, sent.inputs, 1)
	assert.Equal(t, "powell spoke about rates", sent.inputs[0])

	totals := p.Meter.Snapshot()
	assert.Equal(t, int64(60), totals.TranscribeSeconds)
	assert.Equal(t, int64(1), totals.ComprehendCalls)
	assert.Zero(t, totals.TranslateChars)

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "txt", "fox_news_transcript.txt"))
	require.NoError(t, err)
	assert.Equal(t, "powell spoke about rates", string(data))

	assert.Contains(t, up.keys, "audio/fox.mp3")
	assert.Contains(t, up.keys, "output/txt/fox_news_transcript.txt")
}

func TestJobFailureAbortsRun(t *testing.T) {
	cfg := testConfig(t, nil, []types.SourceItem{audioItem("fox_news", "audio/fox.mp3")})
	p, _, _, _, jobs, _ := newTestPipeline(t, cfg)
	jobs.failReason = "bad media"

	_, err := p.Run(context.Background())
	require.Error(t, err)

	var jfe *poller.JobFailedError
	require.ErrorAs(t, err, &jfe)
	assert.Equal(t, "transcribe-fox_news-1700000000", jfe.Job)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcde", truncate("abcdef", 5))
	assert.Equal(t, "äöü", truncate("äöüß", 3))
}
