// Package pipeline sequences the whole run: articles, then audio items,
// then the aggregate tables, cost summary and uploads.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"news-sentiment-go/internal/config"
	"news-sentiment-go/internal/report"
	"news-sentiment-go/internal/store"
	"news-sentiment-go/internal/types"
	"news-sentiment-go/internal/usage"
)

// Provider input limit, characters.
const maxProviderChars = 4500

type Scraper interface {
	Scrape(ctx context.Context, pageURL string) (string, error)
}

type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

type SentimentAnalyzer interface {
	DetectSentiment(ctx context.Context, text string) (types.Sentiment, error)
}

type Transcriber interface {
	Submit(ctx context.Context, mediaURI, jobName string) error
	AwaitCompletion(ctx context.Context, jobName string) (string, error)
}

type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, uri string) (string, error)
}

type Uploader interface {
	Upload(ctx context.Context, localPath, key string) error
}

type Pipeline struct {
	Config      *config.Config
	Log         *logrus.Entry
	Meter       *usage.Meter
	Scraper     Scraper
	Translator  Translator
	Sentiment   SentimentAnalyzer
	Transcriber Transcriber
	Transcripts TranscriptFetcher
	Uploader    Uploader
	Store       *store.Store

	// Now is the job-name timestamp source; nil uses the wall clock.
	Now func() time.Time
}

// Summary is the outcome of one run. Failures is only populated when
// ContinueOnItemError is set; in fail-fast mode the first item error
// aborts Run before any aggregate output exists.
type Summary struct {
	Records  []types.SentimentRecord
	Costs    []usage.CostRow
	Failures []error
}

func (s *Summary) TotalCost() float64 {
	for _, row := range s.Costs {
		if row.Service == usage.ServiceTotal {
			return row.Cost
		}
	}
	return 0
}

func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	var records []types.SentimentRecord
	var failures []error

	process := func(item types.SourceItem, fn func(context.Context, types.SourceItem) (types.SentimentRecord, error)) error {
		rec, err := fn(ctx, item)
		if err != nil {
			err = fmt.Errorf("%s %s: %w", item.Kind, item.Name, err)
			if !p.Config.ContinueOnItemError {
				return err
			}
			p.Log.WithError(err).Warn("item failed, continuing")
			failures = append(failures, err)
			return nil
		}
		records = append(records, rec)
		return nil
	}

	for _, item := range p.Config.Articles {
		if err := process(item, p.processArticle); err != nil {
			return nil, err
		}
	}
	for _, item := range p.Config.AudioItems {
		if err := process(item, p.processAudio); err != nil {
			return nil, err
		}
	}

	costs, err := p.finalize(ctx, records)
	if err != nil {
		return nil, err
	}
	return &Summary{Records: records, Costs: costs, Failures: failures}, nil
}

func (p *Pipeline) processArticle(ctx context.Context, item types.SourceItem) (types.SentimentRecord, error) {
	log := p.Log.WithFields(logrus.Fields{"item": item.Name, "kind": item.Kind})
	log.Info("scraping article")

	text, err := p.Scraper.Scrape(ctx, item.Origin)
	if err != nil {
		return types.SentimentRecord{}, fmt.Errorf("scrape: %w", err)
	}

	if item.NeedsTranslation() {
		log.WithField("source_lang", item.SourceLang).Info("translating to english")
		translated, err := p.Translator.Translate(ctx, truncate(text, maxProviderChars))
		if err != nil {
			return types.SentimentRecord{}, fmt.Errorf("translate: %w", err)
		}
		// Billed at the full scraped length; only the truncated prefix
		// is actually submitted.
		p.Meter.RecordTranslation(runeCount(text))
		text = translated
	}

	if err := p.persistText(ctx, item, text); err != nil {
		return types.SentimentRecord{}, err
	}

	log.Info("running sentiment analysis")
	sent, err := p.Sentiment.DetectSentiment(ctx, truncate(text, maxProviderChars))
	if err != nil {
		return types.SentimentRecord{}, fmt.Errorf("sentiment: %w", err)
	}
	p.Meter.RecordScoringCall()

	return types.NewSentimentRecord(item, sent), nil
}

func (p *Pipeline) processAudio(ctx context.Context, item types.SourceItem) (types.SentimentRecord, error) {
	log := p.Log.WithFields(logrus.Fields{"item": item.Name, "kind": item.Kind})
	log.Info("uploading audio")

	audioKey := "audio/" + filepath.Base(item.Origin)
	if err := p.Uploader.Upload(ctx, item.Origin, audioKey); err != nil {
		return types.SentimentRecord{}, fmt.Errorf("upload audio: %w", err)
	}

	mediaURI := fmt.Sprintf("s3://%s/%s", p.Config.Bucket, audioKey)
	jobName := fmt.Sprintf("transcribe-%s-%d", item.Name, p.now().Unix())

	log.WithField("job", jobName).Info("submitting transcription job")
	if err := p.Transcriber.Submit(ctx, mediaURI, jobName); err != nil {
		return types.SentimentRecord{}, err
	}
	resultURI, err := p.Transcriber.AwaitCompletion(ctx, jobName)
	if err != nil {
		return types.SentimentRecord{}, err
	}

	text, err := p.Transcripts.FetchTranscript(ctx, resultURI)
	if err != nil {
		return types.SentimentRecord{}, err
	}

	if err := p.persistText(ctx, item, text); err != nil {
		return types.SentimentRecord{}, err
	}

	log.Info("running sentiment on transcript")
	sent, err := p.Sentiment.DetectSentiment(ctx, truncate(text, maxProviderChars))
	if err != nil {
		return types.SentimentRecord{}, fmt.Errorf("sentiment: %w", err)
	}
	p.Meter.RecordScoringCall()
	p.Meter.RecordTranscriptionSeconds(p.Config.SecondsPerTranscriptionJob)

	return types.NewSentimentRecord(item, sent), nil
}

func (p *Pipeline) persistText(ctx context.Context, item types.SourceItem, text string) error {
	local, key, err := p.Store.WriteText(item.Name, item.Kind, text)
	if err != nil {
		return err
	}
	if err := p.Uploader.Upload(ctx, local, key); err != nil {
		return err
	}
	return nil
}

// finalize persists and uploads the two tables and the workbook. Costs
// are computed only here, after both batches.
func (p *Pipeline) finalize(ctx context.Context, records []types.SentimentRecord) ([]usage.CostRow, error) {
	local, key, err := p.Store.WriteSentimentResults(records)
	if err != nil {
		return nil, err
	}
	if err := p.Uploader.Upload(ctx, local, key); err != nil {
		return nil, err
	}

	costs := p.Meter.ComputeCosts()
	local, key, err = p.Store.WriteCosts(costs)
	if err != nil {
		return nil, err
	}
	if err := p.Uploader.Upload(ctx, local, key); err != nil {
		return nil, err
	}

	workbook := filepath.Join(p.Store.TableDir(), report.WorkbookName)
	if err := report.Write(workbook, records, costs); err != nil {
		return nil, err
	}
	if err := p.Uploader.Upload(ctx, workbook, store.RemoteTableKey(report.WorkbookName)); err != nil {
		return nil, err
	}

	p.Log.WithFields(logrus.Fields{
		"records":    len(records),
		"total_cost": fmt.Sprintf("%.4f", costsTotal(costs)),
	}).Info("pipeline finished")
	return costs, nil
}

func costsTotal(costs []usage.CostRow) float64 {
	for _, c := range costs {
		if c.Service == usage.ServiceTotal {
			return c.Cost
		}
	}
	return 0
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// truncate limits text to max characters, counted as runes the way the
// providers count them.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func runeCount(s string) int {
	return len([]rune(s))
}
