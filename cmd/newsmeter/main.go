package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"news-sentiment-go/internal/awsclient"
	"news-sentiment-go/internal/config"
	"news-sentiment-go/internal/logger"
	"news-sentiment-go/internal/pipeline"
	"news-sentiment-go/internal/poller"
	"news-sentiment-go/internal/scraper"
	"news-sentiment-go/internal/store"
	"news-sentiment-go/internal/usage"
)

func main() {
	_ = godotenv.Load() // loads .env

	base := logger.New()
	log := base.WithRun().WithField("service", "news-sentiment-go")
	log.Info("starting pipeline")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	log.WithField("bucket", cfg.Bucket).WithField("region", cfg.Region).Info("configuration loaded")

	aws := awsclient.New(cfg.Region, cfg.Credentials.AccessKeyID, cfg.Credentials.SecretAccessKey, cfg.Bucket)
	jobs := &poller.Poller{Client: aws, Interval: cfg.PollInterval, MaxPolls: cfg.MaxPolls}

	p := &pipeline.Pipeline{
		Config:      cfg,
		Log:         log,
		Meter:       usage.NewMeter(),
		Scraper:     scraper.New(scraper.DefaultTimeout),
		Translator:  aws,
		Sentiment:   aws,
		Transcriber: jobs,
		Transcripts: aws,
		Uploader:    aws,
		Store:       store.New(cfg.OutputDir),
	}

	summary, err := p.Run(context.Background())
	if err != nil {
		log.WithError(err).Fatal("pipeline run failed")
	}
	for _, f := range summary.Failures {
		log.WithError(f).Warn("item skipped")
	}

	fmt.Println("\nSentiment analysis completed successfully.")
	fmt.Printf("Estimated total AWS cost: $%.4f\n", summary.TotalCost())
}
