// Package report renders the run's tables into one xlsx workbook for
// downstream charting.
package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"news-sentiment-go/internal/types"
	"news-sentiment-go/internal/usage"
)

const (
	sheetResults = "sentiment_results"
	sheetCosts   = "aws_costs"
	sheetByLabel = "sentiment_by_label"

	WorkbookName = "news_sentiment_report.xlsx"
)

// Write builds the workbook at path: the per-item sentiment table, the
// cost table, and a dominant-label count aggregate.
func Write(path string, records []types.SentimentRecord, costs []usage.CostRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetResults); err != nil {
		return fmt.Errorf("report workbook: %w", err)
	}
	if err := writeRows(f, sheetResults, resultRows(records)); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetCosts); err != nil {
		return fmt.Errorf("report workbook: %w", err)
	}
	if err := writeRows(f, sheetCosts, costRows(costs)); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetByLabel); err != nil {
		return fmt.Errorf("report workbook: %w", err)
	}
	if err := writeRows(f, sheetByLabel, labelRows(records)); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report workbook %s: %w", path, err)
	}
	return nil
}

func resultRows(records []types.SentimentRecord) [][]interface{} {
	rows := [][]interface{}{{"source", "content_type", "sentiment", "positive", "negative", "neutral", "mixed"}}
	for _, r := range records {
		rows = append(rows, []interface{}{r.Source, string(r.ContentType), r.Sentiment, r.Positive, r.Negative, r.Neutral, r.Mixed})
	}
	return rows
}

func costRows(costs []usage.CostRow) [][]interface{} {
	rows := [][]interface{}{{"service", "usage", "cost_usd"}}
	for _, c := range costs {
		usageCol := interface{}(c.Usage)
		if c.Service == usage.ServiceTotal {
			usageCol = ""
		}
		rows = append(rows, []interface{}{c.Service, usageCol, c.Cost})
	}
	return rows
}

func labelRows(records []types.SentimentRecord) [][]interface{} {
	counts := map[string]int{}
	for _, r := range records {
		counts[r.Sentiment]++
	}
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	rows := [][]interface{}{{"sentiment", "count"}}
	for _, l := range labels {
		rows = append(rows, []interface{}{l, counts[l]})
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return fmt.Errorf("report workbook: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("report workbook %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
